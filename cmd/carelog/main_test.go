package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, remoteURL string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("data_dir: %q\nfile_name: care.json\nrefresh: \"\"\nremote:\n  base_url: %q\n  timeout: 2\n", filepath.Join(dir, "data"), remoteURL)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExport_CSVFromLocalCopy(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))
	doc := `[{"id":"E1","name":"Alice","service_date":"2024-01-01","next_eligible_date":"2024-02-01","expired":false}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "care.json"), []byte(doc), 0o644))

	out, err := runCLI(t, "export", "--config", cfgPath, "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,name,service_date,next_eligible_date,expired", lines[0])
	assert.Equal(t, "E1,Alice,2024-01-01,2024-02-01,true", lines[1], "expired is recomputed on load")
}

func TestExport_ICS(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "")

	out, err := runCLI(t, "export", "--config", cfgPath, "--format", "ics")
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
}

func TestExport_InvalidFormat(t *testing.T) {
	_, err := runCLI(t, "export", "--config", filepath.Join(t.TempDir(), "c.yaml"), "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestRestore_OverwritesLocalCopy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/download/care.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{"이름":"김민수","사번":"A1","케어일자":"2024-01-31","한달시점":"2024-02-29","한달지남":"X"}]`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, srv.URL)

	out, err := runCLI(t, "restore", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "restored 1 records")

	data, err := os.ReadFile(filepath.Join(dir, "data", "care.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "A1"`)
	assert.Contains(t, string(data), `"next_eligible_date": "2024-02-29"`)
}

func TestRestore_RemoteDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	_, err := runCLI(t, "restore", "--config", writeConfig(t, dir, srv.URL))
	assert.ErrorContains(t, err, "restore failed")
}
