package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carelog/internal/model"
)

func sampleRecords(t *testing.T) []model.Record {
	t.Helper()
	sd, err := model.ParseDate("2024-01-01")
	require.NoError(t, err)
	return []model.Record{{
		ID:               "E1",
		Name:             "김민수",
		ServiceDate:      sd,
		NextEligibleDate: model.NextEligible(sd),
	}}
}

func TestUpload_SendsFilenameAndContent(t *testing.T) {
	var got uploadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	require.NoError(t, c.Upload(context.Background(), "care.json", sampleRecords(t)))

	assert.Equal(t, "care.json", got.Filename)
	require.Len(t, got.Content, 1)
	assert.Equal(t, "김민수", got.Content[0].Name)
	assert.Equal(t, "2024-02-01", got.Content[0].NextEligibleDate.String())
}

func TestUpload_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).Upload(context.Background(), "care.json", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUpload_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := NewClient(srv.URL, 50*time.Millisecond).Upload(context.Background(), "care.json", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDownload_DecodesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/%EC%BC%80%EC%96%B4.json", r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"E1","name":"Alice","service_date":"2024-01-01","next_eligible_date":"2024-02-01","expired":false}]`))
	}))
	defer srv.Close()

	recs, err := NewClient(srv.URL, time.Second).Download(context.Background(), "케어.json")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Alice", recs[0].Name)
}

func TestDownload_Failures(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		_, err := NewClient(srv.URL, time.Second).Download(context.Background(), "care.json")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"a list"`))
		}))
		defer srv.Close()
		_, err := NewClient(srv.URL, time.Second).Download(context.Background(), "care.json")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()
		_, err := NewClient(addr, time.Second).Download(context.Background(), "care.json")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestDisabledClient(t *testing.T) {
	c := NewClient("  ", 0)
	assert.False(t, c.Enabled())

	_, err := c.Download(context.Background(), "care.json")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, c.Upload(context.Background(), "care.json", nil), ErrUnavailable)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://store.example.com", redactURL("https://store.example.com/secret/path?token=x"))
	assert.Equal(t, "remote://...(redacted)", redactURL("not a url"))
}
