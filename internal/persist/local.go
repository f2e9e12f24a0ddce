package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"carelog/internal/model"
)

// ErrLocalIO wraps failures reading or writing the local JSON copy.
var ErrLocalIO = errors.New("local storage error")

// LocalFile is the on-disk JSON copy of the record list. Every write replaces
// the whole document through a temp file and rename, under an exclusive
// lock on a sibling ".lock" file so that concurrent processes never observe
// a partial document.
type LocalFile struct {
	path string
	lock *flock.Flock
}

// NewLocalFile returns a LocalFile at path.
func NewLocalFile(path string) *LocalFile {
	return &LocalFile{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (f *LocalFile) Path() string {
	return f.path
}

// Exists reports whether the document is present.
func (f *LocalFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Read loads the document. ok is false only when the file does not exist; a
// copy that is present but unreadable or undecodable reports ok with an
// ErrLocalIO error.
func (f *LocalFile) Read() (records []model.Record, ok bool, err error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, true, fmt.Errorf("%w: read %s: %v", ErrLocalIO, f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Record{}, true, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, true, fmt.Errorf("%w: decode %s: %v", ErrLocalIO, f.path, err)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, true, nil
}

// Write replaces the document with records.
func (f *LocalFile) Write(records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	data, err := encode(records)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrLocalIO, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrLocalIO, err)
	}

	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("%w: lock %s: %v", ErrLocalIO, f.path, err)
	}
	defer f.lock.Unlock()

	tmp, err := os.CreateTemp(dir, ".carelog-data-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLocalIO, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrLocalIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrLocalIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrLocalIO, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrLocalIO, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: %v", ErrLocalIO, err)
	}
	return nil
}

// encode produces indented UTF-8 JSON without HTML escaping so names stay
// readable in the file.
func encode(records []model.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
