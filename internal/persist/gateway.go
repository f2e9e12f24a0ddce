// Package persist bootstraps the record list from durable storage and
// propagates every mutation to the local JSON copy and the remote mirror.
package persist

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	appLog "carelog/internal/log"
	"carelog/internal/model"
)

// Status describes where the startup record list came from.
type Status string

const (
	StatusLocal         Status = "local"
	StatusRestored      Status = "restored-from-remote"
	StatusRestoreFailed Status = "restore-failed"
)

var errNoRemote = errors.New("no remote store configured")

// Remote is the remote document store collaborator.
type Remote interface {
	Enabled() bool
	Upload(ctx context.Context, filename string, records []model.Record) error
	Download(ctx context.Context, filename string) ([]model.Record, error)
}

// Gateway coordinates the local copy and the remote mirror.
type Gateway struct {
	local    *LocalFile
	remote   Remote
	filename string
	timeout  time.Duration
}

// NewGateway creates a Gateway. The remote document is named after the local
// file's base name. timeout bounds each remote call.
func NewGateway(local *LocalFile, remote Remote, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{
		local:    local,
		remote:   remote,
		filename: filepath.Base(local.Path()),
		timeout:  timeout,
	}
}

// Bootstrap returns the initial record list.
//
//   - local copy present: use it (StatusLocal). If it cannot be read or
//     decoded the list is empty and err reports the LocalIO problem; the
//     remote is not consulted and the copy is left in place.
//   - otherwise try the remote: on success write it locally and return
//     StatusRestored; on failure return an empty list and StatusRestoreFailed.
//
// err is informational only; the returned records are always usable.
func (g *Gateway) Bootstrap(ctx context.Context) ([]model.Record, Status, error) {
	records, ok, err := g.local.Read()
	if ok {
		if err != nil {
			appLog.Error("local copy unreadable; starting empty", err, "path", g.local.Path())
			return []model.Record{}, StatusLocal, err
		}
		appLog.Info("loaded local copy", "path", g.local.Path(), "records", len(records))
		return records, StatusLocal, nil
	}

	records, err = g.download(ctx)
	if err != nil {
		appLog.Error("remote restore failed; starting empty", err, "file", g.filename)
		return []model.Record{}, StatusRestoreFailed, err
	}
	if werr := g.local.Write(records); werr != nil {
		appLog.Error("failed to write restored copy", werr, "path", g.local.Path())
	}
	return records, StatusRestored, nil
}

// Restore downloads the remote document and overwrites the local copy.
func (g *Gateway) Restore(ctx context.Context) ([]model.Record, error) {
	records, err := g.download(ctx)
	if err != nil {
		return nil, err
	}
	if err := g.local.Write(records); err != nil {
		return records, err
	}
	return records, nil
}

// SaveResult reports the outcome of each leg of a save. Nil errors mean
// success; RemoteSkipped is set when no remote is configured.
type SaveResult struct {
	LocalErr      error
	RemoteErr     error
	RemoteSkipped bool
}

// OK reports whether every attempted leg succeeded.
func (r SaveResult) OK() bool {
	return r.LocalErr == nil && r.RemoteErr == nil
}

// Save writes the full list locally and then pushes it to the remote. The
// remote leg runs even when the local write fails, and its failure is never
// retried.
func (g *Gateway) Save(ctx context.Context, records []model.Record) SaveResult {
	var res SaveResult

	if err := g.local.Write(records); err != nil {
		appLog.Error("local write failed", err, "path", g.local.Path())
		res.LocalErr = err
	}

	if g.remote == nil || !g.remote.Enabled() {
		res.RemoteSkipped = true
		return res
	}

	rctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.remote.Upload(rctx, g.filename, records); err != nil {
		appLog.Warn("remote upload failed", "err", err, "file", g.filename)
		res.RemoteErr = err
	}
	return res
}

func (g *Gateway) download(ctx context.Context) ([]model.Record, error) {
	if g.remote == nil {
		return nil, errNoRemote
	}
	rctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.remote.Download(rctx, g.filename)
}
