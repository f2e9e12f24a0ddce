package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	appLog "carelog/internal/log"
	"carelog/internal/model"
)

// ErrUnavailable wraps every network, timeout, status or decode failure of
// the remote store. Callers treat it as a warning, never as fatal.
var ErrUnavailable = errors.New("remote store unavailable")

// DefaultTimeout bounds a single upload or download.
const DefaultTimeout = 10 * time.Second

// maxDocumentBytes caps how much of a download body is read.
const maxDocumentBytes = 32 << 20

// uploadRequest is the JSON body of POST /upload.
type uploadRequest struct {
	Filename string         `json:"filename"`
	Content  []model.Record `json:"content"`
}

// Client talks to a remote document store that keeps one whole JSON
// document per filename:
//
//	POST {base}/upload              {"filename": ..., "content": [...]}
//	GET  {base}/download/{filename} -> JSON document
//
// There is no versioning; the last upload wins.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a Client for baseURL. An empty baseURL yields a
// disabled client whose calls fail with ErrUnavailable without any I/O.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		base: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether a base URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.base != ""
}

// Upload replaces the remote document named filename with records.
func (c *Client) Upload(ctx context.Context, filename string, records []model.Record) error {
	if !c.Enabled() {
		return fmt.Errorf("%w: no base URL configured", ErrUnavailable)
	}
	if records == nil {
		records = []model.Record{}
	}

	body, err := json.Marshal(uploadRequest{Filename: filename, Content: records})
	if err != nil {
		return fmt.Errorf("encode upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: upload status %s", ErrUnavailable, resp.Status)
	}

	appLog.Debug("remote upload ok", "url", redactURL(c.base), "file", filename, "records", len(records))
	return nil
}

// Download fetches the remote document named filename.
func (c *Client) Download(ctx context.Context, filename string) ([]model.Record, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%w: no base URL configured", ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/download/"+url.PathEscape(filename), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	appLog.Info("remote download start", "url", redactURL(c.base), "file", filename)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download status %s", ErrUnavailable, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode document: %v", ErrUnavailable, err)
	}
	if records == nil {
		records = []model.Record{}
	}

	appLog.Info("remote download success", "url", redactURL(c.base), "file", filename, "records", len(records))
	return records, nil
}

// redactURL keeps only scheme and host for logging.
func redactURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || parsed.Host == "" {
		return "remote://...(redacted)"
	}
	return parsed.Scheme + "://" + parsed.Host
}
