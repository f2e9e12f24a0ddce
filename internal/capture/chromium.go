package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultTimeoutSec bounds a capture when no timeout is given.
const DefaultTimeoutSec = 30

// ReadySelector is the element the print view exposes once it has rendered.
const ReadySelector = `[data-ready="true"]`

// Options defines parameters for a Chromium-based PDF capture.
type Options struct {
	// URL to capture, e.g. "http://127.0.0.1:8080/print".
	URL string

	// OutputPath is where the PDF will be written.
	OutputPath string

	// Landscape prints in landscape orientation.
	Landscape bool

	// Timeout bounds the entire capture operation. If zero,
	// DefaultTimeoutSec is used.
	Timeout time.Duration
}

func (o *Options) normalize() error {
	if o.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if o.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return nil
}

// CapturePDF launches a headless Chromium instance via chromedp, navigates
// to opts.URL (normally the /print roster), waits until ReadySelector is
// visible and prints the page to a PDF file.
func CapturePDF(parentCtx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(ReadySelector, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(opts.Landscape).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if dir := filepath.Dir(opts.OutputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("capture: %w", err)
		}
	}
	if err := os.WriteFile(opts.OutputPath, pdf, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PDF: %w", err)
	}
	return nil
}
