// Package capture produces PNG snapshots of the rendered week view via
// headless Chromium, for sharing a timetable as an image.
package capture

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Default viewport for the week-view snapshot.
const (
	DefaultWidth      = 1280
	DefaultHeight     = 900
	DefaultTimeoutSec = 30
)

// Snapshot locations shared between the capture writer and the
// /preview.png handler.
const (
	DefaultPreviewPath = "/var/lib/ttview/preview.png"
	DebugPreviewPath   = "./cache/preview.png"
)

// Options defines parameters for one snapshot capture.
type Options struct {
	// URL of the week view, e.g.
	// "http://127.0.0.1:8080/view?y=2025&s=S1&COMP1130".
	URL string

	// OutputPath is where the PNG will be written, e.g.
	// "/var/lib/ttview/preview.png".
	OutputPath string

	// Width and Height are the viewport dimensions in pixels. Zero means
	// the defaults.
	Width  int
	Height int

	// Timeout bounds the entire capture. Zero means DefaultTimeoutSec.
	Timeout time.Duration
}

// SnapshotPNG navigates headless Chromium to opts.URL, waits for the view
// to signal completion via its data-ready attribute, and writes a PNG
// screenshot to opts.OutputPath.
func SnapshotPNG(parentCtx context.Context, opts Options) error {
	if opts.URL == "" {
		return fmt.Errorf("capture: URL is required")
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("capture: OutputPath is required")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		// The server-rendered view marks its root with data-ready="true".
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		// Allow final paints to settle.
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.FullScreenshot(&png, 100),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	return nil
}
