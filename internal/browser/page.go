// Package browser defines the automation primitives the scraper needs from a
// headless browser and provides the chromedp implementation.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when a browser step does not finish before its deadline
var ErrTimeout = errors.New("browser step timed out")

// Page is one isolated browsing context. Every blocking call is bounded by the
// context deadline or, for WaitForSelector, by the explicit timeout.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	Fill(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	Scroll(ctx context.Context, deltaY float64) error
	Evaluate(ctx context.Context, expression string, out any) error
	Close() error
}

// Launcher opens fresh pages
type Launcher interface {
	Open(ctx context.Context) (Page, error)
}
