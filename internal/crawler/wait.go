package crawler

import (
	"context"
	"fmt"
	"time"

	"linkedin-leads/internal/browser"
)

// waitUntil polls a boolean expression until it holds or timeout passes.
// Evaluation errors count as "not yet", since the page may be mid-navigation.
func waitUntil(ctx context.Context, page browser.Page, timeout, interval time.Duration, expression string) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		var ok bool
		if err := page.Evaluate(waitCtx, expression, &ok); err == nil && ok {
			return nil
		}
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %s did not hold within %s", browser.ErrTimeout, expression, timeout)
		case <-ticker.C:
		}
	}
}
