package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"linkedin-leads/internal/models"
)

// wheel events are dispatched at this viewport point
const wheelX, wheelY = 400, 400

// ChromeLauncher starts one Chrome process per page
type ChromeLauncher struct {
	cfg models.BrowserConfig
}

// NewChromeLauncher creates a ChromeLauncher
func NewChromeLauncher(cfg models.BrowserConfig) *ChromeLauncher {
	return &ChromeLauncher{cfg: cfg}
}

func (l *ChromeLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
	)
	if l.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.cfg.UserAgent))
	}
	if l.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.ExecPath))
	}
	return opts
}

// Open launches Chrome and returns its first tab. The browser outlives ctx
// cancellation; it is released only by Close.
func (l *ChromeLauncher) Open(ctx context.Context) (Page, error) {
	base := context.WithoutCancel(ctx)
	allocCtx, allocCancel := chromedp.NewExecAllocator(base, l.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	p := &ChromePage{ctx: tabCtx, cancel: func() error {
		err := chromedp.Cancel(tabCtx)
		tabCancel()
		allocCancel()
		return err
	}}

	// The first Run on a tab starts Chrome, and Chrome lives as long as the
	// context of that call, so it runs on tabCtx itself. ctx is enforced by
	// closing the page instead.
	stop := context.AfterFunc(ctx, func() { p.Close() })
	err := chromedp.Run(tabCtx, network.Enable())
	if !stop() {
		return nil, fmt.Errorf("start browser: %w", contextError(ctx))
	}
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return p, nil
}

// ChromePage implements Page on a chromedp tab
type ChromePage struct {
	ctx       context.Context
	cancel    func() error
	closeOnce sync.Once
	closeErr  error
}

// run executes actions on the tab, bounded by ctx's deadline and cancelled with ctx
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(p.ctx, deadline)
	} else {
		runCtx, cancel = context.WithCancel(p.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return runError(ctx, runCtx, chromedp.Run(runCtx, actions...))
}

// contextError maps a finished ctx to ErrTimeout on deadline, otherwise to its error
func contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errTimedOut()
	}
	return ctx.Err()
}

func errTimedOut() error {
	return fmt.Errorf("%w: %w", ErrTimeout, context.DeadlineExceeded)
}

// runError classifies a failed Run. ctx and runCtx share a deadline, and
// either one may notice it first.
func runError(ctx, runCtx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return errTimedOut()
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *ChromePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (p *ChromePage) Fill(ctx context.Context, selector, value string) error {
	return p.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
}

func (p *ChromePage) Click(ctx context.Context, selector string) error {
	return p.run(ctx, chromedp.Click(selector, chromedp.ByQuery))
}

// Scroll dispatches a mouse wheel event, which is what triggers lazy loading
// on infinite-scroll result lists.
func (p *ChromePage) Scroll(ctx context.Context, deltaY float64) error {
	return p.run(ctx, input.DispatchMouseEvent(input.MouseWheel, wheelX, wheelY).
		WithDeltaX(0).
		WithDeltaY(deltaY))
}

func (p *ChromePage) Evaluate(ctx context.Context, expression string, out any) error {
	return p.run(ctx, chromedp.Evaluate(expression, out, func(params *runtime.EvaluateParams) *runtime.EvaluateParams {
		return params.WithAwaitPromise(true)
	}))
}

// Close shuts down the tab and the browser process. Safe to call more than once.
func (p *ChromePage) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.cancel()
	})
	return p.closeErr
}
