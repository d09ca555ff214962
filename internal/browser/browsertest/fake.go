// Package browsertest provides a scriptable browser.Page for tests.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"linkedin-leads/internal/browser"
)

// Page records every call and answers from the configured hooks.
// A nil hook succeeds.
type Page struct {
	mu     sync.Mutex
	calls  []string
	closed int

	NavigateFunc func(url string) error
	WaitFunc     func(selector string, timeout time.Duration) error
	FillFunc     func(selector, value string) error
	ClickFunc    func(selector string) error
	ScrollFunc   func(deltaY float64) error
	// EvaluateFunc returns a value that is JSON round-tripped into out.
	EvaluateFunc func(expression string) (any, error)
	CloseErr     error
}

var _ browser.Page = (*Page)(nil)

func (p *Page) record(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded call log
func (p *Page) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Closed returns how many times Close was called
func (p *Page) Closed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.record("navigate %s", url)
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.NavigateFunc != nil {
		return p.NavigateFunc(url)
	}
	return nil
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	p.record("wait %s", selector)
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.WaitFunc != nil {
		return p.WaitFunc(selector, timeout)
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, selector, value string) error {
	p.record("fill %s", selector)
	if p.FillFunc != nil {
		return p.FillFunc(selector, value)
	}
	return ctx.Err()
}

func (p *Page) Click(ctx context.Context, selector string) error {
	p.record("click %s", selector)
	if p.ClickFunc != nil {
		return p.ClickFunc(selector)
	}
	return ctx.Err()
}

func (p *Page) Scroll(ctx context.Context, deltaY float64) error {
	p.record("scroll %.0f", deltaY)
	if p.ScrollFunc != nil {
		return p.ScrollFunc(deltaY)
	}
	return ctx.Err()
}

func (p *Page) Evaluate(ctx context.Context, expression string, out any) error {
	p.record("evaluate")
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.EvaluateFunc == nil {
		return nil
	}
	v, err := p.EvaluateFunc(expression)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return p.CloseErr
}

// Launcher hands out Page, or fails with Err
type Launcher struct {
	Page *Page
	Err  error

	mu     sync.Mutex
	opened int
}

var _ browser.Launcher = (*Launcher)(nil)

func (l *Launcher) Open(ctx context.Context) (browser.Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	l.opened++
	return l.Page, nil
}

// Opened returns how many pages were handed out
func (l *Launcher) Opened() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opened
}
