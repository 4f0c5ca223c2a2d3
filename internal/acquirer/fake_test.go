package acquirer

import (
	"context"
	"fmt"
	"time"
)

// fakeClock is advanced by the fake sleep and by page operations.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	c.t = c.t.Add(d)
	return nil
}

// fakePage simulates a browser tab with a fixed document height.
type fakePage struct {
	height   int64
	viewport int64

	navErr    error
	scrollErr error
	waitBody  func(ctx context.Context) error
	html      func(ctx context.Context) (string, error)

	navigated []string
	scrolls   int
	captures  int
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	if p.navErr != nil {
		return p.navErr
	}
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) ScrollBy(_ context.Context, _ int) error {
	if p.scrollErr != nil {
		return p.scrollErr
	}
	p.scrolls++
	return nil
}

func (p *fakePage) ScrollHeight(context.Context) (int64, error) { return p.height, nil }

func (p *fakePage) ViewportHeight(context.Context) (int64, error) { return p.viewport, nil }

func (p *fakePage) WaitBody(ctx context.Context) error {
	if p.waitBody != nil {
		return p.waitBody(ctx)
	}
	return nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	if p.html != nil {
		return p.html(ctx)
	}
	p.captures++
	return fmt.Sprintf("<html><body>capture %d</body></html>", p.captures), nil
}

func newTestScroll(page Page, clock *fakeClock) *ScrollAcquirer {
	a := NewScrollAcquirer(page, DefaultConfig())
	a.now = clock.Now
	a.sleep = clock.Sleep
	return a
}

// blockUntilDone models a tab that stops responding.
func blockUntilDone(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}
