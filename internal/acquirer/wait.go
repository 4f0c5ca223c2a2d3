package acquirer

import (
	"context"
	"fmt"
	"time"

	"github.com/jmylchreest/promoscrape/internal/logger"
)

// WaitAcquirer waits for the document body and captures a single snapshot.
// It suits listings that render the whole grid without scroll-triggered
// loading.
type WaitAcquirer struct {
	page Page
	cfg  Config
}

// NewWaitAcquirer creates a wait strategy driving page.
func NewWaitAcquirer(page Page, cfg Config) *WaitAcquirer {
	return &WaitAcquirer{page: page, cfg: cfg}
}

// Acquire navigates to url and waits up to WaitTimeout for the body. The
// capture that follows shares the same deadline.
func (a *WaitAcquirer) Acquire(ctx context.Context, url string) ([]Snapshot, error) {
	if err := a.page.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, a.cfg.WaitTimeout)
	defer cancel()

	if err := a.page.WaitBody(waitCtx); err != nil {
		return nil, a.fail(ctx, waitCtx, url, fmt.Errorf("failed waiting for body of %s: %w", url, err))
	}

	html, err := a.page.HTML(waitCtx)
	if err != nil {
		return nil, a.fail(ctx, waitCtx, url, fmt.Errorf("failed to capture %s: %w", url, err))
	}
	return []Snapshot{{URL: url, HTML: html, CapturedAt: time.Now()}}, nil
}

// fail maps an expired waitCtx to a timeout Failure unless the caller's
// ctx is done too.
func (a *WaitAcquirer) fail(ctx, waitCtx context.Context, url string, err error) error {
	if ctx.Err() == nil && waitCtx.Err() != nil {
		logger.Error("timed out waiting for page", "url", url, "timeout", a.cfg.WaitTimeout)
		msg := fmt.Sprintf("Timeout after %d seconds", int(a.cfg.WaitTimeout.Seconds()))
		return newFailure(url, msg, ErrTimeout)
	}
	return err
}

// Mode returns ModeWait.
func (a *WaitAcquirer) Mode() Mode {
	return ModeWait
}
