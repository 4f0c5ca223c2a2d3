package acquirer

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/promoscrape/internal/logger"
)

// ScrollAcquirer scrolls the page in fixed steps and captures the markup
// after every step until the end of the page is reached.
type ScrollAcquirer struct {
	page Page
	cfg  Config

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewScrollAcquirer creates a scroll strategy driving page.
func NewScrollAcquirer(page Page, cfg Config) *ScrollAcquirer {
	return &ScrollAcquirer{
		page:  page,
		cfg:   cfg,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Acquire navigates to url and scrolls until the scrolled offset is within
// one viewport of the document height. The step that detects the end of
// the page captures nothing. Scrolling for longer than ScrollTimeout
// returns a *Failure wrapping ErrTimeout and discards all snapshots; the
// same limit is a deadline on every browser call made while scrolling.
func (a *ScrollAcquirer) Acquire(ctx context.Context, url string) ([]Snapshot, error) {
	if err := a.page.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	scrollCtx, cancel := context.WithTimeout(ctx, a.cfg.ScrollTimeout)
	defer cancel()

	var (
		snapshots []Snapshot
		offset    int64
		notified  bool
		start     = a.now()
	)

	for {
		if err := a.page.ScrollBy(scrollCtx, a.cfg.ScrollStep); err != nil {
			return nil, a.fail(ctx, scrollCtx, url, fmt.Errorf("failed to scroll %s: %w", url, err))
		}
		offset += int64(a.cfg.ScrollStep)

		if err := a.sleep(scrollCtx, a.cfg.ScrollPause); err != nil {
			return nil, a.fail(ctx, scrollCtx, url, err)
		}

		elapsed := a.now().Sub(start)
		if !notified && a.cfg.ProgressAfter > 0 && elapsed > a.cfg.ProgressAfter {
			logger.Info("scrolling in progress", "url", url, "elapsed", elapsed.Round(time.Second), "snapshots", len(snapshots))
			notified = true
		}

		height, err := a.page.ScrollHeight(scrollCtx)
		if err != nil {
			return nil, a.fail(ctx, scrollCtx, url, fmt.Errorf("failed to read scroll height: %w", err))
		}
		viewport, err := a.page.ViewportHeight(scrollCtx)
		if err != nil {
			return nil, a.fail(ctx, scrollCtx, url, fmt.Errorf("failed to read viewport height: %w", err))
		}
		if offset >= height-viewport {
			logger.Info("end of page reached", "url", url, "offset", offset, "snapshots", len(snapshots))
			return snapshots, nil
		}

		if elapsed > a.cfg.ScrollTimeout {
			return nil, a.timeout(url)
		}

		html, err := a.page.HTML(scrollCtx)
		if err != nil {
			return nil, a.fail(ctx, scrollCtx, url, fmt.Errorf("failed to capture %s: %w", url, err))
		}
		snapshots = append(snapshots, Snapshot{URL: url, HTML: html, CapturedAt: a.now()})
		logger.Debug("snapshot captured", "url", url, "offset", offset, "size", humanize.Bytes(uint64(len(html))))
	}
}

// fail turns err into a timeout Failure when scrollCtx expired while the
// caller's ctx is still live. Anything else is returned unchanged.
func (a *ScrollAcquirer) fail(ctx, scrollCtx context.Context, url string, err error) error {
	if ctx.Err() == nil && scrollCtx.Err() != nil {
		return a.timeout(url)
	}
	return err
}

func (a *ScrollAcquirer) timeout(url string) error {
	logger.Error("scroll timeout reached", "url", url, "timeout", a.cfg.ScrollTimeout)
	msg := fmt.Sprintf("Timeout after %d seconds", int(a.cfg.ScrollTimeout.Seconds()))
	return newFailure(url, msg, ErrTimeout)
}

// Mode returns ModeScroll.
func (a *ScrollAcquirer) Mode() Mode {
	return ModeScroll
}
