package acquirer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/promoscrape/internal/logger"
)

// --- ScrollAcquirer Tests ---

func TestScrollAcquirer_CapturesUntilEndOfPage(t *testing.T) {
	page := &fakePage{height: 2000, viewport: 800}
	a := newTestScroll(page, &fakeClock{t: time.Unix(0, 0)})

	snapshots, err := a.Acquire(context.Background(), "https://shop.example.com/promo?pg=1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	// Offsets 300, 600 and 900 are captured; 1200 reaches height-viewport.
	if len(snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snapshots))
	}
	if page.scrolls != 4 {
		t.Errorf("expected 4 scroll steps, got %d", page.scrolls)
	}
	if !strings.Contains(snapshots[2].HTML, "capture 3") {
		t.Errorf("snapshots out of order: %q", snapshots[2].HTML)
	}
	for _, s := range snapshots {
		if s.URL != "https://shop.example.com/promo?pg=1" {
			t.Errorf("unexpected snapshot URL %q", s.URL)
		}
	}
}

func TestScrollAcquirer_ShortPageCapturesNothing(t *testing.T) {
	page := &fakePage{height: 700, viewport: 800}
	a := newTestScroll(page, &fakeClock{})

	snapshots, err := a.Acquire(context.Background(), "https://shop.example.com/")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if len(snapshots) != 0 {
		t.Errorf("expected no snapshots, got %d", len(snapshots))
	}
}

func TestScrollAcquirer_Timeout(t *testing.T) {
	page := &fakePage{height: 1 << 40, viewport: 800}
	a := newTestScroll(page, &fakeClock{t: time.Unix(0, 0)})

	snapshots, err := a.Acquire(context.Background(), "https://shop.example.com/endless")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if snapshots != nil {
		t.Errorf("expected no snapshots on timeout, got %d", len(snapshots))
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("expected *Failure, got %T", err)
	}
	if f.Status != "error" || f.Action != "stop_script" {
		t.Errorf("unexpected failure signal: %+v", f)
	}
	if f.Message != "Timeout after 90 seconds" {
		t.Errorf("unexpected message %q", f.Message)
	}
	// 0.5s per step: the first step past 90s is the 181st.
	if page.scrolls != 181 {
		t.Errorf("expected 181 scroll steps, got %d", page.scrolls)
	}
}

func TestScrollAcquirer_HungCaptureHitsDeadline(t *testing.T) {
	page := &fakePage{height: 5000, viewport: 800, html: blockUntilDone}
	cfg := DefaultConfig()
	cfg.ScrollTimeout = 50 * time.Millisecond
	a := NewScrollAcquirer(page, cfg)
	a.sleep = (&fakeClock{t: time.Unix(0, 0)}).Sleep

	done := make(chan error, 1)
	go func() {
		_, err := a.Acquire(context.Background(), "https://shop.example.com/hung")
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrTimeout) || !IsFailure(err) {
			t.Fatalf("expected timeout failure, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not return after the scroll timeout")
	}
}

func TestScrollAcquirer_ParentCancelledIsNotFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	page := &fakePage{height: 5000, viewport: 800, html: func(ctx context.Context) (string, error) {
		cancel()
		return blockUntilDone(ctx)
	}}
	a := newTestScroll(page, &fakeClock{t: time.Unix(0, 0)})

	_, err := a.Acquire(ctx, "https://shop.example.com/")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsFailure(err) {
		t.Error("cancellation must not be reported as a per-URL failure")
	}
}

func TestScrollAcquirer_ProgressNoticeOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.Init(logger.Options{Output: buf})
	defer logger.Init(logger.Options{})

	page := &fakePage{height: 1 << 40, viewport: 800}
	a := newTestScroll(page, &fakeClock{t: time.Unix(0, 0)})
	_, _ = a.Acquire(context.Background(), "https://shop.example.com/endless")

	if n := strings.Count(buf.String(), "scrolling in progress"); n != 1 {
		t.Errorf("expected one progress notice, got %d", n)
	}
	if !strings.Contains(buf.String(), "scroll timeout reached") {
		t.Error("expected timeout to be logged")
	}
}

func TestScrollAcquirer_NavigationErrorIsFatal(t *testing.T) {
	page := &fakePage{navErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	a := newTestScroll(page, &fakeClock{})

	_, err := a.Acquire(context.Background(), "https://nowhere.invalid/")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsFailure(err) {
		t.Error("navigation errors must not be per-URL failures")
	}
}

func TestScrollAcquirer_ScrollErrorIsFatal(t *testing.T) {
	page := &fakePage{height: 5000, viewport: 800, scrollErr: errors.New("target closed")}
	a := newTestScroll(page, &fakeClock{})

	_, err := a.Acquire(context.Background(), "https://shop.example.com/")
	if err == nil || IsFailure(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestScrollAcquirer_Mode(t *testing.T) {
	if m := NewScrollAcquirer(&fakePage{}, DefaultConfig()).Mode(); m != ModeScroll {
		t.Errorf("Mode() = %q", m)
	}
}
