// Package acquirer captures rendered storefront markup for a listing URL.
//
// Three strategies share the Acquirer interface: ScrollAcquirer scrolls a
// browser tab to trigger lazy loading, WaitAcquirer waits for the document
// body and captures once, and StaticAcquirer fetches server-rendered markup
// over plain HTTP.
package acquirer

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Mode selects an acquisition strategy.
type Mode string

const (
	ModeScroll Mode = "scroll"
	ModeWait   Mode = "wait"
	ModeStatic Mode = "static"
)

// NeedsBrowser reports whether the strategy drives a browser tab.
func (m Mode) NeedsBrowser() bool {
	return m == ModeScroll || m == ModeWait
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeScroll, ModeWait, ModeStatic:
		return m, nil
	default:
		return "", fmt.Errorf("unknown acquisition mode: %s (use 'scroll', 'wait' or 'static')", s)
	}
}

// Snapshot is the full markup of a page at one point in time.
type Snapshot struct {
	URL        string
	HTML       string
	CapturedAt time.Time
}

// Acquirer produces snapshots for a URL.
type Acquirer interface {
	// Acquire returns the snapshots captured for url in capture order.
	// A *Failure means nothing usable was captured for this URL only;
	// any other error means the browser itself is unusable.
	Acquire(ctx context.Context, url string) ([]Snapshot, error)

	// Mode returns the strategy name.
	Mode() Mode
}

// Page is the browser tab a strategy drives.
type Page interface {
	Navigate(ctx context.Context, url string) error
	ScrollBy(ctx context.Context, px int) error
	ScrollHeight(ctx context.Context) (int64, error)
	ViewportHeight(ctx context.Context) (int64, error)
	WaitBody(ctx context.Context) error
	HTML(ctx context.Context) (string, error)
}

// Config holds settings for all strategies.
type Config struct {
	ScrollStep     int           // Pixels per scroll step
	ScrollPause    time.Duration // Pause after each step for lazy content
	ProgressAfter  time.Duration // Emit a progress notice after this long
	ScrollTimeout  time.Duration // Give up scrolling after this long
	WaitTimeout    time.Duration // Bound on waiting for the document body
	UserAgent      string        // Static mode only
	RequestTimeout time.Duration // Static mode only
}

// DefaultConfig returns the timings tuned for the youcom storefront.
func DefaultConfig() Config {
	return Config{
		ScrollStep:     300,
		ScrollPause:    500 * time.Millisecond,
		ProgressAfter:  25 * time.Second,
		ScrollTimeout:  90 * time.Second,
		WaitTimeout:    30 * time.Second,
		UserAgent:      defaultUserAgent,
		RequestTimeout: 30 * time.Second,
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// New creates the strategy for mode. Browser strategies require a page.
func New(mode Mode, page Page, cfg Config) (Acquirer, error) {
	def := DefaultConfig()
	if cfg.ScrollStep <= 0 {
		cfg.ScrollStep = def.ScrollStep
	}
	if cfg.ScrollTimeout <= 0 {
		cfg.ScrollTimeout = def.ScrollTimeout
	}
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = def.WaitTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	if mode.NeedsBrowser() && page == nil {
		return nil, fmt.Errorf("%s mode requires a browser page", mode)
	}

	switch mode {
	case ModeScroll:
		return NewScrollAcquirer(page, cfg), nil
	case ModeWait:
		return NewWaitAcquirer(page, cfg), nil
	case ModeStatic:
		return NewStaticAcquirer(cfg), nil
	default:
		return nil, fmt.Errorf("unknown acquisition mode: %s", mode)
	}
}

// ErrTimeout indicates a strategy ran out of time for a URL.
// Check with errors.Is(err, acquirer.ErrTimeout).
var ErrTimeout = errors.New("acquisition timeout")

// Failure is the per-URL failure signal. The collector skips the URL and
// carries on with the next one.
type Failure struct {
	URL     string
	Status  string // Always "error"
	Message string
	Action  string // Always "stop_script"
	Err     error
}

func newFailure(url, message string, err error) *Failure {
	return &Failure{
		URL:     url,
		Status:  "error",
		Message: message,
		Action:  "stop_script",
		Err:     err,
	}
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.URL, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// IsFailure reports whether err is a recoverable per-URL failure.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// sleepContext pauses for d unless ctx is done first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
