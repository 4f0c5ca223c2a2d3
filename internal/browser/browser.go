// Package browser drives a single headless Chrome tab with chromedp. The
// tab is reused for every listing URL of a run and implements
// acquirer.Page.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/promoscrape/internal/logger"
)

// Config holds browser launch settings.
type Config struct {
	ExecPath        string        // Chrome binary; discovered when empty
	UserAgent       string
	WindowWidth     int
	WindowHeight    int
	NavigateTimeout time.Duration // Bound on a single navigation
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:       defaultUserAgent,
		WindowWidth:     1920,
		WindowHeight:    1080,
		NavigateTimeout: 60 * time.Second,
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// startTab is chromedp.Run with no actions, which allocates the browser
// and attaches the first tab. Swapped in tests.
var startTab = func(ctx context.Context) error { return chromedp.Run(ctx) }

// Browser owns a Chrome process and one tab.
type Browser struct {
	config      Config
	cancelAlloc context.CancelFunc
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	closeOnce   sync.Once
}

// AllocatorOptions returns the hardened flag set for container use:
// no sandbox, no GPU or WebGL, software rendering, no notifications.
func AllocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-webgl", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("enable-unsafe-swiftshader", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// Launch starts Chrome and opens the tab. The process is tied to an
// internal context, not ctx, so it outlives per-call deadlines; call Close
// to release it.
func Launch(ctx context.Context, cfg Config) (*Browser, error) {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.WindowWidth == 0 || cfg.WindowHeight == 0 {
		cfg.WindowWidth, cfg.WindowHeight = def.WindowWidth, def.WindowHeight
	}
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = def.NavigateTimeout
	}
	if cfg.ExecPath == "" {
		cfg.ExecPath = FindChromePath()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), AllocatorOptions(cfg)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	b := &Browser{
		config:      cfg,
		cancelAlloc: cancelAlloc,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
	}

	// The first Run starts the Chrome process under the context it is
	// given, so it must be tabCtx itself and not a per-call child. ctx can
	// still abort the launch while it is in progress.
	stop := context.AfterFunc(ctx, cancelAlloc)
	err := startTab(tabCtx)
	stopped := stop()
	if err == nil && !stopped {
		err = ctx.Err()
	}
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.Debug("browser launched",
		"exec_path", cfg.ExecPath,
		"user_agent", cfg.UserAgent,
		"window", fmt.Sprintf("%dx%d", cfg.WindowWidth, cfg.WindowHeight))
	return b, nil
}

// run executes actions on the tab, honouring ctx's deadline and
// cancellation without letting ctx own the tab.
func (b *Browser) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(b.tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Navigate loads url and waits for the load event.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	logger.Debug("navigating", "url", url)
	navCtx, cancel := context.WithTimeout(ctx, b.config.NavigateTimeout)
	defer cancel()
	return b.run(navCtx, chromedp.Navigate(url))
}

// ScrollBy scrolls the window down by px pixels.
func (b *Browser) ScrollBy(ctx context.Context, px int) error {
	return b.run(ctx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d);", px), nil))
}

// ScrollHeight returns document.body.scrollHeight.
func (b *Browser) ScrollHeight(ctx context.Context) (int64, error) {
	var h int64
	err := b.run(ctx, chromedp.Evaluate("document.body.scrollHeight", &h))
	return h, err
}

// ViewportHeight returns window.innerHeight.
func (b *Browser) ViewportHeight(ctx context.Context) (int64, error) {
	var h int64
	err := b.run(ctx, chromedp.Evaluate("window.innerHeight", &h))
	return h, err
}

// WaitBody blocks until the body element is ready or ctx is done.
func (b *Browser) WaitBody(ctx context.Context) error {
	return b.run(ctx, chromedp.WaitReady("body", chromedp.ByQuery))
}

// HTML returns the outer HTML of the document element.
func (b *Browser) HTML(ctx context.Context) (string, error) {
	var html string
	err := b.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Close shuts down the tab and the Chrome process. It is safe to call
// more than once.
func (b *Browser) Close() error {
	b.closeOnce.Do(func() {
		if b.cancelTab != nil {
			b.cancelTab()
		}
		if b.cancelAlloc != nil {
			b.cancelAlloc()
		}
		logger.Debug("browser closed")
	})
	return nil
}
