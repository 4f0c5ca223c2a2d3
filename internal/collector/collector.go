// Package collector runs the acquisition and extraction pipeline over an
// ordered list of listing URLs until the product limit is reached.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/promoscrape/internal/acquirer"
	"github.com/jmylchreest/promoscrape/internal/extractor"
	"github.com/jmylchreest/promoscrape/internal/logger"
	"github.com/jmylchreest/promoscrape/internal/metrics"
)

// DefaultLimit is the maximum number of products collected per run.
const DefaultLimit = 250

// Browser is a tab the acquirer can drive plus a way to release it.
type Browser interface {
	acquirer.Page
	Close() error
}

// Launcher starts the browser for a run.
type Launcher func(ctx context.Context) (Browser, error)

// Config holds collector configuration.
type Config struct {
	Mode     acquirer.Mode
	Limit    int
	Acquirer acquirer.Config
}

// DefaultConfig returns the scroll strategy with the default limit.
func DefaultConfig() Config {
	return Config{
		Mode:     acquirer.ModeScroll,
		Limit:    DefaultLimit,
		Acquirer: acquirer.DefaultConfig(),
	}
}

// PageResult describes what happened to one listing URL.
type PageResult struct {
	URL       string
	Snapshots int   // Snapshots returned by the acquirer
	Processed int   // Snapshots fed to the extractor
	Accepted  int   // New products from this URL
	Err       error // Per-URL acquisition failure, if any
	Skipped   bool  // Not visited because the limit was already reached
}

// Result is the outcome of a run.
type Result struct {
	Products []extractor.Product
	Total    int
	Limit    int
	Pages    []PageResult
}

// Collector owns the browser and the accumulated products for a run.
type Collector struct {
	config    Config
	launch    Launcher
	extractor *extractor.Extractor
	metrics   *metrics.Metrics

	newAcquirer func(acquirer.Mode, acquirer.Page, acquirer.Config) (acquirer.Acquirer, error)
}

// New creates a Collector. launch may be nil for modes that do not need a
// browser; m may be nil to disable metrics.
func New(cfg Config, launch Launcher, ext *extractor.Extractor, m *metrics.Metrics) *Collector {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Mode == "" {
		cfg.Mode = acquirer.ModeScroll
	}
	return &Collector{
		config:      cfg,
		launch:      launch,
		extractor:   ext,
		metrics:     m,
		newAcquirer: acquirer.New,
	}
}

// Run visits urls in order. Per-URL acquisition failures are recorded and
// skipped; browser launch and navigation failures abort the run. The
// browser is closed on every return path.
func (c *Collector) Run(ctx context.Context, urls []string) (Result, error) {
	sources := uniqueSources(urls)
	logger.Debug("collector starting",
		"urls", len(sources),
		"mode", c.config.Mode,
		"limit", c.config.Limit)

	var page acquirer.Page
	if c.config.Mode.NeedsBrowser() {
		if c.launch == nil {
			return Result{}, fmt.Errorf("%s mode requires a browser launcher", c.config.Mode)
		}
		b, err := c.launch(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("failed to start browser: %w", err)
		}
		defer func() {
			if err := b.Close(); err != nil {
				logger.Warn("failed to close browser", "error", err)
			}
		}()
		page = b
	}

	acq, err := c.newAcquirer(c.config.Mode, page, c.config.Acquirer)
	if err != nil {
		return Result{}, err
	}

	acc := extractor.NewAccumulator(c.config.Limit)
	pages := make([]PageResult, 0, len(sources))

	for i, url := range sources {
		logger.Info("processing listing page", "url", url, "page", i+1, "of", len(sources))

		pr, err := c.collectURL(ctx, acq, url, acc)
		if err != nil {
			return Result{}, err
		}
		pages = append(pages, pr)

		if acc.Full() {
			if remaining := sources[i+1:]; len(remaining) > 0 {
				logger.Info("product limit reached, skipping remaining pages",
					"limit", acc.Limit(), "skipped", len(remaining))
				for _, u := range remaining {
					pages = append(pages, PageResult{URL: u, Skipped: true})
				}
			}
			break
		}
	}

	c.metrics.SetCollected(acc.Count())
	logger.Info("collection complete", "collected", acc.Count(), "limit", acc.Limit(), "pages", len(pages))

	return Result{
		Products: acc.Products(),
		Total:    acc.Count(),
		Limit:    acc.Limit(),
		Pages:    pages,
	}, nil
}

// collectURL acquires one URL and feeds its snapshots to the extractor.
// The returned error is non-nil only for fatal failures.
func (c *Collector) collectURL(ctx context.Context, acq acquirer.Acquirer, url string, acc *extractor.Accumulator) (PageResult, error) {
	pr := PageResult{URL: url}
	mode := string(acq.Mode())
	log := logger.With("url", url, "mode", mode)

	start := time.Now()
	snapshots, err := acq.Acquire(ctx, url)
	c.metrics.ObserveAcquire(time.Since(start))
	if err != nil {
		if !acquirer.IsFailure(err) {
			c.metrics.IncPage(mode, "fatal")
			return pr, fmt.Errorf("failed to acquire %s: %w", url, err)
		}
		log.Warn("acquisition failed, continuing with next page", "error", err)
		c.metrics.IncPage(mode, errorLabel(err))
		pr.Err = err
		return pr, nil
	}
	c.metrics.IncPage(mode, "ok")
	pr.Snapshots = len(snapshots)

	for _, s := range snapshots {
		if acc.Full() {
			break
		}
		stats, err := c.extractor.Extract(s.HTML, acc)
		pr.Processed++
		c.metrics.IncSnapshots()
		if err != nil {
			log.Warn("skipping unparseable snapshot", "error", err)
			continue
		}

		pr.Accepted += stats.Accepted
		c.metrics.AddCards("accepted", stats.Accepted)
		c.metrics.AddCards("duplicate", stats.Duplicates)
		c.metrics.AddCards("skipped", stats.Skipped)
		c.metrics.AddCards("dropped", stats.Dropped)

		if stats.Capped {
			break
		}
	}

	log.Debug("page processed",
		"snapshots", pr.Snapshots,
		"processed", pr.Processed,
		"accepted", pr.Accepted,
		"total", acc.Count())
	return pr, nil
}

// errorLabel maps a per-URL failure to a metric outcome label.
func errorLabel(err error) string {
	if errors.Is(err, acquirer.ErrTimeout) {
		return "timeout"
	}
	return "failed"
}
