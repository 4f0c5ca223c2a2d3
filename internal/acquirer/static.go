package acquirer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/promoscrape/internal/logger"
)

// StaticAcquirer fetches markup over HTTP with Colly. It only sees what the
// server renders, so it is useful for storefront versions that do not load
// the grid client-side.
type StaticAcquirer struct {
	cfg       Config
	transport http.RoundTripper
}

// NewStaticAcquirer creates a static strategy.
func NewStaticAcquirer(cfg Config) *StaticAcquirer {
	return &StaticAcquirer{cfg: cfg}
}

// Acquire fetches url once. Transport and HTTP errors are per-URL failures.
func (a *StaticAcquirer) Acquire(ctx context.Context, url string) ([]Snapshot, error) {
	c := colly.NewCollector(
		colly.UserAgent(a.cfg.UserAgent),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(a.cfg.RequestTimeout)
	if a.transport != nil {
		c.WithTransport(a.transport)
	}

	var (
		html     string
		status   int
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		html = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	err := c.Visit(url)
	if err == nil {
		err = fetchErr
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			err = fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		logger.Warn("static fetch failed", "url", url, "status", status, "error", err)
		return nil, newFailure(url, fmt.Sprintf("fetch failed: %v", err), err)
	}

	logger.Debug("static fetch complete", "url", url, "status", status, "size", len(html))
	return []Snapshot{{URL: url, HTML: html, CapturedAt: time.Now()}}, nil
}

// Mode returns ModeStatic.
func (a *StaticAcquirer) Mode() Mode {
	return ModeStatic
}
