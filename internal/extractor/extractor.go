// Package extractor turns captured storefront markup into Product records.
package extractor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/promoscrape/internal/logger"
	"github.com/jmylchreest/promoscrape/internal/normalize"
)

// DefaultOrigin is prefixed to root-relative links and images.
const DefaultOrigin = "https://www.youcom.com.br"

// errNoDiscount marks a card without a discount indicator.
var errNoDiscount = errors.New("card has no discount indicator")

// Config holds extractor configuration.
type Config struct {
	Selectors Selectors
	Origin    string // Site origin, e.g. https://www.youcom.com.br
	BrandID   int
}

// DefaultConfig returns the youcom storefront configuration.
func DefaultConfig() Config {
	return Config{
		Selectors: DefaultSelectors(),
		Origin:    DefaultOrigin,
		BrandID:   DefaultBrandID,
	}
}

// Stats summarises what happened to the cards of one snapshot.
type Stats struct {
	Cards      int  // Cards evaluated
	Accepted   int  // New products appended
	Duplicates int  // Products already collected
	Skipped    int  // Cards without a discount indicator
	Dropped    int  // Cards with malformed numeric text
	Capped     bool // Evaluation stopped because the limit was reached
}

// Extractor parses snapshots with a fixed set of selectors.
type Extractor struct {
	m       matchers
	origin  string
	brandID int
}

// New creates an Extractor, compiling all selectors up front.
func New(cfg Config) (*Extractor, error) {
	m, err := cfg.Selectors.compile()
	if err != nil {
		return nil, err
	}
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	return &Extractor{
		m:       m,
		origin:  strings.TrimRight(cfg.Origin, "/"),
		brandID: cfg.BrandID,
	}, nil
}

// Extract evaluates every card of html in document order and adds the
// resulting products to acc. Evaluation stops as soon as acc is full.
// Per-card problems are absorbed; only unparseable markup returns an error.
func (e *Extractor) Extract(html string, acc *Accumulator) (Stats, error) {
	var stats Stats

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return stats, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	doc.FindMatcher(e.m.card).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if acc.Full() {
			stats.Capped = true
			logger.Info("maximum product limit reached", "limit", acc.Limit())
			return false
		}
		stats.Cards++

		p, err := e.product(card)
		switch {
		case errors.Is(err, errNoDiscount):
			stats.Skipped++
			return true
		case err != nil:
			stats.Dropped++
			logger.Debug("dropping card", "index", i, "error", err)
			return true
		}

		if acc.Add(p) {
			stats.Accepted++
		} else {
			stats.Duplicates++
		}
		return true
	})

	return stats, nil
}

// product builds a Product from one card. Missing fields fall back to
// sentinels; a missing discount or malformed number is an error.
func (e *Extractor) product(card *goquery.Selection) (Product, error) {
	pctNode := card.FindMatcher(e.m.discount).First()
	if pctNode.Length() == 0 {
		return Product{}, errNoDiscount
	}
	pct, err := normalize.ParsePercentage(pctNode.Text())
	if err != nil {
		return Product{}, err
	}

	price, err := e.price(card, e.m.price)
	if err != nil {
		return Product{}, err
	}
	original, err := e.price(card, e.m.originalPrice)
	if err != nil {
		return Product{}, err
	}

	name := NameNotFound
	if n := card.FindMatcher(e.m.name).First(); n.Length() > 0 {
		name = strings.TrimSpace(n.Text())
	}

	link := LinkNotFound
	if href, ok := card.FindMatcher(e.m.link).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		link = e.absolute(strings.TrimSpace(href))
	}

	img := ImageNotFound
	if src, ok := card.FindMatcher(e.m.image).First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		img = e.absolute(strings.TrimSpace(src))
	}

	return Product{
		Name:  name,
		Price: price,
		Link:  link,
		Image: img,
		Brand: e.brandID,
		Discount: Discount{
			BeforePrice: original,
			AfterPrice:  price,
			Percentage:  pct,
		},
	}, nil
}

// price returns 0 when the node is absent.
func (e *Extractor) price(card *goquery.Selection, m goquery.Matcher) (float64, error) {
	n := card.FindMatcher(m).First()
	if n.Length() == 0 {
		return 0, nil
	}
	return normalize.ParsePrice(n.Text())
}

// absolute upgrades scheme-relative URLs to https and prefixes
// root-relative paths with the site origin.
func (e *Extractor) absolute(ref string) string {
	switch {
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "http"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return e.origin + ref
	default:
		return e.origin + "/" + ref
	}
}
