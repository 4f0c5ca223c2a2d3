package extractor

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Selectors is the site-specific markup contract. Every field is a CSS
// selector; all but Card are evaluated relative to a single card.
type Selectors struct {
	Card          string `mapstructure:"card" yaml:"card" validate:"required"`
	Discount      string `mapstructure:"discount" yaml:"discount" validate:"required"`
	Name          string `mapstructure:"name" yaml:"name" validate:"required"`
	Price         string `mapstructure:"price" yaml:"price" validate:"required"`
	OriginalPrice string `mapstructure:"original_price" yaml:"original_price" validate:"required"`
	Link          string `mapstructure:"link" yaml:"link" validate:"required"`
	Image         string `mapstructure:"image" yaml:"image" validate:"required"`
}

// DefaultSelectors returns the selectors for the youcom.com.br promotion
// grid. The storefront is styled with utility classes, so cards and fields
// are identified by their exact class attribute.
func DefaultSelectors() Selectors {
	return Selectors{
		Card:          `div[class="relative w-full overflow-hidden"]`,
		Discount:      `span[class="font-normal leading-s tracking-[-0.01em]"]`,
		Name:          `p[class="h-full w-full lowercase leading-[20px] line-clamp-1 text-s"]`,
		Price:         `span[class="font-bold text-primary-main"]`,
		OriginalPrice: `span[class="mr-m text-primary-light line-through block"]`,
		Link:          `a[href]`,
		Image:         `img[class="bg-neutrals-2 object-cover"]`,
	}
}

type matchers struct {
	card, discount, name, price, originalPrice, link, image cascadia.Selector
}

func (s Selectors) compile() (matchers, error) {
	var m matchers
	fields := []struct {
		name string
		sel  string
		dst  *cascadia.Selector
	}{
		{"card", s.Card, &m.card},
		{"discount", s.Discount, &m.discount},
		{"name", s.Name, &m.name},
		{"price", s.Price, &m.price},
		{"original_price", s.OriginalPrice, &m.originalPrice},
		{"link", s.Link, &m.link},
		{"image", s.Image, &m.image},
	}
	for _, f := range fields {
		if f.sel == "" {
			return matchers{}, fmt.Errorf("selector %s is empty", f.name)
		}
		compiled, err := cascadia.Compile(f.sel)
		if err != nil {
			return matchers{}, fmt.Errorf("selector %s %q: %w", f.name, f.sel, err)
		}
		*f.dst = compiled
	}
	return m, nil
}
