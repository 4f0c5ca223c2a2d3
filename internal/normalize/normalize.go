// Package normalize converts locale-formatted price and percentage text
// scraped from storefront markup into numeric values.
//
// Prices follow the pt-BR convention: "." groups thousands and "," marks
// the decimal part, e.g. "R$ 1.234,56".
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed is returned when no usable digits remain after stripping.
// Check with errors.Is(err, normalize.ErrMalformed).
var ErrMalformed = errors.New("malformed numeric text")

// ParsePrice converts text such as "R$ 1.234,56" into 1234.56.
// Everything except digits and commas is discarded; the last comma is the
// decimal separator. The result is rounded to two decimal places.
func ParsePrice(raw string) (float64, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()

	if i := strings.LastIndexByte(s, ','); i >= 0 {
		s = strings.ReplaceAll(s[:i], ",", "") + "." + s[i+1:]
	}
	if strings.Trim(s, ".") == "" {
		return 0, fmt.Errorf("%w: price %q", ErrMalformed, raw)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q: %v", ErrMalformed, raw, err)
	}
	return Round2(v), nil
}

// ParsePercentage converts text such as "-25%" into 25.
func ParsePercentage(raw string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, fmt.Errorf("%w: percentage %q", ErrMalformed, raw)
	}

	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: percentage %q: %v", ErrMalformed, raw, err)
	}
	return v, nil
}

// Round2 rounds v to currency minor-unit precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
