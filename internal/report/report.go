// Package report assembles the final collection document.
package report

import (
	"fmt"

	"github.com/jmylchreest/promoscrape/internal/extractor"
)

// Report statuses.
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
)

// Report is the document written to stdout.
type Report struct {
	Status            string              `json:"status" yaml:"status"`
	Message           string              `json:"message" yaml:"message"`
	CollectedProducts int                 `json:"collected_products" yaml:"collected_products"`
	Products          []extractor.Product `json:"products" yaml:"products"`
}

// Build derives status and message from total and limit. The run is a
// success only when the limit was reached.
func Build(total int, products []extractor.Product, limit int) Report {
	if products == nil {
		products = []extractor.Product{}
	}

	r := Report{
		Status:            StatusPartial,
		Message:           fmt.Sprintf("Collected %d products", total),
		CollectedProducts: total,
		Products:          products,
	}
	if total >= limit {
		r.Status = StatusSuccess
		r.Message = "Products successfully collected"
	}
	return r
}
