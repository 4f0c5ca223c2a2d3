package extractor

// Sentinel values substituted for missing card fields.
const (
	NameNotFound  = "Name not found"
	LinkNotFound  = "Link not found"
	ImageNotFound = "Img not found"
)

// DefaultBrandID identifies the youcom storefront in the downstream catalog.
const DefaultBrandID = 23

// Product is one discounted listing. It is comparable; two products are
// duplicates when every field is equal.
type Product struct {
	Name     string   `json:"name" yaml:"name"`
	Price    float64  `json:"price" yaml:"price"`
	Link     string   `json:"link" yaml:"link"`
	Image    string   `json:"img" yaml:"img"`
	Brand    int      `json:"brand" yaml:"brand"`
	Discount Discount `json:"discount" yaml:"discount"`
}

// Discount describes the markdown applied to a product.
type Discount struct {
	BeforePrice float64 `json:"before_price" yaml:"before_price"`
	AfterPrice  float64 `json:"after_price" yaml:"after_price"`
	Percentage  int     `json:"percentage" yaml:"percentage"`
}

// Accumulator collects unique products for a whole run up to a fixed limit.
// It is not safe for concurrent use.
type Accumulator struct {
	limit    int
	products []Product
	seen     map[Product]struct{}
}

// NewAccumulator creates an empty accumulator that holds at most limit products.
func NewAccumulator(limit int) *Accumulator {
	return &Accumulator{
		limit:    limit,
		products: make([]Product, 0),
		seen:     make(map[Product]struct{}),
	}
}

// Add appends p unless an identical product was already collected or the
// limit was reached. It reports whether p was appended.
func (a *Accumulator) Add(p Product) bool {
	if a.Full() {
		return false
	}
	if _, dup := a.seen[p]; dup {
		return false
	}
	a.seen[p] = struct{}{}
	a.products = append(a.products, p)
	return true
}

// Full reports whether the limit has been reached.
func (a *Accumulator) Full() bool {
	return len(a.products) >= a.limit
}

// Count returns the number of collected products.
func (a *Accumulator) Count() int { return len(a.products) }

// Limit returns the maximum number of products.
func (a *Accumulator) Limit() int { return a.limit }

// Products returns the collected products in first-seen order.
func (a *Accumulator) Products() []Product {
	out := make([]Product, len(a.products))
	copy(out, a.products)
	return out
}
