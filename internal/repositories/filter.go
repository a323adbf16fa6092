package repositories

import (
	"strings"

	"quickbuy/internal/models"
)

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64
	Max float64
}

// Filter is a store-neutral product predicate. Every non-zero field adds one
// clause and clauses are combined with AND. The zero Filter matches everything.
type Filter struct {
	// CategoryIDs restricts to products whose category is in the set.
	CategoryIDs []string
	// Price restricts to products priced within the range.
	Price *PriceRange
	// Keyword matches a case-insensitive substring of name OR description.
	Keyword string
	// ExcludeID drops one product by identity.
	ExcludeID string
}

// IsEmpty reports whether the filter has no clauses.
func (f Filter) IsEmpty() bool {
	return len(f.CategoryIDs) == 0 && f.Price == nil && f.Keyword == "" && f.ExcludeID == ""
}

// Matches evaluates the filter against a single product.
func (f Filter) Matches(p *models.Product) bool {
	if len(f.CategoryIDs) > 0 && !containsString(f.CategoryIDs, p.CategoryID) {
		return false
	}
	if f.Price != nil && (p.Price < f.Price.Min || p.Price > f.Price.Max) {
		return false
	}
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(p.Name), kw) && !strings.Contains(strings.ToLower(p.Description), kw) {
			return false
		}
	}
	if f.ExcludeID != "" && p.ID == f.ExcludeID {
		return false
	}
	return true
}

// QueryOptions shapes the result set of ProductRepository.Find.
type QueryOptions struct {
	OmitPhoto    bool
	WithCategory bool
	NewestFirst  bool
	Skip         int
	// Limit caps the result; zero means unlimited.
	Limit int
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// window applies skip and limit to an already ordered result.
// A negative skip is treated as zero and a non-positive limit as unlimited.
func window(products []models.Product, skip, limit int) []models.Product {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(products) {
		return []models.Product{}
	}
	products = products[skip:]
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products
}
