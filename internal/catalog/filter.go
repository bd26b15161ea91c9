package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterProducts returns the products whose name contains filter.Name,
// compared case-insensitively, and whose category equals filter.Category.
// Empty filter fields match everything. The input slice is not modified.
func FilterProducts(products []Product, filter ProductFilter) []Product {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(filter.Name))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(p.Name), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}
