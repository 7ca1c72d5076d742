package query

import (
	"sort"

	"catalog-service/internal/catalog/model"
)

// CategoryStats summarizes a loaded category for the admin dashboard.
type CategoryStats struct {
	Name             string   `json:"name"`
	TotalProducts    int      `json:"totalProducts"`
	SubcategoryCount int      `json:"subcategoryCount"`
	Subcategories    []string `json:"subcategories"`
	MinPrice         float64  `json:"minPrice"`
	MaxPrice         float64  `json:"maxPrice"`
	AvgPrice         float64  `json:"avgPrice"`
}

// ComputeStats aggregates price stats across all tiers of a loaded category;
// zero prices are treated as "contact for price" and excluded.
func ComputeStats(cat model.Category) CategoryStats {
	stats := CategoryStats{Name: cat.Name}
	if cat.Subcategories == nil {
		return stats
	}

	subs := make([]string, 0, len(cat.Subcategories))
	var sum float64
	var priced int
	for sub, products := range cat.Subcategories {
		if sub != model.NoSubcategory {
			subs = append(subs, sub)
		}
		for _, p := range products {
			stats.TotalProducts++
			for _, v := range p.Prices {
				if v <= 0 {
					continue
				}
				if stats.MinPrice == 0 || v < stats.MinPrice {
					stats.MinPrice = v
				}
				if v > stats.MaxPrice {
					stats.MaxPrice = v
				}
				sum += v
				priced++
			}
		}
	}
	sort.Strings(subs)
	stats.Subcategories = subs
	stats.SubcategoryCount = len(subs)
	if priced > 0 {
		stats.AvgPrice = sum / float64(priced)
	}
	return stats
}
