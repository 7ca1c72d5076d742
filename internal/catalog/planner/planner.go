// Package planner builds the product-level remap plan for merging one
// category into another. Pure computation: no network, no cache writes.
package planner

import (
	"errors"
	"sort"

	"catalog-service/internal/catalog/model"
	"catalog-service/internal/catalog/similarity"
)

var (
	ErrSameCategory = errors.New("cannot merge a category into itself")
	ErrNotLoaded    = errors.New("category detail not loaded")
)

// Build maps every product of `from` onto `to`. A product's subcategory is
// remapped to the best-scoring target label when that score reaches the
// threshold; otherwise the product keeps its own label and only the parent
// changes. Ties on the maximum score resolve to the lexicographically
// smallest target label; iteration is fully ordered, so identical snapshots
// always yield identical plans.
func Build(from, to model.Category, threshold float64) (*model.ReconciliationPlan, error) {
	if from.Name == to.Name {
		return nil, ErrSameCategory
	}
	if !from.Loaded || from.Subcategories == nil || !to.Loaded || to.Subcategories == nil {
		return nil, ErrNotLoaded
	}

	targets := make([]string, 0, len(to.Subcategories))
	for label := range to.Subcategories {
		targets = append(targets, label)
	}
	sort.Strings(targets)

	sources := make([]string, 0, len(from.Subcategories))
	for label := range from.Subcategories {
		sources = append(sources, label)
	}
	sort.Strings(sources)

	plan := &model.ReconciliationPlan{
		FromCategory: from.Name,
		ToCategory:   to.Name,
		Updates:      make([]model.ProductUpdate, 0, from.ProductCount),
	}

	for _, oldSubcat := range sources {
		newSubcat, score, matched := bestMatch(oldSubcat, targets, threshold)
		for _, p := range from.Subcategories[oldSubcat] {
			plan.Updates = append(plan.Updates, model.ProductUpdate{
				ProductID:     p.ID,
				ProductCode:   p.Code,
				ProductName:   p.Name,
				OldParent:     from.Name,
				NewParent:     to.Name,
				OldSubcat:     oldSubcat,
				NewSubcat:     newSubcat,
				SubcatChanged: matched,
				Similarity:    score,
			})
		}
	}
	return plan, nil
}

// BuildMove relocates every product of `from` under a new parent without
// touching subcategory labels. Used for category rename/merge-without-remap.
func BuildMove(from model.Category, toName string) (*model.ReconciliationPlan, error) {
	if from.Name == toName {
		return nil, ErrSameCategory
	}
	if !from.Loaded || from.Subcategories == nil {
		return nil, ErrNotLoaded
	}

	sources := make([]string, 0, len(from.Subcategories))
	for label := range from.Subcategories {
		sources = append(sources, label)
	}
	sort.Strings(sources)

	plan := &model.ReconciliationPlan{
		FromCategory: from.Name,
		ToCategory:   toName,
		Updates:      make([]model.ProductUpdate, 0, from.ProductCount),
	}
	for _, subcat := range sources {
		for _, p := range from.Subcategories[subcat] {
			plan.Updates = append(plan.Updates, model.ProductUpdate{
				ProductID:     p.ID,
				ProductCode:   p.Code,
				ProductName:   p.Name,
				OldParent:     from.Name,
				NewParent:     toName,
				OldSubcat:     subcat,
				NewSubcat:     subcat,
				SubcatChanged: false,
				Similarity:    100,
			})
		}
	}
	return plan, nil
}

// bestMatch scans the sorted target labels; strict greater-than keeps the
// first (smallest) label among equal scores.
func bestMatch(label string, targets []string, threshold float64) (string, float64, bool) {
	best := -1.0
	bestLabel := ""
	for _, t := range targets {
		if s := similarity.Score(label, t); s > best {
			best = s
			bestLabel = t
		}
	}
	if best >= threshold && bestLabel != "" {
		return bestLabel, best, true
	}
	if best < 0 {
		best = 0 // target has no subcategories yet
	}
	return label, best, false
}
