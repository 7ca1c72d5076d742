// Package query implements the canonical filter+page contract shared by
// every browsing surface: admin table, tier catalog, category drill-down.
//
// The HTTP surface is stateless, so the between-fetch part of the contract
// (changing any filter dimension resets to page 1) is applied by the caller;
// Advance is its reference implementation and the behavior every client is
// expected to match.
package query

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"catalog-service/internal/catalog/model"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrBadPriceType = errors.New("unknown price type")

// Filter is the canonical filter tuple. PriceType is mandatory: it selects
// the single price surfaced to the caller.
type Filter struct {
	PriceType      model.PriceType `json:"priceType"`
	ParentCategory string          `json:"parentCategory,omitempty"`
	Subcategory    string          `json:"subcategory,omitempty"`
	Search         string          `json:"search,omitempty"`
	Page           int             `json:"page"`
	Limit          int             `json:"limit"`
}

// ParseFilter reads the filter tuple off query params, applying defaults and
// clamps.
func ParseFilter(q url.Values) (Filter, error) {
	pt, ok := model.ParsePriceType(q.Get("priceType"))
	if !ok {
		return Filter{}, fmt.Errorf("%w: %q", ErrBadPriceType, q.Get("priceType"))
	}
	f := Filter{
		PriceType:      pt,
		ParentCategory: strings.TrimSpace(q.Get("parentCategory")),
		Subcategory:    strings.TrimSpace(q.Get("subcategory")),
		Search:         strings.TrimSpace(q.Get("search")),
		Page:           atoi(q.Get("page"), 1),
		Limit:          atoi(q.Get("limit"), DefaultLimit),
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f, nil
}

// Advance carries a filter from one fetch to the next: changing any
// dimension other than the page number resets to page 1 (a page-size change
// included). The server never sees consecutive filters, so this is the
// normative client-side step; see the package comment.
func Advance(prev, next Filter) Filter {
	if prev.PriceType != next.PriceType ||
		prev.ParentCategory != next.ParentCategory ||
		prev.Subcategory != next.Subcategory ||
		prev.Search != next.Search ||
		prev.Limit != next.Limit {
		next.Page = 1
	}
	return next
}

// TierProduct is the customer-facing projection: only the caller's tier
// price, never the full price map.
type TierProduct struct {
	ID             string  `json:"_id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	ParentCategory string  `json:"parentCategory"`
	Subcategory    string  `json:"subcategory"`
	Unit           string  `json:"unit"`
	Price          float64 `json:"price"`
	Image          string  `json:"image,omitempty"`
}

type Result struct {
	Products   []TierProduct    `json:"products"`
	Pagination model.Pagination `json:"pagination"`
	Filter     Filter           `json:"filter"`
}

// Store is the slice of the Product Store client the query layer needs.
type Store interface {
	PageByPriceType(ctx context.Context, priceType model.PriceType, page, limit int, search string) (model.ProductPage, error)
	PageByParent(ctx context.Context, parent string, page, limit int, priceType, subcategory, search string) (model.ProductPage, error)
}

type Service struct {
	store Store
}

func NewService(st Store) *Service { return &Service{store: st} }

// Fetch resolves one catalog page. The search term is sent server-side and
// re-applied over the returned page as a defensive filter, since legacy
// store deployments ignore it.
func (s *Service) Fetch(ctx context.Context, f Filter) (Result, error) {
	var (
		page model.ProductPage
		err  error
	)
	if f.ParentCategory != "" {
		page, err = s.store.PageByParent(ctx, f.ParentCategory, f.Page, f.Limit, string(f.PriceType), f.Subcategory, f.Search)
	} else {
		page, err = s.store.PageByPriceType(ctx, f.PriceType, f.Page, f.Limit, f.Search)
	}
	if err != nil {
		return Result{}, err
	}

	products := make([]TierProduct, 0, len(page.Products))
	for _, p := range page.Products {
		if !matchesSearch(p, f.Search) {
			continue
		}
		products = append(products, TierProduct{
			ID:             p.ID,
			Code:           p.Code,
			Name:           p.Name,
			ParentCategory: p.ParentCategory,
			Subcategory:    p.Subcategory,
			Unit:           p.Unit,
			Price:          p.Price(f.PriceType),
			Image:          p.Image,
		})
	}
	return Result{Products: products, Pagination: page.Pagination, Filter: f}, nil
}

// matchesSearch — case-insensitive substring match on code or name.
func matchesSearch(p model.Product, term string) bool {
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Code), t) ||
		strings.Contains(strings.ToLower(p.Name), t)
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
