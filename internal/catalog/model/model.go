package model

import (
	"encoding/json"
	"strings"
)

// PriceType — closed set of customer price tiers.
type PriceType string

const (
	PriceBBCL     PriceType = "BBCL"
	PriceBBPT     PriceType = "BBPT"
	PriceBL       PriceType = "BL"
	PriceBLVIP    PriceType = "BLVIP"
	PriceHONDA247 PriceType = "HONDA247"
)

var AllPriceTypes = []PriceType{PriceBBCL, PriceBBPT, PriceBL, PriceBLVIP, PriceHONDA247}

func ParsePriceType(s string) (PriceType, bool) {
	up := PriceType(strings.ToUpper(strings.TrimSpace(s)))
	for _, pt := range AllPriceTypes {
		if pt == up {
			return pt, true
		}
	}
	return "", false
}

// NoSubcategory — sentinel bucket for products without a subcategory label.
const NoSubcategory = "Chưa phân loại"

type Product struct {
	ID             string                `json:"_id"`
	Code           string                `json:"code"`
	Name           string                `json:"name"`
	ParentCategory string                `json:"parentCategory"`
	Subcategory    string                `json:"subcategory"`
	Unit           string                `json:"unit"`
	Prices         map[PriceType]float64 `json:"prices"`
	Image          string                `json:"image,omitempty"`
}

// The store answers with two price layouts: the current nested `prices` map
// (keys sometimes lowercased, e.g. "honda247") and a legacy flat layout with
// tier fields on the product itself. Both normalize into Prices.
func (p *Product) UnmarshalJSON(data []byte) error {
	type alias Product
	aux := struct {
		*alias
		Prices map[string]float64 `json:"prices"`
		BBCL   *float64           `json:"BBCL"`
		BBPT   *float64           `json:"BBPT"`
		BL     *float64           `json:"BL"`
		BLVIP  *float64           `json:"BLVIP"`
		HONDA  *float64           `json:"HONDA247"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Prices = make(map[PriceType]float64, len(AllPriceTypes))
	for k, v := range aux.Prices {
		if pt, ok := ParsePriceType(k); ok {
			p.Prices[pt] = v
		}
	}
	legacy := map[PriceType]*float64{
		PriceBBCL: aux.BBCL, PriceBBPT: aux.BBPT, PriceBL: aux.BL,
		PriceBLVIP: aux.BLVIP, PriceHONDA247: aux.HONDA,
	}
	for pt, v := range legacy {
		if _, have := p.Prices[pt]; !have && v != nil {
			p.Prices[pt] = *v
		}
	}
	return nil
}

// Price returns the tier value surfaced to a customer of the given type.
func (p *Product) Price(pt PriceType) float64 { return p.Prices[pt] }

// SubcategoryOrDefault maps a missing/empty label to the sentinel bucket.
func (p *Product) SubcategoryOrDefault() string {
	if strings.TrimSpace(p.Subcategory) == "" {
		return NoSubcategory
	}
	return p.Subcategory
}

// Category — parent category node of the catalog graph. Subcategories is nil
// until detail-loaded; once Loaded is true it is a complete partition of the
// category's products by subcategory label.
type Category struct {
	Name          string               `json:"name"`
	ProductCount  int                  `json:"productCount"`
	Subcategories map[string][]Product `json:"subcategories,omitempty"`
	Loaded        bool                 `json:"loaded"`
}

// Products flattens the loaded partition.
func (c *Category) Products() []Product {
	if c.Subcategories == nil {
		return nil
	}
	out := make([]Product, 0, c.ProductCount)
	for _, ps := range c.Subcategories {
		out = append(out, ps...)
	}
	return out
}

type ProductUpdate struct {
	ProductID     string  `json:"productId"`
	ProductCode   string  `json:"productCode"`
	ProductName   string  `json:"productName"`
	OldParent     string  `json:"oldParent"`
	NewParent     string  `json:"newParent"`
	OldSubcat     string  `json:"oldSubcat"`
	NewSubcat     string  `json:"newSubcat"`
	SubcatChanged bool    `json:"subcatChanged"`
	Similarity    float64 `json:"similarity"`
}

// ReconciliationPlan — immutable remap plan built per drag gesture,
// consumed exactly once on confirm.
type ReconciliationPlan struct {
	FromCategory string          `json:"fromCategory"`
	ToCategory   string          `json:"toCategory"`
	Updates      []ProductUpdate `json:"updates"`
}

// ChangedCount counts updates whose subcategory was remapped.
func (p *ReconciliationPlan) ChangedCount() int {
	n := 0
	for _, u := range p.Updates {
		if u.SubcatChanged {
			n++
		}
	}
	return n
}

type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalProducts   int  `json:"totalProducts"`
	ProductsPerPage int  `json:"productsPerPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPrevPage     bool `json:"hasPrevPage"`
}

// ProductPage — canonical page shape every browsing surface consumes.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// UpdateOutcome — per-product result of a bulk mutation.
type UpdateOutcome struct {
	ProductID   string `json:"productId"`
	ProductCode string `json:"productCode"`
	Error       string `json:"error,omitempty"`
}

// ExecutionReport — what the operator sees after confirm. Failed products
// keep their original category fields in the store, so a retry is the same
// plan minus Succeeded.
type ExecutionReport struct {
	FromCategory string          `json:"fromCategory"`
	ToCategory   string          `json:"toCategory"`
	Succeeded    []UpdateOutcome `json:"succeeded"`
	Failed       []UpdateOutcome `json:"failed"`
}

func (r *ExecutionReport) AllSucceeded() bool { return len(r.Failed) == 0 }
