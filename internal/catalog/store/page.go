package store

import (
	"encoding/json"
	"fmt"

	"catalog-service/internal/catalog/model"
)

// decodeProductPage normalizes the store's two response shapes into the
// canonical page. Legacy deployments answer with a bare product array and no
// pagination at all; newer ones answer {products, pagination}. Navigation
// flags are always rederived from currentPage/totalPages so the §3-style
// invariants hold regardless of what the store sent.
func decodeProductPage(body []byte, page, limit int) (model.ProductPage, error) {
	// legacy bare array
	var arr []model.Product
	if err := json.Unmarshal(body, &arr); err == nil {
		return model.ProductPage{
			Products:   arr,
			Pagination: syntheticPagination(len(arr), limit),
		}, nil
	}

	var envelope struct {
		Products   []model.Product   `json:"products"`
		Pagination *model.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return model.ProductPage{}, fmt.Errorf("decode product page: %w", err)
	}
	if envelope.Pagination == nil {
		return model.ProductPage{
			Products:   envelope.Products,
			Pagination: syntheticPagination(len(envelope.Products), limit),
		}, nil
	}

	pg := *envelope.Pagination
	if pg.CurrentPage < 1 {
		pg.CurrentPage = page
	}
	if pg.TotalPages < 1 {
		pg.TotalPages = 1
	}
	if pg.CurrentPage > pg.TotalPages {
		pg.CurrentPage = pg.TotalPages
	}
	if pg.ProductsPerPage == 0 {
		pg.ProductsPerPage = limit
	}
	pg.HasNextPage = pg.CurrentPage < pg.TotalPages
	pg.HasPrevPage = pg.CurrentPage > 1
	return model.ProductPage{Products: envelope.Products, Pagination: pg}, nil
}

func syntheticPagination(count, limit int) model.Pagination {
	perPage := limit
	if perPage <= 0 {
		perPage = count
	}
	return model.Pagination{
		CurrentPage:     1,
		TotalPages:      1,
		TotalProducts:   count,
		ProductsPerPage: perPage,
		HasNextPage:     false,
		HasPrevPage:     false,
	}
}
