package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/catalog/model"
)

func TestDecodeLegacyArray(t *testing.T) {
	body := []byte(`[
		{"_id":"1","code":"A1","name":"Má phanh"},
		{"_id":"2","code":"A2","name":"Lọc gió"},
		{"_id":"3","code":"A3","name":"Bugi"},
		{"_id":"4","code":"A4","name":"Xích"},
		{"_id":"5","code":"A5","name":"Nhông"},
		{"_id":"6","code":"A6","name":"Dĩa"},
		{"_id":"7","code":"A7","name":"Dây ga"}
	]`)

	page, err := decodeProductPage(body, 3, 0)
	require.NoError(t, err)
	assert.Len(t, page.Products, 7)
	assert.Equal(t, model.Pagination{
		CurrentPage:     1,
		TotalPages:      1,
		TotalProducts:   7,
		ProductsPerPage: 7,
		HasNextPage:     false,
		HasPrevPage:     false,
	}, page.Pagination)
}

func TestDecodeEnvelope(t *testing.T) {
	body := []byte(`{
		"products":[{"_id":"1","code":"A1","name":"Má phanh"}],
		"pagination":{"currentPage":2,"totalPages":5,"totalProducts":48,"productsPerPage":10}
	}`)

	page, err := decodeProductPage(body, 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	// navigation flags are always rederived, never trusted from the wire
	assert.True(t, page.Pagination.HasNextPage)
	assert.True(t, page.Pagination.HasPrevPage)
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, 48, page.Pagination.TotalProducts)
}

func TestDecodeEnvelopeWithoutPagination(t *testing.T) {
	body := []byte(`{"products":[{"_id":"1"},{"_id":"2"}]}`)

	page, err := decodeProductPage(body, 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.Equal(t, 2, page.Pagination.TotalProducts)
	assert.False(t, page.Pagination.HasNextPage)
	assert.False(t, page.Pagination.HasPrevPage)
}

func TestDecodeClampsCurrentPage(t *testing.T) {
	body := []byte(`{
		"products":[],
		"pagination":{"currentPage":9,"totalPages":3,"totalProducts":30}
	}`)

	page, err := decodeProductPage(body, 9, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Pagination.CurrentPage)
	assert.False(t, page.Pagination.HasNextPage)
	assert.True(t, page.Pagination.HasPrevPage)
}

func TestProductPriceShapes(t *testing.T) {
	// nested map with a lowercased tier key
	body := []byte(`[{"_id":"1","code":"A1","prices":{"BBCL":1000,"honda247":900}}]`)
	page, err := decodeProductPage(body, 1, 0)
	require.NoError(t, err)
	p := page.Products[0]
	assert.Equal(t, 1000.0, p.Price(model.PriceBBCL))
	assert.Equal(t, 900.0, p.Price(model.PriceHONDA247))

	// legacy flat tier fields
	body = []byte(`[{"_id":"2","code":"A2","BBCL":500,"BLVIP":450}]`)
	page, err = decodeProductPage(body, 1, 0)
	require.NoError(t, err)
	p = page.Products[0]
	assert.Equal(t, 500.0, p.Price(model.PriceBBCL))
	assert.Equal(t, 450.0, p.Price(model.PriceBLVIP))
	assert.Equal(t, 0.0, p.Price(model.PriceBL))
}
