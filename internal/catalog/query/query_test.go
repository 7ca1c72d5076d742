package query

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/catalog/model"
)

type fakeStore struct {
	lastParent string
	lastPT     model.PriceType
	page       model.ProductPage
}

func (f *fakeStore) PageByPriceType(ctx context.Context, pt model.PriceType, page, limit int, search string) (model.ProductPage, error) {
	f.lastPT = pt
	return f.page, nil
}

func (f *fakeStore) PageByParent(ctx context.Context, parent string, page, limit int, priceType, subcategory, search string) (model.ProductPage, error) {
	f.lastParent = parent
	return f.page, nil
}

func TestParseFilterRequiresPriceType(t *testing.T) {
	_, err := ParseFilter(url.Values{})
	require.ErrorIs(t, err, ErrBadPriceType)

	_, err = ParseFilter(url.Values{"priceType": {"GOLD"}})
	require.ErrorIs(t, err, ErrBadPriceType)

	f, err := ParseFilter(url.Values{"priceType": {"blvip"}})
	require.NoError(t, err)
	assert.Equal(t, model.PriceBLVIP, f.PriceType, "tier parsing is case-insensitive")
}

func TestParseFilterDefaultsAndClamps(t *testing.T) {
	f, err := ParseFilter(url.Values{"priceType": {"BL"}})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)

	f, err = ParseFilter(url.Values{"priceType": {"BL"}, "page": {"-2"}, "limit": {"9000"}})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxLimit, f.Limit)
}

func TestAdvanceResetsPageOnDimensionChange(t *testing.T) {
	prev := Filter{PriceType: model.PriceBL, ParentCategory: "PHỤ TÙNG PHANH", Page: 3, Limit: 20}

	// category change while on page 3 lands on page 1
	next := Advance(prev, Filter{PriceType: model.PriceBL, ParentCategory: "PHỤ TÙNG LỌC", Page: 3, Limit: 20})
	assert.Equal(t, 1, next.Page)

	// page-size change refetches from page 1 with the new limit
	next = Advance(prev, Filter{PriceType: model.PriceBL, ParentCategory: "PHỤ TÙNG PHANH", Page: 3, Limit: 50})
	assert.Equal(t, 1, next.Page)
	assert.Equal(t, 50, next.Limit)

	// search change resets too
	next = Advance(prev, Filter{PriceType: model.PriceBL, ParentCategory: "PHỤ TÙNG PHANH", Search: "bugi", Page: 3, Limit: 20})
	assert.Equal(t, 1, next.Page)

	// pure page navigation keeps the requested page
	next = Advance(prev, Filter{PriceType: model.PriceBL, ParentCategory: "PHỤ TÙNG PHANH", Page: 4, Limit: 20})
	assert.Equal(t, 4, next.Page)
}

func TestFetchProjectsTierPrice(t *testing.T) {
	fs := &fakeStore{page: model.ProductPage{
		Products: []model.Product{{
			ID: "1", Code: "A1", Name: "Má phanh",
			Prices: map[model.PriceType]float64{
				model.PriceBBCL: 1000, model.PriceBL: 800, model.PriceBLVIP: 700,
			},
		}},
		Pagination: model.Pagination{CurrentPage: 1, TotalPages: 1, TotalProducts: 1},
	}}
	s := NewService(fs)

	res, err := s.Fetch(context.Background(), Filter{PriceType: model.PriceBL, Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	assert.Equal(t, 800.0, res.Products[0].Price, "only the caller's tier price is surfaced")
	assert.Equal(t, model.PriceBL, fs.lastPT)
}

func TestFetchRoutesByParentCategory(t *testing.T) {
	fs := &fakeStore{page: model.ProductPage{}}
	s := NewService(fs)

	_, err := s.Fetch(context.Background(), Filter{PriceType: model.PriceBL, ParentCategory: "PHỤ TÙNG PHANH", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, "PHỤ TÙNG PHANH", fs.lastParent)
}

func TestFetchDefensiveSearchFilter(t *testing.T) {
	// a legacy store ignores ?search; the query layer re-filters the page
	fs := &fakeStore{page: model.ProductPage{
		Products: []model.Product{
			{ID: "1", Code: "MP-01", Name: "Má phanh trước"},
			{ID: "2", Code: "LG-02", Name: "Lọc gió"},
			{ID: "3", Code: "mp-99", Name: "Đĩa phanh"},
		},
		Pagination: model.Pagination{CurrentPage: 1, TotalPages: 1, TotalProducts: 3},
	}}
	s := NewService(fs)

	res, err := s.Fetch(context.Background(), Filter{PriceType: model.PriceBL, Search: "MP", Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, res.Products, 2, "code match is case-insensitive")

	res, err = s.Fetch(context.Background(), Filter{PriceType: model.PriceBL, Search: "phanh", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, res.Products, 2, "name substring match")
}

func TestComputeStats(t *testing.T) {
	cat := model.Category{
		Name:   "PHỤ TÙNG PHANH",
		Loaded: true,
		Subcategories: map[string][]model.Product{
			"Má phanh": {
				{ID: "1", Prices: map[model.PriceType]float64{model.PriceBL: 100, model.PriceBBCL: 200}},
				{ID: "2", Prices: map[model.PriceType]float64{model.PriceBL: 300}},
			},
			"Đĩa phanh": {
				{ID: "3", Prices: map[model.PriceType]float64{model.PriceBL: 0}}, // contact for price
			},
			model.NoSubcategory: {
				{ID: "4"},
			},
		},
	}

	stats := ComputeStats(cat)
	assert.Equal(t, 4, stats.TotalProducts)
	assert.Equal(t, 2, stats.SubcategoryCount, "sentinel bucket is not a subcategory")
	assert.Equal(t, []string{"Má phanh", "Đĩa phanh"}, stats.Subcategories)
	assert.Equal(t, 100.0, stats.MinPrice)
	assert.Equal(t, 300.0, stats.MaxPrice)
	assert.Equal(t, 200.0, stats.AvgPrice)
}

func TestComputeStatsUnloaded(t *testing.T) {
	stats := ComputeStats(model.Category{Name: "X"})
	assert.Equal(t, 0, stats.TotalProducts)
	assert.Empty(t, stats.Subcategories)
}
