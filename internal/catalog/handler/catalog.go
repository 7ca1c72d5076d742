package handler

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"catalog-service/internal/catalog/loader"
	"catalog-service/internal/catalog/query"
	"catalog-service/internal/catalog/store"
)

// CatalogPage serves one page of the tier catalog:
// GET /catalog?priceType=&page=&limit=&search=
// and, with parentCategory, doubles as the admin table query. Each request
// stands alone; clients step their filter between fetches via query.Advance.
func CatalogPage(qs *query.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)
		start := time.Now()

		f, err := query.ParseFilter(r.URL.Query())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		res, err := qs.Fetch(r.Context(), f)
		if err != nil {
			log.Error().Err(err).Msg("catalog fetch")
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		log.Debug().
			Str("priceType", string(f.PriceType)).
			Int("page", f.Page).
			Int("products", len(res.Products)).
			Dur("elapsed", time.Since(start)).
			Msg("catalog page")
	}
}

// ListCategories serves parent categories ascending by product count:
// GET /catalog/categories
func ListCategories(ld *loader.Loader, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)
		cats, err := ld.List(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("list categories")
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
	}
}

// CategoryProducts serves the category drill-down page:
// GET /catalog/categories/{parent}/products?priceType=&page=&limit=&subcategory=&search=
func CategoryProducts(qs *query.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)

		q := r.URL.Query()
		q.Set("parentCategory", urlParam(r, "parent"))
		f, err := query.ParseFilter(q)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		res, err := qs.Fetch(r.Context(), f)
		if err != nil {
			log.Error().Err(err).Str("parent", f.ParentCategory).Msg("category page")
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// Subcategories proxies the store's subcategory listing:
// GET /catalog/categories/{parent}/subcategories
func Subcategories(st *store.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)
		parent := urlParam(r, "parent")
		subs, err := st.ListSubcategories(r.Context(), parent)
		if err != nil {
			log.Error().Err(err).Str("parent", parent).Msg("subcategories")
			writeDomainError(w, err)
			return
		}
		if subs == nil {
			subs = []string{}
		}
		writeJSON(w, http.StatusOK, subs)
	}
}

// CategoryStats serves the admin dashboard stats for a category:
// GET /catalog/categories/{parent}/stats
// Loads the category detail on demand.
func CategoryStats(ld *loader.Loader, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, logger)
		parent := urlParam(r, "parent")
		if err := ld.LoadDetail(r.Context(), parent); err != nil {
			log.Error().Err(err).Str("parent", parent).Msg("stats load")
			writeDomainError(w, err)
			return
		}
		cat, ok := ld.Category(parent)
		if !ok {
			writeDomainError(w, loader.ErrUnknownCategory)
			return
		}
		writeJSON(w, http.StatusOK, query.ComputeStats(cat))
	}
}
