package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	catHnd "catalog-service/internal/catalog/handler"
	"catalog-service/internal/catalog/loader"
	"catalog-service/internal/catalog/merge"
	"catalog-service/internal/catalog/query"
	"catalog-service/internal/catalog/store"
	"catalog-service/internal/config"
	"catalog-service/internal/middleware"
	"catalog-service/server/http/handlers"
)

// Deps — the wired subsystems the routes are built over.
type Deps struct {
	Store  *store.Client
	Loader *loader.Loader
	Query  *query.Service
	Merge  *merge.Manager
}

func NewRouter(cfg config.Config, logger zerolog.Logger, d Deps) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// health-check
	r.Get("/health", handlers.Health)

	// browsing surfaces (customer tier catalog + admin drill-down)
	r.Get("/catalog", catHnd.CatalogPage(d.Query, logger))
	r.Get("/catalog/categories", catHnd.ListCategories(d.Loader, logger))
	r.Get("/catalog/categories/{parent}/products", catHnd.CategoryProducts(d.Query, logger))
	r.Get("/catalog/categories/{parent}/subcategories", catHnd.Subcategories(d.Store, logger))
	r.Get("/catalog/categories/{parent}/stats", catHnd.CategoryStats(d.Loader, logger))

	// reconciliation workflow
	r.Post("/merge/sessions", catHnd.MergeBegin(d.Merge, logger))
	r.Post("/merge/sessions/{id}/hover", catHnd.MergeHover(d.Merge, logger))
	r.Post("/merge/sessions/{id}/leave", catHnd.MergeLeave(d.Merge, logger))
	r.Post("/merge/sessions/{id}/drop", catHnd.MergeDrop(d.Merge, logger))
	r.Post("/merge/sessions/{id}/confirm", catHnd.MergeConfirm(d.Merge, logger))
	r.Delete("/merge/sessions/{id}", catHnd.MergeCancel(d.Merge, logger))
	r.Post("/merge/rename", catHnd.MoveCategory(d.Merge, logger))

	return r
}
