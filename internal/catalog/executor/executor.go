// Package executor applies an accepted reconciliation plan against the
// Product Store with bounded concurrency and per-product outcome accounting.
// A failed product is left untouched in the store, so retrying is simply the
// original plan minus the succeeded entries.
package executor

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"catalog-service/internal/catalog/model"
	"catalog-service/internal/config"
)

// Store is the mutation slice of the Product Store client.
type Store interface {
	UpdateProductCategory(ctx context.Context, id, parent, subcategory string) (model.Product, error)
}

// Cache is the post-success invalidation hook (the loader).
type Cache interface {
	ReloadAsync(names ...string)
}

type Executor struct {
	store   Store
	cache   Cache
	workers int
	log     zerolog.Logger
}

func New(st Store, cache Cache, cfg config.Config, logger zerolog.Logger) *Executor {
	workers := cfg.UpdateWorkers
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		store:   st,
		cache:   cache,
		workers: workers,
		log:     logger.With().Str("component", "executor").Logger(),
	}
}

// Execute runs every update of the plan through a fixed worker pool and
// reports per-product outcomes. Updates carry no ordering guarantee among
// themselves. Categories are invalidated and reloaded only when at least one
// product actually moved.
func (e *Executor) Execute(ctx context.Context, plan *model.ReconciliationPlan) model.ExecutionReport {
	report := model.ExecutionReport{
		FromCategory: plan.FromCategory,
		ToCategory:   plan.ToCategory,
	}
	if len(plan.Updates) == 0 {
		return report
	}

	jobs := make(chan model.ProductUpdate)
	outcomes := make(chan model.UpdateOutcome, len(plan.Updates))

	workers := e.workers
	if workers > len(plan.Updates) {
		workers = len(plan.Updates)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				out := model.UpdateOutcome{ProductID: u.ProductID, ProductCode: u.ProductCode}
				if _, err := e.store.UpdateProductCategory(ctx, u.ProductID, u.NewParent, u.NewSubcat); err != nil {
					out.Error = err.Error()
					e.log.Warn().Err(err).Str("product", u.ProductCode).Msg("update failed")
				}
				outcomes <- out
			}
		}()
	}

	for _, u := range plan.Updates {
		jobs <- u
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	for out := range outcomes {
		if out.Error == "" {
			report.Succeeded = append(report.Succeeded, out)
		} else {
			report.Failed = append(report.Failed, out)
		}
	}
	sortOutcomes(report.Succeeded)
	sortOutcomes(report.Failed)

	if len(report.Succeeded) > 0 {
		e.cache.ReloadAsync(plan.FromCategory, plan.ToCategory)
	}
	e.log.Info().
		Str("from", plan.FromCategory).
		Str("to", plan.ToCategory).
		Int("succeeded", len(report.Succeeded)).
		Int("failed", len(report.Failed)).
		Msg("plan executed")
	return report
}

func sortOutcomes(outs []model.UpdateOutcome) {
	sort.Slice(outs, func(i, j int) bool { return outs[i].ProductID < outs[j].ProductID })
}
