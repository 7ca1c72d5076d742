// Package loader owns the in-memory category graph: parent categories, their
// product counts and the lazily loaded per-subcategory product partition.
// Only the loader (and its post-reconciliation invalidation hook) ever writes
// to the cache.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"catalog-service/internal/catalog/model"
	"catalog-service/internal/config"
)

var ErrUnknownCategory = errors.New("unknown category")

// loadCall is one shared in-flight detail load. err is written before done
// is closed, so waiters read it without further locking.
type loadCall struct {
	done chan struct{}
	err  error
}

// Store is the slice of the Product Store client the loader needs.
type Store interface {
	ListParentCategories(ctx context.Context) ([]string, error)
	CountByParent(ctx context.Context, parent string) (int, error)
	ProductsByParent(ctx context.Context, parent string) ([]model.Product, error)
}

type Loader struct {
	store       Store
	log         zerolog.Logger
	autoloadMax int

	mu       sync.Mutex
	cats     map[string]*model.Category
	inflight map[string]*loadCall

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
}

func New(st Store, cfg config.Config, logger zerolog.Logger) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		store:       st,
		log:         logger.With().Str("component", "loader").Logger(),
		autoloadMax: cfg.AutoloadMax,
		cats:        make(map[string]*model.Category),
		inflight:    make(map[string]*loadCall),
		bgCtx:       ctx,
		bgCancel:    cancel,
	}
}

// Close cancels background loads and waits for them to drain.
func (l *Loader) Close() {
	l.bgCancel()
	l.bg.Wait()
}

// Refresh re-lists parent categories and their counts, then kicks off
// background detail loads for small categories so short drags are instant.
// Counts that fail to fetch default to zero; the category stays listed.
func (l *Loader) Refresh(ctx context.Context) error {
	names, err := l.store.ListParentCategories(ctx)
	if err != nil {
		return fmt.Errorf("list parent categories: %w", err)
	}

	fresh := make(map[string]*model.Category, len(names))
	for _, name := range names {
		count, err := l.store.CountByParent(ctx, name)
		if err != nil {
			l.log.Warn().Err(err).Str("category", name).Msg("count fetch failed")
			count = 0
		}
		fresh[name] = &model.Category{Name: name, ProductCount: count}
	}

	l.mu.Lock()
	// keep already-loaded detail when the category survived the refresh
	for name, cat := range fresh {
		if old, ok := l.cats[name]; ok && old.Loaded {
			cat.Subcategories = old.Subcategories
			cat.Loaded = true
		}
	}
	l.cats = fresh
	l.mu.Unlock()

	for _, name := range names {
		cat := fresh[name]
		if cat.ProductCount > 0 && cat.ProductCount < l.autoloadMax && !cat.Loaded {
			l.autoload(name)
		}
	}
	return nil
}

// autoload fires a best-effort background detail load; errors are logged,
// never surfaced.
func (l *Loader) autoload(name string) {
	l.bg.Add(1)
	go func() {
		defer l.bg.Done()
		if err := l.LoadDetail(l.bgCtx, name); err != nil {
			l.log.Warn().Err(err).Str("category", name).Msg("autoload failed")
		}
	}()
}

// List returns category summaries sorted ascending by product count (name as
// tie-break) so small categories surface first. Populates the cache on first
// call.
func (l *Loader) List(ctx context.Context) ([]model.Category, error) {
	l.mu.Lock()
	empty := len(l.cats) == 0
	l.mu.Unlock()
	if empty {
		if err := l.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	out := make([]model.Category, 0, len(l.cats))
	for _, c := range l.cats {
		out = append(out, model.Category{Name: c.Name, ProductCount: c.ProductCount, Loaded: c.Loaded})
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductCount != out[j].ProductCount {
			return out[i].ProductCount < out[j].ProductCount
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// LoadDetail fetches and partitions a category's products. Idempotent and
// safe for concurrent callers: a per-name in-flight channel collapses
// overlapping triggers (autoload + click + drag) into one store request. On
// failure the category stays Loaded=false and the next interaction retries.
func (l *Loader) LoadDetail(ctx context.Context, name string) error {
	l.mu.Lock()
	cat, ok := l.cats[name]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}
	if cat.Loaded {
		l.mu.Unlock()
		return nil
	}
	if call, busy := l.inflight[name]; busy {
		l.mu.Unlock()
		select {
		case <-call.done:
			// a failed shared load fails every waiter too
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &loadCall{done: make(chan struct{})}
	l.inflight[name] = call
	l.mu.Unlock()

	products, err := l.store.ProductsByParent(ctx, name)
	if err != nil {
		err = fmt.Errorf("load category %q: %w", name, err)
	}

	l.mu.Lock()
	delete(l.inflight, name)
	if err == nil {
		if cur, ok := l.cats[name]; ok {
			cur.Subcategories = partition(products)
			cur.ProductCount = len(products)
			cur.Loaded = true
		}
	}
	call.err = err
	close(call.done)
	l.mu.Unlock()
	return err
}

// Category returns a snapshot copy of a cached category so callers can never
// mutate the cache behind the loader's back.
func (l *Loader) Category(name string) (model.Category, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cat, ok := l.cats[name]
	if !ok {
		return model.Category{}, false
	}
	snap := model.Category{Name: cat.Name, ProductCount: cat.ProductCount, Loaded: cat.Loaded}
	if cat.Subcategories != nil {
		snap.Subcategories = make(map[string][]model.Product, len(cat.Subcategories))
		for sub, ps := range cat.Subcategories {
			snap.Subcategories[sub] = append([]model.Product(nil), ps...)
		}
	}
	return snap, true
}

// Invalidate drops the loaded detail of the named categories; the next
// interaction refetches them.
func (l *Loader) Invalidate(names ...string) {
	l.mu.Lock()
	for _, name := range names {
		if cat, ok := l.cats[name]; ok {
			cat.Subcategories = nil
			cat.Loaded = false
		}
	}
	l.mu.Unlock()
}

// LoadAsync triggers fire-and-forget detail loads, e.g. for the category
// under a drag while the UI keeps responding.
func (l *Loader) LoadAsync(names ...string) {
	for _, name := range names {
		l.autoload(name)
	}
}

// ReloadAsync invalidates then refetches categories in the background, used
// after a confirmed reconciliation.
func (l *Loader) ReloadAsync(names ...string) {
	l.Invalidate(names...)
	l.LoadAsync(names...)
}

// partition groups products by subcategory label, empty labels going to the
// sentinel bucket.
func partition(products []model.Product) map[string][]model.Product {
	groups := make(map[string][]model.Product)
	for _, p := range products {
		key := p.SubcategoryOrDefault()
		groups[key] = append(groups[key], p)
	}
	return groups
}
