package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/catalog/model"
	"catalog-service/internal/config"
)

type fakeStore struct {
	mu       sync.Mutex
	updated  map[string][2]string // id -> {parent, subcategory}
	failIDs  map[string]bool
	inflight int32
	maxSeen  int32
}

func (f *fakeStore) UpdateProductCategory(ctx context.Context, id, parent, subcategory string) (model.Product, error) {
	cur := atomic.AddInt32(&f.inflight, 1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if cur <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, cur) {
			break
		}
	}
	defer atomic.AddInt32(&f.inflight, -1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return model.Product{}, errors.New("store rejected update")
	}
	if f.updated == nil {
		f.updated = make(map[string][2]string)
	}
	f.updated[id] = [2]string{parent, subcategory}
	return model.Product{ID: id, ParentCategory: parent, Subcategory: subcategory}, nil
}

type fakeCache struct {
	mu       sync.Mutex
	reloaded []string
}

func (f *fakeCache) ReloadAsync(names ...string) {
	f.mu.Lock()
	f.reloaded = append(f.reloaded, names...)
	f.mu.Unlock()
}

func testPlan(n int) *model.ReconciliationPlan {
	plan := &model.ReconciliationPlan{FromCategory: "A", ToCategory: "B"}
	for i := 0; i < n; i++ {
		id := string(rune('0' + i + 1))
		plan.Updates = append(plan.Updates, model.ProductUpdate{
			ProductID:   "p-" + id,
			ProductCode: "C-" + id,
			NewParent:   "B",
			NewSubcat:   "Má phanh",
		})
	}
	return plan
}

func newExecutor(fs *fakeStore, fc *fakeCache, workers int) *Executor {
	return New(fs, fc, config.Config{UpdateWorkers: workers}, zerolog.Nop())
}

func TestExecuteAllSucceed(t *testing.T) {
	fs := &fakeStore{}
	fc := &fakeCache{}
	report := newExecutor(fs, fc, 3).Execute(context.Background(), testPlan(5))

	assert.Len(t, report.Succeeded, 5)
	assert.Empty(t, report.Failed)
	assert.True(t, report.AllSucceeded())
	assert.Equal(t, []string{"A", "B"}, fc.reloaded, "both categories reload after success")
}

func TestExecutePartialFailure(t *testing.T) {
	fs := &fakeStore{failIDs: map[string]bool{"p-3": true}}
	fc := &fakeCache{}
	report := newExecutor(fs, fc, 3).Execute(context.Background(), testPlan(5))

	assert.Len(t, report.Succeeded, 4)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "p-3", report.Failed[0].ProductID)
	assert.NotEmpty(t, report.Failed[0].Error)
	assert.False(t, report.AllSucceeded())

	// the failed product was never mutated in the store
	_, touched := fs.updated["p-3"]
	assert.False(t, touched)
	// succeeded ones were
	assert.Equal(t, [2]string{"B", "Má phanh"}, fs.updated["p-1"])

	// caches still reload: four products did move
	assert.Equal(t, []string{"A", "B"}, fc.reloaded)
}

func TestExecuteAllFailSkipsReload(t *testing.T) {
	fs := &fakeStore{failIDs: map[string]bool{"p-1": true, "p-2": true}}
	fc := &fakeCache{}
	report := newExecutor(fs, fc, 2).Execute(context.Background(), testPlan(2))

	assert.Empty(t, report.Succeeded)
	assert.Len(t, report.Failed, 2)
	assert.Empty(t, fc.reloaded, "nothing moved, nothing to invalidate")
}

func TestExecuteBoundedConcurrency(t *testing.T) {
	fs := &fakeStore{}
	fc := &fakeCache{}
	newExecutor(fs, fc, 2).Execute(context.Background(), testPlan(9))

	assert.LessOrEqual(t, atomic.LoadInt32(&fs.maxSeen), int32(2), "never more than UPDATE_WORKERS requests in flight")
}

func TestExecuteEmptyPlan(t *testing.T) {
	fs := &fakeStore{}
	fc := &fakeCache{}
	report := newExecutor(fs, fc, 3).Execute(context.Background(), &model.ReconciliationPlan{FromCategory: "A", ToCategory: "B"})

	assert.True(t, report.AllSucceeded())
	assert.Empty(t, fc.reloaded)
}

func TestExecuteOutcomesSorted(t *testing.T) {
	fs := &fakeStore{}
	fc := &fakeCache{}
	report := newExecutor(fs, fc, 4).Execute(context.Background(), testPlan(6))

	for i := 1; i < len(report.Succeeded); i++ {
		assert.Less(t, report.Succeeded[i-1].ProductID, report.Succeeded[i].ProductID)
	}
}
