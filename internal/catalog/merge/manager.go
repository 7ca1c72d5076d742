package merge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"catalog-service/internal/catalog/executor"
	"catalog-service/internal/catalog/loader"
	"catalog-service/internal/catalog/model"
	"catalog-service/internal/catalog/planner"
	"catalog-service/internal/config"
)

// Manager tracks live merge sessions and drives them against the loader's
// category snapshots. Sessions expire after SessionTTL so an abandoned drag
// does not linger.
type Manager struct {
	loader    *loader.Loader
	exec      *executor.Executor
	threshold float64
	ttl       time.Duration
	log       zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session

	stop chan struct{}
	done chan struct{}
}

func NewManager(ld *loader.Loader, ex *executor.Executor, cfg config.Config, logger zerolog.Logger) *Manager {
	m := &Manager{
		loader:    ld,
		exec:      ex,
		threshold: cfg.MatchThreshold,
		ttl:       cfg.SessionTTL,
		log:       logger.With().Str("component", "merge").Logger(),
		sessions:  make(map[string]*session),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go m.janitor()
	return m
}

func (m *Manager) Close() {
	close(m.stop)
	<-m.done
}

func (m *Manager) janitor() {
	defer close(m.done)
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			cutoff := time.Now().Add(-m.ttl)
			m.mu.Lock()
			for id, s := range m.sessions {
				if s.lastTouch.Before(cutoff) {
					delete(m.sessions, id)
					m.log.Debug().Str("session", id).Msg("session expired")
				}
			}
			m.mu.Unlock()
		}
	}
}

// Begin starts a drag on a source category. An unloaded source starts
// loading in the background; the drag is never blocked on it.
func (m *Manager) Begin(ctx context.Context, source string) (View, error) {
	cat, ok := m.loader.Category(source)
	if !ok {
		return View{}, fmt.Errorf("%w: %q", loader.ErrUnknownCategory, source)
	}
	if !cat.Loaded {
		m.loader.LoadAsync(source)
	}
	s := newSession(source)
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	m.log.Debug().Str("session", s.id).Str("source", source).Msg("drag started")
	return s.view(!cat.Loaded), nil
}

// Hover updates the preview against a hover target, kicking off loads for
// any side that is not ready yet.
func (m *Manager) Hover(ctx context.Context, id, target string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return View{}, ErrNoSession
	}
	s.lastTouch = time.Now()

	dst, ok := m.loader.Category(target)
	if !ok {
		return View{}, fmt.Errorf("%w: %q", loader.ErrUnknownCategory, target)
	}
	src, ok := m.loader.Category(s.source)
	if !ok {
		return View{}, fmt.Errorf("%w: %q", loader.ErrUnknownCategory, s.source)
	}
	if !src.Loaded {
		m.loader.LoadAsync(s.source)
	}
	if !dst.Loaded && target != s.source {
		m.loader.LoadAsync(target)
	}
	return s.hover(target, src, dst, m.threshold)
}

// Leave clears the in-progress preview; the drag itself persists.
func (m *Manager) Leave(id string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return View{}, ErrNoSession
	}
	s.lastTouch = time.Now()
	s.leave()
	return s.view(false), nil
}

// Drop attempts to lock a plan for confirmation. Dropping on the source
// itself or on an unloaded side is the documented no-op: the session is
// discarded (back to idle) and reset=true is returned without error.
func (m *Manager) Drop(ctx context.Context, id, target string) (View, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return View{}, false, ErrNoSession
	}
	s.lastTouch = time.Now()

	dst, ok := m.loader.Category(target)
	if !ok {
		return View{}, false, fmt.Errorf("%w: %q", loader.ErrUnknownCategory, target)
	}
	src, ok := m.loader.Category(s.source)
	if !ok {
		return View{}, false, fmt.Errorf("%w: %q", loader.ErrUnknownCategory, s.source)
	}

	v, locked, err := s.drop(target, src, dst, m.threshold)
	if err != nil {
		return View{}, false, err
	}
	if !locked {
		delete(m.sessions, id)
		m.log.Debug().Str("session", id).Str("target", target).Msg("drop was a no-op, session reset")
		return View{}, true, nil
	}
	m.log.Info().
		Str("session", id).
		Str("from", s.source).
		Str("to", target).
		Int("updates", len(v.Plan.Updates)).
		Int("changed", v.ChangedCount).
		Msg("plan locked for confirmation")
	return v, false, nil
}

// Confirm consumes the locked plan and executes it. The session ends
// regardless of outcome; partial failures are reported per product.
func (m *Manager) Confirm(ctx context.Context, id string) (model.ExecutionReport, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return model.ExecutionReport{}, ErrNoSession
	}
	plan, err := s.takePlan()
	if err != nil {
		m.mu.Unlock()
		return model.ExecutionReport{}, err
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	return m.exec.Execute(ctx, plan), nil
}

// Cancel discards a session from any state. Unknown ids are fine: cancelling
// twice is not an error.
func (m *Manager) Cancel(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// MoveReport is the rename/whole-move outcome; SourceEmptied tells the
// operator the source category will disappear from the listing.
type MoveReport struct {
	model.ExecutionReport
	SourceEmptied bool `json:"sourceEmptied"`
}

// Move relocates every product of `from` under parent `to`, subcategories
// untouched. Loads the source synchronously first; no preview step.
func (m *Manager) Move(ctx context.Context, from, to string) (MoveReport, error) {
	if err := m.loader.LoadDetail(ctx, from); err != nil {
		return MoveReport{}, err
	}
	src, ok := m.loader.Category(from)
	if !ok {
		return MoveReport{}, fmt.Errorf("%w: %q", loader.ErrUnknownCategory, from)
	}
	plan, err := planner.BuildMove(src, to)
	if err != nil {
		return MoveReport{}, err
	}
	report := m.exec.Execute(ctx, plan)
	return MoveReport{
		ExecutionReport: report,
		SourceEmptied:   len(report.Succeeded) > 0 && len(report.Failed) == 0,
	}, nil
}
