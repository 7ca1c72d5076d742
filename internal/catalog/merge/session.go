// Package merge orchestrates the drag/preview/confirm workflow as an
// explicit state machine. Each drag gesture owns one session:
//
//	Idle -> Dragging(source) -> Previewing(source, target, plan)
//	     -> ConfirmPending -> Idle
//
// Cancel returns to Idle from any state. A plan only exists once both sides
// report loaded; the planner is never run against partial data.
package merge

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"catalog-service/internal/catalog/model"
	"catalog-service/internal/catalog/planner"
)

type State string

const (
	StateDragging       State = "dragging"
	StatePreviewing     State = "previewing"
	StateConfirmPending State = "confirm_pending"
)

var (
	ErrNoSession     = errors.New("merge session not found")
	ErrBadTransition = errors.New("invalid merge transition")
)

type session struct {
	id        string
	state     State
	source    string
	target    string
	plan      *model.ReconciliationPlan
	lastTouch time.Time
}

// View is the session snapshot returned to the operator. Pending=true means
// one or both categories are still loading and the preview is deferred.
type View struct {
	SessionID      string                    `json:"sessionId"`
	State          State                     `json:"state"`
	Source         string                    `json:"source"`
	Target         string                    `json:"target,omitempty"`
	Pending        bool                      `json:"pending"`
	ChangedCount   int                       `json:"changedCount"`
	UnchangedCount int                       `json:"unchangedCount"`
	Plan           *model.ReconciliationPlan `json:"plan,omitempty"`
}

func (s *session) view(pending bool) View {
	v := View{
		SessionID: s.id,
		State:     s.state,
		Source:    s.source,
		Target:    s.target,
		Pending:   pending,
	}
	if s.plan != nil {
		v.Plan = s.plan
		v.ChangedCount = s.plan.ChangedCount()
		v.UnchangedCount = len(s.plan.Updates) - v.ChangedCount
	}
	return v
}

func newSession(source string) *session {
	return &session{
		id:        uuid.NewString(),
		state:     StateDragging,
		source:    source,
		lastTouch: time.Now(),
	}
}

// hover forms (or reforms) a preview against a hover target. Moving to a
// third category resets the previous preview while the drag persists.
func (s *session) hover(target string, src, dst model.Category, threshold float64) (View, error) {
	if s.state == StateConfirmPending {
		return View{}, fmt.Errorf("%w: already awaiting confirmation", ErrBadTransition)
	}
	if target == s.source {
		// hovering the grabbed card itself: no preview to show
		s.leave()
		return s.view(false), nil
	}
	s.target = target
	if !src.Loaded || !dst.Loaded {
		s.state = StateDragging
		s.plan = nil
		return s.view(true), nil
	}
	plan, err := planner.Build(src, dst, threshold)
	if err != nil {
		return View{}, err
	}
	s.state = StatePreviewing
	s.plan = plan
	return s.view(false), nil
}

// leave resets an in-progress preview without discarding the drag.
func (s *session) leave() {
	if s.state == StatePreviewing {
		s.state = StateDragging
	}
	s.target = ""
	s.plan = nil
}

// drop locks the plan in for confirmation. Returns ok=false for the no-op
// cases (same category, unloaded side): the caller resets to idle without
// escalating an error.
func (s *session) drop(target string, src, dst model.Category, threshold float64) (View, bool, error) {
	if s.state == StateConfirmPending {
		return View{}, false, fmt.Errorf("%w: already awaiting confirmation", ErrBadTransition)
	}
	if target == s.source || !src.Loaded || !dst.Loaded {
		return View{}, false, nil
	}
	plan, err := planner.Build(src, dst, threshold)
	if err != nil {
		return View{}, false, err
	}
	s.target = target
	s.plan = plan
	s.state = StateConfirmPending
	return s.view(false), true, nil
}

// takePlan consumes the locked plan exactly once.
func (s *session) takePlan() (*model.ReconciliationPlan, error) {
	if s.state != StateConfirmPending || s.plan == nil {
		return nil, fmt.Errorf("%w: nothing to confirm", ErrBadTransition)
	}
	plan := s.plan
	s.plan = nil
	return plan, nil
}
