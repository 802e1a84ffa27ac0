// Package session holds the state of one interactive planning conversation:
// the current plan and the turns that led to it.
package session

import (
	"context"
	"sync"

	"itinera/internal/planner"
	"itinera/internal/trip"
)

const DefaultMaxHistory = 20

// Turn is one exchange with the model.
type Turn struct {
	// Request is empty for the turn that produced the initial plan.
	Request string
	Plan    *planner.Plan
}

// Session is owned by a single caller; nothing about it is process-wide.
// The mutex only guards readers such as a status line against a turn in
// progress.
type Session struct {
	planner    *planner.Planner
	maxHistory int

	mu      sync.Mutex
	current *planner.Plan
	history []Turn
}

func New(p *planner.Planner, maxHistory int) *Session {
	if maxHistory < 1 {
		maxHistory = DefaultMaxHistory
	}
	return &Session{planner: p, maxHistory: maxHistory}
}

// Start generates a fresh plan and discards any previous history. On error
// the session is left unchanged.
func (s *Session) Start(ctx context.Context, prefs trip.Preferences) (*planner.Plan, error) {
	plan, err := s.planner.Generate(ctx, prefs)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = plan
	s.history = []Turn{{Plan: plan}}
	return plan, nil
}

// Refine revises the current plan. It fails with planner.ErrNoPlan before
// Start has succeeded. On error the current plan is kept.
func (s *Session) Refine(ctx context.Context, request string) (*planner.Plan, error) {
	s.mu.Lock()
	prev := s.current
	s.mu.Unlock()
	if prev == nil {
		return nil, planner.ErrNoPlan
	}

	plan, err := s.planner.Refine(ctx, prev, request)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = plan
	s.history = append(s.history, Turn{Request: request, Plan: plan})
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
	return plan, nil
}

func (s *Session) Current() *planner.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// History returns a copy of the retained turns, oldest first.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Reset forgets the current plan and its history.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.history = nil
}
