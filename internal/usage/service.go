package usage

import (
	"context"
	"fmt"
)

type store interface {
	Get(ctx context.Context, userID string) (Usage, error)
	EnsurePeriod(ctx context.Context, userID string) (Usage, error)
	Consume(ctx context.Context, userID string, n int) (Usage, error)
	Reset(ctx context.Context, userID string) (Usage, error)
	SetPlan(ctx context.Context, userID string, plan PlanSpec) (Usage, error)
}

// Service manages usage data via an underlying store.
type Service struct {
	store store
}

// NewService constructs a Service with in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore()}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// Get returns the current usage for a user, initializing defaults if absent.
func (s *Service) Get(ctx context.Context, userID string) (Usage, error) {
	return s.store.Get(ctx, userID)
}

// EnsurePeriod resets usage if the monthly window has expired.
func (s *Service) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	return s.store.EnsurePeriod(ctx, userID)
}

// CanConsume reports whether the user can consume n units.
func (s *Service) CanConsume(ctx context.Context, userID string, n int) (bool, Usage, error) {
	u, err := s.store.EnsurePeriod(ctx, userID)
	if err != nil {
		return false, Usage{}, err
	}
	if n <= 0 {
		return true, u, nil
	}
	return allows(u, n), u, nil
}

// Consume increments usage by n if within limit.
func (s *Service) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	return s.store.Consume(ctx, userID, n)
}

// Reset sets usage to zero and starts a new window.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	return s.store.Reset(ctx, userID)
}

// SetPlan moves the user to the named plan, keeping the current window's consumption.
func (s *Service) SetPlan(ctx context.Context, userID, plan string) (Usage, error) {
	spec, ok := LookupPlan(plan)
	if !ok {
		return Usage{}, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}
	return s.store.SetPlan(ctx, userID, spec)
}

// Plan returns the plan allowances currently assigned to the user.
func (s *Service) Plan(ctx context.Context, userID string) (PlanSpec, error) {
	u, err := s.store.Get(ctx, userID)
	if err != nil {
		return PlanSpec{}, err
	}
	return PlanFor(u.Plan), nil
}
