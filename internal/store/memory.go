// Package store holds the plan store implementations.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/schematiq/schematiq/internal/plan"
)

// Memory is an in-process plan store. It keeps deep copies, so callers may
// mutate returned plans freely.
type Memory struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{plans: make(map[string]*plan.Plan)}
}

func (m *Memory) Get(_ context.Context, id string) (*plan.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.plans[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, plan.ErrPlanNotFound)
	}
	return p.Clone(), nil
}

func (m *Memory) Put(_ context.Context, p *plan.Plan) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("%w: plan id is required", plan.ErrInvalidRequest)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID] = p.Clone()
	return nil
}

func (m *Memory) ListByOwner(_ context.Context, ownerID string) ([]*plan.Plan, error) {
	m.mu.RLock()
	out := make([]*plan.Plan, 0)
	for _, p := range m.plans {
		if p.OwnerID == ownerID {
			out = append(out, p.Clone())
		}
	}
	m.mu.RUnlock()

	SortPlans(out)
	return out, nil
}

// SortPlans orders plans by creation time, then id.
func SortPlans(plans []*plan.Plan) {
	slices.SortFunc(plans, func(a, b *plan.Plan) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}
