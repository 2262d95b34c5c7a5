package mcp

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPlanTTL is how long an export plan waits for confirmation.
const DefaultPlanTTL = 15 * time.Minute

// PlannedFile is one document an export plan will write.
type PlannedFile struct {
	Domain string `json:"domain"`
	File   string `json:"file"`
}

// ExportPlan is a pending export awaiting user confirmation.
type ExportPlan struct {
	ID        string        `json:"id"`
	Domains   []string      `json:"domains"`
	Files     []PlannedFile `json:"files"`
	Archive   string        `json:"archive,omitempty"` // set for batch exports
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

func (p *ExportPlan) expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

// PlanStore holds pending export plans in memory.
type PlanStore struct {
	plans map[string]*ExportPlan
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
}

// NewPlanStore creates a plan store; ttl <= 0 means DefaultPlanTTL.
func NewPlanStore(ttl time.Duration) *PlanStore {
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	return &PlanStore{
		plans: make(map[string]*ExportPlan),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create stores p under a fresh ID and returns the ID.
func (ps *PlanStore) Create(p *ExportPlan) string {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p.ID = uuid.NewString()
	p.CreatedAt = ps.now().UTC()
	p.ExpiresAt = p.CreatedAt.Add(ps.ttl)
	ps.plans[p.ID] = p
	return p.ID
}

// Take removes and returns a plan. A plan can be taken once.
func (ps *PlanStore) Take(id string) (*ExportPlan, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p, ok := ps.plans[id]
	if !ok {
		return nil, fmt.Errorf("export plan not found: %s", id)
	}
	delete(ps.plans, id)
	if p.expired(ps.now()) {
		return nil, fmt.Errorf("export plan expired: %s", id)
	}
	return p, nil
}

// Cleanup drops expired plans and returns how many were removed.
func (ps *PlanStore) Cleanup() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	n := 0
	now := ps.now()
	for id, p := range ps.plans {
		if p.expired(now) {
			delete(ps.plans, id)
			n++
		}
	}
	return n
}

// Count returns the number of unexpired plans.
func (ps *PlanStore) Count() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	n := 0
	now := ps.now()
	for _, p := range ps.plans {
		if !p.expired(now) {
			n++
		}
	}
	return n
}

// StartCleanupRoutine periodically drops expired plans until stop is closed.
func (ps *PlanStore) StartCleanupRoutine(interval time.Duration) chan struct{} {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ps.Cleanup()
			case <-stop:
				return
			}
		}
	}()
	return stop
}
