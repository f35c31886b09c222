// Package memory provides in-memory store implementations
// (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/leave"
	"github.com/bpma/roster-engine/roster"
)

// =============================================================================
// ALTERATION STORE - (date, unit) keyed overrides
// =============================================================================

type AlterationStore struct {
	mu          sync.RWMutex
	alterations map[alterationKey]roster.Alteration
}

type alterationKey struct {
	Date string
	Unit roster.Unit
}

func NewAlterationStore() *AlterationStore {
	return &AlterationStore{
		alterations: make(map[alterationKey]roster.Alteration),
	}
}

// Get returns the alteration for a key, or (nil, nil) when absent.
func (m *AlterationStore) Get(_ context.Context, d calendar.Date, u roster.Unit) (*roster.Alteration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.alterations[alterationKey{Date: d.String(), Unit: u}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

// Upsert replaces any existing alteration for (date, unit).
func (m *AlterationStore) Upsert(_ context.Context, a roster.Alteration) (*roster.Alteration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := alterationKey{Date: a.Date.String(), Unit: a.Unit}
	if existing, ok := m.alterations[k]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.alterations[k] = a
	return &a, nil
}

// Remove deletes by key. Returns false when nothing matched.
func (m *AlterationStore) Remove(_ context.Context, d calendar.Date, u roster.Unit) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := alterationKey{Date: d.String(), Unit: u}
	if _, ok := m.alterations[k]; !ok {
		return false, nil
	}
	delete(m.alterations, k)
	return true, nil
}

// ListRange returns a unit's alterations within [from, to], ascending.
func (m *AlterationStore) ListRange(_ context.Context, u roster.Unit, from, to calendar.Date) ([]roster.Alteration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []roster.Alteration
	for k, a := range m.alterations {
		if k.Unit != u {
			continue
		}
		if a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// =============================================================================
// LEAVE STORE - Per-person per-year allotments
// =============================================================================

type LeaveStore struct {
	mu         sync.RWMutex
	allotments map[string]leave.Allotment // by ID
}

func NewLeaveStore() *LeaveStore {
	return &LeaveStore{
		allotments: make(map[string]leave.Allotment),
	}
}

// ListForYear returns every allotment of a type for a year, ordered by
// person then month for stable pagination.
func (m *LeaveStore) ListForYear(_ context.Context, t leave.Type, year int) ([]leave.Allotment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.Allotment
	for _, a := range m.allotments {
		if a.Type == t && a.Ano == year {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PersonID != out[j].PersonID {
			return out[i].PersonID < out[j].PersonID
		}
		return out[i].Mes < out[j].Mes
	})
	return out, nil
}

// Get looks up by natural key, or (nil, nil) when absent. mes is
// ignored for férias, which has one record per person per year.
func (m *LeaveStore) Get(_ context.Context, t leave.Type, personID string, year, mes int) (*leave.Allotment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.allotments {
		if !matchesKey(a, t, personID, year, mes) {
			continue
		}
		out := a
		return &out, nil
	}
	return nil, nil
}

// Put upserts by natural key, keeping the stored ID on replace.
func (m *LeaveStore) Put(_ context.Context, a leave.Allotment) (*leave.Allotment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for id, existing := range m.allotments {
		if matchesKey(existing, a.Type, a.PersonID, a.Ano, a.Mes) {
			a.ID = id
			a.CreatedAt = existing.CreatedAt
			found = true
			break
		}
	}
	if !found && a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.allotments[a.ID] = a
	out := a
	return &out, nil
}

// Delete removes by id and returns the removed row, or (nil, nil)
// when nothing matched.
func (m *LeaveStore) Delete(_ context.Context, t leave.Type, id string) (*leave.Allotment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.allotments[id]
	if !ok || a.Type != t {
		return nil, nil
	}
	delete(m.allotments, id)
	return &a, nil
}

func matchesKey(a leave.Allotment, t leave.Type, personID string, year, mes int) bool {
	if a.Type != t || a.PersonID != personID || a.Ano != year {
		return false
	}
	if t == leave.TypeAbono {
		return a.Mes == mes
	}
	return true
}
