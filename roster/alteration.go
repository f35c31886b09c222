/*
alteration.go - Persistence contract for manual roster overrides

INVARIANT:
  At most one alteration per (date, unit). Upsert overwrites by that
  composite key; it never creates a second row. The backing store
  serializes writes per key, so readers never observe a torn alteration.

IMPLEMENTATIONS:
  - store/sqlite: production, UNIQUE(data, unidade) + upsert
  - store/memory: testing/dev
*/
package roster

import (
	"context"

	"github.com/bpma/roster-engine/calendar"
)

// AlterationStore persists manual overrides keyed by (date, unit).
type AlterationStore interface {
	// Get returns the alteration for the key, or (nil, nil) when absent.
	Get(ctx context.Context, d calendar.Date, u Unit) (*Alteration, error)

	// Upsert writes the alteration, overwriting any existing row for the
	// same (date, unit). The stored row (with its ID) is returned.
	Upsert(ctx context.Context, a Alteration) (*Alteration, error)

	// Remove deletes the alteration for the key. False when none existed.
	Remove(ctx context.Context, d calendar.Date, u Unit) (bool, error)

	// ListRange returns all alterations for a unit with from <= date <= to,
	// ascending by date. Used once per view load, not per day.
	ListRange(ctx context.Context, u Unit, from, to calendar.Date) ([]Alteration, error)
}
