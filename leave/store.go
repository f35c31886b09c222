/*
store.go - Persistence contract for leave allotments

Allotments are keyed by (type, person, year) for férias and by
(type, person, year, month) for abono; the store's Put upserts by that
key and never duplicates rows. The year-scoped bulk read backs both the
quota aggregation and the calendar views, one query per view load.
*/
package leave

import "context"

// Store persists leave allotments.
// Implementations: store/sqlite (production), store/memory (tests/dev).
type Store interface {
	// ListForYear returns all allotments of one type for a year.
	ListForYear(ctx context.Context, t Type, year int) ([]Allotment, error)

	// Get returns the allotment for the key, or (nil, nil) when absent.
	// mes is ignored for férias.
	Get(ctx context.Context, t Type, personID string, year, mes int) (*Allotment, error)

	// Put upserts by the allotment's natural key and returns the stored
	// row (with its ID and timestamps).
	Put(ctx context.Context, a Allotment) (*Allotment, error)

	// Delete removes an allotment by row ID and returns the removed
	// row, or (nil, nil) when none existed. The row carries the year
	// the change notification must target.
	Delete(ctx context.Context, t Type, id string) (*Allotment, error)
}
