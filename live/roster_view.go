/*
Package live keeps month-scoped read models warm.

PURPOSE:
  The dashboard asks the same two questions over and over: "who covers
  unit U for month M" and "how much leave quota is left for type T in
  month M". Both are cheap to recompute but hit the store every time.
  This package caches the computed answers and subscribes to the change
  bus, dropping exactly the cache buckets a write touched.

CONSISTENCY:
  Invalidation is bucket-grained, not diff-grained: any alteration to a
  unit drops every cached month of that unit; any leave write drops
  every cached month of that type/year. The next read recomputes. The
  Refetch escape hatch bypasses the cache unconditionally for callers
  that must not trust the notification channel.
*/
package live

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/events"
	"github.com/bpma/roster-engine/roster"
)

// RosterView caches one resolved month of duty per (unit, year, month).
type RosterView struct {
	resolver *roster.Resolver
	bus      *events.Broker
	log      zerolog.Logger

	mu    sync.RWMutex
	cache map[string][]roster.Resolution

	sub    events.Subscriber
	doneCh chan struct{}
}

// NewRosterView wires the cache. Call Start to begin invalidation.
func NewRosterView(resolver *roster.Resolver, bus *events.Broker, log zerolog.Logger) *RosterView {
	return &RosterView{
		resolver: resolver,
		bus:      bus,
		log:      log,
		cache:    make(map[string][]roster.Resolution),
		doneCh:   make(chan struct{}),
	}
}

// Start subscribes to alteration events for every known unit.
func (v *RosterView) Start() {
	topics := make([]events.Topic, 0, len(roster.Units))
	for _, u := range roster.Units {
		topics = append(topics, events.AlterationTopic(string(u)))
	}
	v.sub = v.bus.Subscribe(topics...)
	go v.watch()
}

// Stop detaches from the bus.
func (v *RosterView) Stop() {
	v.bus.Unsubscribe(v.sub)
	close(v.doneCh)
}

func (v *RosterView) watch() {
	for {
		select {
		case ev, ok := <-v.sub:
			if !ok {
				return
			}
			unit := strings.TrimPrefix(string(ev.Topic), "alteration:")
			v.invalidateUnit(unit)
		case <-v.doneCh:
			return
		}
	}
}

func (v *RosterView) invalidateUnit(unit string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	prefix := unit + "/"
	for key := range v.cache {
		if strings.HasPrefix(key, prefix) {
			delete(v.cache, key)
		}
	}
	v.log.Debug().Str("unit", unit).Msg("roster cache invalidated")
}

func rosterKey(u roster.Unit, year, month int) string {
	return fmt.Sprintf("%s/%d-%02d", u, year, month)
}

// Month returns the resolved roster for one unit and month, computing
// and caching it on miss.
func (v *RosterView) Month(ctx context.Context, u roster.Unit, year, month int) ([]roster.Resolution, error) {
	key := rosterKey(u, year, month)

	v.mu.RLock()
	cached, ok := v.cache[key]
	v.mu.RUnlock()
	if ok {
		return cached, nil
	}
	return v.refetch(ctx, u, year, month, key)
}

// Refetch recomputes one unit-month unconditionally, replacing whatever
// the cache held.
func (v *RosterView) Refetch(ctx context.Context, u roster.Unit, year, month int) ([]roster.Resolution, error) {
	return v.refetch(ctx, u, year, month, rosterKey(u, year, month))
}

func (v *RosterView) refetch(ctx context.Context, u roster.Unit, year, month int, key string) ([]roster.Resolution, error) {
	from := calendar.StartOfMonth(year, time.Month(month))
	to := calendar.EndOfMonth(year, time.Month(month))

	resolved, err := v.resolver.ResolveRange(ctx, from, to, u)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.cache[key] = resolved
	v.mu.Unlock()
	return resolved, nil
}
