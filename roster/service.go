/*
service.go - Write path for roster overrides

Validates operator input, captures the replaced team for audit, persists
through the AlterationStore and publishes a change notification. Write
errors always surface to the caller; only the notification is
fire-and-forget.
*/
package roster

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/events"
)

// Service is the operator-facing write path for alterations.
type Service struct {
	store    AlterationStore
	rotation *RotationPolicy
	bus      *events.Broker
	log      zerolog.Logger
	now      func() time.Time
}

// NewService wires the write path. bus may be nil (no notifications).
func NewService(store AlterationStore, rotation *RotationPolicy, bus *events.Broker, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		rotation: rotation,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// Upsert records (or overwrites) the override for (d, u), capturing the
// team the rotation would have assigned for audit.
func (s *Service) Upsert(ctx context.Context, d calendar.Date, u Unit, newTeam Team, reason, actor string) (*Alteration, error) {
	if d.IsZero() {
		return nil, &ValidationError{Field: "date", Message: "date is required"}
	}
	if _, err := ParseUnit(string(u)); err != nil {
		return nil, err
	}
	if _, err := ParseTeam(string(newTeam)); err != nil {
		return nil, err
	}

	var replaced *Team
	if team, err := s.rotation.TeamOnDuty(d, u); err == nil {
		replaced = &team
	}

	stored, err := s.store.Upsert(ctx, Alteration{
		Date:         d,
		Unit:         u,
		ReplacedTeam: replaced,
		NewTeam:      newTeam,
		Reason:       reason,
		CreatedBy:    actor,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.notify(d, u)
	return stored, nil
}

// Remove reverts (d, u) to the computed rotation. False when no
// alteration existed.
func (s *Service) Remove(ctx context.Context, d calendar.Date, u Unit) (bool, error) {
	if d.IsZero() {
		return false, &ValidationError{Field: "date", Message: "date is required"}
	}
	if _, err := ParseUnit(string(u)); err != nil {
		return false, err
	}

	removed, err := s.store.Remove(ctx, d, u)
	if err != nil {
		return false, err
	}
	if removed {
		s.notify(d, u)
	}
	return removed, nil
}

func (s *Service) notify(d calendar.Date, u Unit) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Topic:    events.AlterationTopic(string(u)),
		Metadata: map[string]string{"date": d.String()},
	})
	s.log.Debug().Str("unit", string(u)).Stringer("date", d).Msg("alteration change published")
}
