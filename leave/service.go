/*
service.go - Validated write path for leave facts

Reads degrade, writes do not: every operator mutation is validated
strictly and surfaces a ValidationError precise enough to correct the
input ("incomplete date range on installment 2"). Successful writes
publish a change notification so cached monthly views recompute.
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/events"
)

// RecordParams carries the allotment-level fields of an upsert.
type RecordParams struct {
	PersonID   string
	Ano        int
	Mes        int // abono target month
	MesInicio  int // férias planned window
	MesFim     int
	Observacao string
}

// InstallmentPatch is a partial update of one parcela. Nil fields keep
// the stored value; a pointer to the empty string clears a bound.
type InstallmentPatch struct {
	Inicio *string
	Fim    *string
	Dias   *int
}

// Service owns the leave write path.
type Service struct {
	store Store
	bus   *events.Broker
	log   zerolog.Logger
	now   func() time.Time
}

// NewService wires the write path. bus may be nil in tests.
func NewService(store Store, bus *events.Broker, log zerolog.Logger) *Service {
	return &Service{store: store, bus: bus, log: log, now: time.Now}
}

// ListForYear returns every allotment of a type for a year.
func (s *Service) ListForYear(ctx context.Context, t Type, year int) ([]Allotment, error) {
	if _, err := ParseType(string(t)); err != nil {
		return nil, err
	}
	return s.store.ListForYear(ctx, t, year)
}

// UpsertRecord creates or updates the allotment-level fields for a
// person/year, leaving installments untouched on update.
func (s *Service) UpsertRecord(ctx context.Context, t Type, p RecordParams) (*Allotment, error) {
	if _, err := ParseType(string(t)); err != nil {
		return nil, err
	}
	if p.PersonID == "" {
		return nil, &ValidationError{Field: "personId", Message: "person is required"}
	}
	if p.Ano <= 0 {
		return nil, &ValidationError{Field: "ano", Message: "year is required"}
	}
	if err := validateMonths(t, p); err != nil {
		return nil, err
	}

	existing, err := s.store.Get(ctx, t, p.PersonID, p.Ano, p.Mes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var a Allotment
	if existing != nil {
		a = *existing
	} else {
		a = Allotment{
			ID:        uuid.NewString(),
			Type:      t,
			PersonID:  p.PersonID,
			Ano:       p.Ano,
			CreatedAt: now,
		}
	}
	a.Mes = p.Mes
	a.MesInicio = p.MesInicio
	a.MesFim = p.MesFim
	a.Observacao = p.Observacao
	a.UpdatedAt = now

	saved, err := s.store.Put(ctx, a)
	if err != nil {
		return nil, err
	}
	s.notify(t, saved)

	s.log.Info().Str("type", string(t)).Str("person", p.PersonID).
		Int("year", p.Ano).Msg("leave record upserted")
	return saved, nil
}

// UpsertInstallment patches one parcela (index 1-3) of an existing
// allotment. The record must already exist; dating a parcela of a plan
// that was never registered is an operator mistake worth surfacing.
func (s *Service) UpsertInstallment(ctx context.Context, t Type, personID string, year, mes, index int, patch InstallmentPatch) (*Allotment, error) {
	if _, err := ParseType(string(t)); err != nil {
		return nil, err
	}
	if index < 1 || index > MaxInstallments {
		return nil, &ValidationError{
			Field:   "installment",
			Message: fmt.Sprintf("installment index must be 1-%d", MaxInstallments),
		}
	}

	existing, err := s.store.Get(ctx, t, personID, year, mes)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("allotment %s/%s/%d: %w", t, personID, year, ErrNotFound)
	}

	a := *existing
	inst := a.Installments[index-1]
	if patch.Inicio != nil {
		inst.Inicio = *patch.Inicio
	}
	if patch.Fim != nil {
		inst.Fim = *patch.Fim
	}
	if patch.Dias != nil {
		inst.Dias = *patch.Dias
	}
	if err := validateInstallment(inst, index); err != nil {
		return nil, err
	}
	a.Installments[index-1] = inst
	a.UpdatedAt = s.now()

	saved, err := s.store.Put(ctx, a)
	if err != nil {
		return nil, err
	}
	s.notify(t, saved)

	s.log.Info().Str("type", string(t)).Str("person", personID).
		Int("year", year).Int("installment", index).
		Msg("leave installment upserted")
	return saved, nil
}

// Delete removes an allotment by id. Returns false when nothing
// matched. The change notification targets the deleted row's own year,
// so cached quota months for that year always recompute.
func (s *Service) Delete(ctx context.Context, t Type, id string) (bool, error) {
	if _, err := ParseType(string(t)); err != nil {
		return false, err
	}
	deleted, err := s.store.Delete(ctx, t, id)
	if err != nil {
		return false, err
	}
	if deleted == nil {
		return false, nil
	}
	s.notify(t, deleted)
	s.log.Info().Str("type", string(t)).Str("id", id).
		Int("year", deleted.Ano).Msg("leave record deleted")
	return true, nil
}

func (s *Service) notify(t Type, a *Allotment) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{
		Topic: events.LeaveTopic(string(t), a.Ano),
		Metadata: map[string]string{
			"person": a.PersonID,
			"id":     a.ID,
		},
	})
}

func validateMonths(t Type, p RecordParams) error {
	check := func(field string, v int, required bool) error {
		if v == 0 && !required {
			return nil
		}
		if v < 1 || v > 12 {
			return &ValidationError{Field: field, Message: "month must be 1-12"}
		}
		return nil
	}
	if t == TypeAbono {
		return check("mes", p.Mes, true)
	}
	// Férias is keyed by person/year alone; a stray month here would
	// split one person's record across two store keys.
	if p.Mes != 0 {
		return &ValidationError{Field: "mes", Message: "not applicable to ferias records"}
	}
	if err := check("mesInicio", p.MesInicio, true); err != nil {
		return err
	}
	return check("mesFim", p.MesFim, false)
}

func validateInstallment(inst Installment, index int) error {
	if (inst.Inicio == "") != (inst.Fim == "") {
		return &ValidationError{
			Field:   "installment",
			Message: fmt.Sprintf("incomplete date range on installment %d", index),
		}
	}
	if inst.Dias < 0 {
		return &ValidationError{
			Field:   "installment",
			Message: fmt.Sprintf("negative day count on installment %d", index),
		}
	}
	if inst.Dated() {
		inicio, err := calendar.ParseDate(inst.Inicio)
		if err != nil {
			return &ValidationError{
				Field:   "installment",
				Message: fmt.Sprintf("malformed start date on installment %d", index),
			}
		}
		fim, err := calendar.ParseDate(inst.Fim)
		if err != nil {
			return &ValidationError{
				Field:   "installment",
				Message: fmt.Sprintf("malformed end date on installment %d", index),
			}
		}
		if fim.Before(inicio) {
			return &ValidationError{
				Field:   "installment",
				Message: fmt.Sprintf("end before start on installment %d", index),
			}
		}
	}
	return nil
}
