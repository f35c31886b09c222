/*
quota.go - Monthly quota aggregation (previsto / marcados / saldo)

ALGORITHM (uniform for both leave types):
  limite    injected monthly capacity for the type (see capacity.go)
  previsto  day counts of records targeting the month that have NO dated
            installment yet; abono falls back to the 5-day entitlement
            when the record carries no day counts, férias never does
  marcados  for every dated installment whose START falls in the target
            month, the inclusive calendar span (fim - inicio + 1). An
            installment starting in another month contributes nothing
            here even when it spans into the target month: the start
            month is credited, exactly as the fielded system does.
  saldo     limite - marcados; negative saldo is meaningful
            over-allocation, not an error

DEGRADATION:
  One malformed stored row must not fail a whole month's dashboard.
  Unparseable dates and inverted ranges contribute zero and are logged.
*/
package leave

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bpma/roster-engine/calendar"
)

// QuotaData is the derived monthly ledger for one leave type. It is
// recomputed on demand and never persisted.
type QuotaData struct {
	Limite   int
	Previsto int
	Marcados int
	Saldo    int
}

// Aggregator computes QuotaData from the current leave facts.
type Aggregator struct {
	store  Store
	limits Limits
	log    zerolog.Logger
}

// NewAggregator wires the read path.
func NewAggregator(store Store, limits Limits, log zerolog.Logger) *Aggregator {
	return &Aggregator{store: store, limits: limits, log: log}
}

// Limits returns the injected monthly capacities.
func (g *Aggregator) Limits() Limits { return g.limits }

// ComputeQuota aggregates the month's quota for a leave type.
// month is 1-12.
func (g *Aggregator) ComputeQuota(ctx context.Context, t Type, year, month int) (QuotaData, error) {
	if month < 1 || month > 12 {
		return QuotaData{}, &ValidationError{Field: "month", Message: "month must be 1-12"}
	}
	if _, err := ParseType(string(t)); err != nil {
		return QuotaData{}, err
	}

	allotments, err := g.store.ListForYear(ctx, t, year)
	if err != nil {
		return QuotaData{}, err
	}

	limite := g.limits.For(t)
	previsto := 0
	marcados := 0

	for _, a := range allotments {
		if a.TargetsMonth(month) && !a.HasDatedInstallment() {
			previsto += g.plannedDays(a)
		}

		for idx, inst := range a.Installments {
			marcados += g.markedDays(a, idx, inst, year, month)
		}
	}

	return QuotaData{
		Limite:   limite,
		Previsto: previsto,
		Marcados: marcados,
		Saldo:    limite - marcados,
	}, nil
}

// plannedDays counts an undated record toward previsto. Abono records
// with no stored days fall back to the statutory 5; férias uses the
// stored counts verbatim.
func (g *Aggregator) plannedDays(a Allotment) int {
	total := 0
	for _, inst := range a.Installments {
		if inst.Dias > 0 {
			total += inst.Dias
		}
	}
	if a.Type == TypeAbono && total <= 0 {
		return DefaultAbonoDays
	}
	return total
}

// markedDays credits a dated installment to the month its start falls
// in, as the inclusive calendar span. Malformed rows contribute zero.
func (g *Aggregator) markedDays(a Allotment, idx int, inst Installment, year, month int) int {
	if !inst.Dated() {
		return 0
	}
	inicio, fim, ok := inst.Range()
	if !ok {
		g.log.Warn().Str("allotment", a.ID).Int("installment", idx+1).
			Str("inicio", inst.Inicio).Str("fim", inst.Fim).
			Msg("skipping installment with malformed dates")
		return 0
	}
	if inicio.Year() != year || int(inicio.Month()) != month {
		return 0
	}
	days := calendar.DaysBetween(inicio, fim) + 1
	if days < 0 {
		g.log.Warn().Str("allotment", a.ID).Int("installment", idx+1).
			Msg("skipping installment with inverted range")
		return 0
	}
	return days
}
