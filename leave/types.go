/*
Package leave manages the battalion's annual leave facts and the monthly
quota ledger computed from them.

PURPOSE:
  Administrators record one allotment per person per year for each leave
  type: statutory vacation ("férias") and compensatory leave ("abono").
  An allotment splits into up to three installments ("parcelas"). An
  installment is either undated (a plan, counting toward "previsto") or
  pinned to a concrete start/end range (counting toward "marcados" for
  the month its start falls in). The Aggregator reconciles both against
  a capacity ceiling derived from headcount.

KEY CONCEPTS IN THIS FILE (types.go):
  - Type: férias vs abono
  - Installment: one parcela; raw date strings so one bad row cannot
    poison a whole month's aggregation
  - Allotment: the per-person per-year record

DESIGN PRINCIPLES:
  1. Facts are the single source of truth; QuotaData is never stored
  2. Reads degrade row-by-row; writes validate strictly
  3. The vacation/abono asymmetries of the fielded system are preserved

SEE ALSO:
  - quota.go: the previsto/marcados/saldo aggregation
  - capacity.go: headcount-derived monthly limits
  - service.go: validated write path with change notifications
*/
package leave

import (
	"time"

	"github.com/bpma/roster-engine/calendar"
)

// =============================================================================
// LEAVE TYPE
// =============================================================================

type Type string

const (
	TypeFerias Type = "ferias"
	TypeAbono  Type = "abono"
)

var Types = []Type{TypeFerias, TypeAbono}

// DefaultAbonoDays is the statutory compensatory-leave entitlement used
// when an undated abono record carries no day counts. Vacation has no
// such fallback; its previsto uses stored days verbatim.
const DefaultAbonoDays = 5

// ParseType validates a leave type label.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "type", Message: "unknown leave type: " + s}
}

// =============================================================================
// INSTALLMENT - One parcela of an allotment
// =============================================================================

// Installment is one of up to three blocks of an allotment. Inicio/Fim
// hold ISO dates ("2006-01-02") or are empty while the block is only
// planned. They are kept as strings on purpose: aggregation tolerates
// malformed stored values by skipping that installment.
type Installment struct {
	Inicio string
	Fim    string
	Dias   int
}

// Dated reports whether both bounds are present.
func (i Installment) Dated() bool { return i.Inicio != "" && i.Fim != "" }

// Zero reports an entirely empty installment.
func (i Installment) Zero() bool { return i.Inicio == "" && i.Fim == "" && i.Dias == 0 }

// Range parses the bounds. ok is false for undated or malformed values.
func (i Installment) Range() (inicio, fim calendar.Date, ok bool) {
	if !i.Dated() {
		return calendar.Date{}, calendar.Date{}, false
	}
	inicio, err := calendar.ParseDate(i.Inicio)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, false
	}
	fim, err = calendar.ParseDate(i.Fim)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, false
	}
	return inicio, fim, true
}

// MaxInstallments is the maximum number of parcelas per allotment.
const MaxInstallments = 3

// =============================================================================
// ALLOTMENT - Per-person per-year leave record
// =============================================================================

// Allotment is a person's annual leave record for one type.
//
// Férias records carry MesInicio/MesFim, the target month window while
// no installment is dated. Abono records are scoped to a single Mes.
type Allotment struct {
	ID       string
	Type     Type
	PersonID string
	Ano      int

	Mes       int // abono target month (1-12); zero for férias
	MesInicio int // férias planned window start month; zero for abono
	MesFim    int // férias planned window end month; zero = MesInicio

	Observacao   string
	Installments [MaxInstallments]Installment

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasDatedInstallment reports whether any installment has a full range.
// While false, the record still counts as previsto.
func (a Allotment) HasDatedInstallment() bool {
	for _, i := range a.Installments {
		if i.Dated() {
			return true
		}
	}
	return false
}

// PlannedDays sums the stored day counts across installments.
func (a Allotment) PlannedDays() int {
	total := 0
	for _, i := range a.Installments {
		total += i.Dias
	}
	return total
}

// TargetsMonth reports whether the record's planned window includes the
// month: Mes for abono, the MesInicio..MesFim bounds for férias.
func (a Allotment) TargetsMonth(month int) bool {
	if a.Type == TypeAbono {
		return a.Mes == month
	}
	fim := a.MesFim
	if fim == 0 {
		fim = a.MesInicio
	}
	return a.MesInicio == month || fim == month
}
