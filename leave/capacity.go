/*
capacity.go - Headcount-derived monthly capacity

The battalion may have at most one eleventh of its effective away per
month. The monthly limit for a leave type is that fraction (rounded up)
times the days granted per leave: 30 for férias, 5 for abono. With the
current 176-strong effective that yields the operational 480/80 ceilings.

Limits are injected into the Aggregator so a headcount change propagates
without touching the aggregation.
*/
package leave

import "github.com/shopspring/decimal"

const (
	// DefaultHeadcount is the current battalion effective.
	DefaultHeadcount = 176

	// FeriasDaysPerGrant is the statutory vacation block length.
	FeriasDaysPerGrant = 30

	// AbonoDaysPerGrant matches DefaultAbonoDays; kept separate because
	// the grant length feeds capacity while the default feeds previsto.
	AbonoDaysPerGrant = 5

	// absenceFraction: one in eleven may be away at once.
	absenceDivisor = 11
)

// Limits holds the monthly capacity per leave type.
type Limits struct {
	Ferias int
	Abono  int
}

// For returns the limit for a leave type.
func (l Limits) For(t Type) int {
	if t == TypeAbono {
		return l.Abono
	}
	return l.Ferias
}

// MonthlyLimit derives one type's monthly capacity from headcount.
// Exact decimal arithmetic; the fraction rounds up so a small effective
// never computes a zero ceiling.
func MonthlyLimit(headcount, daysPerGrant int) int {
	if headcount <= 0 || daysPerGrant <= 0 {
		return 0
	}
	simultaneous := decimal.NewFromInt(int64(headcount)).
		Div(decimal.NewFromInt(absenceDivisor)).
		Ceil()
	return int(simultaneous.Mul(decimal.NewFromInt(int64(daysPerGrant))).IntPart())
}

// LimitsForHeadcount derives both limits from one headcount.
func LimitsForHeadcount(headcount int) Limits {
	return Limits{
		Ferias: MonthlyLimit(headcount, FeriasDaysPerGrant),
		Abono:  MonthlyLimit(headcount, AbonoDaysPerGrant),
	}
}

// DefaultLimits is LimitsForHeadcount(DefaultHeadcount): 480 / 80.
func DefaultLimits() Limits {
	return LimitsForHeadcount(DefaultHeadcount)
}
