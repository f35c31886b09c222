package leave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bpma/roster-engine/leave"
)

func TestDefaultLimits_MatchOperationalCeilings(t *testing.T) {
	// GIVEN: The current 176-strong effective
	// WHEN: Deriving the monthly limits
	// THEN: ceil(176/11) = 16 simultaneous absences → 480 férias days,
	//       80 abono days

	limits := leave.DefaultLimits()
	assert.Equal(t, 480, limits.Ferias)
	assert.Equal(t, 80, limits.Abono)
}

func TestMonthlyLimit_RoundsTheFractionUp(t *testing.T) {
	// 100/11 = 9.09..., rounded up to 10 simultaneous absences.
	assert.Equal(t, 300, leave.MonthlyLimit(100, 30))
	assert.Equal(t, 50, leave.MonthlyLimit(100, 5))

	// A tiny effective still gets a non-zero ceiling.
	assert.Equal(t, 30, leave.MonthlyLimit(1, 30))
}

func TestMonthlyLimit_DegenerateInputs(t *testing.T) {
	assert.Equal(t, 0, leave.MonthlyLimit(0, 30))
	assert.Equal(t, 0, leave.MonthlyLimit(-5, 30))
	assert.Equal(t, 0, leave.MonthlyLimit(176, 0))
}

func TestLimitsFor_SelectsByType(t *testing.T) {
	limits := leave.Limits{Ferias: 480, Abono: 80}
	assert.Equal(t, 480, limits.For(leave.TypeFerias))
	assert.Equal(t, 80, limits.For(leave.TypeAbono))
}
