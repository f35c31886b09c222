package roster_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/roster"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newDefaultPolicy() *roster.RotationPolicy {
	return roster.NewRotationPolicy(roster.DefaultRotations(2026), nil)
}

func date(year int, month time.Month, day int) calendar.Date {
	return calendar.NewDate(year, month, day)
}

// =============================================================================
// CYCLE ARITHMETIC TESTS
// =============================================================================

func TestTeamOnDuty_AnchorDayReturnsAnchorTeam(t *testing.T) {
	// GIVEN: The default rotation anchored at Jan 1 2026 with Bravo on duty
	// WHEN: Asking who covers the anchor date
	// THEN: The anchor team is returned

	policy := newDefaultPolicy()

	team, err := policy.TeamOnDuty(date(2026, time.January, 1), roster.UnitGuarda)
	require.NoError(t, err)
	assert.Equal(t, roster.TeamBravo, team)
}

func TestTeamOnDuty_FourDayCycleAdvancesInOrder(t *testing.T) {
	policy := newDefaultPolicy()

	expected := []roster.Team{
		roster.TeamBravo,   // Jan 1 (anchor)
		roster.TeamCharlie, // Jan 2
		roster.TeamDelta,   // Jan 3
		roster.TeamAlfa,    // Jan 4
		roster.TeamBravo,   // Jan 5 (full cycle)
	}
	for i, want := range expected {
		team, err := policy.TeamOnDuty(date(2026, time.January, 1+i), roster.UnitGuarda)
		require.NoError(t, err)
		assert.Equal(t, want, team, "day %d", i+1)
	}
}

func TestTeamOnDuty_DatesBeforeAnchorWorkBackward(t *testing.T) {
	// GIVEN: The anchor at Jan 1 2026
	// WHEN: Asking about Dec 31 2025, one day before the anchor
	// THEN: The cycle runs backward: the team one position behind Bravo

	policy := newDefaultPolicy()

	team, err := policy.TeamOnDuty(date(2025, time.December, 31), roster.UnitGuarda)
	require.NoError(t, err)
	assert.Equal(t, roster.TeamAlfa, team)
}

func TestTeamOnDuty_GTASixDayCycleWithThreeTeams(t *testing.T) {
	policy := newDefaultPolicy()

	team, err := policy.TeamOnDuty(date(2026, time.January, 1), roster.UnitGTA)
	require.NoError(t, err)
	assert.Equal(t, roster.TeamAlfa, team)

	team, err = policy.TeamOnDuty(date(2026, time.January, 2), roster.UnitGTA)
	require.NoError(t, err)
	assert.Equal(t, roster.TeamBravo, team)

	// One full six-day cycle later the anchor team is back.
	team, err = policy.TeamOnDuty(date(2026, time.January, 7), roster.UnitGTA)
	require.NoError(t, err)
	assert.Equal(t, roster.TeamAlfa, team)
}

func TestTeamOnDuty_Deterministic(t *testing.T) {
	// GIVEN: Any fixed (date, unit)
	// WHEN: Resolving it repeatedly
	// THEN: The answer never changes

	policy := newDefaultPolicy()
	d := date(2026, time.March, 10)

	first, err := policy.TeamOnDuty(d, roster.UnitLacustre)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		team, err := policy.TeamOnDuty(d, roster.UnitLacustre)
		require.NoError(t, err)
		assert.Equal(t, first, team)
	}
}

func TestTeamOnDuty_UnknownUnit_Rejected(t *testing.T) {
	policy := newDefaultPolicy()

	_, err := policy.TeamOnDuty(date(2026, time.March, 10), roster.Unit("Cavalaria"))
	assert.ErrorIs(t, err, roster.ErrUnknownUnit)
}

func TestTeamOnDuty_EveryDefaultUnitCovered(t *testing.T) {
	policy := newDefaultPolicy()
	for _, u := range roster.Units {
		_, err := policy.TeamOnDuty(date(2026, time.June, 15), u)
		assert.NoError(t, err, "unit %s", u)
	}
}

// =============================================================================
// HOLIDAY SHIFT TESTS
// =============================================================================

func TestTeamOnDuty_HolidayShiftPausesCycle(t *testing.T) {
	// GIVEN: A rotation that does not advance on holidays, with Jan 1 a holiday
	// WHEN: Resolving the day after a holiday
	// THEN: The team is one position earlier than plain calendar distance

	cal := calendar.NewBuiltinCalendar()
	rotations := []roster.UnitRotation{{
		Unit:         roster.UnitGuarda,
		Teams:        roster.Teams,
		CycleLength:  4,
		AnchorDate:   date(2025, time.December, 31),
		AnchorTeam:   roster.TeamAlfa,
		HolidayShift: true,
	}}
	policy := roster.NewRotationPolicy(rotations, cal)

	// Jan 1 2026 is a holiday: it does not count, so Jan 2 is one
	// advancing day past the anchor, not two.
	team, err := policy.TeamOnDuty(date(2026, time.January, 2), roster.UnitGuarda)
	require.NoError(t, err)
	assert.Equal(t, roster.TeamBravo, team)
}
