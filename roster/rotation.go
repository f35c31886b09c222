/*
rotation.go - Deterministic (date, unit) → Team cycle arithmetic

PURPOSE:
  Maps any calendar date to the team on duty for a unit, given the unit's
  cycle configuration: an anchor date, the team on duty that date, the
  rotation order, and the cycle length in days. The offset between the
  queried date and the anchor, taken modulo the cycle length, selects the
  team. Works identically forward and backward in time.

CONFIGURATION, NOT CODE:
  Cycle length and anchors are operational configuration (see factory/).
  DefaultRotations pins the production defaults: five posts on a 4-day
  cycle with four teams (24h on / 72h off), GTA on a 6-day cycle with
  three teams, anchors at January 1 of the queried year.

HOLIDAY SHIFT:
  Whether holidays pause the cycle for a unit is an open operational
  question. HolidayShift models it as a per-unit toggle: when set, only
  non-holiday days advance the cycle. It defaults to off.
*/
package roster

import (
	"github.com/bpma/roster-engine/calendar"
)

// UnitRotation is the cycle configuration for one unit.
type UnitRotation struct {
	Unit         Unit
	Teams        []Team        // rotation order
	CycleLength  int           // days per full position advance set
	AnchorDate   calendar.Date // date AnchorTeam was on duty
	AnchorTeam   Team
	HolidayShift bool // when set, holidays do not advance the cycle
}

// DefaultRotations returns the production cycle configuration with
// anchors at January 1 of the given year.
func DefaultRotations(year int) []UnitRotation {
	jan1 := calendar.StartOfYear(year)
	fourTeams := []Team{TeamAlfa, TeamBravo, TeamCharlie, TeamDelta}

	rotations := make([]UnitRotation, 0, len(Units))
	for _, u := range Units {
		r := UnitRotation{
			Unit:        u,
			Teams:       fourTeams,
			CycleLength: 4,
			AnchorDate:  jan1,
			AnchorTeam:  TeamBravo,
		}
		if u == UnitGTA {
			// 12x60 scale: three teams over a six-day rhythm.
			r.Teams = []Team{TeamAlfa, TeamBravo, TeamCharlie}
			r.CycleLength = 6
			r.AnchorTeam = TeamAlfa
		}
		rotations = append(rotations, r)
	}
	return rotations
}

// RotationPolicy answers TeamOnDuty for every configured unit.
type RotationPolicy struct {
	units map[Unit]UnitRotation
	cal   calendar.HolidayCalendar // consulted only for HolidayShift units
}

// NewRotationPolicy builds a policy from per-unit configurations.
// cal may be nil when no unit uses HolidayShift.
func NewRotationPolicy(rotations []UnitRotation, cal calendar.HolidayCalendar) *RotationPolicy {
	units := make(map[Unit]UnitRotation, len(rotations))
	for _, r := range rotations {
		units[r.Unit] = r
	}
	return &RotationPolicy{units: units, cal: cal}
}

// TeamOnDuty returns the rotation's team for a unit on a date.
// Pure and stable: repeated calls always agree.
func (p *RotationPolicy) TeamOnDuty(d calendar.Date, u Unit) (Team, error) {
	r, ok := p.units[u]
	if !ok {
		return "", ErrUnknownUnit
	}

	offset := p.cycleOffset(r, d)
	position := ((offset % r.CycleLength) + r.CycleLength) % r.CycleLength

	anchorIdx := 0
	for i, t := range r.Teams {
		if t == r.AnchorTeam {
			anchorIdx = i
			break
		}
	}
	return r.Teams[(anchorIdx+position)%len(r.Teams)], nil
}

// HasUnit reports whether the policy has a rotation for the unit.
func (p *RotationPolicy) HasUnit(u Unit) bool {
	_, ok := p.units[u]
	return ok
}

// cycleOffset counts the days that advance the cycle between the anchor
// and the queried date. With HolidayShift off this is plain calendar
// distance; with it on, holidays are excluded from the count.
func (p *RotationPolicy) cycleOffset(r UnitRotation, d calendar.Date) int {
	if !r.HolidayShift || p.cal == nil {
		return calendar.DaysBetween(r.AnchorDate, d)
	}

	offset := 0
	switch {
	case d.After(r.AnchorDate):
		for x := r.AnchorDate.AddDays(1); x.BeforeOrEqual(d); x = x.AddDays(1) {
			if !p.cal.IsHoliday(x) {
				offset++
			}
		}
	case d.Before(r.AnchorDate):
		for x := d.AddDays(1); x.BeforeOrEqual(r.AnchorDate); x = x.AddDays(1) {
			if !p.cal.IsHoliday(x) {
				offset--
			}
		}
	}
	return offset
}
