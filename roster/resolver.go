/*
resolver.go - Alteration-over-rotation composition

For any (date, unit): the recorded override wins when one exists,
otherwise the rotation's computed team. The holiday flag rides along for
views only; the operational rotation runs on holidays.

Read-path degradation: a stored alteration whose team label is no longer
valid is skipped (logged) rather than failing a whole month's view.
*/
package roster

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bpma/roster-engine/calendar"
)

// Resolution is the answer for one day of one unit.
type Resolution struct {
	Date       calendar.Date
	Unit       Unit
	Team       Team
	Overridden bool
	Holiday    bool
}

// Resolver composes the rotation policy with the alteration store.
type Resolver struct {
	rotation    *RotationPolicy
	alterations AlterationStore
	cal         calendar.HolidayCalendar
	log         zerolog.Logger
}

// NewResolver builds a resolver. cal may be nil (holiday flag always false).
func NewResolver(rotation *RotationPolicy, alterations AlterationStore, cal calendar.HolidayCalendar, log zerolog.Logger) *Resolver {
	return &Resolver{rotation: rotation, alterations: alterations, cal: cal, log: log}
}

// Resolve returns the team on duty for (d, u), alteration first.
func (r *Resolver) Resolve(ctx context.Context, d calendar.Date, u Unit) (Resolution, error) {
	res := Resolution{Date: d, Unit: u, Holiday: r.isHoliday(d)}

	alt, err := r.alterations.Get(ctx, d, u)
	if err != nil {
		return Resolution{}, err
	}
	if alt != nil {
		if team, perr := ParseTeam(string(alt.NewTeam)); perr == nil {
			res.Team = team
			res.Overridden = true
			return res, nil
		}
		// Bad stored row: fall through to the rotation.
		r.log.Warn().Stringer("date", d).Str("unit", string(u)).
			Str("team", string(alt.NewTeam)).Msg("skipping alteration with unknown team")
	}

	team, err := r.rotation.TeamOnDuty(d, u)
	if err != nil {
		return Resolution{}, err
	}
	res.Team = team
	return res, nil
}

// HasAlteration reports whether an override exists for (d, u).
func (r *Resolver) HasAlteration(ctx context.Context, d calendar.Date, u Unit) (bool, error) {
	alt, err := r.alterations.Get(ctx, d, u)
	if err != nil {
		return false, err
	}
	return alt != nil, nil
}

// ResolveRange resolves every day in [from, to], ascending. The store is
// hit once for the whole range.
func (r *Resolver) ResolveRange(ctx context.Context, from, to calendar.Date, u Unit) ([]Resolution, error) {
	if from.IsZero() || to.IsZero() {
		return nil, &ValidationError{Field: "range", Message: "start and end dates are required"}
	}
	if to.Before(from) {
		return nil, &ValidationError{Field: "range", Message: "end date before start date"}
	}
	if !r.rotation.HasUnit(u) {
		return nil, ErrUnknownUnit
	}

	alts, err := r.alterations.ListRange(ctx, u, from, to)
	if err != nil {
		return nil, err
	}
	overrides := make(map[string]Alteration, len(alts))
	for _, a := range alts {
		overrides[a.Date.String()] = a
	}

	resolutions := make([]Resolution, 0, calendar.DaysBetween(from, to)+1)
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		res := Resolution{Date: d, Unit: u, Holiday: r.isHoliday(d)}

		if alt, ok := overrides[d.String()]; ok {
			if team, perr := ParseTeam(string(alt.NewTeam)); perr == nil {
				res.Team = team
				res.Overridden = true
				resolutions = append(resolutions, res)
				continue
			}
			r.log.Warn().Stringer("date", d).Str("unit", string(u)).
				Str("team", string(alt.NewTeam)).Msg("skipping alteration with unknown team")
		}

		team, terr := r.rotation.TeamOnDuty(d, u)
		if terr != nil {
			return nil, terr
		}
		res.Team = team
		resolutions = append(resolutions, res)
	}
	return resolutions, nil
}

func (r *Resolver) isHoliday(d calendar.Date) bool {
	return r.cal != nil && r.cal.IsHoliday(d)
}
