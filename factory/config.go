/*
Package factory provides JSON to Go rotation/capacity conversion.

PURPOSE:
  Converts JSON configuration into roster.UnitRotation values and
  leave.Limits. This enables operational changes without code changes -
  the battalion staff section can re-anchor a rotation or adjust the
  effective headcount in a config file, and the factory creates the
  proper Go structs.

WHY JSON?
  - Non-developers can adjust anchors and headcount
  - Version control for operational configuration
  - One file describes the whole battalion

JSON SCHEMA:
  {
    "year": 2026,
    "headcount": 176,
    "units": [
      {
        "unit": "Guarda",
        "teams": ["Alfa", "Bravo", "Charlie", "Delta"],
        "cycle_length": 4,
        "anchor_date": "2026-01-01",
        "anchor_team": "Bravo",
        "holiday_shift": false
      }
    ]
  }

KEY FEATURES:
  - Validates team labels and unit names
  - Fills defaults from the battalion's standing rotation scheme
  - Units absent from the config keep their defaults

USAGE:
  factory := NewConfigFactory()
  rotations, limits, err := factory.ParseConfig(jsonStr)

SEE ALSO:
  - roster/rotation.go: UnitRotation and the duty arithmetic
  - leave/capacity.go: headcount-derived monthly limits
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/bpma/roster-engine/calendar"
	"github.com/bpma/roster-engine/leave"
	"github.com/bpma/roster-engine/roster"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the JSON representation of the battalion configuration.
type ConfigJSON struct {
	Year      int        `json:"year"`
	Headcount int        `json:"headcount,omitempty"`
	Units     []UnitJSON `json:"units,omitempty"`
}

// UnitJSON overrides one unit's rotation parameters. Omitted fields
// keep the default for that unit.
type UnitJSON struct {
	Unit         string   `json:"unit"`
	Teams        []string `json:"teams,omitempty"`
	CycleLength  int      `json:"cycle_length,omitempty"`
	AnchorDate   string   `json:"anchor_date,omitempty"`
	AnchorTeam   string   `json:"anchor_team,omitempty"`
	HolidayShift bool     `json:"holiday_shift,omitempty"`
}

// =============================================================================
// CONFIG FACTORY
// =============================================================================

// ConfigFactory converts JSON configuration to Go structs.
type ConfigFactory struct{}

// NewConfigFactory creates a new config factory.
func NewConfigFactory() *ConfigFactory {
	return &ConfigFactory{}
}

// ParseConfig parses a JSON string into rotations and limits.
func (f *ConfigFactory) ParseConfig(jsonStr string) ([]roster.UnitRotation, leave.Limits, error) {
	var cj ConfigJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return nil, leave.Limits{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return f.FromJSON(cj)
}

// FromJSON converts a parsed configuration, filling defaults.
func (f *ConfigFactory) FromJSON(cj ConfigJSON) ([]roster.UnitRotation, leave.Limits, error) {
	year := cj.Year
	if year == 0 {
		year = calendar.Today().Year()
	}

	headcount := cj.Headcount
	if headcount == 0 {
		headcount = leave.DefaultHeadcount
	}
	if headcount < 0 {
		return nil, leave.Limits{}, fmt.Errorf("headcount must be positive, got %d", headcount)
	}
	limits := leave.LimitsForHeadcount(headcount)

	rotations := roster.DefaultRotations(year)
	byUnit := make(map[roster.Unit]int, len(rotations))
	for i, r := range rotations {
		byUnit[r.Unit] = i
	}

	for _, uj := range cj.Units {
		unit, err := roster.ParseUnit(uj.Unit)
		if err != nil {
			return nil, leave.Limits{}, fmt.Errorf("config unit %q: %w", uj.Unit, err)
		}
		idx, ok := byUnit[unit]
		if !ok {
			return nil, leave.Limits{}, fmt.Errorf("config unit %q has no default rotation", uj.Unit)
		}
		r := rotations[idx]

		if len(uj.Teams) > 0 {
			teams := make([]roster.Team, 0, len(uj.Teams))
			for _, label := range uj.Teams {
				team, err := roster.ParseTeam(label)
				if err != nil {
					return nil, leave.Limits{}, fmt.Errorf("config unit %q: %w", uj.Unit, err)
				}
				teams = append(teams, team)
			}
			r.Teams = teams
		}
		if uj.CycleLength > 0 {
			r.CycleLength = uj.CycleLength
		}
		if uj.AnchorDate != "" {
			d, err := calendar.ParseDate(uj.AnchorDate)
			if err != nil {
				return nil, leave.Limits{}, fmt.Errorf("config unit %q anchor date: %w", uj.Unit, err)
			}
			r.AnchorDate = d
		}
		if uj.AnchorTeam != "" {
			team, err := roster.ParseTeam(uj.AnchorTeam)
			if err != nil {
				return nil, leave.Limits{}, fmt.Errorf("config unit %q anchor team: %w", uj.Unit, err)
			}
			r.AnchorTeam = team
		}
		r.HolidayShift = uj.HolidayShift

		rotations[idx] = r
	}

	return rotations, limits, nil
}
