/*
Package roster decides which standing team covers a unit on a calendar day.

PURPOSE:
  The battalion's operational posts run a continuous team rotation that
  never pauses for weekends or holidays. Operators occasionally override
  a day by hand (team swap, reinforcement). This package owns both halves:
  the deterministic rotation policy and the persisted manual alterations,
  composed by the Resolver.

KEY CONCEPTS IN THIS FILE (types.go):
  - Team: one of the standing duty teams (Alfa/Bravo/Charlie/Delta)
  - Unit: an operational post with its own independent rotation
  - Alteration: a recorded manual override for one (date, unit) pair

DESIGN PRINCIPLES:
  1. Determinism: the rotation is a pure function of (date, unit, config)
  2. Single row per key: at most one alteration per (date, unit)
  3. Audit: an alteration captures the team it replaced and who wrote it

SEE ALSO:
  - rotation.go: cycle arithmetic and per-unit configuration
  - alteration.go: override model and store contract
  - resolver.go: alteration-over-rotation composition
*/
package roster

import (
	"time"

	"github.com/bpma/roster-engine/calendar"
)

// =============================================================================
// TEAM - Standing duty team label
// =============================================================================

type Team string

const (
	TeamAlfa    Team = "Alfa"
	TeamBravo   Team = "Bravo"
	TeamCharlie Team = "Charlie"
	TeamDelta   Team = "Delta"
)

// Teams is the full fixed set, in rotation order.
var Teams = []Team{TeamAlfa, TeamBravo, TeamCharlie, TeamDelta}

// ParseTeam validates a team label.
func ParseTeam(s string) (Team, error) {
	for _, t := range Teams {
		if string(t) == s {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "team", Message: "unknown team label: " + s}
}

// =============================================================================
// UNIT - Operational post with its own rotation
// =============================================================================

type Unit string

const (
	UnitGuarda      Unit = "Guarda"
	UnitArmeiro     Unit = "Armeiro"
	UnitRPAmbiental Unit = "RP Ambiental"
	UnitGOC         Unit = "GOC"
	UnitLacustre    Unit = "Lacustre"
	UnitGTA         Unit = "GTA"
)

var Units = []Unit{UnitGuarda, UnitArmeiro, UnitRPAmbiental, UnitGOC, UnitLacustre, UnitGTA}

// ParseUnit validates a unit label.
func ParseUnit(s string) (Unit, error) {
	for _, u := range Units {
		if string(u) == s {
			return u, nil
		}
	}
	return "", &ValidationError{Field: "unit", Message: "unknown unit: " + s}
}

// =============================================================================
// ALTERATION - Manual override of the computed roster
// =============================================================================

// Alteration is a human override of the rotation for one (date, unit).
// ReplacedTeam is the team the rotation would have assigned when the
// alteration was written; nil when it could not be computed.
type Alteration struct {
	ID           string
	Date         calendar.Date
	Unit         Unit
	ReplacedTeam *Team
	NewTeam      Team
	Reason       string
	CreatedBy    string
	CreatedAt    time.Time
}
