package roster

import (
	"fmt"

	"github.com/derekprior/season/internal/league"
)

// Buddy diagnostic reasons.
const (
	ReasonNotReciprocated = "not-reciprocated"
	ReasonMissingPlayer   = "missing-player"
	ReasonSelfReference   = "self-reference"
)

// Unit is one player, or two players who asked for each other. Units are
// placed on teams whole.
type Unit struct {
	Players []league.Player
	CoachID string
}

// Size returns the number of players in the unit.
func (u Unit) Size() int { return len(u.Players) }

// PlayerIDs returns the unit's player ids.
func (u Unit) PlayerIDs() []string {
	ids := make([]string, len(u.Players))
	for i, p := range u.Players {
		ids[i] = p.ID
	}
	return ids
}

// BuddyDiagnostic records a buddy request that did not produce a pair.
type BuddyDiagnostic struct {
	Division string
	PlayerID string
	BuddyID  string
	Reason   string
}

// BuildUnits merges mutual buddy requests within one division's players.
// Units keep the order of their first player in the input.
func BuildUnits(players []league.Player) ([]Unit, []BuddyDiagnostic, error) {
	byID := make(map[string]league.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	merged := make(map[string]bool)
	var units []Unit
	var diags []BuddyDiagnostic

	for _, p := range players {
		if merged[p.ID] {
			continue
		}

		if p.BuddyID != "" {
			buddy, ok := byID[p.BuddyID]
			switch {
			case p.BuddyID == p.ID:
				diags = append(diags, BuddyDiagnostic{p.Division, p.ID, p.BuddyID, ReasonSelfReference})
			case !ok:
				diags = append(diags, BuddyDiagnostic{p.Division, p.ID, p.BuddyID, ReasonMissingPlayer})
			case buddy.BuddyID != p.ID:
				diags = append(diags, BuddyDiagnostic{p.Division, p.ID, p.BuddyID, ReasonNotReciprocated})
			default:
				u, err := pairUnit(p, buddy)
				if err != nil {
					return nil, nil, err
				}
				merged[p.ID] = true
				merged[buddy.ID] = true
				units = append(units, u)
				continue
			}
		}

		merged[p.ID] = true
		units = append(units, Unit{Players: []league.Player{p}, CoachID: p.CoachID})
	}

	return units, diags, nil
}

func pairUnit(a, b league.Player) (Unit, error) {
	coach := a.CoachID
	if b.CoachID != "" {
		if coach != "" && coach != b.CoachID {
			return Unit{}, fmt.Errorf("%w: buddies %q and %q belong to different coaches (%q, %q)",
				league.ErrConstraintConflict, a.ID, b.ID, a.CoachID, b.CoachID)
		}
		coach = b.CoachID
	}
	return Unit{Players: []league.Player{a, b}, CoachID: coach}, nil
}
