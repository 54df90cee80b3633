package practice

import (
	"sort"

	"github.com/derekprior/season/internal/league"
)

// repair tries to seat each unassigned team by moving one auto-placed team
// that stands in its way: either a team filling a slot the unassigned team
// could use, or a team of the same coach whose slot overlaps that option. A
// move is kept only when the moved team lands in another feasible slot and
// the waiting team then fits. Locked and manual placements never move.
func (a *assigner) repair() {
	var still []league.Unassigned
	for _, u := range a.unassigned {
		if a.trySwap(a.teamByID[u.TeamID]) {
			continue
		}
		still = append(still, u)
	}
	a.unassigned = still
}

func (a *assigner) trySwap(waiting league.Team) bool {
	for _, target := range a.slots {
		if !target.OpenTo(waiting.Division) || target.Capacity == 0 || a.coachUnavailable(waiting, target) {
			continue
		}

		if a.used[target.ID] >= target.Capacity {
			for _, mover := range a.movable(target.ID) {
				if a.coachBusy(waiting, target, mover.ID) {
					continue
				}
				if a.relocate(mover, waiting, target) {
					return true
				}
			}
			continue
		}

		for _, sibling := range a.overlappingSiblings(waiting, target) {
			if a.relocate(sibling, waiting, target) {
				return true
			}
		}
	}
	return false
}

// relocate moves mover to its best other slot and seats waiting in target.
// On failure mover goes back where it was.
func (a *assigner) relocate(mover, waiting league.Team, target league.Slot) bool {
	from := a.slotByID[a.placed[mover.ID].slotID]

	a.unassign(mover)
	alt, _, ok := a.best(mover, from.ID)
	if ok {
		a.assign(mover, alt, league.SourceAuto)
		if a.feasible(waiting, target, "") == blockNone {
			a.assign(waiting, target, league.SourceAuto)
			a.swaps = append(a.swaps, Swap{
				MovedTeamID:  mover.ID,
				FromSlotID:   from.ID,
				ToSlotID:     alt.ID,
				PlacedTeamID: waiting.ID,
			})
			return true
		}
		a.unassign(mover)
	}
	a.assign(mover, from, league.SourceAuto)
	return false
}

// movable returns the auto-placed teams in slotID ordered by id.
func (a *assigner) movable(slotID string) []league.Team {
	var teams []league.Team
	for teamID, p := range a.placed {
		if p.slotID == slotID && p.source == league.SourceAuto {
			teams = append(teams, a.teamByID[teamID])
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams
}

// overlappingSiblings returns the auto-placed teams sharing t's coach whose
// slot overlaps s, ordered by id.
func (a *assigner) overlappingSiblings(t league.Team, s league.Slot) []league.Team {
	if t.CoachID == "" {
		return nil
	}
	var teams []league.Team
	for _, id := range a.coachTeams[t.CoachID] {
		if id == t.ID {
			continue
		}
		p, ok := a.placed[id]
		if !ok || p.source != league.SourceAuto {
			continue
		}
		other := a.slotByID[p.slotID]
		if league.Overlaps(s.Start, s.End, other.Start, other.End) {
			teams = append(teams, a.teamByID[id])
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams
}

func (a *assigner) coachUnavailable(t league.Team, s league.Slot) bool {
	if t.CoachID == "" {
		return false
	}
	p, ok := a.coachPrefs[t.CoachID]
	return ok && (p.unavailable[s.ID] || p.unavailable[s.Base()])
}

// coachBlocked reports whether t's coach rules out s, ignoring one team.
func (a *assigner) coachBlocked(t league.Team, s league.Slot, ignore string) bool {
	if t.CoachID == "" {
		return false
	}
	return a.coachUnavailable(t, s) || a.coachBusy(t, s, ignore)
}
