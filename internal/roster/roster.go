// Package roster partitions a division's players into teams.
package roster

import (
	"fmt"
	"sort"

	"github.com/derekprior/season/internal/league"
)

// Overflow reasons.
const (
	OverflowCoachCapacity        = "coach-capacity"
	OverflowInsufficientCapacity = "insufficient-capacity"
)

// RNG is the random source used for fairness shuffles and tie-breaks.
// *rand.Rand satisfies it; seed it to make a run reproducible.
type RNG interface {
	Intn(n int) int
}

// Overflow is a unit that could not be placed on any team.
type Overflow struct {
	Division  string
	PlayerIDs []string
	CoachID   string
	Reason    string
}

// CoachCoverage summarizes how many of a division's teams have a coach.
type CoachCoverage struct {
	Division         string
	Teams            int
	CoachedTeamIDs   []string
	UncoachedTeamIDs []string
}

// Result is the output of Allocate.
type Result struct {
	TeamsByDivision    map[string][]league.Team
	OverflowByDivision map[string][]Overflow
	BuddyDiagnostics   []BuddyDiagnostic
	CoachCoverage      map[string]CoachCoverage
}

// Teams returns every team ordered by division, then team id.
func (r *Result) Teams() []league.Team {
	divisions := make([]string, 0, len(r.TeamsByDivision))
	for d := range r.TeamsByDivision {
		divisions = append(divisions, d)
	}
	sort.Strings(divisions)

	var teams []league.Team
	for _, d := range divisions {
		teams = append(teams, r.TeamsByDivision[d]...)
	}
	return teams
}

// Overflow returns every overflow record ordered by division.
func (r *Result) Overflow() []Overflow {
	divisions := make([]string, 0, len(r.OverflowByDivision))
	for d := range r.OverflowByDivision {
		divisions = append(divisions, d)
	}
	sort.Strings(divisions)

	var out []Overflow
	for _, d := range divisions {
		out = append(out, r.OverflowByDivision[d]...)
	}
	return out
}

// Allocate forms teams for every division present in players. Divisions are
// processed in id order so a seeded rng yields the same teams every run.
func Allocate(players []league.Player, divisions []league.Division, rng RNG) (*Result, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: rng is required", league.ErrInvalidInput)
	}

	configs := make(map[string]league.Division, len(divisions))
	for _, d := range divisions {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: division config has no id", league.ErrInvalidInput)
		}
		if d.MaxRosterSize <= 0 {
			return nil, fmt.Errorf("%w: division %q max roster size must be positive, got %d",
				league.ErrInvalidInput, d.ID, d.MaxRosterSize)
		}
		if _, ok := configs[d.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate division config %q", league.ErrInvalidInput, d.ID)
		}
		configs[d.ID] = d
	}

	seen := make(map[string]bool, len(players))
	byDivision := make(map[string][]league.Player)
	for i, p := range players {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: player %d has no id", league.ErrInvalidInput, i)
		}
		if p.Division == "" {
			return nil, fmt.Errorf("%w: player %q has no division", league.ErrInvalidInput, p.ID)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate player id %q", league.ErrInvalidInput, p.ID)
		}
		if _, ok := configs[p.Division]; !ok {
			return nil, fmt.Errorf("%w: no division config for %q (player %q)", league.ErrInvalidInput, p.Division, p.ID)
		}
		seen[p.ID] = true
		byDivision[p.Division] = append(byDivision[p.Division], p)
	}

	order := make([]string, 0, len(byDivision))
	for d := range byDivision {
		order = append(order, d)
	}
	sort.Strings(order)

	result := &Result{
		TeamsByDivision:    make(map[string][]league.Team),
		OverflowByDivision: make(map[string][]Overflow),
		CoachCoverage:      make(map[string]CoachCoverage),
	}
	for _, d := range order {
		a, err := allocateDivision(configs[d], byDivision[d], rng)
		if err != nil {
			return nil, fmt.Errorf("division %q: %w", d, err)
		}
		result.TeamsByDivision[d] = a.teams
		if len(a.overflow) > 0 {
			result.OverflowByDivision[d] = a.overflow
		}
		result.BuddyDiagnostics = append(result.BuddyDiagnostics, a.diags...)
		result.CoachCoverage[d] = a.coverage
	}
	return result, nil
}

type divisionAllocation struct {
	teams    []league.Team
	overflow []Overflow
	diags    []BuddyDiagnostic
	coverage CoachCoverage
}

func allocateDivision(div league.Division, players []league.Player, rng RNG) (*divisionAllocation, error) {
	units, diags, err := BuildUnits(players)
	if err != nil {
		return nil, err
	}

	coachSet := make(map[string]bool)
	for _, p := range players {
		if p.CoachID != "" {
			coachSet[p.CoachID] = true
		}
	}
	coaches := make([]string, 0, len(coachSet))
	for c := range coachSet {
		coaches = append(coaches, c)
	}
	sort.Strings(coaches)

	count := ceilDiv(len(players), div.MaxRosterSize)
	if len(coaches) > count {
		count = len(coaches)
	}
	if count < 1 {
		count = 1
	}

	teams := make([]league.Team, count)
	coachTeam := make(map[string]int, len(coaches))
	for i := range teams {
		teams[i] = league.Team{ID: fmt.Sprintf("%s-%02d", div.ID, i+1), Division: div.ID}
		if i < len(coaches) {
			teams[i].CoachID = coaches[i]
			coachTeam[coaches[i]] = i
		}
	}

	a := &divisionAllocation{diags: diags}
	overflow := func(u Unit, reason string) {
		a.overflow = append(a.overflow, Overflow{
			Division:  div.ID,
			PlayerIDs: u.PlayerIDs(),
			CoachID:   u.CoachID,
			Reason:    reason,
		})
	}

	var open []Unit
	for _, u := range units {
		if u.CoachID == "" {
			open = append(open, u)
			continue
		}
		t := &teams[coachTeam[u.CoachID]]
		if len(t.Players)+u.Size() > div.MaxRosterSize {
			overflow(u, OverflowCoachCapacity)
			continue
		}
		t.Players = append(t.Players, u.Players...)
	}

	shuffle(open, rng)

	for _, u := range open {
		var tied []int
		fewest := 0
		for i := range teams {
			n := len(teams[i].Players)
			if n+u.Size() > div.MaxRosterSize {
				continue
			}
			switch {
			case len(tied) == 0 || n < fewest:
				tied = []int{i}
				fewest = n
			case n == fewest:
				tied = append(tied, i)
			}
		}
		if len(tied) == 0 {
			overflow(u, OverflowInsufficientCapacity)
			continue
		}
		pick := tied[0]
		if len(tied) > 1 {
			pick = tied[rng.Intn(len(tied))]
		}
		teams[pick].Players = append(teams[pick].Players, u.Players...)
	}

	a.teams = teams
	a.coverage = CoachCoverage{Division: div.ID, Teams: len(teams)}
	for _, t := range teams {
		if t.CoachID != "" {
			a.coverage.CoachedTeamIDs = append(a.coverage.CoachedTeamIDs, t.ID)
		} else {
			a.coverage.UncoachedTeamIDs = append(a.coverage.UncoachedTeamIDs, t.ID)
		}
	}
	return a, nil
}

// shuffle is a Fisher-Yates shuffle driven by rng.
func shuffle(units []Unit, rng RNG) {
	for i := len(units) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		units[i], units[j] = units[j], units[i]
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
