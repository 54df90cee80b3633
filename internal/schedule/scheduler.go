package schedule

import (
	"fmt"
	"sort"

	"github.com/derekprior/season/internal/league"
	"github.com/derekprior/season/internal/strategy"
)

// Reasons recorded on unscheduled matchups.
const (
	ReasonUnknownTeam      = "unknown-team"
	ReasonDivisionMismatch = "division-mismatch"
	ReasonDuplicateMatchup = "duplicate-matchup"
	ReasonCoachCoachesBoth = "coach-coaches-both-teams"
	ReasonCoachConflict    = "coach-scheduling-conflict"
	ReasonNoSlotAvailable  = "no-slot-available"
)

// Bye records a team sitting out a week.
type Bye struct {
	Week     int
	Division string
	TeamID   string
}

// Result is the output of the game scheduler.
type Result struct {
	Games       []league.GameAssignment
	Unscheduled []league.Unscheduled
	Byes        []Bye
}

type scheduler struct {
	teams map[string]league.Team
	slots []league.Slot

	used          map[string]int            // slot id -> games placed
	teamBusy      map[string][]league.Slot  // team -> slots played
	coachBusy     map[string][]league.Slot  // coach -> slots coached
	divisionUsage map[string]map[string]int // division -> base slot -> games
	fieldUsage    map[string]int            // field -> games
	teamStarts    map[string]map[string]int // team -> "15:04" -> games

	result Result
}

// ScheduleGames assigns each division's round-robin matchups to dated slots.
// Weeks are processed in ascending order and divisions alphabetically within
// a week. Matchups that cannot be placed are reported as unscheduled with a
// reason; only malformed teams or slots are errors. Every slot must carry a
// 1-based week index.
func ScheduleGames(teams []league.Team, slots []league.Slot, weeksByDivision map[string][]strategy.Week) (*Result, error) {
	teamIndex, err := league.IndexTeams(teams)
	if err != nil {
		return nil, err
	}
	if _, err := league.IndexSlots(slots); err != nil {
		return nil, err
	}
	for _, sl := range slots {
		if sl.Week < 1 {
			return nil, fmt.Errorf("%w: game slot %q has no week index", league.ErrInvalidInput, sl.ID)
		}
	}

	s := &scheduler{
		teams:         teamIndex,
		slots:         append([]league.Slot(nil), slots...),
		used:          make(map[string]int),
		teamBusy:      make(map[string][]league.Slot),
		coachBusy:     make(map[string][]league.Slot),
		divisionUsage: make(map[string]map[string]int),
		fieldUsage:    make(map[string]int),
		teamStarts:    make(map[string]map[string]int),
	}
	sortSlots(s.slots)

	byWeek := make(map[int]map[string]strategy.Week)
	var weekIndices []int
	for division, weeks := range weeksByDivision {
		for _, w := range weeks {
			if byWeek[w.Index] == nil {
				byWeek[w.Index] = make(map[string]strategy.Week)
				weekIndices = append(weekIndices, w.Index)
			}
			if _, dup := byWeek[w.Index][division]; dup {
				return nil, fmt.Errorf("%w: division %q has week %d twice", league.ErrInvalidInput, division, w.Index)
			}
			byWeek[w.Index][division] = w
		}
	}
	sort.Ints(weekIndices)

	for _, week := range weekIndices {
		divisions := make([]string, 0, len(byWeek[week]))
		for d := range byWeek[week] {
			divisions = append(divisions, d)
		}
		sort.Strings(divisions)
		for _, division := range divisions {
			s.scheduleWeek(division, byWeek[week][division])
		}
	}

	s.sortResult()
	return &s.result, nil
}

func (s *scheduler) scheduleWeek(division string, w strategy.Week) {
	if w.Bye != "" {
		s.result.Byes = append(s.result.Byes, Bye{Week: w.Index, Division: division, TeamID: w.Bye})
	}

	playing := make(map[string]bool)
	for _, m := range w.Matchups {
		reason := s.validate(division, m, playing)
		playing[m.Home] = true
		playing[m.Away] = true
		if reason == "" {
			reason = s.place(division, w.Index, m)
		}
		if reason != "" {
			s.result.Unscheduled = append(s.result.Unscheduled, league.Unscheduled{
				Week:       w.Index,
				Division:   division,
				HomeTeamID: m.Home,
				AwayTeamID: m.Away,
				Reason:     reason,
			})
		}
	}
}

// validate checks a matchup before any slot is considered. playing holds the
// teams already seen in this division's week.
func (s *scheduler) validate(division string, m strategy.Matchup, playing map[string]bool) string {
	home, okHome := s.teams[m.Home]
	away, okAway := s.teams[m.Away]
	if !okHome || !okAway {
		return ReasonUnknownTeam
	}
	if home.Division != division || away.Division != division {
		return ReasonDivisionMismatch
	}
	if m.Home == m.Away || playing[m.Home] || playing[m.Away] {
		return ReasonDuplicateMatchup
	}
	if home.CoachID != "" && home.CoachID == away.CoachID {
		return ReasonCoachCoachesBoth
	}
	return ""
}

func (s *scheduler) place(division string, week int, m strategy.Matchup) string {
	home, away := s.teams[m.Home], s.teams[m.Away]

	var open, candidates []league.Slot
	for _, slot := range s.slots {
		if slot.Week != week || !slot.OpenTo(division) || s.used[slot.ID] >= slot.Capacity {
			continue
		}
		if s.overlaps(s.teamBusy[home.ID], slot) || s.overlaps(s.teamBusy[away.ID], slot) {
			continue
		}
		open = append(open, slot)
		if s.coachOverlap(home.CoachID, slot) || s.coachOverlap(away.CoachID, slot) {
			continue
		}
		candidates = append(candidates, slot)
	}
	if len(candidates) == 0 {
		if len(open) > 0 {
			return ReasonCoachConflict
		}
		return ReasonNoSlotAvailable
	}

	var restricted []league.Slot
	for _, slot := range candidates {
		if slot.Division == division {
			restricted = append(restricted, slot)
		}
	}

	var best league.Slot
	if len(restricted) > 0 {
		best = s.rankRestricted(restricted, home.ID, away.ID)
	} else {
		best = s.rankShared(candidates, division, home.ID, away.ID)
	}
	s.assign(division, week, home, away, best)
	return ""
}

// rankRestricted orders by consistency (desc), then start, field and id.
func (s *scheduler) rankRestricted(slots []league.Slot, home, away string) league.Slot {
	sort.SliceStable(slots, func(i, j int) bool {
		ci, cj := s.consistency(slots[i], home, away), s.consistency(slots[j], home, away)
		if ci != cj {
			return ci > cj
		}
		return slotLess(slots[i], slots[j])
	})
	return slots[0]
}

// rankShared balances shared slots: the division's usage of the recurring
// slot (asc), then field usage (asc), then consistency.
func (s *scheduler) rankShared(slots []league.Slot, division, home, away string) league.Slot {
	usage := s.divisionUsage[division]
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if ua, ub := usage[a.Base()], usage[b.Base()]; ua != ub {
			return ua < ub
		}
		if fa, fb := s.fieldUsage[a.FieldID], s.fieldUsage[b.FieldID]; fa != fb {
			return fa < fb
		}
		if ca, cb := s.consistency(a, home, away), s.consistency(b, home, away); ca != cb {
			return ca > cb
		}
		return slotLess(a, b)
	})
	return slots[0]
}

func slotLess(a, b league.Slot) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	if a.FieldID != b.FieldID {
		return a.FieldID < b.FieldID
	}
	return a.ID < b.ID
}

// consistency scores one point for each team whose most frequent kickoff
// time so far matches the slot's.
func (s *scheduler) consistency(slot league.Slot, teams ...string) int {
	kickoff := slot.Start.Format("15:04")
	score := 0
	for _, t := range teams {
		if mode, ok := s.usualStart(t); ok && mode == kickoff {
			score++
		}
	}
	return score
}

// usualStart returns the team's most used kickoff time, earliest on ties.
func (s *scheduler) usualStart(team string) (string, bool) {
	best, bestCount := "", 0
	for start, n := range s.teamStarts[team] {
		if n > bestCount || (n == bestCount && start < best) {
			best, bestCount = start, n
		}
	}
	return best, bestCount > 0
}

func (s *scheduler) overlaps(busy []league.Slot, slot league.Slot) bool {
	for _, b := range busy {
		if league.Overlaps(b.Start, b.End, slot.Start, slot.End) {
			return true
		}
	}
	return false
}

func (s *scheduler) coachOverlap(coach string, slot league.Slot) bool {
	return coach != "" && s.overlaps(s.coachBusy[coach], slot)
}

func (s *scheduler) assign(division string, week int, home, away league.Team, slot league.Slot) {
	s.used[slot.ID]++
	for _, t := range []league.Team{home, away} {
		s.teamBusy[t.ID] = append(s.teamBusy[t.ID], slot)
		if t.CoachID != "" {
			s.coachBusy[t.CoachID] = append(s.coachBusy[t.CoachID], slot)
		}
		if s.teamStarts[t.ID] == nil {
			s.teamStarts[t.ID] = make(map[string]int)
		}
		s.teamStarts[t.ID][slot.Start.Format("15:04")]++
	}
	if s.divisionUsage[division] == nil {
		s.divisionUsage[division] = make(map[string]int)
	}
	s.divisionUsage[division][slot.Base()]++
	s.fieldUsage[slot.FieldID]++

	s.result.Games = append(s.result.Games, league.GameAssignment{
		Week:       week,
		Division:   division,
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		SlotID:     slot.ID,
		FieldID:    slot.FieldID,
		Start:      slot.Start,
		End:        slot.End,
		Source:     league.SourceAuto,
	})
}

func (s *scheduler) sortResult() {
	games := s.result.Games
	sort.Slice(games, func(i, j int) bool {
		a, b := games[i], games[j]
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if a.Division != b.Division {
			return a.Division < b.Division
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.SlotID != b.SlotID {
			return a.SlotID < b.SlotID
		}
		return a.HomeTeamID < b.HomeTeamID
	})

	un := s.result.Unscheduled
	sort.SliceStable(un, func(i, j int) bool {
		if un[i].Week != un[j].Week {
			return un[i].Week < un[j].Week
		}
		if un[i].Division != un[j].Division {
			return un[i].Division < un[j].Division
		}
		if un[i].HomeTeamID != un[j].HomeTeamID {
			return un[i].HomeTeamID < un[j].HomeTeamID
		}
		return un[i].AwayTeamID < un[j].AwayTeamID
	})
}
