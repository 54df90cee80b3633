// Package practice assigns teams to recurring weekly practice slots.
//
// Assignment runs in two phases. place applies administrator locks and then
// gives each remaining team its best-scoring feasible slot. repair then
// tries to seat unassigned teams by relocating auto-placed teams. Neither
// phase uses randomness: the same input always yields the same output.
package practice

import (
	"fmt"
	"sort"

	"github.com/derekprior/season/internal/league"
)

// Unassigned reasons.
const (
	ReasonNoCapacity     = "no available capacity"
	ReasonCoachConflicts = "coach schedule conflicts on all slots"
)

// CoachPreference lists a coach's wishes and hard unavailability. Preferred
// slot ids may name a slot or its base slot.
type CoachPreference struct {
	CoachID            string
	PreferredSlotIDs   []string
	PreferredDays      []string
	UnavailableSlotIDs []string
}

// DivisionPreference lists the days a division would like to practice.
type DivisionPreference struct {
	Division      string
	PreferredDays []string
}

// Weights tune slot scoring. A zero weight disables its term.
type Weights struct {
	PreferredSlot         float64
	PreferredDay          float64
	DivisionDay           float64
	BaseSlotSaturation    float64
	DivisionDaySaturation float64
}

// DefaultWeights returns the weights used when a config leaves them unset.
func DefaultWeights() Weights {
	return Weights{
		PreferredSlot:         5,
		PreferredDay:          3,
		DivisionDay:           2,
		BaseSlotSaturation:    4,
		DivisionDaySaturation: 2,
	}
}

// Input is everything one practice assignment run needs.
type Input struct {
	Teams               []league.Team
	Slots               []league.Slot
	CoachPreferences    []CoachPreference
	DivisionPreferences []DivisionPreference
	Locked              []league.PracticeAssignment
	Weights             Weights
	SkipRepair          bool
}

// Load counts a division's assignments per base slot and per day.
type Load struct {
	ByBaseSlot map[string]int
	ByDay      map[string]int
}

// Swap records one relocation made by the repair pass.
type Swap struct {
	MovedTeamID  string
	FromSlotID   string
	ToSlotID     string
	PlacedTeamID string
}

// Result is the output of Assign.
type Result struct {
	Assignments  []league.PracticeAssignment
	Unassigned   []league.Unassigned
	DivisionLoad map[string]Load
	Swaps        []Swap
}

// Assign places every team it can and reports the rest as unassigned.
func Assign(in Input) (*Result, error) {
	a, err := newAssigner(in)
	if err != nil {
		return nil, err
	}
	if err := a.applyLocks(in.Locked); err != nil {
		return nil, err
	}
	a.place()
	if !in.SkipRepair {
		a.repair()
	}
	return a.result(), nil
}

type blockReason int

const (
	blockNone blockReason = iota
	blockDivision
	blockCapacity
	blockCoach
)

type placement struct {
	slotID string
	source league.Source
}

type coachPrefs struct {
	slots       map[string]bool
	days        map[string]bool
	unavailable map[string]bool
}

type assigner struct {
	weights Weights

	slots    []league.Slot // ordered by start, then id
	slotByID map[string]league.Slot
	teams    []league.Team // ordered by id
	teamByID map[string]league.Team

	coachPrefs     map[string]coachPrefs
	divisionDays   map[string]map[string]bool
	coachTeams     map[string][]string // coach -> team ids
	baseCapacity   map[string]int
	divisionTeams  map[string]int
	placed         map[string]placement      // team -> placement
	used           map[string]int            // slot -> occupants
	baseUsed       map[string]int            // base slot -> occupants
	divisionDayUse map[string]map[string]int // division -> day -> occupants
	unassigned     []league.Unassigned
	swaps          []Swap
}

func newAssigner(in Input) (*assigner, error) {
	slotByID, err := league.IndexSlots(in.Slots)
	if err != nil {
		return nil, err
	}
	teamByID, err := league.IndexTeams(in.Teams)
	if err != nil {
		return nil, err
	}

	a := &assigner{
		weights:        in.Weights,
		slotByID:       slotByID,
		teamByID:       teamByID,
		coachPrefs:     make(map[string]coachPrefs),
		divisionDays:   make(map[string]map[string]bool),
		coachTeams:     make(map[string][]string),
		baseCapacity:   make(map[string]int),
		divisionTeams:  make(map[string]int),
		placed:         make(map[string]placement),
		used:           make(map[string]int),
		baseUsed:       make(map[string]int),
		divisionDayUse: make(map[string]map[string]int),
	}

	a.slots = append([]league.Slot(nil), in.Slots...)
	sort.Slice(a.slots, func(i, j int) bool {
		if !a.slots[i].Start.Equal(a.slots[j].Start) {
			return a.slots[i].Start.Before(a.slots[j].Start)
		}
		return a.slots[i].ID < a.slots[j].ID
	})
	for _, s := range a.slots {
		a.baseCapacity[s.Base()] += s.Capacity
	}

	a.teams = append([]league.Team(nil), in.Teams...)
	sort.Slice(a.teams, func(i, j int) bool { return a.teams[i].ID < a.teams[j].ID })
	for _, t := range a.teams {
		a.divisionTeams[t.Division]++
		if t.CoachID != "" {
			a.coachTeams[t.CoachID] = append(a.coachTeams[t.CoachID], t.ID)
		}
	}

	for _, p := range in.CoachPreferences {
		if p.CoachID == "" {
			return nil, fmt.Errorf("%w: coach preference has no coach id", league.ErrInvalidInput)
		}
		a.coachPrefs[p.CoachID] = coachPrefs{
			slots:       toSet(p.PreferredSlotIDs),
			days:        toDaySet(p.PreferredDays),
			unavailable: toSet(p.UnavailableSlotIDs),
		}
	}
	for _, p := range in.DivisionPreferences {
		a.divisionDays[p.Division] = toDaySet(p.PreferredDays)
	}

	return a, nil
}

func (a *assigner) applyLocks(locks []league.PracticeAssignment) error {
	for _, l := range locks {
		team, ok := a.teamByID[l.TeamID]
		if !ok {
			return fmt.Errorf("%w: locked assignment references unknown team %q", league.ErrInvalidInput, l.TeamID)
		}
		slot, ok := a.slotByID[l.SlotID]
		if !ok {
			return fmt.Errorf("%w: locked assignment references unknown slot %q", league.ErrInvalidInput, l.SlotID)
		}
		if _, dup := a.placed[l.TeamID]; dup {
			return fmt.Errorf("%w: team %q is locked more than once", league.ErrConstraintConflict, l.TeamID)
		}
		switch a.feasible(team, slot, "") {
		case blockDivision:
			return fmt.Errorf("%w: locked slot %q is reserved for division %q, not %q",
				league.ErrConstraintConflict, slot.ID, slot.Division, team.Division)
		case blockCapacity:
			return fmt.Errorf("%w: locked assignments exceed capacity of slot %q (%d)",
				league.ErrConstraintConflict, slot.ID, slot.Capacity)
		case blockCoach:
			return fmt.Errorf("%w: locked assignment of %q to %q conflicts with coach %q's schedule",
				league.ErrConstraintConflict, team.ID, slot.ID, team.CoachID)
		}
		source := l.Source
		if !source.Pinned() {
			source = league.SourceLocked
		}
		a.assign(team, slot, source)
	}
	return nil
}

// place assigns every team without a lock, busiest coaches first.
func (a *assigner) place() {
	var pending []league.Team
	for _, t := range a.teams {
		if _, ok := a.placed[t.ID]; !ok {
			pending = append(pending, t)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		ci, cj := a.coachLoad(pending[i]), a.coachLoad(pending[j])
		if ci != cj {
			return ci > cj
		}
		return pending[i].ID < pending[j].ID
	})

	for _, t := range pending {
		slot, reason, ok := a.best(t, "")
		if !ok {
			a.unassigned = append(a.unassigned, league.Unassigned{TeamID: t.ID, Reason: reason})
			continue
		}
		a.assign(t, slot, league.SourceAuto)
	}
}

func (a *assigner) coachLoad(t league.Team) int {
	if t.CoachID == "" {
		return 0
	}
	return len(a.coachTeams[t.CoachID])
}

// best returns the highest-scoring feasible slot for t, skipping skipSlot.
// Ties go to the earliest start, then the lowest slot id.
func (a *assigner) best(t league.Team, skipSlot string) (league.Slot, string, bool) {
	var chosen league.Slot
	found := false
	bestScore := 0.0
	coachBlocked := false

	for _, s := range a.slots {
		if s.ID == skipSlot {
			continue
		}
		switch a.feasible(t, s, "") {
		case blockCoach:
			coachBlocked = true
			continue
		case blockNone:
		default:
			continue
		}
		score := a.score(t, s)
		if !found || score > bestScore {
			chosen, bestScore, found = s, score, true
		}
	}

	if found {
		return chosen, "", true
	}
	if coachBlocked {
		return league.Slot{}, ReasonCoachConflicts, false
	}
	return league.Slot{}, ReasonNoCapacity, false
}

// feasible checks the hard constraints for putting t in s. The team named by
// ignore is treated as absent when checking coach overlap.
func (a *assigner) feasible(t league.Team, s league.Slot, ignore string) blockReason {
	if !s.OpenTo(t.Division) {
		return blockDivision
	}
	if a.used[s.ID] >= s.Capacity {
		return blockCapacity
	}
	if a.coachBlocked(t, s, ignore) {
		return blockCoach
	}
	return blockNone
}

func (a *assigner) coachBusy(t league.Team, s league.Slot, ignore string) bool {
	for _, sibling := range a.coachTeams[t.CoachID] {
		if sibling == t.ID || sibling == ignore {
			continue
		}
		p, ok := a.placed[sibling]
		if !ok {
			continue
		}
		other := a.slotByID[p.slotID]
		if league.Overlaps(s.Start, s.End, other.Start, other.End) {
			return true
		}
	}
	return false
}

func (a *assigner) score(t league.Team, s league.Slot) float64 {
	w := a.weights
	day := s.Weekday()
	score := 0.0

	if p, ok := a.coachPrefs[t.CoachID]; ok && t.CoachID != "" {
		if p.slots[s.ID] || p.slots[s.Base()] {
			score += w.PreferredSlot
		}
		if p.days[day] {
			score += w.PreferredDay
		}
	}
	if a.divisionDays[t.Division][day] {
		score += w.DivisionDay
	}

	if w.BaseSlotSaturation != 0 {
		if c := a.baseCapacity[s.Base()]; c > 0 {
			score -= w.BaseSlotSaturation * float64(a.baseUsed[s.Base()]) / float64(c)
		}
	}
	if w.DivisionDaySaturation != 0 {
		if n := a.divisionTeams[t.Division]; n > 0 {
			score -= w.DivisionDaySaturation * float64(a.divisionDayUse[t.Division][day]) / float64(n)
		}
	}
	return score
}

func (a *assigner) assign(t league.Team, s league.Slot, source league.Source) {
	a.placed[t.ID] = placement{slotID: s.ID, source: source}
	a.used[s.ID]++
	a.baseUsed[s.Base()]++
	if a.divisionDayUse[t.Division] == nil {
		a.divisionDayUse[t.Division] = make(map[string]int)
	}
	a.divisionDayUse[t.Division][s.Weekday()]++
}

func (a *assigner) unassign(t league.Team) {
	p, ok := a.placed[t.ID]
	if !ok {
		return
	}
	s := a.slotByID[p.slotID]
	delete(a.placed, t.ID)
	a.used[s.ID]--
	a.baseUsed[s.Base()]--
	a.divisionDayUse[t.Division][s.Weekday()]--
}

func (a *assigner) result() *Result {
	r := &Result{DivisionLoad: make(map[string]Load), Swaps: a.swaps}

	for teamID, p := range a.placed {
		s := a.slotByID[p.slotID]
		r.Assignments = append(r.Assignments, league.PracticeAssignment{
			TeamID: teamID,
			SlotID: s.ID,
			Start:  s.Start,
			End:    s.End,
			Source: p.source,
		})

		div := a.teamByID[teamID].Division
		load, ok := r.DivisionLoad[div]
		if !ok {
			load = Load{ByBaseSlot: make(map[string]int), ByDay: make(map[string]int)}
			r.DivisionLoad[div] = load
		}
		load.ByBaseSlot[s.Base()]++
		load.ByDay[s.Weekday()]++
	}
	sort.Slice(r.Assignments, func(i, j int) bool {
		ai, aj := r.Assignments[i], r.Assignments[j]
		if !ai.Start.Equal(aj.Start) {
			return ai.Start.Before(aj.Start)
		}
		if ai.SlotID != aj.SlotID {
			return ai.SlotID < aj.SlotID
		}
		return ai.TeamID < aj.TeamID
	})

	r.Unassigned = append(r.Unassigned, a.unassigned...)
	sort.Slice(r.Unassigned, func(i, j int) bool { return r.Unassigned[i].TeamID < r.Unassigned[j].TeamID })
	return r
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func toDaySet(days []string) map[string]bool {
	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[league.Slot{Day: d}.Weekday()] = true
	}
	return set
}
