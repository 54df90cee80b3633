// Package league holds the records shared by the roster, practice, game
// and readiness packages.
package league

import (
	"fmt"
	"strings"
	"time"
)

// Player is a registered participant. BuddyID requests pairing with another
// player; CoachID marks a coaching household.
type Player struct {
	ID       string
	Division string
	BuddyID  string
	CoachID  string
}

// Division caps the roster size of every team in it.
type Division struct {
	ID            string
	MaxRosterSize int
}

// Team is a roster produced by the allocator.
type Team struct {
	ID       string
	Division string
	CoachID  string
	Players  []Player
}

// PlayerIDs returns the ids of the team's players in roster order.
func (t Team) PlayerIDs() []string {
	ids := make([]string, len(t.Players))
	for i, p := range t.Players {
		ids[i] = p.ID
	}
	return ids
}

// Slot is a capacity-bounded time window. An empty Division means the slot
// is shared by all divisions.
type Slot struct {
	ID         string
	Day        string // lowercase weekday, derived from Start when empty
	Start      time.Time
	End        time.Time
	Capacity   int
	Division   string
	FieldID    string
	BaseSlotID string // practice only: groups phase variants of one recurring slot
	Week       int    // games only: 1-based season week
}

// Weekday returns the slot's day key ("monday", "tuesday", ...).
func (s Slot) Weekday() string {
	if s.Day != "" {
		return strings.ToLower(s.Day)
	}
	return strings.ToLower(s.Start.Weekday().String())
}

// Base returns the recurring slot identity, falling back to the slot id.
func (s Slot) Base() string {
	if s.BaseSlotID != "" {
		return s.BaseSlotID
	}
	return s.ID
}

// OpenTo reports whether a team in division may use the slot.
func (s Slot) OpenTo(division string) bool {
	return s.Division == "" || s.Division == division
}

// Overlaps reports whether two half-open intervals intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Source distinguishes algorithmic placements from administrator pins.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceLocked Source = "locked"
	SourceManual Source = "manual"
)

// Pinned reports whether the placement was made by an administrator.
func (s Source) Pinned() bool {
	return s == SourceLocked || s == SourceManual
}

// PracticeAssignment places one team in one practice slot.
type PracticeAssignment struct {
	TeamID string
	SlotID string
	Start  time.Time
	End    time.Time
	Source Source
}

// GameAssignment places one matchup in one game slot.
type GameAssignment struct {
	Week       int
	Division   string
	HomeTeamID string
	AwayTeamID string
	SlotID     string
	FieldID    string
	Start      time.Time
	End        time.Time
	Source     Source
}

// Unassigned is a team the practice assigner could not place.
type Unassigned struct {
	TeamID string
	Reason string
}

// Unscheduled is a matchup the game scheduler could not place.
type Unscheduled struct {
	Week       int
	Division   string
	HomeTeamID string
	AwayTeamID string
	Reason     string
}

// IndexSlots validates slots and returns them keyed by id.
func IndexSlots(slots []Slot) (map[string]Slot, error) {
	index := make(map[string]Slot, len(slots))
	for i, s := range slots {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: slot %d has no id", ErrInvalidInput, i)
		}
		if _, ok := index[s.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate slot id %q", ErrConstraintConflict, s.ID)
		}
		if !s.End.After(s.Start) {
			return nil, fmt.Errorf("%w: slot %q ends at or before it starts", ErrInvalidInput, s.ID)
		}
		if s.Capacity < 0 {
			return nil, fmt.Errorf("%w: slot %q has negative capacity %d", ErrInvalidInput, s.ID, s.Capacity)
		}
		index[s.ID] = s
	}
	return index, nil
}

// IndexTeams validates teams and returns them keyed by id.
func IndexTeams(teams []Team) (map[string]Team, error) {
	index := make(map[string]Team, len(teams))
	for i, t := range teams {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: team %d has no id", ErrInvalidInput, i)
		}
		if t.Division == "" {
			return nil, fmt.Errorf("%w: team %q has no division", ErrInvalidInput, t.ID)
		}
		if _, ok := index[t.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate team id %q", ErrInvalidInput, t.ID)
		}
		index[t.ID] = t
	}
	return index, nil
}
