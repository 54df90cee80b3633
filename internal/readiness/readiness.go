// Package readiness inspects a finished scheduling run and reports what an
// administrator needs to fix before publishing it.
package readiness

import (
	"fmt"
	"sort"
	"time"

	"github.com/derekprior/season/internal/league"
)

// Category groups findings by the part of the schedule they concern.
type Category string

const (
	CategoryPractice Category = "practice"
	CategoryGames    Category = "games"
)

// Severity ranks a finding. Any error makes the run action-required.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Status is the overall readiness of a run.
type Status string

const (
	StatusOK              Status = "ok"
	StatusAttentionNeeded Status = "attention-needed"
	StatusActionRequired  Status = "action-required"
)

// Finding codes.
const (
	CodeUnassignedTeam   = "unassigned-team"
	CodeUnknownTeam      = "unknown-team"
	CodeUnknownSlot      = "unknown-slot"
	CodeOverbooked       = "overbooked"
	CodeZeroCapacity     = "zero-capacity-used"
	CodeCoachDoubleBook  = "coach-double-booked"
	CodeTeamDoubleBook   = "team-double-booked"
	CodeFieldDoubleBook  = "field-double-booked"
	CodeDayConcentration = "day-concentration"
	CodeUnderutilized    = "underutilized-slot"
	CodeUnscheduled      = "unscheduled-matchups"
	CodeTimeMismatch     = "slot-time-mismatch"
)

// Finding is one observation about schedule quality.
type Finding struct {
	Category Category
	Severity Severity
	Code     string
	Message  string
	Details  map[string]string
}

// Input is everything the evaluator looks at. Slots are the catalogs the
// assignments were drawn from.
type Input struct {
	Teams         []league.Team
	PracticeSlots []league.Slot
	Practice      []league.PracticeAssignment
	Unassigned    []league.Unassigned
	GameSlots     []league.Slot
	Games         []league.GameAssignment
	Unscheduled   []league.Unscheduled
}

// Options tunes the soft fairness checks. Zero fields take the defaults.
type Options struct {
	// DayConcentration is the share of a division's practices on one
	// weekday above which a warning is raised.
	DayConcentration float64
	// UnderutilizedRatio is the fill ratio below which a base slot is
	// reported as underused.
	UnderutilizedRatio float64
	// MinDaySample is the fewest practices a division needs before its
	// day concentration is judged.
	MinDaySample int
}

// DefaultOptions returns the thresholds used when none are configured.
func DefaultOptions() Options {
	return Options{DayConcentration: 0.6, UnderutilizedRatio: 0.25, MinDaySample: 4}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DayConcentration <= 0 {
		o.DayConcentration = d.DayConcentration
	}
	if o.UnderutilizedRatio <= 0 {
		o.UnderutilizedRatio = d.UnderutilizedRatio
	}
	if o.MinDaySample <= 0 {
		o.MinDaySample = d.MinDaySample
	}
	return o
}

// SlotUsage is the fill of one practice slot.
type SlotUsage struct {
	SlotID     string
	Capacity   int
	Assigned   int
	Overbooked bool
}

// PracticeMetrics summarizes practice placement.
type PracticeMetrics struct {
	Teams        int
	Assigned     int
	Pinned       int
	Unassigned   int
	AssignedRate float64
	// FollowUpRate is the share of teams an administrator must place by hand.
	FollowUpRate float64
	Slots        []SlotUsage
}

// GameMetrics counts scheduled and unscheduled games.
type GameMetrics struct {
	Games               int
	Unscheduled         int
	ByDivision          map[string]int
	ByField             map[string]int
	UnscheduledByReason map[string]int
}

// Report is the evaluator's output.
type Report struct {
	Status   Status
	Findings []Finding
	Practice PracticeMetrics
	Games    GameMetrics
}

// Errors counts error findings.
func (r Report) Errors() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Warnings counts warning findings.
func (r Report) Warnings() int {
	return len(r.Findings) - r.Errors()
}

// Evaluate checks practice and game assignments. It never fails; broken
// guarantees come back as error findings. The same input always yields the
// same report.
func Evaluate(in Input, opts Options) Report {
	opts = opts.withDefaults()
	teams := make(map[string]league.Team, len(in.Teams))
	for _, t := range in.Teams {
		teams[t.ID] = t
	}

	var r Report
	var findings []Finding
	r.Practice, findings = evaluatePractice(in, teams, opts)
	r.Findings = append(r.Findings, findings...)
	r.Games, findings = evaluateGames(in, teams)
	r.Findings = append(r.Findings, findings...)

	sortFindings(r.Findings)
	r.Status = statusOf(r.Findings)
	return r
}

func statusOf(findings []Finding) Status {
	if len(findings) == 0 {
		return StatusOK
	}
	for _, f := range findings {
		if f.Severity == SeverityError {
			return StatusActionRequired
		}
	}
	return StatusAttentionNeeded
}

func sortFindings(fs []Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}

// booking is one occupied interval attributed to an owner (team, coach or
// field).
type booking struct {
	ref   string // assignment label used in messages
	slot  string
	start time.Time
	end   time.Time
}

// overlapping returns every pair of intersecting bookings. Bookings are
// sorted by start so the inner scan stops at the first later start.
func overlapping(bs []booking, distinctSlots bool) [][2]booking {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].start.Equal(bs[j].start) {
			return bs[i].start.Before(bs[j].start)
		}
		return bs[i].ref < bs[j].ref
	})
	var pairs [][2]booking
	for i, a := range bs {
		for _, b := range bs[i+1:] {
			if !b.start.Before(a.end) {
				break
			}
			if distinctSlots && a.slot == b.slot {
				continue
			}
			if league.Overlaps(a.start, a.end, b.start, b.end) {
				pairs = append(pairs, [2]booking{a, b})
			}
		}
	}
	return pairs
}

func doubleBooked(category Category, code, kind, owner string, bs []booking, distinctSlots bool) []Finding {
	var out []Finding
	for _, p := range overlapping(bs, distinctSlots) {
		out = append(out, Finding{
			Category: category,
			Severity: SeverityError,
			Code:     code,
			Message:  fmt.Sprintf("%s %s is double-booked: %s overlaps %s", kind, owner, p[0].ref, p[1].ref),
			Details: map[string]string{
				kind:     owner,
				"first":  p[0].slot,
				"second": p[1].slot,
			},
		})
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func sortSlotsByID(slots []league.Slot) []league.Slot {
	out := append([]league.Slot(nil), slots...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// bookingWindow returns the time window an assignment occupies. The catalog
// slot is authoritative when known; a differing recorded window gets a
// warning so edited workbooks are checked against real slot times.
func bookingWindow(category Category, ref string, s league.Slot, known bool, start, end time.Time) (time.Time, time.Time, []Finding) {
	if !known {
		return start, end, nil
	}
	if start.Equal(s.Start) && end.Equal(s.End) {
		return s.Start, s.End, nil
	}
	return s.Start, s.End, []Finding{{
		Category: category,
		Severity: SeverityWarning,
		Code:     CodeTimeMismatch,
		Message: fmt.Sprintf("assignment %s records %s-%s but slot %s runs %s-%s", ref,
			start.Format("2006-01-02 15:04"), end.Format("15:04"),
			s.ID, s.Start.Format("2006-01-02 15:04"), s.End.Format("15:04")),
		Details: map[string]string{"slot": s.ID},
	}}
}
