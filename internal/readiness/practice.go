package readiness

import (
	"fmt"
	"strconv"

	"github.com/derekprior/season/internal/league"
)

func evaluatePractice(in Input, teams map[string]league.Team, opts Options) (PracticeMetrics, []Finding) {
	slots := make(map[string]league.Slot, len(in.PracticeSlots))
	for _, s := range in.PracticeSlots {
		slots[s.ID] = s
	}

	var findings []Finding
	m := PracticeMetrics{Teams: len(in.Teams), Unassigned: len(in.Unassigned)}

	counts := make(map[string]int)
	assignedTeams := make(map[string]bool)
	teamBookings := make(map[string][]booking)
	coachBookings := make(map[string][]booking)
	divisionDays := make(map[string]map[string]int)

	for _, a := range in.Practice {
		t, okTeam := teams[a.TeamID]
		s, okSlot := slots[a.SlotID]
		if !okTeam {
			findings = append(findings, unknownRef(CategoryPractice, CodeUnknownTeam, "team", a.TeamID, a.SlotID))
		}
		if !okSlot {
			findings = append(findings, unknownRef(CategoryPractice, CodeUnknownSlot, "slot", a.SlotID, a.TeamID))
		}
		counts[a.SlotID]++
		if a.Source.Pinned() {
			m.Pinned++
		}
		if !okTeam {
			continue
		}
		assignedTeams[a.TeamID] = true

		ref := a.TeamID + "@" + a.SlotID
		start, end, mismatch := bookingWindow(CategoryPractice, ref, s, okSlot, a.Start, a.End)
		findings = append(findings, mismatch...)
		b := booking{ref: ref, slot: a.SlotID, start: start, end: end}
		teamBookings[t.ID] = append(teamBookings[t.ID], b)
		if t.CoachID != "" {
			coachBookings[t.CoachID] = append(coachBookings[t.CoachID], b)
		}
		if okSlot {
			if divisionDays[t.Division] == nil {
				divisionDays[t.Division] = make(map[string]int)
			}
			divisionDays[t.Division][s.Weekday()]++
		}
	}
	m.Assigned = len(assignedTeams)
	m.AssignedRate = ratio(m.Assigned, m.Teams)
	m.FollowUpRate = ratio(m.Unassigned, m.Teams)

	for _, u := range in.Unassigned {
		findings = append(findings, Finding{
			Category: CategoryPractice,
			Severity: SeverityWarning,
			Code:     CodeUnassignedTeam,
			Message:  fmt.Sprintf("team %s has no practice slot: %s", u.TeamID, u.Reason),
			Details:  map[string]string{"team": u.TeamID, "reason": u.Reason},
		})
	}

	for _, s := range sortSlotsByID(in.PracticeSlots) {
		n := counts[s.ID]
		usage := SlotUsage{SlotID: s.ID, Capacity: s.Capacity, Assigned: n, Overbooked: n > s.Capacity}
		m.Slots = append(m.Slots, usage)
		findings = append(findings, capacityFindings(CategoryPractice, s, n)...)
	}

	for _, id := range sortedKeys(teamBookings) {
		findings = append(findings, doubleBooked(CategoryPractice, CodeTeamDoubleBook, "team", id, teamBookings[id], false)...)
	}
	for _, id := range sortedKeys(coachBookings) {
		findings = append(findings, doubleBooked(CategoryPractice, CodeCoachDoubleBook, "coach", id, coachBookings[id], false)...)
	}

	findings = append(findings, dayConcentration(divisionDays, opts)...)
	findings = append(findings, underutilized(in.PracticeSlots, counts, opts)...)
	return m, findings
}

// capacityFindings reports a slot used beyond its capacity. A zero-capacity
// slot with any occupant gets its own code.
func capacityFindings(category Category, s league.Slot, n int) []Finding {
	details := map[string]string{
		"slot":     s.ID,
		"assigned": strconv.Itoa(n),
		"capacity": strconv.Itoa(s.Capacity),
	}
	switch {
	case s.Capacity == 0 && n > 0:
		return []Finding{{
			Category: category,
			Severity: SeverityError,
			Code:     CodeZeroCapacity,
			Message:  fmt.Sprintf("slot %s has capacity 0 but %d assignments", s.ID, n),
			Details:  details,
		}}
	case n > s.Capacity:
		return []Finding{{
			Category: category,
			Severity: SeverityError,
			Code:     CodeOverbooked,
			Message:  fmt.Sprintf("slot %s exceeds capacity (%d/%d)", s.ID, n, s.Capacity),
			Details:  details,
		}}
	}
	return nil
}

func dayConcentration(divisionDays map[string]map[string]int, opts Options) []Finding {
	var out []Finding
	for _, division := range sortedKeys(divisionDays) {
		days := divisionDays[division]
		total, busiest, top := 0, "", 0
		for _, day := range sortedKeys(days) {
			total += days[day]
			if days[day] > top {
				busiest, top = day, days[day]
			}
		}
		if total < opts.MinDaySample {
			continue
		}
		share := ratio(top, total)
		if share <= opts.DayConcentration {
			continue
		}
		out = append(out, Finding{
			Category: CategoryPractice,
			Severity: SeverityWarning,
			Code:     CodeDayConcentration,
			Message:  fmt.Sprintf("division %s has %d of %d practices on %s", division, top, total, busiest),
			Details: map[string]string{
				"division": division,
				"day":      busiest,
				"share":    strconv.FormatFloat(share, 'f', 2, 64),
			},
		})
	}
	return out
}

// underutilized reports base slots whose combined fill across phase
// instances is below the configured ratio.
func underutilized(slots []league.Slot, counts map[string]int, opts Options) []Finding {
	capacity := make(map[string]int)
	used := make(map[string]int)
	for _, s := range slots {
		capacity[s.Base()] += s.Capacity
		used[s.Base()] += counts[s.ID]
	}

	var out []Finding
	for _, base := range sortedKeys(capacity) {
		if capacity[base] == 0 {
			continue
		}
		fill := ratio(used[base], capacity[base])
		if fill >= opts.UnderutilizedRatio {
			continue
		}
		out = append(out, Finding{
			Category: CategoryPractice,
			Severity: SeverityWarning,
			Code:     CodeUnderutilized,
			Message:  fmt.Sprintf("base slot %s is %d/%d full", base, used[base], capacity[base]),
			Details: map[string]string{
				"baseSlot": base,
				"fill":     strconv.FormatFloat(fill, 'f', 2, 64),
			},
		})
	}
	return out
}

func unknownRef(category Category, code, kind, id, context string) Finding {
	return Finding{
		Category: category,
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf("assignment %s references unknown %s %s", context, kind, id),
		Details:  map[string]string{kind: id},
	}
}
