package readiness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/derekprior/season/internal/league"
	"github.com/derekprior/season/internal/schedule"
)

func evaluateGames(in Input, teams map[string]league.Team) (GameMetrics, []Finding) {
	slots := make(map[string]league.Slot, len(in.GameSlots))
	for _, s := range in.GameSlots {
		slots[s.ID] = s
	}

	m := GameMetrics{
		Games:               len(in.Games),
		Unscheduled:         len(in.Unscheduled),
		ByDivision:          make(map[string]int),
		ByField:             make(map[string]int),
		UnscheduledByReason: make(map[string]int),
	}

	var findings []Finding
	counts := make(map[string]int)
	teamBookings := make(map[string][]booking)
	coachBookings := make(map[string][]booking)
	fieldBookings := make(map[string][]booking)

	for _, g := range in.Games {
		ref := fmt.Sprintf("%s vs %s @%s", g.HomeTeamID, g.AwayTeamID, g.SlotID)
		m.ByDivision[g.Division]++
		m.ByField[g.FieldID]++
		counts[g.SlotID]++

		s, okSlot := slots[g.SlotID]
		if !okSlot {
			findings = append(findings, unknownRef(CategoryGames, CodeUnknownSlot, "slot", g.SlotID, ref))
		}

		start, end, mismatch := bookingWindow(CategoryGames, ref, s, okSlot, g.Start, g.End)
		findings = append(findings, mismatch...)
		b := booking{ref: ref, slot: g.SlotID, start: start, end: end}
		coaches := make(map[string]bool)
		for _, id := range []string{g.HomeTeamID, g.AwayTeamID} {
			t, ok := teams[id]
			if !ok {
				findings = append(findings, unknownRef(CategoryGames, CodeUnknownTeam, "team", id, ref))
				continue
			}
			teamBookings[id] = append(teamBookings[id], b)
			if t.CoachID != "" && !coaches[t.CoachID] {
				coaches[t.CoachID] = true
				coachBookings[t.CoachID] = append(coachBookings[t.CoachID], b)
			}
		}
		field := g.FieldID
		if okSlot && s.FieldID != "" {
			field = s.FieldID
		}
		if field != "" {
			fieldBookings[field] = append(fieldBookings[field], b)
		}
	}

	for _, s := range sortSlotsByID(in.GameSlots) {
		findings = append(findings, capacityFindings(CategoryGames, s, counts[s.ID])...)
	}

	for _, id := range sortedKeys(teamBookings) {
		findings = append(findings, doubleBooked(CategoryGames, CodeTeamDoubleBook, "team", id, teamBookings[id], false)...)
	}
	for _, id := range sortedKeys(coachBookings) {
		findings = append(findings, doubleBooked(CategoryGames, CodeCoachDoubleBook, "coach", id, coachBookings[id], false)...)
	}
	// Games sharing one multi-capacity slot are a capacity question, not a
	// field clash.
	for _, id := range sortedKeys(fieldBookings) {
		findings = append(findings, doubleBooked(CategoryGames, CodeFieldDoubleBook, "field", id, fieldBookings[id], true)...)
	}

	byReason := make(map[string][]string)
	for _, u := range in.Unscheduled {
		m.UnscheduledByReason[u.Reason]++
		byReason[u.Reason] = append(byReason[u.Reason], fmt.Sprintf("week %d %s vs %s", u.Week, u.HomeTeamID, u.AwayTeamID))
	}
	for _, reason := range sortedKeys(byReason) {
		severity := SeverityWarning
		if reason == schedule.ReasonUnknownTeam || reason == schedule.ReasonDivisionMismatch {
			severity = SeverityError
		}
		matchups := byReason[reason]
		findings = append(findings, Finding{
			Category: CategoryGames,
			Severity: severity,
			Code:     CodeUnscheduled,
			Message:  fmt.Sprintf("%d matchups unscheduled: %s", len(matchups), reason),
			Details: map[string]string{
				"reason":   reason,
				"count":    strconv.Itoa(len(matchups)),
				"matchups": strings.Join(matchups, "; "),
			},
		})
	}

	return m, findings
}
