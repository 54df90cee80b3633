package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/season/internal/league"
	"github.com/derekprior/season/internal/pipeline"
)

// Sheet names.
const (
	SheetSummary  = "Summary"
	SheetMaster   = "Master Schedule"
	SheetTeams    = "Teams"
	SheetPractice = "Practice"
	SheetGames    = "Games"
	SheetUnplaced = "Unplaced"
	SheetFindings = "Findings"
)

// TimeLayout is how start and end times are written to the workbook.
const TimeLayout = "2006-01-02 15:04"

var (
	teamHeaders     = []string{"teamId", "division", "coachId", "players"}
	practiceHeaders = []string{"teamId", "slotId", "start", "end", "fieldId", "source"}
	gameHeaders     = []string{"week", "division", "homeTeamId", "awayTeamId", "slotId", "fieldId", "start", "end", "source"}
)

// Generate creates an Excel workbook for a run: a summary, the master game
// grid, flat assignment tables with stable column names, the unplaced and
// findings lists, and one sheet per team.
func Generate(run *pipeline.Run) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	st, err := newStyles(f)
	if err != nil {
		return nil, fmt.Errorf("creating styles: %w", err)
	}

	writers := []struct {
		name  string
		write func(*excelize.File, *styles, *pipeline.Run) error
	}{
		{SheetSummary, writeSummarySheet},
		{SheetMaster, writeMasterSheet},
		{SheetTeams, writeTeamsSheet},
		{SheetPractice, writePracticeSheet},
		{SheetGames, writeGamesSheet},
		{SheetUnplaced, writeUnplacedSheet},
		{SheetFindings, writeFindingsSheet},
	}
	for _, w := range writers {
		if err := w.write(f, st, run); err != nil {
			return nil, fmt.Errorf("writing %s sheet: %w", w.name, err)
		}
	}

	if err := writeTeamSheets(f, st, run); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

type styles struct {
	header int
	cell   int
	center int
	red    int
}

func newStyles(f *excelize.File) (*styles, error) {
	var st styles
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 12, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}
	if st.cell, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 12, Family: "Arial"},
	}); err != nil {
		return nil, err
	}
	if st.center, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}
	if st.red, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Font: &excelize.Font{Size: 12, Family: "Arial"},
	}); err != nil {
		return nil, err
	}
	return &st, nil
}

// writeTable fills a sheet with a styled header row and data rows.
func writeTable(f *excelize.File, st *styles, sheet string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", cellRef(len(headers), 1), st.header); err != nil {
		return err
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, cellRef(1, i+2), &row); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		if err := f.SetCellStyle(sheet, "A2", cellRef(len(headers), len(rows)+1), st.cell); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", colLetter(len(headers)), 18)
}

func writeSummarySheet(f *excelize.File, st *styles, run *pipeline.Run) error {
	r := run.Report
	rows := [][]interface{}{
		{"runId", run.ID},
		{"generatedAt", run.GeneratedAt.Format(time.RFC3339)},
		{"seed", run.Seed},
		{"strategy", run.Strategy},
		{"status", string(r.Status)},
		{"errors", r.Errors()},
		{"warnings", r.Warnings()},
		{"teams", len(run.Teams)},
		{"practiceAssigned", len(run.Practice.Assignments)},
		{"practiceUnassigned", len(run.Practice.Unassigned)},
		{"games", len(run.Games.Games)},
		{"gamesUnscheduled", len(run.Games.Unscheduled)},
	}
	if err := writeTable(f, st, SheetSummary, []string{"key", "value"}, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "B", "B", 40)
}

func fieldColumnName(name string, allNames []string) string {
	first, _, _ := strings.Cut(name, " ")
	// Check if first word is unique
	count := 0
	for _, n := range allNames {
		word, _, _ := strings.Cut(n, " ")
		if word == first {
			count++
		}
	}
	if count > 1 {
		return name
	}
	return first
}

// writeMasterSheet lays the games out as a date/time by field grid, with
// blackout reasons in cells that cannot hold a game.
func writeMasterSheet(f *excelize.File, st *styles, run *pipeline.Run) error {
	sheet := SheetMaster
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	// Field order follows the slot catalog, then any blackout-only fields.
	var fieldNames []string
	seenField := make(map[string]bool)
	addField := func(name string) {
		if name != "" && !seenField[name] {
			seenField[name] = true
			fieldNames = append(fieldNames, name)
		}
	}
	for _, s := range run.GameSlots {
		addField(s.FieldID)
	}
	for _, b := range run.Blackouts {
		addField(b.Field)
	}
	sort.Strings(fieldNames)

	fieldCols := make([]string, len(fieldNames))
	for i, name := range fieldNames {
		fieldCols[i] = fieldColumnName(name, fieldNames)
	}

	// Headers: Date, Day, Time, <field1>, <field2>, ...
	headers := []string{"Date", "Day", "Time"}
	headers = append(headers, fieldCols...)
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	f.SetCellStyle(sheet, "A1", cellRef(len(headers), 1), st.header)

	type slotKey struct {
		date  time.Time
		time  string
		field string
	}
	dayOf := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}

	// Several games can share one multi-capacity slot.
	gameCells := make(map[slotKey][]string)
	for _, g := range run.Games.Games {
		k := slotKey{dayOf(g.Start), g.Start.Format("15:04"), g.FieldID}
		gameCells[k] = append(gameCells[k], fmt.Sprintf("%s @ %s", g.AwayTeamID, g.HomeTeamID))
	}

	blackoutMap := make(map[slotKey]string)
	for _, b := range run.Blackouts {
		blackoutMap[slotKey{b.Date, b.Time, b.Field}] = b.Reason
	}

	// Collect all unique (date, time) pairs from both slots and blackouts
	type timeSlot struct {
		date time.Time
		time string
	}
	seen := make(map[timeSlot]bool)
	var timeSlots []timeSlot
	add := func(ts timeSlot) {
		if !seen[ts] {
			seen[ts] = true
			timeSlots = append(timeSlots, ts)
		}
	}
	for _, s := range run.GameSlots {
		add(timeSlot{dayOf(s.Start), s.Start.Format("15:04")})
	}
	for _, b := range run.Blackouts {
		add(timeSlot{b.Date, b.Time})
	}

	sort.Slice(timeSlots, func(i, j int) bool {
		if !timeSlots[i].date.Equal(timeSlots[j].date) {
			return timeSlots[i].date.Before(timeSlots[j].date)
		}
		return timeSlots[i].time < timeSlots[j].time
	})

	for i, ts := range timeSlots {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), ts.date.Format("01/02/2006"))
		f.SetCellValue(sheet, cellRef(2, row), ts.date.Format("Mon"))
		f.SetCellValue(sheet, cellRef(3, row), ts.time)

		for fi, fname := range fieldNames {
			col := fi + 4 // 1-indexed, after Date/Day/Time
			sk := slotKey{ts.date, ts.time, fname}

			if games, ok := gameCells[sk]; ok {
				f.SetCellValue(sheet, cellRef(col, row), strings.Join(games, "\n"))
			} else if reason, ok := blackoutMap[sk]; ok {
				f.SetCellValue(sheet, cellRef(col, row), reason)
			}
		}
	}
	if lastRow := len(timeSlots) + 1; lastRow > 1 {
		f.SetCellStyle(sheet, "A2", cellRef(3, lastRow), st.cell)
		if len(fieldNames) > 0 {
			f.SetCellStyle(sheet, "D2", cellRef(len(headers), lastRow), st.center)
		}
	}

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 8)
	f.SetColWidth(sheet, "C", "C", 10)
	for i := range fieldNames {
		col := colLetter(i + 4)
		f.SetColWidth(sheet, col, col, 30)
	}

	// Conditional formatting: non-game cells in field columns get light red
	lastRow := len(timeSlots) + 1
	if lastRow == 1 {
		return nil
	}
	for i := range fieldNames {
		col := colLetter(i + 4)
		cellRange := fmt.Sprintf("%s2:%s%d", col, col, lastRow)
		topCell := fmt.Sprintf("%s2", col)
		formula := fmt.Sprintf(`AND(%s<>"",ISERROR(FIND(" @ ",%s)))`, topCell, topCell)
		red := st.red
		if err := f.SetConditionalFormat(sheet, cellRange, []excelize.ConditionalFormatOptions{
			{
				Type:     "formula",
				Criteria: formula,
				Format:   &red,
			},
		}); err != nil {
			return err
		}
	}

	return nil
}

func writeTeamsSheet(f *excelize.File, st *styles, run *pipeline.Run) error {
	var rows [][]interface{}
	for _, t := range run.Teams {
		rows = append(rows, []interface{}{t.ID, t.Division, t.CoachID, strings.Join(t.PlayerIDs(), ", ")})
	}
	return writeTable(f, st, SheetTeams, teamHeaders, rows)
}

func writePracticeSheet(f *excelize.File, st *styles, run *pipeline.Run) error {
	fields := make(map[string]string)
	for _, s := range run.PracticeSlots {
		fields[s.ID] = s.FieldID
	}
	var rows [][]interface{}
	for _, a := range run.Practice.Assignments {
		rows = append(rows, []interface{}{
			a.TeamID, a.SlotID, a.Start.Format(TimeLayout), a.End.Format(TimeLayout), fields[a.SlotID], string(a.Source),
		})
	}
	return writeTable(f, st, SheetPractice, practiceHeaders, rows)
}

func writeGamesSheet(f *excelize.File, st *styles, run *pipeline.Run) error {
	var rows [][]interface{}
	for _, g := range run.Games.Games {
		rows = append(rows, []interface{}{
			g.Week, g.Division, g.HomeTeamID, g.AwayTeamID, g.SlotID, g.FieldID,
			g.Start.Format(TimeLayout), g.End.Format(TimeLayout), string(g.Source),
		})
	}
	return writeTable(f, st, SheetGames, gameHeaders, rows)
}

// writeUnplacedSheet lists everything that needs a manual decision: roster
// overflow, teams without practice, unscheduled matchups and byes.
func writeUnplacedSheet(f *excelize.File, st *styles, run *pipeline.Run) error {
	var rows [][]interface{}
	for _, o := range run.Roster.Overflow() {
		rows = append(rows, []interface{}{"overflow", o.Division, "", strings.Join(o.PlayerIDs, ", "), o.Reason})
	}
	for _, d := range run.Roster.BuddyDiagnostics {
		rows = append(rows, []interface{}{"buddy", d.Division, "", d.PlayerID + " -> " + d.BuddyID, d.Reason})
	}
	for _, u := range run.Practice.Unassigned {
		rows = append(rows, []interface{}{"practice", teamDivision(run.Teams, u.TeamID), "", u.TeamID, u.Reason})
	}
	for _, u := range run.Games.Unscheduled {
		rows = append(rows, []interface{}{"game", u.Division, u.Week, u.HomeTeamID + " vs " + u.AwayTeamID, u.Reason})
	}
	for _, b := range run.Games.Byes {
		rows = append(rows, []interface{}{"bye", b.Division, b.Week, b.TeamID, ""})
	}
	return writeTable(f, st, SheetUnplaced, []string{"kind", "division", "week", "subject", "reason"}, rows)
}

func writeFindingsSheet(f *excelize.File, st *styles, run *pipeline.Run) error {
	var rows [][]interface{}
	for _, fd := range run.Report.Findings {
		rows = append(rows, []interface{}{string(fd.Severity), string(fd.Category), fd.Code, fd.Message})
	}
	if err := writeTable(f, st, SheetFindings, []string{"severity", "category", "code", "message"}, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetFindings, "D", "D", 80)
}

// writeTeamSheets writes one sheet per team with its practice and games in
// date order.
func writeTeamSheets(f *excelize.File, st *styles, run *pipeline.Run) error {
	fields := make(map[string]string)
	for _, s := range run.PracticeSlots {
		fields[s.ID] = s.FieldID
	}

	for _, team := range run.Teams {
		type event struct {
			start    time.Time
			field    string
			kind     string
			opponent string
			homeAway string
		}
		var events []event
		for _, a := range run.Practice.Assignments {
			if a.TeamID == team.ID {
				events = append(events, event{start: a.Start, field: fields[a.SlotID], kind: "Practice"})
			}
		}
		for _, g := range run.Games.Games {
			if g.HomeTeamID == team.ID {
				events = append(events, event{start: g.Start, field: g.FieldID, kind: "Game", opponent: g.AwayTeamID, homeAway: "Home"})
			} else if g.AwayTeamID == team.ID {
				events = append(events, event{start: g.Start, field: g.FieldID, kind: "Game", opponent: g.HomeTeamID, homeAway: "Away"})
			}
		}
		sort.SliceStable(events, func(i, j int) bool { return events[i].start.Before(events[j].start) })

		var rows [][]interface{}
		for _, e := range events {
			rows = append(rows, []interface{}{
				e.start.Format("01/02/2006"), e.start.Format("Mon"), e.start.Format("15:04"),
				e.field, e.kind, e.opponent, e.homeAway,
			})
		}
		headers := []string{"Date", "Day", "Time", "Field", "Event", "Opponent", "Home/Away"}
		if err := writeTable(f, st, team.ID, headers, rows); err != nil {
			return fmt.Errorf("team %s: %w", team.ID, err)
		}
	}

	return nil
}

func teamDivision(teams []league.Team, id string) string {
	for _, t := range teams {
		if t.ID == id {
			return t.Division
		}
	}
	return ""
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
