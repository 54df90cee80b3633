package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/season/internal/league"
)

// Workbook is the schedule read back from a generated (and possibly
// hand-edited) workbook.
type Workbook struct {
	RunID    string
	Teams    []league.Team
	Practice []league.PracticeAssignment
	Games    []league.GameAssignment
}

// ReadWorkbook opens an Excel file and reads its teams and assignments.
func ReadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read loads the Teams, Practice and Games sheets. Columns are found by
// header name so they may be reordered.
func Read(f *excelize.File) (*Workbook, error) {
	var wb Workbook

	if rows, err := readTable(f, SheetSummary, []string{"key", "value"}); err == nil {
		for _, r := range rows {
			if r["key"] == "runId" {
				wb.RunID = r["value"]
			}
		}
	}

	teams, err := readTable(f, SheetTeams, teamHeaders)
	if err != nil {
		return nil, err
	}
	for _, r := range teams {
		t := league.Team{ID: r["teamId"], Division: r["division"], CoachID: r["coachId"]}
		for _, id := range strings.Split(r["players"], ",") {
			if id = strings.TrimSpace(id); id != "" {
				t.Players = append(t.Players, league.Player{ID: id, Division: t.Division})
			}
		}
		wb.Teams = append(wb.Teams, t)
	}

	practice, err := readTable(f, SheetPractice, practiceHeaders)
	if err != nil {
		return nil, err
	}
	for i, r := range practice {
		a := league.PracticeAssignment{TeamID: r["teamId"], SlotID: r["slotId"]}
		if a.Start, a.End, err = parseWindow(r); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetPractice, i+2, err)
		}
		if a.Source, err = parseSource(r["source"]); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetPractice, i+2, err)
		}
		wb.Practice = append(wb.Practice, a)
	}

	games, err := readTable(f, SheetGames, gameHeaders)
	if err != nil {
		return nil, err
	}
	for i, r := range games {
		g := league.GameAssignment{
			Division:   r["division"],
			HomeTeamID: r["homeTeamId"],
			AwayTeamID: r["awayTeamId"],
			SlotID:     r["slotId"],
			FieldID:    r["fieldId"],
		}
		if g.Week, err = strconv.Atoi(r["week"]); err != nil {
			return nil, fmt.Errorf("%s row %d: invalid week %q", SheetGames, i+2, r["week"])
		}
		if g.Start, g.End, err = parseWindow(r); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetGames, i+2, err)
		}
		if g.Source, err = parseSource(r["source"]); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", SheetGames, i+2, err)
		}
		wb.Games = append(wb.Games, g)
	}

	return &wb, nil
}

// MissingPractice returns the teams with no practice row, in team order.
func (w *Workbook) MissingPractice(reason string) []league.Unassigned {
	has := make(map[string]bool)
	for _, a := range w.Practice {
		has[a.TeamID] = true
	}
	var out []league.Unassigned
	for _, t := range w.Teams {
		if !has[t.ID] {
			out = append(out, league.Unassigned{TeamID: t.ID, Reason: reason})
		}
	}
	return out
}

// readTable returns the sheet's data rows keyed by header. Every required
// header must be present; blank rows are skipped.
func readTable(f *excelize.File, sheet string, required []string) ([]map[string]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", sheet)
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	for _, h := range required {
		if _, ok := index[h]; !ok {
			return nil, fmt.Errorf("%s is missing column %q", sheet, h)
		}
	}

	var out []map[string]string
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(index))
		blank := true
		for h, i := range index {
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
				if rec[h] != "" {
					blank = false
				}
			}
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out, nil
}

func parseWindow(r map[string]string) (time.Time, time.Time, error) {
	start, err := time.Parse(TimeLayout, r["start"])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start %q", r["start"])
	}
	end, err := time.Parse(TimeLayout, r["end"])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end %q", r["end"])
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s must be after start %s", r["end"], r["start"])
	}
	return start, end, nil
}

func parseSource(s string) (league.Source, error) {
	switch src := league.Source(s); src {
	case "":
		return league.SourceAuto, nil
	case league.SourceAuto, league.SourceLocked, league.SourceManual:
		return src, nil
	default:
		return "", fmt.Errorf("invalid source %q", s)
	}
}
