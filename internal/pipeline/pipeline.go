// Package pipeline runs a full scheduling pass over a season config: rosters,
// practice slots, round robin games and the readiness report.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/derekprior/season/internal/config"
	"github.com/derekprior/season/internal/league"
	"github.com/derekprior/season/internal/logger"
	"github.com/derekprior/season/internal/practice"
	"github.com/derekprior/season/internal/readiness"
	"github.com/derekprior/season/internal/roster"
	"github.com/derekprior/season/internal/schedule"
	"github.com/derekprior/season/internal/strategy"
)

// Run is the immutable snapshot of one scheduling pass.
type Run struct {
	ID          string
	GeneratedAt time.Time
	Seed        int64
	Strategy    string

	Roster        *roster.Result
	Teams         []league.Team
	PracticeSlots []league.Slot
	Practice      *practice.Result
	GameSlots     []league.Slot
	Blackouts     []schedule.BlackoutSlot
	Weeks         map[string][]strategy.Week
	Games         *schedule.Result
	Report        readiness.Report
}

// Execute runs every stage against cfg. rng drives roster shuffling only;
// the other stages are deterministic. Unplaceable players, teams and
// matchups are part of the returned Run, not errors.
func Execute(cfg *config.Config, rng roster.RNG) (*Run, error) {
	strat, err := strategy.Get(cfg.Games.Strategy)
	if err != nil {
		logger.Error("selecting strategy", "strategy", cfg.Games.Strategy, "err", err)
		return nil, fmt.Errorf("%w: %v", league.ErrInvalidInput, err)
	}

	run := &Run{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Seed:        cfg.Seed,
		Strategy:    strategyName(cfg.Games.Strategy),
	}
	logger.Info("starting run", "id", run.ID, "seed", run.Seed, "strategy", run.Strategy)

	run.Roster, err = roster.Allocate(players(cfg), divisions(cfg), rng)
	if err != nil {
		logger.Error("allocating rosters", "run", run.ID, "err", err)
		return nil, fmt.Errorf("allocating rosters: %w", err)
	}
	run.Teams = run.Roster.Teams()
	overflow := run.Roster.Overflow()
	logger.Info("rosters allocated", "teams", len(run.Teams), "overflow", len(overflow),
		"buddyDiagnostics", len(run.Roster.BuddyDiagnostics))
	for _, o := range overflow {
		logger.Warn("players not placed", "division", o.Division, "players", strings.Join(o.PlayerIDs, ","), "reason", o.Reason)
	}

	run.PracticeSlots = schedule.ExpandPracticeSlots(cfg)
	run.Practice, err = practice.Assign(practiceInput(cfg, run.Teams, run.PracticeSlots))
	if err != nil {
		logger.Error("assigning practice slots", "run", run.ID, "err", err)
		return nil, fmt.Errorf("assigning practice slots: %w", err)
	}
	logger.Info("practice assigned", "slots", len(run.PracticeSlots), "assigned", len(run.Practice.Assignments),
		"unassigned", len(run.Practice.Unassigned), "swaps", len(run.Practice.Swaps))

	run.Weeks = make(map[string][]strategy.Week)
	teamIDs := teamIDsByDivision(run.Teams)
	for _, division := range cfg.DivisionNames() {
		ids, ok := teamIDs[division]
		if !ok {
			continue
		}
		weeks, err := strat.GenerateWeeks(ids)
		if err != nil {
			logger.Error("generating round robin", "run", run.ID, "division", division, "err", err)
			return nil, fmt.Errorf("generating %s weeks: %w", division, err)
		}
		run.Weeks[division] = weeks
		logger.Debug("round robin generated", "division", division, "teams", len(ids), "weeks", len(weeks))
	}

	run.GameSlots = schedule.GenerateGameSlots(cfg)
	run.Blackouts = schedule.GenerateBlackoutSlots(cfg)
	run.Games, err = schedule.ScheduleGames(run.Teams, run.GameSlots, run.Weeks)
	if err != nil {
		logger.Error("scheduling games", "run", run.ID, "err", err)
		return nil, fmt.Errorf("scheduling games: %w", err)
	}
	logger.Info("games scheduled", "slots", len(run.GameSlots), "games", len(run.Games.Games),
		"unscheduled", len(run.Games.Unscheduled), "byes", len(run.Games.Byes))

	run.Report = readiness.Evaluate(run.EvaluationInput(), readinessOptions(cfg))
	logger.Info("readiness evaluated", "status", run.Report.Status,
		"errors", run.Report.Errors(), "warnings", run.Report.Warnings())

	return run, nil
}

// EvaluationInput returns the readiness input for the run's current outputs.
func (r *Run) EvaluationInput() readiness.Input {
	return readiness.Input{
		Teams:         r.Teams,
		PracticeSlots: r.PracticeSlots,
		Practice:      r.Practice.Assignments,
		Unassigned:    r.Practice.Unassigned,
		GameSlots:     r.GameSlots,
		Games:         r.Games.Games,
		Unscheduled:   r.Games.Unscheduled,
	}
}

func strategyName(name string) string {
	if name == "" {
		return "round_robin"
	}
	return name
}

func players(cfg *config.Config) []league.Player {
	out := make([]league.Player, 0, len(cfg.Players))
	for _, p := range cfg.Players {
		out = append(out, league.Player{ID: p.ID, Division: p.Division, BuddyID: p.Buddy, CoachID: p.Coach})
	}
	return out
}

func divisions(cfg *config.Config) []league.Division {
	out := make([]league.Division, 0, len(cfg.Divisions))
	for _, d := range cfg.Divisions {
		out = append(out, league.Division{ID: d.Name, MaxRosterSize: d.MaxRosterSize})
	}
	return out
}

func practiceInput(cfg *config.Config, teams []league.Team, slots []league.Slot) practice.Input {
	in := practice.Input{
		Teams:      teams,
		Slots:      slots,
		Weights:    practice.DefaultWeights(),
		SkipRepair: !cfg.Practice.RepairEnabled(),
	}
	if w := cfg.Practice.Weights; w != nil {
		in.Weights = practice.Weights{
			PreferredSlot:         w.PreferredSlot,
			PreferredDay:          w.PreferredDay,
			DivisionDay:           w.DivisionDay,
			BaseSlotSaturation:    w.BaseSlotSaturation,
			DivisionDaySaturation: w.DivisionDaySaturation,
		}
	}
	for _, c := range cfg.Coaches {
		in.CoachPreferences = append(in.CoachPreferences, practice.CoachPreference{
			CoachID:            c.ID,
			PreferredSlotIDs:   c.PreferredSlots,
			PreferredDays:      weekdays(c.PreferredDays),
			UnavailableSlotIDs: c.UnavailableSlots,
		})
	}
	for _, d := range cfg.Divisions {
		if len(d.PreferredPracticeDays) > 0 {
			in.DivisionPreferences = append(in.DivisionPreferences, practice.DivisionPreference{
				Division:      d.Name,
				PreferredDays: weekdays(d.PreferredPracticeDays),
			})
		}
	}
	for _, l := range cfg.Practice.Locked {
		in.Locked = append(in.Locked, league.PracticeAssignment{
			TeamID: l.Team,
			SlotID: l.Slot,
			Source: league.Source(l.Source),
		})
	}
	return in
}

// weekdays normalizes configured day names ("Tue") to slot day keys
// ("tuesday"). Names were checked when the config was loaded.
func weekdays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		if wd, err := config.ParseWeekday(d); err == nil {
			out = append(out, strings.ToLower(wd.String()))
		}
	}
	return out
}

func teamIDsByDivision(teams []league.Team) map[string][]string {
	out := make(map[string][]string)
	for _, t := range teams {
		out[t.Division] = append(out[t.Division], t.ID)
	}
	return out
}

func readinessOptions(cfg *config.Config) readiness.Options {
	return readiness.Options{
		DayConcentration:   cfg.Readiness.DayConcentration,
		UnderutilizedRatio: cfg.Readiness.UnderutilizedRatio,
		MinDaySample:       cfg.Readiness.MinDaySample,
	}
}
