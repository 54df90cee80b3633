package pipeline

import (
	"bytes"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/derekprior/season/internal/config"
	"github.com/derekprior/season/internal/league"
	"github.com/derekprior/season/internal/logger"
	"github.com/derekprior/season/internal/readiness"
)

const pipelineYAML = `
seed: 11
season:
  start_date: "2026-04-25"
  end_date: "2026-05-16"
divisions:
  - name: U10
    max_roster_size: 3
    preferred_practice_days: [Mon]
players:
  - {id: p01, division: U10, coach: smith}
  - {id: p02, division: U10, buddy: p03}
  - {id: p03, division: U10, buddy: p02}
  - {id: p04, division: U10}
  - {id: p05, division: U10}
  - {id: p06, division: U10}
  - {id: p07, division: U10}
  - {id: p08, division: U10}
coaches:
  - id: smith
    preferred_days: [wednesday]
practice:
  slots:
    - {id: wash-mon, day: monday, field: Washington Park, capacity: 2, start: "17:00", end: "18:30"}
    - {id: wash-wed, day: wednesday, field: Washington Park, capacity: 2, start: "17:00", end: "18:30"}
games:
  fields:
    - name: Washington Park
  time_slots:
    saturday: ["09:00"]
`

func loadConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	return cfg
}

func TestExecute(t *testing.T) {
	cfg := loadConfig(t, pipelineYAML)
	run, err := Execute(cfg, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("run identity", func(t *testing.T) {
		if _, err := uuid.Parse(run.ID); err != nil {
			t.Errorf("run id %q is not a uuid: %v", run.ID, err)
		}
		if run.Seed != 11 || run.Strategy != "round_robin" {
			t.Errorf("seed/strategy = %d/%s", run.Seed, run.Strategy)
		}
	})

	t.Run("rosters", func(t *testing.T) {
		if len(run.Teams) != 3 {
			t.Fatalf("expected 3 teams, got %d", len(run.Teams))
		}
		placed := 0
		for _, team := range run.Teams {
			placed += len(team.Players)
		}
		if placed != 8 {
			t.Errorf("placed %d players, want 8", placed)
		}
	})

	t.Run("practice", func(t *testing.T) {
		if len(run.PracticeSlots) != 2 {
			t.Errorf("expected 2 practice slots, got %d", len(run.PracticeSlots))
		}
		if len(run.Practice.Assignments) != 3 || len(run.Practice.Unassigned) != 0 {
			t.Errorf("practice = %+v", run.Practice)
		}
		for _, a := range run.Practice.Assignments {
			if a.TeamID == "U10-01" && a.SlotID != "wash-wed" {
				t.Errorf("smith's team should get the preferred wednesday slot, got %s", a.SlotID)
			}
		}
	})

	t.Run("games", func(t *testing.T) {
		if len(run.Weeks["U10"]) != 3 {
			t.Fatalf("expected 3 round robin weeks, got %d", len(run.Weeks["U10"]))
		}
		if len(run.Games.Games) != 3 || len(run.Games.Unscheduled) != 0 {
			t.Errorf("games = %+v, unscheduled = %+v", run.Games.Games, run.Games.Unscheduled)
		}
		if len(run.Games.Byes) != 3 {
			t.Errorf("expected a bye each week, got %+v", run.Games.Byes)
		}
	})

	t.Run("readiness", func(t *testing.T) {
		if run.Report.Status != readiness.StatusOK {
			t.Errorf("status = %s, findings = %+v", run.Report.Status, run.Report.Findings)
		}
	})
}

func TestExecuteIsReproducible(t *testing.T) {
	cfg := loadConfig(t, pipelineYAML)
	a, err := Execute(cfg, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Execute(cfg, rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.ID == b.ID {
		t.Error("each run should get its own id")
	}
	if !reflect.DeepEqual(a.Teams, b.Teams) {
		t.Error("teams differ between seeded runs")
	}
	if !reflect.DeepEqual(a.Practice, b.Practice) || !reflect.DeepEqual(a.Games, b.Games) {
		t.Error("assignments differ between seeded runs")
	}
	if !reflect.DeepEqual(a.Report, b.Report) {
		t.Error("reports differ between seeded runs")
	}
}

func TestExecuteErrors(t *testing.T) {
	t.Run("unknown strategy", func(t *testing.T) {
		cfg := loadConfig(t, pipelineYAML)
		cfg.Games.Strategy = "swiss"
		_, err := Execute(cfg, rand.New(rand.NewSource(1)))
		if !errors.Is(err, league.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("lock on a missing slot", func(t *testing.T) {
		cfg := loadConfig(t, pipelineYAML)
		cfg.Practice.Locked = []config.Lock{{Team: "U10-01", Slot: "nowhere"}}

		var buf bytes.Buffer
		if err := logger.Init(logger.Config{Output: &buf}); err != nil {
			t.Fatalf("logger.Init: %v", err)
		}
		t.Cleanup(func() { logger.Logger = nil })

		_, err := Execute(cfg, rand.New(rand.NewSource(1)))
		if !errors.Is(err, league.ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
		if out := buf.String(); !strings.Contains(out, "assigning practice slots") || !strings.Contains(out, "nowhere") {
			t.Errorf("stage failure not logged: %q", out)
		}
	})

	t.Run("conflicting coaches in a buddy pair", func(t *testing.T) {
		cfg := loadConfig(t, pipelineYAML)
		cfg.Players[1].Coach = "jones"
		cfg.Players[2].Coach = "lee"
		_, err := Execute(cfg, rand.New(rand.NewSource(1)))
		if !errors.Is(err, league.ErrConstraintConflict) {
			t.Errorf("err = %v, want ErrConstraintConflict", err)
		}
	})
}

func TestWeekdays(t *testing.T) {
	got := weekdays([]string{"Mon", "wednesday", "SAT"})
	want := []string{"monday", "wednesday", "saturday"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("weekdays = %v, want %v", got, want)
	}
}
