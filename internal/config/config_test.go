package config

import (
	"strings"
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const testConfigYAML = `
seed: 7

season:
  start_date: "2026-04-25"
  end_date: "2026-06-14"
  blackout_dates:
    - date: "2026-05-10"
      reason: "Mother's Day"
    - date: "2026-05-25"
      reason: "Memorial Day"

divisions:
  - name: U10
    max_roster_size: 4
    preferred_practice_days: [tuesday, thursday]
  - name: U12
    max_roster_size: 5

players:
  - {id: p01, division: U10, buddy: p02}
  - {id: p02, division: U10, buddy: p01, coach: smith}
  - {id: p03, division: U10}
  - {id: p04, division: U12, coach: jones}

coaches:
  - id: smith
    preferred_slots: [wash-tue]
    preferred_days: [Tue]
    unavailable_slots: [wash-mon-late]

practice:
  repair: false
  phases:
    - name: early
      week_of: "2026-03-02"
    - name: late
      week_of: "2026-04-27"
  slots:
    - id: wash-mon
      day: monday
      field: Washington Park
      capacity: 2
      start: "17:00"
      end: "18:30"
      phase_times:
        late: {start: "18:00", end: "19:30"}
    - id: wash-tue
      day: tuesday
      field: Washington Park
      division: U10
      capacity: 1
      start: "17:30"
      end: "19:00"
  weights:
    preferred_slot: 10
    base_slot_saturation: 0
  locked:
    - team: U12-01
      slot: wash-mon-early
      source: manual

games:
  strategy: double_round_robin
  game_length_minutes: 75
  fields:
    - name: Symonds Field
      division: U12
      reservations:
        - date: "2026-05-15"
          times: ["17:45"]
          reason: "Varsity"
    - name: Washington Park
      capacity: 2
  time_slots:
    weekday: ["17:45"]
    saturday: ["09:00", "11:00"]
    sunday: ["13:00"]
    holiday_dates:
      - "2026-05-25"

readiness:
  day_concentration: 0.7
  underutilized_ratio: 0.2
  min_day_sample: 4
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("season dates", func(t *testing.T) {
		if cfg.Season.StartDate.Time != mustDate("2026-04-25") {
			t.Errorf("start date = %v, want 2026-04-25", cfg.Season.StartDate.Time)
		}
		if len(cfg.Season.BlackoutDates) != 2 {
			t.Errorf("blackout dates = %d, want 2", len(cfg.Season.BlackoutDates))
		}
	})

	t.Run("seed", func(t *testing.T) {
		if cfg.Seed != 7 {
			t.Errorf("seed = %d, want 7", cfg.Seed)
		}
	})

	t.Run("divisions", func(t *testing.T) {
		names := cfg.DivisionNames()
		if len(names) != 2 || names[0] != "U10" || names[1] != "U12" {
			t.Errorf("divisions = %v, want [U10 U12]", names)
		}
		if cfg.Divisions[0].MaxRosterSize != 4 {
			t.Errorf("U10 max roster = %d, want 4", cfg.Divisions[0].MaxRosterSize)
		}
		if len(cfg.Divisions[0].PreferredPracticeDays) != 2 {
			t.Errorf("U10 preferred days = %v", cfg.Divisions[0].PreferredPracticeDays)
		}
	})

	t.Run("players", func(t *testing.T) {
		if len(cfg.Players) != 4 {
			t.Fatalf("players = %d, want 4", len(cfg.Players))
		}
		p := cfg.Players[1]
		if p.Buddy != "p01" || p.Coach != "smith" {
			t.Errorf("player p02 = %+v", p)
		}
	})

	t.Run("coaches", func(t *testing.T) {
		if len(cfg.Coaches) != 1 || cfg.Coaches[0].UnavailableSlots[0] != "wash-mon-late" {
			t.Errorf("coaches = %+v", cfg.Coaches)
		}
	})

	t.Run("practice slots", func(t *testing.T) {
		if cfg.Practice.RepairEnabled() {
			t.Error("repair should be disabled")
		}
		if len(cfg.Practice.Slots) != 2 {
			t.Fatalf("practice slots = %d, want 2", len(cfg.Practice.Slots))
		}
		mon := cfg.Practice.Slots[0]
		if mon.Start.Minutes != 17*60 || mon.End.Minutes != 18*60+30 {
			t.Errorf("wash-mon = %s-%s, want 17:00-18:30", mon.Start, mon.End)
		}
		start, end := mon.Times("late")
		if start.String() != "18:00" || end.String() != "19:30" {
			t.Errorf("late times = %s-%s, want 18:00-19:30", start, end)
		}
		start, _ = mon.Times("early")
		if start.String() != "17:00" {
			t.Errorf("early start = %s, want default 17:00", start)
		}
	})

	t.Run("weights and locks", func(t *testing.T) {
		if cfg.Practice.Weights == nil || cfg.Practice.Weights.PreferredSlot != 10 {
			t.Errorf("weights = %+v", cfg.Practice.Weights)
		}
		if len(cfg.Practice.Locked) != 1 || cfg.Practice.Locked[0].Source != "manual" {
			t.Errorf("locked = %+v", cfg.Practice.Locked)
		}
	})

	t.Run("games", func(t *testing.T) {
		if cfg.Games.Strategy != "double_round_robin" {
			t.Errorf("strategy = %q", cfg.Games.Strategy)
		}
		if cfg.Games.GameLength() != 75*time.Minute {
			t.Errorf("game length = %v, want 75m", cfg.Games.GameLength())
		}
		if cfg.Games.Fields[0].Division != "U12" || cfg.Games.Fields[1].Capacity != 2 {
			t.Errorf("fields = %+v", cfg.Games.Fields)
		}
		if len(cfg.Games.TimeSlots.Saturday) != 2 {
			t.Errorf("saturday times = %v", cfg.Games.TimeSlots.Saturday)
		}
	})

	t.Run("readiness", func(t *testing.T) {
		if cfg.Readiness.DayConcentration != 0.7 || cfg.Readiness.MinDaySample != 4 {
			t.Errorf("readiness = %+v", cfg.Readiness)
		}
	})
}

func TestDefaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`
season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"
divisions:
  - name: U10
    max_roster_size: 10
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Practice.RepairEnabled() {
		t.Error("repair should default to enabled")
	}
	if cfg.Games.GameLength() != 90*time.Minute {
		t.Errorf("game length = %v, want 90m default", cfg.Games.GameLength())
	}
}

func TestValidation(t *testing.T) {
	base := `
season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"
divisions:
  - name: U10
    max_roster_size: 10
`
	cases := map[string]struct {
		yaml string
		want string
	}{
		"end before start": {
			yaml: `
season:
  start_date: "2026-05-31"
  end_date: "2026-04-25"
divisions:
  - name: U10
    max_roster_size: 10
`,
			want: "must be after start date",
		},
		"no divisions": {
			yaml: `
season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"
`,
			want: "at least one division",
		},
		"non-positive roster size": {
			yaml: `
season:
  start_date: "2026-04-25"
  end_date: "2026-05-31"
divisions:
  - name: U10
`,
			want: "max_roster_size must be positive",
		},
		"duplicate player": {
			yaml: base + `
players:
  - {id: p1, division: U10}
  - {id: p1, division: U10}
`,
			want: "listed twice",
		},
		"player in unknown division": {
			yaml: base + `
players:
  - {id: p1, division: U14}
`,
			want: "unknown division",
		},
		"bad weekday": {
			yaml: base + `
practice:
  slots:
    - {id: s1, day: funday, capacity: 1, start: "17:00", end: "18:00"}
`,
			want: "invalid weekday",
		},
		"inverted practice window": {
			yaml: base + `
practice:
  slots:
    - {id: s1, day: monday, capacity: 1, start: "18:00", end: "17:00"}
`,
			want: "must be after start",
		},
		"unknown phase": {
			yaml: base + `
practice:
  slots:
    - id: s1
      day: monday
      capacity: 1
      start: "17:00"
      end: "18:00"
      phase_times:
        late: {start: "18:00", end: "19:00"}
`,
			want: "unknown phase",
		},
		"bad clock": {
			yaml: base + `
practice:
  slots:
    - {id: s1, day: monday, capacity: 1, start: "5pm", end: "18:00"}
`,
			want: "invalid time",
		},
		"bad lock source": {
			yaml: base + `
practice:
  locked:
    - {team: U10-01, slot: s1, source: auto}
`,
			want: "source must be locked or manual",
		},
		"reservation without dates": {
			yaml: base + `
games:
  fields:
    - name: Symonds
      reservations:
        - reason: "nope"
`,
			want: "must have either",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestReservationDates(t *testing.T) {
	t.Run("single date", func(t *testing.T) {
		r := Reservation{Date: &Date{Time: mustDate("2026-05-04")}}
		dates := r.Dates()
		if len(dates) != 1 || dates[0] != mustDate("2026-05-04") {
			t.Errorf("dates = %v", dates)
		}
	})

	t.Run("range", func(t *testing.T) {
		r := Reservation{
			StartDate: &Date{Time: mustDate("2026-05-18")},
			EndDate:   &Date{Time: mustDate("2026-05-20")},
		}
		if len(r.Dates()) != 3 {
			t.Errorf("dates = %v, want 3", r.Dates())
		}
	})
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"monday": time.Monday, "Tue": time.Tuesday, " SATURDAY ": time.Saturday, "sun": time.Sunday,
	} {
		got, err := ParseWeekday(in)
		if err != nil || got != want {
			t.Errorf("ParseWeekday(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseWeekday("mo"); err == nil {
		t.Error("expected error for ambiguous prefix")
	}
}

func TestClockOn(t *testing.T) {
	c, err := ParseClock("17:45")
	if err != nil {
		t.Fatalf("ParseClock error: %v", err)
	}
	got := c.On(mustDate("2026-05-01"))
	want := time.Date(2026, 5, 1, 17, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("On() = %v, want %v", got, want)
	}
}
