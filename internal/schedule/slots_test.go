package schedule

import (
	"testing"
	"time"

	"github.com/derekprior/season/internal/config"
	"github.com/derekprior/season/internal/league"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func date(y, m, d int) config.Date {
	return config.Date{Time: time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)}
}

func datePtr(y, m, d int) *config.Date {
	dt := date(y, m, d)
	return &dt
}

func clock(s string) config.Clock {
	c, err := config.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func testConfig() *config.Config {
	return &config.Config{
		Season: config.Season{
			StartDate: date(2026, 4, 25), // Saturday
			EndDate:   date(2026, 5, 31), // Sunday
			BlackoutDates: []config.BlackoutDate{
				{Date: date(2026, 5, 10), Reason: "Mother's Day"},
				{Date: date(2026, 5, 23), Reason: "Memorial Day Weekend"},
			},
		},
		Games: config.Games{
			Fields: []config.Field{
				{
					Name: "Moscariello Ballpark",
					Reservations: []config.Reservation{
						{
							Date:   datePtr(2026, 5, 15),
							Times:  []string{"17:45"},
							Reason: "Varsity",
						},
						{
							StartDate: datePtr(2026, 5, 18),
							EndDate:   datePtr(2026, 5, 20),
							Reason:    "Tournament",
						},
					},
				},
				{
					Name:     "Symonds Field",
					Division: "U12",
					Reservations: []config.Reservation{
						{
							Date:   datePtr(2026, 5, 2),
							Reason: "Reserved",
						},
					},
				},
				{Name: "Washington Park", Capacity: 2},
			},
			TimeSlots: config.TimeSlots{
				Weekday:  []string{"17:45"},
				Saturday: []string{"12:30", "14:45", "17:00"},
				Sunday:   []string{"17:00"},
				HolidayDates: []config.Date{
					date(2026, 5, 25),
				},
			},
		},
	}
}

func slotsOn(slots []league.Slot, day string) []league.Slot {
	var out []league.Slot
	for _, s := range slots {
		if s.Start.Format("2006-01-02") == day {
			out = append(out, s)
		}
	}
	return out
}

func TestGenerateGameSlots(t *testing.T) {
	cfg := testConfig()
	slots := GenerateGameSlots(cfg)

	t.Run("first saturday has every time on every field", func(t *testing.T) {
		got := slotsOn(slots, "2026-04-25")
		if len(got) != 9 {
			t.Fatalf("expected 9 slots on opening day, got %d", len(got))
		}
		first := got[0]
		if first.ID != "2026-04-25-1230-Moscariello Ballpark" {
			t.Errorf("first slot id = %q", first.ID)
		}
		if first.Start != time.Date(2026, 4, 25, 12, 30, 0, 0, time.UTC) {
			t.Errorf("first slot start = %v", first.Start)
		}
		if first.Base() != "saturday-1230-Moscariello Ballpark" {
			t.Errorf("first slot base = %q", first.Base())
		}
	})

	t.Run("blackout dates are excluded", func(t *testing.T) {
		if got := slotsOn(slots, "2026-05-10"); len(got) != 0 {
			t.Errorf("expected no slots on Mother's Day, got %d", len(got))
		}
	})

	t.Run("timed reservation removes one slot", func(t *testing.T) {
		for _, s := range slotsOn(slots, "2026-05-15") {
			if s.FieldID == "Moscariello Ballpark" {
				t.Errorf("reserved slot %s should be excluded", s.ID)
			}
		}
		if got := slotsOn(slots, "2026-05-15"); len(got) != 2 {
			t.Errorf("expected 2 slots on 5/15, got %d", len(got))
		}
	})

	t.Run("full day and range reservations", func(t *testing.T) {
		for _, s := range slotsOn(slots, "2026-05-02") {
			if s.FieldID == "Symonds Field" {
				t.Errorf("Symonds should be reserved all day on 5/2, got %s", s.ID)
			}
		}
		for _, day := range []string{"2026-05-18", "2026-05-19", "2026-05-20"} {
			for _, s := range slotsOn(slots, day) {
				if s.FieldID == "Moscariello Ballpark" {
					t.Errorf("Moscariello should be reserved on %s", day)
				}
			}
		}
	})

	t.Run("holidays use sunday times", func(t *testing.T) {
		got := slotsOn(slots, "2026-05-25")
		if len(got) != 3 {
			t.Fatalf("expected 3 holiday slots, got %d", len(got))
		}
		if got[0].Start.Hour() != 17 || got[0].Start.Minute() != 0 {
			t.Errorf("holiday slot should start at 17:00, got %v", got[0].Start)
		}
	})

	t.Run("week index and game length", func(t *testing.T) {
		weeks := map[string]int{"2026-04-25": 1, "2026-05-01": 1, "2026-05-02": 2, "2026-05-31": 6}
		for day, want := range weeks {
			got := slotsOn(slots, day)
			if len(got) == 0 {
				t.Fatalf("no slots on %s", day)
			}
			if got[0].Week != want {
				t.Errorf("week for %s = %d, want %d", day, got[0].Week, want)
			}
		}
		s := slots[0]
		if s.End.Sub(s.Start) != 90*time.Minute {
			t.Errorf("default game length = %v, want 90m", s.End.Sub(s.Start))
		}
	})

	t.Run("field capacity and division carry over", func(t *testing.T) {
		for _, s := range slotsOn(slots, "2026-04-25") {
			switch s.FieldID {
			case "Washington Park":
				if s.Capacity != 2 {
					t.Errorf("Washington Park capacity = %d, want 2", s.Capacity)
				}
			case "Symonds Field":
				if s.Division != "U12" || s.Capacity != 1 {
					t.Errorf("Symonds slot = %+v, want U12 capacity 1", s)
				}
			default:
				if s.Division != "" || s.Capacity != 1 {
					t.Errorf("shared slot = %+v", s)
				}
			}
		}
	})

	t.Run("slots are sorted by start then field", func(t *testing.T) {
		for i := 1; i < len(slots); i++ {
			a, b := slots[i-1], slots[i]
			if b.Start.Before(a.Start) || (b.Start.Equal(a.Start) && b.FieldID < a.FieldID) {
				t.Fatalf("slots out of order at %d: %s before %s", i, a.ID, b.ID)
			}
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		if _, err := league.IndexSlots(slots); err != nil {
			t.Errorf("IndexSlots: %v", err)
		}
	})
}

func TestExpandPracticeSlots(t *testing.T) {
	cfg := testConfig()
	cfg.Practice = config.Practice{
		Phases: []config.Phase{
			{Name: "early", WeekOf: date(2026, 3, 4)}, // Wednesday of the week of 3/2
			{Name: "late", WeekOf: date(2026, 4, 27)},
		},
		Slots: []config.PracticeSlot{
			{
				ID: "wash-tue", Day: "tuesday", Field: "Washington Park", Capacity: 2,
				Start: clock("17:00"), End: clock("18:30"),
				PhaseTimes: map[string]config.TimeRange{
					"late": {Start: clock("18:00"), End: clock("19:30")},
				},
			},
			{
				ID: "sym-thu", Day: "Thu", Field: "Symonds Field", Division: "U12", Capacity: 1,
				Start: clock("17:30"), End: clock("19:00"),
			},
		},
	}

	slots := ExpandPracticeSlots(cfg)
	if len(slots) != 4 {
		t.Fatalf("expected 4 practice instances, got %d", len(slots))
	}
	byID := make(map[string]league.Slot)
	for _, s := range slots {
		byID[s.ID] = s
	}

	t.Run("phase instances share a base slot", func(t *testing.T) {
		for _, id := range []string{"wash-tue-early", "wash-tue-late"} {
			s, ok := byID[id]
			if !ok {
				t.Fatalf("missing instance %s", id)
			}
			if s.Base() != "wash-tue" || s.Weekday() != "tuesday" || s.Capacity != 2 {
				t.Errorf("%s = %+v", id, s)
			}
		}
	})

	t.Run("dated in the phase week", func(t *testing.T) {
		early := byID["wash-tue-early"]
		if early.Start != time.Date(2026, 3, 3, 17, 0, 0, 0, time.UTC) {
			t.Errorf("early start = %v, want 2026-03-03 17:00", early.Start)
		}
		thu := byID["sym-thu-late"]
		if thu.Start != time.Date(2026, 4, 30, 17, 30, 0, 0, time.UTC) {
			t.Errorf("late thursday start = %v, want 2026-04-30 17:30", thu.Start)
		}
		if thu.Division != "U12" || thu.FieldID != "Symonds Field" {
			t.Errorf("late thursday = %+v", thu)
		}
	})

	t.Run("phase time overrides", func(t *testing.T) {
		late := byID["wash-tue-late"]
		if late.Start.Hour() != 18 || late.End.Sub(late.Start) != 90*time.Minute {
			t.Errorf("late window = %v-%v, want 18:00-19:30", late.Start, late.End)
		}
	})

	t.Run("without phases", func(t *testing.T) {
		cfg.Practice.Phases = nil
		cfg.Practice.Slots[0].PhaseTimes = nil
		slots := ExpandPracticeSlots(cfg)
		if len(slots) != 2 {
			t.Fatalf("expected 2 instances, got %d", len(slots))
		}
		if slots[0].ID != "wash-tue" || slots[0].Start != time.Date(2026, 4, 28, 17, 0, 0, 0, time.UTC) {
			t.Errorf("first instance = %s at %v, want wash-tue at 2026-04-28 17:00", slots[0].ID, slots[0].Start)
		}
	})
}

func TestGenerateBlackoutSlots(t *testing.T) {
	cfg := testConfig()
	blackouts := GenerateBlackoutSlots(cfg)

	counts := make(map[string]int)
	for _, b := range blackouts {
		counts[b.Reason]++
	}

	// Mother's Day is a Sunday: 1 time x 3 fields.
	if counts["Mother's Day"] != 3 {
		t.Errorf("Mother's Day blackouts = %d, want 3", counts["Mother's Day"])
	}
	// Saturday 5/23: 3 times x 3 fields.
	if counts["Memorial Day Weekend"] != 9 {
		t.Errorf("Memorial Day Weekend blackouts = %d, want 9", counts["Memorial Day Weekend"])
	}
	if counts["Varsity"] != 1 {
		t.Errorf("Varsity blackouts = %d, want 1", counts["Varsity"])
	}
	// Three weekdays with one time each.
	if counts["Tournament"] != 3 {
		t.Errorf("Tournament blackouts = %d, want 3", counts["Tournament"])
	}
	// Saturday 5/2 all day.
	if counts["Reserved"] != 3 {
		t.Errorf("Reserved blackouts = %d, want 3", counts["Reserved"])
	}

	for i := 1; i < len(blackouts); i++ {
		if blackouts[i].Date.Before(blackouts[i-1].Date) {
			t.Fatalf("blackouts not sorted by date at %d", i)
		}
	}
}
