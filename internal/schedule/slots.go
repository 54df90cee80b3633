package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/derekprior/season/internal/config"
	"github.com/derekprior/season/internal/league"
)

// BlackoutSlot represents a slot that is unavailable with a reason.
type BlackoutSlot struct {
	Date   time.Time
	Time   string
	Field  string
	Reason string
}

type resKey struct {
	field string
	date  time.Time
	time  string
}

type fieldDateKey struct {
	field string
	date  time.Time
}

// reservationIndex builds the per-time and full-day reservation lookups for
// every field.
func reservationIndex(fields []config.Field) (map[resKey]bool, map[fieldDateKey]bool) {
	reservations := make(map[resKey]bool)
	fullDay := make(map[fieldDateKey]bool)
	for _, f := range fields {
		for _, r := range f.Reservations {
			for _, rd := range r.Dates() {
				if len(r.Times) == 0 {
					fullDay[fieldDateKey{f.Name, rd}] = true
					continue
				}
				for _, t := range r.Times {
					reservations[resKey{f.Name, rd, t}] = true
				}
			}
		}
	}
	return reservations, fullDay
}

func holidaySet(ts config.TimeSlots) map[time.Time]bool {
	holidays := make(map[time.Time]bool)
	for _, h := range ts.HolidayDates {
		holidays[h.Time] = true
	}
	return holidays
}

// GenerateGameSlots builds a dated game slot for every (date, time, field)
// in the season, excluding blackout dates and field reservations. Week is
// counted in 7-day blocks from the season start date. Slots recurring on the
// same weekday, time and field share a base slot.
func GenerateGameSlots(cfg *config.Config) []league.Slot {
	blackoutDates := make(map[time.Time]bool)
	for _, b := range cfg.Season.BlackoutDates {
		blackoutDates[b.Date.Time] = true
	}
	holidays := holidaySet(cfg.Games.TimeSlots)
	reservations, fullDay := reservationIndex(cfg.Games.Fields)
	length := cfg.Games.GameLength()
	start := cfg.Season.StartDate.Time

	var slots []league.Slot
	for d := start; !d.After(cfg.Season.EndDate.Time); d = d.AddDate(0, 0, 1) {
		if blackoutDates[d] {
			continue
		}
		week := int(d.Sub(start).Hours()/24)/7 + 1

		for _, t := range timesForDay(d, holidays, cfg.Games.TimeSlots) {
			clock, err := config.ParseClock(t)
			if err != nil {
				// rejected by config validation
				continue
			}
			for _, f := range cfg.Games.Fields {
				if fullDay[fieldDateKey{f.Name, d}] || reservations[resKey{f.Name, d, t}] {
					continue
				}
				capacity := f.Capacity
				if capacity == 0 {
					capacity = 1
				}
				begin := clock.On(d)
				hhmm := strings.ReplaceAll(t, ":", "")
				slots = append(slots, league.Slot{
					ID:         fmt.Sprintf("%s-%s-%s", d.Format("2006-01-02"), hhmm, f.Name),
					Start:      begin,
					End:        begin.Add(length),
					Capacity:   capacity,
					Division:   f.Division,
					FieldID:    f.Name,
					BaseSlotID: fmt.Sprintf("%s-%s-%s", strings.ToLower(d.Weekday().String()), hhmm, f.Name),
					Week:       week,
				})
			}
		}
	}

	sortSlots(slots)
	return slots
}

// ExpandPracticeSlots turns each recurring practice definition into one
// dated instance per season phase, on its weekday in the phase's reference
// week. Instances are named "<definition>-<phase>" and share the definition
// id as their base slot. Without phases, each definition yields a single
// instance on the first matching day on or after the season start.
func ExpandPracticeSlots(cfg *config.Config) []league.Slot {
	type phase struct {
		name   string
		anchor time.Time
	}
	var phases []phase
	for _, p := range cfg.Practice.Phases {
		phases = append(phases, phase{p.Name, mondayOf(p.WeekOf.Time)})
	}
	single := len(phases) == 0
	if single {
		phases = []phase{{"", cfg.Season.StartDate.Time}}
	}

	var slots []league.Slot
	for _, def := range cfg.Practice.Slots {
		wd, err := config.ParseWeekday(def.Day)
		if err != nil {
			// rejected by config validation
			continue
		}
		for _, ph := range phases {
			day := onOrAfter(ph.anchor, wd)
			from, to := def.Times(ph.name)
			id := def.ID
			if !single {
				id = def.ID + "-" + ph.name
			}
			slots = append(slots, league.Slot{
				ID:         id,
				Day:        strings.ToLower(wd.String()),
				Start:      from.On(day),
				End:        to.On(day),
				Capacity:   def.Capacity,
				Division:   def.Division,
				FieldID:    def.Field,
				BaseSlotID: def.ID,
			})
		}
	}

	sortSlots(slots)
	return slots
}

// GenerateBlackoutSlots returns all slots that are blacked out (season-wide
// blackouts and field reservations) for display on the schedule sheet.
func GenerateBlackoutSlots(cfg *config.Config) []BlackoutSlot {
	holidays := holidaySet(cfg.Games.TimeSlots)

	var blackouts []BlackoutSlot
	for _, b := range cfg.Season.BlackoutDates {
		for _, t := range timesForDay(b.Date.Time, holidays, cfg.Games.TimeSlots) {
			for _, f := range cfg.Games.Fields {
				blackouts = append(blackouts, BlackoutSlot{
					Date:   b.Date.Time,
					Time:   t,
					Field:  f.Name,
					Reason: b.Reason,
				})
			}
		}
	}

	// Field reservations (only within season date range)
	for _, f := range cfg.Games.Fields {
		for _, r := range f.Reservations {
			for _, rd := range r.Dates() {
				if rd.Before(cfg.Season.StartDate.Time) || rd.After(cfg.Season.EndDate.Time) {
					continue
				}
				times := r.Times
				if len(times) == 0 {
					times = timesForDay(rd, holidays, cfg.Games.TimeSlots)
				}
				for _, t := range times {
					blackouts = append(blackouts, BlackoutSlot{
						Date:   rd,
						Time:   t,
						Field:  f.Name,
						Reason: r.Reason,
					})
				}
			}
		}
	}

	sort.Slice(blackouts, func(i, j int) bool {
		if !blackouts[i].Date.Equal(blackouts[j].Date) {
			return blackouts[i].Date.Before(blackouts[j].Date)
		}
		if blackouts[i].Time != blackouts[j].Time {
			return blackouts[i].Time < blackouts[j].Time
		}
		return blackouts[i].Field < blackouts[j].Field
	})

	return blackouts
}

func sortSlots(slots []league.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Start.Equal(slots[j].Start) {
			return slots[i].Start.Before(slots[j].Start)
		}
		if slots[i].FieldID != slots[j].FieldID {
			return slots[i].FieldID < slots[j].FieldID
		}
		return slots[i].ID < slots[j].ID
	})
}

func mondayOf(d time.Time) time.Time {
	return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
}

func onOrAfter(d time.Time, wd time.Weekday) time.Time {
	return d.AddDate(0, 0, (int(wd)-int(d.Weekday())+7)%7)
}

func timesForDay(d time.Time, holidays map[time.Time]bool, ts config.TimeSlots) []string {
	if holidays[d] {
		return ts.Sunday
	}
	switch d.Weekday() {
	case time.Saturday:
		return ts.Saturday
	case time.Sunday:
		return ts.Sunday
	default:
		return ts.Weekday
	}
}
