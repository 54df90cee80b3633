package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := time.Parse("2006-01-02", value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

// Clock is a time of day in minutes after midnight, written "15:04".
type Clock struct {
	Minutes int
}

func (c *Clock) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseClock(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseClock parses a 24-hour "15:04" time of day.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return Clock{Minutes: t.Hour()*60 + t.Minute()}, nil
}

// On returns the clock time on the given date, in the date's location.
func (c Clock) On(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location()).Add(time.Duration(c.Minutes) * time.Minute)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Minutes/60, c.Minutes%60)
}

type BlackoutDate struct {
	Date   Date   `yaml:"date"`
	Reason string `yaml:"reason"`
}

type Season struct {
	StartDate     Date           `yaml:"start_date"`
	EndDate       Date           `yaml:"end_date"`
	BlackoutDates []BlackoutDate `yaml:"blackout_dates"`
}

type Reservation struct {
	Date      *Date    `yaml:"date"`
	StartDate *Date    `yaml:"start_date"`
	EndDate   *Date    `yaml:"end_date"`
	Times     []string `yaml:"times"`
	Reason    string   `yaml:"reason"`
}

// Dates returns all dates covered by this reservation.
// Supports single date (date:) or range (start_date:/end_date:).
func (r *Reservation) Dates() []time.Time {
	if r.StartDate != nil && r.EndDate != nil {
		var dates []time.Time
		d := r.StartDate.Time
		for !d.After(r.EndDate.Time) {
			dates = append(dates, d)
			d = d.AddDate(0, 0, 1)
		}
		return dates
	}
	if r.Date != nil {
		return []time.Time{r.Date.Time}
	}
	return nil
}

// Field is a game field. A Division restricts the field to one division;
// Capacity is the number of simultaneous games (default 1).
type Field struct {
	Name         string        `yaml:"name"`
	Division     string        `yaml:"division"`
	Capacity     int           `yaml:"capacity"`
	Reservations []Reservation `yaml:"reservations"`
}

type Division struct {
	Name                  string   `yaml:"name"`
	MaxRosterSize         int      `yaml:"max_roster_size"`
	PreferredPracticeDays []string `yaml:"preferred_practice_days"`
}

type Player struct {
	ID       string `yaml:"id"`
	Division string `yaml:"division"`
	Buddy    string `yaml:"buddy"`
	Coach    string `yaml:"coach"`
}

type Coach struct {
	ID               string   `yaml:"id"`
	PreferredSlots   []string `yaml:"preferred_slots"`
	PreferredDays    []string `yaml:"preferred_days"`
	UnavailableSlots []string `yaml:"unavailable_slots"`
}

// Phase is a stretch of the season with its own practice times. WeekOf is
// any date in the reference week the phase's slots are dated in.
type Phase struct {
	Name   string `yaml:"name"`
	WeekOf Date   `yaml:"week_of"`
}

type TimeRange struct {
	Start Clock `yaml:"start"`
	End   Clock `yaml:"end"`
}

// PracticeSlot is a recurring weekly practice window.
type PracticeSlot struct {
	ID         string               `yaml:"id"`
	Day        string               `yaml:"day"`
	Field      string               `yaml:"field"`
	Division   string               `yaml:"division"`
	Capacity   int                  `yaml:"capacity"`
	Start      Clock                `yaml:"start"`
	End        Clock                `yaml:"end"`
	PhaseTimes map[string]TimeRange `yaml:"phase_times"`
}

// Times returns the slot's window for a phase, falling back to Start/End.
func (p PracticeSlot) Times(phase string) (Clock, Clock) {
	if tr, ok := p.PhaseTimes[phase]; ok {
		return tr.Start, tr.End
	}
	return p.Start, p.End
}

type Weights struct {
	PreferredSlot         float64 `yaml:"preferred_slot"`
	PreferredDay          float64 `yaml:"preferred_day"`
	DivisionDay           float64 `yaml:"division_day"`
	BaseSlotSaturation    float64 `yaml:"base_slot_saturation"`
	DivisionDaySaturation float64 `yaml:"division_day_saturation"`
}

// Lock pins a team to a practice slot instance.
type Lock struct {
	Team   string `yaml:"team"`
	Slot   string `yaml:"slot"`
	Source string `yaml:"source"`
}

type Practice struct {
	Repair *bool          `yaml:"repair"`
	Phases []Phase        `yaml:"phases"`
	Slots  []PracticeSlot `yaml:"slots"`
	// Weights replaces the default scoring weights when present.
	Weights *Weights `yaml:"weights"`
	Locked  []Lock   `yaml:"locked"`
}

// RepairEnabled reports whether the swap repair pass should run.
func (p Practice) RepairEnabled() bool {
	return p.Repair == nil || *p.Repair
}

type TimeSlots struct {
	Weekday      []string `yaml:"weekday"`
	Saturday     []string `yaml:"saturday"`
	Sunday       []string `yaml:"sunday"`
	HolidayDates []Date   `yaml:"holiday_dates"`
}

type Games struct {
	Strategy          string    `yaml:"strategy"`
	GameLengthMinutes int       `yaml:"game_length_minutes"`
	Fields            []Field   `yaml:"fields"`
	TimeSlots         TimeSlots `yaml:"time_slots"`
}

// GameLength returns the game duration, defaulting to 90 minutes.
func (g Games) GameLength() time.Duration {
	if g.GameLengthMinutes <= 0 {
		return 90 * time.Minute
	}
	return time.Duration(g.GameLengthMinutes) * time.Minute
}

type Readiness struct {
	DayConcentration   float64 `yaml:"day_concentration"`
	UnderutilizedRatio float64 `yaml:"underutilized_ratio"`
	MinDaySample       int     `yaml:"min_day_sample"`
}

type Config struct {
	Seed      int64      `yaml:"seed"`
	Season    Season     `yaml:"season"`
	Divisions []Division `yaml:"divisions"`
	Players   []Player   `yaml:"players"`
	Coaches   []Coach    `yaml:"coaches"`
	Practice  Practice   `yaml:"practice"`
	Games     Games      `yaml:"games"`
	Readiness Readiness  `yaml:"readiness"`
}

// DivisionNames returns the configured division names in file order.
func (c *Config) DivisionNames() []string {
	var names []string
	for _, d := range c.Divisions {
		names = append(names, d.Name)
	}
	return names
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// ParseWeekday parses a weekday name such as "monday" or "Tue".
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || (len(name) == 3 && strings.HasPrefix(full, name)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}

func (c *Config) validate() error {
	if !c.Season.EndDate.Time.After(c.Season.StartDate.Time) {
		return fmt.Errorf("end date %s must be after start date %s",
			c.Season.EndDate.Time.Format("2006-01-02"),
			c.Season.StartDate.Time.Format("2006-01-02"))
	}

	if len(c.Divisions) == 0 {
		return fmt.Errorf("at least one division is required")
	}

	divisions := make(map[string]bool)
	for _, d := range c.Divisions {
		if d.Name == "" {
			return fmt.Errorf("division name is required")
		}
		if divisions[d.Name] {
			return fmt.Errorf("division %q is listed twice", d.Name)
		}
		if d.MaxRosterSize <= 0 {
			return fmt.Errorf("division %q: max_roster_size must be positive", d.Name)
		}
		for _, day := range d.PreferredPracticeDays {
			if _, err := ParseWeekday(day); err != nil {
				return fmt.Errorf("division %q: %w", d.Name, err)
			}
		}
		divisions[d.Name] = true
	}

	// Player ids and divisions; buddy and coach references are resolved by
	// the allocator, which reports them as diagnostics.
	players := make(map[string]bool)
	for i, p := range c.Players {
		if p.ID == "" {
			return fmt.Errorf("player %d: id is required", i+1)
		}
		if players[p.ID] {
			return fmt.Errorf("player %q is listed twice", p.ID)
		}
		if !divisions[p.Division] {
			return fmt.Errorf("player %q: unknown division %q", p.ID, p.Division)
		}
		players[p.ID] = true
	}

	for _, co := range c.Coaches {
		if co.ID == "" {
			return fmt.Errorf("coach id is required")
		}
		for _, day := range co.PreferredDays {
			if _, err := ParseWeekday(day); err != nil {
				return fmt.Errorf("coach %q: %w", co.ID, err)
			}
		}
	}

	if err := c.validatePractice(divisions); err != nil {
		return err
	}
	return c.validateGames(divisions)
}

func (c *Config) validatePractice(divisions map[string]bool) error {
	phases := make(map[string]bool)
	for _, ph := range c.Practice.Phases {
		if ph.Name == "" {
			return fmt.Errorf("practice phase name is required")
		}
		if phases[ph.Name] {
			return fmt.Errorf("practice phase %q is listed twice", ph.Name)
		}
		phases[ph.Name] = true
	}

	ids := make(map[string]bool)
	for _, s := range c.Practice.Slots {
		if s.ID == "" {
			return fmt.Errorf("practice slot id is required")
		}
		if ids[s.ID] {
			return fmt.Errorf("practice slot %q is listed twice", s.ID)
		}
		ids[s.ID] = true
		if _, err := ParseWeekday(s.Day); err != nil {
			return fmt.Errorf("practice slot %q: %w", s.ID, err)
		}
		if s.Capacity < 0 {
			return fmt.Errorf("practice slot %q: capacity must not be negative", s.ID)
		}
		if s.Division != "" && !divisions[s.Division] {
			return fmt.Errorf("practice slot %q: unknown division %q", s.ID, s.Division)
		}
		if s.End.Minutes <= s.Start.Minutes {
			return fmt.Errorf("practice slot %q: end %s must be after start %s", s.ID, s.End, s.Start)
		}
		for name, tr := range s.PhaseTimes {
			if !phases[name] {
				return fmt.Errorf("practice slot %q: unknown phase %q", s.ID, name)
			}
			if tr.End.Minutes <= tr.Start.Minutes {
				return fmt.Errorf("practice slot %q phase %q: end %s must be after start %s", s.ID, name, tr.End, tr.Start)
			}
		}
	}

	for _, l := range c.Practice.Locked {
		if l.Team == "" || l.Slot == "" {
			return fmt.Errorf("locked practice assignment needs both team and slot")
		}
		switch l.Source {
		case "", "locked", "manual":
		default:
			return fmt.Errorf("locked practice assignment %q: source must be locked or manual, got %q", l.Team, l.Source)
		}
	}
	return nil
}

func (c *Config) validateGames(divisions map[string]bool) error {
	for _, f := range c.Games.Fields {
		if f.Name == "" {
			return fmt.Errorf("field name is required")
		}
		if f.Division != "" && !divisions[f.Division] {
			return fmt.Errorf("field %q: unknown division %q", f.Name, f.Division)
		}
		if f.Capacity < 0 {
			return fmt.Errorf("field %q: capacity must not be negative", f.Name)
		}
		for _, r := range f.Reservations {
			hasDate := r.Date != nil
			hasRange := r.StartDate != nil || r.EndDate != nil
			if !hasDate && !hasRange {
				return fmt.Errorf("field %q: reservation must have either 'date' or 'start_date'/'end_date'", f.Name)
			}
			if hasDate && hasRange {
				return fmt.Errorf("field %q: reservation cannot have both 'date' and 'start_date'/'end_date'", f.Name)
			}
			if hasRange && (r.StartDate == nil || r.EndDate == nil) {
				return fmt.Errorf("field %q: reservation with date range must have both 'start_date' and 'end_date'", f.Name)
			}
			if hasRange && r.EndDate.Time.Before(r.StartDate.Time) {
				return fmt.Errorf("field %q: reservation end_date must be on or after start_date", f.Name)
			}
		}
	}

	ts := c.Games.TimeSlots
	for _, group := range [][]string{ts.Weekday, ts.Saturday, ts.Sunday} {
		for _, t := range group {
			if _, err := ParseClock(t); err != nil {
				return fmt.Errorf("games time_slots: %w", err)
			}
		}
	}
	return nil
}
