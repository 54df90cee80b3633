package main

const configTemplate = `# Season Configuration
# ====================
# This file defines the players, practice windows and game fields for one
# season. Run "season schedule generate" to build rosters, practice
# assignments and a round robin game schedule from it.

# Seed for roster shuffling. The same seed and config always produce the same
# schedule. Leave at 0 to pick a new seed each run (it is printed).
seed: 0

# Season defines the date range for games.
season:
  start_date: "2026-04-25"
  end_date: "2026-06-14"

  # Blackout dates are full days where no games will be scheduled on any field.
  blackout_dates:
    - date: "2026-05-10"
      reason: "Mother's Day"
    - date: "2026-05-25"
      reason: "Memorial Day"

# Divisions cap the size of every team. Teams are created as needed, one per
# coach at minimum. Preferred practice days nudge the practice assigner.
divisions:
  - name: U10
    max_roster_size: 12
    preferred_practice_days: [tuesday, thursday]
  - name: U12
    max_roster_size: 13

# Players. A buddy request is honored only when both players name each
# other. A coach id puts the player on that coach's team.
players:
  - {id: p001, division: U10, coach: rivera}
  - {id: p002, division: U10, buddy: p003}
  - {id: p003, division: U10, buddy: p002}
  - {id: p004, division: U12, coach: chen}
  - {id: p005, division: U12}

# Coaches can prefer practice slots (by definition id) or days, and rule out
# slots they cannot make.
coaches:
  - id: rivera
    preferred_days: [wednesday]
  - id: chen
    preferred_slots: [sym-tue]
    unavailable_slots: [wash-mon-late]

# Practice slots recur weekly. Each slot is expanded once per phase; phase
# instances are named "<slot>-<phase>" and can have their own times.
practice:
  repair: true          # try swaps to place teams left without a slot
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
    - id: sym-tue
      day: tuesday
      field: Symonds Field
      division: U12       # omit to share between divisions
      capacity: 1
      start: "17:30"
      end: "19:00"

  # Scoring weights (defaults shown). A zero saturation weight disables that
  # penalty.
  # weights:
  #   preferred_slot: 5
  #   preferred_day: 3
  #   division_day: 2
  #   base_slot_saturation: 4
  #   division_day_saturation: 2

  # Locked assignments are placed first and never moved.
  # locked:
  #   - team: U10-01
  #     slot: wash-mon-early
  #     source: manual

games:
  # "round_robin" plays every division opponent once; "double_round_robin"
  # adds a mirrored second half with home and away swapped.
  strategy: round_robin
  game_length_minutes: 90

  # Fields available for games. A division restricts a field to that
  # division; capacity is the number of simultaneous games (default 1).
  #
  # Reservations block a field for a given date or date range.
  # If 'times' is omitted or empty, the field is blocked for the full day.
  # If 'times' is provided, only those specific time slots are blocked.
  fields:
    - name: Symonds Field
      reservations:
        - date: "2026-05-04"
          reason: "Freshman"
    - name: Washington Park
      capacity: 2
      reservations:
        - start_date: "2026-05-18"
          end_date: "2026-05-20"
          times: ["17:45"]
          reason: "JV"

  # Time slots define when games can be played on each type of day.
  # Times use 24-hour format (e.g., "17:45" = 5:45 PM).
  time_slots:
    weekday: ["17:45"]
    saturday: ["09:00", "11:00", "13:00"]
    sunday: ["13:00"]

    # Holiday dates are treated as Sundays for scheduling purposes.
    holiday_dates:
      - "2026-06-01"

# Readiness thresholds for the report (defaults shown).
readiness:
  day_concentration: 0.6    # warn when one weekday holds more of a division's practices
  underutilized_ratio: 0.25 # warn when a slot is filled below this ratio
  min_day_sample: 4         # ignore divisions with fewer practices
`
