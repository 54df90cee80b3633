package strategy

import (
	"fmt"
	"sort"
)

// Matchup is one game between two teams in a given week. Home is the team
// with the lower id in the first half of a season.
type Matchup struct {
	Week int
	Home string
	Away string
}

// Week is one round of a tournament. Bye names the team sitting out, if any.
type Week struct {
	Index    int
	Matchups []Matchup
	Bye      string
}

// Strategy generates the weekly matchups for one division.
type Strategy interface {
	GenerateWeeks(teamIDs []string) ([]Week, error)
}

// Get returns a Strategy by name.
func Get(name string) (Strategy, error) {
	switch name {
	case "", "round_robin":
		return RoundRobin{}, nil
	case "double_round_robin":
		return DoubleRoundRobin{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}

// RoundRobin plays every pair of teams exactly once.
type RoundRobin struct{}

func (RoundRobin) GenerateWeeks(teamIDs []string) ([]Week, error) {
	return GenerateRoundRobinWeeks(teamIDs)
}

// DoubleRoundRobin plays every pair twice, the second half mirroring the
// first with home and away swapped.
type DoubleRoundRobin struct{}

func (DoubleRoundRobin) GenerateWeeks(teamIDs []string) ([]Week, error) {
	first, err := GenerateRoundRobinWeeks(teamIDs)
	if err != nil {
		return nil, err
	}
	weeks := append([]Week(nil), first...)
	for _, w := range first {
		mirror := Week{Index: w.Index + len(first), Bye: w.Bye}
		for _, m := range w.Matchups {
			mirror.Matchups = append(mirror.Matchups, Matchup{Week: mirror.Index, Home: m.Away, Away: m.Home})
		}
		sortMatchups(mirror.Matchups)
		weeks = append(weeks, mirror)
	}
	return weeks, nil
}

// GenerateRoundRobinWeeks builds a single round robin with the circle method.
// Ids are sorted first; an odd count gets a synthetic bye seat. The first
// seat stays fixed while the rest rotate, giving n-1 weeks of n/2 pairings.
// Weeks are numbered from 1.
func GenerateRoundRobinWeeks(teamIDs []string) ([]Week, error) {
	seats := append([]string(nil), teamIDs...)
	sort.Strings(seats)
	for i, id := range seats {
		if id == "" {
			return nil, fmt.Errorf("team id must not be empty")
		}
		if i > 0 && seats[i-1] == id {
			return nil, fmt.Errorf("duplicate team id %q", id)
		}
	}
	if len(seats) == 0 {
		return nil, nil
	}

	const bye = ""
	if len(seats)%2 == 1 {
		seats = append(seats, bye)
	}
	n := len(seats)

	weeks := make([]Week, 0, n-1)
	for round := 0; round < n-1; round++ {
		w := Week{Index: round + 1}
		for i := 0; i < n/2; i++ {
			a, b := seats[i], seats[n-1-i]
			switch {
			case a == bye:
				w.Bye = b
			case b == bye:
				w.Bye = a
			default:
				if b < a {
					a, b = b, a
				}
				w.Matchups = append(w.Matchups, Matchup{Week: w.Index, Home: a, Away: b})
			}
		}
		sortMatchups(w.Matchups)
		weeks = append(weeks, w)

		// Rotate every seat but the first one step clockwise.
		last := seats[n-1]
		copy(seats[2:], seats[1:n-1])
		seats[1] = last
	}
	return weeks, nil
}

func sortMatchups(ms []Matchup) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Home != ms[j].Home {
			return ms[i].Home < ms[j].Home
		}
		return ms[i].Away < ms[j].Away
	})
}
