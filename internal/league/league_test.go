package league

import (
	"errors"
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2026, 4, 27, h, m, 0, 0, time.UTC) // Monday
}

func TestOverlaps(t *testing.T) {
	t.Run("intersecting windows overlap", func(t *testing.T) {
		if !Overlaps(at(17, 0), at(18, 0), at(17, 30), at(18, 30)) {
			t.Error("expected overlap")
		}
	})

	t.Run("touching windows do not overlap", func(t *testing.T) {
		if Overlaps(at(17, 0), at(18, 0), at(18, 0), at(19, 0)) {
			t.Error("back-to-back windows should not overlap")
		}
	})

	t.Run("containment overlaps", func(t *testing.T) {
		if !Overlaps(at(17, 0), at(20, 0), at(18, 0), at(18, 30)) {
			t.Error("expected overlap")
		}
	})
}

func TestSlotHelpers(t *testing.T) {
	s := Slot{ID: "wash-mon-early", Start: at(17, 0), End: at(18, 0), BaseSlotID: "wash-mon"}

	if got := s.Weekday(); got != "monday" {
		t.Errorf("Weekday() = %q, want monday", got)
	}
	if got := s.Base(); got != "wash-mon" {
		t.Errorf("Base() = %q, want wash-mon", got)
	}
	if got := (Slot{ID: "x"}).Base(); got != "x" {
		t.Errorf("Base() without group = %q, want x", got)
	}
	if got := (Slot{Day: "Saturday", Start: at(9, 0)}).Weekday(); got != "saturday" {
		t.Errorf("explicit Day = %q, want saturday", got)
	}
	if !s.OpenTo("U10") {
		t.Error("shared slot should be open to every division")
	}
	if (Slot{Division: "U12"}).OpenTo("U10") {
		t.Error("restricted slot should reject other divisions")
	}
}

func TestIndexSlots(t *testing.T) {
	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := IndexSlots([]Slot{
			{ID: "a", Start: at(17, 0), End: at(18, 0), Capacity: 1},
			{ID: "a", Start: at(18, 0), End: at(19, 0), Capacity: 1},
		})
		if !errors.Is(err, ErrConstraintConflict) {
			t.Errorf("err = %v, want ErrConstraintConflict", err)
		}
	})

	t.Run("rejects inverted windows", func(t *testing.T) {
		_, err := IndexSlots([]Slot{{ID: "a", Start: at(18, 0), End: at(17, 0), Capacity: 1}})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("rejects negative capacity", func(t *testing.T) {
		_, err := IndexSlots([]Slot{{ID: "a", Start: at(17, 0), End: at(18, 0), Capacity: -1}})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("err = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("accepts zero capacity", func(t *testing.T) {
		idx, err := IndexSlots([]Slot{{ID: "a", Start: at(17, 0), End: at(18, 0)}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(idx) != 1 {
			t.Errorf("len = %d, want 1", len(idx))
		}
	})
}

func TestIndexTeams(t *testing.T) {
	if _, err := IndexTeams([]Team{{ID: "t1"}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing division: err = %v, want ErrInvalidInput", err)
	}
	if _, err := IndexTeams([]Team{{ID: "t1", Division: "U10"}, {ID: "t1", Division: "U10"}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("duplicate id: err = %v, want ErrInvalidInput", err)
	}
}
