package core

import (
	"errors"
	"testing"
)

func TestNewGoalSequenceEmpty(t *testing.T) {
	_, err := NewGoalSequence(nil)
	if !errors.Is(err, ErrInvalidGoal) {
		t.Fatalf("NewGoalSequence(nil) error = %v, want ErrInvalidGoal", err)
	}
}

func TestGoalSingleWaypoint(t *testing.T) {
	g, err := NewGoal(NewVector2(1, 2))
	if err != nil {
		t.Fatalf("NewGoal: %v", err)
	}
	if !g.IsGoingToFinal() {
		t.Error("single-waypoint goal should report IsGoingToFinal")
	}
	if got := g.CurrentPosition(); !vecEqual(got, NewVector2(1, 2), 1e-6) {
		t.Errorf("CurrentPosition = %v, want (1, 2)", got)
	}
}

func TestGoalAdvanceMonotonic(t *testing.T) {
	g, err := NewGoalSequence([]Vector2{
		NewVector2(1, 0), NewVector2(1, 1), NewVector2(0, 1),
	})
	if err != nil {
		t.Fatalf("NewGoalSequence: %v", err)
	}

	const radius = 0.1

	if advanced := g.AdvanceIfReached(NewVector2(5, 5), radius); advanced {
		t.Fatal("should not advance when far from current waypoint")
	}
	if got := g.CurrentPosition(); !vecEqual(got, NewVector2(1, 0), 1e-6) {
		t.Errorf("cursor moved unexpectedly, at %v", got)
	}

	if advanced := g.AdvanceIfReached(NewVector2(1, 0), radius); !advanced {
		t.Fatal("should advance when within radius of waypoint 0")
	}
	if got := g.CurrentPosition(); !vecEqual(got, NewVector2(1, 1), 1e-6) {
		t.Errorf("cursor = %v, want waypoint 1", got)
	}
	if g.IsGoingToFinal() {
		t.Error("should not yet be at final waypoint")
	}

	if advanced := g.AdvanceIfReached(NewVector2(1, 1), radius); !advanced {
		t.Fatal("should advance to waypoint 2")
	}
	if !g.IsGoingToFinal() {
		t.Error("should be at final waypoint after advancing twice")
	}

	if advanced := g.AdvanceIfReached(NewVector2(0, 1), radius); advanced {
		t.Error("should not advance past the final waypoint")
	}
}
