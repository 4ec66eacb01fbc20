package core

import "fmt"

// GoalID is a stable index into a Simulator's goal array.
type GoalID int

// Goal is an ordered, non-empty sequence of waypoints with a monotone
// cursor. The cursor never decreases; advancing past the last waypoint
// clamps the cursor at len-1 rather than wrapping.
type Goal struct {
	waypoints []Vector2
	index     int
}

// NewGoal builds a single-waypoint Goal.
func NewGoal(position Vector2) (*Goal, error) {
	return NewGoalSequence([]Vector2{position})
}

// NewGoalSequence builds a Goal from an ordered waypoint sequence. The
// sequence must be non-empty.
func NewGoalSequence(waypoints []Vector2) (*Goal, error) {
	if len(waypoints) == 0 {
		return nil, fmt.Errorf("%w: empty waypoint sequence", ErrInvalidGoal)
	}
	cp := make([]Vector2, len(waypoints))
	copy(cp, waypoints)
	return &Goal{waypoints: cp, index: 0}, nil
}

// CurrentPosition returns the waypoint at the current cursor.
func (g *Goal) CurrentPosition() Vector2 {
	return g.waypoints[g.index]
}

// IsGoingToFinal reports whether the cursor is at the last waypoint.
func (g *Goal) IsGoingToFinal() bool {
	return g.index == len(g.waypoints)-1
}

// AdvanceIfReached moves the cursor to the next waypoint iff agentPos is
// within goalRadius of the current waypoint and a next waypoint exists.
// Returns true iff the cursor advanced.
func (g *Goal) AdvanceIfReached(agentPos Vector2, goalRadius float32) bool {
	if g.IsGoingToFinal() {
		return false
	}
	d := agentPos.Sub(g.CurrentPosition())
	if d.AbsSq() > goalRadius*goalRadius {
		return false
	}
	g.index++
	return true
}
