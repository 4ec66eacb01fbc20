package core

import "errors"

// ErrInvalidGoal is returned when a goal is constructed from an empty
// waypoint sequence, or an agent is added against an unknown GoalID.
var ErrInvalidGoal = errors.New("core: invalid goal")

// ErrInvalidParameter is returned by setters rejecting a non-positive dt,
// a negative radius, a zero max_neighbors, or pref_speed > max_speed.
var ErrInvalidParameter = errors.New("core: invalid parameter")
