package core

import "fmt"

// AgentID is a stable index into a Simulator's agent array.
type AgentID int

// NoObstacle is the sentinel obstacle index used in Candidate annotations
// meaning "this candidate does not lie on any obstacle boundary".
const NoObstacle = -1

// Neighbor is one entry of an agent's bounded neighbor set: another agent's
// id and its squared distance to the owning agent, as found during the
// KD-tree query (component D).
type Neighbor struct {
	ID     AgentID
	DistSq float32
}

// Candidate is a velocity considered by the selector (component F),
// annotated with the (up to two) obstacle indices whose boundary it lies
// on. NoObstacle marks "none".
type Candidate struct {
	Velocity Vector2
	Obs1     int
	Obs2     int
}

// AgentParams holds the immutable scalar parameters of an Agent, set at
// construction from simulator defaults overlaid with per-agent overrides.
type AgentParams struct {
	PrefSpeed         float32
	MaxSpeed          float32
	Radius            float32
	GoalRadius        float32
	MaxNeighbors      int
	NeighborDist      float32
	UncertaintyOffset float32
	MaxAccel          float32
}

// Validate checks the invariants required of an AgentParams bundle.
func (p AgentParams) Validate() error {
	if p.MaxNeighbors <= 0 {
		return fmt.Errorf("%w: max_neighbors must be positive, got %d", ErrInvalidParameter, p.MaxNeighbors)
	}
	if p.NeighborDist <= 0 {
		return fmt.Errorf("%w: neighbor_dist must be positive, got %v", ErrInvalidParameter, p.NeighborDist)
	}
	if p.Radius < 0 {
		return fmt.Errorf("%w: radius must be non-negative, got %v", ErrInvalidParameter, p.Radius)
	}
	if p.GoalRadius < 0 {
		return fmt.Errorf("%w: goal_radius must be non-negative, got %v", ErrInvalidParameter, p.GoalRadius)
	}
	if p.UncertaintyOffset < 0 {
		return fmt.Errorf("%w: uncertainty_offset must be non-negative, got %v", ErrInvalidParameter, p.UncertaintyOffset)
	}
	if p.MaxAccel <= 0 {
		return fmt.Errorf("%w: max_accel must be positive, got %v", ErrInvalidParameter, p.MaxAccel)
	}
	if p.PrefSpeed > p.MaxSpeed {
		return fmt.Errorf("%w: pref_speed (%v) exceeds max_speed (%v)", ErrInvalidParameter, p.PrefSpeed, p.MaxSpeed)
	}
	return nil
}

// DefaultAgentParams returns the parameter bundle a new Simulator starts
// with, until SetAgentDefaults replaces it. MaxAccel is a large finite
// value standing in for an unbounded acceleration.
func DefaultAgentParams() AgentParams {
	return AgentParams{
		PrefSpeed:         1,
		MaxSpeed:          1,
		Radius:            0.1,
		GoalRadius:        0.1,
		MaxNeighbors:      10,
		NeighborDist:      1,
		UncertaintyOffset: 0,
		MaxAccel:          float32(1e9),
	}
}

// goalPositionEpsilon is the distance below which an agent is considered
// already at its current goal waypoint, for the purposes of zeroing
// pref_velocity (component C, setPrefVelocity).
const goalPositionEpsilon = 1e-4

// Agent is one disk-shaped agent's kinematic state. It is only ever
// constructed and owned by a Simulator; agents reference their Goal by
// GoalID, never by pointer.
type Agent struct {
	AgentParams

	Position     Vector2
	Velocity     Vector2
	NewVelocity  Vector2
	Orientation  float32
	PrefVelocity Vector2
	GoalID       GoalID

	// Transient per-step buffers, reused across steps: capacity is kept,
	// length is reset to zero at the start of each step's neighbor query.
	Neighbors  []Neighbor
	Obstacles  []Obstacle
	Candidates []Candidate
}

// NewAgent constructs an Agent at position, targeting goalID, with params.
func NewAgent(position Vector2, goalID GoalID, params AgentParams) *Agent {
	return &Agent{
		AgentParams: params,
		Position:    position,
		GoalID:      goalID,
		Neighbors:   make([]Neighbor, 0, params.MaxNeighbors),
		Obstacles:   make([]Obstacle, 0, params.MaxNeighbors),
		Candidates:  make([]Candidate, 0, 16),
	}
}

// SetPrefVelocity computes the straight-line vector from the agent's
// position to its goal's current waypoint, clipped to pref_speed; it is
// zeroed if the agent is within goalPositionEpsilon of that waypoint.
func (a *Agent) SetPrefVelocity(goal *Goal) {
	toGoal := goal.CurrentPosition().Sub(a.Position)
	if toGoal.Abs() <= goalPositionEpsilon {
		a.PrefVelocity = Vector2{}
		return
	}
	if toGoal.Abs() > a.PrefSpeed {
		toGoal = toGoal.Normalize().Scale(a.PrefSpeed)
	}
	a.PrefVelocity = toGoal
}

// ResetTransientBuffers truncates the neighbor and candidate buffers to
// zero length while retaining their backing capacity, ready for a new
// step's work.
func (a *Agent) ResetTransientBuffers() {
	a.Neighbors = a.Neighbors[:0]
	a.Obstacles = a.Obstacles[:0]
	a.Candidates = a.Candidates[:0]
}
