// Package sim drives the HRVO simulation loop: per-step neighbor query,
// velocity-obstacle construction, candidate selection, and acceleration-
// clamped integration, over a Simulator-owned set of agents and goals.
package sim

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/hrvosim/internal/algo"
	"github.com/elektrokombinacija/hrvosim/internal/core"
)

// velocityEpsilon is the threshold below which a velocity is treated as
// zero for the purpose of updating orientation (component H, step 4).
const velocityEpsilon = 1e-4

// AgentOverrides holds optional per-agent parameter overrides for AddAgent.
// A nil field inherits the simulator's configured defaults.
type AgentOverrides struct {
	PrefSpeed         *float32
	MaxSpeed          *float32
	Radius            *float32
	GoalRadius        *float32
	MaxNeighbors      *int
	NeighborDist      *float32
	UncertaintyOffset *float32
	MaxAccel          *float32
}

func (o *AgentOverrides) apply(params core.AgentParams) core.AgentParams {
	if o == nil {
		return params
	}
	if o.PrefSpeed != nil {
		params.PrefSpeed = *o.PrefSpeed
	}
	if o.MaxSpeed != nil {
		params.MaxSpeed = *o.MaxSpeed
	}
	if o.Radius != nil {
		params.Radius = *o.Radius
	}
	if o.GoalRadius != nil {
		params.GoalRadius = *o.GoalRadius
	}
	if o.MaxNeighbors != nil {
		params.MaxNeighbors = *o.MaxNeighbors
	}
	if o.NeighborDist != nil {
		params.NeighborDist = *o.NeighborDist
	}
	if o.UncertaintyOffset != nil {
		params.UncertaintyOffset = *o.UncertaintyOffset
	}
	if o.MaxAccel != nil {
		params.MaxAccel = *o.MaxAccel
	}
	return params
}

// Simulator owns all agents and goals by stable integer id and advances
// them one tick at a time via DoStep. Concurrent DoStep calls are
// serialized by an internal mutex; the other methods take no lock and must
// not run concurrently with DoStep. Per-instance state is independent of
// any other Simulator.
type Simulator struct {
	mu sync.Mutex

	logger golog.Logger

	dt       float32
	defaults core.AgentParams
	workers  int

	agents []*core.Agent
	goals  []*core.Goal

	globalTime   float32
	reachedGoals bool

	// Reused per-step snapshot buffers (component H step 1-2 contract):
	// phase 2 reads these, never the live agent state, so concurrent
	// per-agent tasks need no synchronization.
	snapPositions  []core.Vector2
	snapVelocities []core.Vector2
	snapRadii      []float32
}

// NewSimulator constructs a Simulator with zero agents and goals. Callers
// must call SetTimeStep before the first DoStep.
func NewSimulator() *Simulator {
	return &Simulator{
		defaults: core.DefaultAgentParams(),
		workers:  runtime.GOMAXPROCS(0),
		logger:   golog.NewDevelopmentLogger("hrvosim"),
	}
}

// SetTimeStep sets the per-step duration dt, which must be positive.
func (s *Simulator) SetTimeStep(dt float32) error {
	if dt <= 0 {
		return fmt.Errorf("set time step: %w: dt must be positive, got %v", core.ErrInvalidParameter, dt)
	}
	s.dt = dt
	return nil
}

// SetAgentDefaults sets the parameter bundle applied to agents added by a
// later AddAgent call that does not override a given field.
func (s *Simulator) SetAgentDefaults(params core.AgentParams) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("set agent defaults: %w", err)
	}
	s.defaults = params
	return nil
}

// SetWorkers sets the number of goroutines used for phase 2 of DoStep.
// n <= 1 selects the deterministic single-threaded mode required by
// property P4.
func (s *Simulator) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	s.workers = n
}

// SetLogger overrides the default structured logger.
func (s *Simulator) SetLogger(logger golog.Logger) {
	s.logger = logger
}

// AddGoal registers a single-waypoint goal and returns its id.
func (s *Simulator) AddGoal(position core.Vector2) (core.GoalID, error) {
	return s.AddGoalSequence([]core.Vector2{position})
}

// AddGoalSequence registers an ordered, non-empty waypoint sequence and
// returns its id.
func (s *Simulator) AddGoalSequence(waypoints []core.Vector2) (core.GoalID, error) {
	g, err := core.NewGoalSequence(waypoints)
	if err != nil {
		return 0, fmt.Errorf("add goal: %w", err)
	}
	id := core.GoalID(len(s.goals))
	s.goals = append(s.goals, g)
	return id, nil
}

// AddAgent registers a new agent at position, targeting goalID, with the
// simulator's defaults overlaid by overrides (nil for none), and returns
// its id. Adding an agent against an unknown goal id is a fatal
// programming error, reported as ErrInvalidGoal rather than panicking.
func (s *Simulator) AddAgent(position core.Vector2, goalID core.GoalID, overrides *AgentOverrides) (core.AgentID, error) {
	if int(goalID) < 0 || int(goalID) >= len(s.goals) {
		return 0, fmt.Errorf("add agent: %w: unknown goal id %d", core.ErrInvalidGoal, goalID)
	}
	params := overrides.apply(s.defaults)
	if err := params.Validate(); err != nil {
		return 0, fmt.Errorf("add agent: %w", err)
	}
	a := core.NewAgent(position, goalID, params)
	id := core.AgentID(len(s.agents))
	s.agents = append(s.agents, a)
	return id, nil
}

// NumAgents returns the number of registered agents.
func (s *Simulator) NumAgents() int { return len(s.agents) }

// GlobalTime returns the accumulated simulated time.
func (s *Simulator) GlobalTime() float32 { return s.globalTime }

// HaveReachedGoals reports whether every agent is within its goal_radius
// of its goal's final waypoint, as of the most recent DoStep.
func (s *Simulator) HaveReachedGoals() bool { return s.reachedGoals }

// AgentPosition returns agent id's current position.
func (s *Simulator) AgentPosition(id core.AgentID) core.Vector2 { return s.agents[id].Position }

// AgentVelocity returns agent id's current velocity.
func (s *Simulator) AgentVelocity(id core.AgentID) core.Vector2 { return s.agents[id].Velocity }

// AgentRadius returns agent id's radius.
func (s *Simulator) AgentRadius(id core.AgentID) float32 { return s.agents[id].Radius }

// AgentOrientation returns agent id's heading in radians.
func (s *Simulator) AgentOrientation(id core.AgentID) float32 { return s.agents[id].Orientation }

// AgentGoalID returns agent id's goal id.
func (s *Simulator) AgentGoalID(id core.AgentID) core.GoalID { return s.agents[id].GoalID }

// DoStep advances the simulation by one tick: rebuild the KD-tree, run the
// per-agent velocity-selection phase (parallel over a read-only snapshot,
// barrier, then sequential integration), and advance global_time by dt.
func (s *Simulator) DoStep() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dt <= 0 {
		return fmt.Errorf("do step: %w: time step not set", core.ErrInvalidParameter)
	}

	n := len(s.agents)
	if n == 0 {
		s.globalTime += s.dt
		s.reachedGoals = true
		return nil
	}

	// Step 1: snapshot + rebuild KD-tree, single-threaded.
	s.snapPositions = growVector2(s.snapPositions, n)
	s.snapVelocities = growVector2(s.snapVelocities, n)
	s.snapRadii = growFloat32(s.snapRadii, n)
	for i, a := range s.agents {
		s.snapPositions[i] = a.Position
		s.snapVelocities[i] = a.Velocity
		s.snapRadii[i] = a.Radius
	}
	tree := algo.BuildKDTree(s.snapPositions)

	// Steps 2-3: parallel per-agent selection, barrier.
	s.runPhase2(tree)

	// Step 4: sequential integration.
	allReached := true
	for _, a := range s.agents {
		s.integrateAgent(a)
		goal := s.goals[a.GoalID]
		if !goal.IsGoingToFinal() || goal.CurrentPosition().Sub(a.Position).Abs() > a.GoalRadius {
			allReached = false
		}
	}

	// Step 5-6.
	s.globalTime += s.dt
	s.reachedGoals = allReached
	return nil
}

// runPhase2 dispatches stepAgent over a fixed-size worker pool, barrier on
// completion. Each task reads only the pre-step snapshot and writes only
// its own agent's transient buffers and new_velocity, so no further
// synchronization is required inside the pool; a sync.WaitGroup is the
// barrier.
func (s *Simulator) runPhase2(tree *algo.KDTree) {
	n := len(s.agents)
	workers := s.workers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	indices := make(chan int, n)
	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				s.stepAgent(i, tree)
			}
		}()
	}
	wg.Wait()
}

// stepAgent computes agent i's new_velocity: preferred velocity, bounded
// neighbor set, HRVO obstacles, candidates, and the minimum-cost
// selection (components C-G).
func (s *Simulator) stepAgent(i int, tree *algo.KDTree) {
	a := s.agents[i]
	goal := s.goals[a.GoalID]

	a.SetPrefVelocity(goal)
	a.ResetTransientBuffers()

	tree.Query(core.AgentID(i), s.snapPositions[i], a.MaxNeighbors, a.NeighborDist, &a.Neighbors)

	for _, nb := range a.Neighbors {
		j := int(nb.ID)
		obs := algo.BuildObstacle(
			s.snapPositions[i], s.snapVelocities[i], s.snapRadii[i],
			s.snapPositions[j], s.snapVelocities[j], s.snapRadii[j],
			a.UncertaintyOffset,
		)
		if obs.Degenerate && obs.RelPos.AbsSq() == 0 {
			s.logger.Debugw("numeric degenerate neighbor, apex shifted by +x",
				"agent", i, "neighbor", j)
		}
		a.Obstacles = append(a.Obstacles, obs)
	}

	algo.GenerateCandidates(a.PrefVelocity, a.MaxSpeed, a.Obstacles, &a.Candidates)
	a.NewVelocity = algo.SelectOptimalVelocity(a.Candidates, a.Obstacles, a.PrefVelocity, algo.PreferredDeviationWeight)
}

// integrateAgent applies the acceleration clamp, commits new_velocity,
// integrates position, updates orientation, and advances the goal cursor
// (component H, step 4).
func (s *Simulator) integrateAgent(a *core.Agent) {
	delta := a.NewVelocity.Sub(a.Velocity)
	maxDelta := a.MaxAccel * s.dt
	if delta.Abs() > maxDelta {
		delta = delta.Normalize().Scale(maxDelta)
	}
	a.Velocity = a.Velocity.Add(delta)
	a.Position = a.Position.Add(a.Velocity.Scale(s.dt))
	if a.Velocity.Abs() > velocityEpsilon {
		a.Orientation = a.Velocity.Angle()
	}

	goal := s.goals[a.GoalID]
	goal.AdvanceIfReached(a.Position, a.GoalRadius)
}

func growVector2(buf []core.Vector2, n int) []core.Vector2 {
	if cap(buf) < n {
		return make([]core.Vector2, n)
	}
	return buf[:n]
}

func growFloat32(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
