// Package scenario builds named example configurations on a
// sim.Simulator, reproducing the original HRVO library's own examples
// and test fixtures (circle-of-N, vertical line, div-B field perimeter).
package scenario

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/hrvosim/internal/core"
	"github.com/elektrokombinacija/hrvosim/internal/sim"
)

// Defaults are the agent parameters used throughout the original
// library's examples and tests.
var Defaults = core.AgentParams{
	NeighborDist:      1,
	MaxNeighbors:      10,
	Radius:            0.09,
	GoalRadius:        0.09,
	PrefSpeed:         3.5,
	MaxSpeed:          4.825,
	UncertaintyOffset: 0,
	MaxAccel:          3.28,
}

// DefaultTimeStep is the time step used throughout the original
// library's examples and tests.
const DefaultTimeStep = float32(1.0 / 30)

// Params selects and parameterizes a named scenario. It is JSON
// serializable so tools/gen_scenarios can emit it and tools/run_benchmarks
// can consume it; cmd/hrvosim builds it directly with DefaultParams.
type Params struct {
	Name      string           `json:"name"`
	NumAgents int              `json:"num_agents,omitempty"`
	Defaults  core.AgentParams `json:"defaults"`
	TimeStep  float32          `json:"time_step"`
}

// DefaultParams returns Params for name with the original library's
// defaults and a scenario-appropriate agent count.
func DefaultParams(name string) (Params, error) {
	switch name {
	case "circle":
		return Params{Name: name, NumAgents: 25, Defaults: Defaults, TimeStep: DefaultTimeStep}, nil
	case "vertical-line":
		return Params{Name: name, NumAgents: 5, Defaults: Defaults, TimeStep: DefaultTimeStep}, nil
	case "div-b":
		return Params{Name: name, Defaults: Defaults, TimeStep: DefaultTimeStep}, nil
	default:
		return Params{}, fmt.Errorf("scenario: unknown scenario %q", name)
	}
}

// Build constructs a fresh Simulator per params and populates it with the
// named scenario's agents and goals.
func Build(params Params) (*sim.Simulator, error) {
	s := sim.NewSimulator()
	if err := s.SetTimeStep(params.TimeStep); err != nil {
		return nil, err
	}
	if err := s.SetAgentDefaults(params.Defaults); err != nil {
		return nil, err
	}

	switch params.Name {
	case "circle":
		if err := buildCircle(s, params.NumAgents); err != nil {
			return nil, err
		}
	case "vertical-line":
		if err := buildVerticalLine(s, params.NumAgents); err != nil {
			return nil, err
		}
	case "div-b":
		if err := buildDivB(s); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("scenario: unknown scenario %q", params.Name)
	}
	return s, nil
}

// buildCircle places one agent at the center (goal: stay put) and
// numAgents agents evenly spaced on a circle, each crossing to the
// antipodal point.
func buildCircle(s *sim.Simulator, numAgents int) error {
	center, err := s.AddGoal(core.NewVector2(0, 0))
	if err != nil {
		return err
	}
	if _, err := s.AddAgent(core.NewVector2(0, 0), center, nil); err != nil {
		return err
	}

	circleRadius := float32(numAgents) / 10
	if circleRadius < 2 {
		circleRadius = 2
	}
	angleStep := 2 * math.Pi / float64(numAgents)
	for i := 0; i < numAgents; i++ {
		angle := float64(i) * angleStep
		pos := core.NewVector2(
			circleRadius*float32(math.Cos(angle)),
			circleRadius*float32(math.Sin(angle)),
		)
		goalID, err := s.AddGoal(pos.Neg())
		if err != nil {
			return err
		}
		if _, err := s.AddAgent(pos, goalID, nil); err != nil {
			return err
		}
	}
	return nil
}

// buildVerticalLine places numAgents agents in a vertical line, each
// crossing straight down past the whole column.
func buildVerticalLine(s *sim.Simulator, numAgents int) error {
	robotOffset := core.NewVector2(0, -Defaults.Radius*2.5)
	goalOffset := core.NewVector2(0, -6)
	for i := 0; i < numAgents; i++ {
		pos := robotOffset.Scale(float32(i))
		goalID, err := s.AddGoal(pos.Add(goalOffset))
		if err != nil {
			return err
		}
		if _, err := s.AddAgent(pos, goalID, nil); err != nil {
			return err
		}
	}
	return nil
}

// buildDivB reproduces the original library's "div_b_edge_test" combined
// with "create_div_b_field": four agents crossing a field of stationary
// perimeter agents.
func buildDivB(s *sim.Simulator) error {
	const numRobots = 4
	goalOffset := core.NewVector2(8, 0)
	robotOffset := core.NewVector2(0, -Defaults.Radius*2.5)
	for i := 0; i < numRobots; i++ {
		pos := goalOffset.Scale(-0.5).Add(core.NewVector2(0, 2.8)).Add(robotOffset.Scale(float32(i)))
		goalID, err := s.AddGoal(pos.Add(goalOffset))
		if err != nil {
			return err
		}
		if _, err := s.AddAgent(pos, goalID, nil); err != nil {
			return err
		}
	}

	const fieldWidth = 9.0
	const fieldHeight = 6.0
	robotOffsets := float32(2.5 * Defaults.Radius)

	for x := float32(-fieldWidth / 2); x <= fieldWidth/2; x += robotOffsets {
		for _, y := range [2]float32{-fieldHeight / 2, fieldHeight / 2} {
			pos := core.NewVector2(x, y)
			goalID, err := s.AddGoal(pos)
			if err != nil {
				return err
			}
			if _, err := s.AddAgent(pos, goalID, nil); err != nil {
				return err
			}
		}
	}

	maxY := float32(fieldHeight/2) - robotOffsets
	for y := -maxY; y <= maxY; y += robotOffsets {
		for _, x := range [2]float32{-fieldWidth / 2, fieldWidth / 2} {
			pos := core.NewVector2(x, y)
			goalID, err := s.AddGoal(pos)
			if err != nil {
				return err
			}
			if _, err := s.AddAgent(pos, goalID, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
