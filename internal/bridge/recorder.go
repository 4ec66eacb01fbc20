// Package bridge provides thin external-glue collaborators that consume a
// sim.Simulator only through its public accessor surface: CSV frame
// recording and collision reporting. Nothing in this package reaches into
// simulator-internal state.
package bridge

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/elektrokombinacija/hrvosim/internal/core"
)

// Simulator is the subset of *sim.Simulator the Recorder drives. Declared
// locally so this package has no import-time dependency on internal/sim,
// matching the spec's description of the bridge as an external
// collaborator of the core.
type Simulator interface {
	NumAgents() int
	GlobalTime() float32
	DoStep() error
	AgentPosition(id core.AgentID) core.Vector2
	AgentRadius(id core.AgentID) float32
}

// csvHeader is the fixed column order for recorded frames, grounded on
// the original HRVO test harness's run_simulator() loop.
var csvHeader = []string{
	"frame", "time", "robot_id", "x", "y",
	"velocity_x", "velocity_y", "speed", "has_collided",
}

// Recorder drives a Simulator one step at a time and writes one CSV row
// per agent per frame, reproducing the original test harness's loop
// shape: finite-difference velocity divided by the elapsed simulated
// time between frames (zero on frame 0, or whenever that elapsed time
// is zero), and has_collided set to the smallest other agent id whose
// disk overlaps the agent's, or -1 if none.
type Recorder struct {
	sim Simulator
	w   *csv.Writer

	frame        uint64
	prevFrameSet bool
	prevX, prevY []float32
	prevTime     float32
}

// NewRecorder wraps sim and writes CSV rows to w, emitting the header row
// immediately.
func NewRecorder(sim Simulator, w io.Writer) (*Recorder, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush csv header: %w", err)
	}
	return &Recorder{sim: sim, w: cw}, nil
}

// RecordFrame writes the current frame's rows (one per agent), then
// advances the underlying simulator by one step. It must be called in a
// loop; the caller decides the stopping condition (e.g. GlobalTime or
// HaveReachedGoals).
func (r *Recorder) RecordFrame() error {
	n := r.sim.NumAgents()
	time := r.sim.GlobalTime()

	if !r.prevFrameSet {
		r.prevX = make([]float32, n)
		r.prevY = make([]float32, n)
	}

	positions := make([]core.Vector2, n)
	radii := make([]float32, n)
	for i := 0; i < n; i++ {
		positions[i] = r.sim.AgentPosition(core.AgentID(i))
		radii[i] = r.sim.AgentRadius(core.AgentID(i))
	}

	deltaTime := time - r.prevTime

	for i := 0; i < n; i++ {
		hasCollided := firstCollision(i, positions, radii)

		var vx, vy, speed float32
		if r.prevFrameSet && deltaTime != 0 {
			vx = (positions[i].X - r.prevX[i]) / deltaTime
			vy = (positions[i].Y - r.prevY[i]) / deltaTime
			speed = float32(math.Sqrt(float64(vx*vx + vy*vy)))
		}

		row := []string{
			fmt.Sprintf("%d", r.frame),
			fmt.Sprintf("%v", time),
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%v", positions[i].X),
			fmt.Sprintf("%v", positions[i].Y),
			fmt.Sprintf("%v", vx),
			fmt.Sprintf("%v", vy),
			fmt.Sprintf("%v", speed),
			fmt.Sprintf("%d", hasCollided),
		}
		if err := r.w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}

		r.prevX[i] = positions[i].X
		r.prevY[i] = positions[i].Y
	}
	r.prevFrameSet = true
	r.prevTime = time
	r.frame++

	if err := r.sim.DoStep(); err != nil {
		return fmt.Errorf("record frame: %w", err)
	}
	return nil
}

// Flush flushes the underlying CSV writer and reports any write error
// encountered since the last Flush.
func (r *Recorder) Flush() error {
	r.w.Flush()
	return r.w.Error()
}

// firstCollision returns the smallest j != i whose disk overlaps agent
// i's, or -1 if none.
func firstCollision(i int, positions []core.Vector2, radii []float32) int {
	for j := range positions {
		if j == i {
			continue
		}
		combined := radii[i] + radii[j]
		if positions[i].Sub(positions[j]).AbsSq() < combined*combined {
			return j
		}
	}
	return -1
}
