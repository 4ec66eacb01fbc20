package algo

import (
	"math"

	"github.com/elektrokombinacija/hrvosim/internal/core"
)

// degenerateApexEps is the fixed offset used to shift the apex off the
// exact reciprocal midpoint when two agents already overlap (component E,
// the degenerate-cone case) or occupy the same position (NumericDegenerate,
// spec section 7). It is implementation-defined, like the cost weight in
// component G; any small positive constant preserves the spec's ordering.
const degenerateApexEps = 1e-3

// degenerateCollisionTime is the time-to-collision assigned to an obstacle
// already in the degenerate (overlapping) state: collision is effectively
// immediate, so a small positive constant stands in for "first penetration
// time" and drives the cost function's 1/t term high without dividing by
// zero.
const degenerateCollisionTime = 1e-3

// BuildObstacle constructs the HRVO obstacle that neighbor B induces on
// agent A, per component E. Obstacle itself is defined in package core
// (core.Agent holds a transient []core.Obstacle buffer, and core must not
// import algo).
func BuildObstacle(posA, velA core.Vector2, radiusA float32, posB, velB core.Vector2, radiusB, uncertaintyOffset float32) core.Obstacle {
	d := posB.Sub(posA)
	R := radiusA + radiusB + uncertaintyOffset

	if d.AbsSq() < R*R {
		return buildDegenerateObstacle(d, velA, velB, R)
	}
	return buildConeObstacle(d, velA, velB, R)
}

func buildDegenerateObstacle(d, velA, velB core.Vector2, R float32) core.Obstacle {
	dHat := core.NewVector2(1, 0)
	if d.AbsSq() > 0 {
		dHat = d.Normalize()
	}
	apex := velA.Add(velB).Scale(0.5).Sub(dHat.Scale(degenerateApexEps))
	perp := dHat.LeftNormal()
	return core.Obstacle{
		Apex:           apex,
		Side1:          perp,
		Side2:          perp.Neg(),
		RelPos:         d,
		NeighborVel:    velB,
		CombinedRadius: R,
		DHat:           dHat,
		Degenerate:     true,
	}
}

func buildConeObstacle(d, velA, velB core.Vector2, R float32) core.Obstacle {
	dist := d.Abs()
	angle := d.Angle()
	opening := float32(math.Asin(clamp(float64(R/dist), -1, 1)))

	// Tangent-line directions: right (clockwise side) and left
	// (counterclockwise side) of d, oriented outward from the apex.
	rightDir := core.NewVector2(
		float32(math.Cos(float64(angle-opening))),
		float32(math.Sin(float64(angle-opening))),
	)
	leftDir := core.NewVector2(
		float32(math.Cos(float64(angle+opening))),
		float32(math.Sin(float64(angle+opening))),
	)

	voApex := velB
	rvoApex := velA.Add(velB).Scale(0.5)

	var apex core.Vector2
	if d.Det(velA.Sub(velB)) > 0 {
		// B is to A's left: shift to the intersection of the VO's right
		// boundary with the RVO's left boundary.
		apex = intersectRays(voApex, rightDir, rvoApex, leftDir, rvoApex)
	} else {
		// B is to A's right (or colinear): intersection of the VO's left
		// boundary with the RVO's right boundary.
		apex = intersectRays(voApex, leftDir, rvoApex, rightDir, rvoApex)
	}

	return core.Obstacle{
		Apex:           apex,
		Side1:          rightDir,
		Side2:          leftDir,
		RelPos:         d,
		NeighborVel:    velB,
		CombinedRadius: R,
		DHat:           d.Normalize(),
		Degenerate:     false,
	}
}

// intersectRays returns the intersection of the line through p1 with
// direction d1 and the line through p2 with direction d2. If the
// directions are (near-)parallel, it returns fallback rather than
// dividing by a near-zero determinant.
func intersectRays(p1, d1, p2, d2, fallback core.Vector2) core.Vector2 {
	denom := d1.Det(d2)
	if denom > -1e-9 && denom < 1e-9 {
		return fallback
	}
	t := p2.Sub(p1).Det(d2) / denom
	return p1.Add(d1.Scale(t))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
