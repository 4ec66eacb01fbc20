package algo

import (
	"math"

	"github.com/elektrokombinacija/hrvosim/internal/core"
)

// PreferredDeviationWeight is the constant weight w relating deviation
// from preferred velocity to the inverse time-to-collision term in the
// cost function (component G). The source material does not fix this
// constant (spec.md section 9, Open Question); 1.0 is pinned here so the
// deviation term and the collision term are commensurate in the common
// case where max_speed and neighbor_dist are both O(1) in SI units, and so
// that deviation from preferred is the sole tie-breaker whenever no
// candidate lies inside any obstacle (the max term is then zero for every
// candidate).
const PreferredDeviationWeight float32 = 1.0

// insideObstacle reports whether v lies inside obstacle's cone (or, for a
// degenerate obstacle, its colliding half-plane).
func insideObstacle(v core.Vector2, obs *core.Obstacle) bool {
	rel := v.Sub(obs.Apex)
	if obs.Degenerate {
		return rel.Dot(obs.DHat) >= 0
	}
	return obs.Side1.Det(rel) >= 0 && rel.Det(obs.Side2) >= 0
}

// timeToCollision solves for the smallest positive t at which agent A,
// moving at candidateVel from a relative position relPos to neighbor B
// (moving at neighborVel), first penetrates the disk of radius R around B.
// Returns ok=false if there is no such positive t.
func timeToCollision(relPos, neighborVel, candidateVel core.Vector2, combinedRadius float32) (float32, bool) {
	w := neighborVel.Sub(candidateVel)
	a := w.AbsSq()
	if a < 1e-12 {
		return 0, false
	}
	b := 2 * relPos.Dot(w)
	c := relPos.AbsSq() - combinedRadius*combinedRadius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sqrtDisc := float32(math.Sqrt(float64(disc)))
	t1 := (-b - sqrtDisc) / (2 * a)
	t2 := (-b + sqrtDisc) / (2 * a)
	lo, hi := t1, t2
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo > 0 {
		return lo, true
	}
	if hi > 0 {
		return hi, true
	}
	return 0, false
}

// obstacleCollisionTime returns the positive time-to-collision for v
// against obs, or ok=false if v does not collide with obs along a future
// trajectory. Degenerate obstacles (already overlapping) report a fixed
// small positive time rather than solving the quadratic, since the pair is
// colliding now.
func obstacleCollisionTime(v core.Vector2, obs *core.Obstacle) (float32, bool) {
	if obs.Degenerate {
		return degenerateCollisionTime, true
	}
	return timeToCollision(obs.RelPos, obs.NeighborVel, v, obs.CombinedRadius)
}

// cost computes component G's cost function for one candidate velocity v,
// annotated with the (up to two) obstacle indices it was generated from.
func cost(v core.Vector2, obs1, obs2 int, obstacles []core.Obstacle, prefVelocity core.Vector2, weight float32) float32 {
	deviation := v.Sub(prefVelocity).Abs()

	var worst float32
	for k := range obstacles {
		if k == obs1 || k == obs2 {
			continue
		}
		obs := &obstacles[k]
		if !insideObstacle(v, obs) {
			continue
		}
		t, ok := obstacleCollisionTime(v, obs)
		if !ok || t <= 0 {
			continue
		}
		if term := 1 / t; term > worst {
			worst = term
		}
	}

	return weight*deviation + worst
}

// SelectOptimalVelocity returns the candidate minimizing cost, per
// component G. Ties are broken by lower candidate index, since candidates
// are scanned in enumeration order and only strictly lower cost replaces
// the running best. Returns the zero vector if candidates is empty;
// GenerateCandidates always emits at least the clipped preferred velocity
// (the zero vector when max_speed is 0), so that case arises only for a
// caller passing an empty slice.
func SelectOptimalVelocity(candidates []core.Candidate, obstacles []core.Obstacle, prefVelocity core.Vector2, weight float32) core.Vector2 {
	best := -1
	var bestCost float32
	for i := range candidates {
		c := cost(candidates[i].Velocity, candidates[i].Obs1, candidates[i].Obs2, obstacles, prefVelocity, weight)
		if best == -1 || c < bestCost {
			best = i
			bestCost = c
		}
	}
	if best == -1 {
		return core.Vector2{}
	}
	return candidates[best].Velocity
}
