package algo

import (
	"math"

	"github.com/elektrokombinacija/hrvosim/internal/core"
)

// GenerateCandidates fills out with the candidate velocities implied by
// prefVelocity and obstacles, per component F: the clipped preferred
// velocity, boundary projections, speed-circle/boundary intersections, and
// pairwise boundary intersections. out's backing array is reused (reset to
// length zero, capacity retained).
func GenerateCandidates(prefVelocity core.Vector2, maxSpeed float32, obstacles []core.Obstacle, out *[]core.Candidate) {
	*out = (*out)[:0]

	// 1. Preferred velocity, clipped to the speed disk.
	*out = append(*out, core.Candidate{
		Velocity: prefVelocity.ClipToSpeed(maxSpeed),
		Obs1:     core.NoObstacle,
		Obs2:     core.NoObstacle,
	})

	maxSpeedSq := maxSpeed * maxSpeed

	for k := range obstacles {
		obs := &obstacles[k]

		// 2. Foot of perpendicular from prefVelocity onto each boundary.
		for _, dir := range [2]core.Vector2{obs.Side1, obs.Side2} {
			if foot, ok := footOnRay(prefVelocity, obs.Apex, dir); ok {
				if foot.AbsSq() <= maxSpeedSq {
					*out = append(*out, core.Candidate{Velocity: foot, Obs1: k, Obs2: k})
				}
			}
		}

		// 3. Speed-circle intersections with each boundary.
		for _, dir := range [2]core.Vector2{obs.Side1, obs.Side2} {
			for _, p := range circleIntersections(obs.Apex, dir, maxSpeed) {
				*out = append(*out, core.Candidate{Velocity: p, Obs1: k, Obs2: k})
			}
		}
	}

	// 4. Pairwise boundary intersections.
	for j := 0; j < len(obstacles); j++ {
		for k := j + 1; k < len(obstacles); k++ {
			oj, ok2 := &obstacles[j], &obstacles[k]
			for _, dj := range [2]core.Vector2{oj.Side1, oj.Side2} {
				for _, dk := range [2]core.Vector2{ok2.Side1, ok2.Side2} {
					if p, ok := rayIntersection(oj.Apex, dj, ok2.Apex, dk); ok {
						*out = append(*out, core.Candidate{
							Velocity: p.ClipToSpeed(maxSpeed),
							Obs1:     j,
							Obs2:     k,
						})
					}
				}
			}
		}
	}
}

// footOnRay returns the foot of the perpendicular from p onto the ray
// starting at apex in direction dir (unit), and whether that foot lies on
// the ray (i.e. at non-negative parameter).
func footOnRay(p, apex, dir core.Vector2) (core.Vector2, bool) {
	t := p.Sub(apex).Dot(dir)
	if t < 0 {
		return core.Vector2{}, false
	}
	return apex.Add(dir.Scale(t)), true
}

// circleIntersections returns the points, restricted to non-negative
// parameter along the ray from apex in direction dir (unit), where that
// ray meets the circle of radius maxSpeed centered at the origin.
func circleIntersections(apex, dir core.Vector2, maxSpeed float32) []core.Vector2 {
	b := apex.Dot(dir)
	c := apex.AbsSq() - maxSpeed*maxSpeed
	disc := b*b - c
	if disc < 0 {
		return nil
	}
	sq := float32(math.Sqrt(float64(disc)))
	var out []core.Vector2
	for _, t := range [2]float32{-b + sq, -b - sq} {
		if t >= 0 {
			out = append(out, apex.Add(dir.Scale(t)))
		}
	}
	return out
}

// rayIntersection returns the intersection of the ray from p1 in direction
// d1 (unit) with the ray from p2 in direction d2 (unit), and whether that
// intersection lies on both rays (non-negative parameter on each).
func rayIntersection(p1, d1, p2, d2 core.Vector2) (core.Vector2, bool) {
	denom := d1.Det(d2)
	if denom > -1e-9 && denom < 1e-9 {
		return core.Vector2{}, false
	}
	diff := p2.Sub(p1)
	t1 := diff.Det(d2) / denom
	t2 := diff.Det(d1) / denom
	if t1 < 0 || t2 < 0 {
		return core.Vector2{}, false
	}
	return p1.Add(d1.Scale(t1)), true
}
