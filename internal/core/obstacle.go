package core

// Obstacle is the HRVO cone (or, in the overlapping case, half-plane) that
// one neighbor induces on an agent, per component E. It is a pure data
// value; internal/algo builds, interprets, and consumes it.
type Obstacle struct {
	Apex Vector2
	// Side1, Side2 are unit direction vectors for the two boundary rays
	// from Apex. For a non-degenerate cone these are the right and left
	// tangent directions (in that order); for a degenerate obstacle they
	// are +perp and -perp of the line through Apex normal to RelPos, i.e.
	// the single boundary line represented as two opposite half-lines.
	Side1, Side2 Vector2

	// RelPos, NeighborVel, and CombinedRadius carry what the
	// time-to-collision computation needs: d = posB - posA, v_B, and R.
	RelPos         Vector2
	NeighborVel    Vector2
	CombinedRadius float32

	// DHat is the unit direction of RelPos (the +x fallback when RelPos
	// is zero), used for cone/half-plane membership tests.
	DHat Vector2

	// Degenerate is true when |RelPos|^2 < CombinedRadius^2 at
	// construction time (including the |RelPos| == 0 NumericDegenerate
	// case from spec section 7).
	Degenerate bool
}
