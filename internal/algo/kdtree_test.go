package algo

import (
	"math/rand"
	"testing"

	"github.com/elektrokombinacija/hrvosim/internal/core"
)

func neighborSetsEqual(a, b []core.Neighbor) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[core.AgentID]float32, len(a))
	for _, n := range a {
		seen[n.ID] = n.DistSq
	}
	for _, n := range b {
		distSq, ok := seen[n.ID]
		if !ok || distSq != n.DistSq {
			return false
		}
	}
	return true
}

func TestKDTreeQueryExcludesSelf(t *testing.T) {
	positions := []core.Vector2{
		core.NewVector2(0, 0),
		core.NewVector2(1, 0),
		core.NewVector2(2, 0),
	}
	tree := BuildKDTree(positions)

	var out []core.Neighbor
	tree.Query(0, positions[0], 10, 5, &out)

	for _, n := range out {
		if n.ID == 0 {
			t.Fatal("Query should exclude the querying agent's own id")
		}
	}
	if len(out) != 2 {
		t.Fatalf("got %d neighbors, want 2", len(out))
	}
}

func TestKDTreeQueryRespectsBounds(t *testing.T) {
	positions := []core.Vector2{
		core.NewVector2(0, 0),
		core.NewVector2(1, 0),
		core.NewVector2(10, 0),
	}
	tree := BuildKDTree(positions)

	var out []core.Neighbor
	tree.Query(0, positions[0], 10, 2, &out)
	if len(out) != 1 {
		t.Fatalf("neighbor_dist=2 should exclude the far agent, got %d neighbors", len(out))
	}

	out = nil
	tree.Query(0, positions[0], 1, 100, &out)
	if len(out) != 1 {
		t.Fatalf("max_neighbors=1 should bound the result to 1, got %d", len(out))
	}
	if out[0].ID != 1 {
		t.Errorf("bounded query should keep the nearest neighbor, got id %d", out[0].ID)
	}
}

func TestKDTreeMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 200
	positions := make([]core.Vector2, n)
	for i := range positions {
		positions[i] = core.NewVector2(rng.Float32()*20-10, rng.Float32()*20-10)
	}
	tree := BuildKDTree(positions)

	const maxNeighbors = 10
	const neighborDist = 3.0

	var treeResult []core.Neighbor
	for i := 0; i < n; i++ {
		id := core.AgentID(i)
		tree.Query(id, positions[i], maxNeighbors, neighborDist, &treeResult)
		bruteResult := BruteForceNeighbors(id, positions[i], positions, maxNeighbors, neighborDist)

		if !neighborSetsEqual(treeResult, bruteResult) {
			t.Fatalf("agent %d: KD-tree result %v != brute-force result %v", i, treeResult, bruteResult)
		}
	}
}
