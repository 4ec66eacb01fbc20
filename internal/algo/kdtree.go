// Package algo implements the HRVO velocity-selection engine: the
// neighbor query, velocity-obstacle construction, candidate generation,
// and optimal-velocity selection that together pick one agent's new
// velocity for a simulation step.
package algo

import (
	"container/heap"
	"sort"

	"github.com/elektrokombinacija/hrvosim/internal/core"
)

const kdNil = -1

type kdNode struct {
	id          core.AgentID
	pos         core.Vector2
	axis        int
	left, right int
}

// KDTree is a balanced binary tree over agent positions, alternating the
// split axis by depth (x at depth 0, y at depth 1, ...), built fresh each
// simulation step by recursive median split. Ties in the split are broken
// by AgentID (component D).
type KDTree struct {
	nodes []kdNode
	root  int
}

// BuildKDTree builds a tree over positions, where AgentID i corresponds to
// positions[i]. Cost is O(N log N).
func BuildKDTree(positions []core.Vector2) *KDTree {
	t := &KDTree{nodes: make([]kdNode, 0, len(positions)), root: kdNil}
	idx := make([]core.AgentID, len(positions))
	for i := range idx {
		idx[i] = core.AgentID(i)
	}
	t.root = t.build(idx, positions, 0)
	return t
}

func (t *KDTree) build(idx []core.AgentID, positions []core.Vector2, depth int) int {
	if len(idx) == 0 {
		return kdNil
	}
	axis := depth % 2
	sort.Slice(idx, func(i, j int) bool {
		pi, pj := positions[idx[i]], positions[idx[j]]
		var vi, vj float32
		if axis == 0 {
			vi, vj = pi.X, pj.X
		} else {
			vi, vj = pi.Y, pj.Y
		}
		if vi != vj {
			return vi < vj
		}
		return idx[i] < idx[j]
	})

	mid := len(idx) / 2
	nodeIdx := len(t.nodes)
	t.nodes = append(t.nodes, kdNode{
		id:    idx[mid],
		pos:   positions[idx[mid]],
		axis:  axis,
		left:  kdNil,
		right: kdNil,
	})

	left := t.build(idx[:mid], positions, depth+1)
	right := t.build(idx[mid+1:], positions, depth+1)
	t.nodes[nodeIdx].left = left
	t.nodes[nodeIdx].right = right
	return nodeIdx
}

// neighborHeap is a bounded max-heap (by DistSq) over a caller-owned
// backing slice, so the per-agent Neighbors buffer can be reused across
// steps without allocating. It implements container/heap.Interface the
// same way the teacher's astarHeap does for its priority queue.
type neighborHeap struct {
	ns *[]core.Neighbor
}

func (h neighborHeap) Len() int            { return len(*h.ns) }
func (h neighborHeap) Less(i, j int) bool  { return (*h.ns)[i].DistSq > (*h.ns)[j].DistSq }
func (h neighborHeap) Swap(i, j int)       { (*h.ns)[i], (*h.ns)[j] = (*h.ns)[j], (*h.ns)[i] }
func (h *neighborHeap) Push(x interface{}) { *h.ns = append(*h.ns, x.(core.Neighbor)) }
func (h *neighborHeap) Pop() interface{} {
	old := *h.ns
	n := len(old)
	item := old[n-1]
	*h.ns = old[:n-1]
	return item
}

// Query fills out with the bounded neighbor set of the agent at pos
// (AgentID self excluded), up to maxNeighbors entries within neighborDist,
// keyed by squared distance. out's backing array is reused: it is reset to
// length zero and refilled by append, allocating only when the result
// outgrows its capacity. The heap-pruned
// walk skips any subtree whose splitting-plane distance meets or exceeds
// the current cutoff, which starts at neighborDist^2 and tightens to the
// heap's worst entry once the heap is full.
func (t *KDTree) Query(self core.AgentID, pos core.Vector2, maxNeighbors int, neighborDist float32, out *[]core.Neighbor) {
	*out = (*out)[:0]
	if t.root == kdNil || maxNeighbors <= 0 {
		return
	}
	h := &neighborHeap{ns: out}
	cutoff := neighborDist * neighborDist
	t.search(t.root, self, pos, maxNeighbors, &cutoff, h)
}

func (t *KDTree) search(nodeIdx int, self core.AgentID, pos core.Vector2, maxNeighbors int, cutoff *float32, h *neighborHeap) {
	if nodeIdx == kdNil {
		return
	}
	node := &t.nodes[nodeIdx]

	if node.id != self {
		distSq := node.pos.Sub(pos).AbsSq()
		if distSq < *cutoff {
			if h.Len() >= maxNeighbors {
				heap.Pop(h)
			}
			heap.Push(h, core.Neighbor{ID: node.id, DistSq: distSq})
			if h.Len() >= maxNeighbors {
				*cutoff = (*h.ns)[0].DistSq
			}
		}
	}

	var axisVal, queryVal float32
	if node.axis == 0 {
		axisVal, queryVal = node.pos.X, pos.X
	} else {
		axisVal, queryVal = node.pos.Y, pos.Y
	}
	diff := queryVal - axisVal

	near, far := node.left, node.right
	if diff > 0 {
		near, far = node.right, node.left
	}

	t.search(near, self, pos, maxNeighbors, cutoff, h)
	if diff*diff < *cutoff {
		t.search(far, self, pos, maxNeighbors, cutoff, h)
	}
}

// BruteForceNeighbors computes the same bounded neighbor set as Query by
// scanning every position directly. It exists to cross-check KDTree.Query
// (property: KD-tree equivalence, spec scenario 6) and is not used on the
// simulation hot path.
func BruteForceNeighbors(self core.AgentID, pos core.Vector2, positions []core.Vector2, maxNeighbors int, neighborDist float32) []core.Neighbor {
	cutoff := neighborDist * neighborDist
	out := make([]core.Neighbor, 0, maxNeighbors)
	h := &neighborHeap{ns: &out}
	for i, p := range positions {
		id := core.AgentID(i)
		if id == self {
			continue
		}
		distSq := p.Sub(pos).AbsSq()
		if distSq >= cutoff {
			continue
		}
		if h.Len() >= maxNeighbors {
			heap.Pop(h)
		}
		heap.Push(h, core.Neighbor{ID: id, DistSq: distSq})
		if h.Len() >= maxNeighbors {
			cutoff = out[0].DistSq
		}
	}
	return out
}
