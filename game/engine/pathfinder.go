package engine

import (
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"
)

// Graph is the read-only view of the maze searched by FindPath.
// WalkableNeighbors must already be filtered to enterable tiles and StepCost
// is only asked about adjacent, walkable pairs.
type Graph interface {
	WalkableNeighbors(c TileCoord) []TileCoord
	StepCost(from, to TileCoord) int
}

// searchNode is one tile under consideration during a single search.
// parent indexes into the same search's arena; -1 marks the start.
type searchNode struct {
	coord  TileCoord
	parent int
	g      int
	h      int
	seq    uint64
}

func (n *searchNode) f() int { return n.g + n.h }

// openEntry positions a node in the open set. An entry is stale once its
// node has been re-queued under a newer seq.
type openEntry struct {
	f    int
	seq  uint64
	node int
}

func openLess(a, b openEntry) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.seq < b.seq
}

// FindPath computes the cheapest route from start to goal with A*.
//
// The returned route excludes start and ends with goal; it is empty when
// start == goal. ok is false when goal cannot be reached, in which case no
// partial route is returned. Nodes with equal f-score leave the open set in
// the order they were (re)inserted, so results are deterministic for a
// given graph.
func FindPath(g Graph, start, goal TileCoord) (route []TileCoord, ok bool) {
	nodes := []searchNode{{coord: start, parent: -1}}
	index := map[TileCoord]int{start: 0}
	closed := mapset.New[int]()

	var seq uint64
	open := heap.New[openEntry](openLess)
	open.Push(openEntry{f: 0, seq: seq, node: 0})

	for open.Size() > 0 {
		entry, _ := open.Pop()
		if entry.seq != nodes[entry.node].seq || closed.Has(entry.node) {
			continue
		}
		closed.Put(entry.node)

		current := nodes[entry.node]
		if current.coord == goal {
			return buildRoute(nodes, entry.node), true
		}

		for _, next := range g.WalkableNeighbors(current.coord) {
			idx, seen := index[next]
			if seen && closed.Has(idx) {
				continue
			}

			tentative := current.g + g.StepCost(current.coord, next)

			if !seen {
				seq++
				nodes = append(nodes, searchNode{
					coord:  next,
					parent: entry.node,
					g:      tentative,
					h:      ManhattanDistance(next, goal),
					seq:    seq,
				})
				idx = len(nodes) - 1
				index[next] = idx
				open.Push(openEntry{f: nodes[idx].f(), seq: seq, node: idx})
				continue
			}

			if tentative < nodes[idx].g {
				seq++
				nodes[idx].parent = entry.node
				nodes[idx].g = tentative
				nodes[idx].seq = seq
				open.Push(openEntry{f: nodes[idx].f(), seq: seq, node: idx})
			}
		}
	}

	return nil, false
}

// buildRoute walks parent links back from the goal node and returns the
// coordinates in start-to-goal order, start excluded.
func buildRoute(nodes []searchNode, goal int) []TileCoord {
	n := 0
	for i := goal; nodes[i].parent != -1; i = nodes[i].parent {
		n++
	}
	route := make([]TileCoord, n)
	for i := goal; nodes[i].parent != -1; i = nodes[i].parent {
		n--
		route[n] = nodes[i].coord
	}
	return route
}
