/*
	centrality package computes degree, PageRank and HITS scores over the
	directed link graph of a single site. It works entirely in memory.
*/

package centrality

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownNode is returned when an edge references a node that was not
// part of the node set the graph was created with.
var ErrUnknownNode = errors.New("unknown node")

type edgeKey struct{ src, dst int }

// Graph is a directed graph over a fixed set of int64 node ids. Nodes are
// mapped to dense indexes and adjacency is kept in both directions.
type Graph struct {
	ids   []int64
	index map[int64]int
	out   [][]int
	in    [][]int
	seen  map[edgeKey]struct{}
}

// NewGraph creates a graph with no edges over ids. Duplicate ids are
// ignored and nodes are kept in ascending id order.
func NewGraph(ids []int64) *Graph {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	g := &Graph{
		index: make(map[int64]int, len(sorted)),
		seen:  make(map[edgeKey]struct{}),
	}
	for _, id := range sorted {
		if _, exists := g.index[id]; exists {
			continue
		}
		g.index[id] = len(g.ids)
		g.ids = append(g.ids, id)
	}

	g.out = make([][]int, len(g.ids))
	g.in = make([][]int, len(g.ids))

	return g
}

// AddEdge inserts a directed edge from src to dst. Self-loops and edges
// that already exist are silently ignored.
func (g *Graph) AddEdge(src, dst int64) error {
	s, ok := g.index[src]
	if !ok {
		return fmt.Errorf("add edge: source %d: %w", src, ErrUnknownNode)
	}

	d, ok := g.index[dst]
	if !ok {
		return fmt.Errorf("add edge: destination %d: %w", dst, ErrUnknownNode)
	}

	if s == d {
		return nil
	}

	key := edgeKey{s, d}
	if _, exists := g.seen[key]; exists {
		return nil
	}
	g.seen[key] = struct{}{}

	g.out[s] = append(g.out[s], d)
	g.in[d] = append(g.in[d], s)

	return nil
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.ids) }

// NumEdges returns the number of distinct edges in the graph.
func (g *Graph) NumEdges() int { return len(g.seen) }

// Nodes returns the node ids in ascending order.
func (g *Graph) Nodes() []int64 {
	return append([]int64(nil), g.ids...)
}

// OutDegree returns the number of edges originating from id.
func (g *Graph) OutDegree(id int64) int {
	if i, ok := g.index[id]; ok {
		return len(g.out[i])
	}

	return 0
}

// InDegree returns the number of edges pointing at id.
func (g *Graph) InDegree(id int64) int {
	if i, ok := g.index[id]; ok {
		return len(g.in[i])
	}

	return 0
}

// Successors returns the nodes that id links to, in insertion order.
func (g *Graph) Successors(id int64) []int64 {
	i, ok := g.index[id]
	if !ok {
		return nil
	}

	return g.toIDs(g.out[i])
}

// Predecessors returns the nodes that link to id, in insertion order.
func (g *Graph) Predecessors(id int64) []int64 {
	i, ok := g.index[id]
	if !ok {
		return nil
	}

	return g.toIDs(g.in[i])
}

func (g *Graph) toIDs(indexes []int) []int64 {
	ids := make([]int64, len(indexes))
	for i, idx := range indexes {
		ids[i] = g.ids[idx]
	}

	return ids
}

// Scores maps node ids to a score.
type Scores map[int64]float64

func (g *Graph) scores(values []float64) Scores {
	s := make(Scores, len(values))
	for i, v := range values {
		s[g.ids[i]] = v
	}

	return s
}
