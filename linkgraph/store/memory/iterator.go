package memory

import "github.com/mycok/linkrank/linkgraph/graph"

// Static and compile-time checks to ensure the iterators implement the
// graph iterator interfaces.
var (
	_ graph.NodeIterator   = (*nodeIterator)(nil)
	_ graph.EdgeIterator   = (*edgeIterator)(nil)
	_ graph.MetricIterator = (*metricIterator)(nil)
)

// cursor walks a slice of records captured when the iterator was created.
// The records themselves stay owned by the store, so every read hands out
// a copy taken under the store's read lock.
type cursor[T any] struct {
	store *InMemoryGraph
	items []*T
	clone func(*T) *T
	pos   int
}

func newCursor[T any](s *InMemoryGraph, items []*T, clone func(*T) *T) cursor[T] {
	return cursor[T]{store: s, items: items, clone: clone}
}

// Next advances the cursor and reports whether a record is available.
func (c *cursor[T]) Next() bool {
	if c.pos >= len(c.items) {
		return false
	}
	c.pos++

	return true
}

// Error always returns nil; in-memory iteration cannot fail.
func (c *cursor[T]) Error() error { return nil }

// Close is a no-op.
func (c *cursor[T]) Close() error { return nil }

func (c *cursor[T]) current() *T {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	return c.clone(c.items[c.pos-1])
}

func shallowCopy[T any](v *T) *T {
	out := new(T)
	*out = *v

	return out
}

type nodeIterator struct{ cursor[graph.ContentNode] }

func newNodeIterator(s *InMemoryGraph, nodes []*graph.ContentNode) *nodeIterator {
	return &nodeIterator{newCursor(s, nodes, shallowCopy[graph.ContentNode])}
}

// Node returns the current node.
func (i *nodeIterator) Node() *graph.ContentNode { return i.current() }

// Edges are deep-copied because ResolveEdge mutates them in place and Rel
// is a slice.
type edgeIterator struct{ cursor[graph.LinkEdge] }

func newEdgeIterator(s *InMemoryGraph, edges []*graph.LinkEdge) *edgeIterator {
	return &edgeIterator{newCursor(s, edges, copyEdge)}
}

// Edge returns the current edge.
func (i *edgeIterator) Edge() *graph.LinkEdge { return i.current() }

type metricIterator struct{ cursor[graph.GraphMetric] }

func newMetricIterator(s *InMemoryGraph, metrics []*graph.GraphMetric) *metricIterator {
	return &metricIterator{newCursor(s, metrics, shallowCopy[graph.GraphMetric])}
}

// Metric returns the current metric row.
func (i *metricIterator) Metric() *graph.GraphMetric { return i.current() }
