package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mycok/linkrank/linkgraph/graph"
)

// Static and compile-time check to ensure InMemoryGraph implements
// Graph interface.
var _ graph.Graph = (*InMemoryGraph)(nil)

// edgeList contains the slice of edge UUIDs that originate from a node in the
// graph.
type edgeList []uuid.UUID

// InMemoryGraph implements an in-memory content catalog, edge store and
// metric store that can be concurrently accessed by multiple clients.
type InMemoryGraph struct {
	mu            sync.RWMutex
	nodes         map[int64]*graph.ContentNode
	edges         map[uuid.UUID]*graph.LinkEdge
	nodeToEdgeMap map[int64]edgeList // Maps nodes to edges originating from them.
	metrics       map[int64]*graph.GraphMetric
}

// NewInMemoryGraph creates a new in-memory link graph.
func NewInMemoryGraph() *InMemoryGraph {
	return &InMemoryGraph{
		nodes:         make(map[int64]*graph.ContentNode),
		edges:         make(map[uuid.UUID]*graph.LinkEdge),
		nodeToEdgeMap: make(map[int64]edgeList),
		metrics:       make(map[int64]*graph.GraphMetric),
	}
}

// UpsertNode creates a new or updates an existing content node.
func (s *InMemoryGraph) UpsertNode(node *graph.ContentNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Keep a private copy so that later mutations of the caller's value
	// don't leak into the store.
	nCopy := new(graph.ContentNode)
	*nCopy = *node
	s.nodes[nCopy.ID] = nCopy

	return nil
}

// FindNode performs a node lookup by id.
func (s *InMemoryGraph) FindNode(id int64) (*graph.ContentNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, exists := s.nodes[id]
	if !exists {
		return nil, fmt.Errorf("find node: %w", graph.ErrNotFound)
	}

	nCopy := new(graph.ContentNode)
	*nCopy = *n

	return nCopy, nil
}

// Nodes returns an iterator for every node that belongs to siteID.
func (s *InMemoryGraph) Nodes(siteID int64) (graph.NodeIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*graph.ContentNode
	for _, id := range s.siteNodeIDs(siteID) {
		list = append(list, s.nodes[id])
	}

	return newNodeIterator(s, list), nil
}

// ReplaceEdges atomically removes every edge originating from fromID
// and inserts the provided set in its place.
func (s *InMemoryGraph) ReplaceEdges(fromID int64, edges []*graph.LinkEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[fromID]; !exists {
		return fmt.Errorf("replace edges: %w", graph.ErrUnknownNode)
	}

	for _, id := range s.nodeToEdgeMap[fromID] {
		delete(s.edges, id)
	}

	var newEdgeList edgeList
	for _, edge := range edges {
		edge.FromNode = fromID
		edge.AssignID()

		// The edge ID is derived from the uniqueness key so a repeated
		// link collapses into the first stored copy.
		if _, exists := s.edges[edge.ID]; exists {
			continue
		}

		s.edges[edge.ID] = copyEdge(edge)
		newEdgeList = append(newEdgeList, edge.ID)
	}

	s.nodeToEdgeMap[fromID] = newEdgeList

	return nil
}

// Edges returns an iterator for the edges originating from fromID.
func (s *InMemoryGraph) Edges(fromID int64) (graph.EdgeIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*graph.LinkEdge
	for _, id := range s.nodeToEdgeMap[fromID] {
		list = append(list, s.edges[id])
	}

	return newEdgeIterator(s, list), nil
}

// SiteEdges returns an iterator for every edge whose source node
// belongs to siteID.
func (s *InMemoryGraph) SiteEdges(siteID int64) (graph.EdgeIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*graph.LinkEdge
	for _, nodeID := range s.siteNodeIDs(siteID) {
		for _, id := range s.nodeToEdgeMap[nodeID] {
			list = append(list, s.edges[id])
		}
	}

	return newEdgeIterator(s, list), nil
}

// ResolveEdge points an unresolved internal edge at toID. Edges that
// are already resolved are left untouched.
func (s *InMemoryGraph) ResolveEdge(edgeID uuid.UUID, toID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge, exists := s.edges[edgeID]
	if !exists {
		return fmt.Errorf("resolve edge: %w", graph.ErrNotFound)
	}

	if _, exists := s.nodes[toID]; !exists {
		return fmt.Errorf("resolve edge: %w", graph.ErrUnknownNode)
	}

	if edge.Kind != graph.LinkUnresolved {
		return nil
	}

	edge.ToNode = toID
	edge.Kind = graph.LinkResolved

	return nil
}

// ReplaceMetrics atomically removes every metric row of siteID and
// inserts the provided set in its place.
func (s *InMemoryGraph) ReplaceMetrics(siteID int64, metrics []*graph.GraphMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for nodeID, m := range s.metrics {
		if m.SiteID == siteID {
			delete(s.metrics, nodeID)
		}
	}

	for _, m := range metrics {
		mCopy := new(graph.GraphMetric)
		*mCopy = *m
		mCopy.SiteID = siteID
		s.metrics[mCopy.NodeID] = mCopy
	}

	return nil
}

// Metrics returns an iterator for the metric rows of siteID.
func (s *InMemoryGraph) Metrics(siteID int64) (graph.MetricIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*graph.GraphMetric
	for _, m := range s.metrics {
		if m.SiteID == siteID {
			list = append(list, m)
		}
	}

	sort.Slice(list, func(i, j int) bool { return list[i].NodeID < list[j].NodeID })

	return newMetricIterator(s, list), nil
}

// siteNodeIDs returns the sorted ids of the nodes that belong to siteID.
// The caller must hold the store lock.
func (s *InMemoryGraph) siteNodeIDs(siteID int64) []int64 {
	var ids []int64
	for id, n := range s.nodes {
		if n.SiteID == siteID {
			ids = append(ids, id)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

func copyEdge(e *graph.LinkEdge) *graph.LinkEdge {
	eCopy := new(graph.LinkEdge)
	*eCopy = *e
	if e.Rel != nil {
		eCopy.Rel = append([]string(nil), e.Rel...)
	}

	return eCopy
}
