/*
	graph package defines the content nodes, link edges and metric rows of a
	site's link graph together with the store contracts that persist them.
*/

package graph

//go:generate mockgen -package mocks -destination mocks/mock.go github.com/mycok/linkrank/linkgraph/graph Graph,NodeIterator,EdgeIterator,MetricIterator

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// edgeNamespace seeds the deterministic edge identifiers.
var edgeNamespace = uuid.MustParse("6f1c6f0e-2a7c-4c4e-9d1e-3b7a1d5f9a21")

// Graph should be implemented by link graph data stores.
type Graph interface {
	Catalog
	EdgeStore
	MetricStore
}

// Catalog exposes the content nodes known for each site.
type Catalog interface {
	// UpsertNode creates a new or updates an existing content node.
	UpsertNode(node *ContentNode) error

	// FindNode performs a node lookup by id.
	FindNode(id int64) (*ContentNode, error)

	// Nodes returns an iterator for every node that belongs to siteID.
	Nodes(siteID int64) (NodeIterator, error)
}

// EdgeStore persists the links extracted from content nodes.
type EdgeStore interface {
	// ReplaceEdges atomically removes every edge originating from fromID
	// and inserts the provided set in its place.
	ReplaceEdges(fromID int64, edges []*LinkEdge) error

	// Edges returns an iterator for the edges originating from fromID.
	Edges(fromID int64) (EdgeIterator, error)

	// SiteEdges returns an iterator for every edge whose source node
	// belongs to siteID.
	SiteEdges(siteID int64) (EdgeIterator, error)

	// ResolveEdge points an unresolved internal edge at toID. Edges that
	// are already resolved are left untouched.
	ResolveEdge(edgeID uuid.UUID, toID int64) error
}

// MetricStore persists the per-node centrality metrics.
type MetricStore interface {
	// ReplaceMetrics atomically removes every metric row of siteID and
	// inserts the provided set in its place.
	ReplaceMetrics(siteID int64, metrics []*GraphMetric) error

	// Metrics returns an iterator for the metric rows of siteID.
	Metrics(siteID int64) (MetricIterator, error)
}

// Iterator should be embedded / implemented by types that require
// iteration functionality.
type Iterator interface {
	// Next loads the next item, returns false when no more items
	// are available or when an error occurs.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources allocated to the iterator.
	Close() error
}

// NodeIterator is implemented by types that iterate content nodes.
type NodeIterator interface {
	Iterator

	// Node returns the currently fetched node object.
	Node() *ContentNode
}

// EdgeIterator is implemented by types that iterate link edges.
type EdgeIterator interface {
	Iterator

	// Edge returns the currently fetched edge object.
	Edge() *LinkEdge
}

// MetricIterator is implemented by types that iterate metric rows.
type MetricIterator interface {
	Iterator

	// Metric returns the currently fetched metric object.
	Metric() *GraphMetric
}

// ContentNode represents a piece of site content. Nodes are owned by the
// content catalog.
type ContentNode struct {
	ID     int64  // Unique identifier, stable across runs
	SiteID int64  // Owning site
	URL    string // Canonical URL
	Title  string
}

// LinkKind classifies an edge.
type LinkKind uint8

const (
	// LinkExternal points outside the site.
	LinkExternal LinkKind = iota

	// LinkUnresolved is internal but its target is not a known node.
	LinkUnresolved

	// LinkResolved is internal and ToNode holds the target node.
	LinkResolved
)

// String implements fmt.Stringer.
func (k LinkKind) String() string {
	switch k {
	case LinkExternal:
		return "external"
	case LinkUnresolved:
		return "unresolved"
	case LinkResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// KindOf derives the kind of a stored edge from its internal flag and
// nullable target.
func KindOf(internal bool, toNode *int64) LinkKind {
	switch {
	case !internal:
		return LinkExternal
	case toNode == nil:
		return LinkUnresolved
	default:
		return LinkResolved
	}
}

// LinkEdge represents a single hyperlink extracted from a content node.
type LinkEdge struct {
	ID         uuid.UUID // Derived from FromNode, ToURL and AnchorText
	FromNode   int64
	ToNode     int64 // Valid only when Kind == LinkResolved
	ToURL      string
	AnchorText string
	Rel        []string
	NoFollow   bool
	Kind       LinkKind
}

// IsInternal returns true if the edge points inside the site.
func (e *LinkEdge) IsInternal() bool {
	return e.Kind != LinkExternal
}

// Target returns the target node and true if the edge is resolved.
func (e *LinkEdge) Target() (int64, bool) {
	if e.Kind != LinkResolved {
		return 0, false
	}

	return e.ToNode, true
}

// NullableTarget returns a pointer to ToNode for resolved edges and nil
// otherwise. It's used by the SQL stores when binding the to_node column.
func (e *LinkEdge) NullableTarget() *int64 {
	if e.Kind != LinkResolved {
		return nil
	}

	to := e.ToNode

	return &to
}

// RelString joins the rel tokens the way they are persisted.
func (e *LinkEdge) RelString() string {
	return strings.Join(e.Rel, " ")
}

// ParseRel splits a persisted rel value into tokens.
func ParseRel(rel string) []string {
	tokens := strings.Fields(rel)
	if len(tokens) == 0 {
		return nil
	}

	return tokens
}

// AssignID sets the deterministic edge identifier.
func (e *LinkEdge) AssignID() {
	e.ID = EdgeID(e.FromNode, e.ToURL, e.AnchorText)
}

// EdgeID returns the identifier of the edge from fromNode to toURL with
// the given anchor text. Re-extracting the same link always yields the
// same ID.
func EdgeID(fromNode int64, toURL, anchorText string) uuid.UUID {
	key := strconv.FormatInt(fromNode, 10) + "\x00" + toURL + "\x00" + anchorText

	return uuid.NewSHA1(edgeNamespace, []byte(key))
}

// GraphMetric holds the centrality metrics of a content node.
type GraphMetric struct {
	NodeID         int64
	SiteID         int64
	DegreeIn       int
	DegreeOut      int
	PageRank       float64
	Authority      float64
	Hub            float64
	LastComputedAt time.Time
}
