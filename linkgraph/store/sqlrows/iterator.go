// Package sqlrows adapts database/sql result sets to the graph iterator
// interfaces. It's shared by the SQL-backed stores.
package sqlrows

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mycok/linkrank/linkgraph/graph"
)

// Static and compile-time checks to ensure the iterators implement the
// graph iterator interfaces.
var (
	_ graph.NodeIterator   = (*NodeIterator)(nil)
	_ graph.EdgeIterator   = (*EdgeIterator)(nil)
	_ graph.MetricIterator = (*MetricIterator)(nil)
)

// TimeScanner converts a scanned timestamp column into a UTC time value.
// Stores that keep timestamps as native columns scan into a time.Time
// while others keep unix nanoseconds.
type TimeScanner interface {
	sql.Scanner
	Time() time.Time
}

// NativeTime scans native timestamp columns.
type NativeTime struct{ t time.Time }

// Scan implements sql.Scanner.
func (n *NativeTime) Scan(src interface{}) error {
	t, ok := src.(time.Time)
	if !ok {
		return fmt.Errorf("native time: unsupported source type %T", src)
	}
	n.t = t

	return nil
}

// Time returns the scanned value in UTC.
func (n *NativeTime) Time() time.Time { return n.t.UTC() }

// UnixNanoTime scans integer columns holding unix nanoseconds.
type UnixNanoTime struct{ t time.Time }

// Scan implements sql.Scanner.
func (u *UnixNanoTime) Scan(src interface{}) error {
	v, ok := src.(int64)
	if !ok {
		return fmt.Errorf("unix nano time: unsupported source type %T", src)
	}
	u.t = time.Unix(0, v)

	return nil
}

// Time returns the scanned value in UTC.
func (u *UnixNanoTime) Time() time.Time { return u.t.UTC() }

// NodeIterator is a graph.NodeIterator implementation that wraps the
// [database/sql] Rows type returned by a node query. Rows must yield the
// id, site_id, url and title columns.
type NodeIterator struct {
	rows    *sql.Rows
	lastErr error
	node    *graph.ContentNode
}

// NewNodeIterator returns a NodeIterator for rows.
func NewNodeIterator(rows *sql.Rows) *NodeIterator {
	return &NodeIterator{rows: rows}
}

// Next loads the next item, returns false when no more nodes
// are available or when an error occurs.
func (i *NodeIterator) Next() bool {
	// Check if an error occurred during the most recent [rows.Scan]
	// operation or if there are no more rows data to return.
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	n := new(graph.ContentNode)
	if i.lastErr = i.rows.Scan(&n.ID, &n.SiteID, &n.URL, &n.Title); i.lastErr != nil {
		return false
	}
	i.node = n

	return true
}

// Error returns the last error encountered by the iterator.
func (i *NodeIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}

	return i.rows.Err()
}

// Close releases any resources allocated to the iterator.
func (i *NodeIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("node iterator: %w", err)
	}

	return nil
}

// Node returns the currently fetched node object.
func (i *NodeIterator) Node() *graph.ContentNode {
	return i.node
}

// EdgeIterator is a graph.EdgeIterator implementation that wraps the
// [database/sql] Rows type returned by an edge query. Rows must yield the
// columns listed in EdgeColumns.
type EdgeIterator struct {
	rows    *sql.Rows
	lastErr error
	edge    *graph.LinkEdge
}

// EdgeColumns lists the edge columns, in scan order.
const EdgeColumns = "id, from_node, to_node, to_url, anchor_text, rel, nofollow, is_internal"

// NewEdgeIterator returns an EdgeIterator for rows.
func NewEdgeIterator(rows *sql.Rows) *EdgeIterator {
	return &EdgeIterator{rows: rows}
}

// Next advances the iterator. When no items are available or when an
// error occurs, calls to Next() return false.
func (i *EdgeIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	var (
		e        = new(graph.LinkEdge)
		toNode   sql.NullInt64
		rel      string
		internal bool
	)
	if i.lastErr = i.rows.Scan(
		&e.ID, &e.FromNode, &toNode, &e.ToURL, &e.AnchorText, &rel, &e.NoFollow, &internal,
	); i.lastErr != nil {

		return false
	}

	var target *int64
	if toNode.Valid {
		target = &toNode.Int64
		e.ToNode = toNode.Int64
	}
	e.Kind = graph.KindOf(internal, target)
	if e.Kind != graph.LinkResolved {
		e.ToNode = 0
	}
	e.Rel = graph.ParseRel(rel)
	i.edge = e

	return true
}

// Error returns the last error recorded by the iterator.
func (i *EdgeIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}

	return i.rows.Err()
}

// Close releases any resources linked to the iterator.
func (i *EdgeIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("edge iterator: %w", err)
	}

	return nil
}

// Edge returns the currently fetched edge object.
func (i *EdgeIterator) Edge() *graph.LinkEdge {
	return i.edge
}

// MetricColumns lists the metric columns, in scan order.
const MetricColumns = "node_id, site_id, degree_in, degree_out, pagerank, authority, hub, last_computed_at"

// MetricIterator is a graph.MetricIterator implementation that wraps the
// [database/sql] Rows type returned by a metric query.
type MetricIterator struct {
	rows    *sql.Rows
	newTime func() TimeScanner
	lastErr error
	metric  *graph.GraphMetric
}

// NewMetricIterator returns a MetricIterator for rows. newTime supplies
// the scanner for the last_computed_at column.
func NewMetricIterator(rows *sql.Rows, newTime func() TimeScanner) *MetricIterator {
	return &MetricIterator{rows: rows, newTime: newTime}
}

// Next advances the iterator.
func (i *MetricIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	m := new(graph.GraphMetric)
	computedAt := i.newTime()
	if i.lastErr = i.rows.Scan(
		&m.NodeID, &m.SiteID, &m.DegreeIn, &m.DegreeOut,
		&m.PageRank, &m.Authority, &m.Hub, computedAt,
	); i.lastErr != nil {

		return false
	}

	m.LastComputedAt = computedAt.Time()
	i.metric = m

	return true
}

// Error returns the last error recorded by the iterator.
func (i *MetricIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}

	return i.rows.Err()
}

// Close releases any resources linked to the iterator.
func (i *MetricIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("metric iterator: %w", err)
	}

	return nil
}

// Metric returns the currently fetched metric object.
func (i *MetricIterator) Metric() *graph.GraphMetric {
	return i.metric
}
