// Package sqlite provides an embedded, file-backed link graph store built on
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/linkgraph/store/sqlrows"
)

var (
	upsertNodeQuery = `
					INSERT INTO content_nodes (id, site_id, url, title)
					VALUES (?, ?, ?, ?)
					ON CONFLICT (id)
					DO UPDATE SET site_id=excluded.site_id, url=excluded.url, title=excluded.title
					`
	findNodeQuery       = "SELECT id, site_id, url, title FROM content_nodes WHERE id=?"
	findNodeExistsQuery = "SELECT 1 FROM content_nodes WHERE id=?"
	siteNodesQuery      = "SELECT id, site_id, url, title FROM content_nodes WHERE site_id=? ORDER BY id"

	deleteNodeEdgesQuery = "DELETE FROM link_edges WHERE from_node=?"
	insertEdgeQuery      = `
					INSERT INTO link_edges (` + sqlrows.EdgeColumns + `)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT DO NOTHING
					`
	nodeEdgesQuery = "SELECT " + sqlrows.EdgeColumns + " FROM link_edges WHERE from_node=? ORDER BY rowid"
	siteEdgesQuery = `
					SELECT e.id, e.from_node, e.to_node, e.to_url, e.anchor_text, e.rel, e.nofollow, e.is_internal
					FROM link_edges e
					JOIN content_nodes n ON n.id = e.from_node
					WHERE n.site_id=?
					ORDER BY e.from_node, e.rowid
					`
	findEdgeStateQuery = "SELECT is_internal, to_node FROM link_edges WHERE id=?"
	resolveEdgeQuery   = "UPDATE link_edges SET to_node=? WHERE id=? AND is_internal AND to_node IS NULL"

	deleteSiteMetricsQuery = "DELETE FROM graph_metrics WHERE site_id=?"
	insertMetricQuery      = `
					INSERT INTO graph_metrics (` + sqlrows.MetricColumns + `)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT (node_id) DO UPDATE SET
						site_id=excluded.site_id, degree_in=excluded.degree_in,
						degree_out=excluded.degree_out, pagerank=excluded.pagerank,
						authority=excluded.authority, hub=excluded.hub,
						last_computed_at=excluded.last_computed_at
					`
	siteMetricsQuery = "SELECT " + sqlrows.MetricColumns + " FROM graph_metrics WHERE site_id=? ORDER BY node_id"
)

// Static and compile-time check to ensure Graph implements the
// graph.Graph interface.
var _ graph.Graph = (*Graph)(nil)

// Graph implements a persistent content catalog, edge store and metric
// store backed by a SQLite database file.
type Graph struct {
	db *sql.DB
}

// NewGraph opens (creating it if needed) the SQLite database at path and
// applies the schema.
func NewGraph(path string) (*Graph, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}

	return &Graph{db: db}, nil
}

// Close closes the database connection.
func (s *Graph) Close() error {
	return s.db.Close()
}

// UpsertNode creates a new or updates an existing content node.
func (s *Graph) UpsertNode(node *graph.ContentNode) error {
	if _, err := s.db.Exec(upsertNodeQuery, node.ID, node.SiteID, node.URL, node.Title); err != nil {
		return fmt.Errorf("upsert node: %w", err)
	}

	return nil
}

// FindNode performs a node lookup by id.
func (s *Graph) FindNode(id int64) (*graph.ContentNode, error) {
	n := new(graph.ContentNode)

	err := s.db.QueryRow(findNodeQuery, id).Scan(&n.ID, &n.SiteID, &n.URL, &n.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find node: %w", graph.ErrNotFound)
		}

		return nil, fmt.Errorf("find node: %w", err)
	}

	return n, nil
}

// Nodes returns an iterator for every node that belongs to siteID.
func (s *Graph) Nodes(siteID int64) (graph.NodeIterator, error) {
	rows, err := s.db.Query(siteNodesQuery, siteID)
	if err != nil {
		return nil, fmt.Errorf("nodes: %w", err)
	}

	return sqlrows.NewNodeIterator(rows), nil
}

// ReplaceEdges atomically removes every edge originating from fromID
// and inserts the provided set in its place.
func (s *Graph) ReplaceEdges(fromID int64, edges []*graph.LinkEdge) error {
	err := s.inTx(func(tx *sql.Tx) error {
		if err := nodeExists(tx, fromID); err != nil {
			return err
		}

		if _, err := tx.Exec(deleteNodeEdgesQuery, fromID); err != nil {
			return err
		}

		for _, e := range edges {
			e.FromNode = fromID
			e.AssignID()

			if _, err := tx.Exec(
				insertEdgeQuery,
				e.ID, e.FromNode, e.NullableTarget(), e.ToURL,
				e.AnchorText, e.RelString(), e.NoFollow, e.IsInternal(),
			); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("replace edges: %w", err)
	}

	return nil
}

// Edges returns an iterator for the edges originating from fromID.
func (s *Graph) Edges(fromID int64) (graph.EdgeIterator, error) {
	rows, err := s.db.Query(nodeEdgesQuery, fromID)
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}

	return sqlrows.NewEdgeIterator(rows), nil
}

// SiteEdges returns an iterator for every edge whose source node
// belongs to siteID.
func (s *Graph) SiteEdges(siteID int64) (graph.EdgeIterator, error) {
	rows, err := s.db.Query(siteEdgesQuery, siteID)
	if err != nil {
		return nil, fmt.Errorf("site edges: %w", err)
	}

	return sqlrows.NewEdgeIterator(rows), nil
}

// ResolveEdge points an unresolved internal edge at toID. Edges that
// are already resolved are left untouched.
func (s *Graph) ResolveEdge(edgeID uuid.UUID, toID int64) error {
	err := s.inTx(func(tx *sql.Tx) error {
		var (
			internal bool
			toNode   sql.NullInt64
		)
		if err := tx.QueryRow(findEdgeStateQuery, edgeID).Scan(&internal, &toNode); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return graph.ErrNotFound
			}

			return err
		}

		if err := nodeExists(tx, toID); err != nil {
			return err
		}

		if !internal || toNode.Valid {
			return nil
		}

		_, err := tx.Exec(resolveEdgeQuery, toID, edgeID)

		return err
	})
	if err != nil {
		return fmt.Errorf("resolve edge: %w", err)
	}

	return nil
}

// ReplaceMetrics atomically removes every metric row of siteID and
// inserts the provided set in its place.
func (s *Graph) ReplaceMetrics(siteID int64, metrics []*graph.GraphMetric) error {
	err := s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(deleteSiteMetricsQuery, siteID); err != nil {
			return err
		}

		for _, m := range metrics {
			if _, err := tx.Exec(
				insertMetricQuery,
				m.NodeID, siteID, m.DegreeIn, m.DegreeOut,
				m.PageRank, m.Authority, m.Hub, m.LastComputedAt.UnixNano(),
			); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("replace metrics: %w", err)
	}

	return nil
}

// Metrics returns an iterator for the metric rows of siteID.
func (s *Graph) Metrics(siteID int64) (graph.MetricIterator, error) {
	rows, err := s.db.Query(siteMetricsQuery, siteID)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	return sqlrows.NewMetricIterator(rows, func() sqlrows.TimeScanner {
		return new(sqlrows.UnixNanoTime)
	}), nil
}

// inTx runs fn inside a transaction that is committed when fn succeeds
// and rolled back otherwise.
func (s *Graph) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

func nodeExists(tx *sql.Tx, id int64) error {
	var exists int
	if err := tx.QueryRow(findNodeExistsQuery, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return graph.ErrUnknownNode
		}

		return err
	}

	return nil
}
