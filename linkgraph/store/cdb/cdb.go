package cdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/linkgraph/store/sqlrows"
)

var (
	upsertNodeQuery = `
					INSERT INTO content_nodes (id, site_id, url, title)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (id)
					DO UPDATE SET site_id=EXCLUDED.site_id, url=EXCLUDED.url, title=EXCLUDED.title
					`
	findNodeQuery       = "SELECT id, site_id, url, title FROM content_nodes WHERE id=$1"
	findNodeExistsQuery = "SELECT 1 FROM content_nodes WHERE id=$1"
	siteNodesQuery      = "SELECT id, site_id, url, title FROM content_nodes WHERE site_id=$1 ORDER BY id"

	deleteNodeEdgesQuery = "DELETE FROM link_edges WHERE from_node=$1"
	insertEdgeQuery      = `
					INSERT INTO link_edges (` + sqlrows.EdgeColumns + `)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
					ON CONFLICT DO NOTHING
					`
	nodeEdgesQuery = "SELECT " + sqlrows.EdgeColumns + " FROM link_edges WHERE from_node=$1"
	siteEdgesQuery = `
					SELECT e.id, e.from_node, e.to_node, e.to_url, e.anchor_text, e.rel, e.nofollow, e.is_internal
					FROM link_edges e
					JOIN content_nodes n ON n.id = e.from_node
					WHERE n.site_id=$1
					ORDER BY e.from_node
					`
	resolveEdgeQuery = `
					UPDATE link_edges SET to_node=$2
					WHERE id=$1 AND is_internal AND to_node IS NULL
					`
	edgeExistsQuery = "SELECT 1 FROM link_edges WHERE id=$1"

	deleteSiteMetricsQuery = "DELETE FROM graph_metrics WHERE site_id=$1"
	deleteNodeMetricsQuery = "DELETE FROM graph_metrics WHERE node_id = ANY($1)"
	siteMetricsQuery       = "SELECT " + sqlrows.MetricColumns + " FROM graph_metrics WHERE site_id=$1 ORDER BY node_id"

	metricCopyColumns = []string{
		"node_id", "site_id", "degree_in", "degree_out",
		"pagerank", "authority", "hub", "last_computed_at",
	}
)

// Static and compile-time check to ensure CockroachDBGraph implements
// Graph interface.
var _ graph.Graph = (*CockroachDBGraph)(nil)

// CockroachDBGraph implements a persistent content catalog, edge store and
// metric store using a CockroachDB (or PostgreSQL) instance.
type CockroachDBGraph struct {
	db *sql.DB
}

// NewCockroachDBGraph returns a CockroachDBGraph instance.
func NewCockroachDBGraph(dsn string) (*CockroachDBGraph, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return &CockroachDBGraph{db}, nil
}

// Migrate creates the tables and indexes used by the store if they don't
// exist yet.
func (s *CockroachDBGraph) Migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}

// Close terminates the connection to the cockroachDB instance.
func (s *CockroachDBGraph) Close() error {
	return s.db.Close()
}

// UpsertNode creates a new or updates an existing content node.
func (s *CockroachDBGraph) UpsertNode(node *graph.ContentNode) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.db.ExecContext(
		ctx, upsertNodeQuery, node.ID, node.SiteID, node.URL, node.Title,
	)
	if err != nil {
		return fmt.Errorf("upsert node: %w", err)
	}

	return nil
}

// FindNode performs a node lookup by id.
func (s *CockroachDBGraph) FindNode(id int64) (*graph.ContentNode, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	n := new(graph.ContentNode)

	err := s.db.QueryRowContext(ctx, findNodeQuery, id).Scan(&n.ID, &n.SiteID, &n.URL, &n.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find node: %w", graph.ErrNotFound)
		}

		return nil, fmt.Errorf("find node: %w", err)
	}

	return n, nil
}

// Nodes returns an iterator for every node that belongs to siteID.
func (s *CockroachDBGraph) Nodes(siteID int64) (graph.NodeIterator, error) {
	rows, err := s.db.Query(siteNodesQuery, siteID)
	if err != nil {
		return nil, fmt.Errorf("nodes: %w", err)
	}

	return sqlrows.NewNodeIterator(rows), nil
}

// ReplaceEdges atomically removes every edge originating from fromID
// and inserts the provided set in its place.
func (s *CockroachDBGraph) ReplaceEdges(fromID int64, edges []*graph.LinkEdge) error {
	err := s.inTx(func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRow(findNodeExistsQuery, fromID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return graph.ErrUnknownNode
			}

			return err
		}

		if _, err := tx.Exec(deleteNodeEdgesQuery, fromID); err != nil {
			return err
		}

		if len(edges) == 0 {
			return nil
		}

		stmt, err := tx.Prepare(insertEdgeQuery)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, e := range edges {
			e.FromNode = fromID
			e.AssignID()

			if _, err := stmt.Exec(
				e.ID, e.FromNode, e.NullableTarget(), e.ToURL,
				e.AnchorText, e.RelString(), e.NoFollow, e.IsInternal(),
			); err != nil {
				if isForeignKeyViolationError(err) {
					err = graph.ErrUnknownNode
				}

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
func (s *CockroachDBGraph) Edges(fromID int64) (graph.EdgeIterator, error) {
	rows, err := s.db.Query(nodeEdgesQuery, fromID)
	if err != nil {
		return nil, fmt.Errorf("edges: %w", err)
	}

	return sqlrows.NewEdgeIterator(rows), nil
}

// SiteEdges returns an iterator for every edge whose source node
// belongs to siteID.
func (s *CockroachDBGraph) SiteEdges(siteID int64) (graph.EdgeIterator, error) {
	rows, err := s.db.Query(siteEdgesQuery, siteID)
	if err != nil {
		return nil, fmt.Errorf("site edges: %w", err)
	}

	return sqlrows.NewEdgeIterator(rows), nil
}

// ResolveEdge points an unresolved internal edge at toID. Edges that
// are already resolved are left untouched.
func (s *CockroachDBGraph) ResolveEdge(edgeID uuid.UUID, toID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := s.db.ExecContext(ctx, resolveEdgeQuery, edgeID, toID)
	if err != nil {
		if isForeignKeyViolationError(err) {
			err = graph.ErrUnknownNode
		}

		return fmt.Errorf("resolve edge: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		return nil
	}

	// Nothing was updated: either the edge is already resolved / external
	// or it does not exist at all.
	var exists int
	if err := s.db.QueryRowContext(ctx, edgeExistsQuery, edgeID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("resolve edge: %w", graph.ErrNotFound)
		}

		return fmt.Errorf("resolve edge: %w", err)
	}

	return nil
}

// ReplaceMetrics atomically removes every metric row of siteID and
// inserts the provided set in its place. Rows are bulk-loaded using the
// COPY protocol.
func (s *CockroachDBGraph) ReplaceMetrics(siteID int64, metrics []*graph.GraphMetric) error {
	err := s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(deleteSiteMetricsQuery, siteID); err != nil {
			return err
		}

		if len(metrics) == 0 {
			return nil
		}

		// Nodes that moved from another site still own a row there.
		ids := make([]int64, len(metrics))
		for i, m := range metrics {
			ids[i] = m.NodeID
		}
		if _, err := tx.Exec(deleteNodeMetricsQuery, pq.Array(ids)); err != nil {
			return err
		}

		stmt, err := tx.Prepare(pq.CopyIn("graph_metrics", metricCopyColumns...))
		if err != nil {
			return err
		}

		for _, m := range metrics {
			if _, err := stmt.Exec(
				m.NodeID, siteID, m.DegreeIn, m.DegreeOut,
				m.PageRank, m.Authority, m.Hub, m.LastComputedAt.UTC(),
			); err != nil {
				_ = stmt.Close()

				return err
			}
		}

		// An argument-less Exec flushes the buffered COPY data.
		if _, err := stmt.Exec(); err != nil {
			_ = stmt.Close()

			return err
		}

		return stmt.Close()
	})
	if err != nil {
		return fmt.Errorf("replace metrics: %w", err)
	}

	return nil
}

// Metrics returns an iterator for the metric rows of siteID.
func (s *CockroachDBGraph) Metrics(siteID int64) (graph.MetricIterator, error) {
	rows, err := s.db.Query(siteMetricsQuery, siteID)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	return sqlrows.NewMetricIterator(rows, func() sqlrows.TimeScanner {
		return new(sqlrows.NativeTime)
	}), nil
}

// inTx runs fn inside a transaction that is committed when fn succeeds
// and rolled back otherwise.
func (s *CockroachDBGraph) inTx(fn func(tx *sql.Tx) error) error {
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

// isForeignKeyViolationError returns true if error is a foreign key
// constraint violation error.
func isForeignKeyViolationError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code.Name() == "foreign_key_violation"
}
