package sqlite

// schema holds the DDL statements applied when a database is opened. The
// driver executes a single statement per call.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS content_nodes (
		id      INTEGER PRIMARY KEY,
		site_id INTEGER NOT NULL,
		url     TEXT NOT NULL,
		title   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS content_nodes_site_idx ON content_nodes (site_id)`,
	`CREATE TABLE IF NOT EXISTS link_edges (
		id          TEXT PRIMARY KEY,
		from_node   INTEGER NOT NULL REFERENCES content_nodes (id) ON DELETE CASCADE,
		to_node     INTEGER REFERENCES content_nodes (id) ON DELETE SET NULL,
		to_url      TEXT NOT NULL,
		anchor_text TEXT NOT NULL DEFAULT '',
		rel         TEXT NOT NULL DEFAULT '',
		nofollow    INTEGER NOT NULL DEFAULT 0,
		is_internal INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS link_edges_unique_idx
		ON link_edges (from_node, COALESCE(to_node, 0), to_url, anchor_text)`,
	`CREATE INDEX IF NOT EXISTS link_edges_from_idx ON link_edges (from_node)`,
	`CREATE TABLE IF NOT EXISTS graph_metrics (
		node_id          INTEGER PRIMARY KEY,
		site_id          INTEGER NOT NULL,
		degree_in        INTEGER NOT NULL DEFAULT 0,
		degree_out       INTEGER NOT NULL DEFAULT 0,
		pagerank         REAL NOT NULL DEFAULT 0,
		authority        REAL NOT NULL DEFAULT 0,
		hub              REAL NOT NULL DEFAULT 0,
		last_computed_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS graph_metrics_site_idx ON graph_metrics (site_id)`,
}
