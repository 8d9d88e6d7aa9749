package cdb

// schema holds the DDL statements applied by Migrate.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS content_nodes (
		id      BIGINT PRIMARY KEY,
		site_id BIGINT NOT NULL,
		url     TEXT NOT NULL,
		title   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS content_nodes_site_idx ON content_nodes (site_id)`,
	`CREATE TABLE IF NOT EXISTS link_edges (
		id          UUID PRIMARY KEY,
		from_node   BIGINT NOT NULL REFERENCES content_nodes (id) ON DELETE CASCADE,
		to_node     BIGINT REFERENCES content_nodes (id) ON DELETE SET NULL,
		to_url      TEXT NOT NULL,
		anchor_text TEXT NOT NULL DEFAULT '',
		rel         TEXT NOT NULL DEFAULT '',
		nofollow    BOOLEAN NOT NULL DEFAULT FALSE,
		is_internal BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS link_edges_unique_idx
		ON link_edges (from_node, COALESCE(to_node, 0), to_url, anchor_text)`,
	`CREATE TABLE IF NOT EXISTS graph_metrics (
		node_id          BIGINT PRIMARY KEY,
		site_id          BIGINT NOT NULL,
		degree_in        INT NOT NULL DEFAULT 0,
		degree_out       INT NOT NULL DEFAULT 0,
		pagerank         DOUBLE PRECISION NOT NULL DEFAULT 0,
		authority        DOUBLE PRECISION NOT NULL DEFAULT 0,
		hub              DOUBLE PRECISION NOT NULL DEFAULT 0,
		last_computed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS graph_metrics_site_idx ON graph_metrics (site_id)`,
}
