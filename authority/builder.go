/*
	authority package builds the link graph of a site from the stored nodes
	and edges, computes its centrality metrics and persists them.
*/

package authority

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mycok/linkrank/centrality"
	"github.com/mycok/linkrank/linkgraph/graph"
)

// Result summarizes a recompute.
type Result struct {
	Nodes         int `json:"nodes"`
	Edges         int `json:"edges"`
	ResolvedEdges int `json:"resolved_edges"`
}

// Builder computes and persists the centrality metrics of sites.
type Builder struct {
	cfg Config
}

// New returns a Builder configured with cfg.
func New(cfg Config) (*Builder, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("graph builder: config validation failed: %w", err)
	}

	return &Builder{cfg: cfg}, nil
}

// Recompute rebuilds the graph of siteID and replaces its metric rows. Every
// node of the site gets exactly one row, orphans included. A site without
// nodes has its metric rows cleared.
func (b *Builder) Recompute(ctx context.Context, siteID int64) (res Result, err error) {
	startedAt := b.cfg.Clock.Now()
	logger := b.cfg.Logger.WithField("site_id", siteID)

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		RecomputeTotal.WithLabelValues(outcome).Inc()
		RecomputeDuration.Observe(b.cfg.Clock.Now().Sub(startedAt).Seconds())
	}()

	// ctx is cancelled if the lock is lost while the site is processed.
	ctx, unlock, err := b.cfg.Locker.Lock(ctx, siteID)
	if err != nil {
		return Result{}, fmt.Errorf("recompute: %w", err)
	}
	defer func() {
		if unlockErr := unlock(); unlockErr != nil {
			logger.WithField("err", unlockErr).Warn("failed to release site lock")
		}
	}()

	if b.cfg.Resolver != nil {
		// Pending edges that fail to resolve stay unresolved until the
		// next pass; the metrics are computed from what is resolved.
		resolved, resolveErr := b.cfg.Resolver.ResolveSite(siteID)
		if resolveErr != nil {
			logger.WithField("err", resolveErr).Warn("failed to resolve pending edges")
		}
		res.ResolvedEdges = resolved
		ResolvedEdgesTotal.Add(float64(resolved))
	}

	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("recompute: %w", context.Cause(ctx))
	}

	tick := b.cfg.Clock.Now()
	g, err := b.loadGraph(siteID)
	if err != nil {
		return Result{}, fmt.Errorf("recompute: %w", err)
	}
	graphPopulationDuration := b.cfg.Clock.Now().Sub(tick)

	res.Nodes, res.Edges = g.NumNodes(), g.NumEdges()

	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("recompute: %w", context.Cause(ctx))
	}

	tick = b.cfg.Clock.Now()
	metrics, err := b.computeMetrics(siteID, g)
	if err != nil {
		return Result{}, fmt.Errorf("recompute: %w", err)
	}
	scoreCalculationDuration := b.cfg.Clock.Now().Sub(tick)

	// Another holder may own the site by now.
	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("recompute: %w", context.Cause(ctx))
	}

	tick = b.cfg.Clock.Now()
	if err := b.cfg.Metrics.ReplaceMetrics(siteID, metrics); err != nil {
		return Result{}, fmt.Errorf("recompute: %w", err)
	}
	scorePersistenceDuration := b.cfg.Clock.Now().Sub(tick)

	label := strconv.FormatInt(siteID, 10)
	SiteNodes.WithLabelValues(label).Set(float64(res.Nodes))
	SiteEdges.WithLabelValues(label).Set(float64(res.Edges))

	logger.WithFields(logrus.Fields{
		"nodes":                      res.Nodes,
		"edges":                      res.Edges,
		"resolved_edges":             res.ResolvedEdges,
		"graph_population_duration":  graphPopulationDuration,
		"score_calculation_duration": scoreCalculationDuration,
		"score_persistence_duration": scorePersistenceDuration,
		"total_processing_time":      b.cfg.Clock.Now().Sub(startedAt),
	}).Info("recomputed site metrics")

	return res, nil
}

// computeMetrics returns one metric row per node of g. An edge-free graph
// gets all-zero rows without running the centrality algorithms.
func (b *Builder) computeMetrics(siteID int64, g *centrality.Graph) ([]*graph.GraphMetric, error) {
	var (
		nodes      = g.Nodes()
		computedAt = b.cfg.Clock.Now().UTC()
		metrics    = make([]*graph.GraphMetric, 0, len(nodes))
	)

	if len(nodes) == 0 {
		return nil, nil
	}

	if g.NumEdges() == 0 {
		for _, id := range nodes {
			metrics = append(metrics, &graph.GraphMetric{
				NodeID:         id,
				SiteID:         siteID,
				LastComputedAt: computedAt,
			})
		}

		return metrics, nil
	}

	pageRank, iterations, err := centrality.PageRank(g, b.cfg.PageRank)
	if err != nil {
		return nil, err
	}

	auth, hub, err := centrality.HITS(g, b.cfg.HITS)
	if err != nil {
		return nil, err
	}

	b.cfg.Logger.WithFields(logrus.Fields{
		"site_id":             siteID,
		"pagerank_iterations": iterations,
	}).Debug("computed centrality scores")

	for _, id := range nodes {
		metrics = append(metrics, &graph.GraphMetric{
			NodeID:         id,
			SiteID:         siteID,
			DegreeIn:       g.InDegree(id),
			DegreeOut:      g.OutDegree(id),
			PageRank:       pageRank[id],
			Authority:      auth[id],
			Hub:            hub[id],
			LastComputedAt: computedAt,
		})
	}

	return metrics, nil
}

// loadGraph builds the centrality graph of siteID over its full node set.
func (b *Builder) loadGraph(siteID int64) (*centrality.Graph, error) {
	nodes, err := b.loadNodes(siteID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}

	g := centrality.NewGraph(ids)
	if len(ids) == 0 {
		return g, nil
	}

	pairs, err := b.loadEdgePairs(siteID, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range pairs {
		if err := g.AddEdge(p.src, p.dst); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (b *Builder) loadNodes(siteID int64) ([]*graph.ContentNode, error) {
	it, err := b.cfg.Catalog.Nodes(siteID)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}

	var nodes []*graph.ContentNode
	for it.Next() {
		nodes = append(nodes, it.Node())
	}

	if err := it.Error(); err != nil {
		_ = it.Close()

		return nil, fmt.Errorf("load nodes: %w", err)
	}

	if err := it.Close(); err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}

	return nodes, nil
}

type edgePair struct {
	src, dst int64
}

// loadEdgePairs returns the sorted, duplicate-free resolved edges of siteID
// whose endpoints both belong to ids. Self-loops are dropped.
func (b *Builder) loadEdgePairs(siteID int64, ids []int64) ([]edgePair, error) {
	known := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	it, err := b.cfg.Edges.SiteEdges(siteID)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	var (
		pairs []edgePair
		seen  = make(map[edgePair]struct{})
	)
	for it.Next() {
		e := it.Edge()

		to, resolved := e.Target()
		if !resolved || to == e.FromNode {
			continue
		}

		if _, ok := known[e.FromNode]; !ok {
			continue
		}
		if _, ok := known[to]; !ok {
			continue
		}

		p := edgePair{src: e.FromNode, dst: to}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}

	if err := it.Error(); err != nil {
		_ = it.Close()

		return nil, fmt.Errorf("load edges: %w", err)
	}

	if err := it.Close(); err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].src != pairs[j].src {
			return pairs[i].src < pairs[j].src
		}

		return pairs[i].dst < pairs[j].dst
	})

	return pairs, nil
}
