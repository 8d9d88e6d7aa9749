package authority

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	check "gopkg.in/check.v1"

	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/linkgraph/graph/mocks"
	"github.com/mycok/linkrank/linkgraph/store/memory"
	"github.com/mycok/linkrank/resolver"
	"github.com/mycok/linkrank/sitelock"
)

var (
	_ = check.Suite(new(configTestSuite))
	_ = check.Suite(new(builderTestSuite))
)

func Test(t *testing.T) {
	check.TestingT(t)
}

type configTestSuite struct{}

func (s *configTestSuite) TestConfigValidation(c *check.C) {
	g := memory.NewInMemoryGraph()
	originalConfig := Config{Catalog: g, Edges: g, Metrics: g}

	config := originalConfig
	c.Assert(config.validate(), check.IsNil)
	c.Assert(config.Clock, check.Not(check.IsNil), check.Commentf("default clock was not assigned"))
	c.Assert(config.Logger, check.Not(check.IsNil), check.Commentf("default logger was not assigned"))
	c.Assert(config.Locker, check.Not(check.IsNil), check.Commentf("default locker was not assigned"))

	config = originalConfig
	config.Catalog = nil
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*content catalog not provided.*")

	config = originalConfig
	config.Edges = nil
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*edge store not provided.*")

	config = originalConfig
	config.Metrics = nil
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*metric store not provided.*")

	config = originalConfig
	config.PageRank.DampingFactor = 2
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*damping factor must be in the range.*")

	config = originalConfig
	config.HITS.Iterations = -1
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*iterations must be > 0.*")
}

type builderTestSuite struct {
	g   *memory.InMemoryGraph
	clk *testclock.Clock
	b   *Builder
}

var computedAt = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func (s *builderTestSuite) SetUpTest(c *check.C) {
	s.g = memory.NewInMemoryGraph()
	s.clk = testclock.NewClock(computedAt)
	s.b = s.newBuilder(c, Config{})
}

func (s *builderTestSuite) newBuilder(c *check.C, cfg Config) *Builder {
	if cfg.Catalog == nil {
		cfg.Catalog = s.g
	}
	if cfg.Edges == nil {
		cfg.Edges = s.g
	}
	if cfg.Metrics == nil {
		cfg.Metrics = s.g
	}
	cfg.Clock = s.clk

	b, err := New(cfg)
	c.Assert(err, check.IsNil)

	return b
}

func (s *builderTestSuite) seedNodes(c *check.C, siteID int64, ids ...int64) {
	for _, id := range ids {
		c.Assert(s.g.UpsertNode(&graph.ContentNode{
			ID:     id,
			SiteID: siteID,
			URL:    "https://example.com/" + string(rune('a'+id)),
			Title:  "node",
		}), check.IsNil)
	}
}

func resolvedEdge(to int64, anchor string) *graph.LinkEdge {
	return &graph.LinkEdge{
		ToNode:     to,
		ToURL:      "https://example.com/" + string(rune('a'+to)),
		AnchorText: anchor,
		Kind:       graph.LinkResolved,
	}
}

// seedCycle stores the 1 -> 2 -> 3 -> 1 cycle plus a self-loop, a repeated
// link, an unresolved and an external link. Node 4 is an orphan.
func (s *builderTestSuite) seedCycle(c *check.C) {
	s.seedNodes(c, 1, 1, 2, 3, 4)

	c.Assert(s.g.ReplaceEdges(1, []*graph.LinkEdge{
		resolvedEdge(2, "first"),
		resolvedEdge(2, "second"),
		resolvedEdge(1, "self"),
	}), check.IsNil)
	c.Assert(s.g.ReplaceEdges(2, []*graph.LinkEdge{
		resolvedEdge(3, ""),
		{ToURL: "https://example.com/missing", Kind: graph.LinkUnresolved},
	}), check.IsNil)
	c.Assert(s.g.ReplaceEdges(3, []*graph.LinkEdge{
		resolvedEdge(1, ""),
		{ToURL: "https://other.org/", Kind: graph.LinkExternal},
	}), check.IsNil)
}

func (s *builderTestSuite) TestRecompute(c *check.C) {
	s.seedCycle(c)

	res, err := s.b.Recompute(context.TODO(), 1)
	c.Assert(err, check.IsNil)
	c.Assert(res, check.DeepEquals, Result{Nodes: 4, Edges: 3})

	metrics := s.metricsOf(c, 1)
	c.Assert(metrics, check.HasLen, 4)

	orphanRank := 0.0375 / (1 - 0.85/4)
	var sum float64
	for _, m := range metrics {
		sum += m.PageRank
		c.Assert(m.SiteID, check.Equals, int64(1))
		c.Assert(m.LastComputedAt.Equal(computedAt), check.Equals, true)

		if m.NodeID == 4 {
			c.Assert(m.DegreeIn, check.Equals, 0)
			c.Assert(m.DegreeOut, check.Equals, 0)
			c.Assert(math.Abs(m.PageRank-orphanRank) < 1e-4, check.Equals, true)
			c.Assert(m.Authority, check.Equals, 0.0)
			c.Assert(m.Hub, check.Equals, 0.0)
			continue
		}

		c.Assert(m.DegreeIn, check.Equals, 1, check.Commentf("node %d", m.NodeID))
		c.Assert(m.DegreeOut, check.Equals, 1, check.Commentf("node %d", m.NodeID))
		c.Assert(math.Abs(m.PageRank-(1-orphanRank)/3) < 1e-4, check.Equals, true)
		c.Assert(math.Abs(m.Authority-1/math.Sqrt(3)) < 1e-9, check.Equals, true)
		c.Assert(math.Abs(m.Hub-1/math.Sqrt(3)) < 1e-9, check.Equals, true)
	}
	c.Assert(math.Abs(1-sum) <= 1e-3, check.Equals, true)
}

func (s *builderTestSuite) TestRecomputeIsIdempotent(c *check.C) {
	s.seedCycle(c)

	_, err := s.b.Recompute(context.TODO(), 1)
	c.Assert(err, check.IsNil)
	first := s.metricsOf(c, 1)

	_, err = s.b.Recompute(context.TODO(), 1)
	c.Assert(err, check.IsNil)
	second := s.metricsOf(c, 1)

	c.Assert(second, check.DeepEquals, first)
}

func (s *builderTestSuite) TestOrphanSite(c *check.C) {
	s.seedNodes(c, 1, 1, 2, 3)

	res, err := s.b.Recompute(context.TODO(), 1)
	c.Assert(err, check.IsNil)
	c.Assert(res, check.DeepEquals, Result{Nodes: 3})

	metrics := s.metricsOf(c, 1)
	c.Assert(metrics, check.HasLen, 3)
	for _, m := range metrics {
		c.Assert(*m, check.DeepEquals, graph.GraphMetric{
			NodeID:         m.NodeID,
			SiteID:         1,
			LastComputedAt: computedAt,
		})
	}
}

func (s *builderTestSuite) TestSiteWithoutNodesClearsMetrics(c *check.C) {
	c.Assert(s.g.ReplaceMetrics(9, []*graph.GraphMetric{
		{NodeID: 100, PageRank: 1, LastComputedAt: computedAt},
	}), check.IsNil)

	res, err := s.b.Recompute(context.TODO(), 9)
	c.Assert(err, check.IsNil)
	c.Assert(res, check.DeepEquals, Result{})
	c.Assert(s.metricsOf(c, 9), check.HasLen, 0)
}

func (s *builderTestSuite) TestRecomputeResolvesPendingEdges(c *check.C) {
	s.seedNodes(c, 1, 1, 2)
	c.Assert(s.g.ReplaceEdges(1, []*graph.LinkEdge{
		{ToURL: "/c", Kind: graph.LinkUnresolved},
	}), check.IsNil)

	r, err := resolver.New(resolver.Config{Edges: s.g, Catalog: s.g})
	c.Assert(err, check.IsNil)

	b := s.newBuilder(c, Config{Resolver: r})
	res, err := b.Recompute(context.TODO(), 1)
	c.Assert(err, check.IsNil)
	c.Assert(res, check.DeepEquals, Result{Nodes: 2, Edges: 1, ResolvedEdges: 1})

	metrics := s.metricsOf(c, 1)
	c.Assert(metrics[1].NodeID, check.Equals, int64(2))
	c.Assert(metrics[1].DegreeIn, check.Equals, 1)
}

func (s *builderTestSuite) TestPersistenceFailureAbortsRecompute(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	s.seedCycle(c)

	store := mocks.NewMockGraph(ctrl)
	store.EXPECT().ReplaceMetrics(int64(1), gomock.Any()).DoAndReturn(
		func(_ int64, metrics []*graph.GraphMetric) error {
			c.Assert(metrics, check.HasLen, 4)

			return errors.New("connection reset")
		},
	)

	failures := testutil.ToFloat64(RecomputeTotal.WithLabelValues("failure"))

	b := s.newBuilder(c, Config{Metrics: store})
	_, err := b.Recompute(context.TODO(), 1)
	c.Assert(err, check.ErrorMatches, "recompute: connection reset")

	c.Assert(testutil.ToFloat64(RecomputeTotal.WithLabelValues("failure")), check.Equals, failures+1)
}

func (s *builderTestSuite) TestRecomputeWaitsForSiteLock(c *check.C) {
	locker := sitelock.NewLocal()
	_, unlock, err := locker.Lock(context.TODO(), 1)
	c.Assert(err, check.IsNil)
	defer func() { _ = unlock() }()

	b := s.newBuilder(c, Config{Locker: locker})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = b.Recompute(ctx, 1)
	c.Assert(errors.Is(err, context.DeadlineExceeded), check.Equals, true)
}

func (s *builderTestSuite) TestLostSiteLockSkipsPersistence(c *check.C) {
	ctrl := gomock.NewController(c)
	defer ctrl.Finish()

	s.seedCycle(c)

	// ReplaceMetrics must not be reached.
	store := mocks.NewMockGraph(ctrl)

	b := s.newBuilder(c, Config{Metrics: store, Locker: lostLocker{}})
	_, err := b.Recompute(context.TODO(), 1)
	c.Assert(errors.Is(err, sitelock.ErrLockLost), check.Equals, true)
}

func (s *builderTestSuite) TestResolverFailureDoesNotAbortRecompute(c *check.C) {
	s.seedCycle(c)

	b := s.newBuilder(c, Config{Resolver: failingResolver{resolved: 1}})
	res, err := b.Recompute(context.TODO(), 1)
	c.Assert(err, check.IsNil)
	c.Assert(res, check.DeepEquals, Result{Nodes: 4, Edges: 3, ResolvedEdges: 1})
	c.Assert(s.metricsOf(c, 1), check.HasLen, 4)
}

// lostLocker hands out locks that are already lost.
type lostLocker struct{}

func (lostLocker) Lock(ctx context.Context, _ int64) (context.Context, sitelock.Unlock, error) {
	lockCtx, cancel := context.WithCancelCause(ctx)
	cancel(sitelock.ErrLockLost)

	return lockCtx, func() error { return sitelock.ErrLockLost }, nil
}

type failingResolver struct {
	resolved int
}

func (r failingResolver) ResolveSite(int64) (int, error) {
	return r.resolved, errors.New("edge store unavailable")
}

func (s *builderTestSuite) TestExport(c *check.C) {
	s.seedCycle(c)

	_, err := s.b.Recompute(context.TODO(), 1)
	c.Assert(err, check.IsNil)

	out, err := s.b.Export(1, true)
	c.Assert(err, check.IsNil)
	c.Assert(out.Nodes, check.HasLen, 4)
	c.Assert(out.Edges, check.DeepEquals, []ExportEdge{
		{Source: 1, Target: 2},
		{Source: 2, Target: 3},
		{Source: 3, Target: 1},
	})
	c.Assert(out.Meta.GeneratedAt.Equal(computedAt), check.Equals, true)
	c.Assert(out.Meta.SiteID, check.Equals, int64(1))
	for _, n := range out.Nodes {
		c.Assert(n.Metrics, check.NotNil)
	}
	c.Assert(out.Nodes[0].Metrics.DegreeOut, check.Equals, 1)

	out, err = s.b.Export(1, false)
	c.Assert(err, check.IsNil)

	raw, err := json.Marshal(out.Nodes[0])
	c.Assert(err, check.IsNil)
	c.Assert(string(raw), check.Equals, `{"id":1,"url":"https://example.com/b","title":"node"}`)
}

func (s *builderTestSuite) TestExportZeroFillsMissingMetrics(c *check.C) {
	s.seedNodes(c, 1, 1)

	out, err := s.b.Export(1, true)
	c.Assert(err, check.IsNil)
	c.Assert(out.Nodes, check.HasLen, 1)
	c.Assert(*out.Nodes[0].Metrics, check.DeepEquals, NodeMetrics{})
	c.Assert(out.Edges, check.HasLen, 0)

	raw, err := json.Marshal(out)
	c.Assert(err, check.IsNil)
	c.Assert(string(raw), check.Matches, `\{"nodes":\[\{"id":1,"url":"https://example.com/b","title":"node","metrics":\{"degree_in":0,"degree_out":0,"pagerank":0,"authority":0,"hub":0\}\}\],"edges":\[\],"meta":.*`)
}

func (s *builderTestSuite) metricsOf(c *check.C, siteID int64) []*graph.GraphMetric {
	it, err := s.g.Metrics(siteID)
	c.Assert(err, check.IsNil)

	var metrics []*graph.GraphMetric
	for it.Next() {
		metrics = append(metrics, it.Metric())
	}
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)

	return metrics
}
