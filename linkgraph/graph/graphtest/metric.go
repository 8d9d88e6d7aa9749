package graphtest

import (
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/linkrank/linkgraph/graph"
)

// TestReplaceMetrics verifies that metric rows are replaced as a whole and
// that other sites are left untouched.
func (s *BaseSuite) TestReplaceMetrics(c *check.C) {
	site1 := s.seedNodes(c, 1, 1, 3)
	site2 := s.seedNodes(c, 2, 10, 1)

	computedAt := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	c.Assert(s.g.ReplaceMetrics(2, []*graph.GraphMetric{
		{NodeID: site2[0], PageRank: 1.0, LastComputedAt: computedAt},
	}), check.IsNil)

	var first []*graph.GraphMetric
	for i, id := range site1 {
		first = append(first, &graph.GraphMetric{
			NodeID:         id,
			DegreeIn:       i,
			DegreeOut:      i + 1,
			PageRank:       0.25 * float64(i+1),
			Authority:      0.5,
			Hub:            0.125,
			LastComputedAt: computedAt,
		})
	}
	c.Assert(s.g.ReplaceMetrics(1, first), check.IsNil)

	got := collectMetrics(c)(s.g.Metrics(1))
	c.Assert(got, check.HasLen, 3)
	for i, m := range got {
		c.Assert(m.NodeID, check.Equals, site1[i])
		c.Assert(m.SiteID, check.Equals, int64(1))
		c.Assert(m.DegreeIn, check.Equals, i)
		c.Assert(m.DegreeOut, check.Equals, i+1)
		c.Assert(m.PageRank, check.Equals, 0.25*float64(i+1))
		c.Assert(m.Authority, check.Equals, 0.5)
		c.Assert(m.Hub, check.Equals, 0.125)
		c.Assert(m.LastComputedAt.Equal(computedAt), check.Equals, true, check.Commentf(
			"expected %v; got %v", computedAt, m.LastComputedAt,
		))
	}

	// Replace with a smaller set; rows not present anymore must be gone.
	c.Assert(s.g.ReplaceMetrics(1, []*graph.GraphMetric{
		{NodeID: site1[1], PageRank: 1.0, LastComputedAt: computedAt.Add(time.Hour)},
	}), check.IsNil)

	got = collectMetrics(c)(s.g.Metrics(1))
	c.Assert(got, check.HasLen, 1)
	c.Assert(got[0].NodeID, check.Equals, site1[1])
	c.Assert(got[0].DegreeIn, check.Equals, 0)
	c.Assert(got[0].PageRank, check.Equals, 1.0)

	c.Assert(collectMetrics(c)(s.g.Metrics(2)), check.HasLen, 1)
}

// TestReplaceMetricsWithEmptySetClearsSite ensures that an empty replacement
// clears every metric row of the site.
func (s *BaseSuite) TestReplaceMetricsWithEmptySetClearsSite(c *check.C) {
	ids := s.seedNodes(c, 1, 1, 2)

	c.Assert(s.g.ReplaceMetrics(1, []*graph.GraphMetric{
		{NodeID: ids[0], LastComputedAt: time.Now().UTC()},
		{NodeID: ids[1], LastComputedAt: time.Now().UTC()},
	}), check.IsNil)
	c.Assert(s.g.ReplaceMetrics(1, nil), check.IsNil)

	c.Assert(collectMetrics(c)(s.g.Metrics(1)), check.HasLen, 0)
}

// TestReplaceMetricsOfMovedNode verifies that a node whose site changed has
// its metric row moved along with it.
func (s *BaseSuite) TestReplaceMetricsOfMovedNode(c *check.C) {
	ids := s.seedNodes(c, 1, 1, 2)
	computedAt := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	c.Assert(s.g.ReplaceMetrics(1, []*graph.GraphMetric{
		{NodeID: ids[0], PageRank: 0.5, LastComputedAt: computedAt},
		{NodeID: ids[1], PageRank: 0.5, LastComputedAt: computedAt},
	}), check.IsNil)

	// Node 2 is re-crawled under site 2.
	c.Assert(s.g.UpsertNode(&graph.ContentNode{
		ID:     ids[1],
		SiteID: 2,
		URL:    "https://site2.example.com/page-2",
	}), check.IsNil)

	c.Assert(s.g.ReplaceMetrics(2, []*graph.GraphMetric{
		{NodeID: ids[1], PageRank: 1.0, LastComputedAt: computedAt.Add(time.Hour)},
	}), check.IsNil)

	got := collectMetrics(c)(s.g.Metrics(2))
	c.Assert(got, check.HasLen, 1)
	c.Assert(got[0].NodeID, check.Equals, ids[1])
	c.Assert(got[0].SiteID, check.Equals, int64(2))
	c.Assert(got[0].PageRank, check.Equals, 1.0)

	got = collectMetrics(c)(s.g.Metrics(1))
	c.Assert(got, check.HasLen, 1)
	c.Assert(got[0].NodeID, check.Equals, ids[0])
}
