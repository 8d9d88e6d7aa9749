package graphtest

import (
	"fmt"

	check "gopkg.in/check.v1"

	"github.com/mycok/linkrank/linkgraph/graph"
)

// BaseSuite defines a set of re-usable store tests that can be executed
// against any concrete type that implements the graph.Graph interface.
type BaseSuite struct {
	g graph.Graph
}

// SetGraph configures the test-suite to run all tests against an instance
// of graph.Graph.
func (s *BaseSuite) SetGraph(g graph.Graph) {
	s.g = g
}

// seedNodes upserts count nodes for siteID with ids starting at firstID.
func (s *BaseSuite) seedNodes(c *check.C, siteID, firstID int64, count int) []int64 {
	ids := make([]int64, count)
	for i := 0; i < count; i++ {
		id := firstID + int64(i)
		err := s.g.UpsertNode(&graph.ContentNode{
			ID:     id,
			SiteID: siteID,
			URL:    fmt.Sprintf("https://site%d.example.com/page-%d", siteID, id),
			Title:  fmt.Sprintf("Page %d", id),
		})
		c.Assert(err, check.IsNil)

		ids[i] = id
	}

	return ids
}

// collectEdges drains an edge iterator and closes it.
func collectEdges(c *check.C) func(it graph.EdgeIterator, err error) []*graph.LinkEdge {
	return func(it graph.EdgeIterator, err error) []*graph.LinkEdge {
		c.Assert(err, check.IsNil)

		var edges []*graph.LinkEdge
		for it.Next() {
			edges = append(edges, it.Edge())
		}
		c.Assert(it.Error(), check.IsNil)
		c.Assert(it.Close(), check.IsNil)

		return edges
	}
}

// collectMetrics drains a metric iterator and closes it.
func collectMetrics(c *check.C) func(it graph.MetricIterator, err error) []*graph.GraphMetric {
	return func(it graph.MetricIterator, err error) []*graph.GraphMetric {
		c.Assert(err, check.IsNil)

		var metrics []*graph.GraphMetric
		for it.Next() {
			metrics = append(metrics, it.Metric())
		}
		c.Assert(it.Error(), check.IsNil)
		c.Assert(it.Close(), check.IsNil)

		return metrics
	}
}
