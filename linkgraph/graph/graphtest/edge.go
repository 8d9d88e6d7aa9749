package graphtest

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	check "gopkg.in/check.v1"

	"github.com/mycok/linkrank/linkgraph/graph"
)

// TestReplaceEdges verifies that a snapshot is stored with its classification
// and metadata intact.
func (s *BaseSuite) TestReplaceEdges(c *check.C) {
	ids := s.seedNodes(c, 1, 1, 2)

	edges := []*graph.LinkEdge{
		{
			ToNode:     ids[1],
			ToURL:      "https://site1.example.com/page-2",
			AnchorText: "page two",
			Kind:       graph.LinkResolved,
		},
		{
			ToURL:      "https://site1.example.com/missing",
			AnchorText: "missing",
			Kind:       graph.LinkUnresolved,
		},
		{
			ToURL:      "https://elsewhere.org/",
			AnchorText: "sponsor",
			Rel:        []string{"sponsored", "noopener"},
			NoFollow:   true,
			Kind:       graph.LinkExternal,
		},
	}
	c.Assert(s.g.ReplaceEdges(ids[0], edges), check.IsNil)

	got := sortedByURL(collectEdges(c)(s.g.Edges(ids[0])))
	c.Assert(got, check.HasLen, 3)

	c.Assert(got[0].ToURL, check.Equals, "https://elsewhere.org/")
	c.Assert(got[0].Kind, check.Equals, graph.LinkExternal)
	c.Assert(got[0].IsInternal(), check.Equals, false)
	c.Assert(got[0].NoFollow, check.Equals, true)
	c.Assert(got[0].Rel, check.DeepEquals, []string{"sponsored", "noopener"})

	c.Assert(got[1].ToURL, check.Equals, "https://site1.example.com/missing")
	c.Assert(got[1].Kind, check.Equals, graph.LinkUnresolved)
	_, resolved := got[1].Target()
	c.Assert(resolved, check.Equals, false)

	c.Assert(got[2].Kind, check.Equals, graph.LinkResolved)
	to, resolved := got[2].Target()
	c.Assert(resolved, check.Equals, true)
	c.Assert(to, check.Equals, ids[1])
	c.Assert(got[2].AnchorText, check.Equals, "page two")
	c.Assert(got[2].Rel, check.IsNil)

	for _, e := range got {
		c.Assert(e.FromNode, check.Equals, ids[0])
		c.Assert(e.ID, check.Equals, graph.EdgeID(ids[0], e.ToURL, e.AnchorText))
	}
}

// TestReplaceEdgesDropsPreviousSnapshot ensures that replacing the edges of a
// node removes the edges of the previous snapshot.
func (s *BaseSuite) TestReplaceEdgesDropsPreviousSnapshot(c *check.C) {
	ids := s.seedNodes(c, 1, 1, 3)

	c.Assert(s.g.ReplaceEdges(ids[0], []*graph.LinkEdge{
		{ToNode: ids[1], ToURL: "https://site1.example.com/page-2", Kind: graph.LinkResolved},
		{ToNode: ids[2], ToURL: "https://site1.example.com/page-3", Kind: graph.LinkResolved},
	}), check.IsNil)

	c.Assert(s.g.ReplaceEdges(ids[0], []*graph.LinkEdge{
		{ToNode: ids[2], ToURL: "https://site1.example.com/page-3", Kind: graph.LinkResolved},
	}), check.IsNil)

	got := collectEdges(c)(s.g.Edges(ids[0]))
	c.Assert(got, check.HasLen, 1)
	c.Assert(got[0].ToNode, check.Equals, ids[2])

	// An empty snapshot clears the node's edges.
	c.Assert(s.g.ReplaceEdges(ids[0], nil), check.IsNil)
	c.Assert(collectEdges(c)(s.g.Edges(ids[0])), check.HasLen, 0)
}

// TestReplaceEdgesCollapsesDuplicates ensures that the (from, to, url, anchor)
// uniqueness rule is enforced.
func (s *BaseSuite) TestReplaceEdgesCollapsesDuplicates(c *check.C) {
	ids := s.seedNodes(c, 1, 1, 2)

	dup := func() *graph.LinkEdge {
		return &graph.LinkEdge{
			ToNode:     ids[1],
			ToURL:      "https://site1.example.com/page-2",
			AnchorText: "same",
			Kind:       graph.LinkResolved,
		}
	}
	c.Assert(s.g.ReplaceEdges(ids[0], []*graph.LinkEdge{dup(), dup()}), check.IsNil)
	c.Assert(collectEdges(c)(s.g.Edges(ids[0])), check.HasLen, 1)

	// Replaying the same snapshot is a no-op.
	c.Assert(s.g.ReplaceEdges(ids[0], []*graph.LinkEdge{dup()}), check.IsNil)
	got := collectEdges(c)(s.g.Edges(ids[0]))
	c.Assert(got, check.HasLen, 1)
	c.Assert(got[0].ID, check.Equals, graph.EdgeID(ids[0], "https://site1.example.com/page-2", "same"))
}

// TestReplaceEdgesForUnknownNode verifies that edges cannot originate from a
// node that is not part of the catalog.
func (s *BaseSuite) TestReplaceEdgesForUnknownNode(c *check.C) {
	err := s.g.ReplaceEdges(777, []*graph.LinkEdge{
		{ToURL: "https://example.com/", Kind: graph.LinkUnresolved},
	})
	c.Assert(errors.Is(err, graph.ErrUnknownNode), check.Equals, true)
}

// TestSiteEdges ensures that the site edge iterator only returns edges that
// originate from the site's nodes, self-loops included.
func (s *BaseSuite) TestSiteEdges(c *check.C) {
	site1 := s.seedNodes(c, 1, 1, 3)
	site2 := s.seedNodes(c, 2, 10, 2)

	for _, from := range site1 {
		c.Assert(s.g.ReplaceEdges(from, []*graph.LinkEdge{
			{ToNode: from, ToURL: fmt.Sprintf("https://site1.example.com/page-%d", from), Kind: graph.LinkResolved},
			{ToURL: "https://external.org/", Kind: graph.LinkExternal},
		}), check.IsNil)
	}
	c.Assert(s.g.ReplaceEdges(site2[0], []*graph.LinkEdge{
		{ToNode: site2[1], ToURL: "https://site2.example.com/page-11", Kind: graph.LinkResolved},
	}), check.IsNil)

	got := collectEdges(c)(s.g.SiteEdges(1))
	c.Assert(got, check.HasLen, 6)
	for _, e := range got {
		c.Assert(e.FromNode >= site1[0] && e.FromNode <= site1[2], check.Equals, true)
	}

	got = collectEdges(c)(s.g.SiteEdges(2))
	c.Assert(got, check.HasLen, 1)
	c.Assert(got[0].ToNode, check.Equals, site2[1])
}

// TestResolveEdge verifies that only unresolved edges get a target assigned.
func (s *BaseSuite) TestResolveEdge(c *check.C) {
	ids := s.seedNodes(c, 1, 1, 3)

	unresolved := &graph.LinkEdge{ToURL: "/page-2", Kind: graph.LinkUnresolved}
	c.Assert(s.g.ReplaceEdges(ids[0], []*graph.LinkEdge{unresolved}), check.IsNil)
	edgeID := graph.EdgeID(ids[0], "/page-2", "")

	c.Assert(s.g.ResolveEdge(edgeID, ids[1]), check.IsNil)

	got := collectEdges(c)(s.g.Edges(ids[0]))
	c.Assert(got, check.HasLen, 1)
	c.Assert(got[0].Kind, check.Equals, graph.LinkResolved)
	c.Assert(got[0].ToNode, check.Equals, ids[1])

	// A resolved edge keeps its original target.
	c.Assert(s.g.ResolveEdge(edgeID, ids[2]), check.IsNil)
	got = collectEdges(c)(s.g.Edges(ids[0]))
	c.Assert(got[0].ToNode, check.Equals, ids[1])

	err := s.g.ResolveEdge(uuid.New(), ids[1])
	c.Assert(errors.Is(err, graph.ErrNotFound), check.Equals, true)
}

// TestResolveEdgeToUnknownNode verifies that an edge cannot be pointed at a
// node that does not exist.
func (s *BaseSuite) TestResolveEdgeToUnknownNode(c *check.C) {
	ids := s.seedNodes(c, 1, 1, 1)

	c.Assert(s.g.ReplaceEdges(ids[0], []*graph.LinkEdge{
		{ToURL: "/nowhere", Kind: graph.LinkUnresolved},
	}), check.IsNil)

	err := s.g.ResolveEdge(graph.EdgeID(ids[0], "/nowhere", ""), 4242)
	c.Assert(errors.Is(err, graph.ErrUnknownNode), check.Equals, true)
}

// TestExternalEdgesAreNeverResolved ensures that external edges keep their
// classification.
func (s *BaseSuite) TestExternalEdgesAreNeverResolved(c *check.C) {
	ids := s.seedNodes(c, 1, 1, 2)

	c.Assert(s.g.ReplaceEdges(ids[0], []*graph.LinkEdge{
		{ToURL: "https://external.org/page-2", Kind: graph.LinkExternal},
	}), check.IsNil)

	c.Assert(s.g.ResolveEdge(graph.EdgeID(ids[0], "https://external.org/page-2", ""), ids[1]), check.IsNil)

	got := collectEdges(c)(s.g.Edges(ids[0]))
	c.Assert(got[0].Kind, check.Equals, graph.LinkExternal)
}

// TestConcurrentEdgeIterators ensures that multiple clients can concurrently
// access the store without causing data races.
func (s *BaseSuite) TestConcurrentEdgeIterators(c *check.C) {
	var (
		wg           sync.WaitGroup
		numIterators = 10
		numEdges     = 100
	)

	ids := s.seedNodes(c, 1, 1, numEdges+1)

	var edges []*graph.LinkEdge
	for _, to := range ids[1:] {
		edges = append(edges, &graph.LinkEdge{
			ToNode: to,
			ToURL:  fmt.Sprintf("https://site1.example.com/page-%d", to),
			Kind:   graph.LinkResolved,
		})
	}
	c.Assert(s.g.ReplaceEdges(ids[0], edges), check.IsNil)

	wg.Add(numIterators)

	for i := 0; i < numIterators; i++ {
		go func(id int) {
			defer wg.Done()

			comment := check.Commentf("iterator %d", id)
			seen := make(map[uuid.UUID]bool)

			it, err := s.g.SiteEdges(1)
			c.Assert(err, check.IsNil, comment)

			defer func() {
				c.Assert(it.Close(), check.IsNil, comment)
			}()

			for it.Next() {
				e := it.Edge()
				c.Assert(seen[e.ID], check.Equals, false, check.Commentf(
					"iterator %d iterated the same edge twice", id,
				))
				seen[e.ID] = true
			}

			c.Assert(seen, check.HasLen, numEdges, comment)
			c.Assert(it.Error(), check.IsNil, comment)
		}(i)
	}

	doneCh := make(chan struct{})

	go func() {
		wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh: // Test completed successfully
	case <-time.After(10 * time.Second):
		c.Fatal("Timed out while waiting for the tests to complete")
	}
}

func sortedByURL(edges []*graph.LinkEdge) []*graph.LinkEdge {
	sort.Slice(edges, func(i, j int) bool { return edges[i].ToURL < edges[j].ToURL })

	return edges
}
