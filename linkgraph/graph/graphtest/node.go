package graphtest

import (
	"errors"

	check "gopkg.in/check.v1"

	"github.com/mycok/linkrank/linkgraph/graph"
)

// TestNodeUpsert verifies the node upsert and lookup logic.
func (s *BaseSuite) TestNodeUpsert(c *check.C) {
	original := &graph.ContentNode{
		ID:     42,
		SiteID: 1,
		URL:    "https://example.com/pillar",
		Title:  "Pillar",
	}
	c.Assert(s.g.UpsertNode(original), check.IsNil)

	stored, err := s.g.FindNode(42)
	c.Assert(err, check.IsNil)
	c.Assert(stored, check.DeepEquals, original)

	// Update the existing node.
	updated := &graph.ContentNode{
		ID:     42,
		SiteID: 1,
		URL:    "https://example.com/pillar/",
		Title:  "Pillar (updated)",
	}
	c.Assert(s.g.UpsertNode(updated), check.IsNil)

	stored, err = s.g.FindNode(42)
	c.Assert(err, check.IsNil)
	c.Assert(stored, check.DeepEquals, updated)
}

// TestFindUnknownNode verifies that looking up a missing node yields
// ErrNotFound.
func (s *BaseSuite) TestFindUnknownNode(c *check.C) {
	_, err := s.g.FindNode(9999)
	c.Assert(errors.Is(err, graph.ErrNotFound), check.Equals, true)
}

// TestNodesAreScopedBySite ensures that the node iterator only returns the
// nodes of the requested site, ordered by id.
func (s *BaseSuite) TestNodesAreScopedBySite(c *check.C) {
	site1 := s.seedNodes(c, 1, 10, 5)
	_ = s.seedNodes(c, 2, 100, 3)

	it, err := s.g.Nodes(1)
	c.Assert(err, check.IsNil)

	var got []int64
	for it.Next() {
		n := it.Node()
		c.Assert(n.SiteID, check.Equals, int64(1))
		got = append(got, n.ID)
	}
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)
	c.Assert(got, check.DeepEquals, site1)

	it, err = s.g.Nodes(3)
	c.Assert(err, check.IsNil)
	c.Assert(it.Next(), check.Equals, false)
	c.Assert(it.Close(), check.IsNil)
}
