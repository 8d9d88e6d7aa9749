package sqlite

import (
	"path/filepath"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/linkgraph/graph/graphtest"
)

var _ = check.Suite(new(sqliteGraphTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

// sqliteGraphTestSuite runs the BaseSuite tests against a fresh database
// file per test.
type sqliteGraphTestSuite struct {
	g *Graph
	graphtest.BaseSuite
}

func (s *sqliteGraphTestSuite) SetUpTest(c *check.C) {
	g, err := NewGraph(filepath.Join(c.MkDir(), "linkgraph.db"))
	c.Assert(err, check.IsNil)

	s.g = g
	s.SetGraph(g)
}

func (s *sqliteGraphTestSuite) TearDownTest(c *check.C) {
	if s.g != nil {
		c.Assert(s.g.Close(), check.IsNil)
	}
}

// TestReopenKeepsData verifies that data survives closing and reopening the
// database file.
func (s *sqliteGraphTestSuite) TestReopenKeepsData(c *check.C) {
	path := filepath.Join(c.MkDir(), "reopen.db")

	g, err := NewGraph(path)
	c.Assert(err, check.IsNil)
	c.Assert(g.UpsertNode(&graph.ContentNode{ID: 7, SiteID: 3, URL: "https://a.example.com/"}), check.IsNil)
	c.Assert(g.Close(), check.IsNil)

	g, err = NewGraph(path)
	c.Assert(err, check.IsNil)
	defer func() { c.Assert(g.Close(), check.IsNil) }()

	n, err := g.FindNode(7)
	c.Assert(err, check.IsNil)
	c.Assert(n.SiteID, check.Equals, int64(3))
	c.Assert(n.URL, check.Equals, "https://a.example.com/")
}
