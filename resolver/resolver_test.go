package resolver

import (
	"sort"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/linkrank/extractor"
	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/linkgraph/store/memory"
)

var (
	_ = check.Suite(new(indexTestSuite))
	_ = check.Suite(new(resolverTestSuite))
)

func Test(t *testing.T) {
	check.TestingT(t)
}

type indexTestSuite struct{}

func (s *indexTestSuite) TestLookupWithTrailingSlashVariants(c *check.C) {
	idx := NewIndex([]*graph.ContentNode{
		{ID: 1, URL: "https://example.com"},
		{ID: 2, URL: "https://example.com/post"},
		{ID: 3, URL: "https://example.com/guides/"},
		{ID: 4, URL: "https://example.com/post"},
		{ID: 5, URL: "https://example.com/post/"},
	})

	specs := []struct {
		path  string
		expID int64
		found bool
	}{
		{"/", 1, true},
		{"", 1, true},
		{"/post", 2, true},
		{"/post/", 5, true},
		{"/guides", 3, true},
		{"/guides/", 3, true},
		{"/missing", 0, false},
	}

	for _, spec := range specs {
		id, found := idx.Lookup(spec.path)
		c.Assert(found, check.Equals, spec.found, check.Commentf("path %q", spec.path))
		c.Assert(id, check.Equals, spec.expID, check.Commentf("path %q", spec.path))
	}
}

func (s *indexTestSuite) TestBuildIndexFromCatalog(c *check.C) {
	g := memory.NewInMemoryGraph()
	c.Assert(g.UpsertNode(&graph.ContentNode{ID: 1, SiteID: 1, URL: "https://a.example.com/x"}), check.IsNil)
	c.Assert(g.UpsertNode(&graph.ContentNode{ID: 2, SiteID: 2, URL: "https://b.example.com/y"}), check.IsNil)

	idx, err := BuildIndex(g, 1)
	c.Assert(err, check.IsNil)

	id, found := idx.Lookup("/x")
	c.Assert(found, check.Equals, true)
	c.Assert(id, check.Equals, int64(1))

	_, found = idx.Lookup("/y")
	c.Assert(found, check.Equals, false)
}

type resolverTestSuite struct {
	g *memory.InMemoryGraph
	r *Resolver
}

func (s *resolverTestSuite) SetUpTest(c *check.C) {
	s.g = memory.NewInMemoryGraph()
	for _, n := range []*graph.ContentNode{
		{ID: 1, SiteID: 1, URL: "https://example.com/"},
		{ID: 2, SiteID: 1, URL: "https://example.com/pillar"},
		{ID: 3, SiteID: 1, URL: "https://example.com/posts/deep-dive/"},
	} {
		c.Assert(s.g.UpsertNode(n), check.IsNil)
	}

	r, err := New(Config{Edges: s.g, Catalog: s.g})
	c.Assert(err, check.IsNil)
	s.r = r
}

func (s *resolverTestSuite) TestMissingCollaborators(c *check.C) {
	_, err := New(Config{})
	c.Assert(err, check.ErrorMatches, "(?s).*edge store not provided.*content catalog not provided.*")
}

func (s *resolverTestSuite) TestSnapshotResolvesInternalLinks(c *check.C) {
	idx, err := BuildIndex(s.g, 1)
	c.Assert(err, check.IsNil)

	res, err := s.r.Snapshot(idx, Page{
		NodeID: 2,
		URL:    "https://example.com/pillar",
		HTML: `
<p>Read the <a href="/posts/deep-dive">deep dive</a> or
<a href="/missing">this</a>, also <a href="https://other.org/" rel="nofollow">elsewhere</a>.</p>`,
	})
	c.Assert(err, check.IsNil)
	c.Assert(res, check.DeepEquals, Result{Links: 3, Internal: 2, Resolved: 1, Unresolved: 1})

	edges := s.edgesOf(c, 2)
	c.Assert(edges, check.HasLen, 3)

	c.Assert(edges[0].ToURL, check.Equals, "https://example.com/missing")
	c.Assert(edges[0].Kind, check.Equals, graph.LinkUnresolved)

	c.Assert(edges[1].ToURL, check.Equals, "https://example.com/posts/deep-dive")
	c.Assert(edges[1].Kind, check.Equals, graph.LinkResolved)
	c.Assert(edges[1].ToNode, check.Equals, int64(3))
	c.Assert(edges[1].AnchorText, check.Equals, "deep dive")

	c.Assert(edges[2].ToURL, check.Equals, "https://other.org/")
	c.Assert(edges[2].Kind, check.Equals, graph.LinkExternal)
	c.Assert(edges[2].NoFollow, check.Equals, true)
}

func (s *resolverTestSuite) TestSnapshotIsIdempotent(c *check.C) {
	idx, err := BuildIndex(s.g, 1)
	c.Assert(err, check.IsNil)

	page := Page{
		NodeID: 1,
		URL:    "https://example.com/",
		HTML:   `<a href="/pillar">Pillar</a><a href="/pillar">Pillar</a><a href="/pillar/">Pillar</a>`,
	}

	_, err = s.r.Snapshot(idx, page)
	c.Assert(err, check.IsNil)
	first := s.edgesOf(c, 1)

	_, err = s.r.Snapshot(idx, page)
	c.Assert(err, check.IsNil)
	second := s.edgesOf(c, 1)

	c.Assert(second, check.DeepEquals, first)
	c.Assert(second, check.HasLen, 2)
	for _, e := range second {
		c.Assert(e.ToNode, check.Equals, int64(2))
	}
}

func (s *resolverTestSuite) TestSnapshotForUnknownNode(c *check.C) {
	idx := NewIndex(nil)

	_, err := s.r.Snapshot(idx, Page{NodeID: 42, URL: "https://example.com/x", HTML: `<a href="/y">y</a>`})
	c.Assert(err, check.ErrorMatches, ".*unknown node.*")
}

func (s *resolverTestSuite) TestResolveOnly(c *check.C) {
	c.Assert(s.g.ReplaceEdges(2, []*graph.LinkEdge{
		{ToURL: "/posts/deep-dive", AnchorText: "relative", Kind: graph.LinkUnresolved},
		{ToURL: "https://example.com/later", Kind: graph.LinkUnresolved},
		{ToURL: "https://other.org/posts/deep-dive", Kind: graph.LinkExternal},
	}), check.IsNil)

	idx, err := BuildIndex(s.g, 1)
	c.Assert(err, check.IsNil)

	page := Page{NodeID: 2, URL: "https://example.com/pillar"}
	resolved, err := s.r.ResolveOnly(idx, page)
	c.Assert(err, check.IsNil)
	c.Assert(resolved, check.Equals, 1)

	// The target of the second edge becomes known later on.
	c.Assert(s.g.UpsertNode(&graph.ContentNode{ID: 4, SiteID: 1, URL: "https://example.com/later/"}), check.IsNil)
	idx, err = BuildIndex(s.g, 1)
	c.Assert(err, check.IsNil)

	resolved, err = s.r.ResolveOnly(idx, page)
	c.Assert(err, check.IsNil)
	c.Assert(resolved, check.Equals, 1)

	resolved, err = s.r.ResolveOnly(idx, page)
	c.Assert(err, check.IsNil)
	c.Assert(resolved, check.Equals, 0)

	edges := s.edgesOf(c, 2)
	c.Assert(edges, check.HasLen, 3)
	c.Assert(edges[0].Kind, check.Equals, graph.LinkResolved)
	c.Assert(edges[0].ToNode, check.Equals, int64(3))
	c.Assert(edges[1].Kind, check.Equals, graph.LinkResolved)
	c.Assert(edges[1].ToNode, check.Equals, int64(4))
	c.Assert(edges[2].Kind, check.Equals, graph.LinkExternal)
}

func (s *resolverTestSuite) TestReextract(c *check.C) {
	c.Assert(s.g.ReplaceEdges(3, []*graph.LinkEdge{
		{ToURL: "https://example.com/stale", Kind: graph.LinkUnresolved},
	}), check.IsNil)
	c.Assert(s.g.ReplaceEdges(2, []*graph.LinkEdge{
		{ToURL: "/", Kind: graph.LinkUnresolved},
	}), check.IsNil)

	processed, err := s.r.Reextract(1, []Page{
		{NodeID: 1, URL: "https://example.com/", HTML: `<a href="/pillar">pillar</a>`},
		{NodeID: 2},
		{NodeID: 3, HTML: "   "},
		{NodeID: 99},
	})
	c.Assert(err, check.IsNil)
	c.Assert(processed, check.Equals, 4)

	edges := s.edgesOf(c, 1)
	c.Assert(edges, check.HasLen, 1)
	c.Assert(edges[0].ToNode, check.Equals, int64(2))

	// Node 2 had no HTML so its edges were resolved in place using the
	// URL stored in the catalog.
	edges = s.edgesOf(c, 2)
	c.Assert(edges, check.HasLen, 1)
	c.Assert(edges[0].Kind, check.Equals, graph.LinkResolved)
	c.Assert(edges[0].ToNode, check.Equals, int64(1))

	// Node 3 had blank HTML and took the resolve-only path as well; the
	// stale edge is kept.
	edges = s.edgesOf(c, 3)
	c.Assert(edges, check.HasLen, 1)
	c.Assert(edges[0].Kind, check.Equals, graph.LinkUnresolved)
}

func (s *resolverTestSuite) TestReextractWithoutPages(c *check.C) {
	processed, err := s.r.Reextract(1, nil)
	c.Assert(err, check.IsNil)
	c.Assert(processed, check.Equals, 0)
}

func (s *resolverTestSuite) TestResolveSite(c *check.C) {
	c.Assert(s.g.ReplaceEdges(1, []*graph.LinkEdge{
		{ToURL: "pillar", Kind: graph.LinkUnresolved},
		{ToURL: "https://example.com/nowhere", Kind: graph.LinkUnresolved},
	}), check.IsNil)
	c.Assert(s.g.ReplaceEdges(3, []*graph.LinkEdge{
		{ToURL: "../../pillar/", Kind: graph.LinkUnresolved},
	}), check.IsNil)

	resolved, err := s.r.ResolveSite(1)
	c.Assert(err, check.IsNil)
	c.Assert(resolved, check.Equals, 2)

	resolved, err = s.r.ResolveSite(1)
	c.Assert(err, check.IsNil)
	c.Assert(resolved, check.Equals, 0)

	resolved, err = s.r.ResolveSite(7)
	c.Assert(err, check.IsNil)
	c.Assert(resolved, check.Equals, 0)
}

func (s *resolverTestSuite) TestNopExtractorClearsEdges(c *check.C) {
	c.Assert(s.g.ReplaceEdges(1, []*graph.LinkEdge{
		{ToURL: "https://example.com/pillar", Kind: graph.LinkUnresolved},
	}), check.IsNil)

	r, err := New(Config{Edges: s.g, Catalog: s.g, Extractor: extractor.NopExtractor{}})
	c.Assert(err, check.IsNil)

	res, err := r.Snapshot(NewIndex(nil), Page{NodeID: 1, HTML: `<a href="/pillar">x</a>`})
	c.Assert(err, check.IsNil)
	c.Assert(res.Links, check.Equals, 0)
	c.Assert(s.edgesOf(c, 1), check.HasLen, 0)
}

func (s *resolverTestSuite) edgesOf(c *check.C, nodeID int64) []*graph.LinkEdge {
	it, err := s.g.Edges(nodeID)
	c.Assert(err, check.IsNil)

	var edges []*graph.LinkEdge
	for it.Next() {
		edges = append(edges, it.Edge())
	}
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)

	sort.Slice(edges, func(i, j int) bool { return edges[i].ToURL < edges[j].ToURL })

	return edges
}
