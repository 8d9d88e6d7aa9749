// Package resolver turns the links of crawled pages into persisted edges and
// points internal edges at the content nodes they reference.
package resolver

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/linkrank/extractor"
	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/urlnorm"
)

// Config encapsulates the settings for configuring a Resolver.
type Config struct {
	// The store that receives the extracted edges.
	Edges graph.EdgeStore

	// The content catalog used for building path indexes.
	Catalog graph.Catalog

	// The extractor used for parsing page HTML. If not specified, an
	// extractor with the default settings is used.
	Extractor extractor.LinkExtractor

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Edges == nil {
		err = multierror.Append(err, fmt.Errorf("edge store not provided"))
	}

	if config.Catalog == nil {
		err = multierror.Append(err, fmt.Errorf("content catalog not provided"))
	}

	if config.Extractor == nil {
		config.Extractor = extractor.New(extractor.Config{})
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Page is the material available for a content node.
type Page struct {
	NodeID int64
	URL    string
	HTML   string
}

// Result summarizes a snapshot of the edges of one page.
type Result struct {
	Links      int `json:"links"`
	Internal   int `json:"internal"`
	Resolved   int `json:"resolved"`
	Unresolved int `json:"unresolved"`
}

// Resolver persists the links of pages and resolves internal link targets
// against a site's path index.
type Resolver struct {
	cfg Config
}

// New returns a Resolver configured with cfg.
func New(cfg Config) (*Resolver, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("resolver: config validation failed: %w", err)
	}

	return &Resolver{cfg: cfg}, nil
}

// Snapshot extracts the links of page, resolves the internal ones against
// idx and replaces every stored outgoing edge of the page with the result.
func (r *Resolver) Snapshot(idx *Index, page Page) (Result, error) {
	var (
		res   Result
		links = r.cfg.Extractor.Extract(page.HTML, page.URL)
		edges = make([]*graph.LinkEdge, 0, len(links))
	)

	for _, l := range links {
		e := &graph.LinkEdge{
			ToURL:      l.URL,
			AnchorText: l.AnchorText,
			Rel:        l.Rel,
			NoFollow:   l.NoFollow,
			Kind:       graph.LinkExternal,
		}

		if l.Internal {
			res.Internal++
			e.Kind = graph.LinkUnresolved

			if to, ok := lookupURL(idx, l.URL); ok {
				e.Kind = graph.LinkResolved
				e.ToNode = to
				res.Resolved++
			} else {
				res.Unresolved++
			}
		}

		edges = append(edges, e)
	}
	res.Links = len(edges)

	if err := r.cfg.Edges.ReplaceEdges(page.NodeID, edges); err != nil {
		return Result{}, fmt.Errorf("snapshot node %d: %w", page.NodeID, err)
	}

	r.cfg.Logger.WithFields(logrus.Fields{
		"node_id":    page.NodeID,
		"links":      res.Links,
		"internal":   res.Internal,
		"resolved":   res.Resolved,
		"unresolved": res.Unresolved,
	}).Debug("replaced page edges")

	return res, nil
}

// ResolveOnly tries to resolve the stored unresolved edges of page without
// deleting or inserting any edge. It returns the number of edges that were
// resolved.
func (r *Resolver) ResolveOnly(idx *Index, page Page) (int, error) {
	it, err := r.cfg.Edges.Edges(page.NodeID)
	if err != nil {
		return 0, fmt.Errorf("resolve node %d: %w", page.NodeID, err)
	}

	pending, err := drainUnresolved(it)
	if err != nil {
		return 0, fmt.Errorf("resolve node %d: %w", page.NodeID, err)
	}

	base := parseBase(page.URL)

	var resolved int
	for _, e := range pending {
		ok, err := r.resolveEdge(idx, base, e)
		if err != nil {
			return resolved, fmt.Errorf("resolve node %d: %w", page.NodeID, err)
		}

		if ok {
			resolved++
		}
	}

	return resolved, nil
}

// Reextract processes a batch of pages of siteID against a single path
// index. Pages with HTML get a fresh snapshot; pages with only a URL, taken
// from the catalog when missing, get a resolve-only pass; pages with
// neither are left untouched. It returns the number of pages processed,
// skipped pages included.
func (r *Resolver) Reextract(siteID int64, pages []Page) (int, error) {
	if len(pages) == 0 {
		return 0, nil
	}

	idx, err := BuildIndex(r.cfg.Catalog, siteID)
	if err != nil {
		return 0, fmt.Errorf("reextract: %w", err)
	}

	var processed int
	for _, page := range pages {
		switch {
		case strings.TrimSpace(page.HTML) != "":
			if _, err := r.Snapshot(idx, page); err != nil {
				return processed, fmt.Errorf("reextract: %w", err)
			}
		default:
			if page.URL == "" {
				if n, err := r.cfg.Catalog.FindNode(page.NodeID); err == nil {
					page.URL = n.URL
				}
			}

			if page.URL == "" {
				r.cfg.Logger.WithField("node_id", page.NodeID).Debug("no material for page; keeping stored edges")

				break
			}

			if _, err := r.ResolveOnly(idx, page); err != nil {
				return processed, fmt.Errorf("reextract: %w", err)
			}
		}

		processed++
	}

	r.cfg.Logger.WithFields(logrus.Fields{
		"site_id": siteID,
		"pages":   processed,
	}).Info("re-extracted site links")

	return processed, nil
}

// ResolveSite runs a resolve-only pass over every unresolved internal edge
// that originates from a node of siteID. It returns the number of edges that
// were resolved.
func (r *Resolver) ResolveSite(siteID int64) (int, error) {
	nodes, err := loadNodes(r.cfg.Catalog, siteID)
	if err != nil {
		return 0, fmt.Errorf("resolve site %d: %w", siteID, err)
	}

	if len(nodes) == 0 {
		return 0, nil
	}

	idx := NewIndex(nodes)
	bases := make(map[int64]*url.URL, len(nodes))
	for _, n := range nodes {
		bases[n.ID] = parseBase(n.URL)
	}

	it, err := r.cfg.Edges.SiteEdges(siteID)
	if err != nil {
		return 0, fmt.Errorf("resolve site %d: %w", siteID, err)
	}

	pending, err := drainUnresolved(it)
	if err != nil {
		return 0, fmt.Errorf("resolve site %d: %w", siteID, err)
	}

	var resolved int
	for _, e := range pending {
		ok, err := r.resolveEdge(idx, bases[e.FromNode], e)
		if err != nil {
			return resolved, fmt.Errorf("resolve site %d: %w", siteID, err)
		}

		if ok {
			resolved++
		}
	}

	r.cfg.Logger.WithFields(logrus.Fields{
		"site_id":  siteID,
		"pending":  len(pending),
		"resolved": resolved,
	}).Debug("resolved site edges")

	return resolved, nil
}

func (r *Resolver) resolveEdge(idx *Index, base *url.URL, e *graph.LinkEdge) (bool, error) {
	var target *url.URL
	if base != nil {
		target = urlnorm.Absolute(base, e.ToURL)
	} else if u, err := url.Parse(strings.TrimSpace(e.ToURL)); err == nil {
		target = u
	}

	if target == nil {
		return false, nil
	}

	to, ok := lookupURL(idx, urlnorm.NormalizeURL(target).String())
	if !ok {
		return false, nil
	}

	if err := r.cfg.Edges.ResolveEdge(e.ID, to); err != nil {
		return false, err
	}

	return true, nil
}

// drainUnresolved collects the unresolved edges of it and closes it. The
// iterator is exhausted before any write so that SQL stores don't hold a
// result set open while updating.
func drainUnresolved(it graph.EdgeIterator) ([]*graph.LinkEdge, error) {
	var pending []*graph.LinkEdge
	for it.Next() {
		if e := it.Edge(); e.Kind == graph.LinkUnresolved {
			pending = append(pending, e)
		}
	}

	if err := it.Error(); err != nil {
		_ = it.Close()

		return nil, err
	}

	return pending, it.Close()
}

func loadNodes(catalog graph.Catalog, siteID int64) ([]*graph.ContentNode, error) {
	it, err := catalog.Nodes(siteID)
	if err != nil {
		return nil, err
	}

	var nodes []*graph.ContentNode
	for it.Next() {
		nodes = append(nodes, it.Node())
	}

	if err := it.Error(); err != nil {
		_ = it.Close()

		return nil, err
	}

	return nodes, it.Close()
}

func lookupURL(idx *Index, raw string) (int64, bool) {
	p, err := urlnorm.Path(raw)
	if err != nil {
		return 0, false
	}

	return idx.Lookup(p)
}

func parseBase(raw string) *url.URL {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() {
		return nil
	}

	return u
}
