package resolver

import (
	"fmt"

	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/urlnorm"
)

// Index maps the URL paths of a site's content nodes to their ids. It's
// built once per site and invocation and is not safe for concurrent
// mutation.
type Index struct {
	paths map[string]int64
}

// NewIndex builds an index over nodes. When two nodes share a path the
// first one wins. Nodes with unparsable URLs are skipped.
func NewIndex(nodes []*graph.ContentNode) *Index {
	idx := &Index{paths: make(map[string]int64, 2*len(nodes))}

	var exact []string
	for _, n := range nodes {
		p, err := urlnorm.Path(n.URL)
		if err != nil {
			continue
		}

		if _, exists := idx.paths[p]; exists {
			continue
		}
		idx.paths[p] = n.ID
		exact = append(exact, p)
	}

	// Trailing slash variants never shadow a real path.
	for _, p := range exact {
		variant := urlnorm.TrailingSlashVariant(p)
		if _, exists := idx.paths[variant]; !exists {
			idx.paths[variant] = idx.paths[p]
		}
	}

	return idx
}

// BuildIndex loads every node of siteID from catalog and indexes it.
func BuildIndex(catalog graph.Catalog, siteID int64) (*Index, error) {
	nodes, err := loadNodes(catalog, siteID)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	return NewIndex(nodes), nil
}

// Lookup returns the node whose path is p, trying p with and without a
// trailing slash.
func (idx *Index) Lookup(p string) (int64, bool) {
	if p == "" {
		p = "/"
	}

	if id, ok := idx.paths[p]; ok {
		return id, true
	}

	id, ok := idx.paths[urlnorm.TrailingSlashVariant(p)]

	return id, ok
}

// Len returns the number of indexed paths, variants included.
func (idx *Index) Len() int {
	return len(idx.paths)
}
