package authority

import (
	"fmt"
	"time"

	"github.com/mycok/linkrank/linkgraph/graph"
)

// Export is the JSON document describing the link graph of a site for
// visualization.
type Export struct {
	Nodes []ExportNode `json:"nodes"`
	Edges []ExportEdge `json:"edges"`
	Meta  ExportMeta   `json:"meta"`
}

// ExportNode describes a content node.
type ExportNode struct {
	ID      int64        `json:"id"`
	URL     string       `json:"url"`
	Title   string       `json:"title,omitempty"`
	Metrics *NodeMetrics `json:"metrics,omitempty"`
}

// NodeMetrics holds the metrics of an exported node.
type NodeMetrics struct {
	DegreeIn  int     `json:"degree_in"`
	DegreeOut int     `json:"degree_out"`
	PageRank  float64 `json:"pagerank"`
	Authority float64 `json:"authority"`
	Hub       float64 `json:"hub"`
}

// ExportEdge is a resolved internal link between two nodes.
type ExportEdge struct {
	Source int64 `json:"source"`
	Target int64 `json:"target"`
}

// ExportMeta carries information about the export itself.
type ExportMeta struct {
	SiteID      int64     `json:"site_id"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Export returns every node of siteID together with the edge set used for
// computing its metrics. When includeMetrics is set each node carries its
// stored metrics, zero-filled for nodes that have none yet.
func (b *Builder) Export(siteID int64, includeMetrics bool) (*Export, error) {
	nodes, err := b.loadNodes(siteID)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}

	pairs, err := b.loadEdgePairs(siteID, ids)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	var byNode map[int64]*graph.GraphMetric
	if includeMetrics {
		if byNode, err = b.loadMetrics(siteID); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}

	out := &Export{
		Nodes: make([]ExportNode, 0, len(nodes)),
		Edges: make([]ExportEdge, 0, len(pairs)),
		Meta: ExportMeta{
			SiteID:      siteID,
			GeneratedAt: b.cfg.Clock.Now().UTC(),
		},
	}

	for _, n := range nodes {
		en := ExportNode{ID: n.ID, URL: n.URL, Title: n.Title}
		if includeMetrics {
			en.Metrics = new(NodeMetrics)
			if m, ok := byNode[n.ID]; ok {
				*en.Metrics = NodeMetrics{
					DegreeIn:  m.DegreeIn,
					DegreeOut: m.DegreeOut,
					PageRank:  m.PageRank,
					Authority: m.Authority,
					Hub:       m.Hub,
				}
			}
		}
		out.Nodes = append(out.Nodes, en)
	}

	for _, p := range pairs {
		out.Edges = append(out.Edges, ExportEdge{Source: p.src, Target: p.dst})
	}

	return out, nil
}

func (b *Builder) loadMetrics(siteID int64) (map[int64]*graph.GraphMetric, error) {
	it, err := b.cfg.Metrics.Metrics(siteID)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	byNode := make(map[int64]*graph.GraphMetric)
	for it.Next() {
		m := it.Metric()
		byNode[m.NodeID] = m
	}

	if err := it.Error(); err != nil {
		_ = it.Close()

		return nil, fmt.Errorf("load metrics: %w", err)
	}

	if err := it.Close(); err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	return byNode, nil
}
