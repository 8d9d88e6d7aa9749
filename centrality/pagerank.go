package centrality

import (
	"fmt"
	"math"
)

// PageRank computes the PageRank score of every node of g. Every node
// starts at 1/N. On each iteration a node hands d*score/out_degree to each
// of its successors, the scores of dangling nodes are spread evenly over
// all nodes and every node receives the (1-d)/N teleport share. The
// computation stops once the L1 change drops below the configured
// tolerance or the iteration cap is hit. It returns the scores together
// with the number of iterations executed.
func PageRank(g *Graph, cfg PageRankConfig) (Scores, int, error) {
	if err := cfg.validate(); err != nil {
		return nil, 0, fmt.Errorf("pagerank: config validation failed: %w", err)
	}

	n := g.NumNodes()
	if n == 0 {
		return Scores{}, 0, nil
	}

	var (
		d        = cfg.DampingFactor
		nf       = float64(n)
		curr     = make([]float64, n)
		next     = make([]float64, n)
		executed int
	)
	for i := range curr {
		curr[i] = 1.0 / nf
	}

	for executed < cfg.MaxIterations {
		executed++

		var dangling float64
		for i := range next {
			next[i] = 0
		}

		for src, succ := range g.out {
			if len(succ) == 0 {
				dangling += curr[src]
				continue
			}

			share := curr[src] * d / float64(len(succ))
			for _, dst := range succ {
				next[dst] += share
			}
		}

		base := (1.0-d)/nf + d*dangling/nf

		var delta float64
		for i := range next {
			next[i] += base
			delta += math.Abs(next[i] - curr[i])
		}

		curr, next = next, curr
		if delta < cfg.Tolerance {
			break
		}
	}

	return g.scores(curr), executed, nil
}
