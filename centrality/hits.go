package centrality

import (
	"fmt"
	"math"
)

// HITS computes the authority and hub score of every node of g. Both
// vectors start at 1.0. Each iteration sets a node's authority to the sum
// of its predecessors' hub scores and its hub score to the sum of its
// successors' authority scores, L2-normalizing each vector in turn. A
// vector whose norm is zero is left as is. HITS runs for the configured
// number of iterations without checking for convergence.
func HITS(g *Graph, cfg HITSConfig) (authority, hub Scores, err error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, fmt.Errorf("hits: config validation failed: %w", err)
	}

	n := g.NumNodes()
	if n == 0 {
		return Scores{}, Scores{}, nil
	}

	auth := make([]float64, n)
	hubs := make([]float64, n)
	for i := 0; i < n; i++ {
		auth[i], hubs[i] = 1.0, 1.0
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		for v, preds := range g.in {
			var sum float64
			for _, u := range preds {
				sum += hubs[u]
			}
			auth[v] = sum
		}
		normalize(auth)

		for u, succ := range g.out {
			var sum float64
			for _, v := range succ {
				sum += auth[v]
			}
			hubs[u] = sum
		}
		normalize(hubs)
	}

	return g.scores(auth), g.scores(hubs), nil
}

func normalize(v []float64) {
	var sq float64
	for _, x := range v {
		sq += x * x
	}

	norm := math.Sqrt(sq)
	if norm == 0 {
		return
	}

	for i := range v {
		v[i] /= norm
	}
}
