package centrality

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// PageRankConfig encapsulates the settings of a PageRank computation.
type PageRankConfig struct {
	// The probability of following an outgoing link. If not specified, a
	// value of 0.85 is used.
	DampingFactor float64

	// The upper bound on the number of iterations. If not specified, a
	// value of 50 is used.
	MaxIterations int

	// The computation stops once the L1 distance between two successive
	// score vectors drops below this value. If not specified, a value of
	// 1e-6 is used.
	Tolerance float64
}

func (config *PageRankConfig) validate() error {
	var err error

	switch {
	case config.DampingFactor == 0:
		config.DampingFactor = 0.85
	case config.DampingFactor < 0 || config.DampingFactor >= 1.0:
		err = multierror.Append(err, fmt.Errorf("damping factor must be in the range (0, 1)"))
	}

	switch {
	case config.MaxIterations == 0:
		config.MaxIterations = 50
	case config.MaxIterations < 0:
		err = multierror.Append(err, fmt.Errorf("max iterations must be > 0"))
	}

	switch {
	case config.Tolerance == 0:
		config.Tolerance = 1e-6
	case config.Tolerance < 0:
		err = multierror.Append(err, fmt.Errorf("tolerance must be > 0"))
	}

	return err
}

// HITSConfig encapsulates the settings of a HITS computation.
type HITSConfig struct {
	// The number of iterations to run. If not specified, a value of 50
	// is used.
	Iterations int
}

func (config *HITSConfig) validate() error {
	var err error

	switch {
	case config.Iterations == 0:
		config.Iterations = 50
	case config.Iterations < 0:
		err = multierror.Append(err, fmt.Errorf("iterations must be > 0"))
	}

	return err
}
