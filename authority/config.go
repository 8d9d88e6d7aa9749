package authority

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/linkrank/centrality"
	"github.com/mycok/linkrank/linkgraph/graph"
	"github.com/mycok/linkrank/sitelock"
)

// SiteResolver resolves the pending internal edges of a site.
type SiteResolver interface {
	// ResolveSite returns the number of edges that were resolved.
	ResolveSite(siteID int64) (int, error)
}

// Config encapsulates the settings for configuring a Builder.
type Config struct {
	// The content catalog that provides the node set of a site.
	Catalog graph.Catalog

	// The store that provides the edges of a site.
	Edges graph.EdgeStore

	// The store that receives the computed metrics.
	Metrics graph.MetricStore

	// An optional resolver that runs before every recompute. Its failures
	// are logged and do not abort the recompute.
	Resolver SiteResolver

	// The locker that serializes recomputes of the same site. If not
	// specified, an in-process locker is used.
	Locker sitelock.Locker

	// A clock instance for stamping metric rows. If not specified, the
	// default wall-clock will be used instead.
	Clock clock.Clock

	// PageRank settings. Zero values are replaced by defaults.
	PageRank centrality.PageRankConfig

	// HITS settings. Zero values are replaced by defaults.
	HITS centrality.HITSConfig

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Catalog == nil {
		err = multierror.Append(err, fmt.Errorf("content catalog not provided"))
	}

	if config.Edges == nil {
		err = multierror.Append(err, fmt.Errorf("edge store not provided"))
	}

	if config.Metrics == nil {
		err = multierror.Append(err, fmt.Errorf("metric store not provided"))
	}

	if config.Locker == nil {
		config.Locker = sitelock.NewLocal()
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	// Run both computations once on an empty graph so that invalid
	// settings are reported at construction time.
	if _, _, prErr := centrality.PageRank(centrality.NewGraph(nil), config.PageRank); prErr != nil {
		err = multierror.Append(err, prErr)
	}

	if _, _, hitsErr := centrality.HITS(centrality.NewGraph(nil), config.HITS); hitsErr != nil {
		err = multierror.Append(err, hitsErr)
	}

	return err
}
