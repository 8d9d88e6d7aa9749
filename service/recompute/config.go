package recompute

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/linkrank/authority"
)

//go:generate mockgen -package mocks -destination mocks/mock.go github.com/mycok/linkrank/service/recompute Recomputer

// Recomputer rebuilds and persists the metrics of a single site.
type Recomputer interface {
	Recompute(ctx context.Context, siteID int64) (authority.Result, error)
}

// Config defines configurations for the recompute service.
type Config struct {
	// The builder that recomputes each site.
	Recomputer Recomputer

	// The sites to recompute on every pass.
	Sites []int64

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The duration between subsequent recompute passes.
	UpdateInterval time.Duration

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Recomputer == nil {
		err = multierror.Append(err, fmt.Errorf("recomputer not provided"))
	}

	if len(config.Sites) == 0 {
		err = multierror.Append(err, fmt.Errorf("no sites to recompute"))
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.UpdateInterval <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for update interval"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
