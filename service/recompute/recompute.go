package recompute

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Service periodically recomputes the metrics of a fixed set of sites. It
// satisfies the service.Service interface.
type Service struct {
	config Config
}

// New creates and returns a fully configured recompute service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("recompute service: config validation failed: %w", err)
	}

	return &Service{config: config}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "recompute" }

// Run executes the service and blocks until the context gets cancelled.
// A site that fails to recompute is logged and retried on the next pass.
func (svc *Service) Run(ctx context.Context) error {
	svc.config.Logger.WithFields(logrus.Fields{
		"update_interval": svc.config.UpdateInterval.String(),
		"sites":           len(svc.config.Sites),
	}).Info("started service")
	defer svc.config.Logger.Info("stopped service")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.config.Clock.After(svc.config.UpdateInterval):
			svc.recomputeSites(ctx)
		}
	}
}

func (svc *Service) recomputeSites(ctx context.Context) {
	startedAt := svc.config.Clock.Now()

	var failed int
	for _, siteID := range svc.config.Sites {
		if ctx.Err() != nil {
			return
		}

		res, err := svc.config.Recomputer.Recompute(ctx, siteID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}

			failed++
			svc.config.Logger.WithFields(logrus.Fields{
				"site_id": siteID,
				"err":     err,
			}).Error("site recompute failed")

			continue
		}

		svc.config.Logger.WithFields(logrus.Fields{
			"site_id":        siteID,
			"nodes":          res.Nodes,
			"edges":          res.Edges,
			"resolved_edges": res.ResolvedEdges,
		}).Debug("site recomputed")
	}

	svc.config.Logger.WithFields(logrus.Fields{
		"sites":                 len(svc.config.Sites),
		"failed_sites":          failed,
		"total_processing_time": svc.config.Clock.Now().Sub(startedAt),
	}).Info("completed recompute pass")
}
