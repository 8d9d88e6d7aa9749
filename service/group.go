package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
)

// Service describes a long-running linkrank service.
type Service interface {
	// Name returns the name of the service.
	Name() string

	// Run executes the service and blocks until the context gets cancelled
	// or an error occurs.
	Run(context.Context) error
}

// Group runs a set of services side by side and tears all of them down as
// soon as one fails.
type Group struct {
	services []Service
	clock    clock.Clock
	logger   *logrus.Entry
}

// NewGroup returns a Group over services. A nil logger discards the
// start/exit log lines.
func NewGroup(logger *logrus.Entry, services ...Service) *Group {
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = logrus.NewEntry(l)
	}

	return &Group{
		services: services,
		clock:    clock.WallClock,
		logger:   logger,
	}
}

// Add appends svc to the group. It must not be called after Execute.
func (g *Group) Add(svc Service) {
	g.services = append(g.services, svc)
}

// Len returns the number of services in the group.
func (g *Group) Len() int {
	return len(g.services)
}

// Execute runs every service with a context derived from ctx and blocks
// until all of them have returned. The first service to fail, or to panic,
// cancels the others. The returned error aggregates the failures, each
// prefixed with the name of its service.
func (g *Group) Execute(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(g.services) == 0 {
		return nil
	}

	executionCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	var wg sync.WaitGroup
	wg.Add(len(g.services))
	errChan := make(chan error, len(g.services))

	for _, s := range g.services {
		go func(s Service) {
			defer wg.Done()

			if err := g.run(executionCtx, s); err != nil {
				errChan <- fmt.Errorf("%s: %w", s.Name(), err)

				cancelFn()
			}
		}(s)
	}

	<-executionCtx.Done()
	wg.Wait()

	var err error
	close(errChan)

	for srvErr := range errChan {
		err = multierror.Append(err, srvErr)
	}

	return err
}

// run executes s and logs its exit.
func (g *Group) run(ctx context.Context, s Service) (err error) {
	var (
		startedAt = g.clock.Now()
		logger    = g.logger.WithField("service", s.Name())
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}

		logger = logger.WithField("uptime", g.clock.Now().Sub(startedAt).Round(time.Millisecond))
		if err != nil {
			logger.WithField("err", err).Error("service exited with an error")

			return
		}

		logger.Info("service exited")
	}()

	logger.Info("service started")

	return s.Run(ctx)
}
