package telemetry

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Config defines configurations for the telemetry service.
type Config struct {
	// The address to listen for incoming scrape requests.
	ListenAddr string

	// The metric source to expose. If not specified the default
	// prometheus registry is used.
	Gatherer prometheus.Gatherer

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	if config.ListenAddr == "" {
		return fmt.Errorf("listen address not provided")
	}

	if config.Gatherer == nil {
		config.Gatherer = prometheus.DefaultGatherer
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return nil
}

// Service exposes the prometheus metrics of the process over HTTP. It
// satisfies the service.Service interface.
type Service struct {
	config Config
	mux    *http.ServeMux
}

// New creates and returns a fully configured telemetry service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("telemetry service: config validation failed: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))

	return &Service{config: config, mux: mux}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "telemetry" }

// Handler returns the HTTP handler served by the service.
func (svc *Service) Handler() http.Handler { return svc.mux }

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.config.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{
		Addr:              svc.config.ListenAddr,
		Handler:           svc.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	svc.config.Logger.WithField("addr", l.Addr().String()).Info("started service")
	defer svc.config.Logger.Info("stopped service")

	if err = srv.Serve(l); err == http.ErrServerClosed {
		err = nil
	}

	return err
}
