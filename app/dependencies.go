package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yuzutube/gateway/config"
	"github.com/yuzutube/gateway/internal/observability"
	"github.com/yuzutube/gateway/services/catalog"
	"github.com/yuzutube/gateway/services/invidious"
	"go.uber.org/zap"
)

// Version is the gateway version, overridden at build time with -ldflags.
var Version = "0.1.0"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// Metrics
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// Upstream
	Invidious *invidious.Client
	Catalog   *catalog.Service
}

// Option overrides part of the default wiring
type Option func(*options)

type options struct {
	transport invidious.Transport
}

// WithTransport replaces the HTTP transport used to reach instances.
func WithTransport(t invidious.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Dependencies, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics()

	if err := deps.initInvidious(cfg, o.transport); err != nil {
		return nil, fmt.Errorf("failed to initialize invidious client: %w", err)
	}

	deps.Catalog = catalog.NewService(deps.Invidious, logger.Named("catalog"))

	logger.Info("all dependencies initialized successfully",
		zap.Strings("instances", deps.Invidious.Instances()))
	return deps, nil
}

// initMetrics creates a private registry so tests can build many Dependencies
func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = observability.NewMetrics(d.Registry)
}

// initInvidious builds the fallback client from configuration
func (d *Dependencies) initInvidious(cfg *config.Config, transport invidious.Transport) error {
	client, err := invidious.NewClient(invidious.Options{
		Instances:       cfg.Invidious.Instances,
		Timeout:         cfg.Invidious.Timeout,
		ResolveDeadline: cfg.Invidious.ResolveDeadline,
		UserAgent:       cfg.Invidious.UserAgent,
		Transport:       transport,
		Recorder:        d.Metrics,
		Logger:          d.Logger.Named("invidious"),
	})
	if err != nil {
		return err
	}

	d.Invidious = client
	d.Logger.Info("invidious client initialized",
		zap.Int("instances", len(cfg.Invidious.Instances)),
		zap.Duration("timeout", cfg.Invidious.Timeout))
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return nil
}
