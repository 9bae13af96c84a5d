package server

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"function-url-api/internal/adapters/ai"
	"function-url-api/internal/adapters/fetch"
	"function-url-api/internal/config"
	"function-url-api/internal/handlers"
	"function-url-api/internal/metrics"
	"function-url-api/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *logrus.Entry
	Metrics    *metrics.Manager
	Table      *router.Table
	Dispatcher *router.Dispatcher

	// Internal dependencies
	fetcher handlers.Fetcher
	model   handlers.Model
	closers []func()
}

// Option overrides a dependency the container would otherwise build
type Option func(*containerOptions)

type containerOptions struct {
	logOutput io.Writer
	fetcher   handlers.Fetcher
	model     handlers.Model
	clock     handlers.Clock
}

// WithLogOutput sends application logs to w
func WithLogOutput(w io.Writer) Option {
	return func(o *containerOptions) {
		o.logOutput = w
	}
}

// WithFetcher replaces the outbound HTTP client
func WithFetcher(f handlers.Fetcher) Option {
	return func(o *containerOptions) {
		o.fetcher = f
	}
}

// WithModel replaces the AI model client
func WithModel(m handlers.Model) Option {
	return func(o *containerOptions) {
		o.model = m
	}
}

// WithClock replaces the time source of the handlers
func WithClock(clock handlers.Clock) Option {
	return func(o *containerOptions) {
		o.clock = clock
	}
}

// NewContainer creates a new dependency injection container. The route table
// is built once here and never modified afterwards.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{
		Config: cfg,
		Logger: config.NewLogger(cfg, o.logOutput),
		Metrics: metrics.NewManager(metrics.WithConstLabels(map[string]string{
			"stage": cfg.Stage,
		})),
		fetcher: o.fetcher,
		model:   o.model,
	}

	if c.fetcher == nil {
		client := fetch.NewClient(cfg.HTTP.RequestTimeout)
		c.fetcher = client
		c.closers = append(c.closers, client.Close)
	}

	if c.model == nil {
		model, err := ai.New(ctx, cfg.AI)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		c.model = model
	}

	table, err := handlers.SetupRoutes(&handlers.RouterConfig{
		Config:  cfg,
		Fetcher: c.fetcher,
		Model:   c.model,
		Logger:  c.Logger,
		Clock:   o.clock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}
	c.Table = table

	c.Dispatcher = router.NewDispatcher(table,
		router.WithLogger(c.Logger),
		router.WithTimeout(cfg.HTTP.RequestTimeout),
		router.WithRecorder(c.Metrics),
	)

	c.Logger.WithFields(logrus.Fields{
		"routes":          table.Len(),
		"deployment_mode": config.GetDeploymentMode(),
		"model":           c.model.ModelID(),
	}).Info("Container initialized")

	return c, nil
}

// Close cleans up all resources
func (c *Container) Close() error {
	for _, closeFn := range c.closers {
		closeFn()
	}
	c.closers = nil
	return nil
}
