package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"function-url-api/internal/config"
	"function-url-api/internal/router"
	"function-url-api/pkg/server"
)

var errRuntimeClosed = errors.New("runtime is closed")

// BuildFunc creates the container for the function
type BuildFunc func(ctx context.Context) (*server.Container, error)

// Runtime builds the container on first use and keeps it for warm
// invocations. A failed build is remembered and answered with an internal
// error envelope on every invocation.
type Runtime struct {
	build BuildFunc

	initOnce  sync.Once
	mu        sync.RWMutex
	container *server.Container
	initErr   error
	lastUsed  time.Time
	coldStart bool
}

// NewRuntime creates a runtime around build
func NewRuntime(build BuildFunc) *Runtime {
	return &Runtime{build: build, coldStart: true}
}

// DefaultBuild loads configuration from the environment and builds the container
func DefaultBuild(ctx context.Context) (*server.Container, error) {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return server.NewContainer(ctx, cfg)
}

// Container returns the container, building it if necessary
func (r *Runtime) Container(ctx context.Context) (*server.Container, error) {
	r.initOnce.Do(func() {
		container, err := r.build(ctx)

		r.mu.Lock()
		defer r.mu.Unlock()
		r.container, r.initErr = container, err
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastUsed = time.Now()
	if r.container == nil && r.initErr == nil {
		return nil, errRuntimeClosed
	}
	return r.container, r.initErr
}

// Handler returns the function handler backed by the runtime's container
func (r *Runtime) Handler() HandlerFunc {
	return func(ctx context.Context, event json.RawMessage) (events.APIGatewayV2HTTPResponse, error) {
		container, err := r.Container(ctx)
		if err != nil {
			logrus.WithError(err).Error("Function initialization failed")
			return ToResponse(router.Failure(router.Classify(err))), nil
		}

		if r.takeColdStart() {
			container.Logger.WithField("cold_start", true).Info("First invocation")
		}

		return NewHandler(container.Dispatcher)(ctx, event)
	}
}

// IsHealthy reports whether the container was built and used recently
func (r *Runtime) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.container == nil || r.initErr != nil {
		return false
	}
	return time.Since(r.lastUsed) < 5*time.Minute
}

// Close releases the container's resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.container == nil {
		return nil
	}
	err := r.container.Close()
	r.container = nil
	return err
}

func (r *Runtime) takeColdStart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cold := r.coldStart
	r.coldStart = false
	return cold
}
