package server

import (
	"context"
	"io"
	"testing"
	"time"

	"function-url-api/internal/adapters/ai"
	"function-url-api/internal/adapters/fetch"
	"function-url-api/internal/config"
)

type stubFetcher struct{}

func (stubFetcher) GetJSON(ctx context.Context, url string) (*fetch.Response, error) {
	return &fetch.Response{StatusCode: 200, Data: map[string]any{"url": url}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Port:        "8081",
		Stage:       "test",
		Version:     "2.0.0",
		Function:    config.FunctionConfig{Name: "api-function", Region: "us-east-1"},
		AI: config.AIConfig{
			ModelID:     "amazon.nova-lite-v1:0",
			Region:      "us-east-1",
			Timeout:     time.Second,
			Temperature: 0.7,
		},
		HTTP: config.HTTPConfig{RequestTimeout: time.Second, FetchURL: "https://httpbin.org/json"},
		Log:  config.LogConfig{Level: "debug", Format: "json"},
	}
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	cfg := testConfig()

	container, err := NewContainer(context.Background(), cfg,
		WithLogOutput(io.Discard),
		WithFetcher(stubFetcher{}),
		WithModel(ai.NewWithAPI(ai.NewMockConverse("Paris"), cfg.AI)),
	)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	t.Cleanup(func() { container.Close() })
	return container
}

// TestNewContainer verifies that the container can be created successfully
func TestNewContainer(t *testing.T) {
	container := newTestContainer(t)

	if container.Dispatcher == nil {
		t.Fatal("Dispatcher is nil")
	}
	if container.Table == nil || container.Table.Len() != 9 {
		t.Errorf("Expected 9 routes, got %d", container.Table.Len())
	}
	if container.Metrics == nil {
		t.Error("Metrics is nil")
	}
	if container.Logger == nil {
		t.Error("Logger is nil")
	}
	if container.Dispatcher.Table() != container.Table {
		t.Error("Expected the dispatcher to serve the container's table")
	}
}

func TestNewContainerDefaults(t *testing.T) {
	cfg := testConfig()

	// The default fetch client is built from configuration; only the model is stubbed
	container, err := NewContainer(context.Background(), cfg,
		WithLogOutput(io.Discard),
		WithModel(ai.NewWithAPI(ai.NewMockConverse("Paris"), cfg.AI)),
	)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	if len(container.closers) != 1 {
		t.Errorf("Expected the fetch client to be registered for cleanup, got %d closers", len(container.closers))
	}
	if err := container.Close(); err != nil {
		t.Errorf("Failed to close container: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Errorf("Expected Close to be idempotent: %v", err)
	}
}

func TestNewContainerRequiresConfig(t *testing.T) {
	if _, err := NewContainer(context.Background(), nil); err == nil {
		t.Error("Expected error for nil configuration")
	}
}
