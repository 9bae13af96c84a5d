package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"function-url-api/internal/config"
	"function-url-api/internal/router"
)

// RouterConfig holds the dependencies needed to build the route table
type RouterConfig struct {
	Config  *config.Config
	Fetcher Fetcher
	Model   Model
	Logger  logrus.FieldLogger
	Clock   Clock
}

// SetupRoutes builds the route table. The table is immutable once returned.
func SetupRoutes(cfg *RouterConfig) (*router.Table, error) {
	if cfg == nil || cfg.Config == nil {
		return nil, errors.New("router config is required")
	}
	if cfg.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if cfg.Model == nil {
		return nil, errors.New("model is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	// Create handlers
	infoHandler := NewInfoHandler(cfg.Config, cfg.Clock)
	echoHandler := NewEchoHandler()
	fetchHandler := NewFetchHandler(cfg.Fetcher, cfg.Config.HTTP.FetchURL, logger)
	aiHandler := NewAIHandler(cfg.Model, logger)

	return router.NewTable(
		router.Route{Method: http.MethodGet, Path: "/", Name: "root", Handler: infoHandler.Root},
		router.Route{Method: http.MethodGet, Path: "/health", Name: "health", Handler: infoHandler.Health},
		router.Route{Method: http.MethodPost, Path: "/echo", Name: "echo", Handler: router.WithBody(echoHandler.Echo)},
		router.Route{Method: http.MethodGet, Path: "/test-params", Name: "test-params", Handler: echoHandler.Params},
		router.Route{Method: http.MethodGet, Path: "/time", Name: "time", Handler: infoHandler.Time},
		router.Route{Method: http.MethodGet, Path: "/fetch", Name: "fetch", Handler: fetchHandler.Fetch},
		router.Route{Method: http.MethodPost, Path: "/strands", Name: "strands", Handler: router.WithBody(aiHandler.Query)},
		router.Route{Method: http.MethodGet, Path: "/error", Name: "error", Handler: Fail},
		router.PreflightRoute(),
	)
}
