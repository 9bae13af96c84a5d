package handlers

import (
	"context"
	"time"

	"function-url-api/internal/config"
	"function-url-api/internal/router"
)

// InfoHandler serves the static and environment-describing endpoints
type InfoHandler struct {
	cfg   *config.Config
	clock Clock
}

// NewInfoHandler creates a new info handler
func NewInfoHandler(cfg *config.Config, clock Clock) *InfoHandler {
	return &InfoHandler{cfg: cfg, clock: clock}
}

// Root handles GET /
func (h *InfoHandler) Root(ctx context.Context, req *router.Request, exec *router.ExecContext) (router.Result, error) {
	return router.OK(map[string]any{
		"message":  "Function URL API",
		"stage":    h.cfg.Stage,
		"version":  h.cfg.Version,
		"function": h.functionName(exec),
	}), nil
}

// Health handles GET /health. Execution context fields the runtime did not
// supply are left out.
func (h *InfoHandler) Health(ctx context.Context, req *router.Request, exec *router.ExecContext) (router.Result, error) {
	now := h.clock.now()

	data := map[string]any{
		"status":    "healthy",
		"timestamp": now.Format(time.RFC3339),
		"function":  h.functionName(exec),
	}
	for k, v := range exec.Fields(now) {
		if k == "function_name" {
			continue
		}
		data[k] = v
	}

	return router.OK(data), nil
}

// Time handles GET /time
func (h *InfoHandler) Time(ctx context.Context, req *router.Request, exec *router.ExecContext) (router.Result, error) {
	now := h.clock.now()

	data := map[string]any{
		"current_time": now.Format(time.RFC3339),
		"epoch":        now.Unix(),
		"timezone":     "UTC",
	}
	if exec != nil && exec.FunctionName != "" {
		data["function_name"] = exec.FunctionName
	}

	return router.OK(data), nil
}

func (h *InfoHandler) functionName(exec *router.ExecContext) string {
	if exec != nil && exec.FunctionName != "" {
		return exec.FunctionName
	}
	return h.cfg.Function.Name
}
