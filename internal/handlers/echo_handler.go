package handlers

import (
	"context"

	"function-url-api/internal/router"
)

// EchoHandler reflects request data back to the caller
type EchoHandler struct{}

// NewEchoHandler creates a new echo handler
func NewEchoHandler() *EchoHandler {
	return &EchoHandler{}
}

// Echo handles POST /echo. A missing body echoes null; a body that is not
// JSON echoes its raw text. The authorization, x-api-key and cookie headers
// are echoed as "[MASKED]".
func (h *EchoHandler) Echo(ctx context.Context, req *router.Request, body router.Body, exec *router.ExecContext) (router.Result, error) {
	var echo any
	if body.Present {
		echo = body.Value
	}

	contentType := req.Header("content-type")
	if contentType == "" {
		contentType = "unknown"
	}

	return router.OK(map[string]any{
		"echo":        echo,
		"headers":     router.MaskHeaders(req.Headers),
		"method":      req.Method,
		"contentType": contentType,
	}), nil
}

// Params handles GET /test-params
func (h *EchoHandler) Params(ctx context.Context, req *router.Request, exec *router.ExecContext) (router.Result, error) {
	multi := req.MultiQuery
	if multi == nil {
		multi = map[string][]string{}
	}

	return router.OK(map[string]any{
		"queryParams":           req.Query,
		"pathParams":            req.PathParams,
		"multiValueQueryParams": multi,
	}), nil
}
