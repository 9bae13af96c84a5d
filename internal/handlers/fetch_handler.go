package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"function-url-api/internal/adapters/fetch"
	"function-url-api/internal/router"
)

// FetchHandler performs one bounded outbound call per request
type FetchHandler struct {
	fetcher Fetcher
	url     string
	logger  logrus.FieldLogger
}

// NewFetchHandler creates a new fetch handler
func NewFetchHandler(fetcher Fetcher, url string, logger logrus.FieldLogger) *FetchHandler {
	return &FetchHandler{fetcher: fetcher, url: url, logger: logger}
}

// Fetch handles GET /fetch
func (h *FetchHandler) Fetch(ctx context.Context, req *router.Request, exec *router.ExecContext) (router.Result, error) {
	resp, err := h.fetcher.GetJSON(ctx, h.url)
	if err != nil {
		return router.Result{}, router.Dependency("External service error: "+fetch.Reason(err), err)
	}

	h.logger.WithFields(logrus.Fields{
		"url":              h.url,
		"status_code":      resp.StatusCode,
		"response_time_ms": milliseconds(resp.Duration),
	}).Info("External fetch completed")

	return router.OK(map[string]any{
		"message":          "External fetch successful",
		"external_data":    resp.Data,
		"status_code":      resp.StatusCode,
		"response_time_ms": milliseconds(resp.Duration),
	}), nil
}
