package handlers

import (
	"context"
	"time"

	"function-url-api/internal/adapters/ai"
	"function-url-api/internal/adapters/fetch"
)

// Fetcher performs the outbound call behind GET /fetch
type Fetcher interface {
	GetJSON(ctx context.Context, url string) (*fetch.Response, error)
}

// Model answers queries for POST /strands
type Model interface {
	Ask(ctx context.Context, query string) (*ai.Answer, error)
	ModelID() string
}

// Clock returns the current time
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
