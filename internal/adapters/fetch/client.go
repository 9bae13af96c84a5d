package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/valyala/fasthttp"
)

const (
	// DefaultTimeout bounds a single outbound request
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBodySize caps the upstream payload size
	DefaultMaxBodySize = 1 << 20

	userAgent = "function-url-api/fetch"
)

// Response is the decoded result of an outbound JSON request
type Response struct {
	StatusCode int
	Data       any
	Duration   time.Duration
}

// Client performs bounded outbound GET requests. No retries are attempted.
type Client struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewClient creates a client whose requests never outlive timeout
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		client: &fasthttp.Client{
			Name:                userAgent,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: DefaultMaxBodySize,
		},
		timeout: timeout,
	}
}

// GetJSON fetches url and decodes its JSON payload. The deadline is the
// earlier of the client timeout and the context deadline.
func (c *Client) GetJSON(ctx context.Context, url string) (*Response, error) {
	if url == "" {
		return nil, NewFetchError(url, 0, ErrInvalidURL)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewFetchError(url, 0, contextErr(err))
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	deadline := start.Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, NewFetchError(url, 0, ErrTimeout)
		}
		return nil, NewFetchError(url, 0, errors.Join(ErrNetwork, err))
	}
	duration := time.Since(start)

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, NewFetchError(url, status, ErrUpstreamStatus)
	}

	var data any
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, NewFetchError(url, status, errors.Join(ErrInvalidPayload, err))
	}

	return &Response{StatusCode: status, Data: data, Duration: duration}, nil
}

func contextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrContextCanceled
}

// Close releases idle upstream connections
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
