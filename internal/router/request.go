package router

import (
	"strings"
	"time"
)

// Request is the normalized description of one inbound request.
// It is built once per invocation and not modified during dispatch.
type Request struct {
	Method     string
	Path       string
	Headers    map[string]string   // keys are lower-cased
	Query      map[string]string   // single-valued, repeated keys joined by the platform
	MultiQuery map[string][]string // only when the event carries multi-value parameters
	PathParams map[string]string
	StageVars  map[string]string
	Body       *string
	IsBase64   bool
	RequestID  string
	SourceIP   string
}

// NewRequest builds a Request applying the same defaults the event normalizer uses
func NewRequest(method, path string) *Request {
	return &Request{
		Method:     NormalizeMethod(method),
		Path:       NormalizePath(path),
		Headers:    map[string]string{},
		Query:      map[string]string{},
		PathParams: map[string]string{},
		StageVars:  map[string]string{},
	}
}

// WithBody sets the raw body and its transport encoding flag
func (r *Request) WithBody(body string, base64Encoded bool) *Request {
	r.Body = &body
	r.IsBase64 = base64Encoded
	return r
}

// WithHeader sets a header, normalizing the key
func (r *Request) WithHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	r.Headers[strings.ToLower(key)] = value
	return r
}

// Header returns a header value using case-insensitive lookup
func (r *Request) Header(key string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers[strings.ToLower(key)]
}

// Key returns the route key for the request
func (r *Request) Key() RouteKey {
	return RouteKey{Method: r.Method, Path: r.Path}
}

// NormalizeMethod upper-cases a method, defaulting to GET
func NormalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "GET"
	}
	return method
}

// NormalizePath ensures a leading slash, defaulting to /
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

// ExecContext describes the execution environment of one invocation.
// Every field is optional and omitted from output when unknown.
type ExecContext struct {
	FunctionName    string `json:"function_name,omitempty"`
	FunctionVersion string `json:"function_version,omitempty"`
	MemoryLimitMB   int    `json:"memory_limit_mb,omitempty"`
	RequestID       string `json:"request_id,omitempty"`

	deadline time.Time
}

// WithDeadline records the invocation deadline used for the remaining time budget
func (e *ExecContext) WithDeadline(deadline time.Time) *ExecContext {
	e.deadline = deadline
	return e
}

// RemainingTime returns the time left before the invocation deadline
func (e *ExecContext) RemainingTime(now time.Time) (time.Duration, bool) {
	if e == nil || e.deadline.IsZero() {
		return 0, false
	}
	remaining := e.deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Fields returns the known context fields as a map, omitting absent ones
func (e *ExecContext) Fields(now time.Time) map[string]any {
	fields := map[string]any{}
	if e == nil {
		return fields
	}
	if e.FunctionName != "" {
		fields["function_name"] = e.FunctionName
	}
	if e.FunctionVersion != "" {
		fields["function_version"] = e.FunctionVersion
	}
	if e.MemoryLimitMB > 0 {
		fields["memory_limit_mb"] = e.MemoryLimitMB
	}
	if e.RequestID != "" {
		fields["request_id"] = e.RequestID
	}
	if remaining, ok := e.RemainingTime(now); ok {
		fields["remaining_time_ms"] = remaining.Milliseconds()
	}
	return fields
}
