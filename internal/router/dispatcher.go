package router

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds how long handlers may wait on external calls
const DefaultTimeout = 10 * time.Second

const (
	routeLabelPreflight = "OPTIONS *"
	routeLabelUnmatched = "unmatched"
	maskedHeaderValue   = "[MASKED]"
)

var sensitiveHeaders = []string{"authorization", "x-api-key", "cookie"}

// Recorder observes the outcome of every dispatched request
type Recorder interface {
	Observe(method, route string, status int, duration time.Duration)
}

// Dispatcher routes normalized requests to handlers and renders every
// outcome as an Envelope. It holds no per-request state.
type Dispatcher struct {
	table    *Table
	logger   logrus.FieldLogger
	timeout  time.Duration
	recorder Recorder
	now      func() time.Time
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the logger used for request logs
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTimeout sets the per-request budget passed to handlers. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(recorder Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = recorder
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDispatcher creates a dispatcher over an immutable route table
func NewDispatcher(table *Table, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		table:   table,
		logger:  logrus.StandardLogger(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Table returns the route table the dispatcher serves
func (d *Dispatcher) Table() *Table {
	return d.table
}

// Dispatch handles one request and always returns an envelope
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, exec *ExecContext) Envelope {
	start := d.now()
	if req == nil {
		req = NewRequest("", "")
	}

	entry := d.logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"path":       req.Path,
		"request_id": requestID(req, exec),
	})
	entry.WithField("headers", MaskHeaders(req.Headers)).Info("Request received")

	if req.Method == http.MethodOptions {
		env := Preflight()
		d.complete(entry, req, routeLabelPreflight, env, start)
		return env
	}

	route, env := d.invoke(ctx, req, exec, entry)
	d.complete(entry, req, route, env, start)
	return env
}

// invoke is the single error boundary: routing misses, handler errors and
// panics are all converted to envelopes here and nowhere else.
func (d *Dispatcher) invoke(ctx context.Context, req *Request, exec *ExecContext, entry logrus.FieldLogger) (route string, env Envelope) {
	route = routeLabelUnmatched

	defer func() {
		if rec := recover(); rec != nil {
			entry.WithField("stack_trace", string(debug.Stack())).Error("Handler panicked")
			env = d.fail(entry, fmt.Errorf("handler panic: %v", rec))
		}
	}()

	r, ok := d.table.Lookup(req.Method, req.Path)
	if !ok {
		return route, d.fail(entry, routingMiss(req.Method, req.Path))
	}
	route = RouteKey{Method: r.Method, Path: r.Path}.String()

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	result, err := r.Handler(ctx, req, exec)
	if err != nil {
		return route, d.fail(entry, err)
	}
	return route, Success(result)
}

func (d *Dispatcher) fail(entry logrus.FieldLogger, err error) Envelope {
	classified := Classify(err)

	fields := logrus.Fields{
		"error_kind": classified.Kind.String(),
		"status":     classified.Status(),
	}
	if classified.Err != nil {
		fields["error"] = classified.Err.Error()
	}

	if classified.Status() >= http.StatusInternalServerError {
		entry.WithFields(fields).Error("Request failed")
	} else {
		entry.WithFields(fields).Warn("Request rejected")
	}

	return Failure(classified)
}

func (d *Dispatcher) complete(entry logrus.FieldLogger, req *Request, route string, env Envelope, start time.Time) {
	latency := d.now().Sub(start)

	entry.WithFields(logrus.Fields{
		"status":     env.StatusCode,
		"route":      route,
		"latency_ms": float64(latency.Nanoseconds()) / 1000000,
	}).Info("Request completed")

	if d.recorder != nil {
		d.recorder.Observe(req.Method, route, env.StatusCode, latency)
	}
}

// MaskHeaders returns a copy of headers with credential values hidden
func MaskHeaders(headers map[string]string) map[string]string {
	masked := make(map[string]string, len(headers))
	for k, v := range headers {
		masked[k] = v
	}
	for _, name := range sensitiveHeaders {
		if _, ok := masked[name]; ok {
			masked[name] = maskedHeaderValue
		}
	}
	return masked
}

func requestID(req *Request, exec *ExecContext) string {
	if exec != nil && exec.RequestID != "" {
		return exec.RequestID
	}
	return req.RequestID
}
