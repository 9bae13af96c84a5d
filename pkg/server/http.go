package server

import (
	"encoding/base64"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"function-url-api/internal/middleware"
	"function-url-api/internal/router"
)

// MaxBodyBytes mirrors the synchronous invocation payload limit
const MaxBodyBytes = 6 << 20

// NewEngine builds the local development server. Every path except
// /metrics is handed to the dispatcher, so the local server answers exactly
// like the deployed function.
func NewEngine(c *Container) *gin.Engine {
	if c.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(c.Logger))
	engine.Use(middleware.StructuredLogger(c.Logger))
	engine.Use(middleware.PerformanceMonitor(c.Logger, c.Config.HTTP.RequestTimeout/2))
	engine.Use(middleware.RequestSizeLimit(MaxBodyBytes))

	engine.GET("/metrics", gin.WrapH(c.Metrics.Handler()))
	engine.NoRoute(DispatchHandler(c.Dispatcher, c.Config.Function.Name))

	return engine
}

// DispatchHandler adapts the dispatcher to gin
func DispatchHandler(d *router.Dispatcher, functionName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := RequestFromHTTP(c.Request)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				middleware.AbortTooLarge(c, tooLarge.Limit)
				return
			}
			writeEnvelope(c, router.Failure(router.Validation("Unable to read request body")))
			return
		}
		req.RequestID = c.GetString(middleware.RequestIDKey)

		exec := &router.ExecContext{
			FunctionName:    functionName,
			FunctionVersion: "$LOCAL",
			RequestID:       req.RequestID,
		}
		if deadline, ok := c.Request.Context().Deadline(); ok {
			exec.WithDeadline(deadline)
		}

		writeEnvelope(c, d.Dispatch(c.Request.Context(), req, exec))
	}
}

// RequestFromHTTP converts a plain HTTP request into the normalized form the
// platform would deliver. Bodies that are not valid UTF-8 are base64 encoded.
func RequestFromHTTP(r *http.Request) (*router.Request, error) {
	req := router.NewRequest(r.Method, r.URL.Path)

	for k, v := range r.Header {
		req.Headers[strings.ToLower(k)] = strings.Join(v, ",")
	}

	values := r.URL.Query()
	if len(values) > 0 {
		req.MultiQuery = make(map[string][]string, len(values))
		for k, v := range values {
			req.Query[k] = strings.Join(v, ",")
			req.MultiQuery[k] = append([]string(nil), v...)
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		req.SourceIP = host
	}

	if r.Body == nil {
		return req, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		if utf8.Valid(body) {
			req.WithBody(string(body), false)
		} else {
			req.WithBody(base64.StdEncoding.EncodeToString(body), true)
		}
	}

	return req, nil
}

func writeEnvelope(c *gin.Context, env router.Envelope) {
	for k, v := range env.Headers {
		c.Header(k, v)
	}
	c.Status(env.StatusCode)
	c.Writer.WriteHeaderNow()
	if env.Body != "" {
		c.Writer.WriteString(env.Body)
	}
}
