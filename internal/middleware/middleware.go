package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"function-url-api/internal/router"
)

// Recovery answers panics that escape outside the dispatcher with the
// standard internal error envelope
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.WithFields(logrus.Fields{
					"request_id":  c.GetString(RequestIDKey),
					"method":      c.Request.Method,
					"path":        c.Request.URL.Path,
					"error":       fmt.Sprint(rec),
					"stack_trace": string(debug.Stack()),
				}).Error("Server panicked")

				env := router.Failure(router.Classify(fmt.Errorf("panic: %v", rec)))
				for k, v := range env.Headers {
					c.Header(k, v)
				}
				c.AbortWithStatus(env.StatusCode)
				c.Writer.WriteString(env.Body)
			}
		}()
		c.Next()
	}
}

// RequestSizeLimit limits the size of request bodies. Bodies without a
// declared length are capped by http.MaxBytesReader and rejected by the
// reader with AbortTooLarge.
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			AbortTooLarge(c, maxSize)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// AbortTooLarge answers with a 413 envelope
func AbortTooLarge(c *gin.Context, maxSize int64) {
	env := router.Failure(router.Validationf("Request body exceeds maximum allowed size (%d bytes)", maxSize))
	for k, v := range env.Headers {
		c.Header(k, v)
	}
	c.AbortWithStatus(http.StatusRequestEntityTooLarge)
	c.Writer.WriteString(env.Body)
}
