package server

import (
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/encoding/json"

	"function-url-api/internal/router"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestEngine(t *testing.T) {
	container := newTestContainer(t)
	engine := NewEngine(container)

	t.Run("Root", func(t *testing.T) {
		w := serve(t, engine, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Unexpected content type %q", w.Header().Get("Content-Type"))
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected CORS header")
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Error("Expected request id header")
		}
	})

	t.Run("Echo", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Type", "application/json")
		w := serve(t, engine, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"echo":{"a":1}`) {
			t.Errorf("Unexpected body %s", w.Body.String())
		}
	})

	t.Run("Strands", func(t *testing.T) {
		w := serve(t, engine, httptest.NewRequest(http.MethodPost, "/strands", strings.NewReader(`{"query":"capital of France?"}`)))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
		}
		var body struct {
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		if body.Data["response"] != "Paris" {
			t.Errorf("Unexpected response %v", body.Data["response"])
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		w := serve(t, engine, httptest.NewRequest(http.MethodDelete, "/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("Expected 404, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "DELETE /nope") {
			t.Errorf("Expected method and path in body, got %s", w.Body.String())
		}
	})

	t.Run("Preflight", func(t *testing.T) {
		w := serve(t, engine, httptest.NewRequest(http.MethodOptions, "/anything", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("Expected empty body, got %q", w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Methods") != router.AllowMethods {
			t.Errorf("Unexpected allow methods %q", w.Header().Get("Access-Control-Allow-Methods"))
		}
	})

	t.Run("Error", func(t *testing.T) {
		w := serve(t, engine, httptest.NewRequest(http.MethodGet, "/error", nil))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("Expected 500, got %d", w.Code)
		}
	})

	t.Run("ChunkedBodyTooLarge", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("a", MaxBodyBytes+1)))
		r.ContentLength = -1

		w := serve(t, engine, r)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("Expected 413, got %d", w.Code)
		}
		var body struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		if body.Success || !strings.Contains(body.Error, "exceeds maximum allowed size") {
			t.Errorf("Unexpected envelope %s", w.Body.String())
		}
		if strings.Contains(body.Error, "http:") {
			t.Errorf("Expected internal error text to stay out of the response, got %q", body.Error)
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		serve(t, engine, httptest.NewRequest(http.MethodGet, "/time", nil))

		w := serve(t, engine, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `route="GET /time"`) {
			t.Errorf("Expected route metrics, got:\n%s", w.Body.String())
		}
	})
}

func TestRequestFromHTTP(t *testing.T) {
	t.Run("HeadersAndQuery", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/test-params?tag=a&tag=b&name=x", nil)
		r.Header.Set("X-Custom", "value")
		r.RemoteAddr = "192.0.2.1:4321"

		req, err := RequestFromHTTP(r)
		if err != nil {
			t.Fatalf("RequestFromHTTP failed: %v", err)
		}
		if req.Header("x-custom") != "value" {
			t.Errorf("Expected lower-cased header lookup, got %v", req.Headers)
		}
		if req.Query["tag"] != "a,b" || req.Query["name"] != "x" {
			t.Errorf("Unexpected query %v", req.Query)
		}
		if len(req.MultiQuery["tag"]) != 2 {
			t.Errorf("Unexpected multi-value query %v", req.MultiQuery)
		}
		if req.SourceIP != "192.0.2.1" {
			t.Errorf("Unexpected source ip %q", req.SourceIP)
		}
		if req.Body != nil {
			t.Error("Expected no body")
		}
	})

	t.Run("BinaryBodyIsBase64Encoded", func(t *testing.T) {
		payload := []byte{0xff, 0xfe, 0x00, 0x01}
		r := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(string(payload)))

		req, err := RequestFromHTTP(r)
		if err != nil {
			t.Fatalf("RequestFromHTTP failed: %v", err)
		}
		if !req.IsBase64 || req.Body == nil || *req.Body != base64.StdEncoding.EncodeToString(payload) {
			t.Errorf("Expected base64 body, got %v %v", req.IsBase64, req.Body)
		}
	})

	t.Run("ReadError", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/echo", nil)
		r.Body = io.NopCloser(failingReader{})

		if _, err := RequestFromHTTP(r); err == nil {
			t.Error("Expected read error")
		}
	})
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
