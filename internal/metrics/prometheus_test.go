package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"function-url-api/internal/router"
)

func TestObserve(t *testing.T) {
	m := NewManager()

	m.Observe("GET", "GET /", 200, 3*time.Millisecond)
	m.Observe("GET", "GET /", 200, 5*time.Millisecond)
	m.Observe("GET", "unmatched", 404, time.Millisecond)
	m.Observe("POST", "POST /strands", 502, time.Second)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET /", "GET", "200")); got != 2 {
		t.Errorf("Expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("unmatched", "4xx")); got != 1 {
		t.Errorf("Expected 1 client error, got %v", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("POST /strands", "5xx")); got != 1 {
		t.Errorf("Expected 1 server error, got %v", got)
	}
	if count := testutil.CollectAndCount(m.requestDuration); count != 3 {
		t.Errorf("Expected 3 duration series, got %d", count)
	}
}

func TestOptions(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewManager(
		WithRegistry(registry),
		WithNamespace("fn"),
		WithConstLabels(map[string]string{"stage": "test"}),
		WithHistogramBuckets([]float64{1, 10}),
	)

	if m.Registry() != registry {
		t.Error("Expected the supplied registry to be used")
	}

	m.Observe("GET", "GET /time", 200, time.Millisecond)

	expected := `
# HELP fn_requests_total Total number of dispatched requests by route, method and status
# TYPE fn_requests_total counter
fn_requests_total{method="GET",route="GET /time",stage="test",status_code="200"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "fn_requests_total"); err != nil {
		t.Errorf("Unexpected metrics: %v", err)
	}
}

func TestSeparateManagersDoNotCollide(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Expected independent registries, got panic: %v", r)
		}
	}()
	NewManager()
	NewManager()
}

func TestHandler(t *testing.T) {
	m := NewManager()
	m.Observe("GET", "GET /health", 200, time.Millisecond)

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `api_requests_total{method="GET",route="GET /health",status_code="200"} 1`) {
		t.Errorf("Expected request counter in output, got:\n%s", body)
	}
}

func TestDispatcherIntegration(t *testing.T) {
	m := NewManager()
	logger, _ := logtest.NewNullLogger()

	table := router.MustTable(router.Route{
		Method: "GET",
		Path:   "/",
		Handler: func(ctx context.Context, req *router.Request, exec *router.ExecContext) (router.Result, error) {
			return router.OK(map[string]string{"ok": "yes"}), nil
		},
	})
	d := router.NewDispatcher(table, router.WithLogger(logger), router.WithRecorder(m))

	d.Dispatch(context.Background(), router.NewRequest("GET", "/"), nil)
	d.Dispatch(context.Background(), router.NewRequest("GET", "/missing"), nil)
	d.Dispatch(context.Background(), router.NewRequest("OPTIONS", "/missing"), nil)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET /", "GET", "200")); got != 1 {
		t.Errorf("Expected 1 routed request, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("Expected 1 unmatched request, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("OPTIONS *", "OPTIONS", "200")); got != 1 {
		t.Errorf("Expected 1 preflight request, got %v", got)
	}
}
