package router

import (
	"context"
	"fmt"
	"net/http"
	"sort"
)

// WildcardPath is the path of the preflight route, matching any path
const WildcardPath = "*"

// RouteKey identifies a route by exact method and path
type RouteKey struct {
	Method string
	Path   string
}

func (k RouteKey) String() string {
	return k.Method + " " + k.Path
}

// Result is the successful outcome of a handler
type Result struct {
	Status int
	Data   any
}

// OK returns a 200 result carrying data
func OK(data any) Result {
	return Result{Status: http.StatusOK, Data: data}
}

// Status returns a result with an explicit status code
func Status(code int, data any) Result {
	return Result{Status: code, Data: data}
}

// HandlerFunc is the uniform handler signature. exec may be nil.
type HandlerFunc func(ctx context.Context, req *Request, exec *ExecContext) (Result, error)

// BodyHandlerFunc is a handler that needs the parsed request body
type BodyHandlerFunc func(ctx context.Context, req *Request, body Body, exec *ExecContext) (Result, error)

// WithBody adapts a body-dependent handler. The body is parsed only when the
// handler is invoked, and parse failures surface through the dispatcher.
func WithBody(h BodyHandlerFunc) HandlerFunc {
	return func(ctx context.Context, req *Request, exec *ExecContext) (Result, error) {
		body, err := ParseBody(req)
		if err != nil {
			return Result{}, err
		}
		return h(ctx, req, body, exec)
	}
}

// Route binds a handler to a route key
type Route struct {
	Method  string
	Path    string
	Name    string
	Handler HandlerFunc
}

// Table is an immutable exact-match route table. It is safe for concurrent
// use because nothing mutates it after NewTable returns.
type Table struct {
	routes map[RouteKey]Route
}

// NewTable builds a route table, rejecting duplicate keys and incomplete routes
func NewTable(routes ...Route) (*Table, error) {
	t := &Table{routes: make(map[RouteKey]Route, len(routes))}

	for _, r := range routes {
		if r.Method == "" || r.Path == "" {
			return nil, fmt.Errorf("%w: method and path are required", ErrInvalidRoute)
		}

		r.Method = NormalizeMethod(r.Method)
		if r.Path != WildcardPath {
			r.Path = NormalizePath(r.Path)
		}

		if r.Handler == nil && !isPreflight(r) {
			return nil, fmt.Errorf("%w: %s %s has no handler", ErrInvalidRoute, r.Method, r.Path)
		}

		key := RouteKey{Method: r.Method, Path: r.Path}
		if _, exists := t.routes[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRoute, key)
		}
		t.routes[key] = r
	}

	return t, nil
}

// MustTable is NewTable that panics on an invalid table. Intended for start-up.
func MustTable(routes ...Route) *Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup finds the route for an exact method and path
func (t *Table) Lookup(method, path string) (Route, bool) {
	if t == nil {
		return Route{}, false
	}
	r, ok := t.routes[RouteKey{Method: method, Path: path}]
	if !ok || isPreflight(r) {
		return Route{}, false
	}
	return r, true
}

// Routes returns the registered route keys in a stable order
func (t *Table) Routes() []RouteKey {
	if t == nil {
		return nil
	}
	keys := make([]RouteKey, 0, len(t.routes))
	for k := range t.routes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path == keys[j].Path {
			return keys[i].Method < keys[j].Method
		}
		return keys[i].Path < keys[j].Path
	})
	return keys
}

// Len returns the number of registered routes
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.routes)
}

// PreflightRoute documents that OPTIONS on any path is answered by the
// dispatcher before table lookup
func PreflightRoute() Route {
	return Route{Method: http.MethodOptions, Path: WildcardPath, Name: "preflight"}
}

func isPreflight(r Route) bool {
	return r.Method == http.MethodOptions && r.Path == WildcardPath
}
