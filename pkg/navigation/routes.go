package navigation

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// ErrNoRoute is returned when no route matches a URL.
var ErrNoRoute = errors.New("no route matches")

// Route is a named entry of a route table.
type Route struct {
	Name    string
	Pattern Pattern
}

// Routes is an ordered route table matched with a chi tree, the same way the
// site matches page requests. Static segments take precedence over dynamic
// ones.
type Routes struct {
	mu     sync.RWMutex
	routes []Route
	byChi  map[string]Route
	mux    *chi.Mux
}

// NewRoutes creates an empty route table.
func NewRoutes() *Routes {
	return &Routes{
		byChi: make(map[string]Route),
		mux:   chi.NewMux(),
	}
}

// Add registers a route. Two patterns that differ only in parameter names
// are rejected.
func (rs *Routes) Add(name, pattern string) error {
	p, err := ParsePattern(pattern)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, r := range rs.routes {
		if r.Name == name {
			return fmt.Errorf("route %q already registered", name)
		}
		if r.Pattern.shape() == p.shape() {
			return fmt.Errorf("pattern %q already registered by route %q", pattern, r.Name)
		}
	}
	route := Route{Name: name, Pattern: p}
	rs.routes = append(rs.routes, route)
	rs.byChi[p.ChiPattern()] = route
	rs.mux.Method(http.MethodGet, p.ChiPattern(), http.NotFoundHandler())
	return nil
}

// All returns the routes in registration order.
func (rs *Routes) All() []Route {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return append([]Route(nil), rs.routes...)
}

// Resolve finds the route matching the escaped path and returns its
// parameters, unescaped. A trailing slash is ignored.
func (rs *Routes) Resolve(path string) (Route, Params, error) {
	search := path
	if len(search) > 1 {
		search = strings.TrimRight(search, "/")
	}
	if search == "" {
		search = "/"
	}

	rs.mu.RLock()
	rctx := chi.NewRouteContext()
	matched := rs.mux.Find(rctx, http.MethodGet, search)
	route, ok := rs.byChi[matched]
	rs.mu.RUnlock()
	if matched == "" || !ok {
		return Route{}, nil, fmt.Errorf("%w: %s", ErrNoRoute, path)
	}

	params := Params{}
	for i, key := range rctx.URLParams.Keys {
		value, err := url.PathUnescape(rctx.URLParams.Values[i])
		if err != nil || value == "" {
			return Route{}, nil, fmt.Errorf("%w: %s", ErrNoRoute, path)
		}
		params[key] = value
	}
	return route, params, nil
}
