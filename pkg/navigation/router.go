package navigation

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/getmockd/recordsd/pkg/logging"
)

// ErrNoHistory is returned by Back when there is no previous location.
var ErrNoHistory = errors.New("no previous location")

// Location is a resolved URL.
type Location struct {
	// URL is the path and query, as navigated to.
	URL    string
	Path   string
	Query  url.Values
	Route  Route
	Params Params
}

// Router performs programmatic navigation over a route table.
type Router struct {
	routes *Routes
	bus    *Bus
	log    *slog.Logger

	mu      sync.Mutex
	history []Location
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the operational logger.
func WithRouterLogger(log *slog.Logger) RouterOption {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRouter creates a Router. A nil bus gets a fresh one.
func NewRouter(routes *Routes, bus *Bus, opts ...RouterOption) *Router {
	if bus == nil {
		bus = NewBus()
	}
	r := &Router{routes: routes, bus: bus, log: logging.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bus returns the bus route events are published on.
func (r *Router) Bus() *Bus {
	return r.bus
}

// Resolve parses href and matches it against the route table without
// navigating.
func (r *Router) Resolve(href string) (Location, error) {
	u, err := url.Parse(href)
	if err != nil {
		return Location{}, fmt.Errorf("invalid URL %q: %w", href, err)
	}
	escaped := u.EscapedPath()
	if escaped == "" {
		escaped = "/"
	}
	route, params, err := r.routes.Resolve(escaped)
	if err != nil {
		return Location{}, err
	}

	target := escaped
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return Location{
		URL:    target,
		Path:   path,
		Query:  u.Query(),
		Route:  route,
		Params: params,
	}, nil
}

// Push navigates to href and appends it to the history.
func (r *Router) Push(href string) (Location, error) {
	return r.navigate(href, func(loc Location) {
		r.history = append(r.history, loc)
	})
}

// Replace navigates to href, replacing the current history entry.
func (r *Router) Replace(href string) (Location, error) {
	return r.navigate(href, func(loc Location) {
		if len(r.history) == 0 {
			r.history = append(r.history, loc)
			return
		}
		r.history[len(r.history)-1] = loc
	})
}

// Back navigates to the previous history entry.
func (r *Router) Back() (Location, error) {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		return Location{}, ErrNoHistory
	}
	prev := r.history[len(r.history)-2]
	r.mu.Unlock()

	return r.navigate(prev.URL, func(loc Location) {
		r.history = r.history[:len(r.history)-1]
		r.history[len(r.history)-1] = loc
	})
}

// Current returns the current location.
func (r *Router) Current() (Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return Location{}, false
	}
	return r.history[len(r.history)-1], true
}

// Depth returns the number of history entries.
func (r *Router) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

func (r *Router) navigate(href string, commit func(Location)) (Location, error) {
	// An unresolvable href publishes no RouteChangeStart.
	loc, err := r.Resolve(href)
	if err != nil {
		r.log.Debug("navigation failed", "url", href, "error", err)
		r.bus.Publish(Event{Kind: RouteChangeError, URL: href, Err: err})
		return Location{}, err
	}

	r.bus.Publish(Event{Kind: RouteChangeStart, URL: loc.URL})

	r.mu.Lock()
	commit(loc)
	r.mu.Unlock()

	r.log.Debug("navigated", "url", loc.URL, "route", loc.Route.Name)
	r.bus.Publish(Event{Kind: RouteChangeComplete, URL: loc.URL, Location: loc})
	return loc, nil
}
