package query

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/getmockd/recordsd/pkg/httputil"
	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/records"
)

// route binds a URL path to a collection.
type route struct {
	path       string
	collection *records.Collection
}

// Service holds the collections answered by one server.
type Service struct {
	mu           sync.RWMutex
	collections  map[string]*records.Collection
	routes       []route
	rejectStatus int
	observer     Observer
	log          *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRejectStatus sets the status answered to non-GET requests.
// Only 403 and 405 are accepted; other values are ignored.
func WithRejectStatus(status int) Option {
	return func(s *Service) {
		if ValidRejectStatus(status) {
			s.rejectStatus = status
		}
	}
}

// WithObserver sets the query observer.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates an empty Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		collections:  make(map[string]*records.Collection),
		rejectStatus: DefaultRejectStatus,
		observer:     NoopObserver{},
		log:          logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register serves c at path and at every alias.
func (s *Service) Register(c *records.Collection, path string, aliases ...string) error {
	if c == nil {
		return errors.New("collection cannot be nil")
	}

	paths := append([]string{path}, aliases...)
	for _, p := range paths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("collection %q: path %q must start with /", c.Name(), p)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[c.Name()]; exists {
		return fmt.Errorf("collection %q already registered", c.Name())
	}
	for _, p := range paths {
		for _, rt := range s.routes {
			if rt.path == p {
				return fmt.Errorf("path %q already serves collection %q", p, rt.collection.Name())
			}
		}
	}

	s.collections[c.Name()] = c
	for _, p := range paths {
		s.routes = append(s.routes, route{path: p, collection: c})
	}
	return nil
}

// Collection returns a registered collection by name.
func (s *Service) Collection(name string) (*records.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, &records.NotFoundError{Collection: name}
	}
	return c, nil
}

// Names returns the registered collection names in sorted order.
func (s *Service) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns every served path in registration order.
func (s *Service) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, len(s.routes))
	for i, rt := range s.routes {
		paths[i] = rt.path
	}
	return paths
}

// RejectStatus returns the status answered to non-GET requests.
func (s *Service) RejectStatus() int {
	return s.rejectStatus
}

// Query filters the named collection by params. An empty result is not an
// error; only an unknown collection is.
func (s *Service) Query(name string, params url.Values) ([]records.Record, error) {
	c, err := s.Collection(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := c.Query(params)
	s.observer.OnList(name, len(result), time.Since(start))
	return result, nil
}

// CheckMethod returns a MethodNotAllowedError for any method but GET.
func (s *Service) CheckMethod(collection, method string) error {
	if method == http.MethodGet {
		return nil
	}
	return &MethodNotAllowedError{Collection: collection, Method: method, Status: s.rejectStatus}
}

// Mount registers a handler for every path registered so far.
// The handlers accept all methods so that non-GET requests receive the
// reject status rather than the router's own 405.
func (s *Service) Mount(r chi.Router) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rt := range s.routes {
		r.HandleFunc(rt.path, s.listHandler(rt.collection))
	}
}

// Handler returns a standalone router serving the registered collections.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.Mount(r)
	return r
}

func (s *Service) listHandler(c *records.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.CheckMethod(c.Name(), r.Method); err != nil {
			var mna *MethodNotAllowedError
			if errors.As(err, &mna) && mna.StatusCode() == http.StatusMethodNotAllowed {
				w.Header().Set("Allow", http.MethodGet)
			}
			s.observer.OnRejected(c.Name(), r.Method)
			s.log.Debug("rejected collection request", "collection", c.Name(), "method", r.Method)
			httputil.WriteEmpty(w, s.rejectStatus)
			return
		}

		start := time.Now()
		params := r.URL.Query()
		result := c.Query(params)

		if err := httputil.WriteJSON(w, http.StatusOK, result); err != nil {
			s.log.Error("failed to encode collection response", "collection", c.Name(), "error", err)
			return
		}

		elapsed := time.Since(start)
		s.observer.OnList(c.Name(), len(result), elapsed)
		s.log.Debug("collection query served",
			"collection", c.Name(),
			"filter", c.ParseFilter(params).String(),
			"count", len(result),
			"duration", elapsed,
		)
	}
}
