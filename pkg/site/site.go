// Package site serves the demo pages, rendered in server context.
package site

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/getmockd/recordsd/pkg/httputil"
	"github.com/getmockd/recordsd/pkg/loader"
	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/metrics"
	"github.com/getmockd/recordsd/pkg/navigation"
	"github.com/getmockd/recordsd/pkg/pages"
	"github.com/getmockd/recordsd/pkg/query"
)

// ViewHeader carries the activation id of a rendered page.
const ViewHeader = "X-Recordsd-View"

// Site renders pages on request.
type Site struct {
	pages    *pages.Set
	loader   *loader.Loader
	resolver *navigation.Router
	query    *query.Service
	metrics  *metrics.Collector
	log      *slog.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithQueryService mounts svc's collections alongside the pages.
func WithQueryService(svc *query.Service) Option {
	return func(s *Site) {
		s.query = svc
	}
}

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Site) {
		s.metrics = m
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Site) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Site rendering set with data from l.
func New(set *pages.Set, l *loader.Loader, opts ...Option) *Site {
	s := &Site{
		pages:    set,
		loader:   l,
		resolver: navigation.NewRouter(set.Routes(), nil),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the site router.
func (s *Site) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httputil.RequestLogger(s.log))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware("site"))
		r.Handle("/metrics", s.metrics.Handler())
	}
	r.Get("/healthz", httputil.Health)

	for _, p := range s.pages.Pages() {
		r.Get(navigation.MustPattern(p.Pattern).ChiPattern(), s.pageHandler)
	}
	if s.query != nil {
		s.query.Mount(r)
	}
	return r
}

func (s *Site) pageHandler(w http.ResponseWriter, r *http.Request) {
	loc, err := s.resolver.Resolve(r.URL.RequestURI())
	if err != nil {
		http.NotFound(w, r)
		return
	}
	p, err := s.pages.ForLocation(loc)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	snap := loader.Snapshot{State: loader.StateLoaded}
	if q, ok := p.Query(loc); ok {
		view := s.loader.Activate(q, s.loader.Prepare(r.Context(), loader.ServerContext, q))
		defer view.Unmount()
		snap = view.Snapshot()
		w.Header().Set(ViewHeader, view.ID())
	}

	status := p.Status(loc, snap)
	if status >= http.StatusInternalServerError {
		s.log.Warn("page rendered with failed data", "page", p.Name, "url", loc.URL, "error", snap.Err)
	}
	if err := httputil.WriteHTML(w, status, p.Render(loc, snap)); err != nil {
		s.log.Debug("failed to write page", "page", p.Name, "error", err)
	}
}
