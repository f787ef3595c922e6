// Package engine builds and runs the recordsd servers from configuration.
//
// The site server renders the pages and serves the collections configured
// for it; the data server serves the remaining collections. Pages load their
// data through the fetch client, which reaches both servers over HTTP.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/getmockd/recordsd/pkg/config"
	"github.com/getmockd/recordsd/pkg/fetch"
	"github.com/getmockd/recordsd/pkg/httputil"
	"github.com/getmockd/recordsd/pkg/loader"
	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/metrics"
	"github.com/getmockd/recordsd/pkg/pages"
	"github.com/getmockd/recordsd/pkg/query"
	"github.com/getmockd/recordsd/pkg/records"
	"github.com/getmockd/recordsd/pkg/site"
)

// Server timeouts.
const (
	ReadHeaderTimeout = 5 * time.Second
	ShutdownTimeout   = 5 * time.Second
)

// ErrAlreadyListening is returned by Listen when called twice.
var ErrAlreadyListening = errors.New("engine is already listening")

// Engine owns both servers and everything they are built from.
type Engine struct {
	cfg     config.Config
	log     *slog.Logger
	metrics *metrics.Collector

	collections []*records.Collection
	services    map[string]*query.Service

	mu        sync.Mutex
	listeners map[string]net.Listener
	servers   map[string]*http.Server
	client    *fetch.Client
	redis     *redis.Client
	loader    *loader.Loader
	pages     *pages.Set
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMetrics replaces the default metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// New validates cfg and loads every configured collection.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		d := config.Defaults()
		cfg = &d
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      *cfg,
		log:      logging.Nop(),
		services: make(map[string]*query.Service, 2),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = metrics.New("recordsd")
	}

	for _, name := range []string{config.ServerSite, config.ServerData} {
		e.services[name] = query.NewService(
			query.WithRejectStatus(cfg.Query.MethodNotAllowedStatus),
			query.WithObserver(e.metrics),
			query.WithLogger(logging.Component(e.log, "query").With("server", name)),
		)
	}

	for _, cc := range cfg.Collections {
		c, err := LoadCollection(cc)
		if err != nil {
			return nil, err
		}
		if err := e.services[cc.Server].Register(c, cc.Path, cc.Aliases...); err != nil {
			return nil, err
		}
		e.collections = append(e.collections, c)
		e.log.Debug("collection loaded", "collection", c.Name(), "records", c.Len(), "server", cc.Server, "path", cc.Path)
	}

	return e, nil
}

// LoadCollection reads the seed of cc and builds its collection.
func LoadCollection(cc config.CollectionConfig) (*records.Collection, error) {
	recs, err := records.LoadSeed(cc.Seed)
	if err != nil {
		return nil, fmt.Errorf("collection %q: %w", cc.Name, err)
	}
	return records.NewCollection(cc.Name, recs, cc.Filters...)
}

// Config returns the effective configuration. After Listen, base URLs
// configured with port 0 carry the bound port.
func (e *Engine) Config() config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Metrics returns the metrics collector.
func (e *Engine) Metrics() *metrics.Collector {
	return e.metrics
}

// Service returns the query service of the named server.
func (e *Engine) Service(server string) (*query.Service, bool) {
	svc, ok := e.services[server]
	return svc, ok
}

// Collection returns a loaded collection by name.
func (e *Engine) Collection(name string) (*records.Collection, bool) {
	for _, c := range e.collections {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// Listen binds both servers and builds the downstream fetch path against
// the bound addresses.
func (e *Engine) Listen() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners != nil {
		return ErrAlreadyListening
	}

	listeners := make(map[string]net.Listener, 2)
	for _, name := range []string{config.ServerSite, config.ServerData} {
		ln, err := net.Listen("tcp", e.cfg.Server(name).Addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return fmt.Errorf("%s server: %w", name, err)
		}
		listeners[name] = ln
		e.resolveBaseURL(name, ln.Addr())
	}

	if err := e.buildDownstream(); err != nil {
		for _, l := range listeners {
			_ = l.Close()
		}
		return err
	}

	e.listeners = listeners
	e.servers = map[string]*http.Server{
		config.ServerSite: e.newServer(e.siteHandler()),
		config.ServerData: e.newServer(e.dataHandler()),
	}
	return nil
}

// resolveBaseURL rewrites a base URL configured with port 0 to the port the
// server actually bound.
func (e *Engine) resolveBaseURL(name string, addr net.Addr) {
	sc := e.cfg.Server(name)
	u, err := url.Parse(sc.BaseURL)
	if err != nil || u.Port() != "0" {
		return
	}
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return
	}
	u.Host = net.JoinHostPort(u.Hostname(), fmt.Sprint(tcp.Port))
	sc.BaseURL = u.String()
	if name == config.ServerData {
		e.cfg.Data = sc
	} else {
		e.cfg.Site = sc
	}
}

func (e *Engine) buildDownstream() error {
	client, err := fetch.NewClient(e.cfg.Endpoints(),
		fetch.WithTimeout(e.cfg.Fetch.Timeout),
		fetch.WithBreaker(e.cfg.BreakerSettings()),
		fetch.WithObserver(e.metrics),
		fetch.WithLogger(logging.Component(e.log, "fetch")),
	)
	if err != nil {
		return err
	}
	e.client = client

	var fetcher fetch.Fetcher = client
	if e.cfg.Cache.Enabled() {
		e.redis = redis.NewClient(&redis.Options{Addr: e.cfg.Cache.RedisAddr})
		cache := fetch.NewCache(client, e.redis, e.cfg.CacheSettings())
		cache.SetObserver(e.metrics)
		cache.SetLogger(logging.Component(e.log, "cache"))
		fetcher = cache
		e.log.Info("response cache enabled", "redis", e.cfg.Cache.RedisAddr, "ttl", e.cfg.Cache.TTL)
	}

	e.loader = loader.New(fetcher,
		loader.WithObserver(e.metrics),
		loader.WithLogger(logging.Component(e.log, "loader")),
	)

	set, err := pages.NewSet()
	if err != nil {
		return err
	}
	e.pages = set
	return nil
}

func (e *Engine) newServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

func (e *Engine) siteHandler() http.Handler {
	return site.New(e.pages, e.loader,
		site.WithQueryService(e.services[config.ServerSite]),
		site.WithMetrics(e.metrics),
		site.WithLogger(logging.Component(e.log, "site")),
	).Handler()
}

func (e *Engine) dataHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httputil.RequestLogger(logging.Component(e.log, "data")))
	r.Use(e.metrics.Middleware(config.ServerData))
	r.Handle("/metrics", e.metrics.Handler())
	r.Get("/healthz", httputil.Health)
	e.services[config.ServerData].Mount(r)
	return r
}

// Loader returns the page data loader. It is nil before Listen.
func (e *Engine) Loader() *loader.Loader {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loader
}

// Pages returns the page set. It is nil before Listen.
func (e *Engine) Pages() *pages.Set {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pages
}

// Addr returns the bound address of the named server.
func (e *Engine) Addr(server string) (net.Addr, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ln, ok := e.listeners[server]
	if !ok {
		return nil, false
	}
	return ln.Addr(), true
}

// Serve runs both servers until ctx is canceled or one of them fails, then
// shuts both down gracefully.
func (e *Engine) Serve(ctx context.Context) error {
	e.mu.Lock()
	listeners, servers := e.listeners, e.servers
	e.mu.Unlock()
	if listeners == nil {
		return errors.New("engine is not listening")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range []string{config.ServerSite, config.ServerData} {
		srv, ln := servers[name], listeners[name]
		e.log.Info("server listening", "server", name, "addr", ln.Addr().String(), "baseURL", e.cfg.Server(name).BaseURL)
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return e.shutdown()
	})

	err := g.Wait()
	e.log.Info("servers stopped")
	return err
}

// Run listens and serves until ctx is canceled.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Listen(); err != nil {
		return err
	}
	return e.Serve(ctx)
}

func (e *Engine) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	e.mu.Lock()
	servers, rdb := e.servers, e.redis
	e.mu.Unlock()

	var errs []error
	for name, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s shutdown: %w", name, err))
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	return errors.Join(errs...)
}
