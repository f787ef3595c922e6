// Package browser drives the pages the way an interactive client would.
//
// The first URL of a session is requested from the site over HTTP and arrives
// fully rendered. Every later navigation runs in client context: the router
// announces the route change, the previous view is unmounted, and the new page
// is rendered immediately from its placeholder and again when its data
// settles. Each rendering is delivered as a Frame.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/getmockd/recordsd/pkg/loader"
	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/navigation"
	"github.com/getmockd/recordsd/pkg/pages"
)

// DefaultTimeout bounds the initial page request.
const DefaultTimeout = 10 * time.Second

// ErrNotOpen is returned when navigating before Open.
var ErrNotOpen = errors.New("session not open")

// Frame is one rendering of a page.
type Frame struct {
	Seq     int
	Href    string
	Page    string
	Context loader.ExecContext
	State   string
	Status  int
	Body    string
}

// Session is a single headless client.
type Session struct {
	baseURL *url.URL
	client  *http.Client
	pages   *pages.Set
	loader  *loader.Loader
	router  *navigation.Router
	sink    func(Frame)
	log     *slog.Logger

	mu     sync.Mutex
	opened bool
	view   *loader.View

	frameMu sync.Mutex
	frames  []Frame
}

// Option configures a Session.
type Option func(*Session)

// WithHTTPClient sets the client used for the initial request.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) {
		if c != nil {
			s.client = c
		}
	}
}

// WithSink delivers every frame to fn, in order.
func WithSink(fn func(Frame)) Option {
	return func(s *Session) {
		s.sink = fn
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a session against the site at baseURL.
func New(baseURL string, set *pages.Set, l *loader.Loader, opts ...Option) (*Session, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid site URL %q", baseURL)
	}
	s := &Session{
		baseURL: u,
		client:  &http.Client{Timeout: DefaultTimeout},
		pages:   set,
		loader:  l,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = navigation.NewRouter(set.Routes(), nil, navigation.WithRouterLogger(s.log))
	return s, nil
}

// Router returns the session's router.
func (s *Session) Router() *navigation.Router {
	return s.router
}

// Open requests href from the site and records it as the current location.
func (s *Session) Open(ctx context.Context, href string) (Frame, error) {
	loc, err := s.router.Replace(href)
	if err != nil {
		return Frame{}, err
	}
	p, err := s.pages.ForLocation(loc)
	if err != nil {
		return Frame{}, err
	}

	ref, err := url.Parse(loc.URL)
	if err != nil {
		return Frame{}, err
	}
	target := s.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Frame{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("requesting %s: %w", loc.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Frame{}, fmt.Errorf("reading %s: %w", loc.URL, err)
	}

	s.mu.Lock()
	s.opened = true
	s.view = nil
	s.mu.Unlock()

	s.log.Debug("page opened", "url", loc.URL, "status", resp.StatusCode)
	return s.emit(Frame{
		Href:    loc.URL,
		Page:    p.Name,
		Context: loader.ServerContext,
		State:   renderedState(string(body)),
		Status:  resp.StatusCode,
		Body:    string(body),
	}), nil
}

// Navigate moves to href in client context. The placeholder frame is emitted
// before Navigate returns; the settled frame follows once the data arrives.
func (s *Session) Navigate(ctx context.Context, href string) error {
	s.mu.Lock()
	opened := s.opened
	s.mu.Unlock()
	if !opened {
		return ErrNotOpen
	}

	loc, err := s.router.Push(href)
	if err != nil {
		return err
	}
	return s.activate(ctx, loc)
}

// Back returns to the previous location in client context.
func (s *Session) Back(ctx context.Context) error {
	s.mu.Lock()
	opened := s.opened
	s.mu.Unlock()
	if !opened {
		return ErrNotOpen
	}

	loc, err := s.router.Back()
	if err != nil {
		return err
	}
	return s.activate(ctx, loc)
}

func (s *Session) activate(ctx context.Context, loc navigation.Location) error {
	p, err := s.pages.ForLocation(loc)
	if err != nil {
		return err
	}

	q, ok := p.Query(loc)
	if !ok {
		s.setView(nil)
		s.emit(s.clientFrame(loc, p, loader.Snapshot{State: loader.StateLoaded}))
		return nil
	}

	view := s.loader.Activate(q, s.loader.Prepare(ctx, loader.ClientContext, q))
	s.emit(s.clientFrame(loc, p, view.Snapshot()))
	view.OnChange(func(snap loader.Snapshot) {
		s.emit(s.clientFrame(loc, p, snap))
	})

	// The view lives until the next route change starts.
	bus := s.router.Bus()
	var token navigation.Token
	token = bus.Subscribe(navigation.RouteChangeStart, func(navigation.Event) {
		bus.Unsubscribe(token)
		view.Unmount()
	})

	s.setView(view)
	s.log.Debug("page activated", "url", loc.URL, "page", p.Name, "state", view.Snapshot().State.String())
	view.OnMount(ctx)
	return nil
}

// Wait blocks until the current view settles or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	view := s.view
	s.mu.Unlock()
	if view == nil {
		return nil
	}
	select {
	case <-view.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Frames returns every frame emitted so far.
func (s *Session) Frames() []Frame {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return append([]Frame(nil), s.frames...)
}

// Close unmounts the current view.
func (s *Session) Close() {
	s.setView(nil)
}

func (s *Session) setView(v *loader.View) {
	s.mu.Lock()
	prev := s.view
	s.view = v
	s.mu.Unlock()
	if prev != nil && prev != v {
		prev.Unmount()
	}
}

func (s *Session) clientFrame(loc navigation.Location, p *pages.Page, snap loader.Snapshot) Frame {
	return Frame{
		Href:    loc.URL,
		Page:    p.Name,
		Context: loader.ClientContext,
		State:   snap.State.String(),
		Status:  p.Status(loc, snap),
		Body:    p.Render(loc, snap),
	}
}

func (s *Session) emit(f Frame) Frame {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	f.Seq = len(s.frames) + 1
	s.frames = append(s.frames, f)
	if s.sink != nil {
		s.sink(f)
	}
	return f
}

// renderedState reads the data-state attribute of a rendered page.
func renderedState(body string) string {
	const attr = `data-state="`
	i := strings.Index(body, attr)
	if i < 0 {
		return ""
	}
	rest := body[i+len(attr):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return ""
	}
	return rest[:j]
}
