package pages

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getmockd/recordsd/pkg/loader"
	"github.com/getmockd/recordsd/pkg/navigation"
	"github.com/getmockd/recordsd/pkg/records"
)

// Page names.
const (
	List   = "list"
	Fetch  = "fetch"
	Mock   = "mock"
	Book   = "book"
	Person = "person"
)

// Page is a routable, renderable page.
type Page struct {
	Name    string
	Pattern string
	Title   string

	query func(loc navigation.Location) (loader.Query, bool)
	body  func(loc navigation.Location, snap loader.Snapshot) string
}

// Query returns the data query for loc. Pages without data return false.
func (p *Page) Query(loc navigation.Location) (loader.Query, bool) {
	if p.query == nil {
		return loader.Query{}, false
	}
	return p.query(loc)
}

// Render produces the full HTML document for loc in the given data state.
func (p *Page) Render(loc navigation.Location, snap loader.Snapshot) string {
	return execute(layoutTmpl, map[string]any{
		"title": p.Title,
		"state": snap.State.String(),
		"body":  raw(p.body(loc, snap)),
	})
}

// Status returns the HTTP status of a server render.
func (p *Page) Status(loc navigation.Location, snap loader.Snapshot) int {
	switch snap.State {
	case loader.StateFailed:
		var sc records.StatusCodeError
		if errors.As(snap.Err, &sc) {
			return sc.StatusCode()
		}
		return http.StatusBadGateway
	case loader.StateLoaded, loader.StateHydrated:
		if q, ok := p.Query(loc); ok && q.Single && len(snap.Records) == 0 {
			return http.StatusNotFound
		}
	}
	return http.StatusOK
}

// Set is the collection of pages served by a site.
type Set struct {
	people string
	books  string
	pages  []*Page
	routes *navigation.Routes
}

// Option configures a Set.
type Option func(*Set)

// WithCollections sets the collection names the data pages query.
func WithCollections(people, books string) Option {
	return func(s *Set) {
		if people != "" {
			s.people = people
		}
		if books != "" {
			s.books = books
		}
	}
}

// NewSet builds the page set and its route table.
func NewSet(opts ...Option) (*Set, error) {
	s := &Set{people: "people", books: "books", routes: navigation.NewRoutes()}
	for _, opt := range opts {
		opt(s)
	}

	s.pages = []*Page{
		listPage(),
		fetchPage(s.people),
		mockPage(s.books),
		bookPage(s.books),
		personPage(),
	}
	for _, p := range s.pages {
		if err := s.routes.Add(p.Name, p.Pattern); err != nil {
			return nil, fmt.Errorf("page %s: %w", p.Name, err)
		}
	}
	return s, nil
}

// Pages returns the pages in route registration order.
func (s *Set) Pages() []*Page {
	return append([]*Page(nil), s.pages...)
}

// Routes returns the route table of the set.
func (s *Set) Routes() *navigation.Routes {
	return s.routes
}

// Lookup returns a page by name.
func (s *Set) Lookup(name string) (*Page, bool) {
	for _, p := range s.pages {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ForLocation returns the page a resolved location routes to.
func (s *Set) ForLocation(loc navigation.Location) (*Page, error) {
	p, ok := s.Lookup(loc.Route.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", navigation.ErrNoRoute, loc.URL)
	}
	return p, nil
}

// dataBody renders the shared states of a data page, delegating loaded and
// hydrated records to fn.
func dataBody(snap loader.Snapshot, fn func([]records.Record) string) string {
	switch snap.State {
	case loader.StateEmpty:
		return execute(loadingTmpl, nil)
	case loader.StateFailed:
		msg := "unknown error"
		if snap.Err != nil {
			msg = snap.Err.Error()
		}
		return execute(errorTmpl, map[string]any{"collection": snap.Collection, "error": msg})
	default:
		return fn(snap.Records)
	}
}

func text(r records.Record, key string) string {
	s, _ := r.Text(key)
	return s
}
