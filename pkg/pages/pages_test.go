package pages

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/recordsd/pkg/loader"
	"github.com/getmockd/recordsd/pkg/navigation"
	"github.com/getmockd/recordsd/pkg/records"
)

func resolve(t *testing.T, s *Set, href string) (*Page, navigation.Location) {
	t.Helper()
	loc, err := navigation.NewRouter(s.Routes(), nil).Resolve(href)
	require.NoError(t, err)
	p, err := s.ForLocation(loc)
	require.NoError(t, err)
	return p, loc
}

func newSet(t *testing.T) *Set {
	t.Helper()
	s, err := NewSet()
	require.NoError(t, err)
	return s
}

func loaded(recs ...records.Record) loader.Snapshot {
	return loader.Snapshot{State: loader.StateLoaded, Records: recs}
}

func TestNewSet_Routes(t *testing.T) {
	s := newSet(t)

	var names []string
	for _, p := range s.Pages() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{List, Fetch, Mock, Book, Person}, names)

	p, _ := resolve(t, s, "/books/3")
	assert.Equal(t, Book, p.Name)
	p, _ = resolve(t, s, "/Japan/jotaro")
	assert.Equal(t, Person, p.Name)
	p, _ = resolve(t, s, "/mock?author=x")
	assert.Equal(t, Mock, p.Name)

	_, ok := s.Lookup("missing")
	assert.False(t, ok)
}

// =============================================================================
// Queries
// =============================================================================

func TestFetchPage_Query(t *testing.T) {
	s := newSet(t)

	tests := []struct {
		href string
		want string
	}{
		{"/fetch", "*"},
		{"/fetch?country=Japan", "country=Japan"},
		{"/fetch?country=Japan&livesIn=Italy", "country=Japan&livesIn=Italy"},
		{"/fetch?livesIn=Italy", "*"},
		{"/fetch?country=&livesIn=Italy", "*"},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			p, loc := resolve(t, s, tt.href)
			q, ok := p.Query(loc)
			require.True(t, ok)
			assert.Equal(t, "people", q.Collection)
			assert.Equal(t, loader.Blocking, q.Strategy)
			assert.Equal(t, tt.want, q.Filter.String())
		})
	}
}

func TestMockPage_Query(t *testing.T) {
	s, err := NewSet(WithCollections("", "novels"))
	require.NoError(t, err)

	p, loc := resolve(t, s, "/mock?author=Banana+Yoshimoto")
	q, ok := p.Query(loc)
	require.True(t, ok)
	assert.Equal(t, "novels", q.Collection)
	assert.Equal(t, loader.DualMode, q.Strategy)
	assert.Equal(t, "author=Banana+Yoshimoto", q.Filter.Encode())
}

func TestBookPage_Query(t *testing.T) {
	p, loc := resolve(t, newSet(t), "/books/2")
	q, ok := p.Query(loc)
	require.True(t, ok)
	assert.True(t, q.Single)
	assert.Equal(t, loader.Blocking, q.Strategy)
	assert.Equal(t, "id=2", q.Filter.Encode())
}

func TestStaticPages_NoQuery(t *testing.T) {
	s := newSet(t)
	for _, href := range []string{"/list", "/UK/Bruno"} {
		p, loc := resolve(t, s, href)
		_, ok := p.Query(loc)
		assert.False(t, ok, href)
	}
}

// =============================================================================
// Rendering
// =============================================================================

func TestListPage_Render(t *testing.T) {
	p, loc := resolve(t, newSet(t), "/list")
	html := p.Render(loc, loaded())

	assert.Contains(t, html, "<title>List</title>")
	assert.Contains(t, html, `<a href="/UK/Bruno" data-route="/[country]/[person]">Bruno</a>`)
	assert.Contains(t, html, `<a href="/nowhere/John" data-route="/nowhere/John">John</a>`)
	assert.Equal(t, 6, strings.Count(html, "<li>"))
	assert.NotContains(t, html, `class="active"`)
}

func TestRenderLink_Active(t *testing.T) {
	l := navigation.Link{Href: "/Italy/Frank", Label: "Frank"}
	assert.Contains(t, renderLink(l, "/Italy/Frank"), `class="active"`)
	assert.NotContains(t, renderLink(l, "/UK/Bruno"), `class="active"`)
}

func TestFetchPage_Render(t *testing.T) {
	p, loc := resolve(t, newSet(t), "/fetch?country=Japan&livesIn=Italy")
	giorno := records.New(
		records.F("id", "brando"), records.F("name", "giorno"),
		records.F("country", "Japan"), records.F("livesIn", "Italy"),
	)

	html := p.Render(loc, loaded(giorno))

	assert.Contains(t, html, `data-state="loaded"`)
	assert.Contains(t, html, `<a href="/Japan/giorno" data-route="/[country]/[person]"><button>details</button></a>giorno: born in Japan, now lives in Italy`)
	assert.Contains(t, html, `href="/fetch?country=Japan&amp;livesIn=Italy"`)
	assert.Equal(t, http.StatusOK, p.Status(loc, loaded(giorno)))
}

func TestMockPage_RenderStates(t *testing.T) {
	p, loc := resolve(t, newSet(t), "/mock")
	kitchen := records.New(
		records.F("id", 4), records.F("title", "Kitchen"),
		records.F("author", "Banana Yoshimoto"), records.F("printed", 1988),
	)

	empty := p.Render(loc, loader.Snapshot{Collection: "books", State: loader.StateEmpty})
	assert.Contains(t, empty, "<div>Loading</div>")
	assert.Contains(t, empty, `data-state="empty"`)

	hydrated := p.Render(loc, loader.Snapshot{Collection: "books", State: loader.StateHydrated, Records: []records.Record{kitchen}})
	assert.Contains(t, hydrated, `<a href="/books/4" data-route="/books/[book]"><button>see</button></a><p>Banana Yoshimoto, 1988 - Kitchen</p>`)
	assert.NotContains(t, hydrated, "Loading")

	none := p.Render(loc, loader.Snapshot{Collection: "books", State: loader.StateLoaded, Records: []records.Record{}})
	assert.Contains(t, none, "No books found")
}

func TestPage_RenderFailed(t *testing.T) {
	p, loc := resolve(t, newSet(t), "/mock")
	snap := loader.Snapshot{
		Collection: "books",
		State:      loader.StateFailed,
		Err:        &loader.FetchFailedError{Collection: "books", Err: errors.New("connection refused")},
	}

	html := p.Render(loc, snap)

	assert.Contains(t, html, `<div class="error">Could not load books: fetching books: connection refused</div>`)
	assert.Equal(t, http.StatusBadGateway, p.Status(loc, snap))
}

func TestBookPage_Render(t *testing.T) {
	p, loc := resolve(t, newSet(t), "/books/5")
	book := records.New(
		records.F("id", 5), records.F("title", "Norwegian Wood"),
		records.F("author", "Haruki Murakami"), records.F("printed", 1994),
	)

	assert.Contains(t, p.Render(loc, loaded(book)), "<div>Norwegian Wood written by Haruki Murakami on 1994</div>")

	missing := loaded()
	assert.Contains(t, p.Render(loc, missing), "Book 5 not found")
	assert.Equal(t, http.StatusNotFound, p.Status(loc, missing))
}

func TestPersonPage_RenderEscapes(t *testing.T) {
	p, loc := resolve(t, newSet(t), "/Japan/%3Cb%3Ejotaro%3C%2Fb%3E")
	html := p.Render(loc, loaded())

	assert.Contains(t, html, "<h2>&lt;b&gt;jotaro&lt;/b&gt; is from Japan</h2>")
}
