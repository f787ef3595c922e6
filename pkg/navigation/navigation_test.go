package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteRoutes(t *testing.T) *Routes {
	t.Helper()
	rs := NewRoutes()
	require.NoError(t, rs.Add("person", "/[country]/[person]"))
	require.NoError(t, rs.Add("book", "/books/[book]"))
	require.NoError(t, rs.Add("list", "/list"))
	require.NoError(t, rs.Add("fetch", "/fetch"))
	require.NoError(t, rs.Add("mock", "/mock"))
	return rs
}

// =============================================================================
// Pattern
// =============================================================================

func TestParsePattern(t *testing.T) {
	tests := []struct {
		raw     string
		chi     string
		dynamic int
		wantErr bool
	}{
		{raw: "/", chi: "/"},
		{raw: "/list", chi: "/list"},
		{raw: "/books/[book]", chi: "/books/{book}", dynamic: 1},
		{raw: "/[country]/[person]", chi: "/{country}/{person}", dynamic: 2},
		{raw: "list", wantErr: true},
		{raw: "/[]", wantErr: true},
		{raw: "/a[b]", wantErr: true},
		{raw: "/[x]/[x]", wantErr: true},
		{raw: "/{x}", wantErr: true},
		{raw: "/files/*", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			p, err := ParsePattern(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.chi, p.ChiPattern())
			assert.Equal(t, tt.dynamic, p.DynamicSegments())
			assert.Equal(t, tt.raw, p.String())
		})
	}
}

func TestPattern_Build(t *testing.T) {
	p := MustPattern("/[country]/[person]")

	got, err := p.Build(Params{"country": "UK", "person": "Bruno"})
	require.NoError(t, err)
	assert.Equal(t, "/UK/Bruno", got)

	got, err = p.Build(Params{"country": "nowhere", "person": "John Doe"})
	require.NoError(t, err)
	assert.Equal(t, "/nowhere/John%20Doe", got)

	_, err = p.Build(Params{"country": "UK"})
	assert.ErrorIs(t, err, ErrMissingParam)
}

func TestMustPattern_Panics(t *testing.T) {
	assert.Panics(t, func() { MustPattern("nope") })
}

// =============================================================================
// Routes
// =============================================================================

func TestRoutes_StaticWins(t *testing.T) {
	rs := siteRoutes(t)

	route, params, err := rs.Resolve("/books/2")
	require.NoError(t, err)
	assert.Equal(t, "book", route.Name)
	assert.Equal(t, Params{"book": "2"}, params)

	route, params, err = rs.Resolve("/Italy/giorno")
	require.NoError(t, err)
	assert.Equal(t, "person", route.Name)
	assert.Equal(t, "giorno", params["person"])

	route, _, err = rs.Resolve("/list")
	require.NoError(t, err)
	assert.Equal(t, "list", route.Name)

	_, _, err = rs.Resolve("/a/b/c")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestRoutes_ResolveParams(t *testing.T) {
	rs := siteRoutes(t)

	tests := []struct {
		path   string
		route  string
		params Params
	}{
		{path: "/Japan/jotaro", route: "person", params: Params{"country": "Japan", "person": "jotaro"}},
		{path: "/nowhere/John%20Doe/", route: "person", params: Params{"country": "nowhere", "person": "John Doe"}},
		{path: "/UK/a%2Fb", route: "person", params: Params{"country": "UK", "person": "a/b"}},
		{path: "/books/4/", route: "book", params: Params{"book": "4"}},
		{path: "/listing/x", route: "person", params: Params{"country": "listing", "person": "x"}},
		{path: "/mock", route: "mock", params: Params{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, params, err := rs.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.route, route.Name)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestRoutes_ResolveMisses(t *testing.T) {
	rs := siteRoutes(t)
	for _, path := range []string{"/", "", "/Japan", "/Japan/jotaro/extra", "/books", "/mock/1/2"} {
		_, _, err := rs.Resolve(path)
		assert.ErrorIs(t, err, ErrNoRoute, path)
	}

	_, _, err := NewRoutes().Resolve("/list")
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestRoutes_AddDuplicates(t *testing.T) {
	rs := siteRoutes(t)
	assert.Error(t, rs.Add("list", "/other"))
	assert.Error(t, rs.Add("other", "/list"))
	assert.Error(t, rs.Add("bad", "no-slash"))
	assert.Error(t, rs.Add("shadow", "/books/[id]"))
	assert.Error(t, rs.Add("brace", "/{x}"))
	assert.Len(t, rs.All(), 5)
}

// =============================================================================
// Bus
// =============================================================================

func TestBus_SubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()
	var got []string

	t1 := bus.Subscribe(RouteChangeStart, func(e Event) { got = append(got, "first:"+e.URL) })
	bus.Subscribe(RouteChangeStart, func(e Event) { got = append(got, "second:"+e.URL) })
	bus.Subscribe(RouteChangeComplete, func(e Event) { got = append(got, "complete:"+e.URL) })

	bus.Publish(Event{Kind: RouteChangeStart, URL: "/mock"})
	assert.Equal(t, []string{"first:/mock", "second:/mock"}, got)

	bus.Unsubscribe(t1)
	bus.Unsubscribe(t1)
	bus.Unsubscribe(Token(999))
	got = nil

	bus.Publish(Event{Kind: RouteChangeStart, URL: "/list"})
	assert.Equal(t, []string{"second:/list"}, got)
	assert.Equal(t, 1, bus.Subscribers(RouteChangeStart))
	assert.Equal(t, 1, bus.Subscribers(RouteChangeComplete))
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	calls := 0

	var token Token
	token = bus.Subscribe(RouteChangeStart, func(Event) {
		calls++
		bus.Unsubscribe(token)
	})

	bus.Publish(Event{Kind: RouteChangeStart})
	bus.Publish(Event{Kind: RouteChangeStart})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.Subscribers(RouteChangeStart))
}

// =============================================================================
// Router
// =============================================================================

func TestRouter_PushEmitsEvents(t *testing.T) {
	r := NewRouter(siteRoutes(t), nil)
	var kinds []EventKind
	for _, k := range []EventKind{RouteChangeStart, RouteChangeComplete, RouteChangeError} {
		r.Bus().Subscribe(k, func(e Event) { kinds = append(kinds, e.Kind) })
	}

	loc, err := r.Push("/mock?author=Banana+Yoshimoto")
	require.NoError(t, err)
	assert.Equal(t, "mock", loc.Route.Name)
	assert.Equal(t, "/mock?author=Banana+Yoshimoto", loc.URL)
	assert.Equal(t, "Banana Yoshimoto", loc.Query.Get("author"))
	assert.Equal(t, []EventKind{RouteChangeStart, RouteChangeComplete}, kinds)

	current, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, "/mock", current.Path)
}

func TestRouter_PushUnknownRoute(t *testing.T) {
	r := NewRouter(siteRoutes(t), nil)
	_, err := r.Push("/list")
	require.NoError(t, err)

	var events []Event
	for _, k := range []EventKind{RouteChangeStart, RouteChangeComplete, RouteChangeError} {
		r.Bus().Subscribe(k, func(e Event) { events = append(events, e) })
	}

	_, err = r.Push("/a/b/c")
	assert.ErrorIs(t, err, ErrNoRoute)
	require.Len(t, events, 1)
	assert.Equal(t, RouteChangeError, events[0].Kind)
	assert.ErrorIs(t, events[0].Err, ErrNoRoute)

	current, _ := r.Current()
	assert.Equal(t, "/list", current.URL)
	assert.Equal(t, 1, r.Depth())
}

func TestRouter_ReplaceAndBack(t *testing.T) {
	r := NewRouter(siteRoutes(t), nil)

	_, err := r.Back()
	assert.ErrorIs(t, err, ErrNoHistory)

	_, err = r.Replace("/list")
	require.NoError(t, err)
	_, err = r.Push("/fetch")
	require.NoError(t, err)
	_, err = r.Replace("/fetch?country=Japan")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Depth())

	loc, err := r.Back()
	require.NoError(t, err)
	assert.Equal(t, "/list", loc.URL)
	assert.Equal(t, 1, r.Depth())

	_, err = r.Back()
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestRouter_CurrentEmpty(t *testing.T) {
	_, ok := NewRouter(NewRoutes(), NewBus()).Current()
	assert.False(t, ok)
}

// =============================================================================
// Link
// =============================================================================

func TestLink(t *testing.T) {
	l := Link{Href: "/[country]/[person]", As: "/UK/Bruno", Label: "Bruno"}
	assert.Equal(t, "/UK/Bruno", l.Target())
	assert.True(t, l.Active("/UK/Bruno"))
	assert.True(t, l.Active("/UK/Bruno/?tab=1"))
	assert.False(t, l.Active("/Italy/Frank"))

	plain := Link{Href: "/list"}
	assert.Equal(t, "/list", plain.Target())
	assert.True(t, plain.Active("/list"))

	spaced := Link{Href: "/[country]/[person]", As: "/nowhere/John%20Doe"}
	assert.True(t, spaced.Active("/nowhere/John Doe"))
}
