package site

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/recordsd/pkg/fetch"
	"github.com/getmockd/recordsd/pkg/loader"
	"github.com/getmockd/recordsd/pkg/metrics"
	"github.com/getmockd/recordsd/pkg/pages"
	"github.com/getmockd/recordsd/pkg/query"
	"github.com/getmockd/recordsd/pkg/records"
)

type testEnv struct {
	site    *httptest.Server
	data    *httptest.Server
	metrics *metrics.Collector
}

func register(t *testing.T, svc *query.Service, name string, filters []string, path string, aliases ...string) {
	t.Helper()
	recs, err := records.LoadSeed("builtin:" + name)
	require.NoError(t, err)
	coll, err := records.NewCollection(name, recs, filters...)
	require.NoError(t, err)
	require.NoError(t, svc.Register(coll, path, aliases...))
}

// newEnv starts a data server with books and a site server with people and
// the pages, wired the same way the engine wires them.
func newEnv(t *testing.T) *testEnv {
	t.Helper()

	dataSvc := query.NewService()
	register(t, dataSvc, "books", nil, "/books")
	data := httptest.NewServer(dataSvc.Handler())
	t.Cleanup(data.Close)

	var handler http.Handler
	siteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(siteSrv.Close)

	m := metrics.New("recordsd")
	client, err := fetch.NewClient(map[string]string{
		"people": siteSrv.URL + "/api/getPeople",
		"books":  data.URL + "/books",
	})
	require.NoError(t, err)

	siteSvc := query.NewService(query.WithObserver(m))
	register(t, siteSvc, "people", []string{"country", "livesIn"}, "/api/getPeople", "/records")

	set, err := pages.NewSet()
	require.NoError(t, err)
	handler = New(set, loader.New(client, loader.WithObserver(m)), WithQueryService(siteSvc), WithMetrics(m)).Handler()

	return &testEnv{site: siteSrv, data: data, metrics: m}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestSite_ListPage(t *testing.T) {
	env := newEnv(t)

	resp, body := get(t, env.site.URL+"/list")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Empty(t, resp.Header.Get(ViewHeader))
	assert.Contains(t, body, `href="/Italy/Frank"`)
}

func TestSite_FetchPageForwardsFilters(t *testing.T) {
	env := newEnv(t)

	tests := []struct {
		target  string
		want    []string
		notWant []string
	}{
		{"/fetch", []string{"jonathan", "joseph", "jotaro", "josuke", "giorno"}, nil},
		{"/fetch?country=Japan", []string{"jotaro", "josuke", "giorno"}, []string{"jonathan"}},
		{"/fetch?country=Japan&livesIn=Italy", []string{"giorno"}, []string{"jotaro", "josuke"}},
		{"/fetch?livesIn=Italy", []string{"jonathan", "giorno"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			resp, body := get(t, env.site.URL+tt.target)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, `data-state="loaded"`)
			assert.NotEmpty(t, resp.Header.Get(ViewHeader))
			for _, name := range tt.want {
				assert.Contains(t, body, ">"+name+": born in")
			}
			for _, name := range tt.notWant {
				assert.NotContains(t, body, ">"+name+": born in")
			}
		})
	}
}

func TestSite_MockPageRendersLoadedInServerContext(t *testing.T) {
	env := newEnv(t)

	_, body := get(t, env.site.URL+"/mock?author=Haruki+Murakami")

	assert.Contains(t, body, `data-state="loaded"`)
	assert.NotContains(t, body, "Loading")
	assert.Equal(t, 1, strings.Count(body, "<button>see</button>"))
	assert.Contains(t, body, `href="/books/5"`)
}

func TestSite_BookPage(t *testing.T) {
	env := newEnv(t)

	resp, body := get(t, env.site.URL+"/books/4")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Kitchen written by Banana Yoshimoto on 1988")

	resp, body = get(t, env.site.URL+"/books/404")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Book 404 not found")
}

func TestSite_PersonPage(t *testing.T) {
	env := newEnv(t)

	resp, body := get(t, env.site.URL+"/Japan/jotaro")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h2>jotaro is from Japan</h2>")
}

func TestSite_UpstreamFailure(t *testing.T) {
	env := newEnv(t)
	env.data.Close()

	resp, body := get(t, env.site.URL+"/mock")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, `data-state="failed"`)
	assert.Contains(t, body, "Could not load books")
}

func TestSite_QueryServiceMounted(t *testing.T) {
	env := newEnv(t)

	resp, body := get(t, env.site.URL+"/records?country=Japan&livesIn=Italy")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `[{"id":"brando","name":"giorno","country":"Japan","livesIn":"Italy"}]`, body)

	post, err := http.Post(env.site.URL+"/api/getPeople", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer post.Body.Close()
	assert.Equal(t, http.StatusForbidden, post.StatusCode)
}

func TestSite_HealthAndMetrics(t *testing.T) {
	env := newEnv(t)

	resp, _ := get(t, env.site.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	get(t, env.site.URL+"/books/1")
	_, body := get(t, env.site.URL+"/metrics")
	assert.Contains(t, body, `recordsd_http_requests_total{method="GET",route="/books/{book}",server="site",status="200"} 1`)
	assert.Contains(t, body, `recordsd_loader_prepares_total{collection="books",context="server",state="loaded"} 1`)
}

func TestSite_UnknownRoute(t *testing.T) {
	env := newEnv(t)

	resp, _ := get(t, env.site.URL+"/a/b/c")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
