package pages

import (
	"github.com/getmockd/recordsd/pkg/loader"
	"github.com/getmockd/recordsd/pkg/navigation"
	"github.com/getmockd/recordsd/pkg/records"
)

var personPattern = navigation.MustPattern("/[country]/[person]")

// listPeople are the static entries linked from the list page.
var listPeople = []struct{ name, country string }{
	{"Bruno", "UK"},
	{"Frank", "Italy"},
	{"John", "nowhere"},
}

func listPage() *Page {
	return &Page{
		Name:    List,
		Pattern: "/list",
		Title:   "List",
		body: func(loc navigation.Location, _ loader.Snapshot) string {
			links := make([]string, 0, len(listPeople))
			active := make([]string, 0, len(listPeople))
			for _, p := range listPeople {
				href, _ := personPattern.Build(navigation.Params{"country": p.country, "person": p.name})

				declarative := navigation.Link{Href: personPattern.String(), As: href, Label: p.name}
				links = append(links, renderLink(declarative, loc.URL))

				programmatic := navigation.Link{Href: href, Label: p.name}
				active = append(active, renderLink(programmatic, loc.URL))
			}
			return execute(listTmpl, map[string]any{"links": join(links), "activeLinks": join(active)})
		},
	}
}

func renderLink(l navigation.Link, current string) string {
	class := ""
	if l.Active(current) {
		class = ` class="active"`
	}
	return execute(linkTmpl, map[string]any{
		"href":  l.Target(),
		"route": l.Href,
		"class": raw(class),
		"label": l.Label,
	})
}

func fetchPage(collection string) *Page {
	return &Page{
		Name:    Fetch,
		Pattern: "/fetch",
		Title:   "Data Fetching",
		query: func(loc navigation.Location) (loader.Query, bool) {
			var f records.Filter
			if country := loc.Query.Get("country"); country != "" {
				f = f.With("country", country)
				if livesIn := loc.Query.Get("livesIn"); livesIn != "" {
					f = f.With("livesIn", livesIn)
				}
			}
			return loader.Query{Collection: collection, Filter: f, Strategy: loader.Blocking}, true
		},
		body: func(_ navigation.Location, snap loader.Snapshot) string {
			persons := dataBody(snap, func(recs []records.Record) string {
				items := make([]string, 0, len(recs))
				for _, r := range recs {
					name, country := text(r, "name"), text(r, "country")
					href, err := personPattern.Build(navigation.Params{"country": country, "person": name})
					if err != nil {
						href = "#"
					}
					items = append(items, execute(personItemTmpl, map[string]any{
						"href":    href,
						"name":    name,
						"country": country,
						"livesIn": text(r, "livesIn"),
					}))
				}
				return string(join(items))
			})
			return execute(fetchTmpl, map[string]any{"persons": raw(persons)})
		},
	}
}

func mockPage(collection string) *Page {
	return &Page{
		Name:    Mock,
		Pattern: "/mock",
		Title:   "Mock",
		query: func(loc navigation.Location) (loader.Query, bool) {
			var f records.Filter
			if author := loc.Query.Get("author"); author != "" {
				f = f.With("author", author)
			}
			return loader.Query{Collection: collection, Filter: f, Strategy: loader.DualMode}, true
		},
		body: func(_ navigation.Location, snap loader.Snapshot) string {
			books := dataBody(snap, func(recs []records.Record) string {
				if len(recs) == 0 {
					return execute(noneTmpl, map[string]any{"collection": collection})
				}
				items := make([]string, 0, len(recs))
				for _, r := range recs {
					items = append(items, execute(bookItemTmpl, map[string]any{
						"href":    "/books/" + r.IDString(),
						"author":  text(r, "author"),
						"printed": text(r, "printed"),
						"title":   text(r, "title"),
					}))
				}
				return string(join(items))
			})
			return execute(mockTmpl, map[string]any{"books": raw(books)})
		},
	}
}

func bookPage(collection string) *Page {
	return &Page{
		Name:    Book,
		Pattern: "/books/[book]",
		Title:   "Book",
		query: func(loc navigation.Location) (loader.Query, bool) {
			f := records.Filter{}.With(records.IDField, loc.Params["book"])
			return loader.Query{Collection: collection, Filter: f, Single: true, Strategy: loader.Blocking}, true
		},
		body: func(loc navigation.Location, snap loader.Snapshot) string {
			return dataBody(snap, func(recs []records.Record) string {
				book, ok := loader.Snapshot{Records: recs}.Record()
				if !ok {
					return execute(notFoundTmpl, map[string]any{"what": "Book " + loc.Params["book"]})
				}
				return execute(bookTmpl, map[string]any{
					"title":   text(book, "title"),
					"author":  text(book, "author"),
					"printed": text(book, "printed"),
				})
			})
		},
	}
}

func personPage() *Page {
	return &Page{
		Name:    Person,
		Pattern: personPattern.String(),
		Title:   "Person",
		body: func(loc navigation.Location, _ loader.Snapshot) string {
			return execute(personTmpl, map[string]any{
				"person":  loc.Params["person"],
				"country": loc.Params["country"],
			})
		},
	}
}
