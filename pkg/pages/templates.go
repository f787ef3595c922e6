package pages

import (
	"html"
	"strings"

	"github.com/valyala/fasttemplate"
)

func tmpl(s string) *fasttemplate.Template {
	return fasttemplate.New(s, "{{", "}}")
}

var (
	layoutTmpl = tmpl(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{title}}</title></head>
<body data-state="{{state}}">
{{body}}
</body>
</html>
`)

	listTmpl = tmpl(`<div>
<h1>List</h1>
<h2>Using Link tag</h2>
Navigate to:
<ul>{{links}}</ul>
<hr />
<h2>Using custom component</h2>
Navigate to:
<ul>{{activeLinks}}</ul>
</div>`)

	linkTmpl = tmpl(`<li><a href="{{href}}" data-route="{{route}}"{{class}}>{{label}}</a></li>`)

	fetchTmpl = tmpl(`<div>
<h1>Data Fetching with getInitialProps</h1>
<h2>List of persons fetched from API</h2>
<ul>{{persons}}</ul>
<p>Press <a href="/fetch">here</a> the link to get all the Jojos</p>
<p>Press <a href="/fetch?country=Japan">here</a> the link to get only the Jojos that are born in Japan</p>
<p>Press <a href="/fetch?country=Japan&amp;livesIn=Italy">here</a> the link to get the only Jojo born in Japan but living in Italy</p>
</div>`)

	personItemTmpl = tmpl(`<li><a href="{{href}}" data-route="/[country]/[person]"><button>details</button></a>{{name}}: born in {{country}}, now lives in {{livesIn}}</li>`)

	mockTmpl = tmpl(`<div>
<h1>Data Fetching - Solving delay issue</h1>
<ul>{{books}}</ul>
</div>`)

	bookItemTmpl = tmpl(`<li><a href="{{href}}" data-route="/books/[book]"><button>see</button></a><p>{{author}}, {{printed}} - {{title}}</p></li>`)

	bookTmpl = tmpl(`<div>{{title}} written by {{author}} on {{printed}}</div>`)

	personTmpl = tmpl(`<h2>{{person}} is from {{country}}</h2>`)

	loadingTmpl  = tmpl(`<div>Loading</div>`)
	errorTmpl    = tmpl(`<div class="error">Could not load {{collection}}: {{error}}</div>`)
	notFoundTmpl = tmpl(`<div class="not-found">{{what}} not found</div>`)
	noneTmpl     = tmpl(`<div>No {{collection}} found</div>`)
)

// execute fills t. Values are escaped unless passed as raw.
func execute(t *fasttemplate.Template, values map[string]any) string {
	escaped := make(map[string]any, len(values))
	for k, v := range values {
		switch v := v.(type) {
		case raw:
			escaped[k] = string(v)
		case string:
			escaped[k] = html.EscapeString(v)
		default:
			escaped[k] = v
		}
	}
	return t.ExecuteString(escaped)
}

// raw marks already rendered markup.
type raw string

func join(items []string) raw {
	return raw(strings.Join(items, "\n"))
}
