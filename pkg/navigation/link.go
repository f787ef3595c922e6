package navigation

import (
	"net/url"
	"strings"
)

// Link is a declarative link. Href names the route pattern and As the
// concrete URL shown and navigated to; As defaults to Href.
type Link struct {
	Href  string
	As    string
	Label string
}

// Target returns the URL the link navigates to.
func (l Link) Target() string {
	if l.As != "" {
		return l.As
	}
	return l.Href
}

// Active reports whether the link points at current. Query strings and
// trailing slashes are ignored.
func (l Link) Active(current string) bool {
	return cleanPath(l.Target()) == cleanPath(current)
}

func cleanPath(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	p := strings.TrimSuffix(u.EscapedPath(), "/")
	if p == "" {
		return "/"
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		return unescaped
	}
	return p
}
