// Package pages defines the demo pages served by the site and rendered by
// browser sessions.
//
//	/list                 static links, declarative and programmatic
//	/fetch                people, blocking fetch, forwards country and livesIn
//	/mock                 books, dual-mode fetch, forwards author
//	/books/[book]         one book, blocking fetch
//	/[country]/[person]   route parameters only
//
// Pages are rendered with fasttemplate; every interpolated value is HTML
// escaped.
package pages
