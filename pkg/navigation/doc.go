// Package navigation provides client-side routing for browser sessions.
//
// Routes are declared with patterns whose dynamic segments are written in
// brackets, for example "/books/[book]" or "/[country]/[person]". A Router
// resolves URLs against the route table, keeps a history, and announces each
// navigation on a Bus:
//
//	RouteChangeStart -> RouteChangeComplete
//	RouteChangeError                        (no route matched)
//
// A failed navigation publishes no RouteChangeStart, so the current view
// stays mounted.
//
// Subscribers hold a Token and must release it with Unsubscribe when they go
// away, so that a discarded view never receives route events.
package navigation
