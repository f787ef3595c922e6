// Package metrics exposes Prometheus metrics for recordsd.
//
// A Collector owns a private registry and implements the observer interfaces
// of the query, loader and fetch packages, so a single value can be handed to
// every component:
//
//	m := metrics.New("recordsd")
//	svc := query.NewService(query.WithObserver(m))
//	l := loader.New(client, loader.WithObserver(m))
//	r.Use(m.Middleware("site"))
//	r.Handle("/metrics", m.Handler())
//
// # Metrics
//
//   - <ns>_http_requests_total: counter (labels: server, method, route, status)
//   - <ns>_http_request_duration_seconds: histogram (labels: server, method, route)
//   - <ns>_query_results: histogram of records returned per list (labels: collection)
//   - <ns>_query_rejected_total: counter (labels: collection, method)
//   - <ns>_loader_prepares_total: counter (labels: collection, context, state)
//   - <ns>_loader_transitions_total: counter (labels: collection, from, to)
//   - <ns>_loader_discards_total: counter (labels: collection)
//   - <ns>_fetch_requests_total: counter (labels: collection, outcome)
//   - <ns>_fetch_duration_seconds: histogram (labels: collection)
//   - <ns>_fetch_cache_lookups_total: counter (labels: collection, result)
//   - <ns>_fetch_breaker_state: gauge, 0 closed, 1 half-open, 2 open (labels: collection)
//
// Route labels use the router pattern (/books/{book}) rather than the raw
// path to keep cardinality bounded.
package metrics
