// Package loader implements the dual-mode data loading used by pages.
//
// A page declares the collection query it needs. How that query is satisfied
// depends on where the page is being activated:
//
//   - ServerContext: the initial request for a URL. Prepare fetches the data
//     synchronously and the page is rendered complete.
//   - ClientContext: a navigation inside an already running session. Prepare
//     returns an empty placeholder immediately, and the fetch runs in the
//     background once the view mounts.
//
// Pages that must never show a placeholder use the Blocking strategy, which
// fetches during Prepare in both contexts.
//
// States:
//
//	empty ──▶ hydrated
//	  │
//	  └────▶ failed
//
//	loaded, hydrated and failed are terminal.
//
// Every activation performs exactly one fetch. Unmounting a view cancels its
// pending fetch, and a result that arrives afterwards is discarded without
// touching the view.
//
// Usage:
//
//	l := loader.New(fetcher)
//	q := loader.Query{Collection: "books", Filter: filter}
//	initial := l.Prepare(ctx, loader.ClientContext, q)
//	view := l.Activate(q, initial)
//	view.OnChange(render)
//	view.OnMount(ctx)
//	defer view.Unmount()
package loader
