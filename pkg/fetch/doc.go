// Package fetch retrieves record collections from remote query services.
//
// A Client maps collection names to endpoint URLs, which come from
// configuration rather than being fixed in code:
//
//	client, err := fetch.NewClient(map[string]string{
//	    "people": "http://localhost:3000/api/getPeople",
//	    "books":  "http://localhost:4001/books",
//	})
//	books, err := client.Fetch(ctx, "books", records.Filter{{Field: "author", Value: "Banana Yoshimoto"}})
//
// Requests for each endpoint pass through a circuit breaker so that a dead
// upstream fails fast. Cache wraps any Fetcher with a Redis-backed response
// cache.
package fetch
