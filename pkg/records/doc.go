// Package records provides the immutable, read-only record collections served
// by the query service.
//
// A Record is an ordered list of fields. The "id" field is required and may
// hold an integer or a string; it uniquely identifies a record within its
// collection. Field order is preserved from the seed source through to the
// JSON encoding, so a collection seeded as
//
//   - id: 1
//     name: jonathan
//     country: UK
//
// is served as {"id":1,"name":"jonathan","country":"UK"}.
//
// Core Types:
//
//   - Record: a single entity (a person, a book, ...)
//   - Collection: a named, ordered, immutable set of records
//   - Filter: a conjunctive list of field/value conditions built from query parameters
//
// Filtering:
//
// Conditions compare the string form of a record attribute with the requested
// value. Every condition must hold for a record to be retained, so adding a
// condition can only narrow a result. Records without the attribute never
// match. Results keep collection order and are never nil.
//
// Usage:
//
//	people, err := records.LoadSeed("builtin:people")
//	coll, err := records.NewCollection("people", people, "country", "livesIn")
//	japan := coll.Query(url.Values{"country": {"Japan"}})
package records
