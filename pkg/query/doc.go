// Package query serves record collections over HTTP as a read-only,
// filterable list API.
//
// Each registered collection is reachable at its path (and any aliases):
//
//	GET /api/getPeople                          every record, in order
//	GET /api/getPeople?country=Japan            records with country == "Japan"
//	GET /api/getPeople?country=Japan&livesIn=Italy
//
// Responses are JSON arrays in collection order; an empty match is "[]" with
// status 200. Unrecognized parameters are ignored. Any method other than GET
// is answered with the service's reject status (403 unless configured
// otherwise) and an empty body.
//
// The same filtering is available in-process through Service.Query.
package query
