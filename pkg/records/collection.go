package records

import (
	"errors"
	"fmt"
	"net/url"
)

// Collection is a named, ordered, immutable set of records.
// It is safe for concurrent use without locking.
type Collection struct {
	name    string
	records []Record
	filters []string
	index   map[string]int
}

// NewCollection creates a collection from recs. filters lists the query
// parameters the collection recognizes; when empty every attribute is
// filterable. Every record must carry a unique id.
func NewCollection(name string, recs []Record, filters ...string) (*Collection, error) {
	if name == "" {
		return nil, errors.New("collection name cannot be empty")
	}

	c := &Collection{
		name:    name,
		records: make([]Record, len(recs)),
		filters: append([]string(nil), filters...),
		index:   make(map[string]int, len(recs)),
	}
	copy(c.records, recs)

	for i, r := range c.records {
		id, ok := r.Text(IDField)
		if !ok {
			return nil, fmt.Errorf("collection %q index %d: %w", name, i, ErrMissingID)
		}
		if _, exists := c.index[id]; exists {
			return nil, &DuplicateIDError{Collection: name, ID: id, Index: i}
		}
		c.index[id] = i
	}

	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.records)
}

// Filters returns the recognized filter fields. Empty means any field.
func (c *Collection) Filters() []string {
	return append([]string(nil), c.filters...)
}

// Recognizes reports whether field is accepted as a filter parameter.
func (c *Collection) Recognizes(field string) bool {
	if len(c.filters) == 0 {
		return true
	}
	for _, f := range c.filters {
		if f == field {
			return true
		}
	}
	return false
}

// All returns every record in collection order.
func (c *Collection) All() []Record {
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Get returns the record whose id has the given string form.
func (c *Collection) Get(id string) (Record, error) {
	i, ok := c.index[id]
	if !ok {
		return Record{}, &NotFoundError{Collection: c.name, ID: id}
	}
	return c.records[i], nil
}

// ParseFilter builds a filter from params using the collection's recognized
// fields.
func (c *Collection) ParseFilter(params url.Values) Filter {
	return ParseFilter(params, c.filters)
}

// Find returns the records matching f.
func (c *Collection) Find(f Filter) []Record {
	return Apply(c.records, f)
}

// Query filters the collection by request parameters.
// Unrecognized parameters are ignored.
func (c *Collection) Query(params url.Values) []Record {
	return c.Find(c.ParseFilter(params))
}
