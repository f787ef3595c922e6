package records

import (
	"net/url"
	"sort"
	"strings"
)

// Condition requires the named field to equal Value.
type Condition struct {
	Field string
	Value string
}

// Filter is a conjunctive list of conditions. The zero value matches
// every record.
type Filter []Condition

// ParseFilter builds a filter from query parameters.
// When recognized is non-empty only those fields are considered, in the given
// order, and every other parameter is ignored. An empty recognized list
// accepts every parameter (sorted by name for a stable order). Repeated
// parameters use their first value and empty values are treated as absent.
func ParseFilter(params url.Values, recognized []string) Filter {
	if len(params) == 0 {
		return nil
	}

	fields := recognized
	if len(fields) == 0 {
		fields = make([]string, 0, len(params))
		for k := range params {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}

	var f Filter
	for _, field := range fields {
		if v := params.Get(field); v != "" {
			f = append(f, Condition{Field: field, Value: v})
		}
	}
	return f
}

// With returns a copy of the filter with an extra condition appended.
func (f Filter) With(field, value string) Filter {
	out := make(Filter, len(f), len(f)+1)
	copy(out, f)
	return append(out, Condition{Field: field, Value: value})
}

// Matches reports whether every condition holds for r.
func (f Filter) Matches(r Record) bool {
	for _, c := range f {
		v, ok := r.Text(c.Field)
		if !ok || v != c.Value {
			return false
		}
	}
	return true
}

// Values converts the filter back into query parameters.
func (f Filter) Values() url.Values {
	v := make(url.Values, len(f))
	for _, c := range f {
		v.Add(c.Field, c.Value)
	}
	return v
}

// Encode returns the filter as a query string in condition order.
func (f Filter) Encode() string {
	parts := make([]string, 0, len(f))
	for _, c := range f {
		parts = append(parts, url.QueryEscape(c.Field)+"="+url.QueryEscape(c.Value))
	}
	return strings.Join(parts, "&")
}

// String implements fmt.Stringer.
func (f Filter) String() string {
	if len(f) == 0 {
		return "*"
	}
	return f.Encode()
}

// Apply returns the records matching f in their original order.
// The result is never nil.
func Apply(recs []Record, f Filter) []Record {
	result := make([]Record, 0, len(recs))
	for _, r := range recs {
		if f.Matches(r) {
			result = append(result, r)
		}
	}
	return result
}
