package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Params holds the values of a pattern's dynamic segments.
type Params map[string]string

type segment struct {
	value   string
	dynamic bool
}

// Pattern is a route pattern such as "/books/[book]".
type Pattern struct {
	raw      string
	segments []segment
}

// ParsePattern parses a route pattern. Dynamic segments are written as
// "[name]" and must span a whole path segment.
func ParsePattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("pattern %q must start with /", raw)
	}

	p := Pattern{raw: raw}
	seen := make(map[string]bool)
	for _, part := range splitPath(raw) {
		if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") {
			name := part[1 : len(part)-1]
			if name == "" || strings.ContainsAny(name, "[]") {
				return Pattern{}, fmt.Errorf("pattern %q: invalid segment %q", raw, part)
			}
			if seen[name] {
				return Pattern{}, fmt.Errorf("pattern %q: duplicate parameter %q", raw, name)
			}
			seen[name] = true
			p.segments = append(p.segments, segment{value: name, dynamic: true})
			continue
		}
		if strings.ContainsAny(part, "[]{}*") {
			return Pattern{}, fmt.Errorf("pattern %q: invalid segment %q", raw, part)
		}
		p.segments = append(p.segments, segment{value: part})
	}
	return p, nil
}

// MustPattern is like ParsePattern but panics on error.
func MustPattern(raw string) Pattern {
	p, err := ParsePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Pattern) String() string {
	return p.raw
}

// DynamicSegments returns the number of dynamic segments.
func (p Pattern) DynamicSegments() int {
	n := 0
	for _, s := range p.segments {
		if s.dynamic {
			n++
		}
	}
	return n
}

// shape is the pattern with parameter names erased.
func (p Pattern) shape() string {
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		if seg.dynamic {
			b.WriteString("{}")
		} else {
			b.WriteString(seg.value)
		}
	}
	return b.String()
}

// ChiPattern returns the pattern in chi router syntax.
func (p Pattern) ChiPattern() string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		if seg.dynamic {
			b.WriteString("{" + seg.value + "}")
		} else {
			b.WriteString(seg.value)
		}
	}
	return b.String()
}

// ErrMissingParam is returned by Build when a dynamic segment has no value.
var ErrMissingParam = errors.New("missing route parameter")

// Build fills the dynamic segments with params, escaping each value.
func (p Pattern) Build(params Params) (string, error) {
	if len(p.segments) == 0 {
		return "/", nil
	}
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		if !seg.dynamic {
			b.WriteString(seg.value)
			continue
		}
		v, ok := params[seg.value]
		if !ok || v == "" {
			return "", fmt.Errorf("%w: %s in %s", ErrMissingParam, seg.value, p.raw)
		}
		b.WriteString(url.PathEscape(v))
	}
	return b.String(), nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
