package keypath

import (
	"strconv"
	"strings"
)

// Segment is a single step of a parsed path: either a property name or a
// numeric array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is an ordered sequence of segments addressing at most one location
// inside a nested document. Paths are ephemeral: constructed per call,
// never retained by the structures they address.
type Path []Segment

// String reassembles the path into its canonical dotted/bracketed form.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if seg.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.Key)
	}
	return b.String()
}

// Join returns a new path with q appended to p. Neither input is mutated.
func Join(p, q Path) Path {
	out := make(Path, 0, len(p)+len(q))
	out = append(out, p...)
	return append(out, q...)
}

// Parse splits a path string on "." into segments; a segment of the form
// name[<digits>] yields the name followed by one index segment per bracket
// group. Repeated groups ("a[0][1]") are supported. Empty segments and
// malformed bracket groups fail with an *InvalidPathError.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, &InvalidPathError{Code: ErrCodeEmptyPath, Path: s, Message: "path must not be empty"}
	}

	var path Path
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return nil, &InvalidPathError{Code: ErrCodeEmptySegment, Path: s, Message: "path contains an empty segment"}
		}

		open := strings.IndexByte(part, '[')
		if open < 0 {
			if strings.IndexByte(part, ']') >= 0 {
				return nil, &InvalidPathError{Code: ErrCodeBadIndex, Path: s, Message: "unmatched ']' in segment " + strconv.Quote(part)}
			}
			path = append(path, Segment{Key: part})
			continue
		}

		if name := part[:open]; name != "" {
			path = append(path, Segment{Key: name})
		}

		// Remaining text must be a run of [digits] groups.
		rest := part[open:]
		for rest != "" {
			if rest[0] != '[' {
				return nil, &InvalidPathError{Code: ErrCodeBadIndex, Path: s, Message: "unexpected text after index in segment " + strconv.Quote(part)}
			}
			close := strings.IndexByte(rest, ']')
			if close < 0 {
				return nil, &InvalidPathError{Code: ErrCodeBadIndex, Path: s, Message: "unterminated index in segment " + strconv.Quote(part)}
			}
			idx, err := strconv.Atoi(rest[1:close])
			if err != nil || idx < 0 {
				return nil, &InvalidPathError{Code: ErrCodeBadIndex, Path: s, Message: "index must be a non-negative integer in segment " + strconv.Quote(part)}
			}
			path = append(path, Segment{Index: idx, IsIndex: true})
			rest = rest[close+1:]
		}
	}
	return path, nil
}

// Get walks root through each segment of p and returns the addressed value.
// The second return is false when any intermediate is missing, out of range,
// or not a container of the right kind. A present-but-null value returns
// (nil, true): null is present.
func Get(root any, p Path) (any, bool) {
	cur := root
	for _, seg := range p {
		if seg.IsIndex {
			arr, ok := cur.([]any)
			if !ok || seg.Index < 0 || seg.Index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.Index]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := obj[seg.Key]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Has reports whether Get would find a value at p.
func Has(root any, p Path) bool {
	_, ok := Get(root, p)
	return ok
}

// Set walks root, creating intermediate containers as needed, and assigns
// value at the leaf. An index segment creates (or grows) an array, a name
// segment creates an object. root is mutated in place. Setting through an
// existing value of the wrong kind (a scalar where a container is needed,
// or a container of the wrong kind) is a silent no-op.
func Set(root map[string]any, p Path, value any) {
	if root == nil || len(p) == 0 {
		return
	}
	if p[0].IsIndex {
		return // the document root is an object, not an array
	}

	var cur any = root
	// replace reassigns the current container in its parent; needed because
	// growing a slice produces a new backing value.
	replace := func(any) {}

	for i, seg := range p {
		last := i == len(p)-1

		switch c := cur.(type) {
		case map[string]any:
			if seg.IsIndex {
				return
			}
			if last {
				c[seg.Key] = value
				return
			}
			child, ok := c[seg.Key]
			if !ok || child == nil {
				child = newContainer(p[i+1])
				c[seg.Key] = child
			} else if !kindMatches(child, p[i+1]) {
				return
			}
			key := seg.Key
			replace = func(v any) { c[key] = v }
			cur = c[seg.Key]

		case []any:
			if !seg.IsIndex {
				return
			}
			if seg.Index >= len(c) {
				grown := append(c, make([]any, seg.Index+1-len(c))...)
				replace(grown)
				c = grown
			}
			if last {
				c[seg.Index] = value
				return
			}
			child := c[seg.Index]
			if child == nil {
				child = newContainer(p[i+1])
				c[seg.Index] = child
			} else if !kindMatches(child, p[i+1]) {
				return
			}
			idx := seg.Index
			arr := c
			replace = func(v any) { arr[idx] = v }
			cur = c[seg.Index]

		default:
			return
		}
	}
}

// Delete removes the leaf addressed by p: map keys are deleted outright,
// array slots are set to nil without compacting. A path that does not
// resolve is a no-op.
func Delete(root map[string]any, p Path) {
	if root == nil || len(p) == 0 {
		return
	}
	parent, ok := Get(root, p[:len(p)-1])
	if !ok {
		return
	}
	leaf := p[len(p)-1]
	switch c := parent.(type) {
	case map[string]any:
		if !leaf.IsIndex {
			delete(c, leaf.Key)
		}
	case []any:
		if leaf.IsIndex && leaf.Index < len(c) {
			c[leaf.Index] = nil
		}
	}
}

// newContainer returns the container kind the given segment addresses into.
func newContainer(next Segment) any {
	if next.IsIndex {
		return make([]any, 0, next.Index+1)
	}
	return map[string]any{}
}

// kindMatches reports whether child can be traversed by the given segment.
func kindMatches(child any, next Segment) bool {
	if next.IsIndex {
		_, ok := child.([]any)
		return ok
	}
	_, ok := child.(map[string]any)
	return ok
}
