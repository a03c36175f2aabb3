package query

import (
	"sort"

	"github.com/blujedis/kstor/internal/keypath"
)

// Matches evaluates a normalized filter against one row.
//
// Field values are extracted through keypath, so nested field paths work.
// Once a field's $and test fails the rest of that field's conditions are
// skipped; conditions on other fields still run, so an $or entry elsewhere
// can satisfy the row. The row is included iff
// (and satisfied OR or satisfied) AND no $nor entry matched, with "and"
// vacuously satisfied when the filter has neither $and nor $or entries.
// An empty or absent row never matches.
func Matches(row any, n *Normalized) (bool, error) {
	rowObj, ok := row.(map[string]any)
	if !ok || len(rowObj) == 0 {
		return false, nil
	}

	andOK := true
	orOK := false
	norHit := false

	for _, field := range n.fields {
		path, err := keypath.Parse(field)
		if err != nil {
			return false, err
		}
		value, present := keypath.Get(rowObj, path)

		skipRest := false
		for _, c := range n.conds[field] {
			if skipRest {
				continue
			}
			hit := evalOp(c.Op, c.Comparand, value, present)
			switch c.Group {
			case GroupAnd:
				if !hit {
					andOK = false
					skipRest = true
				}
			case GroupOr:
				if hit {
					orOK = true
				}
			case GroupNor:
				if hit {
					norHit = true
				}
			}
		}
	}

	if norHit {
		return false, nil
	}
	if !n.hasGroup(GroupAnd) {
		// With no $and entries the decision rests on the $or entries alone;
		// with neither, the filter constrains nothing but $nor.
		andOK = !n.hasGroup(GroupOr)
	}
	return andOK || orOK, nil
}

// Filter scans a collection in sorted key order, skips the first skip
// entries, and keeps rows the filter matches until take rows are collected.
// A nil or empty filter passes every row through. skip and take values of
// zero or less are ignored. The kept keys are returned in scan order.
func Filter(collection map[string]any, filter map[string]any, skip, take int) (map[string]any, []string, error) {
	var n *Normalized
	if len(filter) > 0 {
		normalized, err := Normalize(filter)
		if err != nil {
			return nil, nil, err
		}
		n = normalized
	}

	keys := make([]string, 0, len(collection))
	for k := range collection {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]any)
	var kept []string
	for i, k := range keys {
		if skip > 0 && i < skip {
			continue
		}
		row := collection[k]
		if n != nil {
			match, err := Matches(row, n)
			if err != nil {
				return nil, nil, err
			}
			if !match {
				continue
			}
		}
		out[k] = row
		kept = append(kept, k)
		if take > 0 && len(kept) == take {
			break
		}
	}
	return out, kept, nil
}
