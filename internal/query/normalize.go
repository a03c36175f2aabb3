package query

import (
	"fmt"
	"strings"
)

// Condition is one flattened filter entry: a single operator applied to a
// single field under one logical group.
type Condition struct {
	Op        Op
	Comparand any
	Group     Group
}

// Normalized is the flattened form of a filter: for each field path, the
// ordered conditions that apply to it. Field order follows first appearance
// during normalization.
type Normalized struct {
	fields []string
	conds  map[string][]Condition
}

// Fields returns the field paths in first-appearance order.
func (n *Normalized) Fields() []string { return n.fields }

// Conditions returns the conditions recorded for a field.
func (n *Normalized) Conditions(field string) []Condition { return n.conds[field] }

// Len returns the total number of conditions.
func (n *Normalized) Len() int {
	total := 0
	for _, cs := range n.conds {
		total += len(cs)
	}
	return total
}

func (n *Normalized) add(field string, c Condition) {
	if _, seen := n.conds[field]; !seen {
		n.fields = append(n.fields, field)
	}
	n.conds[field] = append(n.conds[field], c)
}

// hasGroup reports whether any condition belongs to the given group.
func (n *Normalized) hasGroup(g Group) bool {
	for _, cs := range n.conds {
		for _, c := range cs {
			if c.Group == g {
				return true
			}
		}
	}
	return false
}

// logicalGroup maps a $and/$or/$nor key to its Group.
func logicalGroup(key string) (Group, bool) {
	switch key {
	case "$and":
		return GroupAnd, true
	case "$or":
		return GroupOr, true
	case "$nor":
		return GroupNor, true
	}
	return 0, false
}

// Normalize flattens a filter expression into per-field operator conditions.
// Top-level $and/$or/$nor keys must hold arrays of sub-expression objects;
// nested logical blocks merge recursively under their own group. Plain
// top-level fields are implicit $and members, and a field value that is not
// an operator object is shorthand for {$eq: value}.
func Normalize(filter map[string]any) (*Normalized, error) {
	n := &Normalized{conds: map[string][]Condition{}}

	for key, val := range filter {
		group, isLogical := logicalGroup(key)
		if !isLogical {
			n.addField(key, val, GroupAnd)
			continue
		}
		if err := n.addLogical(group, val); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// addLogical explodes one $and/$or/$nor block.
func (n *Normalized) addLogical(group Group, val any) error {
	arr, ok := val.([]any)
	if !ok {
		return &MalformedQueryError{
			Code:    ErrCodeLogicalNotArray,
			Message: fmt.Sprintf("logical combinator value must be an array, got %T", val),
		}
	}
	for _, sub := range arr {
		expr, ok := sub.(map[string]any)
		if !ok {
			return &MalformedQueryError{
				Code:    ErrCodeNotObject,
				Message: fmt.Sprintf("logical combinator entries must be objects, got %T", sub),
			}
		}
		for field, fieldVal := range expr {
			if nested, isNested := logicalGroup(field); isNested {
				// Nested block: merge recursively under its own group.
				if err := n.addLogical(nested, fieldVal); err != nil {
					return err
				}
				continue
			}
			n.addField(field, fieldVal, group)
		}
	}
	return nil
}

// addField records the conditions for a single field expression.
func (n *Normalized) addField(field string, val any, group Group) {
	if ops, ok := val.(map[string]any); ok && isOperatorObject(ops) {
		for opKey, comparand := range ops {
			n.add(field, Condition{Op: opFromString(opKey), Comparand: comparand, Group: group})
		}
		return
	}
	n.add(field, Condition{Op: OpEq, Comparand: val, Group: group})
}

// isOperatorObject reports whether a map value is an operator expression
// rather than a literal document to compare with $eq. Any $-prefixed key
// qualifies it.
func isOperatorObject(m map[string]any) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}
