package query

import (
	"fmt"
	"reflect"
	"regexp"
	"time"
)

// Op is the closed enumeration of field-level operators. An operator string
// outside this set maps to OpUnknown, which evaluates to false for every
// input, making the fallback an explicit, testable variant.
type Op uint8

const (
	OpUnknown Op = iota
	OpEq
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
	OpIn
	OpNin
	OpNot
	OpExists
	OpRegexp
	OpLike
)

var opNames = map[string]Op{
	"$eq":     OpEq,
	"$ne":     OpNe,
	"$gt":     OpGt,
	"$gte":    OpGte,
	"$lt":     OpLt,
	"$lte":    OpLte,
	"$in":     OpIn,
	"$nin":    OpNin,
	"$not":    OpNot,
	"$exists": OpExists,
	"$regexp": OpRegexp,
	"$like":   OpLike,
}

// opFromString maps an operator token to its Op variant.
func opFromString(s string) Op {
	if op, ok := opNames[s]; ok {
		return op
	}
	return OpUnknown
}

// String returns the operator token, or "$unknown" for OpUnknown.
func (op Op) String() string {
	for name, o := range opNames {
		if o == op {
			return name
		}
	}
	return "$unknown"
}

// Group is the logical combinator a condition belongs to.
type Group uint8

const (
	GroupAnd Group = iota
	GroupOr
	GroupNor
)

// evalOp evaluates one operator against a single extracted field value.
// present reports whether the field resolved at all; only $exists
// distinguishes absent from null.
func evalOp(op Op, comparand, value any, present bool) bool {
	switch op {
	case OpEq:
		return looseEqual(comparand, value)
	case OpNe:
		return !looseEqual(comparand, value)
	case OpGt:
		c, ok := compare(value, comparand)
		return ok && c > 0
	case OpGte:
		c, ok := compare(value, comparand)
		return ok && c >= 0
	case OpLt:
		c, ok := compare(value, comparand)
		return ok && c < 0
	case OpLte:
		c, ok := compare(value, comparand)
		return ok && c <= 0
	case OpIn:
		return intersects(valueSet(value), comparandSet(comparand))
	case OpNin:
		return !intersects(valueSet(value), comparandSet(comparand))
	case OpNot:
		if re, ok := comparand.(*regexp.Regexp); ok {
			s, isStr := value.(string)
			return !isStr || !re.MatchString(s)
		}
		return !looseEqual(comparand, value)
	case OpExists:
		if want, ok := comparand.(bool); ok && !want {
			return !present
		}
		return present
	case OpRegexp:
		return matchPattern(comparand, value, false)
	case OpLike:
		return matchPattern(comparand, value, true)
	default:
		return false // unknown operators never match
	}
}

// scalar normalizes a value for comparison: dates become their
// epoch-millisecond representation, every numeric type becomes float64.
func scalar(v any) any {
	switch t := v.(type) {
	case time.Time:
		return float64(t.UnixMilli())
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	}
	return v
}

// isTime reports whether v is a date on either side of a comparison.
func isTime(v any) bool {
	_, ok := v.(time.Time)
	return ok
}

// epochMillis coerces a value to its epoch-millisecond representation for
// date comparisons. RFC 3339 strings parse; numbers pass through.
func epochMillis(v any) (float64, bool) {
	switch t := v.(type) {
	case time.Time:
		return float64(t.UnixMilli()), true
	case string:
		if ts, err := time.Parse(time.RFC3339, t); err == nil {
			return float64(ts.UnixMilli()), true
		}
		return 0, false
	}
	if f, ok := scalar(v).(float64); ok {
		return f, true
	}
	return 0, false
}

// looseEqual compares two values after scalar normalization; containers fall
// back to deep equality.
func looseEqual(a, b any) bool {
	if isTime(a) || isTime(b) {
		am, aok := epochMillis(a)
		bm, bok := epochMillis(b)
		return aok && bok && am == bm
	}
	return reflect.DeepEqual(scalar(a), scalar(b))
}

// compare orders two values. It reports the sign of value - comparand and
// whether the two were comparable at all: numbers against numbers, strings
// against strings, dates against anything coercible to epoch milliseconds.
func compare(value, comparand any) (int, bool) {
	if isTime(value) || isTime(comparand) {
		vm, vok := epochMillis(value)
		cm, cok := epochMillis(comparand)
		if !vok || !cok {
			return 0, false
		}
		return sign(vm - cm), true
	}

	vn, cn := scalar(value), scalar(comparand)
	if vf, ok := vn.(float64); ok {
		if cf, ok := cn.(float64); ok {
			return sign(vf - cf), true
		}
		return 0, false
	}
	if vs, ok := vn.(string); ok {
		if cs, ok := cn.(string); ok {
			switch {
			case vs < cs:
				return -1, true
			case vs > cs:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	return 0, false
}

func sign(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	default:
		return 0
	}
}

// valueSet explodes a row value for $in/$nin: arrays become their elements,
// strings become their character sequence, anything else is a single-element
// set.
func valueSet(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case string:
		out := make([]any, 0, len(t))
		for _, r := range t {
			out = append(out, string(r))
		}
		return out
	default:
		return []any{v}
	}
}

// comparandSet wraps a non-array comparand into a single-element set.
func comparandSet(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{v}
}

// intersects reports whether the two sets share at least one member.
func intersects(values, comparands []any) bool {
	for _, v := range values {
		for _, c := range comparands {
			if looseEqual(v, c) {
				return true
			}
		}
	}
	return false
}

// matchPattern evaluates $regexp and $like. A *regexp.Regexp comparand is
// used as-is; any other comparand is compiled case-insensitively, with $like
// additionally quoted and wrapped into a substring match.
func matchPattern(comparand, value any, like bool) bool {
	re, ok := comparand.(*regexp.Regexp)
	if !ok {
		src := fmt.Sprint(comparand)
		if like {
			src = ".*" + regexp.QuoteMeta(src) + ".*"
		}
		compiled, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return false
		}
		re = compiled
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	return re.MatchString(s)
}
