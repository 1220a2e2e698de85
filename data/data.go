package data

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Data is a terminal value produced by resolution or supplied by the caller.
//
// The set of implementations is closed: [Null], [Bool], [Num], [Str], [List]
// and [Map].
type Data interface {
	isData()
	String() string
}

type (
	// Null is the absence of a value.
	Null struct{}
	// Bool is a boolean value.
	Bool bool
	// Num is an integer value.
	Num int64
	// Str is a UTF-8 string value.
	Str string
	// List is an ordered sequence of values.
	List []Data
	// Map is a string-keyed table of values.
	Map map[string]Data
)

func (Null) isData() {}
func (Bool) isData() {}
func (Num) isData()  {}
func (Str) isData()  {}
func (List) isData() {}
func (Map) isData()  {}

func (Null) String() string { return "null" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (n Num) String() string { return strconv.FormatInt(int64(n), 10) }

func (s Str) String() string { return string(s) }

func (l List) String() string {
	part := make([]string, len(l))
	for i, d := range l {
		part[i] = quote(d)
	}

	return "[" + strings.Join(part, ", ") + "]"
}

func (m Map) String() string {
	part := make([]string, 0, len(m))
	for _, k := range m.Keys() {
		part = append(part, strconv.Quote(k)+": "+quote(m[k]))
	}

	return "{" + strings.Join(part, ", ") + "}"
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Lookup returns the value stored under key. A nil Map holds no keys.
func (m Map) Lookup(key string) (Data, bool) {
	if m == nil {
		return nil, false
	}

	d, ok := m[key]

	return d, ok
}

func quote(d Data) string {
	if s, ok := d.(Str); ok {
		return strconv.Quote(string(s))
	}

	if d == nil {
		return Null{}.String()
	}

	return d.String()
}

// TypeName returns the lower-case name of the kind of d.
func TypeName(d Data) string {
	switch d.(type) {
	case Null, nil:
		return "null"
	case Bool:
		return "bool"
	case Num:
		return "num"
	case Str:
		return "str"
	case List:
		return "list"
	case Map:
		return "map"
	default:
		return "unknown"
	}
}

// Native converts d into plain Go values: nil, bool, int64, string, []any and
// map[string]any.
func Native(d Data) any {
	switch d := d.(type) {
	case Bool:
		return bool(d)
	case Num:
		return int64(d)
	case Str:
		return string(d)
	case List:
		out := make([]any, len(d))
		for i, e := range d {
			out[i] = Native(e)
		}

		return out
	case Map:
		out := make(map[string]any, len(d))
		for k, e := range d {
			out[k] = Native(e)
		}

		return out
	default:
		return nil
	}
}

// Equal reports whether a and b hold the same value.
func Equal(a, b Data) bool {
	switch a := a.(type) {
	case Null, nil:
		switch b.(type) {
		case Null, nil:
			return true
		}

		return false
	case List:
		l, ok := b.(List)
		if !ok || len(l) != len(a) {
			return false
		}

		for i := range a {
			if !Equal(a[i], l[i]) {
				return false
			}
		}

		return true
	case Map:
		m, ok := b.(Map)
		if !ok || len(m) != len(a) {
			return false
		}

		for k, v := range a {
			w, ok := m[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}

		return true
	default:
		return a == b
	}
}
