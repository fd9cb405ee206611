package vdom

import "strconv"

// ValueKind discriminates attribute values.
type ValueKind uint8

const (
	ValueString ValueKind = iota // Text value
	ValueBool                    // Boolean flag
)

// String returns the string representation of the ValueKind.
func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "String"
	case ValueBool:
		return "Bool"
	default:
		return "Unknown"
	}
}

// Value is an attribute value. It is either a string or a boolean and is
// immutable once constructed. The zero Value is the empty string.
type Value struct {
	kind ValueKind
	str  string
	flag bool
}

// String creates a string attribute value.
func String(s string) Value {
	return Value{kind: ValueString, str: s}
}

// Bool creates a boolean attribute value.
func Bool(b bool) Value {
	return Value{kind: ValueBool, flag: b}
}

// Kind returns the kind of the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Str returns the string payload and whether the value is a string.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == ValueString
}

// Flag returns the boolean payload and whether the value is a boolean.
func (v Value) Flag() (bool, bool) {
	return v.flag, v.kind == ValueBool
}

// Equal reports whether two values are structurally equal.
// A string "true" is not equal to Bool(true).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == ValueBool {
		return v.flag == o.flag
	}
	return v.str == o.str
}

// String renders the value the way a markup attribute would carry it.
func (v Value) String() string {
	if v.kind == ValueBool {
		return strconv.FormatBool(v.flag)
	}
	return v.str
}

// ValueOf converts a Go value to an attribute Value.
// Strings and booleans map directly; anything else is rejected.
func ValueOf(x any) (Value, bool) {
	switch val := x.(type) {
	case Value:
		return val, true
	case string:
		return String(val), true
	case bool:
		return Bool(val), true
	default:
		return Value{}, false
	}
}
