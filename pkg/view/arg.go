package view

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// Arg is the raw argument a backend passes when it fires a handler.
// It holds a JSON document; an empty Arg is treated as JSON null.
type Arg []byte

// NullArg is the argument of events that carry no payload.
var NullArg = Arg("null")

// NewArg encodes v as a handler argument.
func NewArg(v any) (Arg, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Arg(b), nil
}

// StringArg encodes s as a handler argument.
func StringArg(s string) Arg {
	b, _ := json.Marshal(s)
	return Arg(b)
}

// IsNull reports whether the argument carries no payload.
func (a Arg) IsNull() bool {
	t := bytes.TrimSpace(a)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// Decode unmarshals the argument into v.
func (a Arg) Decode(v any) error {
	if a.IsNull() {
		return nil
	}
	return json.Unmarshal(a, v)
}

// String returns the argument as a string. Input events carry the field
// value this way, keyboard events the key name. Non-string payloads yield "".
func (a Arg) String() string {
	var s string
	if err := a.Decode(&s); err != nil {
		return ""
	}
	return s
}

// Bool returns the argument as a boolean; non-boolean payloads yield false.
func (a Arg) Bool() bool {
	var b bool
	if err := a.Decode(&b); err != nil {
		return false
	}
	return b
}
