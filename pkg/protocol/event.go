package protocol

import (
	"errors"

	json "github.com/goccy/go-json"
)

// Event errors.
var (
	ErrEmptyHandlerID = errors.New("protocol: empty handler id")
	ErrInvalidArg     = errors.New("protocol: event argument is not valid JSON")
)

// Event is sent by the client when a bound event fires. Arg is the handler
// argument as JSON; empty means null.
type Event struct {
	Seq       uint64
	HandlerID string
	Arg       []byte
}

// EncodeEvent encodes an Event.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	EncodeEventTo(e, ev)
	return e.Bytes()
}

// EncodeEventTo encodes an Event using e.
func EncodeEventTo(e *Encoder, ev *Event) {
	e.WriteUvarint(ev.Seq)
	e.WriteString(ev.HandlerID)
	e.WriteLenBytes(ev.Arg)
}

// DecodeEvent decodes an Event with the default limits.
func DecodeEvent(data []byte) (*Event, error) {
	return DecodeEventWithLimits(data, Limits{})
}

// DecodeEventWithLimits decodes an Event and validates its argument.
func DecodeEventWithLimits(data []byte, lim Limits) (*Event, error) {
	lim = lim.withDefaults()
	d := NewDecoder(data)

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	id, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrEmptyHandlerID
	}
	arg, err := d.ReadLenBytes()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}

	if len(arg) > 0 {
		if !json.Valid(arg) {
			return nil, ErrInvalidArg
		}
		if jsonDepth(arg) > lim.ArgDepth {
			return nil, ErrMaxDepthExceeded
		}
	} else {
		arg = nil
	}
	return &Event{Seq: seq, HandlerID: id, Arg: arg}, nil
}

// jsonDepth returns the deepest array/object nesting of valid JSON.
func jsonDepth(data []byte) int {
	depth, max := 0, 0
	inString, escaped := false, false
	for _, c := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > max {
				max = depth
			}
		case '}', ']':
			depth--
		}
	}
	return max
}
