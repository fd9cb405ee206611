package protocol

import "errors"

// ErrInvalidControl is returned for an unknown control type.
var ErrInvalidControl = errors.New("protocol: invalid control message")

// ControlType identifies the type of control message.
type ControlType uint8

const (
	ControlPing  ControlType = 0x01
	ControlPong  ControlType = 0x02
	ControlClose ControlType = 0x20
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// CloseReason indicates why a session is being closed.
type CloseReason uint8

const (
	CloseNormal         CloseReason = 0x00
	CloseGoingAway      CloseReason = 0x01
	CloseIdleTimeout    CloseReason = 0x02
	CloseServerShutdown CloseReason = 0x03
	CloseError          CloseReason = 0x04
)

// String returns the string representation of the close reason.
func (cr CloseReason) String() string {
	switch cr {
	case CloseNormal:
		return "Normal"
	case CloseGoingAway:
		return "GoingAway"
	case CloseIdleTimeout:
		return "IdleTimeout"
	case CloseServerShutdown:
		return "ServerShutdown"
	case CloseError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Control is a control message. Timestamp is set for ping and pong, Reason
// for close.
type Control struct {
	Type      ControlType
	Timestamp uint64 // Unix milliseconds
	Reason    CloseReason
}

// NewPing creates a ping.
func NewPing(ts uint64) *Control {
	return &Control{Type: ControlPing, Timestamp: ts}
}

// NewPong answers a ping, echoing its timestamp.
func NewPong(ts uint64) *Control {
	return &Control{Type: ControlPong, Timestamp: ts}
}

// NewClose creates a close message.
func NewClose(reason CloseReason) *Control {
	return &Control{Type: ControlClose, Reason: reason}
}

// EncodeControl encodes a Control.
func EncodeControl(c *Control) []byte {
	e := NewEncoder()
	e.WriteByte(byte(c.Type))
	switch c.Type {
	case ControlPing, ControlPong:
		e.WriteUint64(c.Timestamp)
	case ControlClose:
		e.WriteByte(byte(c.Reason))
	}
	return e.Bytes()
}

// DecodeControl decodes a Control.
func DecodeControl(data []byte) (*Control, error) {
	d := NewDecoder(data)
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	c := &Control{Type: ControlType(t)}
	switch c.Type {
	case ControlPing, ControlPong:
		if c.Timestamp, err = d.ReadUint64(); err != nil {
			return nil, err
		}
	case ControlClose:
		r, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		c.Reason = CloseReason(r)
	default:
		return nil, ErrInvalidControl
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return c, nil
}
