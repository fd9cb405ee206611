package protocol

import "fmt"

// HandshakeStatus is the result of a handshake.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeServerBusy      HandshakeStatus = 0x04
	HandshakeInvalidFormat   HandshakeStatus = 0x06
	HandshakeInternalError   HandshakeStatus = 0x08
)

// String returns the string representation of the handshake status.
func (hs HandshakeStatus) String() string {
	switch hs {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeServerBusy:
		return "ServerBusy"
	case HandshakeInvalidFormat:
		return "InvalidFormat"
	case HandshakeInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// ProtocolVersion is a major.minor protocol version. Peers are compatible
// when their major versions match.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the version spoken by this package.
var CurrentVersion = ProtocolVersion{Major: 1, Minor: 0}

func (v ProtocolVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible reports whether v can talk to other.
func (v ProtocolVersion) Compatible(other ProtocolVersion) bool {
	return v.Major == other.Major
}

// ClientHello is the first frame a client sends.
type ClientHello struct {
	Version ProtocolVersion
	Path    string // Page path the client was served from
}

// ServerHello answers a ClientHello.
type ServerHello struct {
	Status     HandshakeStatus
	SessionID  string
	ServerTime uint64 // Unix milliseconds
}

// EncodeClientHello encodes a ClientHello.
func EncodeClientHello(ch *ClientHello) []byte {
	e := NewEncoder()
	e.WriteByte(ch.Version.Major)
	e.WriteByte(ch.Version.Minor)
	e.WriteString(ch.Path)
	return e.Bytes()
}

// DecodeClientHello decodes a ClientHello.
func DecodeClientHello(data []byte) (*ClientHello, error) {
	d := NewDecoder(data)
	major, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	minor, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	path, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return &ClientHello{
		Version: ProtocolVersion{Major: major, Minor: minor},
		Path:    path,
	}, nil
}

// EncodeServerHello encodes a ServerHello.
func EncodeServerHello(sh *ServerHello) []byte {
	e := NewEncoder()
	e.WriteByte(byte(sh.Status))
	e.WriteString(sh.SessionID)
	e.WriteUint64(sh.ServerTime)
	return e.Bytes()
}

// DecodeServerHello decodes a ServerHello.
func DecodeServerHello(data []byte) (*ServerHello, error) {
	d := NewDecoder(data)
	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	id, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	ts, err := d.ReadUint64()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return &ServerHello{
		Status:     HandshakeStatus(status),
		SessionID:  id,
		ServerTime: ts,
	}, nil
}
