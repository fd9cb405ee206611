package protocol

// ErrorCode identifies the type of error.
type ErrorCode uint16

const (
	ErrUnknown         ErrorCode = 0x0000 // Unknown error
	ErrInvalidFrame    ErrorCode = 0x0001 // Malformed frame
	ErrInvalidEvent    ErrorCode = 0x0002 // Malformed event
	ErrHandlerPanic    ErrorCode = 0x0004 // Application panicked
	ErrSessionClosed   ErrorCode = 0x0005 // Session no longer running
	ErrRateLimited     ErrorCode = 0x0006 // Too many events
	ErrServerError     ErrorCode = 0x0100 // Internal server error
	ErrVersionMismatch ErrorCode = 0x0104 // Incompatible protocol version
)

// String returns the string representation of the error code.
func (ec ErrorCode) String() string {
	switch ec {
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidEvent:
		return "InvalidEvent"
	case ErrHandlerPanic:
		return "HandlerPanic"
	case ErrSessionClosed:
		return "SessionClosed"
	case ErrRateLimited:
		return "RateLimited"
	case ErrServerError:
		return "ServerError"
	case ErrVersionMismatch:
		return "VersionMismatch"
	default:
		return "Unknown"
	}
}

// ErrorMessage is the payload of an Error frame.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool // The sender closes the connection after this frame
}

// NewError creates a non-fatal ErrorMessage.
func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

// NewFatalError creates a fatal ErrorMessage.
func NewFatalError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message, Fatal: true}
}

// EncodeErrorMessage encodes an ErrorMessage.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: ErrorCode(code), Message: msg, Fatal: fatal}, nil
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Code.String() + ": " + em.Message
	}
	return em.Code.String() + ": " + em.Message
}
