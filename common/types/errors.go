package types

import "fmt"

// ErrorKind categorizes every error surfaced by the controller client.
type ErrorKind int

const (
	ErrKindPlayerAlreadyRegistered ErrorKind = iota
	ErrKindPlayerNotRegistered
	ErrKindInvalidJoystickValue
	ErrKindInvalidGyroValue
	ErrKindProtocolViolation
	ErrKindTransportFailure
	ErrKindNotConnected
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindPlayerAlreadyRegistered:
		return "player already registered"
	case ErrKindPlayerNotRegistered:
		return "player not registered"
	case ErrKindInvalidJoystickValue:
		return "invalid joystick value"
	case ErrKindInvalidGyroValue:
		return "invalid gyro value"
	case ErrKindProtocolViolation:
		return "protocol violation"
	case ErrKindTransportFailure:
		return "transport failure"
	case ErrKindNotConnected:
		return "not connected"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Error is the single error type returned by the codec and the client.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrPlayerAlreadyRegistered = &Error{Kind: ErrKindPlayerAlreadyRegistered, Message: "a player has already been registered to the server on this device"}
	ErrPlayerNotRegistered     = &Error{Kind: ErrKindPlayerNotRegistered, Message: "player has not been registered to the server yet"}
	ErrInvalidJoystickValue    = &Error{Kind: ErrKindInvalidJoystickValue}
	ErrInvalidGyroValue        = &Error{Kind: ErrKindInvalidGyroValue}
	ErrProtocolViolation       = &Error{Kind: ErrKindProtocolViolation}
	ErrTransportFailure        = &Error{Kind: ErrKindTransportFailure}
	ErrNotConnected            = &Error{Kind: ErrKindNotConnected, Message: "client is not connected"}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewProtocolViolation(raw string, cause error) error {
	return &Error{Kind: ErrKindProtocolViolation, Message: fmt.Sprintf("unexpected frame %q", raw), Cause: cause}
}

func NewTransportFailure(message string, cause error) error {
	return &Error{Kind: ErrKindTransportFailure, Message: message, Cause: cause}
}

func NewInvalidJoystickValue(x, y float32) error {
	return &Error{Kind: ErrKindInvalidJoystickValue, Message: fmt.Sprintf("x=%v y=%v must be within (-1, 1)", x, y)}
}

func NewInvalidGyroValue(x, y, z float32) error {
	return &Error{Kind: ErrKindInvalidGyroValue, Message: fmt.Sprintf("x=%v y=%v z=%v must be within (-1, 1)", x, y, z)}
}
