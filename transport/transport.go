// Package transport provides the socket layer the controller client speaks
// through. The client never opens sockets itself; it asks a Factory for a
// fresh Transport on every connect.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"uc/common/constants"
)

var (
	// ErrFrameTooLong indicates a frame exceeded the read limit before its terminator.
	ErrFrameTooLong = errors.New("frame too long")

	// ErrClosed indicates the transport was used after Disconnect.
	ErrClosed = errors.New("transport closed")
)

// Transport is one connection to a controller server.
type Transport interface {
	// Connect establishes the connection. A nil return is the one-shot
	// "connection established" notification.
	Connect(ctx context.Context, addr string, port int) error

	// Write sends one complete frame.
	Write(frame []byte) error

	// ReadFrame blocks until a full frame has arrived and returns it
	// without the terminator. It fails with ErrFrameTooLong when more
	// than maxBytes arrive without a terminator.
	ReadFrame(maxBytes int, terminator string) ([]byte, error)

	// Disconnect releases the connection and unblocks a pending ReadFrame.
	// It is safe to call more than once.
	Disconnect() error
}

// Factory creates an unconnected Transport.
type Factory func() Transport

type Options struct {
	WriteTimeout time.Duration
	WSPath       string
}

// NewFactory returns a Factory for the given transport kind ("tcp" or "ws").
func NewFactory(kind string, opts Options) (Factory, error) {
	switch kind {
	case "", constants.TransportKind.TCP:
		return func() Transport { return NewTCP(opts) }, nil
	case constants.TransportKind.WebSocket:
		return func() Transport { return NewWS(opts) }, nil
	default:
		return nil, fmt.Errorf("unknown transport kind %q", kind)
	}
}
