package transport

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// TCP is a Transport over a plain TCP stream; frames are delimited by the
// terminator sequence only.
type TCP struct {
	opts Options

	mu     sync.Mutex
	conn   net.Conn
	buf    *bufio.Reader
	closed bool

	closeOnce sync.Once
}

func NewTCP(opts Options) *TCP {
	return &TCP{opts: opts}
}

func (t *TCP) Connect(ctx context.Context, addr string, port int) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.mu.Unlock()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr, strconv.Itoa(port)))
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		_ = conn.Close()
		return ErrClosed
	}
	t.conn = conn
	t.buf = bufio.NewReader(conn)
	log.Debugf("tcp: connected %s", conn.RemoteAddr())
	return nil
}

func (t *TCP) Write(frame []byte) error {
	conn, _, err := t.current()
	if err != nil {
		return err
	}
	if t.opts.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(t.opts.WriteTimeout))
		defer conn.SetWriteDeadline(time.Time{})
	}
	_, err = conn.Write(frame)
	return err
}

func (t *TCP) ReadFrame(maxBytes int, terminator string) ([]byte, error) {
	_, buf, err := t.current()
	if err != nil {
		return nil, err
	}
	return readUntil(buf, maxBytes, []byte(terminator))
}

func (t *TCP) Disconnect() error {
	var err error
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		conn := t.conn
		t.mu.Unlock()
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

func (t *TCP) current() (net.Conn, *bufio.Reader, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.conn == nil {
		return nil, nil, ErrClosed
	}
	return t.conn, t.buf, nil
}

// readUntil reads one byte at a time until term closes the frame. The
// returned frame excludes term.
func readUntil(r *bufio.Reader, maxBytes int, term []byte) ([]byte, error) {
	frame := make([]byte, 0, 64)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		frame = append(frame, b)
		if bytes.HasSuffix(frame, term) {
			return frame[:len(frame)-len(term)], nil
		}
		if maxBytes > 0 && len(frame) >= maxBytes {
			return nil, ErrFrameTooLong
		}
	}
}
