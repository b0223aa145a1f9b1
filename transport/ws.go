package transport

import (
	"bytes"
	"context"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"uc/common/constants"
)

// WS carries frames over a websocket, one text message per frame.
type WS struct {
	opts Options

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	closeOnce sync.Once
}

func NewWS(opts Options) *WS {
	if opts.WSPath == "" {
		opts.WSPath = constants.DefaultWSPath
	}
	return &WS{opts: opts}
}

func (t *WS) Connect(ctx context.Context, addr string, port int) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	t.mu.Unlock()

	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(addr, strconv.Itoa(port)), Path: t.opts.WSPath}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
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
	log.Debugf("ws: connected %s", u.String())
	return nil
}

func (t *WS) Write(frame []byte) error {
	conn, err := t.current()
	if err != nil {
		return err
	}
	if t.opts.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(t.opts.WriteTimeout))
		defer conn.SetWriteDeadline(time.Time{})
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func (t *WS) ReadFrame(maxBytes int, terminator string) ([]byte, error) {
	conn, err := t.current()
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 {
		conn.SetReadLimit(int64(maxBytes))
	}
	_, payload, err := conn.ReadMessage()
	if err != nil {
		if err == websocket.ErrReadLimit {
			return nil, ErrFrameTooLong
		}
		return nil, err
	}
	return bytes.TrimSuffix(payload, []byte(terminator)), nil
}

func (t *WS) Disconnect() error {
	var err error
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		conn := t.conn
		t.mu.Unlock()
		if conn != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			err = conn.Close()
		}
	})
	return err
}

func (t *WS) current() (*websocket.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.conn == nil {
		return nil, ErrClosed
	}
	return t.conn, nil
}
