// Package client implements the controller side of the protocol: it owns the
// session, gates every outgoing command on the registration state, and runs
// the read pump that turns server frames into listener events.
package client

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"uc/common"
	"uc/common/constants"
	"uc/common/types"
	"uc/metrics"
	"uc/transport"
)

// Listener receives every session event on the read pump goroutine. It must
// return promptly; the next frame is not read until it does.
type Listener func(event types.Event)

type Config struct {
	// BufferSize bounds a single inbound frame, terminator included.
	BufferSize int
	Transport  transport.Factory
	Metrics    *metrics.Collector
	Listener   Listener
}

// Client is one controller connection. Send methods are not serialized
// against each other; callers using them from several goroutines must
// coordinate.
type Client struct {
	cfg Config

	mu         sync.Mutex
	sess       *session
	connecting *session
	listener   Listener
	lastErr  error
	done     chan struct{}

	running atomic.Bool
	state   atomic.Int32
}

type session struct {
	id         string
	remoteAddr string
	remotePort int
	playerName string
	playerID   atomic.Int64
	transport  transport.Transport
	logger     *log.Entry

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	notified atomic.Bool
}

func (s *session) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

func New(cfg Config) *Client {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = constants.DefaultBufferSize
	}
	if cfg.Transport == nil {
		cfg.Transport = func() transport.Transport {
			return transport.NewTCP(transport.Options{WriteTimeout: constants.DefaultWriteTimeout})
		}
	}
	done := make(chan struct{})
	close(done)
	c := &Client{
		cfg:      cfg,
		listener: cfg.Listener,
		done:     done,
	}
	c.state.Store(int32(types.StateDisconnected))
	return c
}

func (c *Client) SetListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listener = l
}

// Connect dials the server and starts the read pump. It does nothing when the
// client is already running. A Disconnect issued while dialing aborts the
// dial and Connect returns a NotConnected error.
func (c *Client) Connect(ctx context.Context, addr string, port int) error {
	id := uuid.NewV4().String()
	sess := &session{
		id:         id,
		remoteAddr: addr,
		remotePort: port,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger: log.WithFields(log.Fields{
			"package": "client",
			"remote":  net.JoinHostPort(addr, strconv.Itoa(port)),
			"session": id,
		}),
	}
	sess.playerID.Store(constants.UnregisteredPlayerID)

	c.mu.Lock()
	if c.running.Load() {
		c.mu.Unlock()
		return nil
	}
	sess.transport = c.cfg.Transport()
	c.running.Store(true)
	c.connecting = sess
	c.state.Store(int32(types.StateConnecting))
	c.mu.Unlock()

	sess.logger.Infof("connecting")
	err := sess.transport.Connect(ctx, addr, port)

	c.mu.Lock()
	if c.connecting != sess || c.sess != nil {
		c.mu.Unlock()
		_ = sess.transport.Disconnect()
		sess.logger.Warnf("disconnected while connecting")
		return &types.Error{Kind: types.ErrKindNotConnected, Message: "disconnected while connecting"}
	}
	c.connecting = nil
	if err != nil {
		c.running.Store(false)
		c.state.Store(int32(types.StateDisconnected))
		c.mu.Unlock()
		_ = sess.transport.Disconnect()
		c.cfg.Metrics.TransportFailure("connect")
		sess.logger.WithError(err).Errorf("connect")
		return types.NewTransportFailure("connect", err)
	}
	c.sess = sess
	c.lastErr = nil
	c.done = sess.done
	c.state.Store(int32(types.StateConnectedUnregistered))
	c.mu.Unlock()

	sess.logger.Infof("connected")
	go common.WithRecover(func() { c.readPump(sess) }, "read-pump")
	return nil
}

// Disconnect ends the session from any state. It is idempotent and may be
// called from a listener. It does not wait for the read pump; use Done.
// The player is not deregistered first; the server drops it with the
// connection.
func (c *Client) Disconnect() {
	c.mu.Lock()
	sess := c.sess
	if sess == nil {
		pending := c.connecting
		c.connecting = nil
		if pending != nil {
			c.running.Store(false)
			c.state.Store(int32(types.StateDisconnected))
		}
		c.mu.Unlock()
		if pending != nil {
			pending.logger.Infof("aborting connect")
			_ = pending.transport.Disconnect()
		}
		return
	}
	c.mu.Unlock()
	c.teardown(sess)
}

func (c *Client) teardown(sess *session) {
	sess.stopOnce.Do(func() {
		c.mu.Lock()
		current := c.sess == sess
		if current {
			c.state.Store(int32(types.StateDisconnecting))
			c.running.Store(false)
		}
		c.mu.Unlock()

		close(sess.stop)
		if err := sess.transport.Disconnect(); err != nil {
			sess.logger.WithError(err).Warnf("transport disconnect")
		}

		if current {
			c.mu.Lock()
			if c.sess == sess {
				c.sess = nil
				c.state.Store(int32(types.StateDisconnected))
			}
			c.mu.Unlock()
			c.cfg.Metrics.SetRegistered(false)
		}
		sess.logger.Infof("disconnected")
	})
}

// fail records err as the reason the session ended, tears it down and
// tells the listener.
func (c *Client) fail(sess *session, err error) {
	c.mu.Lock()
	if c.sess == sess {
		c.lastErr = err
	}
	c.mu.Unlock()
	c.teardown(sess)
	c.notifyDisconnected(sess, err)
}

func (c *Client) current() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

func (c *Client) State() types.State {
	return types.State(c.state.Load())
}

func (c *Client) Running() bool {
	return c.running.Load()
}

// PlayerID returns the server-assigned id, or -1 when unregistered.
func (c *Client) PlayerID() int {
	sess := c.current()
	if sess == nil {
		return constants.UnregisteredPlayerID
	}
	return int(sess.playerID.Load())
}

func (c *Client) PlayerName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.playerName
}

func (c *Client) RemoteAddr() string {
	if sess := c.current(); sess != nil {
		return sess.remoteAddr
	}
	return ""
}

func (c *Client) RemotePort() int {
	if sess := c.current(); sess != nil {
		return sess.remotePort
	}
	return 0
}

func (c *Client) SessionID() string {
	if sess := c.current(); sess != nil {
		return sess.id
	}
	return ""
}

// Err returns the transport failure or protocol violation that ended the
// last session, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Done is closed once the read pump of the latest session has exited.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Client) Status() types.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := types.SessionStatus{
		State:    types.State(c.state.Load()).String(),
		Running:  c.running.Load(),
		PlayerID: constants.UnregisteredPlayerID,
	}
	if c.sess != nil {
		st.SessionID = c.sess.id
		st.RemoteAddr = c.sess.remoteAddr
		st.RemotePort = c.sess.remotePort
		st.PlayerName = c.sess.playerName
		st.PlayerID = int(c.sess.playerID.Load())
	}
	return st
}
