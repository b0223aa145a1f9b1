// Package ucserver is a reference controller server. It speaks the server
// side of the protocol and is used for local runs and integration tests.
package ucserver

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/syncmap"

	"uc/common"
	"uc/common/constants"
	"uc/common/types"
)

type player struct {
	ID   int
	Name string
	conn *Client
}

type Server struct {
	capacity   int
	bufferSize int
	logger     *log.Entry

	players syncmap.Map // player id -> *player
	nextID  atomic.Int64

	mu       sync.Mutex
	ln       net.Listener
	clients  map[*Client]struct{}
	count    int
	inputs   []types.Command
	closed   bool
	wg       sync.WaitGroup
	shutdown chan struct{}
}

var ErrServerClosed = errors.New("ucserver: server closed")

// New creates a server accepting at most capacity registered players.
func New(capacity int) *Server {
	if capacity <= 0 {
		capacity = constants.DefaultServerCapacity
	}
	return &Server{
		capacity:   capacity,
		bufferSize: constants.DefaultBufferSize,
		clients:    make(map[*Client]struct{}),
		shutdown:   make(chan struct{}),
		logger:     log.WithFields(log.Fields{"package": "ucserver"}),
	}
}

//ListenAndServe Start the server on the given address
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Close is called.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.ln = ln
	s.mu.Unlock()
	s.logger.Infof("listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				s.logger.Warnf("stopping server: listener closed: %v", err)
				return ErrServerClosed
			default:
			}
			s.logger.Errorf("error: new connection: %v", err)
			return err
		}
		s.logger.Infof("ln.Accept: connected %s", conn.RemoteAddr())

		client := newClient(s, conn)
		if !s.track(client) {
			conn.Close()
			continue
		}
		go s.listen(client)
	}
}

// track adds c to the client set unless the server is closing.
func (s *Server) track(c *Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) listen(c *Client) {
	defer s.wg.Done()
	common.WithRecover(c.Listen, "ucserver listen")
}

// Addr returns the listener address once Serve has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close tells every connected client the server is shutting down, then
// closes the listener and all connections.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.shutdown)
	ln := s.ln
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	s.logger.Info("received signal to exit")
	for _, c := range clients {
		c.SendReply(types.Reply{Tag: constants.ReplyTag.ServerShutdown})
		c.Close()
	}
	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	return err
}

// Inputs returns a copy of every accepted player command.
func (s *Server) Inputs() []types.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Command(nil), s.inputs...)
}

// Players returns the number of registered players.
func (s *Server) Players() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Server) register(c *Client, name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count >= s.capacity {
		return constants.UnregisteredPlayerID, false
	}
	s.count++
	id := int(s.nextID.Add(1))
	s.players.Store(id, &player{ID: id, Name: name, conn: c})
	return id, true
}

func (s *Server) deregister(id int) bool {
	if _, ok := s.players.LoadAndDelete(id); !ok {
		return false
	}
	s.mu.Lock()
	s.count--
	s.mu.Unlock()
	return true
}

func (s *Server) lookup(id int) (*player, bool) {
	v, ok := s.players.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*player), true
}

func (s *Server) record(cmd types.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, cmd)
}

// drop forgets a closed connection and every player it registered.
func (s *Server) drop(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	s.players.Range(func(key, value interface{}) bool {
		if value.(*player).conn == c {
			s.deregister(key.(int))
		}
		return true
	})
}
