package ucserver

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"uc/codec"
	"uc/common/constants"
	"uc/common/types"
)

// frameConn is the stream a Client reads frames from and writes replies to.
type frameConn interface {
	io.ReadWriteCloser
	SetWriteDeadline(t time.Time) error
	RemoteAddr() net.Addr
}

// Client is one controller connection seen from the server.
type Client struct {
	server *Server
	conn   frameConn
	logger *log.Entry

	writeMu   sync.Mutex
	closeOnce sync.Once
}

func newClient(s *Server, conn frameConn) *Client {
	return &Client{
		server: s,
		conn:   conn,
		logger: s.logger.WithField("remote", conn.RemoteAddr().String()),
	}
}

//Listen reads frames until the connection closes
func (c *Client) Listen() {
	defer c.server.drop(c)
	defer c.Close()

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, c.server.bufferSize), c.server.bufferSize)
	scanner.Split(splitFrames)

	for scanner.Scan() {
		c.processFrame(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		select {
		case <-c.server.shutdown:
			c.logger.Warnf("error: read: %v", err)
		default:
			c.logger.Errorf("error: read: %v", err)
		}
	}
}

func (c *Client) processFrame(raw string) {
	c.logger.Debugf("processFrame: %s", raw)
	cmd, err := codec.DecodeCommand(raw)
	if err != nil {
		c.logger.Warnf("processFrame: %v", err)
		c.SendReply(types.Reply{Tag: constants.ReplyTag.InvalidCommand})
		return
	}

	switch cmd.Tag {
	case constants.CommandTag.Register:
		id, ok := c.server.register(c, cmd.Name)
		if !ok {
			c.logger.Warnf("register %s: server full", cmd.Name)
			c.SendReply(types.Reply{Tag: constants.ReplyTag.ServerFull})
			return
		}
		c.logger.Infof("registered %s as %d", cmd.Name, id)
		c.SendReply(types.Reply{Tag: constants.ReplyTag.PlayerID, PlayerID: id})
	case constants.CommandTag.Deregister:
		if !c.owns(cmd.PlayerID) || !c.server.deregister(cmd.PlayerID) {
			c.SendReply(types.Reply{Tag: constants.ReplyTag.PlayerNotFound})
			return
		}
		c.logger.Infof("deregistered %d", cmd.PlayerID)
	default:
		if !c.owns(cmd.PlayerID) {
			c.SendReply(types.Reply{Tag: constants.ReplyTag.PlayerNotFound})
			return
		}
		c.server.record(cmd)
	}
}

func (c *Client) owns(id int) bool {
	p, ok := c.server.lookup(id)
	return ok && p.conn == c
}

func (c *Client) SendReply(reply types.Reply) {
	frame, err := codec.EncodeReply(reply)
	if err != nil {
		c.logger.Errorf("send-reply: error: encode: %v", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(3 * time.Second))
	_, err = c.conn.Write([]byte(frame))
	c.conn.SetWriteDeadline(time.Time{})
	if err != nil {
		c.logger.Warnf("send-reply: error: write: %v", err)
		c.Close()
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}

// splitFrames is a bufio.SplitFunc yielding terminator-delimited frames.
func splitFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.Index(data, []byte(constants.Terminator)); i >= 0 {
		return i + len(constants.Terminator), data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
