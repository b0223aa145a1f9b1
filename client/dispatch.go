package client

import (
	"uc/codec"
	"uc/common/constants"
	"uc/common/types"
)

// dispatch decodes raw and delivers exactly one event for it. Frames that
// are not part of the protocol are returned as errors.
func (c *Client) dispatch(sess *session, raw string) error {
	reply, err := codec.Decode(raw)
	if err != nil {
		return err
	}
	c.cfg.Metrics.ReplyReceived(string(reply.Tag))

	switch reply.Tag {
	case constants.ReplyTag.PlayerID:
		sess.playerID.Store(int64(reply.PlayerID))
		c.state.CompareAndSwap(int32(types.StateConnectedUnregistered), int32(types.StateConnectedRegistered))
		c.cfg.Metrics.SetRegistered(true)
		sess.logger.Infof("registered as player %d", reply.PlayerID)
		c.emit(types.Event{Kind: types.EventPlayerRegistered, PlayerID: reply.PlayerID})
	case constants.ReplyTag.PlayerNotFound:
		c.emit(types.Event{Kind: types.EventPlayerNotFound})
	case constants.ReplyTag.ServerShutdown:
		sess.logger.Infof("server shutting down")
		c.notifyDisconnected(sess, nil)
	case constants.ReplyTag.ServerFull:
		sess.logger.Warnf("server full")
		c.emit(types.Event{Kind: types.EventServerFull})
		c.teardown(sess)
	case constants.ReplyTag.InvalidCommand:
		sess.logger.Warnf("server rejected a command")
		c.emit(types.Event{Kind: types.EventInvalidCommand})
	default:
		return types.NewProtocolViolation(raw, nil)
	}
	return nil
}

// notifyDisconnected delivers at most one disconnection event per session.
func (c *Client) notifyDisconnected(sess *session, err error) {
	if !sess.notified.CompareAndSwap(false, true) {
		return
	}
	c.emit(types.Event{Kind: types.EventServerDisconnected, Err: err})
}

func (c *Client) emit(event types.Event) {
	c.mu.Lock()
	l := c.listener
	c.mu.Unlock()
	if l != nil {
		l(event)
	}
}
