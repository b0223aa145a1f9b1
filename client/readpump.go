package client

import (
	"uc/common/constants"
	"uc/common/types"
)

// readPump reads one frame at a time and dispatches it before reading the
// next. Any read error or protocol violation ends the session; the deferred
// teardown releases the transport on every other exit, panics included.
func (c *Client) readPump(sess *session) {
	defer close(sess.done)
	defer c.teardown(sess)

	for c.running.Load() && !sess.stopped() {
		frame, err := sess.transport.ReadFrame(c.cfg.BufferSize, constants.Terminator)
		if err != nil {
			if sess.stopped() {
				sess.logger.WithError(err).Warnf("read")
				return
			}
			c.cfg.Metrics.TransportFailure("read")
			sess.logger.WithError(err).Errorf("read")
			c.fail(sess, types.NewTransportFailure("read", err))
			return
		}
		if sess.stopped() {
			return
		}

		sess.logger.Debugf("recv %s", frame)
		if err := c.dispatch(sess, string(frame)); err != nil {
			c.cfg.Metrics.ProtocolViolation()
			sess.logger.WithError(err).Errorf("protocol violation")
			c.fail(sess, err)
			return
		}
	}
}
