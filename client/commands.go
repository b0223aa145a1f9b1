package client

import (
	"uc/codec"
	"uc/common/constants"
	"uc/common/types"
)

// Register asks the server for a player id. The client stays unregistered
// until the PLAYER_ID reply arrives.
func (c *Client) Register(name string) error {
	sess := c.current()
	if sess != nil && sess.playerID.Load() != constants.UnregisteredPlayerID {
		return types.ErrPlayerAlreadyRegistered
	}
	if sess == nil {
		return types.ErrNotConnected
	}

	c.mu.Lock()
	sess.playerName = name
	c.mu.Unlock()

	return c.send(sess, types.Command{Tag: constants.CommandTag.Register, Name: name})
}

// Deregister tells the server to release the player. The local player id is
// left alone: only the read pump writes it, so the session keeps its
// registered state and player commands still go out (the server answers
// them with PLAYER_NOT_FOUND). Disconnect and Connect start over.
func (c *Client) Deregister() error {
	sess, id, err := c.registered()
	if err != nil {
		return err
	}
	return c.send(sess, types.Command{Tag: constants.CommandTag.Deregister, PlayerID: id})
}

// KeyDown reports a key press. Extra fields are appended after the key.
func (c *Client) KeyDown(key string, extra ...string) error {
	sess, id, err := c.registered()
	if err != nil {
		return err
	}
	return c.send(sess, types.Command{Tag: constants.CommandTag.KeyDown, PlayerID: id, Key: key, Extra: extra})
}

// Joystick reports a stick position; both axes must lie strictly inside (-1, 1).
func (c *Client) Joystick(x, y float32) error {
	sess, id, err := c.registered()
	if err != nil {
		return err
	}
	if !inRange(x) || !inRange(y) {
		return types.NewInvalidJoystickValue(x, y)
	}
	return c.send(sess, types.Command{Tag: constants.CommandTag.Joystick, PlayerID: id, X: x, Y: y})
}

// Gyro reports an orientation vector; every axis must lie strictly inside (-1, 1).
func (c *Client) Gyro(x, y, z float32) error {
	sess, id, err := c.registered()
	if err != nil {
		return err
	}
	if !inRange(x) || !inRange(y) || !inRange(z) {
		return types.NewInvalidGyroValue(x, y, z)
	}
	return c.send(sess, types.Command{Tag: constants.CommandTag.Gyro, PlayerID: id, X: x, Y: y, Z: z})
}

func (c *Client) registered() (*session, int, error) {
	sess := c.current()
	if sess == nil {
		return nil, constants.UnregisteredPlayerID, types.ErrPlayerNotRegistered
	}
	id := int(sess.playerID.Load())
	if id == constants.UnregisteredPlayerID {
		return nil, id, types.ErrPlayerNotRegistered
	}
	return sess, id, nil
}

// NaN fails both comparisons.
func inRange(v float32) bool {
	return v > -1 && v < 1
}

func (c *Client) send(sess *session, cmd types.Command) error {
	frame, err := codec.Encode(cmd)
	if err != nil {
		return err
	}

	if err := sess.transport.Write([]byte(frame)); err != nil {
		failure := types.NewTransportFailure("send "+string(cmd.Tag), err)
		if sess.stopped() {
			sess.logger.WithError(err).Warnf("send %s after disconnect", cmd.Tag)
			return failure
		}
		c.cfg.Metrics.TransportFailure("write")
		sess.logger.WithError(err).Errorf("send %s", cmd.Tag)
		c.fail(sess, failure)
		return failure
	}

	c.cfg.Metrics.FrameSent(string(cmd.Tag))
	sess.logger.Debugf("sent %s", frame)
	return nil
}
