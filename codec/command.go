package codec

import (
	"fmt"
	"strconv"
	"strings"

	"uc/common/constants"
	"uc/common/types"
)

// DecodeCommand parses a client frame. It is the server-side inverse of
// Encode and is used by the reference server.
func DecodeCommand(raw string) (types.Command, error) {
	tokens := strings.Split(body(raw), constants.Separator)
	if len(tokens) < 2 {
		return types.Command{}, types.NewProtocolViolation(raw, nil)
	}

	switch tag := types.CommandTag(tokens[0]); tag {
	case constants.CommandTag.Register:
		if len(tokens) != 2 {
			return types.Command{}, types.NewProtocolViolation(raw, nil)
		}
		return types.Command{Tag: tag, PlayerID: constants.UnregisteredPlayerID, Name: tokens[1]}, nil
	case constants.CommandTag.Deregister:
		if len(tokens) != 2 {
			return types.Command{}, types.NewProtocolViolation(raw, nil)
		}
		id, err := strconv.Atoi(tokens[1])
		if err != nil {
			return types.Command{}, types.NewProtocolViolation(raw, err)
		}
		return types.Command{Tag: tag, PlayerID: id}, nil
	}

	id, err := strconv.Atoi(tokens[0])
	if err != nil {
		return types.Command{}, types.NewProtocolViolation(raw, err)
	}
	cmd := types.Command{Tag: types.CommandTag(tokens[1]), PlayerID: id}
	args := tokens[2:]

	switch cmd.Tag {
	case constants.CommandTag.KeyDown:
		if len(args) < 1 {
			return types.Command{}, types.NewProtocolViolation(raw, nil)
		}
		cmd.Key = args[0]
		if len(args) > 1 {
			cmd.Extra = append([]string(nil), args[1:]...)
		}
		return cmd, nil
	case constants.CommandTag.Joystick:
		if len(args) != 2 {
			return types.Command{}, types.NewProtocolViolation(raw, nil)
		}
		axes, err := parseAxes(args)
		if err != nil {
			return types.Command{}, types.NewProtocolViolation(raw, err)
		}
		cmd.X, cmd.Y = axes[0], axes[1]
		return cmd, nil
	case constants.CommandTag.Gyro:
		if len(args) != 3 {
			return types.Command{}, types.NewProtocolViolation(raw, nil)
		}
		axes, err := parseAxes(args)
		if err != nil {
			return types.Command{}, types.NewProtocolViolation(raw, err)
		}
		cmd.X, cmd.Y, cmd.Z = axes[0], axes[1], axes[2]
		return cmd, nil
	default:
		return types.Command{}, types.NewProtocolViolation(raw, fmt.Errorf("unknown command %q", tokens[1]))
	}
}

// EncodeReply renders a server reply frame.
func EncodeReply(reply types.Reply) (string, error) {
	switch reply.Tag {
	case constants.ReplyTag.PlayerID:
		return string(reply.Tag) + constants.Separator + strconv.Itoa(reply.PlayerID) + constants.Terminator, nil
	case constants.ReplyTag.PlayerNotFound,
		constants.ReplyTag.ServerShutdown,
		constants.ReplyTag.ServerFull,
		constants.ReplyTag.InvalidCommand:
		return string(reply.Tag) + constants.Terminator, nil
	default:
		return "", fmt.Errorf("encode reply: unknown reply tag %q", reply.Tag)
	}
}

func parseAxes(args []string) ([]float32, error) {
	axes := make([]float32, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, err
		}
		axes[i] = float32(v)
	}
	return axes, nil
}
