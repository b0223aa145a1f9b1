// Package codec converts between controller commands/replies and the
// text frames of the wire protocol.
//
//	client -> server:  REGISTER:alice<EOC>
//	                   7:JOYSTICK:0.5:-0.25<EOC>
//	server -> client:  PLAYER_ID:7<EOC>
//	                   SERVER_FULL<EOC>
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"uc/common"
	"uc/common/constants"
	"uc/common/types"
)

// Encode renders cmd as a terminated frame. Text fields lose every
// separator character so the receiver can split the frame unambiguously.
func Encode(cmd types.Command) (string, error) {
	var fields []string
	switch cmd.Tag {
	case constants.CommandTag.Register:
		fields = []string{string(cmd.Tag), clean(cmd.Name)}
	case constants.CommandTag.Deregister:
		fields = []string{string(cmd.Tag), strconv.Itoa(cmd.PlayerID)}
	case constants.CommandTag.KeyDown:
		fields = []string{strconv.Itoa(cmd.PlayerID), string(cmd.Tag), clean(cmd.Key)}
		for _, extra := range cmd.Extra {
			fields = append(fields, clean(extra))
		}
	case constants.CommandTag.Joystick:
		fields = []string{strconv.Itoa(cmd.PlayerID), string(cmd.Tag), FormatAxis(cmd.X), FormatAxis(cmd.Y)}
	case constants.CommandTag.Gyro:
		fields = []string{strconv.Itoa(cmd.PlayerID), string(cmd.Tag), FormatAxis(cmd.X), FormatAxis(cmd.Y), FormatAxis(cmd.Z)}
	default:
		return "", fmt.Errorf("encode: unknown command tag %q", cmd.Tag)
	}
	return strings.Join(fields, constants.Separator) + constants.Terminator, nil
}

// Decode parses one inbound frame. Frames that match no known reply come
// back as an Unknown reply with Raw set; a PLAYER_ID frame whose id does not
// parse is a protocol violation.
func Decode(raw string) (types.Reply, error) {
	tokens := strings.Split(body(raw), constants.Separator)
	unknown := types.Reply{Tag: constants.ReplyTag.Unknown, PlayerID: constants.UnregisteredPlayerID, Raw: raw}

	switch len(tokens) {
	case 1:
		switch tag := types.ReplyTag(tokens[0]); tag {
		case constants.ReplyTag.PlayerNotFound,
			constants.ReplyTag.ServerShutdown,
			constants.ReplyTag.ServerFull,
			constants.ReplyTag.InvalidCommand:
			return types.Reply{Tag: tag, PlayerID: constants.UnregisteredPlayerID}, nil
		}
		return unknown, nil
	case 2:
		if types.ReplyTag(tokens[0]) != constants.ReplyTag.PlayerID {
			return unknown, nil
		}
		id, err := strconv.Atoi(tokens[1])
		if err != nil {
			return unknown, types.NewProtocolViolation(raw, err)
		}
		if id < 0 {
			return unknown, types.NewProtocolViolation(raw, fmt.Errorf("negative player id %d", id))
		}
		return types.Reply{Tag: constants.ReplyTag.PlayerID, PlayerID: id}, nil
	default:
		return unknown, nil
	}
}

// FormatAxis prints v as the shortest float32 decimal, always with a
// decimal point and never in exponent form, so 1e-4 becomes "0.0001".
func FormatAxis(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func clean(s string) string {
	return common.StripSeparator(s, constants.Separator)
}

// body strips whitespace and an optional trailing terminator.
func body(raw string) string {
	b := strings.TrimSpace(raw)
	return strings.TrimSpace(strings.TrimSuffix(b, constants.Terminator))
}
