package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uc/common/constants"
	"uc/common/types"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		cmd  types.Command
		want string
	}{
		{"register", types.Command{Tag: constants.CommandTag.Register, Name: "Alice"}, "REGISTER:Alice<EOC>"},
		{"register strips separator", types.Command{Tag: constants.CommandTag.Register, Name: "Al:ice"}, "REGISTER:Alice<EOC>"},
		{"register strips every separator", types.Command{Tag: constants.CommandTag.Register, Name: ":A:l::ice:"}, "REGISTER:Alice<EOC>"},
		{"deregister", types.Command{Tag: constants.CommandTag.Deregister, PlayerID: 3}, "DEREGISTER:3<EOC>"},
		{"key down", types.Command{Tag: constants.CommandTag.KeyDown, PlayerID: 3, Key: "A"}, "3:KEY_DOWN:A<EOC>"},
		{"key down extra", types.Command{Tag: constants.CommandTag.KeyDown, PlayerID: 3, Key: "A", Extra: []string{"long"}}, "3:KEY_DOWN:A:long<EOC>"},
		{"key down extras stripped", types.Command{Tag: constants.CommandTag.KeyDown, PlayerID: 3, Key: "B:1", Extra: []string{"x:y", "z"}}, "3:KEY_DOWN:B1:xy:z<EOC>"},
		{"joystick", types.Command{Tag: constants.CommandTag.Joystick, PlayerID: 42, X: 0.5, Y: -0.25}, "42:JOYSTICK:0.5:-0.25<EOC>"},
		{"joystick zero", types.Command{Tag: constants.CommandTag.Joystick, PlayerID: 42}, "42:JOYSTICK:0.0:0.0<EOC>"},
		{"gyro", types.Command{Tag: constants.CommandTag.Gyro, PlayerID: 1, X: 0.1, Y: 0.2, Z: -0.9}, "1:GYRO:0.1:0.2:-0.9<EOC>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeUnknownTag(t *testing.T) {
	_, err := Encode(types.Command{Tag: "JUMP"})
	assert.Error(t, err)
}

func TestFormatAxis(t *testing.T) {
	assert.Equal(t, "0.5", FormatAxis(0.5))
	assert.Equal(t, "-0.999", FormatAxis(-0.999))
	assert.Equal(t, "0.0", FormatAxis(0))
	assert.Equal(t, "0.3", FormatAxis(0.3))
	assert.Equal(t, "0.0001", FormatAxis(1e-4))
	assert.Equal(t, "-0.00001", FormatAxis(-1e-5))
	assert.Equal(t, "0.0000001", FormatAxis(1e-7))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		raw  string
		want types.Reply
	}{
		{"PLAYER_ID:42", types.Reply{Tag: constants.ReplyTag.PlayerID, PlayerID: 42}},
		{"PLAYER_ID:0<EOC>", types.Reply{Tag: constants.ReplyTag.PlayerID, PlayerID: 0}},
		{"PLAYER_NOT_FOUND", types.Reply{Tag: constants.ReplyTag.PlayerNotFound, PlayerID: -1}},
		{"SERVER_SHUTDOWN", types.Reply{Tag: constants.ReplyTag.ServerShutdown, PlayerID: -1}},
		{"SERVER_FULL<EOC>", types.Reply{Tag: constants.ReplyTag.ServerFull, PlayerID: -1}},
		{"\r\nINVALID_COMMAND\n", types.Reply{Tag: constants.ReplyTag.InvalidCommand, PlayerID: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeUnknown(t *testing.T) {
	for _, raw := range []string{
		"",
		"HELLO",
		"PLAYER_ID",
		"SERVER_FULL:1",
		"PLAYER_ID:1:2",
		"player_id:1",
	} {
		got, err := Decode(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, constants.ReplyTag.Unknown, got.Tag, raw)
		assert.Equal(t, raw, got.Raw)
	}
}

func TestDecodeBadPlayerID(t *testing.T) {
	for _, raw := range []string{"PLAYER_ID:abc", "PLAYER_ID:", "PLAYER_ID:-3"} {
		got, err := Decode(raw)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, types.ErrProtocolViolation), raw)
		assert.Equal(t, constants.ReplyTag.Unknown, got.Tag)
	}
}

func TestDecodeCommandRoundTrip(t *testing.T) {
	cmds := []types.Command{
		{Tag: constants.CommandTag.Register, PlayerID: -1, Name: "bob"},
		{Tag: constants.CommandTag.Deregister, PlayerID: 9},
		{Tag: constants.CommandTag.KeyDown, PlayerID: 9, Key: "START"},
		{Tag: constants.CommandTag.KeyDown, PlayerID: 9, Key: "A", Extra: []string{"hold", "2"}},
		{Tag: constants.CommandTag.Joystick, PlayerID: 9, X: 0.5, Y: -0.5},
		{Tag: constants.CommandTag.Gyro, PlayerID: 9, X: 0.25, Y: 0, Z: -0.75},
	}
	for _, cmd := range cmds {
		frame, err := Encode(cmd)
		require.NoError(t, err)
		got, err := DecodeCommand(frame)
		require.NoError(t, err, frame)
		assert.Equal(t, cmd, got, frame)
	}
}

func TestDecodeCommandInvalid(t *testing.T) {
	for _, raw := range []string{
		"REGISTER",
		"DEREGISTER:x",
		"x:KEY_DOWN:A",
		"1:KEY_DOWN",
		"1:JOYSTICK:0.1",
		"1:JOYSTICK:a:b",
		"1:GYRO:0.1:0.2",
		"1:JUMP:1",
	} {
		_, err := DecodeCommand(raw)
		assert.True(t, errors.Is(err, types.ErrProtocolViolation), raw)
	}
}

func TestEncodeReply(t *testing.T) {
	frame, err := EncodeReply(types.Reply{Tag: constants.ReplyTag.PlayerID, PlayerID: 5})
	require.NoError(t, err)
	assert.Equal(t, "PLAYER_ID:5<EOC>", frame)

	frame, err = EncodeReply(types.Reply{Tag: constants.ReplyTag.ServerFull})
	require.NoError(t, err)
	assert.Equal(t, "SERVER_FULL<EOC>", frame)

	got, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, constants.ReplyTag.ServerFull, got.Tag)

	_, err = EncodeReply(types.Reply{Tag: constants.ReplyTag.Unknown})
	assert.Error(t, err)
}
