package constants

import (
	"time"

	"uc/common/types"
)

// Frame tokens shared by both sides of the wire.
const (
	Separator  = ":"
	Terminator = "<EOC>"
)

// UnregisteredPlayerID marks a session without a server-assigned player.
const UnregisteredPlayerID = -1

var DefaultBufferSize = 1024
var DefaultServerPort = 7777
var DefaultWriteTimeout = 10 * time.Second
var DefaultBridgeAddr = "127.0.0.1:8090"
var DefaultServerCapacity = 4
var DefaultWSPath = "/uc"

var CommandTag = struct {
	Register   types.CommandTag
	Deregister types.CommandTag
	KeyDown    types.CommandTag
	Joystick   types.CommandTag
	Gyro       types.CommandTag
}{
	Register:   "REGISTER",
	Deregister: "DEREGISTER",
	KeyDown:    "KEY_DOWN",
	Joystick:   "JOYSTICK",
	Gyro:       "GYRO",
}

var ReplyTag = struct {
	PlayerID       types.ReplyTag
	PlayerNotFound types.ReplyTag
	ServerShutdown types.ReplyTag
	ServerFull     types.ReplyTag
	InvalidCommand types.ReplyTag
	Unknown        types.ReplyTag
}{
	PlayerID:       "PLAYER_ID",
	PlayerNotFound: "PLAYER_NOT_FOUND",
	ServerShutdown: "SERVER_SHUTDOWN",
	ServerFull:     "SERVER_FULL",
	InvalidCommand: "INVALID_COMMAND",
	Unknown:        "",
}

var TransportKind = struct {
	TCP       string
	WebSocket string
}{
	TCP:       "tcp",
	WebSocket: "ws",
}
