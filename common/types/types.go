package types

import "fmt"

type CommandTag string

type ReplyTag string

// Command is an outgoing frame before encoding. Only the fields used by Tag
// are meaningful.
type Command struct {
	Tag      CommandTag
	PlayerID int
	Name     string
	Key      string
	Extra    []string
	X        float32
	Y        float32
	Z        float32
}

// Reply is a decoded inbound frame. PlayerID is set for PLAYER_ID replies,
// Raw keeps the original text of unrecognised frames.
type Reply struct {
	Tag      ReplyTag
	PlayerID int
	Raw      string
}

type EventKind int

const (
	EventPlayerRegistered EventKind = iota
	EventPlayerNotFound
	EventServerDisconnected
	EventServerFull
	EventInvalidCommand
)

func (k EventKind) String() string {
	switch k {
	case EventPlayerRegistered:
		return "player_registered"
	case EventPlayerNotFound:
		return "player_not_found"
	case EventServerDisconnected:
		return "server_disconnected"
	case EventServerFull:
		return "server_full"
	case EventInvalidCommand:
		return "invalid_command"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is the single notification type delivered to a listener.
// PlayerID is set for EventPlayerRegistered. Err is set when a disconnection
// was caused by a transport failure or a protocol violation.
type Event struct {
	Kind     EventKind
	PlayerID int
	Err      error
}

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnectedUnregistered
	StateConnectedRegistered
	StateDisconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnectedUnregistered:
		return "connected_unregistered"
	case StateConnectedRegistered:
		return "connected_registered"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// SessionStatus is a point-in-time copy of a client's session.
type SessionStatus struct {
	SessionID  string `json:"sessionId,omitempty"`
	State      string `json:"state"`
	Running    bool   `json:"running"`
	RemoteAddr string `json:"remoteAddr,omitempty"`
	RemotePort int    `json:"remotePort,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	PlayerID   int    `json:"playerId"`
}
