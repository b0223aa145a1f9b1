package packets

type Register struct {
	Name string `json:"name"`
}

type RegisterAck struct {
	Name     string `json:"name"`
	PlayerID int    `json:"playerId"`
	State    string `json:"state"`
}

type KeyDown struct {
	Extra []string `json:"extra,omitempty"`
}

type Joystick struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

type Gyro struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type Connect struct {
	Addr string `json:"addr"`
	Port int    `json:"port"`
}

type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Health struct {
	Running bool   `json:"running"`
	State   string `json:"state"`
}
