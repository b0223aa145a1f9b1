// Package config loads the controller and reference server settings from a
// JSON file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"

	"uc/common/constants"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Player   PlayerConfig   `json:"player"`
	Bridge   BridgeConfig   `json:"bridge"`
	Log      LogConfig      `json:"log"`
	UCServer UCServerConfig `json:"ucserver"`
}

// ServerConfig describes the controller server the client dials.
type ServerConfig struct {
	Addr           string `json:"addr"`
	Port           int    `json:"port"`
	Transport      string `json:"transport"`
	WSPath         string `json:"wsPath"`
	BufferSize     int    `json:"bufferSize"`
	WriteTimeoutMs int    `json:"writeTimeoutMs"`
	// AutoConnect dials on startup instead of waiting for the console.
	AutoConnect bool `json:"autoConnect"`
}

func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMs) * time.Millisecond
}

type PlayerConfig struct {
	Name         string `json:"name"`
	AutoRegister bool   `json:"autoRegister"`
}

type BridgeConfig struct {
	Enabled bool    `json:"enabled"`
	Addr    string  `json:"addr"`
	Rate    float64 `json:"rate"`
	Burst   int     `json:"burst"`
}

type LogConfig struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMB"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

type UCServerConfig struct {
	Addr string `json:"addr"`
	// WSAddr serves websocket controllers as well when set.
	WSAddr   string `json:"wsAddr"`
	WSPath   string `json:"wsPath"`
	Capacity int    `json:"capacity"`
}

// Default returns a configuration that talks to a server on localhost.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           "127.0.0.1",
			Port:           constants.DefaultServerPort,
			Transport:      constants.TransportKind.TCP,
			WSPath:         constants.DefaultWSPath,
			BufferSize:     constants.DefaultBufferSize,
			WriteTimeoutMs: int(constants.DefaultWriteTimeout / time.Millisecond),
		},
		Bridge: BridgeConfig{
			Enabled: true,
			Addr:    constants.DefaultBridgeAddr,
			Rate:    200,
			Burst:   50,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		UCServer: UCServerConfig{
			Addr:     fmt.Sprintf(":%d", constants.DefaultServerPort),
			WSPath:   constants.DefaultWSPath,
			Capacity: constants.DefaultServerCapacity,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Transport {
	case constants.TransportKind.TCP, constants.TransportKind.WebSocket:
	default:
		return fmt.Errorf("unknown transport %q", c.Server.Transport)
	}
	if c.Server.BufferSize < len(constants.Terminator)+1 {
		return fmt.Errorf("buffer size too small: %d", c.Server.BufferSize)
	}
	if c.Server.WriteTimeoutMs < 0 {
		return fmt.Errorf("write timeout must be non-negative, got %dms", c.Server.WriteTimeoutMs)
	}
	if c.Player.AutoRegister && c.Player.Name == "" {
		return fmt.Errorf("player name cannot be empty when auto register is enabled")
	}
	if c.Player.AutoRegister && !c.Server.AutoConnect {
		return fmt.Errorf("auto register requires auto connect")
	}

	if c.Bridge.Enabled {
		if c.Bridge.Addr == "" {
			return fmt.Errorf("bridge addr cannot be empty when the bridge is enabled")
		}
		if c.Bridge.Rate <= 0 || c.Bridge.Burst < 1 {
			return fmt.Errorf("bridge rate and burst must be positive, got %v/%d", c.Bridge.Rate, c.Bridge.Burst)
		}
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.Log.File != "" && c.Log.MaxSizeMB < 1 {
		return fmt.Errorf("log max size must be at least 1MB, got %dMB", c.Log.MaxSizeMB)
	}

	if c.UCServer.WSAddr != "" && c.UCServer.WSPath == "" {
		return fmt.Errorf("ucserver ws path cannot be empty when ws addr is set")
	}
	if c.UCServer.Capacity < 1 {
		return fmt.Errorf("ucserver capacity must be at least 1, got %d", c.UCServer.Capacity)
	}
	return nil
}
