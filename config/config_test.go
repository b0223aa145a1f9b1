package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uc.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "tcp", cfg.Server.Transport)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"addr": "10.0.0.5", "port": 9000, "transport": "ws", "autoConnect": true},
		"player": {"name": "alice", "autoRegister": true},
		"log": {"level": "debug"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Server.Addr)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "ws", cfg.Server.Transport)
	assert.Equal(t, "/uc", cfg.Server.WSPath)
	assert.Equal(t, 1024, cfg.Server.BufferSize)
	assert.Equal(t, "alice", cfg.Player.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4, cfg.UCServer.Capacity)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{"server": `))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{"server": {"port": 70000}}`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown transport", func(c *Config) { c.Server.Transport = "udp" }},
		{"tiny buffer", func(c *Config) { c.Server.BufferSize = 3 }},
		{"negative timeout", func(c *Config) { c.Server.WriteTimeoutMs = -1 }},
		{"auto register without name", func(c *Config) {
			c.Server.AutoConnect = true
			c.Player.AutoRegister = true
		}},
		{"auto register without connect", func(c *Config) {
			c.Player.Name = "alice"
			c.Player.AutoRegister = true
		}},
		{"bridge without addr", func(c *Config) { c.Bridge.Addr = "" }},
		{"bridge zero rate", func(c *Config) { c.Bridge.Rate = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log file without size", func(c *Config) {
			c.Log.File = "uc.log"
			c.Log.MaxSizeMB = 0
		}},
		{"ws addr without path", func(c *Config) {
			c.UCServer.WSAddr = ":7778"
			c.UCServer.WSPath = ""
		}},
		{"zero capacity", func(c *Config) { c.UCServer.Capacity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Bridge.Enabled = false
	cfg.Bridge.Addr = ""
	assert.NoError(t, cfg.Validate())
}
