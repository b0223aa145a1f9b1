package common

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRecover(t *testing.T) {
	ran := false
	assert.NotPanics(t, func() {
		WithRecover(func() {
			ran = true
			panic("boom")
		}, "test")
	})
	assert.True(t, ran)
}

func TestStripSeparator(t *testing.T) {
	assert.Equal(t, "Alice", StripSeparator("Al:ice", ":"))
	assert.Equal(t, "abc", StripSeparator("::a:b:c:", ":"))
	assert.Equal(t, "a:b", StripSeparator("a:b", ""))
}

func TestInitLogger(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	defer log.SetLevel(log.InfoLevel)

	_, err := InitLogger("loud", "", 1, 1, 1)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "uc.log")
	closer, err := InitLogger("debug", path, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	log.Info("hello")
	require.NoError(t, closer.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
