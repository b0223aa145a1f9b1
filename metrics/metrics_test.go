package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.FrameSent("REGISTER")
	c.FrameSent("JOYSTICK")
	c.FrameSent("JOYSTICK")
	c.ReplyReceived("PLAYER_ID")
	c.ReplyReceived("")
	c.ProtocolViolation()
	c.TransportFailure("read")
	c.SetRegistered(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.framesSent.WithLabelValues("JOYSTICK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.framesSent.WithLabelValues("REGISTER")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.repliesReceived.WithLabelValues("UNKNOWN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.protocolViolations))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transportFailures.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.registered))

	c.SetRegistered(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.registered))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.FrameSent("GYRO")
		c.ReplyReceived("SERVER_FULL")
		c.ProtocolViolation()
		c.TransportFailure("write")
		c.SetRegistered(true)
	})
}
