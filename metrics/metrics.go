// Package metrics exposes controller session counters to Prometheus.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "uc"

type Collector struct {
	framesSent         *prometheus.CounterVec
	repliesReceived    *prometheus.CounterVec
	protocolViolations prometheus.Counter
	transportFailures  *prometheus.CounterVec
	registered         prometheus.Gauge
}

// NewCollector creates the controller metrics and registers them on reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		framesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "frames_sent_total",
			Help:      "Frames written to the server, by command.",
		}, []string{"command"}),
		repliesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "replies_received_total",
			Help:      "Frames decoded from the server, by reply.",
		}, []string{"reply"}),
		protocolViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "protocol_violations_total",
			Help:      "Inbound frames that did not match the protocol.",
		}),
		transportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "transport_failures_total",
			Help:      "Transport errors, by operation.",
		}, []string{"op"}),
		registered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "player_registered",
			Help:      "1 while the session holds a server-assigned player id.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.framesSent, c.repliesReceived, c.protocolViolations, c.transportFailures, c.registered)
	}
	return c
}

func (c *Collector) FrameSent(command string) {
	if c == nil {
		return
	}
	c.framesSent.WithLabelValues(command).Inc()
}

func (c *Collector) ReplyReceived(reply string) {
	if c == nil {
		return
	}
	if reply == "" {
		reply = "UNKNOWN"
	}
	c.repliesReceived.WithLabelValues(reply).Inc()
}

func (c *Collector) ProtocolViolation() {
	if c == nil {
		return
	}
	c.protocolViolations.Inc()
}

func (c *Collector) TransportFailure(op string) {
	if c == nil {
		return
	}
	c.transportFailures.WithLabelValues(op).Inc()
}

func (c *Collector) SetRegistered(registered bool) {
	if c == nil {
		return
	}
	if registered {
		c.registered.Set(1)
		return
	}
	c.registered.Set(0)
}
