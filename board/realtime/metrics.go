package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	droppedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "overflow",
		Subsystem: "realtime",
		Name:      "dropped_messages_total",
		Help:      "Messages dropped because the hub buffer was full.",
	})
	connectedSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "overflow",
		Subsystem: "realtime",
		Name:      "connected_sockets",
		Help:      "Sockets currently connected.",
	})
)
