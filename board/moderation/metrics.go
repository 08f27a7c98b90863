package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	flagsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "overflow",
		Subsystem: "moderation",
		Name:      "flags_submitted_total",
		Help:      "Flags recorded, by reason.",
	}, []string{"reason"})

	actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "overflow",
		Subsystem: "moderation",
		Name:      "actions_total",
		Help:      "Moderator decisions, by action and outcome.",
	}, []string{"action", "outcome"})

	propagationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "overflow",
		Subsystem: "moderation",
		Name:      "propagation_failures_total",
		Help:      "Failed cascade steps after a removal, by step.",
	}, []string{"step"})
)

func observe(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	actions.WithLabelValues(action, outcome).Inc()
}
