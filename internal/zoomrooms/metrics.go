package zoomrooms

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zrctl_commands_total",
			Help: "Shell commands executed, by family and outcome",
		},
		[]string{"family", "outcome"},
	)

	commandAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zrctl_command_attempts",
			Help:    "Send attempts needed before a command was verified or abandoned",
			Buckets: []float64{1, 2, 3, 5, 8, 10, 15},
		},
	)

	dialTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zrctl_dial_total",
			Help: "Dial operations by result",
		},
		[]string{"result"},
	)

	stuckRecoveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zrctl_stuck_recoveries_total",
			Help: "Forced disconnects after the device stayed in the connecting state",
		},
	)

	sessionStateGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zrctl_session_state",
			Help: "Last observed session state (0 not in meeting, 1 connecting, 2 in meeting)",
		},
	)

	unrecognizedStatusTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zrctl_unrecognized_status_total",
			Help: "Call status responses whose text matched no known state",
		},
	)
)

func recordCommand(command, outcome string, attempts int) {
	family := commandFamily(command)
	if family == "" {
		family = "other"
	}
	commandsTotal.WithLabelValues(family, outcome).Inc()
	if attempts > 0 {
		commandAttempts.Observe(float64(attempts))
	}
}
