package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the broadcast controller.
type Metrics struct {
	registry                prometheus.Registerer
	gatherer                prometheus.Gatherer
	commandsDeliveredTotal  prometheus.Counter
	commandsSuppressedTotal prometheus.Counter
	connectedDisplays       prometheus.Gauge
	ticksTotal              prometheus.Counter
	tickErrorsTotal         prometheus.Counter
}

// New creates and registers Prometheus metrics for the controller.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	commandsDeliveredTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signage_commands_delivered_total",
		Help: "Total number of commands delivered to display connections",
	})
	commandsSuppressedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signage_commands_suppressed_total",
		Help: "Total number of commands suppressed by priority arbitration",
	})
	connectedDisplays := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signage_connected_displays",
		Help: "Number of displays with a live push connection",
	})
	ticksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signage_scheduler_ticks_total",
		Help: "Total number of periodic scheduling passes",
	})
	tickErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signage_scheduler_errors_total",
		Help: "Total number of repository errors during scheduling passes",
	})

	registry.MustRegister(
		commandsDeliveredTotal,
		commandsSuppressedTotal,
		connectedDisplays,
		ticksTotal,
		tickErrorsTotal,
	)

	return &Metrics{
		registry:                registry,
		gatherer:                registry,
		commandsDeliveredTotal:  commandsDeliveredTotal,
		commandsSuppressedTotal: commandsSuppressedTotal,
		connectedDisplays:       connectedDisplays,
		ticksTotal:              ticksTotal,
		tickErrorsTotal:         tickErrorsTotal,
	}
}

// IncCommandsDelivered increments the delivered command counter.
func (m *Metrics) IncCommandsDelivered() {
	m.commandsDeliveredTotal.Inc()
}

// IncCommandsSuppressed increments the suppressed command counter.
func (m *Metrics) IncCommandsSuppressed() {
	m.commandsSuppressedTotal.Inc()
}

// SetConnectedDisplays sets the connected displays gauge.
func (m *Metrics) SetConnectedDisplays(n int) {
	m.connectedDisplays.Set(float64(n))
}

// IncTicks increments the scheduling pass counter.
func (m *Metrics) IncTicks() {
	m.ticksTotal.Inc()
}

// IncTickErrors increments the scheduling error counter.
func (m *Metrics) IncTickErrors() {
	m.tickErrorsTotal.Inc()
}

// Handler returns an http.Handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
