// Package metrics defines the Prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for quotebot_commands_total.
const (
	OutcomeOK        = "ok"
	OutcomeUserError = "user_error"
	OutcomeTimeout   = "timeout"
	OutcomeError     = "error"
)

// Metrics holds the bot's Prometheus collectors.
type Metrics struct {
	// CommandsTotal counts handled command invocations by command name and
	// outcome.
	CommandsTotal *prometheus.CounterVec

	// CommandDuration observes wall time per command invocation, including
	// interactive waits.
	CommandDuration *prometheus.HistogramVec

	// WorkflowTimeouts counts interactive waits that elapsed without a
	// qualifying user action.
	WorkflowTimeouts *prometheus.CounterVec

	// QuotesStored counts successful quote inserts.
	QuotesStored prometheus.Counter
}

// New registers the bot's collectors with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CommandsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quotebot_commands_total",
			Help: "Handled command invocations by command and outcome.",
		}, []string{"command", "outcome"}),

		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "quotebot_command_duration_seconds",
			Help: "Command handling duration, interactive waits included.",
			// Interactive workflows legitimately run for minutes.
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 15, 60, 300, 900},
		}, []string{"command"}),

		WorkflowTimeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quotebot_workflow_timeouts_total",
			Help: "Interactive waits that expired before the invoker acted.",
		}, []string{"workflow"}),

		QuotesStored: factory.NewCounter(prometheus.CounterOpts{
			Name: "quotebot_quotes_stored_total",
			Help: "Successfully stored quotes.",
		}),
	}
}
