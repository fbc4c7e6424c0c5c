package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	ledgerConsumptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_consumptions_total",
			Help: "Ledger consumption decisions labeled by charged bucket and outcome",
		},
		[]string{"bucket", "outcome"},
	)
	ledgerResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_resets_total",
			Help: "Free-interaction resets labeled by scope (user or promo)",
		},
		[]string{"scope"},
	)
	generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliment_generation_requests_total",
			Help: "Compliment generation API calls labeled by status",
		},
		[]string{"status"},
	)
	generationDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compliment_generation_duration_seconds",
			Help:    "Duration of compliment generation API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	generationTokensTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compliment_generation_tokens_total",
			Help: "Total tokens reported by the generation API",
		},
	)
	synthesisRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "speech_synthesis_requests_total",
			Help: "Text-to-speech API calls labeled by status",
		},
		[]string{"status"},
	)
	synthesisDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "speech_synthesis_duration_seconds",
			Help:    "Duration of text-to-speech API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordConsumption tracks a ledger authorization decision.
func RecordConsumption(bucket string, authorized bool) {
	outcome := "denied"
	if authorized {
		outcome = "authorized"
	}
	if bucket == "" {
		bucket = "none"
	}

	ledgerConsumptionsTotal.WithLabelValues(bucket, outcome).Inc()
}

// RecordReset tracks a free-interaction reset by scope.
func RecordReset(scope string) {
	if scope == "" {
		scope = "unknown"
	}

	ledgerResetsTotal.WithLabelValues(scope).Inc()
}

// RecordGeneration tracks one compliment generation call.
func RecordGeneration(status string, duration time.Duration, totalTokens int) {
	if status == "" {
		status = "unknown"
	}

	generationRequestsTotal.WithLabelValues(status).Inc()
	generationDurationSeconds.Observe(duration.Seconds())

	if totalTokens > 0 {
		generationTokensTotal.Add(float64(totalTokens))
	}
}

// RecordSynthesis tracks one text-to-speech call.
func RecordSynthesis(status string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}

	synthesisRequestsTotal.WithLabelValues(status).Inc()
	synthesisDurationSeconds.Observe(duration.Seconds())
}
