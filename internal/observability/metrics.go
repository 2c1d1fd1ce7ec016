package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts login attempts by outcome
	// (success, invalid_credentials, locked, blocked).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basspress_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	}, []string{"outcome"})

	// AccountLockouts counts accounts locked out after repeated failures.
	AccountLockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "basspress_account_lockouts_total",
		Help: "Total number of account lockouts triggered",
	})

	// TokensIssued counts issued tokens by class (access, refresh).
	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basspress_tokens_issued_total",
		Help: "Total number of tokens issued by class",
	}, []string{"class"})

	// SpamCaught counts comments flagged as spam by the classifier at creation.
	SpamCaught = promauto.NewCounter(prometheus.CounterOpts{
		Name: "basspress_spam_comments_caught_total",
		Help: "Total number of comments auto-flagged as spam at creation",
	})

	// ModerationDecisions counts moderator decisions by outcome
	// (approved, rejected, spam).
	ModerationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "basspress_moderation_decisions_total",
		Help: "Total number of moderation decisions by outcome",
	}, []string{"outcome"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "basspress_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}
