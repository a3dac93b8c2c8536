package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeSuccess labels a login that reached the Success state. Failures are
// labelled with their Reason.
const OutcomeSuccess = "success"

// LoginAttempts counts finished login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "portal_login_attempts_total",
		Help: "Total number of admin login attempts",
	},
	[]string{"outcome"},
)

// LoginDuration observes how long a login attempt took, bcrypt included.
var LoginDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "portal_login_duration_seconds",
		Help:    "Admin login duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
)

// RegisterMetrics registers the login metrics with reg. Panics if
// registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(LoginDuration)
}

// OutcomeOf maps a Login error onto its metric label.
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return ReasonOf(err).String()
}

func recordLogin(err error, elapsed time.Duration) {
	LoginAttempts.WithLabelValues(OutcomeOf(err)).Inc()
	LoginDuration.Observe(elapsed.Seconds())
}
