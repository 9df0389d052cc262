// Package metrics exposes Prometheus instruments for auth and dashboard activity.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domainauth "github.com/target/carecircle/internal/domain/auth"
)

// Result label values.
const (
	ResultSuccess     = "success"
	ResultRejected    = "rejected"    // the identity service refused the request
	ResultUnreachable = "unreachable" // transport failure talking to the identity service
	ResultError       = "error"
)

const namespace = "carecircle"

// Recorder groups the application's Prometheus instruments.
type Recorder struct {
	authAttempts    *prometheus.CounterVec
	authLatency     *prometheus.HistogramVec
	signOutFailures prometheus.Counter
	providers       prometheus.Gauge
	bootstraps      *prometheus.CounterVec
}

// New registers all instruments with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		authAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Calls to the identity service, labeled by operation and result",
		}, []string{"op", "result"}),
		authLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "latency_seconds",
			Help:      "Identity service round-trip latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		signOutFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "signout_failures_total",
			Help:      "Sign-out calls that failed and were only logged",
		}),
		providers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "providers",
			Help:      "Providers placed on the most recently rendered care circle",
		}),
		bootstraps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "session_bootstraps_total",
			Help:      "Display name lookups on dashboard mount, labeled by outcome",
		}, []string{"result"}),
	}
}

// ResultFor maps an identity service error to a result label.
func ResultFor(err error) string {
	if err == nil {
		return ResultSuccess
	}
	if re, ok := domainauth.AsRemoteError(err); ok {
		if re.Cause != nil && re.Message == domainauth.UnreachableMessage {
			return ResultUnreachable
		}
		return ResultRejected
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ResultUnreachable
	}
	return ResultError
}

// AuthAttempt records one identity service call.
func (r *Recorder) AuthAttempt(op string, err error, took time.Duration) {
	if r == nil {
		return
	}
	r.authAttempts.WithLabelValues(op, ResultFor(err)).Inc()
	r.authLatency.WithLabelValues(op).Observe(took.Seconds())
}

// SignOutFailure records a swallowed sign-out error.
func (r *Recorder) SignOutFailure() {
	if r == nil {
		return
	}
	r.signOutFailures.Inc()
}

// DashboardProviders records how many providers were laid out.
func (r *Recorder) DashboardProviders(n int) {
	if r == nil {
		return
	}
	r.providers.Set(float64(n))
}

// SessionBootstrap records the outcome of a display name lookup.
func (r *Recorder) SessionBootstrap(result string) {
	if r == nil {
		return
	}
	r.bootstraps.WithLabelValues(result).Inc()
}
