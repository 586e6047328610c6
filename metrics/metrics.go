package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dev-mohitbeniwal/tokengate/pdp/model"
)

const namespace = "tokengate"

var (
	// Decision metrics
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pdp",
		Name:      "decisions_total",
		Help:      "Authorization decisions by outcome, code and deciding stage",
	}, []string{"decision", "code", "stage"})

	// Oracle metrics
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "cache_lookups_total",
		Help:      "Balance cache lookups by result (hit, miss)",
	}, []string{"result"})
	coalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "coalesced_requests_total",
		Help:      "Balance lookups that shared another caller's in-flight RPC",
	})
	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "rpc_duration_seconds",
		Help:      "balanceOf RPC latency by outcome",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2, 3, 5},
	}, []string{"outcome"})

	// Audit metrics
	auditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "write_failures_total",
		Help:      "Decision audit records that could not be written",
	})
)

func RecordDecision(result model.VerificationResult) {
	code := string(result.Code)
	if code == "" {
		code = "none"
	}
	decisionsTotal.WithLabelValues(string(result.Decision), code, string(result.Stage)).Inc()
}

func CacheHit() {
	cacheLookupsTotal.WithLabelValues("hit").Inc()
}

func CacheMiss() {
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}

func Coalesced() {
	coalescedTotal.Inc()
}

func ObserveRPC(elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rpcDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func AuditFailure() {
	auditFailuresTotal.Inc()
}
