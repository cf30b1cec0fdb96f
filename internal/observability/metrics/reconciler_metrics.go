package metrics

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/globaledutech/payments/internal/gateway"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	CandidateErrorReasonGatewayHTTP      = "gateway_http"
	CandidateErrorReasonGatewayTransport = "gateway_transport"
	CandidateErrorReasonGatewayDecode    = "gateway_decode"
	CandidateErrorReasonMissingCreds     = "missing_credentials"
	CandidateErrorReasonMalformedRecord  = "malformed_record"
	CandidateErrorReasonDB               = "db"
	CandidateErrorReasonUnknown          = "unknown"
)

// Config carries the constant labels attached to every reconciler metric.
type Config struct {
	ServiceName string
	Environment string
}

// ReconcilerMetrics captures reconciliation loop health signals.
type ReconcilerMetrics struct {
	cycles          prometheus.Counter
	cycleErrors     prometheus.Counter
	cycleDuration   prometheus.Observer
	candidates      prometheus.Counter
	candidateErrors *prometheus.CounterVec
}

var (
	reconcilerMetricsOnce sync.Once
	reconcilerMetrics     *ReconcilerMetrics
)

// Reconciler returns the singleton reconciler metrics registry.
func Reconciler() *ReconcilerMetrics {
	return ReconcilerWithConfig(Config{})
}

// ReconcilerWithConfig returns the singleton using config labels.
func ReconcilerWithConfig(cfg Config) *ReconcilerMetrics {
	reconcilerMetricsOnce.Do(func() {
		reconcilerMetrics = newReconcilerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return reconcilerMetrics
}

// ResetReconcilerMetricsForTest resets the singleton for tests.
func ResetReconcilerMetricsForTest() {
	reconcilerMetricsOnce = sync.Once{}
	reconcilerMetrics = nil
}

func newReconcilerMetrics(registerer prometheus.Registerer, cfg Config) *ReconcilerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "payments"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &ReconcilerMetrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "payments_reconciler_cycles_total",
			Help:        "Reconciliation cycles started.",
			ConstLabels: constLabels,
		}),
		cycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "payments_reconciler_cycle_errors_total",
			Help:        "Cycles that failed before candidate processing (systemic).",
			ConstLabels: constLabels,
		}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "payments_reconciler_candidates_processed_total",
			Help:        "Candidates whose status was reconciled successfully.",
			ConstLabels: constLabels,
		}),
		candidateErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "payments_reconciler_candidate_errors_total",
			Help:        "Per-candidate reconciliation failures by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "payments_reconciler_cycle_duration_seconds",
		Help:        "Wall time of one reconciliation cycle.",
		ConstLabels: constLabels,
		Buckets:     prometheus.DefBuckets,
	})
	m.cycleDuration = duration

	registerer.MustRegister(m.cycles, m.cycleErrors, m.candidates, m.candidateErrors, duration)
	return m
}

func (m *ReconcilerMetrics) IncCycle() {
	m.cycles.Inc()
}

func (m *ReconcilerMetrics) IncCycleError() {
	m.cycleErrors.Inc()
}

func (m *ReconcilerMetrics) ObserveCycleDuration(d time.Duration) {
	m.cycleDuration.Observe(d.Seconds())
}

func (m *ReconcilerMetrics) IncCandidateProcessed() {
	m.candidates.Inc()
}

func (m *ReconcilerMetrics) IncCandidateError(reason string) {
	if reason == "" {
		reason = CandidateErrorReasonUnknown
	}
	m.candidateErrors.WithLabelValues(reason).Inc()
}

// ClassifyCandidateErrorReason maps an error to a metric reason label.
func ClassifyCandidateErrorReason(err error) string {
	if err == nil {
		return CandidateErrorReasonUnknown
	}
	if errors.Is(err, gateway.ErrMissingCredentials) {
		return CandidateErrorReasonMissingCreds
	}
	if gerr, ok := gateway.AsError(err); ok {
		switch gerr.Kind {
		case gateway.ErrorKindHTTP:
			return CandidateErrorReasonGatewayHTTP
		case gateway.ErrorKindTransport:
			return CandidateErrorReasonGatewayTransport
		case gateway.ErrorKindDecode:
			return CandidateErrorReasonGatewayDecode
		}
	}
	return CandidateErrorReasonUnknown
}
