// Package metrics provides Prometheus metrics for the medication
// safety engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	MedicationsCreated      prometheus.Counter
	MedicationsDiscontinued prometheus.Counter
	InteractionsDetected    *prometheus.CounterVec
	AlertsRaised            *prometheus.CounterVec
	AlertsAcknowledged      prometheus.Counter
	DosesRecorded           *prometheus.CounterVec
	SymptomReports          prometheus.Counter
	ComplianceQueries       prometheus.Counter
	RequestDuration         prometheus.Histogram
	OutboxPending           prometheus.Gauge
	AlertsPublished         prometheus.Counter
	CircuitBreakerState     *prometheus.GaugeVec
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		MedicationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medications_created_total",
			Help: "Total medications prescribed",
		}),
		MedicationsDiscontinued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medications_discontinued_total",
			Help: "Total medications discontinued",
		}),
		InteractionsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drug_interactions_detected_total",
			Help: "Drug interactions detected at prescribe time",
		}, []string{"severity"}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_raised_total",
			Help: "Clinical alerts raised",
		}, []string{"type"}),
		AlertsAcknowledged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alerts_acknowledged_total",
			Help: "Clinical alerts acknowledged by caregivers",
		}),
		DosesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doses_recorded_total",
			Help: "Administration events recorded",
		}, []string{"status"}),
		SymptomReports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "symptom_reports_total",
			Help: "Symptom reports filed",
		}),
		ComplianceQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compliance_queries_total",
			Help: "Compliance report computations",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "API request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alert_outbox_pending_entries",
			Help: "Alerts queued and not yet published",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alerts_published_total",
			Help: "Alerts published to the notification bus",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	prometheus.MustRegister(
		m.MedicationsCreated,
		m.MedicationsDiscontinued,
		m.InteractionsDetected,
		m.AlertsRaised,
		m.AlertsAcknowledged,
		m.DosesRecorded,
		m.SymptomReports,
		m.ComplianceQueries,
		m.RequestDuration,
		m.OutboxPending,
		m.AlertsPublished,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
