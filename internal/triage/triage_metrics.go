package triage

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec
	PredictionDuration prometheus.Histogram
	ClassifierDuration *prometheus.HistogramVec
	ESILevelTotal      *prometheus.CounterVec
	ReliabilityTotal   *prometheus.CounterVec
	SpecialtyTotal     *prometheus.CounterVec
	TopConfidence      prometheus.Histogram
	EscalationsTotal   *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_predictions_total",
			Help: "Total prediction requests by outcome.",
		}, []string{"outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "carepath_prediction_duration_seconds",
			Help:    "End-to-end duration of successful predictions in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
		}),
		ClassifierDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carepath_classifier_duration_seconds",
			Help:    "Duration of classifier calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
		}, []string{"status"}),
		ESILevelTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_esi_level_total",
			Help: "Assessments by emergency severity index level.",
		}, []string{"level"}),
		ReliabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_candidate_reliability_total",
			Help: "Returned candidates by reliability tier.",
		}, []string{"reliability"}),
		SpecialtyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_top_specialty_total",
			Help: "Top-ranked candidates by routed specialty.",
		}, []string{"specialty"}),
		TopConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "carepath_top_confidence",
			Help:    "Probability of the top-ranked candidate.",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10), // 0.1 .. 1.0
		}),
		EscalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carepath_escalations_total",
			Help: "Escalation notices by status.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		m.PredictionsTotal,
		m.PredictionDuration,
		m.ClassifierDuration,
		m.ESILevelTotal,
		m.ReliabilityTotal,
		m.SpecialtyTotal,
		m.TopConfidence,
		m.EscalationsTotal,
	)

	return m
}

// Hooks returns service Hooks that update the corresponding metrics.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnRejected: func(reason string) {
			m.PredictionsTotal.WithLabelValues(reason).Inc()
		},
		OnClassify: func(duration float64, err error) {
			m.ClassifierDuration.WithLabelValues(status(err)).Observe(duration)
		},
		OnComplete: func(e *CompleteEvent) {
			m.PredictionsTotal.WithLabelValues("success").Inc()
			m.PredictionDuration.Observe(e.Duration)
			m.ESILevelTotal.WithLabelValues(strconv.Itoa(e.ESILevel)).Inc()
			m.TopConfidence.Observe(e.TopConfidence)
			for _, c := range e.Candidates {
				m.ReliabilityTotal.WithLabelValues(string(c.Reliability)).Inc()
			}
			if len(e.Candidates) > 0 {
				m.SpecialtyTotal.WithLabelValues(e.Candidates[0].Specialty).Inc()
			}
		},
		OnEscalation: func(err error) {
			m.EscalationsTotal.WithLabelValues(status(err)).Inc()
		},
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
