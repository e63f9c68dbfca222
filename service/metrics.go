package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	QuestionsTotal   prometheus.Counter
	AnswersTotal     *prometheus.CounterVec
	ValidationIssues *prometheus.CounterVec
	AskDuration      prometheus.Histogram
	ModelAttempts    prometheus.Histogram
}

// NewMetrics creates and registers the collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QuestionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sparqlassist",
			Name:      "questions_total",
			Help:      "Questions received on the ask subject.",
		}),
		AnswersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparqlassist",
			Name:      "answers_total",
			Help:      "Answers produced, partitioned by validation outcome.",
		}, []string{"valid"}),
		ValidationIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sparqlassist",
			Name:      "validation_issues_total",
			Help:      "Schema validation issues emitted, per endpoint.",
		}, []string{"endpoint"}),
		AskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sparqlassist",
			Name:      "ask_duration_seconds",
			Help:      "End-to-end latency of one question.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		ModelAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sparqlassist",
			Name:      "model_attempts",
			Help:      "Model calls needed per question.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
	}

	reg.MustRegister(
		m.QuestionsTotal,
		m.AnswersTotal,
		m.ValidationIssues,
		m.AskDuration,
		m.ModelAttempts,
	)
	return m
}
