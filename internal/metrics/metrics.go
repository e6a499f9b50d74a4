// Package metrics provides Prometheus counters for interview pipeline
// operability: session lifecycle events and generator call outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the session and generator recorder interfaces
// with Prometheus counters.
type Recorder struct {
	interviewsStarted   prometheus.Counter
	interviewsCompleted prometheus.Counter
	answersScored       prometheus.Counter
	generatorRequests   *prometheus.CounterVec
	generatorFallbacks  *prometheus.CounterVec
}

// NewRecorder creates a Recorder registered on reg. Passing nil
// registers on the default registry.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		interviewsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "intervu_interviews_started_total",
			Help: "Total number of interview sessions created",
		}),
		interviewsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "intervu_interviews_completed_total",
			Help: "Total number of interview sessions completed",
		}),
		answersScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "intervu_answers_scored_total",
			Help: "Total number of answers accepted and scored",
		}),
		generatorRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "intervu_generator_requests_total",
			Help: "External generator calls by operation and outcome",
		}, []string{"operation", "status"}),
		generatorFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "intervu_generator_fallbacks_total",
			Help: "Fallback provider invocations by operation",
		}, []string{"operation"}),
	}
}

func (r *Recorder) InterviewStarted()   { r.interviewsStarted.Inc() }
func (r *Recorder) InterviewCompleted() { r.interviewsCompleted.Inc() }
func (r *Recorder) AnswerScored()       { r.answersScored.Inc() }

// ObserveGeneratorRequest records one external generator call outcome.
func (r *Recorder) ObserveGeneratorRequest(op string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	r.generatorRequests.WithLabelValues(op, status).Inc()
}

// ObserveFallback records one fallback provider invocation.
func (r *Recorder) ObserveFallback(op string) {
	r.generatorFallbacks.WithLabelValues(op).Inc()
}
