package prometheus

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	surveysSelected  *prometheus.CounterVec
	surveysStarted   *prometheus.CounterVec
	answersRecorded  *prometheus.CounterVec
	surveysCompleted *prometheus.CounterVec
	alreadyDone      *prometheus.CounterVec
	redirects        *prometheus.CounterVec
}

// NewCollector creates a new Prometheus metrics collector registered on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		surveysSelected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_selected_total",
				Help: "Total number of times a survey was picked",
			},
			[]string{"survey"},
		),
		surveysStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_started_total",
				Help: "Total number of surveys begun or restarted",
			},
			[]string{"survey"},
		),
		answersRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_answers_total",
				Help: "Total number of answers recorded",
			},
			[]string{"survey", "question"},
		),
		surveysCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_completed_total",
				Help: "Total number of completion pages served",
			},
			[]string{"survey"},
		),
		alreadyDone: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_already_done_total",
				Help: "Total number of retakes refused by the completion cookie",
			},
			[]string{"survey"},
		),
		redirects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "survey_redirects_total",
				Help: "Total number of wrong-step redirects",
			},
			[]string{"reason"},
		),
	}
}

// RecordSurveySelected records a survey pick
func (c *Collector) RecordSurveySelected(surveyCode string) {
	c.surveysSelected.WithLabelValues(surveyCode).Inc()
}

// RecordSurveyStarted records a survey start
func (c *Collector) RecordSurveyStarted(surveyCode string) {
	c.surveysStarted.WithLabelValues(surveyCode).Inc()
}

// RecordAnswer records an answer to the question at questionIndex
func (c *Collector) RecordAnswer(surveyCode string, questionIndex int) {
	c.answersRecorded.WithLabelValues(surveyCode, strconv.Itoa(questionIndex)).Inc()
}

// RecordSurveyCompleted records a completed survey
func (c *Collector) RecordSurveyCompleted(surveyCode string) {
	c.surveysCompleted.WithLabelValues(surveyCode).Inc()
}

// RecordAlreadyDone records a refused retake
func (c *Collector) RecordAlreadyDone(surveyCode string) {
	c.alreadyDone.WithLabelValues(surveyCode).Inc()
}

// RecordRedirect records a wrong-step redirect
func (c *Collector) RecordRedirect(reason string) {
	c.redirects.WithLabelValues(reason).Inc()
}
