package ports

// MetricsCollector records survey flow metrics
type MetricsCollector interface {
	RecordSurveySelected(surveyCode string)
	RecordSurveyStarted(surveyCode string)
	RecordAnswer(surveyCode string, questionIndex int)
	RecordSurveyCompleted(surveyCode string)
	RecordAlreadyDone(surveyCode string)
	RecordRedirect(reason string)
}

// NoopMetrics discards all metrics
type NoopMetrics struct{}

func (NoopMetrics) RecordSurveySelected(string)  {}
func (NoopMetrics) RecordSurveyStarted(string)   {}
func (NoopMetrics) RecordAnswer(string, int)     {}
func (NoopMetrics) RecordSurveyCompleted(string) {}
func (NoopMetrics) RecordAlreadyDone(string)     {}
func (NoopMetrics) RecordRedirect(string)        {}
