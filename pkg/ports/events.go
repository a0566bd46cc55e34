package ports

import (
	"context"
	"time"
)

// EventType identifies a survey event
type EventType string

const (
	EventTypeSurveySelected    EventType = "survey.selected"
	EventTypeSurveyStarted     EventType = "survey.started"
	EventTypeSurveyAnswered    EventType = "survey.answered"
	EventTypeSurveyCompleted   EventType = "survey.completed"
	EventTypeSurveyAlreadyDone EventType = "survey.already_done"
)

// TopicSurveyEvents is the topic all survey events are published on
const TopicSurveyEvents = "survey.events"

// Event is a survey progress notification. Events never carry the session id.
type Event struct {
	ID         string                 `json:"id"`
	Type       EventType              `json:"type"`
	SurveyCode string                 `json:"survey_code"`
	Timestamp  time.Time              `json:"timestamp"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// EventHandler handles a received event
type EventHandler func(ctx context.Context, event Event) error

// EventBus publishes and delivers survey events
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe registers handler until ctx is cancelled
	Subscribe(ctx context.Context, topic string, handler EventHandler) error

	Close() error
}
