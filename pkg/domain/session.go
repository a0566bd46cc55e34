package domain

import "time"

// Answer is a single recorded response
type Answer struct {
	Choice string `json:"choice"`
	Text   string `json:"text,omitempty"`
}

// Session is the per-user survey state
type Session struct {
	ID         string    `json:"id"`
	SurveyCode string    `json:"survey_code,omitempty"`
	Started    bool      `json:"started"`
	Responses  []Answer  `json:"responses"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSession creates an empty session
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		UpdatedAt: time.Now(),
	}
}

// Answered returns the number of recorded responses
func (s *Session) Answered() int {
	return len(s.Responses)
}

// Reset clears responses and marks the session as started
func (s *Session) Reset() {
	s.Started = true
	s.Responses = []Answer{}
	s.UpdatedAt = time.Now()
}

// Record appends an answer
func (s *Session) Record(answer Answer) {
	s.Responses = append(s.Responses, answer)
	s.UpdatedAt = time.Now()
}

// Select switches the session to another survey, discarding progress
func (s *Session) Select(code string) {
	if s.SurveyCode != code {
		s.Started = false
		s.Responses = nil
	}
	s.SurveyCode = code
	s.UpdatedAt = time.Now()
}
