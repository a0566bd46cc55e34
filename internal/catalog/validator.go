package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aescanero/survey/pkg/domain"
)

// surveyCodePattern keeps codes valid as cookie names and URL path segments
var surveyCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validator validates survey definitions
type Validator struct{}

// NewValidator creates a new survey validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates a survey structure
func (v *Validator) Validate(s *domain.Survey) error {
	if s == nil {
		return fmt.Errorf("survey is nil")
	}

	if strings.TrimSpace(s.Code) == "" {
		return fmt.Errorf("survey code is required")
	}
	if !surveyCodePattern.MatchString(s.Code) {
		return fmt.Errorf("survey code %q must only use letters, digits, '-' and '_' (it names the completion cookie)", s.Code)
	}

	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("survey title is required")
	}

	if len(s.Questions) == 0 {
		return fmt.Errorf("survey must have at least one question")
	}

	for i := range s.Questions {
		if err := v.validateQuestion(&s.Questions[i]); err != nil {
			return fmt.Errorf("invalid question %d: %w", i, err)
		}
	}

	return nil
}

// validateQuestion validates a single question
func (v *Validator) validateQuestion(q *domain.Question) error {
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}

	if len(q.Choices) == 0 {
		return fmt.Errorf("question must have at least one choice")
	}

	values := make(map[string]bool, len(q.Choices))
	for _, c := range q.Choices {
		if c.Value == "" {
			return fmt.Errorf("choice value is required")
		}
		if values[c.Value] {
			return fmt.Errorf("duplicate choice value: %s", c.Value)
		}
		values[c.Value] = true
	}

	return nil
}
