package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Choice is a selectable option of a question
type Choice struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// UnmarshalYAML accepts either a mapping or a bare string, where the string
// is used as both label and value.
func (c *Choice) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Label = node.Value
		c.Value = node.Value
		return nil
	}

	type plain Choice
	var p plain
	if err := node.Decode(&p); err != nil {
		return fmt.Errorf("failed to decode choice: %w", err)
	}
	*c = Choice(p)
	if c.Value == "" {
		c.Value = c.Label
	}
	if c.Label == "" {
		c.Label = c.Value
	}
	return nil
}

// Question is a single survey page
type Question struct {
	Prompt    string   `json:"prompt" yaml:"prompt"`
	Choices   []Choice `json:"choices" yaml:"choices"`
	AllowText bool     `json:"allow_text" yaml:"allow_text"`
}

// HasChoice reports whether value is one of the question's choice values
func (q *Question) HasChoice(value string) bool {
	for _, c := range q.Choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

// LabelFor returns the label of the choice recorded as value, or value itself
// when no choice matches.
func (q *Question) LabelFor(value string) string {
	for _, c := range q.Choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// Survey is a named ordered sequence of questions
type Survey struct {
	Code         string     `json:"code" yaml:"code"`
	Title        string     `json:"title" yaml:"title"`
	Instructions string     `json:"instructions,omitempty" yaml:"instructions"`
	Questions    []Question `json:"questions" yaml:"questions"`
}

// Len returns the number of questions
func (s *Survey) Len() int {
	return len(s.Questions)
}

// Question returns the question at index, or nil when out of range
func (s *Survey) Question(index int) *Question {
	if index < 0 || index >= len(s.Questions) {
		return nil
	}
	return &s.Questions[index]
}

// CompletionCookieName returns the name of the cookie marking this survey done
func (s *Survey) CompletionCookieName() string {
	return CompletionCookieName(s.Code)
}

// CompletionCookieName returns the completion cookie name for a survey code
func CompletionCookieName(code string) string {
	return "completed_" + strings.TrimSpace(code)
}
