package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/aescanero/survey/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed surveys.yaml
var embedded []byte

// ErrUnknownSurvey is returned when a survey code is not in the catalog
var ErrUnknownSurvey = errors.New("unknown survey")

// defaultChoices are used by questions that declare none
var defaultChoices = []domain.Choice{
	{Label: "Yes", Value: "Yes"},
	{Label: "No", Value: "No"},
}

// Catalog is the static, read-only set of surveys
type Catalog struct {
	surveys []*domain.Survey
	byCode  map[string]*domain.Survey
}

type document struct {
	Surveys []domain.Survey `yaml:"surveys"`
}

// Default returns the catalog built into the binary
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Load reads a catalog from path, or the built-in catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return New(doc.Surveys...)
}

// New builds a catalog from survey definitions
func New(surveys ...domain.Survey) (*Catalog, error) {
	c := &Catalog{
		surveys: make([]*domain.Survey, 0, len(surveys)),
		byCode:  make(map[string]*domain.Survey, len(surveys)),
	}

	v := NewValidator()
	for i := range surveys {
		s := surveys[i]
		applyDefaults(&s)

		if err := v.Validate(&s); err != nil {
			return nil, fmt.Errorf("invalid survey %q: %w", s.Code, err)
		}
		if _, exists := c.byCode[s.Code]; exists {
			return nil, fmt.Errorf("duplicate survey code: %s", s.Code)
		}

		c.surveys = append(c.surveys, &s)
		c.byCode[s.Code] = &s
	}

	if len(c.surveys) == 0 {
		return nil, fmt.Errorf("catalog must have at least one survey")
	}

	return c, nil
}

// Get returns the survey with the given code
func (c *Catalog) Get(code string) (*domain.Survey, error) {
	s, ok := c.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSurvey, code)
	}
	return s, nil
}

// Has reports whether code is in the catalog
func (c *Catalog) Has(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

// Surveys returns surveys in catalog order
func (c *Catalog) Surveys() []*domain.Survey {
	out := make([]*domain.Survey, len(c.surveys))
	copy(out, c.surveys)
	return out
}

func applyDefaults(s *domain.Survey) {
	questions := make([]domain.Question, len(s.Questions))
	for i, q := range s.Questions {
		if len(q.Choices) == 0 {
			q.Choices = append([]domain.Choice(nil), defaultChoices...)
		}
		questions[i] = q
	}
	s.Questions = questions
}
