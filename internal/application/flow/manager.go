package flow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aescanero/survey/internal/catalog"
	"github.com/aescanero/survey/pkg/domain"
	"github.com/aescanero/survey/pkg/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mode selects which of the two survey applications is served
type Mode string

const (
	// ModeSingle serves one fixed survey and records raw choices
	ModeSingle Mode = "single"
	// ModeMulti serves a survey picker, records choice and text, and refuses
	// retakes while the completion cookie is alive
	ModeMulti Mode = "multi"
)

// Redirect reasons reported to metrics
const (
	reasonNoSession     = "no_session"
	reasonUnknownSurvey = "unknown_survey"
	reasonOutOfOrder    = "out_of_order"
	reasonInvalidAnswer = "invalid_answer"
	reasonComplete      = "complete"
	reasonIncomplete    = "incomplete"
)

// pingSessionID is never issued to a client
const pingSessionID = "health-check"

// MaxTextLength caps the free text kept with an answer, in characters
const MaxTextLength = 2000

// User-visible notices
const (
	noticePickSurvey    = "Please pick a survey first."
	noticeInvalidAnswer = "Please choose one of the answers."
)

// CompletionCheck reports whether the client holds a live completion cookie
// for the survey code.
type CompletionCheck func(code string) bool

// Config holds flow configuration
type Config struct {
	Mode          Mode
	DefaultSurvey string
}

// Manager drives a user through a survey. Every decision is derived from the
// number of answers stored in the session.
type Manager struct {
	catalog *catalog.Catalog
	store   ports.SessionStore
	events  ports.EventBus
	metrics ports.MetricsCollector
	logger  *zap.Logger

	mode  Mode
	fixed *domain.Survey
}

// NewManager creates a new survey flow manager
func NewManager(
	cat *catalog.Catalog,
	store ports.SessionStore,
	events ports.EventBus,
	metrics ports.MetricsCollector,
	logger *zap.Logger,
	cfg Config,
) (*Manager, error) {
	m := &Manager{
		catalog: cat,
		store:   store,
		events:  events,
		metrics: metrics,
		logger:  logger,
		mode:    cfg.Mode,
	}

	switch cfg.Mode {
	case ModeSingle:
		survey, err := cat.Get(cfg.DefaultSurvey)
		if err != nil {
			return nil, fmt.Errorf("default survey: %w", err)
		}
		m.fixed = survey
	case ModeMulti:
	default:
		return nil, fmt.Errorf("unsupported mode: %s", cfg.Mode)
	}

	if m.metrics == nil {
		m.metrics = ports.NoopMetrics{}
	}

	return m, nil
}

// Mode returns the configured mode
func (m *Manager) Mode() Mode {
	return m.mode
}

// Ping checks that the session store answers
func (m *Manager) Ping(ctx context.Context) error {
	if _, err := m.store.Exists(ctx, pingSessionID); err != nil {
		return fmt.Errorf("session store unavailable: %w", err)
	}
	return nil
}

// Root renders the landing page: the picker in multi mode, the intro of the
// fixed survey in single mode.
func (m *Manager) Root(ctx context.Context) Outcome {
	if m.mode == ModeSingle {
		out := render(PageIntro)
		out.Survey = m.fixed
		return out
	}

	out := render(PagePicker)
	out.Surveys = m.catalog.Surveys()
	return out
}

// Select makes code the current survey of the session and renders its intro,
// or the already-done page when done reports a live completion cookie.
func (m *Manager) Select(ctx context.Context, sessionID, code string, done CompletionCheck) (Outcome, error) {
	if m.mode == ModeSingle {
		return redirect(PathRoot), nil
	}

	code = strings.TrimSpace(code)
	survey, err := m.catalog.Get(code)
	if err != nil {
		m.metrics.RecordRedirect(reasonUnknownSurvey)
		return redirectWithNotice(PathRoot, noticePickSurvey), nil
	}

	session, err := m.loadOrNew(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	session.Select(survey.Code)
	if err := m.store.Save(ctx, session); err != nil {
		return Outcome{}, fmt.Errorf("failed to save session: %w", err)
	}

	m.metrics.RecordSurveySelected(survey.Code)
	m.publish(ctx, ports.EventTypeSurveySelected, survey.Code, nil)

	if done != nil && done(survey.Code) {
		return m.alreadyDone(ctx, survey), nil
	}

	out := render(PageIntro)
	out.Survey = survey
	return out, nil
}

// Begin resets the session's responses and redirects to the first question
func (m *Manager) Begin(ctx context.Context, sessionID string, done CompletionCheck) (Outcome, error) {
	session, err := m.loadOrNew(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	survey := m.surveyOf(session)
	if survey == nil {
		m.metrics.RecordRedirect(reasonUnknownSurvey)
		return redirectWithNotice(PathRoot, noticePickSurvey), nil
	}

	if m.mode == ModeMulti && done != nil && done(survey.Code) {
		return m.alreadyDone(ctx, survey), nil
	}

	session.SurveyCode = survey.Code
	session.Reset()
	if err := m.store.Save(ctx, session); err != nil {
		return Outcome{}, fmt.Errorf("failed to save session: %w", err)
	}

	m.metrics.RecordSurveyStarted(survey.Code)
	m.publish(ctx, ports.EventTypeSurveyStarted, survey.Code, nil)

	m.logger.Debug("survey started", zap.String("survey", survey.Code))

	return redirect(QuestionPath(0)), nil
}

// Question renders the question at raw only when exactly raw answers exist;
// any other request is redirected to where the session actually is.
func (m *Manager) Question(ctx context.Context, sessionID, raw string) (Outcome, error) {
	session, survey, out, err := m.started(ctx, sessionID)
	if err != nil || out != nil {
		return deref(out), err
	}

	answered := session.Answered()
	if answered >= survey.Len() {
		m.metrics.RecordRedirect(reasonComplete)
		return redirect(PathComplete), nil
	}

	index, convErr := strconv.Atoi(raw)
	if convErr != nil || index != answered {
		m.metrics.RecordRedirect(reasonOutOfOrder)
		return redirectWithNotice(QuestionPath(answered), fmt.Sprintf("Invalid question id: %s.", raw)), nil
	}

	result := render(PageQuestion)
	result.Survey = survey
	result.Index = index
	result.Question = survey.Question(index)
	return result, nil
}

// Answer records an answer to the current question and redirects to the next
// unanswered question, or to the completion page after the last one.
func (m *Manager) Answer(ctx context.Context, sessionID, choice, text string) (Outcome, error) {
	session, survey, out, err := m.started(ctx, sessionID)
	if err != nil || out != nil {
		return deref(out), err
	}

	answered := session.Answered()
	if answered >= survey.Len() {
		m.metrics.RecordRedirect(reasonComplete)
		return redirect(PathComplete), nil
	}

	question := survey.Question(answered)
	if !question.HasChoice(choice) {
		m.metrics.RecordRedirect(reasonInvalidAnswer)
		return redirectWithNotice(QuestionPath(answered), noticeInvalidAnswer), nil
	}

	answer := domain.Answer{Choice: choice}
	if m.mode == ModeMulti && question.AllowText {
		answer.Text = truncate(strings.TrimSpace(text), MaxTextLength)
	}
	session.Record(answer)

	if err := m.store.Save(ctx, session); err != nil {
		return Outcome{}, fmt.Errorf("failed to save session: %w", err)
	}

	m.metrics.RecordAnswer(survey.Code, answered)
	m.publish(ctx, ports.EventTypeSurveyAnswered, survey.Code, map[string]interface{}{
		"question": answered,
		"choice":   choice,
	})

	if session.Answered() == survey.Len() {
		m.metrics.RecordSurveyCompleted(survey.Code)
		m.publish(ctx, ports.EventTypeSurveyCompleted, survey.Code, nil)
		return redirect(PathComplete), nil
	}
	return redirect(QuestionPath(session.Answered())), nil
}

// Complete renders the summary once every question is answered
func (m *Manager) Complete(ctx context.Context, sessionID string) (Outcome, error) {
	session, survey, out, err := m.started(ctx, sessionID)
	if err != nil || out != nil {
		return deref(out), err
	}

	if session.Answered() < survey.Len() {
		m.metrics.RecordRedirect(reasonIncomplete)
		return redirect(QuestionPath(session.Answered())), nil
	}

	result := render(PageComplete)
	result.Survey = survey
	result.Results = make([]Result, 0, len(session.Responses))
	for i, a := range session.Responses {
		q := survey.Question(i)
		result.Results = append(result.Results, Result{
			Prompt: q.Prompt,
			Answer: q.LabelFor(a.Choice),
			Text:   a.Text,
		})
	}
	result.SetCompletionCookie = m.mode == ModeMulti

	return result, nil
}

// started loads a session that has begun its survey. When the request must be
// redirected instead, the redirect outcome is returned.
func (m *Manager) started(ctx context.Context, sessionID string) (*domain.Session, *domain.Survey, *Outcome, error) {
	session, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, nil, nil, err
	}

	var survey *domain.Survey
	if session != nil && session.Started {
		survey = m.surveyOf(session)
	}
	if survey == nil {
		m.metrics.RecordRedirect(reasonNoSession)
		out := redirect(PathRoot)
		return nil, nil, &out, nil
	}

	return session, survey, nil, nil
}

func (m *Manager) alreadyDone(ctx context.Context, survey *domain.Survey) Outcome {
	m.metrics.RecordAlreadyDone(survey.Code)
	m.publish(ctx, ports.EventTypeSurveyAlreadyDone, survey.Code, nil)

	out := render(PageAlreadyDone)
	out.Survey = survey
	return out
}

// surveyOf returns the survey a session is taking, nil when none is picked
func (m *Manager) surveyOf(session *domain.Session) *domain.Survey {
	if m.fixed != nil {
		return m.fixed
	}
	if session == nil || session.SurveyCode == "" {
		return nil
	}
	survey, err := m.catalog.Get(session.SurveyCode)
	if err != nil {
		return nil
	}
	return survey
}

// load returns the session, or nil when none is stored
func (m *Manager) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := m.store.Load(ctx, sessionID)
	switch {
	case err == nil:
		return session, nil
	case errors.Is(err, ports.ErrSessionNotFound):
		return nil, nil
	case errors.Is(err, ports.ErrSessionCorrupt):
		// Undecodable sessions are dropped and the user starts over
		m.logger.Warn("discarding corrupt session", zap.Error(err))
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("failed to delete corrupt session: %w", err)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
}

func (m *Manager) loadOrNew(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session = domain.NewSession(sessionID)
	}
	return session, nil
}

// publish sends a survey event; failures are logged and otherwise ignored
func (m *Manager) publish(ctx context.Context, eventType ports.EventType, surveyCode string, data map[string]interface{}) {
	if m.events == nil {
		return
	}

	event := ports.Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		SurveyCode: surveyCode,
		Timestamp:  time.Now(),
		Data:       data,
	}

	if err := m.events.Publish(ctx, ports.TopicSurveyEvents, event); err != nil {
		m.logger.Warn("failed to publish survey event",
			zap.String("type", string(eventType)),
			zap.String("survey", surveyCode),
			zap.Error(err))
	}
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func deref(out *Outcome) Outcome {
	if out == nil {
		return Outcome{}
	}
	return *out
}
