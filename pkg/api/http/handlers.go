package http

import (
	"net/http"

	"github.com/aescanero/survey/internal/application/flow"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// pickForm is the survey picker submission
type pickForm struct {
	SurveyCode string `form:"survey_code" binding:"required"`
}

// answerForm is a question page submission
type answerForm struct {
	Answer string `form:"answer" binding:"required"`
	Text   string `form:"text"`
}

// pageData is handed to every page template
type pageData struct {
	Notice string
	Single bool
	flow.Outcome
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"sessions": "ok"}

	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			checks["sessions"] = err.Error()
		}
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status": state,
		"mode":   s.manager.Mode(),
		"checks": checks,
	})
}

// handleRoot shows the picker or the intro of the fixed survey
func (s *Server) handleRoot(c *gin.Context) {
	s.respond(c, s.manager.Root(c.Request.Context()), nil)
}

// handleSelect handles the survey picker submission
func (s *Server) handleSelect(c *gin.Context) {
	var form pickForm
	if err := c.ShouldBind(&form); err != nil {
		s.logger.Debug("invalid survey selection", zap.Error(err))
	}

	out, err := s.manager.Select(c.Request.Context(), sessionID(c), form.SurveyCode, completionCheck(c.Request))
	s.respond(c, out, err)
}

// handleBegin starts or restarts the current survey
func (s *Server) handleBegin(c *gin.Context) {
	out, err := s.manager.Begin(c.Request.Context(), sessionID(c), completionCheck(c.Request))
	s.respond(c, out, err)
}

// handleQuestion shows a question page
func (s *Server) handleQuestion(c *gin.Context) {
	out, err := s.manager.Question(c.Request.Context(), sessionID(c), c.Param("id"))
	s.respond(c, out, err)
}

// handleAnswer records an answer
func (s *Server) handleAnswer(c *gin.Context) {
	var form answerForm
	if err := c.ShouldBind(&form); err != nil {
		// Missing answer is a wrong step; the manager redirects back.
		s.logger.Debug("invalid answer submission", zap.Error(err))
	}

	out, err := s.manager.Answer(c.Request.Context(), sessionID(c), form.Answer, form.Text)
	s.respond(c, out, err)
}

// handleComplete shows the summary and marks the survey completed
func (s *Server) handleComplete(c *gin.Context) {
	out, err := s.manager.Complete(c.Request.Context(), sessionID(c))
	if err == nil && out.SetCompletionCookie && out.Survey != nil {
		s.cookies.writeCompleted(c.Writer, out.Survey)
	}
	s.respond(c, out, err)
}

// respond turns a flow outcome into a redirect or a rendered page
func (s *Server) respond(c *gin.Context, out flow.Outcome, err error) {
	if err != nil {
		s.logger.Error("survey request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.HTML(http.StatusInternalServerError, "error.html", pageData{
			Single: s.manager.Mode() == flow.ModeSingle,
		})
		return
	}

	if out.IsRedirect() {
		s.cookies.writeFlash(c.Writer, out.Notice)
		c.Redirect(redirectStatus(c.Request.Method), out.Location)
		return
	}

	notice := s.cookies.readAndClearFlash(c.Writer, c.Request)
	if out.Notice != "" {
		notice = out.Notice
	}

	c.HTML(http.StatusOK, string(out.Page)+".html", pageData{
		Notice:  notice,
		Single:  s.manager.Mode() == flow.ModeSingle,
		Outcome: out,
	})
}

// redirectStatus picks 303 after a form post so the browser follows with GET
func redirectStatus(method string) int {
	if method == http.MethodPost {
		return http.StatusSeeOther
	}
	return http.StatusFound
}
