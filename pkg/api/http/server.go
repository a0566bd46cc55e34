package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aescanero/survey/internal/application/flow"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server of the survey application
type Server struct {
	router  *gin.Engine
	server  *http.Server
	manager *flow.Manager
	logger  *zap.Logger
	cookies cookiePolicy
	health  func(ctx context.Context) error
}

// Config holds HTTP server configuration
type Config struct {
	Port    int
	Manager *flow.Manager
	Logger  *zap.Logger

	// CookieSecure marks every cookie Secure
	CookieSecure bool

	// CompletionCookieTTL is the lifetime of the completed_<code> cookie
	CompletionCookieTTL time.Duration

	ReadHeaderTimeout time.Duration

	// HealthCheck reports backend health; nil means always healthy
	HealthCheck func(ctx context.Context) error
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		router:  router,
		manager: cfg.Manager,
		logger:  cfg.Logger,
		cookies: cookiePolicy{
			secure:        cfg.CookieSecure,
			completionTTL: cfg.CompletionCookieTTL,
		},
		health: cfg.HealthCheck,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	return s, nil
}

// setupRoutes configures routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Survey pages
	pages := s.router.Group("/")
	pages.Use(noStore(), s.sessionMiddleware())
	{
		pages.GET(flow.PathRoot, s.handleRoot)
		if s.manager.Mode() == flow.ModeMulti {
			pages.POST(flow.PathRoot, s.handleSelect)
		}
		pages.POST(flow.PathBegin, s.handleBegin)
		pages.GET("/questions/:id", s.handleQuestion)
		pages.POST(flow.PathAnswer, s.handleAnswer)
		pages.GET(flow.PathComplete, s.handleComplete)
	}
}

// SetupWebSocket adds the live event feed to the server
func (s *Server) SetupWebSocket(handler interface{}) {
	if wsHandler, ok := handler.(interface {
		HandleSurveyStream(*gin.Context)
	}); ok {
		s.router.GET("/surveys/:code/ws", wsHandler.HandleSurveyStream)
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
