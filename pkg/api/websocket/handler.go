package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/aescanero/survey/internal/catalog"
	"github.com/aescanero/survey/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler streams survey events over WebSocket
type Handler struct {
	eventBus ports.EventBus
	catalog  *catalog.Catalog
	logger   *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(eventBus ports.EventBus, cat *catalog.Catalog, logger *zap.Logger) *Handler {
	return &Handler{
		eventBus: eventBus,
		catalog:  cat,
		logger:   logger,
	}
}

// HandleSurveyStream streams the events of one survey to the client
func (h *Handler) HandleSurveyStream(c *gin.Context) {
	code := c.Param("code")
	if !h.catalog.Has(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "survey not found"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before upgrading so no event published after the handshake
	// is missed.
	eventChan := make(chan ports.Event, 16)
	if err := h.subscribe(ctx, code, eventChan); err != nil {
		h.logger.Error("failed to subscribe to events", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream unavailable"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	h.logger.Info("WebSocket connection established",
		zap.String("survey", code),
		zap.String("client", c.ClientIP()))

	// The client never sends data; reading detects when it goes away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-eventChan:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("failed to write message", zap.Error(err))
				return
			}
		}
	}
}

// subscribe forwards events of survey code into ch without blocking the bus
func (h *Handler) subscribe(ctx context.Context, code string, ch chan<- ports.Event) error {
	return h.eventBus.Subscribe(ctx, ports.TopicSurveyEvents, func(ctx context.Context, event ports.Event) error {
		if event.SurveyCode != code {
			return nil
		}

		select {
		case ch <- event:
		default:
			h.logger.Warn("event channel full, dropping event",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)))
		}
		return nil
	})
}
