package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aescanero/survey/internal/catalog"
	"github.com/aescanero/survey/pkg/adapters/events/memory"
	"github.com/aescanero/survey/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.EventBus) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	bus := memory.NewEventBus(zap.NewNop())

	router := gin.New()
	router.GET("/surveys/:code/ws", NewHandler(bus, cat, zap.NewNop()).HandleSurveyStream)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, bus
}

func wsURL(ts *httptest.Server, code string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/surveys/" + code + "/ws"
}

func waitForSubscribers(t *testing.T, bus *memory.EventBus, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for bus.Subscribers(ports.TopicSurveyEvents) != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers = %d, want %d", bus.Subscribers(ports.TopicSurveyEvents), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandleSurveyStreamDeliversSurveyEvents(t *testing.T) {
	ts, bus := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "personality"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	waitForSubscribers(t, bus, 1)

	ctx := context.Background()
	other := ports.Event{ID: "1", Type: ports.EventTypeSurveyStarted, SurveyCode: "satisfaction", Timestamp: time.Now()}
	mine := ports.Event{ID: "2", Type: ports.EventTypeSurveyCompleted, SurveyCode: "personality", Timestamp: time.Now()}
	if err := bus.Publish(ctx, ports.TopicSurveyEvents, other); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := bus.Publish(ctx, ports.TopicSurveyEvents, mine); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got ports.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.ID != "2" || got.Type != ports.EventTypeSurveyCompleted || got.SurveyCode != "personality" {
		t.Fatalf("event = %+v, want completed event of personality", got)
	}
}

func TestHandleSurveyStreamUnsubscribesOnClose(t *testing.T) {
	ts, bus := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "satisfaction"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	waitForSubscribers(t, bus, 1)

	_ = conn.Close()
	waitForSubscribers(t, bus, 0)
}

func TestHandleSurveyStreamUnknownSurvey(t *testing.T) {
	ts, _ := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "nope"), nil)
	if err == nil {
		t.Fatalf("Dial() succeeded for unknown survey")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %v, want 404", resp)
	}
}
