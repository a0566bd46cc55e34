package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aescanero/survey/internal/application/flow"
	"github.com/aescanero/survey/internal/catalog"
	eventsmemory "github.com/aescanero/survey/pkg/adapters/events/memory"
	storagememory "github.com/aescanero/survey/pkg/adapters/storage/memory"
	"go.uber.org/zap"
)

type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestServer(t *testing.T, mode flow.Mode) *testClient {
	t.Helper()

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error = %v", err)
	}
	store := storagememory.NewSessionStore(time.Hour, zap.NewNop())
	bus := eventsmemory.NewEventBus(zap.NewNop())

	manager, err := flow.NewManager(cat, store, bus, nil, zap.NewNop(), flow.Config{
		Mode:          mode,
		DefaultSurvey: "satisfaction",
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	s, err := NewServer(&Config{
		Manager:             manager,
		Logger:              zap.NewNop(),
		CompletionCookieTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}

	return &testClient{
		t:    t,
		base: ts.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	status   int
	location string
	body     string
	header   http.Header
}

func (c *testClient) do(req *http.Request) response {
	c.t.Helper()

	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}

	return response{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
		header:   resp.Header,
	}
}

func (c *testClient) get(path string) response {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		c.t.Fatalf("NewRequest: %v", err)
	}
	return c.do(req)
}

func (c *testClient) post(path string, form url.Values) response {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		c.t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) cookie(name string) *http.Cookie {
	u, _ := url.Parse(c.base)
	for _, ck := range c.client.Jar.Cookies(u) {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func expectRedirect(t *testing.T, r response, status int, location string) {
	t.Helper()
	if r.status != status || r.location != location {
		t.Fatalf("got %d -> %q, want %d -> %q", r.status, r.location, status, location)
	}
}

func expectPage(t *testing.T, r response, contains ...string) {
	t.Helper()
	if r.status != http.StatusOK {
		t.Fatalf("status = %d, want 200 (location %q)", r.status, r.location)
	}
	for _, s := range contains {
		if !strings.Contains(r.body, s) {
			t.Fatalf("body does not contain %q:\n%s", s, r.body)
		}
	}
}

func answer(choice string) url.Values {
	return url.Values{"answer": {choice}}
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, flow.ModeMulti)

	r := c.get("/health")
	if r.status != http.StatusOK || !strings.Contains(r.body, `"healthy"`) {
		t.Fatalf("health = %d %s", r.status, r.body)
	}
}

func TestSessionCookieIssuedOnFirstVisit(t *testing.T) {
	c := newTestServer(t, flow.ModeMulti)

	r := c.get("/")
	expectPage(t, r, "Pick a survey", "Customer Satisfaction Survey", "Rithm Personality Test")

	ck := c.cookie(sessionCookieName)
	if ck == nil || ck.Value == "" {
		t.Fatalf("session cookie not set")
	}
	if r.header.Get("Cache-Control") != "no-store" {
		t.Fatalf("Cache-Control = %q", r.header.Get("Cache-Control"))
	}

	first := ck.Value
	c.get("/")
	if got := c.cookie(sessionCookieName).Value; got != first {
		t.Fatalf("session id changed between requests: %q -> %q", first, got)
	}
}

func TestQuestionBeforeBeginRedirectsToRoot(t *testing.T) {
	c := newTestServer(t, flow.ModeSingle)

	expectRedirect(t, c.get("/questions/0"), http.StatusFound, "/")
	expectRedirect(t, c.get("/complete"), http.StatusFound, "/")
	expectRedirect(t, c.post("/answer", answer("Yes")), http.StatusSeeOther, "/")
}

func TestSingleModeFlow(t *testing.T) {
	c := newTestServer(t, flow.ModeSingle)

	expectPage(t, c.get("/"), "Customer Satisfaction Survey", "Please fill out a survey about your experience with us.")

	// The picker route only exists in multi mode.
	if r := c.post("/", url.Values{"survey_code": {"personality"}}); r.status != http.StatusNotFound && r.status != http.StatusMethodNotAllowed {
		t.Fatalf("POST / status = %d, want 404 or 405", r.status)
	}

	expectRedirect(t, c.post("/begin", nil), http.StatusSeeOther, "/questions/0")
	expectPage(t, c.get("/questions/0"), "Have you shopped here before?", "Question 1 of 4")

	expectRedirect(t, c.post("/answer", answer("Yes")), http.StatusSeeOther, "/questions/1")
	expectRedirect(t, c.post("/answer", answer("No")), http.StatusSeeOther, "/questions/2")
	expectPage(t, c.get("/questions/2"), "Less than $10,000", "$10,000 or more")
	expectRedirect(t, c.post("/answer", answer("Less than $10,000")), http.StatusSeeOther, "/questions/3")
	expectRedirect(t, c.post("/answer", answer("Yes")), http.StatusSeeOther, "/complete")

	r := c.get("/complete")
	expectPage(t, r, "Thank you!", "Are you likely to shop here again?")
	if ck := c.cookie("completed_satisfaction"); ck != nil {
		t.Fatalf("completion cookie set in single mode")
	}
}

func TestOutOfOrderQuestionShowsNotice(t *testing.T) {
	c := newTestServer(t, flow.ModeSingle)

	c.post("/begin", nil)
	c.post("/answer", answer("Yes"))

	expectRedirect(t, c.get("/questions/3"), http.StatusFound, "/questions/1")
	expectPage(t, c.get("/questions/1"), "Invalid question id: 3.", "Did someone else shop with you today?")

	// The notice is shown once.
	r := c.get("/questions/1")
	expectPage(t, r, "Did someone else shop with you today?")
	if strings.Contains(r.body, "Invalid question id") {
		t.Fatalf("notice shown twice")
	}

	expectRedirect(t, c.get("/questions/abc"), http.StatusFound, "/questions/1")
}

func TestMissingAnswerRedirectsBack(t *testing.T) {
	c := newTestServer(t, flow.ModeSingle)

	c.post("/begin", nil)
	expectRedirect(t, c.post("/answer", url.Values{}), http.StatusSeeOther, "/questions/0")
	expectPage(t, c.get("/questions/0"), "Please choose one of the answers.")
}

func TestMultiModeFlowAndRetake(t *testing.T) {
	c := newTestServer(t, flow.ModeMulti)

	expectPage(t, c.post("/", url.Values{"survey_code": {"personality"}}), "Rithm Personality Test", "Learn more about yourself")
	expectRedirect(t, c.post("/begin", nil), http.StatusSeeOther, "/questions/0")

	c.post("/answer", answer("Yes"))
	c.post("/answer", answer("No"))
	c.post("/answer", answer("Porcupines"))
	expectPage(t, c.get("/questions/3"), "Which is the worst function name, and why?", `name="text"`)

	expectRedirect(t, c.post("/answer", url.Values{"answer": {"wtf()"}, "text": {"it says what we all think"}}), http.StatusSeeOther, "/complete")

	r := c.get("/complete")
	expectPage(t, r, "Thank you!", "wtf()", "it says what we all think", "Take another survey")

	var completion *http.Cookie
	for _, ck := range (&http.Response{Header: r.header}).Cookies() {
		if ck.Name == "completed_personality" {
			completion = ck
		}
	}
	if completion == nil {
		t.Fatalf("completion cookie not set")
	}
	if completion.Value != "yes" || completion.MaxAge != 60 {
		t.Fatalf("completion cookie = %q max-age %d, want yes/60", completion.Value, completion.MaxAge)
	}

	// Retaking within the cookie lifetime shows the already-done page.
	expectPage(t, c.post("/", url.Values{"survey_code": {"personality"}}), "Already done", "Rithm Personality Test")
	expectPage(t, c.post("/begin", nil), "Already done")

	// Other surveys are still available.
	expectPage(t, c.post("/", url.Values{"survey_code": {"satisfaction"}}), "Start survey")
}

func TestUnknownSurveyRedirectsToPicker(t *testing.T) {
	c := newTestServer(t, flow.ModeMulti)

	expectRedirect(t, c.post("/", url.Values{"survey_code": {"nope"}}), http.StatusSeeOther, "/")
	expectPage(t, c.get("/"), "Please pick a survey first.")

	expectRedirect(t, c.post("/", url.Values{}), http.StatusSeeOther, "/")
	expectRedirect(t, c.post("/begin", nil), http.StatusSeeOther, "/")
}

func TestForgedSessionCookieReplaced(t *testing.T) {
	c := newTestServer(t, flow.ModeSingle)

	u, _ := url.Parse(c.base)
	c.client.Jar.SetCookies(u, []*http.Cookie{{Name: sessionCookieName, Value: "not-a-uuid", Path: "/"}})

	expectRedirect(t, c.get("/questions/0"), http.StatusFound, "/")
	if got := c.cookie(sessionCookieName).Value; got == "not-a-uuid" {
		t.Fatalf("malformed session cookie kept")
	}
}

func TestHealthReportsBackendFailure(t *testing.T) {
	cat, _ := catalog.Default()
	manager, err := flow.NewManager(cat, storagememory.NewSessionStore(time.Hour, zap.NewNop()), nil, nil, zap.NewNop(), flow.Config{Mode: flow.ModeMulti})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	s, err := NewServer(&Config{
		Manager:             manager,
		Logger:              zap.NewNop(),
		CompletionCookieTTL: time.Minute,
		HealthCheck:         func(ctx context.Context) error { return errors.New("redis: connection refused") },
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusServiceUnavailable || !strings.Contains(rr.Body.String(), "unhealthy") {
		t.Fatalf("health = %d %s", rr.Code, rr.Body.String())
	}
}

func TestOversizedTextKeepsAnswer(t *testing.T) {
	c := newTestServer(t, flow.ModeMulti)

	c.post("/", url.Values{"survey_code": {"personality"}})
	c.post("/begin", nil)
	c.post("/answer", answer("Yes"))
	c.post("/answer", answer("No"))
	c.post("/answer", answer("Hedgehogs"))

	long := strings.Repeat("x", flow.MaxTextLength+1)
	expectRedirect(t, c.post("/answer", url.Values{"answer": {"wtf()"}, "text": {long}}), http.StatusSeeOther, "/complete")

	r := c.get("/complete")
	expectPage(t, r, "Thank you!", "wtf()", strings.Repeat("x", flow.MaxTextLength))
	if strings.Contains(r.body, long) {
		t.Fatalf("text longer than %d characters kept", flow.MaxTextLength)
	}
}
