package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/catalog"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/config"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/dispute"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/natsbus"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/notify"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/outcome"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/store"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, bus *natsbus.Bus, notifier notify.Notifier) (*Server, *httptest.Server) {
	t.Helper()
	s, err := store.New(config.StoreConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	svc := dispute.NewService(s, dispute.NewEngine(catalog.Default(), "yes"), notifier, "")
	srv := NewServer(svc, bus, config.WebConfig{}, "test")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func do(t *testing.T, method, url string, agentID string, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if agentID != "" {
		req.Header.Set(agentHeader, agentID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestListQuestions(t *testing.T) {
	_, ts := newTestServer(t, nil, nil)

	resp, err := http.Get(ts.URL + "/api/questions")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	defer resp.Body.Close()

	var questions []catalog.Question
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(questions) != catalog.Default().Len() || questions[0].ID != "article_11" {
		t.Errorf("unexpected questions: %+v", questions)
	}
}

func TestDisputeFlow(t *testing.T) {
	_, ts := newTestServer(t, nil, nil)
	base := ts.URL + "/api/disputes/d1"

	resp, view := do(t, "GET", base, "7", "")
	if resp.StatusCode != http.StatusOK || view["kind"] != "onboarding" {
		t.Fatalf("expected onboarding, got %d %v", resp.StatusCode, view)
	}

	_, view = do(t, "POST", base+"/initiate", "7", "")
	if view["kind"] != "waiting" || view["waiting_for"] != dispute.WaitingForInitiation {
		t.Fatalf("expected waiting view, got %v", view)
	}

	_, view = do(t, "POST", base+"/initiate", "8", "")
	if view["kind"] != "questions" {
		t.Fatalf("expected questions view, got %v", view)
	}

	_, view = do(t, "POST", base+"/answers", "7", `{"answers":{"article_11":"yes"}}`)
	if view["kind"] != "waiting" || view["waiting_for"] != dispute.WaitingForAnswers {
		t.Fatalf("expected waiting for answers, got %v", view)
	}

	_, view = do(t, "POST", base+"/answers", "8", `{"answers":{"article_11":"yes"}}`)
	if view["kind"] != "results" || view["phase"] != string(dispute.PhaseResultsReady) {
		t.Fatalf("expected results, got %v", view)
	}
	summary, _ := view["summary"].([]any)
	if len(summary) != 1 || summary[0] != outcome.ExclusionParagraph {
		t.Errorf("unexpected summary: %v", view["summary"])
	}
}

func TestRequestErrors(t *testing.T) {
	_, ts := newTestServer(t, nil, nil)
	base := ts.URL + "/api/disputes/d1"
	do(t, "POST", base+"/initiate", "7", "")

	tests := []struct {
		name   string
		method string
		path   string
		agent  string
		body   string
		want   int
	}{
		{"missing agent", "GET", "", "", "", http.StatusBadRequest},
		{"bad agent", "GET", "", "abc", "", http.StatusBadRequest},
		{"negative agent", "POST", "/initiate", "-3", "", http.StatusBadRequest},
		{"bad body", "POST", "/answers", "7", "{", http.StatusBadRequest},
		{"empty answers", "POST", "/answers", "7", `{"answers":{}}`, http.StatusBadRequest},
		{"unknown question", "POST", "/answers", "7", `{"answers":{"article_99":"yes"}}`, http.StatusBadRequest},
		{"invalid answer", "POST", "/answers", "7", `{"answers":{"article_11":"perhaps"}}`, http.StatusBadRequest},
		{"stranger answers", "POST", "/answers", "9", `{"answers":{"article_11":"yes"}}`, http.StatusForbidden},
		{"prerequisite unmet", "POST", "/answers", "7", `{"answers":{"article_3":"mine"}}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, base+tt.path, tt.agent, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d (%v)", tt.want, resp.StatusCode, body)
			}
			if body["error"] == nil {
				t.Error("expected error message")
			}
		})
	}
}

func TestStatus(t *testing.T) {
	_, ts := newTestServer(t, nil, nil)
	do(t, "POST", ts.URL+"/api/disputes/d1/initiate", "7", "")

	resp, status := do(t, "GET", ts.URL+"/api/status", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if status["disputes"] != float64(1) || status["nats"] != "disabled" || status["version"] != "test" {
		t.Errorf("unexpected status: %v", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t, nil, nil)

	req, _ := http.NewRequest("OPTIONS", ts.URL+"/api/disputes/d1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Headers"), agentHeader) {
		t.Errorf("expected %s in allowed headers", agentHeader)
	}
}

func TestWebSocketReceivesDisputeEvents(t *testing.T) {
	bus, err := natsbus.New(config.NATSConfig{Port: -1})
	if err != nil {
		t.Fatalf("failed to create bus: %v", err)
	}
	t.Cleanup(bus.Close)

	pubClient, err := natsbus.NewClient(bus)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(pubClient.Close)

	srv, ts := newTestServer(t, bus, notify.NewPublisher(pubClient))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.hub.Run(ctx)
	srv.subscribeEvents()
	t.Cleanup(func() { srv.nats.Close() })
	srv.nats.Flush()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?dispute=d1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.Len() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	do(t, "POST", ts.URL+"/api/disputes/d1/initiate", "7", "")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket: %v", err)
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Type != "notification" || event.DisputeID != "d1" {
		t.Errorf("unexpected event: %+v", event)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Minute, "5m"},
		{2*time.Hour + 3*time.Minute, "2h 3m"},
		{50 * time.Hour, "2d 2h 0m"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
