package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/momentum-app/momentum/internal/domain"
	"github.com/momentum-app/momentum/internal/infra/gemini"
	"github.com/momentum-app/momentum/internal/infra/metrics"
)

// fakeGemini answers every generateContent call with a fixed candidate text
// and records the decoded request bodies.
type fakeGemini struct {
	mu     sync.Mutex
	text   string
	status int
	paths  []string
	bodies []map[string]any
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.bodies = append(f.bodies, body)
	status, text := f.status, f.text
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		w.Write([]byte(`{"error":{"code":400,"message":"boom"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
		}},
	})
}

func newClient(t *testing.T, fake *fakeGemini) *gemini.Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := gemini.New(context.Background(), gemini.Config{
		APIKey:     "test-key",
		Endpoint:   srv.URL + "/",
		HTTPClient: srv.Client(),
		Model:      "test-model",
		Timeout:    5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

// ═══════════════════════════════════════════════════════════════════════════
// Construction
// ═══════════════════════════════════════════════════════════════════════════

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := gemini.New(context.Background(), gemini.Config{HTTPClient: http.DefaultClient})
	if !errors.Is(err, domain.ErrAIUnavailable) {
		t.Errorf("expected ErrAIUnavailable, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Breakdown
// ═══════════════════════════════════════════════════════════════════════════

func TestBreakdown_ParsesSteps(t *testing.T) {
	fake := &fakeGemini{text: `{"steps":["Outline sections","Draft intro"," ","Edit"]}`}
	c := newClient(t, fake)

	steps := c.Breakdown(context.Background(), "Write report")
	want := []string{"Outline sections", "Draft intro", "Edit"}
	if len(steps) != len(want) {
		t.Fatalf("expected %v, got %v", want, steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Errorf("step %d = %q, want %q", i, steps[i], want[i])
		}
	}

	if len(fake.paths) != 1 || !strings.HasSuffix(fake.paths[0], "models/test-model:generateContent") {
		t.Errorf("unexpected request path: %v", fake.paths)
	}
	gen, _ := fake.bodies[0]["generationConfig"].(map[string]any)
	if gen["responseMimeType"] != "application/json" {
		t.Errorf("expected JSON response mime type, got %v", gen["responseMimeType"])
	}
	if gen["responseSchema"] == nil {
		t.Error("expected a response schema")
	}
	if !strings.Contains(jsonString(t, fake.bodies[0]), "Write report") {
		t.Error("prompt should contain the task title")
	}
}

func TestBreakdown_CapsAtFive(t *testing.T) {
	fake := &fakeGemini{text: `{"steps":["1","2","3","4","5","6","7"]}`}
	steps := newClient(t, fake).Breakdown(context.Background(), "big")
	if len(steps) != domain.MaxSubTasks {
		t.Errorf("expected %d steps, got %d", domain.MaxSubTasks, len(steps))
	}
}

func TestBreakdown_FailsSoft(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeGemini
	}{
		{"invalid json", &fakeGemini{text: "not json"}},
		{"server error", &fakeGemini{status: http.StatusBadRequest}},
		{"empty text", &fakeGemini{text: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := newClient(t, tt.fake).Breakdown(context.Background(), "x")
			if len(steps) != 0 {
				t.Errorf("expected no steps, got %v", steps)
			}
		})
	}
}

func TestBreakdown_CountsOutcomeOnce(t *testing.T) {
	ok := counter(t, "breakdown", "ok")
	bad := counter(t, "breakdown", "bad_response")

	newClient(t, &fakeGemini{text: "not json"}).Breakdown(context.Background(), "x")
	if got := counter(t, "breakdown", "bad_response") - bad; got != 1 {
		t.Errorf("expected 1 bad_response, got %v", got)
	}
	if got := counter(t, "breakdown", "ok") - ok; got != 0 {
		t.Errorf("expected no ok for an unparsable response, got %v", got)
	}

	newClient(t, &fakeGemini{text: `{"steps":["a"]}`}).Breakdown(context.Background(), "x")
	if got := counter(t, "breakdown", "ok") - ok; got != 1 {
		t.Errorf("expected 1 ok, got %v", got)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Review
// ═══════════════════════════════════════════════════════════════════════════

func TestSummarize_ReturnsText(t *testing.T) {
	fake := &fakeGemini{text: "  Strong focus today. Start earlier tomorrow.\n"}
	c := newClient(t, fake)

	tasks := []domain.Task{{ID: "1", Title: "Review proposal", Priority: 5, Category: domain.CategoryWork}}
	text, err := c.Summarize(context.Background(), tasks, domain.Stats{XP: 1250, Level: 5})
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if text != "Strong focus today. Start earlier tomorrow." {
		t.Errorf("unexpected text %q", text)
	}
	body := jsonString(t, fake.bodies[0])
	if !strings.Contains(body, "Review proposal") || !strings.Contains(body, "1250") {
		t.Error("prompt should embed tasks and stats")
	}
}

func TestSummarize_Error(t *testing.T) {
	c := newClient(t, &fakeGemini{status: http.StatusBadRequest})
	if _, err := c.Summarize(context.Background(), nil, domain.Stats{}); err == nil {
		t.Error("expected an error from a failing service")
	}
}

func jsonString(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func counter(t *testing.T, op, outcome string) float64 {
	t.Helper()
	var m dto.Metric
	var c prometheus.Counter = metrics.AIRequests.WithLabelValues(op, outcome)
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}
