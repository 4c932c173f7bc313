package cli

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/momentum-app/momentum/internal/domain"
)

func TestMatchID(t *testing.T) {
	tasks := []domain.Task{
		{ID: "a1b2c3d4-0000"},
		{ID: "a1b2ffff-0000"},
		{ID: "9"},
	}

	tests := []struct {
		prefix  string
		want    string
		wantErr bool
	}{
		{"9", "9", false},
		{"a1b2c", "a1b2c3d4-0000", false},
		{"a1b2ffff-0000", "a1b2ffff-0000", false},
		{"a1b2", "", true}, // ambiguous
		{"zz", "", true},
	}
	for _, tt := range tests {
		got, err := matchID(tt.prefix, tasks)
		if (err != nil) != tt.wantErr {
			t.Errorf("matchID(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("matchID(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}

	if _, err := matchID("zz", tasks); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("expected 01234567, got %s", got)
	}
	if got := shortID("1"); got != "1" {
		t.Errorf("expected 1, got %s", got)
	}
}

func TestAPIClient_DecodesAndReportsErrors(t *testing.T) {
	hs := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/stats":
			w.Write([]byte(`{"xp":1250,"level":5}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"message":"task not found","type":"not_found_error"}}`))
		}
	}))
	defer hs.Close()

	c := &apiClient{base: hs.URL, http: hs.Client()}

	var st domain.Stats
	if err := c.get("/api/stats", &st); err != nil {
		t.Fatalf("get() error: %v", err)
	}
	if st.XP != 1250 || st.Level != 5 {
		t.Errorf("expected 1250/5, got %d/%d", st.XP, st.Level)
	}

	err := c.post("/api/tasks/x/toggle", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "task not found") {
		t.Errorf("expected server message in error, got %v", err)
	}
}
