// Package gemini implements the AI collaborators (task breakdown and
// daily review) on the Generative Language API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/momentum-app/momentum/internal/domain"
	"github.com/momentum-app/momentum/internal/infra/metrics"
)

// Defaults.
const (
	DefaultModel    = "gemini-3-flash-preview"
	DefaultLanguage = "English"
	DefaultTimeout  = 30 * time.Second
)

// Config configures the client.
type Config struct {
	APIKey   string
	Model    string        // default DefaultModel
	Language string        // language of the generated text, default DefaultLanguage
	Timeout  time.Duration // per call, default DefaultTimeout
	Endpoint string        // optional base URL override

	HTTPClient *http.Client // optional transport
	Logger     *slog.Logger
}

// Client calls Gemini. It implements domain.Breakdowner and domain.Reviewer.
type Client struct {
	models   *genai.Models
	model    string
	language string
	timeout  time.Duration
	log      *slog.Logger
}

var (
	_ domain.Breakdowner = (*Client)(nil)
	_ domain.Reviewer    = (*Client)(nil)
)

// New creates a client. Without an API key it returns domain.ErrAIUnavailable.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, domain.ErrAIUnavailable
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.Endpoint != "" {
		cc.HTTPOptions.BaseURL = cfg.Endpoint
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{
		models:   client.Models,
		model:    cfg.Model,
		language: cfg.Language,
		timeout:  cfg.Timeout,
		log:      cfg.Logger,
	}, nil
}

// ─── Breakdown ──────────────────────────────────────────────────────────────

type breakdownResult struct {
	Steps []string `json:"steps"`
}

var stepsSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"steps": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"steps"},
}

// Breakdown asks for at most domain.MaxSubTasks steps for a task title.
// Any failure is logged and yields nil.
func (c *Client) Breakdown(ctx context.Context, title string) []string {
	prompt := fmt.Sprintf(
		"Break this task down into smaller actionable steps (at most %d steps) in %s: %q",
		domain.MaxSubTasks, c.language, title)

	text, err := c.generate(ctx, "breakdown", prompt, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   stepsSchema,
	})
	if err != nil {
		c.log.Warn("breakdown failed", "title", title, "error", err)
		return nil
	}

	var res breakdownResult
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		c.log.Warn("breakdown response is not valid JSON", "error", err)
		metrics.AIRequests.WithLabelValues("breakdown", "bad_response").Inc()
		return nil
	}
	metrics.AIRequests.WithLabelValues("breakdown", "ok").Inc()

	steps := make([]string, 0, len(res.Steps))
	for _, s := range res.Steps {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
		if len(steps) == domain.MaxSubTasks {
			break
		}
	}
	return steps
}

// ─── Review ─────────────────────────────────────────────────────────────────

// Summarize writes a short motivating review of the day's execution,
// naming one strength and one area to improve tomorrow.
func (c *Client) Summarize(ctx context.Context, tasks []domain.Task, stats domain.Stats) (string, error) {
	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("encode tasks: %w", err)
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("encode stats: %w", err)
	}

	prompt := fmt.Sprintf(`Based on today's execution:
Tasks: %s
Stats: %s

Give a short, professional and motivating performance review in %s.
Highlight one strength and one area to improve tomorrow.
Return clean plain text only.`, tasksJSON, statsJSON, c.language)

	text, err := c.generate(ctx, "review", prompt, nil)
	if err != nil {
		return "", err
	}
	metrics.AIRequests.WithLabelValues("review", "ok").Inc()
	return strings.TrimSpace(text), nil
}

// ─── Transport ──────────────────────────────────────────────────────────────

// generate returns the response text. Failed and empty calls are counted
// here; callers count success once they have used the text.
func (c *Client) generate(ctx context.Context, op, prompt string, gen *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), gen)
	metrics.AILatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AIRequests.WithLabelValues(op, "error").Inc()
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		metrics.AIRequests.WithLabelValues(op, "empty").Inc()
		return "", fmt.Errorf("generate content: empty response")
	}
	return text, nil
}
