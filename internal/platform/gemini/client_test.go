package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/pathway-api/internal/config"
	"github.com/phrazzld/pathway-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const okBody = `{"candidates":[{"content":{"parts":[{"text":"` +
	"```json\\n{\\\"steps\\\":[]}\\n```" +
	`"}],"role":"model"},"finishReason":"STOP"}]}`

func testConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:      "test-key",
		ModelName:         "gemini-test",
		TimeoutSeconds:    5,
		MaxRetries:        0,
		RetryDelaySeconds: 1,
		RequestsPerSecond: 100,
		Burst:             10,
		Temperature:       0.2,
		BaseURL:           baseURL,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGemini serves the given responses in order, repeating the last one.
func fakeGemini(t *testing.T, responses ...func(w http.ResponseWriter)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		w.Header().Set("Content-Type", "application/json")
		responses[min(n, len(responses)-1)](w)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func respond(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func newTestClient(t *testing.T, cfg config.LLMConfig) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	c.retryDelay = time.Millisecond
	return c
}

func TestClient_Generate(t *testing.T) {
	tests := []struct {
		name      string
		responses []func(w http.ResponseWriter)
		retries   int
		wantText  string
		wantErr   error
		wantCalls int32
	}{
		{
			name:      "success",
			responses: []func(http.ResponseWriter){respond(http.StatusOK, okBody)},
			wantText:  "```json\n{\"steps\":[]}\n```",
			wantCalls: 1,
		},
		{
			name: "safety finish reason",
			responses: []func(http.ResponseWriter){respond(http.StatusOK,
				`{"candidates":[{"content":{"parts":[{"text":"no"}],"role":"model"},"finishReason":"SAFETY"}]}`)},
			wantErr:   generation.ErrContentBlocked,
			wantCalls: 1,
		},
		{
			name: "prompt blocked",
			responses: []func(http.ResponseWriter){respond(http.StatusOK,
				`{"promptFeedback":{"blockReason":"SAFETY"}}`)},
			wantErr:   generation.ErrContentBlocked,
			wantCalls: 1,
		},
		{
			name:      "no candidates",
			responses: []func(http.ResponseWriter){respond(http.StatusOK, `{"candidates":[]}`)},
			wantErr:   ErrEmptyResponse,
			wantCalls: 1,
		},
		{
			name: "rate limited without retries",
			responses: []func(http.ResponseWriter){respond(http.StatusTooManyRequests,
				`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`)},
			wantErr:   generation.ErrUpstreamUnavailable,
			wantCalls: 1,
		},
		{
			name: "transient failure retried",
			responses: []func(http.ResponseWriter){
				respond(http.StatusServiceUnavailable, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`),
				respond(http.StatusOK, okBody),
			},
			retries:   2,
			wantText:  "```json\n{\"steps\":[]}\n```",
			wantCalls: 2,
		},
		{
			name: "retries exhausted",
			responses: []func(http.ResponseWriter){
				respond(http.StatusInternalServerError, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`),
			},
			retries:   2,
			wantErr:   generation.ErrUpstreamUnavailable,
			wantCalls: 3,
		},
		{
			name: "client error not retried",
			responses: []func(http.ResponseWriter){
				respond(http.StatusBadRequest, `{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`),
			},
			retries:   2,
			wantErr:   generation.ErrUpstreamUnavailable,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := fakeGemini(t, tt.responses...)
			cfg := testConfig(srv.URL)
			cfg.MaxRetries = tt.retries
			c := newTestClient(t, cfg)

			text, err := c.Generate(context.Background(), "prompt")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, text)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantText, text)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_GenerateTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := newTestClient(t, testConfig(srv.URL))
	c.timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := c.Generate(context.Background(), "prompt")

	require.ErrorIs(t, err, generation.ErrUpstreamUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_GenerateEmptyPrompt(t *testing.T) {
	srv, calls := fakeGemini(t, respond(http.StatusOK, okBody))
	c := newTestClient(t, testConfig(srv.URL))

	_, err := c.Generate(context.Background(), "")

	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Zero(t, calls.Load())
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.LLMConfig)
	}{
		{"missing api key", func(c *config.LLMConfig) { c.GeminiAPIKey = "" }},
		{"missing model", func(c *config.LLMConfig) { c.ModelName = "" }},
		{"zero timeout", func(c *config.LLMConfig) { c.TimeoutSeconds = 0 }},
		{"zero rate", func(c *config.LLMConfig) { c.RequestsPerSecond = 0 }},
		{"zero burst", func(c *config.LLMConfig) { c.Burst = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("http://localhost")
			tt.mutate(&cfg)
			_, err := NewClient(context.Background(), cfg, testLogger())
			assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		})
	}

	_, err := NewClient(context.Background(), testConfig(""), nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(genai.APIError{Code: http.StatusTooManyRequests}))
	assert.True(t, isTransient(genai.APIError{Code: http.StatusBadGateway}))
	assert.False(t, isTransient(genai.APIError{Code: http.StatusForbidden}))
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(errors.New("boom")))
}

func TestClient_Backoff(t *testing.T) {
	c := &Client{retryDelay: time.Second, rng: newTestClient(t, testConfig("http://localhost")).rng}

	for attempt := range 4 {
		d := c.backoff(attempt)
		base := time.Second << attempt
		assert.GreaterOrEqual(t, d, base/2)
		assert.Less(t, d, base)
	}
}
