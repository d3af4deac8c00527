package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/pathway-api/internal/config"
	"github.com/phrazzld/pathway-api/internal/generation"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Client implements generation.Client using the Gemini API.
type Client struct {
	logger      *slog.Logger
	config      config.LLMConfig
	genai       *genai.Client
	limiter     *rate.Limiter
	timeout     time.Duration
	retryDelay  time.Duration
	temperature *float32

	rngMu sync.Mutex
	rng   *rand.Rand
}

var _ generation.Client = (*Client)(nil)

// NewClient creates a Gemini client from cfg. The returned client is safe for
// concurrent use.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.TimeoutSeconds < 1 {
		return nil, fmt.Errorf("%w: timeout must be at least one second", generation.ErrInvalidConfig)
	}
	if cfg.RequestsPerSecond <= 0 || cfg.Burst < 1 {
		return nil, fmt.Errorf("%w: rate limit must be positive", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gc, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Client{
		logger:      logger.With(slog.String("component", "gemini_client"), slog.String("model", cfg.ModelName)),
		config:      cfg,
		genai:       gc,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		retryDelay:  time.Duration(max(cfg.RetryDelaySeconds, 1)) * time.Second,
		temperature: genai.Ptr(cfg.Temperature),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Generate sends prompt to the model and returns its text answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	maxRetries := max(c.config.MaxRetries, 0)

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		c.logger.InfoContext(ctx, "Making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1,
			"prompt_length", len(prompt))

		text, err := c.call(ctx, prompt)
		if err == nil {
			c.logger.InfoContext(ctx, "Gemini API call successful",
				"attempt", attemptNum,
				"response_length", len(text))
			return text, nil
		}

		c.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		if errors.Is(err, generation.ErrContentBlocked) {
			return "", err
		}
		if !isTransient(err) || attempt >= maxRetries {
			return "", fmt.Errorf("%w: %w", generation.ErrUpstreamUnavailable, err)
		}

		delay := c.backoff(attempt)
		c.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			c.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %w", generation.ErrUpstreamUnavailable, ctx.Err())
		}
	}
}

// call performs a single rate-limited, time-bounded request.
func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.config.ModelName, genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: c.temperature})
	if err != nil {
		return "", err
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response blocked by safety filters", generation.ErrContentBlocked)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// backoff returns retryDelay * 2^attempt scaled by a jitter factor in [0.5, 1.0).
func (c *Client) backoff(attempt int) time.Duration {
	c.rngMu.Lock()
	jitter := 0.5 + c.rng.Float64()*0.5
	c.rngMu.Unlock()

	return time.Duration(float64(c.retryDelay) * math.Pow(2, float64(attempt)) * jitter)
}
