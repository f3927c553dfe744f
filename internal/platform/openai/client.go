package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

// Client is the text-completion surface used for semantic risk review.
type Client interface {
	// Plain text (no schema)
	GenerateText(ctx context.Context, system string, user string) (string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float32
	MaxTokens   int
}

func LoadConfigFromEnv() Config {
	return Config{
		APIKey:      strings.TrimSpace(envutil.String("OPENAI_API_KEY", "")),
		BaseURL:     strings.TrimRight(strings.TrimSpace(envutil.String("OPENAI_BASE_URL", "https://api.openai.com")), "/"),
		Model:       strings.TrimSpace(envutil.String("OPENAI_MODEL", goopenai.GPT4oMini)),
		Timeout:     envutil.Duration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:  envutil.Int("OPENAI_MAX_RETRIES", 2),
		Temperature: float32(envutil.Float("OPENAI_TEMPERATURE", 0.2)),
		MaxTokens:   envutil.Int("OPENAI_MAX_TOKENS", 200),
	}
}

type client struct {
	log         *logger.Logger
	api         *goopenai.Client
	model       string
	maxRetries  int
	temperature float32
	maxTokens   int
	backoff     time.Duration
}

func NewClient(cfg Config, log *logger.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = goopenai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &client{
		log:         log.With("service", "OpenAIClient"),
		api:         goopenai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxRetries:  cfg.MaxRetries,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		backoff:     500 * time.Millisecond,
	}, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			if !retryable(err) {
				break
			}
			c.log.Debug("completion failed; retrying", "attempt", attempt+1, "error", err.Error())
			continue
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices in completion response")
		}
		text := strings.TrimSpace(resp.Choices[0].Message.Content)
		if text == "" {
			if r := resp.Choices[0].Message.Refusal; r != "" {
				return "", fmt.Errorf("model refused: %s", r)
			}
			return "", fmt.Errorf("empty completion")
		}
		return text, nil
	}
	return "", fmt.Errorf("completion: %w", lastErr)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}
