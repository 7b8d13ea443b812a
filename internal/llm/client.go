// Package llm provides the reasoning-service clients used for agent decisions.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Supported providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai" // any OpenAI-compatible chat API, e.g. DeepSeek
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	anthropicModel   = "claude-haiku-4-5-20251001"

	openAIURL   = "https://api.deepseek.com/v1/chat/completions"
	openAIModel = "deepseek-chat"
)

// ErrNotConfigured is returned by a nil or keyless client.
var ErrNotConfigured = errors.New("LLM client not configured")

// Options configures a Client.
type Options struct {
	Provider          string        `yaml:"provider" json:"provider"`
	Model             string        `yaml:"model" json:"model"`
	BaseURL           string        `yaml:"base_url" json:"base_url"`
	APIKey            string        `yaml:"api_key" json:"-"`
	MaxTokens         int           `yaml:"max_tokens" json:"max_tokens"`
	Temperature       float64       `yaml:"temperature" json:"temperature"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int           `yaml:"burst" json:"burst"`
}

// Client calls a chat-completion API and returns the raw text reply.
// It is safe for concurrent use.
type Client struct {
	provider    string
	apiKey      string
	model       string
	url         string
	maxTokens   int
	temperature float64

	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client from opts.
// Returns nil if APIKey is empty (LLM features disabled).
func NewClient(opts Options) *Client {
	if opts.APIKey == "" {
		return nil
	}

	c := &Client{
		provider:    opts.Provider,
		apiKey:      opts.APIKey,
		model:       opts.Model,
		url:         opts.BaseURL,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		httpClient:  &http.Client{Timeout: opts.Timeout},
	}
	if c.provider == "" {
		c.provider = ProviderAnthropic
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 1000
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = 30 * time.Second
	}

	switch c.provider {
	case ProviderOpenAI:
		if c.url == "" {
			c.url = openAIURL
		}
		if c.model == "" {
			c.model = openAIModel
		}
	default:
		if c.url == "" {
			c.url = anthropicURL
		}
		if c.model == "" {
			c.model = anthropicModel
		}
	}

	if opts.RequestsPerMinute > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60), burst)
	}
	return c
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Provider returns the configured provider name.
func (c *Client) Provider() string {
	if c == nil {
		return ""
	}
	return c.provider
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Complete sends a system and user prompt and returns the reply text.
// It blocks on the rate limiter and honours ctx cancellation.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	switch c.provider {
	case ProviderOpenAI:
		return c.completeOpenAI(ctx, system, user)
	default:
		return c.completeAnthropic(ctx, system, user)
	}
}

// StatusError is returned when the API answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Body)
}

func (c *Client) post(ctx context.Context, body []byte, headers map[string]string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
