package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Analyze sends a prompt with a system prompt and returns the raw response text.
	// The call honors ctx cancellation and deadlines.
	Analyze(ctx context.Context, prompt string, systemPrompt string) (string, error)
}

// Config holds provider settings.
type Config struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
	RateLimit      int // requests per minute, 0 disables limiting
	Temperature    float64
	MaxTokens      int
}

// Provider names.
const (
	ProviderDeepSeek  = "deepseek"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type preset struct {
	baseURL string
	model   string
}

var presets = map[string]preset{
	ProviderDeepSeek:  {baseURL: "https://api.deepseek.com/v1", model: "deepseek-chat"},
	ProviderOpenAI:    {baseURL: "https://api.openai.com/v1", model: "gpt-4o-mini"},
	ProviderAnthropic: {baseURL: "https://api.anthropic.com/v1", model: "claude-3-5-haiku-latest"},
}

// DefaultConfig returns settings for the DeepSeek chat endpoint.
func DefaultConfig() Config {
	return Config{
		Provider:       ProviderDeepSeek,
		RequestTimeout: 120 * time.Second,
		Temperature:    0.7,
		MaxTokens:      4000,
	}
}

// withDefaults fills the endpoint and model from the provider preset.
func (c Config) withDefaults() Config {
	p := presets[c.Provider]
	if c.BaseURL == "" {
		c.BaseURL = p.baseURL
	}
	if c.Model == "" {
		c.Model = p.model
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4000
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 120 * time.Second
	}
	return c
}
