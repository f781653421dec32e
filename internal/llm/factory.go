package llm

import (
	"fmt"
	"strings"
)

// NewClient creates a client for the configured provider, wrapped with
// rate limiting and response caching when those are enabled.
func NewClient(cfg Config) (Client, error) {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))

	var client Client
	switch cfg.Provider {
	case ProviderOpenAI, ProviderDeepSeek:
		c, err := newOpenAIClient(cfg)
		if err != nil {
			return nil, err
		}
		client = c
	case ProviderAnthropic:
		c, err := newAnthropicClient(cfg)
		if err != nil {
			return nil, err
		}
		client = c
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	if cfg.RateLimit > 0 {
		client = &limitedClient{next: client, limiter: newRateLimiter(cfg.RateLimit)}
	}
	if cfg.CacheTTL > 0 {
		client = &cachingClient{next: client, cache: newResponseCache(cfg.CacheTTL)}
	}
	return client, nil
}
