package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/Veraticus/spend-ledger/internal/advisory"
	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/llm"
	"github.com/Veraticus/spend-ledger/internal/report"
)

// EnvPrefix namespaces environment overrides, e.g. LEDGER_LLM_API_KEY.
const EnvPrefix = "LEDGER"

// DefaultDatabasePath is where the ledger lives unless database.path is set.
const DefaultDatabasePath = "$HOME/.local/share/ledger/ledger.db"

// SetDefaults registers every default so env overrides resolve for unset keys.
func SetDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()
	v.SetDefault("llm.provider", llmDefaults.Provider)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", llmDefaults.Temperature)
	v.SetDefault("llm.max_tokens", llmDefaults.MaxTokens)
	v.SetDefault("llm.request_timeout", llmDefaults.RequestTimeout)
	v.SetDefault("llm.cache_ttl", time.Duration(0))
	v.SetDefault("llm.rate_limit", 0)

	adv := advisory.DefaultConfig()
	v.SetDefault("advisory.business_name", "")
	v.SetDefault("advisory.timeout", adv.Timeout)
	v.SetDefault("advisory.max_retries", adv.MaxRetries)
	v.SetDefault("advisory.retry_delay", adv.RetryDelay)
	v.SetDefault("advisory.max_retry_delay", adv.MaxRetryDelay)
	v.SetDefault("advisory.max_rows", adv.MaxRows)

	v.SetDefault("report.top_movers", report.DefaultTopMovers)
	v.SetDefault("report.severity_thresholds", report.DefaultThresholds)

	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv wires LEDGER_SECTION_KEY environment variables onto section.key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// providerKeyEnv lists the conventional environment variable for each provider's key.
var providerKeyEnv = map[string]string{
	llm.ProviderDeepSeek:  "DEEPSEEK_API_KEY",
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// LoadLLMConfig reads the llm section. A missing API key returns an error
// wrapping common.ErrMissingConfig so callers can treat advice as unavailable.
func LoadLLMConfig(v *viper.Viper) (llm.Config, error) {
	cfg := llm.Config{
		Provider:       strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
		APIKey:         v.GetString("llm.api_key"),
		BaseURL:        v.GetString("llm.base_url"),
		Model:          v.GetString("llm.model"),
		Temperature:    v.GetFloat64("llm.temperature"),
		MaxTokens:      v.GetInt("llm.max_tokens"),
		RequestTimeout: v.GetDuration("llm.request_timeout"),
		CacheTTL:       v.GetDuration("llm.cache_ttl"),
		RateLimit:      v.GetInt("llm.rate_limit"),
	}
	if cfg.Provider == "" {
		cfg.Provider = llm.ProviderDeepSeek
	}

	envName, known := providerKeyEnv[cfg.Provider]
	if !known {
		return cfg, fmt.Errorf("%w: unsupported llm.provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(envName)
	}
	if cfg.APIKey == "" {
		return cfg, fmt.Errorf("%w: llm.api_key (or %s_LLM_API_KEY / %s) is not set", common.ErrMissingConfig, EnvPrefix, envName)
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return cfg, fmt.Errorf("%w: llm.temperature must be between 0 and 2, got %v", common.ErrInvalidConfig, cfg.Temperature)
	}
	if cfg.MaxTokens < 0 {
		return cfg, fmt.Errorf("%w: llm.max_tokens must not be negative, got %d", common.ErrInvalidConfig, cfg.MaxTokens)
	}
	return cfg, nil
}

// LoadAdvisoryConfig reads and validates the advisory section.
func LoadAdvisoryConfig(v *viper.Viper) (advisory.Config, error) {
	cfg := advisory.Config{
		BusinessName:  v.GetString("advisory.business_name"),
		Timeout:       v.GetDuration("advisory.timeout"),
		MaxRetries:    v.GetInt("advisory.max_retries"),
		RetryDelay:    v.GetDuration("advisory.retry_delay"),
		MaxRetryDelay: v.GetDuration("advisory.max_retry_delay"),
		MaxRows:       v.GetInt("advisory.max_rows"),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadReportConfig reads and validates the report section.
func LoadReportConfig(v *viper.Viper) (report.Config, error) {
	raw := v.Get("report.severity_thresholds")
	thresholds, err := toFloats(raw)
	if err != nil {
		return report.Config{}, fmt.Errorf("%w: report.severity_thresholds: %w", common.ErrInvalidConfig, err)
	}

	cfg := report.Config{
		Severity:  report.SeverityPolicy{Thresholds: thresholds},
		TopMovers: v.GetInt("report.top_movers"),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// toFloats accepts the shapes viper produces for a list of numbers:
// YAML sequences, Go slices and comma separated env strings.
func toFloats(raw any) ([]float64, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		raw = parts
	}
	return cast.ToFloat64SliceE(raw)
}
