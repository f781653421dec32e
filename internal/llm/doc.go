// Package llm provides text-generation clients for the advisory report.
// It supports OpenAI-compatible endpoints (OpenAI, DeepSeek) and Anthropic,
// with optional rate limiting and response caching, and classifies failures
// as transient or permanent so callers can decide whether to retry.
package llm
