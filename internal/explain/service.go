// Package explain asks a language-model service to explain matched variants.
package explain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service generates text for a prompt.
type Service interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Provider names a text-generation backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Generation defaults.
const (
	DefaultOpenAIModel = "gpt-3.5-turbo"
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTimeout     = 60 * time.Second
	DefaultOpenAIURL   = "https://api.openai.com/v1"
)

// Config holds backend connection and generation parameters.
type Config struct {
	Provider    Provider
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// withDefaults fills unset fields for the configured provider.
func (c Config) withDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if c.Model == "" {
		if c.Provider == ProviderGemini {
			c.Model = DefaultGeminiModel
		} else {
			c.Model = DefaultOpenAIModel
		}
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Provider == ProviderOpenAI && c.BaseURL == "" {
		c.BaseURL = DefaultOpenAIURL
	}
	return c
}

// NewService creates the backend named by cfg.Provider.
func NewService(ctx context.Context, cfg Config) (Service, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s API key not configured", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown explanation provider %q", cfg.Provider)
	}
}

// unavailable is a Service that always fails with the same error.
type unavailable struct{ err error }

// Unavailable returns a Service whose every call fails with err, so a
// missing backend is reported the same way as a failing one.
func Unavailable(err error) Service {
	return unavailable{err: err}
}

func (u unavailable) Complete(context.Context, string) (string, error) {
	return "", u.err
}
