// Package config loads vibe-snp settings from ~/.vibe-snp.yaml, VIBE_SNP_*
// environment variables and provider API key variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/inodb/vibe-snp/internal/explain"
	"github.com/inodb/vibe-snp/internal/reference"
)

// FileName is the config file name looked up in the home directory.
const FileName = ".vibe-snp.yaml"

// EnvPrefix prefixes environment overrides, e.g. VIBE_SNP_DATA_DIR.
const EnvPrefix = "VIBE_SNP"

// Config is the complete application configuration.
type Config struct {
	DataDir    string                  `mapstructure:"data_dir"`
	References map[string]SourceConfig `mapstructure:"references"`
	Explain    ExplainConfig           `mapstructure:"explain"`

	// Provider keys read from OPENAI_API_KEY / GEMINI_API_KEY.
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
}

// SourceConfig overrides where one reference table is read from.
type SourceConfig struct {
	Path   string `mapstructure:"path"`
	Inline string `mapstructure:"inline"`
	URL    string `mapstructure:"url"`
}

// ExplainConfig configures the explanation backend.
type ExplainConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	CacheSize   int           `mapstructure:"cache_size"`
}

// Setup points v at the config file, environment and defaults. An empty
// cfgFile means ~/.vibe-snp.yaml.
func Setup(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, FileName))
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY")

	SetDefaults(v)
}

// SetDefaults registers default values.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")

	v.SetDefault("explain.provider", string(explain.ProviderOpenAI))
	v.SetDefault("explain.model", "")
	v.SetDefault("explain.api_key", "")
	v.SetDefault("explain.base_url", "")
	v.SetDefault("explain.temperature", explain.DefaultTemperature)
	v.SetDefault("explain.max_tokens", explain.DefaultMaxTokens)
	v.SetDefault("explain.timeout", explain.DefaultTimeout.String())
	v.SetDefault("explain.rate_limit", 1.0)
	v.SetDefault("explain.cache_size", 128)
}

// Read loads the config file if present. A missing file is not an error.
func Read(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks reference keys and explanation settings.
func (c *Config) Validate() error {
	for key := range c.References {
		if _, err := reference.ParseCategory(key); err != nil {
			return fmt.Errorf("references.%s: %w", key, err)
		}
	}

	switch explain.Provider(strings.ToLower(c.Explain.Provider)) {
	case explain.ProviderOpenAI, explain.ProviderGemini, "":
	default:
		return fmt.Errorf("explain.provider: unknown provider %q", c.Explain.Provider)
	}
	if c.Explain.Temperature < 0 || c.Explain.Temperature > 2 {
		return fmt.Errorf("explain.temperature: %v out of range [0, 2]", c.Explain.Temperature)
	}
	if c.Explain.MaxTokens < 0 {
		return fmt.Errorf("explain.max_tokens: must not be negative")
	}
	return nil
}

// Sources returns the per-category table overrides.
func (c *Config) Sources() map[reference.Category]reference.Source {
	out := make(map[reference.Category]reference.Source, len(c.References))
	for key, sc := range c.References {
		cat, err := reference.ParseCategory(key)
		if err != nil {
			continue
		}
		out[cat] = reference.Source{Path: sc.Path, Inline: sc.Inline, URL: sc.URL}
	}
	return out
}

// ExplainService returns the backend settings, falling back to the
// provider's API key variable when explain.api_key is unset.
func (c *Config) ExplainService() explain.Config {
	provider := explain.Provider(strings.ToLower(c.Explain.Provider))
	key := c.Explain.APIKey
	if key == "" {
		if provider == explain.ProviderGemini {
			key = c.GeminiAPIKey
		} else {
			key = c.OpenAIAPIKey
		}
	}
	return explain.Config{
		Provider:    provider,
		APIKey:      key,
		BaseURL:     c.Explain.BaseURL,
		Model:       c.Explain.Model,
		Temperature: c.Explain.Temperature,
		MaxTokens:   c.Explain.MaxTokens,
		Timeout:     c.Explain.Timeout,
	}
}

// ExplainOptions returns the call-guard settings.
func (c *Config) ExplainOptions() explain.Options {
	return explain.Options{
		RateLimit: c.Explain.RateLimit,
		CacheSize: c.Explain.CacheSize,
		Timeout:   c.Explain.Timeout,
	}
}
