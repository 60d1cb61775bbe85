package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-snp/internal/explain"
	"github.com/inodb/vibe-snp/internal/reference"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func load(t *testing.T, cfgFile string) *Config {
	t.Helper()
	v := viper.New()
	Setup(v, cfgFile)
	require.NoError(t, Read(v))
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfg := load(t, filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "openai", cfg.Explain.Provider)
	assert.InDelta(t, explain.DefaultTemperature, cfg.Explain.Temperature, 1e-9)
	assert.Equal(t, explain.DefaultMaxTokens, cfg.Explain.MaxTokens)
	assert.Equal(t, explain.DefaultTimeout, cfg.Explain.Timeout)
	assert.Equal(t, 128, cfg.Explain.CacheSize)
	assert.Empty(t, cfg.Sources())
}

func TestFileValues(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/snp
references:
  traits:
    path: /tmp/traits.csv
  ClinVar:
    inline: "rsid,gene,condition\nrs1,G,C\n"
  pharma:
    url: https://example.org/pharma.csv
explain:
  provider: gemini
  model: gemini-1.5-pro
  temperature: 0.2
  max_tokens: 400
  timeout: 15s
`)
	cfg := load(t, path)

	assert.Equal(t, "/srv/snp", cfg.DataDir)

	sources := cfg.Sources()
	require.Len(t, sources, 3)
	assert.Equal(t, "/tmp/traits.csv", sources[reference.Traits].Path)
	assert.Contains(t, sources[reference.ClinVar].Inline, "rs1,G,C")
	assert.Equal(t, "https://example.org/pharma.csv", sources[reference.Pharmacogenomics].URL)

	sc := cfg.ExplainService()
	assert.Equal(t, explain.ProviderGemini, sc.Provider)
	assert.Equal(t, "gemini-1.5-pro", sc.Model)
	assert.Equal(t, 400, sc.MaxTokens)
	assert.Equal(t, 15*time.Second, sc.Timeout)
	assert.InDelta(t, 0.2, sc.Temperature, 1e-9)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIBE_SNP_DATA_DIR", "/env/data")
	t.Setenv("VIBE_SNP_EXPLAIN_MODEL", "gpt-4o-mini")
	cfg := load(t, filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, "gpt-4o-mini", cfg.Explain.Model)
}

func TestAPIKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg := load(t, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "sk-openai", cfg.ExplainService().APIKey)

	cfg.Explain.Provider = "gemini"
	assert.Equal(t, "g-key", cfg.ExplainService().APIKey)

	cfg.Explain.APIKey = "explicit"
	assert.Equal(t, "explicit", cfg.ExplainService().APIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown reference", "references:\n  horoscope:\n    path: x.csv\n", "references.horoscope"},
		{"unknown provider", "explain:\n  provider: claude\n", "explain.provider"},
		{"temperature range", "explain:\n  temperature: 3\n", "explain.temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			Setup(v, writeConfig(t, tt.yaml))
			require.NoError(t, Read(v))
			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadMalformedFile(t *testing.T) {
	v := viper.New()
	Setup(v, writeConfig(t, "data_dir: [unterminated\n"))
	require.Error(t, Read(v))
}
