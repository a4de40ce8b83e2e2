// Package config loads lembar's settings from defaults, an optional
// YAML file, and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/lembar/internal/assessmentgen"
	"github.com/abhisek/lembar/internal/blobstore"
	"github.com/abhisek/lembar/internal/llm"
	"github.com/abhisek/lembar/internal/logging"
	"github.com/abhisek/lembar/internal/render"
	"github.com/abhisek/lembar/internal/tracing"
)

// EnvPrefix prefixes every environment override, e.g. LEMBAR_SERVER_ADDR.
const EnvPrefix = "LEMBAR"

type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"`
	Paper   PaperConfig   `mapstructure:"paper"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LLMConfig struct {
	Provider      string        `mapstructure:"provider"`
	ImageProvider string        `mapstructure:"image_provider"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Temperature   float64       `mapstructure:"temperature"`
	Timeout       time.Duration `mapstructure:"timeout"`

	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
}

type ProviderConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	ImageModel string `mapstructure:"image_model"`
	BaseURL    string `mapstructure:"base_url"`

	// Referer is sent to OpenRouter for app attribution.
	Referer string `mapstructure:"referer"`
}

type PaperConfig struct {
	AcademicYear string `mapstructure:"academic_year"`
	City         string `mapstructure:"city"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RatePerMinute  int           `mapstructure:"rate_per_minute"`
	RateBurst      int           `mapstructure:"rate_burst"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type StorageConfig struct {
	// Type is "memory" or "minio".
	Type  string                `mapstructure:"type"`
	MinIO blobstore.MinIOConfig `mapstructure:"minio"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	llmDefaults := llm.DefaultConfig()
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.image_provider", "")
	v.SetDefault("llm.max_tokens", 32768)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.timeout", llmDefaults.Timeout)
	v.SetDefault("llm.gemini.model", llmDefaults.Gemini.Model)
	v.SetDefault("llm.gemini.image_model", llmDefaults.Gemini.ImageModel)
	v.SetDefault("llm.openai.model", llmDefaults.OpenAI.Model)
	v.SetDefault("llm.openai.image_model", llmDefaults.OpenAI.ImageModel)
	v.SetDefault("llm.anthropic.model", llmDefaults.Anthropic.Model)
	v.SetDefault("llm.openrouter.model", llmDefaults.OpenRouter.Model)

	v.SetDefault("paper.academic_year", render.DefaultAcademicYear)
	v.SetDefault("paper.city", render.DefaultCity)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_per_minute", 6)
	v.SetDefault("server.rate_burst", 3)
	v.SetDefault("server.session_ttl", 2*time.Hour)
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.minio.bucket", "lembar")
	v.SetDefault("storage.minio.prefix", "illustrations/")

	logDefaults := logging.DefaultConfig()
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", logDefaults.MaxSizeMB)
	v.SetDefault("log.max_backups", logDefaults.MaxBackups)
	v.SetDefault("log.max_age_days", logDefaults.MaxAgeDays)

	v.SetDefault("db.path", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("metrics.enabled", true)
}

// credentialEnv binds the conventional single-variable credentials.
var credentialEnv = map[string]string{
	"llm.gemini.api_key":       "GEMINI_API_KEY",
	"llm.openai.api_key":       "OPENAI_API_KEY",
	"llm.anthropic.api_key":    "ANTHROPIC_API_KEY",
	"llm.openrouter.api_key":   "OPENROUTER_API_KEY",
	"storage.minio.access_key": "MINIO_ACCESS_KEY",
	"storage.minio.secret_key": "MINIO_SECRET_KEY",
}

// Load reads configuration. path names an explicit config file; when
// empty, lembar.yaml is looked up in the working directory and in
// $XDG_CONFIG_HOME/lembar, and its absence is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range credentialEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lembar")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func configDir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "lembar"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lembar"), nil
}

// Validate checks the settings that do not depend on provider keys.
// Provider keys are checked by ProviderConfig().Validate so that
// commands not talking to a model can run without them.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "memory":
	case "minio":
		if c.Storage.MinIO.Endpoint == "" {
			return errors.New("storage.minio.endpoint is required for minio storage")
		}
	default:
		return fmt.Errorf("unknown storage type %q (want memory or minio)", c.Storage.Type)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature %.2f out of range [0, 2]", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Server.RatePerMinute < 0 || c.Server.RateBurst < 0 {
		return errors.New("server rate limit values must not be negative")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio %.2f out of range [0, 1]", c.Tracing.SampleRatio)
	}
	return nil
}

// ProviderConfig converts the llm section for the provider factory.
func (c *Config) ProviderConfig() llm.Config {
	l := c.LLM
	return llm.Config{
		Provider:      l.Provider,
		ImageProvider: l.ImageProvider,
		Gemini: llm.GeminiConfig{
			APIKey: l.Gemini.APIKey, Model: l.Gemini.Model, ImageModel: l.Gemini.ImageModel, BaseURL: l.Gemini.BaseURL,
		},
		OpenAI: llm.OpenAIConfig{
			APIKey: l.OpenAI.APIKey, Model: l.OpenAI.Model, ImageModel: l.OpenAI.ImageModel, BaseURL: l.OpenAI.BaseURL,
		},
		Anthropic: llm.AnthropicConfig{
			APIKey: l.Anthropic.APIKey, Model: l.Anthropic.Model, BaseURL: l.Anthropic.BaseURL,
		},
		OpenRouter: llm.OpenRouterConfig{
			APIKey: l.OpenRouter.APIKey, Model: l.OpenRouter.Model, BaseURL: l.OpenRouter.BaseURL,
			Referer: l.OpenRouter.Referer,
		},
		Timeout: l.Timeout,
	}.Resolve()
}

// GeneratorConfig returns the assessment generator settings.
func (c *Config) GeneratorConfig() assessmentgen.Config {
	gc := assessmentgen.DefaultConfig()
	gc.MaxTokens = c.LLM.MaxTokens
	gc.Temperature = c.LLM.Temperature
	return gc
}

// PaperOptions returns the paper settings for on-screen rendering.
func (c *Config) PaperOptions() render.PaperOptions {
	opts := render.DefaultPaperOptions()
	opts.AcademicYear = c.Paper.AcademicYear
	opts.City = c.Paper.City
	return opts
}

// Logging returns the logger settings. console is off for the
// terminal UI.
func (c *Config) Logging(console bool) logging.Config {
	return logging.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Console:    console,
	}
}

// TracingConfig returns the tracer settings for the given build version.
func (c *Config) TracingConfig(version string) tracing.Config {
	return tracing.Config{
		Enabled:     c.Tracing.Enabled,
		ServiceName: "lembar",
		Version:     version,
		Endpoint:    c.Tracing.Endpoint,
		Insecure:    c.Tracing.Insecure,
		SampleRatio: c.Tracing.SampleRatio,
	}
}
