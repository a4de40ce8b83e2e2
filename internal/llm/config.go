package llm

import (
	"fmt"
	"time"
)

// Config holds provider configuration for both the text model and the
// image model.
type Config struct {
	// Provider selects the text provider.
	// Values: "gemini", "openai", "anthropic", "openrouter", "mock".
	// Empty means pick the first provider whose API key is set.
	Provider string

	// ImageProvider selects the image provider.
	// Values: "gemini", "openai", "mock". Empty follows the same
	// discovery as Provider, restricted to image-capable providers.
	ImageProvider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Timeout bounds a single HTTP exchange with a provider. It is
	// applied at the transport, not around the call.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional. Used by tests.
	Timeout time.Duration
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey     string
	Model      string // Default: "gpt-4o-mini"
	ImageModel string // Default: "gpt-image"
	BaseURL    string // Optional. Override for compatible APIs.
	Timeout    time.Duration

	// Headers are sent with every request. OpenRouter uses them for
	// app attribution.
	Headers map[string]string
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey     string
	Model      string // Default: "gemini-flash"
	ImageModel string // Default: "gemini-image"
	BaseURL    string // Optional. Used by tests.
	Timeout    time.Duration
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.5-flash"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
	Referer string // Optional. Sent as HTTP-Referer for app attribution.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:      "gemini",
		ImageProvider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model:      "gpt-4o-mini",
			ImageModel: "gpt-image",
		},
		Gemini: GeminiConfig{
			Model:      "gemini-flash",
			ImageModel: "gemini-image",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Timeout: 2 * time.Minute,
	}
}

// Resolve fills an empty Provider or ImageProvider by probing API keys
// in priority order (Gemini, OpenAI, Anthropic, OpenRouter) and pushes
// the shared Timeout down to each provider section.
func (c Config) Resolve() Config {
	if c.Provider == "" {
		switch {
		case c.Gemini.APIKey != "":
			c.Provider = "gemini"
		case c.OpenAI.APIKey != "":
			c.Provider = "openai"
		case c.Anthropic.APIKey != "":
			c.Provider = "anthropic"
		case c.OpenRouter.APIKey != "":
			c.Provider = "openrouter"
		default:
			c.Provider = "gemini"
		}
	}
	if c.ImageProvider == "" {
		switch {
		case c.Gemini.APIKey != "":
			c.ImageProvider = "gemini"
		case c.OpenAI.APIKey != "":
			c.ImageProvider = "openai"
		default:
			c.ImageProvider = "gemini"
		}
	}
	for _, t := range []*time.Duration{&c.Anthropic.Timeout, &c.OpenAI.Timeout, &c.Gemini.Timeout, &c.OpenRouter.Timeout} {
		if *t == 0 {
			*t = c.Timeout
		}
	}
	return c
}

// Validate checks that both selected providers are known and have
// their API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}

	switch c.ImageProvider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini image provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai image provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown image provider: %q", c.ImageProvider)
	}
	return nil
}
