package llm

import "fmt"

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "google/gemini-2.5-flash"

	// openRouterTitle names the application on OpenRouter's usage pages.
	openRouterTitle = "Lembar"
)

// OpenRouterProvider reaches many text models through OpenRouter's
// OpenAI-compatible API. Model IDs are passed through unchanged
// ("vendor/model"). It is text-only; illustrations need Gemini or OpenAI.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenRouterModel
	}

	headers := map[string]string{"X-Title": openRouterTitle}
	if cfg.Referer != "" {
		headers["HTTP-Referer"] = cfg.Referer
	}

	inner, err := NewOpenAIProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   model,
		BaseURL: baseURL,
		Timeout: cfg.Timeout,
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}

	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
