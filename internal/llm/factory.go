package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/store"
)

// NewProvider creates the text Provider selected by cfg, wrapped with
// event logging. Calls are never retried.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithLogging(base, cfg.Provider, eventRepo, logger), nil
}

// NewImageProvider creates the ImageProvider selected by cfg, wrapped
// with event logging.
func NewImageProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *zap.Logger) (ImageProvider, error) {
	var base ImageProvider
	var err error

	switch cfg.ImageProvider {
	case "gemini":
		base, err = NewGeminiImageProvider(ctx, cfg.Gemini)
	case "openai":
		base, err = NewOpenAIImageProvider(cfg.OpenAI)
	case "mock":
		base = NewMockImageProvider()
	default:
		return nil, fmt.Errorf("unknown image provider: %q", cfg.ImageProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s image provider: %w", cfg.ImageProvider, err)
	}

	return WithImageLogging(base, cfg.ImageProvider, eventRepo, logger), nil
}
