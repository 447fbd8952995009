package flow

import (
	"context"

	"pdf-study-aid/internal/domain"
)

// NewGenerator builds the Generator selected by AI_PROVIDER.
func NewGenerator(ctx context.Context, cfg domain.Config, logger domain.Logger) (Generator, error) {
	provider, err := NormalizeProvider(cfg.GetAIProvider())
	if err != nil {
		return nil, err
	}

	model := cfg.GetAIModel()
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicGenerator(cfg.GetAnthropicAPIKey(), "", model, logger)
	case ProviderOpenAI:
		return NewOpenAIGenerator(cfg.GetOpenAIAPIKey(), cfg.GetOpenAIBaseURL(), model, logger)
	default:
		return NewVertexGenerator(ctx, cfg.GetGCPProjectID(), cfg.GetGCPLocation(), model, logger)
	}
}
