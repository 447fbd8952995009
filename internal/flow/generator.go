// Package flow holds the prompt-templated model calls and the providers that serve them.
package flow

import (
	"context"
	"fmt"
	"strings"
)

// Generator sends one prompt to a hosted model and returns its raw text reply.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest is a provider-neutral model call.
type GenerateRequest struct {
	Flow        string
	System      string
	Prompt      string
	Media       *Media
	JSONOutput  bool
	Temperature *float32
	MaxTokens   int
}

// Media is an inline document attached ahead of the prompt text.
type Media struct {
	MIMEType string
	Data     []byte
	Filename string
}

const defaultMaxTokens = 4096

func (r GenerateRequest) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return defaultMaxTokens
}

// Provider names accepted by AI_PROVIDER.
const (
	ProviderVertex    = "vertex"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// NormalizeProvider maps aliases such as "gemini" or "Google_AI" to a provider name.
func NormalizeProvider(raw string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	switch t {
	case "", "vertex", "vertexai", "vertex-ai", "gemini", "google", "googleai", "google-ai":
		return ProviderVertex, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "openai", "openai-compatible":
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unsupported AI provider %q", raw)
	}
}

// DefaultModel returns the model used when AI_MODEL is unset.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-haiku-4-5-20251001"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "gemini-2.0-flash-001"
	}
}
