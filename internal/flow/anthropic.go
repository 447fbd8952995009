package flow

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"pdf-study-aid/internal/domain"
)

// AnthropicGenerator calls Claude models through the Messages API.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
	logger domain.Logger
}

// NewAnthropicGenerator creates a client; baseURL is optional.
func NewAnthropicGenerator(apiKey, baseURL, model string, logger domain.Logger) (*AnthropicGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if endpoint := strings.TrimSpace(baseURL); endpoint != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(endpoint, "/")))
	}

	if model == "" {
		model = DefaultModel(ProviderAnthropic)
	}
	logger.Info("Anthropic client initialized", "model", model)

	return &AnthropicGenerator{client: anthropic.NewClient(opts...), model: model, logger: logger}, nil
}

// Name returns the provider name.
func (g *AnthropicGenerator) Name() string { return ProviderAnthropic }

// Generate sends the prompt with the optional PDF as a document block.
func (g *AnthropicGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	if req.Media != nil {
		if req.Media.MIMEType != "application/pdf" {
			return "", fmt.Errorf("anthropic documents must be application/pdf, got %s", req.Media.MIMEType)
		}
		blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
			Data: base64.StdEncoding.EncodeToString(req.Media.Data),
		}))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(req.maxTokens()),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*req.Temperature))
	}

	g.logger.Debug("Sending request to Anthropic", "flow", req.Flow, "model", g.model, "prompt_chars", len(req.Prompt))

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
