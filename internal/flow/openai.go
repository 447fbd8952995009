package flow

import (
	"context"
	"encoding/base64"
	"fmt"
	neturl "net/url"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"pdf-study-aid/internal/domain"
)

// OpenAIGenerator calls OpenAI or an OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	logger domain.Logger
}

// NewOpenAIGenerator creates a client; baseURL is optional and gets a /v1 suffix when missing.
func NewOpenAIGenerator(apiKey, baseURL, model string, logger domain.Logger) (*OpenAIGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(baseURL); normalized != "" {
		opts = append(opts, option.WithBaseURL(normalized))
	}

	if model == "" {
		model = DefaultModel(ProviderOpenAI)
	}
	logger.Info("OpenAI client initialized", "model", model, "base_url", baseURL)

	return &OpenAIGenerator{client: openai.NewClient(opts...), model: model, logger: logger}, nil
}

// Name returns the provider name.
func (g *OpenAIGenerator) Name() string { return ProviderOpenAI }

// Generate sends the prompt with the optional document as a file content part.
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, 2)
	if req.Media != nil {
		filename := req.Media.Filename
		if filename == "" {
			filename = "document.pdf"
		}
		dataURI := "data:" + req.Media.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(req.Media.Data)
		parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
			FileData: openai.String(dataURI),
			Filename: openai.String(filename),
		}))
	}
	parts = append(parts, openai.TextContentPart(req.Prompt))

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(parts))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(g.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(req.maxTokens())),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Temperature))
	}

	g.logger.Debug("Sending request to OpenAI", "flow", req.Flow, "model", g.model, "prompt_chars", len(req.Prompt))

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completions: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
