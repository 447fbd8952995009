package flow

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"pdf-study-aid/internal/domain"
)

// VertexGenerator calls Gemini models on Vertex AI.
type VertexGenerator struct {
	client *genai.Client
	model  string
	logger domain.Logger
}

// NewVertexGenerator creates a Vertex AI client for the given project and location.
func NewVertexGenerator(ctx context.Context, projectID, location, model string, logger domain.Logger) (*VertexGenerator, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID and GCP_LOCATION are required for the vertex provider")
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	if model == "" {
		model = DefaultModel(ProviderVertex)
	}
	logger.Info("Vertex AI client initialized", "project", projectID, "location", location, "model", model)

	return &VertexGenerator{client: client, model: model, logger: logger}, nil
}

// Name returns the provider name.
func (g *VertexGenerator) Name() string { return ProviderVertex }

// Generate sends the prompt with the optional document as an inline blob.
func (g *VertexGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if req.JSONOutput {
		model.GenerationConfig.ResponseMIMEType = "application/json"
	}
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	model.SetMaxOutputTokens(int32(req.maxTokens()))

	parts := make([]genai.Part, 0, 2)
	if req.Media != nil {
		parts = append(parts, genai.Blob{MIMEType: req.Media.MIMEType, Data: req.Media.Data})
	}
	parts = append(parts, genai.Text(req.Prompt))

	g.logger.Debug("Sending request to Vertex AI", "flow", req.Flow, "model", g.model, "prompt_chars", len(req.Prompt))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}
	return vertexText(resp), nil
}

// Close releases the underlying gRPC connection.
func (g *VertexGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func vertexText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
