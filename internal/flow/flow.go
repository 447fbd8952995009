package flow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
	"pdf-study-aid/pkg/metrics"
)

// Flow names reported to the provider, logs and metrics.
const (
	SummarizeFlowName          = "summarizePdfFlow"
	SuggestedQuestionsFlowName = "generateSuggestedQuestionsFlow"
	AnswerFlowName             = "answerQuestionsAboutPdfFlow"
)

var errEmptyReply = errors.New("model returned an empty reply")

// Flow is a named prompt template paired with an output schema.
type Flow[In, Out any] struct {
	Name string

	prompt *template.Template
	output *outputSchema
	config flowConfig
	media  func(In) (*Media, error)
}

// flowConfig holds the per-flow generation settings sent to the provider.
type flowConfig struct {
	system      string
	temperature float32
	maxTokens   int
	// instructSchema appends the JSON schema to the rendered prompt.
	instructSchema bool
}

func newFlow[In, Out any](name, prompt string, output *outputSchema, config flowConfig, media func(In) (*Media, error)) *Flow[In, Out] {
	return &Flow[In, Out]{
		Name:   name,
		prompt: template.Must(template.New(name).Option("missingkey=error").Parse(prompt)),
		output: output,
		config: config,
		media:  media,
	}
}

// Render executes the prompt template against in.
func (f *Flow[In, Out]) Render(in In) (string, error) {
	var buf bytes.Buffer
	if err := f.prompt.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", f.Name, err)
	}
	if f.config.instructSchema {
		fmt.Fprintf(&buf, outputInstruction, f.output.text)
	}
	return buf.String(), nil
}

// Run renders the prompt, calls the generator once and decodes the reply.
func (f *Flow[In, Out]) Run(ctx context.Context, gen Generator, in In) (*Out, error) {
	prompt, err := f.Render(in)
	if err != nil {
		return nil, err
	}

	temperature := f.config.temperature
	req := GenerateRequest{
		Flow:        f.Name,
		System:      f.config.system,
		Prompt:      prompt,
		JSONOutput:  true,
		Temperature: &temperature,
		MaxTokens:   f.config.maxTokens,
	}
	if f.media != nil {
		media, err := f.media(in)
		if err != nil {
			return nil, err
		}
		req.Media = media
	}

	raw, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var out Out
	if err := f.output.decode(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type summarizeInput struct {
	PDFDataURI   string
	SummaryLevel domain.SummaryLevel
	Filename     string
}

type suggestedQuestionsInput struct {
	PDFSummary string
	Count      int
}

type answerInput struct {
	PDFSummary string
	Question   string
}

// Flows used by Runner.
var (
	SummarizeFlow = newFlow[summarizeInput, domain.SummarizeResult](
		SummarizeFlowName, summarizePrompt,
		mustOutputSchema(summarizeOutputSchema, "", "summary"),
		flowConfig{system: summarizeSystem, temperature: 0.3, maxTokens: 4096, instructSchema: true},
		documentMedia,
	)
	SuggestedQuestionsFlow = newFlow[suggestedQuestionsInput, domain.SuggestedQuestionsResult](
		SuggestedQuestionsFlowName, suggestedQuestionsPrompt,
		mustOutputSchema(suggestedQuestionsOutputSchema, "suggestedQuestions", ""),
		flowConfig{system: suggestedQuestionsSystem, temperature: 0.7, maxTokens: 1024},
		nil,
	)
	AnswerFlow = newFlow[answerInput, domain.AnswerResult](
		AnswerFlowName, answerPrompt,
		mustOutputSchema(answerOutputSchema, "", "answer"),
		flowConfig{system: answerSystem, temperature: 0.2, maxTokens: 2048, instructSchema: true},
		nil,
	)
)

func documentMedia(in summarizeInput) (*Media, error) {
	mimeType, data, err := domain.DecodeDataURI(in.PDFDataURI)
	if err != nil {
		return nil, &domain.ValidationError{Field: "pdfDataUri", Message: err.Error()}
	}
	if len(data) == 0 {
		return nil, &domain.ValidationError{Field: "pdfDataUri", Message: "document is empty"}
	}
	return &Media{MIMEType: mimeType, Data: data, Filename: in.Filename}, nil
}

// Runner implements domain.FlowRunner on top of a single Generator.
type Runner struct {
	generator Generator
	logger    domain.Logger
	timeout   time.Duration
}

// NewRunner creates a runner; a zero timeout leaves the caller's deadline untouched.
func NewRunner(generator Generator, logger domain.Logger, timeout time.Duration) *Runner {
	return &Runner{generator: generator, logger: logger, timeout: timeout}
}

// Summarize produces a summary of the document at the requested level.
func (r *Runner) Summarize(ctx context.Context, req domain.SummarizeRequest) (*domain.SummarizeResult, error) {
	if strings.TrimSpace(req.PDFDataURI) == "" {
		return nil, apperrors.NewValidationError("PDF document is required", "pdfDataUri")
	}
	level, err := domain.ParseSummaryLevel(string(req.SummaryLevel))
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid summary level", err.Error())
	}

	in := summarizeInput{PDFDataURI: req.PDFDataURI, SummaryLevel: level, Filename: req.Filename}
	out, err := run(ctx, r, SummarizeFlow, in)
	if err != nil {
		return nil, err
	}

	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return nil, apperrors.NewProviderError("Failed to generate summary", domain.ErrEmptyOutput)
	}
	return out, nil
}

// SuggestQuestions asks for follow-up questions about a summary.
// Blank entries are dropped; the model's order and duplicates are kept.
func (r *Runner) SuggestQuestions(ctx context.Context, req domain.SuggestedQuestionsRequest) (*domain.SuggestedQuestionsResult, error) {
	if strings.TrimSpace(req.PDFSummary) == "" {
		return nil, apperrors.NewValidationError("PDF summary is required", "pdfSummary")
	}

	in := suggestedQuestionsInput{PDFSummary: req.PDFSummary, Count: domain.SuggestedQuestionCount}
	out, err := run(ctx, r, SuggestedQuestionsFlow, in)
	if err != nil {
		return nil, err
	}

	questions := make([]string, 0, len(out.SuggestedQuestions))
	for _, q := range out.SuggestedQuestions {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	out.SuggestedQuestions = questions
	return out, nil
}

// Answer responds to a question using the summary as its only context.
func (r *Runner) Answer(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error) {
	if strings.TrimSpace(req.PDFSummary) == "" {
		return nil, apperrors.NewValidationError("PDF summary is required", "pdfSummary")
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, apperrors.NewValidationError("Question is required", "question")
	}

	in := answerInput{PDFSummary: req.PDFSummary, Question: strings.TrimSpace(req.Question)}
	out, err := run(ctx, r, AnswerFlow, in)
	if err != nil {
		return nil, err
	}

	out.Answer = strings.TrimSpace(out.Answer)
	if out.Answer == "" {
		return nil, apperrors.NewProviderError("Failed to generate answer", domain.ErrEmptyOutput)
	}
	return out, nil
}

func run[In, Out any](ctx context.Context, r *Runner, f *Flow[In, Out], in In) (*Out, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	provider := r.generator.Name()
	start := time.Now()
	out, err := f.Run(ctx, r.generator, in)
	metrics.FlowDuration.WithLabelValues(f.Name, provider).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FlowRequests.WithLabelValues(f.Name, provider, "error").Inc()
		r.logger.Error("Flow failed", err, "flow", f.Name, "provider", provider, "duration", time.Since(start).String())
		return nil, classify(f.Name, err)
	}

	metrics.FlowRequests.WithLabelValues(f.Name, provider, "ok").Inc()
	r.logger.Info("Flow completed", "flow", f.Name, "provider", provider, "duration", time.Since(start).String())
	return out, nil
}

func classify(flowName string, err error) error {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return apperrors.NewValidationError(validationErr.Message, validationErr.Field)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewNetworkError(fmt.Sprintf("%s timed out", flowName), err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewNetworkError(fmt.Sprintf("%s was canceled", flowName), err)
	default:
		return apperrors.NewProviderError(fmt.Sprintf("%s failed", flowName), err)
	}
}
