package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// SummaryLevel is the requested detail tier of a generated summary.
type SummaryLevel string

const (
	SummaryLevelBeginner     SummaryLevel = "Beginner"
	SummaryLevelIntermediate SummaryLevel = "Intermediate"
	SummaryLevelExpert       SummaryLevel = "Expert"
)

// DefaultSummaryLevel is preselected by the upload form.
const DefaultSummaryLevel = SummaryLevelBeginner

// SummaryLevels lists the tiers in ascending order of detail.
var SummaryLevels = []SummaryLevel{
	SummaryLevelBeginner,
	SummaryLevelIntermediate,
	SummaryLevelExpert,
}

// ParseSummaryLevel accepts a level name in any letter case.
// An empty string yields the default level.
func ParseSummaryLevel(raw string) (SummaryLevel, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSummaryLevel, nil
	}
	for _, level := range SummaryLevels {
		if strings.EqualFold(raw, string(level)) {
			return level, nil
		}
	}
	return "", &ValidationError{Field: "summaryLevel", Message: fmt.Sprintf("unknown summary level %q", raw)}
}

// Rank returns the ordinal position of the level (0 = Beginner).
func (l SummaryLevel) Rank() int {
	for i, level := range SummaryLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// Role tags the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single transcript entry.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Upload is a file received from the browser, before validation.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Document is a validated PDF held for the lifetime of a study session.
type Document struct {
	Title     string `json:"title"`
	Size      int64  `json:"size"`
	PageCount int    `json:"page_count"`
	Data      []byte `json:"data,omitempty"`
}

// DataURI encodes the document for transport to the AI provider.
func (d *Document) DataURI() string {
	return EncodePDFDataURI(d.Data)
}

const pdfMIMEType = "application/pdf"

// EncodePDFDataURI returns data:application/pdf;base64,<payload>.
func EncodePDFDataURI(data []byte) string {
	return "data:" + pdfMIMEType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURI splits a base64 data URI into its MIME type and raw bytes.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data URI has no payload")
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data URI must be base64 encoded")
	}
	if mimeType == "" {
		return "", nil, fmt.Errorf("data URI has no MIME type")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return mimeType, data, nil
}

// SummarizeRequest is the input of the summarize flow.
type SummarizeRequest struct {
	PDFDataURI   string       `json:"pdfDataUri"`
	SummaryLevel SummaryLevel `json:"summaryLevel"`
	Filename     string       `json:"-"`
}

// SummarizeResult is the output of the summarize flow.
type SummarizeResult struct {
	Summary string `json:"summary"`
}

// SuggestedQuestionsRequest is the input of the suggested-questions flow.
type SuggestedQuestionsRequest struct {
	PDFSummary string `json:"pdfSummary"`
}

// SuggestedQuestionsResult is the output of the suggested-questions flow.
type SuggestedQuestionsResult struct {
	SuggestedQuestions []string `json:"suggestedQuestions"`
}

// SuggestedQuestionCount is the number of questions the model is asked for.
const SuggestedQuestionCount = 5

// AnswerRequest is the input of the answer flow.
type AnswerRequest struct {
	PDFSummary string `json:"pdfSummary"`
	Question   string `json:"question"`
}

// AnswerResult is the output of the answer flow.
type AnswerResult struct {
	Answer string `json:"answer"`
}

// OutlineSection is one collapsible block of a rendered summary.
type OutlineSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SummaryOutline is the presentational split of a summary.
type SummaryOutline struct {
	TLDR     string           `json:"tldr"`
	Sections []OutlineSection `json:"sections"`
}
