package domain

import (
	"context"
	"time"
)

// FlowRunner executes the three prompt-templated model calls.
type FlowRunner interface {
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error)
	SuggestQuestions(ctx context.Context, req SuggestedQuestionsRequest) (*SuggestedQuestionsResult, error)
	Answer(ctx context.Context, req AnswerRequest) (*AnswerResult, error)
}

// PDFInspector checks that uploaded bytes are a readable PDF.
type PDFInspector interface {
	PageCount(data []byte) (int, error)
}

// StudyService defines the use-case operations behind the UI.
type StudyService interface {
	ValidateUpload(upload Upload) (*Document, error)

	// Stateless flows.
	Summarize(ctx context.Context, upload Upload, level SummaryLevel) (*SummarizeResult, error)
	SuggestQuestions(ctx context.Context, summary string) ([]string, error)
	Answer(ctx context.Context, summary, question string) (string, error)
	Outline(summary string) SummaryOutline

	// Session workflow.
	CreateSession(ctx context.Context, userID string) (*StudySession, error)
	GetSession(ctx context.Context, userID, sessionID string) (*StudySession, error)
	SummarizeDocument(ctx context.Context, userID, sessionID string, upload Upload, level SummaryLevel) (*StudySession, error)
	ChangeLevel(ctx context.Context, userID, sessionID string, level SummaryLevel) (*StudySession, error)
	StartChat(ctx context.Context, userID, sessionID string) (*StudySession, error)
	SendMessage(ctx context.Context, userID, sessionID, question string) (*StudySession, error)
	Navigate(ctx context.Context, userID, sessionID string, to SessionState) (*StudySession, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error
	View(session *StudySession) *SessionView
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetLogFormat() string

	GetAIProvider() string
	GetAIModel() string
	GetAITimeout() time.Duration
	GetGCPProjectID() string
	GetGCPLocation() string
	GetAnthropicAPIKey() string
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string

	GetSessionStore() string
	GetSessionTTL() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int

	GetSupabaseURL() string
	GetSupabaseKey() string
	GetRequireAuth() bool

	GetRateLimitRPS() float64
	GetRateLimitBurst() int
	GetTrustProxy() bool
	GetCORSAllowedOrigins() []string
}
