package service

import (
	"context"
	"errors"
	"sync"

	"pdf-study-aid/internal/domain"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) record(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.record("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err == nil {
		m.record("ERROR: " + msg)
		return
	}
	m.record("ERROR: " + msg + " - " + err.Error())
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.record("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.record("WARN: " + msg)
}

// MockSupabaseClient for testing
type MockSupabaseClient struct {
	calls int
}

func NewMockSupabaseClient() *MockSupabaseClient {
	return &MockSupabaseClient{}
}

func (m *MockSupabaseClient) Initialize() error {
	return nil
}

func (m *MockSupabaseClient) ValidateToken(token string) (*domain.SupabaseUser, error) {
	m.calls++
	if token == "valid-token" {
		return &domain.SupabaseUser{
			ID:    "user-123",
			Email: "test@example.com",
		}, nil
	}
	if token == "invalid-token" {
		return nil, errors.New("invalid token")
	}
	return nil, errors.New("token validation failed")
}

// MockFlowRunner returns canned flow results.
type MockFlowRunner struct {
	summary      string
	summarizeErr error
	questions    []string
	suggestErr   error
	answer       string
	answerErr    error

	summarizeCalls []domain.SummarizeRequest
	answerCalls    []domain.AnswerRequest
}

func (m *MockFlowRunner) Summarize(ctx context.Context, req domain.SummarizeRequest) (*domain.SummarizeResult, error) {
	m.summarizeCalls = append(m.summarizeCalls, req)
	if m.summarizeErr != nil {
		return nil, m.summarizeErr
	}
	return &domain.SummarizeResult{Summary: m.summary}, nil
}

func (m *MockFlowRunner) SuggestQuestions(ctx context.Context, req domain.SuggestedQuestionsRequest) (*domain.SuggestedQuestionsResult, error) {
	if m.suggestErr != nil {
		return nil, m.suggestErr
	}
	return &domain.SuggestedQuestionsResult{SuggestedQuestions: m.questions}, nil
}

func (m *MockFlowRunner) Answer(ctx context.Context, req domain.AnswerRequest) (*domain.AnswerResult, error) {
	m.answerCalls = append(m.answerCalls, req)
	if m.answerErr != nil {
		return nil, m.answerErr
	}
	return &domain.AnswerResult{Answer: m.answer}, nil
}

// MockPDFInspector reports a fixed page count for any input.
type MockPDFInspector struct {
	pages int
	err   error
}

func (m *MockPDFInspector) PageCount(data []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.pages, nil
}

// MockSessionRepository keeps sessions in a map.
type MockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]domain.StudySession
	saveErr  error
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]domain.StudySession)}
}

func (m *MockSessionRepository) Save(ctx context.Context, session *domain.StudySession) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	copied.Messages = append([]domain.ChatMessage(nil), session.Messages...)
	copied.SuggestedQuestions = append([]string(nil), session.SuggestedQuestions...)
	m.sessions[session.ID] = copied
	return nil
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*domain.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
