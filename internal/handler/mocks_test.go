package handler

import (
	"context"
	"net/http"
	"time"

	"pdf-study-aid/internal/domain"
)

func createContextWithUser(r *http.Request, user *domain.SupabaseUser) *http.Request {
	return withUser(r, user, "")
}

// MockStudyService records the last call and returns canned results.
type MockStudyService struct {
	summary     string
	questions   []string
	answer      string
	session     *domain.StudySession
	err         error
	lastUpload  domain.Upload
	lastLevel   domain.SummaryLevel
	lastSummary string
	lastUserID  string
	lastID      string
	lastText    string
	lastState   domain.SessionState
	deleted     bool
}

func NewMockStudyService() *MockStudyService {
	return &MockStudyService{
		session: &domain.StudySession{
			ID:        "session-1",
			State:     domain.StateDashboard,
			UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func (m *MockStudyService) ValidateUpload(upload domain.Upload) (*domain.Document, error) {
	m.lastUpload = upload
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{Title: upload.Filename, Size: int64(len(upload.Data)), Data: upload.Data}, nil
}

func (m *MockStudyService) Summarize(ctx context.Context, upload domain.Upload, level domain.SummaryLevel) (*domain.SummarizeResult, error) {
	m.lastUpload = upload
	m.lastLevel = level
	if m.err != nil {
		return nil, m.err
	}
	return &domain.SummarizeResult{Summary: m.summary}, nil
}

func (m *MockStudyService) SuggestQuestions(ctx context.Context, summary string) ([]string, error) {
	m.lastSummary = summary
	if m.err != nil {
		return nil, m.err
	}
	return m.questions, nil
}

func (m *MockStudyService) Answer(ctx context.Context, summary, question string) (string, error) {
	m.lastSummary = summary
	m.lastText = question
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *MockStudyService) Outline(summary string) domain.SummaryOutline {
	return domain.SummaryOutline{TLDR: summary, Sections: []domain.OutlineSection{}}
}

func (m *MockStudyService) CreateSession(ctx context.Context, userID string) (*domain.StudySession, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *MockStudyService) GetSession(ctx context.Context, userID, sessionID string) (*domain.StudySession, error) {
	m.lastUserID, m.lastID = userID, sessionID
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *MockStudyService) SummarizeDocument(ctx context.Context, userID, sessionID string, upload domain.Upload, level domain.SummaryLevel) (*domain.StudySession, error) {
	m.lastUserID, m.lastID = userID, sessionID
	m.lastUpload = upload
	m.lastLevel = level
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *MockStudyService) ChangeLevel(ctx context.Context, userID, sessionID string, level domain.SummaryLevel) (*domain.StudySession, error) {
	m.lastUserID, m.lastID = userID, sessionID
	m.lastLevel = level
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *MockStudyService) StartChat(ctx context.Context, userID, sessionID string) (*domain.StudySession, error) {
	m.lastUserID, m.lastID = userID, sessionID
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *MockStudyService) SendMessage(ctx context.Context, userID, sessionID, question string) (*domain.StudySession, error) {
	m.lastUserID, m.lastID = userID, sessionID
	m.lastText = question
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func (m *MockStudyService) Navigate(ctx context.Context, userID, sessionID string, to domain.SessionState) (*domain.StudySession, error) {
	m.lastUserID, m.lastID = userID, sessionID
	m.lastState = to
	if m.err != nil {
		return nil, m.err
	}
	m.session.State = to
	return m.session, nil
}

func (m *MockStudyService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	m.lastUserID, m.lastID = userID, sessionID
	if m.err != nil {
		return m.err
	}
	m.deleted = true
	return nil
}

func (m *MockStudyService) View(session *domain.StudySession) *domain.SessionView {
	return &domain.SessionView{
		ID:                 session.ID,
		State:              session.State,
		Title:              session.Title(),
		Level:              session.Level,
		Summary:            session.Summary,
		Messages:           []domain.ChatMessage{},
		SuggestedQuestions: []string{},
		UpdatedAt:          session.UpdatedAt,
	}
}
