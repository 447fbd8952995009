package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
	"pdf-study-aid/pkg/metrics"
)

const rollbackTimeout = 5 * time.Second

// StudyService runs the flows and drives the study session workflow.
type StudyService struct {
	flows     domain.FlowRunner
	sessions  domain.SessionRepository
	validator *UploadValidator
	logger    domain.Logger
	locks     *sessionLocks
}

func NewStudyService(
	flows domain.FlowRunner,
	sessions domain.SessionRepository,
	validator *UploadValidator,
	logger domain.Logger,
) *StudyService {
	return &StudyService{
		flows:     flows,
		sessions:  sessions,
		validator: validator,
		logger:    logger,
		locks:     newSessionLocks(),
	}
}

// ValidateUpload checks size, type and readability of an uploaded PDF.
func (s *StudyService) ValidateUpload(upload domain.Upload) (*domain.Document, error) {
	doc, err := s.validator.Validate(upload)
	if err != nil {
		s.logger.Warn("Upload rejected", "filename", upload.Filename, "size", len(upload.Data), "reason", err.Error())
		return nil, err
	}
	return doc, nil
}

// Summarize validates the upload and runs the summarize flow.
func (s *StudyService) Summarize(ctx context.Context, upload domain.Upload, level domain.SummaryLevel) (*domain.SummarizeResult, error) {
	doc, err := s.ValidateUpload(upload)
	if err != nil {
		return nil, err
	}
	return s.summarizeDocument(ctx, doc, level)
}

func (s *StudyService) summarizeDocument(ctx context.Context, doc *domain.Document, level domain.SummaryLevel) (*domain.SummarizeResult, error) {
	s.logger.Info("Summarizing document", "title", doc.Title, "pages", doc.PageCount, "level", level)
	return s.flows.Summarize(ctx, domain.SummarizeRequest{
		PDFDataURI:   doc.DataURI(),
		SummaryLevel: level,
		Filename:     doc.Title,
	})
}

// SuggestQuestions returns follow-up questions for a summary.
func (s *StudyService) SuggestQuestions(ctx context.Context, summary string) ([]string, error) {
	result, err := s.flows.SuggestQuestions(ctx, domain.SuggestedQuestionsRequest{PDFSummary: summary})
	if err != nil {
		return nil, err
	}
	return result.SuggestedQuestions, nil
}

// Answer returns an answer to question grounded in summary.
func (s *StudyService) Answer(ctx context.Context, summary, question string) (string, error) {
	result, err := s.flows.Answer(ctx, domain.AnswerRequest{PDFSummary: summary, Question: question})
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

// Outline splits a summary for display.
func (s *StudyService) Outline(summary string) domain.SummaryOutline {
	return BuildOutline(summary)
}

// CreateSession starts a new session on the dashboard.
func (s *StudyService) CreateSession(ctx context.Context, userID string) (*domain.StudySession, error) {
	now := time.Now().UTC()
	session := &domain.StudySession{
		ID:                 uuid.New().String(),
		UserID:             userID,
		State:              domain.StateWelcome,
		Level:              domain.DefaultSummaryLevel,
		Messages:           []domain.ChatMessage{},
		SuggestedQuestions: []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := session.Transition(domain.StateDashboard); err != nil {
		return nil, apperrors.NewInternalError("Failed to create session", err)
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	metrics.SessionEvents.WithLabelValues("created").Inc()
	s.logger.Info("Study session created", "session_id", session.ID, "user_id", userID)
	return session, nil
}

// GetSession loads a session owned by userID.
func (s *StudyService) GetSession(ctx context.Context, userID, sessionID string) (*domain.StudySession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, apperrors.NewNotFoundError("Session not found")
		}
		return nil, apperrors.NewInternalError("Failed to load session", err)
	}
	if session.UserID != userID {
		s.logger.Warn("Session access denied", "session_id", sessionID, "user_id", userID)
		return nil, apperrors.NewForbiddenError(domain.ErrAccessDenied.Error())
	}
	return session, nil
}

// SummarizeDocument stores a new upload in the session and summarizes it.
// On failure the session returns to the upload screen.
func (s *StudyService) SummarizeDocument(ctx context.Context, userID, sessionID string, upload domain.Upload, level domain.SummaryLevel) (*domain.StudySession, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.recoverAbandoned(session)
	if !domain.CanTransition(session.State, domain.StateSummarizing) {
		return nil, transitionError(session.State, domain.StateSummarizing)
	}

	doc, err := s.ValidateUpload(upload)
	if err != nil {
		if session.State != domain.StateUpload && domain.CanTransition(session.State, domain.StateUpload) {
			_ = session.Transition(domain.StateUpload)
			s.saveDetached(ctx, session, "Failed to save session after rejected upload")
		}
		return nil, err
	}

	if err := session.Transition(domain.StateSummarizing); err != nil {
		return nil, transitionError(session.State, domain.StateSummarizing)
	}
	session.Document = doc
	session.Level = level
	session.Summary = ""
	session.Messages = []domain.ChatMessage{}
	session.SuggestedQuestions = []string{}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	result, err := s.summarizeDocument(ctx, doc, level)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("summarize_failed").Inc()
		s.logger.Error("Summarization failed", err, "session_id", sessionID, "title", doc.Title)
		_ = session.Transition(domain.StateUpload)
		s.saveDetached(ctx, session, "Failed to roll back session")
		return nil, err
	}

	session.Summary = result.Summary
	if err := session.Transition(domain.StateSummary); err != nil {
		return nil, apperrors.NewInternalError("Failed to update session", err)
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	metrics.SessionEvents.WithLabelValues("summarized").Inc()
	s.logger.Info("Document summarized", "session_id", sessionID, "level", level, "summary_chars", len(result.Summary))
	return session, nil
}

// ChangeLevel summarizes the stored document again at a different level.
// On failure the previous summary and state are kept.
func (s *StudyService) ChangeLevel(ctx context.Context, userID, sessionID string, level domain.SummaryLevel) (*domain.StudySession, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Document == nil || len(session.Document.Data) == 0 {
		return nil, apperrors.NewConflictError("Upload a PDF first", domain.ErrNoDocument)
	}

	s.recoverAbandoned(session)
	previous := session.State
	if err := session.Transition(domain.StateSummarizing); err != nil {
		return nil, transitionError(previous, domain.StateSummarizing)
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	result, err := s.summarizeDocument(ctx, session.Document, level)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("summarize_failed").Inc()
		s.logger.Error("Re-summarization failed", err, "session_id", sessionID, "level", level)
		restore := previous
		if session.Summary == "" {
			restore = domain.StateUpload
		}
		if terr := session.Transition(restore); terr != nil {
			_ = session.Transition(domain.StateUpload)
		}
		s.saveDetached(ctx, session, "Failed to roll back session")
		return nil, err
	}

	session.Level = level
	session.Summary = result.Summary
	session.Messages = []domain.ChatMessage{}
	session.SuggestedQuestions = []string{}
	if err := session.Transition(domain.StateSummary); err != nil {
		return nil, apperrors.NewInternalError("Failed to update session", err)
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	metrics.SessionEvents.WithLabelValues("level_changed").Inc()
	s.logger.Info("Summary level changed", "session_id", sessionID, "level", level)
	return session, nil
}

// StartChat opens the chat with an empty transcript and fresh suggestions.
// Failing to fetch suggestions leaves the list empty.
func (s *StudyService) StartChat(ctx context.Context, userID, sessionID string) (*domain.StudySession, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Summary == "" {
		return nil, apperrors.NewConflictError("Summarize a PDF before starting a chat", domain.ErrNoSummary)
	}
	if err := session.Transition(domain.StateChat); err != nil {
		return nil, transitionError(session.State, domain.StateChat)
	}

	session.Messages = []domain.ChatMessage{}
	session.SuggestedQuestions = []string{}
	questions, err := s.SuggestQuestions(ctx, session.Summary)
	if err != nil {
		s.logger.Error("Failed to get suggested questions", err, "session_id", sessionID)
	} else {
		session.SuggestedQuestions = questions
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	metrics.SessionEvents.WithLabelValues("chat_started").Inc()
	return session, nil
}

// SendMessage appends the question and the model's answer to the transcript.
// When answering fails the question stays in the transcript.
func (s *StudyService) SendMessage(ctx context.Context, userID, sessionID, question string) (*domain.StudySession, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, apperrors.NewValidationError("Question is required", "question")
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Summary == "" {
		return nil, apperrors.NewConflictError("Summarize a PDF before asking questions", domain.ErrNoSummary)
	}
	if err := session.Transition(domain.StateChat); err != nil {
		return nil, transitionError(session.State, domain.StateChat)
	}

	session.Messages = append(session.Messages, domain.ChatMessage{Role: domain.RoleUser, Content: question})
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	answer, err := s.Answer(ctx, session.Summary, question)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("answer_failed").Inc()
		s.logger.Error("Failed to answer question", err, "session_id", sessionID)
		return nil, err
	}

	session.Messages = append(session.Messages, domain.ChatMessage{Role: domain.RoleAssistant, Content: answer})
	session.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	metrics.SessionEvents.WithLabelValues("answered").Inc()
	return session, nil
}

// Navigate moves the session between the dashboard, upload and summary screens.
func (s *StudyService) Navigate(ctx context.Context, userID, sessionID string, to domain.SessionState) (*domain.StudySession, error) {
	if !to.Navigable() {
		return nil, apperrors.NewValidationError("Invalid target state", fmt.Sprintf("cannot navigate to %q", to))
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.recoverAbandoned(session)
	if to == domain.StateSummary && session.Summary == "" {
		return nil, apperrors.NewConflictError("Summarize a PDF first", domain.ErrNoSummary)
	}
	from := session.State
	if err := session.Transition(to); err != nil {
		return nil, transitionError(from, to)
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Debug("Session navigated", "session_id", sessionID, "from", from, "to", to)
	return session, nil
}

// DeleteSession discards a session and its document.
func (s *StudyService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperrors.NewInternalError("Failed to delete session", err)
	}
	metrics.SessionEvents.WithLabelValues("deleted").Inc()
	s.logger.Info("Study session deleted", "session_id", sessionID)
	return nil
}

// View builds the API representation of a session.
func (s *StudyService) View(session *domain.StudySession) *domain.SessionView {
	view := &domain.SessionView{
		ID:                 session.ID,
		State:              session.State,
		Title:              session.Title(),
		Level:              session.Level,
		Summary:            session.Summary,
		Messages:           session.Messages,
		SuggestedQuestions: session.SuggestedQuestions,
		UpdatedAt:          session.UpdatedAt,
	}
	if session.Document != nil {
		view.PageCount = session.Document.PageCount
	}
	if session.Summary != "" {
		outline := BuildOutline(session.Summary)
		view.Outline = &outline
	}
	if view.Messages == nil {
		view.Messages = []domain.ChatMessage{}
	}
	if view.SuggestedQuestions == nil {
		view.SuggestedQuestions = []string{}
	}
	return view
}

func (s *StudyService) save(ctx context.Context, session *domain.StudySession) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.Error("Failed to save session", err, "session_id", session.ID)
		return apperrors.NewInternalError("Failed to save session", err)
	}
	return nil
}

// saveDetached persists a rollback even when the request context is already canceled.
func (s *StudyService) saveDetached(ctx context.Context, session *domain.StudySession, failureMsg string) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if err := s.save(saveCtx, session); err != nil {
		s.logger.Error(failureMsg, err, "session_id", session.ID)
	}
}

// recoverAbandoned resets a session left in summarizing by a request that
// never finished. Callers hold the session lock, so no summarization for it is
// running in this process.
func (s *StudyService) recoverAbandoned(session *domain.StudySession) {
	if session.State != domain.StateSummarizing {
		return
	}
	target := domain.StateUpload
	if session.Summary != "" {
		target = domain.StateSummary
	}
	s.logger.Warn("Recovering abandoned summarization", "session_id", session.ID, "state", target)
	_ = session.Transition(target)
}

func transitionError(from, to domain.SessionState) error {
	return apperrors.NewConflictError(
		fmt.Sprintf("Cannot move from %s to %s", from, to),
		fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to),
	)
}

// sessionLocks serializes workflow operations per session id.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
