package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
)

// SessionHandler drives the upload, summary and chat workflow of a study session.
type SessionHandler struct {
	studyService domain.StudyService
	logger       domain.Logger
	maxFileSize  int64
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(studyService domain.StudyService, logger domain.Logger, maxFileSize int64) *SessionHandler {
	return &SessionHandler{
		studyService: studyService,
		logger:       logger,
		maxFileSize:  maxFileSize,
	}
}

func (h *SessionHandler) requestContext(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	user, ok := GetUserFromContext(r)
	if !ok {
		writeAppError(w, h.logger, apperrors.NewUnauthorizedError("User not found in context"), "User not found in context")
		return "", "", false
	}
	sessionID := mux.Vars(r)["id"]
	return user.ID, sessionID, true
}

func (h *SessionHandler) respond(w http.ResponseWriter, status int, session *domain.StudySession) {
	writeJSON(w, status, h.studyService.View(session))
}

// CreateSession starts a new session on the dashboard.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	session, err := h.studyService.CreateSession(r.Context(), userID)
	if err != nil {
		writeAppError(w, h.logger, err, "Failed to create session")
		return
	}
	h.respond(w, http.StatusCreated, session)
}

// GetSession returns the current state of a session.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	session, err := h.studyService.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		writeAppError(w, h.logger, err, "Failed to load session")
		return
	}
	h.respond(w, http.StatusOK, session)
}

// Summarize uploads a PDF into the session and summarizes it.
func (h *SessionHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	upload, level, err := readUpload(w, r, h.maxFileSize)
	if err != nil {
		writeAppError(w, h.logger, err, "Invalid upload")
		return
	}

	session, err := h.studyService.SummarizeDocument(r.Context(), userID, sessionID, upload, level)
	if err != nil {
		writeAppError(w, h.logger, err, "Summarization failed. Please try again.")
		return
	}
	h.respond(w, http.StatusOK, session)
}

type changeLevelRequest struct {
	SummaryLevel string `json:"summaryLevel"`
}

// ChangeLevel summarizes the stored document again at another level.
func (h *SessionHandler) ChangeLevel(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	var req changeLevelRequest
	if err := decodeJSON(w, r, &req, maxJSONBodySize); err != nil {
		writeAppError(w, h.logger, err, "Invalid request body")
		return
	}
	level, err := parseLevel(req.SummaryLevel)
	if err != nil {
		writeAppError(w, h.logger, err, "Invalid summary level")
		return
	}

	session, err := h.studyService.ChangeLevel(r.Context(), userID, sessionID, level)
	if err != nil {
		writeAppError(w, h.logger, err, "Summarization failed. Please try again.")
		return
	}
	h.respond(w, http.StatusOK, session)
}

// StartChat opens the chat view and fetches suggested questions.
func (h *SessionHandler) StartChat(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	session, err := h.studyService.StartChat(r.Context(), userID, sessionID)
	if err != nil {
		writeAppError(w, h.logger, err, "Failed to start chat")
		return
	}
	h.respond(w, http.StatusOK, session)
}

type sendMessageRequest struct {
	Question string `json:"question"`
}

// SendMessage asks a question and appends the answer to the transcript.
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(w, r, &req, maxJSONBodySize); err != nil {
		writeAppError(w, h.logger, err, "Invalid request body")
		return
	}

	session, err := h.studyService.SendMessage(r.Context(), userID, sessionID, req.Question)
	if err != nil {
		writeAppError(w, h.logger, err, "Failed to get an answer. Please try again.")
		return
	}
	h.respond(w, http.StatusOK, session)
}

type navigateRequest struct {
	State string `json:"state"`
}

// Navigate moves the session to another screen.
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	var req navigateRequest
	if err := decodeJSON(w, r, &req, maxJSONBodySize); err != nil {
		writeAppError(w, h.logger, err, "Invalid request body")
		return
	}

	session, err := h.studyService.Navigate(r.Context(), userID, sessionID, domain.SessionState(req.State))
	if err != nil {
		writeAppError(w, h.logger, err, "Failed to change screen")
		return
	}
	h.respond(w, http.StatusOK, session)
}

// DeleteSession discards a session.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.requestContext(w, r)
	if !ok {
		return
	}

	if err := h.studyService.DeleteSession(r.Context(), userID, sessionID); err != nil {
		writeAppError(w, h.logger, err, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
