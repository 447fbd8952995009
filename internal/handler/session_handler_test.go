package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
)

func withSession(r *http.Request, id string) *http.Request {
	r = createContextWithUser(r, &domain.SupabaseUser{ID: "user-1"})
	return mux.SetURLVars(r, map[string]string{"id": id})
}

func decodeView(t *testing.T, rr *httptest.ResponseRecorder) domain.SessionView {
	t.Helper()
	var view domain.SessionView
	if err := json.Unmarshal(rr.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return view
}

func TestSessionHandler_RequiresUser(t *testing.T) {
	handler := NewSessionHandler(NewMockStudyService(), NewMockHandlerLogger(), 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil)
	rr := httptest.NewRecorder()
	handler.CreateSession(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestSessionHandler_CreateSession(t *testing.T) {
	service := NewMockStudyService()
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := createContextWithUser(httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil), &domain.SupabaseUser{ID: "user-1"})
	rr := httptest.NewRecorder()
	handler.CreateSession(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
	}
	if service.lastUserID != "user-1" {
		t.Fatalf("expected user-1, got %s", service.lastUserID)
	}
	view := decodeView(t, rr)
	if view.ID != "session-1" || view.State != domain.StateDashboard {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestSessionHandler_GetSession_NotFound(t *testing.T) {
	service := NewMockStudyService()
	service.err = apperrors.NewNotFoundError("Session not found")
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/v1/sessions/missing", nil), "missing")
	rr := httptest.NewRecorder()
	handler.GetSession(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if service.lastID != "missing" {
		t.Fatalf("expected session id missing, got %s", service.lastID)
	}
}

func TestSessionHandler_Summarize(t *testing.T) {
	service := NewMockStudyService()
	service.session.State = domain.StateSummary
	service.session.Summary = "Summary"
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withSession(newMultipartRequest(t, "/api/v1/sessions/session-1/summary", "notes.pdf", samplePDF, "Beginner"), "session-1")
	rr := httptest.NewRecorder()
	handler.Summarize(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if service.lastUpload.Filename != "notes.pdf" || service.lastLevel != domain.SummaryLevelBeginner {
		t.Fatalf("unexpected upload %q at level %s", service.lastUpload.Filename, service.lastLevel)
	}
	if view := decodeView(t, rr); view.State != domain.StateSummary || view.Summary != "Summary" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestSessionHandler_ChangeLevel(t *testing.T) {
	service := NewMockStudyService()
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/summary/level", strings.NewReader(`{"summaryLevel":"Expert"}`)), "session-1")
	rr := httptest.NewRecorder()
	handler.ChangeLevel(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if service.lastLevel != domain.SummaryLevelExpert {
		t.Fatalf("expected level Expert, got %s", service.lastLevel)
	}
}

func TestSessionHandler_ChangeLevel_Invalid(t *testing.T) {
	handler := NewSessionHandler(NewMockStudyService(), NewMockHandlerLogger(), 1<<20)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/summary/level", strings.NewReader(`{"summaryLevel":"Guru"}`)), "session-1")
	rr := httptest.NewRecorder()
	handler.ChangeLevel(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestSessionHandler_ChangeLevel_NoDocument(t *testing.T) {
	service := NewMockStudyService()
	service.err = apperrors.NewConflictError("Upload a document first", domain.ErrNoDocument)
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/summary/level", strings.NewReader(`{"summaryLevel":"Expert"}`)), "session-1")
	rr := httptest.NewRecorder()
	handler.ChangeLevel(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rr.Code)
	}
}

func TestSessionHandler_StartChat(t *testing.T) {
	service := NewMockStudyService()
	service.session.State = domain.StateChat
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/chat", nil), "session-1")
	rr := httptest.NewRecorder()
	handler.StartChat(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if view := decodeView(t, rr); view.State != domain.StateChat {
		t.Fatalf("expected chat state, got %s", view.State)
	}
}

func TestSessionHandler_SendMessage(t *testing.T) {
	service := NewMockStudyService()
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/messages", strings.NewReader(`{"question":"What is covered?"}`)), "session-1")
	rr := httptest.NewRecorder()
	handler.SendMessage(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if service.lastText != "What is covered?" {
		t.Fatalf("expected question to be forwarded, got %q", service.lastText)
	}
}

func TestSessionHandler_SendMessage_ProviderFailure(t *testing.T) {
	service := NewMockStudyService()
	service.err = apperrors.NewProviderError("upstream 500", nil)
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/messages", strings.NewReader(`{"question":"Why?"}`)), "session-1")
	rr := httptest.NewRecorder()
	handler.SendMessage(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Failed to get an answer. Please try again.") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestSessionHandler_DeleteSession(t *testing.T) {
	service := NewMockStudyService()
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/session-1", nil), "session-1")
	rr := httptest.NewRecorder()
	handler.DeleteSession(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if !service.deleted {
		t.Fatalf("expected session to be deleted")
	}
}

func TestSessionHandler_Navigate(t *testing.T) {
	service := NewMockStudyService()
	handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/state", strings.NewReader(`{"state":"upload"}`)), "session-1")
	rr := httptest.NewRecorder()
	handler.Navigate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if service.lastState != domain.StateUpload || service.lastID != "session-1" {
		t.Fatalf("unexpected navigate call: state=%s id=%s", service.lastState, service.lastID)
	}
	if view := decodeView(t, rr); view.State != domain.StateUpload {
		t.Fatalf("expected upload view, got %s", view.State)
	}
}

func TestSessionHandler_Navigate_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid target", apperrors.NewValidationError("Invalid target state"), http.StatusBadRequest},
		{"no summary", apperrors.NewConflictError("Summarize a PDF first", domain.ErrNoSummary), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewMockStudyService()
			service.err = tt.err
			handler := NewSessionHandler(service, NewMockHandlerLogger(), 1<<20)

			req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/sessions/session-1/state", strings.NewReader(`{"state":"chat"}`)), "session-1")
			rr := httptest.NewRecorder()
			handler.Navigate(rr, req)

			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rr.Code)
			}
		})
	}
}
