package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
)

var samplePDF = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n%%EOF\n")

func newMultipartRequest(t *testing.T, target, filename string, data []byte, level string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if level != "" {
		if err := writer.WriteField("summaryLevel", level); err != nil {
			t.Fatalf("failed to write field: %v", err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestFlowHandler_Summarize_Multipart(t *testing.T) {
	service := NewMockStudyService()
	service.summary = "Short overview"
	handler := NewFlowHandler(service, NewMockHandlerLogger(), 1<<20)

	req := newMultipartRequest(t, "/api/v1/flows/summarize", "paper.pdf", samplePDF, "expert")
	rr := httptest.NewRecorder()
	handler.Summarize(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if service.lastLevel != domain.SummaryLevelExpert {
		t.Fatalf("expected level Expert, got %s", service.lastLevel)
	}
	if service.lastUpload.Filename != "paper.pdf" || !bytes.Equal(service.lastUpload.Data, samplePDF) {
		t.Fatalf("unexpected upload: %s (%d bytes)", service.lastUpload.Filename, len(service.lastUpload.Data))
	}

	var payload summarizeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Summary != "Short overview" || payload.Outline == nil || payload.Outline.TLDR != "Short overview" {
		t.Fatalf("unexpected response: %+v", payload)
	}
}

func TestFlowHandler_Summarize_DataURI(t *testing.T) {
	service := NewMockStudyService()
	service.summary = "From JSON"
	handler := NewFlowHandler(service, NewMockHandlerLogger(), 1<<20)

	body, _ := json.Marshal(map[string]string{
		"pdfDataUri":   domain.EncodePDFDataURI(samplePDF),
		"summaryLevel": "Intermediate",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flows/summarize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.Summarize(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if service.lastUpload.ContentType != "application/pdf" || !bytes.Equal(service.lastUpload.Data, samplePDF) {
		t.Fatalf("unexpected upload: %+v", service.lastUpload.ContentType)
	}
	if service.lastLevel != domain.SummaryLevelIntermediate {
		t.Fatalf("expected level Intermediate, got %s", service.lastLevel)
	}
}

func TestFlowHandler_Summarize_MissingFile(t *testing.T) {
	handler := NewFlowHandler(NewMockStudyService(), NewMockHandlerLogger(), 1<<20)

	req := newMultipartRequest(t, "/api/v1/flows/summarize", "", nil, "Beginner")
	rr := httptest.NewRecorder()
	handler.Summarize(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Please select a PDF file") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestFlowHandler_Summarize_InvalidLevel(t *testing.T) {
	handler := NewFlowHandler(NewMockStudyService(), NewMockHandlerLogger(), 1<<20)

	req := newMultipartRequest(t, "/api/v1/flows/summarize", "paper.pdf", samplePDF, "Wizard")
	rr := httptest.NewRecorder()
	handler.Summarize(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestFlowHandler_Summarize_TooLarge(t *testing.T) {
	handler := NewFlowHandler(NewMockStudyService(), NewMockHandlerLogger(), 16)

	big := bytes.Repeat([]byte("a"), multipartOverhead+64)
	req := newMultipartRequest(t, "/api/v1/flows/summarize", "big.pdf", big, "Beginner")
	rr := httptest.NewRecorder()
	handler.Summarize(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "File too large") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestFlowHandler_Summarize_ProviderFailure(t *testing.T) {
	service := NewMockStudyService()
	service.err = apperrors.NewProviderError("vertex: quota", errors.New("429"))
	handler := NewFlowHandler(service, NewMockHandlerLogger(), 1<<20)

	req := newMultipartRequest(t, "/api/v1/flows/summarize", "paper.pdf", samplePDF, "Beginner")
	rr := httptest.NewRecorder()
	handler.Summarize(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Summarization failed. Please try again.") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestFlowHandler_SuggestedQuestions(t *testing.T) {
	service := NewMockStudyService()
	service.questions = []string{"What is it?", "Why?"}
	handler := NewFlowHandler(service, NewMockHandlerLogger(), 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flows/suggested-questions", strings.NewReader(`{"pdfSummary":"A summary"}`))
	rr := httptest.NewRecorder()
	handler.SuggestedQuestions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if service.lastSummary != "A summary" {
		t.Fatalf("expected summary to be forwarded, got %q", service.lastSummary)
	}
	var payload domain.SuggestedQuestionsResult
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.SuggestedQuestions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(payload.SuggestedQuestions))
	}
}

func TestFlowHandler_SuggestedQuestions_EmptyListIsArray(t *testing.T) {
	handler := NewFlowHandler(NewMockStudyService(), NewMockHandlerLogger(), 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flows/suggested-questions", strings.NewReader(`{"pdfSummary":"A summary"}`))
	rr := httptest.NewRecorder()
	handler.SuggestedQuestions(rr, req)

	if strings.TrimSpace(rr.Body.String()) != `{"suggestedQuestions":[]}` {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}

func TestFlowHandler_Answer(t *testing.T) {
	service := NewMockStudyService()
	service.answer = "Because."
	handler := NewFlowHandler(service, NewMockHandlerLogger(), 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flows/answer", strings.NewReader(`{"pdfSummary":"S","question":"Why?"}`))
	rr := httptest.NewRecorder()
	handler.Answer(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != `{"answer":"Because."}` {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
	if service.lastText != "Why?" {
		t.Fatalf("expected question to be forwarded, got %q", service.lastText)
	}
}

func TestFlowHandler_Answer_BadBody(t *testing.T) {
	handler := NewFlowHandler(NewMockStudyService(), NewMockHandlerLogger(), 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flows/answer", strings.NewReader("{bad"))
	rr := httptest.NewRecorder()
	handler.Answer(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestFlowHandler_Answer_Failure(t *testing.T) {
	service := NewMockStudyService()
	service.err = apperrors.NewProviderError("empty", domain.ErrEmptyOutput)
	handler := NewFlowHandler(service, NewMockHandlerLogger(), 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flows/answer", strings.NewReader(`{"pdfSummary":"S","question":"Why?"}`))
	rr := httptest.NewRecorder()
	handler.Answer(rr, req)

	if !strings.Contains(rr.Body.String(), "Failed to get an answer. Please try again.") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
}
