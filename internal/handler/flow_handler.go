package handler

import (
	"net/http"

	"pdf-study-aid/internal/domain"
)

// FlowHandler exposes the three model flows as stateless endpoints.
type FlowHandler struct {
	studyService domain.StudyService
	logger       domain.Logger
	maxFileSize  int64
}

// NewFlowHandler creates a new flow handler
func NewFlowHandler(studyService domain.StudyService, logger domain.Logger, maxFileSize int64) *FlowHandler {
	return &FlowHandler{
		studyService: studyService,
		logger:       logger,
		maxFileSize:  maxFileSize,
	}
}

type summarizeResponse struct {
	Summary string                 `json:"summary"`
	Outline *domain.SummaryOutline `json:"outline,omitempty"`
}

// Summarize accepts a multipart upload or a JSON {pdfDataUri, summaryLevel} body.
func (h *FlowHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var (
		upload domain.Upload
		level  domain.SummaryLevel
		err    error
	)
	if isJSONRequest(r) {
		var req domain.SummarizeRequest
		if err := decodeJSON(w, r, &req, dataURIBodyLimit(h.maxFileSize)); err != nil {
			writeAppError(w, h.logger, err, "Invalid request body")
			return
		}
		upload, level, err = readDataURIUpload(req)
	} else {
		upload, level, err = readUpload(w, r, h.maxFileSize)
	}
	if err != nil {
		writeAppError(w, h.logger, err, "Invalid upload")
		return
	}

	result, err := h.studyService.Summarize(r.Context(), upload, level)
	if err != nil {
		h.logger.Error("Summarize flow failed", err, "request_id", GetRequestID(r.Context()))
		writeAppError(w, h.logger, err, "Summarization failed. Please try again.")
		return
	}

	outline := h.studyService.Outline(result.Summary)
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: result.Summary, Outline: &outline})
}

// SuggestedQuestions returns follow-up questions for a summary.
func (h *FlowHandler) SuggestedQuestions(w http.ResponseWriter, r *http.Request) {
	var req domain.SuggestedQuestionsRequest
	if err := decodeJSON(w, r, &req, maxJSONBodySize); err != nil {
		writeAppError(w, h.logger, err, "Invalid request body")
		return
	}

	questions, err := h.studyService.SuggestQuestions(r.Context(), req.PDFSummary)
	if err != nil {
		h.logger.Error("Suggested questions flow failed", err, "request_id", GetRequestID(r.Context()))
		writeAppError(w, h.logger, err, "Failed to get suggested questions.")
		return
	}
	if questions == nil {
		questions = []string{}
	}

	writeJSON(w, http.StatusOK, domain.SuggestedQuestionsResult{SuggestedQuestions: questions})
}

// Answer answers a question from a summary.
func (h *FlowHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req domain.AnswerRequest
	if err := decodeJSON(w, r, &req, maxJSONBodySize); err != nil {
		writeAppError(w, h.logger, err, "Invalid request body")
		return
	}

	answer, err := h.studyService.Answer(r.Context(), req.PDFSummary, req.Question)
	if err != nil {
		h.logger.Error("Answer flow failed", err, "request_id", GetRequestID(r.Context()))
		writeAppError(w, h.logger, err, "Failed to get an answer. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, domain.AnswerResult{Answer: answer})
}
