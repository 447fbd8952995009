package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
)

const (
	multipartOverhead = 1 << 20
	maxJSONBodySize   = 1 << 20
)

// dataURIBodyLimit is the JSON body size needed to carry a base64 file of maxFileSize bytes.
func dataURIBodyLimit(maxFileSize int64) int64 {
	return maxFileSize/3*4 + 4 + multipartOverhead
}

// readUpload extracts the "file" part and the "summaryLevel" field of a multipart form.
func readUpload(w http.ResponseWriter, r *http.Request, maxFileSize int64) (domain.Upload, domain.SummaryLevel, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxFileSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Upload{}, "", apperrors.NewValidationError("File too large", fmt.Sprintf("maximum size is %d bytes", maxFileSize))
		}
		return domain.Upload{}, "", apperrors.NewValidationError("Invalid multipart form", err.Error())
	}

	level, err := parseLevel(r.FormValue("summaryLevel"))
	if err != nil {
		return domain.Upload{}, "", err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return domain.Upload{}, "", apperrors.NewValidationError("Please select a PDF file", "file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxFileSize+1))
	if err != nil {
		return domain.Upload{}, "", apperrors.NewProcessingError("Failed to read uploaded file", err)
	}

	return domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, level, nil
}

// readDataURIUpload builds an upload from a JSON summarize request.
func readDataURIUpload(req domain.SummarizeRequest) (domain.Upload, domain.SummaryLevel, error) {
	level, err := parseLevel(string(req.SummaryLevel))
	if err != nil {
		return domain.Upload{}, "", err
	}
	if strings.TrimSpace(req.PDFDataURI) == "" {
		return domain.Upload{}, "", apperrors.NewValidationError("PDF document is required", "pdfDataUri")
	}
	mimeType, data, err := domain.DecodeDataURI(req.PDFDataURI)
	if err != nil {
		return domain.Upload{}, "", apperrors.NewValidationError("Invalid PDF data URI", err.Error())
	}
	return domain.Upload{Filename: req.Filename, ContentType: mimeType, Data: data}, level, nil
}

func parseLevel(raw string) (domain.SummaryLevel, error) {
	level, err := domain.ParseSummaryLevel(raw)
	if err != nil {
		return "", apperrors.NewValidationError("Invalid summary level", err.Error())
	}
	return level, nil
}

// decodeJSON reads a JSON body of at most limit bytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("Invalid request body", err.Error())
	}
	return nil
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}
