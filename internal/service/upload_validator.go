package service

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"pdf-study-aid/internal/domain"
	apperrors "pdf-study-aid/pkg/errors"
	"pdf-study-aid/pkg/metrics"
)

// DefaultMaxFileSize is the upload limit used when none is configured.
const DefaultMaxFileSize = 5 * 1024 * 1024

const pdfContentType = "application/pdf"

// UploadValidator checks uploads before any model call is made.
type UploadValidator struct {
	maxFileSize int64
	inspector   domain.PDFInspector
}

// NewUploadValidator creates a validator; a non-positive maxFileSize uses DefaultMaxFileSize.
func NewUploadValidator(maxFileSize int64, inspector domain.PDFInspector) *UploadValidator {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &UploadValidator{maxFileSize: maxFileSize, inspector: inspector}
}

// MaxFileSize returns the configured limit in bytes.
func (v *UploadValidator) MaxFileSize() int64 {
	return v.maxFileSize
}

// Validate returns the document when the upload is a readable PDF within the size limit.
func (v *UploadValidator) Validate(upload domain.Upload) (*domain.Document, error) {
	if len(upload.Data) == 0 {
		return nil, reject("empty", apperrors.NewValidationError("Please select a PDF file", "file is empty"))
	}

	if int64(len(upload.Data)) > v.maxFileSize {
		return nil, reject("too_large", apperrors.NewValidationError(
			"File too large",
			fmt.Sprintf("maximum size is %s", formatBytes(v.maxFileSize)),
		))
	}

	declared := pdfContentType
	if upload.ContentType != "" {
		mediaType, _, err := mime.ParseMediaType(upload.ContentType)
		if err != nil {
			return nil, reject("content_type", apperrors.NewValidationError("Invalid file type", "Only PDF files are allowed"))
		}
		declared = mediaType
	}
	if declared != pdfContentType {
		return nil, reject("content_type", apperrors.NewValidationError("Invalid file type", "Only PDF files are allowed"))
	}

	if !isPDF(upload.Data) {
		return nil, reject("content", apperrors.NewValidationError("Invalid file type", "file content is not a PDF"))
	}

	pages, err := v.inspector.PageCount(upload.Data)
	if err != nil {
		return nil, reject("unreadable", apperrors.NewProcessingError("Failed to read PDF", err))
	}

	return &domain.Document{
		Title:     documentTitle(upload.Filename),
		Size:      int64(len(upload.Data)),
		PageCount: pages,
		Data:      upload.Data,
	}, nil
}

func reject(reason string, err error) error {
	metrics.UploadsRejected.WithLabelValues(reason).Inc()
	return err
}

func isPDF(data []byte) bool {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return true
	}
	return http.DetectContentType(data) == pdfContentType
}

func documentTitle(filename string) string {
	name := strings.TrimSpace(filepath.Base(filename))
	if name == "" || name == "." || name == "/" {
		return "document.pdf"
	}
	return name
}

func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit:
		return fmt.Sprintf("%.0fMB", float64(n)/(unit*unit))
	case n >= unit:
		return fmt.Sprintf("%.0fKB", float64(n)/unit)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
