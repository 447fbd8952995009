package service

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdf-study-aid/internal/domain"
)

// pdfInspector reads PDF structure with pdfcpu in relaxed validation mode.
type pdfInspector struct {
	conf *model.Configuration
}

// NewPDFInspector creates a new PDF inspector.
func NewPDFInspector() domain.PDFInspector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &pdfInspector{conf: conf}
}

// PageCount parses the document and returns its page count.
func (p *pdfInspector) PageCount(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty document", domain.ErrInvalidFile)
	}

	count, err := api.PageCount(bytes.NewReader(data), p.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidFile, err)
	}
	if count <= 0 {
		return 0, fmt.Errorf("%w: document has no pages", domain.ErrInvalidFile)
	}
	return count, nil
}
