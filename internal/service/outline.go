package service

import (
	"fmt"
	"strings"

	"pdf-study-aid/internal/domain"
)

// BuildOutline splits a summary into a TL;DR and titled sections.
// Paragraphs are separated by a blank line; the first is the TL;DR.
// A section title is the text before the first colon, or "Section N".
func BuildOutline(summary string) domain.SummaryOutline {
	normalized := strings.ReplaceAll(summary, "\r\n", "\n")
	blocks := strings.Split(normalized, "\n\n")

	outline := domain.SummaryOutline{
		TLDR:     strings.TrimSpace(blocks[0]),
		Sections: make([]domain.OutlineSection, 0, len(blocks)-1),
	}

	for i, block := range blocks[1:] {
		if strings.TrimSpace(block) == "" {
			continue
		}
		title, content, found := strings.Cut(block, ":")
		if !found {
			outline.Sections = append(outline.Sections, domain.OutlineSection{
				Title:   fmt.Sprintf("Section %d", i+1),
				Content: strings.TrimSpace(block),
			})
			continue
		}
		outline.Sections = append(outline.Sections, domain.OutlineSection{
			Title:   strings.TrimSpace(title),
			Content: strings.TrimSpace(content),
		})
	}
	return outline
}
