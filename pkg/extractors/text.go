// Package extractors supplies reference content_extractor implementations:
// a pass-through plain-text extractor and a light HTML-to-text extractor.
package extractors

import (
	"context"
	"strings"

	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/metadata"
)

// TextExtractor claims plain-text content and stores it unchanged as the
// item body, deriving a title from the first non-empty line when one isn't
// already set (§4.6 extract_content).
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

func (e *TextExtractor) PreferredMimeTypes() []string { return []string{"text/plain"} }

func (e *TextExtractor) CanExtract(sourceURL, mimeType string) bool {
	return mimeType == "" || mimeType == "text/plain"
}

func (e *TextExtractor) Extract(ctx context.Context, h *host.ExtractorHost, content []byte, md metadata.Metadata) error {
	if md.Title == "" {
		if title := firstNonEmptyLine(content); title != "" {
			md = md.Copy(metadata.Changes{Title: &title})
		}
	}
	if md.MimeType == "" {
		mime := "text/plain"
		md = md.Copy(metadata.Changes{MimeType: &mime})
	}
	_, err := h.Storage().AddItem(ctx, content, md)
	return err
}

func firstNonEmptyLine(content []byte) string {
	for _, line := range strings.Split(string(content), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
