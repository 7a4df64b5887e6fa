package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/metadata"
)

var (
	titleTagRe = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	tagRe      = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptRe   = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// HTMLExtractor claims HTML content, lifts <title>, and stores a stripped-
// tags plaintext rendering of the body as the indexed content. No HTML
// parser is wired into this module (none of the example repos pulled one
// in) so this uses a regexp-based strip rather than a DOM walk; it is not
// meant to handle malformed markup gracefully.
type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor { return &HTMLExtractor{} }

func (e *HTMLExtractor) PreferredMimeTypes() []string { return []string{"text/html"} }

func (e *HTMLExtractor) CanExtract(sourceURL, mimeType string) bool {
	return mimeType == "text/html" || strings.HasSuffix(sourceURL, ".html") || strings.HasSuffix(sourceURL, ".htm")
}

func (e *HTMLExtractor) Extract(ctx context.Context, h *host.ExtractorHost, content []byte, md metadata.Metadata) error {
	raw := string(content)

	if md.Title == "" {
		if m := titleTagRe.FindStringSubmatch(raw); len(m) == 2 {
			title := whitespace.ReplaceAllString(strings.TrimSpace(m[1]), " ")
			md = md.Copy(metadata.Changes{Title: &title})
		}
	}

	mime := "text/html"
	md = md.Copy(metadata.Changes{MimeType: &mime})

	body := scriptRe.ReplaceAllString(raw, "")
	body = tagRe.ReplaceAllString(body, " ")
	body = whitespace.ReplaceAllString(strings.TrimSpace(body), " ")

	_, err := h.Storage().AddItem(ctx, []byte(body), md)
	return err
}
