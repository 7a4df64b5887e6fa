// Package fetchers supplies reference content_fetcher implementations:
// a local-filesystem fetcher for file:// URLs and bare paths, grounded on
// the teacher's pkg/storage/filesystem.go for its streaming-read idiom, and
// a plain net/http fetcher for http(s):// URLs.
package fetchers

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/perrors"
)

// FileFetcher reads local files addressed by a file:// URL or a bare
// filesystem path (the shape content_source/dirsource schedules).
type FileFetcher struct{}

// NewFileFetcher builds a FileFetcher. It takes no configuration: every
// path it is handed is trusted, since it only ever sees URLs produced by
// content sources running in the same process.
func NewFileFetcher() *FileFetcher { return &FileFetcher{} }

// CanFetch claims file:// URLs and any string with no URL scheme at all
// (so a bare path like "/var/docs/a.txt" is claimed too). A string that
// does not parse as a URL is also claimed; any other scheme is rejected.
func (f *FileFetcher) CanFetch(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	return u.Scheme == "" || u.Scheme == "file"
}

// Fetch reads the file's contents and hands them to extraction, guessing a
// mime type from the file extension (§4.6 "fetch_content... extract_file").
func (f *FileFetcher) Fetch(ctx context.Context, h *host.FetcherHost, rawURL string) error {
	path := filePath(rawURL)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return perrors.Permanent(fmt.Errorf("file fetcher: %w", err))
		}
		return perrors.Transient(fmt.Errorf("file fetcher: %w", err))
	}

	md := metadata.Metadata{
		SourceURL: rawURL,
		Location:  path,
		Title:     filepath.Base(path),
		MimeType:  mimeFromExtension(path),
	}
	_, err = h.ExtractFile(ctx, content, md)
	return err
}

func filePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return rawURL
	}
	return u.Path
}

func mimeFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	case ".json":
		return "application/json"
	default:
		return ""
	}
}
