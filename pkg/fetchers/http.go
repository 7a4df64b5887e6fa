package fetchers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/perrors"
)

// HTTPFetcher claims http(s):// URLs and retrieves them with a plain
// net/http client. Retry/backoff is the task queue's job (§4.5); this
// fetcher only classifies failures as transient (network errors, 5xx) or
// permanent (4xx) so the queue's policy can act on them.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher builds an HTTPFetcher with timeout bounding every request.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) CanFetch(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

func (f *HTTPFetcher) Fetch(ctx context.Context, h *host.FetcherHost, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return perrors.Permanent(fmt.Errorf("http fetcher: %w", err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return perrors.Transient(fmt.Errorf("http fetcher: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return perrors.Permanent(fmt.Errorf("http fetcher: %s returned %d", rawURL, resp.StatusCode))
	}
	if resp.StatusCode >= 500 {
		return perrors.Transient(fmt.Errorf("http fetcher: %s returned %d", rawURL, resp.StatusCode))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return perrors.Transient(fmt.Errorf("http fetcher: reading body: %w", err))
	}

	md := metadata.Metadata{
		SourceURL: rawURL,
		MimeType:  strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0]),
	}
	_, err = h.ExtractFile(ctx, content, md)
	return err
}
