package pipeline

import (
	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/registry"
)

// selectFetcher returns the first registered content_fetcher whose
// CanFetch(url) claims it, in registration order (§4.6 "registration order
// breaks ties").
func (f *Functions) selectFetcher(url string) (host.PluginIdentity, registry.ContentFetcher, bool) {
	for _, e := range f.registry.ContentFetchers() {
		if e.Instance.CanFetch(url) {
			return e.Identity, e.Instance, true
		}
	}
	return "", nil, false
}

// selectExtractor picks a content_extractor in two passes: first, every
// extractor whose PreferredMimeTypes() names mimeType exactly, in
// registration order; failing that, every extractor whose CanExtract
// reports true, in registration order (§4.6).
func (f *Functions) selectExtractor(sourceURL, mimeType string) (host.PluginIdentity, registry.ContentExtractor, bool) {
	if mimeType != "" {
		for _, e := range f.registry.ContentExtractors() {
			for _, preferred := range e.Instance.PreferredMimeTypes() {
				if preferred == mimeType && e.Instance.CanExtract(sourceURL, mimeType) {
					return e.Identity, e.Instance, true
				}
			}
		}
	}
	for _, e := range f.registry.ContentExtractors() {
		if e.Instance.CanExtract(sourceURL, mimeType) {
			return e.Identity, e.Instance, true
		}
	}
	return "", nil, false
}
