package registry

import "github.com/platinummonkey/paise/pkg/host"

// identifiedInstance pairs a typed extension-point instance with the
// identity it was registered under, used by every typed accessor below so
// HostFactory callers never have to re-derive identity from a bare slice.
type identifiedInstance[T any] struct {
	Identity host.PluginIdentity
	Instance T
}

func typed[T any](r *Registry, kind Kind) []identifiedInstance[T] {
	entries := instancesOf(r, kind)
	out := make([]identifiedInstance[T], 0, len(entries))
	for _, e := range entries {
		if v, ok := e.instance.(T); ok {
			out = append(out, identifiedInstance[T]{Identity: e.identity, Instance: v})
		}
	}
	return out
}

func (r *Registry) ConfigurationProviders() []identifiedInstance[ConfigurationProvider] {
	return typed[ConfigurationProvider](r, KindConfigurationProvider)
}

func (r *Registry) TaskQueueProviders() []identifiedInstance[TaskQueueProvider] {
	return typed[TaskQueueProvider](r, KindTaskQueueProvider)
}

func (r *Registry) StateStoreProviders() []identifiedInstance[StateStoreProvider] {
	return typed[StateStoreProvider](r, KindStateStoreProvider)
}

func (r *Registry) CacheProviders() []identifiedInstance[CacheProvider] {
	return typed[CacheProvider](r, KindCacheProvider)
}

func (r *Registry) DataStoreProviders() []identifiedInstance[DataStoreProvider] {
	return typed[DataStoreProvider](r, KindDataStoreProvider)
}

func (r *Registry) ContentSources() []identifiedInstance[ContentSource] {
	return typed[ContentSource](r, KindContentSource)
}

func (r *Registry) ContentFetchers() []identifiedInstance[ContentFetcher] {
	return typed[ContentFetcher](r, KindContentFetcher)
}

func (r *Registry) ContentExtractors() []identifiedInstance[ContentExtractor] {
	return typed[ContentExtractor](r, KindContentExtractor)
}

func (r *Registry) LifecycleActions() []identifiedInstance[LifecycleAction] {
	return typed[LifecycleAction](r, KindLifecycleAction)
}

func (r *Registry) ResetActions() []identifiedInstance[ResetAction] {
	return typed[ResetAction](r, KindResetAction)
}

func (r *Registry) CLICommandContributors() []identifiedInstance[CLICommandContributor] {
	return typed[CLICommandContributor](r, KindCLICommandContributor)
}
