package registry

// Kind is one of the eleven extension-point labels from §4.1.
type Kind string

const (
	KindConfigurationProvider Kind = "configuration_provider"
	KindTaskQueueProvider     Kind = "task_queue_provider"
	KindStateStoreProvider    Kind = "state_store_provider"
	KindCacheProvider         Kind = "cache_provider"
	KindDataStoreProvider     Kind = "data_store_provider"
	KindContentSource         Kind = "content_source"
	KindContentFetcher        Kind = "content_fetcher"
	KindContentExtractor      Kind = "content_extractor"
	KindLifecycleAction       Kind = "lifecycle_action"
	KindResetAction           Kind = "reset_action"
	KindCLICommandContributor Kind = "cli_command_contributor"
)

// providerKinds are registered in phase 1 and close before phase 4 (§4.4
// "call their registration callbacks for provider kinds only").
var providerKinds = map[Kind]bool{
	KindConfigurationProvider: true,
	KindTaskQueueProvider:     true,
	KindStateStoreProvider:    true,
	KindCacheProvider:         true,
	KindDataStoreProvider:     true,
}

// IsProviderKind reports whether kind is loaded during phase 1/2 rather
// than phase 5.
func IsProviderKind(kind Kind) bool { return providerKinds[kind] }
