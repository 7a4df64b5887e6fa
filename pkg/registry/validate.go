package registry

import "github.com/platinummonkey/paise/pkg/perrors"

// validate performs the structural check described in §4.1 ("the registry
// checks that the value exposes the required operations for its kind").
// Register takes an interface{}, so a value lacking a method is caught
// here at runtime by asserting the kind's interface. Beyond that, this
// enforces what the interfaces can't express: a non-empty
// ConfigurationProvider ID and a non-nil PreferredMimeTypes slice for a
// ContentExtractor.
func validate(kind Kind, instance interface{}) error {
	switch kind {
	case KindConfigurationProvider:
		v, ok := instance.(ConfigurationProvider)
		if !ok {
			return invalidExtension(kind, "ConfigurationProvider", "does not implement the required interface")
		}
		if v.ID() == "" {
			return invalidExtension(kind, "ID", "must be non-empty")
		}
	case KindTaskQueueProvider:
		if _, ok := instance.(TaskQueueProvider); !ok {
			return invalidExtension(kind, "TaskQueueProvider", "does not implement the required interface")
		}
	case KindStateStoreProvider:
		if _, ok := instance.(StateStoreProvider); !ok {
			return invalidExtension(kind, "StateStoreProvider", "does not implement the required interface")
		}
	case KindCacheProvider:
		if _, ok := instance.(CacheProvider); !ok {
			return invalidExtension(kind, "CacheProvider", "does not implement the required interface")
		}
	case KindDataStoreProvider:
		if _, ok := instance.(DataStoreProvider); !ok {
			return invalidExtension(kind, "DataStoreProvider", "does not implement the required interface")
		}
	case KindContentSource:
		if _, ok := instance.(ContentSource); !ok {
			return invalidExtension(kind, "ContentSource", "does not implement the required interface")
		}
	case KindContentFetcher:
		if _, ok := instance.(ContentFetcher); !ok {
			return invalidExtension(kind, "ContentFetcher", "does not implement the required interface")
		}
	case KindContentExtractor:
		v, ok := instance.(ContentExtractor)
		if !ok {
			return invalidExtension(kind, "ContentExtractor", "does not implement the required interface")
		}
		if v.PreferredMimeTypes() == nil {
			return invalidExtension(kind, "PreferredMimeTypes", "must return a non-nil slice (empty is fine, nil is not)")
		}
	case KindLifecycleAction:
		if _, ok := instance.(LifecycleAction); !ok {
			return invalidExtension(kind, "LifecycleAction", "does not implement the required interface")
		}
	case KindResetAction:
		if _, ok := instance.(ResetAction); !ok {
			return invalidExtension(kind, "ResetAction", "does not implement the required interface")
		}
	case KindCLICommandContributor:
		if _, ok := instance.(CLICommandContributor); !ok {
			return invalidExtension(kind, "CLICommandContributor", "does not implement the required interface")
		}
	default:
		return invalidExtension(kind, "kind", "unknown extension-point kind")
	}
	return nil
}

func invalidExtension(kind Kind, operation, reason string) error {
	return &perrors.InvalidExtension{Kind: string(kind), Operation: operation, Reason: reason}
}
