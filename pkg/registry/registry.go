package registry

import (
	"sync"

	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/perrors"
)

type entry struct {
	identity host.PluginIdentity
	instance interface{}
}

// Registry holds, per extension-point kind, an insertion-order-preserving
// sequence of registered instances (§4.1 "Contract"). Registration is
// gated by two phases: providers (phase 1) and consumers (phase 5);
// registering after a phase has closed fails with RegistrationClosed.
type Registry struct {
	mu sync.Mutex

	entries         map[Kind][]entry
	providersClosed bool
	consumersClosed bool
}

// New constructs an empty registry (§4.4 phase 1 "Construct an empty registry").
func New() *Registry {
	return &Registry{entries: make(map[Kind][]entry)}
}

// Register admits instance under kind, attributed to identity. It fails
// with RegistrationClosed if the relevant phase has closed, InvalidExtension
// if instance fails the kind's structural validation (§4.1 "Validation"),
// or is silently rejected as a duplicate if the exact instance is already
// registered for this kind (§4.1 "Duplicates ... are rejected").
func (r *Registry) Register(kind Kind, identity host.PluginIdentity, instance interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if IsProviderKind(kind) && r.providersClosed {
		return &perrors.RegistrationClosed{Kind: string(kind)}
	}
	if !IsProviderKind(kind) && r.consumersClosed {
		return &perrors.RegistrationClosed{Kind: string(kind)}
	}

	if err := validate(kind, instance); err != nil {
		return err
	}

	for _, existing := range r.entries[kind] {
		if existing.instance == instance {
			return nil
		}
	}

	r.entries[kind] = append(r.entries[kind], entry{identity: identity, instance: instance})
	return nil
}

// CloseProviderPhase stops further provider-kind registrations, called
// between phase 1/2 and phase 3 (§4.4).
func (r *Registry) CloseProviderPhase() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providersClosed = true
}

// CloseConsumerPhase stops further consumer-kind registrations, called
// after phase 5 completes.
func (r *Registry) CloseConsumerPhase() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumersClosed = true
}

// Count returns the number of instances registered for kind.
func (r *Registry) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries[kind])
}

// List returns the registered instances for kind in registration order,
// alongside the identity each was registered under.
func (r *Registry) List(kind Kind) []struct {
	Identity host.PluginIdentity
	Instance interface{}
} {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]struct {
		Identity host.PluginIdentity
		Instance interface{}
	}, len(r.entries[kind]))
	for i, e := range r.entries[kind] {
		out[i].Identity = e.identity
		out[i].Instance = e.instance
	}
	return out
}

func instancesOf(r *Registry, kind Kind) []entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entry, len(r.entries[kind]))
	copy(out, r.entries[kind])
	return out
}
