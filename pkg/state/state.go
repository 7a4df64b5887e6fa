// Package state defines the StateStore contract (§3, §4.1, §5) and its
// provider-selectable implementations. A StateStore is a versioned
// key/value store partitioned by caller identity; the host layer passes a
// plugin's PluginIdentity as the partition when calling through to here, so
// this package only ever sees explicit partition strings.
package state

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist in the partition.
var ErrNotFound = errors.New("state: key not found")

// Entry is one versioned record, returned by ListVersionsBelow for the
// plugin-upgrade re-indexing query (§5 "state versioning").
type Entry struct {
	Key     string
	Value   []byte
	Version int
}

// StateStore is the versioned, partitioned key/value contract every
// state_store_provider must satisfy. Implementations must be safe for
// concurrent use by multiple workers (§5 "shared-resource policy").
type StateStore interface {
	// Get returns the value and version stored at (partition, key), or
	// ErrNotFound if absent.
	Get(ctx context.Context, partition, key string) ([]byte, int, error)

	// Set writes value at (partition, key) with the given version. A
	// version of 0 is normalized to 1, matching §5's "writes without
	// explicit version default to 1".
	Set(ctx context.Context, partition, key string, value []byte, version int) error

	// Delete removes (partition, key). Deleting an absent key is not an error.
	Delete(ctx context.Context, partition, key string) error

	// ListKeys returns every key currently stored in partition.
	ListKeys(ctx context.Context, partition string) ([]string, error)

	// ListVersionsBelow returns every entry in partition whose version is
	// strictly less than v, supporting plugin-upgrade re-indexing queries.
	ListVersionsBelow(ctx context.Context, partition string, v int) ([]Entry, error)

	// ClearPartition removes every key in partition. Plugins such as a
	// reset_action (§4.8) reach it through host.PartitionedState.
	ClearPartition(ctx context.Context, partition string) error

	// Close releases any underlying resources (connections, file handles).
	Close() error
}

// SystemConfigPartition is the reserved partition the configuration
// subsystem uses to persist the previous run's merged tree (§4.2, §6).
// Hosts reject plugin writes to this and any other "_system." prefixed
// partition (§9 "configuration diff state").
const SystemConfigPartition = "_system.configuration"

// IsReservedPartition reports whether partition is in the core-reserved
// "_system." namespace that plugin-facing hosts must never expose.
func IsReservedPartition(partition string) bool {
	return len(partition) >= len("_system.") && partition[:len("_system.")] == "_system."
}
