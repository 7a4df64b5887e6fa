// Package ids defines the opaque identifier types produced by the
// subsystems that own them (the data store, the cache, and the task
// runtime). Values are compared only by equality, per the core's data
// model.
package ids

import "github.com/google/uuid"

// ItemId identifies a stored item. Produced by a DataStore on add_item.
type ItemId string

// CacheId identifies a cache entry. Produced by a Cache on put.
type CacheId string

// TaskId identifies a queued task record. Produced by a TaskQueue on enqueue.
type TaskId string

// NewItemId generates a fresh, randomly-unique ItemId.
func NewItemId() ItemId {
	return ItemId(uuid.NewString())
}

// NewCacheId generates a fresh, randomly-unique CacheId.
func NewCacheId() CacheId {
	return CacheId(uuid.NewString())
}

// NewTaskId generates a fresh, randomly-unique TaskId.
func NewTaskId() TaskId {
	return TaskId(uuid.NewString())
}
