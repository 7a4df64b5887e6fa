// Package adminreset implements the administrative entry point that
// invokes every registered reset_action (§4.8). It is not wired into the
// five-phase startup sequence — cmd/paise calls it when run with its
// -reset-soft or -reset-hard flag, the way the teacher's own admin tooling sits beside its
// normal request path rather than inside it.
package adminreset

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/perrors"
	"github.com/platinummonkey/paise/pkg/registry"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// Run executes a soft (hard=false) or hard (hard=true) reset (§4.8).
//
// Soft reset clears every item's processing_state back to pending and
// routes its tracked CacheIds through cleanup_cache, but leaves the item
// and its stored content in place. Hard reset does the same cache cleanup
// but removes the items outright. Either way, every registered
// reset_action then runs in registration order so plugins can clear their
// own state partition (e.g. a content_source's last-scan bookmark);
// per-action failures are logged and do not stop the sequence.
func Run(ctx context.Context, reg *registry.Registry, hosts *host.Factory, store datastore.DataStore, runtime *tasks.Runtime, logger logrus.FieldLogger, hard bool) error {
	itemIDs, err := store.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("adminreset: list items: %w", err)
	}

	for _, id := range itemIDs {
		var cacheIDs []ids.CacheId
		if hard {
			cacheIDs, err = store.RemoveItem(ctx, id)
			if err != nil {
				logger.WithError(err).WithField("item_id", id).Warn("adminreset: remove item failed")
				continue
			}
		} else {
			item, err := store.GetItem(ctx, id)
			if err != nil {
				logger.WithError(err).WithField("item_id", id).Warn("adminreset: get item failed")
				continue
			}
			cacheIDs = item.CacheIDs
			pending := metadata.StatePending
			if _, err := store.UpdateMetadata(ctx, id, metadata.Patch{ProcessingState: &pending}); err != nil {
				logger.WithError(err).WithField("item_id", id).Warn("adminreset: clear processing state failed")
			}
		}
		enqueueCleanup(ctx, runtime, logger, cacheIDs)
	}

	for _, e := range reg.ResetActions() {
		h := hosts.NewHost(e.Identity)
		if err := e.Instance.Reset(ctx, h, hard); err != nil {
			failure := &perrors.PluginFailed{PluginIdentity: string(e.Identity), Kind: string(registry.KindResetAction), Err: err}
			logger.WithError(failure).Warn("reset_action failed")
		}
	}

	return nil
}

func enqueueCleanup(ctx context.Context, runtime *tasks.Runtime, logger logrus.FieldLogger, cacheIDs []ids.CacheId) {
	if len(cacheIDs) == 0 {
		return
	}
	raw := make([]interface{}, len(cacheIDs))
	for i, c := range cacheIDs {
		raw[i] = string(c)
	}
	if _, err := runtime.Enqueue(ctx, tasks.CleanupCache, tasks.Payload{"cache_ids": raw}); err != nil {
		logger.WithError(err).Warn("adminreset: cleanup_cache enqueue failed")
	}
}
