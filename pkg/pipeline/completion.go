package pipeline

import (
	"context"

	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
)

// maybeComplete resolves Open Question 1: an item sitting at stored is
// promoted to completed only once every other item naming it as parent_id
// has reached a terminal state. Leaf items (nothing was ever recursively
// extracted against them) find zero such children and are promoted
// immediately. Promotion cascades to the item's own parent, since finishing
// the last outstanding child may free its parent in turn.
//
// This walks every stored item on each call rather than keeping a running
// reference count, which is the right tradeoff at the index sizes this
// engine targets (§1 "desktop-class") and avoids a counter that the data
// store interface would otherwise need to expose and keep consistent.
func (f *Functions) maybeComplete(ctx context.Context, id ids.ItemId) {
	item, err := f.store.GetItem(ctx, id)
	if err != nil || item.Metadata.ProcessingState != metadata.StateStored {
		return
	}

	allIDs, err := f.store.ListItems(ctx)
	if err != nil {
		return
	}
	for _, childID := range allIDs {
		if childID == id {
			continue
		}
		child, err := f.store.GetItem(ctx, childID)
		if err != nil {
			continue
		}
		if child.Metadata.ParentID == string(id) && !child.Metadata.ProcessingState.Terminal() {
			return
		}
	}

	completed := metadata.StateCompleted
	if _, err := f.store.UpdateMetadata(ctx, id, metadata.Patch{ProcessingState: &completed}); err != nil {
		return
	}

	if item.Metadata.ParentID != "" {
		f.maybeComplete(ctx, ids.ItemId(item.Metadata.ParentID))
	}
}
