package tasks

import (
	"context"

	"github.com/platinummonkey/paise/pkg/ids"
)

// InlineHandle executes every enqueued task synchronously on the caller's
// goroutine, the sentinel mode used by the test profile and for
// single-process debugging (§4.5).
type InlineHandle struct {
	dispatch DispatchFunc
}

// NewInlineHandle constructs an unstarted inline handle.
func NewInlineHandle() *InlineHandle {
	return &InlineHandle{}
}

func (h *InlineHandle) Mode() Mode { return ModeInline }

func (h *InlineHandle) Start(_ context.Context, dispatch DispatchFunc) error {
	h.dispatch = dispatch
	return nil
}

func (h *InlineHandle) Enqueue(ctx context.Context, name Name, payload Payload) (ids.TaskId, error) {
	id := ids.NewTaskId()
	if h.dispatch == nil {
		return id, nil
	}
	return id, h.dispatch(ctx, name, payload)
}

func (h *InlineHandle) Stop(_ context.Context) error { return nil }
