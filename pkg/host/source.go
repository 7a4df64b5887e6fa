package host

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/ids"
)

// ReadOnlyDataStore is the subset of datastore.DataStore a content_source
// may call: lookups only, never mutation (§4.3 "Source host: read-only data_store").
type ReadOnlyDataStore interface {
	GetItem(ctx context.Context, id ids.ItemId) (datastore.Item, error)
	GetBySourceURL(ctx context.Context, sourceURL string) (datastore.Item, error)
	ListItems(ctx context.Context) ([]ids.ItemId, error)
}

// SourceHost is handed to content_source.start/stop (§4.3).
type SourceHost struct {
	*Host
	dataStore ReadOnlyDataStore
	scheduler *cron.Cron
}

// DataStore returns the read-only data-store view.
func (h *SourceHost) DataStore() ReadOnlyDataStore { return h.dataStore }

// ScheduleNextRun records a recurrence request: fn is invoked every
// interval until the scheduler stops (§4.3 "records a recurrence request
// the runtime re-enqueues on interval"). If the underlying scheduler is
// unavailable (nil, e.g. a façade built outside HostFactory for a test),
// the request is logged and dropped rather than silently ignored.
func (h *SourceHost) ScheduleNextRun(interval time.Duration, fn func(ctx context.Context) error) error {
	if h.scheduler == nil {
		h.Logger().WithField("interval", interval).Warn("schedule_next_run unsupported: no scheduler configured, dropping")
		return nil
	}

	spec := fmt.Sprintf("@every %s", interval)
	_, err := h.scheduler.AddFunc(spec, func() {
		if err := fn(context.Background()); err != nil {
			h.Logger().WithError(err).Warn("scheduled run failed")
		}
	})
	return err
}
