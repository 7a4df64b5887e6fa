package host

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/paise/pkg/configuration"
	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// Host is the common façade every extension point receives: a logger, the
// configuration view, a partitioned state store, and schedule_fetch (§4.3).
// Lifecycle actions, data-store providers, and reset actions see exactly
// this shape and nothing more.
type Host struct {
	identity PluginIdentity
	logger   logrus.FieldLogger
	config   *configuration.View
	state    *PartitionedState
	runtime  *tasks.Runtime
}

// Identity returns the plugin identity this façade is bound to.
func (h *Host) Identity() PluginIdentity { return h.identity }

// Logger returns a logger pre-tagged with this plugin's identity.
func (h *Host) Logger() logrus.FieldLogger { return h.logger }

// Configuration returns the frozen, run-wide ConfigurationView (§3 invariant 4).
func (h *Host) Configuration() *configuration.View { return h.config }

// State returns this plugin's partitioned state surface.
func (h *Host) State() *PartitionedState { return h.state }

// ScheduleFetch enqueues a fetch_content task for url (§4.3 "Scheduling
// semantics via host"). In inline mode this blocks until the fetch (and
// anything it recursively schedules) completes; in queued mode it returns
// once the task is persisted. scheduled is false when the runtime's
// at-most-once-per-fingerprint rule suppressed the enqueue.
func (h *Host) ScheduleFetch(ctx context.Context, url string, md *metadata.Metadata) (id ids.TaskId, scheduled bool, err error) {
	payload := tasks.Payload{"url": url}
	if md != nil {
		payload["metadata"] = md.AsMap()
	}
	return h.runtime.ScheduleFetch(ctx, url, payload)
}
