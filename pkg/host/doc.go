// Package host implements §4.3's host façades: a common base (logger,
// configuration, state, schedule_fetch) specialized into source, fetcher,
// extractor, and lifecycle/data-store/reset shapes, each bound to one
// PluginIdentity by HostFactory and automatically partitioned.
package host
