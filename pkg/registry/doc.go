// Package registry implements §4.1's extension-point registry: the eleven
// extension-point interfaces, an order-preserving, phase-gated Registry
// that admits instances against them, and the structural validation that
// rejects malformed registrations with InvalidExtension. Grounded on the
// teacher's pkg/plugins/registry.go (map-backed, mutex-guarded Register/
// List/ListByType/Count) generalized from a single dynamic Plugin interface
// to the spec's eleven statically-typed extension points.
package registry
