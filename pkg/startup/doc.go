// Package startup implements §4.4's StartupOrchestrator: the five-phase
// bootstrap that turns a static registration list into a running SingletonSet
// and a set of started consumer plugins, plus the shutdown sequence that
// reverses it.
package startup
