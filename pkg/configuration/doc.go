// Package configuration implements §4.2's ConfigurationSubsystem: merging
// every configuration_provider's default YAML document in discovery order,
// layering the user-override directory on top, freezing the result into an
// immutable ConfigurationView, and computing the diff against the previous
// run's persisted tree.
package configuration
