package host

// PluginIdentity names the plugin instance a Host façade is bound to. Every
// state and cache operation performed through that façade is automatically
// scoped to this identity (§4.3 "Automatic partitioning").
type PluginIdentity string
