package startup

import (
	"github.com/platinummonkey/paise/pkg/host"
	"github.com/platinummonkey/paise/pkg/registry"
)

// Registration is one plugin's contribution to the registry: the
// extension-point kind it registers under, the plugin identity it is
// attributed to, and the typed instance itself.
//
// §4.4's "discover plugins" step has no dynamic loading in this
// implementation — there is no filesystem scan or shared-object lookup.
// Discovery is simply the caller assembling this static slice up front
// (cmd/paise does this with one list for every profile; its provider
// instances choose the backend from the active profile (§4.7) when phase 3
// calls Create) and handing it to NewOrchestrator. This mirrors how the teacher
// wires its own dependencies explicitly in main() rather than through a
// reflection-based container.
type Registration struct {
	Kind     registry.Kind
	Identity host.PluginIdentity
	Instance interface{}
}
