package configuration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/paise/pkg/perrors"
	"github.com/platinummonkey/paise/pkg/state"
)

// ProviderDocument is one configuration_provider's contribution: its id and
// its default document text (§4.1 "supplies (id, default_document_text)").
type ProviderDocument struct {
	ID              string
	DefaultDocument string
}

// lastMergedKey is the reserved state key holding the previous run's merged
// tree, read and rewritten by Build on every run.
const lastMergedKey = "last_merged"

// Build assembles the ConfigurationView for one run (§4.2): merges every
// provider's default document in discovery order, layers the user-override
// directory on top, diffs against the tree persisted by the previous run,
// persists the new tree, and returns the frozen View.
func Build(ctx context.Context, store state.StateStore, docs []ProviderDocument, overrideDir string) (*View, error) {
	merged := tree{}
	for _, doc := range docs {
		parsed, err := parseYAML(doc.DefaultDocument)
		if err != nil {
			return nil, &perrors.ConfigurationParseError{ProviderID: doc.ID, Line: yamlErrorLine(err), Err: err}
		}
		merged = mergeDefaults(merged, parsed)
	}

	overrides, err := loadOverrides(overrideDir)
	if err != nil {
		return nil, err
	}
	merged = mergeOverride(merged, overrides)

	before, err := loadPrevious(ctx, store)
	if err != nil {
		return nil, err
	}
	diff := computeDiff(before, merged)

	if err := persist(ctx, store, merged); err != nil {
		return nil, err
	}

	return newView(merged, "", diff), nil
}

func parseYAML(doc string) (tree, error) {
	if strings.TrimSpace(doc) == "" {
		return tree{}, nil
	}
	var parsed tree
	if err := yaml.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, err
	}
	if parsed == nil {
		parsed = tree{}
	}
	return parsed, nil
}

// yamlErrorLine is best-effort: yaml.v3 does not expose a structured line
// number on most parse errors, so this returns 0 when unavailable.
func yamlErrorLine(err error) int {
	return 0
}

// loadOverrides reads every *.yaml file under dir, merging them together
// with the list-replace rule (§4.2). A missing directory is not an error
// (empty overlay).
func loadOverrides(dir string) (tree, error) {
	combined := tree{}
	if dir == "" {
		return combined, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return combined, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".yaml")
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		parsed, err := parseYAML(string(raw))
		if err != nil {
			return nil, &perrors.ConfigurationParseError{ProviderID: id, Line: yamlErrorLine(err), Err: err}
		}
		combined = mergeOverride(combined, parsed)
	}
	return combined, nil
}

func loadPrevious(ctx context.Context, store state.StateStore) (tree, error) {
	raw, _, err := store.Get(ctx, state.SystemConfigPartition, lastMergedKey)
	if err == state.ErrNotFound {
		return tree{}, nil
	}
	if err != nil {
		return nil, err
	}

	var previous tree
	if err := json.Unmarshal(raw, &previous); err != nil {
		return nil, err
	}
	return previous, nil
}

func persist(ctx context.Context, store state.StateStore, merged tree) error {
	raw, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	return store.Set(ctx, state.SystemConfigPartition, lastMergedKey, raw, 1)
}
