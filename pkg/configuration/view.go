package configuration

import "strings"

// View is the immutable, frozen configuration tree handed to every host
// (§4.2 "Publication"; §3 invariant 4). It is never mutated after
// construction; Section returns a new View over a subtree.
type View struct {
	tree   tree
	prefix string
	diff   Diff
}

func newView(t tree, prefix string, diff Diff) *View {
	return &View{tree: t, prefix: prefix, diff: diff}
}

// Get navigates the dotted path, returning def if any segment is absent.
func (v *View) Get(path string, def interface{}) interface{} {
	val, ok := navigate(v.tree, path)
	if !ok {
		return def
	}
	return val
}

// Section returns a View narrowed to the subtree at path. A missing path
// yields an empty, valid View (Get on it always returns the default).
func (v *View) Section(path string) *View {
	sub, ok := navigate(v.tree, path)
	subTree, isTree := asTree(sub)
	if !ok || !isTree {
		subTree = tree{}
	}

	fqPrefix := path
	if v.prefix != "" {
		fqPrefix = v.prefix + "." + path
	}
	return newView(subTree, fqPrefix, v.diff)
}

// FullyQualifiedPath renders key as it would appear in the root view's
// dotted-path space, accounting for any Section nesting (§8 round-trip
// property: config.get(config.section(P).fully_qualified_path(K)) ==
// config.get(P + "." + K)).
func (v *View) FullyQualifiedPath(key string) string {
	if v.prefix == "" {
		return key
	}
	return v.prefix + "." + key
}

// HasChanged reports whether path changed relative to the previous run,
// resolved against the root view's diff using this view's fully-qualified
// prefix.
func (v *View) HasChanged(path string) bool {
	return v.diff.HasChanged(v.FullyQualifiedPath(path))
}

// LastDiff exposes the structural diff against the previous run (§8).
func (v *View) LastDiff() Diff {
	return v.diff
}

func navigate(t tree, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var cur interface{} = t
	for _, seg := range segments {
		curTree, ok := asTree(cur)
		if !ok {
			return nil, false
		}
		val, exists := curTree[seg]
		if !exists {
			return nil, false
		}
		cur = val
	}
	return cur, true
}
