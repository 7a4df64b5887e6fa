package configuration

// tree is the parsed-YAML representation shared across merge, override, and
// diff: a recursive map[string]interface{}/[]interface{}/scalar value, keyed
// by single path segments (dots only appear once flattened for diffing).
type tree = map[string]interface{}

func cloneTree(t tree) tree {
	out := make(tree, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch value := v.(type) {
	case tree:
		return cloneTree(value)
	case map[string]interface{}:
		return cloneTree(value)
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, e := range value {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// mergeDefaults folds src into dst per §4.2's plugin-default merge rule:
// scalars are replaced (last-wins), lists are concatenated (dst first, src
// appended), maps are merged recursively.
func mergeDefaults(dst, src tree) tree {
	return mergeInto(dst, src, true)
}

// mergeOverride folds src into dst per §4.2's user-override rule: same as
// mergeDefaults except lists are replaced wholesale rather than concatenated.
func mergeOverride(dst, src tree) tree {
	return mergeInto(dst, src, false)
}

func mergeInto(dst, src tree, concatLists bool) tree {
	out := cloneTree(dst)
	for k, sv := range src {
		dv, exists := out[k]
		if !exists {
			out[k] = cloneValue(sv)
			continue
		}
		out[k] = mergeValue(dv, sv, concatLists)
	}
	return out
}

func mergeValue(dst, src interface{}, concatLists bool) interface{} {
	dstMap, dstIsMap := asTree(dst)
	srcMap, srcIsMap := asTree(src)
	if dstIsMap && srcIsMap {
		return mergeInto(dstMap, srcMap, concatLists)
	}

	dstList, dstIsList := dst.([]interface{})
	srcList, srcIsList := src.([]interface{})
	if dstIsList && srcIsList {
		if !concatLists {
			return cloneValue(srcList)
		}
		out := make([]interface{}, 0, len(dstList)+len(srcList))
		for _, e := range dstList {
			out = append(out, cloneValue(e))
		}
		for _, e := range srcList {
			out = append(out, cloneValue(e))
		}
		return out
	}

	// Type mismatch or scalar: src always wins (last-wins for scalars; a
	// shape change from a later document also simply replaces).
	return cloneValue(src)
}

func asTree(v interface{}) (tree, bool) {
	switch value := v.(type) {
	case tree:
		return value, true
	case map[string]interface{}:
		return value, true
	default:
		return nil, false
	}
}

// flatten renders t as dotted-path → leaf-value pairs, used by the diff
// engine. Lists are treated as opaque leaves (compared by full equality,
// per §4.2's diff semantics), never descended into.
func flatten(t tree) map[string]interface{} {
	out := map[string]interface{}{}
	flattenInto(t, "", out)
	return out
}

func flattenInto(t tree, prefix string, out map[string]interface{}) {
	for k, v := range t {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if sub, ok := asTree(v); ok {
			flattenInto(sub, path, out)
			continue
		}
		out[path] = v
	}
}
