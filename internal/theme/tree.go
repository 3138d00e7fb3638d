// Package theme resolves layered presentation settings.
//
// A theme is a nested string-keyed tree. Layers merge key by key: maps
// recurse, anything else (lists included) is replaced by the more specific
// layer. The layers, least specific first, are the base theme, a named
// variant or computed tree picked by the strategy, the assessment's own
// override and the per-call override.
package theme

import (
	"fmt"
	"reflect"
)

// Tree is a nested theme configuration
type Tree map[string]interface{}

// Normalize deep-copies v into a Tree: nested maps of any key type become
// Trees with string keys, lists are copied, other leaves are kept.
func Normalize(v map[string]interface{}) Tree {
	if v == nil {
		return Tree{}
	}
	out := make(Tree, len(v))
	for k, val := range v {
		out[k] = normalizeValue(val)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case Tree:
		return Normalize(val)
	case map[string]interface{}:
		return Normalize(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case nil, string, bool, int, int64, float64:
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := make(Tree, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = normalizeValue(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalizeValue(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}

// asTree reports whether v is a map node and returns it as a Tree
func asTree(v interface{}) (Tree, bool) {
	switch val := v.(type) {
	case Tree:
		return val, true
	case map[string]interface{}:
		return Tree(val), true
	default:
		return nil, false
	}
}

// DeepMerge returns a new tree with over layered onto base. Neither input is
// modified. When both sides hold a map at a key the maps merge recursively;
// otherwise the value from over wins outright.
func DeepMerge(base, over Tree) Tree {
	out := Normalize(base)
	for k, v := range over {
		if overTree, ok := asTree(v); ok {
			if baseTree, ok := asTree(out[k]); ok {
				out[k] = DeepMerge(baseTree, overTree)
				continue
			}
		}
		out[k] = normalizeValue(v)
	}
	return out
}

// Merge layers every tree in order onto an empty tree
func Merge(layers ...Tree) Tree {
	out := Tree{}
	for _, layer := range layers {
		out = DeepMerge(out, layer)
	}
	return out
}

// DefaultTree returns the built-in base theme
func DefaultTree() Tree {
	return Tree{
		"colors": Tree{
			"primary": "#2563EB",
			"neutral": Tree{
				"50":  "#F9FAFB",
				"900": "#111827",
			},
		},
		"typography": Tree{
			"font_sans": `system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif`,
			"heading":   "sans",
			"body":      "sans",
		},
		"radius": Tree{
			"sm": "0.375rem",
			"lg": "0.75rem",
		},
		"shadow": Tree{
			"card": "0 10px 30px rgba(15, 23, 42, 0.08)",
		},
		"dark_mode": Tree{
			"enabled": false,
		},
	}
}
