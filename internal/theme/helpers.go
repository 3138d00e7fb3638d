package theme

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultCSSPrefix prefixes every generated CSS custom property
const DefaultCSSPrefix = "assessment"

// darkModeControlKeys are the dark_mode keys that configure rather than override
var darkModeControlKeys = map[string]bool{"enabled": true, "default": true, "overrides": true}

// Flatten collapses the tree into dash-joined keys. Underscores in keys
// become dashes: {"typography": {"font_sans": x}} → "typography-font-sans".
func Flatten(tree Tree) map[string]string {
	out := make(map[string]string)
	flattenInto(tree, "", out)
	return out
}

func flattenInto(tree Tree, parent string, out map[string]string) {
	for k, v := range tree {
		key := strings.ReplaceAll(k, "_", "-")
		if parent != "" {
			key = parent + "-" + key
		}
		if sub, ok := asTree(v); ok {
			flattenInto(sub, key, out)
			continue
		}
		out[key] = formatValue(v)
	}
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// CSSVariables renders the flattened tree as CSS custom property
// declarations sorted by name, e.g. "--assessment-colors-primary: #2563EB;".
// An empty prefix uses DefaultCSSPrefix.
func CSSVariables(tree Tree, prefix string) string {
	if prefix == "" {
		prefix = DefaultCSSPrefix
	}
	flat := Flatten(tree)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	decls := make([]string, 0, len(keys))
	for _, k := range keys {
		decls = append(decls, fmt.Sprintf("--%s-%s: %s;", prefix, k, flat[k]))
	}
	return strings.Join(decls, " ")
}

// Token looks up a dotted path such as "colors.primary"; def is returned when
// any segment is missing or a non-map is reached before the end
func Token(tree Tree, path string, def interface{}) interface{} {
	var current interface{} = tree
	for _, key := range strings.Split(path, ".") {
		node, ok := asTree(current)
		if !ok {
			return def
		}
		current, ok = node[key]
		if !ok || current == nil {
			return def
		}
	}
	return current
}

// TokenString is Token rendered as a string
func TokenString(tree Tree, path, def string) string {
	v := Token(tree, path, nil)
	if v == nil {
		return def
	}
	if _, ok := asTree(v); ok {
		return def
	}
	return formatValue(v)
}

// DarkModeEnabled reports whether dark_mode.enabled is truthy
func DarkModeEnabled(tree Tree) bool {
	dark, ok := asTree(tree["dark_mode"])
	if !ok {
		return false
	}
	return truthy(dark["enabled"])
}

// DarkModeDefault returns dark_mode.default ("light", "dark", "system"), or "" when unset
func DarkModeDefault(tree Tree) string {
	dark, ok := asTree(tree["dark_mode"])
	if !ok || dark["default"] == nil {
		return ""
	}
	return formatValue(dark["default"])
}

// ForMode returns the tree to render for mode. For "dark" the dark-mode
// overrides are merged on top: dark_mode.overrides when present, otherwise
// every non-control key of dark_mode.
func ForMode(tree Tree, mode string) Tree {
	if !strings.EqualFold(mode, "dark") {
		return Normalize(tree)
	}
	overrides := darkOverrides(tree)
	if len(overrides) == 0 {
		return Normalize(tree)
	}
	return DeepMerge(tree, overrides)
}

func darkOverrides(tree Tree) Tree {
	dark, ok := asTree(tree["dark_mode"])
	if !ok {
		return nil
	}
	if raw, present := dark["overrides"]; present {
		overrides, _ := asTree(raw)
		return overrides
	}
	out := Tree{}
	for k, v := range dark {
		if !darkModeControlKeys[k] {
			out[k] = v
		}
	}
	return out
}

// truthy accepts true, non-zero numbers and the strings true/1/yes/on
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}
