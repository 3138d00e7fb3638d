package theme

import (
	"bytes"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/assessment/internal/logger"
)

func TestDeepMerge(t *testing.T) {
	base := Tree{
		"colors": Tree{"primary": "#111", "accent": "#222"},
		"fonts":  []interface{}{"a", "b"},
		"radius": "4px",
	}
	over := Tree{
		"colors": map[string]interface{}{"primary": "#999"},
		"fonts":  []interface{}{"c"},
		"radius": Tree{"sm": "2px"},
		"new":    true,
	}

	merged := DeepMerge(base, over)

	assert.Equal(t, Tree{
		"colors": Tree{"primary": "#999", "accent": "#222"},
		"fonts":  []interface{}{"c"},
		"radius": Tree{"sm": "2px"},
		"new":    true,
	}, merged)

	assert.Equal(t, "#111", base["colors"].(Tree)["primary"], "base is not modified")
	merged["colors"].(Tree)["accent"] = "changed"
	assert.Equal(t, "#222", base["colors"].(Tree)["accent"], "result does not alias base")
}

func TestMergeNilLayers(t *testing.T) {
	assert.Equal(t, Tree{"a": 1}, Merge(nil, Tree{"a": 1}, nil))
	assert.Equal(t, Tree{}, Merge())
}

func TestNormalizeGenericKeys(t *testing.T) {
	tree := Normalize(map[string]interface{}{
		"neutral": map[interface{}]interface{}{50: "#F9FAFB"},
	})
	assert.Equal(t, Tree{"neutral": Tree{"50": "#F9FAFB"}}, tree)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{in: "", want: StrategyFixed},
		{in: "initializer", want: StrategyFixed},
		{in: "FIXED", want: StrategyFixed},
		{in: "param", want: StrategyParam},
		{in: "proc", want: StrategyComputed},
		{in: "computed", want: StrategyComputed},
		{in: "random", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func variants() map[string]Tree {
	return map[string]Tree{
		"ocean": {"colors": Tree{"primary": "#0EA5E9"}},
		"night": {"colors": Tree{"primary": "#000000"}, "dark_mode": Tree{"enabled": true}},
	}
}

func TestResolverFixed(t *testing.T) {
	r := NewResolver(Config{Variants: variants()})

	got := r.Resolve(Params{"theme": "ocean"}, nil, nil)
	assert.Equal(t, "#2563EB", Token(got, "colors.primary", nil), "fixed ignores the request")
	assert.Equal(t, StrategyFixed, r.Strategy())
}

func TestResolverParam(t *testing.T) {
	r := NewResolver(Config{
		Strategy:  StrategyParam,
		Variants:  variants(),
		ParamKeys: []string{"skin", "theme"},
	})

	tests := []struct {
		name string
		req  RequestContext
		want string
	}{
		{name: "first candidate key", req: Params{"skin": "night", "theme": "ocean"}, want: "#000000"},
		{name: "second candidate key", req: Params{"theme": "ocean"}, want: "#0EA5E9"},
		{name: "unknown variant falls back to base", req: Params{"theme": "missing"}, want: "#2563EB"},
		{name: "present but unknown first key stops the search", req: Params{"skin": "missing", "theme": "ocean"}, want: "#2563EB"},
		{name: "no key", req: Params{}, want: "#2563EB"},
		{name: "nil request", req: nil, want: "#2563EB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.req, nil, nil)
			assert.Equal(t, tt.want, Token(got, "colors.primary", nil))
			assert.Equal(t, "0.75rem", Token(got, "radius.lg", nil), "base keys survive")
		})
	}
}

func TestResolverComputed(t *testing.T) {
	r := NewResolver(Config{
		Strategy: StrategyComputed,
		Compute: func(req RequestContext) Tree {
			brand, _ := req.Param("brand")
			return Tree{"colors": Tree{"primary": brand}}
		},
	})

	got := r.Resolve(Params{"brand": "#ABCDEF"}, nil, nil)
	assert.Equal(t, "#ABCDEF", Token(got, "colors.primary", nil))
	assert.Equal(t, "#111827", Token(got, "colors.neutral.900", nil))
}

func TestResolverComputedPanicDegradesToBase(t *testing.T) {
	buf := &bytes.Buffer{}
	r := NewResolver(Config{
		Strategy: StrategyComputed,
		Compute:  func(req RequestContext) Tree { panic("bad callback") },
		Logger:   logger.NewConsoleLogger(buf, "warn"),
	})

	got := r.Resolve(nil, nil, nil)
	assert.Equal(t, DefaultTree(), got)
	assert.Contains(t, buf.String(), "bad callback")

	nilCompute := NewResolver(Config{Strategy: StrategyComputed})
	assert.Equal(t, DefaultTree(), nilCompute.Resolve(nil, nil, nil))
}

func TestResolverOverridePrecedence(t *testing.T) {
	r := NewResolver(Config{
		Base:      Tree{"a": "base", "b": "base", "c": "base", "d": "base"},
		Strategy:  StrategyParam,
		Variants:  map[string]Tree{"v": {"b": "variant", "c": "variant", "d": "variant"}},
		ParamKeys: []string{"theme"},
	})

	got := r.Resolve(Params{"theme": "v"}, Tree{"c": "definition", "d": "definition"}, Tree{"d": "call"})
	assert.Equal(t, Tree{"a": "base", "b": "variant", "c": "definition", "d": "call"}, got)
}

func TestResolverIsIdempotent(t *testing.T) {
	r := NewResolver(Config{Strategy: StrategyParam, Variants: variants()})
	req := Params{"theme": "ocean"}
	override := Tree{"radius": Tree{"sm": "0"}}

	first := r.Resolve(req, override, nil)
	second := r.Resolve(req, override, nil)
	assert.Equal(t, first, second)

	first["colors"].(Tree)["primary"] = "mutated"
	third := r.Resolve(req, override, nil)
	assert.Equal(t, "#0EA5E9", Token(third, "colors.primary", nil))

	v, ok := r.Variant("ocean")
	require.True(t, ok)
	assert.Equal(t, "#0EA5E9", Token(v, "colors.primary", nil))
	_, ok = r.Variant("nope")
	assert.False(t, ok)
	assert.Equal(t, DefaultTree(), r.Base())
}

func TestCSSVariables(t *testing.T) {
	css := CSSVariables(DefaultTree(), "")

	assert.True(t, strings.HasPrefix(css, "--assessment-colors-neutral-50: #F9FAFB;"))
	assert.Contains(t, css, "--assessment-colors-primary: #2563EB;")
	assert.Contains(t, css, "--assessment-typography-font-sans: system-ui")
	assert.Contains(t, css, "--assessment-dark-mode-enabled: false;")
	assert.Contains(t, css, "--assessment-shadow-card: 0 10px 30px rgba(15, 23, 42, 0.08);")

	custom := CSSVariables(Tree{"spacing": Tree{"unit": 0.25}}, "quiz")
	assert.Equal(t, "--quiz-spacing-unit: 0.25;", custom)
}

func TestToken(t *testing.T) {
	tree := DefaultTree()

	assert.Equal(t, "#2563EB", Token(tree, "colors.primary", nil))
	assert.Equal(t, "fallback", Token(tree, "colors.missing", "fallback"))
	assert.Equal(t, "fallback", Token(tree, "colors.primary.deeper", "fallback"))
	assert.Equal(t, false, Token(tree, "dark_mode.enabled", true))

	assert.Equal(t, "0.375rem", TokenString(tree, "radius.sm", ""))
	assert.Equal(t, "x", TokenString(tree, "radius", "x"), "subtrees are not strings")
	assert.Equal(t, "false", TokenString(tree, "dark_mode.enabled", ""))
}

func TestDarkMode(t *testing.T) {
	tests := []struct {
		name        string
		tree        Tree
		wantEnabled bool
		wantDefault string
	}{
		{name: "default tree", tree: DefaultTree(), wantEnabled: false},
		{name: "bool true", tree: Tree{"dark_mode": Tree{"enabled": true, "default": "dark"}}, wantEnabled: true, wantDefault: "dark"},
		{name: "string yes", tree: Tree{"dark_mode": Tree{"enabled": " Yes "}}, wantEnabled: true},
		{name: "string on", tree: Tree{"dark_mode": Tree{"enabled": "on"}}, wantEnabled: true},
		{name: "string 1", tree: Tree{"dark_mode": Tree{"enabled": "1"}}, wantEnabled: true},
		{name: "string off", tree: Tree{"dark_mode": Tree{"enabled": "off"}}, wantEnabled: false},
		{name: "number", tree: Tree{"dark_mode": Tree{"enabled": int64(1)}}, wantEnabled: true},
		{name: "not a map", tree: Tree{"dark_mode": true}, wantEnabled: false},
		{name: "missing", tree: Tree{}, wantEnabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantEnabled, DarkModeEnabled(tt.tree))
			assert.Equal(t, tt.wantDefault, DarkModeDefault(tt.tree))
		})
	}
}

func TestForMode(t *testing.T) {
	explicit := Tree{
		"colors": Tree{"primary": "#fff", "bg": "#fff"},
		"dark_mode": Tree{
			"enabled":   true,
			"overrides": Tree{"colors": Tree{"bg": "#000"}},
			"colors":    Tree{"primary": "ignored"},
		},
	}
	implicit := Tree{
		"colors":    Tree{"primary": "#fff", "bg": "#fff"},
		"dark_mode": Tree{"enabled": true, "colors": Tree{"bg": "#111"}},
	}

	assert.Equal(t, "#fff", Token(ForMode(explicit, "light"), "colors.bg", nil))

	dark := ForMode(explicit, "dark")
	assert.Equal(t, "#000", Token(dark, "colors.bg", nil))
	assert.Equal(t, "#fff", Token(dark, "colors.primary", nil), "overrides key wins over loose keys")

	darkImplicit := ForMode(implicit, "DARK")
	assert.Equal(t, "#111", Token(darkImplicit, "colors.bg", nil))
	assert.Equal(t, "#fff", Token(darkImplicit, "colors.primary", nil))

	assert.Equal(t, DefaultTree(), ForMode(DefaultTree(), "dark"), "no overrides leaves the tree as is")
}

func TestCache(t *testing.T) {
	calls := 0
	r := NewResolver(Config{
		Strategy: StrategyComputed,
		Compute: func(req RequestContext) Tree {
			calls++
			return nil
		},
	})
	cache := NewCache(r, Params{})

	a := cache.Resolve(Tree{"colors": Tree{"primary": "#1"}}, nil)
	b := cache.Resolve(Tree{"colors": Tree{"primary": "#1"}}, nil)
	c := cache.Resolve(Tree{"colors": Tree{"primary": "#2"}}, nil)
	d := cache.Resolve(nil, nil)
	e := cache.Resolve(Tree{}, nil)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, cache.Len())
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, d, e)
	assert.NotEqual(t, cacheKey(Tree{"x": 1}, nil), cacheKey(nil, Tree{"x": 1}), "layer position is part of the key")
}

func TestFromHTTP(t *testing.T) {
	req := httptest.NewRequest("POST", "/v1/assessments/quiz?theme=query&only_query=q", strings.NewReader("theme=form&only_form=f"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, req.ParseForm())

	ctx := FromHTTP(req, map[string]string{"theme": "path"})

	v, ok := ctx.Param("theme")
	assert.True(t, ok)
	assert.Equal(t, "path", v)

	v, _ = ctx.Param("only_query")
	assert.Equal(t, "q", v)
	v, _ = ctx.Param("only_form")
	assert.Equal(t, "f", v)
	_, ok = ctx.Param("absent")
	assert.False(t, ok)

	empty := Values(url.Values{"k": {}})
	v, ok = empty.Param("k")
	assert.True(t, ok)
	assert.Equal(t, "", v)
}
