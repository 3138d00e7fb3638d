package display

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestWarningString(t *testing.T) {
	tests := []struct {
		name        string
		warning     Warning
		contains    []string
		notContains []string
	}{
		{
			name:        "title only",
			warning:     Warning{Title: "Configuration Missing"},
			contains:    []string{"⚠️  Warning: Configuration Missing\n"},
			notContains: []string{"Affected", "Suggestion"},
		},
		{
			name:     "with message",
			warning:  Warning{Title: "Deprecated", Message: "Use the new key"},
			contains: []string{"    Use the new key\n"},
		},
		{
			name:     "single file",
			warning:  Warning{Title: "T", Files: []string{"a.yml"}},
			contains: []string{"    Affected file:\n", "      1. a.yml\n"},
		},
		{
			name:     "multiple files",
			warning:  Warning{Title: "T", Files: []string{"a.yml", "b.json"}},
			contains: []string{"    Affected files:\n", "      1. a.yml\n", "      2. b.json\n"},
		},
		{
			name:     "with suggestion",
			warning:  Warning{Title: "T", Suggestion: "Rename it"},
			contains: []string{"    Suggestion:\n    Rename it\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.warning.String()
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestWarningDisplayWithoutColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	w := WarnDuplicateSlug("readiness", []string{"a.yml", "b.json"})
	var buf bytes.Buffer
	w.Display(&buf)

	assert.Equal(t, w.String(), buf.String())
	assert.Contains(t, buf.String(), `Assessment "readiness" is defined more than once`)
	assert.Contains(t, buf.String(), "2. b.json")
}

func TestWarningDisplayWithColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = prev }()

	var buf bytes.Buffer
	Warning{Title: "T"}.Display(&buf)
	assert.Contains(t, buf.String(), "\x1b[33m")
}

func TestWarnDefinitionProblems(t *testing.T) {
	tests := []struct {
		name      string
		problems  []string
		wantTitle string
	}{
		{name: "one problem", problems: []string{"questions[1]: no id"}, wantTitle: `Assessment "quiz" has 1 authoring problem`},
		{name: "several problems", problems: []string{"a", "b"}, wantTitle: `Assessment "quiz" has 2 authoring problems`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := WarnDefinitionProblems("quiz", "quiz.yml", tt.problems).String()
			assert.Contains(t, out, tt.wantTitle+"\n")
			assert.Contains(t, out, "1. quiz.yml")
			for _, p := range tt.problems {
				assert.Contains(t, out, "    "+p+"\n")
			}
		})
	}
}
