package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var warningColor = color.New(color.FgYellow)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// String renders the warning without color
func (w Warning) String() string {
	var b strings.Builder

	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		if len(w.Files) == 1 {
			b.WriteString("    Affected file:\n")
		} else {
			b.WriteString("    Affected files:\n")
		}
		for i, file := range w.Files {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	return b.String()
}

// Display writes the warning to out, in yellow when color is enabled
func (w Warning) Display(out io.Writer) {
	warningColor.Fprint(out, w.String())
}

// WarnDuplicateSlug creates the warning for a slug defined by more than one source.
// The last source listed is the one that stays registered.
func WarnDuplicateSlug(slug string, sources []string) Warning {
	return Warning{
		Title:      fmt.Sprintf("Assessment %q is defined more than once", slug),
		Message:    "The later definition replaces the earlier one.",
		Files:      sources,
		Suggestion: "Give each document a unique slug or remove the stale copy",
	}
}

// WarnDefinitionProblems creates the warning for authoring problems in one
// definition. The definition still loads.
func WarnDefinitionProblems(slug, origin string, problems []string) Warning {
	return Warning{
		Title:      fmt.Sprintf("Assessment %q has %d authoring %s", slug, len(problems), pluralize(len(problems), "problem", "problems")),
		Message:    strings.Join(problems, "\n    "),
		Files:      []string{origin},
		Suggestion: "Give every question a unique id so answers can be submitted for it",
	}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
