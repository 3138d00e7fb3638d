// Package builtin holds assessments defined in code rather than documents.
package builtin

import (
	"github.com/harrison/assessment/internal/builder"
	"github.com/harrison/assessment/internal/models"
	"github.com/harrison/assessment/internal/registry"
)

// DemoSlug is the slug of the bundled demo assessment
const DemoSlug = "digital-readiness"

// Sources returns every code-defined assessment
func Sources() []registry.Source {
	return []registry.Source{
		{Name: DemoSlug, Build: DigitalReadiness},
	}
}

// DigitalReadiness is a small demo assessment exercising tags, scores and fallback
func DigitalReadiness() (*models.Definition, error) {
	b := builder.New(DemoSlug).
		Title("Digital Readiness Check").
		Hook("How ready is your team for digital delivery?").
		EstimatedTime("2 minutes").
		ShowStartScreen(true).
		CaptureEmail(true).
		CaptureName(true).
		Theme(map[string]interface{}{
			"colors": map[string]interface{}{"primary": "#0F766E"},
		})

	b.Question("How often do you release to production?").ID("release").
		HelpText("Count deploys that reach customers").
		Option("Several times a week").ID("weekly").Tag("fast-release").Score(3).
		Option("Monthly").ID("monthly").Tag("steady-release").Score(2).
		Option("A few times a year").ID("rarely").Tag("slow-release").Score(0)

	b.Question("Which practices are in place?").ID("practices").
		MultiSelect(true).
		Required(false).
		Option("Automated tests").ID("tests").Tag("testing").Score(2).
		Option("Continuous integration").ID("ci").Tag("ci").Score(2).
		Option("Infrastructure as code").ID("iac").Tag("iac").Score(1)

	b.Question("Who owns incidents?").ID("ownership").
		Option("The team that built it").ID("team").Tag("ownership").Score(2).
		Option("A separate operations group").ID("ops").Score(1)

	b.ResultRule("You are delivery leaders. Keep sharpening the edges.").ID("leader").
		Tags("fast-release", "ci").
		ScoreAtLeast(8).
		Payload(map[string]interface{}{
			"headline": "Delivery leader",
			"cta_text": "Compare with peers",
		})
	b.ResultRule("Solid foundations. Automate the next bottleneck.").ID("solid").
		AnyTags("testing", "ci").
		ExcludeTags("slow-release").
		ScoreAtLeast(4)
	b.ResultRule("Start with small, frequent releases.").ID("starter").
		Tags("slow-release")
	b.Fallback("Thanks! We will follow up with tailored suggestions.").ID("follow-up")

	return b.Build()
}
