// Package builder provides the code-authored construction path for assessment
// definitions. Every nested scope is its own builder exposing only the setters
// valid there; Build assembles them in declaration order and applies the same
// defaults as models.FromDocument, so both paths yield equal definitions.
//
//	def, err := builder.New("readiness").
//		Title("Team Readiness").
//		Question("Do you ship weekly?").
//			Option("Yes").Tag("ships").Score(5).
//		Build()
package builder

import (
	"fmt"

	"github.com/harrison/assessment/internal/models"
)

// DefinitionBuilder is the top-level scope
type DefinitionBuilder struct {
	def       *models.Definition
	theme     map[string]interface{}
	metadata  map[string]interface{}
	questions []*QuestionBuilder
	rules     []*RuleBuilder
}

// New opens a definition scope. An empty slug is parameterized from the title at Build time.
func New(slug string) *DefinitionBuilder {
	return &DefinitionBuilder{def: models.NewDefinition(slug)}
}

// Title sets the display title
func (b *DefinitionBuilder) Title(title string) *DefinitionBuilder {
	b.def.Title = title
	return b
}

// Hook sets the start-screen teaser
func (b *DefinitionBuilder) Hook(hook string) *DefinitionBuilder {
	b.def.Hook = hook
	return b
}

// Description sets the long description
func (b *DefinitionBuilder) Description(description string) *DefinitionBuilder {
	b.def.Description = description
	return b
}

// Theme sets the per-definition theme override
func (b *DefinitionBuilder) Theme(theme map[string]interface{}) *DefinitionBuilder {
	b.theme = theme
	return b
}

// Metadata sets the opaque metadata bag
func (b *DefinitionBuilder) Metadata(metadata map[string]interface{}) *DefinitionBuilder {
	b.metadata = metadata
	return b
}

// EstimatedTime sets the duration hint
func (b *DefinitionBuilder) EstimatedTime(estimate string) *DefinitionBuilder {
	b.def.EstimatedTime = estimate
	return b
}

// ShowStartScreen toggles the intro screen
func (b *DefinitionBuilder) ShowStartScreen(show bool) *DefinitionBuilder {
	b.def.ShowStartScreen = show
	return b
}

// ShowQuestionCount toggles the "question N of M" counter
func (b *DefinitionBuilder) ShowQuestionCount(show bool) *DefinitionBuilder {
	b.def.ShowQuestionCount = show
	return b
}

// Logo sets the logo URL
func (b *DefinitionBuilder) Logo(url string) *DefinitionBuilder {
	b.def.Logo = url
	return b
}

// NotificationEmail sets the lead notification recipient
func (b *DefinitionBuilder) NotificationEmail(email string) *DefinitionBuilder {
	b.def.NotificationEmail = email
	return b
}

// WebhookURL sets the lead webhook endpoint
func (b *DefinitionBuilder) WebhookURL(url string) *DefinitionBuilder {
	b.def.WebhookURL = url
	return b
}

// CaptureEmail toggles e-mail capture
func (b *DefinitionBuilder) CaptureEmail(capture bool) *DefinitionBuilder {
	b.def.CaptureEmail = capture
	return b
}

// CaptureName toggles name capture
func (b *DefinitionBuilder) CaptureName(capture bool) *DefinitionBuilder {
	b.def.CaptureName = capture
	return b
}

// Question opens a question scope appended after any previously opened question
func (b *DefinitionBuilder) Question(text string) *QuestionBuilder {
	q := &QuestionBuilder{parent: b, question: models.NewQuestion("", text)}
	b.questions = append(b.questions, q)
	return q
}

// ResultRule opens a result rule scope appended after any previously opened rule
func (b *DefinitionBuilder) ResultRule(text string) *RuleBuilder {
	r := &RuleBuilder{parent: b, rule: models.ResultRule{Text: text}}
	b.rules = append(b.rules, r)
	return r
}

// Fallback opens a result rule scope flagged as a fallback candidate
func (b *DefinitionBuilder) Fallback(text string) *RuleBuilder {
	return b.ResultRule(text).Fallback(true)
}

// Build assembles the definition
func (b *DefinitionBuilder) Build() (*models.Definition, error) {
	def := *b.def
	def.Questions = nil
	def.ResultRules = nil

	if def.Slug == "" {
		def.Slug = models.Parameterize(def.Title)
	}

	var err error
	if def.Theme, err = models.NormalizeMap(b.theme); err != nil {
		return nil, fmt.Errorf("theme: %w", err)
	}
	if def.Metadata, err = models.NormalizeMap(b.metadata); err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	for i, qb := range b.questions {
		q, err := qb.build()
		if err != nil {
			return nil, fmt.Errorf("questions[%d]: %w", i, err)
		}
		def.AddQuestion(q)
	}
	for i, rb := range b.rules {
		r, err := rb.build()
		if err != nil {
			return nil, fmt.Errorf("result_rules[%d]: %w", i, err)
		}
		def.AddResultRule(r)
	}
	return &def, nil
}

// MustBuild is Build for package-level definitions known to be valid; it panics on error
func (b *DefinitionBuilder) MustBuild() *models.Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
