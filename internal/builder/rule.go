package builder

import (
	"fmt"

	"github.com/harrison/assessment/internal/models"
)

// RuleBuilder is the scope of a single result rule
type RuleBuilder struct {
	parent  *DefinitionBuilder
	rule    models.ResultRule
	payload map[string]interface{}
	meta    map[string]interface{}
}

// ID sets an explicit id; otherwise it is parameterized from the text
func (r *RuleBuilder) ID(id string) *RuleBuilder {
	r.rule.ID = id
	return r
}

// Tags sets the tags that must all be present
func (r *RuleBuilder) Tags(tags ...string) *RuleBuilder {
	r.rule.AllTags = tags
	return r
}

// AnyTags sets the tags of which at least one must be present
func (r *RuleBuilder) AnyTags(tags ...string) *RuleBuilder {
	r.rule.AnyTags = tags
	return r
}

// ExcludeTags sets the tags none of which may be present
func (r *RuleBuilder) ExcludeTags(tags ...string) *RuleBuilder {
	r.rule.ExcludeTags = tags
	return r
}

// ScoreAtLeast sets the inclusive lower score bound
func (r *RuleBuilder) ScoreAtLeast(score float64) *RuleBuilder {
	r.rule.ScoreAtLeast = models.Float(score)
	return r
}

// ScoreAtMost sets the inclusive upper score bound
func (r *RuleBuilder) ScoreAtMost(score float64) *RuleBuilder {
	r.rule.ScoreAtMost = models.Float(score)
	return r
}

// Payload sets the structured outcome data
func (r *RuleBuilder) Payload(payload map[string]interface{}) *RuleBuilder {
	r.payload = payload
	return r
}

// Meta sets presentation hints
func (r *RuleBuilder) Meta(meta map[string]interface{}) *RuleBuilder {
	r.meta = meta
	return r
}

// Fallback flags the rule as a candidate of last resort
func (r *RuleBuilder) Fallback(fallback bool) *RuleBuilder {
	r.rule.Fallback = fallback
	return r
}

// Question closes this scope and opens a question
func (r *RuleBuilder) Question(text string) *QuestionBuilder {
	return r.parent.Question(text)
}

// ResultRule closes this scope and opens the next rule
func (r *RuleBuilder) ResultRule(text string) *RuleBuilder {
	return r.parent.ResultRule(text)
}

// Build builds the enclosing definition
func (r *RuleBuilder) Build() (*models.Definition, error) {
	return r.parent.Build()
}

func (r *RuleBuilder) build() (models.ResultRule, error) {
	rule := r.rule
	if rule.ID == "" {
		rule.ID = models.Parameterize(rule.Text)
	}
	rule.AllTags = models.NormalizeTags(rule.AllTags)
	rule.AnyTags = models.NormalizeTags(rule.AnyTags)
	rule.ExcludeTags = models.NormalizeTags(rule.ExcludeTags)

	var err error
	if rule.Payload, err = models.NormalizeMap(r.payload); err != nil {
		return models.ResultRule{}, fmt.Errorf("payload: %w", err)
	}
	if rule.Meta, err = models.NormalizeMap(r.meta); err != nil {
		return models.ResultRule{}, fmt.Errorf("meta: %w", err)
	}
	return rule, nil
}
