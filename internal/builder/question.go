package builder

import (
	"fmt"

	"github.com/harrison/assessment/internal/models"
)

// QuestionBuilder is the scope of a single question
type QuestionBuilder struct {
	parent   *DefinitionBuilder
	question models.Question
	meta     map[string]interface{}
	options  []*OptionBuilder
}

// ID sets an explicit id; otherwise it is parameterized from the text
func (q *QuestionBuilder) ID(id string) *QuestionBuilder {
	q.question.ID = id
	return q
}

// HelpText sets the secondary text
func (q *QuestionBuilder) HelpText(text string) *QuestionBuilder {
	q.question.HelpText = text
	return q
}

// MultiSelect allows more than one option
func (q *QuestionBuilder) MultiSelect(multi bool) *QuestionBuilder {
	q.question.MultiSelect = multi
	return q
}

// Required marks the question as mandatory (the default)
func (q *QuestionBuilder) Required(required bool) *QuestionBuilder {
	q.question.Required = required
	return q
}

// Meta sets presentation hints
func (q *QuestionBuilder) Meta(meta map[string]interface{}) *QuestionBuilder {
	q.meta = meta
	return q
}

// Option appends an option to this question
func (q *QuestionBuilder) Option(text string) *OptionBuilder {
	o := &OptionBuilder{parent: q, option: models.Option{Text: text}}
	q.options = append(q.options, o)
	return o
}

// Question closes this scope and opens the next question
func (q *QuestionBuilder) Question(text string) *QuestionBuilder {
	return q.parent.Question(text)
}

// ResultRule closes this scope and opens a result rule
func (q *QuestionBuilder) ResultRule(text string) *RuleBuilder {
	return q.parent.ResultRule(text)
}

// Fallback closes this scope and opens a fallback rule
func (q *QuestionBuilder) Fallback(text string) *RuleBuilder {
	return q.parent.Fallback(text)
}

// Build builds the enclosing definition
func (q *QuestionBuilder) Build() (*models.Definition, error) {
	return q.parent.Build()
}

func (q *QuestionBuilder) build() (models.Question, error) {
	question := q.question
	question.Options = nil
	if question.ID == "" {
		question.ID = models.Parameterize(question.Text)
	}

	var err error
	if question.Meta, err = models.NormalizeMap(q.meta); err != nil {
		return models.Question{}, fmt.Errorf("meta: %w", err)
	}
	for i, ob := range q.options {
		opt, err := ob.build()
		if err != nil {
			return models.Question{}, fmt.Errorf("options[%d]: %w", i, err)
		}
		question.Options = append(question.Options, opt)
	}
	return question, nil
}

// OptionBuilder is the scope of a single option
type OptionBuilder struct {
	parent   *QuestionBuilder
	option   models.Option
	valueSet bool
	meta     map[string]interface{}
}

// ID sets an explicit id; otherwise it is parameterized from the text
func (o *OptionBuilder) ID(id string) *OptionBuilder {
	o.option.ID = id
	return o
}

// Tag sets the tag contributed when selected
func (o *OptionBuilder) Tag(tag string) *OptionBuilder {
	o.option.Tag = tag
	return o
}

// Value sets the submitted value; it defaults to the tag
func (o *OptionBuilder) Value(value string) *OptionBuilder {
	o.option.Value = value
	o.valueSet = true
	return o
}

// Score sets the score weight
func (o *OptionBuilder) Score(score float64) *OptionBuilder {
	o.option.Score = models.Float(score)
	return o
}

// NextQuestion records a branching hint
func (o *OptionBuilder) NextQuestion(id string) *OptionBuilder {
	o.option.NextQuestion = id
	return o
}

// Meta sets presentation hints
func (o *OptionBuilder) Meta(meta map[string]interface{}) *OptionBuilder {
	o.meta = meta
	return o
}

// Option appends a sibling option to the same question
func (o *OptionBuilder) Option(text string) *OptionBuilder {
	return o.parent.Option(text)
}

// Question closes this scope and opens the next question
func (o *OptionBuilder) Question(text string) *QuestionBuilder {
	return o.parent.Question(text)
}

// ResultRule closes this scope and opens a result rule
func (o *OptionBuilder) ResultRule(text string) *RuleBuilder {
	return o.parent.ResultRule(text)
}

// Fallback closes this scope and opens a fallback rule
func (o *OptionBuilder) Fallback(text string) *RuleBuilder {
	return o.parent.Fallback(text)
}

// Build builds the enclosing definition
func (o *OptionBuilder) Build() (*models.Definition, error) {
	return o.parent.Build()
}

func (o *OptionBuilder) build() (models.Option, error) {
	opt := o.option
	if opt.ID == "" {
		opt.ID = models.Parameterize(opt.Text)
	}
	if !o.valueSet {
		opt.Value = opt.Tag
	}

	var err error
	if opt.Meta, err = models.NormalizeMap(o.meta); err != nil {
		return models.Option{}, fmt.Errorf("meta: %w", err)
	}
	return opt, nil
}
