// Package response turns raw submitted values into canonical answers.
package response

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/harrison/assessment/internal/models"
)

// Input is the raw submission: question id → a string, a list of strings, or
// any scalar/list mix (numbers and booleans are compared by their text form).
// A list value may also be keyed as "id[]", the HTML form convention.
type Input map[string]interface{}

// InputFromValues adapts URL-encoded form or query values
func InputFromValues(values url.Values) Input {
	input := make(Input, len(values))
	for key, vals := range values {
		copied := make([]string, len(vals))
		copy(copied, vals)
		input[key] = copied
	}
	return input
}

// Values returns the submitted values for a question id, flattened to strings
// with blank entries removed. The plain key wins over "id[]".
func (in Input) Values(questionID string) []string {
	raw, ok := in[questionID]
	if !ok {
		raw, ok = in[questionID+"[]"]
	}
	if !ok {
		return nil
	}

	var out []string
	flatten(raw, &out)
	return out
}

func flatten(v interface{}, out *[]string) {
	switch val := v.(type) {
	case nil:
		return
	case string:
		if strings.TrimSpace(val) != "" {
			*out = append(*out, val)
		}
	case []string:
		for _, s := range val {
			flatten(s, out)
		}
	case []interface{}:
		for _, item := range val {
			flatten(item, out)
		}
	case bool:
		*out = append(*out, strconv.FormatBool(val))
	case int:
		*out = append(*out, strconv.Itoa(val))
	case int64:
		*out = append(*out, strconv.FormatInt(val, 10))
	case float64:
		*out = append(*out, strconv.FormatFloat(val, 'f', -1, 64))
	case fmt.Stringer:
		flatten(val.String(), out)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				flatten(rv.Index(i).Interface(), out)
			}
		}
	}
}

// Builder builds canonical answers for one definition
type Builder struct {
	def *models.Definition
}

// NewBuilder creates a builder bound to def
func NewBuilder(def *models.Definition) *Builder {
	return &Builder{def: def}
}

// Build resolves the input against every question. Questions with no
// resolvable value are absent from the result; checking required questions
// is left to MissingRequired.
func (b *Builder) Build(input Input) models.Answers {
	answers := make(models.Answers)

	for _, q := range b.def.Questions {
		values := input.Values(q.ID)
		if len(values) == 0 {
			continue
		}
		if !q.MultiSelect {
			values = values[:1]
		}

		selected := resolve(q, values)
		if len(selected) == 0 {
			continue
		}
		answers[q.ID] = canonical(q, selected)
	}

	return answers
}

// Build is a shorthand for NewBuilder(def).Build(input)
func Build(def *models.Definition, input Input) models.Answers {
	return NewBuilder(def).Build(input)
}

// resolve maps raw values to options. Each value picks the first option whose
// id, tag or value equals it; unmatched values are dropped. Every resolved value
// yields an entry, so two values naming one option count it twice.
func resolve(q models.Question, values []string) []models.Option {
	var selected []models.Option

	for _, v := range values {
		for _, opt := range q.Options {
			if opt.ID == v || opt.Tag == v || opt.Value == v {
				selected = append(selected, opt)
				break
			}
		}
	}
	return selected
}

func canonical(q models.Question, selected []models.Option) models.CanonicalAnswer {
	answer := models.CanonicalAnswer{
		Question: q.Text,
		Tags:     []string{},
	}

	var tags []string
	for _, opt := range selected {
		if opt.Tag != "" {
			tags = append(tags, opt.Tag)
		}
		if opt.Score != nil {
			answer.Score += *opt.Score
		}
	}
	if normalized := models.NormalizeTags(tags); normalized != nil {
		answer.Tags = normalized
	}

	if q.MultiSelect {
		for _, opt := range selected {
			answer.Options = append(answer.Options, models.PayloadFor(opt))
		}
	} else {
		payload := models.PayloadFor(selected[0])
		answer.Option = &payload
	}
	return answer
}

// MissingRequired returns, in declaration order, the ids of required
// questions that have no answer
func MissingRequired(def *models.Definition, answers models.Answers) []string {
	var missing []string
	for _, q := range def.Questions {
		if q.Required && !answers.Answered(q.ID) {
			missing = append(missing, q.ID)
		}
	}
	return missing
}
