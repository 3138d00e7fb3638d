package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDefinition wraps every Validate failure
var ErrInvalidDefinition = errors.New("invalid definition")

// Validate checks what a definition needs to be registered: a slug.
// Everything else a document leaves out defaults to empty and is reported by Lint.
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.Slug) == "" {
		return fmt.Errorf("%w: slug is required (set slug or title)", ErrInvalidDefinition)
	}
	return nil
}

// Lint reports authoring problems that do not prevent loading. Questions need a
// unique id, option ids must be unique within a question, and a rule's score
// bounds must be satisfiable. A definition with problems still loads and evaluates.
func (d *Definition) Lint() []string {
	var problems []string

	seenQuestions := make(map[string]bool, len(d.Questions))
	for i, q := range d.Questions {
		switch {
		case q.ID == "":
			problems = append(problems, fmt.Sprintf("questions[%d]: no id (set id or text)", i))
		case seenQuestions[q.ID]:
			problems = append(problems, fmt.Sprintf("questions[%d]: duplicate id %q", i, q.ID))
		}
		seenQuestions[q.ID] = true

		seenOptions := make(map[string]bool, len(q.Options))
		for j, opt := range q.Options {
			if opt.ID == "" {
				continue
			}
			if seenOptions[opt.ID] {
				problems = append(problems, fmt.Sprintf("questions[%d].options[%d]: duplicate id %q", i, j, opt.ID))
			}
			seenOptions[opt.ID] = true
		}
	}

	for i, r := range d.ResultRules {
		if r.ScoreAtLeast != nil && r.ScoreAtMost != nil && *r.ScoreAtLeast > *r.ScoreAtMost {
			problems = append(problems, fmt.Sprintf("result_rules[%d]: score_at_least %v exceeds score_at_most %v, rule never matches", i, *r.ScoreAtLeast, *r.ScoreAtMost))
		}
	}

	return problems
}
