// Package logic selects the result rule that applies to a respondent.
//
// Rules are scanned in declaration order and the first match wins. When none
// match, the last-declared fallback rule is used; failing that, an ephemeral
// fallback carrying the configured text; failing that, nil.
package logic

import "github.com/harrison/assessment/internal/models"

// FallbackRuleID is the id of the rule synthesized from fallback text
const FallbackRuleID = "fallback"

type evalOptions struct {
	score        *float64
	fallbackText *string
}

// Option configures Evaluate
type Option func(*evalOptions)

// WithScore supplies the respondent's score. Without it, any rule carrying a
// score bound fails to match.
func WithScore(score float64) Option {
	return func(o *evalOptions) {
		o.score = &score
	}
}

// WithScorePtr is WithScore for an optional score; nil leaves the score absent
func WithScorePtr(score *float64) Option {
	return func(o *evalOptions) {
		if score != nil {
			s := *score
			o.score = &s
		}
	}
}

// WithFallbackText enables the synthesized fallback rule
func WithFallbackText(text string) Option {
	return func(o *evalOptions) {
		o.fallbackText = &text
	}
}

// Evaluate returns the applicable rule, or nil when there is none. The
// returned rule is a copy; callers may not mutate the definition through it.
func Evaluate(tags []string, rules []models.ResultRule, opts ...Option) *models.ResultRule {
	var o evalOptions
	for _, opt := range opts {
		opt(&o)
	}

	tagSet := NewTagSet(tags)

	for i := range rules {
		if Match(rules[i], tagSet, o.score) {
			rule := rules[i]
			return &rule
		}
	}

	for i := len(rules) - 1; i >= 0; i-- {
		if rules[i].Fallback {
			rule := rules[i]
			return &rule
		}
	}

	if o.fallbackText != nil {
		return &models.ResultRule{
			ID:       FallbackRuleID,
			Text:     *o.fallbackText,
			Fallback: true,
		}
	}
	return nil
}

// Match reports whether a rule applies to the tag set and score
func Match(rule models.ResultRule, tags TagSet, score *float64) bool {
	if !tags.ContainsAll(rule.AllTags) {
		return false
	}
	if len(rule.AnyTags) > 0 && !tags.ContainsAny(rule.AnyTags) {
		return false
	}
	if len(rule.ExcludeTags) > 0 && tags.ContainsAny(rule.ExcludeTags) {
		return false
	}
	return scoreMatches(rule, score)
}

func scoreMatches(rule models.ResultRule, score *float64) bool {
	if !rule.HasScoreBounds() {
		return true
	}
	if score == nil {
		return false
	}
	if rule.ScoreAtLeast != nil && *score < *rule.ScoreAtLeast {
		return false
	}
	if rule.ScoreAtMost != nil && *score > *rule.ScoreAtMost {
		return false
	}
	return true
}

// TagSet is a de-duplicated set of tags
type TagSet map[string]struct{}

// NewTagSet builds a set from tags; empty strings are ignored
func NewTagSet(tags []string) TagSet {
	set := make(TagSet, len(tags))
	for _, tag := range tags {
		if tag != "" {
			set[tag] = struct{}{}
		}
	}
	return set
}

// Contains reports whether tag is in the set
func (s TagSet) Contains(tag string) bool {
	_, ok := s[tag]
	return ok
}

// ContainsAll reports whether every tag is in the set (true for none)
func (s TagSet) ContainsAll(tags []string) bool {
	for _, tag := range tags {
		if !s.Contains(tag) {
			return false
		}
	}
	return true
}

// ContainsAny reports whether at least one tag is in the set
func (s TagSet) ContainsAny(tags []string) bool {
	for _, tag := range tags {
		if s.Contains(tag) {
			return true
		}
	}
	return false
}
