package models

import "sort"

// OptionPayload is the display snapshot of a selected option stored with an answer
type OptionPayload struct {
	ID    string   `json:"id"`
	Text  string   `json:"text"`
	Tag   string   `json:"tag,omitempty"`
	Value string   `json:"value,omitempty"`
	Score *float64 `json:"score,omitempty"`
}

// PayloadFor snapshots an option
func PayloadFor(opt Option) OptionPayload {
	return OptionPayload{
		ID:    opt.ID,
		Text:  opt.Text,
		Tag:   opt.Tag,
		Value: opt.Value,
		Score: opt.Score,
	}
}

// CanonicalAnswer is the normalized record for one answered question.
// Single-select answers carry Option, multi-select answers carry Options.
type CanonicalAnswer struct {
	Question string          `json:"question"`
	Option   *OptionPayload  `json:"option,omitempty"`
	Options  []OptionPayload `json:"options,omitempty"`
	Tags     []string        `json:"tags"`
	Score    float64         `json:"score"`
}

// Selected returns the resolved options regardless of selection mode
func (a CanonicalAnswer) Selected() []OptionPayload {
	if a.Option != nil {
		return []OptionPayload{*a.Option}
	}
	return a.Options
}

// Answers maps question id to its canonical answer. Unanswered questions are absent.
type Answers map[string]CanonicalAnswer

// Tags returns the de-duplicated union of every answer's tags, sorted
func (a Answers) Tags() []string {
	seen := make(map[string]bool)
	tags := []string{}
	for _, answer := range a {
		for _, tag := range answer.Tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// Score returns the sum of every answer's score
func (a Answers) Score() float64 {
	var total float64
	for _, answer := range a {
		total += answer.Score
	}
	return total
}

// Answered reports whether the question id has an answer
func (a Answers) Answered(questionID string) bool {
	_, ok := a[questionID]
	return ok
}
