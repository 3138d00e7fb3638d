package models

import "fmt"

// Definition is a fully constructed assessment: ordered questions, ordered
// result rules and presentation metadata. It is not mutated once registered.
type Definition struct {
	Slug              string                 // Unique registry key
	Title             string                 // Display title
	Hook              string                 // Short teaser shown on the start screen
	Description       string                 // Long description (HTML when loaded from Markdown)
	Questions         []Question             // Questions in declaration order
	ResultRules       []ResultRule           // Result rules in declaration order (first match wins)
	Theme             map[string]interface{} // Theme override scoped to this assessment
	Metadata          map[string]interface{} // Opaque key/value bag
	EstimatedTime     string                 // Free-form duration hint ("5 minutes")
	ShowStartScreen   bool                   // Render an intro screen before the first question
	ShowQuestionCount bool                   // Render "question N of M"
	Logo              string                 // Logo URL
	NotificationEmail string                 // Lead notification recipient (empty = disabled)
	WebhookURL        string                 // Lead webhook endpoint (empty = disabled)
	CaptureEmail      bool                   // Ask respondents for an e-mail address
	CaptureName       bool                   // Ask respondents for a name
	SourcePath        string                 // File the definition was loaded from, if any
}

// Question is a single prompt with selectable options
type Question struct {
	ID          string                 // Unique within the assessment
	Text        string                 // Prompt text
	HelpText    string                 // Secondary explanatory text
	MultiSelect bool                   // Allow more than one option
	Required    bool                   // Must be answered (checked by the caller)
	Options     []Option               // Options in declaration order
	Meta        map[string]interface{} // Opaque presentation hints
}

// Option is a selectable answer carrying tags and a score weight
type Option struct {
	ID           string                 // Unique within the question
	Text         string                 // Display text
	Tag          string                 // Tag added to the respondent's tag set (empty = none)
	Value        string                 // Submitted value matched against input (defaults to Tag)
	Score        *float64               // Score weight (nil counts as 0)
	NextQuestion string                 // Forward reference for branching; stored only
	Meta         map[string]interface{} // Opaque presentation hints
}

// ResultRule maps a tag set and score to an outcome
type ResultRule struct {
	ID           string                 // Identifier
	Text         string                 // Outcome text
	AllTags      []string               // Every tag must be present
	AnyTags      []string               // At least one must be present (ignored when empty)
	ExcludeTags  []string               // None may be present
	ScoreAtLeast *float64               // Inclusive lower bound
	ScoreAtMost  *float64               // Inclusive upper bound
	Payload      map[string]interface{} // Structured outcome data (headline, cta_url, ...)
	Fallback     bool                   // Candidate of last resort
	Meta         map[string]interface{} // Opaque presentation hints
}

// NewDefinition returns a Definition with its non-zero defaults applied
func NewDefinition(slug string) *Definition {
	return &Definition{
		Slug:              slug,
		ShowQuestionCount: true,
	}
}

// NewQuestion returns a Question with its non-zero defaults applied
func NewQuestion(id, text string) Question {
	return Question{ID: id, Text: text, Required: true}
}

// AddQuestion appends a question
func (d *Definition) AddQuestion(q Question) {
	d.Questions = append(d.Questions, q)
}

// AddResultRule appends a result rule
func (d *Definition) AddResultRule(r ResultRule) {
	d.ResultRules = append(d.ResultRules, r)
}

// Question looks up a question by id
func (d *Definition) Question(id string) (*Question, bool) {
	for i := range d.Questions {
		if d.Questions[i].ID == id {
			return &d.Questions[i], true
		}
	}
	return nil, false
}

// ThemeOverride reports whether the definition carries its own theme layer
func (d *Definition) ThemeOverride() bool {
	return len(d.Theme) > 0
}

// HasScoreBounds reports whether either score bound is set
func (r ResultRule) HasScoreBounds() bool {
	return r.ScoreAtLeast != nil || r.ScoreAtMost != nil
}

// Float returns a pointer to v, for optional numeric fields
func Float(v float64) *float64 {
	return &v
}

// FromDocument builds a Definition from a parsed document. Missing optional
// fields fall back to their defaults; only structural problems (a list where a
// map is required, a map where a list is required) are reported.
// A missing slug is parameterized from the title.
func FromDocument(doc Node) (*Definition, error) {
	if doc.Kind() != KindMap {
		return nil, fmt.Errorf("definition: %w, got %s", ErrNotAMap, doc.Kind())
	}

	slug := doc.Field("slug").Str()
	if slug == "" {
		slug = Parameterize(doc.Field("title").Str())
	}

	def := NewDefinition(slug)
	def.Title = doc.Field("title").Str()
	def.Hook = doc.Field("hook").Str()
	def.Description = doc.Field("description").Str()
	def.EstimatedTime = doc.Field("estimated_time").Str()
	def.ShowStartScreen = doc.Field("show_start_screen").BoolOr(false)
	def.ShowQuestionCount = doc.Field("show_question_count").BoolOr(true)
	def.Logo = doc.Field("logo").Str()
	def.NotificationEmail = doc.Field("notification_email").Str()
	def.WebhookURL = doc.Field("webhook_url").Str()
	def.CaptureEmail = doc.Field("capture_email").BoolOr(false)
	def.CaptureName = doc.Field("capture_name").BoolOr(false)

	var err error
	if def.Theme, err = mapField(doc, "theme"); err != nil {
		return nil, err
	}
	if def.Metadata, err = mapField(doc, "metadata"); err != nil {
		return nil, err
	}

	questions, err := doc.Field("questions").Items()
	if err != nil {
		return nil, fmt.Errorf("questions: %w", err)
	}
	for i, item := range questions {
		q, err := QuestionFromDocument(item)
		if err != nil {
			return nil, fmt.Errorf("questions[%d]: %w", i, err)
		}
		def.AddQuestion(q)
	}

	rules, err := doc.Field("result_rules").Items()
	if err != nil {
		return nil, fmt.Errorf("result_rules: %w", err)
	}
	for i, item := range rules {
		r, err := ResultRuleFromDocument(item)
		if err != nil {
			return nil, fmt.Errorf("result_rules[%d]: %w", i, err)
		}
		def.AddResultRule(r)
	}

	return def, nil
}

// QuestionFromDocument builds a Question; a missing id is parameterized from the text
func QuestionFromDocument(doc Node) (Question, error) {
	if doc.Kind() != KindMap {
		return Question{}, fmt.Errorf("%w, got %s", ErrNotAMap, doc.Kind())
	}

	text := doc.Field("text").Str()
	id := doc.Field("id").Str()
	if id == "" {
		id = Parameterize(text)
	}

	q := NewQuestion(id, text)
	q.HelpText = doc.Field("help_text").Str()
	q.MultiSelect = doc.Field("multi_select").BoolOr(false)
	q.Required = doc.Field("required").BoolOr(true)

	var err error
	if q.Meta, err = mapField(doc, "meta"); err != nil {
		return Question{}, err
	}

	options, err := doc.Field("options").Items()
	if err != nil {
		return Question{}, fmt.Errorf("options: %w", err)
	}
	for i, item := range options {
		opt, err := OptionFromDocument(item)
		if err != nil {
			return Question{}, fmt.Errorf("options[%d]: %w", i, err)
		}
		q.Options = append(q.Options, opt)
	}
	return q, nil
}

// OptionFromDocument builds an Option; a missing id is parameterized from the text
// and an absent value key falls back to the tag
func OptionFromDocument(doc Node) (Option, error) {
	if doc.Kind() != KindMap {
		return Option{}, fmt.Errorf("%w, got %s", ErrNotAMap, doc.Kind())
	}

	opt := Option{
		ID:           doc.Field("id").Str(),
		Text:         doc.Field("text").Str(),
		Tag:          doc.Field("tag").Str(),
		Value:        doc.Field("value").Str(),
		Score:        doc.Field("score").Number(),
		NextQuestion: doc.Field("next_question").Str(),
	}
	if opt.ID == "" {
		opt.ID = Parameterize(opt.Text)
	}
	if !doc.Has("value") {
		opt.Value = opt.Tag
	}

	var err error
	if opt.Meta, err = mapField(doc, "meta"); err != nil {
		return Option{}, err
	}
	return opt, nil
}

// ResultRuleFromDocument builds a ResultRule. "tags", "min_score" and "max_score"
// are accepted as aliases of "all_tags", "score_at_least" and "score_at_most".
func ResultRuleFromDocument(doc Node) (ResultRule, error) {
	if doc.Kind() != KindMap {
		return ResultRule{}, fmt.Errorf("%w, got %s", ErrNotAMap, doc.Kind())
	}

	rule := ResultRule{
		ID:           doc.Field("id").Str(),
		Text:         doc.Field("text").Str(),
		AllTags:      NormalizeTags(doc.FirstField("all_tags", "tags").Strings()),
		AnyTags:      NormalizeTags(doc.Field("any_tags").Strings()),
		ExcludeTags:  NormalizeTags(doc.Field("exclude_tags").Strings()),
		ScoreAtLeast: doc.FirstField("score_at_least", "min_score").Number(),
		ScoreAtMost:  doc.FirstField("score_at_most", "max_score").Number(),
		Fallback:     doc.Field("fallback").BoolOr(false),
	}
	if rule.ID == "" {
		rule.ID = Parameterize(rule.Text)
	}

	var err error
	if rule.Payload, err = mapField(doc, "payload"); err != nil {
		return ResultRule{}, err
	}
	if rule.Meta, err = mapField(doc, "meta"); err != nil {
		return ResultRule{}, err
	}
	return rule, nil
}

// mapField reads an optional map field; empty maps collapse to nil
func mapField(doc Node, key string) (map[string]interface{}, error) {
	m, err := doc.Field(key).Map()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
