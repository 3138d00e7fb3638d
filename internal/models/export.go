package models

// Document renders the definition back into the document form accepted by
// FromDocument. Empty optional fields are omitted so the output stays minimal;
// parsing the result yields an equal Definition (SourcePath excluded).
func (d *Definition) Document() map[string]interface{} {
	doc := map[string]interface{}{
		"slug": d.Slug,
	}
	putString(doc, "title", d.Title)
	putString(doc, "hook", d.Hook)
	putString(doc, "description", d.Description)
	putString(doc, "estimated_time", d.EstimatedTime)
	putString(doc, "logo", d.Logo)
	putString(doc, "notification_email", d.NotificationEmail)
	putString(doc, "webhook_url", d.WebhookURL)
	putMap(doc, "theme", d.Theme)
	putMap(doc, "metadata", d.Metadata)
	if d.ShowStartScreen {
		doc["show_start_screen"] = true
	}
	if !d.ShowQuestionCount {
		doc["show_question_count"] = false
	}
	if d.CaptureEmail {
		doc["capture_email"] = true
	}
	if d.CaptureName {
		doc["capture_name"] = true
	}

	if len(d.Questions) > 0 {
		questions := make([]interface{}, 0, len(d.Questions))
		for _, q := range d.Questions {
			questions = append(questions, q.Document())
		}
		doc["questions"] = questions
	}
	if len(d.ResultRules) > 0 {
		rules := make([]interface{}, 0, len(d.ResultRules))
		for _, r := range d.ResultRules {
			rules = append(rules, r.Document())
		}
		doc["result_rules"] = rules
	}
	return doc
}

// Document renders the question in document form
func (q Question) Document() map[string]interface{} {
	doc := map[string]interface{}{
		"id":   q.ID,
		"text": q.Text,
	}
	putString(doc, "help_text", q.HelpText)
	putMap(doc, "meta", q.Meta)
	if q.MultiSelect {
		doc["multi_select"] = true
	}
	if !q.Required {
		doc["required"] = false
	}
	if len(q.Options) > 0 {
		options := make([]interface{}, 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, opt.Document())
		}
		doc["options"] = options
	}
	return doc
}

// Document renders the option in document form
func (o Option) Document() map[string]interface{} {
	doc := map[string]interface{}{
		"id":   o.ID,
		"text": o.Text,
	}
	putString(doc, "tag", o.Tag)
	if o.Value != o.Tag {
		doc["value"] = o.Value
	}
	if o.Score != nil {
		doc["score"] = *o.Score
	}
	putString(doc, "next_question", o.NextQuestion)
	putMap(doc, "meta", o.Meta)
	return doc
}

// Document renders the rule in document form
func (r ResultRule) Document() map[string]interface{} {
	doc := map[string]interface{}{
		"id":   r.ID,
		"text": r.Text,
	}
	putStrings(doc, "all_tags", r.AllTags)
	putStrings(doc, "any_tags", r.AnyTags)
	putStrings(doc, "exclude_tags", r.ExcludeTags)
	if r.ScoreAtLeast != nil {
		doc["score_at_least"] = *r.ScoreAtLeast
	}
	if r.ScoreAtMost != nil {
		doc["score_at_most"] = *r.ScoreAtMost
	}
	if r.Fallback {
		doc["fallback"] = true
	}
	putMap(doc, "payload", r.Payload)
	putMap(doc, "meta", r.Meta)
	return doc
}

func putString(doc map[string]interface{}, key, value string) {
	if value != "" {
		doc[key] = value
	}
}

func putStrings(doc map[string]interface{}, key string, values []string) {
	if len(values) > 0 {
		list := make([]interface{}, 0, len(values))
		for _, v := range values {
			list = append(list, v)
		}
		doc[key] = list
	}
}

func putMap(doc map[string]interface{}, key string, value map[string]interface{}) {
	if len(value) > 0 {
		doc[key] = value
	}
}
