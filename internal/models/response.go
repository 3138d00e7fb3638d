package models

import (
	"strings"
	"time"
)

// Lead is the optional contact captured with a response
type Lead struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// IsEmpty reports whether neither name nor email was captured
func (l *Lead) IsEmpty() bool {
	return l == nil || (strings.TrimSpace(l.Name) == "" && strings.TrimSpace(l.Email) == "")
}

// DisplayName returns the name, falling back to the email
func (l *Lead) DisplayName() string {
	if l == nil {
		return ""
	}
	if name := strings.TrimSpace(l.Name); name != "" {
		return name
	}
	return strings.TrimSpace(l.Email)
}

// Response is a persisted submission
type Response struct {
	ID             int64     `json:"id"`
	UUID           string    `json:"uuid"`
	AssessmentSlug string    `json:"assessment_slug"`
	Answers        Answers   `json:"answers"`
	Lead           *Lead     `json:"lead,omitempty"`
	Result         string    `json:"result"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Tags returns the union of the answers' tags
func (r *Response) Tags() []string {
	return r.Answers.Tags()
}

// Score returns the sum of the answers' scores
func (r *Response) Score() float64 {
	return r.Answers.Score()
}
