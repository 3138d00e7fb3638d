// Package service ties the definition registry, response building, rule
// evaluation, persistence and notification into the submission flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/assessment/internal/logger"
	"github.com/harrison/assessment/internal/logic"
	"github.com/harrison/assessment/internal/models"
	"github.com/harrison/assessment/internal/response"
	"github.com/harrison/assessment/internal/store"
)

var (
	// ErrMissingRequired is matched by MissingRequiredError
	ErrMissingRequired = errors.New("missing required answers")

	// ErrNoOutcome is returned when no rule matches and no fallback text is configured
	ErrNoOutcome = errors.New("no result matched")

	// ErrResponseNotFound is returned when a result lookup finds no stored response
	ErrResponseNotFound = errors.New("response not found")
)

// MissingRequiredError lists the required questions left unanswered
type MissingRequiredError struct {
	QuestionIDs []string
}

func (e *MissingRequiredError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequired, strings.Join(e.QuestionIDs, ", "))
}

// Unwrap lets errors.Is match ErrMissingRequired
func (e *MissingRequiredError) Unwrap() error {
	return ErrMissingRequired
}

// DefinitionFinder looks definitions up by slug
type DefinitionFinder interface {
	Find(slug string) (*models.Definition, error)
}

// ResponseStore persists and loads responses
type ResponseStore interface {
	Create(ctx context.Context, resp *models.Response) error
	FindByUUID(ctx context.Context, slug, uuid string) (*models.Response, error)
}

// Notifier delivers notifications for a stored response
type Notifier interface {
	Notify(ctx context.Context, def *models.Definition, resp *models.Response) error
}

// Submission is a stored or previewed response with the rule it resolved to.
// Rule is nil when nothing matched and no fallback text is configured.
type Submission struct {
	Definition *models.Definition
	Response   *models.Response
	Rule       *models.ResultRule
}

// Assessments runs submissions against registered definitions
type Assessments struct {
	definitions  DefinitionFinder
	responses    ResponseStore
	notifier     Notifier
	fallbackText string
	logger       logger.Logger
}

// Options configures Assessments. Notifier may be nil.
type Options struct {
	Definitions  DefinitionFinder
	Responses    ResponseStore
	Notifier     Notifier
	FallbackText string
	Logger       logger.Logger
}

// New creates the submission service
func New(opts Options) *Assessments {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Assessments{
		definitions:  opts.Definitions,
		responses:    opts.Responses,
		notifier:     opts.Notifier,
		fallbackText: opts.FallbackText,
		logger:       log,
	}
}

// Preview builds and evaluates a response without storing or notifying
func (a *Assessments) Preview(slug string, input response.Input) (*Submission, error) {
	def, err := a.definitions.Find(slug)
	if err != nil {
		return nil, err
	}

	answers := response.Build(def, input)
	if missing := response.MissingRequired(def, answers); len(missing) > 0 {
		return nil, &MissingRequiredError{QuestionIDs: missing}
	}

	resp := &models.Response{AssessmentSlug: def.Slug, Answers: answers}
	rule := a.evaluate(def, resp)
	if rule != nil {
		resp.Result = rule.Text
	}
	return &Submission{Definition: def, Response: resp, Rule: rule}, nil
}

// Submit builds the canonical answers, rejects missing required answers, evaluates
// the result, stores the response and sends notifications. Notification failures
// are logged and never returned.
func (a *Assessments) Submit(ctx context.Context, slug string, input response.Input, lead *models.Lead) (*Submission, error) {
	sub, err := a.Preview(slug, input)
	if err != nil {
		return nil, err
	}

	if !lead.IsEmpty() {
		sub.Response.Lead = &models.Lead{
			Name:  strings.TrimSpace(lead.Name),
			Email: strings.TrimSpace(lead.Email),
		}
	}

	if err := a.responses.Create(ctx, sub.Response); err != nil {
		return nil, fmt.Errorf("store response: %w", err)
	}
	logger.LogSubmission(a.logger, sub.Response, sub.Rule)

	if a.notifier != nil {
		if err := a.notifier.Notify(ctx, sub.Definition, sub.Response); err != nil {
			a.logger.LogError(fmt.Sprintf("Notifications for response %s failed: %v", sub.Response.UUID, err))
		}
	}
	return sub, nil
}

// Result loads a stored response and re-evaluates the definition's rules against
// its tags and score. It returns ErrNoOutcome alongside the submission when no
// rule applies.
func (a *Assessments) Result(ctx context.Context, slug, uuid string) (*Submission, error) {
	def, err := a.definitions.Find(slug)
	if err != nil {
		return nil, err
	}

	resp, err := a.responses.FindByUUID(ctx, def.Slug, uuid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s/%s: %w", slug, uuid, ErrResponseNotFound)
		}
		return nil, fmt.Errorf("load response: %w", err)
	}

	sub := &Submission{Definition: def, Response: resp, Rule: a.evaluate(def, resp)}
	if sub.Rule == nil {
		return sub, ErrNoOutcome
	}
	return sub, nil
}

func (a *Assessments) evaluate(def *models.Definition, resp *models.Response) *models.ResultRule {
	opts := []logic.Option{logic.WithScore(resp.Score())}
	if a.fallbackText != "" {
		opts = append(opts, logic.WithFallbackText(a.fallbackText))
	}
	return logic.Evaluate(resp.Tags(), def.ResultRules, opts...)
}
