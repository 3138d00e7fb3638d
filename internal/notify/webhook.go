// Package notify delivers lead notifications after a response is stored.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/harrison/assessment/internal/models"
)

// DefaultWebhookTimeout bounds a webhook POST when no timeout is configured
const DefaultWebhookTimeout = 10 * time.Second

// LeadFields is the contact block of a webhook payload
type LeadFields struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LeadPayload is the JSON body POSTed to an assessment's webhook
type LeadPayload struct {
	ResponseID     int64          `json:"response_id"`
	ResponseUUID   string         `json:"response_uuid"`
	AssessmentSlug string         `json:"assessment_slug"`
	Lead           LeadFields     `json:"lead"`
	Score          float64        `json:"score"`
	Result         string         `json:"result"`
	Tags           []string       `json:"tags"`
	CreatedAt      string         `json:"created_at"`
	Answers        models.Answers `json:"answers"`
}

// NewLeadPayload snapshots a stored response
func NewLeadPayload(resp *models.Response) LeadPayload {
	payload := LeadPayload{
		ResponseID:     resp.ID,
		ResponseUUID:   resp.UUID,
		AssessmentSlug: resp.AssessmentSlug,
		Score:          resp.Score(),
		Result:         resp.Result,
		Tags:           resp.Tags(),
		CreatedAt:      resp.CreatedAt.UTC().Format(time.RFC3339),
		Answers:        resp.Answers,
	}
	if resp.Lead != nil {
		payload.Lead = LeadFields{Name: resp.Lead.Name, Email: resp.Lead.Email}
	}
	if payload.Answers == nil {
		payload.Answers = models.Answers{}
	}
	return payload
}

// Webhook posts lead payloads as JSON
type Webhook struct {
	client *http.Client
}

// NewWebhook creates a Webhook whose requests are bounded by timeout
func NewWebhook(timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &Webhook{client: &http.Client{Timeout: timeout}}
}

// PostLead POSTs the response payload to url. A non-2xx status is an error.
func (w *Webhook) PostLead(ctx context.Context, url string, resp *models.Response) error {
	if url == "" {
		return fmt.Errorf("webhook url is empty")
	}

	body, err := json.Marshal(NewLeadPayload(resp))
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("webhook delivery failed: status %d", res.StatusCode)
	}
	return nil
}
