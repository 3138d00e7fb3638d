package notify

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/harrison/assessment/internal/logger"
	"github.com/harrison/assessment/internal/models"
)

// WebhookPoster delivers a response to a webhook url
type WebhookPoster interface {
	PostLead(ctx context.Context, url string, resp *models.Response) error
}

// Dispatcher fans a stored response out to the notifications its definition enables
type Dispatcher struct {
	Webhook WebhookPoster // nil disables webhooks
	Mailer  Mailer        // nil disables e-mail
	Logger  logger.Logger
}

// NewDispatcher creates a Dispatcher. Either channel may be nil.
func NewDispatcher(webhook WebhookPoster, mailer Mailer, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Dispatcher{Webhook: webhook, Mailer: mailer, Logger: log}
}

// Notify sends the lead e-mail when the definition names a recipient and the lead
// left an e-mail address, and posts the webhook when the definition has a url.
// Both run concurrently; every failure is logged and the first is returned.
func (d *Dispatcher) Notify(ctx context.Context, def *models.Definition, resp *models.Response) error {
	// A failing channel must not cancel the other one
	var g errgroup.Group
	sent := 0

	if d.Mailer != nil && def.NotificationEmail != "" && resp.Lead != nil && strings.TrimSpace(resp.Lead.Email) != "" {
		sent++
		g.Go(func() error {
			if err := d.Mailer.Send(ctx, NewLeadMessage(def.NotificationEmail, resp)); err != nil {
				d.Logger.LogError(fmt.Sprintf("Lead e-mail for response %s failed: %v", resp.UUID, err))
				return err
			}
			d.Logger.LogInfo(fmt.Sprintf("Lead e-mail for response %s sent to %s", resp.UUID, def.NotificationEmail))
			return nil
		})
	}

	if d.Webhook != nil && def.WebhookURL != "" {
		sent++
		g.Go(func() error {
			if err := d.Webhook.PostLead(ctx, def.WebhookURL, resp); err != nil {
				d.Logger.LogError(fmt.Sprintf("Webhook for response %s failed: %v", resp.UUID, err))
				return err
			}
			d.Logger.LogInfo(fmt.Sprintf("Webhook for response %s posted", resp.UUID))
			return nil
		})
	}

	if sent == 0 {
		d.Logger.LogDebug(fmt.Sprintf("No notifications configured for %s", def.Slug))
		return nil
	}
	return g.Wait()
}
