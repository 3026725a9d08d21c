// Package slack delivers announcements through Slack incoming webhooks.
package slack

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/vadimtrunov/PlexAnnouncer/internal/core"
)

// Webhook is a Slack incoming webhook destination.
// It implements the core.Destination interface.
type Webhook struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// compile-time check.
var _ core.Destination = (*Webhook)(nil)

// New creates a Slack webhook destination.
func New(webhookURL string, client *http.Client, logger *slog.Logger) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Webhook{url: webhookURL, client: client, logger: logger}
}

// Name returns the destination name.
func (w *Webhook) Name() string { return "slack" }

// Send posts the announcement as a legacy message attachment.
// Incoming webhooks cannot upload files, so thumbnails are dropped.
func (w *Webhook) Send(ctx context.Context, a *core.Announcement) error {
	if a.Thumbnail != nil {
		w.logger.Debug("slack webhooks do not accept uploads, thumbnail dropped",
			slog.String("filename", a.Thumbnail.Filename),
		)
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, w.url, w.client, BuildMessage(a)); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}

// BuildMessage converts an announcement into a webhook message.
func BuildMessage(a *core.Announcement) *slack.WebhookMessage {
	att := slack.Attachment{
		Color:     fmt.Sprintf("#%06x", a.Color),
		Fallback:  a.Title,
		Title:     a.Title,
		TitleLink: a.URL,
		Text:      a.Description,
	}
	for _, f := range a.Fields {
		att.Fields = append(att.Fields, slack.AttachmentField{Title: f.Label, Value: f.Value, Short: true})
	}
	return &slack.WebhookMessage{Attachments: []slack.Attachment{att}}
}
