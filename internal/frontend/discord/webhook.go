// Package discord delivers announcements through Discord webhooks.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"github.com/vadimtrunov/PlexAnnouncer/internal/core"
)

// Discord embed limits.
const (
	maxTitleLen       = 256
	maxDescriptionLen = 4096
	maxFieldValueLen  = 1024
	maxFields         = 25
)

// fallbackFilename is used when an attachment name cannot be referenced from an embed.
const fallbackFilename = "cover.jpg"

var safeFilename = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Webhook is a Discord webhook destination.
// It implements the core.Destination interface.
type Webhook struct {
	id      string
	token   string
	session *discordgo.Session
	logger  *slog.Logger
}

// compile-time check.
var _ core.Destination = (*Webhook)(nil)

// New creates a Discord webhook destination. The session is used only for
// its REST client; no gateway connection is opened.
func New(id, token string, client *http.Client, logger *slog.Logger) (*Webhook, error) {
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	if client != nil {
		session.Client = client
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Webhook{
		id:      id,
		token:   token,
		session: session,
		logger:  logger,
	}, nil
}

// Name returns the destination name.
func (w *Webhook) Name() string { return "discord" }

// Send posts the announcement as an embed, uploading the thumbnail when present.
func (w *Webhook) Send(ctx context.Context, a *core.Announcement) error {
	params := BuildParams(a)

	_, err := w.session.WebhookExecute(w.id, w.token, true, params,
		discordgo.WithContext(ctx),
		discordgo.WithRestRetries(0),
		discordgo.WithRetryOnRatelimit(false),
	)
	if err != nil {
		return fmt.Errorf("execute discord webhook %s: %w", w.id, err)
	}

	w.logger.Debug("discord announcement delivered",
		slog.String("webhook_id", w.id),
		slog.Bool("thumbnail", len(params.Files) > 0),
	)
	return nil
}

// BuildParams converts an announcement into a webhook payload.
// The thumbnail is uploaded as a file and referenced from the embed.
func BuildParams(a *core.Announcement) *discordgo.WebhookParams {
	embed := &discordgo.MessageEmbed{
		Title:       truncate(a.Title, maxTitleLen),
		Description: truncate(a.Description, maxDescriptionLen),
		URL:         a.URL,
		Color:       a.Color,
	}
	for i, f := range a.Fields {
		if i == maxFields {
			break
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Label,
			Value:  truncate(f.Value, maxFieldValueLen),
			Inline: true,
		})
	}

	params := &discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}

	if a.Thumbnail != nil && len(a.Thumbnail.Data) > 0 {
		name := a.Thumbnail.Filename
		if !safeFilename.MatchString(name) {
			name = fallbackFilename
		}
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: "attachment://" + name}
		params.Files = []*discordgo.File{{
			Name:        name,
			ContentType: a.Thumbnail.MIMEType,
			Reader:      bytes.NewReader(a.Thumbnail.Data),
		}}
	}

	return params
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
