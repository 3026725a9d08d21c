package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/PlexAnnouncer/internal/core"
)

// Bot is the Telegram destination. It posts every announcement to a fixed
// set of chats and never reads updates.
// It implements the core.Destination interface.
type Bot struct {
	api     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *slog.Logger
}

// compile-time check.
var _ core.Destination = (*Bot)(nil)

// New creates a Telegram destination using the public Bot API.
func New(token string, chatIDs []int64, client *http.Client, logger *slog.Logger) (*Bot, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint, chatIDs, client, logger)
}

// NewWithEndpoint is like New but talks to a custom Bot API endpoint,
// e.g. a self-hosted server. endpoint is a format string taking the token and method.
func NewWithEndpoint(token, endpoint string, chatIDs []int64, client *http.Client, logger *slog.Logger) (*Bot, error) {
	if client == nil {
		client = &http.Client{}
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("telegram destination ready",
		slog.String("username", api.Self.UserName),
		slog.Int("chats", len(chatIDs)),
	)

	return &Bot{
		api:     api,
		chatIDs: chatIDs,
		logger:  logger,
	}, nil
}

// Name returns the destination name.
func (b *Bot) Name() string { return "telegram" }

// Send delivers the announcement to every configured chat. With a thumbnail
// it is sent as a photo with a caption, otherwise as a text message.
// A failing chat does not stop the others.
func (b *Bot) Send(ctx context.Context, a *core.Announcement) error {
	var errs []error
	for _, chatID := range b.chatIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.sendToChat(chatID, a); err != nil {
			b.logger.Warn("telegram send failed",
				slog.Int64("chat_id", chatID),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

func (b *Bot) sendToChat(chatID int64, a *core.Announcement) error {
	if a.Thumbnail != nil && len(a.Thumbnail.Data) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
			Name:  a.Thumbnail.Filename,
			Bytes: a.Thumbnail.Data,
		})
		photo.Caption = FormatAnnouncement(a, true)
		photo.ParseMode = tgbotapi.ModeMarkdownV2
		_, err := b.api.Send(photo)
		return err
	}

	msg := tgbotapi.NewMessage(chatID, FormatAnnouncement(a, false))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := b.api.Send(msg)
	return err
}
