package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/PlexAnnouncer/internal/config"
	"github.com/vadimtrunov/PlexAnnouncer/internal/core"
	"github.com/vadimtrunov/PlexAnnouncer/internal/frontend/discord"
	"github.com/vadimtrunov/PlexAnnouncer/internal/frontend/slack"
	"github.com/vadimtrunov/PlexAnnouncer/internal/frontend/telegram"
	"github.com/vadimtrunov/PlexAnnouncer/internal/httpclient"
	"github.com/vadimtrunov/PlexAnnouncer/internal/mediaserver/plex"
	"github.com/vadimtrunov/PlexAnnouncer/internal/notification"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")). // plex orange
			MarginBottom(1)
)

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// initService wires destinations, links and the default thumbnail into a notification service.
func initService(cfg *config.Config, logger *slog.Logger) (*notification.Service, error) {
	client := httpclient.New(httpclient.DefaultConfig(), logger)

	destinations, err := initDestinations(cfg, client, logger)
	if err != nil {
		return nil, err
	}

	svc := notification.NewService(destinations, plex.NewLinks(cfg.Plex.ServerURL), cfg.Plex.Libraries, logger)

	if path := cfg.Announce.ThumbnailPath; path != "" {
		thumb, err := notification.LoadFileThumbnail(path)
		if err != nil {
			return nil, fmt.Errorf("load announcement thumbnail: %w", err)
		}
		svc.SetDefaultThumbnail(thumb)
	}
	return svc, nil
}

// initDestinations creates one destination per configured webhook, plus Telegram if enabled.
func initDestinations(cfg *config.Config, client *http.Client, logger *slog.Logger) ([]core.Destination, error) {
	resolved, err := cfg.Destinations()
	if err != nil {
		return nil, err
	}

	destinations := make([]core.Destination, 0, len(resolved)+1)
	for _, d := range resolved {
		switch d.Kind {
		case config.KindDiscord:
			wh, err := discord.New(d.ID, d.Token, client, logger)
			if err != nil {
				return nil, err
			}
			destinations = append(destinations, wh)
			logger.Info("discord destination initialized", slog.String("webhook_id", d.ID))
		case config.KindSlack:
			destinations = append(destinations, slack.New(d.URL, client, logger))
			logger.Info("slack destination initialized", slog.String("url", sanitizeURL(d.URL)))
		}
	}

	if cfg.Telegram.Enabled() {
		bot, err := telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs, client, logger)
		if err != nil {
			return nil, err
		}
		destinations = append(destinations, bot)
	}
	return destinations, nil
}

// sanitizeURL keeps only scheme and host so webhook secrets never reach logs or the terminal.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "<redacted>"
	}
	return u.Scheme + "://" + u.Host + "/…"
}
