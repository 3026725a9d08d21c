package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/PlexAnnouncer/internal/config"
	"github.com/vadimtrunov/PlexAnnouncer/internal/notification"
)

// newServeCmd returns the "serve" subcommand that runs the webhook receiver.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Receive Plex webhooks and post announcements",
		Long: "Start the HTTP server. Point Plex (Settings > Webhooks) at\n" +
			"http://<host>:<port>/<webhook_token>.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := config.SetupLogger(cfg.App.LogLevel)

	svc, err := initService(cfg, logger)
	if err != nil {
		return err
	}

	handler := notification.NewWebhookHandler(svc, cfg.Server.MaxBodyBytes, logger)
	srv := notification.NewServer(cfg.Server.Port, cfg.Plex.WebhookToken, handler, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("plexannouncer starting",
		slog.String("version", version),
		slog.Int("port", cfg.Server.Port),
		slog.String("plex", sanitizeURL(cfg.Plex.ServerURL)),
		slog.Any("libraries", cfg.Plex.Libraries),
	)
	return srv.Start(ctx)
}
