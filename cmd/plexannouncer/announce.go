package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/PlexAnnouncer/internal/config"
)

// newAnnounceCmd returns the "announce" subcommand that broadcasts free text.
func newAnnounceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "announce <text...>",
		Short: "Send a custom announcement to every destination",
		Long: "Send a free-text announcement, the same as POSTing text/plain to the webhook.\n" +
			"Use \"-\" to read the text from stdin.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := announcementText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return runAnnounce(cmd, text)
		},
	}
}

// announcementText joins args, or reads stdin when the only arg is "-".
func announcementText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func runAnnounce(cmd *cobra.Command, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("announcement text is empty")
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := config.SetupLoggerTo(cmd.ErrOrStderr(), cfg.App.LogLevel)

	svc, err := initService(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := svc.NotifyCustom(ctx, text); err != nil {
		return fmt.Errorf("send announcement: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("✓ Announcement sent"))
	return nil
}
