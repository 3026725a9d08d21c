package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/PlexAnnouncer/internal/config"
)

// newConfigCmd returns the "config" subcommand group for configuration management.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

// newConfigValidateCmd returns the "config validate" subcommand that checks config validity.
func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file and environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleSuccess.Render("✓ Configuration is valid"))
			return printSummary(out, cfg)
		},
	}
}

// printSummary lists where announcements will go, without secrets.
func printSummary(w io.Writer, cfg *config.Config) error {
	dests, err := cfg.Destinations()
	if err != nil {
		return fmt.Errorf("list destinations: %w", err)
	}

	fmt.Fprintln(w, styleHeader.Render("Destinations"))
	for _, d := range dests {
		target := sanitizeURL(d.URL)
		if d.Kind == config.KindDiscord {
			target = "webhook " + d.ID
		}
		fmt.Fprintf(w, "  %s %s\n", styleInfo.Render(fmt.Sprintf("%-8s", d.Kind)), styleDim.Render(target))
	}
	if cfg.Telegram.Enabled() {
		fmt.Fprintf(w, "  %s %s\n", styleInfo.Render(fmt.Sprintf("%-8s", "telegram")),
			styleDim.Render(fmt.Sprintf("%d chat(s)", len(cfg.Telegram.ChatIDs))))
	}

	libraries := "all"
	if len(cfg.Plex.Libraries) > 0 {
		libraries = strings.Join(cfg.Plex.Libraries, ", ")
	}
	fmt.Fprintf(w, "\n  %s %s\n", styleDim.Render("libraries:"), libraries)
	fmt.Fprintf(w, "  %s %d\n", styleDim.Render("port:"), cfg.Server.Port)
	return nil
}
