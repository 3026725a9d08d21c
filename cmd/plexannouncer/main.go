package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plexannouncer",
		Short: "Announce new Plex library items in chat",
		Long: "PlexAnnouncer receives Plex Media Server webhooks and posts an announcement\n" +
			"for every item added to your libraries to Discord, Slack or Telegram.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/plexannouncer.yaml", "path to configuration file")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(),
		newAnnounceCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "PlexAnnouncer v%s\n", version)
		},
	}
}
