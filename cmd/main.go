package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"duty-notifier/internal/app"
)

func newRootCmd() *cobra.Command {
	var opts app.Options
	cmd := &cobra.Command{
		Use:   "duty-notifier",
		Short: "Post today's on-duty roster to YuChat",
		Long: `duty-notifier reads a duty schedule exported from Confluence as HTML,
finds who is on primary and backup duty today and posts the roster to a
YuChat chat.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config.yaml (overrides env/defaults)")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "Date to report instead of today (YYYY-MM-DD or DD.MM.YYYY)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "Log level: error, warn, info or debug")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Build and log the message without sending it")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal error:", err)
		stop()
		os.Exit(1)
	}
}
