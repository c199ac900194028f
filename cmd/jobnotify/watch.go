package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobnotify/jobnotify/internal/notify"
	"github.com/jobnotify/jobnotify/internal/spool"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a spool directory and post each dropped event file",
	Long: "Watches --spool-dir for *.json event files of the form " +
		`{"trigger": "...", "executionData": {...}} and posts a notification ` +
		"for each. Delivered files are removed; bad ones are set aside.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger()

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if err := settings.Validate(); err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("spool-dir")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w := spool.New(dir, settings, notify.New(logger), logger)
		return w.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().String("spool-dir", "/var/spool/jobnotify", "directory to watch for event files")
	registerSettingFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
