package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobnotify/jobnotify/internal/notify"
)

var sendCmd = &cobra.Command{
	Use:   "send <trigger>",
	Short: "Render and post a notification for a lifecycle event",
	Long: "Reads the job execution record as JSON (from --execution-data or stdin), " +
		"renders the message template and posts it to the configured webhook.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger()

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("execution-data")
		execData, err := readExecutionData(path)
		if err != nil {
			return err
		}

		d := notify.New(logger)
		if _, err := d.Post(cmd.Context(), args[0], execData, settings); err != nil {
			return err
		}
		fmt.Println("notification delivered")
		return nil
	},
}

func init() {
	sendCmd.Flags().String("execution-data", "-", "execution record JSON file ('-' for stdin)")
	registerSettingFlags(sendCmd)
	rootCmd.AddCommand(sendCmd)
}

func readExecutionData(path string) (map[string]any, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening execution data: %w", err)
		}
		defer f.Close()
		r = f
	}

	var data map[string]any
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("parsing execution data: %w", err)
	}
	return data, nil
}
