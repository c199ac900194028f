package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobnotify/jobnotify/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and print the resolved settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if err := settings.Validate(); err != nil {
			return err
		}

		fmt.Printf("webhook_base_url: %s\n", settings.WebhookBaseURL)
		fmt.Printf("webhook_token: %s\n", config.MaskToken(settings.WebhookToken))
		if settings.Channel != "" {
			fmt.Printf("channel: %s\n", settings.Channel)
		}
		if settings.Template != "" {
			fmt.Printf("template: %s\n", settings.Template)
			fmt.Printf("template_dir: %s\n", settings.TemplateDir)
		}
		fmt.Println("config ok")
		return nil
	},
}

func init() {
	registerSettingFlags(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
