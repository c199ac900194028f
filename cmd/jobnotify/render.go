package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jobnotify/jobnotify/internal/message"
	"github.com/jobnotify/jobnotify/internal/trigger"
)

var renderCmd = &cobra.Command{
	Use:   "render <trigger>",
	Short: "Render the notification message without posting it",
	Long: "Resolves the template and renders the message for the given trigger, " +
		"then prints it together with the form body a send would post. No network I/O.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := setupLogger()

		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		kind, err := trigger.Parse(args[0])
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("execution-data")
		execData, err := readExecutionData(path)
		if err != nil {
			return err
		}

		src, name := message.Resolve(settings.Template, settings.TemplateDir, message.ResolveOptions{
			BaseDir: settings.BaseDir,
			Logger:  logger,
		})
		body, err := message.Render(src, name, message.RenderContext{
			Trigger:       args[0],
			Color:         kind.Color(),
			ExecutionData: execData,
			Config:        settings.TemplateVars(),
			Channel:       settings.Channel,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Template: %s\n", name)
		fmt.Printf("Message:\n%s\n", body)
		fmt.Printf("Form body:\npayload=%s\n", url.QueryEscape(body))
		return nil
	},
}

func init() {
	renderCmd.Flags().String("execution-data", "-", "execution record JSON file ('-' for stdin)")
	registerSettingFlags(renderCmd)
	rootCmd.AddCommand(renderCmd)
}
