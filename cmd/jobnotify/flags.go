package main

import (
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobnotify/jobnotify/internal/config"
)

// registerSettingFlags adds a --flag for every field in config.Settings,
// deriving the flag name from the yaml struct tag (snake_case → kebab-case).
func registerSettingFlags(cmd *cobra.Command) {
	t := reflect.TypeOf(config.Settings{})
	for i := 0; i < t.NumField(); i++ {
		yamlTag := t.Field(i).Tag.Get("yaml")
		flagName := strings.ReplaceAll(yamlTag, "_", "-")
		cmd.Flags().String(flagName, "", "override "+yamlTag)
	}
}

// loadSettings resolves the config file (optional when every required
// setting comes from flags) and overlays any explicitly set flags.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	s, err := config.Resolve(cfgFile)
	if err != nil {
		if cfgFile != "" {
			return nil, err
		}
		s = &config.Settings{}
		s.ApplyDefaults()
	}
	applySettingFlags(cmd, s)
	return s, nil
}

// applySettingFlags overlays CLI flag values onto the settings. Only flags
// explicitly set by the user are applied.
func applySettingFlags(cmd *cobra.Command, s *config.Settings) {
	t := reflect.TypeOf(*s)
	v := reflect.ValueOf(s).Elem()
	for i := 0; i < t.NumField(); i++ {
		yamlTag := t.Field(i).Tag.Get("yaml")
		flagName := strings.ReplaceAll(yamlTag, "_", "-")
		if cmd.Flags().Changed(flagName) {
			val, _ := cmd.Flags().GetString(flagName)
			v.Field(i).SetString(val)
		}
	}
}
