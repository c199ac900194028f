package config

import (
	"fmt"
	"os"

	"github.com/a8m/envsubst"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// DefaultWebhookBaseURL is the Slack incoming-webhook service root.
const DefaultWebhookBaseURL = "https://hooks.slack.com/services"

// Settings holds everything the dispatcher needs for one notification.
// A zero value is not usable; apply defaults and validate first.
type Settings struct {
	// WebhookBaseURL is the webhook service root, without the token.
	WebhookBaseURL string `yaml:"webhook_base_url" validate:"omitempty,url"`

	// WebhookToken is the secret path portion of the webhook URL, like
	// T00000000/B00000000/XXXXXXXXXXXXXXXXXXXXXXXX. Never logged raw;
	// see MaskToken.
	WebhookToken string `yaml:"webhook_token" validate:"required"`

	// Channel optionally overrides the channel the webhook posts to.
	Channel string `yaml:"channel"`

	// Template names an operator-supplied message template. Empty means
	// the built-in layout.
	Template string `yaml:"template"`

	// TemplateDir is the directory searched for operator templates.
	// Supports the ${rdeck.base} and $RDECK_BASE placeholders; blank
	// defaults to <base>/libext/templates.
	TemplateDir string `yaml:"template_dir"`

	// BaseDir is the orchestrator install base used to expand the
	// placeholders above. Defaults to ".".
	BaseDir string `yaml:"base_dir"`
}

// ApplyDefaults fills unset fields that have defaults. It does not touch
// the token: a missing token stays missing and fails validation.
func (s *Settings) ApplyDefaults() {
	if s.WebhookBaseURL == "" {
		s.WebhookBaseURL = DefaultWebhookBaseURL
	}
	if s.BaseDir == "" {
		s.BaseDir = "."
	}
}

// Validate checks the settings after defaults are applied.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Load reads settings from a YAML file, expanding environment variables
// in the raw bytes first.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	data, err = envsubst.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("expanding env vars: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	s.ApplyDefaults()
	return &s, nil
}

// FromMap builds Settings from the generic key-value configuration the
// orchestrator hands to postNotification. Key names follow the plugin
// property names; unknown keys are ignored, non-string values are
// stringified.
func FromMap(m map[string]any) *Settings {
	s := &Settings{
		WebhookBaseURL: stringKey(m, "webhook_base_url"),
		WebhookToken:   stringKey(m, "webhook_token"),
		Channel:        stringKey(m, "slack_channel"),
		Template:       stringKey(m, "external_template"),
		TemplateDir:    stringKey(m, "slack_ext_message_template_path"),
		BaseDir:        stringKey(m, "rdeck_base"),
	}
	s.ApplyDefaults()
	return s
}

// TemplateVars returns the settings as the map exposed to templates under
// {{config}}, with the token masked.
func (s *Settings) TemplateVars() map[string]any {
	return map[string]any{
		"webhook_base_url": s.WebhookBaseURL,
		"webhook_token":    MaskToken(s.WebhookToken),
		"slack_channel":    s.Channel,
		"external_template": s.Template,
		"slack_ext_message_template_path": s.TemplateDir,
	}
}

func stringKey(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
