// Package notify posts job lifecycle notifications to a Slack incoming
// webhook. One call, one synchronous POST; every failure surfaces as a
// typed *Error, never retried.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jobnotify/jobnotify/internal/config"
	"github.com/jobnotify/jobnotify/internal/message"
	"github.com/jobnotify/jobnotify/internal/trigger"
)

const defaultTimeout = 15 * time.Second

// Dispatcher sends notifications. It holds no per-notification state, so
// a single Dispatcher is safe for concurrent use.
type Dispatcher struct {
	client    *http.Client
	logger    *slog.Logger
	baseDir   string
	lookupEnv func(string) (string, bool)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClient replaces the default HTTP client.
func WithClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithBaseDir sets the orchestrator install base used for template
// directory placeholder expansion.
func WithBaseDir(dir string) Option {
	return func(d *Dispatcher) { d.baseDir = dir }
}

// WithLookupEnv replaces os.LookupEnv for placeholder expansion.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(d *Dispatcher) { d.lookupEnv = fn }
}

// New creates a Dispatcher. A nil logger means slog.Default().
func New(logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// style is the per-trigger display styling for one invocation.
type style struct {
	template string
	color    string
}

// PostNotification posts a notification for the given trigger using the
// orchestrator's generic plugin configuration map. It returns true when
// the webhook acknowledged the message, or a typed *Error.
func (d *Dispatcher) PostNotification(ctx context.Context, trig string, executionData, pluginConfig map[string]any) (bool, error) {
	return d.post(ctx, trig, executionData, config.FromMap(pluginConfig), pluginConfig)
}

// Post is PostNotification for callers that already hold typed Settings.
func (d *Dispatcher) Post(ctx context.Context, trig string, executionData map[string]any, settings *config.Settings) (bool, error) {
	return d.post(ctx, trig, executionData, settings, settings.TemplateVars())
}

func (d *Dispatcher) post(ctx context.Context, trig string, executionData map[string]any, settings *config.Settings, configVars map[string]any) (bool, error) {
	if strings.TrimSpace(settings.WebhookBaseURL) == "" || strings.TrimSpace(settings.WebhookToken) == "" {
		return false, &Error{Kind: KindConfig, Msg: "webhook base URL or token not set"}
	}

	kind, err := trigger.Parse(trig)
	if err != nil {
		return false, &Error{Kind: KindInvalidArgument, Msg: "invalid trigger", Err: err}
	}

	log := d.logger.With("trigger", trig)

	baseDir := settings.BaseDir
	if d.baseDir != "" {
		baseDir = d.baseDir
	}
	src, name := message.Resolve(settings.Template, settings.TemplateDir, message.ResolveOptions{
		BaseDir:   baseDir,
		LookupEnv: d.lookupEnv,
		Logger:    log,
	})

	// One style per recognized trigger, built fresh for this call.
	styles := make(map[trigger.Kind]style, len(trigger.Kinds()))
	for _, k := range trigger.Kinds() {
		styles[k] = style{template: name, color: k.Color()}
	}
	st := styles[kind]
	log.Debug("resolved message style", "template", st.template, "color", st.color, "channel", settings.Channel)

	body, err := message.Render(src, st.template, message.RenderContext{
		Trigger:       trig,
		Color:         st.color,
		ExecutionData: executionData,
		Config:        configVars,
		Channel:       settings.Channel,
	})
	if err != nil {
		return false, &Error{Kind: KindTemplate, Msg: "building notification message", Err: err}
	}

	if err := d.deliver(ctx, settings, body, log); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Dispatcher) deliver(ctx context.Context, settings *config.Settings, body string, log *slog.Logger) error {
	endpoint := settings.WebhookBaseURL + "/" + settings.WebhookToken

	u, err := url.Parse(endpoint)
	if err != nil {
		return &Error{Kind: KindURL, Msg: "webhook URL is malformed", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return &Error{Kind: KindURL, Msg: fmt.Sprintf("webhook URL is malformed: %q", settings.WebhookBaseURL)}
	}

	form := "payload=" + url.QueryEscape(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form))
	if err != nil {
		return &Error{Kind: KindURL, Msg: "building webhook request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	log.Debug("posting to webhook",
		"base_url", settings.WebhookBaseURL,
		"token", config.MaskToken(settings.WebhookToken))

	resp, err := d.client.Do(req)
	if err != nil {
		return &Error{Kind: KindConnection, Msg: "posting to webhook", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindResponse, Msg: "reading webhook response", Err: err}
	}
	text := string(raw)

	if strings.TrimSpace(text) == "ok" {
		log.Info("notification delivered", "status", resp.StatusCode)
		return nil
	}

	log.Warn("webhook rejected notification", "status", resp.StatusCode, "response", text)
	return &Error{
		Kind: KindDelivery,
		Msg: fmt.Sprintf("unexpected response from webhook: [%s] (http %d)\n%s",
			text, resp.StatusCode, form),
	}
}
