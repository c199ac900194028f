package message

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/jobnotify/jobnotify/internal/trigger"
)

// RenderContext holds the variables exposed to a message template for one
// notification. ExecutionData is the orchestrator's job execution record
// as a JSON-style nested map; commonly referenced keys are id, href,
// project, user, argstring, succeededNodeListString, failedNodeListString
// and job (name, group, href).
type RenderContext struct {
	Trigger       string
	Color         string
	ExecutionData map[string]any
	Config        map[string]any
	Channel       string // empty means no channel override
}

// Render loads the named template from the source and executes it with
// Sprig functions plus the accessor functions (trigger, color,
// executionData, config, channel, status), so templates write
// {{trigger}} or {{executionData.job.name}}.
func Render(src *Source, name string, data RenderContext) (string, error) {
	text, err := src.ReadTemplate(name)
	if err != nil {
		return "", err
	}

	funcMap := sprig.TxtFuncMap()
	funcMap["trigger"] = func() string { return data.Trigger }
	funcMap["color"] = func() string { return data.Color }
	funcMap["executionData"] = func() map[string]any { return data.ExecutionData }
	funcMap["config"] = func() map[string]any { return data.Config }
	funcMap["channel"] = func() string { return data.Channel }
	funcMap["status"] = func() string { return trigger.StatusLabel(data.Trigger) }

	t, err := template.New(name).Funcs(funcMap).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering template %q: %w", name, err)
	}

	return buf.String(), nil
}
