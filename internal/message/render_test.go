package message

import (
	"encoding/json"
	"strings"
	"testing"
)

func testExecutionData() map[string]any {
	return map[string]any{
		"id":        "1",
		"href":      "http://orchestrator.example/execution/1",
		"project":   "demo",
		"user":      "test-user",
		"argstring": "-env prod",
		"job": map[string]any{
			"name":  "HelloWorld",
			"group": "",
			"href":  "http://orchestrator.example/job/1",
		},
	}
}

func builtinSource(t *testing.T) *Source {
	t.Helper()
	src, name := Resolve("", "", ResolveOptions{Logger: discardLogger()})
	if name != DefaultTemplateName {
		t.Fatalf("name = %q, want %q", name, DefaultTemplateName)
	}
	return src
}

func TestRender_BuiltinSuccess(t *testing.T) {
	out, err := Render(builtinSource(t), DefaultTemplateName, RenderContext{
		Trigger:       "success",
		Color:         "good",
		ExecutionData: testExecutionData(),
		Config:        map[string]any{},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{
		`"color":"good"`,
		`"title":"Status","value":"Succeeded"`,
		`"title":"Job Name","value":"HelloWorld"`,
		`"title":"Project","value":"demo"`,
		`"title":"Execution ID","value":"1"`,
		`"title":"Started By","value":"test-user"`,
		`"title":"Succeeded Nodes"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered message missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Failed Nodes") {
		t.Errorf("success message must not list failed nodes:\n%s", out)
	}
	if strings.Contains(out, `"channel"`) {
		t.Errorf("no channel override configured, none expected:\n%s", out)
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("rendered message is not valid JSON: %v\n%s", err, out)
	}
	if _, ok := parsed["attachments"]; !ok {
		t.Errorf("rendered message missing attachments array:\n%s", out)
	}
}

func TestRender_BuiltinFailure(t *testing.T) {
	out, err := Render(builtinSource(t), DefaultTemplateName, RenderContext{
		Trigger:       "failure",
		Color:         "danger",
		ExecutionData: testExecutionData(),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `"color":"danger"`) {
		t.Errorf("missing danger color:\n%s", out)
	}
	if !strings.Contains(out, `"value":"Failed"`) {
		t.Errorf("missing Failed status:\n%s", out)
	}
	if !strings.Contains(out, `"title":"Failed Nodes"`) {
		t.Errorf("failure message must list failed nodes:\n%s", out)
	}
	if strings.Contains(out, "Succeeded Nodes") {
		t.Errorf("failure message must not list succeeded nodes:\n%s", out)
	}
}

func TestRender_BuiltinStatusLabels(t *testing.T) {
	tests := []struct {
		trigger string
		want    string
	}{
		{"start", `"value":"Started"`},
		{"avgduration", `"value":"Average exceeded"`},
		{"retryablefailure", `"value":"Retry Failure"`},
	}
	for _, tt := range tests {
		out, err := Render(builtinSource(t), DefaultTemplateName, RenderContext{
			Trigger:       tt.trigger,
			Color:         "warning",
			ExecutionData: testExecutionData(),
		})
		if err != nil {
			t.Fatalf("Render(%s): %v", tt.trigger, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Errorf("trigger %s: missing %q:\n%s", tt.trigger, tt.want, out)
		}
	}
}

func TestRender_ChannelOverride(t *testing.T) {
	out, err := Render(builtinSource(t), DefaultTemplateName, RenderContext{
		Trigger:       "start",
		Color:         "warning",
		ExecutionData: testExecutionData(),
		Channel:       "#deploys",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `"channel":"#deploys"`) {
		t.Errorf("missing channel override:\n%s", out)
	}
}

func TestRender_MissingExecutionKeys(t *testing.T) {
	// A sparse record must still render; missing keys become empty values.
	out, err := Render(builtinSource(t), DefaultTemplateName, RenderContext{
		Trigger:       "start",
		Color:         "warning",
		ExecutionData: map[string]any{"user": "anyone"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `"title":"Started By","value":"anyone"`) {
		t.Errorf("missing user field:\n%s", out)
	}
}

func TestRender_AccessorFunctions(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "custom.tmpl",
		`{{trigger}}/{{color}}/{{executionData.job.name}}/{{config.slack_channel}}`)

	src, name := Resolve("custom.tmpl", dir, ResolveOptions{Logger: discardLogger()})
	out, err := Render(src, name, RenderContext{
		Trigger:       "success",
		Color:         "good",
		ExecutionData: testExecutionData(),
		Config:        map[string]any{"slack_channel": "#ops"},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "success/good/HelloWorld/#ops" {
		t.Errorf("out = %q, want %q", out, "success/good/HelloWorld/#ops")
	}
}

func TestRender_SprigFunctions(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "upper.tmpl", `{{trigger | upper}}`)

	src, name := Resolve("upper.tmpl", dir, ResolveOptions{Logger: discardLogger()})
	out, err := Render(src, name, RenderContext{Trigger: "failure", Color: "danger"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "FAILURE" {
		t.Errorf("out = %q, want %q", out, "FAILURE")
	}
}

func TestRender_MissingTemplate(t *testing.T) {
	_, err := Render(builtinSource(t), "no-such.tmpl", RenderContext{})
	if err == nil {
		t.Fatal("expected load error for missing template")
	}
	if !strings.Contains(err.Error(), "loading template") {
		t.Errorf("err = %v, want load failure diagnostics", err)
	}
}

func TestRender_ParseError(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "bad.tmpl", `{{trigger`)

	src, name := Resolve("bad.tmpl", dir, ResolveOptions{Logger: discardLogger()})
	_, err := Render(src, name, RenderContext{Trigger: "start"})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing template") {
		t.Errorf("err = %v, want parse failure diagnostics", err)
	}
}

func TestRender_ExecError(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "fail.tmpl", `{{fail "boom"}}`)

	src, name := Resolve("fail.tmpl", dir, ResolveOptions{Logger: discardLogger()})
	_, err := Render(src, name, RenderContext{Trigger: "start"})
	if err == nil {
		t.Fatal("expected render error")
	}
	if !strings.Contains(err.Error(), "rendering template") {
		t.Errorf("err = %v, want render failure diagnostics", err)
	}
}
