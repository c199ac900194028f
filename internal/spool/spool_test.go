package spool

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jobnotify/jobnotify/internal/config"
)

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"trigger":"success","executionData":{"id":"1"}}`))
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if ev.Trigger != "success" {
		t.Errorf("trigger = %q, want %q", ev.Trigger, "success")
	}
	if ev.ExecutionData["id"] != "1" {
		t.Errorf("executionData[id] = %v, want %q", ev.ExecutionData["id"], "1")
	}
}

func TestParseEvent_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{`},
		{"missing trigger", `{"executionData":{}}`},
		{"empty trigger", `{"trigger":""}`},
	}
	for _, tt := range tests {
		if _, err := ParseEvent([]byte(tt.data)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

type fakePoster struct {
	calls []string
	err   error
}

func (f *fakePoster) Post(_ context.Context, trigger string, _ map[string]any, _ *config.Settings) (bool, error) {
	f.calls = append(f.calls, trigger)
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

func testWatcher(t *testing.T, dir string, poster Poster) *Watcher {
	t.Helper()
	s := &config.Settings{WebhookToken: "T/B/X"}
	s.ApplyDefaults()
	return New(dir, s, poster, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeEvent(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessFile_RemovesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := writeEvent(t, dir, "ev.json", `{"trigger":"failure","executionData":{"id":"7"}}`)

	poster := &fakePoster{}
	testWatcher(t, dir, poster).processFile(context.Background(), path)

	if len(poster.calls) != 1 || poster.calls[0] != "failure" {
		t.Errorf("posted triggers = %v, want [failure]", poster.calls)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("delivered event file still present")
	}
}

func TestProcessFile_SetsAsideMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeEvent(t, dir, "ev.json", `not json`)

	poster := &fakePoster{}
	testWatcher(t, dir, poster).processFile(context.Background(), path)

	if len(poster.calls) != 0 {
		t.Errorf("malformed event must not be posted, got %v", poster.calls)
	}
	if _, err := os.Stat(path + ".bad"); err != nil {
		t.Errorf("malformed event not set aside: %v", err)
	}
}

func TestProcessFile_SetsAsideOnDeliveryFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeEvent(t, dir, "ev.json", `{"trigger":"success"}`)

	poster := &fakePoster{err: os.ErrDeadlineExceeded}
	testWatcher(t, dir, poster).processFile(context.Background(), path)

	if _, err := os.Stat(path + ".failed"); err != nil {
		t.Errorf("failed event not set aside: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("failed event file still present under original name")
	}
}

func TestRun_ProcessesPreexistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeEvent(t, dir, "a.json", `{"trigger":"start"}`)
	writeEvent(t, dir, "ignored.txt", `not an event`)

	poster := &fakePoster{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // drain pre-existing files, then exit immediately

	if err := testWatcher(t, dir, poster).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(poster.calls) != 1 || poster.calls[0] != "start" {
		t.Errorf("posted triggers = %v, want [start]", poster.calls)
	}
}
