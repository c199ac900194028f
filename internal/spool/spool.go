// Package spool ingests job lifecycle events dropped as JSON files into a
// spool directory and posts a notification for each one.
package spool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/jobnotify/jobnotify/internal/config"
)

// Event is one spooled lifecycle event.
type Event struct {
	Trigger       string         `json:"trigger"`
	ExecutionData map[string]any `json:"executionData"`
}

// ParseEvent decodes a spooled event file.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parsing event: %w", err)
	}
	if ev.Trigger == "" {
		return nil, fmt.Errorf("event missing required 'trigger' field")
	}
	return &ev, nil
}

// Poster posts one notification. *notify.Dispatcher satisfies this.
type Poster interface {
	Post(ctx context.Context, trigger string, executionData map[string]any, settings *config.Settings) (bool, error)
}

// Watcher watches a spool directory and posts each dropped event file.
// Files are removed after successful delivery; files that cannot be
// parsed or delivered are renamed aside so they are not retried.
type Watcher struct {
	dir      string
	settings *config.Settings
	poster   Poster
	logger   *slog.Logger
}

func New(dir string, settings *config.Settings, poster Poster, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{dir: dir, settings: settings, poster: poster, logger: logger}
}

// Run blocks, processing event files until the context is canceled.
// Files already present in the directory are processed first.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.logger.Info("watching spool dir", "dir", w.dir)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading spool dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			w.processFile(ctx, filepath.Join(w.dir, e.Name()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if filepath.Ext(ev.Name) != ".json" {
				continue
			}
			w.processFile(ctx, ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("spool watch error", "error", err)
		}
	}
}

func (w *Watcher) processFile(ctx context.Context, path string) {
	log := w.logger.With("file", filepath.Base(path))

	data, err := os.ReadFile(path)
	if err != nil {
		// The writer may still hold the file; a later Write event retries.
		log.Warn("event file unreadable", "error", err)
		return
	}

	ev, err := ParseEvent(data)
	if err != nil {
		log.Error("discarding malformed event", "error", err)
		w.setAside(path, ".bad", log)
		return
	}

	log.Info("posting spooled event", "trigger", ev.Trigger)
	if _, err := w.poster.Post(ctx, ev.Trigger, ev.ExecutionData, w.settings); err != nil {
		log.Error("posting spooled event failed", "error", err)
		w.setAside(path, ".failed", log)
		return
	}

	if err := os.Remove(path); err != nil {
		log.Warn("removing delivered event file", "error", err)
	}
	log.Debug("event delivered and removed")
}

func (w *Watcher) setAside(path, suffix string, log *slog.Logger) {
	if err := os.Rename(path, path+suffix); err != nil {
		log.Warn("setting event file aside", "error", err)
	}
}
