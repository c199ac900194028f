// Package message resolves and renders the notification message templates.
package message

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTemplateName is the built-in Slack message layout.
const DefaultTemplateName = "slack-incoming-message.tmpl"

//go:embed templates/*.tmpl
var builtinFS embed.FS

// Placeholder tokens recognized in the template directory setting.
const (
	basePathVar = "${rdeck.base}"
	basePathEnv = "$RDECK_BASE"
)

// Source is an ordered chain of template lookup locations. Earlier
// locations win on name collision.
type Source struct {
	stores []fs.FS
}

// ReadTemplate returns the text of the named template from the first
// store that has it.
func (s *Source) ReadTemplate(name string) (string, error) {
	for _, store := range s.stores {
		b, err := fs.ReadFile(store, name)
		if err == nil {
			return string(b), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("loading template %q: %w", name, err)
		}
	}
	return "", fmt.Errorf("loading template %q: %w", name, fs.ErrNotExist)
}

// ResolveOptions carries the runtime context for template resolution.
type ResolveOptions struct {
	// BaseDir is the orchestrator install base substituted for the
	// placeholder tokens. Empty means ".".
	BaseDir string

	// LookupEnv resolves environment variables; nil means os.LookupEnv.
	LookupEnv func(string) (string, bool)

	Logger *slog.Logger
}

// Resolve decides which template to render and where to load it from.
// With no custom name it returns the built-in bundle and default layout.
// With a custom name it chains the effective external directory before
// the built-in bundle, so external templates override built-in ones on
// name collision. Resolution never fails: any problem with the external
// directory is logged and answered with the built-in fallback.
func Resolve(customName, customDir string, opts ResolveOptions) (*Source, string) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	builtin, err := fs.Sub(builtinFS, "templates")
	if err != nil {
		// Unreachable with a well-formed embed; keep the no-fail guarantee.
		log.Error("built-in template bundle unavailable", "error", err)
		builtin = builtinFS
	}

	if customName == "" {
		return &Source{stores: []fs.FS{builtin}}, DefaultTemplateName
	}

	dir := effectiveDir(customDir, opts)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("not a directory: %s", dir)
		}
		log.Warn("external template dir unusable, falling back to built-in",
			"dir", dir, "error", err)
		return &Source{stores: []fs.FS{builtin}}, DefaultTemplateName
	}

	log.Info("using external template dir", "dir", dir, "template", customName)
	return &Source{stores: []fs.FS{os.DirFS(dir), builtin}}, customName
}

// effectiveDir computes the external template directory: blank defaults
// to <base>/libext/templates, otherwise the placeholder tokens are
// expanded with the runtime base path.
func effectiveDir(customDir string, opts ResolveOptions) string {
	base := opts.BaseDir
	if base == "" {
		base = "."
	}

	if strings.TrimSpace(customDir) == "" {
		return filepath.Join(base, "libext", "templates")
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	envBase := base
	if v, ok := lookup("RDECK_BASE"); ok && strings.TrimSpace(v) != "" {
		envBase = v
	}

	dir := strings.ReplaceAll(customDir, basePathVar, base)
	return strings.ReplaceAll(dir, basePathEnv, envBase)
}
