// Package fileenv is an environment.Host backed by a YAML settings file.
// Watch reloads the file when it changes and reports every changed key to the
// registered callbacks.
package fileenv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/delaneyj/statekit/environment"
)

type Host struct {
	path      string
	logger    *slog.Logger
	dispatch  func(fn func())
	mu        sync.RWMutex
	settings  environment.Settings
	callbacks []func(key string, value any)
}

type Option func(h *Host)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithDispatch hands change callbacks to fn instead of running them on the
// watching goroutine. Use it to move them onto the goroutine that owns the
// state.
func WithDispatch(fn func(fn func())) Option {
	return func(h *Host) {
		h.dispatch = fn
	}
}

// Open reads path. Keys missing from the file keep their defaults.
func Open(path string, opts ...Option) (*Host, error) {
	h := &Host{
		path:     path,
		logger:   slog.Default(),
		dispatch: func(fn func()) { fn() },
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With("component", "fileenv", "path", path)
	settings, err := load(path)
	if err != nil {
		return nil, err
	}
	h.settings = settings
	return h, nil
}

func load(path string) (environment.Settings, error) {
	settings := environment.DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("read environment file: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse environment file %s: %w", path, err)
	}
	return settings, nil
}

func (h *Host) snapshot() environment.Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.settings
}

func (h *Host) AccessibilityEnabled() bool { return h.snapshot().AccessibilityEnabled }

func (h *Host) ColorMode() environment.ColorMode { return h.snapshot().ColorMode }

func (h *Host) FontScale() float64 { return h.snapshot().FontScale }

func (h *Host) FontWeightScale() float64 { return h.snapshot().FontWeightScale }

func (h *Host) LayoutDirection() environment.LayoutDirection { return h.snapshot().LayoutDirection }

func (h *Host) LanguageCode() string { return h.snapshot().LanguageCode }

func (h *Host) OnValueChanged(cb func(key string, value any)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.callbacks = append(h.callbacks, cb)
}

// Reload rereads the file and reports the keys that changed.
func (h *Host) Reload() ([]string, error) {
	next, err := load(h.path)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	changed := h.settings.Diff(next)
	h.settings = next
	callbacks := append([]func(string, any){}, h.callbacks...)
	h.mu.Unlock()

	for _, key := range changed {
		value, _ := next.Value(key)
		h.logger.Info("host setting changed", "key", key, "value", value)
		h.dispatch(func() {
			for _, cb := range callbacks {
				cb(key, value)
			}
		})
	}
	return changed, nil
}

// Watch reloads the file on every write until ctx is done. The directory is
// watched rather than the file so editors that replace the file are seen.
func (h *Host) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		return fmt.Errorf("watch %s: %w", h.path, err)
	}
	target := filepath.Clean(h.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if _, err := h.Reload(); err != nil {
				h.logger.Warn("reload failed", "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn("watch error", "error", err)
		}
	}
}
