package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Options struct {
	Log         LogOptions         `yaml:"log"`
	Persist     PersistOptions     `yaml:"persist"`
	Environment EnvironmentOptions `yaml:"environment"`
}

type LogOptions struct {
	// debug, info, warn or error
	Level string `yaml:"level"`
	// text or json
	Format string `yaml:"format"`
}

type PersistOptions struct {
	// bbolt file; empty keeps persisted values in memory
	Path   string `yaml:"path"`
	Bucket string `yaml:"bucket"`
}

type EnvironmentOptions struct {
	// YAML host settings; empty uses the built-in defaults
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

func DefaultOptions() *Options {
	return &Options{
		Log: LogOptions{
			Level:  "info",
			Format: "text",
		},
	}
}

func ParseOptions(data []byte) (*Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	return opts, nil
}

func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options: %w", err)
	}
	return ParseOptions(data)
}

// NewLogger builds the root logger described by o, writing to w.
func (o LogOptions) NewLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(o.Level) {
	case "", "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", o.Level)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(o.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", o.Format)
	}
}
