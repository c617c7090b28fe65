package kernor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/kernor/bootargs"
	"github.com/viant/kernor/service/manager"
	"github.com/viant/kernor/service/preempt"
	"github.com/viant/kernor/service/stack"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the kernel configuration. It
// can be populated from YAML or JSON and overlaid with boot command line
// options. The zero-value is not useful; start from DefaultConfig.

type Config struct {
	Timer   preempt.Config `json:"timer" yaml:"timer"`
	Stack   stack.Config   `json:"stack" yaml:"stack"`
	Journal JournalConfig  `json:"journal" yaml:"journal"`
	Log     LogConfig      `json:"log" yaml:"log"`
	Trace   TraceConfig    `json:"trace" yaml:"trace"`
	Idle    IdleConfig     `json:"idle" yaml:"idle"`
}

// JournalConfig controls the file-backed accounting journal.
type JournalConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	BaseURL    string `json:"baseURL" yaml:"baseURL"`
	MaxRetries int    `json:"maxRetries" yaml:"maxRetries"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// SlogLevel maps the configured level onto slog.
func (c *LogConfig) SlogLevel() (slog.Level, error) {
	switch c.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Level)
}

// TraceConfig controls OpenTelemetry span export.
type TraceConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	OutputFile string `json:"outputFile" yaml:"outputFile"`
}

// IdleConfig describes the image of the always-eligible idle unit.
type IdleConfig struct {
	Entry    uint64 `json:"entry" yaml:"entry"`
	StackTop uint64 `json:"stackTop" yaml:"stackTop"`
}

// DefaultConfig returns a Config populated with the package defaults.
// Callers may modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Timer: preempt.DefaultConfig(),
		Stack: stack.DefaultConfig(),
		Journal: JournalConfig{
			BaseURL:    "/var/lib/kernor/journal",
			MaxRetries: 3,
		},
		Idle: IdleConfig{
			Entry:    manager.DefaultIdleEntry,
			StackTop: manager.DefaultIdleStack,
		},
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if err := c.Timer.Validate(); err != nil {
		return err
	}
	if err := c.Stack.Validate(); err != nil {
		return err
	}
	if c.Journal.Enabled && c.Journal.BaseURL == "" {
		return fmt.Errorf("journal.baseURL must be set when the journal is enabled")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Idle.Entry == 0 || c.Idle.StackTop == 0 {
		return fmt.Errorf("idle image needs an entry and a stack")
	}
	return nil
}

// ApplyArgs overlays boot command line options onto the configuration.
func (c *Config) ApplyArgs(args *bootargs.Args) {
	if args == nil {
		return
	}
	c.Timer.Frequency = args.Uint32("timer.frequency", c.Timer.Frequency)
	c.Stack.Base = args.Uint64("stack.base", c.Stack.Base)
	c.Stack.Pages = args.Uint64("stack.pages", c.Stack.Pages)
	c.Stack.StackSize = args.Uint64("stack.size", c.Stack.StackSize)
	c.Journal.Enabled = args.Bool("journal", c.Journal.Enabled)
	c.Journal.BaseURL = args.String("journal.base", c.Journal.BaseURL)
	c.Log.Level = args.String("log.level", c.Log.Level)
	c.Trace.Enabled = args.Bool("trace", c.Trace.Enabled)
	c.Trace.OutputFile = args.String("trace.output", c.Trace.OutputFile)
	c.Idle.Entry = args.Uint64("idle.entry", c.Idle.Entry)
	c.Idle.StackTop = args.Uint64("idle.stack", c.Idle.StackTop)
}

// LoadConfig reads a YAML configuration from any location afs can reach
// and overlays it onto the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
