package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/textcp"
)

// WMClass is the WM_CLASS advertised on every top-level peer.
type WMClass struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"`
}

// IconSize is the size icon surrogates and icon pixmaps are created at.
type IconSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// TraceConfig configures the native-operation trace log.
type TraceConfig struct {
	// Enabled turns the trace log on/off
	Enabled bool `yaml:"enabled"`
	// File is the trace file path (default: ~/.local/share/peerwin/trace.log)
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum file size before rotation (default: 10)
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep (default: 3)
	MaxFiles int `yaml:"max_files"`
}

// LoggingConfig configures process logging.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string      `yaml:"level"`
	Trace TraceConfig `yaml:"trace"`
}

// Config is the effective peerwin configuration.
type Config struct {
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`

	// Managed lets an external window manager decorate top-level windows.
	Managed bool `yaml:"managed"`
	// VirtualDesktop keeps every window inside the desktop; nothing is
	// top-level.
	VirtualDesktop bool `yaml:"virtual_desktop"`
	// TakeFocus advertises WM_TAKE_FOCUS.
	TakeFocus bool `yaml:"take_focus"`

	WMClass       WMClass              `yaml:"wm_class"`
	TitleEncoding string               `yaml:"title_encoding"`
	IconSize      IconSize             `yaml:"icon_size"`
	FrameMetrics  logical.FrameMetrics `yaml:"frame_metrics"`
	Logging       LoggingConfig        `yaml:"logging"`
	MetricsAddr   string               `yaml:"metrics_addr,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Managed: true,
		WMClass: WMClass{
			Name:  "peerwin",
			Class: "Peerwin",
		},
		TitleEncoding: "ISO-8859-1",
		IconSize:      IconSize{Width: 32, Height: 32},
		FrameMetrics:  logical.DefaultFrameMetrics(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks every field and returns a *ValidationError naming the
// offending YAML path.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WMClass.Name) == "" {
		return &ValidationError{Path: "wm_class.name", Err: fmt.Errorf("wm_class.name is required")}
	}
	if strings.TrimSpace(c.WMClass.Class) == "" {
		return &ValidationError{Path: "wm_class.class", Err: fmt.Errorf("wm_class.class is required")}
	}
	if _, err := textcp.New(c.TitleEncoding); err != nil {
		return &ValidationError{Path: "title_encoding", Err: err}
	}
	if c.IconSize.Width <= 0 || c.IconSize.Width > 256 {
		return &ValidationError{Path: "icon_size.width", Err: fmt.Errorf("icon_size.width must be between 1 and 256")}
	}
	if c.IconSize.Height <= 0 || c.IconSize.Height > 256 {
		return &ValidationError{Path: "icon_size.height", Err: fmt.Errorf("icon_size.height must be between 1 and 256")}
	}
	metrics := []struct {
		key   string
		value int
	}{
		{"caption", c.FrameMetrics.Caption},
		{"border", c.FrameMetrics.Border},
		{"dlg_frame", c.FrameMetrics.DlgFrame},
		{"thick_frame", c.FrameMetrics.ThickFrame},
		{"edge", c.FrameMetrics.Edge},
	}
	for _, m := range metrics {
		if m.value < 0 {
			return &ValidationError{Path: "frame_metrics." + m.key, Err: fmt.Errorf("%s must be >= 0", m.key)}
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error")}
	}
	if c.Logging.Trace.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.trace.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.Trace.MaxFiles < 0 {
		return &ValidationError{Path: "logging.trace.max_files", Err: fmt.Errorf("max_files must be >= 0")}
	}
	return nil
}

// SlogLevel maps logging.level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetTraceConfig returns the trace configuration with defaults applied.
func (c *Config) GetTraceConfig() TraceConfig {
	if c == nil {
		return TraceConfig{}
	}
	cfg := c.Logging.Trace
	if cfg.File == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			home = os.Getenv("HOME")
		}
		if home == "" {
			home = "."
		}
		cfg.File = filepath.Join(home, ".local/share/peerwin/trace.log")
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	return cfg
}

// ValidationError is a configuration error at a YAML path, optionally
// located in the file that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
