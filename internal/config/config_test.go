package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if !cfg.Managed || cfg.VirtualDesktop || cfg.TakeFocus {
		t.Fatalf("unexpected mode defaults: %+v", cfg)
	}
	if cfg.FrameMetrics.Caption != 18 {
		t.Fatalf("expected default caption height 18, got %d", cfg.FrameMetrics.Caption)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.WMClass.Class != "Peerwin" {
		t.Fatalf("expected default class, got %q", res.Config.WMClass.Class)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.TitleEncoding != "ISO-8859-1" {
		t.Fatalf("expected default title encoding, got %q", res.Config.TitleEncoding)
	}
}

func TestLoadFromPath_PartialNestedKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"display: \":1\"",
		"managed: false",
		"frame_metrics:",
		"  caption: 22",
		"logging:",
		"  level: debug",
		"  trace:",
		"    enabled: true",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Display != ":1" || cfg.Managed {
		t.Fatalf("expected display :1 and unmanaged, got %q %v", cfg.Display, cfg.Managed)
	}
	if cfg.FrameMetrics.Caption != 22 || cfg.FrameMetrics.ThickFrame != 4 {
		t.Fatalf("expected caption 22 with default thick frame, got %+v", cfg.FrameMetrics)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.SlogLevel())
	}
	trace := cfg.GetTraceConfig()
	if !trace.Enabled || trace.MaxSizeMB != 10 || trace.MaxFiles != 3 || trace.File == "" {
		t.Fatalf("expected trace defaults applied, got %+v", trace)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "wm_class:\n  name: peerwin\nicon_size:\n  width: 0\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Path != "icon_size.width" {
		t.Fatalf("expected path icon_size.width, got %q", verr.Path)
	}
	if verr.Source.Line != 4 {
		t.Fatalf("expected line 4, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), ":4:") {
		t.Fatalf("expected file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_UnknownTitleEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "title_encoding: no-such-charset\n")

	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "title_encoding") {
		t.Fatalf("expected title_encoding error, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(configD, "10-base.yaml"), "icon_size:\n  width: 16\n  height: 16\n")
	writeFile(t, filepath.Join(configD, "20-override.yaml"), "icon_size:\n  width: 24\n")

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, strings.Join([]string{
		"include:",
		"  - config.d",
		"take_focus: true",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.IconSize.Width != 24 || res.Config.IconSize.Height != 16 {
		t.Fatalf("expected icon size 24x16, got %+v", res.Config.IconSize)
	}
	if !res.Config.TakeFocus {
		t.Fatalf("expected take_focus from main file")
	}
	if len(res.Files) != 3 || res.Files[2] != mustCanonical(t, path) {
		t.Fatalf("expected main file loaded last, got %v", res.Files)
	}
}

func mustCanonical(t *testing.T, path string) string {
	t.Helper()
	p, err := canonicalPath(path)
	if err != nil {
		t.Fatalf("canonical: %v", err)
	}
	return p
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "include:\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeFile(t, a, "include: b.yaml\n")
	writeFile(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "frame_metrics:\n  caption: 20\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "frame_metrics.caption")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 20 {
		t.Fatalf("expected 20, got %#v", val)
	}
	if src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("expected file source at line 2, got %#v", src)
	}

	val, src, err = Explain(res, "wm_class.name")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "peerwin" || src.Kind != SourceDefault {
		t.Fatalf("expected default peerwin, got %#v %#v", val, src)
	}

	if val, _, err := Explain(res, "metrics_addr"); err != nil || val != "" {
		t.Fatalf("expected empty metrics_addr, got %#v %v", val, err)
	}
	if _, _, err := Explain(res, "frame_metrics.nope"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}
