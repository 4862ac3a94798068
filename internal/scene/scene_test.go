package scene

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/peerwin/internal/logical"
)

var screen = logical.NewRect(0, 0, 1024, 768)

func writeScene(t *testing.T, dir, data string) string {
	t.Helper()
	path := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write scene: %v", err)
	}
	return path
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create png: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func TestLoad_BuildsTree(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "app.png"))
	path := writeScene(t, dir, strings.Join([]string{
		"desktop: 0,0,800,600",
		"cursor: left_ptr",
		"windows:",
		"  - name: main",
		"    style: WS_OVERLAPPEDWINDOW|WS_VISIBLE",
		"    class_style: CS_HREDRAW",
		"    rect: 10,10,410,310",
		"    title: Main",
		"    icon: app.png",
		"  - name: about",
		"    owner: main",
		"    style: WS_POPUP|WS_CAPTION|WS_VISIBLE",
		"    ex_style: WS_EX_DLGMODALFRAME",
		"    rect: 50,50,250,150",
		"  - name: edit",
		"    parent: main",
		"    style: WS_CHILD|WS_VISIBLE",
		"    rect: 0,0,100,20",
		"",
	}, "\n"))

	metrics := logical.DefaultFrameMetrics()
	s, err := Load(path, metrics, screen)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(s.Entries))
	}
	if s.Tree.Cursor() != "left_ptr" {
		t.Fatalf("expected cursor left_ptr, got %q", s.Tree.Cursor())
	}

	desktop, err := s.Tree.Get(s.Desktop)
	if err != nil {
		t.Fatalf("get desktop: %v", err)
	}
	if desktop.Window != logical.NewRect(0, 0, 800, 600) {
		t.Fatalf("unexpected desktop rect %v", desktop.Window)
	}

	mainID, _ := s.Lookup("main")
	main, err := s.Tree.Get(mainID)
	if err != nil {
		t.Fatalf("get main: %v", err)
	}
	if main.ClassStyle != logical.ClassHRedraw {
		t.Fatalf("expected CS_HREDRAW, got %#x", main.ClassStyle)
	}
	wantClient := metrics.ClientRect(main.Window, main.Style, main.ExStyle)
	if main.Client != wantClient {
		t.Fatalf("client = %v, want %v", main.Client, wantClient)
	}
	if s.Entries[0].Title != "Main" || s.Entries[0].Icon == nil {
		t.Fatalf("expected title and icon on main, got %+v", s.Entries[0])
	}
	if !s.Entries[0].Icon.Mask.At(0, 0) || s.Entries[0].Icon.Mask.At(1, 1) {
		t.Fatalf("expected mask from alpha channel")
	}

	aboutID, _ := s.Lookup("about")
	about, _ := s.Tree.Get(aboutID)
	if about.Owner != mainID || about.Parent != s.Desktop {
		t.Fatalf("expected about owned by main under the desktop, got %+v", about)
	}

	editID, _ := s.Lookup("edit")
	if kids := s.Tree.Children(mainID); len(kids) != 1 || kids[0] != editID {
		t.Fatalf("expected edit under main, got %v", kids)
	}
}

func TestBuild_UsesScreenWithoutDesktop(t *testing.T) {
	s, err := Build(&File{}, logical.DefaultFrameMetrics(), screen, "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	desktop, _ := s.Tree.Get(s.Desktop)
	if desktop.Window != screen {
		t.Fatalf("expected screen rect, got %v", desktop.Window)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    File
		screen  logical.Rect
		wantErr string
	}{
		{
			name:    "empty desktop",
			screen:  logical.Rect{},
			wantErr: "desktop",
		},
		{
			name:    "unknown style",
			file:    File{Windows: []WindowDef{{Name: "a", Style: "WS_BOGUS", Rect: "0,0,1,1"}}},
			screen:  screen,
			wantErr: "window a: style",
		},
		{
			name:    "bad rect",
			file:    File{Windows: []WindowDef{{Name: "a", Rect: "0,0,1"}}},
			screen:  screen,
			wantErr: "window a: rect",
		},
		{
			name:    "forward reference",
			file:    File{Windows: []WindowDef{{Name: "a", Parent: "b", Rect: "0,0,1,1"}, {Name: "b", Rect: "0,0,1,1"}}},
			screen:  screen,
			wantErr: "unknown window \"b\"",
		},
		{
			name:    "duplicate name",
			file:    File{Windows: []WindowDef{{Name: "a", Rect: "0,0,1,1"}, {Name: "a", Rect: "0,0,1,1"}}},
			screen:  screen,
			wantErr: "duplicate name",
		},
		{
			name:    "missing icon",
			file:    File{Windows: []WindowDef{{Name: "a", Rect: "0,0,1,1", Icon: "nope.png"}}},
			screen:  screen,
			wantErr: "window a: icon",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(&tt.file, logical.DefaultFrameMetrics(), tt.screen, t.TempDir())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParse_StrictKeys(t *testing.T) {
	_, err := Parse([]byte("windows:\n  - name: a\n    colour: red\n"))
	if err == nil || !strings.Contains(err.Error(), "colour") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}
