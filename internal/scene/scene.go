// Package scene loads YAML descriptions of a logical window tree.
//
// A scene names each window so later entries can refer to it as parent or
// owner:
//
//	desktop: 0,0,1920,1080
//	windows:
//	  - name: main
//	    style: WS_OVERLAPPEDWINDOW|WS_VISIBLE
//	    rect: 100,100,740,580
//	    title: Main
//	    icon: app.png
//	  - name: about
//	    owner: main
//	    style: WS_POPUP|WS_CAPTION|WS_SYSMENU|WS_VISIBLE
//	    ex_style: WS_EX_DLGMODALFRAME
//	    rect: 200,200,500,360
package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/peerwin/internal/logical"
)

// File is the on-disk shape of a scene.
type File struct {
	// Desktop is the desktop rectangle; empty means "use the screen".
	Desktop string       `yaml:"desktop,omitempty"`
	Cursor  string       `yaml:"cursor,omitempty"`
	Windows []WindowDef `yaml:"windows"`
}

// WindowDef describes one window.
type WindowDef struct {
	Name       string `yaml:"name"`
	Parent     string `yaml:"parent,omitempty"`
	Owner      string `yaml:"owner,omitempty"`
	Style      string `yaml:"style"`
	ExStyle    string `yaml:"ex_style,omitempty"`
	ClassStyle string `yaml:"class_style,omitempty"`
	Rect       string `yaml:"rect"`
	Title      string `yaml:"title,omitempty"`
	Icon       string `yaml:"icon,omitempty"`
}

// Entry is a window created from a scene, in scene order.
type Entry struct {
	Name  string
	ID    logical.ID
	Rect  logical.Rect
	Title string
	Icon  *logical.Icon
}

// Scene is a populated logical tree.
type Scene struct {
	Tree    *logical.Tree
	Desktop logical.ID
	Entries []Entry
}

// Lookup returns the id of the window called name.
func (s *Scene) Lookup(name string) (logical.ID, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e.ID, true
		}
	}
	return 0, false
}

// Parse decodes a scene, rejecting unknown keys.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return &f, nil
}

// Load reads path and builds its tree. Icon paths are relative to the scene
// file. screen is the desktop rectangle used when the scene names none.
func Load(path string, metrics logical.FrameMetrics, screen logical.Rect) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s, err := Build(f, metrics, screen, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Build creates the desktop and every window of f in order. Client
// rectangles are derived from the frame rectangle through metrics.
func Build(f *File, metrics logical.FrameMetrics, screen logical.Rect, baseDir string) (*Scene, error) {
	desktopRect := screen
	if strings.TrimSpace(f.Desktop) != "" {
		r, err := logical.ParseRect(f.Desktop)
		if err != nil {
			return nil, fmt.Errorf("desktop: %w", err)
		}
		desktopRect = r
	}
	if desktopRect.IsEmpty() {
		return nil, fmt.Errorf("desktop: empty rectangle %v", desktopRect)
	}

	tree := logical.NewTree()
	desktop, err := tree.CreateDesktop(desktopRect)
	if err != nil {
		return nil, err
	}
	if f.Cursor != "" {
		tree.SetCursor(f.Cursor)
	}

	s := &Scene{Tree: tree, Desktop: desktop}
	names := make(map[string]logical.ID, len(f.Windows))
	for i, ws := range f.Windows {
		label := ws.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		entry, err := buildWindow(tree, ws, names, metrics, baseDir)
		if err != nil {
			return nil, fmt.Errorf("window %s: %w", label, err)
		}
		if ws.Name != "" {
			if _, dup := names[ws.Name]; dup {
				return nil, fmt.Errorf("window %s: duplicate name", label)
			}
			names[ws.Name] = entry.ID
		}
		s.Entries = append(s.Entries, entry)
	}
	return s, nil
}

func buildWindow(tree *logical.Tree, ws WindowDef, names map[string]logical.ID, metrics logical.FrameMetrics, baseDir string) (Entry, error) {
	style, err := logical.ParseStyle(ws.Style)
	if err != nil {
		return Entry{}, fmt.Errorf("style: %w", err)
	}
	exStyle, err := logical.ParseExStyle(ws.ExStyle)
	if err != nil {
		return Entry{}, fmt.Errorf("ex_style: %w", err)
	}
	classStyle, err := logical.ParseClassStyle(ws.ClassStyle)
	if err != nil {
		return Entry{}, fmt.Errorf("class_style: %w", err)
	}
	rect, err := logical.ParseRect(ws.Rect)
	if err != nil {
		return Entry{}, err
	}

	parent, err := resolveRef(names, ws.Parent)
	if err != nil {
		return Entry{}, fmt.Errorf("parent: %w", err)
	}
	owner, err := resolveRef(names, ws.Owner)
	if err != nil {
		return Entry{}, fmt.Errorf("owner: %w", err)
	}

	id, err := tree.Create(logical.Window{
		Parent:     parent,
		Owner:      owner,
		Style:      style,
		ExStyle:    exStyle,
		ClassStyle: classStyle,
		Window:     rect,
		Client:     metrics.ClientRect(rect, style, exStyle),
	})
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Name: ws.Name, ID: id, Rect: rect, Title: ws.Title}
	if ws.Icon != "" {
		icon, err := LoadIcon(resolvePath(baseDir, ws.Icon))
		if err != nil {
			return Entry{}, fmt.Errorf("icon: %w", err)
		}
		entry.Icon = icon
	}
	return entry, nil
}

func resolveRef(names map[string]logical.ID, name string) (logical.ID, error) {
	if name == "" {
		return 0, nil
	}
	id, ok := names[name]
	if !ok {
		return 0, fmt.Errorf("unknown window %q (windows must be declared before use)", name)
	}
	return id, nil
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// LoadIcon decodes a PNG or BMP file into an icon whose mask follows the
// image's alpha channel.
func LoadIcon(path string) (*logical.Icon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return logical.IconFromImage(img), nil
}
