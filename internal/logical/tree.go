package logical

import (
	"fmt"
	"sync"
)

type node struct {
	win      Window
	foreign  bool
	children []ID // index 0 is the top of the z-order
	props    map[string]uint32
}

// Tree is an in-memory logical window manager: identity, style bits,
// rectangles, parent/owner links, sibling order and a per-window property
// bag. It is safe for concurrent use.
type Tree struct {
	mu      sync.RWMutex
	nodes   map[ID]*node
	next    ID
	desktop ID
	cursor  string
}

// NewTree returns an empty tree. Identities start at 0x10020 so they never
// collide with the zero value.
func NewTree() *Tree {
	return &Tree{nodes: make(map[ID]*node), next: 0x10020}
}

func (t *Tree) alloc() ID {
	id := t.next
	t.next += 2
	return id
}

// CreateDesktop creates the root window of the tree. It may be called once.
func (t *Tree) CreateDesktop(rect Rect) (ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.desktop != 0 {
		return 0, fmt.Errorf("desktop already exists: %#x", t.desktop)
	}
	id := t.alloc()
	t.nodes[id] = &node{
		win:   Window{ID: id, Style: StylePopup | StyleVisible | StyleClipSiblings | StyleClipChildren, Window: rect, Client: rect},
		props: map[string]uint32{},
	}
	t.desktop = id
	return id, nil
}

// Desktop returns the desktop identity, or zero before CreateDesktop.
func (t *Tree) Desktop() ID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.desktop
}

// Create adds a window under parent (zero means the desktop). Non-maximized
// children are linked at the bottom of their siblings, everything else at
// the top.
func (t *Tree) Create(w Window) (ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.desktop == 0 {
		return 0, fmt.Errorf("create window: no desktop")
	}
	if w.Parent == 0 {
		w.Parent = t.desktop
	}
	parent, ok := t.nodes[w.Parent]
	if !ok || parent.foreign {
		return 0, fmt.Errorf("create window: parent %#x: %w", w.Parent, ErrNotFound)
	}
	if w.Owner != 0 {
		if _, ok := t.nodes[w.Owner]; !ok {
			return 0, fmt.Errorf("create window: owner %#x: %w", w.Owner, ErrNotFound)
		}
	}
	w.ID = t.alloc()
	t.nodes[w.ID] = &node{win: w, props: map[string]uint32{}}
	if w.Style&StyleChild != 0 && w.Style&StyleMaximize == 0 {
		parent.children = append(parent.children, w.ID)
	} else {
		parent.children = append([]ID{w.ID}, parent.children...)
	}
	return w.ID, nil
}

// AddForeign records a window owned by another process. Only its style bits
// and properties are readable.
func (t *Tree) AddForeign(style uint32, props map[string]uint32) ID {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.alloc()
	n := &node{win: Window{ID: id, Style: style}, foreign: true, props: map[string]uint32{}}
	for k, v := range props {
		n.props[k] = v
	}
	t.nodes[id] = n
	return id
}

func (t *Tree) local(id ID) (*node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("window %#x: %w", id, ErrNotFound)
	}
	if n.foreign {
		return nil, fmt.Errorf("window %#x: %w", id, ErrForeign)
	}
	return n, nil
}

// Get returns a snapshot of a local window.
func (t *Tree) Get(id ID) (Window, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, err := t.local(id)
	if err != nil {
		return Window{}, err
	}
	return n.win, nil
}

// Styles returns the style bits of any known window, foreign ones included.
func (t *Tree) Styles(id ID) (style, exStyle uint32, err error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok {
		return 0, 0, fmt.Errorf("window %#x: %w", id, ErrNotFound)
	}
	return n.win.Style, n.win.ExStyle, nil
}

// IsVisible reports whether the window carries the visible style bit.
func (t *Tree) IsVisible(id ID) bool {
	style, _, err := t.Styles(id)
	return err == nil && style&StyleVisible != 0
}

// IDs returns every local window, desktop first, then depth-first in z-order.
func (t *Tree) IDs() []ID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []ID
	var walk func(ID)
	walk = func(id ID) {
		out = append(out, id)
		for _, c := range t.nodes[id].children {
			walk(c)
		}
	}
	if t.desktop != 0 {
		walk(t.desktop)
	}
	return out
}

// Children returns the direct children of id, topmost first.
func (t *Tree) Children(id ID) []ID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return append([]ID(nil), n.children...)
}

// PrevSibling returns the sibling directly above id in z-order, or zero
// when id is the topmost child.
func (t *Tree) PrevSibling(id ID) ID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok || n.foreign {
		return 0
	}
	parent, ok := t.nodes[n.win.Parent]
	if !ok {
		return 0
	}
	for i, c := range parent.children {
		if c == id {
			if i == 0 {
				return 0
			}
			return parent.children[i-1]
		}
	}
	return 0
}

// RootAncestor returns the ancestor of id whose parent is the desktop, or id
// itself when it is already top-level.
func (t *Tree) RootAncestor(id ID) ID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for {
		n, ok := t.nodes[id]
		if !ok || n.foreign || id == t.desktop || n.win.Parent == t.desktop || n.win.Parent == 0 {
			return id
		}
		id = n.win.Parent
	}
}

// SetStyle replaces the style bits and returns the previous value.
func (t *Tree) SetStyle(id ID, style uint32) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.local(id)
	if err != nil {
		return 0, err
	}
	old := n.win.Style
	n.win.Style = style
	return old, nil
}

// SetExStyle replaces the extended style bits and returns the previous value.
func (t *Tree) SetExStyle(id ID, exStyle uint32) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.local(id)
	if err != nil {
		return 0, err
	}
	old := n.win.ExStyle
	n.win.ExStyle = exStyle
	return old, nil
}

// SetRects stores new frame and client rectangles.
func (t *Tree) SetRects(id ID, window, client Rect) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.local(id)
	if err != nil {
		return err
	}
	n.win.Window = window
	n.win.Client = client
	return nil
}

// SetClassIcon stores the big or small class icon and returns the previous one.
func (t *Tree) SetClassIcon(id ID, icon *Icon, small bool) (*Icon, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.local(id)
	if err != nil {
		return nil, err
	}
	slot := &n.win.Icon
	if small {
		slot = &n.win.IconSmall
	}
	old := *slot
	*slot = icon
	return old, nil
}

// Link moves id under parent at the top of its new siblings.
func (t *Tree) Link(id, parent ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.local(id)
	if err != nil {
		return err
	}
	p, err := t.local(parent)
	if err != nil {
		return err
	}
	for a := parent; a != 0; {
		if a == id {
			return fmt.Errorf("link %#x under %#x: would create a cycle", id, parent)
		}
		an, ok := t.nodes[a]
		if !ok {
			break
		}
		a = an.win.Parent
	}
	t.unlink(n)
	n.win.Parent = parent
	p.children = append([]ID{id}, p.children...)
	return nil
}

func (t *Tree) unlink(n *node) {
	p, ok := t.nodes[n.win.Parent]
	if !ok {
		return
	}
	for i, c := range p.children {
		if c == n.win.ID {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

// Remove deletes id. Children must have been removed first.
func (t *Tree) Remove(id ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("window %#x: %w", id, ErrNotFound)
	}
	if len(n.children) > 0 {
		return fmt.Errorf("remove %#x: window still has %d children", id, len(n.children))
	}
	if !n.foreign {
		t.unlink(n)
	}
	delete(t.nodes, id)
	if id == t.desktop {
		t.desktop = 0
	}
	return nil
}

// Prop reads a persisted property. Properties of foreign windows are readable.
func (t *Tree) Prop(id ID, key string) (uint32, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok {
		return 0, false
	}
	v, ok := n.props[key]
	return v, ok
}

// SetProp writes a persisted property.
func (t *Tree) SetProp(id ID, key string, value uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("window %#x: %w", id, ErrNotFound)
	}
	n.props[key] = value
	return nil
}

// RemoveProp deletes a persisted property.
func (t *Tree) RemoveProp(id ID, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.nodes[id]; ok {
		delete(n.props, key)
	}
}

// Cursor returns the name of the current global cursor resource.
func (t *Tree) Cursor() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursor
}

// SetCursor sets the current global cursor resource.
func (t *Tree) SetCursor(name string) {
	t.mu.Lock()
	t.cursor = name
	t.mu.Unlock()
}
