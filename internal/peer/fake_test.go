package peer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
)

var errRefused = errors.New("BadMatch")

type fakeCall struct {
	op      string
	win     platform.WindowID
	changes platform.Changes
	attrs   platform.Attributes
	parent  platform.WindowID
	geom    platform.Geometry
}

type fakeWindow struct {
	parent    platform.WindowID
	geom      platform.Geometry
	attrs     platform.Attributes
	mapped    bool
	destroyed bool
}

// fakeNative records every call in order and keeps just enough state to
// answer queries.
type fakeNative struct {
	mu sync.Mutex

	root    platform.WindowID
	next    uint32
	atoms   platform.Atoms
	calls   []fakeCall
	windows map[platform.WindowID]*fakeWindow
	pixmaps map[platform.Pixmap]bool

	normalHints map[platform.WindowID]*icccm.NormalHints
	wmHints     map[platform.WindowID]*icccm.Hints
	motifHints  map[platform.WindowID]*motif.Hints
	protocols   map[platform.WindowID][]string
	transient   map[platform.WindowID]platform.WindowID
	legacyTitle map[platform.WindowID][]byte
	utf8Title   map[platform.WindowID]string

	internCount    int
	failCreateAt   int // 1-based index of the CreateWindow call to fail
	createCount    int
	failPixmaps    bool
	reconfigureErr error
	notViewable    bool
	zeroSizes      []string
	iconifyAtoms   []xproto.Atom
}

func newFakeNative() *fakeNative {
	return &fakeNative{
		root: 0x100,
		next: 0x400000,
		atoms: platform.Atoms{
			WMProtocols:    1,
			WMDeleteWindow: 2,
			WMChangeState:  3,
			MotifWMHints:   4,
			DndProtocol:    5,
			DndSelection:   6,
		},
		windows:     map[platform.WindowID]*fakeWindow{},
		pixmaps:     map[platform.Pixmap]bool{},
		normalHints: map[platform.WindowID]*icccm.NormalHints{},
		wmHints:     map[platform.WindowID]*icccm.Hints{},
		motifHints:  map[platform.WindowID]*motif.Hints{},
		protocols:   map[platform.WindowID][]string{},
		transient:   map[platform.WindowID]platform.WindowID{},
		legacyTitle: map[platform.WindowID][]byte{},
		utf8Title:   map[platform.WindowID]string{},
	}
}

func (f *fakeNative) record(c fakeCall) {
	f.calls = append(f.calls, c)
}

func (f *fakeNative) Root() platform.WindowID { return f.root }

func (f *fakeNative) InternAtoms(takeFocus bool) (platform.Atoms, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.internCount++
	atoms := f.atoms
	if takeFocus {
		atoms.WMTakeFocus = 7
	}
	return atoms, nil
}

func (f *fakeNative) CreateWindow(parent platform.WindowID, geom platform.Geometry, attrs platform.Attributes) (platform.WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCount++
	if f.failCreateAt == f.createCount {
		return 0, errors.New("BadAlloc")
	}
	if geom.Width <= 0 || geom.Height <= 0 {
		f.zeroSizes = append(f.zeroSizes, fmt.Sprintf("create %dx%d", geom.Width, geom.Height))
	}
	f.next++
	id := platform.WindowID(f.next)
	f.windows[id] = &fakeWindow{parent: parent, geom: geom, attrs: attrs}
	f.record(fakeCall{op: "CREATE", win: id, parent: parent, geom: geom, attrs: attrs})
	return id, nil
}

func (f *fakeNative) DestroyWindow(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[id]
	if !ok || w.destroyed {
		return errors.New("BadWindow")
	}
	w.destroyed = true
	for _, child := range f.windows {
		if child.parent == id {
			child.destroyed = true
		}
	}
	f.record(fakeCall{op: "DESTROY", win: id})
	return nil
}

func (f *fakeNative) ChangeAttributes(id platform.WindowID, attrs platform.Attributes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[id]; ok {
		w.attrs = attrs
	}
	f.record(fakeCall{op: "ATTRS", win: id, attrs: attrs})
	return nil
}

func (f *fakeNative) checkChanges(ch platform.Changes) {
	if ch.Mask&xproto.ConfigWindowWidth != 0 && ch.Width <= 0 {
		f.zeroSizes = append(f.zeroSizes, fmt.Sprintf("width %d", ch.Width))
	}
	if ch.Mask&xproto.ConfigWindowHeight != 0 && ch.Height <= 0 {
		f.zeroSizes = append(f.zeroSizes, fmt.Sprintf("height %d", ch.Height))
	}
}

func (f *fakeNative) ConfigureWindow(id platform.WindowID, ch platform.Changes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkChanges(ch)
	f.record(fakeCall{op: "CONFIGURE", win: id, changes: ch})
	return nil
}

func (f *fakeNative) ReconfigureManaged(id platform.WindowID, ch platform.Changes) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkChanges(ch)
	f.record(fakeCall{op: "RECONFIGURE", win: id, changes: ch})
	return f.reconfigureErr
}

func (f *fakeNative) MapWindow(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[id]; ok {
		w.mapped = true
	}
	f.record(fakeCall{op: "MAP", win: id})
	return nil
}

func (f *fakeNative) UnmapWindow(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[id]; ok {
		w.mapped = false
	}
	f.record(fakeCall{op: "UNMAP", win: id})
	return nil
}

func (f *fakeNative) ReparentWindow(id, parent platform.WindowID, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[id]; ok {
		w.parent = parent
	}
	f.record(fakeCall{op: "REPARENT", win: id, parent: parent, geom: platform.Geometry{X: x, Y: y}})
	return nil
}

func (f *fakeNative) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fakeCall{op: "SYNC"})
	return nil
}

func (f *fakeNative) SetProtocols(id platform.WindowID, protocols []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.protocols[id] = protocols
	f.record(fakeCall{op: "PROTOCOLS", win: id})
	return nil
}

func (f *fakeNative) SetClassHint(id platform.WindowID, instance, class string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fakeCall{op: "CLASS", win: id})
	return nil
}

func (f *fakeNative) SetTransientFor(id, owner platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transient[id] = owner
	f.record(fakeCall{op: "TRANSIENT", win: id})
	return nil
}

func (f *fakeNative) SetNormalHints(id platform.WindowID, hints *icccm.NormalHints) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.normalHints[id] = hints
	f.record(fakeCall{op: "NORMAL_HINTS", win: id})
	return nil
}

func (f *fakeNative) SetWMHints(id platform.WindowID, hints *icccm.Hints) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := *hints
	f.wmHints[id] = &h
	f.record(fakeCall{op: "WM_HINTS", win: id})
	return nil
}

func (f *fakeNative) SetMotifHints(id platform.WindowID, hints *motif.Hints) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.motifHints[id] = hints
	f.record(fakeCall{op: "MOTIF", win: id})
	return nil
}

func (f *fakeNative) SetDockHints(id platform.WindowID, atoms platform.Atoms) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fakeCall{op: "DOCK", win: id})
	return nil
}

func (f *fakeNative) SetTitle(id platform.WindowID, legacy []byte, utf8 string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.legacyTitle[id] = legacy
	f.utf8Title[id] = utf8
	f.record(fakeCall{op: "TITLE", win: id})
	return nil
}

func (f *fakeNative) CreateIconPixmaps(icon *logical.Icon, width, height int) (platform.IconPixmaps, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPixmaps {
		return platform.IconPixmaps{}, errors.New("BadAlloc")
	}
	f.next += 2
	p := platform.IconPixmaps{Color: platform.Pixmap(f.next - 1), Mask: platform.Pixmap(f.next)}
	f.pixmaps[p.Color] = true
	f.pixmaps[p.Mask] = true
	f.record(fakeCall{op: "PIXMAPS"})
	return p, nil
}

func (f *fakeNative) FreePixmaps(p platform.IconPixmaps) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pixmaps, p.Color)
	delete(f.pixmaps, p.Mask)
	f.record(fakeCall{op: "FREE_PIXMAPS"})
	return nil
}

func (f *fakeNative) Iconify(id platform.WindowID, changeState xproto.Atom) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.iconifyAtoms = append(f.iconifyAtoms, changeState)
	f.record(fakeCall{op: "ICONIFY", win: id})
	return nil
}

func (f *fakeNative) IsViewable(id platform.WindowID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.notViewable, nil
}

func (f *fakeNative) SetInputFocus(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fakeCall{op: "FOCUS", win: id})
	return nil
}

// reset forgets the recorded calls.
func (f *fakeNative) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

// index returns the position of the first call with op on win, or -1.
// A zero win matches any window.
func (f *fakeNative) index(op string, win platform.WindowID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.calls {
		if c.op == op && (win == 0 || c.win == win) {
			return i
		}
	}
	return -1
}

func (f *fakeNative) callsFor(op string, win platform.WindowID) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.op == op && (win == 0 || c.win == win) {
			out = append(out, c)
		}
	}
	return out
}

type recordingObserver struct {
	events []Event
}

func (r *recordingObserver) Observe(ev Event) {
	r.events = append(r.events, ev)
}

type harness struct {
	m       *Manager
	native  *fakeNative
	tree    *logical.Tree
	desktop logical.ID
	obs     *recordingObserver
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	tree := logical.NewTree()
	desk, err := tree.CreateDesktop(logical.NewRect(0, 0, 1024, 768))
	if err != nil {
		t.Fatalf("desktop: %v", err)
	}
	native := newFakeNative()
	obs := &recordingObserver{}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts.Observer = obs
	m := NewManager(native, tree, logical.DefaultFrameMetrics(), opts)
	if err := m.Materialize(desk, CreateParams{Width: 1024, Height: 768}); err != nil {
		t.Fatalf("materialize desktop: %v", err)
	}
	return &harness{m: m, native: native, tree: tree, desktop: desk, obs: obs}
}

func (h *harness) create(t *testing.T, w logical.Window, r logical.Rect) logical.ID {
	t.Helper()
	id, err := h.tree.Create(w)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := h.m.Materialize(id, CreateParams{X: r.Left, Y: r.Top, Width: r.Width(), Height: r.Height()}); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	return id
}

func (h *harness) state(t *testing.T, id logical.ID) *peerState {
	t.Helper()
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	st, ok := h.m.states[id]
	if !ok {
		t.Fatalf("window %#x has no peer state", id)
	}
	return st
}
