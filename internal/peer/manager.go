package peer

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/platform"
	"github.com/1broseidon/peerwin/internal/textcp"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/hashicorp/go-multierror"
)

// ErrNotMaterialized is returned for logical windows that own no peers.
var ErrNotMaterialized = errors.New("window has no native peer")

// maxCreateSize is the largest width or height a native window accepts.
const maxCreateSize = 65535

// Tree is the part of the logical window manager the core reads and writes.
type Tree interface {
	Get(id logical.ID) (logical.Window, error)
	Styles(id logical.ID) (style, exStyle uint32, err error)
	IsVisible(id logical.ID) bool
	Desktop() logical.ID
	PrevSibling(id logical.ID) logical.ID
	RootAncestor(id logical.ID) logical.ID
	SetExStyle(id logical.ID, exStyle uint32) (uint32, error)
	SetRects(id logical.ID, window, client logical.Rect) error
	SetClassIcon(id logical.ID, icon *logical.Icon, small bool) (*logical.Icon, error)
	Link(id, parent logical.ID) error
	Prop(id logical.ID, key string) (uint32, bool)
	SetProp(id logical.ID, key string, value uint32) error
	RemoveProp(id logical.ID, key string)
	Cursor() string
}

// TitleEncoder converts window text to the legacy single-byte encoding.
type TitleEncoder interface {
	Encode(s string) []byte
}

// Options configures a Manager.
type Options struct {
	// Managed enables cooperation with an external window manager.
	Managed bool
	// VirtualDesktop puts every peer inside a desktop window; nothing is
	// top-level and focus is left alone.
	VirtualDesktop bool
	// TakeFocus advertises WM_TAKE_FOCUS.
	TakeFocus  bool
	AppName    string
	AppClass   string
	IconWidth  int
	IconHeight int
	Logger     *slog.Logger
	Observer   Observer
	Encoder    TitleEncoder
}

// CreateParams is the initial frame rectangle of a new window.
type CreateParams struct {
	X      int
	Y      int
	Width  int
	Height int
}

type peerState struct {
	id      logical.ID
	desktop bool

	whole  platform.WindowID
	client platform.WindowID
	icon   platform.WindowID

	lastWhole  logical.Rect
	lastClient logical.Rect

	iconPixmaps platform.IconPixmaps
	wmHints     *icccm.Hints
}

// Manager owns the native peers of every materialized logical window and
// keeps them in step with the logical tree.
type Manager struct {
	mu       sync.Mutex
	native   platform.Native
	tree     Tree
	metrics  Metrics
	opts     Options
	logger   *slog.Logger
	encoder  TitleEncoder
	registry *Registry
	states   map[logical.ID]*peerState

	atomsOnce sync.Once
	atoms     platform.Atoms
	atomsErr  error
}

// NewManager returns a Manager driving native for the windows of tree.
func NewManager(native platform.Native, tree Tree, metrics Metrics, opts Options) *Manager {
	if opts.AppName == "" {
		opts.AppName = "peerwin"
	}
	if opts.AppClass == "" {
		opts.AppClass = "Peerwin"
	}
	if opts.IconWidth <= 0 {
		opts.IconWidth = 32
	}
	if opts.IconHeight <= 0 {
		opts.IconHeight = 32
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	encoder := opts.Encoder
	if encoder == nil {
		encoder = textcp.Default()
	}
	return &Manager{
		native:   native,
		tree:     tree,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
		encoder:  encoder,
		registry: NewRegistry(),
		states:   make(map[logical.ID]*peerState),
	}
}

// Registry returns the peer-to-window index.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Atoms returns the protocol atom snapshot, zero before the desktop has
// been materialized.
func (m *Manager) Atoms() platform.Atoms {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.atoms
}

func (m *Manager) observe(op Op, id logical.ID, peer platform.WindowID, kind, detail string) {
	if m.opts.Observer != nil {
		m.opts.Observer.Observe(Event{Op: op, Window: id, Peer: peer, Kind: kind, Detail: detail})
	}
}

func (m *Manager) mustState(id logical.ID) *peerState {
	st, ok := m.states[id]
	if !ok {
		panic(fmt.Sprintf("peer: window %#x has no peer state", id))
	}
	return st
}

func (m *Manager) state(id logical.ID) (*peerState, error) {
	st, ok := m.states[id]
	if !ok {
		return nil, fmt.Errorf("window %#x: %w", id, ErrNotMaterialized)
	}
	return st, nil
}

func (m *Manager) isTopLevel(w logical.Window) bool {
	return !m.opts.VirtualDesktop && w.Parent != 0 && w.Parent == m.tree.Desktop()
}

// classify evaluates the decoration policy and writes the managed bit back
// to the logical window.
func (m *Manager) classify(w logical.Window) (Classification, logical.Window, error) {
	cls := Classify(w, m.isTopLevel(w), m.opts.Managed, m.tree.Cursor())
	ex := withManaged(w.ExStyle, cls.Managed)
	if ex != w.ExStyle {
		if _, err := m.tree.SetExStyle(w.ID, ex); err != nil {
			return cls, w, err
		}
		w.ExStyle = ex
	}
	return cls, w, nil
}

// Materialize creates the native peers of id with the given initial frame
// rectangle. Materializing the desktop maps it onto the native root and
// interns the protocol atoms.
func (m *Manager) Materialize(id logical.ID, params CreateParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.states[id]; ok {
		return fmt.Errorf("window %#x is already materialized", id)
	}
	if params.Width > maxCreateSize {
		m.logger.Warn("invalid window width", "window", id, "width", params.Width)
		params.Width = maxCreateSize
	}
	if params.Height > maxCreateSize {
		m.logger.Warn("invalid window height", "window", id, "height", params.Height)
		params.Height = maxCreateSize
	}

	w, err := m.tree.Get(id)
	if err != nil {
		return err
	}
	rect := logical.NewRect(params.X, params.Y, params.Width, params.Height)
	if err := m.tree.SetRects(id, rect, rect); err != nil {
		return err
	}
	w.Window, w.Client = rect, rect

	if w.Parent == 0 {
		return m.materializeDesktop(w)
	}
	if m.atoms.WMProtocols == 0 {
		return fmt.Errorf("materialize %#x: desktop has not been materialized", id)
	}

	st := &peerState{id: id}
	m.states[id] = st
	if err := m.createPeers(st, w); err != nil {
		if derr := m.destroyPeer(st); derr != nil {
			err = multierror.Append(err, derr)
		}
		return fmt.Errorf("materialize %#x: %w", id, err)
	}
	return nil
}

func (m *Manager) materializeDesktop(w logical.Window) error {
	m.atomsOnce.Do(func() {
		m.atoms, m.atomsErr = m.native.InternAtoms(m.opts.TakeFocus)
	})
	if m.atomsErr != nil {
		return fmt.Errorf("intern atoms: %w", m.atomsErr)
	}

	root := m.native.Root()
	m.states[w.ID] = &peerState{
		id:         w.ID,
		desktop:    true,
		whole:      root,
		client:     root,
		lastWhole:  w.Window,
		lastClient: w.Window,
	}
	if err := m.tree.SetProp(w.ID, PropWholeWindow, uint32(root)); err != nil {
		return err
	}
	if err := m.tree.SetProp(w.ID, PropClientWindow, uint32(root)); err != nil {
		return err
	}
	m.logger.Debug("desktop materialized", "window", w.ID, "root", root)
	return nil
}

func (m *Manager) createPeers(st *peerState, w logical.Window) error {
	if err := m.createWhole(st, w); err != nil {
		return err
	}
	if err := m.createClient(st); err != nil {
		return err
	}
	if err := m.native.Sync(); err != nil {
		return err
	}
	if err := m.tree.SetProp(st.id, PropWholeWindow, uint32(st.whole)); err != nil {
		return err
	}
	if err := m.tree.SetProp(st.id, PropClientWindow, uint32(st.client)); err != nil {
		return err
	}

	w, err := m.tree.Get(st.id)
	if err != nil {
		return err
	}
	client := m.metrics.ClientRect(w.Window, w.Style, w.ExStyle)
	if client.Left > client.Right || client.Top > client.Bottom {
		client = w.Window
	}
	if err := m.tree.SetRects(st.id, w.Window, client); err != nil {
		return err
	}
	if _, err := m.syncClient(st.id); err != nil {
		return err
	}

	m.register(st.id, st.whole, st.client)
	return nil
}

func (m *Manager) createWhole(st *peerState, w logical.Window) error {
	cls, w, err := m.classify(w)
	if err != nil {
		return err
	}

	rect := WindowToPeer(m.metrics, w, w.Window)
	parent := m.clientPeer(w.Parent)
	if parent == 0 {
		return fmt.Errorf("parent %#x: %w", w.Parent, ErrNotMaterialized)
	}

	attrs := cls.Attrs
	attrs.BitGravity = xproto.GravityBitForget
	attrs.WinGravity = xproto.GravityNorthWest
	attrs.BackingStore = xproto.BackingStoreNotUseful
	attrs.Mask |= xproto.CwBitGravity | xproto.CwWinGravity | xproto.CwBackingStore

	st.lastWhole = rect
	geom := platform.Geometry{X: rect.Left, Y: rect.Top, Width: max(rect.Width(), 1), Height: max(rect.Height(), 1)}
	whole, err := m.native.CreateWindow(parent, geom, attrs)
	if err != nil {
		return fmt.Errorf("create whole window: %w", err)
	}
	st.whole = whole
	m.observe(OpCreate, w.ID, whole, KindWhole, rect.String())

	if w.Style&(logical.StyleChild|logical.StyleMaximize) == logical.StyleChild {
		below := platform.Changes{Mask: xproto.ConfigWindowStackMode, StackMode: xproto.StackModeBelow}
		if err := m.native.ConfigureWindow(whole, below); err != nil {
			return fmt.Errorf("lower child window: %w", err)
		}
	}

	if cls.TopLevel {
		m.advertiseHints(st, w)
	}
	return nil
}

func (m *Manager) createClient(st *peerState) error {
	w, err := m.tree.Get(st.id)
	if err != nil {
		return err
	}
	rect := st.lastWhole.Offset(-st.lastWhole.Left, -st.lastWhole.Top)
	st.lastClient = rect

	attrs := platform.Attributes{
		Mask:         xproto.CwBitGravity | xproto.CwBackingStore | xproto.CwEventMask,
		BitGravity:   xproto.GravityNorthWest,
		BackingStore: xproto.BackingStoreNotUseful,
		EventMask:    baseEventMask,
	}
	if w.ClassStyle&(logical.ClassVRedraw|logical.ClassHRedraw) != 0 {
		attrs.BitGravity = xproto.GravityBitForget
	}

	geom := platform.Geometry{Width: max(rect.Width(), 1), Height: max(rect.Height(), 1)}
	client, err := m.native.CreateWindow(st.whole, geom, attrs)
	if err != nil {
		return fmt.Errorf("create client window: %w", err)
	}
	st.client = client
	m.observe(OpCreate, st.id, client, KindClient, rect.String())

	if mappedEligible(w, rect) {
		if err := m.native.MapWindow(client); err != nil {
			return fmt.Errorf("map client window: %w", err)
		}
		m.observe(OpMap, st.id, client, KindClient, "")
	}
	return nil
}

// Register records both peers of id in the handle registry.
func (m *Manager) Register(id logical.ID, whole, client platform.WindowID) {
	m.register(id, whole, client)
}

func (m *Manager) register(id logical.ID, whole, client platform.WindowID) {
	m.registry.Add(whole, id)
	m.registry.Add(client, id)
}

// WindowFromPeer returns the logical window owning a native peer.
func (m *Manager) WindowFromPeer(peer platform.WindowID) (logical.ID, bool) {
	return m.registry.Lookup(peer)
}

// DestroyPeer tears down every native object owned for id. Windows without
// peers are ignored.
func (m *Manager) DestroyPeer(id logical.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[id]
	if !ok {
		return nil
	}
	return m.destroyPeer(st)
}

func (m *Manager) destroyPeer(st *peerState) error {
	delete(m.states, st.id)
	m.tree.RemoveProp(st.id, PropWholeWindow)
	m.tree.RemoveProp(st.id, PropClientWindow)
	if st.desktop {
		return nil
	}

	var result *multierror.Error
	if err := m.native.Sync(); err != nil {
		result = multierror.Append(result, fmt.Errorf("sync before destroy: %w", err))
	}
	if err := m.destroySurrogate(st); err != nil {
		result = multierror.Append(result, err)
	}
	if err := m.freeIconPixmaps(st); err != nil {
		result = multierror.Append(result, fmt.Errorf("free icon pixmaps: %w", err))
	}
	if st.whole != 0 {
		if err := m.native.DestroyWindow(st.whole); err != nil {
			result = multierror.Append(result, fmt.Errorf("destroy whole window %#x: %w", st.whole, err))
		} else {
			m.observe(OpDestroy, st.id, st.whole, KindWhole, "")
			// The client peer goes down with its whole window.
			if st.client != 0 {
				m.observe(OpDestroy, st.id, st.client, KindClient, "")
			}
		}
	}
	m.registry.Remove(st.whole)
	m.registry.Remove(st.client)
	return result.ErrorOrNil()
}

// WholePeer returns the frame-inclusive peer of id. Windows of another
// process are resolved through their persisted properties.
func (m *Manager) WholePeer(id logical.ID) platform.WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wholePeer(id)
}

// ClientPeer returns the content-area peer of id.
func (m *Manager) ClientPeer(id logical.ID) platform.WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientPeer(id)
}

func (m *Manager) wholePeer(id logical.ID) platform.WindowID {
	return m.lookupPeer(id, PropWholeWindow, func(st *peerState) platform.WindowID { return st.whole })
}

func (m *Manager) clientPeer(id logical.ID) platform.WindowID {
	return m.lookupPeer(id, PropClientWindow, func(st *peerState) platform.WindowID { return st.client })
}

func (m *Manager) lookupPeer(id logical.ID, key string, pick func(*peerState) platform.WindowID) platform.WindowID {
	if st, ok := m.states[id]; ok {
		return pick(st)
	}
	if _, err := m.tree.Get(id); errors.Is(err, logical.ErrForeign) {
		v, _ := m.tree.Prop(id, key)
		return platform.WindowID(v)
	}
	return 0
}

// SyncStyle re-evaluates the decoration policy of id after a style change
// and pushes the resulting attributes and hints.
func (m *Manager) SyncStyle(id logical.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.state(id)
	if err != nil || st.desktop {
		return err
	}
	return m.syncStyle(st)
}

func (m *Manager) syncStyle(st *peerState) error {
	w, err := m.tree.Get(st.id)
	if err != nil {
		return err
	}
	cls, w, err := m.classify(w)
	if err != nil {
		return err
	}
	if cls.TopLevel {
		m.advertiseHints(st, w)
	} else if st.icon != 0 || !st.iconPixmaps.IsZero() {
		// A window that stops being top-level is no longer managed and
		// must not keep an icon representation.
		hints := st.currentWMHints()
		m.resolveIcon(st, false, hints)
		m.writeWMHints(st, hints)
	}
	if err := m.native.ChangeAttributes(st.whole, cls.Attrs); err != nil {
		return fmt.Errorf("change attributes of %#x: %w", st.whole, err)
	}
	return nil
}

// Reparent moves id under newParent and returns the previous parent. The
// logical tree is relinked before any native call.
func (m *Manager) Reparent(id, newParent logical.ID) (logical.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.tree.Get(id)
	if err != nil {
		return 0, err
	}
	old := w.Parent
	if newParent == old {
		return old, nil
	}
	st, err := m.state(id)
	if err != nil {
		return 0, err
	}
	parentPeer := m.clientPeer(newParent)
	if parentPeer == 0 {
		return 0, fmt.Errorf("new parent %#x: %w", newParent, ErrNotMaterialized)
	}
	if err := m.tree.Link(id, newParent); err != nil {
		return 0, err
	}
	if err := m.syncStyle(st); err != nil {
		return old, err
	}
	if err := m.native.ReparentWindow(st.whole, parentPeer, st.lastWhole.Left, st.lastWhole.Top); err != nil {
		return old, fmt.Errorf("reparent %#x: %w", st.whole, err)
	}
	m.observe(OpReparent, id, st.whole, KindWhole, fmt.Sprintf("parent=%#x", uint32(parentPeer)))
	return old, nil
}

// SetIcon stores a class icon for id and returns the previous one. Only the
// big icon changes what is advertised to the window manager.
func (m *Manager) SetIcon(id logical.ID, icon *logical.Icon, small bool) (*logical.Icon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, err := m.tree.SetClassIcon(id, icon, small)
	if err != nil {
		return nil, err
	}
	st, ok := m.states[id]
	if !ok || st.desktop || small {
		return old, nil
	}
	_, ex, err := m.tree.Styles(id)
	if err != nil {
		return old, err
	}
	if ex&logical.ExStyleManaged != 0 {
		hints := st.currentWMHints()
		m.resolveIcon(st, true, hints)
		m.writeWMHints(st, hints)
	}
	return old, nil
}

// SetText advertises the window text as WM_NAME, WM_ICON_NAME and
// _NET_WM_NAME.
func (m *Manager) SetText(id logical.ID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[id]
	if !ok || st.desktop {
		return nil
	}
	if err := m.native.SetTitle(st.whole, m.encoder.Encode(text), text); err != nil {
		return fmt.Errorf("set title of %#x: %w", st.whole, err)
	}
	m.observe(OpTitle, id, st.whole, KindWhole, text)
	return nil
}

// SetFocus gives native input focus to the top-level ancestor of id when no
// window manager owns its focus. Zero clears the focus and needs no native
// call.
func (m *Manager) SetFocus(id logical.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.opts.VirtualDesktop {
		return nil
	}
	if id == 0 {
		m.logger.Debug("focus cleared")
		return nil
	}

	root := m.tree.RootAncestor(id)
	_, ex, err := m.tree.Styles(root)
	if err != nil {
		return err
	}
	if ex&logical.ExStyleManaged != 0 {
		return nil
	}
	win := m.wholePeer(root)
	if win == 0 {
		return nil
	}
	viewable, err := m.native.IsViewable(win)
	if err != nil {
		return fmt.Errorf("query %#x: %w", win, err)
	}
	if !viewable {
		return nil
	}
	if err := m.native.SetInputFocus(win); err != nil {
		return fmt.Errorf("focus %#x: %w", win, err)
	}
	m.observe(OpFocus, root, win, KindWhole, "")
	return nil
}

// SetIconicState reflects the minimized style of id: the client peer is
// unmapped while iconic, the WM hints carry the state and icon position,
// and a visible window is iconified or mapped.
func (m *Manager) SetIconicState(id logical.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.state(id)
	if err != nil || st.desktop {
		return err
	}
	w, err := m.tree.Get(id)
	if err != nil {
		return err
	}
	iconic := w.IsMinimized()

	if iconic {
		if err := m.native.UnmapWindow(st.client); err != nil {
			return fmt.Errorf("unmap client window %#x: %w", st.client, err)
		}
		m.observe(OpUnmap, id, st.client, KindClient, "")
	} else if mappedEligible(w, st.lastClient) {
		if err := m.native.MapWindow(st.client); err != nil {
			return fmt.Errorf("map client window %#x: %w", st.client, err)
		}
		m.observe(OpMap, id, st.client, KindClient, "")
	}

	hints := st.currentWMHints()
	hints.Flags |= icccm.HintState | icccm.HintIconPosition
	hints.InitialState = icccm.StateNormal
	if iconic {
		hints.InitialState = icccm.StateIconic
	}
	hints.IconX = w.Window.Left
	hints.IconY = w.Window.Top
	m.writeWMHints(st, hints)

	if !w.IsVisible() {
		return nil
	}
	if iconic {
		if err := m.native.Iconify(st.whole, m.atoms.WMChangeState); err != nil {
			m.logger.Warn("iconify", "window", id, "error", err)
		}
		return nil
	}
	if !w.Window.IsEmpty() {
		if err := m.native.MapWindow(st.whole); err != nil {
			return fmt.Errorf("map whole window %#x: %w", st.whole, err)
		}
		m.observe(OpMap, id, st.whole, KindWhole, "")
	}
	return nil
}

// SetVisible maps the whole peer of id when it is shown, not minimized and
// has a non-empty frame, and unmaps it otherwise.
func (m *Manager) SetVisible(id logical.ID, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.state(id)
	if err != nil || st.desktop {
		return err
	}
	w, err := m.tree.Get(id)
	if err != nil {
		return err
	}
	if visible && !w.IsMinimized() && !w.Window.IsEmpty() {
		if err := m.native.MapWindow(st.whole); err != nil {
			return fmt.Errorf("map whole window %#x: %w", st.whole, err)
		}
		m.observe(OpMap, id, st.whole, KindWhole, "")
		return nil
	}
	if err := m.native.UnmapWindow(st.whole); err != nil {
		return fmt.Errorf("unmap whole window %#x: %w", st.whole, err)
	}
	m.observe(OpUnmap, id, st.whole, KindWhole, "")
	return nil
}

// PeerInfo is a snapshot of one window's peer state.
type PeerInfo struct {
	Window     logical.ID
	Desktop    bool
	Whole      platform.WindowID
	Client     platform.WindowID
	Icon       platform.WindowID
	LastWhole  logical.Rect
	LastClient logical.Rect
}

// Peers returns a snapshot of every materialized window, ordered by id.
func (m *Manager) Peers() []PeerInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]PeerInfo, 0, len(m.states))
	for _, st := range m.states {
		out = append(out, PeerInfo{
			Window:     st.id,
			Desktop:    st.desktop,
			Whole:      st.whole,
			Client:     st.client,
			Icon:       st.icon,
			LastWhole:  st.lastWhole,
			LastClient: st.lastClient,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Window < out[j].Window })
	return out
}
