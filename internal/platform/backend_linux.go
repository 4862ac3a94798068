//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xprop"
)

// X11Backend implements Native on an X11 connection.
type X11Backend struct {
	conn *x11.Connection
}

var _ Native = (*X11Backend)(nil)

// NewX11Backend wraps an existing X11 connection.
func NewX11Backend(conn *x11.Connection) *X11Backend {
	return &X11Backend{conn: conn}
}

// NewX11BackendFromDisplay opens a fresh X11 connection to display.
func NewX11BackendFromDisplay(display string) (*X11Backend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &X11Backend{conn: conn}, nil
}

// Connection returns the underlying connection for event handling.
func (b *X11Backend) Connection() *x11.Connection {
	return b.conn
}

// Disconnect closes the underlying X11 connection.
func (b *X11Backend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

var cursorShapes = map[string]uint16{
	"left_ptr":  xcursor.LeftPtr,
	"xterm":     xcursor.XTerm,
	"watch":     xcursor.Watch,
	"crosshair": xcursor.Crosshair,
	"fleur":     xcursor.Fleur,
	"hand2":     xcursor.Hand2,
}

// Root returns the root window of the default screen.
func (b *X11Backend) Root() WindowID {
	return WindowID(b.conn.Root)
}

// InternAtoms interns the protocol atoms. Docking atoms are only looked up;
// they stay zero when no docking-aware manager created them.
func (b *X11Backend) InternAtoms(takeFocus bool) (Atoms, error) {
	b.conn.Lock()
	defer b.conn.Unlock()

	var atoms Atoms
	required := []struct {
		name string
		dst  *xproto.Atom
	}{
		{"WM_PROTOCOLS", &atoms.WMProtocols},
		{"WM_DELETE_WINDOW", &atoms.WMDeleteWindow},
		{"WM_CHANGE_STATE", &atoms.WMChangeState},
		{"_MOTIF_WM_HINTS", &atoms.MotifWMHints},
		{"DndProtocol", &atoms.DndProtocol},
		{"DndSelection", &atoms.DndSelection},
	}
	if takeFocus {
		required = append(required, struct {
			name string
			dst  *xproto.Atom
		}{"WM_TAKE_FOCUS", &atoms.WMTakeFocus})
	}
	for _, r := range required {
		a, err := b.conn.Intern(r.name)
		if err != nil {
			return Atoms{}, fmt.Errorf("intern %s: %w", r.name, err)
		}
		*r.dst = a
	}

	var err error
	if atoms.KWMDockWindow, err = b.conn.Lookup("KWM_DOCKWINDOW"); err != nil {
		atoms.KWMDockWindow = 0
	}
	if atoms.KDESystemTrayWindowFor, err = b.conn.Lookup("_KDE_NET_WM_SYSTEM_TRAY_WINDOW_FOR"); err != nil {
		atoms.KDESystemTrayWindowFor = 0
	}
	return atoms, nil
}

// CreateWindow creates an InputOutput window with the parent's depth and visual.
func (b *X11Backend) CreateWindow(parent WindowID, geom Geometry, attrs Attributes) (WindowID, error) {
	b.conn.Lock()
	defer b.conn.Unlock()

	c := b.conn.XUtil.Conn()
	wid, err := xproto.NewWindowId(c)
	if err != nil {
		return 0, err
	}

	cursor, ok := b.cursor(attrs)
	if !ok {
		attrs.Mask &^= xproto.CwCursor
	}
	err = xproto.CreateWindowChecked(c, 0, wid, xproto.Window(parent),
		int16(geom.X), int16(geom.Y), uint16(geom.Width), uint16(geom.Height), 0,
		xproto.WindowClassInputOutput, 0, attrs.Mask, attrs.Values(cursor)).Check()
	if cursor != 0 {
		xproto.FreeCursor(c, cursor)
	}
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// cursor resolves attrs.Cursor. An empty name yields None, which makes the
// window inherit its parent's cursor; ok is false when a named cursor could
// not be created and the cursor attribute should be left alone.
func (b *X11Backend) cursor(attrs Attributes) (xproto.Cursor, bool) {
	if attrs.Mask&xproto.CwCursor == 0 || attrs.Cursor == "" {
		return 0, true
	}
	shape, ok := cursorShapes[attrs.Cursor]
	if !ok {
		shape = xcursor.LeftPtr
	}
	cursor, err := xcursor.CreateCursor(b.conn.XUtil, shape)
	if err != nil {
		return 0, false
	}
	return cursor, true
}

// DestroyWindow destroys a window and its subwindows.
func (b *X11Backend) DestroyWindow(id WindowID) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return xproto.DestroyWindowChecked(b.conn.XUtil.Conn(), xproto.Window(id)).Check()
}

// ChangeAttributes applies the masked attributes to an existing window.
func (b *X11Backend) ChangeAttributes(id WindowID, attrs Attributes) error {
	b.conn.Lock()
	defer b.conn.Unlock()

	cursor, ok := b.cursor(attrs)
	if !ok {
		attrs.Mask &^= xproto.CwCursor
	}
	c := b.conn.XUtil.Conn()
	err := xproto.ChangeWindowAttributesChecked(c, xproto.Window(id), attrs.Mask, attrs.Values(cursor)).Check()
	if cursor != 0 {
		xproto.FreeCursor(c, cursor)
	}
	return err
}

// ConfigureWindow applies a change set directly.
func (b *X11Backend) ConfigureWindow(id WindowID, ch Changes) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return b.configure(id, ch)
}

func (b *X11Backend) configure(id WindowID, ch Changes) error {
	return xproto.ConfigureWindowChecked(b.conn.XUtil.Conn(), xproto.Window(id), ch.Mask, ch.Values()).Check()
}

// ReconfigureManaged configures a possibly reparented window. When the
// request fails because the sibling is no longer a sibling, the change set
// is forwarded to the window manager as a synthetic configure request.
func (b *X11Backend) ReconfigureManaged(id WindowID, ch Changes) error {
	b.conn.Lock()
	defer b.conn.Unlock()

	err := b.configure(id, ch)
	if err == nil || ch.Mask&xproto.ConfigWindowSibling == 0 {
		return err
	}
	return b.conn.SendConfigureRequest(xproto.Window(id), ch.Mask,
		int16(ch.X), int16(ch.Y), uint16(ch.Width), uint16(ch.Height),
		xproto.Window(ch.Sibling), ch.StackMode)
}

// MapWindow maps a window.
func (b *X11Backend) MapWindow(id WindowID) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return xproto.MapWindowChecked(b.conn.XUtil.Conn(), xproto.Window(id)).Check()
}

// UnmapWindow unmaps a window.
func (b *X11Backend) UnmapWindow(id WindowID) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return xproto.UnmapWindowChecked(b.conn.XUtil.Conn(), xproto.Window(id)).Check()
}

// ReparentWindow moves a window under parent at x, y.
func (b *X11Backend) ReparentWindow(id, parent WindowID, x, y int) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return xproto.ReparentWindowChecked(b.conn.XUtil.Conn(), xproto.Window(id),
		xproto.Window(parent), int16(x), int16(y)).Check()
}

// Sync performs a round trip so every earlier request has been handled.
func (b *X11Backend) Sync() error {
	b.conn.Lock()
	defer b.conn.Unlock()
	_, err := xproto.GetInputFocus(b.conn.XUtil.Conn()).Reply()
	return err
}

// SetProtocols writes WM_PROTOCOLS.
func (b *X11Backend) SetProtocols(id WindowID, protocols []string) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return icccm.WmProtocolsSet(b.conn.XUtil, xproto.Window(id), protocols)
}

// SetClassHint writes WM_CLASS.
func (b *X11Backend) SetClassHint(id WindowID, instance, class string) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return icccm.WmClassSet(b.conn.XUtil, xproto.Window(id), &icccm.WmClass{Instance: instance, Class: class})
}

// SetTransientFor writes WM_TRANSIENT_FOR.
func (b *X11Backend) SetTransientFor(id, owner WindowID) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return icccm.WmTransientForSet(b.conn.XUtil, xproto.Window(id), xproto.Window(owner))
}

// SetNormalHints writes WM_NORMAL_HINTS.
func (b *X11Backend) SetNormalHints(id WindowID, hints *icccm.NormalHints) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return icccm.WmNormalHintsSet(b.conn.XUtil, xproto.Window(id), hints)
}

// SetWMHints writes WM_HINTS.
func (b *X11Backend) SetWMHints(id WindowID, hints *icccm.Hints) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return icccm.WmHintsSet(b.conn.XUtil, xproto.Window(id), hints)
}

// SetMotifHints writes _MOTIF_WM_HINTS.
func (b *X11Backend) SetMotifHints(id WindowID, hints *motif.Hints) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return motif.WmHintsSet(b.conn.XUtil, xproto.Window(id), hints)
}

// SetDockHints marks a window as a tray icon for docking-aware managers.
// Properties whose atom is absent are skipped.
func (b *X11Backend) SetDockHints(id WindowID, atoms Atoms) error {
	b.conn.Lock()
	defer b.conn.Unlock()

	xu := b.conn.XUtil
	if atoms.KWMDockWindow != 0 {
		if err := xprop.ChangeProp32(xu, xproto.Window(id), "KWM_DOCKWINDOW", "KWM_DOCKWINDOW", 1); err != nil {
			return err
		}
	}
	if atoms.KDESystemTrayWindowFor != 0 {
		if err := xprop.ChangeProp32(xu, xproto.Window(id), "_KDE_NET_WM_SYSTEM_TRAY_WINDOW_FOR", "WINDOW", uint(id)); err != nil {
			return err
		}
	}
	return nil
}

// SetTitle writes WM_NAME and WM_ICON_NAME from the legacy bytes and
// _NET_WM_NAME from the UTF-8 text.
func (b *X11Backend) SetTitle(id WindowID, legacy []byte, utf8 string) error {
	b.conn.Lock()
	defer b.conn.Unlock()

	xu := b.conn.XUtil
	win := xproto.Window(id)
	if err := icccm.WmNameSet(xu, win, string(legacy)); err != nil {
		return err
	}
	if err := icccm.WmIconNameSet(xu, win, string(legacy)); err != nil {
		return err
	}
	return ewmh.WmNameSet(xu, win, utf8)
}

// CreateIconPixmaps uploads the icon as a screen-depth colour pixmap and a
// depth-1 mask in which a set bit is opaque.
func (b *X11Backend) CreateIconPixmaps(icon *logical.Icon, width, height int) (IconPixmaps, error) {
	b.conn.Lock()
	defer b.conn.Unlock()

	img, mask := ScaleIcon(icon, width, height)

	ximg := xgraphics.NewConvert(b.conn.XUtil, img)
	if err := ximg.CreatePixmap(); err != nil {
		return IconPixmaps{}, fmt.Errorf("icon colour pixmap: %w", err)
	}
	ximg.XDraw()
	out := IconPixmaps{Color: Pixmap(ximg.Pixmap)}

	maskPix, err := b.createBitmap(mask)
	if err != nil {
		xproto.FreePixmap(b.conn.XUtil.Conn(), ximg.Pixmap)
		return IconPixmaps{}, fmt.Errorf("icon mask pixmap: %w", err)
	}
	out.Mask = maskPix
	return out, nil
}

func (b *X11Backend) createBitmap(bm logical.Bitmap) (Pixmap, error) {
	c := b.conn.XUtil.Conn()
	pid, err := xproto.NewPixmapId(c)
	if err != nil {
		return 0, err
	}
	err = xproto.CreatePixmapChecked(c, 1, pid, xproto.Drawable(b.conn.Root),
		uint16(bm.Width), uint16(bm.Height)).Check()
	if err != nil {
		return 0, err
	}

	gc, err := xproto.NewGcontextId(c)
	if err != nil {
		xproto.FreePixmap(c, pid)
		return 0, err
	}
	if err := xproto.CreateGCChecked(c, gc, xproto.Drawable(pid), 0, nil).Check(); err != nil {
		xproto.FreePixmap(c, pid)
		return 0, err
	}
	defer xproto.FreeGC(c, gc)

	setup := xproto.Setup(c)
	data := PackBitmap(bm, int(setup.BitmapFormatScanlinePad), setup.BitmapFormatBitOrder == xproto.ImageOrderLSBFirst)
	err = xproto.PutImageChecked(c, xproto.ImageFormatXYPixmap, xproto.Drawable(pid), gc,
		uint16(bm.Width), uint16(bm.Height), 0, 0, 0, 1, data).Check()
	if err != nil {
		xproto.FreePixmap(c, pid)
		return 0, err
	}
	return Pixmap(pid), nil
}

// FreePixmaps frees both drawables; zero ids are skipped.
func (b *X11Backend) FreePixmaps(p IconPixmaps) error {
	b.conn.Lock()
	defer b.conn.Unlock()

	c := b.conn.XUtil.Conn()
	var firstErr error
	for _, pix := range []Pixmap{p.Color, p.Mask} {
		if pix == 0 {
			continue
		}
		if err := xproto.FreePixmapChecked(c, xproto.Pixmap(pix)).Check(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Iconify asks the window manager to minimize a window via WM_CHANGE_STATE.
// changeState is the interned WM_CHANGE_STATE atom.
func (b *X11Backend) Iconify(id WindowID, changeState xproto.Atom) error {
	if changeState == 0 {
		return fmt.Errorf("WM_CHANGE_STATE atom not interned")
	}
	b.conn.Lock()
	defer b.conn.Unlock()
	return b.conn.SendChangeState(xproto.Window(id), changeState, x11.IconicState)
}

// IsViewable reports whether the window is mapped and all its ancestors are.
func (b *X11Backend) IsViewable(id WindowID) (bool, error) {
	b.conn.Lock()
	defer b.conn.Unlock()
	return b.conn.IsViewable(xproto.Window(id))
}

// SetInputFocus focuses a window, reverting to its parent.
func (b *X11Backend) SetInputFocus(id WindowID) error {
	b.conn.Lock()
	defer b.conn.Unlock()
	return xproto.SetInputFocusChecked(b.conn.XUtil.Conn(), xproto.InputFocusParent,
		xproto.Window(id), xproto.TimeCurrentTime).Check()
}
