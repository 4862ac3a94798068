package platform

import (
	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
)

// WindowID is a native window identifier. Zero means "no window".
type WindowID uint32

// Pixmap is a native drawable identifier.
type Pixmap uint32

// Geometry places a new native window inside its parent.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Attributes is the native attribute set of a window. Mask selects which
// fields are applied, using the xproto.Cw* bits.
type Attributes struct {
	Mask             uint32
	BitGravity       uint32
	WinGravity       uint32
	BackingStore     uint32
	OverrideRedirect bool
	SaveUnder        bool
	EventMask        uint32
	// Cursor is an xcursor shape name; empty means inherit the parent's.
	Cursor string
}

// Values returns the value list for Mask in protocol bit order. The cursor
// id is supplied by the backend that resolved Cursor.
func (a Attributes) Values(cursor xproto.Cursor) []uint32 {
	var vals []uint32
	if a.Mask&xproto.CwBitGravity != 0 {
		vals = append(vals, a.BitGravity)
	}
	if a.Mask&xproto.CwWinGravity != 0 {
		vals = append(vals, a.WinGravity)
	}
	if a.Mask&xproto.CwBackingStore != 0 {
		vals = append(vals, a.BackingStore)
	}
	if a.Mask&xproto.CwOverrideRedirect != 0 {
		vals = append(vals, boolValue(a.OverrideRedirect))
	}
	if a.Mask&xproto.CwSaveUnder != 0 {
		vals = append(vals, boolValue(a.SaveUnder))
	}
	if a.Mask&xproto.CwEventMask != 0 {
		vals = append(vals, a.EventMask)
	}
	if a.Mask&xproto.CwCursor != 0 {
		vals = append(vals, uint32(cursor))
	}
	return vals
}

func boolValue(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Changes is a native change set over position, size and stacking. Mask
// uses the xproto.ConfigWindow* bits.
type Changes struct {
	Mask      uint16
	X         int
	Y         int
	Width     int
	Height    int
	Sibling   WindowID
	StackMode byte
}

// SizeChanged reports whether the change set resizes the window.
func (c Changes) SizeChanged() bool {
	return c.Mask&(xproto.ConfigWindowWidth|xproto.ConfigWindowHeight) != 0
}

// Values returns the value list for Mask in protocol bit order.
func (c Changes) Values() []uint32 {
	var vals []uint32
	if c.Mask&xproto.ConfigWindowX != 0 {
		vals = append(vals, uint32(int32(c.X)))
	}
	if c.Mask&xproto.ConfigWindowY != 0 {
		vals = append(vals, uint32(int32(c.Y)))
	}
	if c.Mask&xproto.ConfigWindowWidth != 0 {
		vals = append(vals, uint32(c.Width))
	}
	if c.Mask&xproto.ConfigWindowHeight != 0 {
		vals = append(vals, uint32(c.Height))
	}
	if c.Mask&xproto.ConfigWindowSibling != 0 {
		vals = append(vals, uint32(c.Sibling))
	}
	if c.Mask&xproto.ConfigWindowStackMode != 0 {
		vals = append(vals, uint32(c.StackMode))
	}
	return vals
}

// Atoms is the protocol atom snapshot interned once per process. A zero
// atom means the protocol is not offered.
type Atoms struct {
	WMProtocols            xproto.Atom
	WMDeleteWindow         xproto.Atom
	WMTakeFocus            xproto.Atom
	WMChangeState          xproto.Atom
	MotifWMHints           xproto.Atom
	KWMDockWindow          xproto.Atom
	KDESystemTrayWindowFor xproto.Atom
	DndProtocol            xproto.Atom
	DndSelection           xproto.Atom
}

// IconPixmaps is a colour pixmap and its depth-1 mask.
type IconPixmaps struct {
	Color Pixmap
	Mask  Pixmap
}

// IsZero reports whether no drawable is held.
func (p IconPixmaps) IsZero() bool {
	return p.Color == 0 && p.Mask == 0
}

// Native abstracts the windowing-system operations the peer core issues.
// Implementations serialize access to the display connection per call.
type Native interface {
	Root() WindowID
	InternAtoms(takeFocus bool) (Atoms, error)

	CreateWindow(parent WindowID, geom Geometry, attrs Attributes) (WindowID, error)
	DestroyWindow(id WindowID) error
	ChangeAttributes(id WindowID, attrs Attributes) error
	ConfigureWindow(id WindowID, ch Changes) error
	// ReconfigureManaged configures a window a manager may be controlling,
	// falling back to a synthetic configure request when the direct request
	// is refused.
	ReconfigureManaged(id WindowID, ch Changes) error
	MapWindow(id WindowID) error
	UnmapWindow(id WindowID) error
	ReparentWindow(id, parent WindowID, x, y int) error
	// Sync blocks until every request issued so far has been processed.
	Sync() error

	SetProtocols(id WindowID, protocols []string) error
	SetClassHint(id WindowID, instance, class string) error
	SetTransientFor(id, owner WindowID) error
	SetNormalHints(id WindowID, hints *icccm.NormalHints) error
	SetWMHints(id WindowID, hints *icccm.Hints) error
	SetMotifHints(id WindowID, hints *motif.Hints) error
	SetDockHints(id WindowID, atoms Atoms) error
	SetTitle(id WindowID, legacy []byte, utf8 string) error

	CreateIconPixmaps(icon *logical.Icon, width, height int) (IconPixmaps, error)
	FreePixmaps(p IconPixmaps) error

	Iconify(id WindowID, changeState xproto.Atom) error
	IsViewable(id WindowID) (bool, error)
	SetInputFocus(id WindowID) error
}
