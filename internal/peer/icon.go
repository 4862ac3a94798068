package peer

import (
	"fmt"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

// IconKind is the icon representation advertised to the window manager.
type IconKind int

const (
	// IconNone advertises no icon; the application draws its own.
	IconNone IconKind = iota
	// IconSurrogate advertises a small peer window as the icon.
	IconSurrogate
	// IconPixmap advertises a colour pixmap and mask.
	IconPixmap
)

func (k IconKind) String() string {
	switch k {
	case IconSurrogate:
		return "surrogate"
	case IconPixmap:
		return "pixmap"
	default:
		return "none"
	}
}

// ResolveIconKind picks the representation for a window.
func ResolveIconKind(managed, hasClassIcon bool) IconKind {
	switch {
	case !managed:
		return IconNone
	case !hasClassIcon:
		return IconSurrogate
	default:
		return IconPixmap
	}
}

// IconRepresentation is a resolved icon with the native objects behind it.
type IconRepresentation struct {
	Kind    IconKind
	Window  platform.WindowID
	Pixmaps platform.IconPixmaps
}

const iconHintFlags = icccm.HintIconPixmap | icccm.HintIconMask | icccm.HintIconWindow

// Apply folds the representation into h, leaving exactly one icon form
// flagged.
func (r IconRepresentation) Apply(h *icccm.Hints) {
	h.Flags &^= iconHintFlags
	switch r.Kind {
	case IconSurrogate:
		h.IconWindow = xproto.Window(r.Window)
		h.Flags |= icccm.HintIconWindow
	case IconPixmap:
		h.IconPixmap = xproto.Pixmap(r.Pixmaps.Color)
		h.IconMask = xproto.Pixmap(r.Pixmaps.Mask)
		h.Flags |= icccm.HintIconPixmap | icccm.HintIconMask
	}
}

func (m *Manager) createSurrogate(st *peerState) error {
	if st.icon != 0 {
		return nil
	}
	attrs := platform.Attributes{
		Mask:         xproto.CwBitGravity | xproto.CwBackingStore | xproto.CwEventMask,
		BitGravity:   xproto.GravityNorthWest,
		BackingStore: xproto.BackingStoreNotUseful,
		EventMask:    baseEventMask,
	}
	geom := platform.Geometry{Width: m.opts.IconWidth, Height: m.opts.IconHeight}
	icon, err := m.native.CreateWindow(m.native.Root(), geom, attrs)
	if err != nil {
		return fmt.Errorf("create icon window: %w", err)
	}
	st.icon = icon
	m.registry.Add(icon, st.id)
	m.observe(OpCreate, st.id, icon, KindIcon, "")
	return nil
}

func (m *Manager) destroySurrogate(st *peerState) error {
	if st.icon == 0 {
		return nil
	}
	icon := st.icon
	st.icon = 0
	m.registry.Remove(icon)
	if err := m.native.DestroyWindow(icon); err != nil {
		return fmt.Errorf("destroy icon window: %w", err)
	}
	m.observe(OpDestroy, st.id, icon, KindIcon, "")
	return nil
}

func (m *Manager) freeIconPixmaps(st *peerState) error {
	if st.iconPixmaps.IsZero() {
		return nil
	}
	pix := st.iconPixmaps
	st.iconPixmaps = platform.IconPixmaps{}
	return m.native.FreePixmaps(pix)
}

// resolveIcon recomputes the icon representation of st and folds it into h.
func (m *Manager) resolveIcon(st *peerState, managed bool, h *icccm.Hints) {
	if err := m.freeIconPixmaps(st); err != nil {
		m.logger.Warn("free icon pixmaps", "window", st.id, "error", err)
	}

	w, err := m.tree.Get(st.id)
	if err != nil {
		m.logger.Warn("resolve icon", "window", st.id, "error", err)
		return
	}

	rep := IconRepresentation{Kind: ResolveIconKind(managed, w.Icon != nil)}
	if rep.Kind == IconPixmap {
		pix, err := m.native.CreateIconPixmaps(invertMask(w.Icon), m.opts.IconWidth, m.opts.IconHeight)
		if err != nil {
			m.logger.Warn("icon pixmaps unavailable, using icon window", "window", st.id, "error", err)
			rep.Kind = IconSurrogate
		} else {
			st.iconPixmaps = pix
			rep.Pixmaps = pix
		}
	}

	switch rep.Kind {
	case IconSurrogate:
		if err := m.createSurrogate(st); err != nil {
			m.logger.Warn("icon surrogate", "window", st.id, "error", err)
			rep.Kind = IconNone
		}
		rep.Window = st.icon
	default:
		if err := m.destroySurrogate(st); err != nil {
			m.logger.Warn("icon surrogate", "window", st.id, "error", err)
		}
	}

	rep.Apply(h)
	m.observe(OpIcon, st.id, st.whole, KindWhole, rep.Kind.String())
}

// invertMask converts an AND mask, where a set bit is transparent, to the
// native convention where a set bit is opaque.
func invertMask(icon *logical.Icon) *logical.Icon {
	return &logical.Icon{Color: icon.Color, Mask: icon.Mask.Inverted()}
}
