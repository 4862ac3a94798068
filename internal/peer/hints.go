package peer

import (
	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

// BuildSizeHints returns WM_NORMAL_HINTS for a peer at peerRect: static
// gravity and the current position always, and min = max = current size
// for fixed dialog frames.
func BuildSizeHints(w logical.Window, peerRect logical.Rect) *icccm.NormalHints {
	h := &icccm.NormalHints{
		Flags:      icccm.SizeHintPWinGravity | icccm.SizeHintPPosition,
		X:          peerRect.Left,
		Y:          peerRect.Top,
		WinGravity: xproto.GravityStatic,
	}
	if logical.HasDialogFrame(w.Style, w.ExStyle) {
		width, height := uint(max(peerRect.Width(), 1)), uint(max(peerRect.Height(), 1))
		h.MinWidth, h.MaxWidth = width, width
		h.MinHeight, h.MaxHeight = height, height
		h.Flags |= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
	}
	return h
}

// Protocols lists the WM_PROTOCOLS a peer takes part in.
func Protocols(atoms platform.Atoms) []string {
	protocols := []string{"WM_DELETE_WINDOW"}
	if atoms.WMTakeFocus != 0 {
		protocols = append(protocols, "WM_TAKE_FOCUS")
	}
	return protocols
}

// baseWMHints selects the ICCCM input model: globally active when the
// focus protocol is offered, passive otherwise.
func baseWMHints(atoms platform.Atoms) *icccm.Hints {
	h := &icccm.Hints{Flags: icccm.HintInput | icccm.HintState | icccm.HintWindowGroup}
	if atoms.WMTakeFocus == 0 {
		h.Input = 1
	}
	return h
}

func (m *Manager) setSizeHints(st *peerState, w logical.Window) {
	if err := m.native.SetNormalHints(st.whole, BuildSizeHints(w, st.lastWhole)); err != nil {
		m.logger.Warn("size hints", "window", w.ID, "error", err)
	}
}

// advertiseHints runs the full hint cycle for a top-level window. Every
// failure is logged; the window stays usable with fewer hints.
func (m *Manager) advertiseHints(st *peerState, w logical.Window) {
	atoms := m.atoms

	if err := m.native.SetProtocols(st.whole, Protocols(atoms)); err != nil {
		m.logger.Warn("wm protocols", "window", w.ID, "error", err)
	}
	if err := m.native.SetClassHint(st.whole, m.opts.AppName, m.opts.AppClass); err != nil {
		m.logger.Warn("class hint", "window", w.ID, "error", err)
	}

	group := st.whole
	if w.Owner != 0 {
		if owner := m.wholePeer(w.Owner); owner != 0 {
			if err := m.native.SetTransientFor(st.whole, owner); err != nil {
				m.logger.Warn("transient for", "window", w.ID, "error", err)
			}
			group = owner
		}
	}

	m.setSizeHints(st, w)

	if w.ExStyle&logical.ExStyleTrayWindow != 0 {
		if err := m.native.SetDockHints(st.whole, atoms); err != nil {
			m.logger.Debug("dock hints", "window", w.ID, "error", err)
		}
	}

	if atoms.MotifWMHints != 0 {
		if err := m.native.SetMotifHints(st.whole, DecorationHints(w.Style, w.ExStyle)); err != nil {
			m.logger.Warn("motif hints", "window", w.ID, "error", err)
		}
	}

	hints := baseWMHints(atoms)
	m.resolveIcon(st, w.ExStyle&logical.ExStyleManaged != 0, hints)
	hints.InitialState = icccm.StateNormal
	if w.IsMinimized() {
		hints.InitialState = icccm.StateIconic
	}
	hints.WindowGroup = xproto.Window(group)
	m.writeWMHints(st, hints)
	m.observe(OpHints, w.ID, st.whole, KindWhole, "")
}

// writeWMHints publishes hints and keeps them as the base for later partial
// updates.
func (m *Manager) writeWMHints(st *peerState, hints *icccm.Hints) {
	if err := m.native.SetWMHints(st.whole, hints); err != nil {
		m.logger.Warn("wm hints", "window", st.id, "error", err)
		return
	}
	st.wmHints = hints
}

// currentWMHints returns a copy of the last published hints.
func (st *peerState) currentWMHints() *icccm.Hints {
	if st.wmHints == nil {
		return &icccm.Hints{}
	}
	h := *st.wmHints
	return &h
}
