package peer

import "github.com/1broseidon/peerwin/internal/logical"

// Metrics is the non-client calculator: it inflates a content rectangle to
// the frame around it, and back.
type Metrics interface {
	AdjustWindowRect(r logical.Rect, style, exStyle uint32) logical.Rect
	ClientRect(window logical.Rect, style, exStyle uint32) logical.Rect
}

// margins returns the frame offsets a window manager will draw around a
// managed peer. Scroll bars live inside the peer and never count.
func margins(m Metrics, w logical.Window) logical.Rect {
	return m.AdjustWindowRect(logical.Rect{}, w.Style&^(logical.StyleVScroll|logical.StyleHScroll), w.ExStyle)
}

// WindowToPeer converts a logical frame rectangle to the rectangle of the
// native peer. Managed windows lose their frame, which the window manager
// draws instead; unmanaged windows are already frame-exact. Empty input is
// returned unchanged and the result always spans at least one unit.
func WindowToPeer(m Metrics, w logical.Window, r logical.Rect) logical.Rect {
	if w.ExStyle&logical.ExStyleManaged == 0 || r.IsEmpty() {
		return r
	}
	mg := margins(m, w)
	r.Left -= mg.Left
	r.Top -= mg.Top
	r.Right -= mg.Right
	r.Bottom -= mg.Bottom
	return normalize(r)
}

// PeerToWindow is the inverse of WindowToPeer.
func PeerToWindow(m Metrics, w logical.Window, r logical.Rect) logical.Rect {
	if w.ExStyle&logical.ExStyleManaged == 0 || r.IsEmpty() {
		return r
	}
	mg := margins(m, w)
	r.Left += mg.Left
	r.Top += mg.Top
	r.Right += mg.Right
	r.Bottom += mg.Bottom
	return normalize(r)
}

func normalize(r logical.Rect) logical.Rect {
	if r.Bottom <= r.Top {
		r.Bottom = r.Top + 1
	}
	if r.Right <= r.Left {
		r.Right = r.Left + 1
	}
	return r
}
