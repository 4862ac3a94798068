package logical

// FrameMetrics holds the non-client sizes used to convert between a content
// rectangle and the frame-inclusive rectangle around it.
type FrameMetrics struct {
	Caption    int `yaml:"caption"`
	Border     int `yaml:"border"`
	DlgFrame   int `yaml:"dlg_frame"`
	ThickFrame int `yaml:"thick_frame"`
	Edge       int `yaml:"edge"`
}

// DefaultFrameMetrics returns the classic system metrics.
func DefaultFrameMetrics() FrameMetrics {
	return FrameMetrics{Caption: 18, Border: 1, DlgFrame: 3, ThickFrame: 4, Edge: 2}
}

// HasDialogFrame reports whether the style bits describe a fixed dialog frame.
func HasDialogFrame(style, exStyle uint32) bool {
	return exStyle&ExStyleDlgModalFrame != 0 ||
		(style&StyleDlgFrame != 0 && style&StyleThickFrame == 0)
}

// AdjustWindowRect inflates a content rectangle by the frame, caption and
// edges implied by the style bits.
func (m FrameMetrics) AdjustWindowRect(r Rect, style, exStyle uint32) Rect {
	inflate := func(n int) {
		r.Left -= n
		r.Top -= n
		r.Right += n
		r.Bottom += n
	}

	switch {
	case HasDialogFrame(style, exStyle):
		inflate(m.DlgFrame)
	case style&StyleThickFrame != 0:
		inflate(m.ThickFrame)
	case style&StyleBorder != 0:
		inflate(m.Border)
	}
	if style&StyleCaption == StyleCaption {
		r.Top -= m.Caption
	}
	if exStyle&ExStyleClientEdge != 0 {
		inflate(m.Edge)
	}
	if exStyle&ExStyleStaticEdge != 0 {
		inflate(m.Border)
	}
	return r
}

// ClientRect is the inverse of AdjustWindowRect.
func (m FrameMetrics) ClientRect(window Rect, style, exStyle uint32) Rect {
	margins := m.AdjustWindowRect(Rect{}, style, exStyle)
	return Rect{
		Left:   window.Left - margins.Left,
		Top:    window.Top - margins.Top,
		Right:  window.Right - margins.Right,
		Bottom: window.Bottom - margins.Bottom,
	}
}
