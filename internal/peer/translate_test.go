package peer

import (
	"testing"

	"github.com/1broseidon/peerwin/internal/logical"
)

func TestWindowToPeer_UnmanagedIsIdentity(t *testing.T) {
	m := logical.DefaultFrameMetrics()
	w := logical.Window{Style: logical.StyleOverlappedWindow}
	r := logical.Rect{Left: 10, Top: 20, Right: 110, Bottom: 220}

	if got := WindowToPeer(m, w, r); got != r {
		t.Fatalf("expected identity for unmanaged window, got %v", got)
	}
	if got := PeerToWindow(m, w, r); got != r {
		t.Fatalf("expected identity for unmanaged window, got %v", got)
	}
}

func TestWindowToPeer_ManagedStripsFrame(t *testing.T) {
	m := logical.DefaultFrameMetrics()
	w := logical.Window{
		Style:   logical.StyleOverlappedWindow | logical.StyleVScroll,
		ExStyle: logical.ExStyleManaged,
	}
	frame := logical.Rect{Left: 96, Top: 78, Right: 304, Bottom: 304}

	got := WindowToPeer(m, w, frame)
	want := logical.Rect{Left: 100, Top: 100, Right: 300, Bottom: 300}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTranslate_RoundTrip(t *testing.T) {
	m := logical.DefaultFrameMetrics()
	styles := []struct {
		name    string
		style   uint32
		exStyle uint32
	}{
		{"overlapped", logical.StyleOverlappedWindow, 0},
		{"dialog", logical.StyleCaption | logical.StyleSysMenu, logical.ExStyleDlgModalFrame},
		{"client edge", logical.StyleCaption | logical.StyleThickFrame, logical.ExStyleClientEdge},
	}
	rects := []logical.Rect{
		{Left: 0, Top: 0, Right: 1, Bottom: 1},
		{Left: 10, Top: 10, Right: 210, Bottom: 110},
		{Left: -50, Top: -40, Right: 640, Bottom: 480},
	}
	for _, s := range styles {
		for _, r := range rects {
			t.Run(s.name+" "+r.String(), func(t *testing.T) {
				w := logical.Window{Style: s.style, ExStyle: s.exStyle | logical.ExStyleManaged}
				if got := WindowToPeer(m, w, PeerToWindow(m, w, r)); got != r {
					t.Fatalf("expected round trip to reproduce %v, got %v", r, got)
				}
			})
		}
	}
}

func TestWindowToPeer_EmptyPassesThrough(t *testing.T) {
	m := logical.DefaultFrameMetrics()
	w := logical.Window{Style: logical.StyleOverlappedWindow, ExStyle: logical.ExStyleManaged}
	for _, r := range []logical.Rect{
		{Left: 5, Top: 5, Right: 5, Bottom: 50},
		{Left: 5, Top: 50, Right: 60, Bottom: 40},
	} {
		if got := WindowToPeer(m, w, r); got != r {
			t.Fatalf("expected empty %v unchanged, got %v", r, got)
		}
		if got := PeerToWindow(m, w, r); got != r {
			t.Fatalf("expected empty %v unchanged, got %v", r, got)
		}
	}
}

func TestWindowToPeer_NormalizesDegenerateResult(t *testing.T) {
	m := logical.DefaultFrameMetrics()
	w := logical.Window{Style: logical.StyleOverlappedWindow, ExStyle: logical.ExStyleManaged}
	// Smaller than the frame itself.
	frame := logical.Rect{Left: 0, Top: 0, Right: 6, Bottom: 10}

	got := WindowToPeer(m, w, frame)
	if got.Width() != 1 || got.Height() != 1 {
		t.Fatalf("expected a 1x1 peer, got %v", got)
	}
	if got.Left != 4 || got.Top != 22 {
		t.Fatalf("expected origin moved inside the frame, got %v", got)
	}
}
