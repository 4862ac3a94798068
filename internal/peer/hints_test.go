package peer

import (
	"reflect"
	"testing"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

func TestBuildSizeHints(t *testing.T) {
	rect := logical.Rect{Left: 10, Top: 10, Right: 210, Bottom: 110}

	fixed := BuildSizeHints(logical.Window{Style: logical.StyleCaption | logical.StyleSysMenu}, rect)
	wantFlags := uint(icccm.SizeHintPWinGravity | icccm.SizeHintPPosition | icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize)
	if fixed.Flags != wantFlags {
		t.Fatalf("expected flags %#x, got %#x", wantFlags, fixed.Flags)
	}
	if fixed.MinWidth != 200 || fixed.MaxWidth != 200 || fixed.MinHeight != 100 || fixed.MaxHeight != 100 {
		t.Fatalf("expected min=max=200x100, got min %dx%d max %dx%d",
			fixed.MinWidth, fixed.MinHeight, fixed.MaxWidth, fixed.MaxHeight)
	}
	if fixed.X != 10 || fixed.Y != 10 || fixed.WinGravity != xproto.GravityStatic {
		t.Fatalf("expected static gravity at 10,10, got %d,%d gravity %d", fixed.X, fixed.Y, fixed.WinGravity)
	}

	resizable := BuildSizeHints(logical.Window{Style: logical.StyleOverlappedWindow}, rect)
	if resizable.Flags&icccm.SizeHintPMinSize != 0 || resizable.Flags&icccm.SizeHintPMaxSize != 0 {
		t.Fatalf("resizable window must not lock its size, flags %#x", resizable.Flags)
	}
}

func TestProtocols(t *testing.T) {
	if got := Protocols(platform.Atoms{}); !reflect.DeepEqual(got, []string{"WM_DELETE_WINDOW"}) {
		t.Fatalf("unexpected protocols %v", got)
	}
	got := Protocols(platform.Atoms{WMTakeFocus: 9})
	if !reflect.DeepEqual(got, []string{"WM_DELETE_WINDOW", "WM_TAKE_FOCUS"}) {
		t.Fatalf("unexpected protocols %v", got)
	}
	if baseWMHints(platform.Atoms{WMTakeFocus: 9}).Input != 0 {
		t.Fatalf("expected globally active input model with WM_TAKE_FOCUS")
	}
	if baseWMHints(platform.Atoms{}).Input != 1 {
		t.Fatalf("expected passive input model without WM_TAKE_FOCUS")
	}
}

func TestResolveIconKind(t *testing.T) {
	tests := []struct {
		managed bool
		hasIcon bool
		want    IconKind
	}{
		{false, false, IconNone},
		{false, true, IconNone},
		{true, false, IconSurrogate},
		{true, true, IconPixmap},
	}
	for _, tt := range tests {
		if got := ResolveIconKind(tt.managed, tt.hasIcon); got != tt.want {
			t.Fatalf("managed=%v icon=%v: expected %v, got %v", tt.managed, tt.hasIcon, tt.want, got)
		}
	}
}

func TestIconRepresentation_ApplyIsExclusive(t *testing.T) {
	h := &icccm.Hints{Flags: icccm.HintInput | icccm.HintIconWindow | icccm.HintIconPixmap | icccm.HintIconMask}

	IconRepresentation{Kind: IconPixmap, Pixmaps: platform.IconPixmaps{Color: 5, Mask: 6}}.Apply(h)
	if h.Flags != icccm.HintInput|icccm.HintIconPixmap|icccm.HintIconMask {
		t.Fatalf("unexpected flags after pixmap %#x", h.Flags)
	}
	if h.IconPixmap != 5 || h.IconMask != 6 {
		t.Fatalf("expected pixmap 5 mask 6, got %d %d", h.IconPixmap, h.IconMask)
	}

	IconRepresentation{Kind: IconSurrogate, Window: 77}.Apply(h)
	if h.Flags != icccm.HintInput|icccm.HintIconWindow || h.IconWindow != 77 {
		t.Fatalf("unexpected hints after surrogate %#x window %d", h.Flags, h.IconWindow)
	}

	IconRepresentation{Kind: IconNone}.Apply(h)
	if h.Flags != icccm.HintInput {
		t.Fatalf("expected icon flags cleared, got %#x", h.Flags)
	}
}
