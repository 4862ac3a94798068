package peer

import (
	"testing"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/motif"
)

func TestClassify_Management(t *testing.T) {
	tests := []struct {
		name     string
		style    uint32
		exStyle  uint32
		topLevel bool
		managed  bool
		want     bool
	}{
		{name: "child with caption and thick frame", style: logical.StyleChild | logical.StyleCaption | logical.StyleThickFrame, topLevel: true, managed: true, want: false},
		{name: "top-level full caption", style: logical.StyleCaption, topLevel: true, managed: true, want: true},
		{name: "top-level thick frame", style: logical.StylePopup | logical.StyleThickFrame, topLevel: true, managed: true, want: true},
		{name: "top-level tool window", style: logical.StyleOverlappedWindow, exStyle: logical.ExStyleToolWindow, topLevel: true, managed: true, want: false},
		{name: "border only", style: logical.StylePopup | logical.StyleBorder, topLevel: true, managed: true, want: false},
		{name: "dialog frame only", style: logical.StyleDlgFrame, topLevel: true, managed: true, want: false},
		{name: "tray child", style: logical.StyleChild, exStyle: logical.ExStyleTrayWindow, topLevel: true, managed: true, want: true},
		{name: "tray tool window", style: logical.StylePopup, exStyle: logical.ExStyleTrayWindow | logical.ExStyleToolWindow, topLevel: true, managed: true, want: true},
		{name: "not top-level", style: logical.StyleOverlappedWindow, topLevel: false, managed: true, want: false},
		{name: "management disabled", style: logical.StyleOverlappedWindow, topLevel: true, managed: false, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := logical.Window{Style: tt.style, ExStyle: tt.exStyle}
			got := Classify(w, tt.topLevel, tt.managed, "left_ptr")
			if got.Managed != tt.want {
				t.Fatalf("expected managed=%v, got %v", tt.want, got.Managed)
			}
			if got.Attrs.OverrideRedirect == got.Managed {
				t.Fatalf("override-redirect must be the inverse of managed")
			}
		})
	}
}

func TestClassify_Attributes(t *testing.T) {
	w := logical.Window{Style: logical.StylePopup, ClassStyle: logical.ClassSaveBits}

	top := Classify(w, true, true, "watch")
	if !top.Attrs.SaveUnder {
		t.Fatalf("expected save-under from class style")
	}
	if top.Attrs.EventMask&xproto.EventMaskStructureNotify == 0 || top.Attrs.EventMask&xproto.EventMaskFocusChange == 0 {
		t.Fatalf("expected structure and focus events on top-level, got %#x", top.Attrs.EventMask)
	}
	if top.Attrs.Cursor != "watch" {
		t.Fatalf("expected cursor on top-level, got %q", top.Attrs.Cursor)
	}

	child := Classify(logical.Window{Style: logical.StyleChild}, false, true, "watch")
	if child.Attrs.SaveUnder {
		t.Fatalf("expected no save-under without class bit")
	}
	if child.Attrs.EventMask != baseEventMask {
		t.Fatalf("expected base event mask for child, got %#x", child.Attrs.EventMask)
	}
	if child.Attrs.Cursor != "" {
		t.Fatalf("expected no cursor for child, got %q", child.Attrs.Cursor)
	}
}

func TestDecorationHints(t *testing.T) {
	tests := []struct {
		name     string
		style    uint32
		exStyle  uint32
		wantFunc uint
		wantDeco uint
	}{
		{
			name:     "overlapped window",
			style:    logical.StyleOverlappedWindow,
			wantFunc: motif.FunctionMove | motif.FunctionResize | motif.FunctionMinimize | motif.FunctionMaximize | motif.FunctionClose,
			wantDeco: motif.DecorationTitle | motif.DecorationBorder | motif.DecorationResizeH | motif.DecorationMenu | motif.DecorationMinimize | motif.DecorationMaximize,
		},
		{
			name:     "modal frame beats thick frame",
			style:    logical.StyleCaption | logical.StyleThickFrame,
			exStyle:  logical.ExStyleDlgModalFrame,
			wantFunc: motif.FunctionMove | motif.FunctionResize,
			wantDeco: motif.DecorationTitle | motif.DecorationBorder,
		},
		{
			name:     "dialog frame without border",
			style:    logical.StylePopup | logical.StyleDlgFrame,
			wantDeco: motif.DecorationBorder,
		},
		{
			name:     "plain border",
			style:    logical.StylePopup | logical.StyleBorder | logical.StyleSysMenu,
			wantFunc: motif.FunctionClose,
			wantDeco: motif.DecorationBorder | motif.DecorationMenu,
		},
		{
			name:     "bare overlapped defaults to border",
			style:    logical.StyleOverlapped,
			wantDeco: motif.DecorationBorder,
		},
		{
			name:  "bare popup has nothing",
			style: logical.StylePopup,
		},
		{
			name:  "bare child has nothing",
			style: logical.StyleChild,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := DecorationHints(tt.style, tt.exStyle)
			if h.Flags != motif.HintFunctions|motif.HintDecorations {
				t.Fatalf("unexpected flags %#x", h.Flags)
			}
			if h.Function != tt.wantFunc {
				t.Fatalf("expected functions %#x, got %#x", tt.wantFunc, h.Function)
			}
			if h.Decoration != tt.wantDeco {
				t.Fatalf("expected decorations %#x, got %#x", tt.wantDeco, h.Decoration)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Add(0x10, 1)
	r.Add(0x11, 1)
	r.Add(0, 2)

	if r.Len() != 2 {
		t.Fatalf("expected zero peer to be ignored, got %d entries", r.Len())
	}
	if id, ok := r.Lookup(0x11); !ok || id != 1 {
		t.Fatalf("expected 0x11 -> 1, got %d %v", id, ok)
	}
	r.Remove(0x11)
	if _, ok := r.Lookup(0x11); ok {
		t.Fatalf("expected 0x11 to be removed")
	}
}
