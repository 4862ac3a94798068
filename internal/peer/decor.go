package peer

import (
	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/BurntSushi/xgbutil/motif"
)

type decorRule struct {
	name  string
	match func(style, exStyle uint32) bool
	bits  uint
}

func hasStyle(bits uint32) func(style, exStyle uint32) bool {
	return func(style, _ uint32) bool { return style&bits == bits }
}

func hasExStyle(bits uint32) func(style, exStyle uint32) bool {
	return func(_, exStyle uint32) bool { return exStyle&bits == bits }
}

// functionRules are all evaluated; every match contributes its bits.
var functionRules = []decorRule{
	{"caption", hasStyle(logical.StyleCaption), motif.FunctionMove},
	{"thick frame", hasStyle(logical.StyleThickFrame), motif.FunctionMove | motif.FunctionResize},
	{"minimize box", hasStyle(logical.StyleMinimizeBox), motif.FunctionMinimize},
	{"maximize box", hasStyle(logical.StyleMaximizeBox), motif.FunctionMaximize},
	{"system menu", hasStyle(logical.StyleSysMenu), motif.FunctionClose},
}

// decorationRules are all evaluated, after the border rule.
var decorationRules = []decorRule{
	{"caption", hasStyle(logical.StyleCaption), motif.DecorationTitle},
	{"system menu", hasStyle(logical.StyleSysMenu), motif.DecorationMenu},
	{"minimize box", hasStyle(logical.StyleMinimizeBox), motif.DecorationMinimize},
	{"maximize box", hasStyle(logical.StyleMaximizeBox), motif.DecorationMaximize},
}

// borderRules are evaluated in order; the first match wins.
var borderRules = []decorRule{
	{"modal frame", hasExStyle(logical.ExStyleDlgModalFrame), motif.DecorationBorder},
	{"thick frame", hasStyle(logical.StyleThickFrame), motif.DecorationBorder | motif.DecorationResizeH},
	{"dialog frame", func(style, _ uint32) bool {
		return style&(logical.StyleDlgFrame|logical.StyleBorder) == logical.StyleDlgFrame
	}, motif.DecorationBorder},
	{"border", hasStyle(logical.StyleBorder), motif.DecorationBorder},
	{"top-level default", func(style, _ uint32) bool {
		return style&(logical.StyleChild|logical.StylePopup) == 0
	}, motif.DecorationBorder},
}

// DecorationHints maps style bits to the Motif function and decoration masks.
func DecorationHints(style, exStyle uint32) *motif.Hints {
	h := &motif.Hints{Flags: motif.HintFunctions | motif.HintDecorations}
	for _, r := range functionRules {
		if r.match(style, exStyle) {
			h.Function |= r.bits
		}
	}
	for _, r := range borderRules {
		if r.match(style, exStyle) {
			h.Decoration |= r.bits
			break
		}
	}
	for _, r := range decorationRules {
		if r.match(style, exStyle) {
			h.Decoration |= r.bits
		}
	}
	return h
}
