package peer

import (
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"

	"github.com/1broseidon/peerwin/internal/logical"
)

// StyleReport is what the decoration policy derives from a set of styles,
// in a form that can be printed or serialized.
type StyleReport struct {
	TopLevel         bool     `json:"top_level" yaml:"top_level"`
	Managed          bool     `json:"managed" yaml:"managed"`
	OverrideRedirect bool     `json:"override_redirect" yaml:"override_redirect"`
	SaveUnder        bool     `json:"save_under" yaml:"save_under"`
	EventMask        uint32   `json:"event_mask" yaml:"event_mask"`
	Functions        []string `json:"functions" yaml:"functions"`
	Decorations      []string `json:"decorations" yaml:"decorations"`
}

// DescribeStyle classifies a window with the given styles.
func DescribeStyle(style, exStyle, classStyle uint32, topLevel, managedMode bool) StyleReport {
	w := logical.Window{Style: style, ExStyle: exStyle, ClassStyle: classStyle}
	cls := Classify(w, topLevel, managedMode, "")
	decor := DecorationHints(style, exStyle)
	return StyleReport{
		TopLevel:         cls.TopLevel,
		Managed:          cls.Managed,
		OverrideRedirect: cls.Attrs.OverrideRedirect,
		SaveUnder:        cls.Attrs.SaveUnder,
		EventMask:        cls.Attrs.EventMask,
		Functions:        FunctionNames(decor.Function),
		Decorations:      DecorationNames(decor.Decoration),
	}
}

// HintsReport is the size-hint and Motif payload a top-level peer would
// receive for a frame rectangle.
type HintsReport struct {
	Managed     bool     `json:"managed" yaml:"managed"`
	PeerRect    string   `json:"peer_rect" yaml:"peer_rect"`
	SizeFlags   []string `json:"size_flags" yaml:"size_flags"`
	X           int      `json:"x" yaml:"x"`
	Y           int      `json:"y" yaml:"y"`
	MinWidth    uint     `json:"min_width,omitempty" yaml:"min_width,omitempty"`
	MinHeight   uint     `json:"min_height,omitempty" yaml:"min_height,omitempty"`
	MaxWidth    uint     `json:"max_width,omitempty" yaml:"max_width,omitempty"`
	MaxHeight   uint     `json:"max_height,omitempty" yaml:"max_height,omitempty"`
	WinGravity  uint     `json:"win_gravity" yaml:"win_gravity"`
	Functions   []string `json:"functions" yaml:"functions"`
	Decorations []string `json:"decorations" yaml:"decorations"`
}

// DescribeHints builds the hints of a top-level window with frame rect.
func DescribeHints(m Metrics, style, exStyle uint32, rect logical.Rect, managedMode bool) HintsReport {
	managed := IsManaged(managedMode, style, exStyle)
	w := logical.Window{Style: style, ExStyle: withManaged(exStyle, managed), Window: rect}
	peerRect := WindowToPeer(m, w, rect)
	size := BuildSizeHints(w, peerRect)
	decor := DecorationHints(style, exStyle)
	return HintsReport{
		Managed:     managed,
		PeerRect:    peerRect.String(),
		SizeFlags:   SizeHintNames(size.Flags),
		X:           size.X,
		Y:           size.Y,
		MinWidth:    size.MinWidth,
		MinHeight:   size.MinHeight,
		MaxWidth:    size.MaxWidth,
		MaxHeight:   size.MaxHeight,
		WinGravity:  size.WinGravity,
		Functions:   FunctionNames(decor.Function),
		Decorations: DecorationNames(decor.Decoration),
	}
}

type flagName struct {
	bit  uint
	name string
}

var functionNames = []flagName{
	{motif.FunctionResize, "resize"},
	{motif.FunctionMove, "move"},
	{motif.FunctionMinimize, "minimize"},
	{motif.FunctionMaximize, "maximize"},
	{motif.FunctionClose, "close"},
}

var decorationNames = []flagName{
	{motif.DecorationBorder, "border"},
	{motif.DecorationResizeH, "resizeh"},
	{motif.DecorationTitle, "title"},
	{motif.DecorationMenu, "menu"},
	{motif.DecorationMinimize, "minimize"},
	{motif.DecorationMaximize, "maximize"},
}

var sizeHintNames = []flagName{
	{icccm.SizeHintUSPosition, "USPosition"},
	{icccm.SizeHintUSSize, "USSize"},
	{icccm.SizeHintPPosition, "PPosition"},
	{icccm.SizeHintPSize, "PSize"},
	{icccm.SizeHintPMinSize, "PMinSize"},
	{icccm.SizeHintPMaxSize, "PMaxSize"},
	{icccm.SizeHintPResizeInc, "PResizeInc"},
	{icccm.SizeHintPAspect, "PAspect"},
	{icccm.SizeHintPBaseSize, "PBaseSize"},
	{icccm.SizeHintPWinGravity, "PWinGravity"},
}

// FunctionNames lists the Motif functions set in bits.
func FunctionNames(bits uint) []string { return flagNames(bits, functionNames) }

// DecorationNames lists the Motif decorations set in bits.
func DecorationNames(bits uint) []string { return flagNames(bits, decorationNames) }

// SizeHintNames lists the WM_NORMAL_HINTS flags set in bits.
func SizeHintNames(bits uint) []string { return flagNames(bits, sizeHintNames) }

func flagNames(bits uint, names []flagName) []string {
	out := []string{}
	for _, n := range names {
		if bits&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return out
}
