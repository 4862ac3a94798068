package logical

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Window style bits.
const (
	StyleOverlapped   uint32 = 0x00000000
	StylePopup        uint32 = 0x80000000
	StyleChild        uint32 = 0x40000000
	StyleMinimize     uint32 = 0x20000000
	StyleVisible      uint32 = 0x10000000
	StyleDisabled     uint32 = 0x08000000
	StyleClipSiblings uint32 = 0x04000000
	StyleClipChildren uint32 = 0x02000000
	StyleMaximize     uint32 = 0x01000000
	StyleCaption      uint32 = 0x00C00000 // StyleBorder | StyleDlgFrame
	StyleBorder       uint32 = 0x00800000
	StyleDlgFrame     uint32 = 0x00400000
	StyleVScroll      uint32 = 0x00200000
	StyleHScroll      uint32 = 0x00100000
	StyleSysMenu      uint32 = 0x00080000
	StyleThickFrame   uint32 = 0x00040000
	StyleMinimizeBox  uint32 = 0x00020000
	StyleMaximizeBox  uint32 = 0x00010000

	StyleOverlappedWindow = StyleOverlapped | StyleCaption | StyleSysMenu |
		StyleThickFrame | StyleMinimizeBox | StyleMaximizeBox
	StylePopupWindow = StylePopup | StyleBorder | StyleSysMenu
)

// Extended style bits.
const (
	ExStyleDlgModalFrame uint32 = 0x00000001
	ExStyleTopmost       uint32 = 0x00000008
	ExStyleToolWindow    uint32 = 0x00000080
	ExStyleWindowEdge    uint32 = 0x00000100
	ExStyleClientEdge    uint32 = 0x00000200
	ExStyleStaticEdge    uint32 = 0x00020000
	// ExStyleManaged is derived by the peer core and written back; callers
	// never set it themselves.
	ExStyleManaged uint32 = 0x40000000
	// ExStyleTrayWindow marks windows that are always handed to the window
	// manager, whatever their other bits say.
	ExStyleTrayWindow uint32 = 0x80000000
)

// Class style bits.
const (
	ClassVRedraw  uint32 = 0x0001
	ClassHRedraw  uint32 = 0x0002
	ClassSaveBits uint32 = 0x0800
)

var styleNames = map[string]uint32{
	"WS_OVERLAPPED":       StyleOverlapped,
	"WS_POPUP":            StylePopup,
	"WS_CHILD":            StyleChild,
	"WS_MINIMIZE":         StyleMinimize,
	"WS_VISIBLE":          StyleVisible,
	"WS_DISABLED":         StyleDisabled,
	"WS_CLIPSIBLINGS":     StyleClipSiblings,
	"WS_CLIPCHILDREN":     StyleClipChildren,
	"WS_MAXIMIZE":         StyleMaximize,
	"WS_CAPTION":          StyleCaption,
	"WS_BORDER":           StyleBorder,
	"WS_DLGFRAME":         StyleDlgFrame,
	"WS_VSCROLL":          StyleVScroll,
	"WS_HSCROLL":          StyleHScroll,
	"WS_SYSMENU":          StyleSysMenu,
	"WS_THICKFRAME":       StyleThickFrame,
	"WS_MINIMIZEBOX":      StyleMinimizeBox,
	"WS_MAXIMIZEBOX":      StyleMaximizeBox,
	"WS_OVERLAPPEDWINDOW": StyleOverlappedWindow,
	"WS_POPUPWINDOW":      StylePopupWindow,
}

var exStyleNames = map[string]uint32{
	"WS_EX_DLGMODALFRAME": ExStyleDlgModalFrame,
	"WS_EX_TOPMOST":       ExStyleTopmost,
	"WS_EX_TOOLWINDOW":    ExStyleToolWindow,
	"WS_EX_WINDOWEDGE":    ExStyleWindowEdge,
	"WS_EX_CLIENTEDGE":    ExStyleClientEdge,
	"WS_EX_STATICEDGE":    ExStyleStaticEdge,
	"WS_EX_MANAGED":       ExStyleManaged,
	"WS_EX_TRAYWINDOW":    ExStyleTrayWindow,
}

var classStyleNames = map[string]uint32{
	"CS_VREDRAW":  ClassVRedraw,
	"CS_HREDRAW":  ClassHRedraw,
	"CS_SAVEBITS": ClassSaveBits,
}

// ParseStyle parses a list of WS_* names or hex literals separated by '|',
// ',' or whitespace.
func ParseStyle(s string) (uint32, error) {
	return parseFlags(s, styleNames)
}

// ParseExStyle parses a list of WS_EX_* names or hex literals.
func ParseExStyle(s string) (uint32, error) {
	return parseFlags(s, exStyleNames)
}

// ParseClassStyle parses a list of CS_* names or hex literals.
func ParseClassStyle(s string) (uint32, error) {
	return parseFlags(s, classStyleNames)
}

// FormatStyle renders style bits as WS_* names, composites excluded.
func FormatStyle(bits uint32) string {
	return formatFlags(bits, styleNames, map[string]bool{
		"WS_OVERLAPPED": true, "WS_OVERLAPPEDWINDOW": true, "WS_POPUPWINDOW": true, "WS_CAPTION": true,
	})
}

// FormatExStyle renders extended style bits as WS_EX_* names.
func FormatExStyle(bits uint32) string {
	return formatFlags(bits, exStyleNames, nil)
}

func parseFlags(s string, names map[string]uint32) (uint32, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' ' || r == '\t'
	})
	var bits uint32
	for _, f := range fields {
		name := strings.ToUpper(strings.TrimSpace(f))
		if v, ok := names[name]; ok {
			bits |= v
			continue
		}
		v, err := strconv.ParseUint(f, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("unknown flag %q", f)
		}
		bits |= uint32(v)
	}
	return bits, nil
}

func formatFlags(bits uint32, names map[string]uint32, skip map[string]bool) string {
	var out []string
	var known uint32
	for name, v := range names {
		if skip[name] || v == 0 {
			continue
		}
		if bits&v == v {
			out = append(out, name)
			known |= v
		}
	}
	sort.Strings(out)
	if rest := bits &^ known; rest != 0 {
		out = append(out, fmt.Sprintf("0x%08x", rest))
	}
	if len(out) == 0 {
		return "0"
	}
	return strings.Join(out, "|")
}
