package peer

import (
	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
)

const (
	baseEventMask = xproto.EventMaskExposure | xproto.EventMaskKeyPress | xproto.EventMaskKeyRelease |
		xproto.EventMaskPointerMotion | xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease
	topLevelEventMask = xproto.EventMaskStructureNotify | xproto.EventMaskFocusChange | xproto.EventMaskKeymapState
)

// Classification is the outcome of the decoration policy for one window.
type Classification struct {
	TopLevel bool
	Managed  bool
	Attrs    platform.Attributes
}

// IsManaged applies the management rules to a top-level window's styles.
// Tray windows are always managed; child and tool windows never are;
// otherwise a full caption or a thick frame makes a window managed.
func IsManaged(managedMode bool, style, exStyle uint32) bool {
	switch {
	case !managedMode:
		return false
	case exStyle&logical.ExStyleTrayWindow != 0:
		return true
	case style&logical.StyleChild != 0:
		return false
	case exStyle&logical.ExStyleToolWindow != 0:
		return false
	case style&logical.StyleCaption == logical.StyleCaption:
		return true
	case style&logical.StyleThickFrame != 0:
		return true
	}
	return false
}

// Classify derives management and the native attribute set. cursor is the
// current global cursor resource; only top-level peers carry it.
func Classify(w logical.Window, topLevel, managedMode bool, cursor string) Classification {
	managed := topLevel && IsManaged(managedMode, w.Style, w.ExStyle)
	attrs := platform.Attributes{
		Mask:             xproto.CwOverrideRedirect | xproto.CwSaveUnder | xproto.CwEventMask | xproto.CwCursor,
		OverrideRedirect: !managed,
		SaveUnder:        w.ClassStyle&logical.ClassSaveBits != 0,
		EventMask:        baseEventMask,
	}
	if topLevel {
		attrs.EventMask |= topLevelEventMask
		attrs.Cursor = cursor
	}
	return Classification{TopLevel: topLevel, Managed: managed, Attrs: attrs}
}

// withManaged returns exStyle with the managed bit set to managed.
func withManaged(exStyle uint32, managed bool) uint32 {
	if managed {
		return exStyle | logical.ExStyleManaged
	}
	return exStyle &^ logical.ExStyleManaged
}
