package x11

import (
	"github.com/BurntSushi/xgb/xproto"
)

// IconicState is the ICCCM WM_STATE value for a minimized window.
const IconicState = 3

// IsViewable reports whether the window and all of its ancestors are mapped
func (c *Connection) IsViewable(windowID xproto.Window) (bool, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false, err
	}
	return attrs.MapState == xproto.MapStateViewable, nil
}

// SendChangeState asks the window manager to move a window into state
// via WM_CHANGE_STATE
func (c *Connection) SendChangeState(windowID xproto.Window, changeState xproto.Atom, state uint32) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   changeState,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{state, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// SendConfigureRequest forwards a configure request to the window manager
// through the root window, the way a reparented client restacks itself when
// its sibling is no longer a real sibling.
func (c *Connection) SendConfigureRequest(windowID xproto.Window, mask uint16, x, y int16, width, height uint16, sibling xproto.Window, stackMode byte) error {
	ev := xproto.ConfigureRequestEvent{
		StackMode: stackMode,
		Parent:    c.Root,
		Window:    windowID,
		Sibling:   sibling,
		X:         x,
		Y:         y,
		Width:     width,
		Height:    height,
		ValueMask: mask,
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
