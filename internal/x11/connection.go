package x11

import (
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and the process-wide display lock
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	mu sync.Mutex
}

// NewConnection connects to display, or to $DISPLAY when display is empty
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Lock acquires the display lock. Every request sequence that must not
// interleave with another goroutine's holds it.
func (c *Connection) Lock() {
	c.mu.Lock()
}

// Unlock releases the display lock.
func (c *Connection) Unlock() {
	c.mu.Unlock()
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit stops a running EventLoop
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
