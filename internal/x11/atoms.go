package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Intern returns the atom for name, creating it if necessary.
func (c *Connection) Intern(name string) (xproto.Atom, error) {
	return xprop.Atm(c.XUtil, name)
}

// Lookup returns the atom for name only if the server already knows it.
// A missing atom is reported as zero with no error. Lookups bypass the
// xprop cache so a miss is never remembered.
func (c *Connection) Lookup(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}
