package peer

import (
	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/platform"
)

// Op names a native operation issued by the core.
type Op string

const (
	OpCreate    Op = "CREATE"
	OpDestroy   Op = "DESTROY"
	OpConfigure Op = "CONFIGURE"
	OpMap       Op = "MAP"
	OpUnmap     Op = "UNMAP"
	OpReparent  Op = "REPARENT"
	OpHints     Op = "HINTS"
	OpIcon      Op = "ICON"
	OpFocus     Op = "FOCUS"
	OpTitle     Op = "TITLE"
)

// Peer kinds carried in Event.Kind.
const (
	KindWhole  = "whole"
	KindClient = "client"
	KindIcon   = "icon"
)

// Event describes one native operation.
type Event struct {
	Op     Op
	Window logical.ID
	Peer   platform.WindowID
	Kind   string
	Detail string
}

// Observer receives every native operation after it succeeded.
type Observer interface {
	Observe(ev Event)
}

// Observers fans events out to several observers.
type Observers []Observer

// Observe implements Observer.
func (o Observers) Observe(ev Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(ev)
		}
	}
}
