package peer

import (
	"fmt"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
)

// computeChanges diffs two peer rectangles. Sizes that would be zero or
// negative are pushed as 1.
func computeChanges(old, next logical.Rect) platform.Changes {
	var ch platform.Changes
	if old.Width() != next.Width() {
		ch.Width = max(next.Width(), 1)
		ch.Mask |= xproto.ConfigWindowWidth
	}
	if old.Height() != next.Height() {
		ch.Height = max(next.Height(), 1)
		ch.Mask |= xproto.ConfigWindowHeight
	}
	if old.Left != next.Left {
		ch.X = next.Left
		ch.Mask |= xproto.ConfigWindowX
	}
	if old.Top != next.Top {
		ch.Y = next.Top
		ch.Mask |= xproto.ConfigWindowY
	}
	return ch
}

// mappedEligible reports whether a client peer with the given last-pushed
// rectangle should be mapped.
func mappedEligible(w logical.Window, client logical.Rect) bool {
	return !w.IsMinimized() && !client.IsEmpty()
}

// stackingFor places id directly below its nearest visible predecessor,
// or on top when there is none.
func (m *Manager) stackingFor(id logical.ID, ch *platform.Changes) {
	prev := m.tree.PrevSibling(id)
	for prev != 0 && !m.tree.IsVisible(prev) {
		prev = m.tree.PrevSibling(prev)
	}
	ch.Mask |= xproto.ConfigWindowStackMode
	if prev == 0 {
		ch.StackMode = xproto.StackModeAbove
		return
	}
	sibling := m.wholePeer(prev)
	if sibling == 0 {
		ch.StackMode = xproto.StackModeAbove
		return
	}
	ch.StackMode = xproto.StackModeBelow
	ch.Sibling = sibling
	ch.Mask |= xproto.ConfigWindowSibling
}

// SyncWholeGeometry pushes the logical frame rectangle of id to its whole
// peer, restacking it when wantZOrder is set. It returns the applied
// xproto.ConfigWindow* mask.
func (m *Manager) SyncWholeGeometry(id logical.ID, wantZOrder bool) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncWhole(id, wantZOrder)
}

func (m *Manager) syncWhole(id logical.ID, wantZOrder bool) (uint16, error) {
	st := m.mustState(id)
	w, err := m.tree.Get(id)
	if err != nil {
		return 0, err
	}

	rect := WindowToPeer(m.metrics, w, w.Window)
	ch := computeChanges(st.lastWhole, rect)
	if wantZOrder && !st.desktop {
		m.stackingFor(id, &ch)
	}
	st.lastWhole = rect

	if ch.Mask == 0 || st.desktop {
		return 0, nil
	}
	if err := m.native.Sync(); err != nil {
		return 0, fmt.Errorf("sync before configure: %w", err)
	}

	if m.isTopLevel(w) {
		if ch.SizeChanged() {
			m.setSizeHints(st, w)
		}
		if err := m.native.ReconfigureManaged(st.whole, ch); err != nil {
			m.logger.Warn("reconfigure refused", "window", id, "mask", ch.Mask, "error", err)
		}
	} else if err := m.native.ConfigureWindow(st.whole, ch); err != nil {
		return 0, fmt.Errorf("configure whole window %#x: %w", st.whole, err)
	}
	m.observe(OpConfigure, id, st.whole, KindWhole, rect.String())
	return ch.Mask, nil
}

// SyncClientGeometry pushes the logical content rectangle of id, relative
// to its whole peer, to the client peer. The client is unmapped before it
// collapses and mapped after it regains an area.
func (m *Manager) SyncClientGeometry(id logical.ID) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncClient(id)
}

func (m *Manager) syncClient(id logical.ID) (uint16, error) {
	st := m.mustState(id)
	if st.desktop {
		return 0, nil
	}
	w, err := m.tree.Get(id)
	if err != nil {
		return 0, err
	}

	rect := w.Client.Offset(-st.lastWhole.Left, -st.lastWhole.Top)
	ch := computeChanges(st.lastClient, rect)
	if ch.Mask == 0 {
		return 0, nil
	}

	wasMapped := mappedEligible(w, st.lastClient)
	st.lastClient = rect
	nowMapped := mappedEligible(w, rect)

	if err := m.native.Sync(); err != nil {
		return 0, fmt.Errorf("sync before configure: %w", err)
	}
	if wasMapped && !nowMapped {
		if err := m.native.UnmapWindow(st.client); err != nil {
			return 0, fmt.Errorf("unmap client window %#x: %w", st.client, err)
		}
		m.observe(OpUnmap, id, st.client, KindClient, "")
	}
	if err := m.native.ConfigureWindow(st.client, ch); err != nil {
		return 0, fmt.Errorf("configure client window %#x: %w", st.client, err)
	}
	m.observe(OpConfigure, id, st.client, KindClient, rect.String())
	if !wasMapped && nowMapped {
		if err := m.native.MapWindow(st.client); err != nil {
			return 0, fmt.Errorf("map client window %#x: %w", st.client, err)
		}
		m.observe(OpMap, id, st.client, KindClient, "")
	}
	return ch.Mask, nil
}
