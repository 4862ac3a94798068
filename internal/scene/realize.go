package scene

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/peer"
)

// Peers is the part of the peer manager a scene drives.
type Peers interface {
	Materialize(id logical.ID, params peer.CreateParams) error
	SyncWholeGeometry(id logical.ID, wantZOrder bool) (uint16, error)
	SyncClientGeometry(id logical.ID) (uint16, error)
	SetText(id logical.ID, text string) error
	SetIcon(id logical.ID, icon *logical.Icon, small bool) (*logical.Icon, error)
	SetVisible(id logical.ID, visible bool) error
	DestroyPeer(id logical.ID) error
}

// Realize materializes the desktop and then every window in scene order.
// Each window is created at its frame rectangle, given its content
// rectangle, titled, iconed and finally shown when it carries the visible
// style.
func (s *Scene) Realize(p Peers, metrics logical.FrameMetrics) error {
	desktop, err := s.Tree.Get(s.Desktop)
	if err != nil {
		return err
	}
	if err := p.Materialize(s.Desktop, createParams(desktop.Window)); err != nil {
		return fmt.Errorf("materialize desktop: %w", err)
	}

	for _, e := range s.Entries {
		if err := s.realizeEntry(p, metrics, e); err != nil {
			return fmt.Errorf("window %s: %w", e.label(), err)
		}
	}
	return nil
}

func (s *Scene) realizeEntry(p Peers, metrics logical.FrameMetrics, e Entry) error {
	if err := p.Materialize(e.ID, createParams(e.Rect)); err != nil {
		return err
	}
	w, err := s.Tree.Get(e.ID)
	if err != nil {
		return err
	}
	if err := s.Tree.SetRects(e.ID, e.Rect, metrics.ClientRect(e.Rect, w.Style, w.ExStyle)); err != nil {
		return err
	}
	if _, err := p.SyncWholeGeometry(e.ID, true); err != nil {
		return err
	}
	if _, err := p.SyncClientGeometry(e.ID); err != nil {
		return err
	}
	if e.Title != "" {
		if err := p.SetText(e.ID, e.Title); err != nil {
			return err
		}
	}
	if e.Icon != nil {
		if _, err := p.SetIcon(e.ID, e.Icon, false); err != nil {
			return err
		}
	}
	if w.IsVisible() {
		return p.SetVisible(e.ID, true)
	}
	return nil
}

// Teardown destroys the peers of every window, children first, and the
// desktop last.
func (s *Scene) Teardown(p Peers) error {
	var result *multierror.Error
	for i := len(s.Entries) - 1; i >= 0; i-- {
		if err := p.DestroyPeer(s.Entries[i].ID); err != nil {
			result = multierror.Append(result, fmt.Errorf("window %s: %w", s.Entries[i].label(), err))
		}
	}
	if err := p.DestroyPeer(s.Desktop); err != nil {
		result = multierror.Append(result, fmt.Errorf("desktop: %w", err))
	}
	return result.ErrorOrNil()
}

func (e Entry) label() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("%#x", uint32(e.ID))
}

func createParams(r logical.Rect) peer.CreateParams {
	return peer.CreateParams{X: r.Left, Y: r.Top, Width: r.Width(), Height: r.Height()}
}
