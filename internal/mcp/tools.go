package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/peer"
	"github.com/1broseidon/peerwin/internal/scene"
)

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	peers := make(map[logical.ID]peer.PeerInfo)
	for _, p := range s.peers.Peers() {
		peers[p.Window] = p
	}

	tree := s.scene.Tree
	var out ListWindowsOutput
	for _, id := range tree.IDs() {
		w, err := tree.Get(id)
		if err != nil {
			continue
		}
		info := WindowInfo{
			ID:        formatID(id),
			Name:      s.windowName(id),
			Parent:    formatID(w.Parent),
			Owner:     formatID(w.Owner),
			Style:     logical.FormatStyle(w.Style),
			ExStyle:   logical.FormatExStyle(w.ExStyle &^ logical.ExStyleManaged),
			Rect:      w.Window.String(),
			Client:    w.Client.String(),
			Managed:   w.ExStyle&logical.ExStyleManaged != 0,
			Visible:   w.IsVisible(),
			Minimized: w.IsMinimized(),
			Desktop:   id == s.scene.Desktop,
		}
		if p, ok := peers[id]; ok {
			info.WholePeer = formatID(p.Whole)
			info.ClientPeer = formatID(p.Client)
			info.IconPeer = formatID(p.Icon)
		}
		out.Windows = append(out.Windows, info)
	}
	return nil, out, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, MoveWindowOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolveWindow(args.Window)
	if err != nil {
		return nil, MoveWindowOutput{}, err
	}
	rect, err := logical.ParseRect(args.Rect)
	if err != nil {
		return nil, MoveWindowOutput{}, err
	}
	client, err := s.applyRects(id, rect)
	if err != nil {
		return nil, MoveWindowOutput{}, err
	}

	wholeMask, clientMask, err := s.syncGeometry(id, args.Raise)
	if err != nil {
		return nil, MoveWindowOutput{}, err
	}
	s.logger.Debug("moved window", "window", id, "rect", rect, "whole_mask", wholeMask, "client_mask", clientMask)
	return nil, MoveWindowOutput{WholeMask: wholeMask, ClientMask: clientMask, Client: client.String()}, nil
}

// applyRects stores rect as the frame of id and derives its content area.
func (s *Server) applyRects(id logical.ID, rect logical.Rect) (logical.Rect, error) {
	style, ex, err := s.scene.Tree.Styles(id)
	if err != nil {
		return logical.Rect{}, err
	}
	client := s.opts.Metrics.ClientRect(rect, style, ex)
	return client, s.scene.Tree.SetRects(id, rect, client)
}

func (s *Server) syncGeometry(id logical.ID, zOrder bool) (uint16, uint16, error) {
	if err := s.requirePeer(id); err != nil {
		return 0, 0, err
	}
	wholeMask, err := s.peers.SyncWholeGeometry(id, zOrder)
	if err != nil {
		return 0, 0, err
	}
	clientMask, err := s.peers.SyncClientGeometry(id)
	return wholeMask, clientMask, err
}

// requirePeer guards the synchronizer, which treats a missing peer as a
// programming error.
func (s *Server) requirePeer(id logical.ID) error {
	for _, p := range s.peers.Peers() {
		if p.Window == id {
			return nil
		}
	}
	return fmt.Errorf("window %#x: %w", uint32(id), peer.ErrNotMaterialized)
}

func (s *Server) handleSetStyle(_ context.Context, _ *mcpsdk.CallToolRequest, args SetStyleInput) (*mcpsdk.CallToolResult, SetStyleOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolveWindow(args.Window)
	if err != nil {
		return nil, SetStyleOutput{}, err
	}
	if err := s.requirePeer(id); err != nil {
		return nil, SetStyleOutput{}, err
	}
	style, err := logical.ParseStyle(args.Style)
	if err != nil {
		return nil, SetStyleOutput{}, fmt.Errorf("style: %w", err)
	}
	tree := s.scene.Tree
	if args.ExStyle != nil {
		ex, err := logical.ParseExStyle(*args.ExStyle)
		if err != nil {
			return nil, SetStyleOutput{}, fmt.Errorf("ex_style: %w", err)
		}
		_, cur, err := tree.Styles(id)
		if err != nil {
			return nil, SetStyleOutput{}, err
		}
		// The managed bit belongs to the policy, not the caller.
		ex = ex&^logical.ExStyleManaged | cur&logical.ExStyleManaged
		if _, err := tree.SetExStyle(id, ex); err != nil {
			return nil, SetStyleOutput{}, err
		}
	}
	old, err := tree.SetStyle(id, style)
	if err != nil {
		return nil, SetStyleOutput{}, err
	}

	if err := s.peers.SyncStyle(id); err != nil {
		return nil, SetStyleOutput{}, err
	}
	w, err := tree.Get(id)
	if err != nil {
		return nil, SetStyleOutput{}, err
	}
	if _, err := s.applyRects(id, w.Window); err != nil {
		return nil, SetStyleOutput{}, err
	}
	if _, _, err := s.syncGeometry(id, false); err != nil {
		return nil, SetStyleOutput{}, err
	}
	if w.IsVisible() != (old&logical.StyleVisible != 0) {
		if err := s.peers.SetVisible(id, w.IsVisible()); err != nil {
			return nil, SetStyleOutput{}, err
		}
	}
	return nil, SetStyleOutput{
		Previous: logical.FormatStyle(old),
		Managed:  w.ExStyle&logical.ExStyleManaged != 0,
	}, nil
}

func (s *Server) handleSetTitle(_ context.Context, _ *mcpsdk.CallToolRequest, args SetTitleInput) (*mcpsdk.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolveWindow(args.Window)
	if err != nil {
		return nil, nil, err
	}
	if err := s.peers.SetText(id, args.Title); err != nil {
		return nil, nil, err
	}
	return textResult("Title of %#x set to %q", uint32(id), args.Title), nil, nil
}

func (s *Server) handleSetIcon(_ context.Context, _ *mcpsdk.CallToolRequest, args SetIconInput) (*mcpsdk.CallToolResult, SetIconOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolveWindow(args.Window)
	if err != nil {
		return nil, SetIconOutput{}, err
	}
	var icon *logical.Icon
	if args.Path != "" {
		icon, err = scene.LoadIcon(args.Path)
		if err != nil {
			return nil, SetIconOutput{}, err
		}
	}
	old, err := s.peers.SetIcon(id, icon, args.Small)
	if err != nil {
		return nil, SetIconOutput{}, err
	}
	return nil, SetIconOutput{HadPrevious: old != nil}, nil
}

func (s *Server) handleSetIconic(_ context.Context, _ *mcpsdk.CallToolRequest, args SetIconicInput) (*mcpsdk.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolveWindow(args.Window)
	if err != nil {
		return nil, nil, err
	}
	if err := s.requirePeer(id); err != nil {
		return nil, nil, err
	}
	style, _, err := s.scene.Tree.Styles(id)
	if err != nil {
		return nil, nil, err
	}
	next := style &^ logical.StyleMinimize
	if args.Iconic {
		next |= logical.StyleMinimize
	}
	if next == style {
		return textResult("Window %#x unchanged", uint32(id)), nil, nil
	}
	if _, err := s.scene.Tree.SetStyle(id, next); err != nil {
		return nil, nil, err
	}
	if err := s.peers.SetIconicState(id); err != nil {
		return nil, nil, err
	}
	state := "restored"
	if args.Iconic {
		state = "minimized"
	}
	return textResult("Window %#x %s", uint32(id), state), nil, nil
}

func (s *Server) handleReparentWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ReparentWindowInput) (*mcpsdk.CallToolResult, ReparentWindowOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolveWindow(args.Window)
	if err != nil {
		return nil, ReparentWindowOutput{}, err
	}
	parent := s.scene.Desktop
	if args.Parent != "" {
		if parent, err = s.resolveWindow(args.Parent); err != nil {
			return nil, ReparentWindowOutput{}, err
		}
	}
	old, err := s.peers.Reparent(id, parent)
	if err != nil {
		return nil, ReparentWindowOutput{}, err
	}
	return nil, ReparentWindowOutput{Previous: formatID(old)}, nil
}

func (s *Server) handleDestroyWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args DestroyWindowInput) (*mcpsdk.CallToolResult, DestroyWindowOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolveWindow(args.Window)
	if err != nil {
		return nil, DestroyWindowOutput{}, err
	}
	if id == s.scene.Desktop {
		return nil, DestroyWindowOutput{}, fmt.Errorf("the desktop cannot be destroyed")
	}

	var out DestroyWindowOutput
	if err := s.destroy(id, &out); err != nil {
		return nil, out, err
	}
	return nil, out, nil
}

// destroy removes the subtree under id, deepest windows first.
func (s *Server) destroy(id logical.ID, out *DestroyWindowOutput) error {
	for _, child := range s.scene.Tree.Children(id) {
		if err := s.destroy(child, out); err != nil {
			return err
		}
	}
	if err := s.peers.DestroyPeer(id); err != nil {
		return err
	}
	if err := s.scene.Tree.Remove(id); err != nil {
		return err
	}
	out.Destroyed = append(out.Destroyed, formatID(id))
	return nil
}

func (s *Server) handleClassifyStyle(_ context.Context, _ *mcpsdk.CallToolRequest, args ClassifyStyleInput) (*mcpsdk.CallToolResult, peer.StyleReport, error) {
	style, err := logical.ParseStyle(args.Style)
	if err != nil {
		return nil, peer.StyleReport{}, fmt.Errorf("style: %w", err)
	}
	ex, err := logical.ParseExStyle(args.ExStyle)
	if err != nil {
		return nil, peer.StyleReport{}, fmt.Errorf("ex_style: %w", err)
	}
	class, err := logical.ParseClassStyle(args.ClassStyle)
	if err != nil {
		return nil, peer.StyleReport{}, fmt.Errorf("class_style: %w", err)
	}
	topLevel := true
	if args.TopLevel != nil {
		topLevel = *args.TopLevel
	}
	return nil, peer.DescribeStyle(style, ex, class, topLevel, s.opts.Managed), nil
}
