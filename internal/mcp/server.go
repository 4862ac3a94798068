package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/peer"
	"github.com/1broseidon/peerwin/internal/scene"
)

const (
	ServerName    = "peerwin"
	ServerVersion = "0.1.0"
)

// Peers is the peer manager surface the tools drive.
type Peers interface {
	scene.Peers
	SyncStyle(id logical.ID) error
	Reparent(id, newParent logical.ID) (logical.ID, error)
	SetIconicState(id logical.ID) error
	Peers() []peer.PeerInfo
}

// Options configures a Server.
type Options struct {
	Metrics logical.FrameMetrics
	// Managed is the process-wide management switch used by classify_style.
	Managed bool
	Logger  *slog.Logger
}

// Server is the MCP server exposing a live scene.
type Server struct {
	mcpServer *mcpsdk.Server
	scene     *scene.Scene
	peers     Peers
	opts      Options
	logger    *slog.Logger

	// mu serializes tool calls; each one is a read-modify-sync sequence on
	// the tree.
	mu sync.Mutex
}

// NewServer creates a server for a realized scene.
func NewServer(sc *scene.Scene, peers Peers, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		scene:  sc,
		peers:  peers,
		opts:   opts,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every logical window of the scene, desktop first and then depth-first in z-order, with its styles, rectangles, management state and native peer ids.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move or resize a window. The frame rectangle is in the parent's client coordinates; the content rectangle is derived from the frame metrics and both peers are reconfigured.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_style",
		Description: "Replace a window's style (and optionally extended style) flags, then re-run the decoration policy so management, attributes and hints follow.",
	}, s.handleSetStyle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_title",
		Description: "Set the window text advertised as WM_NAME, WM_ICON_NAME and _NET_WM_NAME.",
	}, s.handleSetTitle)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_icon",
		Description: "Set or clear a window's class icon from a PNG or BMP file. Only the big icon changes what the window manager sees.",
	}, s.handleSetIcon)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_iconic",
		Description: "Minimize or restore a window.",
	}, s.handleSetIconic)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reparent_window",
		Description: "Move a window under a new parent. Returns the previous parent.",
	}, s.handleReparentWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "destroy_window",
		Description: "Destroy a window and its descendants, tearing down their native peers.",
	}, s.handleDestroyWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "classify_style",
		Description: "Report what the decoration policy derives from a set of styles without touching any window: management, override-redirect, save-under, event mask, Motif functions and decorations.",
	}, s.handleClassifyStyle)
}

// resolveWindow accepts a scene name or a numeric id.
func (s *Server) resolveWindow(ref string) (logical.ID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("window is required")
	}
	if id, ok := s.scene.Lookup(ref); ok {
		return id, nil
	}
	v, err := strconv.ParseUint(ref, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown window %q", ref)
	}
	id := logical.ID(v)
	if _, err := s.scene.Tree.Get(id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Server) windowName(id logical.ID) string {
	for _, e := range s.scene.Entries {
		if e.ID == id {
			return e.Name
		}
	}
	return ""
}

func formatID[T ~uint32](id T) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprintf("%#x", uint32(id))
}
