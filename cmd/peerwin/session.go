package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/peerwin/internal/config"
	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/metrics"
	"github.com/1broseidon/peerwin/internal/peer"
	"github.com/1broseidon/peerwin/internal/platform"
	"github.com/1broseidon/peerwin/internal/scene"
	"github.com/1broseidon/peerwin/internal/textcp"
	"github.com/1broseidon/peerwin/internal/tracelog"
	"github.com/1broseidon/peerwin/internal/x11"
)

type sessionOptions struct {
	scenePath   string
	configPath  string
	metricsAddr string
}

func (o *sessionOptions) bind(fs *flag.FlagSet) {
	fs.StringVar(&o.scenePath, "scene", "", "Scene file describing the window tree")
	fs.StringVar(&o.configPath, "config", "", "Config file path (default: ~/.config/peerwin/config.yaml)")
	fs.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (overrides metrics_addr)")
}

// session is a connected, realized scene.
type session struct {
	cfg      *config.Config
	conn     *x11.Connection
	backend  *platform.X11Backend
	scene    *scene.Scene
	manager  *peer.Manager
	trace    *tracelog.Logger
	recorder *metrics.Recorder
	server   *http.Server
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	// stderr only: mcp serve owns stdout.
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// managerOptions maps the configuration onto the peer core.
func managerOptions(cfg *config.Config, logger *slog.Logger, observer peer.Observer) (peer.Options, error) {
	enc, err := textcp.New(cfg.TitleEncoding)
	if err != nil {
		return peer.Options{}, err
	}
	return peer.Options{
		Managed:        cfg.Managed,
		VirtualDesktop: cfg.VirtualDesktop,
		TakeFocus:      cfg.TakeFocus,
		AppName:        cfg.WMClass.Name,
		AppClass:       cfg.WMClass.Class,
		IconWidth:      cfg.IconSize.Width,
		IconHeight:     cfg.IconSize.Height,
		Logger:         logger,
		Observer:       observer,
		Encoder:        enc,
	}, nil
}

func openSession(opts sessionOptions) (*session, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	x11.ApplyXAuthority(cfg.XAuthority)
	display, err := x11.ResolveDisplay(cfg.Display)
	if err != nil {
		return nil, err
	}
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("connect to display %s: %w", display, err)
	}
	log.Printf("Connected to display %s", display)

	s := &session{cfg: cfg, conn: conn, backend: platform.NewX11Backend(conn)}
	if err := s.start(opts, logger); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) start(opts sessionOptions, logger *slog.Logger) error {
	traceCfg := s.cfg.GetTraceConfig()
	trace, err := tracelog.New(tracelog.Config{
		Enabled:   traceCfg.Enabled,
		Level:     tracelog.ParseLevel(s.cfg.Logging.Level),
		FilePath:  traceCfg.File,
		MaxSizeMB: traceCfg.MaxSizeMB,
		MaxFiles:  traceCfg.MaxFiles,
	})
	if err != nil {
		log.Printf("Warning: failed to open trace log: %v", err)
	} else {
		s.trace = trace
	}
	s.recorder = metrics.NewRecorder()

	addr := opts.metricsAddr
	if addr == "" {
		addr = s.cfg.MetricsAddr
	}
	if addr != "" {
		s.server = &http.Server{Addr: addr, Handler: s.recorder.Handler()}
		go func() {
			if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Warning: metrics server: %v", err)
			}
		}()
		log.Printf("Serving metrics on %s", addr)
	}

	x, y, w, h, err := s.conn.ScreenBounds()
	if err != nil {
		return err
	}
	sc, err := scene.Load(opts.scenePath, s.cfg.FrameMetrics, logical.NewRect(x, y, w, h))
	if err != nil {
		return err
	}
	s.scene = sc

	observers := peer.Observers{s.recorder}
	if s.trace != nil {
		observers = append(observers, s.trace)
	}
	mopts, err := managerOptions(s.cfg, logger, observers)
	if err != nil {
		return err
	}
	s.manager = peer.NewManager(s.backend, sc.Tree, s.cfg.FrameMetrics, mopts)
	if err := sc.Realize(s.manager, s.cfg.FrameMetrics); err != nil {
		return fmt.Errorf("realize scene: %w", err)
	}
	return nil
}

// onConfigureNotify reports where the window manager put a top-level peer.
func onConfigureNotify(s *session, ev *xproto.ConfigureNotifyEvent) {
	id, ok := s.manager.WindowFromPeer(platform.WindowID(ev.Window))
	if !ok {
		return
	}
	slog.Debug("peer configured", "window", id, "peer", ev.Window,
		"x", ev.X, "y", ev.Y, "width", ev.Width, "height", ev.Height)
}

// Close tears down every peer and releases the connection.
func (s *session) Close() {
	if s.scene != nil && s.manager != nil {
		if err := s.scene.Teardown(s.manager); err != nil {
			log.Printf("Warning: teardown: %v", err)
		}
	}
	if s.server != nil {
		s.server.Close()
	}
	if s.trace != nil {
		s.trace.Close()
	}
	s.backend.Disconnect()
}
