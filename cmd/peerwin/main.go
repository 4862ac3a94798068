package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runRun(os.Args[2:]))
	case "classify":
		os.Exit(runClassify(os.Args[2:]))
	case "hints":
		os.Exit(runHints(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: peerwin <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Materialize a scene on the X server (foreground)")
	fmt.Fprintln(w, "  classify            Show what the decoration policy derives from styles")
	fmt.Fprintln(w, "  hints               Show the size and Motif hints for a top-level window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server over a live scene (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'peerwin <command> --help' for command-specific options.")
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: peerwin run --scene FILE [--config FILE] [--metrics-addr ADDR]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Create native peers for every window of a scene and keep them until")
		fmt.Fprintln(os.Stderr, "interrupted.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	var opts sessionOptions
	opts.bind(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if opts.scenePath == "" {
		fmt.Fprintln(os.Stderr, "run requires --scene")
		fs.Usage()
		return 2
	}

	sess, err := openSession(opts)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer sess.Close()

	watchPeers(sess)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received %v, tearing down", sig)
		sess.conn.Quit()
	}()

	log.Printf("peerwin running with %d windows", len(sess.scene.Entries))
	sess.conn.EventLoop()
	return 0
}

// watchPeers logs ConfigureNotify on every top-level peer: the position the
// window manager actually gave it.
func watchPeers(sess *session) {
	xu := sess.conn.XUtil
	for _, p := range sess.manager.Peers() {
		if p.Desktop || p.Whole == 0 {
			continue
		}
		xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
			onConfigureNotify(sess, ev.ConfigureNotifyEvent)
		}).Connect(xu, xproto.Window(p.Whole))
	}
}
