package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/peer"
)

// styleFlags are the style inputs shared by classify and hints.
type styleFlags struct {
	style      string
	exStyle    string
	classStyle string
	configPath string
	yamlOut    bool
}

func (f *styleFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&f.style, "style", "", "Style flags, e.g. WS_OVERLAPPEDWINDOW|WS_VISIBLE")
	fs.StringVar(&f.exStyle, "ex-style", "", "Extended style flags")
	fs.StringVar(&f.classStyle, "class-style", "", "Class style flags")
	fs.StringVar(&f.configPath, "config", "", "Config file path (default: ~/.config/peerwin/config.yaml)")
	fs.BoolVar(&f.yamlOut, "yaml", false, "Print YAML even on a terminal")
}

func (f *styleFlags) parse() (style, exStyle, classStyle uint32, err error) {
	if style, err = logical.ParseStyle(f.style); err != nil {
		return 0, 0, 0, fmt.Errorf("--style: %w", err)
	}
	if exStyle, err = logical.ParseExStyle(f.exStyle); err != nil {
		return 0, 0, 0, fmt.Errorf("--ex-style: %w", err)
	}
	if classStyle, err = logical.ParseClassStyle(f.classStyle); err != nil {
		return 0, 0, 0, fmt.Errorf("--class-style: %w", err)
	}
	return style, exStyle, classStyle, nil
}

// wantYAML prints machine-readable output when stdout is not a terminal.
func (f *styleFlags) wantYAML() bool {
	return f.yamlOut || !term.IsTerminal(int(os.Stdout.Fd()))
}

func runClassify(args []string) int {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: peerwin classify --style FLAGS [--ex-style FLAGS] [--class-style FLAGS] [--child]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show management, attributes and Motif hints for a set of styles.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	var sf styleFlags
	sf.bind(fs)
	child := fs.Bool("child", false, "Classify as a window below another window rather than on the desktop")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	style, exStyle, classStyle, err := sf.parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	cfg, err := loadConfig(sf.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	report := peer.DescribeStyle(style, exStyle, classStyle, !*child && !cfg.VirtualDesktop, cfg.Managed)
	if sf.wantYAML() {
		return printYAML(report)
	}
	fmt.Println(renderRows("classify", []row{
		{"style", logical.FormatStyle(style)},
		{"ex_style", logical.FormatExStyle(exStyle)},
		{"top_level", report.TopLevel},
		{"managed", report.Managed},
		{"override_redirect", report.OverrideRedirect},
		{"save_under", report.SaveUnder},
		{"event_mask", fmt.Sprintf("%#x", report.EventMask)},
		{"functions", joinOrNone(report.Functions)},
		{"decorations", joinOrNone(report.Decorations)},
	}))
	return 0
}

func runHints(args []string) int {
	fs := flag.NewFlagSet("hints", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: peerwin hints --style FLAGS [--ex-style FLAGS] --rect L,T,R,B")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show WM_NORMAL_HINTS and _MOTIF_WM_HINTS for a top-level window.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	var sf styleFlags
	sf.bind(fs)
	rectArg := fs.String("rect", "", "Frame rectangle as left,top,right,bottom")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	style, exStyle, _, err := sf.parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	rect, err := logical.ParseRect(*rectArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	cfg, err := loadConfig(sf.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	report := peer.DescribeHints(cfg.FrameMetrics, style, exStyle, rect, cfg.Managed)
	if sf.wantYAML() {
		return printYAML(report)
	}
	rows := []row{
		{"managed", report.Managed},
		{"peer_rect", report.PeerRect},
		{"size_flags", joinOrNone(report.SizeFlags)},
		{"position", fmt.Sprintf("%d,%d", report.X, report.Y)},
	}
	if report.MinWidth > 0 {
		rows = append(rows,
			row{"min_size", fmt.Sprintf("%dx%d", report.MinWidth, report.MinHeight)},
			row{"max_size", fmt.Sprintf("%dx%d", report.MaxWidth, report.MaxHeight)})
	}
	rows = append(rows,
		row{"win_gravity", report.WinGravity},
		row{"functions", joinOrNone(report.Functions)},
		row{"decorations", joinOrNone(report.Decorations)})
	fmt.Println(renderRows("hints", rows))
	return 0
}

func printYAML(v any) int {
	return writeYAML(os.Stdout, v)
}

func writeYAML(w io.Writer, v any) int {
	data, err := yaml.Marshal(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprint(w, string(data))
	return 0
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, " ")
}

type row struct {
	key   string
	value any
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(19)
	yesStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderRows lays out a key/value report in a rounded box for terminals.
func renderRows(title string, rows []row) string {
	lines := []string{titleStyle.Render(title), ""}
	for _, r := range rows {
		var value string
		switch v := r.value.(type) {
		case bool:
			if v {
				value = yesStyle.Render("yes")
			} else {
				value = noStyle.Render("no")
			}
		default:
			value = fmt.Sprint(v)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(r.key), value))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
