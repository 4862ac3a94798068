package x11

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ResolveDisplay picks the display to connect to: $DISPLAY, then the
// configured one, then the highest-numbered local X socket.
func ResolveDisplay(configured string) (string, error) {
	if d := strings.TrimSpace(os.Getenv("DISPLAY")); d != "" {
		return d, nil
	}
	if d := strings.TrimSpace(configured); d != "" {
		return d, nil
	}
	if d := detectDisplayFromSockets("/tmp/.X11-unix"); d != "" {
		return d, nil
	}
	return "", fmt.Errorf("no X display; set display in config (e.g. display: \":1\") or export DISPLAY")
}

// ApplyXAuthority exports a configured XAUTHORITY when the environment has
// none, so the connection handshake can find the cookie.
func ApplyXAuthority(configured string) {
	if strings.TrimSpace(os.Getenv("XAUTHORITY")) != "" {
		return
	}
	if xa := strings.TrimSpace(configured); xa != "" {
		os.Setenv("XAUTHORITY", xa)
	}
}

func detectDisplayFromSockets(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}

	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}
