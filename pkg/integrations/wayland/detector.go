package wayland

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/actionsum/workwatch/pkg/integrations/process"
	"github.com/actionsum/workwatch/pkg/window"
)

// runner executes a command and returns its stdout
type runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// Detector implements window.Detector for Wayland compositors
type Detector struct {
	compositor string
	hasSwaymsg bool
	hasHyprctl bool
	hasGdbus   bool
	resolver   *process.Resolver
	run        runner
}

// NewDetector creates a new Wayland detector
func NewDetector() *Detector {
	d := &Detector{
		resolver: process.NewResolver(),
		run:      execRunner,
	}
	d.hasSwaymsg = commandExists("swaymsg")
	d.hasHyprctl = commandExists("hyprctl")
	d.hasGdbus = commandExists("gdbus")
	d.detectCompositor()
	return d
}

// commandExists checks if a command is available in PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// detectCompositor attempts to detect the Wayland compositor
func (d *Detector) detectCompositor() {
	compositors := []struct{ process, name string }{
		{"sway", "sway"},
		{"Hyprland", "hyprland"},
		{"gnome-shell", "gnome"},
	}

	for _, c := range compositors {
		if err := exec.Command("pgrep", "-x", c.process).Run(); err == nil {
			d.compositor = c.name
			return
		}
	}

	d.compositor = "unknown"
}

// IsAvailable checks if Wayland detection is available
func (d *Detector) IsAvailable() bool {
	switch d.compositor {
	case "sway":
		return d.hasSwaymsg
	case "hyprland":
		return d.hasHyprctl
	case "gnome":
		return d.hasGdbus
	default:
		return false
	}
}

// DisplayServer returns "wayland"
func (d *Detector) DisplayServer() string {
	return "wayland"
}

// FocusedWindow returns the focused window for the detected compositor
func (d *Detector) FocusedWindow() (*window.Window, error) {
	var (
		w   *window.Window
		err error
	)
	switch d.compositor {
	case "sway":
		w, err = d.focusedSway()
	case "hyprland":
		w, err = d.focusedHyprland()
	case "gnome":
		w, err = d.focusedGnome()
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
	if err != nil || w == nil || w.Title == "" {
		return nil, err
	}
	w.DisplayServer = "wayland"
	return w, nil
}

// ProcessName resolves the pid reported by the compositor, falling back to the app id
func (d *Detector) ProcessName(w *window.Window) string {
	if w == nil {
		return window.UnknownProcess
	}
	if name := d.resolver.NameForPID(w.PID); name != window.UnknownProcess {
		return name
	}
	if w.Class != "" {
		return w.Class
	}
	return window.UnknownProcess
}

// swayNode is the subset of the sway tree we need
type swayNode struct {
	ID               uint64     `json:"id"`
	Name             string     `json:"name"`
	Focused          bool       `json:"focused"`
	PID              int        `json:"pid"`
	AppID            string     `json:"app_id"`
	WindowProperties *struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

func (d *Detector) focusedSway() (*window.Window, error) {
	output, err := d.run("swaymsg", "-t", "get_tree")
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute swaymsg")
	}
	return parseSwayTree(output)
}

// parseSwayTree finds the focused leaf in a swaymsg get_tree document
func parseSwayTree(data []byte) (*window.Window, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "failed to parse sway tree")
	}

	node := findFocused(&root)
	if node == nil {
		return nil, nil
	}

	class := node.AppID
	if class == "" && node.WindowProperties != nil {
		class = node.WindowProperties.Class
	}

	return &window.Window{
		Handle: node.ID,
		PID:    node.PID,
		Title:  node.Name,
		Class:  class,
	}, nil
}

func findFocused(n *swayNode) *swayNode {
	if n.Focused && n.PID != 0 {
		return n
	}
	for i := range n.Nodes {
		if f := findFocused(&n.Nodes[i]); f != nil {
			return f
		}
	}
	for i := range n.FloatingNodes {
		if f := findFocused(&n.FloatingNodes[i]); f != nil {
			return f
		}
	}
	return nil
}

type hyprWindow struct {
	Address string `json:"address"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	PID     int    `json:"pid"`
}

func (d *Detector) focusedHyprland() (*window.Window, error) {
	output, err := d.run("hyprctl", "activewindow", "-j")
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute hyprctl")
	}
	return parseHyprlandWindow(output)
}

// parseHyprlandWindow parses `hyprctl activewindow -j`. An empty object means no focus.
func parseHyprlandWindow(data []byte) (*window.Window, error) {
	var hw hyprWindow
	if err := json.Unmarshal(data, &hw); err != nil {
		return nil, errors.Wrap(err, "failed to parse hyprland window")
	}
	if hw.Title == "" {
		return nil, nil
	}

	var handle uint64
	fmt.Sscanf(strings.TrimPrefix(hw.Address, "0x"), "%x", &handle)

	return &window.Window{
		Handle: handle,
		PID:    hw.PID,
		Title:  hw.Title,
		Class:  hw.Class,
	}, nil
}

const gnomeScript = `
	(function() {
		let w = global.display.get_focus_window();
		if (!w) { return ''; }
		return JSON.stringify({
			wm_class: w.get_wm_class() || '',
			title: w.get_title() || '',
			pid: w.get_pid() || 0,
			id: w.get_id() || 0
		});
	})()
`

type gnomeWindow struct {
	WMClass string `json:"wm_class"`
	Title   string `json:"title"`
	PID     int    `json:"pid"`
	ID      uint64 `json:"id"`
}

func (d *Detector) focusedGnome() (*window.Window, error) {
	output, err := d.run("gdbus", "call", "--session",
		"--dest", "org.gnome.Shell",
		"--object-path", "/org/gnome/Shell",
		"--method", "org.gnome.Shell.Eval",
		gnomeScript)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call org.gnome.Shell.Eval")
	}
	return parseGnomeEval(string(output))
}

// parseGnomeEval parses gdbus output such as (true, '{"title":"x",...}').
// Shell.Eval is disabled on recent GNOME releases and answers (false, '').
func parseGnomeEval(output string) (*window.Window, error) {
	result := strings.TrimSpace(output)
	if !strings.HasPrefix(result, "(true,") {
		return nil, errors.New("GNOME Shell.Eval is unavailable")
	}

	start := strings.Index(result, "{")
	end := strings.LastIndex(result, "}")
	if start == -1 || end < start {
		return nil, nil
	}

	payload := result[start : end+1]
	payload = strings.ReplaceAll(payload, `\"`, `"`)
	payload = strings.ReplaceAll(payload, `\'`, `'`)

	var gw gnomeWindow
	if err := json.Unmarshal([]byte(payload), &gw); err != nil {
		return nil, errors.Wrap(err, "failed to parse GNOME window")
	}
	if gw.Title == "" {
		return nil, nil
	}

	return &window.Window{
		Handle: gw.ID,
		PID:    gw.PID,
		Title:  gw.Title,
		Class:  gw.WMClass,
	}, nil
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
