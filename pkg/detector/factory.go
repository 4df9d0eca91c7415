package detector

import (
	"os"

	"github.com/actionsum/workwatch/pkg/integrations/hybrid"
	"github.com/actionsum/workwatch/pkg/integrations/wayland"
	"github.com/actionsum/workwatch/pkg/integrations/x11"
	"github.com/actionsum/workwatch/pkg/window"
)

// New returns a detector for the current session. On Wayland the native
// compositor probe is tried first and XWayland is the fallback.
func New() (window.Detector, error) {
	return hybrid.NewDetector(candidates(DetectDisplayServer())...)
}

// candidates lists the probes to chain for displayServer, in priority order.
func candidates(displayServer string) []window.Detector {
	var list []window.Detector
	if displayServer == "wayland" {
		list = append(list, wayland.NewDetector())
	}
	return append(list, x11.NewDetector())
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
