package x11

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// errNoActiveWindow means no window with a name holds focus.
var errNoActiveWindow = errors.New("no active window found")

// client is a connection to the X server with the atoms the probe needs interned.
type client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

func newClient() (*client, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	setup := xproto.Setup(conn)
	c := &client{
		conn:  conn,
		root:  setup.DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		c.atoms[name] = reply.Atom
	}

	return c, nil
}

func (c *client) close() {
	c.conn.Close()
}

func (c *client) getProperty(w xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, w, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (c *client) activeFromProperty() xproto.Window {
	data, err := c.getProperty(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}

func (c *client) activeFromInputFocus() (xproto.Window, error) {
	reply, err := xproto.GetInputFocus(c.conn).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Focus, nil
}

func (c *client) topLevelParent(w xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(c.conn, w).Reply()
		if err != nil || reply.Parent == c.root || reply.Parent == 0 {
			return w
		}
		w = reply.Parent
	}
}

// activeWindow retries briefly because focus can be in flux during a switch.
// A failed GetInputFocus means the connection itself is broken.
func (c *client) activeWindow() (xproto.Window, error) {
	for i := 0; i < 3; i++ {
		if w := c.activeFromProperty(); w != 0 && c.windowName(w) != "" {
			return w, nil
		}

		w, err := c.activeFromInputFocus()
		if err != nil {
			return 0, err
		}
		if w != 0 && w != c.root {
			if top := c.topLevelParent(w); top != 0 && c.windowName(top) != "" {
				return top, nil
			}
		}

		time.Sleep(20 * time.Millisecond)
	}
	return 0, errNoActiveWindow
}

func (c *client) windowName(w xproto.Window) string {
	data, err := c.getProperty(w, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = c.getProperty(w, c.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	return ""
}

func (c *client) windowClass(w xproto.Window) (instance, class string) {
	data, err := c.getProperty(w, c.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil {
		return "", ""
	}
	return parseWMClass(data)
}

func (c *client) windowPID(w xproto.Window) int {
	data, err := c.getProperty(w, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(data))
}

// parseWMClass splits the NUL separated WM_CLASS value into instance and class.
func parseWMClass(data []byte) (instance, class string) {
	if len(data) == 0 {
		return "", ""
	}
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}
