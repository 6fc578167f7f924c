package x11

import (
	"github.com/BurntSushi/xgb/xproto"
)

// opacityAtomName is the property compositors (picom, compton, xcompmgr)
// read to blend a window; values are scaled across the full uint32 range.
const opacityAtomName = "_NET_WM_WINDOW_OPACITY"

// ShowWindow maps a window, making it visible without changing geometry.
func (c *Connection) ShowWindow(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// HideWindow unmaps a window, leaving its X11 state intact for a later Show.
func (c *Connection) HideWindow(windowID xproto.Window) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// SetOpacity sets a window's compositor opacity, clamped to [0.0, 1.0].
func (c *Connection) SetOpacity(windowID xproto.Window, opacity float64) error {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}

	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(opacityAtomName)), opacityAtomName).Reply()
	if err != nil {
		return err
	}

	value := uint32(opacity * 0xffffffff)
	data := []byte{
		byte(value),
		byte(value >> 8),
		byte(value >> 16),
		byte(value >> 24),
	}

	return xproto.ChangePropertyChecked(
		c.XUtil.Conn(),
		xproto.PropModeReplace,
		windowID,
		reply.Atom,
		xproto.AtomCardinal,
		32,
		1,
		data,
	).Check()
}

// IsWindowAlive reports whether windowID still refers to a live window,
// by probing its geometry; a destroyed window returns an error here.
func (c *Connection) IsWindowAlive(windowID xproto.Window) bool {
	_, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	return err == nil
}
