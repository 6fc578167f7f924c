package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowStyle describes the decoration and state bits of a window,
// derived from ICCCM/EWMH hints rather than a native style bitmask.
type WindowStyle struct {
	HasCaption bool
	Resizable  bool
	Minimized  bool
	Maximized  bool
	ToolWindow bool
	AppWindow  bool
	Cloaked    bool
	OwnedPopup bool
}

// GetWindowStyle inspects a window's EWMH/ICCCM hints and reports the
// decoration/state bits the classifier and reconcilers rely on.
func (c *Connection) GetWindowStyle(windowID xproto.Window) (WindowStyle, error) {
	style := WindowStyle{
		HasCaption: true,
		Resizable:  true,
		AppWindow:  true,
	}

	if types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID); err == nil {
		for _, t := range types {
			switch t {
			case "_NET_WM_WINDOW_TYPE_UTILITY", "_NET_WM_WINDOW_TYPE_TOOLBAR":
				style.ToolWindow = true
				style.AppWindow = false
			case "_NET_WM_WINDOW_TYPE_MENU", "_NET_WM_WINDOW_TYPE_POPUP_MENU", "_NET_WM_WINDOW_TYPE_DROPDOWN_MENU":
				style.HasCaption = false
				style.AppWindow = false
			case "_NET_WM_WINDOW_TYPE_SPLASH", "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_DOCK":
				style.HasCaption = false
				style.AppWindow = false
			}
		}
	}

	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		hasMaxH, hasMaxV := false, false
		for _, s := range states {
			switch s {
			case "_NET_WM_STATE_HIDDEN":
				style.Minimized = true
			case "_NET_WM_STATE_MAXIMIZED_HORZ":
				hasMaxH = true
			case "_NET_WM_STATE_MAXIMIZED_VERT":
				hasMaxV = true
			case "_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER":
				style.Cloaked = true
			}
		}
		style.Maximized = hasMaxH && hasMaxV
	}

	if hints, err := icccm.WmNormalHintsGet(c.XUtil, windowID); err == nil {
		if hints.Flags&icccm.SizeHintPMinSize != 0 && hints.Flags&icccm.SizeHintPMaxSize != 0 {
			if hints.MaxWidth == hints.MinWidth && hints.MaxHeight == hints.MinHeight {
				style.Resizable = false
			}
		}
	}

	if _, err := icccm.WmTransientForGet(c.XUtil, windowID); err == nil {
		style.OwnedPopup = true
	}

	return style, nil
}
