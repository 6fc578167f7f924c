// Package wm implements the hierarchical window-manager state tree —
// monitors, workspaces, containers, and windows — along with the
// mutation operations and invariants described in spec.md §3.
package wm

import "github.com/1broseidon/komorebi/internal/geom"

// Handle is an opaque native window handle. The core holds nothing
// stateful about a window besides this handle; every other attribute is
// queried lazily through a ShellQuerier.
type Handle uint32

// StyleBits carries the shell-reported window style flags that the
// rule engine's fallback classification step inspects.
type StyleBits struct {
	HasCaption bool
	Resizable  bool
	Minimized  bool
	Maximized  bool
	ToolWindow bool
	AppWindow  bool
	Cloaked    bool
	OwnedPopup bool
}

// ShellQuerier answers lazy, uncached attribute queries about a window
// handle. The platform backend implements it.
type ShellQuerier interface {
	Title(Handle) (string, error)
	Class(Handle) (string, error)
	Executable(Handle) (string, error)
	Path(Handle) (string, error)
	Style(Handle) (StyleBits, error)
	Rect(Handle) (geom.Rect, error)
}

// Window is a managed top-level window. It caches nothing beyond its
// handle; every accessor below re-queries the shell.
type Window struct {
	Handle Handle
	shell  ShellQuerier
}

// NewWindow wraps a handle with the shell used to answer its attribute
// queries. shell may be nil in tests that never call an accessor.
func NewWindow(h Handle, shell ShellQuerier) Window {
	return Window{Handle: h, shell: shell}
}

// Title returns the window's current title, or "" if the shell query
// fails (the handle may have gone stale between events).
func (w Window) Title() string {
	if w.shell == nil {
		return ""
	}
	t, err := w.shell.Title(w.Handle)
	if err != nil {
		return ""
	}
	return t
}

// Class returns the window's class/app-id identifier.
func (w Window) Class() string {
	if w.shell == nil {
		return ""
	}
	c, err := w.shell.Class(w.Handle)
	if err != nil {
		return ""
	}
	return c
}

// Executable returns the owning process's executable name.
func (w Window) Executable() string {
	if w.shell == nil {
		return ""
	}
	e, err := w.shell.Executable(w.Handle)
	if err != nil {
		return ""
	}
	return e
}

// Path returns the owning process's full executable path.
func (w Window) Path() string {
	if w.shell == nil {
		return ""
	}
	p, err := w.shell.Path(w.Handle)
	if err != nil {
		return ""
	}
	return p
}

// Style returns the window's shell-reported style bits.
func (w Window) Style() StyleBits {
	if w.shell == nil {
		return StyleBits{}
	}
	s, err := w.shell.Style(w.Handle)
	if err != nil {
		return StyleBits{}
	}
	return s
}

// Rect returns the window's current on-screen rectangle.
func (w Window) Rect() geom.Rect {
	if w.shell == nil {
		return geom.Rect{}
	}
	r, err := w.shell.Rect(w.Handle)
	if err != nil {
		return geom.Rect{}
	}
	return r
}
