package platform

import (
	"github.com/1broseidon/komorebi/internal/command"
	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/wm"
)

// ShellAdapter exposes a Backend as a wm.ShellQuerier, bridging the
// platform-neutral window identifier space and wm's Handle type.
type ShellAdapter struct {
	Backend Backend
}

var _ wm.ShellQuerier = (*ShellAdapter)(nil)

func (a *ShellAdapter) Title(h wm.Handle) (string, error) {
	return a.Backend.Title(WindowID(h))
}

func (a *ShellAdapter) Class(h wm.Handle) (string, error) {
	return a.Backend.Class(WindowID(h))
}

func (a *ShellAdapter) Executable(h wm.Handle) (string, error) {
	return a.Backend.Executable(WindowID(h))
}

func (a *ShellAdapter) Path(h wm.Handle) (string, error) {
	return a.Backend.Path(WindowID(h))
}

func (a *ShellAdapter) Style(h wm.Handle) (wm.StyleBits, error) {
	s, err := a.Backend.WindowStyle(WindowID(h))
	if err != nil {
		return wm.StyleBits{}, err
	}
	return wm.StyleBits{
		HasCaption: s.HasCaption,
		Resizable:  s.Resizable,
		Minimized:  s.Minimized,
		Maximized:  s.Maximized,
		ToolWindow: s.ToolWindow,
		AppWindow:  s.AppWindow,
		Cloaked:    s.Cloaked,
		OwnedPopup: s.OwnedPopup,
	}, nil
}

func (a *ShellAdapter) Rect(h wm.Handle) (geom.Rect, error) {
	r, err := a.Backend.WindowRect(WindowID(h))
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.NewRect(r.X, r.Y, r.Width, r.Height), nil
}

// CommandBackend adapts a Backend to command.Engine's narrower Backend
// interface (move/resize and visibility, nothing else).
type CommandBackend struct {
	Backend Backend
}

var _ command.Backend = (*CommandBackend)(nil)

func (a *CommandBackend) MoveResize(h wm.Handle, r geom.Rect) error {
	return a.Backend.MoveResize(WindowID(h), Rect{
		X:      r.Left,
		Y:      r.Top,
		Width:  r.Width(),
		Height: r.Height(),
	})
}

func (a *CommandBackend) Show(h wm.Handle) error {
	return a.Backend.Show(WindowID(h))
}

func (a *CommandBackend) Hide(h wm.Handle) error {
	return a.Backend.Hide(WindowID(h))
}
