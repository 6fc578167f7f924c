//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/komorebi/internal/events"
	"github.com/1broseidon/komorebi/internal/rule"
	"github.com/1broseidon/komorebi/internal/wm"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// EventPump wires a LinuxBackend's X11 connection to the OS-event
// ingress pipeline (spec.md §4.4): it registers xgbutil callbacks for
// window lifecycle, focus, and property changes, and normalizes each
// one onto the shared events.Channel.
type EventPump struct {
	Backend *LinuxBackend
	Out     events.Channel
	Ingress *events.Ingress
	Logger  *slog.Logger
}

// Attach registers the root-window and per-window callbacks. Call once
// before Backend.EventLoop starts pumping the connection.
func (p *EventPump) Attach() error {
	xu := p.Backend.XUtil()
	if xu == nil {
		return fmt.Errorf("platform: event pump requires a connected backend")
	}
	root := p.Backend.RootWindow()

	if err := xwindow.New(xu, root).Listen(xproto.EventMaskSubstructureNotify | xproto.EventMaskPropertyChange); err != nil {
		return err
	}

	xevent.CreateNotifyFun(func(xu *xgbutil.XUtil, ev xevent.CreateNotifyEvent) {
		p.attachWindow(ev.Window)
		p.send(events.Manage, wm.Handle(ev.Window))
	}).Connect(xu, root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		p.send(events.Destroy, wm.Handle(ev.Window))
	}).Connect(xu, root)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		p.handleRootProperty(xu, ev.Atom)
	}).Connect(xu, root)

	return nil
}

func (p *EventPump) handleRootProperty(xu *xgbutil.XUtil, atom xproto.Atom) {
	name, err := xprop.AtomName(xu, atom)
	if err != nil || name != "_NET_ACTIVE_WINDOW" {
		return
	}
	active, err := ewmh.ActiveWindowGet(xu)
	if err != nil {
		return
	}
	h := wm.Handle(active)
	if !p.Ingress.AcceptFocusChange(h, time.Now()) {
		return
	}
	p.send(events.FocusChange, h)
}

// attachWindow registers the per-window callbacks a newly created
// top-level window needs: map/unmap for show/hide, and property
// changes for title updates and cloak/minimize state.
func (p *EventPump) attachWindow(win xproto.Window) {
	xu := p.Backend.XUtil()
	if err := xwindow.New(xu, win).Listen(xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange); err != nil {
		return
	}

	xevent.MapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		p.send(events.Show, wm.Handle(win))
	}).Connect(xu, win)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		p.send(events.Hide, wm.Handle(win))
	}).Connect(xu, win)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		p.handleWindowProperty(xu, win, ev.Atom)
	}).Connect(xu, win)
}

func (p *EventPump) handleWindowProperty(xu *xgbutil.XUtil, win xproto.Window, atom xproto.Atom) {
	name, err := xprop.AtomName(xu, atom)
	if err != nil {
		return
	}
	switch name {
	case "_NET_WM_NAME", "WM_NAME":
		p.handleTitleChange(win)
	case "_NET_WM_STATE":
		p.handleStateChange(win)
	}
}

func (p *EventPump) handleTitleChange(win xproto.Window) {
	h := wm.Handle(win)
	id, err := p.identifiersFor(h)
	if err != nil {
		return
	}
	style, err := p.Backend.WindowStyle(WindowID(h))
	if err != nil {
		return
	}
	p.Out <- p.Ingress.NormalizeTitleChange(h, id, style.Minimized)
}

func (p *EventPump) handleStateChange(win xproto.Window) {
	h := wm.Handle(win)
	style, err := p.Backend.WindowStyle(WindowID(h))
	if err != nil {
		return
	}
	if style.Cloaked {
		p.send(events.Cloak, h)
		return
	}
	p.send(events.Uncloak, h)
}

func (p *EventPump) identifiersFor(h wm.Handle) (rule.Identifiers, error) {
	id := WindowID(h)
	title, err := p.Backend.Title(id)
	if err != nil {
		return rule.Identifiers{}, err
	}
	class, err := p.Backend.Class(id)
	if err != nil {
		return rule.Identifiers{}, err
	}
	exe, err := p.Backend.Executable(id)
	if err != nil {
		return rule.Identifiers{}, err
	}
	path, err := p.Backend.Path(id)
	if err != nil {
		return rule.Identifiers{}, err
	}
	return rule.Identifiers{Executable: exe, Class: class, Title: title, Path: path}, nil
}

func (p *EventPump) send(kind events.Kind, h wm.Handle) {
	select {
	case p.Out <- events.Event{Kind: kind, Handle: h}:
	default:
		if p.Logger != nil {
			p.Logger.Warn("event channel full, dropping event", "kind", kind.String(), "handle", h)
		}
	}
}
