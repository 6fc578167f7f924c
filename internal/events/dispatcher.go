package events

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/komorebi/internal/command"
	"github.com/1broseidon/komorebi/internal/platform"
	"github.com/1broseidon/komorebi/internal/rule"
	"github.com/1broseidon/komorebi/internal/wm"
)

// RuleSource supplies the current ignore/manage rule lists the
// classifier cascade reads on every Manage event (spec.md §4.3).
// *rule.Store satisfies this.
type RuleSource interface {
	IgnoreRules() []rule.Rule
	ManageRules() []rule.Rule
	LayeredRules() []rule.Rule
}

// WorkspaceResolver resolves a newly-classified window's destination
// monitor/workspace from the configured workspace-matching rules
// (spec.md §4.3's "Workspace assignment rules"). *rule.MatchingRuleSet
// satisfies this.
type WorkspaceResolver interface {
	Resolve(id rule.Identifiers) (monitor, workspace int, ok bool)
}

// Dispatcher is the single-writer worker that drains the merged
// OS-event channel and applies each normalized Event to window-manager
// state: classifying candidate windows through the rule engine before
// handing them to wm.WindowManager, then reapplying layout and
// publishing a notification the same way command.Engine does after a
// command mutation (spec.md §4.4, §4.5's update_focused_workspace).
type Dispatcher struct {
	Manager        *wm.WindowManager
	Backend        platform.Backend
	CmdEngine      *command.Engine
	RuleEngine     *rule.Engine
	Rules          RuleSource
	WorkspaceRules WorkspaceResolver
	Logger         *slog.Logger

	// TolerateCloakedDuringHide lets a Hide event's classification
	// treat an already-cloaked window as real, per spec.md §4.3 step 1
	// ("cloaked by the shell unless we are explicitly tolerating cloaked
	// windows during a hide event").
	TolerateCloakedDuringHide bool
}

// Run drains ch until it is closed, applying each event in turn. The
// channel is the single bounded queue spec.md §4.4 describes; running
// this loop on exactly one goroutine is what gives the engine its
// single-writer property.
func (d *Dispatcher) Run(ch Channel) {
	for ev := range ch {
		d.handle(ev)
	}
}

// handle applies one event under the manager's lock, then — outside
// the lock — publishes a notification if the event changed state that
// needs to be observed.
func (d *Dispatcher) handle(ev Event) {
	if d.Manager.IsPaused() && ev.Kind != DisplayChange && ev.Kind != MonitorPoll {
		return
	}

	d.Manager.Lock()
	mon, changed, err := d.apply(ev)
	if changed && mon != nil && d.CmdEngine != nil {
		d.CmdEngine.ApplyMonitor(mon)
	}
	d.Manager.Unlock()

	if err != nil {
		if d.Logger != nil {
			d.Logger.Warn("event handling failed", "kind", ev.Kind.String(), "handle", ev.Handle, "error", err)
		}
		return
	}
	if changed && d.CmdEngine != nil && d.CmdEngine.Notifier != nil {
		d.CmdEngine.Notifier.Publish(ev.Kind.String())
	}
}

// apply performs the state mutation for ev. Callers must hold the
// manager's lock. The returned monitor, if non-nil, needs its focused
// workspace's layout reapplied.
func (d *Dispatcher) apply(ev Event) (*wm.Monitor, bool, error) {
	switch ev.Kind {
	case Manage:
		return d.manage(ev.Handle)
	case Unmanage, Destroy:
		return d.unmanage(ev.Handle)
	case FocusChange:
		return d.focusChange(ev.Handle)
	case Raise:
		d.Manager.SetPendingRaise(true)
		if d.Backend != nil {
			if err := d.Backend.FocusWindow(platform.WindowID(ev.Handle)); err != nil {
				d.Manager.SetPendingRaise(false)
				return nil, false, fmt.Errorf("events: focus on raise: %w", err)
			}
		}
		d.Manager.SetPendingRaise(false)
		return nil, false, nil
	case MoveResizeStart:
		return nil, false, d.beginMove(ev.Handle)
	case MoveResizeEnd:
		d.Manager.EndMoveOp()
		return nil, false, nil
	case Minimize, Show, Hide, Cloak, Uncloak, TitleUpdate, MouseCapture:
		// These carry no state-tree mutation in this model: Window
		// caches nothing beyond its handle, so visibility/title bits
		// are always queried live from the shell when needed.
		return nil, false, nil
	case DisplayChange, MonitorPoll:
		// Handled by the independently-ticking monitor reconciler
		// (spec.md §4.7), not the event dispatcher.
		return nil, false, nil
	default:
		return nil, false, nil
	}
}

func (d *Dispatcher) manage(h wm.Handle) (*wm.Monitor, bool, error) {
	if d.Backend == nil || d.RuleEngine == nil || d.Rules == nil {
		return nil, false, fmt.Errorf("events: dispatcher missing backend or rule engine")
	}

	id, err := identifiersFor(d.Backend, h)
	if err != nil {
		return nil, false, fmt.Errorf("events: identifiers for %d: %w", h, err)
	}
	style, err := d.Backend.WindowStyle(platform.WindowID(h))
	if err != nil {
		return nil, false, fmt.Errorf("events: style for %d: %w", h, err)
	}
	rect, err := d.Backend.WindowRect(platform.WindowID(h))
	zeroSized := err == nil && (rect.Width <= 0 || rect.Height <= 0)

	real := isRealWindow(style, zeroSized, d.TolerateCloakedDuringHide)
	manage, _ := d.RuleEngine.Classify(real, d.Rules.IgnoreRules(), d.Rules.ManageRules(), d.Rules.LayeredRules(), id, rule.ClassifyStyle{
		HasCaption: style.HasCaption,
		Resizable:  style.Resizable,
	})
	if !manage {
		return nil, false, nil
	}

	var dest *wm.KnownLocation
	if d.WorkspaceRules != nil {
		if monIdx, wsIdx, ok := d.WorkspaceRules.Resolve(id); ok {
			dest = &wm.KnownLocation{MonitorIdx: monIdx, WorkspaceIdx: wsIdx}
		}
	}

	win := wm.NewWindow(h, &platform.ShellAdapter{Backend: d.Backend})
	if err := d.Manager.ManageWindow(win, dest); err != nil {
		return nil, false, err
	}

	loc, ok := d.Manager.Locate(h)
	if !ok {
		return nil, true, nil
	}
	return monitorAt(d.Manager, loc.MonitorIdx), true, nil
}

func (d *Dispatcher) unmanage(h wm.Handle) (*wm.Monitor, bool, error) {
	loc, ok := d.Manager.Locate(h)
	if !ok {
		return nil, false, nil
	}
	if !d.Manager.UnmanageWindow(h) {
		return nil, false, nil
	}
	return monitorAt(d.Manager, loc.MonitorIdx), true, nil
}

func (d *Dispatcher) focusChange(h wm.Handle) (*wm.Monitor, bool, error) {
	loc, ok := d.Manager.Locate(h)
	if !ok {
		return nil, false, nil
	}
	mon := monitorAt(d.Manager, loc.MonitorIdx)
	if mon == nil {
		return nil, false, nil
	}
	d.Manager.Monitors().Focus(loc.MonitorIdx)
	mon.Workspaces().Focus(loc.WorkspaceIdx)
	ws := workspaceAt(mon, loc.WorkspaceIdx)
	if ws == nil {
		return nil, false, nil
	}
	ws.FocusWindow(h)
	// Focus alone does not require a re-layout, mirroring
	// command.Engine's handling of TypeFocusWindow.
	return nil, false, nil
}

func (d *Dispatcher) beginMove(h wm.Handle) error {
	loc, ok := d.Manager.Locate(h)
	if !ok {
		return nil
	}
	mon := monitorAt(d.Manager, loc.MonitorIdx)
	if mon == nil {
		return nil
	}
	ws := workspaceAt(mon, loc.WorkspaceIdx)
	if ws == nil {
		return nil
	}
	idx, ok := ws.ContainerIndex(h)
	if !ok {
		return nil
	}
	d.Manager.BeginMoveOp(wm.PendingMoveOp{MonitorIdx: loc.MonitorIdx, WorkspaceIdx: loc.WorkspaceIdx, ContainerIdx: idx})
	return nil
}

func monitorAt(m *wm.WindowManager, idx int) *wm.Monitor {
	p := m.Monitors().At(idx)
	if p == nil {
		return nil
	}
	return *p
}

func workspaceAt(mon *wm.Monitor, idx int) *wm.Workspace {
	p := mon.Workspaces().At(idx)
	if p == nil {
		return nil
	}
	return *p
}

func identifiersFor(b platform.Backend, h wm.Handle) (rule.Identifiers, error) {
	id := platform.WindowID(h)
	title, err := b.Title(id)
	if err != nil {
		return rule.Identifiers{}, err
	}
	class, err := b.Class(id)
	if err != nil {
		return rule.Identifiers{}, err
	}
	exe, err := b.Executable(id)
	if err != nil {
		return rule.Identifiers{}, err
	}
	path, err := b.Path(id)
	if err != nil {
		return rule.Identifiers{}, err
	}
	return rule.Identifiers{Executable: exe, Class: class, Title: title, Path: path}, nil
}

// isRealWindow implements spec.md §4.3 step 1: zero-sized, a toolwindow
// with no app-window flag, an owned popup, or (unless tolerated) a
// cloaked window are all refused.
func isRealWindow(s platform.Style, zeroSized, tolerateCloaked bool) bool {
	if zeroSized {
		return false
	}
	if s.ToolWindow && !s.AppWindow {
		return false
	}
	if s.OwnedPopup {
		return false
	}
	if s.Cloaked && !tolerateCloaked {
		return false
	}
	return true
}
