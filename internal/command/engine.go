package command

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/layout"
	"github.com/1broseidon/komorebi/internal/rule"
	"github.com/1broseidon/komorebi/internal/wm"
)

// layoutCycleOrder is the fixed order TypeCycleLayout steps through,
// mirroring the teacher's CycleActiveLayout cycling through its
// configured layout names in sorted order; komorebi has no named
// custom layouts, only this closed set of kinds.
var layoutCycleOrder = []layout.Kind{
	layout.BSP,
	layout.Columns,
	layout.Rows,
	layout.VerticalStack,
	layout.RightMainVerticalStack,
	layout.HorizontalStack,
	layout.UltrawideVerticalStack,
	layout.Grid,
	layout.Scrolling,
}

// Backend is the narrow shell-interaction surface the engine needs to
// realize a mutation: move/resize the involved windows and toggle
// their visibility. Implemented by internal/platform for real runs and
// by a fake in tests.
type Backend interface {
	MoveResize(h wm.Handle, r geom.Rect) error
	Show(h wm.Handle) error
	Hide(h wm.Handle) error
}

// Notifier receives a notification tag after every successful mutation,
// for the publish side of the subscription socket (spec.md §6).
type Notifier interface {
	Publish(event string)
}

// RuleStore receives dynamically added ignore/manage/float/layered/tray
// rules (spec.md §4.5's add_*_rule commands).
type RuleStore interface {
	AddIgnoreRule(rule.Rule)
	AddManageRule(rule.Rule)
	AddFloatRule(rule.Rule)
	AddLayeredRule(rule.Rule)
	AddTrayApplicationRule(rule.Rule)
}

// SubscriberRegistrar adds or removes a notification subscriber socket.
type SubscriberRegistrar interface {
	Subscribe(name string, filterStateChanges bool) error
	Unsubscribe(name string) error
}

// Persistence saves or restores workspace resize dimensions to/from a
// path (spec.md §4.5's quick_save / quick_load commands).
type Persistence interface {
	Save(path string, m *wm.WindowManager) error
	Load(path string, m *wm.WindowManager) error
}

// StateProvider builds the serialized snapshot returned by the state
// and global_state query commands (spec.md §6's "State query
// payload"). Implemented by a closure over pubsub.BuildState so this
// package does not need to depend on pubsub's wire types.
type StateProvider func() (interface{}, error)

// Engine dispatches commands against window-manager state and, after
// every mutation, recomputes and applies layout for every affected
// monitor's focused workspace (spec.md §4.5's update_focused_workspace
// step) before emitting a notification.
type Engine struct {
	Manager     *wm.WindowManager
	Backend     Backend
	Notifier    Notifier
	Rules       RuleStore
	Subscribers SubscriberRegistrar
	Persist     Persistence
	State       StateProvider
	GlobalState StateProvider
	Logger      *slog.Logger

	previewTimer *time.Timer
}

// Dispatch applies one command and returns the response to write back
// to the caller.
func (e *Engine) Dispatch(cmd *Command) *Response {
	e.Manager.Lock()
	defer e.Manager.Unlock()

	resp, affected, err := e.apply(cmd)
	if err != nil {
		if e.Logger != nil {
			e.Logger.Warn("command failed", "type", cmd.Type, "error", err)
		}
		return NewErrorResponse(err.Error())
	}
	for _, mon := range affected {
		e.ApplyMonitor(mon)
	}
	if e.Notifier != nil && len(affected) > 0 {
		e.Notifier.Publish(string(cmd.Type))
	}
	if resp != nil {
		return resp
	}
	ok, _ := NewOKResponse(nil)
	return ok
}

// apply performs the state mutation for cmd and returns the monitors
// whose focused workspace needs its layout reapplied. A nil response
// with no error means "OK, no payload".
func (e *Engine) apply(cmd *Command) (*Response, []*wm.Monitor, error) {
	mon := e.Manager.FocusedMonitor()
	if mon == nil {
		return nil, nil, fmt.Errorf("command: no focused monitor")
	}
	ws := mon.FocusedWorkspace()

	switch cmd.Type {
	case TypeFocusWindow:
		var p DirectionPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		if err := ws.FocusDirection(p.Direction); err != nil {
			return nil, nil, err
		}
		return nil, nil, nil // focus alone does not require a re-layout

	case TypeMoveContainer:
		var p DirectionPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		if err := ws.MoveContainerDirection(p.Direction); err != nil {
			return nil, nil, err
		}
		return nil, []*wm.Monitor{mon}, nil

	case TypeMoveContainerToWorkspace:
		var p WorkspaceTargetPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		dstMon, dst := findWorkspace(e.Manager, p.WorkspaceIdx)
		if dst == nil {
			return nil, nil, fmt.Errorf("command: no such workspace index %d", p.WorkspaceIdx)
		}
		if err := wm.MoveContainerToWorkspace(ws, dst); err != nil {
			return nil, nil, err
		}
		return nil, []*wm.Monitor{mon, dstMon}, nil

	case TypeFocusWorkspace:
		var p WorkspaceTargetPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		dstMon, localIdx := findWorkspaceLocal(e.Manager, p.WorkspaceIdx)
		if dstMon == nil {
			return nil, nil, fmt.Errorf("command: no such workspace index %d", p.WorkspaceIdx)
		}
		prevWs := dstMon.FocusedWorkspace()
		if err := dstMon.FocusWorkspace(localIdx); err != nil {
			return nil, nil, err
		}
		if prevWs != nil && prevWs != dstMon.FocusedWorkspace() {
			e.hideWorkspace(prevWs)
		}
		return nil, []*wm.Monitor{dstMon}, nil

	case TypeMoveContainerToMonitor:
		var p MonitorTargetPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		dstMon := monitorAt(e.Manager, p.MonitorIdx)
		if dstMon == nil {
			return nil, nil, fmt.Errorf("command: no such monitor index %d", p.MonitorIdx)
		}
		if err := wm.MoveContainerToMonitor(ws, dstMon); err != nil {
			return nil, nil, err
		}
		return nil, []*wm.Monitor{mon, dstMon}, nil

	case TypePromoteContainer:
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		ws.PromoteFocusedToPrimary()
		return nil, []*wm.Monitor{mon}, nil

	case TypeCycleFocus:
		var p struct {
			Delta int `json:"delta"`
		}
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		ws.CycleFocus(p.Delta)
		return nil, nil, nil

	case TypeToggleFloat:
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		c := ws.Containers().Focused()
		if c == nil {
			return nil, nil, fmt.Errorf("command: no focused container")
		}
		focused := (*c).FocusedWindow()
		if focused == nil {
			return nil, nil, fmt.Errorf("command: focused container is empty")
		}
		if err := ws.ToggleFloat(focused.Handle); err != nil {
			return nil, nil, err
		}
		return nil, []*wm.Monitor{mon}, nil

	case TypeToggleMonocle:
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		if err := ws.ToggleMonocle(); err != nil {
			return nil, nil, err
		}
		return nil, []*wm.Monitor{mon}, nil

	case TypeToggleMaximize:
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		if err := ws.ToggleMaximize(); err != nil {
			return nil, nil, err
		}
		return nil, []*wm.Monitor{mon}, nil

	case TypeTogglePause:
		e.Manager.SetPaused(!e.Manager.IsPaused())
		return nil, nil, nil

	case TypeStop:
		return nil, nil, nil

	case TypeAdjustContainerPadding:
		var p PaddingPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		ws.SetContainerPadding(ws.ContainerPadding() + p.Delta)
		return nil, []*wm.Monitor{mon}, nil

	case TypeAdjustWorkspacePadding:
		var p PaddingPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		ws.SetWorkspacePadding(ws.WorkspacePadding() + p.Delta)
		return nil, []*wm.Monitor{mon}, nil

	case TypeChangeLayout:
		var p ChangeLayoutPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		ws.SetDefaultLayout(layout.Descriptor{DefaultKind: p.Kind})
		return nil, []*wm.Monitor{mon}, nil

	case TypeCycleLayout:
		var p CycleLayoutPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		current := ws.DefaultLayout().DefaultKind
		idx := 0
		for i, k := range layoutCycleOrder {
			if k == current {
				idx = i
				break
			}
		}
		n := len(layoutCycleOrder)
		next := ((idx+p.Delta)%n + n) % n
		ws.SetDefaultLayout(layout.Descriptor{DefaultKind: layoutCycleOrder[next]})
		return nil, []*wm.Monitor{mon}, nil

	case TypePreviewLayout:
		var p PreviewLayoutPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		prior := ws.DefaultLayout()
		duration := time.Duration(p.DurationMS) * time.Millisecond
		if duration <= 0 {
			duration = 3 * time.Second
		}
		ws.SetDefaultLayout(layout.Descriptor{DefaultKind: p.Kind})
		if e.previewTimer != nil {
			e.previewTimer.Stop()
		}
		e.previewTimer = time.AfterFunc(duration, func() {
			e.Manager.Lock()
			defer e.Manager.Unlock()
			ws.SetDefaultLayout(prior)
			e.ApplyMonitor(mon)
			if e.Notifier != nil {
				e.Notifier.Publish(string(TypePreviewLayout))
			}
		})
		return nil, []*wm.Monitor{mon}, nil

	case TypeFlipLayout:
		var p FlipLayoutPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		ws.SetFlip(layout.FlipOptions{Horizontal: p.Horizontal, Vertical: p.Vertical})
		return nil, []*wm.Monitor{mon}, nil

	case TypeNameWorkspace:
		var p NameWorkspacePayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if ws == nil {
			return nil, nil, fmt.Errorf("command: no focused workspace")
		}
		ws.SetName(p.Name)
		return nil, nil, nil

	case TypeAddManageRule, TypeAddIgnoreRule, TypeAddFloatRule, TypeAddLayeredRule, TypeAddTrayApplicationRule:
		var p AddRulePayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if e.Rules == nil {
			return nil, nil, fmt.Errorf("command: rule store unavailable")
		}
		r := rule.Rule{Simple: &rule.Simple{Kind: p.Kind, Identifier: p.Identifier, Strategy: p.Strategy}}
		switch cmd.Type {
		case TypeAddManageRule:
			e.Rules.AddManageRule(r)
		case TypeAddIgnoreRule:
			e.Rules.AddIgnoreRule(r)
		case TypeAddFloatRule:
			e.Rules.AddFloatRule(r)
		case TypeAddLayeredRule:
			e.Rules.AddLayeredRule(r)
		case TypeAddTrayApplicationRule:
			e.Rules.AddTrayApplicationRule(r)
		}
		return nil, nil, nil

	case TypeAddSubscriberSocket:
		var p SubscriberPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if e.Subscribers == nil {
			return nil, nil, fmt.Errorf("command: subscriber registrar unavailable")
		}
		return nil, nil, e.Subscribers.Subscribe(p.Name, false)

	case TypeAddSubscriberSocketWithOptions:
		var p SubscriberOptionsPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if e.Subscribers == nil {
			return nil, nil, fmt.Errorf("command: subscriber registrar unavailable")
		}
		return nil, nil, e.Subscribers.Subscribe(p.Name, p.FilterStateChanges)

	case TypeRemoveSubscriberSocket:
		var p SubscriberPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if e.Subscribers == nil {
			return nil, nil, fmt.Errorf("command: subscriber registrar unavailable")
		}
		return nil, nil, e.Subscribers.Unsubscribe(p.Name)

	case TypeQuickSave:
		var p PathPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if e.Persist == nil {
			return nil, nil, fmt.Errorf("command: persistence unavailable")
		}
		return nil, nil, e.Persist.Save(p.Path, e.Manager)

	case TypeQueryState:
		if e.State == nil {
			return nil, nil, fmt.Errorf("command: state provider unavailable")
		}
		data, err := e.State()
		if err != nil {
			return nil, nil, err
		}
		resp, err := NewOKResponse(data)
		if err != nil {
			return nil, nil, err
		}
		return resp, nil, nil

	case TypeQueryGlobalState:
		if e.GlobalState == nil {
			return nil, nil, fmt.Errorf("command: global state provider unavailable")
		}
		data, err := e.GlobalState()
		if err != nil {
			return nil, nil, err
		}
		resp, err := NewOKResponse(data)
		if err != nil {
			return nil, nil, err
		}
		return resp, nil, nil

	case TypeQuickLoad:
		var p PathPayload
		if err := unmarshal(cmd, &p); err != nil {
			return nil, nil, err
		}
		if e.Persist == nil {
			return nil, nil, fmt.Errorf("command: persistence unavailable")
		}
		if err := e.Persist.Load(p.Path, e.Manager); err != nil {
			return nil, nil, err
		}
		return nil, []*wm.Monitor{mon}, nil

	default:
		return nil, nil, fmt.Errorf("command: unknown command type %q", cmd.Type)
	}
}

// ApplyMonitor recomputes rectangles for mon's focused workspace and
// instructs the backend to move/resize/show the focused window of
// every tiled container, hiding the rest, per spec.md §4.5. Exported so
// the monitor reconciler can reapply layout after a hot-plug topology
// change without duplicating this logic; callers must hold the
// manager's lock (Dispatch does so automatically).
func (e *Engine) ApplyMonitor(mon *wm.Monitor) {
	ws := mon.FocusedWorkspace()
	if ws == nil || e.Backend == nil {
		return
	}

	if ws.Mode() != wm.ModeTiled {
		for _, c := range ws.Containers().Elements() {
			for _, w := range c.Windows() {
				if err := e.Backend.Hide(w.Handle); err != nil && e.Logger != nil {
					e.Logger.Warn("hide failed", "handle", w.Handle, "error", err)
				}
			}
		}
	}

	switch ws.Mode() {
	case wm.ModeMaximized:
		if win := ws.MaximizedWindow(); win != nil {
			e.applyRect(win.Handle, mon.WorkAreaSize())
		}
	case wm.ModeMonocle:
		if c := ws.MonocleContainer(); c != nil {
			if w := c.FocusedWindow(); w != nil {
				e.applyRect(w.Handle, mon.WorkAreaSize())
			}
		}
	default:
		rects, err := ws.ComputeRects(mon.WorkAreaSize())
		if err != nil {
			if e.Logger != nil {
				e.Logger.Warn("layout compute failed", "workspace", ws.Name(), "error", err)
			}
			return
		}
		containers := ws.Containers().Elements()
		for i, c := range containers {
			if i >= len(rects) {
				break
			}
			for wi, w := range c.Windows() {
				if wi == c.FocusedIndex() {
					e.applyRect(w.Handle, rects[i])
				} else if err := e.Backend.Hide(w.Handle); err != nil && e.Logger != nil {
					e.Logger.Warn("hide failed", "handle", w.Handle, "error", err)
				}
			}
		}
	}

	for _, w := range ws.FloatingWindows() {
		if err := e.Backend.Show(w.Handle); err != nil && e.Logger != nil {
			e.Logger.Warn("show failed", "handle", w.Handle, "error", err)
		}
	}
}

func (e *Engine) applyRect(h wm.Handle, r geom.Rect) {
	if err := e.Backend.MoveResize(h, r); err != nil && e.Logger != nil {
		e.Logger.Warn("move/resize failed", "handle", h, "error", err)
		return
	}
	if err := e.Backend.Show(h); err != nil && e.Logger != nil {
		e.Logger.Warn("show failed", "handle", h, "error", err)
	}
}

func unmarshal(cmd *Command, v interface{}) error {
	if len(cmd.Content) == 0 {
		return fmt.Errorf("command: %s requires a payload", cmd.Type)
	}
	if err := json.Unmarshal(cmd.Content, v); err != nil {
		return fmt.Errorf("command: invalid payload for %s: %w", cmd.Type, err)
	}
	return nil
}

func findWorkspace(m *wm.WindowManager, flatIdx int) (*wm.Monitor, *wm.Workspace) {
	i := 0
	for _, mon := range m.Monitors().Elements() {
		for _, ws := range mon.Workspaces().Elements() {
			if i == flatIdx {
				return mon, ws
			}
			i++
		}
	}
	return nil, nil
}

// findWorkspaceLocal resolves a flat workspace index (counting across
// every monitor's workspaces in order, same numbering as findWorkspace)
// to its owning monitor and the index local to that monitor, as
// Monitor.FocusWorkspace expects.
func findWorkspaceLocal(m *wm.WindowManager, flatIdx int) (*wm.Monitor, int) {
	i := 0
	for _, mon := range m.Monitors().Elements() {
		n := mon.Workspaces().Len()
		if flatIdx < i+n {
			return mon, flatIdx - i
		}
		i += n
	}
	return nil, 0
}

// hideWorkspace hides every window belonging to ws, used when focus_workspace
// switches a monitor away from it so its windows don't linger on screen
// underneath the newly focused workspace.
func (e *Engine) hideWorkspace(ws *wm.Workspace) {
	if e.Backend == nil {
		return
	}
	hide := func(h wm.Handle) {
		if err := e.Backend.Hide(h); err != nil && e.Logger != nil {
			e.Logger.Warn("hide failed", "handle", h, "error", err)
		}
	}
	switch ws.Mode() {
	case wm.ModeMaximized:
		if win := ws.MaximizedWindow(); win != nil {
			hide(win.Handle)
		}
	case wm.ModeMonocle:
		if c := ws.MonocleContainer(); c != nil {
			for _, w := range c.Windows() {
				hide(w.Handle)
			}
		}
	default:
		for _, c := range ws.Containers().Elements() {
			for _, w := range c.Windows() {
				hide(w.Handle)
			}
		}
	}
	for _, w := range ws.FloatingWindows() {
		hide(w.Handle)
	}
}

func monitorAt(m *wm.WindowManager, idx int) *wm.Monitor {
	monitors := m.Monitors().Elements()
	if idx < 0 || idx >= len(monitors) {
		return nil
	}
	return monitors[idx]
}
