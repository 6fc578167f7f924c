package wm

import (
	"fmt"
	"sync"

	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/ring"
)

// FocusFollowsMouseMode selects between the two subtly different
// focus-follows-mouse implementations the source exposed; spec.md §9
// leaves open which, if either, should be considered canonical, so
// both are preserved as configuration modes.
type FocusFollowsMouseMode int

const (
	FocusFollowsMouseOff FocusFollowsMouseMode = iota
	FocusFollowsMouseNative
	FocusFollowsMouseCustom
)

// CrossMonitorMoveBehaviour governs what happens when a container move
// command would cross a monitor boundary.
type CrossMonitorMoveBehaviour int

const (
	CrossMonitorMoveFollow CrossMonitorMoveBehaviour = iota
	CrossMonitorMoveNoOp
)

// UnmanagedWindowOperationBehaviour governs how move/resize/focus
// commands behave when the foreground window is not managed.
type UnmanagedWindowOperationBehaviour int

const (
	UnmanagedOperationNoOp UnmanagedWindowOperationBehaviour = iota
	UnmanagedOperationOperate
)

// KnownLocation is the (monitor, workspace) pair a handle was last
// known to occupy, the inverse-lookup entry in known_hwnds (§9: the
// map is the single source of truth for the inverse lookup; individual
// records never hold parent references).
type KnownLocation struct {
	MonitorIdx   int
	WorkspaceIdx int
}

// PendingMoveOp tracks an in-flight drag between MoveResizeStart and
// MoveResizeEnd, per spec.md §4.4/§9's "coroutine-like control" note.
type PendingMoveOp struct {
	MonitorIdx   int
	WorkspaceIdx int
	ContainerIdx int
}

type sidelinedMonitor struct {
	monitor *Monitor
}

// WindowManager is the root of the state tree. It owns global policy
// flags and the single mutex serializing every command and OS-event
// mutation, matching the teacher's Tiler mutex pattern.
type WindowManager struct {
	mu sync.RWMutex

	monitors       *ring.Ring[*Monitor]
	workAreaOffset *geom.Rect
	resizeDelta    int

	newWindowBehaviour                InsertBehaviour
	crossMonitorMoveBehaviour         CrossMonitorMoveBehaviour
	unmanagedWindowOperationBehaviour UnmanagedWindowOperationBehaviour
	focusFollowsMouse                 FocusFollowsMouseMode
	mouseFollowsFocus                 bool

	isPaused        bool
	pendingMoveOp   *PendingMoveOp
	hasPendingRaise bool

	knownHwnds map[Handle]KnownLocation

	virtualDesktopID string

	sidelineCache map[string]sidelinedMonitor
}

// NewWindowManager builds an empty window manager.
func NewWindowManager() *WindowManager {
	return &WindowManager{
		monitors:      ring.New[*Monitor](),
		knownHwnds:    make(map[Handle]KnownLocation),
		sidelineCache: make(map[string]sidelinedMonitor),
		resizeDelta:   50,
	}
}

// Lock acquires the root write lock for the duration of one command or
// OS event, matching spec.md §5's single-writer model.
func (wm *WindowManager) Lock()   { wm.mu.Lock() }
func (wm *WindowManager) Unlock() { wm.mu.Unlock() }

// RLock acquires a short read lock, for reconcilers and the
// subscription serializer cloning the subset of state they need.
func (wm *WindowManager) RLock()   { wm.mu.RLock() }
func (wm *WindowManager) RUnlock() { wm.mu.RUnlock() }

// Monitors returns the monitor ring. Callers must hold at least RLock.
func (wm *WindowManager) Monitors() *ring.Ring[*Monitor] { return wm.monitors }

// IsPaused reports the global pause flag.
func (wm *WindowManager) IsPaused() bool { return wm.isPaused }

// SetPaused flips the global pause flag. While paused, OS events are
// dropped and all commands but TogglePause/Stop are suppressed by the
// caller (the command dispatcher), per spec.md §5 Cancellation.
func (wm *WindowManager) SetPaused(v bool) { wm.isPaused = v }

// WorkAreaOffset returns the configured global work-area offset, or
// nil if none is set.
func (wm *WindowManager) WorkAreaOffset() *geom.Rect { return wm.workAreaOffset }

// SetWorkAreaOffset configures (or clears, with nil) the global
// work-area offset reported in state snapshots.
func (wm *WindowManager) SetWorkAreaOffset(r *geom.Rect) { wm.workAreaOffset = r }

// NewWindowBehaviour returns the configured container-insertion
// behaviour for newly managed windows.
func (wm *WindowManager) NewWindowBehaviour() InsertBehaviour { return wm.newWindowBehaviour }

// SetNewWindowBehaviour configures the container-insertion behaviour
// for newly managed windows.
func (wm *WindowManager) SetNewWindowBehaviour(b InsertBehaviour) { wm.newWindowBehaviour = b }

// CrossMonitorMoveBehaviour returns the configured cross-monitor move
// behaviour.
func (wm *WindowManager) CrossMonitorMoveBehaviour() CrossMonitorMoveBehaviour {
	return wm.crossMonitorMoveBehaviour
}

// SetCrossMonitorMoveBehaviour configures the cross-monitor move
// behaviour.
func (wm *WindowManager) SetCrossMonitorMoveBehaviour(b CrossMonitorMoveBehaviour) {
	wm.crossMonitorMoveBehaviour = b
}

// UnmanagedWindowOperationBehaviour returns the configured behaviour
// for move/resize/focus commands targeting an unmanaged foreground
// window.
func (wm *WindowManager) UnmanagedWindowOperationBehaviour() UnmanagedWindowOperationBehaviour {
	return wm.unmanagedWindowOperationBehaviour
}

// SetUnmanagedWindowOperationBehaviour configures the behaviour for
// move/resize/focus commands targeting an unmanaged foreground window.
func (wm *WindowManager) SetUnmanagedWindowOperationBehaviour(b UnmanagedWindowOperationBehaviour) {
	wm.unmanagedWindowOperationBehaviour = b
}

// ResizeDelta returns the configured pixel step used by resize
// commands.
func (wm *WindowManager) ResizeDelta() int { return wm.resizeDelta }

// SetResizeDelta sets the configured pixel step used by resize
// commands.
func (wm *WindowManager) SetResizeDelta(d int) { wm.resizeDelta = d }

// FocusFollowsMouse returns the configured mode.
func (wm *WindowManager) FocusFollowsMouse() FocusFollowsMouseMode { return wm.focusFollowsMouse }

// SetFocusFollowsMouse sets the configured mode.
func (wm *WindowManager) SetFocusFollowsMouse(mode FocusFollowsMouseMode) {
	wm.focusFollowsMouse = mode
}

// MouseFollowsFocus reports the configured flag.
func (wm *WindowManager) MouseFollowsFocus() bool { return wm.mouseFollowsFocus }

// SetMouseFollowsFocus sets the configured flag.
func (wm *WindowManager) SetMouseFollowsFocus(v bool) { wm.mouseFollowsFocus = v }

// PendingMoveOp returns the in-flight drag operation, if any.
func (wm *WindowManager) PendingMoveOp() *PendingMoveOp { return wm.pendingMoveOp }

// BeginMoveOp records a MoveResizeStart.
func (wm *WindowManager) BeginMoveOp(op PendingMoveOp) { wm.pendingMoveOp = &op }

// EndMoveOp clears the in-flight drag on MoveResizeEnd.
func (wm *WindowManager) EndMoveOp() { wm.pendingMoveOp = nil }

// HasPendingRaise reports the pending-raise flag surfaced in state
// query payloads.
func (wm *WindowManager) HasPendingRaise() bool { return wm.hasPendingRaise }

// SetPendingRaise sets the pending-raise flag.
func (wm *WindowManager) SetPendingRaise(v bool) { wm.hasPendingRaise = v }

// VirtualDesktopID returns the current virtual desktop identifier.
func (wm *WindowManager) VirtualDesktopID() string { return wm.virtualDesktopID }

// SetVirtualDesktopID sets the current virtual desktop identifier.
func (wm *WindowManager) SetVirtualDesktopID(id string) { wm.virtualDesktopID = id }

// Locate returns the known (monitor, workspace) location of h, per
// known_hwnds.
func (wm *WindowManager) Locate(h Handle) (KnownLocation, bool) {
	loc, ok := wm.knownHwnds[h]
	return loc, ok
}

// remember records h's known location, overwriting any prior entry.
func (wm *WindowManager) remember(h Handle, loc KnownLocation) {
	wm.knownHwnds[h] = loc
}

// forget drops h from known_hwnds.
func (wm *WindowManager) forget(h Handle) {
	delete(wm.knownHwnds, h)
}

// KnownHandles returns a snapshot of every tracked handle, for
// persistence and for the orphan reaper's liveness scan.
func (wm *WindowManager) KnownHandles() []Handle {
	out := make([]Handle, 0, len(wm.knownHwnds))
	for h := range wm.knownHwnds {
		out = append(out, h)
	}
	return out
}

// AddMonitor appends a freshly enumerated monitor.
func (wm *WindowManager) AddMonitor(m *Monitor) {
	wm.monitors.Append(m)
}

// FocusedMonitor returns the currently focused monitor.
func (wm *WindowManager) FocusedMonitor() *Monitor {
	m := wm.monitors.Focused()
	if m == nil {
		return nil
	}
	return *m
}

// ManageWindow places a newly classified window into the destination
// monitor/workspace's tiled set (or, if dest is nil, the focused
// monitor's focused workspace), and records it in known_hwnds.
func (wm *WindowManager) ManageWindow(win Window, dest *KnownLocation) error {
	monitorIdx := wm.monitors.FocusedIdx()
	if dest != nil {
		monitorIdx = dest.MonitorIdx
	}
	mon := wm.monitors.At(monitorIdx)
	if mon == nil {
		return fmt.Errorf("wm: monitor index %d out of range", monitorIdx)
	}

	workspaceIdx := (*mon).Workspaces().FocusedIdx()
	if dest != nil {
		workspaceIdx = dest.WorkspaceIdx
	}
	ws := (*mon).Workspaces().At(workspaceIdx)
	if ws == nil {
		return fmt.Errorf("wm: workspace index %d out of range on monitor %d", workspaceIdx, monitorIdx)
	}

	(*ws).InsertWindow(win, wm.newWindowBehaviour)
	wm.remember(win.Handle, KnownLocation{MonitorIdx: monitorIdx, WorkspaceIdx: workspaceIdx})
	return nil
}

// UnmanageWindow removes h from wherever known_hwnds says it lives and
// drops the known_hwnds entry. Used for both explicit Unmanage commands
// and synthesized Destroy events.
func (wm *WindowManager) UnmanageWindow(h Handle) bool {
	loc, ok := wm.knownHwnds[h]
	if !ok {
		return false
	}
	mon := wm.monitors.At(loc.MonitorIdx)
	if mon == nil {
		wm.forget(h)
		return true
	}
	ws := (*mon).Workspaces().At(loc.WorkspaceIdx)
	if ws != nil {
		(*ws).RemoveWindow(h)
	}
	wm.forget(h)
	return true
}

// DisconnectMonitor implements the §4.7 monitor-reconciler disconnect
// path and S5: removes the monitor at idx from the ring, appends its
// workspaces' containers onto the primary monitor's focused workspace
// (preserving that workspace's focused-container index), and sidelines
// the monitor's full prior state in a cache keyed by device id so a
// later reconnect of the same device can restore it verbatim.
func (wm *WindowManager) DisconnectMonitor(idx int) error {
	mon := wm.monitors.At(idx)
	if mon == nil {
		return fmt.Errorf("wm: monitor index %d out of range", idx)
	}
	removed := *mon

	wm.sidelineCache[removed.DeviceID()] = sidelinedMonitor{monitor: removed}

	primary := wm.monitors.At(0)
	var primaryWs *Workspace
	if idx != 0 && primary != nil {
		primaryWs = (*primary).FocusedWorkspace()
	}

	if primaryWs != nil {
		focusedIdx := primaryWs.Containers().FocusedIdx()
		primaryWorkspaceIdx := (*primary).Workspaces().FocusedIdx()
		for _, orphanedWs := range removed.Workspaces().Elements() {
			for _, c := range orphanedWs.Containers().Elements() {
				primaryWs.insertContainerAt(primaryWs.Containers().Len(), c)
				for _, w := range c.Windows() {
					wm.remember(w.Handle, KnownLocation{MonitorIdx: 0, WorkspaceIdx: primaryWorkspaceIdx})
				}
			}
		}
		primaryWs.Containers().Focus(focusedIdx)
	}

	wm.removeMonitorAt(idx)
	return nil
}

func (wm *WindowManager) removeMonitorAt(idx int) {
	wm.monitors.Remove(idx)
}

// ReconnectMonitor implements the reconnect half of S5: if deviceID was
// previously sidelined, its workspaces and offsets are restored
// verbatim and the cache entry is cleared; otherwise a fresh monitor
// with defaultWorkspaceCount workspaces is created via makeWorkspace.
func (wm *WindowManager) ReconnectMonitor(id int, deviceID, name string, size geom.Rect, defaultWorkspaceCount int, makeWorkspace func(idx int) *Workspace) *Monitor {
	if cached, ok := wm.sidelineCache[deviceID]; ok {
		delete(wm.sidelineCache, deviceID)
		restored := cached.monitor
		wm.monitors.Append(restored)
		return restored
	}

	fresh := NewMonitor(id, deviceID, name, size)
	fresh.EnsureWorkspaceCount(defaultWorkspaceCount, makeWorkspace)
	wm.monitors.Append(fresh)
	return fresh
}
