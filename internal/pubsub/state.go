// Package pubsub implements the per-subscriber notification fan-out
// described in spec.md §6: each subscription owns a deterministic
// socket path, and every published event carries a full state
// snapshot, optionally deduplicated when unchanged.
package pubsub

import (
	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/wm"
)

// WindowState is the serialized form of a managed window: only the
// handle, since every other attribute is a live shell query the
// subscriber can make itself if it needs more than the handle.
type WindowState struct {
	Handle wm.Handle `json:"handle"`
}

// ContainerState is the serialized form of one tiled container.
type ContainerState struct {
	ID       string        `json:"id"`
	Locked   bool          `json:"locked"`
	Focused  int           `json:"focused_window_idx"`
	Windows  []WindowState `json:"windows"`
}

// WorkspaceState is the serialized form of one workspace.
type WorkspaceState struct {
	Name             string           `json:"name"`
	Mode             wm.VisualMode    `json:"mode"`
	Tile             bool             `json:"tile"`
	WorkspacePadding int              `json:"workspace_padding"`
	ContainerPadding int              `json:"container_padding"`
	FocusedIdx       int              `json:"focused_container_idx"`
	Containers       []ContainerState `json:"containers"`
	Monocle          *ContainerState  `json:"monocle_container,omitempty"`
	Maximized        *WindowState     `json:"maximized_window,omitempty"`
	Floating         []WindowState    `json:"floating_windows"`
}

// MonitorState is the serialized form of one monitor.
type MonitorState struct {
	ID              int              `json:"id"`
	DeviceID        string           `json:"device_id"`
	Name            string           `json:"name"`
	Size            geom.Rect        `json:"size"`
	WorkAreaSize    geom.Rect        `json:"work_area_size"`
	FocusedIdx      int              `json:"focused_workspace_idx"`
	Workspaces      []WorkspaceState `json:"workspaces"`
}

// State is the full snapshot written on every notification, per
// spec.md §6's "State query payload".
type State struct {
	Monitors                  []MonitorState               `json:"monitors"`
	FocusedMonitorIdx          int                          `json:"focused_monitor_idx"`
	IsPaused                   bool                         `json:"is_paused"`
	ResizeDelta                int                          `json:"resize_delta"`
	NewWindowBehaviour         wm.InsertBehaviour           `json:"new_window_behaviour"`
	CrossMonitorMoveBehaviour  wm.CrossMonitorMoveBehaviour `json:"cross_monitor_move_behaviour"`
	WorkAreaOffset             *geom.Rect                   `json:"work_area_offset,omitempty"`
	FocusFollowsMouse          wm.FocusFollowsMouseMode     `json:"focus_follows_mouse"`
	MouseFollowsFocus          bool                         `json:"mouse_follows_focus"`
	HasPendingRaise            bool                         `json:"has_pending_raise"`
	VirtualDesktopID           string                       `json:"virtual_desktop_id"`
}

// GlobalState is the trimmed payload for the global_state query
// command: every WindowManager-wide policy flag, without the per-
// monitor tree that the state query's State carries.
type GlobalState struct {
	IsPaused                  bool                         `json:"is_paused"`
	ResizeDelta               int                          `json:"resize_delta"`
	NewWindowBehaviour        wm.InsertBehaviour           `json:"new_window_behaviour"`
	CrossMonitorMoveBehaviour wm.CrossMonitorMoveBehaviour `json:"cross_monitor_move_behaviour"`
	WorkAreaOffset            *geom.Rect                   `json:"work_area_offset,omitempty"`
	FocusFollowsMouse         wm.FocusFollowsMouseMode     `json:"focus_follows_mouse"`
	MouseFollowsFocus         bool                         `json:"mouse_follows_focus"`
	HasPendingRaise           bool                         `json:"has_pending_raise"`
	VirtualDesktopID          string                       `json:"virtual_desktop_id"`
}

// BuildGlobalState clones the manager's WindowManager-wide policy flags
// under a read lock, without walking the monitor tree.
func BuildGlobalState(m *wm.WindowManager) GlobalState {
	m.RLock()
	defer m.RUnlock()
	return GlobalState{
		IsPaused:                  m.IsPaused(),
		ResizeDelta:               m.ResizeDelta(),
		NewWindowBehaviour:        m.NewWindowBehaviour(),
		CrossMonitorMoveBehaviour: m.CrossMonitorMoveBehaviour(),
		WorkAreaOffset:            m.WorkAreaOffset(),
		FocusFollowsMouse:         m.FocusFollowsMouse(),
		MouseFollowsFocus:         m.MouseFollowsFocus(),
		HasPendingRaise:           m.HasPendingRaise(),
		VirtualDesktopID:          m.VirtualDesktopID(),
	}
}

// BuildState clones the manager's observable state under a read lock.
// It never queries the shell: every window attribute beyond the handle
// is the caller's responsibility to look up live.
func BuildState(m *wm.WindowManager) State {
	m.RLock()
	defer m.RUnlock()

	monitors := m.Monitors().Elements()
	out := State{
		Monitors:                  make([]MonitorState, 0, len(monitors)),
		FocusedMonitorIdx:         m.Monitors().FocusedIdx(),
		IsPaused:                  m.IsPaused(),
		ResizeDelta:               m.ResizeDelta(),
		NewWindowBehaviour:        m.NewWindowBehaviour(),
		CrossMonitorMoveBehaviour: m.CrossMonitorMoveBehaviour(),
		WorkAreaOffset:            m.WorkAreaOffset(),
		FocusFollowsMouse:         m.FocusFollowsMouse(),
		MouseFollowsFocus:         m.MouseFollowsFocus(),
		HasPendingRaise:           m.HasPendingRaise(),
		VirtualDesktopID:          m.VirtualDesktopID(),
	}

	for _, mon := range monitors {
		out.Monitors = append(out.Monitors, buildMonitorState(mon))
	}
	return out
}

func buildMonitorState(mon *wm.Monitor) MonitorState {
	workspaces := mon.Workspaces().Elements()
	ms := MonitorState{
		ID:           mon.ID(),
		DeviceID:     mon.DeviceID(),
		Name:         mon.Name(),
		Size:         mon.Size(),
		WorkAreaSize: mon.WorkAreaSize(),
		FocusedIdx:   mon.Workspaces().FocusedIdx(),
		Workspaces:   make([]WorkspaceState, 0, len(workspaces)),
	}
	for _, ws := range workspaces {
		ms.Workspaces = append(ms.Workspaces, buildWorkspaceState(ws))
	}
	return ms
}

func buildWorkspaceState(ws *wm.Workspace) WorkspaceState {
	containers := ws.Containers().Elements()
	out := WorkspaceState{
		Name:             ws.Name(),
		Mode:             ws.Mode(),
		Tile:             ws.Tile(),
		WorkspacePadding: ws.WorkspacePadding(),
		ContainerPadding: ws.ContainerPadding(),
		FocusedIdx:       ws.Containers().FocusedIdx(),
		Containers:       make([]ContainerState, 0, len(containers)),
		Floating:         make([]WindowState, 0, len(ws.FloatingWindows())),
	}
	for _, c := range containers {
		out.Containers = append(out.Containers, buildContainerState(c))
	}
	if mc := ws.MonocleContainer(); mc != nil {
		cs := buildContainerState(mc)
		out.Monocle = &cs
	}
	if win := ws.MaximizedWindow(); win != nil {
		out.Maximized = &WindowState{Handle: win.Handle}
	}
	for _, w := range ws.FloatingWindows() {
		out.Floating = append(out.Floating, WindowState{Handle: w.Handle})
	}
	return out
}

func buildContainerState(c *wm.Container) ContainerState {
	windows := c.Windows()
	cs := ContainerState{
		ID:      c.ID(),
		Locked:  c.IsLocked(),
		Focused: c.FocusedIndex(),
		Windows: make([]WindowState, 0, len(windows)),
	}
	for _, w := range windows {
		cs.Windows = append(cs.Windows, WindowState{Handle: w.Handle})
	}
	return cs
}
