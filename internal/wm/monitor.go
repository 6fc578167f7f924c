package wm

import (
	"fmt"

	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/ring"
)

// Monitor is a physical display holding an ordered set of workspaces.
// At least one workspace always exists.
type Monitor struct {
	id       int
	deviceID string
	name     string

	size          geom.Rect
	workAreaSize  geom.Rect
	workAreaOffset *geom.Rect

	windowBasedWorkAreaOffset      *geom.Rect
	windowBasedWorkAreaOffsetLimit int

	workspaces *ring.Ring[*Workspace]

	workspaceNames      map[int]string
	lastFocusedWorkspace *int
}

// NewMonitor builds a monitor with an empty workspace ring; callers add
// workspaces (for example with EnsureWorkspaceCount) before use.
func NewMonitor(id int, deviceID, name string, size geom.Rect) *Monitor {
	m := &Monitor{
		id:           id,
		deviceID:     deviceID,
		name:         name,
		size:         size,
		workAreaSize: size,
		workspaces:   ring.New[*Workspace](),
		workspaceNames: make(map[int]string),
	}
	return m
}

// ID returns the monitor's opaque handle.
func (m *Monitor) ID() int { return m.id }

// DeviceID returns the monitor's stable serial-like identifier, used as
// the sideline-cache key across disconnect/reconnect.
func (m *Monitor) DeviceID() string { return m.deviceID }

// Name returns the monitor's display name.
func (m *Monitor) Name() string { return m.name }

// Size returns the monitor's full physical rectangle.
func (m *Monitor) Size() geom.Rect { return m.size }

// SetSize updates the monitor's physical rectangle (e.g. on a
// resolution change).
func (m *Monitor) SetSize(r geom.Rect) { m.size = r }

// WorkAreaSize returns the usable rectangle after shell-reserved struts
// and any configured work-area offset.
func (m *Monitor) WorkAreaSize() geom.Rect {
	area := m.workAreaSize
	if m.workAreaOffset != nil {
		area = area.ApplyMargin(geom.Margin{
			Left:   m.workAreaOffset.Left,
			Top:    m.workAreaOffset.Top,
			Right:  m.workAreaOffset.Right,
			Bottom: m.workAreaOffset.Bottom,
		})
	}
	return area
}

// SetWorkAreaSize updates the monitor's raw usable rectangle, before
// any configured offset.
func (m *Monitor) SetWorkAreaSize(r geom.Rect) { m.workAreaSize = r }

// SetWorkAreaOffset sets (or clears, with nil) the configured
// work-area offset.
func (m *Monitor) SetWorkAreaOffset(r *geom.Rect) { m.workAreaOffset = r }

// Workspaces returns the monitor's workspace ring.
func (m *Monitor) Workspaces() *ring.Ring[*Workspace] { return m.workspaces }

// FocusedWorkspace returns the monitor's currently focused workspace.
func (m *Monitor) FocusedWorkspace() *Workspace {
	ws := m.workspaces.Focused()
	if ws == nil {
		return nil
	}
	return *ws
}

// WorkspaceName returns the configured name for the workspace at idx,
// if any.
func (m *Monitor) WorkspaceName(idx int) (string, bool) {
	name, ok := m.workspaceNames[idx]
	return name, ok
}

// SetWorkspaceName configures a display name for the workspace at idx.
func (m *Monitor) SetWorkspaceName(idx int, name string) {
	m.workspaceNames[idx] = name
}

// EnsureWorkspaceCount eagerly allocates workspaces up to count,
// building each new one with makeWorkspace(idx).
func (m *Monitor) EnsureWorkspaceCount(count int, makeWorkspace func(idx int) *Workspace) {
	for m.workspaces.Len() < count {
		m.workspaces.Append(makeWorkspace(m.workspaces.Len()))
	}
}

// LastFocusedWorkspace returns the index of the workspace focused
// before the current one switched, if recorded.
func (m *Monitor) LastFocusedWorkspace() (int, bool) {
	if m.lastFocusedWorkspace == nil {
		return 0, false
	}
	return *m.lastFocusedWorkspace, true
}

// FocusWorkspace changes the focused workspace index, recording the
// previously focused index for LastFocusedWorkspace.
func (m *Monitor) FocusWorkspace(idx int) error {
	if idx < 0 || idx >= m.workspaces.Len() {
		return fmt.Errorf("wm: workspace index %d out of range", idx)
	}
	prev := m.workspaces.FocusedIdx()
	m.workspaces.Focus(idx)
	m.lastFocusedWorkspace = &prev
	return nil
}
