package quicksave

import (
	"fmt"

	"github.com/1broseidon/komorebi/internal/command"
	"github.com/1broseidon/komorebi/internal/wm"
)

// Store implements command.Persistence against the focused monitor's
// focused workspace, reading and writing via Save/Load.
type Store struct{}

var _ command.Persistence = Store{}

// Save persists the focused workspace's resize-dimension array to path.
func (Store) Save(path string, m *wm.WindowManager) error {
	ws := focusedWorkspace(m)
	if ws == nil {
		return fmt.Errorf("quicksave: no focused workspace")
	}
	return Save(path, ws.ResizeDimensions())
}

// Load restores a previously-saved resize-dimension array from path
// onto the focused workspace.
func (Store) Load(path string, m *wm.WindowManager) error {
	ws := focusedWorkspace(m)
	if ws == nil {
		return fmt.Errorf("quicksave: no focused workspace")
	}
	dims, err := Load(path)
	if err != nil {
		return err
	}
	ws.RestoreResizeDimensions(dims)
	return nil
}

func focusedWorkspace(m *wm.WindowManager) *wm.Workspace {
	mon := m.FocusedMonitor()
	if mon == nil {
		return nil
	}
	return mon.FocusedWorkspace()
}
