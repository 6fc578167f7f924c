package wm

import "fmt"

// CheckDisjoint verifies invariant 2 of spec.md §8: the union of a
// workspace's containers' window sets, monocle window, maximized
// window, and floating windows is disjoint.
func (w *Workspace) CheckDisjoint() error {
	seen := make(map[Handle]string)
	note := func(h Handle, where string) error {
		if prev, ok := seen[h]; ok {
			return fmt.Errorf("wm: handle %d present in both %s and %s", h, prev, where)
		}
		seen[h] = where
		return nil
	}

	for _, c := range w.containers.Elements() {
		for _, win := range c.Windows() {
			if err := note(win.Handle, "tiled container "+c.ID()); err != nil {
				return err
			}
		}
	}
	if w.monocleContainer != nil {
		for _, win := range w.monocleContainer.Windows() {
			if err := note(win.Handle, "monocle container"); err != nil {
				return err
			}
		}
	}
	if w.maximizedWindow != nil {
		if err := note(w.maximizedWindow.Handle, "maximized slot"); err != nil {
			return err
		}
	}
	for _, win := range w.floatingWindows {
		if err := note(win.Handle, "floating set"); err != nil {
			return err
		}
	}
	return nil
}

// CheckResizeAlignment verifies the resize_dimensions-length invariant
// from spec.md §3: alignment with containers.len() is maintained on
// every structural change.
func (w *Workspace) CheckResizeAlignment() error {
	if len(w.resizeDimensions) != w.containers.Len() {
		return fmt.Errorf("wm: resize_dimensions length %d does not match container count %d", len(w.resizeDimensions), w.containers.Len())
	}
	return nil
}

// CheckKnownHwnds verifies invariant 3 of spec.md §8: every entry in
// known_hwnds resolves to a container, or a monocle/maximized/floating
// slot, that actually holds that handle on the named workspace.
func (wm *WindowManager) CheckKnownHwnds() error {
	for h, loc := range wm.knownHwnds {
		mon := wm.monitors.At(loc.MonitorIdx)
		if mon == nil {
			return fmt.Errorf("wm: known_hwnds[%d] points at out-of-range monitor %d", h, loc.MonitorIdx)
		}
		ws := (*mon).Workspaces().At(loc.WorkspaceIdx)
		if ws == nil {
			return fmt.Errorf("wm: known_hwnds[%d] points at out-of-range workspace %d", h, loc.WorkspaceIdx)
		}
		if holdsHandle(*ws, h) {
			continue
		}
		return fmt.Errorf("wm: known_hwnds[%d] points at monitor %d workspace %d, which does not hold it", h, loc.MonitorIdx, loc.WorkspaceIdx)
	}
	return nil
}

func holdsHandle(ws *Workspace, h Handle) bool {
	for _, c := range ws.containers.Elements() {
		if c.Contains(h) {
			return true
		}
	}
	if ws.monocleContainer != nil && ws.monocleContainer.Contains(h) {
		return true
	}
	if ws.maximizedWindow != nil && ws.maximizedWindow.Handle == h {
		return true
	}
	for _, win := range ws.floatingWindows {
		if win.Handle == h {
			return true
		}
	}
	return false
}
