package wm

import (
	"fmt"

	"github.com/1broseidon/komorebi/internal/layout"
)

// MoveContainerDirection swaps the focused container with its
// directional neighbor within a single workspace's tiled set, per the
// layout engine's directional-adjacency contract (§4.2).
func (w *Workspace) MoveContainerDirection(dir layout.Direction) error {
	count := w.containers.Len()
	idx := w.containers.FocusedIdx()
	descriptor := w.SelectLayout()

	if !layout.IsValidDirection(descriptor, dir, idx, count, layout.Options{}) {
		return fmt.Errorf("wm: %s is not a valid direction from index %d", dir, idx)
	}
	target, ok := layout.IndexInDirection(descriptor, dir, idx, count, layout.Options{})
	if !ok {
		return fmt.Errorf("wm: no container in direction %s from index %d", dir, idx)
	}

	w.containers.SwapRespectingLocks(idx, target)
	w.containers.Focus(target)
	w.resizeDimensions[idx], w.resizeDimensions[target] = w.resizeDimensions[target], w.resizeDimensions[idx]
	return nil
}

// FocusDirection moves focus to the container adjacent to the
// currently focused one in the given direction, without reordering.
func (w *Workspace) FocusDirection(dir layout.Direction) error {
	count := w.containers.Len()
	idx := w.containers.FocusedIdx()
	descriptor := w.SelectLayout()

	if !layout.IsValidDirection(descriptor, dir, idx, count, layout.Options{}) {
		return fmt.Errorf("wm: %s is not a valid direction from index %d", dir, idx)
	}
	target, ok := layout.IndexInDirection(descriptor, dir, idx, count, layout.Options{})
	if !ok {
		return fmt.Errorf("wm: no container in direction %s from index %d", dir, idx)
	}
	w.containers.Focus(target)
	return nil
}

// CycleFocus moves the workspace's focused container forward (delta=1)
// or backward (delta=-1) within the tiled ring, wrapping around.
func (w *Workspace) CycleFocus(delta int) {
	n := w.containers.Len()
	if n == 0 {
		return
	}
	next := ((w.containers.FocusedIdx()+delta)%n + n) % n
	w.containers.Focus(next)
}

// PromoteFocusedToPrimary swaps the focused container into index 0,
// the "promote" command of spec.md §4.5.
func (w *Workspace) PromoteFocusedToPrimary() {
	idx := w.containers.FocusedIdx()
	if idx == 0 || w.containers.Len() == 0 {
		return
	}
	w.containers.SwapRespectingLocks(0, idx)
	w.containers.Focus(0)
	w.resizeDimensions[0], w.resizeDimensions[idx] = w.resizeDimensions[idx], w.resizeDimensions[0]
}

// MoveContainerToWorkspace relocates the focused container of src to
// dst, at dst's end, and focuses it there.
func MoveContainerToWorkspace(src, dst *Workspace) error {
	idx := src.containers.FocusedIdx()
	c, ok := src.removeContainerAt(idx)
	if !ok {
		return fmt.Errorf("wm: no focused container to move")
	}
	final := dst.insertContainerAt(dst.containers.Len(), c)
	dst.containers.Focus(final)
	return nil
}

// MoveContainerToMonitor relocates the focused container of src to the
// focused workspace of dstMonitor.
func MoveContainerToMonitor(src *Workspace, dstMonitor *Monitor) error {
	dst := dstMonitor.FocusedWorkspace()
	if dst == nil {
		return fmt.Errorf("wm: destination monitor has no focused workspace")
	}
	return MoveContainerToWorkspace(src, dst)
}
