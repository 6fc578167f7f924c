package wm

import (
	"errors"
	"fmt"
	"sort"

	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/layout"
	"github.com/1broseidon/komorebi/internal/ring"
)

// VisualMode names a workspace's mutually exclusive visual states.
// Precedence on read is Maximized > Monocle > Tiled.
type VisualMode int

const (
	ModeTiled VisualMode = iota
	ModeMonocle
	ModeMaximized
)

// FloatPlacement selects where a newly floated window is positioned.
type FloatPlacement int

const (
	FloatPlacementNone FloatPlacement = iota
	FloatPlacementCenter
	FloatPlacementCenterAndResize
)

// InsertBehaviour selects where a brand new window lands among a
// workspace's containers.
type InsertBehaviour int

const (
	InsertAfterFocused InsertBehaviour = iota
	InsertAtEnd
)

// LayoutRule maps a container-count threshold to a layout descriptor.
// The workspace selects the rule with the greatest threshold that does
// not exceed the current container count.
type LayoutRule struct {
	MinContainerCount int
	Layout            layout.Descriptor
}

type floatRestore struct {
	container *Container
	idx       int
}

// Workspace is one tile tree plus its sidecar visual-mode slots.
type Workspace struct {
	name string

	containers *ring.LockedRing[*Container]

	monocleContainer    *Container
	monocleRestoreIndex int

	maximizedWindow           *Window
	maximizedRestoreContainer *Container
	maximizedRestoreIndex     int

	floatingWindows []Window
	floatRestores   map[Handle]floatRestore

	layoutDescriptor layout.Descriptor
	layoutFlip       layout.FlipOptions
	layoutRules      []LayoutRule

	workspacePadding int
	containerPadding int

	// resizeDimensions is index-aligned with containers; nil entries
	// mean no per-container resize override.
	resizeDimensions []*geom.ResizeDelta

	tile bool

	workAreaOffset           *geom.Rect
	windowContainerBehaviour InsertBehaviour
	floatOverride            *FloatPlacement
}

// NewWorkspace builds an empty workspace with the given name and
// default layout.
func NewWorkspace(name string, descriptor layout.Descriptor) *Workspace {
	return &Workspace{
		name:             name,
		containers:       ring.NewLocked[*Container](),
		floatRestores:    make(map[Handle]floatRestore),
		layoutDescriptor: descriptor,
		tile:             true,
	}
}

// Name returns the workspace's display name.
func (w *Workspace) Name() string { return w.name }

// SetName renames the workspace.
func (w *Workspace) SetName(name string) { w.name = name }

// Mode reports the workspace's current visual mode.
func (w *Workspace) Mode() VisualMode {
	if w.maximizedWindow != nil {
		return ModeMaximized
	}
	if w.monocleContainer != nil {
		return ModeMonocle
	}
	return ModeTiled
}

// Containers returns the tiled container ring.
func (w *Workspace) Containers() *ring.LockedRing[*Container] { return w.containers }

// MonocleContainer returns the container filling the work area in
// monocle mode, or nil.
func (w *Workspace) MonocleContainer() *Container { return w.monocleContainer }

// MaximizedWindow returns the window filling the work area in
// maximized mode, or nil.
func (w *Workspace) MaximizedWindow() *Window { return w.maximizedWindow }

// FloatingWindows returns the overlay set, never tiled.
func (w *Workspace) FloatingWindows() []Window { return w.floatingWindows }

// Tile reports whether the workspace's tiling master switch is on.
func (w *Workspace) Tile() bool { return w.tile }

// SetTile flips the tiling master switch.
func (w *Workspace) SetTile(v bool) { w.tile = v }

// WorkspacePadding returns the padding applied around the whole tiled
// area.
func (w *Workspace) WorkspacePadding() int { return w.workspacePadding }

// SetWorkspacePadding sets the padding applied around the whole tiled
// area.
func (w *Workspace) SetWorkspacePadding(p int) { w.workspacePadding = p }

// ContainerPadding returns the padding applied around each container.
func (w *Workspace) ContainerPadding() int { return w.containerPadding }

// SetContainerPadding sets the padding applied around each container.
func (w *Workspace) SetContainerPadding(p int) { w.containerPadding = p }

// SetLayoutRules replaces the container-count threshold rules used by
// SelectLayout.
func (w *Workspace) SetLayoutRules(rules []LayoutRule) {
	sorted := append([]LayoutRule(nil), rules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinContainerCount < sorted[j].MinContainerCount })
	w.layoutRules = sorted
}

// SelectLayout picks the active layout descriptor: the configured rule
// with the greatest threshold not exceeding the current container
// count, falling back to the workspace's own default descriptor.
func (w *Workspace) SelectLayout() layout.Descriptor {
	count := w.containers.Len()
	descriptor := w.layoutDescriptor
	for _, rule := range w.layoutRules {
		if rule.MinContainerCount <= count {
			descriptor = rule.Layout
		}
	}
	return descriptor
}

// DefaultLayout returns the workspace's fallback layout descriptor.
func (w *Workspace) DefaultLayout() layout.Descriptor { return w.layoutDescriptor }

// SetDefaultLayout sets the workspace's fallback layout descriptor.
func (w *Workspace) SetDefaultLayout(d layout.Descriptor) { w.layoutDescriptor = d }

// SetFlip sets the workspace's axis-flip configuration.
func (w *Workspace) SetFlip(f layout.FlipOptions) { w.layoutFlip = f }

// ResizeDelta returns the stored resize delta for the container at idx,
// or the zero delta if none is set.
func (w *Workspace) ResizeDelta(idx int) geom.ResizeDelta {
	if idx < 0 || idx >= len(w.resizeDimensions) || w.resizeDimensions[idx] == nil {
		return geom.ResizeDelta{}
	}
	return *w.resizeDimensions[idx]
}

// SetResizeDelta stores a resize delta for the container at idx,
// clamped against base before storage per spec.md §4.2.
func (w *Workspace) SetResizeDelta(idx int, delta geom.ResizeDelta, base geom.Rect) error {
	if idx < 0 || idx >= len(w.resizeDimensions) {
		return fmt.Errorf("wm: container index %d out of range", idx)
	}
	clamped := delta.Clamp(base)
	w.resizeDimensions[idx] = &clamped
	return nil
}

// ResizeDimensions returns a copy of the full per-container resize
// dimension array, for quick-save.
func (w *Workspace) ResizeDimensions() []*geom.ResizeDelta {
	out := make([]*geom.ResizeDelta, len(w.resizeDimensions))
	for i, d := range w.resizeDimensions {
		if d == nil {
			continue
		}
		cp := *d
		out[i] = &cp
	}
	return out
}

// RestoreResizeDimensions overwrites the resize dimension array, used
// by quick-load. The supplied slice is truncated or nil-padded to match
// the current container count, preserving the alignment invariant.
func (w *Workspace) RestoreResizeDimensions(dims []*geom.ResizeDelta) {
	count := w.containers.Len()
	restored := make([]*geom.ResizeDelta, count)
	for i := 0; i < count && i < len(dims); i++ {
		if dims[i] == nil {
			continue
		}
		cp := *dims[i]
		restored[i] = &cp
	}
	w.resizeDimensions = restored
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// insertContainerAt inserts c, respecting locks, and keeps
// resizeDimensions index-aligned with the container ring.
func (w *Workspace) insertContainerAt(idx int, c *Container) int {
	final := w.containers.InsertRespectingLocks(idx, c)
	if final > len(w.resizeDimensions) {
		final = len(w.resizeDimensions)
	}
	w.resizeDimensions = append(w.resizeDimensions, nil)
	copy(w.resizeDimensions[final+1:], w.resizeDimensions[final:])
	w.resizeDimensions[final] = nil
	return final
}

// removeContainerAt removes the container at idx, keeping
// resizeDimensions index-aligned with the container ring.
func (w *Workspace) removeContainerAt(idx int) (*Container, bool) {
	c, ok := w.containers.RemoveRespectingLocks(idx)
	if ok && idx >= 0 && idx < len(w.resizeDimensions) {
		w.resizeDimensions = append(w.resizeDimensions[:idx], w.resizeDimensions[idx+1:]...)
	}
	return c, ok
}

// findContainer locates the tiled container holding h.
func (w *Workspace) findContainer(h Handle) (idx int, c *Container, ok bool) {
	for i, cp := range w.containers.Elements() {
		if cp.Contains(h) {
			return i, cp, true
		}
	}
	return 0, nil, false
}

// ContainerIndex reports the tiled container index holding h, for
// callers outside this package (the OS-event dispatcher's
// MoveResizeStart handling) that need a container index without a
// direct findContainer reference.
func (w *Workspace) ContainerIndex(h Handle) (int, bool) {
	idx, _, ok := w.findContainer(h)
	return idx, ok
}

// FocusWindow focuses the tiled container holding h, and h within it,
// for OS-driven focus-change events (spec.md §4.4). Returns false if h
// is not in this workspace's tiled set.
func (w *Workspace) FocusWindow(h Handle) bool {
	idx, c, ok := w.findContainer(h)
	if !ok {
		return false
	}
	w.containers.Focus(idx)
	if wi := c.IndexOf(h); wi >= 0 {
		c.Focus(wi)
	}
	return true
}

// InsertWindow places a brand new window into the tiled set, per
// behaviour, creating a fresh container for it.
func (w *Workspace) InsertWindow(win Window, behaviour InsertBehaviour) int {
	c := NewContainer(NewContainerID())
	c.AddWindow(win)

	idx := w.containers.Len()
	if behaviour == InsertAfterFocused && w.containers.Len() > 0 {
		idx = w.containers.FocusedIdx() + 1
	}
	final := w.insertContainerAt(idx, c)
	w.containers.Focus(final)
	return final
}

// RemoveWindow removes h from wherever it lives on the workspace
// (tiled, monocle, maximized, or floating), destroying its container if
// it becomes empty. Returns false if h was not present.
func (w *Workspace) RemoveWindow(h Handle) bool {
	if w.maximizedWindow != nil && w.maximizedWindow.Handle == h {
		w.maximizedWindow = nil
		w.maximizedRestoreContainer = nil
		return true
	}
	if w.monocleContainer != nil && w.monocleContainer.Contains(h) {
		w.monocleContainer.RemoveWindow(h)
		if w.monocleContainer.IsEmpty() {
			w.monocleContainer = nil
		}
		return true
	}
	if idx, c, ok := w.findContainer(h); ok {
		c.RemoveWindow(h)
		if c.IsEmpty() {
			w.removeContainerAt(idx)
		}
		delete(w.floatRestores, h)
		return true
	}
	for i, fw := range w.floatingWindows {
		if fw.Handle == h {
			w.floatingWindows = append(w.floatingWindows[:i], w.floatingWindows[i+1:]...)
			delete(w.floatRestores, h)
			return true
		}
	}
	return false
}

// ToggleMonocle implements the Tiled<->Monocle transition of §4.6.
func (w *Workspace) ToggleMonocle() error {
	switch w.Mode() {
	case ModeMaximized:
		return errors.New("wm: cannot toggle monocle while maximized")
	case ModeMonocle:
		idx := clampInt(w.monocleRestoreIndex, 0, w.containers.Len())
		w.insertContainerAt(idx, w.monocleContainer)
		w.containers.Focus(idx)
		w.monocleContainer = nil
		return nil
	default:
		cp := w.containers.Focused()
		if cp == nil {
			return errors.New("wm: no focused container to promote to monocle")
		}
		idx := w.containers.FocusedIdx()
		w.monocleRestoreIndex = idx
		w.monocleContainer = *cp
		w.removeContainerAt(idx)
		return nil
	}
}

// ToggleMaximize implements the Tiled<->Maximized transition of §4.6.
func (w *Workspace) ToggleMaximize() error {
	switch w.Mode() {
	case ModeMonocle:
		return errors.New("wm: cannot maximize while monocle is active")
	case ModeMaximized:
		win := *w.maximizedWindow
		if w.maximizedRestoreContainer != nil {
			w.maximizedRestoreContainer.AddWindow(win)
		} else {
			c := NewContainer(NewContainerID())
			c.AddWindow(win)
			idx := clampInt(w.maximizedRestoreIndex, 0, w.containers.Len())
			w.insertContainerAt(idx, c)
		}
		w.maximizedWindow = nil
		w.maximizedRestoreContainer = nil
		return nil
	default:
		cp := w.containers.Focused()
		if cp == nil {
			return errors.New("wm: no focused container to maximize")
		}
		c := *cp
		fw := c.FocusedWindow()
		if fw == nil {
			return errors.New("wm: focused container has no focused window")
		}
		win := *fw
		idx := w.containers.FocusedIdx()
		c.RemoveWindow(win.Handle)
		w.maximizedRestoreIndex = idx
		if c.IsEmpty() {
			w.removeContainerAt(idx)
			w.maximizedRestoreContainer = nil
		} else {
			w.maximizedRestoreContainer = c
		}
		w.maximizedWindow = &win
		return nil
	}
}

// ToggleFloat implements the Tiled<->Float transition of §4.6. Calling
// it a second time on the same handle with no intervening structural
// change restores the window to its previous container at its previous
// index, clamped, per the round-trip property in spec.md §8.
func (w *Workspace) ToggleFloat(h Handle) error {
	if r, ok := w.floatRestores[h]; ok {
		for i, win := range w.floatingWindows {
			if win.Handle != h {
				continue
			}
			w.floatingWindows = append(w.floatingWindows[:i], w.floatingWindows[i+1:]...)
			delete(w.floatRestores, h)
			if r.container != nil {
				r.container.AddWindow(win)
			} else {
				c := NewContainer(NewContainerID())
				c.AddWindow(win)
				idx := clampInt(r.idx, 0, w.containers.Len())
				w.insertContainerAt(idx, c)
			}
			return nil
		}
		return fmt.Errorf("wm: inconsistent float-restore bookkeeping for handle %d", h)
	}

	idx, c, ok := w.findContainer(h)
	if !ok {
		return fmt.Errorf("wm: window %d is not tiled on this workspace", h)
	}
	win, _ := c.RemoveWindow(h)
	if c.IsEmpty() {
		w.removeContainerAt(idx)
		w.floatRestores[h] = floatRestore{container: nil, idx: idx}
	} else {
		w.floatRestores[h] = floatRestore{container: c, idx: idx}
	}
	w.floatingWindows = append(w.floatingWindows, win)
	return nil
}

// ComputeRects runs the layout engine over the current tiled set for
// the given work area. The visual mode is not consulted: in monocle or
// maximized mode it returns rects for the containers left in the tiled
// ring.
func (w *Workspace) ComputeRects(workArea geom.Rect) ([]geom.Rect, error) {
	if !w.tile || w.containers.Len() == 0 {
		return nil, nil
	}
	deltas := make([]geom.ResizeDelta, w.containers.Len())
	for i := range deltas {
		deltas[i] = w.ResizeDelta(i)
	}
	descriptor := w.SelectLayout()
	return layout.Compute(descriptor, workArea, w.containers.Len(), w.workspacePadding, w.containerPadding, w.layoutFlip, deltas, layout.Options{})
}
