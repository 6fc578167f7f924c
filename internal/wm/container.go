package wm

import (
	"github.com/1broseidon/komorebi/internal/ring"
	"github.com/google/uuid"
)

// NewContainerID mints a stable container identifier.
func NewContainerID() string {
	return uuid.NewString()
}

// Container is an ordered set of windows sharing one tile. It is
// non-empty except in the instant before it is removed from its
// workspace, and exactly one window is focused whenever it holds any.
type Container struct {
	id      string
	windows *ring.Ring[Window]
	locked  bool
}

// NewContainer builds an empty container with the given id.
func NewContainer(id string) *Container {
	return &Container{id: id, windows: ring.New[Window]()}
}

// IsLocked reports whether the container holds a fixed absolute
// position in its workspace's container ring. It satisfies
// ring.Locked so *Container can live in a ring.LockedRing.
func (c *Container) IsLocked() bool { return c.locked }

// SetLocked toggles the container's lock flag.
func (c *Container) SetLocked(v bool) { c.locked = v }

// ID returns the container's stable identifier.
func (c *Container) ID() string { return c.id }

// Len returns the number of windows in the container.
func (c *Container) Len() int { return c.windows.Len() }

// IsEmpty reports whether the container holds no windows.
func (c *Container) IsEmpty() bool { return c.windows.Len() == 0 }

// Windows returns the container's windows in ring order.
func (c *Container) Windows() []Window { return c.windows.Elements() }

// FocusedWindow returns the container's focused window, or nil if
// empty.
func (c *Container) FocusedWindow() *Window { return c.windows.Focused() }

// FocusedIndex returns the index of the focused window.
func (c *Container) FocusedIndex() int { return c.windows.FocusedIdx() }

// Focus sets the container's focused window index, clamped into range.
func (c *Container) Focus(idx int) { c.windows.Focus(idx) }

// AddWindow appends w and focuses it.
func (c *Container) AddWindow(w Window) {
	c.windows.Append(w)
	c.windows.Focus(c.windows.Len() - 1)
}

// InsertWindow inserts w at idx and focuses it.
func (c *Container) InsertWindow(idx int, w Window) {
	final := c.windows.Insert(idx, w)
	c.windows.Focus(final)
}

// RemoveWindow removes the window with the given handle, if present.
func (c *Container) RemoveWindow(h Handle) (Window, bool) {
	for i, w := range c.windows.Elements() {
		if w.Handle == h {
			return c.windows.Remove(i)
		}
	}
	return Window{}, false
}

// Contains reports whether h is one of the container's windows.
func (c *Container) Contains(h Handle) bool {
	for _, w := range c.windows.Elements() {
		if w.Handle == h {
			return true
		}
	}
	return false
}

// IndexOf returns the index of h within the container, or -1.
func (c *Container) IndexOf(h Handle) int {
	for i, w := range c.windows.Elements() {
		if w.Handle == h {
			return i
		}
	}
	return -1
}
