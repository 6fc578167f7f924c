package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Style mirrors the window decoration/state bits the classifier and
// reconcilers need, independent of any particular windowing system.
type Style struct {
	HasCaption bool
	Resizable  bool
	Minimized  bool
	Maximized  bool
	ToolWindow bool
	AppWindow  bool
	Cloaked    bool
	OwnedPopup bool
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveDisplay() (Display, error)
	ActiveWindow() (WindowID, error)
	ListWindowsOnDisplay(displayID int) ([]Window, error)
	MoveResize(windowID WindowID, bounds Rect) error
	Minimize(windowID WindowID) error
	Close(windowID WindowID) error

	// Show maps a window, making it visible without altering its geometry.
	Show(windowID WindowID) error
	// Hide unmaps a window, leaving its other state intact for a later Show.
	Hide(windowID WindowID) error
	// SetOpacity sets a window's compositor opacity in [0.0, 1.0].
	SetOpacity(windowID WindowID, opacity float64) error

	// Title, Class, Executable and Path back the rule classifier's
	// per-window identifier lookups.
	Title(windowID WindowID) (string, error)
	Class(windowID WindowID) (string, error)
	Executable(windowID WindowID) (string, error)
	Path(windowID WindowID) (string, error)
	// WindowStyle reports decoration/state bits used by the classifier
	// fallback and the reconcilers.
	WindowStyle(windowID WindowID) (Style, error)
	// WindowRect reports a window's current on-screen geometry.
	WindowRect(windowID WindowID) (Rect, error)

	// IsAlive reports whether windowID still refers to a live window,
	// used by the orphan reconciler to detect destroyed windows.
	IsAlive(windowID WindowID) bool

	// CurrentDesktop and SetWindowDesktop back virtual-desktop tracking.
	CurrentDesktop() (int, error)
	SetWindowDesktop(windowID WindowID, desktop int) error
	FocusWindow(windowID WindowID) error
}
