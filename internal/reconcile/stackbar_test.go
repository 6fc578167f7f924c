package reconcile

import (
	"testing"

	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/layout"
	"github.com/1broseidon/komorebi/internal/platform"
	"github.com/1broseidon/komorebi/internal/wm"
)

type fakeBackend struct {
	shown   map[platform.WindowID]bool
	hidden  map[platform.WindowID]bool
	focused platform.WindowID
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{shown: map[platform.WindowID]bool{}, hidden: map[platform.WindowID]bool{}}
}

func (f *fakeBackend) Displays() ([]platform.Display, error)              { return nil, nil }
func (f *fakeBackend) ActiveDisplay() (platform.Display, error)           { return platform.Display{}, nil }
func (f *fakeBackend) ActiveWindow() (platform.WindowID, error)           { return 0, nil }
func (f *fakeBackend) ListWindowsOnDisplay(int) ([]platform.Window, error) { return nil, nil }
func (f *fakeBackend) MoveResize(platform.WindowID, platform.Rect) error  { return nil }
func (f *fakeBackend) Minimize(platform.WindowID) error                  { return nil }
func (f *fakeBackend) Close(platform.WindowID) error                     { return nil }
func (f *fakeBackend) Show(id platform.WindowID) error {
	f.shown[id] = true
	delete(f.hidden, id)
	return nil
}
func (f *fakeBackend) Hide(id platform.WindowID) error {
	f.hidden[id] = true
	delete(f.shown, id)
	return nil
}
func (f *fakeBackend) SetOpacity(platform.WindowID, float64) error { return nil }
func (f *fakeBackend) Title(platform.WindowID) (string, error)      { return "", nil }
func (f *fakeBackend) Class(platform.WindowID) (string, error)      { return "", nil }
func (f *fakeBackend) Executable(platform.WindowID) (string, error) { return "", nil }
func (f *fakeBackend) Path(platform.WindowID) (string, error)       { return "", nil }
func (f *fakeBackend) WindowStyle(platform.WindowID) (platform.Style, error) {
	return platform.Style{}, nil
}
func (f *fakeBackend) WindowRect(platform.WindowID) (platform.Rect, error) {
	return platform.Rect{}, nil
}
func (f *fakeBackend) IsAlive(platform.WindowID) bool                { return true }
func (f *fakeBackend) CurrentDesktop() (int, error)                  { return 0, nil }
func (f *fakeBackend) SetWindowDesktop(platform.WindowID, int) error { return nil }
func (f *fakeBackend) FocusWindow(id platform.WindowID) error {
	f.focused = id
	return nil
}

func TestTabIndexS6(t *testing.T) {
	cfg := StackbarConfig{TabWidth: 200, TabGap: 10}
	idx, ok := cfg.TabIndex(230, 3)
	if !ok || idx != 1 {
		t.Fatalf("expected index 1, got %d (ok=%v)", idx, ok)
	}
}

func TestTabIndexOutOfRangeIsNoMatch(t *testing.T) {
	cfg := StackbarConfig{TabWidth: 200, TabGap: 10}
	if _, ok := cfg.TabIndex(1000, 3); ok {
		t.Fatalf("expected no match past the last tab")
	}
	if _, ok := cfg.TabIndex(-5, 3); ok {
		t.Fatalf("expected no match before the first tab")
	}
}

// TestRouteClickS6 exercises spec.md S6: a container with three
// windows, tab width 200, gap 10; a click at x=230 lands on index 1,
// which becomes focused while the other two are hidden.
func TestRouteClickS6(t *testing.T) {
	manager := wm.NewWindowManager()
	mon := wm.NewMonitor(0, "dev-primary", "Primary", geom.NewRect(0, 0, 1920, 1080))
	ws := wm.NewWorkspace("workspace-1", layout.Descriptor{DefaultKind: layout.BSP})

	c := wm.NewContainer(wm.NewContainerID())
	c.AddWindow(wm.NewWindow(1, nil))
	c.AddWindow(wm.NewWindow(2, nil))
	c.AddWindow(wm.NewWindow(3, nil))
	ws.Containers().Append(c)

	mon.Workspaces().Append(ws)
	manager.AddMonitor(mon)

	backend := newFakeBackend()
	cfg := StackbarConfig{Enabled: true, TabWidth: 200, TabGap: 10, Height: 24}
	recon := NewStackbarReconciler(nil, backend, manager, cfg)

	if err := recon.RouteClick("0:0", 230); err != nil {
		t.Fatal(err)
	}

	if c.FocusedIndex() != 1 {
		t.Fatalf("expected focused index 1, got %d", c.FocusedIndex())
	}
	windows := c.Windows()
	if !backend.shown[platform.WindowID(windows[1].Handle)] {
		t.Fatalf("expected newly focused window to be shown")
	}
	if backend.focused != platform.WindowID(windows[1].Handle) {
		t.Fatalf("expected newly focused window to receive keyboard focus")
	}
	if !backend.hidden[platform.WindowID(windows[0].Handle)] || !backend.hidden[platform.WindowID(windows[2].Handle)] {
		t.Fatalf("expected the other two windows to be hidden")
	}
}

func TestRouteClickOutsideAnyTabIsNoOp(t *testing.T) {
	manager := wm.NewWindowManager()
	mon := wm.NewMonitor(0, "dev-primary", "Primary", geom.NewRect(0, 0, 1920, 1080))
	ws := wm.NewWorkspace("workspace-1", layout.Descriptor{DefaultKind: layout.BSP})

	c := wm.NewContainer(wm.NewContainerID())
	c.AddWindow(wm.NewWindow(1, nil))
	c.AddWindow(wm.NewWindow(2, nil))
	ws.Containers().Append(c)
	c.Focus(0)

	mon.Workspaces().Append(ws)
	manager.AddMonitor(mon)

	backend := newFakeBackend()
	cfg := StackbarConfig{Enabled: true, TabWidth: 200, TabGap: 10, Height: 24}
	recon := NewStackbarReconciler(nil, backend, manager, cfg)

	if err := recon.RouteClick("0:0", 10000); err != nil {
		t.Fatal(err)
	}
	if c.FocusedIndex() != 0 {
		t.Fatalf("expected focus unchanged, got %d", c.FocusedIndex())
	}
	if len(backend.shown) != 0 || len(backend.hidden) != 0 {
		t.Fatalf("expected no backend side effects for an out-of-range click")
	}
}
