package events

import (
	"testing"

	"github.com/1broseidon/komorebi/internal/command"
	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/layout"
	"github.com/1broseidon/komorebi/internal/platform"
	"github.com/1broseidon/komorebi/internal/rule"
	"github.com/1broseidon/komorebi/internal/wm"
)

type fakeBackend struct {
	styles map[platform.WindowID]platform.Style
	rects  map[platform.WindowID]platform.Rect
	class  map[platform.WindowID]string
	exe    map[platform.WindowID]string
	title  map[platform.WindowID]string
	path   map[platform.WindowID]string
	moved  map[platform.WindowID]platform.Rect
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		styles: map[platform.WindowID]platform.Style{},
		rects:  map[platform.WindowID]platform.Rect{},
		class:  map[platform.WindowID]string{},
		exe:    map[platform.WindowID]string{},
		title:  map[platform.WindowID]string{},
		path:   map[platform.WindowID]string{},
		moved:  map[platform.WindowID]platform.Rect{},
	}
}

func (f *fakeBackend) Displays() ([]platform.Display, error)              { return nil, nil }
func (f *fakeBackend) ActiveDisplay() (platform.Display, error)           { return platform.Display{}, nil }
func (f *fakeBackend) ActiveWindow() (platform.WindowID, error)           { return 0, nil }
func (f *fakeBackend) ListWindowsOnDisplay(int) ([]platform.Window, error) { return nil, nil }
func (f *fakeBackend) MoveResize(id platform.WindowID, r platform.Rect) error {
	f.moved[id] = r
	return nil
}
func (f *fakeBackend) Minimize(platform.WindowID) error { return nil }
func (f *fakeBackend) Close(platform.WindowID) error    { return nil }
func (f *fakeBackend) Show(platform.WindowID) error     { return nil }
func (f *fakeBackend) Hide(platform.WindowID) error     { return nil }
func (f *fakeBackend) SetOpacity(platform.WindowID, float64) error { return nil }
func (f *fakeBackend) Title(id platform.WindowID) (string, error)      { return f.title[id], nil }
func (f *fakeBackend) Class(id platform.WindowID) (string, error)      { return f.class[id], nil }
func (f *fakeBackend) Executable(id platform.WindowID) (string, error) { return f.exe[id], nil }
func (f *fakeBackend) Path(id platform.WindowID) (string, error)       { return f.path[id], nil }
func (f *fakeBackend) WindowStyle(id platform.WindowID) (platform.Style, error) {
	return f.styles[id], nil
}
func (f *fakeBackend) WindowRect(id platform.WindowID) (platform.Rect, error) {
	r, ok := f.rects[id]
	if !ok {
		return platform.Rect{Width: 800, Height: 600}, nil
	}
	return r, nil
}
func (f *fakeBackend) IsAlive(platform.WindowID) bool                    { return true }
func (f *fakeBackend) CurrentDesktop() (int, error)                      { return 0, nil }
func (f *fakeBackend) SetWindowDesktop(platform.WindowID, int) error     { return nil }
func (f *fakeBackend) FocusWindow(platform.WindowID) error               { return nil }

type fakeNotifier struct{ events []string }

func (n *fakeNotifier) Publish(event string) { n.events = append(n.events, event) }

func newTestManager() *wm.WindowManager {
	m := wm.NewWindowManager()
	mon := wm.NewMonitor(0, "dev-primary", "Primary", geom.NewRect(0, 0, 1920, 1080))
	ws := wm.NewWorkspace("workspace-1", layout.Descriptor{DefaultKind: layout.BSP})
	ws.InsertWindow(wm.NewWindow(1, nil), wm.InsertAtEnd)
	mon.Workspaces().Append(ws)
	m.AddMonitor(mon)
	return m
}

func newTestDispatcher(m *wm.WindowManager, backend *fakeBackend, notifier *fakeNotifier) *Dispatcher {
	ruleEngine := rule.NewEngine(nil)
	store := rule.NewStore(nil, nil, nil)
	cmdEngine := &command.Engine{
		Manager:  m,
		Backend:  &platform.CommandBackend{Backend: backend},
		Notifier: notifier,
	}
	return &Dispatcher{
		Manager:    m,
		Backend:    backend,
		CmdEngine:  cmdEngine,
		RuleEngine: ruleEngine,
		Rules:      store,
	}
}

func TestDispatcherManagesRealWindowAndLaysOutMonitor(t *testing.T) {
	m := newTestManager()
	backend := newFakeBackend()
	backend.styles[42] = platform.Style{HasCaption: true, Resizable: true, AppWindow: true}
	backend.rects[42] = platform.Rect{X: 0, Y: 0, Width: 400, Height: 300}
	notifier := &fakeNotifier{}
	d := newTestDispatcher(m, backend, notifier)

	d.handle(Event{Kind: Manage, Handle: 42})

	if _, ok := m.Locate(42); !ok {
		t.Fatal("expected handle 42 to be recorded in known_hwnds after Manage")
	}
	if len(notifier.events) != 1 || notifier.events[0] != "Manage" {
		t.Fatalf("expected one Manage notification, got %v", notifier.events)
	}
	if len(backend.moved) == 0 {
		t.Fatal("expected ApplyMonitor to move/resize at least one window after managing")
	}
}

func TestDispatcherSkipsToolWindowWithoutAppWindowFlag(t *testing.T) {
	m := newTestManager()
	backend := newFakeBackend()
	backend.styles[99] = platform.Style{ToolWindow: true}
	backend.rects[99] = platform.Rect{X: 0, Y: 0, Width: 200, Height: 200}
	notifier := &fakeNotifier{}
	d := newTestDispatcher(m, backend, notifier)

	d.handle(Event{Kind: Manage, Handle: 99})

	if _, ok := m.Locate(99); ok {
		t.Fatal("expected tool window without AppWindow flag to be refused")
	}
	if len(notifier.events) != 0 {
		t.Fatalf("expected no notification for a refused window, got %v", notifier.events)
	}
}

func TestDispatcherSkipsZeroSizedWindow(t *testing.T) {
	m := newTestManager()
	backend := newFakeBackend()
	backend.styles[7] = platform.Style{HasCaption: true, AppWindow: true}
	backend.rects[7] = platform.Rect{Width: 0, Height: 0}
	notifier := &fakeNotifier{}
	d := newTestDispatcher(m, backend, notifier)

	d.handle(Event{Kind: Manage, Handle: 7})

	if _, ok := m.Locate(7); ok {
		t.Fatal("expected zero-sized window to be refused")
	}
}

func TestDispatcherUnmanageRemovesKnownLocation(t *testing.T) {
	m := newTestManager()
	backend := newFakeBackend()
	notifier := &fakeNotifier{}
	d := newTestDispatcher(m, backend, notifier)

	d.handle(Event{Kind: Destroy, Handle: 1})

	if _, ok := m.Locate(1); ok {
		t.Fatal("expected handle 1 to be forgotten after Destroy")
	}
	if len(notifier.events) != 1 || notifier.events[0] != "Destroy" {
		t.Fatalf("expected one Destroy notification, got %v", notifier.events)
	}
}

func TestDispatcherIgnoresEventsWhilePaused(t *testing.T) {
	m := newTestManager()
	m.SetPaused(true)
	backend := newFakeBackend()
	backend.styles[55] = platform.Style{HasCaption: true, AppWindow: true}
	backend.rects[55] = platform.Rect{X: 0, Y: 0, Width: 400, Height: 300}
	notifier := &fakeNotifier{}
	d := newTestDispatcher(m, backend, notifier)

	d.handle(Event{Kind: Manage, Handle: 55})

	if _, ok := m.Locate(55); ok {
		t.Fatal("expected Manage event to be dropped while paused")
	}
}

func TestDispatcherFocusChangeUpdatesFocusedContainer(t *testing.T) {
	m := newTestManager()
	backend := newFakeBackend()
	notifier := &fakeNotifier{}
	d := newTestDispatcher(m, backend, notifier)
	backend.styles[2] = platform.Style{HasCaption: true, Resizable: true, AppWindow: true}
	backend.rects[2] = platform.Rect{X: 0, Y: 0, Width: 400, Height: 300}
	d.handle(Event{Kind: Manage, Handle: 2})

	d.handle(Event{Kind: FocusChange, Handle: 1})

	mon := m.FocusedMonitor()
	ws := mon.FocusedWorkspace()
	idx, ok := ws.ContainerIndex(1)
	if !ok {
		t.Fatal("expected handle 1 to still be tiled")
	}
	if ws.Containers().FocusedIdx() != idx {
		t.Fatalf("expected container %d to be focused, got %d", idx, ws.Containers().FocusedIdx())
	}
}
