package command

import (
	"encoding/json"
	"testing"

	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/layout"
	"github.com/1broseidon/komorebi/internal/rule"
	"github.com/1broseidon/komorebi/internal/wm"
)

type fakeBackend struct {
	moved  map[wm.Handle]geom.Rect
	hidden map[wm.Handle]bool
	shown  map[wm.Handle]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{moved: map[wm.Handle]geom.Rect{}, hidden: map[wm.Handle]bool{}, shown: map[wm.Handle]bool{}}
}

func (f *fakeBackend) MoveResize(h wm.Handle, r geom.Rect) error {
	f.moved[h] = r
	delete(f.hidden, h)
	return nil
}
func (f *fakeBackend) Show(h wm.Handle) error { f.shown[h] = true; return nil }
func (f *fakeBackend) Hide(h wm.Handle) error { f.hidden[h] = true; return nil }

type fakeNotifier struct{ events []string }

func (n *fakeNotifier) Publish(event string) { n.events = append(n.events, event) }

func newTestManager() *wm.WindowManager {
	m := wm.NewWindowManager()
	mon := wm.NewMonitor(0, "dev-primary", "Primary", geom.NewRect(0, 0, 1920, 1080))
	ws := wm.NewWorkspace("workspace-1", layout.Descriptor{DefaultKind: layout.BSP})
	ws.InsertWindow(wm.NewWindow(1, nil), wm.InsertAtEnd)
	ws.InsertWindow(wm.NewWindow(2, nil), wm.InsertAtEnd)
	ws.InsertWindow(wm.NewWindow(3, nil), wm.InsertAtEnd)
	mon.Workspaces().Append(ws)
	m.AddMonitor(mon)
	return m
}

func contentFor(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestDispatchMoveContainerAppliesLayoutToBackend(t *testing.T) {
	m := newTestManager()
	backend := newFakeBackend()
	notifier := &fakeNotifier{}
	eng := &Engine{Manager: m, Backend: backend, Notifier: notifier}

	mon := m.FocusedMonitor()
	ws := mon.FocusedWorkspace()
	ws.Containers().Focus(0)

	cmd := &Command{Type: TypeMoveContainer, Content: contentFor(t, DirectionPayload{Direction: layout.Right})}
	resp := eng.Dispatch(cmd)
	if resp.Status != "OK" {
		t.Fatalf("expected OK, got %s (%s)", resp.Status, resp.Error)
	}

	if len(backend.moved) == 0 {
		t.Fatalf("expected backend to receive move/resize calls")
	}
	if len(notifier.events) != 1 || notifier.events[0] != string(TypeMoveContainer) {
		t.Fatalf("expected one move_container notification, got %v", notifier.events)
	}
}

func TestDispatchToggleMonocleHidesNonFocusedContainers(t *testing.T) {
	m := newTestManager()
	backend := newFakeBackend()
	eng := &Engine{Manager: m, Backend: backend, Notifier: &fakeNotifier{}}

	ws := m.FocusedMonitor().FocusedWorkspace()
	ws.Containers().Focus(1)

	cmd := &Command{Type: TypeToggleMonocle}
	if resp := eng.Dispatch(cmd); resp.Status != "OK" {
		t.Fatalf("expected OK, got %s (%s)", resp.Status, resp.Error)
	}

	focusedHandle := ws.MonocleContainer().FocusedWindow().Handle
	if _, ok := backend.moved[focusedHandle]; !ok {
		t.Fatalf("expected monocle container's focused window to be moved/resized")
	}
	for _, c := range ws.Containers().Elements() {
		for _, w := range c.Windows() {
			if !backend.hidden[w.Handle] {
				t.Fatalf("expected tiled window %d to be hidden in monocle mode", w.Handle)
			}
		}
	}
}

func TestDispatchUnknownCommandReturnsError(t *testing.T) {
	m := newTestManager()
	eng := &Engine{Manager: m, Backend: newFakeBackend(), Notifier: &fakeNotifier{}}

	resp := eng.Dispatch(&Command{Type: Type("bogus")})
	if resp.Status != "ERROR" {
		t.Fatalf("expected ERROR status for unknown command, got %s", resp.Status)
	}
}

func TestDispatchMoveContainerToWorkspace(t *testing.T) {
	m := newTestManager()
	mon := m.FocusedMonitor()
	ws2 := wm.NewWorkspace("workspace-2", layout.Descriptor{DefaultKind: layout.Columns})
	mon.Workspaces().Append(ws2)

	eng := &Engine{Manager: m, Backend: newFakeBackend(), Notifier: &fakeNotifier{}}

	cmd := &Command{Type: TypeMoveContainerToWorkspace, Content: contentFor(t, WorkspaceTargetPayload{WorkspaceIdx: 1})}
	if resp := eng.Dispatch(cmd); resp.Status != "OK" {
		t.Fatalf("expected OK, got %s (%s)", resp.Status, resp.Error)
	}
	if ws2.Containers().Len() != 1 {
		t.Fatalf("expected the focused container moved into workspace-2, got %d containers", ws2.Containers().Len())
	}
}

func TestDispatchFocusWorkspaceHidesPreviousWorkspace(t *testing.T) {
	m := newTestManager()
	mon := m.FocusedMonitor()
	ws1 := mon.FocusedWorkspace()
	ws2 := wm.NewWorkspace("workspace-2", layout.Descriptor{DefaultKind: layout.Columns})
	ws2.InsertWindow(wm.NewWindow(9, nil), wm.InsertAtEnd)
	mon.Workspaces().Append(ws2)

	backend := newFakeBackend()
	eng := &Engine{Manager: m, Backend: backend, Notifier: &fakeNotifier{}}

	cmd := &Command{Type: TypeFocusWorkspace, Content: contentFor(t, WorkspaceTargetPayload{WorkspaceIdx: 1})}
	if resp := eng.Dispatch(cmd); resp.Status != "OK" {
		t.Fatalf("expected OK, got %s (%s)", resp.Status, resp.Error)
	}
	if mon.FocusedWorkspace() != ws2 {
		t.Fatalf("expected workspace-2 to be focused")
	}
	for _, c := range ws1.Containers().Elements() {
		for _, w := range c.Windows() {
			if !backend.hidden[w.Handle] {
				t.Fatalf("expected handle %d from the previous workspace to be hidden", w.Handle)
			}
		}
	}
}

func TestDispatchAddLayeredAndTrayRules(t *testing.T) {
	m := newTestManager()
	store := rule.NewStore(nil, nil, nil)
	eng := &Engine{Manager: m, Backend: newFakeBackend(), Notifier: &fakeNotifier{}, Rules: store}

	layeredCmd := &Command{Type: TypeAddLayeredRule, Content: contentFor(t, AddRulePayload{
		Kind: rule.KindClass, Identifier: "TranslucentShell", Strategy: rule.StrategyEquals,
	})}
	if resp := eng.Dispatch(layeredCmd); resp.Status != "OK" {
		t.Fatalf("expected OK, got %s (%s)", resp.Status, resp.Error)
	}
	if got := store.LayeredRules(); len(got) != 1 {
		t.Fatalf("expected 1 layered rule, got %d", len(got))
	}

	trayCmd := &Command{Type: TypeAddTrayApplicationRule, Content: contentFor(t, AddRulePayload{
		Kind: rule.KindExecutable, Identifier: "slack.exe", Strategy: rule.StrategyEquals,
	})}
	if resp := eng.Dispatch(trayCmd); resp.Status != "OK" {
		t.Fatalf("expected OK, got %s (%s)", resp.Status, resp.Error)
	}
	if got := store.TrayApplicationRules(); len(got) != 1 {
		t.Fatalf("expected 1 tray rule, got %d", len(got))
	}
}

func TestParseCommandRoundTrip(t *testing.T) {
	raw := []byte(`{"type":"toggle_pause"}`)
	cmd, err := ParseCommand(raw)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Type != TypeTogglePause {
		t.Fatalf("expected toggle_pause, got %s", cmd.Type)
	}
}
