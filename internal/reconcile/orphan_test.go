package reconcile

import (
	"testing"

	"github.com/1broseidon/komorebi/internal/events"
	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/layout"
	"github.com/1broseidon/komorebi/internal/platform"
	"github.com/1broseidon/komorebi/internal/wm"
)

type orphanFakeBackend struct {
	monitorFakeBackend
	dead map[platform.WindowID]bool
}

func (f *orphanFakeBackend) IsAlive(id platform.WindowID) bool { return !f.dead[id] }

func TestOrphanReconcilerSynthesizesDestroyForDeadHandles(t *testing.T) {
	m := wm.NewWindowManager()
	mon := wm.NewMonitor(0, "primary", "Primary", geom.NewRect(0, 0, 1920, 1080))
	ws := wm.NewWorkspace("workspace-1", layout.Descriptor{DefaultKind: layout.BSP})
	ws.InsertWindow(wm.NewWindow(1, nil), wm.InsertAtEnd)
	ws.InsertWindow(wm.NewWindow(2, nil), wm.InsertAtEnd)
	mon.Workspaces().Append(ws)
	m.AddMonitor(mon)

	backend := &orphanFakeBackend{dead: map[platform.WindowID]bool{2: true}}
	out := make(events.Channel, 4)
	recon := NewOrphanReconciler(backend, m, out)

	if err := recon.Tick(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	close(out)
	var got []events.Event
	for e := range out {
		got = append(got, e)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one synthesized event, got %d: %+v", len(got), got)
	}
	if got[0].Kind != events.Destroy || got[0].Handle != wm.Handle(2) {
		t.Fatalf("expected Destroy for handle 2, got %+v", got[0])
	}
}

func TestOrphanReconcilerIgnoresLiveHandles(t *testing.T) {
	m := wm.NewWindowManager()
	mon := wm.NewMonitor(0, "primary", "Primary", geom.NewRect(0, 0, 1920, 1080))
	ws := wm.NewWorkspace("workspace-1", layout.Descriptor{DefaultKind: layout.BSP})
	ws.InsertWindow(wm.NewWindow(1, nil), wm.InsertAtEnd)
	mon.Workspaces().Append(ws)
	m.AddMonitor(mon)

	backend := &orphanFakeBackend{dead: map[platform.WindowID]bool{}}
	out := make(events.Channel, 4)
	recon := NewOrphanReconciler(backend, m, out)

	if err := recon.Tick(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case e := <-out:
		t.Fatalf("expected no synthesized events, got %+v", e)
	default:
	}
}
