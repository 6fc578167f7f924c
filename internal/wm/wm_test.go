package wm

import (
	"testing"

	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/layout"
)

func mkWorkspace() *Workspace {
	return NewWorkspace("workspace-1", layout.Descriptor{DefaultKind: layout.BSP})
}

func TestInsertWindowCreatesContainerAndTracksResizeAlignment(t *testing.T) {
	ws := mkWorkspace()
	ws.InsertWindow(NewWindow(1, nil), InsertAtEnd)
	ws.InsertWindow(NewWindow(2, nil), InsertAtEnd)

	if ws.Containers().Len() != 2 {
		t.Fatalf("expected 2 containers, got %d", ws.Containers().Len())
	}
	if err := ws.CheckResizeAlignment(); err != nil {
		t.Fatal(err)
	}
	if err := ws.CheckDisjoint(); err != nil {
		t.Fatal(err)
	}
}

func TestToggleMonocleRoundTripIsNoOpOnContainers(t *testing.T) {
	ws := mkWorkspace()
	ws.InsertWindow(NewWindow(1, nil), InsertAtEnd)
	ws.InsertWindow(NewWindow(2, nil), InsertAtEnd)
	ws.Containers().Focus(1)

	before := ws.Containers().Elements()
	beforeIDs := make([]string, len(before))
	for i, c := range before {
		beforeIDs[i] = c.ID()
	}

	if err := ws.ToggleMonocle(); err != nil {
		t.Fatal(err)
	}
	if ws.Mode() != ModeMonocle {
		t.Fatalf("expected monocle mode")
	}
	if ws.Containers().Len() != 1 {
		t.Fatalf("expected 1 remaining tiled container, got %d", ws.Containers().Len())
	}

	if err := ws.ToggleMonocle(); err != nil {
		t.Fatal(err)
	}
	if ws.Mode() != ModeTiled {
		t.Fatalf("expected tiled mode after second toggle")
	}

	after := ws.Containers().Elements()
	if len(after) != len(before) {
		t.Fatalf("container count changed across round trip: got %d want %d", len(after), len(before))
	}
	for i, c := range after {
		if c.ID() != beforeIDs[i] {
			t.Fatalf("container order changed across round trip at %d: got %s want %s", i, c.ID(), beforeIDs[i])
		}
	}
	if err := ws.CheckResizeAlignment(); err != nil {
		t.Fatal(err)
	}
}

func TestToggleFloatRoundTripRestoresContainerAndIndex(t *testing.T) {
	ws := mkWorkspace()
	ws.InsertWindow(NewWindow(1, nil), InsertAtEnd)
	ws.InsertWindow(NewWindow(2, nil), InsertAtEnd)
	ws.InsertWindow(NewWindow(3, nil), InsertAtEnd)

	if err := ws.ToggleFloat(2); err != nil {
		t.Fatal(err)
	}
	if ws.Containers().Len() != 2 {
		t.Fatalf("expected window 2's container removed, got %d containers", ws.Containers().Len())
	}
	if len(ws.FloatingWindows()) != 1 {
		t.Fatalf("expected 1 floating window")
	}

	if err := ws.ToggleFloat(2); err != nil {
		t.Fatal(err)
	}
	if ws.Containers().Len() != 3 {
		t.Fatalf("expected window 2 restored to a container, got %d containers", ws.Containers().Len())
	}
	if len(ws.FloatingWindows()) != 0 {
		t.Fatalf("expected no floating windows after restore")
	}

	idx, c, ok := ws.findContainer(2)
	if !ok {
		t.Fatalf("expected window 2 to be tiled again")
	}
	if idx != 1 {
		t.Fatalf("expected window 2 restored at index 1, got %d", idx)
	}
	if !c.Contains(2) {
		t.Fatalf("expected restored container to contain window 2")
	}
}

func TestToggleMaximizeRestoresIntoSurvivingContainer(t *testing.T) {
	ws := mkWorkspace()
	ws.InsertWindow(NewWindow(1, nil), InsertAtEnd)
	_, cont, _ := ws.findContainer(1)
	cont.AddWindow(NewWindow(2, nil)) // stack a second window into the same container

	if err := ws.ToggleMaximize(); err != nil {
		t.Fatal(err)
	}
	if ws.Mode() != ModeMaximized {
		t.Fatalf("expected maximized mode")
	}
	if ws.Containers().Len() != 1 {
		t.Fatalf("expected the surviving container to remain, got %d containers", ws.Containers().Len())
	}

	if err := ws.ToggleMaximize(); err != nil {
		t.Fatal(err)
	}
	if ws.Mode() != ModeTiled {
		t.Fatalf("expected tiled mode after restore")
	}
	if ws.Containers().Len() != 1 {
		t.Fatalf("expected still 1 container after restore, got %d", ws.Containers().Len())
	}
	_, survivor, ok := ws.findContainer(2)
	if !ok || !survivor.Contains(1) {
		t.Fatalf("expected the maximized window reunited with its original container")
	}
}

func TestS5MonitorDisconnectSidelinesAndReparents(t *testing.T) {
	manager := NewWindowManager()

	primary := NewMonitor(0, "dev-primary", "Primary", geom.NewRect(0, 0, 1920, 1080))
	primaryWs := mkWorkspace()
	primaryWs.InsertWindow(NewWindow(1, nil), InsertAtEnd)
	primaryWs.InsertWindow(NewWindow(2, nil), InsertAtEnd)
	primaryWs.Containers().Focus(1)
	primary.Workspaces().Append(primaryWs)
	manager.AddMonitor(primary)
	manager.remember(1, KnownLocation{MonitorIdx: 0, WorkspaceIdx: 0})
	manager.remember(2, KnownLocation{MonitorIdx: 0, WorkspaceIdx: 0})

	secondary := NewMonitor(1, "dev-secondary", "Secondary", geom.NewRect(1920, 0, 1920, 1080))
	secondaryWs := mkWorkspace()
	secondaryWs.InsertWindow(NewWindow(3, nil), InsertAtEnd)
	secondaryWs.InsertWindow(NewWindow(4, nil), InsertAtEnd)
	secondary.Workspaces().Append(secondaryWs)
	manager.AddMonitor(secondary)
	manager.remember(3, KnownLocation{MonitorIdx: 1, WorkspaceIdx: 0})
	manager.remember(4, KnownLocation{MonitorIdx: 1, WorkspaceIdx: 0})

	focusedBefore := primaryWs.Containers().FocusedIdx()

	if err := manager.DisconnectMonitor(1); err != nil {
		t.Fatal(err)
	}

	if manager.Monitors().Len() != 1 {
		t.Fatalf("expected secondary monitor removed from the ring, got %d monitors", manager.Monitors().Len())
	}
	if primaryWs.Containers().Len() != 4 {
		t.Fatalf("expected the 2 orphaned containers appended to the primary workspace, got %d", primaryWs.Containers().Len())
	}
	if primaryWs.Containers().FocusedIdx() != focusedBefore {
		t.Fatalf("expected focused-container index unchanged, got %d want %d", primaryWs.Containers().FocusedIdx(), focusedBefore)
	}

	if _, ok := manager.sidelineCache["dev-secondary"]; !ok {
		t.Fatalf("expected the disconnected monitor sidelined under its device id")
	}

	if err := manager.CheckKnownHwnds(); err != nil {
		t.Fatal(err)
	}
}

func TestS5MonitorReconnectRestoresSidelinedState(t *testing.T) {
	manager := NewWindowManager()
	primary := NewMonitor(0, "dev-primary", "Primary", geom.NewRect(0, 0, 1920, 1080))
	primary.Workspaces().Append(mkWorkspace())
	manager.AddMonitor(primary)

	secondary := NewMonitor(1, "dev-secondary", "Secondary", geom.NewRect(1920, 0, 1920, 1080))
	ws := mkWorkspace()
	ws.SetWorkspacePadding(12)
	secondary.Workspaces().Append(ws)
	manager.AddMonitor(secondary)

	if err := manager.DisconnectMonitor(1); err != nil {
		t.Fatal(err)
	}

	restored := manager.ReconnectMonitor(1, "dev-secondary", "Secondary", geom.NewRect(1920, 0, 1920, 1080), 1, func(idx int) *Workspace {
		t.Fatalf("should not allocate a fresh workspace for a cache hit")
		return nil
	})

	if restored.Workspaces().Focused() == nil {
		t.Fatalf("expected restored monitor to carry its prior workspace")
	}
	if (*restored.Workspaces().Focused()).WorkspacePadding() != 12 {
		t.Fatalf("expected restored workspace to carry its prior padding verbatim")
	}
	if manager.Monitors().Len() != 2 {
		t.Fatalf("expected 2 monitors after reconnect, got %d", manager.Monitors().Len())
	}
}

func TestMoveContainerDirectionS3(t *testing.T) {
	ws := mkWorkspace()
	for i := 1; i <= 4; i++ {
		ws.InsertWindow(NewWindow(Handle(i), nil), InsertAtEnd)
	}
	ws.Containers().Focus(2)

	if err := ws.MoveContainerDirection(layout.Up); err != nil {
		t.Fatal(err)
	}
	if ws.Containers().FocusedIdx() != 1 {
		t.Fatalf("expected focused index 1 after moving up from 2, got %d", ws.Containers().FocusedIdx())
	}
}
