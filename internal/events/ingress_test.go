package events

import (
	"testing"
	"time"

	"github.com/1broseidon/komorebi/internal/rule"
	"github.com/1broseidon/komorebi/internal/wm"
)

func TestNormalizeTitleChangePromotesToShow(t *testing.T) {
	engine := rule.NewEngine(nil)
	onLaunch := []rule.Rule{{Simple: &rule.Simple{Kind: rule.KindExecutable, Identifier: "code.exe", Strategy: rule.StrategyEquals}}}
	in := NewIngress(engine, onLaunch, nil, nil, 0)

	id := rule.Identifiers{Executable: "code.exe"}
	evt := in.NormalizeTitleChange(wm.Handle(1), id, false)
	if evt.Kind != Show {
		t.Fatalf("expected promotion to Show, got %s", evt.Kind)
	}
}

func TestNormalizeTitleChangeRespectsIgnoreSetAndMinimized(t *testing.T) {
	engine := rule.NewEngine(nil)
	onLaunch := []rule.Rule{{Simple: &rule.Simple{Kind: rule.KindExecutable, Identifier: "code.exe", Strategy: rule.StrategyEquals}}}
	ignore := []rule.Rule{{Simple: &rule.Simple{Kind: rule.KindTitle, Identifier: "Untitled", Strategy: rule.StrategyEquals}}}
	in := NewIngress(engine, onLaunch, ignore, nil, 0)

	id := rule.Identifiers{Executable: "code.exe", Title: "Untitled"}
	if evt := in.NormalizeTitleChange(wm.Handle(1), id, false); evt.Kind != TitleUpdate {
		t.Fatalf("expected title-change-ignore set to suppress promotion, got %s", evt.Kind)
	}

	id2 := rule.Identifiers{Executable: "code.exe", Title: "main.go"}
	if evt := in.NormalizeTitleChange(wm.Handle(1), id2, true); evt.Kind != TitleUpdate {
		t.Fatalf("expected minimized window to suppress promotion, got %s", evt.Kind)
	}
}

func TestNormalizeTitleChangeRespectsTrayApplicationSet(t *testing.T) {
	engine := rule.NewEngine(nil)
	onLaunch := []rule.Rule{{Simple: &rule.Simple{Kind: rule.KindExecutable, Identifier: "slack.exe", Strategy: rule.StrategyEquals}}}
	tray := []rule.Rule{{Simple: &rule.Simple{Kind: rule.KindExecutable, Identifier: "slack.exe", Strategy: rule.StrategyEquals}}}
	in := NewIngress(engine, onLaunch, nil, tray, 0)

	id := rule.Identifiers{Executable: "slack.exe"}
	if evt := in.NormalizeTitleChange(wm.Handle(1), id, false); evt.Kind != TitleUpdate {
		t.Fatalf("expected tray-application set to suppress promotion, got %s", evt.Kind)
	}
}

func TestFocusChangeCoalescing(t *testing.T) {
	engine := rule.NewEngine(nil)
	in := NewIngress(engine, nil, nil, nil, 50*time.Millisecond)

	base := time.Unix(0, 0)
	if !in.AcceptFocusChange(wm.Handle(1), base) {
		t.Fatalf("expected first focus event to be accepted")
	}
	if in.AcceptFocusChange(wm.Handle(1), base.Add(10*time.Millisecond)) {
		t.Fatalf("expected identical focus event within the window to be dropped")
	}
	if !in.AcceptFocusChange(wm.Handle(2), base.Add(10*time.Millisecond)) {
		t.Fatalf("expected a focus change to a different handle to be accepted")
	}
	if !in.AcceptFocusChange(wm.Handle(1), base.Add(200*time.Millisecond)) {
		t.Fatalf("expected focus event outside the coalescing window to be accepted")
	}
}
