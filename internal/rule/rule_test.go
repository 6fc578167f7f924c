package rule

import "testing"

func TestSimpleStrategies(t *testing.T) {
	e := NewEngine(nil)
	id := Identifiers{Executable: "firefox.exe", Class: "Zeal", Title: "Mozilla Firefox"}

	cases := []struct {
		name string
		rule Simple
		want bool
	}{
		{"equals match", Simple{Kind: KindExecutable, Identifier: "firefox.exe", Strategy: StrategyEquals}, true},
		{"equals mismatch", Simple{Kind: KindExecutable, Identifier: "chrome.exe", Strategy: StrategyEquals}, false},
		{"starts with", Simple{Kind: KindExecutable, Identifier: "fire", Strategy: StrategyStartsWith}, true},
		{"ends with", Simple{Kind: KindExecutable, Identifier: ".exe", Strategy: StrategyEndsWith}, true},
		{"contains", Simple{Kind: KindTitle, Identifier: "Firefox", Strategy: StrategyContains}, true},
		{"not equals", Simple{Kind: KindExecutable, Identifier: "chrome.exe", Strategy: StrategyNotEquals}, true},
		{"legacy contains ci", Simple{Kind: KindClass, Identifier: "zeal", Strategy: StrategyLegacyContainsCI}, true},
		{"regex", Simple{Kind: KindExecutable, Identifier: `^fire.*\.exe$`, Strategy: StrategyRegex}, true},
		{"not regex", Simple{Kind: KindExecutable, Identifier: `^chrome`, Strategy: StrategyNotRegex}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := e.MatchSimple(c.rule, id); got != c.want {
				t.Fatalf("got %v, want %v", got, c.want)
			}
		})
	}
}

func TestRegexCompileFailureBecomesPermanentNoOp(t *testing.T) {
	e := NewEngine(nil)
	s := Simple{Kind: KindExecutable, Identifier: "(unterminated", Strategy: StrategyRegex}
	id := Identifiers{Executable: "(unterminated"}

	if e.MatchSimple(s, id) {
		t.Fatalf("expected invalid regex to never match")
	}
	// Second call hits the failed-cache path; still must not match or panic.
	if e.MatchSimple(s, id) {
		t.Fatalf("expected cached regex failure to still not match")
	}
}

func TestCompositeRequiresAllRulesToMatch(t *testing.T) {
	e := NewEngine(nil)
	id := Identifiers{Executable: "code.exe", Title: "settings.json - Visual Studio Code"}

	c := Rule{Composite: &Composite{Rules: []Simple{
		{Kind: KindExecutable, Identifier: "code.exe", Strategy: StrategyEquals},
		{Kind: KindTitle, Identifier: "settings.json", Strategy: StrategyContains},
	}}}
	if !e.Match(c, id) {
		t.Fatalf("expected composite rule to match when all constituents match")
	}

	c2 := Rule{Composite: &Composite{Rules: []Simple{
		{Kind: KindExecutable, Identifier: "code.exe", Strategy: StrategyEquals},
		{Kind: KindTitle, Identifier: "README", Strategy: StrategyContains},
	}}}
	if e.Match(c2, id) {
		t.Fatalf("expected composite rule to fail when one constituent fails")
	}
}

func TestClassifyCascade(t *testing.T) {
	e := NewEngine(nil)
	ignore := []Rule{{Simple: &Simple{Kind: KindClass, Identifier: "TaskbarOverlay", Strategy: StrategyEquals}}}
	manage := []Rule{{Simple: &Simple{Kind: KindExecutable, Identifier: "code.exe", Strategy: StrategyEquals}}}

	// Non-real window is rejected before any rule runs.
	manageResult, decision := e.Classify(false, ignore, manage, nil, Identifiers{Executable: "code.exe"}, ClassifyStyle{HasCaption: true, Resizable: true})
	if manageResult || decision.Matched {
		t.Fatalf("expected non-real window to be rejected outright")
	}

	// Ignore rule wins over manage eligibility.
	manageResult, decision = e.Classify(true, ignore, manage, nil, Identifiers{Class: "TaskbarOverlay", Executable: "code.exe"}, ClassifyStyle{HasCaption: true, Resizable: true})
	if manageResult || !decision.Matched || decision.RuleKind != "ignore" {
		t.Fatalf("expected ignore rule to take priority, got manage=%v decision=%+v", manageResult, decision)
	}

	// Manage rule explicitly includes even without caption/resizable style.
	manageResult, decision = e.Classify(true, nil, manage, nil, Identifiers{Executable: "code.exe"}, ClassifyStyle{})
	if !manageResult || decision.RuleKind != "manage" {
		t.Fatalf("expected manage rule to force management, got manage=%v decision=%+v", manageResult, decision)
	}

	// No rule match falls back to caption+resizable test.
	manageResult, decision = e.Classify(true, nil, nil, nil, Identifiers{Executable: "other.exe"}, ClassifyStyle{HasCaption: true, Resizable: true})
	if !manageResult || decision.Matched {
		t.Fatalf("expected fallback classification via style, got manage=%v decision=%+v", manageResult, decision)
	}

	// A window lacking caption/resizable style is still managed when a
	// layered rule whitelists it.
	layered := []Rule{{Simple: &Simple{Kind: KindClass, Identifier: "TranslucentShell", Strategy: StrategyEquals}}}
	manageResult, decision = e.Classify(true, nil, nil, layered, Identifiers{Class: "TranslucentShell"}, ClassifyStyle{})
	if !manageResult || decision.RuleKind != "layered" {
		t.Fatalf("expected layered whitelist to force management, got manage=%v decision=%+v", manageResult, decision)
	}
}

func TestWorkspaceMatchingRuleInitialOnlyFiresOnce(t *testing.T) {
	e := NewEngine(nil)
	set := NewMatchingRuleSet(e)
	set.Add(WorkspaceMatchingRule{
		Monitor:     0,
		Workspace:   2,
		InitialOnly: true,
		Match:       Rule{Simple: &Simple{Kind: KindExecutable, Identifier: "firefox.exe", Strategy: StrategyEquals}},
	})

	id := Identifiers{Executable: "firefox.exe"}
	mon, ws, ok := set.Resolve(id)
	if !ok || mon != 0 || ws != 2 {
		t.Fatalf("expected first resolution to match, got mon=%d ws=%d ok=%v", mon, ws, ok)
	}

	if _, _, ok := set.Resolve(id); ok {
		t.Fatalf("expected initial-only rule to not fire a second time")
	}
}
