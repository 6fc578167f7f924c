// Package rule implements the window-classification rule engine
// described in spec.md §4.3: Simple/Composite rule matching over window
// identifiers, with a cached regex compiler and workspace-assignment
// rules.
package rule

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

// Kind names which window identifier a rule inspects.
type Kind string

const (
	KindExecutable Kind = "executable"
	KindClass      Kind = "class"
	KindTitle      Kind = "title"
	KindPath       Kind = "path"
)

// Strategy names a string-matching strategy, including negated variants
// and the legacy case-insensitive substring match kept for
// compatibility with older rule documents.
type Strategy string

const (
	StrategyEquals           Strategy = "equals"
	StrategyStartsWith       Strategy = "starts-with"
	StrategyEndsWith         Strategy = "ends-with"
	StrategyContains         Strategy = "contains"
	StrategyRegex            Strategy = "regex"
	StrategyNotEquals        Strategy = "not-equals"
	StrategyNotStartsWith    Strategy = "not-starts-with"
	StrategyNotEndsWith      Strategy = "not-ends-with"
	StrategyNotContains      Strategy = "not-contains"
	StrategyNotRegex         Strategy = "not-regex"
	StrategyLegacyContainsCI Strategy = "legacy-contains-ci"
)

// Identifiers bundles the attributes a rule can be tested against.
type Identifiers struct {
	Executable string
	Class      string
	Title      string
	Path       string
}

func (id Identifiers) attr(kind Kind) string {
	switch kind {
	case KindExecutable:
		return id.Executable
	case KindClass:
		return id.Class
	case KindTitle:
		return id.Title
	case KindPath:
		return id.Path
	default:
		return ""
	}
}

// Simple is a single identifier/strategy test.
type Simple struct {
	Kind       Kind
	Identifier string
	Strategy   Strategy
}

// Composite is a conjunction of Simple rules: it accepts iff every
// constituent rule accepts.
type Composite struct {
	Rules []Simple
}

// Rule is either a Simple test or a Composite (conjunctive) group.
type Rule struct {
	Simple    *Simple
	Composite *Composite
}

// regexCache compiles regex rules once and remembers compilation
// failures so a broken rule is logged only once and then treated as a
// permanent no-op, per spec.md §7 ("Rule compilation failure").
type regexCache struct {
	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
	failed   map[string]bool
	logger   *slog.Logger
}

func newRegexCache(logger *slog.Logger) *regexCache {
	return &regexCache{
		compiled: make(map[string]*regexp.Regexp),
		failed:   make(map[string]bool),
		logger:   logger,
	}
}

func (c *regexCache) get(pattern string) *regexp.Regexp {
	c.mu.Lock()
	defer c.mu.Unlock()

	if re, ok := c.compiled[pattern]; ok {
		return re
	}
	if c.failed[pattern] {
		return nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		c.failed[pattern] = true
		if c.logger != nil {
			c.logger.Error("rule: regex compilation failed, rule becomes a no-op", "pattern", pattern, "error", err)
		}
		return nil
	}
	c.compiled[pattern] = re
	return re
}

// Engine evaluates rules against window identifiers, caching compiled
// regexes across calls.
type Engine struct {
	regex *regexCache
}

// NewEngine builds a rule engine. logger may be nil.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{regex: newRegexCache(logger)}
}

// MatchSimple evaluates one Simple rule against id.
func (e *Engine) MatchSimple(s Simple, id Identifiers) bool {
	value := id.attr(s.Kind)
	switch s.Strategy {
	case StrategyEquals:
		return value == s.Identifier
	case StrategyNotEquals:
		return value != s.Identifier
	case StrategyStartsWith:
		return strings.HasPrefix(value, s.Identifier)
	case StrategyNotStartsWith:
		return !strings.HasPrefix(value, s.Identifier)
	case StrategyEndsWith:
		return strings.HasSuffix(value, s.Identifier)
	case StrategyNotEndsWith:
		return !strings.HasSuffix(value, s.Identifier)
	case StrategyContains:
		return strings.Contains(value, s.Identifier)
	case StrategyNotContains:
		return !strings.Contains(value, s.Identifier)
	case StrategyLegacyContainsCI:
		return strings.Contains(strings.ToLower(value), strings.ToLower(s.Identifier))
	case StrategyRegex:
		re := e.regex.get(s.Identifier)
		return re != nil && re.MatchString(value)
	case StrategyNotRegex:
		re := e.regex.get(s.Identifier)
		return re == nil || !re.MatchString(value)
	default:
		return false
	}
}

// Match evaluates a Rule (Simple or Composite) against id.
func (e *Engine) Match(r Rule, id Identifiers) bool {
	if r.Simple != nil {
		return e.MatchSimple(*r.Simple, id)
	}
	if r.Composite != nil {
		for _, s := range r.Composite.Rules {
			if !e.MatchSimple(s, id) {
				return false
			}
		}
		return true
	}
	return false
}

// MatchResult records which rule (if any) matched, by slice index, so a
// caller can surface priority instead of relying on silent
// insertion-order dependence (spec.md §9 open question).
type MatchResult struct {
	Matched    bool
	RuleIndex  int
	RuleKind   string // "ignore", "manage" or "layered"
}

// ClassifyStyle carries the shell-reported style bits the cascade's
// final fallback step inspects.
type ClassifyStyle struct {
	HasCaption bool
	Resizable  bool
}

// Classify runs the totally ordered cascade from spec.md §4.3: reject
// non-real windows, then ignore rules, then manage rules, then the
// caption/resizable fallback, then a layered-window whitelist (windows
// that use a layered/translucent style and so fail the fallback).
// isRealWindow encodes step 1's shell-level
// test (zero-sized, toolwindow-without-app-window, owned popup, cloaked
// unless tolerating cloak).
func (e *Engine) Classify(isRealWindow bool, ignoreRules, manageRules, layeredRules []Rule, id Identifiers, style ClassifyStyle) (manage bool, decision MatchResult) {
	if !isRealWindow {
		return false, MatchResult{}
	}

	for i, r := range ignoreRules {
		if e.Match(r, id) {
			return false, MatchResult{Matched: true, RuleIndex: i, RuleKind: "ignore"}
		}
	}

	for i, r := range manageRules {
		if e.Match(r, id) {
			return true, MatchResult{Matched: true, RuleIndex: i, RuleKind: "manage"}
		}
	}

	if style.HasCaption && style.Resizable {
		return true, MatchResult{}
	}

	for i, r := range layeredRules {
		if e.Match(r, id) {
			return true, MatchResult{Matched: true, RuleIndex: i, RuleKind: "layered"}
		}
	}

	return false, MatchResult{}
}

// WorkspaceMatchingRule assigns a window, on first appearance, to a
// specific monitor/workspace destination.
type WorkspaceMatchingRule struct {
	Monitor      int
	Workspace    int
	Match        Rule
	InitialOnly  bool
	hasTriggered bool
}

// MatchingRuleSet owns a list of WorkspaceMatchingRule and tracks which
// initial-only rules have already fired.
type MatchingRuleSet struct {
	mu    sync.Mutex
	rules []*WorkspaceMatchingRule
	e     *Engine
}

// NewMatchingRuleSet builds an empty set evaluated with engine e.
func NewMatchingRuleSet(e *Engine) *MatchingRuleSet {
	return &MatchingRuleSet{e: e}
}

// Add registers a new workspace-matching rule.
func (s *MatchingRuleSet) Add(r WorkspaceMatchingRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc := r
	s.rules = append(s.rules, &rc)
}

// Resolve returns the (monitor, workspace) destination for id, if any
// rule matches and (for initial-only rules) has not already triggered.
func (s *MatchingRuleSet) Resolve(id Identifiers) (monitor, workspace int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rules {
		if r.InitialOnly && r.hasTriggered {
			continue
		}
		if s.e.Match(r.Match, id) {
			r.hasTriggered = true
			return r.Monitor, r.Workspace, true
		}
	}
	return 0, 0, false
}

// String renders a Simple rule for diagnostics/logging.
func (s Simple) String() string {
	return fmt.Sprintf("%s %s %q", s.Kind, s.Strategy, s.Identifier)
}
