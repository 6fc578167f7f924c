package events

import (
	"sync"
	"time"

	"github.com/1broseidon/komorebi/internal/rule"
	"github.com/1broseidon/komorebi/internal/wm"
)

// Ingress classifies raw shell callbacks before they reach the merged
// channel: title-change promotion and focus-change coalescing, per
// spec.md §4.4.
type Ingress struct {
	engine *rule.Engine

	objectNameChangeOnLaunch []rule.Rule
	titleChangeIgnore        []rule.Rule
	trayApplications         []rule.Rule

	focusMu       sync.Mutex
	lastFocus     wm.Handle
	lastFocusAt   time.Time
	focusHasValue bool
	coalesceWindow time.Duration
}

// NewIngress builds an ingress normalizer. coalesceWindow is the
// duration within which identical focus events are dropped; a zero
// value disables coalescing. trayApplications identifies multi-window
// tray applications whose secondary windows must never be promoted by
// the title-change-at-launch heuristic (spec.md §4.4), on top of the
// explicit titleChangeIgnore set.
func NewIngress(engine *rule.Engine, objectNameChangeOnLaunch, titleChangeIgnore, trayApplications []rule.Rule, coalesceWindow time.Duration) *Ingress {
	return &Ingress{
		engine:                   engine,
		objectNameChangeOnLaunch: objectNameChangeOnLaunch,
		titleChangeIgnore:        titleChangeIgnore,
		trayApplications:         trayApplications,
		coalesceWindow:           coalesceWindow,
	}
}

func (in *Ingress) matchesAny(rules []rule.Rule, id rule.Identifiers) bool {
	for _, r := range rules {
		if in.engine.Match(r, id) {
			return true
		}
	}
	return false
}

// NormalizeTitleChange implements spec.md §4.4's title-change-at-launch
// promotion rule: many apps emit a title change at launch instead of a
// show event.
func (in *Ingress) NormalizeTitleChange(h wm.Handle, id rule.Identifiers, minimized bool) Event {
	if in.matchesAny(in.objectNameChangeOnLaunch, id) && !minimized &&
		!in.matchesAny(in.titleChangeIgnore, id) && !in.matchesAny(in.trayApplications, id) {
		return Event{Kind: Show, Handle: h}
	}
	return Event{Kind: TitleUpdate, Handle: h}
}

// AcceptFocusChange reports whether a focus-change event for h at time
// now should be forwarded, coalescing identical focus events that
// arrive within the configured window.
func (in *Ingress) AcceptFocusChange(h wm.Handle, now time.Time) bool {
	in.focusMu.Lock()
	defer in.focusMu.Unlock()

	if in.focusHasValue && h == in.lastFocus && in.coalesceWindow > 0 && now.Sub(in.lastFocusAt) < in.coalesceWindow {
		return false
	}
	in.lastFocus = h
	in.lastFocusAt = now
	in.focusHasValue = true
	return true
}
