package reconcile

import (
	"github.com/1broseidon/komorebi/internal/platform"
	"github.com/1broseidon/komorebi/internal/wm"
)

// TransparencyConfig controls the transparency reconciler.
type TransparencyConfig struct {
	Enabled          bool
	FocusedOpacity   float64
	UnfocusedOpacity float64
}

// TransparencyReconciler fades every known window except each
// monitor's focused window to UnfocusedOpacity and sets the focused
// windows to FocusedOpacity,
// using the same raw property-write approach the teacher's
// internal/x11/desktop.go uses for EWMH state it can't set through the
// xgbutil helpers directly (here, _NET_WM_WINDOW_OPACITY via
// Backend.SetOpacity rather than a ClientMessageEvent, since opacity is
// a plain property write, not a request the window manager must honor).
type TransparencyReconciler struct {
	backend platform.Backend
	manager *wm.WindowManager
	cfg     TransparencyConfig

	lastApplied map[wm.Handle]float64
}

// NewTransparencyReconciler builds a transparency reconciler.
func NewTransparencyReconciler(backend platform.Backend, manager *wm.WindowManager, cfg TransparencyConfig) *TransparencyReconciler {
	return &TransparencyReconciler{
		backend:     backend,
		manager:     manager,
		cfg:         cfg,
		lastApplied: make(map[wm.Handle]float64),
	}
}

func (t *TransparencyReconciler) Name() string { return "transparency" }

// Tick applies the configured opacity to every known window, skipping
// windows whose opacity already matches to avoid redundant property
// writes on every tick.
func (t *TransparencyReconciler) Tick() error {
	if !t.cfg.Enabled {
		return t.restoreAll()
	}

	t.manager.RLock()
	focused := map[wm.Handle]bool{}
	monitors := t.manager.Monitors()
	for mi := 0; mi < monitors.Len(); mi++ {
		mon := *monitors.At(mi)
		ws := mon.FocusedWorkspace()
		if ws == nil {
			continue
		}
		if c := ws.Containers().Focused(); c != nil {
			if w := (*c).FocusedWindow(); w != nil {
				focused[w.Handle] = true
			}
		}
	}
	handles := t.manager.KnownHandles()
	t.manager.RUnlock()

	for _, h := range handles {
		target := t.cfg.UnfocusedOpacity
		if focused[h] {
			target = t.cfg.FocusedOpacity
		}
		if applied, ok := t.lastApplied[h]; ok && applied == target {
			continue
		}
		if err := t.backend.SetOpacity(platform.WindowID(h), target); err != nil {
			continue
		}
		t.lastApplied[h] = target
	}
	return nil
}

// Cleanup resets every window this reconciler has touched back to full
// opacity, used during the daemon's restoration sweep on shutdown.
func (t *TransparencyReconciler) Cleanup() {
	_ = t.restoreAll()
}

func (t *TransparencyReconciler) restoreAll() error {
	for h := range t.lastApplied {
		_ = t.backend.SetOpacity(platform.WindowID(h), 1.0)
	}
	t.lastApplied = make(map[wm.Handle]float64)
	return nil
}
