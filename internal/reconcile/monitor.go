package reconcile

import (
	"github.com/1broseidon/komorebi/internal/command"
	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/platform"
	"github.com/1broseidon/komorebi/internal/wm"
)

// MonitorConfig controls the monitor reconciler.
type MonitorConfig struct {
	DefaultWorkspaceCount int
}

// MonitorReconciler polls the backend's display topology and applies
// hot-plug changes to the window manager: a display that disappears is
// disconnected (sidelined per spec.md S5), a display that appears is
// reconnected from the sideline cache if its device id matches, or
// added as a fresh monitor otherwise. Grounded on
// internal/x11/monitors.go's RandR-backed enumeration, which already
// gives each output a stable name used here as DeviceID.
type MonitorReconciler struct {
	backend platform.Backend
	manager *wm.WindowManager
	engine  *command.Engine
	cfg     MonitorConfig

	makeWorkspace func(idx int) *wm.Workspace
}

// NewMonitorReconciler builds a monitor reconciler. makeWorkspace
// builds a default workspace for newly (re)connected monitors, mirroring
// the daemon startup's own workspace construction.
func NewMonitorReconciler(backend platform.Backend, manager *wm.WindowManager, engine *command.Engine, cfg MonitorConfig, makeWorkspace func(idx int) *wm.Workspace) *MonitorReconciler {
	if cfg.DefaultWorkspaceCount <= 0 {
		cfg.DefaultWorkspaceCount = 1
	}
	return &MonitorReconciler{
		backend:       backend,
		manager:       manager,
		engine:        engine,
		cfg:           cfg,
		makeWorkspace: makeWorkspace,
	}
}

func (r *MonitorReconciler) Name() string { return "monitor" }

// Tick diffs the backend's live displays against the manager's current
// monitor ring by DeviceID (the RandR output name) and reconciles.
func (r *MonitorReconciler) Tick() error {
	displays, err := r.backend.Displays()
	if err != nil {
		return err
	}
	live := make(map[string]platform.Display, len(displays))
	for _, d := range displays {
		live[d.Name] = d
	}

	r.manager.Lock()
	defer r.manager.Unlock()

	monitors := r.manager.Monitors()
	known := make(map[string]bool, monitors.Len())
	for i := 0; i < monitors.Len(); i++ {
		mon := *monitors.At(i)
		known[mon.DeviceID()] = true
		d, ok := live[mon.DeviceID()]
		if !ok {
			if err := r.manager.DisconnectMonitor(i); err != nil {
				continue
			}
			if affected := r.manager.FocusedMonitor(); affected != nil && r.engine != nil {
				r.engine.ApplyMonitor(affected)
			}
			monitors = r.manager.Monitors()
			i--
			continue
		}
		r.applyResolutionChange(mon, d)
	}

	for _, d := range displays {
		if known[d.Name] {
			continue
		}
		size := geom.NewRect(d.Bounds.X, d.Bounds.Y, d.Bounds.Width, d.Bounds.Height)
		mon := r.manager.ReconnectMonitor(d.ID, d.Name, d.Name, size, r.cfg.DefaultWorkspaceCount, r.makeWorkspace)
		if r.engine != nil {
			r.engine.ApplyMonitor(mon)
		}
	}
	return nil
}

// applyResolutionChange updates mon's cached size/work area if the live
// display's bounds no longer match (e.g. the user changed resolution
// without unplugging), then reapplies layout to the affected monitor.
func (r *MonitorReconciler) applyResolutionChange(mon *wm.Monitor, d platform.Display) {
	size := geom.NewRect(d.Bounds.X, d.Bounds.Y, d.Bounds.Width, d.Bounds.Height)
	if mon.Size() == size {
		return
	}
	mon.SetSize(size)
	mon.SetWorkAreaSize(geom.NewRect(d.Usable.X, d.Usable.Y, d.Usable.Width, d.Usable.Height))
	if r.engine != nil {
		r.engine.ApplyMonitor(mon)
	}
}
