// Command komorebid is the tiling window manager daemon: it connects to
// the X server, builds the monitor/workspace tree from the configured
// (or auto-detected) displays, and wires the command socket, the
// subscription hub, the OS-event dispatcher, and the background
// reconcilers together before handing control to the X11 event loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/komorebi/internal/command"
	"github.com/1broseidon/komorebi/internal/config"
	"github.com/1broseidon/komorebi/internal/events"
	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/ipc"
	"github.com/1broseidon/komorebi/internal/layout"
	"github.com/1broseidon/komorebi/internal/platform"
	"github.com/1broseidon/komorebi/internal/pubsub"
	"github.com/1broseidon/komorebi/internal/quicksave"
	"github.com/1broseidon/komorebi/internal/reconcile"
	"github.com/1broseidon/komorebi/internal/rule"
	"github.com/1broseidon/komorebi/internal/wm"
	"github.com/1broseidon/komorebi/internal/x11"
)

const (
	titleChangeCoalesceWindow = 50 * time.Millisecond
	reconcileTick             = 500 * time.Millisecond
	monitorPollTick           = 2 * time.Second
	orphanPollTick            = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to a komorebi.yaml config file (defaults to XDG config dir)")
	flag.Parse()

	logger := newLogger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		logger.Error("failed to connect to X server", "error", err)
		os.Exit(1)
	}
	defer backend.Disconnect()

	manager := wm.NewWindowManager()
	applyGeneralSettings(manager, cfg)

	if err := seedMonitors(manager, backend, cfg); err != nil {
		logger.Error("failed to enumerate displays", "error", err)
		os.Exit(1)
	}

	ruleEngine := rule.NewEngine(logger)
	ruleStore := rule.NewStoreWithExtras(cfg.GetIgnoreRules(), cfg.GetManageRules(), cfg.GetFloatRules(), cfg.GetLayeredRules(), cfg.GetTrayApplicationRules())
	workspaceRules := rule.NewMatchingRuleSet(ruleEngine)

	cmdBackend := &platform.CommandBackend{Backend: backend}

	hub := pubsub.NewHub(logger, func() pubsub.State {
		manager.RLock()
		defer manager.RUnlock()
		return pubsub.BuildState(manager)
	})
	defer hub.Close()

	engine := &command.Engine{
		Manager:     manager,
		Backend:     cmdBackend,
		Notifier:    hub,
		Rules:       ruleStore,
		Subscribers: hub,
		Persist:     quicksave.Store{},
		Logger:      logger,
		State: func() (interface{}, error) {
			manager.RLock()
			defer manager.RUnlock()
			return pubsub.BuildState(manager), nil
		},
		GlobalState: func() (interface{}, error) {
			manager.RLock()
			defer manager.RUnlock()
			return pubsub.BuildGlobalState(manager), nil
		},
	}

	socketPath, err := ipc.CommandSocketPath()
	if err != nil {
		logger.Error("failed to resolve command socket path", "error", err)
		os.Exit(1)
	}
	server := &command.Server{Engine: engine, Logger: logger}
	if err := server.Listen(socketPath); err != nil {
		logger.Error("failed to open command socket", "path", socketPath, "error", err)
		os.Exit(1)
	}
	go func() {
		if err := server.Serve(); err != nil {
			logger.Error("command server stopped", "error", err)
		}
	}()

	ch := events.NewChannel(256)
	ingress := events.NewIngress(ruleEngine, nil, nil, ruleStore.TrayApplicationRules(), titleChangeCoalesceWindow)

	dispatcher := &events.Dispatcher{
		Manager:        manager,
		Backend:        backend,
		CmdEngine:      engine,
		RuleEngine:     ruleEngine,
		Rules:          ruleStore,
		WorkspaceRules: workspaceRules,
		Logger:         logger,
	}
	go dispatcher.Run(ch)

	pump := &platform.EventPump{Backend: backend, Out: ch, Ingress: ingress, Logger: logger}
	if err := pump.Attach(); err != nil {
		logger.Error("failed to attach X11 event pump", "error", err)
		os.Exit(1)
	}
	go backend.EventLoop()

	seedExistingWindows(backend, ch, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconcilerConn, connErr := x11.NewConnection()
	if connErr != nil {
		logger.Warn("failed to open dedicated X11 connection for decoration reconcilers, borders and stackbars disabled", "error", connErr)
	} else {
		defer reconcilerConn.Close()
	}

	var cleaners []cleaner
	if b := startBorderReconciler(ctx, cfg, reconcilerConn, manager, logger); b != nil {
		cleaners = append(cleaners, b)
	}
	if s := startStackbarReconciler(ctx, cfg, reconcilerConn, backend, manager, logger); s != nil {
		cleaners = append(cleaners, s)
	}
	cleaners = append(cleaners, startTransparencyReconciler(ctx, cfg, backend, manager, logger))

	orphan := reconcile.NewOrphanReconciler(backend, manager, ch)
	go reconcile.Supervise(ctx, orphan, orphanPollTick, logger)

	monitor := reconcile.NewMonitorReconciler(backend, manager, engine, reconcile.MonitorConfig{
		DefaultWorkspaceCount: defaultWorkspaceCount(cfg),
	}, workspaceFactory(cfg, ""))
	go reconcile.Supervise(ctx, monitor, monitorPollTick, logger)

	logger.Info("komorebi daemon started", "socket", socketPath)

	waitForShutdown(logger)
	cancel()
	server.Close()

	shutdownSweep(manager, backend, cleaners...)
}

func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if os.Getenv("KOMOREBI_LOG_FORMAT") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func applyGeneralSettings(manager *wm.WindowManager, cfg *config.Config) {
	manager.SetResizeDelta(cfg.GetResizeDelta())
	manager.SetFocusFollowsMouse(cfg.GetFocusFollowsMouse())
	manager.SetCrossMonitorMoveBehaviour(cfg.GetCrossMonitorMoveBehaviour())
	manager.SetUnmanagedWindowOperationBehaviour(cfg.GetUnmanagedWindowOperationBehaviour())
	manager.SetMouseFollowsFocus(cfg.GetMouseFollowsFocus())
	manager.SetNewWindowBehaviour(cfg.GetNewWindowBehaviour())

	top, bottom, left, right := cfg.GetWorkAreaOffset()
	if top != 0 || bottom != 0 || left != 0 || right != 0 {
		offset := geom.Rect{Left: left, Top: top, Right: right, Bottom: bottom}
		manager.SetWorkAreaOffset(&offset)
	}
}

func defaultWorkspaceCount(cfg *config.Config) int {
	if len(cfg.Monitors) == 0 {
		return 1
	}
	max := 1
	for _, m := range cfg.Monitors {
		if len(m.Workspaces) > max {
			max = len(m.Workspaces)
		}
	}
	return max
}

// workspaceFactory builds the per-index workspace constructor shared by
// the initial monitor seeding and the monitor reconciler's hotplug path,
// so a monitor reconnected at runtime gets workspaces configured the
// same way as one present at startup.
func workspaceFactory(cfg *config.Config, deviceID string) func(idx int) *wm.Workspace {
	return func(idx int) *wm.Workspace {
		names := cfg.GetMonitorWorkspaceNames(deviceID)
		name := fmt.Sprintf("workspace-%d", idx+1)
		if idx < len(names) && names[idx] != "" {
			name = names[idx]
		}

		kind, containerPadding, workspacePadding := cfg.GetWorkspaceSettings(deviceID, idx)
		ws := wm.NewWorkspace(name, layout.Descriptor{DefaultKind: kind})
		ws.SetContainerPadding(containerPadding)
		ws.SetWorkspacePadding(workspacePadding)

		rules := cfg.GetLayoutRules(deviceID, idx)
		if len(rules) > 0 {
			layoutRules := make([]wm.LayoutRule, 0, len(rules))
			for _, r := range rules {
				layoutRules = append(layoutRules, wm.LayoutRule{
					MinContainerCount: r.MinContainerCount,
					Layout:            layout.Descriptor{DefaultKind: r.Kind},
				})
			}
			ws.SetLayoutRules(layoutRules)
		}
		return ws
	}
}

func seedMonitors(manager *wm.WindowManager, backend *platform.LinuxBackend, cfg *config.Config) error {
	displays, err := backend.Displays()
	if err != nil {
		return err
	}
	if len(displays) == 0 {
		return fmt.Errorf("main: no displays reported by X server")
	}
	for i, d := range displays {
		size := geom.NewRect(d.Bounds.X, d.Bounds.Y, d.Bounds.Width, d.Bounds.Height)
		mon := wm.NewMonitor(i, d.Name, d.Name, size)
		mon.SetWorkAreaSize(geom.NewRect(d.Usable.X, d.Usable.Y, d.Usable.Width, d.Usable.Height))
		mon.EnsureWorkspaceCount(defaultWorkspaceCountFor(cfg, d.Name), workspaceFactory(cfg, d.Name))
		manager.AddMonitor(mon)
	}
	return nil
}

func defaultWorkspaceCountFor(cfg *config.Config, deviceID string) int {
	names := cfg.GetMonitorWorkspaceNames(deviceID)
	if len(names) > 0 {
		return len(names)
	}
	return 1
}

// seedExistingWindows enqueues a synthetic Manage event for every
// top-level window already on screen at startup, so komorebi adopts a
// session already in progress instead of only reacting to windows
// created after it attaches.
func seedExistingWindows(backend *platform.LinuxBackend, ch events.Channel, logger *slog.Logger) {
	displays, err := backend.Displays()
	if err != nil {
		logger.Warn("failed to enumerate displays for initial window scan", "error", err)
		return
	}
	for i := range displays {
		windows, err := backend.ListWindowsOnDisplay(i)
		if err != nil {
			continue
		}
		for _, w := range windows {
			ch <- events.Event{Kind: events.Manage, Handle: wm.Handle(w.ID)}
		}
	}
}

func startBorderReconciler(ctx context.Context, cfg *config.Config, conn *x11.Connection, manager *wm.WindowManager, logger *slog.Logger) *reconcile.BorderReconciler {
	if conn == nil {
		return nil
	}
	borderCfg, err := cfg.GetBorderConfig()
	if err != nil {
		logger.Warn("invalid border config, borders disabled", "error", err)
		return nil
	}
	r := reconcile.NewBorderReconciler(conn, manager, borderCfg)
	go reconcile.Supervise(ctx, r, reconcileTick, logger)
	return r
}

func startStackbarReconciler(ctx context.Context, cfg *config.Config, conn *x11.Connection, backend *platform.LinuxBackend, manager *wm.WindowManager, logger *slog.Logger) *reconcile.StackbarReconciler {
	if conn == nil {
		return nil
	}
	stackbarCfg, err := cfg.GetStackbarConfig()
	if err != nil {
		logger.Warn("invalid stackbar config, stackbars disabled", "error", err)
		return nil
	}
	r := reconcile.NewStackbarReconciler(conn, backend, manager, stackbarCfg)
	go reconcile.Supervise(ctx, r, reconcileTick, logger)
	return r
}

func startTransparencyReconciler(ctx context.Context, cfg *config.Config, backend *platform.LinuxBackend, manager *wm.WindowManager, logger *slog.Logger) *reconcile.TransparencyReconciler {
	r := reconcile.NewTransparencyReconciler(backend, manager, cfg.GetTransparencyConfig())
	go reconcile.Supervise(ctx, r, reconcileTick, logger)
	return r
}

func waitForShutdown(logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal, restoring window state", "signal", sig.String())
}

type cleaner interface{ Cleanup() }

// shutdownSweep restores every border, stackbar, and transparency
// effect the daemon applied, and shows every known window, so exiting
// komorebi never leaves the screen in a half-decorated, half-hidden
// state.
func shutdownSweep(manager *wm.WindowManager, backend *platform.LinuxBackend, cleaners ...cleaner) {
	for _, c := range cleaners {
		if c == nil {
			continue
		}
		c.Cleanup()
	}
	manager.RLock()
	handles := manager.KnownHandles()
	manager.RUnlock()
	for _, h := range handles {
		_ = backend.Show(platform.WindowID(h))
	}
}
