package reconcile

import (
	"fmt"
	"time"

	"github.com/1broseidon/komorebi/internal/animation"
	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/wm"
	"github.com/1broseidon/komorebi/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// BorderConfig controls the border reconciler's appearance.
type BorderConfig struct {
	Enabled        bool
	Thickness      int
	FocusedColor   uint32
	UnfocusedColor uint32
	MonocleColor   uint32

	// AnimationDuration, when positive, eases a border's color toward a
	// new target over that span instead of snapping it, following the
	// transition style animation/style.rs's Ease curves exist to drive.
	// Zero disables animation and preserves the pre-existing snap
	// behavior.
	AnimationDuration time.Duration
	AnimationEasing   animation.Curve
}

// borderOverlay is a rectangular outline made of 4 thin override-redirect
// windows, ported from the teacher's movemode.BorderOverlay.
type borderOverlay struct {
	top, bottom, left, right xproto.Window
	created, mapped          bool

	currentColor       uint32
	transFrom, transTo uint32
	transStart         time.Time
}

// BorderReconciler draws a border around every tiled container on every
// monitor's focused workspace, colored by focus state. Grounded on
// internal/movemode/overlay.go's BorderOverlay/OverlayManager pattern,
// generalized from move-mode-only rendering to a continuously-supervised
// reconciler over the whole window manager state.
type BorderReconciler struct {
	conn    *x11.Connection
	manager *wm.WindowManager
	cfg     BorderConfig

	overlays map[string]*borderOverlay
}

// NewBorderReconciler builds a border reconciler against conn, drawing
// from manager's state on each Tick.
func NewBorderReconciler(conn *x11.Connection, manager *wm.WindowManager, cfg BorderConfig) *BorderReconciler {
	if cfg.Thickness <= 0 {
		cfg.Thickness = 4
	}
	return &BorderReconciler{
		conn:     conn,
		manager:  manager,
		cfg:      cfg,
		overlays: make(map[string]*borderOverlay),
	}
}

func (b *BorderReconciler) Name() string { return "border" }

// Tick redraws borders for every monitor's focused workspace and hides
// overlays whose container no longer exists.
func (b *BorderReconciler) Tick() error {
	if !b.cfg.Enabled {
		b.hideAll()
		return nil
	}

	b.manager.RLock()
	type draw struct {
		key   string
		rect  geom.Rect
		color uint32
	}
	var draws []draw

	monitors := b.manager.Monitors()
	for mi := 0; mi < monitors.Len(); mi++ {
		mon := *monitors.At(mi)
		ws := mon.FocusedWorkspace()
		if ws == nil || !ws.Tile() {
			continue
		}
		rects, err := ws.ComputeRects(mon.WorkAreaSize())
		if err != nil {
			continue
		}
		containers := ws.Containers()
		focusedIdx := containers.FocusedIdx()
		for i, rect := range rects {
			color := b.cfg.UnfocusedColor
			if i == focusedIdx {
				color = b.cfg.FocusedColor
			}
			if ws.Mode() != wm.ModeTiled {
				color = b.cfg.MonocleColor
			}
			draws = append(draws, draw{
				key:   fmt.Sprintf("%d:%d", mon.ID(), i),
				rect:  rect,
				color: color,
			})
		}
	}
	b.manager.RUnlock()

	seen := make(map[string]bool, len(draws))
	for _, d := range draws {
		seen[d.key] = true
		ov, ok := b.overlays[d.key]
		if !ok {
			ov = &borderOverlay{}
			if err := b.create(ov); err != nil {
				return err
			}
			b.overlays[d.key] = ov
		}
		b.show(ov, d.rect, d.color)
	}

	for key, ov := range b.overlays {
		if !seen[key] {
			b.hide(ov)
		}
	}
	return nil
}

// Cleanup destroys every overlay window, used during the daemon's
// restoration sweep on shutdown.
func (b *BorderReconciler) Cleanup() {
	for _, ov := range b.overlays {
		b.destroy(ov)
	}
	b.overlays = make(map[string]*borderOverlay)
}

func (b *BorderReconciler) hideAll() {
	for _, ov := range b.overlays {
		b.hide(ov)
	}
}

func (b *BorderReconciler) create(ov *borderOverlay) error {
	var err error
	if ov.top, err = b.newOverlayWindow(); err != nil {
		return err
	}
	if ov.bottom, err = b.newOverlayWindow(); err != nil {
		return err
	}
	if ov.left, err = b.newOverlayWindow(); err != nil {
		return err
	}
	if ov.right, err = b.newOverlayWindow(); err != nil {
		return err
	}
	ov.created = true
	return nil
}

func (b *BorderReconciler) newOverlayWindow() (xproto.Window, error) {
	conn := b.conn.XUtil.Conn()
	screen := b.conn.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		b.conn.Root,
		0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwBackPixel,
		[]uint32{0, 1},
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

func (b *BorderReconciler) show(ov *borderOverlay, rect geom.Rect, color uint32) {
	x, y := rect.Left, rect.Top
	w, h := rect.Width(), rect.Height()
	t := b.cfg.Thickness

	displayColor := b.animatedColor(ov, color)

	b.update(ov.top, x, y, w, t, displayColor)
	b.update(ov.bottom, x, y+h-t, w, t, displayColor)
	b.update(ov.left, x, y+t, t, h-2*t, displayColor)
	b.update(ov.right, x+w-t, y+t, t, h-2*t, displayColor)

	conn := b.conn.XUtil.Conn()
	xproto.MapWindow(conn, ov.top)
	xproto.MapWindow(conn, ov.bottom)
	xproto.MapWindow(conn, ov.left)
	xproto.MapWindow(conn, ov.right)
	ov.mapped = true
}

// animatedColor returns the color ov should be painted on this tick.
// When a new target color arrives it starts a fresh transition from
// the overlay's last displayed color; while a transition is in flight,
// it returns the eased blend for the elapsed fraction of
// AnimationDuration. With AnimationDuration unset, or before an
// overlay's first paint, it snaps directly to target.
func (b *BorderReconciler) animatedColor(ov *borderOverlay, target uint32) uint32 {
	if b.cfg.AnimationDuration <= 0 || !ov.mapped {
		ov.currentColor, ov.transFrom, ov.transTo = target, target, target
		return target
	}
	if target != ov.transTo {
		ov.transFrom = ov.currentColor
		ov.transTo = target
		ov.transStart = time.Now()
	}
	elapsed := time.Since(ov.transStart)
	if elapsed >= b.cfg.AnimationDuration {
		ov.currentColor = ov.transTo
		return ov.currentColor
	}
	t := float64(elapsed) / float64(b.cfg.AnimationDuration)
	ov.currentColor = animation.LerpColor(ov.transFrom, ov.transTo, animation.Evaluate(b.cfg.AnimationEasing, t))
	return ov.currentColor
}

func (b *BorderReconciler) hide(ov *borderOverlay) {
	if !ov.mapped {
		return
	}
	conn := b.conn.XUtil.Conn()
	xproto.UnmapWindow(conn, ov.top)
	xproto.UnmapWindow(conn, ov.bottom)
	xproto.UnmapWindow(conn, ov.left)
	xproto.UnmapWindow(conn, ov.right)
	ov.mapped = false
}

func (b *BorderReconciler) destroy(ov *borderOverlay) {
	conn := b.conn.XUtil.Conn()
	for _, w := range []xproto.Window{ov.top, ov.bottom, ov.left, ov.right} {
		if w != 0 {
			xproto.DestroyWindow(conn, w)
		}
	}
	*ov = borderOverlay{}
}

func (b *BorderReconciler) update(wid xproto.Window, x, y, width, height int, color uint32) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	conn := b.conn.XUtil.Conn()
	xproto.ConfigureWindow(
		conn, wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{uint32(x), uint32(y), uint32(width), uint32(height), xproto.StackModeAbove},
	)
	xproto.ChangeWindowAttributes(conn, wid, xproto.CwBackPixel, []uint32{color})
	xproto.ClearArea(conn, false, wid, 0, 0, 0, 0)
}
