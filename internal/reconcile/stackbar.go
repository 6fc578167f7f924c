package reconcile

import (
	"fmt"
	"math"

	"github.com/1broseidon/komorebi/internal/geom"
	"github.com/1broseidon/komorebi/internal/platform"
	"github.com/1broseidon/komorebi/internal/wm"
	"github.com/1broseidon/komorebi/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// StackbarConfig controls the stackbar reconciler's appearance.
type StackbarConfig struct {
	Enabled      bool
	AlwaysOn     bool
	TabWidth     int
	TabGap       int
	Height       int
	FocusedColor uint32
	TabColor     uint32
}

// TabIndex computes which stackbar tab, if any, a left-click at (x, y)
// relative to the strip's origin lands on, per spec.md S6: index is
// floor((x - gap) / (width + gap)).
func (c StackbarConfig) TabIndex(x, count int) (int, bool) {
	if c.TabWidth+c.TabGap <= 0 {
		return 0, false
	}
	idx := int(math.Floor(float64(x-c.TabGap) / float64(c.TabWidth+c.TabGap)))
	if idx < 0 || idx >= count {
		return 0, false
	}
	return idx, true
}

type stackbarStrip struct {
	tabs []xproto.Window
	rect geom.Rect
}

// StackbarReconciler draws a tabbed strip above every container holding
// more than one window (or every container, in AlwaysOn mode), and
// hides every stacked window but the focused one. Grounded on the same
// override-redirect overlay-window technique as the border reconciler
// (internal/movemode/overlay.go), generalized into a tab strip rather
// than an outline.
type StackbarReconciler struct {
	conn    *x11.Connection
	backend platform.Backend
	manager *wm.WindowManager
	cfg     StackbarConfig

	strips map[string]*stackbarStrip
}

// NewStackbarReconciler builds a stackbar reconciler.
func NewStackbarReconciler(conn *x11.Connection, backend platform.Backend, manager *wm.WindowManager, cfg StackbarConfig) *StackbarReconciler {
	if cfg.Height <= 0 {
		cfg.Height = 24
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = 200
	}
	return &StackbarReconciler{
		conn:    conn,
		backend: backend,
		manager: manager,
		cfg:     cfg,
		strips:  make(map[string]*stackbarStrip),
	}
}

func (s *StackbarReconciler) Name() string { return "stackbar" }

// Tick redraws every stackbar and hides every non-focused window in a
// stacked container.
func (s *StackbarReconciler) Tick() error {
	if !s.cfg.Enabled {
		s.hideAll()
		return nil
	}

	s.manager.Lock()
	type stacked struct {
		key     string
		rect    geom.Rect
		count   int
		focused int
	}
	var groups []stacked

	monitors := s.manager.Monitors()
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
		for i, rect := range rects {
			c := containers.At(i)
			if c == nil {
				continue
			}
			windows := (*c).Windows()
			if len(windows) <= 1 && !s.cfg.AlwaysOn {
				continue
			}
			if len(windows) == 0 {
				continue
			}
			focusedIdx := (*c).FocusedIndex()
			for wi, win := range windows {
				if wi == focusedIdx {
					_ = s.backend.Show(platform.WindowID(win.Handle))
				} else {
					_ = s.backend.Hide(platform.WindowID(win.Handle))
				}
			}
			groups = append(groups, stacked{
				key:     fmt.Sprintf("%d:%d", mon.ID(), i),
				rect:    rect,
				count:   len(windows),
				focused: focusedIdx,
			})
		}
	}
	s.manager.Unlock()

	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		seen[g.key] = true
		strip, ok := s.strips[g.key]
		if !ok || len(strip.tabs) != g.count {
			if ok {
				s.destroyStrip(strip)
			}
			strip = &stackbarStrip{}
			if err := s.createStrip(g.key, strip, g.count); err != nil {
				return err
			}
			s.strips[g.key] = strip
		}
		s.drawStrip(strip, g.rect, g.count, g.focused)
	}

	for key, strip := range s.strips {
		if !seen[key] {
			s.destroyStrip(strip)
			delete(s.strips, key)
		}
	}
	return nil
}

// RouteClick handles a left-click at x (pixels from the strip's left
// edge) on the stackbar identified by key, per spec.md S6: the tab
// under the click becomes the container's focused window, every other
// stacked window is hidden, and the newly focused window is shown and
// given keyboard focus. A click outside any tab, or on a strip that no
// longer exists, is a no-op.
func (s *StackbarReconciler) RouteClick(key string, x int) error {
	s.manager.Lock()
	defer s.manager.Unlock()

	var monIdx, containerIdx int
	if _, err := fmt.Sscanf(key, "%d:%d", &monIdx, &containerIdx); err != nil {
		return nil
	}
	monitors := s.manager.Monitors()
	if monIdx < 0 || monIdx >= monitors.Len() {
		return nil
	}
	mon := *monitors.At(monIdx)
	ws := mon.FocusedWorkspace()
	if ws == nil {
		return nil
	}
	containers := ws.Containers()
	c := containers.At(containerIdx)
	if c == nil {
		return nil
	}
	windows := (*c).Windows()
	idx, ok := s.cfg.TabIndex(x, len(windows))
	if !ok {
		return nil
	}
	(*c).Focus(idx)
	for wi, win := range windows {
		if wi == idx {
			if err := s.backend.Show(platform.WindowID(win.Handle)); err != nil {
				return err
			}
			if err := s.backend.FocusWindow(platform.WindowID(win.Handle)); err != nil {
				return err
			}
		} else if err := s.backend.Hide(platform.WindowID(win.Handle)); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup destroys every stackbar window.
func (s *StackbarReconciler) Cleanup() {
	for key, strip := range s.strips {
		s.destroyStrip(strip)
		delete(s.strips, key)
	}
}

func (s *StackbarReconciler) hideAll() {
	for key, strip := range s.strips {
		s.destroyStrip(strip)
		delete(s.strips, key)
	}
}

func (s *StackbarReconciler) createStrip(key string, strip *stackbarStrip, count int) error {
	xu := s.conn.XUtil
	conn := xu.Conn()
	screen := xu.Screen()
	strip.tabs = make([]xproto.Window, count)
	for i := 0; i < count; i++ {
		wid, err := xproto.NewWindowId(conn)
		if err != nil {
			return err
		}
		err = xproto.CreateWindowChecked(
			conn, screen.RootDepth, wid, s.conn.Root,
			0, 0, 1, 1, 0,
			xproto.WindowClassInputOutput, screen.RootVisual,
			xproto.CwOverrideRedirect|xproto.CwBackPixel,
			[]uint32{0, 1},
		).Check()
		if err != nil {
			return err
		}
		if err := xwindow.New(xu, wid).Listen(xproto.EventMaskButtonPress); err != nil {
			return err
		}
		s.connectClick(xu, wid, key, i)
		strip.tabs[i] = wid
	}
	return nil
}

// connectClick registers the click-routing handler for tab index
// tabIdx of the strip identified by key: the click's position within
// the tab window is converted to a strip-relative x so the same
// floor((x-gap)/(width+gap)) formula from spec.md S6 resolves the tab,
// rather than trusting the window that received the event directly.
func (s *StackbarReconciler) connectClick(xu *xgbutil.XUtil, wid xproto.Window, key string, tabIdx int) {
	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		stripX := tabIdx*(s.cfg.TabWidth+s.cfg.TabGap) + int(ev.EventX)
		_ = s.RouteClick(key, stripX)
	}).Connect(xu, wid)
}

func (s *StackbarReconciler) drawStrip(strip *stackbarStrip, rect geom.Rect, count, focused int) {
	conn := s.conn.XUtil.Conn()
	y := rect.Top - s.cfg.Height
	for i, tab := range strip.tabs {
		x := rect.Left + i*(s.cfg.TabWidth+s.cfg.TabGap)
		color := s.cfg.TabColor
		if i == focused {
			color = s.cfg.FocusedColor
		}
		xproto.ConfigureWindow(
			conn, tab,
			xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
			[]uint32{uint32(x), uint32(y), uint32(s.cfg.TabWidth), uint32(s.cfg.Height), xproto.StackModeAbove},
		)
		xproto.ChangeWindowAttributes(conn, tab, xproto.CwBackPixel, []uint32{color})
		xproto.ClearArea(conn, false, tab, 0, 0, 0, 0)
		xproto.MapWindow(conn, tab)
	}
	strip.rect = rect
}

func (s *StackbarReconciler) destroyStrip(strip *stackbarStrip) {
	conn := s.conn.XUtil.Conn()
	for _, tab := range strip.tabs {
		if tab != 0 {
			xproto.DestroyWindow(conn, tab)
		}
	}
	strip.tabs = nil
}
