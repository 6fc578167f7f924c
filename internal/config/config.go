// Package config implements komorebi's YAML configuration document: the
// rule sets, per-workspace layout rules, monitor workspace names, and
// reconciler appearance settings the daemon loads at startup. Grounded
// on the teacher's internal/config/config.go: plain structs with yaml
// tags, with defaults and conversions applied by GetX accessors.
package config

import (
	"fmt"
	"time"

	"github.com/1broseidon/komorebi/internal/animation"
	"github.com/1broseidon/komorebi/internal/layout"
	"github.com/1broseidon/komorebi/internal/reconcile"
	"github.com/1broseidon/komorebi/internal/rule"
	"github.com/1broseidon/komorebi/internal/wm"
)

// RuleDocument is the YAML shape of one rule.Rule: either a single
// Simple test or a Composite conjunction, mirroring rule.Rule's two
// mutually-exclusive fields.
type RuleDocument struct {
	Kind       rule.Kind     `yaml:"kind,omitempty"`
	Identifier string        `yaml:"identifier,omitempty"`
	Strategy   rule.Strategy `yaml:"strategy,omitempty"`
	All        []RuleDocument `yaml:"all,omitempty"`
}

// ToRule converts a RuleDocument into a rule.Rule, building a Composite
// when All is populated and a Simple otherwise.
func (d RuleDocument) ToRule() rule.Rule {
	if len(d.All) > 0 {
		simples := make([]rule.Simple, 0, len(d.All))
		for _, sub := range d.All {
			simples = append(simples, rule.Simple{Kind: sub.Kind, Identifier: sub.Identifier, Strategy: sub.Strategy})
		}
		return rule.Rule{Composite: &rule.Composite{Rules: simples}}
	}
	return rule.Rule{Simple: &rule.Simple{Kind: d.Kind, Identifier: d.Identifier, Strategy: d.Strategy}}
}

// LayoutRuleDocument maps a container-count threshold to a layout kind,
// the YAML form of wm.LayoutRule.
type LayoutRuleDocument struct {
	MinContainerCount int         `yaml:"min_container_count"`
	Kind              layout.Kind `yaml:"kind"`
}

// WorkspaceDocument configures one workspace slot on a monitor.
type WorkspaceDocument struct {
	Name           string               `yaml:"name,omitempty"`
	DefaultLayout  layout.Kind          `yaml:"default_layout,omitempty"`
	LayoutRules    []LayoutRuleDocument `yaml:"layout_rules,omitempty"`
	ContainerGap   int                  `yaml:"container_padding,omitempty"`
	WorkspacePad   int                  `yaml:"workspace_padding,omitempty"`
}

// MonitorDocument names the workspaces on one monitor, keyed by the
// monitor's device id (its RandR output name, e.g. "HDMI-1").
type MonitorDocument struct {
	DeviceID   string              `yaml:"device_id"`
	Workspaces []WorkspaceDocument `yaml:"workspaces,omitempty"`
}

// BorderDocument is the YAML form of reconcile.BorderConfig.
type BorderDocument struct {
	Enabled        bool   `yaml:"enabled"`
	Thickness      int    `yaml:"thickness"`
	FocusedColor   string `yaml:"focused_color"`
	UnfocusedColor string `yaml:"unfocused_color"`
	MonocleColor   string `yaml:"monocle_color"`

	// AnimationMS and AnimationEasing configure the color-transition
	// easing described in SPEC_FULL.md §4.7 (grounded on
	// animation/style.rs's Ease curves). AnimationMS of 0 disables
	// animation.
	AnimationMS     int    `yaml:"animation_ms,omitempty"`
	AnimationEasing string `yaml:"animation_easing,omitempty"`
}

// StackbarDocument is the YAML form of reconcile.StackbarConfig.
type StackbarDocument struct {
	Enabled      bool   `yaml:"enabled"`
	AlwaysOn     bool   `yaml:"always_on"`
	TabWidth     int    `yaml:"tab_width"`
	TabGap       int    `yaml:"tab_gap"`
	Height       int    `yaml:"height"`
	FocusedColor string `yaml:"focused_color"`
	TabColor     string `yaml:"tab_color"`
}

// TransparencyDocument is the YAML form of reconcile.TransparencyConfig.
type TransparencyDocument struct {
	Enabled          bool    `yaml:"enabled"`
	FocusedOpacity   float64 `yaml:"focused_opacity"`
	UnfocusedOpacity float64 `yaml:"unfocused_opacity"`
}

// GeneralDocument carries the daemon-wide knobs spec.md names outside
// any single reconciler: focus-follows-mouse mode, cross-monitor move
// behaviour, unmanaged-window operations, the resize step, and a global
// work-area inset applied on top of each monitor's own bounds.
type GeneralDocument struct {
	FocusFollowsMouse               string `yaml:"focus_follows_mouse,omitempty"`
	MouseFollowsFocus               bool   `yaml:"mouse_follows_focus,omitempty"`
	NewWindowBehaviour              string `yaml:"new_window_behaviour,omitempty"`
	CrossMonitorMoveBehaviour       string `yaml:"cross_monitor_move_behaviour,omitempty"`
	UnmanagedWindowOperationBehaviour string `yaml:"unmanaged_window_operation_behaviour,omitempty"`
	ResizeDelta                     int    `yaml:"resize_delta,omitempty"`
	WorkAreaOffsetTop               int    `yaml:"work_area_offset_top,omitempty"`
	WorkAreaOffsetBottom            int    `yaml:"work_area_offset_bottom,omitempty"`
	WorkAreaOffsetLeft              int    `yaml:"work_area_offset_left,omitempty"`
	WorkAreaOffsetRight             int    `yaml:"work_area_offset_right,omitempty"`
}

// Config is the root configuration document, unmarshaled directly from
// the user's YAML file.
type Config struct {
	General              GeneralDocument      `yaml:"general,omitempty"`
	IgnoreRules          []RuleDocument       `yaml:"ignore_rules,omitempty"`
	ManageRules          []RuleDocument       `yaml:"manage_rules,omitempty"`
	FloatRules           []RuleDocument       `yaml:"float_rules,omitempty"`
	LayeredRules         []RuleDocument       `yaml:"layered_rules,omitempty"`
	TrayApplicationRules []RuleDocument       `yaml:"tray_application_rules,omitempty"`
	Monitors             []MonitorDocument    `yaml:"monitors,omitempty"`
	Border               BorderDocument       `yaml:"border,omitempty"`
	Stackbar             StackbarDocument     `yaml:"stackbar,omitempty"`
	Transparency         TransparencyDocument `yaml:"transparency,omitempty"`
}

// GetIgnoreRules converts the document's ignore rules into rule.Rule
// values ready for rule.Engine.
func (c *Config) GetIgnoreRules() []rule.Rule {
	return toRules(c.IgnoreRules)
}

// GetManageRules converts the document's manage rules into rule.Rule
// values.
func (c *Config) GetManageRules() []rule.Rule {
	return toRules(c.ManageRules)
}

// GetFloatRules converts the document's float rules into rule.Rule
// values.
func (c *Config) GetFloatRules() []rule.Rule {
	return toRules(c.FloatRules)
}

// GetLayeredRules converts the document's layered-window whitelist into
// rule.Rule values.
func (c *Config) GetLayeredRules() []rule.Rule {
	return toRules(c.LayeredRules)
}

// GetTrayApplicationRules converts the document's tray/multi-window
// application set into rule.Rule values.
func (c *Config) GetTrayApplicationRules() []rule.Rule {
	return toRules(c.TrayApplicationRules)
}

func toRules(docs []RuleDocument) []rule.Rule {
	out := make([]rule.Rule, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ToRule())
	}
	return out
}

// GetLayoutRules resolves the layout_rules configured for one monitor's
// workspace slot into wm.LayoutRule-shaped descriptors, returning nil if
// unconfigured.
func (c *Config) GetLayoutRules(deviceID string, workspaceIdx int) []LayoutRuleDocument {
	ws := c.workspace(deviceID, workspaceIdx)
	if ws == nil {
		return nil
	}
	return ws.LayoutRules
}

// GetWorkspaceSettings resolves the configured default layout and
// padding for one monitor's workspace slot, falling back to BSP and
// zero padding when the slot is unconfigured.
func (c *Config) GetWorkspaceSettings(deviceID string, workspaceIdx int) (defaultLayout layout.Kind, containerPadding, workspacePadding int) {
	ws := c.workspace(deviceID, workspaceIdx)
	if ws == nil {
		return layout.BSP, 0, 0
	}
	kind := ws.DefaultLayout
	if kind == "" {
		kind = layout.BSP
	}
	return kind, ws.ContainerGap, ws.WorkspacePad
}

// GetMonitorWorkspaceNames returns the configured workspace names for
// the monitor with the given device id, in workspace order.
func (c *Config) GetMonitorWorkspaceNames(deviceID string) []string {
	for _, m := range c.Monitors {
		if m.DeviceID == deviceID {
			names := make([]string, len(m.Workspaces))
			for i, ws := range m.Workspaces {
				names[i] = ws.Name
			}
			return names
		}
	}
	return nil
}

func (c *Config) workspace(deviceID string, idx int) *WorkspaceDocument {
	for _, m := range c.Monitors {
		if m.DeviceID != deviceID {
			continue
		}
		if idx < 0 || idx >= len(m.Workspaces) {
			return nil
		}
		return &m.Workspaces[idx]
	}
	return nil
}

// GetBorderConfig converts the document's border settings into
// reconcile.BorderConfig, resolving color strings to packed uint32s.
func (c *Config) GetBorderConfig() (reconcile.BorderConfig, error) {
	focused, err := parseColor(c.Border.FocusedColor, 0x6699CC)
	if err != nil {
		return reconcile.BorderConfig{}, fmt.Errorf("config: border.focused_color: %w", err)
	}
	unfocused, err := parseColor(c.Border.UnfocusedColor, 0x444444)
	if err != nil {
		return reconcile.BorderConfig{}, fmt.Errorf("config: border.unfocused_color: %w", err)
	}
	monocle, err := parseColor(c.Border.MonocleColor, 0xCC9966)
	if err != nil {
		return reconcile.BorderConfig{}, fmt.Errorf("config: border.monocle_color: %w", err)
	}
	thickness := c.Border.Thickness
	if thickness <= 0 {
		thickness = 4
	}
	easing := animation.Curve(c.Border.AnimationEasing)
	if easing == "" {
		easing = animation.EaseOutQuad
	}
	return reconcile.BorderConfig{
		Enabled:           c.Border.Enabled,
		Thickness:         thickness,
		FocusedColor:      focused,
		UnfocusedColor:    unfocused,
		MonocleColor:      monocle,
		AnimationDuration: time.Duration(c.Border.AnimationMS) * time.Millisecond,
		AnimationEasing:   easing,
	}, nil
}

// GetStackbarConfig converts the document's stackbar settings into
// reconcile.StackbarConfig.
func (c *Config) GetStackbarConfig() (reconcile.StackbarConfig, error) {
	focused, err := parseColor(c.Stackbar.FocusedColor, 0x6699CC)
	if err != nil {
		return reconcile.StackbarConfig{}, fmt.Errorf("config: stackbar.focused_color: %w", err)
	}
	tab, err := parseColor(c.Stackbar.TabColor, 0x333333)
	if err != nil {
		return reconcile.StackbarConfig{}, fmt.Errorf("config: stackbar.tab_color: %w", err)
	}
	width, gap, height := c.Stackbar.TabWidth, c.Stackbar.TabGap, c.Stackbar.Height
	if width <= 0 {
		width = 140
	}
	if gap <= 0 {
		gap = 2
	}
	if height <= 0 {
		height = 20
	}
	return reconcile.StackbarConfig{
		Enabled:      c.Stackbar.Enabled,
		AlwaysOn:     c.Stackbar.AlwaysOn,
		TabWidth:     width,
		TabGap:       gap,
		Height:       height,
		FocusedColor: focused,
		TabColor:     tab,
	}, nil
}

// GetTransparencyConfig converts the document's transparency settings
// into reconcile.TransparencyConfig, defaulting opacities when unset.
func (c *Config) GetTransparencyConfig() reconcile.TransparencyConfig {
	focused, unfocused := c.Transparency.FocusedOpacity, c.Transparency.UnfocusedOpacity
	if focused <= 0 {
		focused = 1.0
	}
	if unfocused <= 0 {
		unfocused = 0.8
	}
	return reconcile.TransparencyConfig{
		Enabled:          c.Transparency.Enabled,
		FocusedOpacity:   focused,
		UnfocusedOpacity: unfocused,
	}
}

// GetResizeDelta returns the configured resize step, defaulting to 50px
// per spec.md's resize-step description.
func (c *Config) GetResizeDelta() int {
	if c.General.ResizeDelta <= 0 {
		return 50
	}
	return c.General.ResizeDelta
}

// GetWorkAreaOffset returns the global per-edge work-area inset applied
// on top of each monitor's own reported bounds.
func (c *Config) GetWorkAreaOffset() (top, bottom, left, right int) {
	return c.General.WorkAreaOffsetTop, c.General.WorkAreaOffsetBottom, c.General.WorkAreaOffsetLeft, c.General.WorkAreaOffsetRight
}

// GetFocusFollowsMouse resolves the configured mode string ("none",
// "native", "custom") into a wm.FocusFollowsMouseMode, defaulting to
// off for an unrecognized value.
func (c *Config) GetFocusFollowsMouse() wm.FocusFollowsMouseMode {
	switch c.General.FocusFollowsMouse {
	case "native":
		return wm.FocusFollowsMouseNative
	case "custom":
		return wm.FocusFollowsMouseCustom
	default:
		return wm.FocusFollowsMouseOff
	}
}

// GetMouseFollowsFocus returns the configured "warp the mouse to the
// newly focused window" flag.
func (c *Config) GetMouseFollowsFocus() bool {
	return c.General.MouseFollowsFocus
}

// GetNewWindowBehaviour resolves the configured string ("end" or
// "after_focused") into a wm.InsertBehaviour, defaulting to
// InsertAfterFocused for an unrecognized value.
func (c *Config) GetNewWindowBehaviour() wm.InsertBehaviour {
	if c.General.NewWindowBehaviour == "end" {
		return wm.InsertAtEnd
	}
	return wm.InsertAfterFocused
}

// GetCrossMonitorMoveBehaviour resolves the configured string ("insert"
// or "noop") into a wm.CrossMonitorMoveBehaviour.
func (c *Config) GetCrossMonitorMoveBehaviour() wm.CrossMonitorMoveBehaviour {
	if c.General.CrossMonitorMoveBehaviour == "noop" {
		return wm.CrossMonitorMoveNoOp
	}
	return wm.CrossMonitorMoveFollow
}

// GetUnmanagedWindowOperationBehaviour resolves the configured string
// ("op" or "noop") into a wm.UnmanagedWindowOperationBehaviour.
func (c *Config) GetUnmanagedWindowOperationBehaviour() wm.UnmanagedWindowOperationBehaviour {
	if c.General.UnmanagedWindowOperationBehaviour == "noop" {
		return wm.UnmanagedOperationNoOp
	}
	return wm.UnmanagedOperationOperate
}
