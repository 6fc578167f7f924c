// Package command implements the authoritative command language that
// drives the state engine (spec.md §4.5): a closed sum type carried as
// length-delimited JSON, and the dispatcher that applies each variant
// to the window-manager state tree.
package command

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/komorebi/internal/layout"
	"github.com/1broseidon/komorebi/internal/rule"
)

// Type tags a Command's payload shape.
type Type string

const (
	TypeFocusWindow                    Type = "focus_window"
	TypeMoveContainer                  Type = "move_container"
	TypeMoveContainerToWorkspace       Type = "move_container_to_workspace"
	TypeMoveContainerToMonitor         Type = "move_container_to_monitor"
	TypePromoteContainer               Type = "promote_container"
	TypeCycleFocus                     Type = "cycle_focus"
	TypeToggleFloat                    Type = "toggle_float"
	TypeToggleMonocle                  Type = "toggle_monocle"
	TypeToggleMaximize                 Type = "toggle_maximize"
	TypeTogglePause                    Type = "toggle_pause"
	TypeStop                           Type = "stop"
	TypeAdjustContainerPadding         Type = "adjust_container_padding"
	TypeAdjustWorkspacePadding         Type = "adjust_workspace_padding"
	TypeChangeLayout                   Type = "change_layout"
	TypeCycleLayout                    Type = "cycle_layout"
	TypePreviewLayout                  Type = "preview_layout"
	TypeFlipLayout                     Type = "flip_layout"
	TypeNameWorkspace                  Type = "name_workspace"
	TypeFocusWorkspace                 Type = "focus_workspace"
	TypeAddManageRule                  Type = "add_manage_rule"
	TypeAddIgnoreRule                  Type = "add_ignore_rule"
	TypeAddFloatRule                   Type = "add_float_rule"
	TypeAddLayeredRule                 Type = "add_layered_rule"
	TypeAddTrayApplicationRule         Type = "add_tray_application_rule"
	TypeAddSubscriberSocket            Type = "add_subscriber_socket"
	TypeAddSubscriberSocketWithOptions Type = "add_subscriber_socket_with_options"
	TypeRemoveSubscriberSocket         Type = "remove_subscriber_socket"
	TypeQueryState                     Type = "state"
	TypeQueryGlobalState               Type = "global_state"
	TypeQuickSave                      Type = "quick_save"
	TypeQuickLoad                      Type = "quick_load"
)

// Command is one variant of the closed command sum type: a tag plus
// its JSON-encoded payload, mirroring the teacher's Request shape.
type Command struct {
	Type    Type            `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

// Response mirrors the teacher's Response shape: a status tag plus
// optional data or error message. Only query commands populate Data;
// mutating commands that succeed get an empty OK response.
type Response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// NewOKResponse builds a successful response, optionally carrying data.
func NewOKResponse(data interface{}) (*Response, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("command: failed to marshal response data: %w", err)
		}
		raw = b
	}
	return &Response{Status: "OK", Data: raw}, nil
}

// NewErrorResponse builds an error response.
func NewErrorResponse(msg string) *Response {
	return &Response{Status: "ERROR", Error: msg}
}

// ParseCommand decodes one JSON command message.
func ParseCommand(data []byte) (*Command, error) {
	var c Command
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("command: malformed command: %w", err)
	}
	return &c, nil
}

// Marshal encodes a response to JSON bytes.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Payload shapes. Each Command's Content unmarshals into one of these
// depending on its Type.

type DirectionPayload struct {
	Direction layout.Direction `json:"direction"`
}

type WorkspaceTargetPayload struct {
	WorkspaceIdx int `json:"workspace_idx"`
}

type MonitorTargetPayload struct {
	MonitorIdx int `json:"monitor_idx"`
}

type PaddingPayload struct {
	Delta int `json:"delta"`
}

type ChangeLayoutPayload struct {
	Kind layout.Kind `json:"kind"`
}

// CycleLayoutPayload steps the focused workspace's active layout kind
// forward (positive delta) or backward through a fixed canonical order,
// per the teacher's Tiler.CycleActiveLayout.
type CycleLayoutPayload struct {
	Delta int `json:"delta"`
}

// PreviewLayoutPayload temporarily applies a layout kind, reverting to
// the workspace's previous layout after DurationMS elapses (0 uses a
// 3-second default), per the teacher's Tiler.PreviewLayout.
type PreviewLayoutPayload struct {
	Kind       layout.Kind `json:"kind"`
	DurationMS int         `json:"duration_ms"`
}

type FlipLayoutPayload struct {
	Horizontal bool `json:"horizontal"`
	Vertical   bool `json:"vertical"`
}

type NameWorkspacePayload struct {
	Name string `json:"name"`
}

type AddRulePayload struct {
	Kind       rule.Kind     `json:"kind"`
	Identifier string        `json:"identifier"`
	Strategy   rule.Strategy `json:"strategy"`
}

type SubscriberPayload struct {
	Name string `json:"name"`
}

type SubscriberOptionsPayload struct {
	Name               string `json:"name"`
	FilterStateChanges bool   `json:"filter_state_changes"`
}

type PathPayload struct {
	Path string `json:"path"`
}
