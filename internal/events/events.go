// Package events normalizes raw shell callbacks and display-topology
// changes into the typed WindowManagerEvent stream consumed by the
// state engine (spec.md §4.4).
package events

import "github.com/1broseidon/komorebi/internal/wm"

// Kind enumerates the normalized event cases.
type Kind int

const (
	Manage Kind = iota
	Unmanage
	Destroy
	FocusChange
	Show
	Hide
	Cloak
	Uncloak
	Minimize
	MoveResizeStart
	MoveResizeEnd
	MouseCapture
	Raise
	TitleUpdate
	DisplayChange
	MonitorPoll
)

func (k Kind) String() string {
	switch k {
	case Manage:
		return "Manage"
	case Unmanage:
		return "Unmanage"
	case Destroy:
		return "Destroy"
	case FocusChange:
		return "FocusChange"
	case Show:
		return "Show"
	case Hide:
		return "Hide"
	case Cloak:
		return "Cloak"
	case Uncloak:
		return "Uncloak"
	case Minimize:
		return "Minimize"
	case MoveResizeStart:
		return "MoveResizeStart"
	case MoveResizeEnd:
		return "MoveResizeEnd"
	case MouseCapture:
		return "MouseCapture"
	case Raise:
		return "Raise"
	case TitleUpdate:
		return "TitleUpdate"
	case DisplayChange:
		return "DisplayChange"
	case MonitorPoll:
		return "MonitorPoll"
	default:
		return "Unknown"
	}
}

// Event is one normalized occurrence the state engine's single-writer
// worker consumes from the merged ingress channel.
type Event struct {
	Kind   Kind
	Handle wm.Handle
}

// Channel is the single bounded channel every ingress source enqueues
// onto, per spec.md §4.4's "All ingress events are sent on a single
// bounded channel to the state engine."
type Channel chan Event

// NewChannel builds a bounded ingress channel.
func NewChannel(buffer int) Channel {
	return make(Channel, buffer)
}
