package reconcile

import (
	"github.com/1broseidon/komorebi/internal/events"
	"github.com/1broseidon/komorebi/internal/platform"
	"github.com/1broseidon/komorebi/internal/wm"
)

// OrphanReconciler periodically diffs the manager's known handles
// against the live backend and synthesizes events.Destroy for any
// handle that no longer refers to a live window, catching destroy
// notifications the shell failed to deliver. Grounded on the teacher's
// internal/daemon/reconciler.go + sync.go ticker/diff/cleanup shape,
// generalized from tmux-session orphan cleanup to known_hwnds cleanup.
type OrphanReconciler struct {
	backend platform.Backend
	manager *wm.WindowManager
	out     events.Channel
}

// NewOrphanReconciler builds an orphan reconciler that publishes
// synthetic Destroy events onto out.
func NewOrphanReconciler(backend platform.Backend, manager *wm.WindowManager, out events.Channel) *OrphanReconciler {
	return &OrphanReconciler{backend: backend, manager: manager, out: out}
}

func (o *OrphanReconciler) Name() string { return "orphan" }

// Tick finds every known handle the backend no longer considers alive
// and enqueues a Destroy event for it, mirroring HandleWindowClosed's
// registry-removal role in the teacher's StateSynchronizer.
func (o *OrphanReconciler) Tick() error {
	o.manager.RLock()
	handles := o.manager.KnownHandles()
	o.manager.RUnlock()

	for _, h := range handles {
		if o.backend.IsAlive(platform.WindowID(h)) {
			continue
		}
		select {
		case o.out <- events.Event{Kind: events.Destroy, Handle: h}:
		default:
			// Ingress channel full; next tick retries since the
			// handle remains in known_hwnds until the engine
			// processes the Destroy event.
		}
	}
	return nil
}
