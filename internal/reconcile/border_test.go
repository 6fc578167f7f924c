package reconcile

import (
	"testing"
	"time"

	"github.com/1broseidon/komorebi/internal/animation"
)

func TestAnimatedColorSnapsOnFirstPaint(t *testing.T) {
	b := &BorderReconciler{cfg: BorderConfig{AnimationDuration: 150 * time.Millisecond, AnimationEasing: animation.Linear}}
	ov := &borderOverlay{}

	got := b.animatedColor(ov, 0xFF0000)
	if got != 0xFF0000 {
		t.Fatalf("expected first paint to snap to target, got %#x", got)
	}
}

func TestAnimatedColorDisabledSnapsEveryTick(t *testing.T) {
	b := &BorderReconciler{cfg: BorderConfig{AnimationDuration: 0}}
	ov := &borderOverlay{mapped: true, currentColor: 0x000000}

	got := b.animatedColor(ov, 0xFFFFFF)
	if got != 0xFFFFFF {
		t.Fatalf("expected animation-disabled config to snap immediately, got %#x", got)
	}
}

func TestAnimatedColorBlendsMidTransition(t *testing.T) {
	b := &BorderReconciler{cfg: BorderConfig{AnimationDuration: 100 * time.Millisecond, AnimationEasing: animation.Linear}}
	ov := &borderOverlay{mapped: true, currentColor: 0x000000, transFrom: 0x000000, transTo: 0xFFFFFF, transStart: time.Now().Add(-50 * time.Millisecond)}

	got := b.animatedColor(ov, 0xFFFFFF)
	if got == 0x000000 || got == 0xFFFFFF {
		t.Fatalf("expected a blended color partway through the transition, got %#x", got)
	}
}

func TestAnimatedColorSettlesAtTargetAfterDuration(t *testing.T) {
	b := &BorderReconciler{cfg: BorderConfig{AnimationDuration: 10 * time.Millisecond, AnimationEasing: animation.Linear}}
	ov := &borderOverlay{mapped: true, currentColor: 0x000000, transTo: 0xFFFFFF, transStart: time.Now().Add(-time.Hour)}

	got := b.animatedColor(ov, 0xFFFFFF)
	if got != 0xFFFFFF {
		t.Fatalf("expected settled color to equal target, got %#x", got)
	}
}
