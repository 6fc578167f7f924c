package layout

import (
	"testing"

	"github.com/1broseidon/komorebi/internal/geom"
)

func TestBSPFourWindows(t *testing.T) {
	area := geom.NewRect(0, 0, 1600, 900)
	rects, err := Compute(Descriptor{DefaultKind: BSP}, area, 4, 0, 0, FlipOptions{}, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []geom.Rect{
		geom.NewRect(0, 0, 800, 900),
		geom.NewRect(800, 0, 800, 450),
		geom.NewRect(800, 450, 400, 450),
		geom.NewRect(1200, 450, 400, 450),
	}
	for i, w := range want {
		if rects[i] != w {
			t.Fatalf("rect %d: got %+v, want %+v", i, rects[i], w)
		}
	}
}

func TestGridOfFive(t *testing.T) {
	area := geom.NewRect(0, 0, 1200, 900)
	rects, err := Compute(Descriptor{DefaultKind: Grid}, area, 5, 0, 0, FlipOptions{}, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []geom.Rect{
		geom.NewRect(0, 0, 400, 450),
		geom.NewRect(0, 450, 400, 450),
		geom.NewRect(400, 0, 400, 450),
		geom.NewRect(400, 450, 400, 450),
		geom.NewRect(800, 0, 400, 900),
	}
	for i, w := range want {
		if rects[i] != w {
			t.Fatalf("rect %d: got %+v, want %+v", i, rects[i], w)
		}
	}
}

func TestBSPDirectionalMove(t *testing.T) {
	// S3: BSP four windows, focused index 2, MoveWindow(Up).
	if !IsValidDirection(Descriptor{DefaultKind: BSP}, Up, 2, 4, Options{}) {
		t.Fatalf("expected Up to be valid from index 2")
	}
	target, ok := IndexInDirection(Descriptor{DefaultKind: BSP}, Up, 2, 4, Options{})
	if !ok || target != 1 {
		t.Fatalf("expected up_index(2) = 1, got %d (ok=%v)", target, ok)
	}

	// The representative "right" example: idx even and not last -> idx+1.
	target, ok = IndexInDirection(Descriptor{DefaultKind: BSP}, Right, 0, 4, Options{})
	if !ok || target != 1 {
		t.Fatalf("expected right_index(0) = 1, got %d (ok=%v)", target, ok)
	}
	if _, ok := IndexInDirection(Descriptor{DefaultKind: BSP}, Right, 1, 4, Options{}); ok {
		t.Fatalf("expected right to be invalid from odd index 1")
	}
}

func TestResizeDeltaClampedBeforeApply(t *testing.T) {
	base := geom.NewRect(0, 0, 100, 100)
	delta := geom.ResizeDelta{Left: -500, Right: 500}.Clamp(base)
	if delta.Left != -100 || delta.Right != 100 {
		t.Fatalf("expected delta clamped to +/-100, got %+v", delta)
	}
}

func TestAxisFlipMirrorsAboutCenterline(t *testing.T) {
	area := geom.NewRect(0, 0, 1000, 1000)
	rects, err := Compute(Descriptor{DefaultKind: Columns}, area, 2, 0, 0, FlipOptions{Horizontal: true}, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Unflipped columns would be [0,500) and [500,1000); flipped swaps them.
	if rects[0].Left != 500 || rects[0].Right != 1000 {
		t.Fatalf("expected flipped first column on the right, got %+v", rects[0])
	}
	if rects[1].Left != 0 || rects[1].Right != 500 {
		t.Fatalf("expected flipped second column on the left, got %+v", rects[1])
	}
}

func TestCustomLayoutFallsBackToColumns(t *testing.T) {
	c := Custom{Columns: []Column{
		{Kind: ColPrimary, WidthPercent: 60},
		{Kind: ColTertiary, TertiarySplit: AxisHorizontal},
	}}
	area := geom.NewRect(0, 0, 1000, 500)
	rects, err := Compute(Descriptor{Custom: &c}, area, 2, 0, 0, FlipOptions{}, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rects) != 2 {
		t.Fatalf("expected 2 rects, got %d", len(rects))
	}
	if rects[0].Width() != 500 || rects[1].Width() != 500 {
		t.Fatalf("expected equal-width columns fallback, got %+v", rects)
	}
}

func TestCustomLayoutPrimaryAndTertiary(t *testing.T) {
	c := Custom{Columns: []Column{
		{Kind: ColPrimary, WidthPercent: 50},
		{Kind: ColTertiary, TertiarySplit: AxisHorizontal},
	}}
	area := geom.NewRect(0, 0, 1000, 400)
	rects, err := Compute(Descriptor{Custom: &c}, area, 3, 0, 0, FlipOptions{}, nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rects) != 3 {
		t.Fatalf("expected 3 rects, got %d", len(rects))
	}
	// Primary is the 1st emitted rect (no secondaries configured) at 50%.
	if rects[0].Width() != 500 {
		t.Fatalf("expected primary width 500, got %d", rects[0].Width())
	}
	// The two tertiary cells evenly split the remaining height.
	if rects[1].Height() != 200 || rects[2].Height() != 200 {
		t.Fatalf("expected tertiary cells split evenly, got %+v and %+v", rects[1], rects[2])
	}
}
