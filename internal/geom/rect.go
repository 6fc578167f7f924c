// Package geom implements the rectangle algebra shared by the layout
// engine and every reconciler that positions a window or overlay.
package geom

// Rect is a rectangle in device pixels, stored as left/top/right/bottom
// edges rather than width/height so that edge-wise resize deltas and
// intersections are simple field arithmetic.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// NewRect builds a Rect from an origin and a size.
func NewRect(x, y, width, height int) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}

// Width returns the rectangle's horizontal extent.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the rectangle's vertical extent.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Valid reports whether the rectangle respects the model's only
// invariant: non-negative width and height.
func (r Rect) Valid() bool { return r.Right >= r.Left && r.Bottom >= r.Top }

// Translate shifts the rectangle by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Pad shrinks the rectangle on every edge by the given amount (negative
// values grow it). Clamps to a zero-area rectangle rather than going
// negative.
func (r Rect) Pad(amount int) Rect {
	out := Rect{
		Left:   r.Left + amount,
		Top:    r.Top + amount,
		Right:  r.Right - amount,
		Bottom: r.Bottom - amount,
	}
	if out.Right < out.Left {
		out.Right = out.Left
	}
	if out.Bottom < out.Top {
		out.Bottom = out.Top
	}
	return out
}

// Margin applies independent per-edge adjustments, positive values
// shrinking the rectangle inward on that edge.
type Margin struct {
	Left, Top, Right, Bottom int
}

// ApplyMargin shrinks r by m, clamping to avoid a negative-size rect.
func (r Rect) ApplyMargin(m Margin) Rect {
	out := Rect{
		Left:   r.Left + m.Left,
		Top:    r.Top + m.Top,
		Right:  r.Right - m.Right,
		Bottom: r.Bottom - m.Bottom,
	}
	if out.Right < out.Left {
		out.Right = out.Left
	}
	if out.Bottom < out.Top {
		out.Bottom = out.Top
	}
	return out
}

// Intersect returns the overlapping region of r and other, and whether
// that region has positive area.
func (r Rect) Intersect(other Rect) (Rect, bool) {
	out := Rect{
		Left:   max(r.Left, other.Left),
		Top:    max(r.Top, other.Top),
		Right:  min(r.Right, other.Right),
		Bottom: min(r.Bottom, other.Bottom),
	}
	return out, out.Right > out.Left && out.Bottom > out.Top
}

// FlipHorizontal mirrors the rectangle about the vertical centerline of
// area.
func (r Rect) FlipHorizontal(area Rect) Rect {
	width := r.Width()
	newLeft := area.Left + (area.Right - r.Right)
	return Rect{Left: newLeft, Top: r.Top, Right: newLeft + width, Bottom: r.Bottom}
}

// FlipVertical mirrors the rectangle about the horizontal centerline of
// area.
func (r Rect) FlipVertical(area Rect) Rect {
	height := r.Height()
	newTop := area.Top + (area.Bottom - r.Bottom)
	return Rect{Left: r.Left, Top: newTop, Right: r.Right, Bottom: newTop + height}
}

// ResizeDelta is a signed per-edge pixel adjustment applied at command
// time to a single container's tile.
type ResizeDelta struct {
	Left, Top, Right, Bottom int
}

// Clamp bounds the magnitude of each edge of the delta so it never
// exceeds the unaltered dimension of base in the corresponding axis.
// This is a best-effort guard against one resize command pushing
// neighbors off-screen; it is applied when the delta is recorded, not
// when the layout is rendered.
func (d ResizeDelta) Clamp(base Rect) ResizeDelta {
	w, h := base.Width(), base.Height()
	clampAxis := func(v, limit int) int {
		if v > limit {
			return limit
		}
		if v < -limit {
			return -limit
		}
		return v
	}
	return ResizeDelta{
		Left:   clampAxis(d.Left, w),
		Top:    clampAxis(d.Top, h),
		Right:  clampAxis(d.Right, w),
		Bottom: clampAxis(d.Bottom, h),
	}
}

// Apply adds the (already-clamped) delta to r's edges.
func (d ResizeDelta) Apply(r Rect) Rect {
	return Rect{
		Left:   r.Left + d.Left,
		Top:    r.Top + d.Top,
		Right:  r.Right + d.Right,
		Bottom: r.Bottom + d.Bottom,
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
