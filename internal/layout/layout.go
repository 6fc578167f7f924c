// Package layout implements the pure function that maps a layout
// descriptor, a work area, and a container count to a slice of
// rectangles — the layout engine described in spec.md §4.2.
package layout

import (
	"fmt"
	"math"

	"github.com/1broseidon/komorebi/internal/geom"
)

// Kind names one of the built-in default layouts.
type Kind string

const (
	BSP                    Kind = "bsp"
	Columns                Kind = "columns"
	Rows                   Kind = "rows"
	VerticalStack          Kind = "vertical-stack"
	RightMainVerticalStack Kind = "right-main-vertical-stack"
	HorizontalStack        Kind = "horizontal-stack"
	UltrawideVerticalStack Kind = "ultrawide-vertical-stack"
	Grid                   Kind = "grid"
	Scrolling              Kind = "scrolling"
)

// ColumnKind tags a custom-layout column.
type ColumnKind string

const (
	ColPrimary   ColumnKind = "primary"
	ColSecondary ColumnKind = "secondary"
	ColTertiary  ColumnKind = "tertiary"
)

// Axis names a split direction for a tertiary column.
type Axis string

const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
)

// Column is one element of a Custom layout descriptor.
type Column struct {
	Kind            ColumnKind
	WidthPercent    int // Primary only
	Capacity        int // Secondary only, fixed window count
	TertiarySplit   Axis
}

// Custom is an ordered column descriptor: exactly one Primary and one
// Tertiary column, the Tertiary last, every non-Tertiary column having a
// fixed capacity.
type Custom struct {
	Columns []Column
}

// Validate checks the structural constraints on a Custom descriptor.
func (c Custom) Validate() error {
	if len(c.Columns) == 0 {
		return fmt.Errorf("custom layout: no columns")
	}
	primaries, tertiaries := 0, 0
	for i, col := range c.Columns {
		switch col.Kind {
		case ColPrimary:
			primaries++
		case ColTertiary:
			tertiaries++
			if i != len(c.Columns)-1 {
				return fmt.Errorf("custom layout: tertiary column must be last")
			}
		case ColSecondary:
			if col.Capacity <= 0 {
				return fmt.Errorf("custom layout: secondary column needs a positive capacity")
			}
		default:
			return fmt.Errorf("custom layout: unknown column kind %q", col.Kind)
		}
	}
	if primaries != 1 {
		return fmt.Errorf("custom layout: exactly one primary column required, got %d", primaries)
	}
	if tertiaries != 1 {
		return fmt.Errorf("custom layout: exactly one tertiary column required, got %d", tertiaries)
	}
	return nil
}

// Descriptor is either a default layout tag or a custom column layout.
type Descriptor struct {
	DefaultKind Kind
	Custom      *Custom
}

// FlipOptions mirrors the computed rectangles about the work area's
// centerlines.
type FlipOptions struct {
	Horizontal bool
	Vertical   bool
}

// Options carries layout-kind-specific tuning knobs.
type Options struct {
	// ScrollingViewportColumns is the number of simultaneously visible
	// columns in the Scrolling layout. Defaults to 3.
	ScrollingViewportColumns int
	// GridRowOverride forces a fixed row count for the Grid layout,
	// clamping the column count accordingly. Zero means automatic.
	GridRowOverride int
	// FocusedIndex is required by the Scrolling layout to keep the
	// focused column within the viewport.
	FocusedIndex int
}

// Compute returns one rectangle per container, in index order, for the
// given descriptor, work area, and container count. workspacePadding
// shrinks the work area once before any splitting; containerPadding
// shrinks each individual container rect afterward. deltas, if non-nil,
// must have length count and are applied (already clamped by the
// caller, per spec.md §4.2) after the base assignment. flip is applied
// last.
func Compute(
	descriptor Descriptor,
	area geom.Rect,
	count int,
	workspacePadding int,
	containerPadding int,
	flip FlipOptions,
	deltas []geom.ResizeDelta,
	opts Options,
) ([]geom.Rect, error) {
	if count <= 0 {
		return nil, nil
	}

	padded := area.Pad(workspacePadding)
	if padded.Width() < 1 || padded.Height() < 1 {
		return nil, fmt.Errorf("layout: workspace padding leaves no usable area")
	}

	var rects []geom.Rect
	var err error

	if descriptor.Custom != nil {
		rects, err = computeCustom(*descriptor.Custom, padded, count)
	} else {
		rects, err = computeDefault(descriptor.DefaultKind, padded, count, opts)
	}
	if err != nil {
		return nil, err
	}

	for i := range rects {
		rects[i] = rects[i].Pad(containerPadding)
		if deltas != nil && i < len(deltas) {
			rects[i] = deltas[i].Apply(rects[i])
		}
	}

	if flip.Horizontal {
		for i := range rects {
			rects[i] = rects[i].FlipHorizontal(padded)
		}
	}
	if flip.Vertical {
		for i := range rects {
			rects[i] = rects[i].FlipVertical(padded)
		}
	}

	return rects, nil
}

func computeDefault(kind Kind, area geom.Rect, count int, opts Options) ([]geom.Rect, error) {
	switch kind {
	case BSP:
		return layoutBSP(area, count), nil
	case Columns:
		return layoutColumns(area, count), nil
	case Rows:
		return layoutRows(area, count), nil
	case VerticalStack:
		return layoutVerticalStack(area, count, false), nil
	case RightMainVerticalStack:
		return layoutVerticalStack(area, count, true), nil
	case HorizontalStack:
		return layoutHorizontalStack(area, count), nil
	case UltrawideVerticalStack:
		return layoutUltrawide(area, count), nil
	case Grid:
		rows := opts.GridRowOverride
		rects, _, _ := layoutGrid(area, count, rows)
		return rects, nil
	case Scrolling:
		viewport := opts.ScrollingViewportColumns
		if viewport <= 0 {
			viewport = 3
		}
		return layoutScrolling(area, count, viewport, opts.FocusedIndex), nil
	default:
		return nil, fmt.Errorf("layout: unknown default kind %q", kind)
	}
}

// layoutBSP recursively splits the remaining area, alternating vertical
// (even depth) and horizontal (odd depth) splits. Index i (i < count-1)
// takes the "first" half of the split at depth i; the final index takes
// whatever area remains. See spec.md S1 for a worked example.
func layoutBSP(area geom.Rect, count int) []geom.Rect {
	rects := make([]geom.Rect, count)
	remaining := area
	for depth := 0; depth < count-1; depth++ {
		var first, second geom.Rect
		if depth%2 == 0 {
			mid := remaining.Left + remaining.Width()/2
			first = geom.Rect{Left: remaining.Left, Top: remaining.Top, Right: mid, Bottom: remaining.Bottom}
			second = geom.Rect{Left: mid, Top: remaining.Top, Right: remaining.Right, Bottom: remaining.Bottom}
		} else {
			mid := remaining.Top + remaining.Height()/2
			first = geom.Rect{Left: remaining.Left, Top: remaining.Top, Right: remaining.Right, Bottom: mid}
			second = geom.Rect{Left: remaining.Left, Top: mid, Right: remaining.Right, Bottom: remaining.Bottom}
		}
		rects[depth] = first
		remaining = second
	}
	rects[count-1] = remaining
	return rects
}

// BSPDirection reproduces the chain-structured adjacency implied by
// layoutBSP: index i < count-1 was produced by a split at depth i
// (vertical if i is even, horizontal if odd); every index j > i lives
// within that split's second half.
func BSPDirection(dir Direction, idx, count int) (int, bool) {
	if idx < 0 || idx >= count {
		return 0, false
	}
	switch dir {
	case Right:
		if idx < count-1 && idx%2 == 0 {
			return idx + 1, true
		}
	case Down:
		if idx < count-1 && idx%2 == 1 {
			return idx + 1, true
		}
	case Left:
		for d := idx - 1; d >= 0; d-- {
			if d%2 == 0 {
				return d, true
			}
		}
	case Up:
		for d := idx - 1; d >= 0; d-- {
			if d%2 == 1 {
				return d, true
			}
		}
	}
	return 0, false
}

func layoutColumns(area geom.Rect, count int) []geom.Rect {
	rects := make([]geom.Rect, count)
	width := area.Width() / count
	for i := 0; i < count; i++ {
		left := area.Left + i*width
		right := left + width
		if i == count-1 {
			right = area.Right
		}
		rects[i] = geom.Rect{Left: left, Top: area.Top, Right: right, Bottom: area.Bottom}
	}
	return rects
}

func layoutRows(area geom.Rect, count int) []geom.Rect {
	rects := make([]geom.Rect, count)
	height := area.Height() / count
	for i := 0; i < count; i++ {
		top := area.Top + i*height
		bottom := top + height
		if i == count-1 {
			bottom = area.Bottom
		}
		rects[i] = geom.Rect{Left: area.Left, Top: top, Right: area.Right, Bottom: bottom}
	}
	return rects
}

// layoutVerticalStack places a primary half on one side and stacks the
// remaining windows in equal horizontal strips on the other side.
// mainOnRight selects RightMainVerticalStack vs VerticalStack.
func layoutVerticalStack(area geom.Rect, count int, mainOnRight bool) []geom.Rect {
	rects := make([]geom.Rect, count)
	if count == 1 {
		rects[0] = area
		return rects
	}

	mid := area.Left + area.Width()/2
	var primary, stackArea geom.Rect
	if mainOnRight {
		stackArea = geom.Rect{Left: area.Left, Top: area.Top, Right: mid, Bottom: area.Bottom}
		primary = geom.Rect{Left: mid, Top: area.Top, Right: area.Right, Bottom: area.Bottom}
	} else {
		primary = geom.Rect{Left: area.Left, Top: area.Top, Right: mid, Bottom: area.Bottom}
		stackArea = geom.Rect{Left: mid, Top: area.Top, Right: area.Right, Bottom: area.Bottom}
	}
	rects[0] = primary

	stackCount := count - 1
	height := stackArea.Height() / stackCount
	for i := 0; i < stackCount; i++ {
		top := stackArea.Top + i*height
		bottom := top + height
		if i == stackCount-1 {
			bottom = stackArea.Bottom
		}
		rects[i+1] = geom.Rect{Left: stackArea.Left, Top: top, Right: stackArea.Right, Bottom: bottom}
	}
	return rects
}

func layoutHorizontalStack(area geom.Rect, count int) []geom.Rect {
	rects := make([]geom.Rect, count)
	if count == 1 {
		rects[0] = area
		return rects
	}

	mid := area.Top + area.Height()/2
	primary := geom.Rect{Left: area.Left, Top: area.Top, Right: area.Right, Bottom: mid}
	stackArea := geom.Rect{Left: area.Left, Top: mid, Right: area.Right, Bottom: area.Bottom}
	rects[0] = primary

	stackCount := count - 1
	width := stackArea.Width() / stackCount
	for i := 0; i < stackCount; i++ {
		left := stackArea.Left + i*width
		right := left + width
		if i == stackCount-1 {
			right = stackArea.Right
		}
		rects[i+1] = geom.Rect{Left: left, Top: stackArea.Top, Right: right, Bottom: stackArea.Bottom}
	}
	return rects
}

// layoutUltrawide arranges a center-primary column, a left-secondary
// column, and a right-stack column, degenerating gracefully at counts 1
// and 2.
func layoutUltrawide(area geom.Rect, count int) []geom.Rect {
	rects := make([]geom.Rect, count)
	if count == 1 {
		rects[0] = area
		return rects
	}
	if count == 2 {
		// Center-primary widens to take the left region too; only the
		// right-stack region holds a single secondary window.
		mid := area.Left + area.Width()*2/3
		rects[0] = geom.Rect{Left: area.Left, Top: area.Top, Right: mid, Bottom: area.Bottom}
		rects[1] = geom.Rect{Left: mid, Top: area.Top, Right: area.Right, Bottom: area.Bottom}
		return rects
	}

	secondaryWidth := area.Width() / 4
	stackWidth := area.Width() / 4
	leftEdge := area.Left + secondaryWidth
	rightEdge := area.Right - stackWidth

	rects[0] = geom.Rect{Left: leftEdge, Top: area.Top, Right: rightEdge, Bottom: area.Bottom}
	rects[1] = geom.Rect{Left: area.Left, Top: area.Top, Right: leftEdge, Bottom: area.Bottom}

	stackCount := count - 2
	stackArea := geom.Rect{Left: rightEdge, Top: area.Top, Right: area.Right, Bottom: area.Bottom}
	height := stackArea.Height() / stackCount
	for i := 0; i < stackCount; i++ {
		top := stackArea.Top + i*height
		bottom := top + height
		if i == stackCount-1 {
			bottom = stackArea.Bottom
		}
		rects[i+2] = geom.Rect{Left: stackArea.Left, Top: top, Right: stackArea.Right, Bottom: bottom}
	}
	return rects
}

// layoutGrid assigns ceil(sqrt(n)) columns (or a caller-forced row
// count), distributing extra rows to the earliest columns so that
// column heights differ by at most one. Returns the rectangles plus the
// per-index (col, row) assignment and the per-column row count, for use
// by GridDirection.
func layoutGrid(area geom.Rect, count int, rowOverride int) ([]geom.Rect, []gridCell, []int) {
	var cols, rows int
	if rowOverride > 0 {
		rows = rowOverride
		cols = int(math.Ceil(float64(count) / float64(rows)))
	} else {
		cols = int(math.Ceil(math.Sqrt(float64(count))))
		rows = int(math.Ceil(float64(count) / float64(cols)))
	}
	_ = rows

	base := count / cols
	rem := count % cols
	colRows := make([]int, cols)
	for c := 0; c < cols; c++ {
		colRows[c] = base
		if c < rem {
			colRows[c]++
		}
	}

	rects := make([]geom.Rect, count)
	cells := make([]gridCell, count)
	colWidth := area.Width() / cols

	idx := 0
	for c := 0; c < cols; c++ {
		left := area.Left + c*colWidth
		right := left + colWidth
		if c == cols-1 {
			right = area.Right
		}
		cellHeight := area.Height() / colRows[c]
		for r := 0; r < colRows[c]; r++ {
			if idx >= count {
				break
			}
			top := area.Top + r*cellHeight
			bottom := top + cellHeight
			if r == colRows[c]-1 {
				bottom = area.Bottom
			}
			rects[idx] = geom.Rect{Left: left, Top: top, Right: right, Bottom: bottom}
			cells[idx] = gridCell{col: c, row: r}
			idx++
		}
	}
	return rects, cells, colRows
}

type gridCell struct {
	col, row int
}

// GridDirection computes directional adjacency for the Grid layout from
// the same column/row assignment layoutGrid uses.
func GridDirection(dir Direction, idx, count, rowOverride int) (int, bool) {
	if idx < 0 || idx >= count {
		return 0, false
	}
	_, cells, colRows := layoutGrid(geom.NewRect(0, 0, 1, 1), count, rowOverride)
	cols := len(colRows)
	cell := cells[idx]

	indexOf := func(col, row int) (int, bool) {
		for i, c := range cells {
			if c.col == col && c.row == row {
				return i, true
			}
		}
		return 0, false
	}

	switch dir {
	case Up:
		if cell.row == 0 {
			return 0, false
		}
		return indexOf(cell.col, cell.row-1)
	case Down:
		if cell.row >= colRows[cell.col]-1 {
			return 0, false
		}
		return indexOf(cell.col, cell.row+1)
	case Left:
		if cell.col == 0 {
			return 0, false
		}
		targetRow := cell.row
		if targetRow >= colRows[cell.col-1] {
			targetRow = colRows[cell.col-1] - 1
		}
		return indexOf(cell.col-1, targetRow)
	case Right:
		if cell.col >= cols-1 {
			return 0, false
		}
		targetRow := cell.row
		if targetRow >= colRows[cell.col+1] {
			targetRow = colRows[cell.col+1] - 1
		}
		return indexOf(cell.col+1, targetRow)
	}
	return 0, false
}

// layoutScrolling positions `viewport` equal-width columns sliding over
// an infinite strip; the focused column is always kept within the
// viewport. Columns outside the viewport are positioned off-screen
// (to the right of the work area) so the compositor does not render
// them, per spec.md §4.2.
func layoutScrolling(area geom.Rect, count, viewport, focusedIdx int) []geom.Rect {
	rects := make([]geom.Rect, count)
	if viewport > count {
		viewport = count
	}

	start := focusedIdx - viewport/2
	if start < 0 {
		start = 0
	}
	maxStart := count - viewport
	if maxStart < 0 {
		maxStart = 0
	}
	if start > maxStart {
		start = maxStart
	}

	colWidth := area.Width() / viewport
	offscreenX := area.Right + area.Width() + 1

	for i := 0; i < count; i++ {
		if i < start || i >= start+viewport {
			rects[i] = geom.Rect{Left: offscreenX, Top: area.Top, Right: offscreenX + colWidth, Bottom: area.Bottom}
			continue
		}
		slot := i - start
		left := area.Left + slot*colWidth
		right := left + colWidth
		if slot == viewport-1 {
			right = area.Left + viewport*colWidth
		}
		rects[i] = geom.Rect{Left: left, Top: area.Top, Right: right, Bottom: area.Bottom}
	}
	return rects
}

// computeCustom lays out a Custom column descriptor: the primary column
// at its configured width percentage, secondary columns splitting the
// remaining width equally, and the tertiary column (last) taking
// whatever remains, splitting its own capacity per its configured axis.
// Falls back to Columns when count does not exceed the declared column
// count.
func computeCustom(c Custom, area geom.Rect, count int) ([]geom.Rect, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if count <= len(c.Columns) {
		return layoutColumns(area, count), nil
	}

	var primary Column
	var secondaries []Column
	var tertiary Column
	for _, col := range c.Columns {
		switch col.Kind {
		case ColPrimary:
			primary = col
		case ColSecondary:
			secondaries = append(secondaries, col)
		case ColTertiary:
			tertiary = col
		}
	}

	primaryWidth := area.Width() * primary.WidthPercent / 100
	remainingWidth := area.Width() - primaryWidth
	secondaryWidth := 0
	if len(secondaries) > 0 {
		secondaryWidth = remainingWidth / (len(secondaries) + 1)
	} else {
		secondaryWidth = 0
	}

	rects := make([]geom.Rect, 0, count)
	cursor := area.Left

	// Secondary columns precede the primary, matching the teacher's
	// left-to-right "secondary, primary, tertiary" master-stack shape.
	secCapacityTotal := 0
	for _, s := range secondaries {
		secCapacityTotal += s.Capacity
	}

	idx := 0
	for _, s := range secondaries {
		colRect := geom.Rect{Left: cursor, Top: area.Top, Right: cursor + secondaryWidth, Bottom: area.Bottom}
		n := s.Capacity
		if idx+n > count {
			n = count - idx
		}
		rects = append(rects, splitColumn(colRect, n, AxisHorizontal)...)
		idx += n
		cursor += secondaryWidth
	}

	primaryRect := geom.Rect{Left: cursor, Top: area.Top, Right: cursor + primaryWidth, Bottom: area.Bottom}
	rects = append(rects, primaryRect)
	idx++
	cursor += primaryWidth

	remaining := count - idx
	if remaining > 0 {
		tertiaryRect := geom.Rect{Left: cursor, Top: area.Top, Right: area.Right, Bottom: area.Bottom}
		axis := tertiary.TertiarySplit
		if axis == "" {
			axis = AxisHorizontal
		}
		rects = append(rects, splitColumn(tertiaryRect, remaining, axis)...)
	}

	return rects, nil
}

func splitColumn(area geom.Rect, n int, axis Axis) []geom.Rect {
	if n <= 0 {
		return nil
	}
	if axis == AxisVertical {
		return layoutColumns(area, n)
	}
	return layoutRows(area, n)
}

// Direction names a navigation request.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// IsValidDirection reports whether moving idx in dir has a target,
// dispatching to the layout-specific adjacency function.
func IsValidDirection(descriptor Descriptor, dir Direction, idx, count int, opts Options) bool {
	_, ok := IndexInDirection(descriptor, dir, idx, count, opts)
	return ok
}

// IndexInDirection answers the directional-navigation query for every
// default layout and for custom layouts (which reuse Columns adjacency
// when the window count does not exceed the declared column count).
func IndexInDirection(descriptor Descriptor, dir Direction, idx, count int, opts Options) (int, bool) {
	if idx < 0 || idx >= count || count == 0 {
		return 0, false
	}

	kind := descriptor.DefaultKind
	if descriptor.Custom != nil {
		if count <= len(descriptor.Custom.Columns) {
			kind = Columns
		} else {
			return customDirection(*descriptor.Custom, dir, idx, count)
		}
	}

	switch kind {
	case BSP:
		return BSPDirection(dir, idx, count)
	case Grid:
		return GridDirection(dir, idx, count, opts.GridRowOverride)
	case Columns:
		return linearDirection(dir, idx, count, Right, Left)
	case Rows:
		return linearDirection(dir, idx, count, Down, Up)
	case VerticalStack:
		return stackDirection(dir, idx, count, false)
	case RightMainVerticalStack:
		return stackDirection(dir, idx, count, true)
	case HorizontalStack:
		return horizontalStackDirection(dir, idx, count)
	case UltrawideVerticalStack:
		return ultrawideDirection(dir, idx, count)
	case Scrolling:
		return linearDirection(dir, idx, count, Right, Left)
	default:
		return 0, false
	}
}

// linearDirection handles Columns/Rows/Scrolling: a 1-D sequence where
// `forward` moves idx+1 and `backward` moves idx-1.
func linearDirection(dir Direction, idx, count int, forward, backward Direction) (int, bool) {
	switch dir {
	case forward:
		if idx < count-1 {
			return idx + 1, true
		}
	case backward:
		if idx > 0 {
			return idx - 1, true
		}
	}
	return 0, false
}

func stackDirection(dir Direction, idx, count int, mainOnRight bool) (int, bool) {
	if count == 1 {
		return 0, false
	}
	toPrimary, toStack := Left, Right
	if mainOnRight {
		toPrimary, toStack = Right, Left
	}
	switch {
	case idx == 0 && dir == toStack:
		return 1, true
	case idx != 0 && dir == toPrimary:
		return 0, true
	case idx != 0 && dir == Up:
		if idx > 1 {
			return idx - 1, true
		}
	case idx != 0 && dir == Down:
		if idx < count-1 {
			return idx + 1, true
		}
	}
	return 0, false
}

func horizontalStackDirection(dir Direction, idx, count int) (int, bool) {
	if count == 1 {
		return 0, false
	}
	switch {
	case idx == 0 && dir == Down:
		return 1, true
	case idx != 0 && dir == Up:
		return 0, true
	case idx != 0 && dir == Left:
		if idx > 1 {
			return idx - 1, true
		}
	case idx != 0 && dir == Right:
		if idx < count-1 {
			return idx + 1, true
		}
	}
	return 0, false
}

func ultrawideDirection(dir Direction, idx, count int) (int, bool) {
	if count == 1 {
		return 0, false
	}
	if count == 2 {
		return linearDirection(dir, idx, count, Right, Left)
	}
	switch {
	case idx == 0 && dir == Left:
		return 1, true
	case idx == 0 && dir == Right:
		return 2, true
	case idx == 1 && dir == Right:
		return 0, true
	case idx == 2 && dir == Left:
		return 0, true
	case idx >= 2 && dir == Up:
		if idx > 2 {
			return idx - 1, true
		}
	case idx >= 2 && dir == Down:
		if idx < count-1 {
			return idx + 1, true
		}
	}
	return 0, false
}

func customDirection(c Custom, dir Direction, idx, count int) (int, bool) {
	// Outside the Columns-fallback regime, treat the custom layout as a
	// single left-to-right sequence of columns/cells in assignment
	// order, matching computeCustom's cursor order.
	return linearDirection(dir, idx, count, Right, Left)
}
