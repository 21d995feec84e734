// region_types.go - Region value type: bbox + optional scan-line payload,
// per spec.md §3/§4.9. Grounded on original_source/src/QuickDraw/Regions.c
// (NewRgn, scanline recorder state machine), generalized from the
// relocatable handle/pointer model to a plain Go value type: regions are
// passed and stored by value, with no handle or arena.

package main

// Rect is {top, left, bottom, right}, half-open on right and bottom, per
// spec.md §3.
type Rect struct {
	Top, Left, Bottom, Right int16
}

// Empty reports whether r is empty: left >= right or top >= bottom, per
// spec.md §3.
func (r Rect) Empty() bool { return r.Left >= r.Right || r.Top >= r.Bottom }

// scanRun is one (x0, x1) inside-pair on a scan line.
type scanRun struct {
	X0, X1 int16
}

// scanLine is a maximal y-range [Y0, Y1) over which the sorted,
// non-overlapping list of inside runs is constant. Adjacent rows sharing
// identical runs are merged into a single scanLine, satisfying spec.md
// §4.9's canonical-form requirement ("minimal scan-line count, merge
// adjacent identical-y runs") without storing one entry per pixel row.
type scanLine struct {
	Y0, Y1 int16
	Runs   []scanRun
}

// Region is the region engine's in-memory value: a tight bounding box
// plus, for non-rectangular shapes, a canonical scan-line encoding.
// len(Lines) == 0 means the region is exactly BBox (the rectangular fast
// path spec.md §4.9 requires every operation check first).
type Region struct {
	BBox  Rect
	Lines []scanLine
}

// IsRectangular reports whether r is the header-only / exactly-bbox
// case, per spec.md §4.9's rectangular fast path.
func (r Region) IsRectangular() bool { return len(r.Lines) == 0 }

// NewRegion allocates a header-only region with an empty bbox, per
// spec.md §4.9's new().
func NewRegion() Region { return Region{} }

// SetRect replaces the region's contents with a rectangular region,
// collapsing to empty on a degenerate rect, per spec.md §4.9.
func SetRect(r Rect) Region {
	if r.Empty() {
		return Region{}
	}
	return Region{BBox: r}
}
