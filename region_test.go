package main

import "testing"

func rect(top, left, bottom, right int16) Rect {
	return Rect{Top: top, Left: left, Bottom: bottom, Right: right}
}

func TestSetRectCollapsesDegenerateRect(t *testing.T) {
	r := SetRect(rect(10, 10, 10, 20))
	if !r.IsRectangular() || r.BBox != (Rect{}) {
		t.Fatalf("expected empty region for degenerate rect, got %+v", r)
	}
}

// TestUnionDisjointRectsStaysComplex verifies spec.md §4.9: two disjoint
// rects union into a non-rectangular region with two scan lines.
func TestUnionDisjointRectsStaysComplex(t *testing.T) {
	a := SetRect(rect(0, 0, 10, 10))
	b := SetRect(rect(20, 0, 30, 10))
	u := Union(a, b)
	if u.IsRectangular() {
		t.Fatalf("expected complex region, got rectangular %+v", u)
	}
	if len(u.Lines) != 2 {
		t.Fatalf("expected 2 scan lines, got %d", len(u.Lines))
	}
	if !PtInRegion(Point{H: 5, V: 5}, u) || !PtInRegion(Point{H: 5, V: 25}, u) {
		t.Fatalf("expected both rect interiors to be inside union")
	}
	if PtInRegion(Point{H: 5, V: 15}, u) {
		t.Fatalf("gap between rects must not be inside union")
	}
}

// TestUnionOverlappingRectsCollapsesToRect verifies the rectangular
// fast-path collapse when the result IS expressible as a single rect.
func TestUnionOverlappingRectsCollapsesToRect(t *testing.T) {
	a := SetRect(rect(0, 0, 10, 10))
	b := SetRect(rect(0, 5, 10, 20))
	u := Union(a, b)
	if !u.IsRectangular() {
		t.Fatalf("expected rectangular collapse, got %+v", u)
	}
	if u.BBox != rect(0, 0, 10, 20) {
		t.Fatalf("got bbox %+v, want full span", u.BBox)
	}
}

// TestIntersectOverlappingRects verifies intersect across an L-shaped
// overlap produces the exact common area.
func TestIntersectOverlappingRects(t *testing.T) {
	a := SetRect(rect(0, 0, 10, 10))
	b := SetRect(rect(5, 5, 15, 15))
	i := Intersect(a, b)
	if i.BBox != rect(5, 5, 10, 10) {
		t.Fatalf("got %+v, want (5,5,10,10)", i.BBox)
	}
	if !PtInRegion(Point{H: 7, V: 7}, i) {
		t.Fatalf("expected overlap interior inside intersection")
	}
	if PtInRegion(Point{H: 2, V: 2}, i) {
		t.Fatalf("expected non-overlap area outside intersection")
	}
}

// TestDifferenceCutsNotch verifies spec.md §4.9's difference carves an
// exact notch, testable via RectInRegion rather than the bbox alone.
func TestDifferenceCutsNotch(t *testing.T) {
	a := SetRect(rect(0, 0, 20, 20))
	b := SetRect(rect(5, 5, 15, 15))
	d := Difference(a, b)
	if PtInRegion(Point{H: 10, V: 10}, d) {
		t.Fatalf("notch area must be excluded from difference")
	}
	if !PtInRegion(Point{H: 1, V: 1}, d) {
		t.Fatalf("corner outside notch must remain inside difference")
	}
	if !RectInRegion(rect(0, 0, 4, 4), d) {
		t.Fatalf("expected corner rect to intersect difference region")
	}
	if RectInRegion(rect(6, 6, 14, 14), d) {
		t.Fatalf("notch-interior rect must not intersect difference region")
	}
}

// TestXorRegionsOfIdenticalRectsIsEmpty verifies xor of a region with
// itself collapses to empty.
func TestXorRegionsOfIdenticalRectsIsEmpty(t *testing.T) {
	a := SetRect(rect(0, 0, 10, 10))
	x := XorRegions(a, a)
	if x.BBox != (Rect{}) || len(x.Lines) != 0 {
		t.Fatalf("expected empty region, got %+v", x)
	}
}

// TestOffsetShiftsComplexRegion verifies spec.md §4.9's offset on a
// non-rectangular region shifts every run's coordinates.
func TestOffsetShiftsComplexRegion(t *testing.T) {
	a := SetRect(rect(0, 0, 10, 10))
	b := SetRect(rect(20, 0, 30, 10))
	u := Union(a, b)
	shifted := Offset(u, 5, 100)
	if !PtInRegion(Point{H: 10, V: 105}, shifted) {
		t.Fatalf("expected shifted first rect interior inside region")
	}
	if PtInRegion(Point{H: 5, V: 5}, shifted) {
		t.Fatalf("original unshifted location must no longer be inside")
	}
}

// TestInsetRectangularCollapsesOnOverInset verifies inset past the
// rect's own extent collapses to empty, per spec.md §4.9.
func TestInsetRectangularCollapsesOnOverInset(t *testing.T) {
	a := SetRect(rect(0, 0, 10, 10))
	i := Inset(a, 6, 0)
	if !i.BBox.Empty() {
		t.Fatalf("expected empty after over-inset, got %+v", i.BBox)
	}
}

// TestPtInRectHalfOpenBoundary verifies spec.md §3's half-open bottom
// and right edges.
func TestPtInRectHalfOpenBoundary(t *testing.T) {
	r := rect(0, 0, 10, 10)
	if !PtInRect(Point{H: 0, V: 0}, r) {
		t.Fatalf("top-left corner must be inside")
	}
	if PtInRect(Point{H: 10, V: 5}, r) || PtInRect(Point{H: 5, V: 10}, r) {
		t.Fatalf("right/bottom edges must be excluded (half-open)")
	}
}

// TestRectInRegionRectangularFastPath verifies the trivial bbox-overlap
// case for a purely rectangular region.
func TestRectInRegionRectangularFastPath(t *testing.T) {
	r := SetRect(rect(0, 0, 10, 10))
	if !RectInRegion(rect(5, 5, 15, 15), r) {
		t.Fatalf("expected overlapping rect to intersect")
	}
	if RectInRegion(rect(20, 20, 30, 30), r) {
		t.Fatalf("expected disjoint rect to not intersect")
	}
}
