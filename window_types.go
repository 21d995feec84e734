// window_types.go - GrafPort/BitMap/Window value types, per spec.md §3 and
// §4.10. WindowID arena grounded on SPEC_FULL.md's Open Question decision
// to address windows by a dense integer ID rather than the original's
// doubly-indirect relocatable Handle (see DESIGN.md).

package main

// Pattern is an 8x8 1-bit pattern packed as 8 bytes, MSB-left, per
// spec.md §3.
type Pattern [8]byte

// BlackPattern and WhitePattern are the two constant patterns every
// GrafPort starts with, per the Window Manager's default pen/fill state.
var (
	BlackPattern = Pattern{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	WhitePattern = Pattern{0, 0, 0, 0, 0, 0, 0, 0}
)

// PenMode selects how pen pixels combine with what's already on the
// bitmap, per spec.md §4.10.5.
type PenMode int

const (
	PatCopy PenMode = iota
	PatXor
	PatOr
	PatBic // bit-clear: paint only where pattern is 0
)

// BitMap is {baseAddr, rowBytes, bounds}, per spec.md §3. baseAddr
// indexes into a byte-addressable framebuffer; bounds is the global
// rectangle that local (0,0) corresponds to.
type BitMap struct {
	BaseAddr int
	RowBytes int
	Bounds   Rect
}

// PixelOffset returns the byte offset of global point (h, v) within the
// bitmap, assuming bytesPerPixel bytes per pixel, per spec.md §3.
func (b BitMap) PixelOffset(h, v int16, bytesPerPixel int) int {
	return b.BaseAddr + int(v-b.Bounds.Top)*b.RowBytes + int(h-b.Bounds.Left)*bytesPerPixel
}

// GrafPort is a drawing context, per spec.md §3. portRect is ALWAYS
// local (0,0,w,h); the coordinate discipline in spec.md §4.10.2 forbids
// any code path from writing to it on move.
type GrafPort struct {
	PortBits BitMap
	PortRect Rect

	ClipRgn Region
	VisRgn  Region

	PnLoc  Point
	PnSize Point
	PnMode PenMode
	PnPat  Pattern
	BkPat  Pattern
	FillPat Pattern
	PnVis  int
}

// LocalToGlobal maps a local port point to a global pixel per spec.md
// §3's coordinate mapping invariant: p + (portBits.bounds.left, top).
func (g *GrafPort) LocalToGlobal(p Point) Point {
	return Point{H: p.H + g.PortBits.Bounds.Left, V: p.V + g.PortBits.Bounds.Top}
}

// GlobalToLocal is LocalToGlobal's inverse.
func (g *GrafPort) GlobalToLocal(p Point) Point {
	return Point{H: p.H - g.PortBits.Bounds.Left, V: p.V - g.PortBits.Bounds.Top}
}

// WindowID is the dense arena handle windows are addressed by externally
// (in event Message fields, in application code) instead of a raw
// pointer, per SPEC_FULL.md's Open Question decision.
type WindowID uint32

// Window is a node in the z-ordered front-to-back list, per spec.md §3.
// ContentClick, KeyDown, and DrawProc are the application callback seam:
// the original dispatches through a window-defProc resource instead.
type Window struct {
	id WindowID

	Port GrafPort

	StrucRgn  Region // entire frame, global
	ContRgn   Region // content area, global
	UpdateRgn Region // pending redraw, global

	WindowKind  int
	Visible     bool
	Hilited     bool
	GoAwayFlag  bool
	Zoomed      bool
	zoomedFrom  Rect // pre-zoom strucRgn bbox, for ZoomWindow's restore
	RefCon      interface{}
	Title       string

	ContentClick func(where Point, double bool)
	KeyDown      func(ev EventRecord)
	DrawProc     func(w *Window)

	updating bool
}

// ID returns the window's arena handle, used to populate update/activate
// event Message fields per spec.md §3.
func (w *Window) ID() WindowID { return w.id }

var windowArena = map[WindowID]*Window{}
var nextWindowID WindowID = 1

// lookupWindowByID recovers a live *Window from the handle carried in an
// event's Message field, per spec.md §3 ("For update/activate events,
// message carries the window pointer").
func lookupWindowByID(id WindowID) *Window { return windowArena[id] }

// titleBarHeight is the hit-test height of the draggable title strip:
// border(1) + title(20) + separator(1), per spec.md §4.10.1 step 3.
const (
	windowBorder      int16 = 1
	windowTitleHeight int16 = 20
	windowSeparator   int16 = 1
	titleBarHeight          = windowBorder + windowTitleHeight + windowSeparator
)
