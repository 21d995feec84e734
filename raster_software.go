// raster_software.go - clipped line/rect/pattern-fill rasterizer into a
// 32-bpp framebuffer, per spec.md §4.10.5. Pixel-plotting grounded on
// video_chip.go's per-pixel plotting routines; framebuffer layout
// grounded on video_screen_buffer.go's packed-buffer struct.

package main

// Framebuffer is the rasterizer's target surface: a packed RGBA8888
// byte buffer plus its pixel dimensions, per spec.md §4.10.5's "packs
// color from per-pixel RGB according to the framebuffer layout".
type Framebuffer struct {
	Pix    []byte
	Width  int
	Height int
}

// NewFramebuffer allocates a zeroed RGBA8888 framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{Pix: make([]byte, width*height*4), Width: width, Height: height}
}

// Bounds returns the framebuffer's extent as a Rect, per spec.md
// §4.10.5's clip-to-framebuffer-bounds requirement.
func (f *Framebuffer) Bounds() Rect {
	return Rect{Top: 0, Left: 0, Bottom: int16(f.Height), Right: int16(f.Width)}
}

func (f *Framebuffer) setPixel(x, y int16, rgba uint32) {
	if x < 0 || y < 0 || int(x) >= f.Width || int(y) >= f.Height {
		return
	}
	off := (int(y)*f.Width + int(x)) * 4
	f.Pix[off] = byte(rgba >> 24)
	f.Pix[off+1] = byte(rgba >> 16)
	f.Pix[off+2] = byte(rgba >> 8)
	f.Pix[off+3] = byte(rgba)
}

func (f *Framebuffer) getPixel(x, y int16) uint32 {
	if x < 0 || y < 0 || int(x) >= f.Width || int(y) >= f.Height {
		return 0
	}
	off := (int(y)*f.Width + int(x)) * 4
	return uint32(f.Pix[off])<<24 | uint32(f.Pix[off+1])<<16 | uint32(f.Pix[off+2])<<8 | uint32(f.Pix[off+3])
}

// effectiveClip is the intersection of portRect, clipRgn, and visRgn,
// per spec.md §4.10.5.
func effectiveClip(port *GrafPort) Region {
	portRgn := SetRect(port.PortRect)
	clip := Intersect(portRgn, port.ClipRgn)
	return Intersect(clip, port.VisRgn)
}

// combinePixel applies pnMode's combination rule for a single pixel,
// per spec.md §4.10.5's patCopy/patXor/patOr/patBic pen modes.
func combinePixel(mode PenMode, dst, src uint32) uint32 {
	switch mode {
	case PatXor:
		return dst ^ src
	case PatOr:
		return dst | src
	case PatBic:
		return dst &^ src
	default:
		return src
	}
}

func patternBit(pat Pattern, localX, localY int16) bool {
	row := pat[int(localY)%8]
	col := uint(localX) % 8
	return row&(0x80>>col) != 0
}

func patternColor(pat Pattern, localX, localY int16, fg, bg uint32) uint32 {
	if patternBit(pat, localX, localY) {
		return fg
	}
	return bg
}

// FillRect paints localRect with the port's current fill pattern, color
// fg for set bits and bg for clear bits, clipped to portRect/clipRgn/
// visRgn/framebuffer bounds and combined per pnMode, per spec.md §4.10.5.
func FillRect(fb *Framebuffer, port *GrafPort, localRect Rect, fg, bg uint32) {
	clip := effectiveClip(port)
	fbBounds := fb.Bounds()
	for ly := localRect.Top; ly < localRect.Bottom; ly++ {
		for lx := localRect.Left; lx < localRect.Right; lx++ {
			global := port.LocalToGlobal(Point{H: lx, V: ly})
			if !PtInRect(global, fbBounds) {
				continue
			}
			if !PtInRegion(global, clip) {
				continue
			}
			color := patternColor(port.FillPat, lx, ly, fg, bg)
			dst := fb.getPixel(global.H, global.V)
			fb.setPixel(global.H, global.V, combinePixel(port.PnMode, dst, color))
		}
	}
}

// FrameRect outlines localRect's border (pnSize.H thick, at least 1) in
// solid color (no pattern), per spec.md §4.10.5.
func FrameRect(fb *Framebuffer, port *GrafPort, localRect Rect, color uint32) {
	thickness := port.PnSize.H
	if thickness < 1 {
		thickness = 1
	}
	top := Rect{Top: localRect.Top, Left: localRect.Left, Bottom: localRect.Top + thickness, Right: localRect.Right}
	bottom := Rect{Top: localRect.Bottom - thickness, Left: localRect.Left, Bottom: localRect.Bottom, Right: localRect.Right}
	left := Rect{Top: localRect.Top, Left: localRect.Left, Bottom: localRect.Bottom, Right: localRect.Left + thickness}
	right := Rect{Top: localRect.Top, Left: localRect.Right - thickness, Bottom: localRect.Bottom, Right: localRect.Right}
	for _, edge := range []Rect{top, bottom, left, right} {
		FillRect(fb, port, edge, color, color)
	}
}

// Line draws a Bresenham line from pnLoc to (x, y) in local coordinates,
// clipped per spec.md §4.10.5, and advances pnLoc to the endpoint.
func Line(fb *Framebuffer, port *GrafPort, to Point, color uint32) {
	clip := effectiveClip(port)
	fbBounds := fb.Bounds()
	from := port.PnLoc

	x0, y0, x1, y1 := int(from.H), int(from.V), int(to.H), int(to.V)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy

	x, y := x0, y0
	for {
		global := port.LocalToGlobal(Point{H: int16(x), V: int16(y)})
		if PtInRect(global, fbBounds) && PtInRegion(global, clip) {
			dst := fb.getPixel(global.H, global.V)
			fb.setPixel(global.H, global.V, combinePixel(port.PnMode, dst, color))
		}
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	port.PnLoc = to
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// BlitGlyph copies an 8-bit alpha glyph bitmap (row-major, glyphW x
// glyphH) at local origin, painted with color and clipped per spec.md
// §4.10.5. Used by raster_glyph.go's text-drawing entry point.
func BlitGlyph(fb *Framebuffer, port *GrafPort, origin Point, glyphW, glyphH int, alpha []byte, color uint32) {
	clip := effectiveClip(port)
	fbBounds := fb.Bounds()
	for gy := 0; gy < glyphH; gy++ {
		for gx := 0; gx < glyphW; gx++ {
			a := alpha[gy*glyphW+gx]
			if a == 0 {
				continue
			}
			local := Point{H: origin.H + int16(gx), V: origin.V + int16(gy)}
			global := port.LocalToGlobal(local)
			if !PtInRect(global, fbBounds) || !PtInRegion(global, clip) {
				continue
			}
			dst := fb.getPixel(global.H, global.V)
			fb.setPixel(global.H, global.V, combinePixel(port.PnMode, dst, color))
		}
	}
}
