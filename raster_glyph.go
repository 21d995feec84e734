// raster_glyph.go - text rendering for window titles and debug overlays,
// per spec.md §4.10.5's glyph-blit responsibility. Uses
// golang.org/x/image/font (a teacher go.mod dependency left unwired in
// the visible teacher code) rather than hand-rolling a bitmap font.

package main

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var glyphFace = basicfont.Face7x13

// measureString returns the pixel width basicfont.Face7x13 renders s at.
func measureString(s string) int {
	var width fixed.Int26_6
	for _, r := range s {
		adv, ok := glyphFace.GlyphAdvance(r)
		if !ok {
			adv = glyphFace.Advance
		}
		width += adv
	}
	return width.Ceil()
}

// DrawString renders s at local origin (origin.V is the top of the line,
// not the baseline) with color, through the rasterizer's clipped
// glyph blit path.
func DrawString(fb *Framebuffer, port *GrafPort, origin Point, s string, color uint32) {
	if s == "" {
		return
	}
	width := measureString(s)
	height := glyphFace.Metrics().Height.Ceil()
	if width <= 0 || height <= 0 {
		return
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	drawer := &font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: glyphFace,
		Dot:  fixed.P(0, glyphFace.Metrics().Ascent.Ceil()),
	}
	drawer.DrawString(s)

	BlitGlyph(fb, port, origin, width, height, mask.Pix, color)
}
