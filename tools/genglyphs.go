// genglyphs.go - renders every printable ASCII glyph of basicfont.Face7x13
// (the face raster_glyph.go uses for DrawString) to a single PNG sprite
// sheet, for visually checking glyph rendering without booting the
// kernel. Adapted from font2rgba.go's font-asset-dump purpose, inverted:
// that tool went PNG -> raw RGBA for a blitter; this one goes font face
// -> PNG for a human to look at.
//
// Usage: go run genglyphs.go [-o sheet.png]

package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	firstGlyph = 32  // ' '
	lastGlyph  = 126 // '~'
	cols       = 16
)

func main() {
	outPath := flag.String("o", "glyphs.png", "Output PNG sprite sheet path")
	flag.Parse()

	face := basicfont.Face7x13
	cellW := face.Advance.Ceil()
	cellH := face.Metrics().Height.Ceil()

	n := lastGlyph - firstGlyph + 1
	rows := (n + cols - 1) / cols

	sheet := image.NewRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	drawer := &font.Drawer{
		Dst:  sheet,
		Src:  image.NewUniform(color.White),
		Face: face,
	}

	for i := 0; i < n; i++ {
		r := rune(firstGlyph + i)
		col, row := i%cols, i/cols
		drawer.Dot = fixed.P(col*cellW, row*cellH+face.Metrics().Ascent.Ceil())
		drawer.DrawString(string(r))
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := png.Encode(f, sheet); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding PNG: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d glyphs (%dx%d each) to %s\n", n, cellW, cellH, *outPath)
}
