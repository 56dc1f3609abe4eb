package renderer

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Parsed Go fonts, shared by every card
var (
	fontsOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = truetype.Parse(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("failed to parse regular font: %w", fontsErr)
			return
		}
		boldFont, fontsErr = truetype.Parse(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("failed to parse bold font: %w", fontsErr)
		}
	})
	return fontsErr
}

// newFace returns a face of f at size points, 72 DPI.
func newFace(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// fitFace returns the largest face, starting at size and stepping down by 2pt,
// whose rendering of text is no wider than maxWidth.
func fitFace(f *truetype.Font, text string, size float64, maxWidth int) font.Face {
	for ; size > 10.0; size -= 2.0 {
		face := newFace(f, size)
		if width, _ := measureText(face, text); width <= maxWidth {
			return face
		}
		face.Close()
	}
	return newFace(f, 10.0)
}

// measureText returns the width and bounds of rendered text. bounds.Min.Y is
// negative (ascent), bounds.Max.Y positive (descent).
func measureText(face font.Face, text string) (int, fixed.Rectangle26_6) {
	d := &font.Drawer{Face: face}
	bounds, _ := d.BoundString(text)
	width := (bounds.Max.X - bounds.Min.X).Ceil()
	return width, bounds
}
