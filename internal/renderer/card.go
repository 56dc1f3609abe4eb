// Package renderer composes the shareable card: the generated artwork on
// top, a caption strip in the emotion colour underneath.
package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/golang/freetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	_ "golang.org/x/image/webp"

	"github.com/linuxmatters/heartbeatsart/internal/config"
)

// ErrNoArtwork is returned when a card is requested without an image.
var ErrNoArtwork = errors.New("card needs a generated image")

// CardInfo is the caption content of a card.
type CardInfo struct {
	Title string
	Stats string

	// Series is drawn as a sparkline across the caption when non-empty.
	Series []float64

	Accent color.RGBA
	Text   color.RGBA
}

// DecodeImage decodes JPEG, PNG or WebP bytes.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoArtwork
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode artwork: %w", err)
	}
	return img, nil
}

// RenderCard draws art and info onto a config.CardSize square.
func RenderCard(art image.Image, info CardInfo) (*image.RGBA, error) {
	if art == nil {
		return nil, ErrNoArtwork
	}
	if err := loadFonts(); err != nil {
		return nil, err
	}

	card := image.NewRGBA(image.Rect(0, 0, config.CardSize, config.CardSize))
	artHeight := config.CardSize - config.CaptionHeight

	drawArtwork(card, image.Rect(0, 0, config.CardSize, artHeight), art)

	caption := image.Rect(0, artHeight, config.CardSize, config.CardSize)
	drawCaptionBackground(card, caption, info.Accent)

	if len(info.Series) > 1 {
		drawSparkline(card, caption, info.Series, info.Text)
	}
	drawCaptionText(card, caption, info)

	return card, nil
}

// WriteCard decodes data, renders the card and saves it as PNG.
func WriteCard(outputPath string, data []byte, info CardInfo) error {
	art, err := DecodeImage(data)
	if err != nil {
		return err
	}

	card, err := RenderCard(art, info)
	if err != nil {
		return err
	}

	if err := savePNG(card, outputPath); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

// drawArtwork scales art to cover dst, cropping the overflow evenly.
func drawArtwork(dst *image.RGBA, area image.Rectangle, art image.Image) {
	src := coverCrop(art.Bounds(), area.Dx(), area.Dy())
	draw.BiLinear.Scale(dst, area, art, src, draw.Src, nil)
}

// coverCrop returns the centred part of b with the aspect ratio w:h.
func coverCrop(b image.Rectangle, w, h int) image.Rectangle {
	if b.Dx()*h > b.Dy()*w {
		// too wide
		cw := b.Dy() * w / h
		x0 := b.Min.X + (b.Dx()-cw)/2
		return image.Rect(x0, b.Min.Y, x0+cw, b.Max.Y)
	}
	ch := b.Dx() * h / w
	y0 := b.Min.Y + (b.Dy()-ch)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+ch)
}

// drawCaptionBackground fills the strip with accent, shaded for legibility.
func drawCaptionBackground(dst *image.RGBA, area image.Rectangle, accent color.RGBA) {
	accent.A = 255
	draw.Draw(dst, area, image.NewUniform(accent), image.Point{}, draw.Src)

	shade := color.NRGBA{A: config.CaptionShadeAlpha}
	draw.Draw(dst, area, image.NewUniform(shade), image.Point{}, draw.Over)
}

func drawCaptionText(dst *image.RGBA, area image.Rectangle, info CardInfo) {
	maxWidth := area.Dx() - 2*config.CardMargin
	src := image.NewUniform(info.Text)

	title := info.Title
	if title == "" {
		title = config.CardTitle
	}

	titleFace := fitFace(boldFont, title, config.CardTitleFontSize, maxWidth)
	defer titleFace.Close()

	_, titleBounds := measureText(titleFace, title)
	titleBaseline := area.Min.Y + config.CardMargin - titleBounds.Min.Y.Ceil()

	d := &font.Drawer{Dst: dst, Src: src, Face: titleFace}
	d.Dot = freetype.Pt(area.Min.X+config.CardMargin, titleBaseline)
	d.DrawString(title)

	if info.Stats == "" {
		return
	}

	statsFace := fitFace(regularFont, info.Stats, config.CardStatsFontSize, maxWidth)
	defer statsFace.Close()

	_, statsBounds := measureText(statsFace, info.Stats)
	statsBaseline := area.Max.Y - config.CardMargin - statsBounds.Max.Y.Ceil()

	d = &font.Drawer{Dst: dst, Src: src, Face: statsFace}
	d.Dot = freetype.Pt(area.Min.X+config.CardMargin, statsBaseline)
	d.DrawString(info.Stats)
}

// drawSparkline plots series along the middle band of the caption, right
// aligned, faint enough to sit behind the text.
func drawSparkline(dst *image.RGBA, area image.Rectangle, series []float64, c color.RGBA) {
	lo, hi := series[0], series[0]
	for _, v := range series {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	width := area.Dx() / 2
	height := area.Dy() / 3
	left := area.Max.X - config.CardMargin - width
	bottom := area.Min.Y + area.Dy()/2 + height/2

	dot := image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 150})
	point := func(i int) (float64, float64) {
		x := float64(left) + float64(i)*float64(width)/float64(len(series)-1)
		y := float64(bottom) - (series[i]-lo)/span*float64(height)
		return x, y
	}

	for i := 1; i < len(series); i++ {
		x0, y0 := point(i - 1)
		x1, y1 := point(i)
		steps := int(max(abs(x1-x0), abs(y1-y0))) + 1
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			x := int(x0 + (x1-x0)*t)
			y := int(y0 + (y1-y0)*t)
			draw.Draw(dst, image.Rect(x-1, y-1, x+2, y+2), dot, image.Point{}, draw.Over)
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// savePNG writes img to outputPath.
func savePNG(img image.Image, outputPath string) error {
	outFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := png.Encode(outFile, img); err != nil {
		outFile.Close()
		return err
	}
	return outFile.Close()
}
