package display

import (
	"image"
	"image/draw"

	"codeberg.org/mutker/poemon/internal/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	labelFontSize = 8
	// Go Mono at this size matches the cell height of basicfont 7x13
	valueFallbackSize = 12
)

var (
	valueFace = &fallbackFace{
		Face:     basicfont.Face7x13,
		fallback: loadMonoFace(valueFallbackSize),
	}
	labelFace = loadMonoFace(labelFontSize)
)

// loadMonoFace rasterizes Go Mono at size. basicfont is used if the
// embedded font cannot be parsed.
func loadMonoFace(size float64) font.Face {
	f, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}

	return face
}

// fallbackFace draws from the embedded Face and takes runes it lacks,
// such as the degree sign missing from basicfont, from fallback.
// Metrics come from the embedded Face.
type fallbackFace struct {
	font.Face
	fallback font.Face
}

func (f *fallbackFace) pick(r rune) font.Face {
	if _, ok := f.Face.GlyphAdvance(r); ok {
		return f.Face
	}
	return f.fallback
}

func (f *fallbackFace) Glyph(dot fixed.Point26_6, r rune) (image.Rectangle, image.Image, image.Point, fixed.Int26_6, bool) {
	return f.pick(r).Glyph(dot, r)
}

func (f *fallbackFace) GlyphBounds(r rune) (fixed.Rectangle26_6, fixed.Int26_6, bool) {
	return f.pick(r).GlyphBounds(r)
}

func (f *fallbackFace) GlyphAdvance(r rune) (fixed.Int26_6, bool) {
	return f.pick(r).GlyphAdvance(r)
}

func (f *fallbackFace) Kern(r0, r1 rune) fixed.Int26_6 {
	return 0
}

func faceFor(style Style) (font.Face, bool) {
	switch style {
	case StyleValue:
		return valueFace, true
	case StyleLabel:
		return labelFace, true
	default:
		return nil, false
	}
}

// TextWidth is the advance of text in pixels for style
func TextWidth(text string, style Style) int {
	face, ok := faceFor(style)
	if !ok {
		return 0
	}
	return font.MeasureString(face, text).Ceil()
}

// Canvas is a 1-bit frame buffer laid out in the SSD1306 page format.
// Devices embed it for their Clear and DrawText.
type Canvas struct {
	img *image1bit.VerticalLSB
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		img: image1bit.NewVerticalLSB(image.Rect(0, 0, width, height)),
	}
}

func (c *Canvas) Clear() error {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: image1bit.Off}, image.Point{}, draw.Src)
	return nil
}

func (c *Canvas) DrawText(text string, pos image.Point, style Style) (image.Point, error) {
	face, ok := faceFor(style)
	if !ok {
		return pos, errors.New().WithData(ErrUnknownStyle, style)
	}

	d := font.Drawer{
		Dst:  c.img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: face,
		Dot:  fixed.P(pos.X, pos.Y),
	}
	d.DrawString(text)

	return image.Point{X: d.Dot.X.Ceil(), Y: d.Dot.Y.Ceil()}, nil
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Lit reports whether the pixel at (x, y) is set
func (c *Canvas) Lit(x, y int) bool {
	return c.img.BitAt(x, y) == image1bit.On
}

// Image exposes the frame buffer
func (c *Canvas) Image() *image1bit.VerticalLSB {
	return c.img
}
