package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// SheetGrid is the number of glyph cells along each side of a font sheet.
const SheetGrid = 16

// Converter turns glyph sheets into raw 1bpp tables of 256 glyphs, rows
// most significant bit first.
type Converter struct {
	threshold uint8
	glyphs    int
	lit       int
}

// NewConverter creates a Converter that treats pixels at half brightness or
// above as foreground.
func NewConverter() *Converter {
	return &Converter{threshold: 0x80}
}

// ConvertSheet slices a 16x16 sheet into glyph cells and packs each one.
func (c *Converter) ConvertSheet(img image.Image) (raw []byte, width, height int, err error) {
	b := img.Bounds()
	if b.Dx()%SheetGrid != 0 || b.Dy()%SheetGrid != 0 || b.Dx() == 0 || b.Dy() == 0 {
		return nil, 0, 0, fmt.Errorf("sheet %dx%d is not a %dx%d grid of cells", b.Dx(), b.Dy(), SheetGrid, SheetGrid)
	}
	width, height = b.Dx()/SheetGrid, b.Dy()/SheetGrid
	stride := (width + 7) / 8
	raw = make([]byte, SheetGrid*SheetGrid*height*stride)
	c.glyphs, c.lit = 0, 0

	for ch := range SheetGrid * SheetGrid {
		x0 := b.Min.X + (ch%SheetGrid)*width
		y0 := b.Min.Y + (ch/SheetGrid)*height
		rows := raw[ch*height*stride : (ch+1)*height*stride]
		used := false
		for y := range height {
			for x := range width {
				g := color.GrayModel.Convert(img.At(x0+x, y0+y)).(color.Gray)
				if g.Y < c.threshold {
					continue
				}
				rows[y*stride+x/8] |= 0x80 >> (x % 8)
				c.lit++
				used = true
			}
		}
		if used {
			c.glyphs++
		}
	}
	return raw, width, height, nil
}

// RenderFaceSheet draws bytes 0x20..0xFF of a fixed-size face into a sheet,
// using the advance of 'M' as the cell width.
func RenderFaceSheet(face font.Face) (*image.Gray, error) {
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	height := max(m.Height.Ceil(), ascent+m.Descent.Ceil())
	adv, ok := face.GlyphAdvance('M')
	if !ok {
		return nil, fmt.Errorf("face has no advance for 'M'")
	}
	width := adv.Ceil()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bad face metrics %dx%d", width, height)
	}

	sheet := image.NewGray(image.Rect(0, 0, width*SheetGrid, height*SheetGrid))
	draw.Draw(sheet, sheet.Bounds(), image.Black, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: sheet, Src: image.White, Face: face}
	for ch := 0x20; ch < SheetGrid*SheetGrid; ch++ {
		if ch == 0x7f {
			continue
		}
		cell := image.Rect((ch%SheetGrid)*width, (ch/SheetGrid)*height, (ch%SheetGrid+1)*width, (ch/SheetGrid+1)*height)
		d.Dst = sheet.SubImage(cell).(*image.Gray)
		d.Dot = fixed.P(cell.Min.X, cell.Min.Y+ascent)
		d.DrawString(string(rune(ch)))
	}
	return sheet, nil
}
