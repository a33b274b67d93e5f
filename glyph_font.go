// glyph_font.go - 1bpp glyph tables for the log renderer

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/FrameLog
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const fontGlyphCount = 256

// Font is a flat glyph bitmap table. Glyph c starts at c*Height*Stride; each
// row is Stride bytes, most significant bit first, 1 = foreground.
type Font struct {
	Width  int
	Height int
	Stride int
	Data   []byte
}

// glyph returns the rows of glyph ch, or nil when the table is too short.
func (f *Font) glyph(ch byte) []byte {
	size := f.Height * f.Stride
	off := int(ch) * size
	if off+size > len(f.Data) {
		return nil
	}
	return f.Data[off : off+size]
}

func (f *Font) valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && f.Stride*8 >= f.Width
}

// fontFromFace rasterises bytes 0..255 of a fixed-size face into a glyph
// table. Glyph cells use the face advance as width so neighbouring
// characters keep their spacing.
func fontFromFace(face font.Face) (*Font, error) {
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	height := m.Height.Ceil()
	if d := ascent + m.Descent.Ceil(); d > height {
		height = d
	}
	adv, ok := face.GlyphAdvance('M')
	if !ok {
		return nil, fmt.Errorf("glyph font: face has no advance for 'M'")
	}
	width := adv.Ceil()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("glyph font: bad face metrics %dx%d", width, height)
	}

	f := &Font{Width: width, Height: height, Stride: (width + 7) / 8}
	f.Data = make([]byte, fontGlyphCount*f.Height*f.Stride)

	dot := fixed.P(0, ascent)
	for c := range fontGlyphCount {
		if c < 0x20 || c == 0x7f {
			continue
		}
		dr, mask, maskp, _, ok := face.Glyph(dot, rune(c))
		if !ok {
			continue
		}
		rows := f.Data[c*f.Height*f.Stride : (c+1)*f.Height*f.Stride]
		for y := dr.Min.Y; y < dr.Max.Y; y++ {
			if y < 0 || y >= f.Height {
				continue
			}
			for x := dr.Min.X; x < dr.Max.X; x++ {
				if x < 0 || x >= f.Width {
					continue
				}
				p := image.Pt(maskp.X+x-dr.Min.X, maskp.Y+y-dr.Min.Y)
				if color.AlphaModel.Convert(mask.At(p.X, p.Y)).(color.Alpha).A < 0x80 {
					continue
				}
				rows[y*f.Stride+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return f, nil
}

// defaultFont is basicfont 7x13, the same face the status bar uses.
func defaultFont() *Font {
	f, err := fontFromFace(basicfont.Face7x13)
	if err != nil {
		return nil
	}
	return f
}

// loadRawFont reads a raw table of 256 glyphs, height rows each, stride
// ceil(width/8) bytes per row (the Topaz .raw layout for 8x16).
func loadRawFont(data []byte, width, height int) (*Font, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raw font: invalid glyph size %dx%d", width, height)
	}
	f := &Font{Width: width, Height: height, Stride: (width + 7) / 8}
	need := fontGlyphCount * f.Height * f.Stride
	if len(data) < need {
		return nil, fmt.Errorf("raw font: need %d bytes for %dx%d glyphs, got %d", need, width, height, len(data))
	}
	f.Data = make([]byte, need)
	copy(f.Data, data)
	return f, nil
}

func loadRawFontFile(path string, width, height int) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("raw font: %w", err)
	}
	return loadRawFont(data, width, height)
}
