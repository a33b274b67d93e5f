// pixel_codec.go - Packed RGB pixel encoder/decoder for raw framebuffers

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

import "math/bits"

// PixelFormat is a DRM fourcc code. Bit 31 marks big-endian storage.
type PixelFormat uint32

const FormatBigEndian PixelFormat = 1 << 31

const (
	FormatC8 = PixelFormat('C' | '8'<<8 | ' '<<16 | ' '<<24)

	FormatRGB332 = PixelFormat('R' | 'G'<<8 | 'B'<<16 | '8'<<24)
	FormatBGR233 = PixelFormat('B' | 'G'<<8 | 'R'<<16 | '8'<<24)

	FormatXRGB4444 = PixelFormat('X' | 'R'<<8 | '1'<<16 | '2'<<24)
	FormatXBGR4444 = PixelFormat('X' | 'B'<<8 | '1'<<16 | '2'<<24)
	FormatRGBX4444 = PixelFormat('R' | 'X'<<8 | '1'<<16 | '2'<<24)
	FormatBGRX4444 = PixelFormat('B' | 'X'<<8 | '1'<<16 | '2'<<24)
	FormatARGB4444 = PixelFormat('A' | 'R'<<8 | '1'<<16 | '2'<<24)
	FormatABGR4444 = PixelFormat('A' | 'B'<<8 | '1'<<16 | '2'<<24)
	FormatRGBA4444 = PixelFormat('R' | 'A'<<8 | '1'<<16 | '2'<<24)
	FormatBGRA4444 = PixelFormat('B' | 'A'<<8 | '1'<<16 | '2'<<24)

	FormatXRGB1555 = PixelFormat('X' | 'R'<<8 | '1'<<16 | '5'<<24)
	FormatXBGR1555 = PixelFormat('X' | 'B'<<8 | '1'<<16 | '5'<<24)
	FormatRGBX5551 = PixelFormat('R' | 'X'<<8 | '1'<<16 | '5'<<24)
	FormatBGRX5551 = PixelFormat('B' | 'X'<<8 | '1'<<16 | '5'<<24)
	FormatARGB1555 = PixelFormat('A' | 'R'<<8 | '1'<<16 | '5'<<24)
	FormatABGR1555 = PixelFormat('A' | 'B'<<8 | '1'<<16 | '5'<<24)
	FormatRGBA5551 = PixelFormat('R' | 'A'<<8 | '1'<<16 | '5'<<24)
	FormatBGRA5551 = PixelFormat('B' | 'A'<<8 | '1'<<16 | '5'<<24)

	FormatRGB565 = PixelFormat('R' | 'G'<<8 | '1'<<16 | '6'<<24)
	FormatBGR565 = PixelFormat('B' | 'G'<<8 | '1'<<16 | '6'<<24)

	FormatRGB888 = PixelFormat('R' | 'G'<<8 | '2'<<16 | '4'<<24)
	FormatBGR888 = PixelFormat('B' | 'G'<<8 | '2'<<16 | '4'<<24)

	FormatXRGB8888 = PixelFormat('X' | 'R'<<8 | '2'<<16 | '4'<<24)
	FormatXBGR8888 = PixelFormat('X' | 'B'<<8 | '2'<<16 | '4'<<24)
	FormatRGBX8888 = PixelFormat('R' | 'X'<<8 | '2'<<16 | '4'<<24)
	FormatBGRX8888 = PixelFormat('B' | 'X'<<8 | '2'<<16 | '4'<<24)
	FormatARGB8888 = PixelFormat('A' | 'R'<<8 | '2'<<16 | '4'<<24)
	FormatABGR8888 = PixelFormat('A' | 'B'<<8 | '2'<<16 | '4'<<24)
	FormatRGBA8888 = PixelFormat('R' | 'A'<<8 | '2'<<16 | '4'<<24)
	FormatBGRA8888 = PixelFormat('B' | 'A'<<8 | '2'<<16 | '4'<<24)

	FormatXRGB2101010 = PixelFormat('X' | 'R'<<8 | '3'<<16 | '0'<<24)
	FormatXBGR2101010 = PixelFormat('X' | 'B'<<8 | '3'<<16 | '0'<<24)
	FormatRGBX1010102 = PixelFormat('R' | 'X'<<8 | '3'<<16 | '0'<<24)
	FormatBGRX1010102 = PixelFormat('B' | 'X'<<8 | '3'<<16 | '0'<<24)
	FormatARGB2101010 = PixelFormat('A' | 'R'<<8 | '3'<<16 | '0'<<24)
	FormatABGR2101010 = PixelFormat('A' | 'B'<<8 | '3'<<16 | '0'<<24)
	FormatRGBA1010102 = PixelFormat('R' | 'A'<<8 | '3'<<16 | '0'<<24)
	FormatBGRA1010102 = PixelFormat('B' | 'A'<<8 | '3'<<16 | '0'<<24)
)

// channelOrder lists the fields from the most significant bit down. The X
// variants share the A layout; their padding bits carry the alpha value.
type channelOrder uint8

const (
	orderARGB channelOrder = iota // a r g b
	orderABGR                     // a b g r
	orderRGBA                     // r g b a
	orderBGRA                     // b g r a
)

type pixelLayout struct {
	cpp   int // bytes per pixel
	kind  layoutKind
	order channelOrder
	aBits uint
	rBits uint
	gBits uint
	bBits uint
}

type layoutKind uint8

const (
	kindIndexed layoutKind = iota
	kindPacked
	kindRGB332
	kindBGR233
	kindRGB565
	kindBGR565
	kind565In24
	kindBGR565In24
)

var pixelLayouts = map[PixelFormat]pixelLayout{
	FormatC8: {cpp: 1, kind: kindIndexed},

	FormatRGB332: {cpp: 1, kind: kindRGB332, rBits: 3, gBits: 3, bBits: 2},
	FormatBGR233: {cpp: 1, kind: kindBGR233, rBits: 3, gBits: 3, bBits: 2},

	FormatXRGB4444: {cpp: 2, kind: kindPacked, order: orderARGB, aBits: 4, rBits: 4, gBits: 4, bBits: 4},
	FormatARGB4444: {cpp: 2, kind: kindPacked, order: orderARGB, aBits: 4, rBits: 4, gBits: 4, bBits: 4},
	FormatXBGR4444: {cpp: 2, kind: kindPacked, order: orderABGR, aBits: 4, rBits: 4, gBits: 4, bBits: 4},
	FormatABGR4444: {cpp: 2, kind: kindPacked, order: orderABGR, aBits: 4, rBits: 4, gBits: 4, bBits: 4},
	FormatRGBX4444: {cpp: 2, kind: kindPacked, order: orderRGBA, aBits: 4, rBits: 4, gBits: 4, bBits: 4},
	FormatRGBA4444: {cpp: 2, kind: kindPacked, order: orderRGBA, aBits: 4, rBits: 4, gBits: 4, bBits: 4},
	FormatBGRX4444: {cpp: 2, kind: kindPacked, order: orderBGRA, aBits: 4, rBits: 4, gBits: 4, bBits: 4},
	FormatBGRA4444: {cpp: 2, kind: kindPacked, order: orderBGRA, aBits: 4, rBits: 4, gBits: 4, bBits: 4},

	FormatXRGB1555: {cpp: 2, kind: kindPacked, order: orderARGB, aBits: 1, rBits: 5, gBits: 5, bBits: 5},
	FormatARGB1555: {cpp: 2, kind: kindPacked, order: orderARGB, aBits: 1, rBits: 5, gBits: 5, bBits: 5},
	FormatXBGR1555: {cpp: 2, kind: kindPacked, order: orderABGR, aBits: 1, rBits: 5, gBits: 5, bBits: 5},
	FormatABGR1555: {cpp: 2, kind: kindPacked, order: orderABGR, aBits: 1, rBits: 5, gBits: 5, bBits: 5},
	FormatRGBX5551: {cpp: 2, kind: kindPacked, order: orderRGBA, aBits: 1, rBits: 5, gBits: 5, bBits: 5},
	FormatRGBA5551: {cpp: 2, kind: kindPacked, order: orderRGBA, aBits: 1, rBits: 5, gBits: 5, bBits: 5},
	FormatBGRX5551: {cpp: 2, kind: kindPacked, order: orderBGRA, aBits: 1, rBits: 5, gBits: 5, bBits: 5},
	FormatBGRA5551: {cpp: 2, kind: kindPacked, order: orderBGRA, aBits: 1, rBits: 5, gBits: 5, bBits: 5},

	FormatRGB565: {cpp: 2, kind: kindRGB565, rBits: 5, gBits: 6, bBits: 5},
	FormatBGR565: {cpp: 2, kind: kindBGR565, rBits: 5, gBits: 6, bBits: 5},

	// 24-bit nominal formats carry a 5/6/5 value in the low 16 bits.
	FormatRGB888: {cpp: 3, kind: kind565In24, rBits: 5, gBits: 6, bBits: 5},
	FormatBGR888: {cpp: 3, kind: kindBGR565In24, rBits: 5, gBits: 6, bBits: 5},

	FormatXRGB8888: {cpp: 4, kind: kindPacked, order: orderARGB, aBits: 8, rBits: 8, gBits: 8, bBits: 8},
	FormatARGB8888: {cpp: 4, kind: kindPacked, order: orderARGB, aBits: 8, rBits: 8, gBits: 8, bBits: 8},
	FormatXBGR8888: {cpp: 4, kind: kindPacked, order: orderABGR, aBits: 8, rBits: 8, gBits: 8, bBits: 8},
	FormatABGR8888: {cpp: 4, kind: kindPacked, order: orderABGR, aBits: 8, rBits: 8, gBits: 8, bBits: 8},
	FormatRGBX8888: {cpp: 4, kind: kindPacked, order: orderRGBA, aBits: 8, rBits: 8, gBits: 8, bBits: 8},
	FormatRGBA8888: {cpp: 4, kind: kindPacked, order: orderRGBA, aBits: 8, rBits: 8, gBits: 8, bBits: 8},
	FormatBGRX8888: {cpp: 4, kind: kindPacked, order: orderBGRA, aBits: 8, rBits: 8, gBits: 8, bBits: 8},
	FormatBGRA8888: {cpp: 4, kind: kindPacked, order: orderBGRA, aBits: 8, rBits: 8, gBits: 8, bBits: 8},

	FormatXRGB2101010: {cpp: 4, kind: kindPacked, order: orderARGB, aBits: 2, rBits: 10, gBits: 10, bBits: 10},
	FormatARGB2101010: {cpp: 4, kind: kindPacked, order: orderARGB, aBits: 2, rBits: 10, gBits: 10, bBits: 10},
	FormatXBGR2101010: {cpp: 4, kind: kindPacked, order: orderABGR, aBits: 2, rBits: 10, gBits: 10, bBits: 10},
	FormatABGR2101010: {cpp: 4, kind: kindPacked, order: orderABGR, aBits: 2, rBits: 10, gBits: 10, bBits: 10},
	FormatRGBX1010102: {cpp: 4, kind: kindPacked, order: orderRGBA, aBits: 2, rBits: 10, gBits: 10, bBits: 10},
	FormatRGBA1010102: {cpp: 4, kind: kindPacked, order: orderRGBA, aBits: 2, rBits: 10, gBits: 10, bBits: 10},
	FormatBGRX1010102: {cpp: 4, kind: kindPacked, order: orderBGRA, aBits: 2, rBits: 10, gBits: 10, bBits: 10},
	FormatBGRA1010102: {cpp: 4, kind: kindPacked, order: orderBGRA, aBits: 2, rBits: 10, gBits: 10, bBits: 10},
}

func lookupLayout(format PixelFormat) (pixelLayout, bool) {
	l, ok := pixelLayouts[format&^FormatBigEndian]
	return l, ok
}

// formatCpp returns bytes per pixel, or 0 for an unknown format.
func formatCpp(format PixelFormat) int {
	l, ok := lookupLayout(format)
	if !ok {
		return 0
	}
	return l.cpp
}

func isKnownFormat(format PixelFormat) bool {
	_, ok := lookupLayout(format)
	return ok
}

// trunc keeps the top n bits of a full-range 32-bit channel.
func trunc(v uint32, n uint) uint32 {
	return v >> (32 - n)
}

// expand widens an n-bit field back to a full-range 32-bit channel by
// replicating its bits.
func expand(v uint32, n uint) uint32 {
	if n == 0 {
		return 0
	}
	v &= 1<<n - 1
	out := uint32(0)
	for shift := int(32 - n); shift > -int(n); shift -= int(n) {
		if shift >= 0 {
			out |= v << uint(shift)
		} else {
			out |= v >> uint(-shift)
		}
	}
	return out
}

func pack565(r, g, b uint32) uint32 {
	return trunc(r, 5)<<11 | trunc(g, 6)<<5 | trunc(b, 5)
}

func packFields(l pixelLayout, a, r, g, b uint32) uint32 {
	a, r, g, b = trunc(a, l.aBits), trunc(r, l.rBits), trunc(g, l.gBits), trunc(b, l.bBits)
	switch l.order {
	case orderARGB:
		return a<<(l.rBits+l.gBits+l.bBits) | r<<(l.gBits+l.bBits) | g<<l.bBits | b
	case orderABGR:
		return a<<(l.rBits+l.gBits+l.bBits) | b<<(l.gBits+l.rBits) | g<<l.rBits | r
	case orderRGBA:
		return r<<(l.gBits+l.bBits+l.aBits) | g<<(l.bBits+l.aBits) | b<<l.aBits | a
	default:
		return b<<(l.gBits+l.rBits+l.aBits) | g<<(l.rBits+l.aBits) | r<<l.aBits | a
	}
}

func field(v uint32, shift, n uint) uint32 {
	return (v >> shift) & (1<<n - 1)
}

func unpackFields(l pixelLayout, v uint32) (a, r, g, b uint32) {
	switch l.order {
	case orderARGB:
		a = field(v, l.rBits+l.gBits+l.bBits, l.aBits)
		r = field(v, l.gBits+l.bBits, l.rBits)
		g = field(v, l.bBits, l.gBits)
		b = field(v, 0, l.bBits)
	case orderABGR:
		a = field(v, l.rBits+l.gBits+l.bBits, l.aBits)
		b = field(v, l.gBits+l.rBits, l.bBits)
		g = field(v, l.rBits, l.gBits)
		r = field(v, 0, l.rBits)
	case orderRGBA:
		r = field(v, l.gBits+l.bBits+l.aBits, l.rBits)
		g = field(v, l.bBits+l.aBits, l.gBits)
		b = field(v, l.aBits, l.bBits)
		a = field(v, 0, l.aBits)
	default:
		b = field(v, l.gBits+l.rBits+l.aBits, l.bBits)
		g = field(v, l.rBits+l.aBits, l.gBits)
		r = field(v, l.aBits, l.rBits)
		a = field(v, 0, l.aBits)
	}
	return expand(a, l.aBits), expand(r, l.rBits), expand(g, l.gBits), expand(b, l.bBits)
}

// storeValue writes the low cpp bytes of v, little-endian unless big is set.
func storeValue(dst []byte, cpp int, v uint32, big bool) {
	if big {
		switch cpp {
		case 2:
			v = uint32(bits.ReverseBytes16(uint16(v)))
		case 3:
			v = bits.ReverseBytes32(v) >> 8
		case 4:
			v = bits.ReverseBytes32(v)
		}
	}
	for i := range cpp {
		dst[i] = byte(v >> (8 * i))
	}
}

func loadValue(src []byte, cpp int, big bool) uint32 {
	var v uint32
	for i := range cpp {
		v |= uint32(src[i]) << (8 * i)
	}
	if big {
		switch cpp {
		case 2:
			v = uint32(bits.ReverseBytes16(uint16(v)))
		case 3:
			v = bits.ReverseBytes32(v) >> 8
		case 4:
			v = bits.ReverseBytes32(v)
		}
	}
	return v
}

// encodePixel writes one pixel of the given format at dst[0:cpp]. Channels are
// full-range 32-bit values and are truncated to the field width. Unknown
// formats and short destinations write nothing.
func encodePixel(dst []byte, format PixelFormat, a, r, g, b uint32) {
	l, ok := lookupLayout(format)
	if !ok || len(dst) < l.cpp {
		return
	}
	big := format&FormatBigEndian != 0

	switch l.kind {
	case kindIndexed:
		// No palette access: 0x00 is black, 0xff everything else.
		if r|g|b != 0 {
			dst[0] = 0xff
		} else {
			dst[0] = 0
		}
	case kindRGB332:
		dst[0] = byte(trunc(r, 3)<<5 | trunc(g, 3)<<2 | trunc(b, 2))
	case kindBGR233:
		dst[0] = byte(trunc(b, 2)<<6 | trunc(g, 3)<<3 | trunc(r, 3))
	case kindRGB565, kind565In24:
		storeValue(dst, l.cpp, pack565(r, g, b), big)
	case kindBGR565, kindBGR565In24:
		storeValue(dst, l.cpp, pack565(b, g, r), big)
	default:
		storeValue(dst, l.cpp, packFields(l, a, r, g, b), big)
	}
}

// decodePixel reads one pixel back into full-range channels. Formats without
// an alpha field report opaque alpha.
func decodePixel(src []byte, format PixelFormat) (a, r, g, b uint32, ok bool) {
	l, known := lookupLayout(format)
	if !known || len(src) < l.cpp {
		return 0, 0, 0, 0, false
	}
	big := format&FormatBigEndian != 0
	a = 0xffffffff

	switch l.kind {
	case kindIndexed:
		if src[0] != 0 {
			r, g, b = 0xffffffff, 0xffffffff, 0xffffffff
		}
	case kindRGB332:
		v := uint32(src[0])
		r, g, b = expand(field(v, 5, 3), 3), expand(field(v, 2, 3), 3), expand(field(v, 0, 2), 2)
	case kindBGR233:
		v := uint32(src[0])
		b, g, r = expand(field(v, 6, 2), 2), expand(field(v, 3, 3), 3), expand(field(v, 0, 3), 3)
	case kindRGB565, kind565In24:
		v := loadValue(src, l.cpp, big)
		r, g, b = expand(field(v, 11, 5), 5), expand(field(v, 5, 6), 6), expand(field(v, 0, 5), 5)
	case kindBGR565, kindBGR565In24:
		v := loadValue(src, l.cpp, big)
		b, g, r = expand(field(v, 11, 5), 5), expand(field(v, 5, 6), 6), expand(field(v, 0, 5), 5)
	default:
		a, r, g, b = unpackFields(l, loadValue(src, l.cpp, big))
	}
	return a, r, g, b, true
}

// formatNames maps the flag spelling to a format, used by -format.
var formatNames = map[string]PixelFormat{
	"C8":          FormatC8,
	"RGB332":      FormatRGB332,
	"BGR233":      FormatBGR233,
	"XRGB4444":    FormatXRGB4444,
	"XBGR4444":    FormatXBGR4444,
	"RGBX4444":    FormatRGBX4444,
	"BGRX4444":    FormatBGRX4444,
	"ARGB4444":    FormatARGB4444,
	"ABGR4444":    FormatABGR4444,
	"RGBA4444":    FormatRGBA4444,
	"BGRA4444":    FormatBGRA4444,
	"XRGB1555":    FormatXRGB1555,
	"XBGR1555":    FormatXBGR1555,
	"RGBX5551":    FormatRGBX5551,
	"BGRX5551":    FormatBGRX5551,
	"ARGB1555":    FormatARGB1555,
	"ABGR1555":    FormatABGR1555,
	"RGBA5551":    FormatRGBA5551,
	"BGRA5551":    FormatBGRA5551,
	"RGB565":      FormatRGB565,
	"BGR565":      FormatBGR565,
	"RGB888":      FormatRGB888,
	"BGR888":      FormatBGR888,
	"XRGB8888":    FormatXRGB8888,
	"XBGR8888":    FormatXBGR8888,
	"RGBX8888":    FormatRGBX8888,
	"BGRX8888":    FormatBGRX8888,
	"ARGB8888":    FormatARGB8888,
	"ABGR8888":    FormatABGR8888,
	"RGBA8888":    FormatRGBA8888,
	"BGRA8888":    FormatBGRA8888,
	"XRGB2101010": FormatXRGB2101010,
	"XBGR2101010": FormatXBGR2101010,
	"RGBX1010102": FormatRGBX1010102,
	"BGRX1010102": FormatBGRX1010102,
	"ARGB2101010": FormatARGB2101010,
	"ABGR2101010": FormatABGR2101010,
	"RGBA1010102": FormatRGBA1010102,
	"BGRA1010102": FormatBGRA1010102,
}

// parsePixelFormat accepts a format name with an optional "_BE" suffix.
func parsePixelFormat(name string) (PixelFormat, bool) {
	big := false
	if n := len(name); n > 3 && name[n-3:] == "_BE" {
		big = true
		name = name[:n-3]
	}
	f, ok := formatNames[name]
	if !ok {
		return 0, false
	}
	if big {
		f |= FormatBigEndian
	}
	return f, true
}

func (f PixelFormat) String() string {
	for name, v := range formatNames {
		if v == f&^FormatBigEndian {
			if f&FormatBigEndian != 0 {
				return name + "_BE"
			}
			return name
		}
	}
	return "unknown"
}
