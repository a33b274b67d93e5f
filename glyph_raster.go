// glyph_raster.go - Glyph and rectangle rasteriser for raw framebuffers

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

const channelFull = 0xFFFFFFFF

// drawGlyph draws the foreground bits of glyph ch with its top-left pixel at
// pix[off], in opaque white. Background bits are left as they are.
func drawGlyph(f *Font, ch byte, pix []byte, off, stride, cpp int, format PixelFormat) {
	if !f.valid() || cpp <= 0 || cpp > 4 || !isKnownFormat(format) {
		return
	}
	rows := f.glyph(ch)
	if rows == nil {
		return
	}
	var px [4]byte
	encodePixel(px[:], format, channelFull, channelFull, channelFull, channelFull)

	for gy := range f.Height {
		src := rows[gy*f.Stride : (gy+1)*f.Stride]
		dst := off + gy*stride
		for gx := range f.Width {
			if src[gx/8]&(0x80>>(gx%8)) == 0 {
				continue
			}
			o := dst + gx*cpp
			if o < 0 || o+cpp > len(pix) {
				continue
			}
			copy(pix[o:o+cpp], px[:cpp])
		}
	}
}

// fillRect writes one colour into a w x h region whose top-left pixel is at
// pix[off], row by row.
func fillRect(pix []byte, off, w, h, stride, cpp int, format PixelFormat, a, r, g, b uint32) {
	if w <= 0 || h <= 0 || cpp <= 0 || cpp > 4 || !isKnownFormat(format) {
		return
	}
	var px [4]byte
	encodePixel(px[:], format, a, r, g, b)
	for y := range h {
		row := off + y*stride
		for x := range w {
			o := row + x*cpp
			if o < 0 || o+cpp > len(pix) {
				continue
			}
			copy(pix[o:o+cpp], px[:cpp])
		}
	}
}

// clearRect fills a region with opaque black.
func clearRect(pix []byte, off, w, h, stride, cpp int, format PixelFormat) {
	fillRect(pix, off, w, h, stride, cpp, format, channelFull, 0, 0, 0)
}
