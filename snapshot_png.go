// snapshot_png.go - Renders the log once into a raw buffer and saves it as PNG

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
	"image/png"
	"io"
	"os"
)

// renderSnapshot draws the log into a fresh buffer of the given format and
// converts it to an image through the pixel decoder.
func renderSnapshot(log *FrameLog, width, height, columns int, format PixelFormat) (*image.NRGBA, error) {
	cpp := formatCpp(format)
	if cpp == 0 {
		return nil, &VideoError{Operation: "snapshot", Details: fmt.Sprintf("unsupported pixel format %#08x", uint32(format))}
	}
	if width <= 0 || height <= 0 {
		return nil, &VideoError{Operation: "snapshot", Details: fmt.Sprintf("invalid size %dx%d", width, height)}
	}
	if _, _, err := log.glyphSize(); err != nil {
		return nil, &VideoError{Operation: "snapshot", Details: "log", Err: err}
	}
	stride := width * cpp
	pix := make([]byte, stride*height)
	log.Draw(pix, width, height, stride, cpp, format, columns)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			a, r, g, b, ok := decodePixel(pix[y*stride+x*cpp:], format)
			if !ok {
				continue
			}
			o := img.PixOffset(x, y)
			img.Pix[o] = byte(r >> 24)
			img.Pix[o+1] = byte(g >> 24)
			img.Pix[o+2] = byte(b >> 24)
			img.Pix[o+3] = byte(a >> 24)
		}
	}
	return img, nil
}

func writeSnapshotPNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return &VideoError{Operation: "snapshot", Details: "png encode", Err: err}
	}
	return nil
}

// saveSnapshot writes a PNG of the current log to path.
func saveSnapshot(log *FrameLog, path string, width, height, columns int, format PixelFormat) error {
	img, err := renderSnapshot(log, width, height, columns, format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return &VideoError{Operation: "snapshot", Details: path, Err: err}
	}
	if err := writeSnapshotPNG(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &VideoError{Operation: "snapshot", Details: path, Err: err}
	}
	return nil
}
