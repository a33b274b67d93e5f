package main

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderSnapshot_DecodesThroughFormat(t *testing.T) {
	fl := newTestLog(t)
	fl.WriteString("snap", false)
	for _, format := range []PixelFormat{FormatXRGB8888, FormatRGB565 | FormatBigEndian, FormatC8, FormatBGRA5551} {
		img, err := renderSnapshot(fl, 64, 16, 1, format)
		if err != nil {
			t.Fatalf("%v: renderSnapshot returned error: %v", format, err)
		}
		if c := img.NRGBAAt(0, 8); c.R != 0xFF || c.G != 0xFF || c.B != 0xFF || c.A != 0xFF {
			t.Fatalf("%v: expected a white glyph pixel, got %+v", format, c)
		}
		if c := img.NRGBAAt(63, 8); c.R != 0 || c.G != 0 || c.B != 0 {
			t.Fatalf("%v: expected black past the text, got %+v", format, c)
		}
	}
}

func TestRenderSnapshot_Errors(t *testing.T) {
	fl := newTestLog(t)
	var ve *VideoError
	if _, err := renderSnapshot(fl, 64, 16, 1, fourcc('Y', 'U', 'Y', 'V')); !errors.As(err, &ve) {
		t.Fatalf("expected a VideoError for an unknown format, got %v", err)
	}
	if _, err := renderSnapshot(fl, 0, 16, 1, FormatXRGB8888); !errors.As(err, &ve) {
		t.Fatalf("expected a VideoError for a zero width, got %v", err)
	}
	if _, err := renderSnapshot(NewFrameLog(), 64, 16, 1, FormatXRGB8888); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected errNotInitialized, got %v", err)
	}
}

func TestWriteSnapshotPNG_RoundTrip(t *testing.T) {
	fl := newTestLog(t)
	img, err := renderSnapshot(fl, 32, 8, 1, FormatXRGB8888)
	if err != nil {
		t.Fatalf("renderSnapshot returned error: %v", err)
	}
	var buf bytes.Buffer
	if err := writeSnapshotPNG(&buf, img); err != nil {
		t.Fatalf("writeSnapshotPNG returned error: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode returned error: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 32 || b.Dy() != 8 {
		t.Fatalf("expected 32x8, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestSaveSnapshot(t *testing.T) {
	fl := newTestLog(t)
	path := filepath.Join(t.TempDir(), "log.png")
	if err := saveSnapshot(fl, path, 80, 40, 1, FormatABGR8888); err != nil {
		t.Fatalf("saveSnapshot returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected a non-empty PNG, got err=%v", err)
	}
	if err := saveSnapshot(fl, filepath.Join(t.TempDir(), "missing", "log.png"), 80, 40, 1, FormatABGR8888); err == nil {
		t.Fatal("expected an error for an unwritable path")
	}
}
