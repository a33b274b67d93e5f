package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font/basicfont"
)

func main() {
	outFile := flag.String("o", "", "Output file (default: input.raw, or basic7x13.raw with -builtin)")
	builtin := flag.Bool("builtin", false, "Convert the built-in basicfont 7x13 face instead of a sheet")
	threshold := flag.Uint("threshold", 0x80, "Gray level (0-255) at which a pixel is foreground")
	preview := flag.String("preview", "", "Also write the glyph sheet as PNG to this file")
	stats := flag.Bool("stats", false, "Print conversion statistics")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: font2raw [options] [sheet.png]\n\nConverts a 16x16 glyph sheet to a raw 1bpp font table for framelog -font.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  font2raw topaz8x16.png\n")
		fmt.Fprintf(os.Stderr, "  font2raw -builtin -preview sheet.png\n")
	}
	flag.Parse()

	if *threshold > 255 {
		fmt.Fprintf(os.Stderr, "error: -threshold must be 0-255\n")
		os.Exit(1)
	}
	if *builtin == (flag.NArg() == 1) || flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}

	var sheet image.Image
	outputPath := *outFile
	if *builtin {
		img, err := RenderFaceSheet(basicfont.Face7x13)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		sheet = img
		if outputPath == "" {
			outputPath = "basic7x13.raw"
		}
	} else {
		inputPath := flag.Arg(0)
		img, err := readSheet(inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		sheet = img
		if outputPath == "" {
			outputPath = strings.TrimSuffix(inputPath, ".png") + ".raw"
		}
	}

	conv := NewConverter()
	conv.threshold = uint8(*threshold)
	raw, w, h, err := conv.ConvertSheet(sheet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outputPath, raw, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outputPath, err)
		os.Exit(1)
	}
	if *preview != "" {
		if err := writeSheet(*preview, sheet); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if *stats {
		fmt.Printf("Output: %s (%d bytes)\n", outputPath, len(raw))
		fmt.Printf("Glyphs: %dx%d, %d non-empty, %d pixels set\n", w, h, conv.glyphs, conv.lit)
		fmt.Printf("Use:    framelog -font %s -font-width %d -font-height %d\n", outputPath, w, h)
	}
}

func readSheet(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func writeSheet(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
