// main.go - Main entry point for FrameLog

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
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"
)

const bannerArt = `
 ███████ ██████   █████  ███    ███ ███████ ██       ██████   ██████
 ██      ██   ██ ██   ██ ████  ████ ██      ██      ██    ██ ██
 █████   ██████  ███████ ██ ████ ██ █████   ██      ██    ██ ██   ███
 ██      ██   ██ ██   ██ ██  ██  ██ ██      ██      ██    ██ ██    ██
 ██      ██   ██ ██   ██ ██      ██ ███████ ███████  ██████   ██████`

func boilerPlate() {
	lines := strings.Split(strings.TrimPrefix(bannerArt, "\n"), "\n")
	fmt.Println()
	for i, line := range lines {
		fmt.Println(color.RGB(255, uint8(20+40*i), 147).Sprint(line))
	}
	fmt.Println("\nA crash-safe scrolling log rendered straight into raw framebuffers.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/FrameLog")
	fmt.Println("License: GPLv3 or later")
}

// Config holds the command line settings.
type Config struct {
	Width          int
	Height         int
	Columns        int
	Format         PixelFormat
	FontPath       string
	FontWidth      int
	FontHeight     int
	Script         string
	Snapshot       string
	Stdin          bool
	Atomic         bool
	BudgetMB       int
	HeadlessFrames int
	Listen         bool
	Send           string
	Features       bool
}

func (c Config) MaxStoreBytes() int64 {
	return int64(c.BudgetMB) << 20
}

func (c Config) validate() error {
	if c.Columns < 1 {
		return fmt.Errorf("-columns must be at least 1, got %d", c.Columns)
	}
	if c.BudgetMB < 1 {
		return fmt.Errorf("-budget-mb must be at least 1, got %d", c.BudgetMB)
	}
	if c.HeadlessFrames < 0 {
		return fmt.Errorf("-headless-frames must not be negative")
	}
	if c.FontPath != "" && (c.FontWidth <= 0 || c.FontHeight <= 0) {
		return fmt.Errorf("-font needs positive -font-width and -font-height")
	}
	if !isKnownFormat(c.Format) {
		return fmt.Errorf("unsupported pixel format %v", c.Format)
	}
	return nil
}

// validateResolutionOverride accepts a width/height pair only when both are
// set.
func validateResolutionOverride(width, height int) (int, int, bool) {
	if width > 0 && height > 0 {
		return width, height, true
	}
	return 0, 0, false
}

func parseConfig(args []string, usageOut io.Writer) (Config, error) {
	cfg := Config{}
	var format string

	flagSet := flag.NewFlagSet("framelog", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.IntVar(&cfg.Width, "width", 0, "Surface width in pixels (with -height)")
	flagSet.IntVar(&cfg.Height, "height", 0, "Surface height in pixels (with -width)")
	flagSet.IntVar(&cfg.Columns, "columns", 1, "Log columns per surface")
	flagSet.StringVar(&format, "format", "XRGB8888", "Snapshot pixel format, e.g. RGB565 or XRGB8888_BE")
	flagSet.StringVar(&cfg.FontPath, "font", "", "Raw 1bpp font file (see cmd/font2raw)")
	flagSet.IntVar(&cfg.FontWidth, "font-width", 8, "Glyph width of -font")
	flagSet.IntVar(&cfg.FontHeight, "font-height", 16, "Glyph height of -font")
	flagSet.StringVar(&cfg.Script, "script", "", "Lua scenario script")
	flagSet.StringVar(&cfg.Snapshot, "snapshot", "", "Render once to this PNG file and exit")
	flagSet.BoolVar(&cfg.Stdin, "stdin", false, "Append stdin to the log")
	flagSet.BoolVar(&cfg.Atomic, "atomic", false, "Use the non-blocking write path for all input")
	flagSet.IntVar(&cfg.BudgetMB, "budget-mb", defaultBudget>>20, "Largest log store in MiB")
	flagSet.IntVar(&cfg.HeadlessFrames, "headless-frames", 0, "Frames to render before exiting (0 = until input ends)")
	flagSet.BoolVar(&cfg.Listen, "listen", false, "Accept log lines from other processes on a Unix socket")
	flagSet.StringVar(&cfg.Send, "send", "", "Append a line to the log of a running -listen instance and exit")
	flagSet.BoolVar(&cfg.Features, "features", false, "Print version and compiled features and exit")

	flagSet.Usage = func() {
		flagSet.SetOutput(usageOut)
		fmt.Fprintln(usageOut, "Usage: ./framelog [-stdin] [-script scenario.lua] [-snapshot out.png] [-columns 2]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return cfg, err
	}

	w, h, ok := validateResolutionOverride(cfg.Width, cfg.Height)
	if !ok {
		if cfg.Width != 0 || cfg.Height != 0 {
			return cfg, errors.New("-width and -height must be given together")
		}
		w, h = initialWidthPx, initialHeightPx
	}
	cfg.Width, cfg.Height = w, h

	f, ok := parsePixelFormat(strings.ToUpper(format))
	if !ok {
		return cfg, fmt.Errorf("unknown pixel format %q", format)
	}
	cfg.Format = f
	return cfg, cfg.validate()
}

func loadFont(cfg Config) (*Font, error) {
	if cfg.FontPath == "" {
		f := defaultFont()
		if f == nil {
			return nil, errors.New("built-in font unavailable")
		}
		return f, nil
	}
	return loadRawFontFile(cfg.FontPath, cfg.FontWidth, cfg.FontHeight)
}

func main() {
	boilerPlate()

	cfg, err := parseConfig(os.Args[1:], os.Stdout)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Features {
		printFeatures()
		os.Exit(0)
	}
	if cfg.Send != "" {
		if _, err := SendIPC("log", cfg.Send); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	font, err := loadFont(cfg)
	if err != nil {
		fmt.Printf("Failed to load font: %v\n", err)
		os.Exit(1)
	}
	defaultLog.SetBudget(cfg.MaxStoreBytes())
	defaultLog.InitWithFont(font)
	if !defaultLog.Initialized() {
		fmt.Println("Failed to initialize log: initial store exceeds -budget-mb")
		os.Exit(1)
	}
	logf("framelog: %dx%d glyphs, %d MiB budget", font.Width, font.Height, cfg.BudgetMB)

	sink := NewConsoleSink(defaultLog)
	sink.SetNonBlocking(cfg.Atomic)

	var code int
	if cfg.Snapshot != "" {
		code = runSnapshot(cfg, sink)
	} else {
		code = runDisplay(cfg, sink)
	}
	defaultLog.Shutdown()
	os.Exit(code)
}

// runSnapshot feeds the log from the script and stdin, then writes one PNG.
func runSnapshot(cfg Config, sink *ConsoleSink) int {
	defaultLog.EnsureSize(cfg.Width, cfg.Height)
	columns := cfg.Columns
	if cfg.Script != "" {
		runner := NewScriptRunner(defaultLog, panicSurfaces, func(n int) { columns = n })
		if err := runner.RunFile(context.Background(), cfg.Script); err != nil {
			warnf("framelog: %v", err)
			return 1
		}
	}
	if cfg.Stdin {
		if _, err := io.Copy(sink, os.Stdin); err != nil {
			warnf("framelog: read stdin: %v", err)
		}
		sink.Flush()
	}
	if err := saveSnapshot(defaultLog, cfg.Snapshot, cfg.Width, cfg.Height, columns, cfg.Format); err != nil {
		warnf("framelog: %v", err)
		return 1
	}
	fmt.Printf("Wrote %s (%dx%d %v)\n", cfg.Snapshot, cfg.Width, cfg.Height, cfg.Format)
	defaultLog.Status().print(os.Stdout)
	return 0
}

// runDisplay opens the window and keeps it fed until it is closed, input
// ends or the frame limit is reached.
func runDisplay(cfg Config, sink *ConsoleSink) int {
	out, err := NewVideoOutput(VIDEO_BACKEND_EBITEN, defaultLog)
	if err != nil {
		fmt.Printf("Failed to initialize video: %v\n", err)
		return 1
	}
	if err := out.SetDisplayConfig(DisplayConfig{Width: cfg.Width, Height: cfg.Height, Scale: 1, Columns: cfg.Columns}); err != nil {
		fmt.Printf("Failed to configure video: %v\n", err)
		return 1
	}
	if kb, ok := out.(KeyboardInput); ok {
		kb.SetKeyHandler(func(b byte) {
			_, _ = sink.Write([]byte{b})
		})
	}
	if err := out.Start(); err != nil {
		fmt.Printf("Failed to start video: %v\n", err)
		return 1
	}
	defer out.Close()

	if cfg.Listen {
		srv, err := NewIPCServer(defaultLog, panicSurfaces)
		if err != nil {
			warnf("framelog: %v", err)
		} else {
			srv.Start()
			defer srv.Stop()
			logf("framelog: listening on %s", srv.sockPath)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inputDone := make(chan struct{})
	pending := 0
	finished := make(chan struct{}, 2)

	if cfg.Stdin {
		host := NewTerminalHost(sink)
		host.Start()
		defer host.Stop()
		pending++
		go func() {
			<-host.Done()
			finished <- struct{}{}
		}()
	}
	if cfg.Script != "" {
		runner := NewScriptRunner(defaultLog, panicSurfaces, func(n int) {
			c := out.GetDisplayConfig()
			c.Columns = n
			if err := out.SetDisplayConfig(c); err != nil {
				warnf("framelog: columns: %v", err)
			}
		})
		pending++
		go func() {
			defer RecoverAndDraw()
			defer func() { finished <- struct{}{} }()
			if err := runner.RunFile(ctx, cfg.Script); err != nil && ctx.Err() == nil {
				warnf("framelog: %v", err)
			}
		}()
	}
	go func(done chan struct{}, n int) {
		for range n {
			<-finished
		}
		close(done)
	}(inputDone, pending)

	var windowDone <-chan struct{}
	if d, ok := out.(interface{ Done() <-chan struct{} }); ok {
		windowDone = d.Done()
	}

	ticker := time.NewTicker(time.Second / time.Duration(out.GetRefreshRate()))
	defer ticker.Stop()
	frames := 0
	for cfg.HeadlessFrames == 0 || frames < cfg.HeadlessFrames {
		select {
		case <-windowDone:
			defaultLog.Status().print(os.Stdout)
			return 0
		case <-inputDone:
			inputDone = nil
			if windowDone == nil && cfg.HeadlessFrames == 0 {
				_ = out.UpdateFrame()
				defaultLog.Status().print(os.Stdout)
				return 0
			}
		case <-ticker.C:
			if windowDone == nil {
				_ = out.UpdateFrame()
			}
			frames++
		}
	}
	defaultLog.Status().print(os.Stdout)
	return 0
}
