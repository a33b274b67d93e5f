//go:build !headless

// video_backend_ebiten.go - Ebiten window that redraws the log every frame

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
	"image/color"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

func init() {
	compiledFeatures = append(compiledFeatures, "video:ebiten")
}

// ebiten.Image.WritePixels takes R, G, B, A bytes, which is ABGR8888 in
// DRM terms.
const ebitenFormat = FormatABGR8888

const maxCycleColumns = 4

type EbitenOutput struct {
	running     bool
	window      *ebiten.Image
	width       int
	height      int
	columns     int
	fullscreen  bool
	scale       int
	windowedW   int
	windowedH   int
	frameBuffer []byte
	bufferMutex sync.RWMutex
	frameCount  uint64
	refreshRate int
	vsyncChan   chan struct{}
	done        chan struct{}
	keyHandler  func(byte)

	log     *FrameLog
	panicFB *PanicSurface

	clipboardOnce sync.Once
	clipboardOK   bool
	showStatusBar bool

	crashHandler    func()
	crashInProgress atomic.Bool
}

func NewEbitenOutput(log *FrameLog) (VideoOutput, error) {
	eo := &EbitenOutput{
		width:         800,
		height:        600,
		columns:       1,
		scale:         1,
		windowedW:     800,
		windowedH:     600,
		frameBuffer:   make([]byte, 800*600*4),
		refreshRate:   60,
		vsyncChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		showStatusBar: true,
		log:           log,
	}
	eo.crashHandler = eo.simulateCrash
	return eo, nil
}

func (eo *EbitenOutput) Start() error {
	if eo.running {
		return nil
	}
	eo.bufferMutex.Lock()
	eo.done = make(chan struct{})
	eo.panicFB = RegisterPanicSurface()
	eo.updatePanicSurfaceLocked()
	eo.bufferMutex.Unlock()
	eo.running = true
	ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	ebiten.SetWindowTitle("FrameLog (c) 2024 - 2026 Zayn Otley")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	if eo.fullscreen {
		ebiten.SetFullscreen(true)
	}

	go func() {
		defer func() {
			eo.running = false
			eo.bufferMutex.RLock()
			done := eo.done
			eo.bufferMutex.RUnlock()
			select {
			case <-done:
			default:
				close(done)
			}
		}()
		if err := ebiten.RunGame(eo); err != nil {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running = false
	eo.bufferMutex.Lock()
	if eo.panicFB != nil {
		eo.panicFB.Unregister()
		eo.panicFB = nil
	}
	eo.bufferMutex.Unlock()
	return nil
}

func (eo *EbitenOutput) Close() error {
	return eo.Stop()
}

func (eo *EbitenOutput) Done() <-chan struct{} {
	eo.bufferMutex.RLock()
	done := eo.done
	eo.bufferMutex.RUnlock()
	return done
}

func (eo *EbitenOutput) updatePanicSurfaceLocked() {
	if eo.panicFB == nil {
		return
	}
	eo.panicFB.Update(eo.frameBuffer, eo.width, eo.height, eo.width*4, 4, ebitenFormat)
	eo.panicFB.SetColumns(eo.columns)
}

// resizeLocked reallocates the framebuffer and grows the log for the new
// geometry.
func (eo *EbitenOutput) resizeLocked(width, height int) {
	eo.width = width
	eo.height = height
	if newSize := width * height * 4; len(eo.frameBuffer) != newSize {
		eo.frameBuffer = make([]byte, newSize)
	}
	if eo.window != nil {
		eo.window.Dispose()
		eo.window = nil
	}
	if eo.log != nil {
		eo.log.EnsureSize(width, height)
	}
	eo.updatePanicSurfaceLocked()
}

func (eo *EbitenOutput) UpdateFrame() error {
	eo.bufferMutex.Lock()
	eo.drawLogLocked()
	eo.bufferMutex.Unlock()
	return nil
}

func (eo *EbitenOutput) drawLogLocked() {
	if eo.log == nil {
		return
	}
	eo.log.Draw(eo.frameBuffer, eo.width, eo.height, eo.width*4, 4, ebitenFormat, eo.columns)
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()

	width := config.Width
	height := config.Height
	if width <= 0 {
		width = eo.width
	}
	if height <= 0 {
		height = eo.height
	}
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 600
	}
	if config.PixelFormat != 0 && config.PixelFormat != ebitenFormat {
		return &VideoError{
			Operation: "configure",
			Details:   fmt.Sprintf("window surfaces are %v, not %v", ebitenFormat, config.PixelFormat),
		}
	}
	eo.scale = ClampScale(config.Scale)
	eo.columns = max(config.Columns, 1)
	eo.resizeLocked(width, height)

	eo.windowedW = eo.width * eo.scale
	eo.windowedH = eo.height * eo.scale
	eo.fullscreen = config.Fullscreen
	ebiten.SetFullscreen(eo.fullscreen)
	if !eo.fullscreen {
		ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	}
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	return DisplayConfig{
		Width:       eo.width,
		Height:      eo.height,
		Scale:       eo.scale,
		PixelFormat: ebitenFormat,
		RefreshRate: eo.refreshRate,
		Columns:     eo.columns,
		VSync:       true,
		Fullscreen:  eo.fullscreen,
	}
}

func (eo *EbitenOutput) WaitForVSync() error {
	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) GetFrameCount() uint64 {
	return atomic.LoadUint64(&eo.frameCount)
}

func (eo *EbitenOutput) GetRefreshRate() int {
	return eo.refreshRate
}

func (eo *EbitenOutput) GetSnapshot() (FrameSnapshot, error) {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()

	snapshot := FrameSnapshot{
		Buffer:    make([]byte, len(eo.frameBuffer)),
		Width:     eo.width,
		Height:    eo.height,
		Stride:    eo.width * 4,
		Format:    ebitenFormat,
		Timestamp: time.Now(),
	}
	copy(snapshot.Buffer, eo.frameBuffer)
	return snapshot, nil
}

func (eo *EbitenOutput) IsStarted() bool {
	return eo.running
}

func (eo *EbitenOutput) Update() error {
	// Check if the window was closed using Ebiten's built-in detection
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	if !eo.running {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		eo.bufferMutex.Lock()
		eo.columns = nextColumns(eo.columns, maxCycleColumns)
		eo.updatePanicSurfaceLocked()
		eo.bufferMutex.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		eo.bufferMutex.Lock()
		eo.fullscreen = !eo.fullscreen
		ebiten.SetFullscreen(eo.fullscreen)
		if !eo.fullscreen {
			ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
		}
		eo.bufferMutex.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF10) {
		if eo.crashInProgress.CompareAndSwap(false, true) {
			eo.bufferMutex.RLock()
			handler := eo.crashHandler
			eo.bufferMutex.RUnlock()
			if handler != nil {
				go func() {
					defer eo.crashInProgress.Store(false)
					handler()
				}()
			} else {
				eo.crashInProgress.Store(false)
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		eo.bufferMutex.Lock()
		eo.showStatusBar = !eo.showStatusBar
		eo.bufferMutex.Unlock()
	}
	eo.handleKeyboardInput()
	return nil
}

func nextColumns(cur, limit int) int {
	if cur >= limit {
		return 1
	}
	return cur + 1
}

// simulateCrash writes a fake panic report through the crash path and
// paints every panic surface, this window included.
func (eo *EbitenOutput) simulateCrash() {
	if eo.log == nil {
		return
	}
	reportSimulatedCrash(eo.log, panicSurfaces, "simulated crash (F10)", debug.Stack())
}

func (eo *EbitenOutput) SetCrashHandler(fn func()) {
	eo.bufferMutex.Lock()
	eo.crashHandler = fn
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) SetKeyHandler(fn func(byte)) {
	eo.bufferMutex.Lock()
	eo.keyHandler = fn
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) emitByte(b byte) {
	eo.bufferMutex.RLock()
	handler := eo.keyHandler
	eo.bufferMutex.RUnlock()
	if handler != nil {
		handler(b)
	}
}

func (eo *EbitenOutput) emitSeq(seq []byte) {
	for _, b := range seq {
		eo.emitByte(b)
	}
}

func (eo *EbitenOutput) handleKeyboardInput() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	// Clipboard copy: Ctrl+Shift+C
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		eo.handleClipboardCopy()
	}
	// Clipboard paste: Ctrl+Shift+V
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		eo.handleClipboardPaste()
	}

	eo.bufferMutex.RLock()
	hasHandler := eo.keyHandler != nil
	eo.bufferMutex.RUnlock()
	if !hasHandler {
		return
	}

	// Printable input path.
	for _, r := range ebiten.AppendInputChars(nil) {
		if b, ok := runeToInputByte(r); ok {
			eo.emitByte(b)
		}
	}

	specialKeys := []ebiten.Key{
		ebiten.KeyEnter,
		ebiten.KeyNumpadEnter,
		ebiten.KeyTab,
	}
	for _, key := range specialKeys {
		if inpututil.IsKeyJustPressed(key) {
			if seq, ok := translateSpecialKey(key); ok {
				eo.emitSeq(seq)
			}
		}
	}
}

// runeToInputByte keeps the bytes the glyph table can show.
func runeToInputByte(r rune) (byte, bool) {
	if r < 0x20 || r > 0xFF || r == 0x7F {
		return 0, false
	}
	return byte(r), true
}

func translateSpecialKey(key ebiten.Key) ([]byte, bool) {
	switch key {
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return []byte{'\n'}, true
	case ebiten.KeyTab:
		return []byte{' ', ' ', ' ', ' '}, true
	default:
		return nil, false
	}
}

func normalizePasteText(raw []byte) []byte {
	norm := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\r' {
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
			norm = append(norm, '\n')
			continue
		}
		norm = append(norm, raw[i])
	}
	return norm
}

func capPasteText(raw []byte, max int) []byte {
	if len(raw) <= max {
		return raw
	}
	return raw[:max]
}

func (eo *EbitenOutput) initClipboard() bool {
	eo.clipboardOnce.Do(func() {
		eo.clipboardOK = clipboard.Init() == nil
	})
	return eo.clipboardOK
}

// handleClipboardCopy puts the whole log on the clipboard, one message per
// line.
func (eo *EbitenOutput) handleClipboardCopy() {
	if eo.log == nil || !eo.initClipboard() {
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(strings.Join(eo.log.Snapshot(), "\n")))
}

// handleClipboardPaste appends clipboard text to the log, one message per
// line.
func (eo *EbitenOutput) handleClipboardPaste() {
	if eo.log == nil || !eo.initClipboard() {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	data = normalizePasteText(data)
	data = capPasteText(data, 4096)
	sink := NewConsoleSink(eo.log)
	_, _ = sink.Write(data)
	sink.Flush()
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	eo.bufferMutex.Lock()
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}
	eo.drawLogLocked()
	eo.window.WritePixels(eo.frameBuffer)
	showStatusBar := eo.showStatusBar
	eo.bufferMutex.Unlock()
	screen.DrawImage(eo.window, nil)
	if showStatusBar {
		eo.drawRuntimeStatusBar(screen)
	}

	atomic.AddUint64(&eo.frameCount, 1)
	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

// Layout follows the window size so the log reflows when it is resized.
func (eo *EbitenOutput) Layout(outsideWidth, outsideHeight int) (int, int) {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()
	w := max(outsideWidth/eo.scale, 1)
	h := max(outsideHeight/eo.scale, 1)
	if w != eo.width || h != eo.height {
		eo.resizeLocked(w, h)
	}
	return eo.width, eo.height
}

type statusToken struct {
	name    string
	enabled bool
}

func drawStatusLine(screen *ebiten.Image, x, baselineY int, label string, tokens []statusToken) {
	face := basicfont.Face7x13
	labelColor := color.RGBA{190, 190, 190, 255}
	offColor := color.RGBA{120, 120, 120, 255}
	onColor := color.RGBA{0, 220, 90, 255}

	text.Draw(screen, label, face, x, baselineY, labelColor)
	cursorX := x + text.BoundString(face, label).Dx() + 6

	for _, token := range tokens {
		c := offColor
		if token.enabled {
			c = onColor
		}
		text.Draw(screen, token.name, face, cursorX, baselineY, c)
		cursorX += text.BoundString(face, token.name).Dx() + 8
	}
}

func (eo *EbitenOutput) drawRuntimeStatusBar(screen *ebiten.Image) {
	if eo.log == nil {
		return
	}
	s := eo.log.Status()
	eo.bufferMutex.RLock()
	width, height, columns := eo.width, eo.height, eo.columns
	eo.bufferMutex.RUnlock()

	barHeight := 44
	if barHeight >= height {
		return
	}
	y := height - barHeight
	ebitenutil.DrawRect(screen, 0, float64(y), float64(width), float64(barHeight), color.RGBA{0, 0, 0, 180})

	drawStatusLine(screen, 6, y+13, "WRITE", []statusToken{
		{name: fmt.Sprintf("%d normal", s.normalWrites), enabled: s.normalWrites > 0},
		{name: "|", enabled: false},
		{name: fmt.Sprintf("%d fast", s.fastWrites), enabled: s.fastWrites > 0},
		{name: "|", enabled: false},
		{name: "OOPS", enabled: s.oops},
	})
	drawStatusLine(screen, 6, y+26, "DRAW ", []statusToken{
		{name: fmt.Sprintf("%d frames", s.renders), enabled: true},
		{name: "|", enabled: false},
		{name: fmt.Sprintf("%d aborted", s.abortedRenders), enabled: s.abortedRenders > 0},
		{name: "|", enabled: false},
		{name: fmt.Sprintf("%d cols", columns), enabled: columns > 1},
	})
	drawStatusLine(screen, 6, y+39, "STORE", []statusToken{
		{name: fmt.Sprintf("%dx%d", s.storeWidth, s.storeHeight), enabled: s.storeWidth > 0},
		{name: "|", enabled: false},
		{name: fmt.Sprintf("%d resizes", s.resizes), enabled: s.resizes > 1},
		{name: "|", enabled: false},
		{name: fmt.Sprintf("%d failed", s.failedResizes), enabled: s.failedResizes > 0},
	})

	legendColor := color.RGBA{160, 160, 160, 255}
	legend := "F9 Columns  F10 Crash  F11 Fullscreen  F12 Status Bar"
	legendW := text.BoundString(basicfont.Face7x13, legend).Dx()
	legendX := max(width-legendW-6, 6)
	legendOpts := &ebiten.DrawImageOptions{}
	legendOpts.GeoM.Translate(float64(legendX), float64(y+39))
	legendOpts.ColorScale.ScaleWithColor(legendColor)
	text.DrawWithOptions(screen, legend, basicfont.Face7x13, legendOpts)
}
