//go:build headless

package main

import (
	"sync"
	"sync/atomic"
	"time"
)

func init() {
	compiledFeatures = append(compiledFeatures, "video:headless")
}

// HeadlessVideoOutput draws the log into a private framebuffer on every
// UpdateFrame. It stands in for the Ebiten window in tests and CI.
type HeadlessVideoOutput struct {
	mu          sync.Mutex
	started     bool
	config      DisplayConfig
	frameBuffer []byte
	frameCount  uint64
	refreshRate int
	log         *FrameLog
	panicFB     *PanicSurface
}

func NewEbitenOutput(log *FrameLog) (VideoOutput, error) {
	h := &HeadlessVideoOutput{refreshRate: 60, log: log}
	if err := h.SetDisplayConfig(DisplayConfig{Width: 640, Height: 480, PixelFormat: FormatXRGB8888, Columns: 1}); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *HeadlessVideoOutput) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return nil
	}
	h.started = true
	h.panicFB = RegisterPanicSurface()
	h.panicFB.Update(h.frameBuffer, h.config.Width, h.config.Height, h.stride(), 0, h.config.PixelFormat)
	h.panicFB.SetColumns(h.config.Columns)
	return nil
}

func (h *HeadlessVideoOutput) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = false
	if h.panicFB != nil {
		h.panicFB.Unregister()
		h.panicFB = nil
	}
	return nil
}

func (h *HeadlessVideoOutput) Close() error {
	return h.Stop()
}

func (h *HeadlessVideoOutput) IsStarted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

func (h *HeadlessVideoOutput) stride() int {
	return h.config.Width * formatCpp(h.config.PixelFormat)
}

func (h *HeadlessVideoOutput) SetDisplayConfig(config DisplayConfig) error {
	if config.Width <= 0 || config.Height <= 0 {
		return &VideoError{Operation: "configure", Details: "width and height must be positive"}
	}
	if config.PixelFormat == 0 {
		config.PixelFormat = FormatXRGB8888
	}
	if !isKnownFormat(config.PixelFormat) {
		return &VideoError{Operation: "configure", Details: "unsupported pixel format " + config.PixelFormat.String()}
	}
	config.Columns = max(config.Columns, 1)
	config.Scale = ClampScale(config.Scale)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.config = config
	h.frameBuffer = make([]byte, h.stride()*config.Height)
	if h.log != nil {
		h.log.EnsureSize(config.Width, config.Height)
	}
	if h.panicFB != nil {
		h.panicFB.Update(h.frameBuffer, config.Width, config.Height, h.stride(), 0, config.PixelFormat)
		h.panicFB.SetColumns(config.Columns)
	}
	return nil
}

func (h *HeadlessVideoOutput) GetDisplayConfig() DisplayConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.config
}

func (h *HeadlessVideoOutput) UpdateFrame() error {
	h.mu.Lock()
	if h.log != nil {
		h.log.Draw(h.frameBuffer, h.config.Width, h.config.Height, h.stride(), 0, h.config.PixelFormat, h.config.Columns)
	}
	h.mu.Unlock()
	atomic.AddUint64(&h.frameCount, 1)
	return nil
}

func (h *HeadlessVideoOutput) WaitForVSync() error {
	return nil
}

func (h *HeadlessVideoOutput) GetFrameCount() uint64 {
	return atomic.LoadUint64(&h.frameCount)
}

func (h *HeadlessVideoOutput) GetRefreshRate() int {
	if h.refreshRate == 0 {
		return 60
	}
	return h.refreshRate
}

func (h *HeadlessVideoOutput) GetSnapshot() (FrameSnapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := FrameSnapshot{
		Buffer:    make([]byte, len(h.frameBuffer)),
		Width:     h.config.Width,
		Height:    h.config.Height,
		Stride:    h.stride(),
		Format:    h.config.PixelFormat,
		Timestamp: time.Now(),
	}
	copy(snap.Buffer, h.frameBuffer)
	return snap, nil
}
