package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"sync"

	"chartlens/internal/interfaces"
	"chartlens/internal/types"
)

var errStreamStopped = errors.New("stream stopped")

var (
	frameBackground = color.RGBA{0x1e, 0x1e, 0x1e, 0xff}
	frameGrid       = color.RGBA{0x33, 0x33, 0x33, 0xff}
	frameUp         = color.RGBA{0x00, 0xe6, 0x76, 0xff}
	frameDown       = color.RGBA{0xff, 0x4b, 0x4b, 0xff}
)

// SyntheticDevice is a headless camera that films a fake candlestick chart
type SyntheticDevice struct {
	rnd interfaces.RandomSource
	mu  sync.Mutex
}

// NewSyntheticDevice creates a device whose frames are drawn from rnd.
func NewSyntheticDevice(rnd interfaces.RandomSource) *SyntheticDevice {
	return &SyntheticDevice{rnd: rnd}
}

func (d *SyntheticDevice) Name() string { return "synthetic" }

func (d *SyntheticDevice) RequestStream(_ context.Context, c types.StreamConstraints) (interfaces.Stream, error) {
	c = c.WithDefaults()
	if int64(c.IdealWidth)*int64(c.IdealHeight) > DefaultMaxPixels {
		return nil, fmt.Errorf("%w: %dx%d frame is too large", ErrInvalidConstraints, c.IdealWidth, c.IdealHeight)
	}
	return &syntheticStream{device: d, width: c.IdealWidth, height: c.IdealHeight}, nil
}

type syntheticStream struct {
	device        *SyntheticDevice
	width, height int

	mu      sync.Mutex
	stopped bool
}

func (s *syntheticStream) Resolution() (int, int) { return s.width, s.height }

func (s *syntheticStream) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

func (s *syntheticStream) GrabFrame(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return nil, errStreamStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := s.device.drawFrame(s.width, s.height)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// drawFrame paints a grid and a random-walk of candles.
func (d *SyntheticDevice) drawFrame(w, h int) *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{frameBackground}, image.Point{}, draw.Src)

	step := max(h/8, 1)
	for y := step; y < h; y += step {
		fillRect(img, 0, y, w, y+1, frameGrid)
	}

	const candles = 40
	slot := w / candles
	if slot < 3 {
		return img
	}
	body := slot * 2 / 3
	mid := float64(h) / 2
	amp := float64(h) / 16
	level := mid
	for i := 0; i < candles; i++ {
		openY := level
		closeY := openY + (d.rnd.Float64()-0.5)*amp
		hi := minf(openY, closeY) - d.rnd.Float64()*amp/2
		lo := maxf(openY, closeY) + d.rnd.Float64()*amp/2
		col := frameUp
		if closeY > openY { // y grows downward, so a higher y is a lower price
			col = frameDown
		}
		x0 := i*slot + (slot-body)/2
		wick := x0 + body/2
		fillRect(img, wick, clampY(hi, h), wick+1, clampY(lo, h), col)
		top, bottom := clampY(minf(openY, closeY), h), clampY(maxf(openY, closeY), h)
		if bottom == top {
			bottom++
		}
		fillRect(img, x0, top, x0+body, bottom, col)
		level = closeY
	}
	return img
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{c}, image.Point{}, draw.Src)
}

func clampY(y float64, h int) int {
	if y < 0 {
		return 0
	}
	if y > float64(h-1) {
		return h - 1
	}
	return int(y)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
