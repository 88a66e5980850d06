// Package synth provides a synthetic video source producing SMPTE-style
// color bars with a moving scanline, so capture and playback behaviour can
// be exercised without a camera or display.
package synth

import (
	"context"
	"fmt"
	"image"

	"github.com/video-system/go-replay-loop/pkg/frame"
	"github.com/video-system/go-replay-loop/pkg/source"
)

func init() {
	source.Register("synth", func() source.Source { return &Synth{} })
}

// barColors are the seven SMPTE color bar stripes.
var barColors = [7][3]uint8{
	{192, 192, 192}, // Gray
	{192, 192, 0},   // Yellow
	{0, 192, 192},   // Cyan
	{0, 192, 0},     // Green
	{192, 0, 192},   // Magenta
	{192, 0, 0},     // Red
	{0, 0, 192},     // Blue
}

// Synth generates color-bar frames at a fixed resolution and rate.
type Synth struct {
	cfg  source.Config
	seq  uint64
	open bool
}

// Name returns the source name.
func (s *Synth) Name() string { return "Synthetic test pattern" }

// Type returns the registry type string.
func (s *Synth) Type() string { return "synth" }

// Open prepares the generator.
func (s *Synth) Open(cfg source.Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("synth: invalid resolution %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Framerate <= 0 {
		cfg.Framerate = 30
	}
	s.cfg = cfg
	s.open = true
	return nil
}

// Close stops the generator.
func (s *Synth) Close() error {
	s.open = false
	return nil
}

// Info describes the generated stream.
func (s *Synth) Info() source.Info {
	return source.Info{
		Width:     s.cfg.Width,
		Height:    s.cfg.Height,
		Framerate: float64(s.cfg.Framerate),
	}
}

// ReadFrame produces the next pattern frame. The scanline position follows
// the sequence number, so consecutive frames differ and playback direction
// is visible in the output.
func (s *Synth) ReadFrame(ctx context.Context) (frame.Handle, error) {
	if !s.open {
		return nil, fmt.Errorf("synth: source not open")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := s.cfg.Width, s.cfg.Height
	img := frame.AcquireRGBA(image.Rect(0, 0, w, h))
	fillColorBars(img, w, h)

	// Moving scanline marks the frame sequence.
	line := int(s.seq) % h
	for x := 0; x < w; x++ {
		i := line*img.Stride + x*4
		img.Pix[i] = 255
		img.Pix[i+1] = 255
		img.Pix[i+2] = 255
		img.Pix[i+3] = 255
	}
	s.seq++

	return frame.NewImage(img, frame.RecycleRGBA), nil
}

// fillColorBars paints seven vertical SMPTE stripes.
func fillColorBars(img *image.RGBA, w, h int) {
	barWidth := w / 7
	if barWidth == 0 {
		barWidth = 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			barIdx := x / barWidth
			if barIdx >= 7 {
				barIdx = 6
			}
			i := y*img.Stride + x*4
			img.Pix[i] = barColors[barIdx][0]
			img.Pix[i+1] = barColors[barIdx][1]
			img.Pix[i+2] = barColors[barIdx][2]
			img.Pix[i+3] = 255
		}
	}
}
