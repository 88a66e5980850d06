// Package screen provides a video source that grabs the desktop through the
// platform screenshot API. Frames are copied into pooled buffers so the
// capture loop does not churn the heap at full resolution.
package screen

import (
	"context"
	"fmt"
	"image"

	"github.com/vova616/screenshot"

	"github.com/video-system/go-replay-loop/pkg/frame"
	"github.com/video-system/go-replay-loop/pkg/source"
)

func init() {
	source.Register("screen", func() source.Source { return &Screen{} })
}

// Screen captures the active monitor once per ReadFrame call.
type Screen struct {
	cfg  source.Config
	rect image.Rectangle
	open bool
}

// Name returns the source name.
func (s *Screen) Name() string { return "Screen capture" }

// Type returns the registry type string.
func (s *Screen) Type() string { return "screen" }

// Open probes the screen geometry.
func (s *Screen) Open(cfg source.Config) error {
	rect, err := screenshot.ScreenRect()
	if err != nil {
		return fmt.Errorf("probe screen: %w", err)
	}
	if cfg.Framerate <= 0 {
		cfg.Framerate = 30
	}
	s.cfg = cfg
	s.rect = rect
	s.open = true
	return nil
}

// Close releases the source.
func (s *Screen) Close() error {
	s.open = false
	return nil
}

// Info describes the captured stream.
func (s *Screen) Info() source.Info {
	return source.Info{
		Width:     s.rect.Dx(),
		Height:    s.rect.Dy(),
		Framerate: float64(s.cfg.Framerate),
	}
}

// ReadFrame grabs the screen and returns an owned handle. The screenshot
// library allocates its own image per grab; pixels are copied into a pooled
// buffer so the handle's backing slice is reusable after release.
func (s *Screen) ReadFrame(ctx context.Context) (frame.Handle, error) {
	if !s.open {
		return nil, fmt.Errorf("screen: source not open")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grabbed, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}

	img := frame.AcquireRGBA(grabbed.Rect)
	copy(img.Pix, grabbed.Pix)
	return frame.NewImage(img, frame.RecycleRGBA), nil
}
