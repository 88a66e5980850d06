// Package snapshot provides a sink that writes playback frames to disk as
// PNG files, useful for eyeballing loop output without a display surface.
package snapshot

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/video-system/go-replay-loop/pkg/frame"
	"github.com/video-system/go-replay-loop/pkg/sink"
)

func init() {
	sink.Register("snapshot", func() sink.Sink { return &Snapshot{} })
}

// writeInterval caps disk output; frames arriving faster are dropped, not
// queued.
const writeInterval = 500 * time.Millisecond

// Snapshot writes drawn frames as sequentially numbered PNGs.
type Snapshot struct {
	dir       string
	seq       uint64
	lastWrite time.Time
}

// Name returns the sink name.
func (s *Snapshot) Name() string { return "PNG snapshots" }

// Type returns the registry type string.
func (s *Snapshot) Type() string { return "snapshot" }

// Open creates the output directory.
func (s *Snapshot) Open(cfg sink.Config) error {
	if cfg.Path == "" {
		cfg.Path = "snapshots"
	}
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return fmt.Errorf("create snapshot path: %w", err)
	}
	s.dir = cfg.Path
	return nil
}

// Close releases the sink.
func (s *Snapshot) Close() error { return nil }

// Draw writes h as a PNG, at most once per writeInterval. Only image-backed
// handles can be encoded; anything else is an error.
func (s *Snapshot) Draw(ctx context.Context, h frame.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now()
	if now.Sub(s.lastWrite) < writeInterval {
		return nil
	}

	img, ok := h.(*frame.Image)
	if !ok {
		return fmt.Errorf("snapshot: unsupported handle type %T", h)
	}

	name := filepath.Join(s.dir, fmt.Sprintf("frame_%06d.png", s.seq))
	file, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img.RGBA()); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.seq++
	s.lastWrite = now
	return nil
}
