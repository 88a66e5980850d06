package synth

import (
	"context"
	"testing"

	"github.com/video-system/go-replay-loop/pkg/frame"
	"github.com/video-system/go-replay-loop/pkg/source"
)

func TestSynthRegistered(t *testing.T) {
	s, ok := source.Get("synth")
	if !ok {
		t.Fatal("synth source not registered")
	}
	if s.Type() != "synth" {
		t.Error("registry returned wrong source type")
	}
}

func TestSynthOpenValidation(t *testing.T) {
	var s Synth
	if err := s.Open(source.Config{Width: 0, Height: 480}); err == nil {
		t.Error("expected error for zero width")
	}
	if err := s.Open(source.Config{Width: 640, Height: -1}); err == nil {
		t.Error("expected error for negative height")
	}
	if err := s.Open(source.Config{Width: 640, Height: 480}); err != nil {
		t.Errorf("valid open failed: %v", err)
	}
	if got := s.Info().Framerate; got != 30 {
		t.Errorf("expected framerate default 30, got %v", got)
	}
}

func TestSynthReadFrame(t *testing.T) {
	var s Synth
	if err := s.Open(source.Config{Width: 70, Height: 40, Framerate: 60}); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	h, err := s.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if h.Width() != 70 || h.Height() != 40 {
		t.Errorf("expected 70x40 frame, got %dx%d", h.Width(), h.Height())
	}

	// Row 0 carries the scanline on the first frame; sample row 1 for the
	// bars. First stripe is gray, last is blue.
	img := h.(*frame.Image).RGBA()
	i := img.Stride
	if img.Pix[i] != 192 || img.Pix[i+1] != 192 || img.Pix[i+2] != 192 {
		t.Errorf("unexpected first-bar color: %v", img.Pix[i:i+4])
	}
	i = img.Stride + (70-1)*4
	if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 192 {
		t.Errorf("unexpected last-bar color: %v", img.Pix[i:i+4])
	}

	if err := h.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestSynthFramesDiffer(t *testing.T) {
	var s Synth
	if err := s.Open(source.Config{Width: 16, Height: 16}); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	a, err := s.ReadFrame(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	pixA := append([]byte(nil), a.(*frame.Image).RGBA().Pix...)
	a.Close()

	b, err := s.ReadFrame(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	same := true
	for i, p := range b.(*frame.Image).RGBA().Pix {
		if pixA[i] != p {
			same = false
			break
		}
	}
	if same {
		t.Error("consecutive frames are identical; scanline did not move")
	}
}

func TestSynthReadClosed(t *testing.T) {
	var s Synth
	if _, err := s.ReadFrame(context.Background()); err == nil {
		t.Error("expected error reading from an unopened source")
	}
}
