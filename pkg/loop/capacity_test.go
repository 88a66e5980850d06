package loop

import "testing"

func TestPlanCapacityFromRate(t *testing.T) {
	// 60 fps sampled every 2nd frame over a 10s window: 300 frames.
	cfg := BufferConfig{Seconds: 10, SampleDivisor: 2}
	if got := PlanCapacity(cfg, 0, 0, 60); got != 300 {
		t.Errorf("expected capacity 300, got %d", got)
	}
}

func TestPlanCapacityMemoryBudget(t *testing.T) {
	cfg := BufferConfig{
		Seconds:        60,
		SampleDivisor:  1,
		MaxMemoryBytes: 512 << 20, // 512MB
	}
	w, h := 1920, 1080
	got := PlanCapacity(cfg, w, h, 60)

	bytesPerFrame := uint64(w)*uint64(h)*4 + frameOverheadBytes
	if uint64(got)*bytesPerFrame > cfg.MaxMemoryBytes {
		t.Errorf("capacity %d exceeds memory budget", got)
	}
	if got < minCapacity {
		t.Errorf("capacity %d below floor", got)
	}
	// The rate alone would ask for 3600 frames; the budget must bind.
	if got >= 3600 {
		t.Errorf("expected budget to cap capacity, got %d", got)
	}
}

func TestPlanCapacityTinyBudgetClamps(t *testing.T) {
	cfg := BufferConfig{
		Seconds:        30,
		SampleDivisor:  1,
		MaxMemoryBytes: 1024, // not even one frame
	}
	if got := PlanCapacity(cfg, 1920, 1080, 60); got != minCapacity {
		t.Errorf("expected clamp to %d, got %d", minCapacity, got)
	}
}

func TestPlanCapacityUnknownResolutionIgnoresBudget(t *testing.T) {
	cfg := BufferConfig{
		Seconds:        10,
		SampleDivisor:  1,
		MaxMemoryBytes: 1024,
	}
	if got := PlanCapacity(cfg, 0, 0, 30); got != 300 {
		t.Errorf("expected rate-derived capacity 300, got %d", got)
	}
}

func TestPlanCapacityClampsInputs(t *testing.T) {
	// Out-of-range seconds and divisor are pulled into range, and a zero
	// fps falls back to the 60 fps default.
	cfg := BufferConfig{Seconds: 5, SampleDivisor: 0}
	if got := PlanCapacity(cfg, 0, 0, 0); got != 600 {
		t.Errorf("expected 600 (10s at 60fps), got %d", got)
	}
}
