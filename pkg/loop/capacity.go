package loop

import "math"

// frameOverheadBytes approximates per-frame bookkeeping on top of the raw
// RGBA pixels (headers, slice metadata, handle state) when converting a
// memory budget into a frame count.
const frameOverheadBytes = 256

// minCapacity is the smallest usable buffer: one frame has nothing to loop.
const minCapacity = 2

// PlanCapacity derives the frame-store bound from the configured seconds of
// content, the effective sampling rate, and the memory budget.
//
// The seconds term uses the throttled rate (source fps over the sample
// divisor), so the buffer holds the requested wall-clock span of admitted
// content. When the resolution is known, the budget caps the count at
// max_memory / bytes-per-frame; a MaxMemoryBytes of zero means no budget,
// which only callers constructing a BufferConfig by hand can produce, since
// loading applies a default. The result never drops below 2; a budget too
// small for two frames is clamped rather than failed.
func PlanCapacity(cfg BufferConfig, width, height int, sourceFPS float64) int {
	if sourceFPS <= 0 {
		sourceFPS = 60
	}
	divisor := cfg.SampleDivisor
	if divisor < 1 {
		divisor = 1
	}
	seconds := cfg.Seconds
	if seconds < minBufferSeconds {
		seconds = minBufferSeconds
	} else if seconds > maxBufferSeconds {
		seconds = maxBufferSeconds
	}

	effectiveRate := sourceFPS / float64(divisor)
	capacity := int(math.Round(effectiveRate * float64(seconds)))
	if capacity < minCapacity {
		capacity = minCapacity
	}

	if width > 0 && height > 0 && cfg.MaxMemoryBytes > 0 {
		bytesPerFrame := uint64(width)*uint64(height)*4 + frameOverheadBytes
		budget := int(cfg.MaxMemoryBytes / bytesPerFrame)
		if budget < capacity {
			capacity = budget
		}
		if capacity < minCapacity {
			capacity = minCapacity
		}
	}

	return capacity
}
