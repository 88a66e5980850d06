package loop

// Throttle rate-limits frame admission so a fixed amount of wall-clock
// content fills the buffer regardless of how often the host ticks. It admits
// at most one frame per minimum interval.
//
// The interval is supplied on every call rather than stored, so settings
// changes (sample divisor, source rate) take effect immediately.
type Throttle struct {
	lastAdmitted int64 // unix nanoseconds of the last admitted frame
}

// Admit reports whether a frame arriving at now (unix nanoseconds) should
// enter the buffer, given the minimum interval between admitted frames.
// On admission the throttle records now; on rejection state is untouched.
//
// After Reset the very next call always admits, so a fresh capture window
// starts with a frame instead of a gap.
func (t *Throttle) Admit(now, minInterval int64) bool {
	if t.lastAdmitted != 0 && now-t.lastAdmitted < minInterval {
		return false
	}
	t.lastAdmitted = now
	return true
}

// Reset clears the admission clock so the next Admit call succeeds.
func (t *Throttle) Reset() {
	t.lastAdmitted = 0
}
