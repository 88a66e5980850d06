package loop

import (
	"testing"
	"time"
)

func TestThrottleAdmitsByInterval(t *testing.T) {
	var th Throttle
	interval := int64(33 * time.Millisecond)
	base := int64(time.Second)

	if !th.Admit(base, interval) {
		t.Fatal("first frame must be admitted")
	}
	if th.Admit(base+int64(10*time.Millisecond), interval) {
		t.Error("frame inside the interval must be rejected")
	}
	if th.Admit(base+int64(20*time.Millisecond), interval) {
		t.Error("rejection must not move the admission clock")
	}
	if !th.Admit(base+int64(40*time.Millisecond), interval) {
		t.Error("frame past the interval must be admitted")
	}
}

func TestThrottleResetAdmitsImmediately(t *testing.T) {
	var th Throttle
	interval := int64(time.Second)
	base := int64(time.Second)

	th.Admit(base, interval)
	if th.Admit(base+1, interval) {
		t.Fatal("expected rejection right after an admission")
	}

	th.Reset()
	if !th.Admit(base+2, interval) {
		t.Error("expected immediate admission after reset")
	}
}
