package loop

import "testing"

func TestCursorPingPongCycle(t *testing.T) {
	const n = 4
	var c Cursor
	c.Reset(n)

	if c.Index != n-1 || c.Direction != Backward {
		t.Fatalf("reset: expected index %d backward, got %d %s", n-1, c.Index, c.Direction)
	}

	// Period is 2L-2; the index walk is L-1..0..L-1 repeated.
	want := []int{2, 1, 0, 1, 2, 3, 2, 1, 0, 1, 2, 3}
	for i, expected := range want {
		c.step(n, true)
		if c.Index != expected {
			t.Fatalf("step %d: expected index %d, got %d", i, expected, c.Index)
		}
		if c.Index < 0 || c.Index >= n {
			t.Fatalf("step %d: index %d out of range", i, c.Index)
		}
	}
}

func TestCursorWrapCycle(t *testing.T) {
	const n = 4
	c := Cursor{Index: 0, Direction: Forward}

	want := []int{1, 2, 3, 0, 1, 2, 3, 0}
	for i, expected := range want {
		c.step(n, false)
		if c.Index != expected {
			t.Fatalf("step %d: expected index %d, got %d", i, expected, c.Index)
		}
		if c.Direction != Forward {
			t.Fatalf("step %d: wrap mode must never reverse", i)
		}
	}
	if c.LoopCount != 2 {
		t.Errorf("expected 2 completed loops, got %d", c.LoopCount)
	}
}

func TestCursorReversalAtHead(t *testing.T) {
	c := Cursor{Index: 0, Direction: Backward}

	c.step(5, true)
	if c.Direction != Forward || c.Index != 1 {
		t.Errorf("expected forward at index 1 after head reversal, got %s at %d", c.Direction, c.Index)
	}
	if c.LoopCount != 1 {
		t.Errorf("expected loop count 1, got %d", c.LoopCount)
	}
}

func TestCursorAdvanceAccumulatesFractions(t *testing.T) {
	var c Cursor
	c.Reset(5) // index 4, backward

	// Half a frame per call: the first call buffers, the second steps.
	c.Advance(0.5, 1.0, 5, true)
	if c.Index != 4 {
		t.Fatalf("expected no step on fractional accumulation, index moved to %d", c.Index)
	}
	c.Advance(0.5, 1.0, 5, true)
	if c.Index != 3 {
		t.Fatalf("expected one step after accumulation, got index %d", c.Index)
	}
}

func TestCursorAdvanceMultipleSteps(t *testing.T) {
	var c Cursor
	c.Reset(5)

	c.Advance(3.0, 1.0, 5, true)
	if c.Index != 1 {
		t.Errorf("expected index 1 after 3 steps from 4, got %d", c.Index)
	}
}

func TestCursorOverflowGuard(t *testing.T) {
	var c Cursor
	c.Reset(5)

	c.Advance(1e9, 1e9, 5, true)
	if c.accum != 0 {
		t.Errorf("expected accumulator reset, got %v", c.accum)
	}
	if c.Index != 4 {
		t.Errorf("expected index unchanged on overflow, got %d", c.Index)
	}
}

func TestCursorTinyBufferNoOp(t *testing.T) {
	c := Cursor{Index: 3}
	c.Advance(10, 10, 1, true)
	if c.Index != 0 {
		t.Errorf("expected clamp to 0 with single frame, got %d", c.Index)
	}

	c = Cursor{}
	c.Advance(10, 10, 0, true) // empty store: parked
	if c.Index != 0 {
		t.Errorf("expected parked cursor, got %d", c.Index)
	}
}

func TestCursorClampAfterShrink(t *testing.T) {
	c := Cursor{Index: 9, Direction: Forward}
	c.Clamp(4)
	if c.Index != 3 {
		t.Errorf("expected index clamped to 3, got %d", c.Index)
	}
}
