package loop

import "math"

// Direction is the playback travel direction through the store.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// accumCeiling bounds the fractional-step accumulator. Anything beyond it
// means elapsed time or the step rate diverged (host stall, clock jump);
// the accumulator resets instead of producing a huge burst of steps.
const accumCeiling = 1e6

// Cursor maps elapsed wall-clock time to a position and direction within
// the frame store. Created fresh on every transition into playback; only
// Advance mutates it afterwards.
type Cursor struct {
	Index     int
	Direction Direction
	LoopCount uint64

	accum float64
}

// Reset positions the cursor for a new playback run over n frames: at the
// live edge (n-1) moving backward, so playback hands off from live video
// without a visual jump.
func (c *Cursor) Reset(n int) {
	c.Index = n - 1
	c.Direction = Backward
	c.LoopCount = 0
	c.accum = 0
}

// Clamp pulls the index back into [0, n-1] after the store shrank under
// the cursor.
func (c *Cursor) Clamp(n int) {
	if n <= 0 {
		c.Index = 0
		return
	}
	if c.Index >= n {
		c.Index = n - 1
	}
}

// Advance moves the cursor through n frames given elapsed seconds and a
// target step rate in frames per second. Fractional steps accumulate across
// calls so slow rates still progress; whole steps are applied one at a
// time under the ping-pong or wrap rule.
//
// With fewer than two frames there is nothing to oscillate between and the
// call is a no-op beyond clamping.
func (c *Cursor) Advance(elapsed, stepRate float64, n int, pingPong bool) {
	c.Clamp(n)
	if n < 2 {
		return
	}

	c.accum += elapsed * stepRate
	if math.IsNaN(c.accum) || c.accum > accumCeiling {
		c.accum = 0
		return
	}
	steps := int(c.accum)
	c.accum -= float64(steps)

	for i := 0; i < steps; i++ {
		c.step(n, pingPong)
	}
}

// step applies a single index move.
func (c *Cursor) step(n int, pingPong bool) {
	if c.Direction == Forward {
		if c.Index+1 >= n {
			if pingPong {
				c.Direction = Backward
				if c.Index > 0 {
					c.Index--
				}
			} else {
				c.Index = 0
			}
			c.LoopCount++
		} else {
			c.Index++
		}
		return
	}

	if c.Index == 0 {
		if pingPong {
			c.Direction = Forward
			if n > 1 {
				c.Index++
			}
		} else {
			c.Index = n - 1
		}
		c.LoopCount++
	} else {
		c.Index--
	}
}
