package loop

import (
	"log"
	"sync"
	"time"

	"github.com/video-system/go-replay-loop/pkg/frame"
)

// Mode is the engine's operating state: filling the buffer from live video,
// or replaying the buffered history.
type Mode int

const (
	Capturing Mode = iota
	Playing
)

func (m Mode) String() string {
	if m == Playing {
		return "playing"
	}
	return "capturing"
}

// Engine owns the frame store, capture throttle and playback cursor as one
// unit and sequences their interaction. Every public method is safe for
// concurrent use: the producer path (OnFrameAvailable), the render path
// (OnTick, CurrentFrame) and control calls (Toggle, SetConfig, Clear) all
// serialize on one lock. A config trim must atomically shrink the store and
// clamp the cursor, so the lock covers all three components.
//
// Handle releases never happen while the lock is held; evicted handles are
// collected locally and closed after unlock so an expensive release cannot
// stall the other path.
type Engine struct {
	mu        sync.Mutex
	cfg       BufferConfig
	sourceFPS float64
	mode      Mode
	store     *Store
	cursor    Cursor
	throttle  Throttle
	admitted  uint64
}

// NewEngine creates an engine in capture mode. cfg is clamped; capacity is
// planned without a resolution until the first frame arrives.
func NewEngine(cfg BufferConfig, sourceFPS float64) *Engine {
	cfg.Clamp()
	if sourceFPS <= 0 {
		sourceFPS = 60
	}
	e := &Engine{
		cfg:       cfg,
		sourceFPS: sourceFPS,
		store:     NewStore(PlanCapacity(cfg, 0, 0, sourceFPS)),
	}
	log.Printf("[replayloop] engine ready: %d frame capacity, %ds window at %.1f fps / %d",
		e.store.Capacity(), cfg.Seconds, sourceFPS, cfg.SampleDivisor)
	return e
}

// SetConfig replaces the buffer settings. Fields are clamped, capacity is
// recomputed against the tagged resolution, and the store is trimmed with
// the cursor clamped if it shrank. Calling twice with the same settings is
// idempotent.
func (e *Engine) SetConfig(cfg BufferConfig) {
	cfg.Clamp()

	e.mu.Lock()
	e.cfg = cfg
	w, h := e.store.Resolution()
	capacity := PlanCapacity(cfg, w, h, e.sourceFPS)
	evicted := e.store.SetCapacity(capacity)
	e.cursor.Clamp(e.store.Len())
	e.mu.Unlock()

	e.closeAll(evicted)
	log.Printf("[replayloop] settings updated: %d frame capacity, %ds window, %.1fx, ping-pong=%v",
		capacity, cfg.Seconds, cfg.PlaybackSpeed, cfg.PingPong)
}

// SetSourceFPS updates the upstream frame rate used for throttling and
// capacity planning, and re-plans capacity.
func (e *Engine) SetSourceFPS(fps float64) {
	if fps <= 0 {
		return
	}
	e.mu.Lock()
	e.sourceFPS = fps
	w, h := e.store.Resolution()
	evicted := e.store.SetCapacity(PlanCapacity(e.cfg, w, h, fps))
	e.cursor.Clamp(e.store.Len())
	e.mu.Unlock()

	e.closeAll(evicted)
}

// OnFrameAvailable offers one candidate frame to the buffer. The engine
// takes ownership of h unconditionally: it is either stored, or closed
// before returning (throttled out, or offered while playing).
//
// A resolution change invalidates the buffered history: the store is
// cleared before the new frame is considered, and an engine caught playing
// falls back to capture mode rather than looping over nothing.
func (e *Engine) OnFrameAvailable(h frame.Handle, now time.Time) {
	width, height := h.Width(), h.Height()

	e.mu.Lock()
	var evicted []frame.Handle

	tagW, tagH := e.store.Resolution()
	if width != tagW || height != tagH {
		if tagW != 0 || tagH != 0 {
			log.Printf("[replayloop] resolution changed %dx%d -> %dx%d, dropping %d buffered frames",
				tagW, tagH, width, height, e.store.Len())
			evicted = e.store.Clear()
			e.cursor.Clamp(0)
			if e.mode == Playing {
				e.mode = Capturing
			}
			// The admission clock belongs to the cleared history; the
			// frame that triggered the clear must be admitted.
			e.throttle.Reset()
		}
		e.store.SetResolution(width, height)
		evicted = append(evicted, e.store.SetCapacity(PlanCapacity(e.cfg, width, height, e.sourceFPS))...)
	}

	stored := false
	if e.mode == Capturing {
		minInterval := int64(float64(time.Second) * float64(e.cfg.SampleDivisor) / e.sourceFPS)
		if e.throttle.Admit(now.UnixNano(), minInterval) {
			if old := e.store.Push(h); old != nil {
				evicted = append(evicted, old)
			}
			stored = true
			e.admitted++
			if e.admitted%30 == 0 {
				log.Printf("[replayloop] buffer: %d/%d frames", e.store.Len(), e.store.Capacity())
			}
		}
	}
	e.mu.Unlock()

	e.closeAll(evicted)
	if !stored {
		e.closeOne(h)
	}
}

// OnTick advances the playback cursor by elapsed wall-clock time. A no-op
// while capturing.
//
// The step rate ties perceived playback duration to the content actually
// buffered: a part-full buffer still replays over buffer_seconds, scaled by
// playback speed.
func (e *Engine) OnTick(elapsed time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != Playing {
		return
	}
	n := e.store.Len()
	stepRate := float64(n) / float64(e.cfg.Seconds) * e.cfg.PlaybackSpeed
	e.cursor.Advance(elapsed.Seconds(), stepRate, n, e.cfg.PingPong)
}

// CurrentFrame returns a retained handle to the frame under the playback
// cursor, or nil while capturing or when the buffer is empty. The caller
// owns the returned handle and must Close it after drawing.
func (e *Engine) CurrentFrame() frame.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode != Playing {
		return nil
	}
	h := e.store.Get(e.cursor.Index)
	if h == nil {
		return nil
	}
	return h.Retain()
}

// Toggle switches between capture and playback. Entering playback with an
// empty buffer returns ErrEmptyBuffer and stays in capture mode. Leaving
// playback resets the throttle so capture resumes with the next frame.
func (e *Engine) Toggle() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.mode == Capturing {
		if e.store.IsEmpty() {
			return ErrEmptyBuffer
		}
		e.cursor.Reset(e.store.Len())
		e.mode = Playing
		log.Printf("[replayloop] playback on: starting at frame %d of %d", e.cursor.Index, e.store.Len())
		return nil
	}

	e.mode = Capturing
	e.throttle.Reset()
	log.Printf("[replayloop] playback off, capturing")
	return nil
}

// Clear stops playback and wipes the buffered history. Capture resumes
// immediately with a fresh sample window.
func (e *Engine) Clear() {
	e.mu.Lock()
	evicted := e.store.Clear()
	e.cursor.Clamp(0)
	e.mode = Capturing
	e.throttle.Reset()
	e.mu.Unlock()

	e.closeAll(evicted)
	log.Printf("[replayloop] buffer cleared (%d frames released)", len(evicted))
}

// Mode returns the current operating mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Config returns a copy of the current buffer settings.
func (e *Engine) Config() BufferConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Status represents an engine status snapshot.
type Status struct {
	Mode          string  `json:"mode"`
	FrameCount    int     `json:"frame_count"`
	Capacity      int     `json:"capacity"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	BufferSeconds int     `json:"buffer_seconds"`
	PlaybackSpeed float64 `json:"playback_speed"`
	PingPong      bool    `json:"ping_pong"`
	PlayIndex     int     `json:"play_index"`
	Direction     string  `json:"direction"`
	LoopCount     uint64  `json:"loop_count"`
	SourceFPS     float64 `json:"source_fps"`
}

// Status returns a consistent snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	w, h := e.store.Resolution()
	return Status{
		Mode:          e.mode.String(),
		FrameCount:    e.store.Len(),
		Capacity:      e.store.Capacity(),
		Width:         w,
		Height:        h,
		BufferSeconds: e.cfg.Seconds,
		PlaybackSpeed: e.cfg.PlaybackSpeed,
		PingPong:      e.cfg.PingPong,
		PlayIndex:     e.cursor.Index,
		Direction:     e.cursor.Direction.String(),
		LoopCount:     e.cursor.LoopCount,
		SourceFPS:     e.sourceFPS,
	}
}

// closeAll releases handles collected under the lock. Release failures are
// logged and not retried; the frame is leaked from the engine's view.
func (e *Engine) closeAll(handles []frame.Handle) {
	for _, h := range handles {
		e.closeOne(h)
	}
}

func (e *Engine) closeOne(h frame.Handle) {
	if h == nil {
		return
	}
	if err := h.Close(); err != nil {
		log.Printf("[replayloop] Warning: failed to release frame: %v", err)
	}
}
