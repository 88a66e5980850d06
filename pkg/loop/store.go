package loop

import "github.com/video-system/go-replay-loop/pkg/frame"

// Store is a bounded, insertion-ordered sequence of frame handles with FIFO
// eviction. It is tagged with the resolution of the frames it holds; the
// Engine clears it whenever an incoming frame's dimensions differ.
//
// Store is not safe for concurrent use. The Engine serializes every access
// under its single lock, and eviction returns handles to the caller so the
// actual release can happen after that lock is dropped.
type Store struct {
	frames   []frame.Handle
	capacity int
	width    int
	height   int
}

// NewStore creates an empty store. Capacity is floored at 2; a buffer with
// fewer slots has nothing to oscillate between.
func NewStore(capacity int) *Store {
	if capacity < 2 {
		capacity = 2
	}
	return &Store{capacity: capacity}
}

// Push appends h at the tail. If the store now exceeds capacity, the oldest
// frame is removed and returned for the caller to close; otherwise Push
// returns nil.
func (s *Store) Push(h frame.Handle) frame.Handle {
	s.frames = append(s.frames, h)
	if len(s.frames) <= s.capacity {
		return nil
	}
	evicted := s.frames[0]
	s.frames[0] = nil
	s.frames = s.frames[1:]
	return evicted
}

// Get returns the frame at index, or nil if out of range.
func (s *Store) Get(index int) frame.Handle {
	if index < 0 || index >= len(s.frames) {
		return nil
	}
	return s.frames[index]
}

// Len returns the number of buffered frames.
func (s *Store) Len() int { return len(s.frames) }

// IsEmpty reports whether the store holds no frames.
func (s *Store) IsEmpty() bool { return len(s.frames) == 0 }

// Capacity returns the maximum number of frames the store may hold.
func (s *Store) Capacity() int { return s.capacity }

// Clear empties the store and returns every held handle, each exactly once,
// for the caller to close.
func (s *Store) Clear() []frame.Handle {
	if len(s.frames) == 0 {
		return nil
	}
	evicted := s.frames
	s.frames = nil
	return evicted
}

// SetCapacity changes the bound, evicting from the head until the store
// fits. Evicted handles are returned for the caller to close. Capacities
// below 2 are clamped to 2.
func (s *Store) SetCapacity(capacity int) []frame.Handle {
	if capacity < 2 {
		capacity = 2
	}
	s.capacity = capacity
	if len(s.frames) <= capacity {
		return nil
	}
	n := len(s.frames) - capacity
	evicted := make([]frame.Handle, n)
	copy(evicted, s.frames[:n])
	for i := 0; i < n; i++ {
		s.frames[i] = nil
	}
	s.frames = s.frames[n:]
	return evicted
}

// Resolution returns the (width, height) tag of the buffered content.
// Both are zero until the first frame is tagged.
func (s *Store) Resolution() (int, int) { return s.width, s.height }

// SetResolution updates the resolution tag. Tagging does not clear the
// store; invalidation on a genuine change is the Engine's call.
func (s *Store) SetResolution(width, height int) {
	s.width = width
	s.height = height
}
