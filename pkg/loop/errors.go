package loop

import "errors"

// ErrEmptyBuffer is returned by Toggle when playback is requested before any
// frame has been captured. The engine stays in capture mode; callers surface
// this as a warning, not a failure.
var ErrEmptyBuffer = errors.New("no frames buffered")
