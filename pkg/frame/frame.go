package frame

import (
	"fmt"
	"image"
	"sync"
)

// Handle is an opaque reference to one captured frame. The buffering core
// never inspects the pixels behind a handle; it only stores it, hands it to
// a renderer, and closes it when the frame leaves the buffer.
//
// Ownership: whoever holds a handle must Close it exactly once. A handle
// that must outlive its current owner is duplicated with Retain, which
// returns an independent reference to the same pixels.
type Handle interface {
	Width() int
	Height() int

	// Retain returns a new reference sharing the underlying pixels.
	// The returned handle must be closed independently.
	Retain() Handle

	// Close releases this reference. The underlying resource is freed
	// when the last reference is closed.
	Close() error
}

// Image is an RGBA-backed Handle. References are counted; the release
// callback runs once, when the final reference is closed.
type Image struct {
	mu      sync.Mutex
	refs    int
	img     *image.RGBA
	release func(*image.RGBA)
}

// NewImage wraps img in a Handle with a single reference. release may be
// nil; when set it is invoked exactly once after the last Close (typically
// to recycle the backing buffer, see RecycleRGBA).
func NewImage(img *image.RGBA, release func(*image.RGBA)) *Image {
	return &Image{refs: 1, img: img, release: release}
}

// Width returns the frame width in pixels.
func (f *Image) Width() int { return f.img.Rect.Dx() }

// Height returns the frame height in pixels.
func (f *Image) Height() int { return f.img.Rect.Dy() }

// RGBA returns the backing image. Callers must not mutate it; the pixels
// are shared by every retained reference.
func (f *Image) RGBA() *image.RGBA { return f.img }

// Retain adds a reference (implements Handle).
func (f *Image) Retain() Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refs <= 0 {
		panic("frame: Retain after final Close")
	}
	f.refs++
	return f
}

// Close drops a reference, releasing the backing image when the count
// reaches zero. Closing more times than retained is an error.
func (f *Image) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refs <= 0 {
		return fmt.Errorf("frame: double close")
	}
	f.refs--
	if f.refs == 0 && f.release != nil {
		f.release(f.img)
	}
	return nil
}

// Pool of reusable RGBA backing slices. Sources that produce one frame per
// tick would otherwise churn the heap with large allocations; recycled
// frames keep the steady state near zero allocations per capture.
var rgbaPool sync.Pool // stores *image.RGBA

// AcquireRGBA returns an RGBA image sized to rect, reusing a pooled backing
// slice when one large enough is available. Pix length is exactly
// width*height*4 and Stride is width*4.
func AcquireRGBA(rect image.Rectangle) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return &image.RGBA{Rect: rect}
	}
	needed := w * h * 4
	var img *image.RGBA
	if v := rgbaPool.Get(); v != nil {
		img = v.(*image.RGBA)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.RGBA{Pix: make([]byte, needed), Stride: w * 4, Rect: rect}
	}
	img.Pix = img.Pix[:needed]
	img.Stride = w * 4
	img.Rect = rect
	return img
}

// RecycleRGBA returns img to the pool. The caller must not touch img after
// this call.
func RecycleRGBA(img *image.RGBA) {
	if img == nil || img.Pix == nil {
		return
	}
	rgbaPool.Put(img)
}
