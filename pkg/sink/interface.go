package sink

import (
	"context"

	"github.com/video-system/go-replay-loop/pkg/frame"
)

// Sink is the interface for frame renderers
type Sink interface {
	// Metadata
	Name() string
	Type() string

	// Lifecycle
	Open(config Config) error
	Close() error

	// Draw renders one frame. The sink must not mutate or close the
	// handle; the caller retains ownership.
	Draw(ctx context.Context, h frame.Handle) error
}

// Config holds sink configuration
type Config struct {
	Path string // Output path, sink-specific
}

// Registry holds registered sink plugins
var Registry = make(map[string]func() Sink)

// Register registers a sink plugin
func Register(name string, factory func() Sink) {
	Registry[name] = factory
}

// Get returns a sink plugin by name
func Get(name string) (Sink, bool) {
	factory, ok := Registry[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}
