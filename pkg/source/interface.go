package source

import (
	"context"

	"github.com/video-system/go-replay-loop/pkg/frame"
)

// Source is the interface for video frame producers
type Source interface {
	// Metadata
	Name() string
	Type() string

	// Lifecycle
	Open(config Config) error
	Close() error

	// Capture. ReadFrame returns a handle the caller owns and must close;
	// the source keeps no reference to it after returning.
	ReadFrame(ctx context.Context) (frame.Handle, error)

	// Info describes the opened stream
	Info() Info
}

// Config holds source configuration
type Config struct {
	Device    string
	Width     int
	Height    int
	Framerate int
}

// Info describes the video stream a source produces
type Info struct {
	Width     int
	Height    int
	Framerate float64
}

// Registry holds registered source plugins
var Registry = make(map[string]func() Source)

// Register registers a source plugin
func Register(name string, factory func() Source) {
	Registry[name] = factory
}

// Get returns a source plugin by name
func Get(name string) (Source, bool) {
	factory, ok := Registry[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}
