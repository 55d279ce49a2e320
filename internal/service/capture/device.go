package capture

import (
	"errors"
	"image"
	"time"
)

var (
	// ErrOpenFailed is returned by an Opener when the source cannot be opened.
	ErrOpenFailed = errors.New("failed to open stream")
	// ErrReadFailed is returned by a Device when no frame could be read.
	ErrReadFailed = errors.New("failed to read frame")
)

// Frame is one captured raster. It is never modified after it is published,
// so consumers may hold on to it across ticks.
type Frame struct {
	Seq        uint64
	CapturedAt time.Time
	Image      image.Image
}

// Device is an open video connection. It is used by a single goroutine.
type Device interface {
	Read() (image.Image, error)
	Close() error
}

// Opener opens a Device for an endpoint.
type Opener interface {
	Open(endpoint Endpoint) (Device, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(endpoint Endpoint) (Device, error)

// Open calls f(endpoint).
func (f OpenerFunc) Open(endpoint Endpoint) (Device, error) {
	return f(endpoint)
}
