// Package shm provides the named shared memory region used to publish
// the handshake message to the target process before it starts.
//
// A Channel has a single write epoch: it is written once by the loader
// before the target is spawned, and it stays mapped until Close so the
// target can look it up by name at any point during the session.
package shm

import (
	"errors"
	"fmt"
)

// HandshakeCapacity is the size of the handshake region in bytes.
const HandshakeCapacity = 256

var (
	// ErrChannelUnavailable is returned when the named region cannot be
	// created, for example because the name is already in use.
	ErrChannelUnavailable = errors.New("failed to create shared memory channel")

	// ErrBufferTooLarge is returned when a write exceeds the capacity
	// of the channel.
	ErrBufferTooLarge = errors.New("buffer exceeds channel capacity")

	// ErrAlreadyWritten is returned by the second call to Write.
	ErrAlreadyWritten = errors.New("channel was already written")

	// ErrClosed is returned when a closed channel is written.
	ErrClosed = errors.New("channel is closed")

	// ErrUnsupported is returned on platforms without named
	// shared memory.
	ErrUnsupported = errors.New("named shared memory is not supported on this platform")
)

// Create creates a new named region of capacity bytes. The region is
// zero-filled.
func Create(name string, capacity int) (*Channel, error) {
	if name == "" {
		return nil, fmt.Errorf("%w - name cannot be empty", ErrChannelUnavailable)
	}

	if capacity <= 0 {
		return nil, fmt.Errorf("%w %q - capacity must be greater than zero (got %d)",
			ErrChannelUnavailable, name, capacity)
	}

	region, release, err := createRegion(name, capacity)
	if err != nil {
		return nil, fmt.Errorf("%w %q - %w", ErrChannelUnavailable, name, err)
	}

	return newChannel(name, region, release), nil
}

func newChannel(name string, region []byte, release func() error) *Channel {
	return &Channel{
		name:    name,
		region:  region,
		release: release,
	}
}

// Channel is a named, fixed-capacity shared memory region.
// It is not safe for concurrent use.
type Channel struct {
	name    string
	region  []byte
	release func() error
	written bool
	closed  bool
}

// Name returns the name the region was created with.
func (o *Channel) Name() string {
	return o.name
}

// Capacity returns the size of the region in bytes.
func (o *Channel) Capacity() int {
	return len(o.region)
}

// Write copies p to the start of the region.
func (o *Channel) Write(p []byte) error {
	if o.closed {
		return ErrClosed
	}

	if len(p) > len(o.region) {
		return fmt.Errorf("%w - %d bytes do not fit in %q (%d bytes)",
			ErrBufferTooLarge, len(p), o.name, len(o.region))
	}

	if o.written {
		return fmt.Errorf("%w - %q", ErrAlreadyWritten, o.name)
	}

	copy(o.region, p)
	o.written = true

	return nil
}

// Close unmaps the region. Subsequent calls do nothing.
func (o *Channel) Close() error {
	if o.closed {
		return nil
	}

	o.closed = true
	o.region = nil

	if o.release == nil {
		return nil
	}

	err := o.release()
	if err != nil {
		return fmt.Errorf("failed to release shared memory channel %q - %w", o.name, err)
	}

	return nil
}
