package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is returned when a process cannot be opened,
	// for example because it exited or the caller lacks permission.
	ErrAccessDenied = errors.New("failed to open process")

	// ErrReadFault is returned when a read is refused or partial.
	ErrReadFault = errors.New("failed to read process memory")

	// ErrWriteFault is returned when a write is refused or partial.
	ErrWriteFault = errors.New("failed to write process memory")

	// ErrHandleClosed is returned when a closed ProcessHandle is used.
	ErrHandleClosed = errors.New("process handle is closed")

	// ErrUnsupported is returned on platforms without remote
	// memory access.
	ErrUnsupported = errors.New("remote memory access is not supported on this platform")
)

// RemoteAddress identifies a byte region in another process.
// It owns nothing.
type RemoteAddress struct {
	PID     uint32
	Address uintptr
}

func (o RemoteAddress) String() string {
	return fmt.Sprintf("%d:0x%x", o.PID, o.Address)
}

// Accessor reads and writes the memory of other processes.
type Accessor interface {
	// ReadAt reads exactly length bytes at addr.
	ReadAt(addr RemoteAddress, length int) ([]byte, error)

	// WriteAt writes all of p at addr.
	WriteAt(addr RemoteAddress, p []byte) error
}

var _ Accessor = Remote{}

// Remote is an Accessor which opens a new ProcessHandle for every
// read and write.
type Remote struct{}

func (o Remote) ReadAt(addr RemoteAddress, length int) ([]byte, error) {
	handle, err := Open(addr.PID)
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	return handle.Read(addr.Address, length)
}

func (o Remote) WriteAt(addr RemoteAddress, p []byte) error {
	handle, err := Open(addr.PID)
	if err != nil {
		return err
	}
	defer handle.Close()

	return handle.Write(addr.Address, p)
}

// OpenOrExit calls Open. DefaultExitFn is invoked if an error occurs.
func OpenOrExit(pid uint32) *ProcessHandle {
	h, err := Open(pid)
	if err != nil {
		DefaultExitFn(err)
	}
	return h
}

// Open acquires a handle to the process with the specified identifier
// with query, read, write and operation rights. The returned handle
// must be closed by the caller.
func Open(pid uint32) (*ProcessHandle, error) {
	osh, err := openOSHandle(pid)
	if err != nil {
		return nil, fmt.Errorf("%w %d - %w", ErrAccessDenied, pid, err)
	}

	return &ProcessHandle{
		pid: pid,
		os:  osh,
	}, nil
}

// ProcessHandle is an OS access token for one process. It is not
// safe for concurrent use.
type ProcessHandle struct {
	pid    uint32
	os     osHandle
	closed bool
}

// PID returns the identifier of the process.
func (o *ProcessHandle) PID() uint32 {
	return o.pid
}

// Read reads exactly length bytes at address.
func (o *ProcessHandle) Read(address uintptr, length int) ([]byte, error) {
	if o.closed {
		return nil, ErrHandleClosed
	}

	if length < 0 {
		return nil, fmt.Errorf("%w at 0x%x - length cannot be negative (%d)",
			ErrReadFault, address, length)
	}

	buf := make([]byte, length)
	if length == 0 {
		return buf, nil
	}

	n, err := o.os.read(address, buf)
	if err != nil {
		return nil, fmt.Errorf("%w at 0x%x in %d - %w", ErrReadFault, address, o.pid, err)
	}

	if n != length {
		return nil, fmt.Errorf("%w at 0x%x in %d - read %d of %d bytes",
			ErrReadFault, address, o.pid, n, length)
	}

	return buf, nil
}

// Write writes all of p at address.
func (o *ProcessHandle) Write(address uintptr, p []byte) error {
	if o.closed {
		return ErrHandleClosed
	}

	if len(p) == 0 {
		return nil
	}

	n, err := o.os.write(address, p)
	if err != nil {
		return fmt.Errorf("%w at 0x%x in %d - %w", ErrWriteFault, address, o.pid, err)
	}

	if n != len(p) {
		return fmt.Errorf("%w at 0x%x in %d - wrote %d of %d bytes",
			ErrWriteFault, address, o.pid, n, len(p))
	}

	return nil
}

// Close releases the handle. Subsequent calls do nothing.
func (o *ProcessHandle) Close() error {
	if o.closed {
		return nil
	}

	o.closed = true

	return o.os.close()
}
