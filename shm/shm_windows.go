//go:build windows

package shm

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/windows"
)

func createRegion(name string, capacity int) ([]byte, func() error, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, nil, err
	}

	// CreateFileMapping reports an existing mapping with a valid handle
	// and ERROR_ALREADY_EXISTS. Reusing it would mean sharing the
	// region with whoever created it.
	mapping, err := windows.CreateFileMapping(windows.InvalidHandle, nil,
		windows.PAGE_READWRITE, 0, uint32(capacity), namePtr)
	if err != nil {
		if mapping != 0 {
			windows.CloseHandle(mapping)
		}
		return nil, nil, err
	}

	addr, err := windows.MapViewOfFile(mapping,
		windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(capacity))
	if err != nil {
		windows.CloseHandle(mapping)
		return nil, nil, err
	}

	region := unsafe.Slice((*byte)(unsafe.Pointer(addr)), capacity)

	release := func() error {
		unmapErr := windows.UnmapViewOfFile(addr)
		closeErr := windows.CloseHandle(mapping)
		return errors.Join(unmapErr, closeErr)
	}

	return region, release, nil
}
