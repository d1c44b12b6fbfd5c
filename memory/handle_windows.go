//go:build windows

package memory

import (
	"golang.org/x/sys/windows"
)

const processAccess = windows.PROCESS_QUERY_INFORMATION |
	windows.PROCESS_VM_READ |
	windows.PROCESS_VM_WRITE |
	windows.PROCESS_VM_OPERATION

type osHandle struct {
	handle windows.Handle
}

func openOSHandle(pid uint32) (osHandle, error) {
	h, err := windows.OpenProcess(processAccess, false, pid)
	if err != nil {
		return osHandle{}, err
	}

	return osHandle{handle: h}, nil
}

func (o osHandle) read(address uintptr, buf []byte) (int, error) {
	var n uintptr

	err := windows.ReadProcessMemory(o.handle, address, &buf[0], uintptr(len(buf)), &n)
	if err != nil {
		return int(n), err
	}

	return int(n), nil
}

func (o osHandle) write(address uintptr, p []byte) (int, error) {
	var n uintptr

	err := windows.WriteProcessMemory(o.handle, address, &p[0], uintptr(len(p)), &n)
	if err != nil {
		return int(n), err
	}

	return int(n), nil
}

func (o osHandle) close() error {
	return windows.CloseHandle(o.handle)
}
