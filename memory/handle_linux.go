//go:build linux

package memory

import (
	"golang.org/x/sys/unix"
)

// Opening the pidfd checks that the process exists. The vm syscalls
// address the process by pid, so a pid recycled after open is not
// detected.
type osHandle struct {
	pid   int
	pidfd int
}

func openOSHandle(pid uint32) (osHandle, error) {
	fd, err := unix.PidfdOpen(int(pid), 0)
	if err != nil {
		return osHandle{}, err
	}

	return osHandle{
		pid:   int(pid),
		pidfd: fd,
	}, nil
}

func (o osHandle) read(address uintptr, buf []byte) (int, error) {
	local := []unix.Iovec{{Base: &buf[0]}}
	local[0].SetLen(len(buf))

	remote := []unix.RemoteIovec{{Base: address, Len: len(buf)}}

	return unix.ProcessVMReadv(o.pid, local, remote, 0)
}

func (o osHandle) write(address uintptr, p []byte) (int, error) {
	local := []unix.Iovec{{Base: &p[0]}}
	local[0].SetLen(len(p))

	remote := []unix.RemoteIovec{{Base: address, Len: len(p)}}

	return unix.ProcessVMWritev(o.pid, local, remote, 0)
}

func (o osHandle) close() error {
	return unix.Close(o.pidfd)
}
