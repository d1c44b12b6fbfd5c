//go:build linux

package memory

import (
	"os"
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfAddress(t *testing.T, buf []byte) RemoteAddress {
	h, err := Open(uint32(os.Getpid()))
	if err != nil {
		t.Skipf("pidfd_open is unavailable - %s", err)
	}
	h.Close()

	return RemoteAddress{
		PID:     uint32(os.Getpid()),
		Address: uintptr(unsafe.Pointer(&buf[0])),
	}
}

func TestRemote_ReadWriteSelf(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	addr := selfAddress(t, buf)

	got, err := Remote{}.ReadAt(addr, 4)
	if err != nil {
		t.Skipf("process_vm_readv is unavailable - %s", err)
	}
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	err = Remote{}.WriteAt(addr, []byte{0xaa, 0xbb})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0xbb, 3, 4, 5, 6, 7, 8}, buf)

	runtime.KeepAlive(buf)
}

func TestRemote_ReadUnmapped(t *testing.T) {
	buf := []byte{0}
	addr := selfAddress(t, buf)

	// The zero page is never mapped.
	addr.Address = 0

	_, err := Remote{}.ReadAt(addr, 4)
	assert.ErrorIs(t, err, ErrReadFault)

	err = Remote{}.WriteAt(addr, []byte{1})
	assert.ErrorIs(t, err, ErrWriteFault)
}
