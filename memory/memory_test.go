package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessHandle_Closed(t *testing.T) {
	h := &ProcessHandle{pid: 1, closed: true}

	_, err := h.Read(0x1000, 4)
	assert.ErrorIs(t, err, ErrHandleClosed)

	err = h.Write(0x1000, []byte{1})
	assert.ErrorIs(t, err, ErrHandleClosed)

	assert.NoError(t, h.Close())
}

func TestProcessHandle_NegativeLength(t *testing.T) {
	h := &ProcessHandle{pid: 1}

	_, err := h.Read(0x1000, -1)
	assert.ErrorIs(t, err, ErrReadFault)
}

func TestProcessHandle_ZeroLength(t *testing.T) {
	h := &ProcessHandle{pid: 1}

	b, err := h.Read(0x1000, 0)
	assert.NoError(t, err)
	assert.Empty(t, b)

	assert.NoError(t, h.Write(0x1000, nil))
}

func TestOpen_MissingProcess(t *testing.T) {
	// PIDs are bounded well below this value on every supported platform.
	_, err := Open(0x7ffffff0)
	assert.True(t, errors.Is(err, ErrAccessDenied), "got %v", err)
}

func TestRemoteAddress_String(t *testing.T) {
	assert.Equal(t, "42:0x401000", RemoteAddress{PID: 42, Address: 0x401000}.String())
}

func TestOpenOrExit(t *testing.T) {
	var exitErr error

	original := DefaultExitFn
	DefaultExitFn = func(err error) {
		exitErr = err
	}
	defer func() {
		DefaultExitFn = original
	}()

	h := OpenOrExit(0x7ffffff0)
	assert.Nil(t, h)
	assert.ErrorIs(t, exitErr, ErrAccessDenied)
}
