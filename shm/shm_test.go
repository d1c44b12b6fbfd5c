package shm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_Write(t *testing.T) {
	region := make([]byte, HandshakeCapacity)
	released := 0
	c := newChannel("test", region, func() error {
		released++
		return nil
	})

	msg := bytes.Repeat([]byte{0xab}, 28)

	require.NoError(t, c.Write(msg))
	assert.Equal(t, msg, region[:28])
	assert.Equal(t, make([]byte, HandshakeCapacity-28), region[28:])

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, released)
}

func TestChannel_WriteFullCapacity(t *testing.T) {
	c := newChannel("test", make([]byte, HandshakeCapacity), nil)

	assert.NoError(t, c.Write(make([]byte, HandshakeCapacity)))
}

func TestChannel_BufferTooLarge(t *testing.T) {
	c := newChannel("test", make([]byte, HandshakeCapacity), nil)

	err := c.Write(make([]byte, HandshakeCapacity+1))
	assert.ErrorIs(t, err, ErrBufferTooLarge)

	// A rejected write does not consume the write epoch.
	assert.NoError(t, c.Write([]byte{1}))
}

func TestChannel_SingleWrite(t *testing.T) {
	c := newChannel("test", make([]byte, HandshakeCapacity), nil)

	require.NoError(t, c.Write([]byte{1}))
	assert.ErrorIs(t, c.Write([]byte{2}), ErrAlreadyWritten)
}

func TestChannel_WriteAfterClose(t *testing.T) {
	c := newChannel("test", make([]byte, HandshakeCapacity), nil)

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Write([]byte{1}), ErrClosed)
}

func TestCreate_InvalidArgs(t *testing.T) {
	_, err := Create("", HandshakeCapacity)
	assert.ErrorIs(t, err, ErrChannelUnavailable)

	_, err = Create("test", 0)
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}
