//go:build linux

package shm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDevShm(t *testing.T) {
	probe, err := os.CreateTemp(devShm, "reqloader-probe-")
	if err != nil {
		t.Skipf("%s is unavailable - %s", devShm, err)
	}
	probe.Close()
	os.Remove(probe.Name())
}

func TestCreate_Linux(t *testing.T) {
	requireDevShm(t)

	name := "reqloader-test-" + uuid.NewString()

	c, err := Create(name, HandshakeCapacity)
	require.NoError(t, err)
	assert.Equal(t, name, c.Name())
	assert.Equal(t, HandshakeCapacity, c.Capacity())

	require.NoError(t, c.Write([]byte{1, 2, 3, 4}))

	contents, err := os.ReadFile(filepath.Join(devShm, name))
	require.NoError(t, err)
	require.Len(t, contents, HandshakeCapacity)
	assert.Equal(t, []byte{1, 2, 3, 4}, contents[:4])

	require.NoError(t, c.Close())

	_, err = os.Stat(filepath.Join(devShm, name))
	assert.True(t, os.IsNotExist(err))
}

func TestCreate_Linux_NameCollision(t *testing.T) {
	requireDevShm(t)

	name := "reqloader-test-" + uuid.NewString()

	c, err := Create(name, HandshakeCapacity)
	require.NoError(t, err)
	defer c.Close()

	_, err = Create(name, HandshakeCapacity)
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}

func TestCreate_Linux_InvalidName(t *testing.T) {
	_, err := Create("a/b", HandshakeCapacity)
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}
