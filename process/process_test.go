package process

import (
	"bytes"
	"errors"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "REQLOADER_WANT_HELPER_PROCESS"

// TestHelperProcess is not a real test. It is executed as a child
// process by the other tests.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}

	switch os.Getenv("REQLOADER_HELPER_MODE") {
	case "block":
		time.Sleep(time.Minute)
	case "fail":
		os.Exit(3)
	}

	os.Exit(0)
}

func helperCommand(mode string) *exec.Cmd {
	cmd := exec.Command(os.Args[0], "-test.run=^TestHelperProcess$")
	cmd.Env = append(os.Environ(), helperEnv+"=1", "REQLOADER_HELPER_MODE="+mode)
	return cmd
}

func TestStart_ExitIsTracked(t *testing.T) {
	proc, err := Start(helperCommand("exit"))
	require.NoError(t, err)
	assert.NotZero(t, proc.PID())

	require.NoError(t, proc.Wait())
	assert.True(t, proc.HasExited())
	assert.NoError(t, proc.ExitErr())
}

func TestStart_ExitError(t *testing.T) {
	proc, err := Start(helperCommand("fail"))
	require.NoError(t, err)

	err = proc.Wait()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestStart_Kill(t *testing.T) {
	proc, err := Start(helperCommand("block"))
	require.NoError(t, err)
	assert.False(t, proc.HasExited())

	require.NoError(t, proc.Kill())
	proc.Wait()
	assert.True(t, proc.HasExited())

	// Killing an exited process is a no-op.
	assert.NoError(t, proc.Kill())
}

func TestSpawn_Missing(t *testing.T) {
	_, err := Spawn(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.ErrorIs(t, err, ErrSpawnFailed)
}

type fakeTracked struct {
	exited bool
	calls  int
}

func (o *fakeTracked) PID() uint32 {
	return 1234
}

func (o *fakeTracked) HasExited() bool {
	o.calls++
	return o.exited
}

func TestProbe(t *testing.T) {
	tracked := &fakeTracked{}
	logs := bytes.NewBuffer(nil)
	probe := NewProbe(tracked, log.New(logs, "", 0))

	assert.True(t, probe.Alive())
	assert.True(t, probe.Alive())

	tracked.exited = true

	assert.False(t, probe.Alive())
	assert.False(t, probe.Alive())
	assert.Equal(t, 3, tracked.calls)
	assert.Equal(t, "process 1234 exited\n", logs.String())
}
