// Package process spawns the target program and tracks whether
// it is still running.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// ErrSpawnFailed is returned when the program cannot be started.
var ErrSpawnFailed = errors.New("failed to spawn process")

// Spawn starts the executable at exePath. The child inherits the
// caller's working directory and environment.
func Spawn(exePath string, args ...string) (*Process, error) {
	return Start(exec.Command(exePath, args...))
}

// Start starts cmd and begins tracking its exit.
func Start(cmd *exec.Cmd) (*Process, error) {
	err := cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("%w %q - %w", ErrSpawnFailed, cmd.Path, err)
	}

	proc := &Process{
		pid:      uint32(cmd.Process.Pid),
		kill:     cmd.Process.Kill,
		rwMu:     &sync.RWMutex{},
		waitDone: make(chan struct{}),
	}

	// The Wait goroutine only publishes the exit status. Everything
	// else reads it through HasExited.
	go func() {
		err := cmd.Wait()
		proc.rwMu.Lock()
		proc.exited = exitInfo{
			exited: true,
			err:    err,
		}
		proc.rwMu.Unlock()
		close(proc.waitDone)
	}()

	return proc, nil
}

type exitInfo struct {
	exited bool
	err    error
}

// Process is a started child process.
type Process struct {
	pid      uint32
	kill     func() error
	rwMu     *sync.RWMutex
	exited   exitInfo
	waitDone chan struct{}
}

// PID returns the process identifier.
func (o *Process) PID() uint32 {
	return o.pid
}

// HasExited reports whether the process has exited. It never blocks.
func (o *Process) HasExited() bool {
	o.rwMu.RLock()
	defer o.rwMu.RUnlock()
	return o.exited.exited
}

// ExitErr returns the error reported by the exited process, if any.
func (o *Process) ExitErr() error {
	o.rwMu.RLock()
	defer o.rwMu.RUnlock()
	return o.exited.err
}

// Wait blocks until the process exits.
func (o *Process) Wait() error {
	<-o.waitDone
	return o.ExitErr()
}

// Kill terminates the process if it is still running.
func (o *Process) Kill() error {
	if o.HasExited() {
		return nil
	}

	err := o.kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill process %d - %w", o.pid, err)
	}

	return nil
}
