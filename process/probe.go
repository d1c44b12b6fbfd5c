package process

import (
	"log"
)

// Tracked is a process whose exit can be observed without blocking.
type Tracked interface {
	PID() uint32
	HasExited() bool
}

// NewProbe returns a Probe for tracked. logger may be nil.
func NewProbe(tracked Tracked, logger *log.Logger) *Probe {
	return &Probe{
		tracked: tracked,
		logger:  logger,
	}
}

// Probe checks the liveness of a Tracked process. Once it has observed
// the exit it keeps reporting it without asking the process again.
type Probe struct {
	tracked Tracked
	logger  *log.Logger
	exited  bool
}

// Alive reports whether the process is still running.
func (o *Probe) Alive() bool {
	if o.exited {
		return false
	}

	if !o.tracked.HasExited() {
		return true
	}

	o.exited = true

	if o.logger != nil {
		o.logger.Printf("process %d exited", o.tracked.PID())
	}

	return false
}
