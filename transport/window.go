package transport

import "time"

// DefaultIdleInterval is the upper bound on the time between two
// idle callbacks when no notifications arrive.
const DefaultIdleInterval = 100 * time.Millisecond

// WindowConfig configures NewWindow.
type WindowConfig struct {
	// Title is the window's title. The target may look the window
	// up by it.
	Title string

	// IdleInterval is the maximum time the loop waits for input
	// before calling Handler.Idle. Zero means DefaultIdleInterval.
	IdleInterval time.Duration
}

func (o WindowConfig) idleInterval() time.Duration {
	if o.IdleInterval <= 0 {
		return DefaultIdleInterval
	}

	return o.IdleInterval
}
