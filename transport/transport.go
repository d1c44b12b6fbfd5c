// Package transport delivers notifications from the target process to
// the loader and carries synchronous replies back.
//
// A Sink is the receiving endpoint. The target learns the endpoint's
// numeric handle through the handshake, then sends notifications to it
// and blocks until a reply is produced. The Sink runs a single loop that
// alternates between dispatching notifications and one idle callback
// per cycle.
package transport

import "errors"

// Well-known notification kinds.
const (
	KindDestroy uint32 = 0x0002
	KindClose   uint32 = 0x0010
)

// ErrUnsupported is returned on platforms without a Sink implementation.
var ErrUnsupported = errors.New("message transport is not supported on this platform")

// Notification is one inbound notification.
type Notification struct {
	Kind   uint32
	WParam uintptr
	LParam uintptr
}

// Response is a Handler's answer to a Notification.
type Response struct {
	// Result is delivered to the sender when Handled is true.
	Result uintptr

	// Handled false leaves the notification to the Sink's
	// default processing.
	Handled bool

	// Stop ends the loop once the notification returns.
	Stop bool
}

// Handler receives the events of a Sink's loop.
type Handler interface {
	// Notify is called for every notification.
	Notify(Notification) Response

	// Idle is called once per loop cycle. Returning false stops
	// the loop.
	Idle() bool
}

// Sink is a notification endpoint.
type Sink interface {
	// Handle returns the numeric handle the target uses to address
	// the Sink.
	Handle() uint32

	// Run blocks, servicing h until h asks to stop or the Sink
	// is destroyed.
	Run(h Handler) error

	// Close destroys the endpoint.
	Close() error
}
