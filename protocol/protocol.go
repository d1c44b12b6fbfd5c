// Package protocol classifies the requests sent by the target process
// and carries them out.
//
// A request is a wire.Message left in the target's memory. The target
// sends its address and blocks until the loader replies. The reply is
// either a computed value (Hit) or the generic acknowledgement (Fly and
// anything unrecognized).
package protocol

import (
	"fmt"
	"io"
	"log"

	"gitlab.com/stephen-fox/reqloader/bstruct"
	"gitlab.com/stephen-fox/reqloader/memory"
	"gitlab.com/stephen-fox/reqloader/wire"
)

// Request codes. These are defined by the target process.
const (
	HitCode uint32 = 51
	FlyCode uint32 = 100
)

// Kind is the kind of a request.
type Kind int

const (
	KindUnknown Kind = iota
	KindHit
	KindFly
)

var codesToKinds = map[uint32]Kind{
	HitCode: KindHit,
	FlyCode: KindFly,
}

// Classify maps a request code to its Kind. Unrecognized codes
// are KindUnknown.
func Classify(code uint32) Kind {
	kind, ok := codesToKinds[code]
	if !ok {
		return KindUnknown
	}

	return kind
}

func (o Kind) String() string {
	switch o {
	case KindHit:
		return "hit"
	case KindFly:
		return "fly"
	default:
		return "unknown"
	}
}

// Reply is the synchronous result delivered to the target.
type Reply uint32

// Ack is the generic acknowledgement reply.
const Ack Reply = 1

// FlyResponse is the record written into the target for a Fly request.
type FlyResponse struct {
	Value uint32
}

// Handler carries out requests against a target process.
type Handler struct {
	// Memory is used to read requests and write responses.
	Memory memory.Accessor

	// Logger receives per-request failures that are not returned
	// to the caller. Nil discards them.
	Logger *log.Logger

	// Verbose, if non-nil, receives a line for every request.
	Verbose *log.Logger
}

// Handle reads the request at addr and carries it out.
//
// Failing to read or decode the request is returned as an error.
// Failing to write a Fly response is logged and the request is still
// acknowledged.
func (o Handler) Handle(addr memory.RemoteAddress) (Reply, error) {
	raw, err := o.Memory.ReadAt(addr, wire.Size)
	if err != nil {
		return 0, fmt.Errorf("failed to read request at %s - %w", addr, err)
	}

	msg, err := wire.Decode(raw)
	if err != nil {
		return 0, fmt.Errorf("failed to decode request at %s - %w", addr, err)
	}

	kind := Classify(msg.RequestCode)

	if o.Verbose != nil {
		o.Verbose.Printf("received %s request from %d - %s", kind, addr.PID, msg)
	}

	switch kind {
	case KindHit:
		// uint32 addition wraps.
		return Reply(msg.Payload.Address + msg.Payload.Value), nil
	case KindFly:
		responseAddr := memory.RemoteAddress{
			PID:     addr.PID,
			Address: uintptr(msg.Payload.Address),
		}

		err := o.writeFlyResponse(responseAddr)
		if err != nil {
			o.logger().Printf("failed to write fly response to %s - %s", responseAddr, err)
		}

		return Ack, nil
	default:
		return Ack, nil
	}
}

func (o Handler) writeFlyResponse(addr memory.RemoteAddress) error {
	response, err := bstruct.ToBytes(wire.ByteOrder, FlyResponse{Value: 1}, nil)
	if err != nil {
		return err
	}

	if o.Verbose != nil {
		o.Verbose.Printf("writing fly response to %s", addr)
	}

	return o.Memory.WriteAt(addr, response)
}

func (o Handler) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}

	return o.Logger
}
