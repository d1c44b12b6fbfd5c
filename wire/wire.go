// Package wire implements the fixed 28-byte message shared between the
// loader and the target process.
//
// The same layout is used for the handshake published in shared memory
// and for every request the target leaves in its own address space:
//
//	offset  size  field
//	0       4     Unused
//	4       4     TransportHandle
//	8       8     Padding
//	16      4     RequestCode
//	20      4     Payload.Address
//	24      4     Payload.Value
//
// All fields are little-endian.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"gitlab.com/stephen-fox/reqloader/bstruct"
)

// Size is the encoded size of a Message in bytes.
const Size = 28

var (
	// ByteOrder is the byte order of every Message field.
	ByteOrder = binary.LittleEndian

	// ErrTruncatedMessage is returned by Decode when the buffer is
	// shorter than Size.
	ErrTruncatedMessage = errors.New("message is truncated")
)

// Payload is the request argument pair. Its meaning depends on
// the request code.
type Payload struct {
	Address uint32
	Value   uint32
}

// Message is the cross-process message. Unused and Padding carry no
// meaning for the loader, but they are part of the layout and
// round-trip unchanged.
type Message struct {
	Unused          uint32
	TransportHandle uint32
	Padding         [2]uint32
	RequestCode     uint32
	Payload         Payload
}

// Handshake returns the message published to the target before it
// starts. code is the protocol message id.
func Handshake(transportHandle uint32, code uint32) Message {
	return Message{
		TransportHandle: transportHandle,
		RequestCode:     code,
	}
}

// Encode returns the Size-byte representation of m.
func Encode(m Message) []byte {
	b, err := EncodeWithFieldInfo(m, nil)
	if err != nil {
		// Message only contains fixed-size unsigned fields.
		panic(fmt.Sprintf("failed to encode wire message - %s", err))
	}

	return b
}

// EncodeWithFieldInfo is Encode, but calls optFn for every encoded
// field. This is mostly useful for debug logging.
func EncodeWithFieldInfo(m Message, optFn func(bstruct.FieldInfo) error) ([]byte, error) {
	return bstruct.ToBytes(ByteOrder, m, optFn)
}

// Decode decodes the first Size bytes of b.
func Decode(b []byte) (Message, error) {
	if len(b) < Size {
		return Message{}, fmt.Errorf("%w - got %d bytes, need %d",
			ErrTruncatedMessage, len(b), Size)
	}

	var m Message

	_, err := bstruct.FromBytes(ByteOrder, b[:Size], &m)
	if err != nil {
		return Message{}, fmt.Errorf("failed to decode wire message - %w", err)
	}

	return m, nil
}

func (o Message) String() string {
	return fmt.Sprintf("unused: 0x%x | transport handle: 0x%x | padding: 0x%x 0x%x | "+
		"request code: %d | payload address: 0x%x | payload value: 0x%x",
		o.Unused, o.TransportHandle, o.Padding[0], o.Padding[1],
		o.RequestCode, o.Payload.Address, o.Payload.Value)
}
