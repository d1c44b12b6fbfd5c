package memory

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// PointerMakerForX86_32 returns a PointerMaker for 32-bit little-endian
// targets.
func PointerMakerForX86_32() PointerMaker {
	return PointerMaker{
		byteOrder: binary.LittleEndian,
		ptrSize:   4,
	}
}

// PointerMakerForX86_64 returns a PointerMaker for 64-bit little-endian
// targets.
func PointerMakerForX86_64() PointerMaker {
	return PointerMaker{
		byteOrder: binary.LittleEndian,
		ptrSize:   8,
	}
}

// PointerMaker creates Pointer values for a target platform.
type PointerMaker struct {
	byteOrder binary.ByteOrder
	ptrSize   int
}

// Size returns the pointer size in bytes.
func (o PointerMaker) Size() int {
	return o.ptrSize
}

// FromUint creates a Pointer from address. Bits that do not fit in
// the pointer size are discarded.
func (o PointerMaker) FromUint(address uint64) Pointer {
	out := make([]byte, o.ptrSize)

	switch o.ptrSize {
	case 4:
		address = uint64(uint32(address))
		o.byteOrder.PutUint32(out, uint32(address))
	case 8:
		o.byteOrder.PutUint64(out, address)
	default:
		panic(fmt.Sprintf("unsupported pointer size: %d", o.ptrSize))
	}

	return Pointer{
		raw:     out,
		address: address,
	}
}

// ParseUint parses a decimal or 0x-prefixed hexadecimal address.
func (o PointerMaker) ParseUint(s string) (Pointer, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Pointer{}, fmt.Errorf("address string cannot be empty")
	}

	address, err := strconv.ParseUint(s, 0, o.ptrSize*8)
	if err != nil {
		return Pointer{}, fmt.Errorf("failed to parse address %q - %w", s, err)
	}

	return o.FromUint(address), nil
}

// Pointer is a memory address and its encoding for the target platform.
type Pointer struct {
	raw     []byte
	address uint64
}

// Bytes returns the encoded pointer.
func (o Pointer) Bytes() []byte {
	cp := make([]byte, len(o.raw))
	copy(cp, o.raw)
	return cp
}

// Uint returns the address as an integer.
func (o Pointer) Uint() uint64 {
	return o.address
}

// Uintptr returns the address as a uintptr.
func (o Pointer) Uintptr() uintptr {
	return uintptr(o.address)
}

func (o Pointer) HexString() string {
	return fmt.Sprintf("0x%x", o.address)
}
