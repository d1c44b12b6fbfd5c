// Package asmkit disassembles x86 machine code read from a target
// process.
package asmkit

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

const (
	SkipSyntax  Syntax = ""
	ATTSyntax   Syntax = "att"
	GoSyntax    Syntax = "go"
	IntelSyntax Syntax = "intel"
)

// Syntax is an assembly syntax.
type Syntax string

// Config configures a Disassembler.
type Config struct {
	// Bits is the processor mode: 16, 32 or 64.
	Bits int

	Syntax Syntax

	// BaseAddress is the address of the first instruction. It is
	// used to resolve relative branch targets.
	BaseAddress uint64
}

// NewDisassembler returns a Disassembler for config.
func NewDisassembler(config Config) (*Disassembler, error) {
	switch config.Bits {
	case 16, 32, 64:
	default:
		return nil, fmt.Errorf("unsupported x86 processor mode: %d bits", config.Bits)
	}

	var syntaxFn func(inst x86asm.Inst, pc uint64) string
	switch config.Syntax {
	case SkipSyntax:
		// Do nothing.
	case ATTSyntax:
		syntaxFn = func(inst x86asm.Inst, pc uint64) string {
			return x86asm.GNUSyntax(inst, pc, nil)
		}
	case GoSyntax:
		syntaxFn = func(inst x86asm.Inst, pc uint64) string {
			return x86asm.GoSyntax(inst, pc, nil)
		}
	case IntelSyntax:
		syntaxFn = func(inst x86asm.Inst, pc uint64) string {
			return x86asm.IntelSyntax(inst, pc, nil)
		}
	default:
		return nil, fmt.Errorf("unsupported syntax type for x86: %q", config.Syntax)
	}

	return &Disassembler{
		bits:        config.Bits,
		baseAddress: config.BaseAddress,
		syntaxFn:    syntaxFn,
	}, nil
}

// Disassembler decodes x86 instructions.
type Disassembler struct {
	bits        int
	baseAddress uint64
	syntaxFn    func(inst x86asm.Inst, pc uint64) string
}

// All decodes every instruction in raw, calling onDecodeFn for each
// one in order.
func (o *Disassembler) All(raw []byte, onDecodeFn func(Inst) error) error {
	offset := 0

	for offset < len(raw) {
		inst, err := o.decode(raw[offset:], offset)
		if err != nil {
			return fmt.Errorf("failed to decode instruction at offset %d - %w - remaining data: 0x%x",
				offset, err, raw[offset:])
		}

		err = onDecodeFn(inst)
		if err != nil {
			return fmt.Errorf("on decode function failed for instruction at offset %d (%q) - %w",
				offset, inst.Assembly, err)
		}

		offset += inst.Len
	}

	return nil
}

// Next decodes the first instruction in raw.
func (o *Disassembler) Next(raw []byte) (Inst, error) {
	return o.decode(raw, 0)
}

func (o *Disassembler) decode(raw []byte, offset int) (Inst, error) {
	x86Inst, err := x86asm.Decode(raw, o.bits)
	if err != nil {
		return Inst{}, err
	}

	address := o.baseAddress + uint64(offset)

	var assembly string
	if o.syntaxFn != nil {
		assembly = o.syntaxFn(x86Inst, address)
	}

	bin := make([]byte, x86Inst.Len)
	copy(bin, raw[:x86Inst.Len])

	return Inst{
		Address:  address,
		Offset:   offset,
		Bin:      bin,
		Len:      x86Inst.Len,
		Assembly: assembly,
		Inst:     x86Inst,
	}, nil
}

// Inst is a decoded instruction.
type Inst struct {
	Address  uint64
	Offset   int
	Bin      []byte
	Len      int
	Assembly string
	Inst     x86asm.Inst
}
