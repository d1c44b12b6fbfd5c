package asmkit_test

import (
	"fmt"
	"log"

	"gitlab.com/stephen-fox/reqloader/asmkit"
)

func ExampleDisassembler_All() {
	disass, err := asmkit.NewDisassembler(asmkit.Config{
		Bits:        32,
		Syntax:      asmkit.IntelSyntax,
		BaseAddress: 0x401000,
	})
	if err != nil {
		log.Fatalf("failed to create disassembler - %v", err)
	}

	// xor eax, eax; inc eax; mov ebx, eax; int 0x80
	raw := []byte{0x31, 0xc0, 0x40, 0x89, 0xc3, 0xcd, 0x80}

	err = disass.All(raw, func(inst asmkit.Inst) error {
		fmt.Printf("0x%x: %s\n", inst.Address, inst.Assembly)
		return nil
	})
	if err != nil {
		log.Fatalf("disassembler failed - %v", err)
	}

	// Output:
	// 0x401000: xor eax, eax
	// 0x401002: inc eax
	// 0x401003: mov ebx, eax
	// 0x401005: int 0x80
}
