package asmkit

import (
	"errors"
	"testing"
)

func TestNewDisassembler_BadConfig(t *testing.T) {
	_, err := NewDisassembler(Config{Bits: 8})
	if err == nil {
		t.Fatal("expected an error for an unsupported mode")
	}

	_, err = NewDisassembler(Config{Bits: 32, Syntax: "pdp11"})
	if err == nil {
		t.Fatal("expected an error for an unsupported syntax")
	}
}

func TestDisassembler_AllDecodesLastByte(t *testing.T) {
	disass, err := NewDisassembler(Config{Bits: 32, Syntax: IntelSyntax})
	if err != nil {
		t.Fatal(err)
	}

	// Three one-byte nops.
	var count int
	err = disass.All([]byte{0x90, 0x90, 0x90}, func(inst Inst) error {
		if inst.Offset != count {
			t.Fatalf("expected offset %d - got %d", count, inst.Offset)
		}

		count++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if count != 3 {
		t.Fatalf("expected 3 instructions - got %d", count)
	}
}

func TestDisassembler_AllStopsOnCallbackError(t *testing.T) {
	disass, err := NewDisassembler(Config{Bits: 32})
	if err != nil {
		t.Fatal(err)
	}

	expected := errors.New("stop")

	err = disass.All([]byte{0x90, 0x90}, func(Inst) error {
		return expected
	})
	if !errors.Is(err, expected) {
		t.Fatalf("expected %v - got %v", expected, err)
	}
}

func TestDisassembler_Next(t *testing.T) {
	disass, err := NewDisassembler(Config{Bits: 32, Syntax: IntelSyntax})
	if err != nil {
		t.Fatal(err)
	}

	inst, err := disass.Next([]byte{0xcd, 0x80, 0x90})
	if err != nil {
		t.Fatal(err)
	}

	if inst.Len != 2 {
		t.Fatalf("expected length 2 - got %d", inst.Len)
	}

	if inst.Assembly != "int 0x80" {
		t.Fatalf("expected 'int 0x80' - got %q", inst.Assembly)
	}
}
