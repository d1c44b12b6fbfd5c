package memory

import (
	"bytes"
	"testing"
)

func TestPointerMakerForX86_32_FromUint(t *testing.T) {
	pm := PointerMakerForX86_32()
	pointer := pm.FromUint(0xdeadbeef)
	exp := []byte{0xef, 0xbe, 0xad, 0xde}
	if !bytes.Equal(pointer.Bytes(), exp) {
		t.Fatalf("expected 0x%x - got 0x%x", exp, pointer.Bytes())
	}
}

func TestPointerMakerForX86_32_FromUint_Truncates(t *testing.T) {
	pm := PointerMakerForX86_32()
	pointer := pm.FromUint(0x1_0000_0001)
	if pointer.Uint() != 1 {
		t.Fatalf("expected 1 - got 0x%x", pointer.Uint())
	}
}

func TestPointerMakerForX86_64_FromUint(t *testing.T) {
	pm := PointerMakerForX86_64()
	pointer := pm.FromUint(0x00000000deadbeef)
	exp := []byte{0xef, 0xbe, 0xad, 0xde, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(pointer.Bytes(), exp) {
		t.Fatalf("expected 0x%x - got 0x%x", exp, pointer.Bytes())
	}
}

func TestPointerMaker_ParseUint(t *testing.T) {
	pm := PointerMakerForX86_32()

	pointer, err := pm.ParseUint("0x00401000")
	if err != nil {
		t.Fatal(err)
	}

	if pointer.Uintptr() != 0x401000 {
		t.Fatalf("expected 0x401000 - got %s", pointer.HexString())
	}

	pointer, err = pm.ParseUint("4096")
	if err != nil {
		t.Fatal(err)
	}

	if pointer.Uint() != 4096 {
		t.Fatalf("expected 4096 - got %d", pointer.Uint())
	}
}

func TestPointerMaker_ParseUint_TooLarge(t *testing.T) {
	_, err := PointerMakerForX86_32().ParseUint("0x100000000")
	if err == nil {
		t.Fatal("expected an error for an address larger than 32 bits")
	}

	_, err = PointerMakerForX86_32().ParseUint("")
	if err == nil {
		t.Fatal("expected an error for an empty string")
	}
}

func TestPointer_BytesIsCopy(t *testing.T) {
	pointer := PointerMakerForX86_32().FromUint(1)

	b := pointer.Bytes()
	b[0] = 0xff

	if pointer.Bytes()[0] != 1 {
		t.Fatalf("expected pointer bytes to be unchanged - got 0x%x", pointer.Bytes())
	}
}
