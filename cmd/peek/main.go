package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gitlab.com/stephen-fox/reqloader/asmkit"
	"gitlab.com/stephen-fox/reqloader/bstruct"
	"gitlab.com/stephen-fox/reqloader/conv"
	"gitlab.com/stephen-fox/reqloader/memory"
	"gitlab.com/stephen-fox/reqloader/wire"
)

const (
	pidArg          = "p"
	addressArg      = "a"
	lengthArg       = "n"
	outputFormatArg = "o"
	disassArg       = "d"
	bitsArg         = "b"
	writeArg        = "w"
	helpArg         = "h"

	hexFormat  = "hex"
	goFormat   = "go"
	msgFormat  = "msg"
	jsonFormat = "json"

	appName = "peek"
	usage   = appName + `
DESCRIPTION
  Reads or writes the memory of a running process. It is intended for
  inspecting the request records a target hands to the loader.

USAGE
  ` + appName + ` -` + pidArg + ` <pid> -` + addressArg + ` <address> [options]

EXAMPLES:
  Dump a request record as hex:
    $ ` + appName + ` -` + pidArg + ` 1234 -` + addressArg + ` 0x19fe40

  Decode a request record:
    $ ` + appName + ` -` + pidArg + ` 1234 -` + addressArg + ` 0x19fe40 -` + outputFormatArg + ` ` + msgFormat + `
    unused: 0x0 | transport handle: 0x0 | padding: 0x0 0x0 | request code: 51 | payload address: 0x10 | payload value: 0x20
    0x00 Unused               00000000
    ...

  Disassemble 16 bytes at an address:
    $ ` + appName + ` -` + pidArg + ` 1234 -` + addressArg + ` 0x401000 -` + lengthArg + ` 16 -` + disassArg + `

  Write the 4-byte value 1:
    $ ` + appName + ` -` + pidArg + ` 1234 -` + addressArg + ` 0x19fe80 -` + writeArg + ` '01 00 00 00'

OPTIONS
`
)

func main() {
	log.SetFlags(0)

	err := mainWithError()
	if err != nil {
		log.Fatalln("fatal:", err)
	}
}

func mainWithError() error {
	help := flag.Bool(
		helpArg,
		false,
		"Display this information")

	pid := flag.Uint(
		pidArg,
		0,
		"The process ID")

	addressStr := flag.String(
		addressArg,
		"",
		"The address to read or write (use a 0x prefix for hex)")

	length := flag.Int(
		lengthArg,
		wire.Size,
		"The number of bytes to read")

	outputFormat := flag.String(
		outputFormatArg,
		hexFormat,
		fmt.Sprintf("The output format ('%s', '%s', '%s', '%s')",
			hexFormat, goFormat, msgFormat, jsonFormat))

	disass := flag.Bool(
		disassArg,
		false,
		"Disassemble the data as x86 in Intel syntax")

	bits := flag.Int(
		bitsArg,
		32,
		"The target's x86 processor mode. It sets the address size and the mode used by -"+disassArg)

	writeHex := flag.String(
		writeArg,
		"",
		"Write this hex data instead of reading")

	flag.Parse()

	if *help {
		os.Stderr.WriteString(usage)
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *pid == 0 {
		return fmt.Errorf("please specify a process ID using -%s", pidArg)
	}

	var pointerMaker memory.PointerMaker
	switch *bits {
	case 16, 32:
		pointerMaker = memory.PointerMakerForX86_32()
	case 64:
		pointerMaker = memory.PointerMakerForX86_64()
	default:
		return fmt.Errorf("unsupported x86 processor mode: %d bits", *bits)
	}

	address, err := pointerMaker.ParseUint(*addressStr)
	if err != nil {
		return fmt.Errorf("failed to parse address - %w", err)
	}

	proc := memory.OpenOrExit(uint32(*pid))
	defer proc.Close()

	if *writeHex != "" {
		data, err := conv.HexArrayToBytes(strings.NewReader(*writeHex))
		if err != nil {
			return fmt.Errorf("failed to parse data to write - %w", err)
		}

		err = proc.Write(address.Uintptr(), data)
		if err != nil {
			return err
		}

		log.Printf("wrote %d bytes to 0x%x", len(data), address.Uint())

		return nil
	}

	if *outputFormat == msgFormat || *outputFormat == jsonFormat {
		*length = wire.Size
	}

	data, err := proc.Read(address.Uintptr(), *length)
	if err != nil {
		return err
	}

	if *disass {
		return disassemble(data, address.Uint(), *bits)
	}

	switch *outputFormat {
	case hexFormat:
		os.Stdout.WriteString(hex.Dump(data))
	case goFormat:
		fmt.Println(conv.BytesToGoSlice(data, 8))
	case msgFormat:
		return printMessage(data)
	case jsonFormat:
		msg, err := wire.Decode(data)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(msg)
	default:
		return fmt.Errorf("unsupported output format: %q", *outputFormat)
	}

	return nil
}

func disassemble(data []byte, baseAddress uint64, bits int) error {
	disassembler, err := asmkit.NewDisassembler(asmkit.Config{
		Bits:        bits,
		Syntax:      asmkit.IntelSyntax,
		BaseAddress: baseAddress,
	})
	if err != nil {
		return err
	}

	return disassembler.All(data, func(inst asmkit.Inst) error {
		_, err := fmt.Printf("0x%08x  %-20x  %s\n", inst.Address, inst.Bin, inst.Assembly)
		return err
	})
}

func printMessage(data []byte) error {
	msg, err := wire.Decode(data)
	if err != nil {
		return err
	}

	fmt.Println(msg)

	offset := 0

	_, err = wire.EncodeWithFieldInfo(msg, func(info bstruct.FieldInfo) error {
		fmt.Printf("0x%02x %-20s %x\n", offset, info.Name, info.Value)
		offset += len(info.Value)
		return nil
	})

	return err
}
