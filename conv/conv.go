// Package conv converts between raw bytes and their textual forms.
package conv

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// HexArrayToBytes decodes hex-encoded data into a []byte.
//
// Characters that are not hex digits are ignored, as are C comments
// and "0x" prefixes. This allows it to parse plain hex pairs, a C
// array's contents or escaped strings such as "\x31\xc0".
func HexArrayToBytes(source io.Reader) ([]byte, error) {
	data, err := io.ReadAll(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read hex data - %w", err)
	}

	digits := bytes.NewBuffer(nil)

	for i := 0; i < len(data); i++ {
		b := data[i]

		switch {
		case b == '/' && i+1 < len(data) && data[i+1] == '/':
			end := bytes.IndexByte(data[i:], '\n')
			if end < 0 {
				i = len(data)
			} else {
				i += end
			}
		case b == '/' && i+1 < len(data) && data[i+1] == '*':
			end := bytes.Index(data[i+2:], []byte("*/"))
			if end < 0 {
				return nil, fmt.Errorf("failed to find end of comment starting at offset %d", i)
			}

			i += 2 + end + 1
		case b == '0' && i+1 < len(data) && (data[i+1] == 'x' || data[i+1] == 'X') &&
			(i == 0 || !isHexChar(data[i-1])):
			i++
		case isHexChar(b):
			digits.WriteByte(b)
		}
	}

	if digits.Len()%2 != 0 {
		return nil, fmt.Errorf("hex data contains an odd number of digits (%d)", digits.Len())
	}

	decoded := make([]byte, digits.Len()/2)

	_, err = hex.Decode(decoded, digits.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to hex-decode data - %w", err)
	}

	return decoded, nil
}

// BytesToGoSlice formats b as a Go []byte literal with perLine
// bytes on each line. A perLine less than one puts every byte on
// a single line.
func BytesToGoSlice(b []byte, perLine int) string {
	if len(b) == 0 {
		return "[]byte{}"
	}

	if perLine < 1 {
		perLine = len(b)
	}

	buf := strings.Builder{}
	buf.WriteString("[]byte{\n")

	for i := 0; i < len(b); i += perLine {
		end := i + perLine
		if end > len(b) {
			end = len(b)
		}

		buf.WriteString("\t")

		for j, c := range b[i:end] {
			if j > 0 {
				buf.WriteString(" ")
			}

			fmt.Fprintf(&buf, "0x%02x,", c)
		}

		buf.WriteString("\n")
	}

	buf.WriteString("}")

	return buf.String()
}

func isHexChar(b byte) bool {
	return (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') || (b >= '0' && b <= '9')
}
