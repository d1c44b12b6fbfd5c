package conv

import (
	"fmt"
	"log"
	"strings"
)

func ExampleHexArrayToBytes() {
	cArrayContents := `/* handshake prefix */
// unused, transport handle
{0x00, 0x00, 0x00, 0x00, 0xcd, 0xab, 0x00, 0x00}
"\x33\x00"  // escaped
`

	b, err := HexArrayToBytes(strings.NewReader(cArrayContents))
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Printf("0x%x\n", b)

	// Output: 0x00000000cdab00003300
}

func ExampleBytesToGoSlice() {
	fmt.Println(BytesToGoSlice([]byte{0x31, 0xc0, 0x40, 0x89, 0xc3}, 4))

	// Output:
	// []byte{
	// 	0x31, 0xc0, 0x40, 0x89,
	// 	0xc3,
	// }
}
