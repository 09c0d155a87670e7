package wire

import "encoding/binary"

// PutU16 writes a uint16 in little-endian order.
func PutU16(dst []byte, v uint16) { binary.LittleEndian.PutUint16(dst, v) }

// PutU32 writes a uint32 in little-endian order.
func PutU32(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }

// U16 reads a uint16 in little-endian order.
func U16(src []byte) uint16 { return binary.LittleEndian.Uint16(src) }

// U32 reads a uint32 in little-endian order.
func U32(src []byte) uint32 { return binary.LittleEndian.Uint32(src) }

// PutString writes s into dst, NUL-padding (or truncating) to len(dst).
func PutString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// TrimmedString decodes src as UTF-8 after trimming trailing NUL bytes only.
func TrimmedString(src []byte) string {
	end := len(src)
	for end > 0 && src[end-1] == 0 {
		end--
	}
	return string(src[:end])
}
