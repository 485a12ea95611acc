package codec

// Counters are stored with the same sign-flipped big-endian layout as key
// numerics, so a counter column scans in numeric order like any other encoded
// integer.

// EncodeCounter encodes x at the given width (1, 2, 4 or 8 bytes). Values
// outside the width wrap the way fixed-width integer arithmetic does.
func EncodeCounter(x int64, width int) []byte {
	return encodeInt(x, width)
}

// DecodeCounter decodes a counter of any natural width, sign-extending to
// int64. The caller is responsible for rejecting unnatural widths.
func DecodeCounter(data []byte) int64 {
	return decodeInt(data, len(data))
}
