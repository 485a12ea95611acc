package codec

import (
	"encoding/hex"
	"fmt"
	"reflect"
)

// numericConverter handles the signed fixed-width integer kinds. The byte form
// is big-endian with the sign bit flipped, which turns two's-complement
// ordering into unsigned lexicographic ordering; the string form is the
// lowercase hex of those same bytes. The reverted form complements the value
// (^x) before encoding: complement is a total order-inverting involution, so
// it holds for MinInt64 where negation would overflow.
type numericConverter struct{}

func numericWidth(k reflect.Kind) int {
	switch k {
	case reflect.Int8:
		return 1
	case reflect.Int16:
		return 2
	case reflect.Int32:
		return 4
	case reflect.Int64, reflect.Int:
		return 8
	default:
		return 0
	}
}

func (numericConverter) canConvert(t reflect.Type) bool {
	return numericWidth(t.Kind()) != 0
}

// encodeInt writes the low width bytes of x big-endian and flips the sign bit.
func encodeInt(x int64, width int) []byte {
	u := uint64(x)
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(u)
		u >>= 8
	}
	buf[0] ^= 0x80
	return buf
}

// decodeInt reverses encodeInt, sign-extending from the encoded width.
func decodeInt(data []byte, width int) int64 {
	var u uint64
	for i := 0; i < width; i++ {
		b := data[i]
		if i == 0 {
			b ^= 0x80
		}
		u = u<<8 | uint64(b)
	}
	shift := uint(64 - 8*width)
	return int64(u<<shift) >> shift
}

func (numericConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	x := v.Int()
	if reverted {
		x = ^x
	}
	return encodeInt(x, numericWidth(v.Kind())), nil
}

func (numericConverter) fromBytes(data []byte, t reflect.Type, reverted bool) (reflect.Value, error) {
	width := numericWidth(t.Kind())
	if len(data) != width {
		return reflect.Value{}, fmt.Errorf("%w: %s expects %d bytes, got %d", ErrUnconvertible, t, width, len(data))
	}
	x := decodeInt(data, width)
	if reverted {
		x = ^x
	}
	out := reflect.New(t).Elem()
	if out.OverflowInt(x) {
		return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", ErrUnconvertible, x, t)
	}
	out.SetInt(x)
	return out, nil
}

func (c numericConverter) toString(v reflect.Value, reverted bool) (string, error) {
	b, err := c.toBytes(v, reverted)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (c numericConverter) fromString(s string, t reflect.Type, reverted bool) (reflect.Value, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %s is not a hex-encoded %s", ErrUnconvertible, s, t)
	}
	return c.fromBytes(data, t, reverted)
}
