package codec

import (
	"encoding"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

var rawBytesType = reflect.TypeOf([]byte(nil))

// bytesConverter passes []byte values through untouched. Raw bytes carry no
// ordering contract, so the string forms are refused.
type bytesConverter struct{}

func (bytesConverter) canConvert(t reflect.Type) bool { return t == rawBytesType }

func (bytesConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	if reverted {
		return nil, fmt.Errorf("%w: []byte has no reverted form", ErrUnconvertible)
	}
	b := v.Bytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (bytesConverter) fromBytes(data []byte, _ reflect.Type, reverted bool) (reflect.Value, error) {
	if reverted {
		return reflect.Value{}, fmt.Errorf("%w: []byte has no reverted form", ErrUnconvertible)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return reflect.ValueOf(out), nil
}

func (bytesConverter) toString(reflect.Value, bool) (string, error) {
	return "", fmt.Errorf("%w: []byte has no order-preserving string form", ErrUnconvertible)
}

func (bytesConverter) fromString(string, reflect.Type, bool) (reflect.Value, error) {
	return reflect.Value{}, fmt.Errorf("%w: []byte has no order-preserving string form", ErrUnconvertible)
}

// boolConverter encodes false as 0x00/"0" and true as 0x01/"1".
type boolConverter struct{}

func (boolConverter) canConvert(t reflect.Type) bool { return t.Kind() == reflect.Bool }

func boolByte(b bool, reverted bool) byte {
	if b != reverted {
		return 1
	}
	return 0
}

func (boolConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	return []byte{boolByte(v.Bool(), reverted)}, nil
}

func (boolConverter) fromBytes(data []byte, t reflect.Type, reverted bool) (reflect.Value, error) {
	if len(data) != 1 || data[0] > 1 {
		return reflect.Value{}, fmt.Errorf("%w: invalid bool encoding", ErrUnconvertible)
	}
	out := reflect.New(t).Elem()
	out.SetBool((data[0] == 1) != reverted)
	return out, nil
}

func (boolConverter) toString(v reflect.Value, reverted bool) (string, error) {
	return string('0' + rune(boolByte(v.Bool(), reverted))), nil
}

func (c boolConverter) fromString(s string, t reflect.Type, reverted bool) (reflect.Value, error) {
	if len(s) != 1 || (s[0] != '0' && s[0] != '1') {
		return reflect.Value{}, fmt.Errorf("%w: invalid bool encoding %q", ErrUnconvertible, s)
	}
	return c.fromBytes([]byte{s[0] - '0'}, t, reverted)
}

// reservedChar is excluded from valid character values; it is kept free as an
// internal sentinel the way the maximum char value is in the source model.
const reservedChar = 0xFFFF

// charConverter gives uint16 a fixed two-byte big-endian encoding. Unsigned
// values need no sign-bit flip to order correctly.
type charConverter struct{}

func (charConverter) canConvert(t reflect.Type) bool { return t.Kind() == reflect.Uint16 }

func (charConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	u := uint16(v.Uint())
	if u == reservedChar {
		return nil, fmt.Errorf("%w: char value 0x%04x is reserved", ErrUnconvertible, u)
	}
	if reverted {
		u = ^u
	}
	return []byte{byte(u >> 8), byte(u)}, nil
}

func (charConverter) fromBytes(data []byte, t reflect.Type, reverted bool) (reflect.Value, error) {
	if len(data) != 2 {
		return reflect.Value{}, fmt.Errorf("%w: char expects 2 bytes, got %d", ErrUnconvertible, len(data))
	}
	u := uint16(data[0])<<8 | uint16(data[1])
	if reverted {
		u = ^u
	}
	if u == reservedChar {
		return reflect.Value{}, fmt.Errorf("%w: char value 0x%04x is reserved", ErrUnconvertible, u)
	}
	out := reflect.New(t).Elem()
	out.SetUint(uint64(u))
	return out, nil
}

func (c charConverter) toString(v reflect.Value, reverted bool) (string, error) {
	b, err := c.toBytes(v, reverted)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (c charConverter) fromString(s string, t reflect.Type, reverted bool) (reflect.Value, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %q is not a hex-encoded char", ErrUnconvertible, s)
	}
	return c.fromBytes(data, t, reverted)
}

// floatConverter round-trips float32/float64 through their IEEE 754 bits.
// Floats are deliberately excluded from ordered range queries, so the string
// and reverted forms are refused.
type floatConverter struct{}

func (floatConverter) canConvert(t reflect.Type) bool {
	k := t.Kind()
	return k == reflect.Float32 || k == reflect.Float64
}

func (floatConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	if reverted {
		return nil, fmt.Errorf("%w: floats have no reverted form", ErrUnconvertible)
	}
	if v.Kind() == reflect.Float32 {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(float32(v.Float())))
		return buf, nil
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(v.Float()))
	return buf, nil
}

func (floatConverter) fromBytes(data []byte, t reflect.Type, reverted bool) (reflect.Value, error) {
	if reverted {
		return reflect.Value{}, fmt.Errorf("%w: floats have no reverted form", ErrUnconvertible)
	}
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Float32:
		if len(data) != 4 {
			return reflect.Value{}, fmt.Errorf("%w: float32 expects 4 bytes, got %d", ErrUnconvertible, len(data))
		}
		out.SetFloat(float64(math.Float32frombits(binary.BigEndian.Uint32(data))))
	default:
		if len(data) != 8 {
			return reflect.Value{}, fmt.Errorf("%w: float64 expects 8 bytes, got %d", ErrUnconvertible, len(data))
		}
		out.SetFloat(math.Float64frombits(binary.BigEndian.Uint64(data)))
	}
	return out, nil
}

func (floatConverter) toString(reflect.Value, bool) (string, error) {
	return "", fmt.Errorf("%w: floats have no order-preserving string form", ErrUnconvertible)
}

func (floatConverter) fromString(string, reflect.Type, bool) (reflect.Value, error) {
	return reflect.Value{}, fmt.Errorf("%w: floats have no order-preserving string form", ErrUnconvertible)
}

// stringConverter passes strings through: they are already ordered. A string
// used in a key must not contain the key separators or NUL, which backend
// adapters reserve as their own key delimiter; there is no sound
// variable-length inverse encoding, so the reverted form is refused.
type stringConverter struct{}

func (stringConverter) canConvert(t reflect.Type) bool { return t.Kind() == reflect.String }

func (c stringConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	s, err := c.toString(v, reverted)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (c stringConverter) fromBytes(data []byte, t reflect.Type, reverted bool) (reflect.Value, error) {
	return c.fromString(string(data), t, reverted)
}

func (stringConverter) toString(v reflect.Value, reverted bool) (string, error) {
	if reverted {
		return "", fmt.Errorf("%w: strings have no reverted form", ErrUnconvertible)
	}
	s := v.String()
	if strings.ContainsAny(s, "\x00"+KeySeparator+KeyEndSeparator) {
		return "", fmt.Errorf("%w: string contains a reserved key byte", ErrUnconvertible)
	}
	return s, nil
}

func (stringConverter) fromString(s string, t reflect.Type, reverted bool) (reflect.Value, error) {
	if reverted {
		return reflect.Value{}, fmt.Errorf("%w: strings have no reverted form", ErrUnconvertible)
	}
	out := reflect.New(t).Elem()
	out.SetString(s)
	return out, nil
}

var timeType = reflect.TypeOf(time.Time{})

// timeConverter encodes instants as their epoch-millisecond int64. Anything
// finer than a millisecond does not survive the round trip.
type timeConverter struct{}

func (timeConverter) canConvert(t reflect.Type) bool { return t == timeType }

func (timeConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	ms := v.Interface().(time.Time).UnixMilli()
	if reverted {
		ms = ^ms
	}
	return encodeInt(ms, 8), nil
}

func (c timeConverter) fromBytes(data []byte, _ reflect.Type, reverted bool) (reflect.Value, error) {
	if len(data) != 8 {
		return reflect.Value{}, fmt.Errorf("%w: time expects 8 bytes, got %d", ErrUnconvertible, len(data))
	}
	ms := decodeInt(data, 8)
	if reverted {
		ms = ^ms
	}
	return reflect.ValueOf(time.UnixMilli(ms).UTC()), nil
}

func (c timeConverter) toString(v reflect.Value, reverted bool) (string, error) {
	b, err := c.toBytes(v, reverted)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (c timeConverter) fromString(s string, t reflect.Type, reverted bool) (reflect.Value, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %q is not a hex-encoded time", ErrUnconvertible, s)
	}
	return c.fromBytes(data, t, reverted)
}

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// enumConverter covers enum-like types: anything that marshals to and from a
// symbolic text name. The name itself is the encoding, matching how the source
// model stores enum constants.
type enumConverter struct{}

func (enumConverter) canConvert(t reflect.Type) bool {
	return t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func (c enumConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	s, err := c.toString(v, reverted)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (c enumConverter) fromBytes(data []byte, t reflect.Type, reverted bool) (reflect.Value, error) {
	return c.fromString(string(data), t, reverted)
}

func (enumConverter) toString(v reflect.Value, reverted bool) (string, error) {
	if reverted {
		return "", fmt.Errorf("%w: enums have no reverted form", ErrUnconvertible)
	}
	name, err := v.Interface().(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnconvertible, err)
	}
	if strings.ContainsAny(string(name), "\x00"+KeySeparator+KeyEndSeparator) {
		return "", fmt.Errorf("%w: enum name contains a reserved key byte", ErrUnconvertible)
	}
	return string(name), nil
}

func (enumConverter) fromString(s string, t reflect.Type, reverted bool) (reflect.Value, error) {
	if reverted {
		return reflect.Value{}, fmt.Errorf("%w: enums have no reverted form", ErrUnconvertible)
	}
	p := reflect.New(t)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrUnconvertible, err)
	}
	return p.Elem(), nil
}
