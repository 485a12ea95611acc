package codec

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// arrayConverter encodes slices and arrays as a uvarint element count followed
// by length-prefixed per-element encodings. Length prefixes round-trip
// arbitrary element bytes without reserving a separator. There is no string
// form: a delimiter join of variable-length elements is not sort-order-safe,
// so arrays are refused as key components.
type arrayConverter struct{}

func (arrayConverter) canConvert(t reflect.Type) bool {
	if k := t.Kind(); k != reflect.Slice && k != reflect.Array {
		return false
	}
	return CanConvert(t.Elem())
}

func (arrayConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	if reverted {
		return nil, fmt.Errorf("%w: arrays have no reverted form", ErrUnconvertible)
	}
	n := v.Len()
	out := binary.AppendUvarint(nil, uint64(n))
	for i := 0; i < n; i++ {
		enc, err := ToBytes(v.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = binary.AppendUvarint(out, uint64(len(enc)))
		out = append(out, enc...)
	}
	return out, nil
}

func (arrayConverter) fromBytes(data []byte, t reflect.Type, reverted bool) (reflect.Value, error) {
	if reverted {
		return reflect.Value{}, fmt.Errorf("%w: arrays have no reverted form", ErrUnconvertible)
	}
	count, read := binary.Uvarint(data)
	if read <= 0 {
		return reflect.Value{}, fmt.Errorf("%w: malformed array length", ErrUnconvertible)
	}
	data = data[read:]

	// Every element costs at least its one-byte length prefix, so a count
	// beyond the remaining input is malformed, not an allocation request.
	if count > uint64(len(data)) {
		return reflect.Value{}, fmt.Errorf("%w: array count %d exceeds %d remaining bytes",
			ErrUnconvertible, count, len(data))
	}

	elem := t.Elem()
	var out reflect.Value
	switch t.Kind() {
	case reflect.Array:
		if count != uint64(t.Len()) {
			return reflect.Value{}, fmt.Errorf("%w: array of %s expects %d elements, got %d",
				ErrUnconvertible, elem, t.Len(), count)
		}
		out = reflect.New(t).Elem()
	default:
		out = reflect.MakeSlice(t, int(count), int(count))
	}

	for i := 0; i < int(count); i++ {
		size, read := binary.Uvarint(data)
		if read <= 0 || uint64(len(data)-read) < size {
			return reflect.Value{}, fmt.Errorf("%w: truncated array element %d", ErrUnconvertible, i)
		}
		data = data[read:]
		dec, err := FromBytes(data[:size], elem)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(dec))
		data = data[size:]
	}
	if len(data) != 0 {
		return reflect.Value{}, fmt.Errorf("%w: trailing data after array", ErrUnconvertible)
	}
	return out, nil
}

func (arrayConverter) toString(reflect.Value, bool) (string, error) {
	return "", fmt.Errorf("%w: arrays have no order-preserving string form", ErrUnconvertible)
}

func (arrayConverter) fromString(string, reflect.Type, bool) (reflect.Value, error) {
	return reflect.Value{}, fmt.Errorf("%w: arrays have no order-preserving string form", ErrUnconvertible)
}
