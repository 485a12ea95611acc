// Package codec converts typed values to and from byte arrays and
// order-preserving strings. The string form of a value compares
// lexicographically the same way the value compares natively, which is what
// makes range scans over encoded row keys correct. Every ordered type also has
// a reverted form whose ordering is the exact inverse, for descending scans.
package codec

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

const (
	// KeySeparator terminates each non-final field of a composite key string.
	KeySeparator = ""
	// KeyEndSeparator terminates a fully specified composite key string, so a
	// complete key never matches as a prefix of a longer key.
	KeyEndSeparator = ""
)

// ErrUnconvertible reports that no converter claims a (value, type) pair, that
// encoded data is malformed for the expected type, or that the requested form
// is intrinsically lossy for the type (float and array string forms, reverted
// strings).
var ErrUnconvertible = errors.New("unconvertible value")

// ErrInvalidKeySpec reports a broken composite key declaration: missing,
// duplicated or non-contiguous key orders.
var ErrInvalidKeySpec = errors.New("invalid key specification")

// converter is one encoding strategy. Converters are tried in the fixed order
// of the converters slice; the first one claiming a type wins, and the result
// is memoized per concrete type.
type converter interface {
	canConvert(t reflect.Type) bool
	toBytes(v reflect.Value, reverted bool) ([]byte, error)
	fromBytes(data []byte, t reflect.Type, reverted bool) (reflect.Value, error)
	toString(v reflect.Value, reverted bool) (string, error)
	fromString(s string, t reflect.Type, reverted bool) (reflect.Value, error)
}

// Trial order matters: time.Time implements TextMarshaler and would otherwise
// be claimed by the enum converter, and []byte would be claimed by the array
// converter.
var converters = []converter{
	bytesConverter{},
	timeConverter{},
	enumConverter{},
	charConverter{},
	numericConverter{},
	boolConverter{},
	floatConverter{},
	stringConverter{},
	compositeConverter{},
	arrayConverter{},
}

var (
	resolveMu    sync.RWMutex
	resolveCache = make(map[reflect.Type]converter)
)

// resolve finds the converter for t, caching the result. The cache is updated
// copy-on-write so readers never block each other.
func resolve(t reflect.Type) (converter, error) {
	resolveMu.RLock()
	c, ok := resolveCache[t]
	resolveMu.RUnlock()
	if ok {
		if c == nil {
			return nil, fmt.Errorf("%w: no converter for type %s", ErrUnconvertible, t)
		}
		return c, nil
	}

	var found converter
	for _, cand := range converters {
		if cand.canConvert(t) {
			found = cand
			break
		}
	}

	resolveMu.Lock()
	next := make(map[reflect.Type]converter, len(resolveCache)+1)
	for k, v := range resolveCache {
		next[k] = v
	}
	next[t] = found
	resolveCache = next
	resolveMu.Unlock()

	if found == nil {
		return nil, fmt.Errorf("%w: no converter for type %s", ErrUnconvertible, t)
	}
	return found, nil
}

// CanConvert reports whether the codec knows how to handle t at all.
func CanConvert(t reflect.Type) bool {
	c, err := resolve(t)
	return err == nil && c != nil
}

func valueOf(v any) (reflect.Value, converter, error) {
	if v == nil {
		return reflect.Value{}, nil, fmt.Errorf("%w: nil value", ErrUnconvertible)
	}
	rv := reflect.ValueOf(v)
	c, err := resolve(rv.Type())
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return rv, c, nil
}

// ToBytes encodes v into its byte representation.
func ToBytes(v any) ([]byte, error) {
	rv, c, err := valueOf(v)
	if err != nil {
		return nil, err
	}
	return c.toBytes(rv, false)
}

// ToBytesReverted encodes v into the byte representation with inverse ordering.
func ToBytesReverted(v any) ([]byte, error) {
	rv, c, err := valueOf(v)
	if err != nil {
		return nil, err
	}
	return c.toBytes(rv, true)
}

// FromBytes decodes data into a value of type t.
func FromBytes(data []byte, t reflect.Type) (any, error) {
	c, err := resolve(t)
	if err != nil {
		return nil, err
	}
	rv, err := c.fromBytes(data, t, false)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// FromBytesReverted decodes reverted-form data into a value of type t.
func FromBytesReverted(data []byte, t reflect.Type) (any, error) {
	c, err := resolve(t)
	if err != nil {
		return nil, err
	}
	rv, err := c.fromBytes(data, t, true)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// ToString encodes v into its order-preserving string representation.
func ToString(v any) (string, error) {
	rv, c, err := valueOf(v)
	if err != nil {
		return "", err
	}
	return c.toString(rv, false)
}

// ToStringReverted encodes v into the string representation with inverse
// ordering.
func ToStringReverted(v any) (string, error) {
	rv, c, err := valueOf(v)
	if err != nil {
		return "", err
	}
	return c.toString(rv, true)
}

// FromString decodes an order-preserving string into a value of type t.
func FromString(s string, t reflect.Type) (any, error) {
	c, err := resolve(t)
	if err != nil {
		return nil, err
	}
	rv, err := c.fromString(s, t, false)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// FromStringReverted decodes a reverted-form string into a value of type t.
func FromStringReverted(s string, t reflect.Type) (any, error) {
	c, err := resolve(t)
	if err != nil {
		return nil, err
	}
	rv, err := c.fromString(s, t, true)
	if err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}
