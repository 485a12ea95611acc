package codec

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// KeyField describes one field of a composite key, discovered from the
// `coltable:"key=N"` struct tag. Orders are 1-based, contiguous and unique.
// A field tagged `key=N,reverted` uses the inverse encoding so the composite
// sorts descending on that field.
type KeyField struct {
	Name     string
	Order    int
	Reverted bool
	Index    int
	Type     reflect.Type
}

var (
	keyFieldsMu    sync.RWMutex
	keyFieldsCache = make(map[reflect.Type][]KeyField)
)

// KeyFields returns the ordered key fields of a composite struct type. The
// discovery walks the struct tags once per type; results are cached
// copy-on-write.
func KeyFields(t reflect.Type) ([]KeyField, error) {
	keyFieldsMu.RLock()
	fields, ok := keyFieldsCache[t]
	keyFieldsMu.RUnlock()
	if ok {
		return fields, nil
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidKeySpec, t)
	}

	var discovered []KeyField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup("coltable")
		if !ok {
			continue
		}
		kf, isKey, err := parseKeyTag(tag)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s.%s: %v", ErrInvalidKeySpec, t, f.Name, err)
		}
		if !isKey {
			continue
		}
		if !f.IsExported() {
			return nil, fmt.Errorf("%w: key field %s.%s is unexported", ErrInvalidKeySpec, t, f.Name)
		}
		kf.Name = f.Name
		kf.Index = i
		kf.Type = f.Type
		discovered = append(discovered, kf)
	}

	sort.Slice(discovered, func(i, j int) bool { return discovered[i].Order < discovered[j].Order })
	for i, kf := range discovered {
		if kf.Order != i+1 {
			return nil, fmt.Errorf("%w: %s key orders must be contiguous from 1, got order %d at position %d",
				ErrInvalidKeySpec, t, kf.Order, i+1)
		}
	}

	keyFieldsMu.Lock()
	next := make(map[reflect.Type][]KeyField, len(keyFieldsCache)+1)
	for k, v := range keyFieldsCache {
		next[k] = v
	}
	next[t] = discovered
	keyFieldsCache = next
	keyFieldsMu.Unlock()

	return discovered, nil
}

func parseKeyTag(tag string) (KeyField, bool, error) {
	var kf KeyField
	isKey := false
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "key="):
			order, err := strconv.Atoi(strings.TrimPrefix(part, "key="))
			if err != nil || order < 1 {
				return kf, false, fmt.Errorf("bad key order %q", part)
			}
			kf.Order = order
			isKey = true
		case part == "reverted":
			kf.Reverted = true
		case part == "":
		default:
			return kf, false, fmt.Errorf("unknown tag element %q", part)
		}
	}
	if kf.Reverted && !isKey {
		return kf, false, fmt.Errorf("reverted is only valid on key fields")
	}
	return kf, isKey, nil
}

// compositeConverter encodes structs whose identity is an ordered set of key
// fields. The string form concatenates each field's encoding followed by the
// field separator, with the final field followed by the end-of-key separator
// instead. The byte form wraps the string form.
type compositeConverter struct{}

func (compositeConverter) canConvert(t reflect.Type) bool {
	fields, err := KeyFields(t)
	return err == nil && len(fields) > 0
}

func encodeField(v reflect.Value, reverted bool) (string, error) {
	if reverted {
		return ToStringReverted(v.Interface())
	}
	return ToString(v.Interface())
}

func (compositeConverter) toString(v reflect.Value, reverted bool) (string, error) {
	if reverted {
		return "", fmt.Errorf("%w: composite keys have no reverted form; revert individual fields instead", ErrUnconvertible)
	}
	fields, err := KeyFields(v.Type())
	if err != nil {
		return "", err
	}
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: %s has no key fields", ErrUnconvertible, v.Type())
	}
	var sb strings.Builder
	for i, kf := range fields {
		enc, err := encodeField(v.Field(kf.Index), kf.Reverted)
		if err != nil {
			return "", fmt.Errorf("key field %s: %w", kf.Name, err)
		}
		sb.WriteString(enc)
		if i == len(fields)-1 {
			sb.WriteString(KeyEndSeparator)
		} else {
			sb.WriteString(KeySeparator)
		}
	}
	return sb.String(), nil
}

func (c compositeConverter) toBytes(v reflect.Value, reverted bool) ([]byte, error) {
	s, err := c.toString(v, reverted)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (c compositeConverter) fromBytes(data []byte, t reflect.Type, reverted bool) (reflect.Value, error) {
	return c.fromString(string(data), t, reverted)
}

func (c compositeConverter) fromString(s string, t reflect.Type, reverted bool) (reflect.Value, error) {
	if reverted {
		return reflect.Value{}, fmt.Errorf("%w: composite keys have no reverted form", ErrUnconvertible)
	}
	cur := &keyCursor{s: s}
	v, err := decodeComposite(cur, t)
	if err != nil {
		return reflect.Value{}, err
	}
	if cur.pos != len(s) {
		return reflect.Value{}, fmt.Errorf("%w: trailing data after composite key of %s", ErrUnconvertible, t)
	}
	return v, nil
}

// keyCursor walks a composite key string field by field. Splitting is
// type-driven rather than a flat split on separators: a nested composite field
// consumes its own end-of-key separator before the parent reads the next
// field separator, which is how nesting depth is respected.
type keyCursor struct {
	s   string
	pos int
}

func (c *keyCursor) readScalar() (string, error) {
	idx := strings.IndexAny(c.s[c.pos:], KeySeparator+KeyEndSeparator)
	if idx < 0 {
		return "", fmt.Errorf("%w: unterminated key field", ErrUnconvertible)
	}
	out := c.s[c.pos : c.pos+idx]
	c.pos += idx
	return out, nil
}

func (c *keyCursor) expect(sep string) error {
	if !strings.HasPrefix(c.s[c.pos:], sep) {
		return fmt.Errorf("%w: malformed composite key at offset %d", ErrUnconvertible, c.pos)
	}
	c.pos += len(sep)
	return nil
}

func decodeComposite(cur *keyCursor, t reflect.Type) (reflect.Value, error) {
	fields, err := KeyFields(t)
	if err != nil {
		return reflect.Value{}, err
	}
	if len(fields) == 0 {
		return reflect.Value{}, fmt.Errorf("%w: %s has no key fields", ErrUnconvertible, t)
	}
	out := reflect.New(t).Elem()
	for i, kf := range fields {
		var fv reflect.Value
		if nested, nerr := KeyFields(kf.Type); nerr == nil && len(nested) > 0 {
			fv, err = decodeComposite(cur, kf.Type)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key field %s: %w", kf.Name, err)
			}
		} else {
			raw, rerr := cur.readScalar()
			if rerr != nil {
				return reflect.Value{}, fmt.Errorf("key field %s: %w", kf.Name, rerr)
			}
			var dec any
			if kf.Reverted {
				dec, err = FromStringReverted(raw, kf.Type)
			} else {
				dec, err = FromString(raw, kf.Type)
			}
			if err != nil {
				return reflect.Value{}, fmt.Errorf("key field %s: %w", kf.Name, err)
			}
			fv = reflect.ValueOf(dec)
		}
		sep := KeySeparator
		if i == len(fields)-1 {
			sep = KeyEndSeparator
		}
		if err := cur.expect(sep); err != nil {
			return reflect.Value{}, fmt.Errorf("key field %s: %w", kf.Name, err)
		}
		out.Field(kf.Index).Set(fv)
	}
	return out, nil
}
