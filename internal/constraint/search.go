package constraint

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/coltable/coltable-db/internal/codec"
)

// ErrInvalidSearch reports a broken search specification: a bound value for a
// field that is not a leading field, a leading field left unbound, or bounds
// on a field the key type does not have.
var ErrInvalidSearch = errors.New("invalid key search")

// Search derives a key range for a composite key type from a partial value
// assignment.
//
// known binds values to every field of lower order than the searched field,
// by field name. searched names the field being ranged over; start and end
// are its inclusive bounds, either of which may be nil. A bound may also be a
// previously built *Constraint, which embeds a sub-key range in place of an
// encoded value.
//
// With searched empty, known must bind every field and the result matches
// exactly the one fully specified key.
func Search(keyType reflect.Type, known map[string]any, searched string, start, end any) (*Constraint, error) {
	fields, err := codec.KeyFields(keyType)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s has no key fields", codec.ErrInvalidKeySpec, keyType)
	}

	leading := fields
	var target *codec.KeyField
	if searched != "" {
		for i := range fields {
			if fields[i].Name == searched {
				target = &fields[i]
				break
			}
		}
		if target == nil {
			return nil, fmt.Errorf("%w: %s has no key field %q", ErrInvalidSearch, keyType, searched)
		}
		leading = fields[:target.Order-1]
	} else if start != nil || end != nil {
		return nil, fmt.Errorf("%w: bounds given without a searched field", ErrInvalidSearch)
	}

	if len(known) != len(leading) {
		return nil, fmt.Errorf("%w: expected values for exactly %d leading field(s) of %s, got %d",
			ErrInvalidSearch, len(leading), keyType, len(known))
	}

	prefix, err := buildPrefix(keyType, leading, known, searched == "")
	if err != nil {
		return nil, err
	}

	if searched == "" {
		return Range(prefix, incrementLast(prefix)), nil
	}

	encStart, err := encodeBound(target, start, false)
	if err != nil {
		return nil, err
	}
	encEnd, err := encodeBound(target, end, true)
	if err != nil {
		return nil, err
	}
	if target.Reverted && encStart != nil && encEnd != nil && encStart.value > encEnd.value {
		// reverted fields invert the encoded order of the caller's bounds
		encStart, encEnd = encEnd, encStart
	}

	c := &Constraint{}
	switch {
	case encStart != nil:
		c.start, c.hasStart = prefix+encStart.value, true
	case prefix != "":
		c.start, c.hasStart = prefix, true
	}
	switch {
	case encEnd != nil:
		upper := prefix + encEnd.value
		if !encEnd.preIncremented {
			upper = incrementLast(upper)
		}
		c.end, c.hasEnd = upper, true
	case prefix != "":
		c.end, c.hasEnd = incrementLast(prefix), true
	}
	return c, nil
}

func buildPrefix(keyType reflect.Type, leading []codec.KeyField, known map[string]any, terminate bool) (string, error) {
	var sb strings.Builder
	for i, kf := range leading {
		v, ok := known[kf.Name]
		if !ok {
			return "", fmt.Errorf("%w: missing value for leading key field %s.%s", ErrInvalidSearch, keyType, kf.Name)
		}
		enc, err := encodeField(&kf, v)
		if err != nil {
			return "", err
		}
		if terminate && i == len(leading)-1 {
			sb.WriteString(enc + codec.KeyEndSeparator)
		} else {
			sb.WriteString(enc + codec.KeySeparator)
		}
	}
	return sb.String(), nil
}

func encodeField(kf *codec.KeyField, v any) (string, error) {
	if kf.Reverted {
		return codec.ToStringReverted(v)
	}
	return codec.ToString(v)
}

// bound is an encoded search bound. A bound embedded from a sub-key
// constraint already carries its increment and must not get another one.
type bound struct {
	value          string
	preIncremented bool
}

func encodeBound(kf *codec.KeyField, v any, upper bool) (*bound, error) {
	if v == nil {
		return nil, nil
	}
	if sub, ok := v.(*Constraint); ok {
		if upper {
			end, has := sub.End()
			if !has {
				return nil, nil
			}
			return &bound{value: end, preIncremented: true}, nil
		}
		start, has := sub.Start()
		if !has {
			return nil, nil
		}
		return &bound{value: start}, nil
	}
	enc, err := encodeField(kf, v)
	if err != nil {
		return nil, err
	}
	return &bound{value: enc}, nil
}

// incrementLast bumps the final rune of s by one code point, making a prefix
// bound inclusive of every key it prefixes.
func incrementLast(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size] + string(r+1)
}
