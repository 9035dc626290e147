package ash

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AttrKind discriminates the closed set of attribute value types.
type AttrKind uint8

const (
	KindString AttrKind = iota
	KindInt
	KindFloat
	KindBool
)

// AttrValue is a tagged attribute value. The closed sum (string, int,
// float, bool) makes the categorical-vs-numeric branching used by
// downstream measures exhaustive instead of a runtime type switch over
// arbitrary values.
//
// The zero value is the empty string.
type AttrValue struct {
	kind AttrKind
	s    string
	i    int64
	f    float64
	b    bool
}

// StringAttr wraps a categorical value.
func StringAttr(v string) AttrValue { return AttrValue{kind: KindString, s: v} }

// IntAttr wraps an integer value.
func IntAttr(v int64) AttrValue { return AttrValue{kind: KindInt, i: v} }

// FloatAttr wraps a floating point value.
func FloatAttr(v float64) AttrValue { return AttrValue{kind: KindFloat, f: v} }

// BoolAttr wraps a boolean value.
func BoolAttr(v bool) AttrValue { return AttrValue{kind: KindBool, b: v} }

// Kind returns the value's type tag.
func (v AttrValue) Kind() AttrKind { return v.kind }

// AsString returns the categorical value, ok reports whether the kind
// matches.
func (v AttrValue) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsInt returns the integer value, ok reports whether the kind matches.
func (v AttrValue) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float value, ok reports whether the kind matches.
func (v AttrValue) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsBool returns the boolean value, ok reports whether the kind matches.
func (v AttrValue) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// Categorical reports whether the value is a string.
func (v AttrValue) Categorical() bool { return v.kind == KindString }

// Number returns the value as a float64 for either numeric kind.
func (v AttrValue) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Equal reports whether two values have the same kind and payload.
func (v AttrValue) Equal(o AttrValue) bool {
	return v == o
}

// String renders the value for display.
func (v AttrValue) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// MarshalJSON encodes the value as its native JSON type.
func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON decodes a JSON scalar, mapping numbers without a fraction
// or exponent to KindInt and the rest to KindFloat.
func (v *AttrValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = StringAttr(x)
	case bool:
		*v = BoolAttr(x)
	case json.Number:
		if i, err := x.Int64(); err == nil && !strings.ContainsAny(x.String(), ".eE") {
			*v = IntAttr(i)
			return nil
		}
		f, err := x.Float64()
		if err != nil {
			return err
		}
		*v = FloatAttr(f)
	default:
		return fmt.Errorf("attribute value must be a JSON scalar, got %T", raw)
	}
	return nil
}

// Attrs is an attribute bag: attribute name to tagged value.
type Attrs map[string]AttrValue

// Clone returns an independent copy of the bag.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
