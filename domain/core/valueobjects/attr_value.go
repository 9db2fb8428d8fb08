package valueobjects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	pkgerrors "grapheditor/pkg/errors"
)

// ValueKind is the concrete type of an attribute value
type ValueKind string

const (
	KindBoolean    ValueKind = "boolean"
	KindNumber     ValueKind = "number"
	KindText       ValueKind = "text"
	KindStructured ValueKind = "structured"
)

// ParseValueKind validates a kind name coming from the UI
func ParseValueKind(s string) (ValueKind, error) {
	switch ValueKind(strings.ToLower(s)) {
	case KindBoolean, "bool":
		return KindBoolean, nil
	case KindNumber, "num":
		return KindNumber, nil
	case KindText, "string":
		return KindText, nil
	case KindStructured, "dict", "json":
		return KindStructured, nil
	}
	return "", pkgerrors.NewValidationErrorf("unknown value kind %q", s)
}

// AttrValue is an immutable attribute value. Structured values are held as
// canonical JSON so that two values are equal exactly when == says so.
type AttrValue struct {
	kind ValueKind
	b    bool
	n    float64
	s    string
}

// BoolValue creates a boolean attribute value
func BoolValue(b bool) AttrValue {
	return AttrValue{kind: KindBoolean, b: b}
}

// NumberValue creates a numeric attribute value
func NumberValue(n float64) (AttrValue, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return AttrValue{}, pkgerrors.NewValidationError("number attribute must be finite")
	}
	return AttrValue{kind: KindNumber, n: n}, nil
}

// MustNumber is NumberValue for literals
func MustNumber(n float64) AttrValue {
	v, err := NumberValue(n)
	if err != nil {
		panic(err)
	}
	return v
}

// TextValue creates a free text attribute value
func TextValue(s string) AttrValue {
	return AttrValue{kind: KindText, s: s}
}

// StructuredValue parses a strict JSON object or array
func StructuredValue(raw string) (AttrValue, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil {
		return AttrValue{}, pkgerrors.NewValidationErrorf("structured value is not valid JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return AttrValue{}, pkgerrors.NewValidationError("structured value has trailing data")
	}
	return structuredFromDecoded(parsed)
}

func structuredFromDecoded(parsed interface{}) (AttrValue, error) {
	switch parsed.(type) {
	case map[string]interface{}, []interface{}:
	default:
		return AttrValue{}, pkgerrors.NewValidationError("structured value must be a JSON object or array")
	}
	canonical, err := canonicalJSON(parsed)
	if err != nil {
		return AttrValue{}, pkgerrors.NewValidationError("structured value cannot be encoded").WithCause(err)
	}
	return AttrValue{kind: KindStructured, s: canonical}, nil
}

// ParseAs coerces raw UI input into a value of the requested kind
func ParseAs(kind ValueKind, raw string) (AttrValue, error) {
	switch kind {
	case KindBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return AttrValue{}, pkgerrors.NewValidationErrorf("%q is not a boolean", raw)
		}
		return BoolValue(b), nil
	case KindNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return AttrValue{}, pkgerrors.NewValidationErrorf("%q is not a number", raw)
		}
		return NumberValue(n)
	case KindText:
		return TextValue(raw), nil
	case KindStructured:
		return StructuredValue(raw)
	}
	return AttrValue{}, pkgerrors.NewValidationErrorf("unknown value kind %q", kind)
}

// FromInterface converts a decoded JSON or YAML value into an AttrValue
func FromInterface(v interface{}) (AttrValue, error) {
	switch t := v.(type) {
	case bool:
		return BoolValue(t), nil
	case string:
		return TextValue(t), nil
	case float64:
		return NumberValue(t)
	case float32:
		return NumberValue(float64(t))
	case int:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case uint64:
		return NumberValue(float64(t))
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return AttrValue{}, pkgerrors.NewValidationErrorf("%q is not a number", t.String())
		}
		return NumberValue(n)
	case map[string]interface{}, []interface{}:
		return structuredFromDecoded(t)
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(t))
		for k, val := range t {
			converted[fmt.Sprint(k)] = val
		}
		return structuredFromDecoded(converted)
	case nil:
		return AttrValue{}, pkgerrors.NewValidationError("attribute value cannot be null")
	}
	return AttrValue{}, pkgerrors.NewValidationErrorf("unsupported attribute value type %T", v)
}

// Kind returns the value kind
func (v AttrValue) Kind() ValueKind {
	return v.kind
}

// IsZero checks if the value was never set
func (v AttrValue) IsZero() bool {
	return v.kind == ""
}

// Bool returns the boolean payload
func (v AttrValue) Bool() bool {
	return v.b
}

// Number returns the numeric payload
func (v AttrValue) Number() float64 {
	return v.n
}

// Text returns the text payload, or the canonical JSON of a structured value
func (v AttrValue) Text() string {
	return v.s
}

// Equals compares by value
func (v AttrValue) Equals(other AttrValue) bool {
	return v == other
}

// Key is a canonical string used to count distinct values across a selection.
// Values of different kinds never share a key.
func (v AttrValue) Key() string {
	switch v.kind {
	case KindBoolean:
		return "b:" + strconv.FormatBool(v.b)
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindText:
		return "t:" + v.s
	case KindStructured:
		return "s:" + v.s
	}
	return ""
}

// String renders the value the way the attribute panel displays it
func (v AttrValue) String() string {
	switch v.kind {
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	}
	return v.s
}

// Interface returns the value as a plain Go value suitable for encoders
func (v AttrValue) Interface() interface{} {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n
	case KindText:
		return v.s
	case KindStructured:
		var out interface{}
		_ = json.Unmarshal([]byte(v.s), &out)
		return out
	}
	return nil
}

// MarshalJSON implements json.Marshaler
func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindStructured:
		return []byte(v.s), nil
	case "":
		return []byte("null"), nil
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler
func (v *AttrValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return pkgerrors.NewValidationError("attribute value is not valid JSON").WithCause(err)
	}
	parsed, err := FromInterface(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (v AttrValue) MarshalYAML() (interface{}, error) {
	return v.Interface(), nil
}

// canonicalJSON re-encodes a decoded value; encoding/json sorts map keys.
func canonicalJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
