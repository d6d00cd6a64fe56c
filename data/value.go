package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

type ValueKind int

const (
	NullValue ValueKind = iota
	StringValue
	NumberValue
	BoolValue
	// Objects and arrays, kept verbatim.
	RawValue
)

func (kind ValueKind) String() string {
	switch kind {
	case NullValue:
		return "null"
	case StringValue:
		return "string"
	case NumberValue:
		return "number"
	case BoolValue:
		return "bool"
	case RawValue:
		return "raw"
	}
	return "Out of range"
}

// An untyped vendor value (string, number, boolean, ...) tagged with the JSON kind it arrived as.
// The zero value is null.
type Value struct {
	kind ValueKind
	text string
	b    bool
}

func StringOf(s string) Value {
	return Value{kind: StringValue, text: s}
}

func NumberOf(n int64) Value {
	return Value{kind: NumberValue, text: strconv.FormatInt(n, 10)}
}

func BoolOf(b bool) Value {
	return Value{kind: BoolValue, b: b}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

// Stringification of the value. Booleans become "true"/"false", numbers keep their literal form.
func (v Value) String() string {
	switch v.kind {
	case BoolValue:
		return strconv.FormatBool(v.b)
	case NullValue:
		return ""
	}
	return v.text
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case StringValue:
		return json.Marshal(v.text)
	case NumberValue, RawValue:
		return []byte(v.text), nil
	case BoolValue:
		return []byte(strconv.FormatBool(v.b)), nil
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return fmt.Errorf("error decoding empty value")
	}
	switch trimmed[0] {
	case 'n':
		*v = Value{kind: NullValue}
	case 't', 'f':
		var parsed bool
		if err := json.Unmarshal(trimmed, &parsed); err != nil {
			return fmt.Errorf("error decoding boolean value %s: %w", trimmed, err)
		}
		*v = BoolOf(parsed)
	case '"':
		var parsed string
		if err := json.Unmarshal(trimmed, &parsed); err != nil {
			return fmt.Errorf("error decoding string value %s: %w", trimmed, err)
		}
		*v = StringOf(parsed)
	case '{', '[':
		if !json.Valid(trimmed) {
			return fmt.Errorf("error decoding raw value %s", trimmed)
		}
		*v = Value{kind: RawValue, text: string(trimmed)}
	default:
		var parsed json.Number
		if err := json.Unmarshal(trimmed, &parsed); err != nil {
			return fmt.Errorf("error decoding number value %s: %w", trimmed, err)
		}
		*v = Value{kind: NumberValue, text: parsed.String()}
	}
	return nil
}
