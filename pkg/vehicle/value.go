package vehicle

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// RawValue is the typed payload of a property value.
type RawValue struct {
	Int32Values []int32   `cbor:"1,keyasint,omitempty"`
	FloatValues []float32 `cbor:"2,keyasint,omitempty"`
	Int64Values []int64   `cbor:"3,keyasint,omitempty"`
	ByteValues  []byte    `cbor:"4,keyasint,omitempty"`
	StringValue string    `cbor:"5,keyasint,omitempty"`
}

// Int32 returns a RawValue holding the given int32 values.
func Int32(v ...int32) RawValue { return RawValue{Int32Values: v} }

// Int64 returns a RawValue holding the given int64 values.
func Int64(v ...int64) RawValue { return RawValue{Int64Values: v} }

// Float returns a RawValue holding the given float values.
func Float(v ...float32) RawValue { return RawValue{FloatValues: v} }

// Bool returns a RawValue holding a boolean.
func Bool(b bool) RawValue {
	if b {
		return Int32(1)
	}
	return Int32(0)
}

// Str returns a RawValue holding a string.
func Str(s string) RawValue { return RawValue{StringValue: s} }

// Clone returns a deep copy.
func (v RawValue) Clone() RawValue {
	return RawValue{
		Int32Values: slices.Clone(v.Int32Values),
		FloatValues: slices.Clone(v.FloatValues),
		Int64Values: slices.Clone(v.Int64Values),
		ByteValues:  bytes.Clone(v.ByteValues),
		StringValue: v.StringValue,
	}
}

// Equal reports whether two payloads hold the same values.
func (v RawValue) Equal(o RawValue) bool {
	return slices.Equal(v.Int32Values, o.Int32Values) &&
		slices.Equal(v.FloatValues, o.FloatValues) &&
		slices.Equal(v.Int64Values, o.Int64Values) &&
		bytes.Equal(v.ByteValues, o.ByteValues) &&
		v.StringValue == o.StringValue
}

// String renders the populated fields, or "<empty>".
func (v RawValue) String() string {
	var parts []string
	if len(v.Int32Values) > 0 {
		parts = append(parts, fmt.Sprint(v.Int32Values))
	}
	if len(v.Int64Values) > 0 {
		parts = append(parts, fmt.Sprint(v.Int64Values))
	}
	if len(v.FloatValues) > 0 {
		parts = append(parts, fmt.Sprint(v.FloatValues))
	}
	if len(v.ByteValues) > 0 {
		parts = append(parts, fmt.Sprintf("%d bytes", len(v.ByteValues)))
	}
	if v.StringValue != "" {
		parts = append(parts, strconv.Quote(v.StringValue))
	}
	if len(parts) == 0 {
		return "<empty>"
	}
	return strings.Join(parts, " ")
}

// PropertyValue is a value of one (property, area) at a point in time.
type PropertyValue struct {
	Property  PropertyID `cbor:"1,keyasint"`
	AreaID    int32      `cbor:"2,keyasint"`
	Timestamp int64      `cbor:"3,keyasint,omitempty"` // nanoseconds
	Value     RawValue   `cbor:"4,keyasint"`
}

// Key returns the (property, area) pair of the value.
func (p PropertyValue) Key() Key {
	return Key{Property: p.Property, AreaID: p.AreaID}
}

// Clone returns a deep copy.
func (p PropertyValue) Clone() PropertyValue {
	p.Value = p.Value.Clone()
	return p
}

// Stamp returns a copy with Timestamp set to now if it is unset.
func (p PropertyValue) Stamp(now time.Time) PropertyValue {
	if p.Timestamp == 0 {
		p.Timestamp = now.UnixNano()
	}
	return p
}
