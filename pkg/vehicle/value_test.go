package vehicle

import (
	"testing"
	"time"
)

func TestRawValueClone(t *testing.T) {
	v := RawValue{Int32Values: []int32{1, 2}, ByteValues: []byte{3}}
	c := v.Clone()
	c.Int32Values[0] = 42
	c.ByteValues[0] = 42
	if v.Int32Values[0] != 1 || v.ByteValues[0] != 3 {
		t.Error("Clone shares slices with the original")
	}
	if !v.Equal(v.Clone()) {
		t.Error("clone should equal original")
	}
}

func TestRawValueEqual(t *testing.T) {
	if !Int32(1).Equal(Bool(true)) {
		t.Error("Bool(true) should equal Int32(1)")
	}
	if Float(1).Equal(Float(2)) {
		t.Error("different floats compared equal")
	}
	if Str("a").Equal(Str("b")) {
		t.Error("different strings compared equal")
	}
}

func TestPropertyValueStamp(t *testing.T) {
	now := time.Unix(10, 0)
	v := PropertyValue{Property: 1}.Stamp(now)
	if v.Timestamp != now.UnixNano() {
		t.Errorf("Timestamp = %d, want %d", v.Timestamp, now.UnixNano())
	}
	v2 := PropertyValue{Property: 1, Timestamp: 5}.Stamp(now)
	if v2.Timestamp != 5 {
		t.Errorf("Stamp overwrote an existing timestamp: %d", v2.Timestamp)
	}
}

func TestRawValueString(t *testing.T) {
	tests := []struct {
		name string
		v    RawValue
		want string
	}{
		{"empty", RawValue{}, "<empty>"},
		{"int32", Int32(1, 2), "[1 2]"},
		{"float", Float(21.5), "[21.5]"},
		{"string", Str("WVW"), `"WVW"`},
		{"bytes", RawValue{ByteValues: []byte{1, 2, 3}}, "3 bytes"},
		{"mixed", RawValue{Int32Values: []int32{7}, StringValue: "x"}, `[7] "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
