package version

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  ProtocolVersion
	}{
		{"1.0", ProtocolVersion{1, 0}},
		{"1.4", ProtocolVersion{1, 4}},
		{"10.23", ProtocolVersion{10, 23}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if v != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, v, tt.want)
			}
			if v.String() != tt.input {
				t.Errorf("String() = %q, want %q", v.String(), tt.input)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{"", "1", "abc", "1.0.0", "1.x", "-1.0", ".1", "70000.0"} {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("Parse(%q) should return error", input)
			}
		})
	}
}

func TestCompatible(t *testing.T) {
	v10 := ProtocolVersion{1, 0}
	v11 := ProtocolVersion{1, 1}
	v20 := ProtocolVersion{2, 0}

	if !v10.Compatible(v11) || !v11.Compatible(v10) {
		t.Error("minor versions of the same major should be compatible")
	}
	if v10.Compatible(v20) || v20.Compatible(v10) {
		t.Error("different major versions should not be compatible")
	}
}

func TestCurrentParses(t *testing.T) {
	if _, err := Parse(Current); err != nil {
		t.Fatalf("Parse(Current) returned error: %v", err)
	}
}

func TestCheckPeer(t *testing.T) {
	tests := []struct {
		peer    string
		wantErr bool
	}{
		{"", false},
		{Current, false},
		{"1.7", false},
		{"2.0", true},
		{"0.9", true},
		{"one", true},
	}

	for _, tt := range tests {
		t.Run(tt.peer, func(t *testing.T) {
			err := CheckPeer(tt.peer)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPeer(%q) error = %v, wantErr %v", tt.peer, err, tt.wantErr)
			}
		})
	}
}
