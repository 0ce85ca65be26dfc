package interactive

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Names resolves property names.
type Names interface {
	Lookup(name string) (vehicle.PropertyID, error)
	Name(prop vehicle.PropertyID) string
}

// parseProperty accepts a catalog name or a numeric id (decimal or 0x hex).
func parseProperty(names Names, s string) (vehicle.PropertyID, error) {
	if id, err := names.Lookup(strings.ToUpper(s)); err == nil {
		return id, nil
	}
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown property %q", s)
	}
	return vehicle.PropertyID(int32(uint32(n))), nil
}

func parseArea(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid area %q", s)
	}
	return int32(n), nil
}

// parseValue builds a payload of the kind the property type requires.
func parseValue(typ vehicle.PropertyType, args []string) (vehicle.RawValue, error) {
	if len(args) == 0 {
		return vehicle.RawValue{}, fmt.Errorf("value required")
	}
	switch typ {
	case vehicle.TypeBoolean:
		b, err := strconv.ParseBool(args[0])
		if err != nil {
			return vehicle.RawValue{}, fmt.Errorf("invalid boolean %q", args[0])
		}
		return vehicle.Bool(b), nil
	case vehicle.TypeInt32, vehicle.TypeInt32Vec:
		out := make([]int32, len(args))
		for i, a := range args {
			n, err := strconv.ParseInt(a, 0, 32)
			if err != nil {
				return vehicle.RawValue{}, fmt.Errorf("invalid int32 %q", a)
			}
			out[i] = int32(n)
		}
		return vehicle.Int32(out...), nil
	case vehicle.TypeInt64, vehicle.TypeInt64Vec:
		out := make([]int64, len(args))
		for i, a := range args {
			n, err := strconv.ParseInt(a, 0, 64)
			if err != nil {
				return vehicle.RawValue{}, fmt.Errorf("invalid int64 %q", a)
			}
			out[i] = n
		}
		return vehicle.Int64(out...), nil
	case vehicle.TypeFloat, vehicle.TypeFloatVec:
		out := make([]float32, len(args))
		for i, a := range args {
			f, err := strconv.ParseFloat(a, 32)
			if err != nil {
				return vehicle.RawValue{}, fmt.Errorf("invalid float %q", a)
			}
			out[i] = float32(f)
		}
		return vehicle.Float(out...), nil
	case vehicle.TypeString:
		return vehicle.Str(strings.Trim(strings.Join(args, " "), `"'`)), nil
	case vehicle.TypeBytes:
		b, err := hex.DecodeString(strings.Join(args, ""))
		if err != nil {
			return vehicle.RawValue{}, fmt.Errorf("invalid hex bytes: %w", err)
		}
		return vehicle.RawValue{ByteValues: b}, nil
	default:
		return vehicle.RawValue{}, fmt.Errorf("cannot enter values of type %s", typ)
	}
}
