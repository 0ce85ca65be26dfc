package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Validation errors.
var (
	ErrUnknownProperty = errors.New("unknown property")
	ErrUnknownArea     = errors.New("area not configured")
	ErrInvalidShape    = errors.New("value does not match property type")
	ErrOutOfRange      = errors.New("value out of range")
)

// CheckArea verifies that areaID is configured for cfg and returns its
// config, which is nil for global properties.
func CheckArea(cfg *vehicle.PropertyConfig, areaID int32) (*vehicle.AreaConfig, error) {
	area, ok := cfg.Area(areaID)
	if !ok {
		return nil, fmt.Errorf("%w: %s area %d", ErrUnknownArea, cfg.Property, areaID)
	}
	return area, nil
}

// ValidateValue checks the area, payload shape and range of v against cfg.
func ValidateValue(cfg *vehicle.PropertyConfig, v vehicle.PropertyValue) error {
	area, err := CheckArea(cfg, v.AreaID)
	if err != nil {
		return err
	}
	typ := cfg.Property.Type()
	if err := checkShape(typ, v.Value); err != nil {
		return fmt.Errorf("%s: %w", cfg.Property, err)
	}
	if area == nil {
		return nil
	}
	if err := checkRange(typ, area, v.Value); err != nil {
		return fmt.Errorf("%s area %d: %w", cfg.Property, v.AreaID, err)
	}
	return nil
}

// checkShape verifies the number of elements of the kind the type requires.
// STRING, BYTES and MIXED payloads are not constrained.
func checkShape(typ vehicle.PropertyType, v vehicle.RawValue) error {
	var n int
	switch typ {
	case vehicle.TypeInt32, vehicle.TypeBoolean, vehicle.TypeInt32Vec:
		n = len(v.Int32Values)
	case vehicle.TypeInt64, vehicle.TypeInt64Vec:
		n = len(v.Int64Values)
	case vehicle.TypeFloat, vehicle.TypeFloatVec:
		n = len(v.FloatValues)
	default:
		return nil
	}
	if typ.IsVector() {
		if n == 0 {
			return fmt.Errorf("%w: expected at least one %s element", ErrInvalidShape, typ)
		}
		return nil
	}
	if n != 1 {
		return fmt.Errorf("%w: expected exactly one %s element, got %d", ErrInvalidShape, typ, n)
	}
	return nil
}

func checkRange(typ vehicle.PropertyType, area *vehicle.AreaConfig, v vehicle.RawValue) error {
	switch typ {
	case vehicle.TypeInt32, vehicle.TypeInt32Vec:
		if !area.HasInt32Range() {
			return nil
		}
		for _, x := range v.Int32Values {
			if x < area.MinInt32 || x > area.MaxInt32 {
				return fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, x, area.MinInt32, area.MaxInt32)
			}
		}
	case vehicle.TypeInt64, vehicle.TypeInt64Vec:
		if !area.HasInt64Range() {
			return nil
		}
		for _, x := range v.Int64Values {
			if x < area.MinInt64 || x > area.MaxInt64 {
				return fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, x, area.MinInt64, area.MaxInt64)
			}
		}
	case vehicle.TypeFloat, vehicle.TypeFloatVec:
		if !area.HasFloatRange() {
			return nil
		}
		for _, x := range v.FloatValues {
			if math.IsNaN(float64(x)) || x < area.MinFloat || x > area.MaxFloat {
				return fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfRange, x, area.MinFloat, area.MaxFloat)
			}
		}
	}
	return nil
}
