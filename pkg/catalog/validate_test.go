package catalog

import (
	"errors"
	"math"
	"testing"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

var (
	propInt32    = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaSeat, vehicle.TypeInt32, 0x0001)
	propInt32Vec = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaGlobal, vehicle.TypeInt32Vec, 0x0002)
	propFloat    = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaSeat, vehicle.TypeFloat, 0x0003)
	propInt64    = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaGlobal, vehicle.TypeInt64, 0x0004)
	propString   = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaGlobal, vehicle.TypeString, 0x0005)
)

func TestValidateValue(t *testing.T) {
	int32Cfg := vehicle.PropertyConfig{
		Property:    propInt32,
		AreaConfigs: []vehicle.AreaConfig{{AreaID: 1, MinInt32: 0, MaxInt32: 100}, {AreaID: 2}},
	}
	floatCfg := vehicle.PropertyConfig{
		Property:    propFloat,
		AreaConfigs: []vehicle.AreaConfig{{AreaID: 1, MinFloat: 16, MaxFloat: 28}},
	}
	vecCfg := vehicle.PropertyConfig{Property: propInt32Vec}
	int64Cfg := vehicle.PropertyConfig{Property: propInt64}
	strCfg := vehicle.PropertyConfig{Property: propString}

	tests := []struct {
		name  string
		cfg   vehicle.PropertyConfig
		value vehicle.PropertyValue
		want  error
	}{
		{"in range", int32Cfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Int32(50)}, nil},
		{"lower bound", int32Cfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Int32(0)}, nil},
		{"below range", int32Cfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Int32(-1)}, ErrOutOfRange},
		{"above range", int32Cfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Int32(101)}, ErrOutOfRange},
		{"unconstrained area", int32Cfg, vehicle.PropertyValue{AreaID: 2, Value: vehicle.Int32(-500)}, nil},
		{"unknown area", int32Cfg, vehicle.PropertyValue{AreaID: 3, Value: vehicle.Int32(1)}, ErrUnknownArea},
		{"scalar with two elements", int32Cfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Int32(1, 2)}, ErrInvalidShape},
		{"scalar with wrong kind", int32Cfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Float(1)}, ErrInvalidShape},
		{"float in range", floatCfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Float(21.5)}, nil},
		{"float out of range", floatCfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Float(30)}, ErrOutOfRange},
		{"float NaN", floatCfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Float(float32(math.NaN()))}, ErrOutOfRange},
		{"empty vector", vecCfg, vehicle.PropertyValue{Value: vehicle.RawValue{}}, ErrInvalidShape},
		{"vector", vecCfg, vehicle.PropertyValue{Value: vehicle.Int32(1, 2, 3)}, nil},
		{"global only accepts area 0", vecCfg, vehicle.PropertyValue{AreaID: 1, Value: vehicle.Int32(1)}, ErrUnknownArea},
		{"int64", int64Cfg, vehicle.PropertyValue{Value: vehicle.Int64(1 << 40)}, nil},
		{"string unchecked", strCfg, vehicle.PropertyValue{Value: vehicle.Str("abc")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.value
			v.Property = tt.cfg.Property
			err := ValidateValue(&tt.cfg, v)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckAreaGlobal(t *testing.T) {
	cfg := vehicle.PropertyConfig{Property: propInt64}
	area, err := CheckArea(&cfg, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if area != nil {
		t.Errorf("expected nil area config for global property, got %+v", area)
	}
}
