package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// yamlCatalog is the YAML structure of a catalog file.
type yamlCatalog struct {
	Properties []yamlProperty `yaml:"properties"`
}

type yamlProperty struct {
	ID            uint32     `yaml:"id"`
	Name          string     `yaml:"name"`
	Access        string     `yaml:"access"`
	ChangeMode    string     `yaml:"change_mode"`
	MinSampleRate float32    `yaml:"min_sample_rate"`
	MaxSampleRate float32    `yaml:"max_sample_rate"`
	Areas         []yamlArea `yaml:"areas"`
	Initial       *yamlValue `yaml:"initial"`
}

type yamlArea struct {
	ID       int32      `yaml:"id"`
	MinInt32 int32      `yaml:"min_int32"`
	MaxInt32 int32      `yaml:"max_int32"`
	MinInt64 int64      `yaml:"min_int64"`
	MaxInt64 int64      `yaml:"max_int64"`
	MinFloat float32    `yaml:"min_float"`
	MaxFloat float32    `yaml:"max_float"`
	Initial  *yamlValue `yaml:"initial"`
}

type yamlValue struct {
	Int32  []int32   `yaml:"int32"`
	Int64  []int64   `yaml:"int64"`
	Float  []float32 `yaml:"float"`
	Bytes  []byte    `yaml:"bytes"`
	String string    `yaml:"string"`
}

func (v *yamlValue) raw() vehicle.RawValue {
	return vehicle.RawValue{
		Int32Values: v.Int32,
		Int64Values: v.Int64,
		FloatValues: v.Float,
		ByteValues:  v.Bytes,
		StringValue: v.String,
	}
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return ParseYAML(data)
}

// Default returns the built-in demo catalog.
func Default() (*Memory, error) {
	return ParseYAML(defaultCatalog)
}

// ParseYAML builds a catalog from YAML data.
func ParseYAML(data []byte) (*Memory, error) {
	var y yamlCatalog
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}

	m := &Memory{
		configs: make(map[vehicle.PropertyID]vehicle.PropertyConfig, len(y.Properties)),
		names:   make(map[string]vehicle.PropertyID),
	}
	for i, p := range y.Properties {
		cfg, err := p.config()
		if err != nil {
			return nil, fmt.Errorf("property %d: %w", i, err)
		}
		if err := m.add(cfg, p.Name); err != nil {
			return nil, err
		}
		m.initial = append(m.initial, p.initialValues(cfg.Property)...)
	}
	m.sortIDs()
	return m, nil
}

func (p *yamlProperty) config() (vehicle.PropertyConfig, error) {
	access, err := parseAccess(p.Access)
	if err != nil {
		return vehicle.PropertyConfig{}, err
	}
	mode, err := parseChangeMode(p.ChangeMode)
	if err != nil {
		return vehicle.PropertyConfig{}, err
	}
	cfg := vehicle.PropertyConfig{
		Property:      vehicle.PropertyID(int32(p.ID)),
		Access:        access,
		ChangeMode:    mode,
		MinSampleRate: p.MinSampleRate,
		MaxSampleRate: p.MaxSampleRate,
	}
	for _, a := range p.Areas {
		cfg.AreaConfigs = append(cfg.AreaConfigs, vehicle.AreaConfig{
			AreaID:   a.ID,
			MinInt32: a.MinInt32,
			MaxInt32: a.MaxInt32,
			MinInt64: a.MinInt64,
			MaxInt64: a.MaxInt64,
			MinFloat: a.MinFloat,
			MaxFloat: a.MaxFloat,
		})
	}
	return cfg, nil
}

func (p *yamlProperty) initialValues(prop vehicle.PropertyID) []vehicle.PropertyValue {
	var out []vehicle.PropertyValue
	if p.Initial != nil {
		if len(p.Areas) == 0 {
			out = append(out, vehicle.PropertyValue{Property: prop, Value: p.Initial.raw()})
		} else {
			for _, a := range p.Areas {
				out = append(out, vehicle.PropertyValue{Property: prop, AreaID: a.ID, Value: p.Initial.raw()})
			}
		}
	}
	for _, a := range p.Areas {
		if a.Initial == nil {
			continue
		}
		// Area-level values override the property-level default.
		replaced := false
		for i := range out {
			if out[i].AreaID == a.ID {
				out[i].Value = a.Initial.raw()
				replaced = true
			}
		}
		if !replaced {
			out = append(out, vehicle.PropertyValue{Property: prop, AreaID: a.ID, Value: a.Initial.raw()})
		}
	}
	return out
}

func parseAccess(s string) (vehicle.Access, error) {
	switch strings.ToLower(s) {
	case "", "read_write", "rw":
		return vehicle.AccessReadWrite, nil
	case "read", "r":
		return vehicle.AccessRead, nil
	case "write", "w":
		return vehicle.AccessWrite, nil
	default:
		return 0, fmt.Errorf("unknown access %q", s)
	}
}

func parseChangeMode(s string) (vehicle.ChangeMode, error) {
	switch strings.ToLower(s) {
	case "static":
		return vehicle.ChangeModeStatic, nil
	case "", "on_change":
		return vehicle.ChangeModeOnChange, nil
	case "continuous":
		return vehicle.ChangeModeContinuous, nil
	default:
		return 0, fmt.Errorf("unknown change mode %q", s)
	}
}
