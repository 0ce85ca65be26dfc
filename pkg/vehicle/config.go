package vehicle

// ChangeMode describes how a property's value changes over time.
type ChangeMode uint8

const (
	// ChangeModeStatic properties never change.
	ChangeModeStatic ChangeMode = 0
	// ChangeModeOnChange properties report an event whenever they change.
	ChangeModeOnChange ChangeMode = 1
	// ChangeModeContinuous properties change constantly and are sampled.
	ChangeModeContinuous ChangeMode = 2
)

// String returns the change mode name.
func (m ChangeMode) String() string {
	switch m {
	case ChangeModeStatic:
		return "STATIC"
	case ChangeModeOnChange:
		return "ON_CHANGE"
	case ChangeModeContinuous:
		return "CONTINUOUS"
	default:
		return "UNKNOWN"
	}
}

// Access describes which operations a property allows.
type Access uint8

const (
	AccessReadWrite Access = 0
	AccessRead      Access = 1
	AccessWrite     Access = 2
)

// String returns the access mode name.
func (a Access) String() string {
	switch a {
	case AccessReadWrite:
		return "READ_WRITE"
	case AccessRead:
		return "READ"
	case AccessWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// CanRead returns true if the property may be read.
func (a Access) CanRead() bool {
	return a == AccessReadWrite || a == AccessRead
}

// CanWrite returns true if the property may be written.
func (a Access) CanWrite() bool {
	return a == AccessReadWrite || a == AccessWrite
}

// AreaConfig holds the value constraints of a single area.
// A range whose min and max are both zero is unconstrained.
type AreaConfig struct {
	AreaID   int32   `cbor:"1,keyasint"`
	MinInt32 int32   `cbor:"2,keyasint,omitempty"`
	MaxInt32 int32   `cbor:"3,keyasint,omitempty"`
	MinInt64 int64   `cbor:"4,keyasint,omitempty"`
	MaxInt64 int64   `cbor:"5,keyasint,omitempty"`
	MinFloat float32 `cbor:"6,keyasint,omitempty"`
	MaxFloat float32 `cbor:"7,keyasint,omitempty"`
}

// HasInt32Range reports whether an int32 range is configured.
func (a *AreaConfig) HasInt32Range() bool { return a.MinInt32 != 0 || a.MaxInt32 != 0 }

// HasInt64Range reports whether an int64 range is configured.
func (a *AreaConfig) HasInt64Range() bool { return a.MinInt64 != 0 || a.MaxInt64 != 0 }

// HasFloatRange reports whether a float range is configured.
func (a *AreaConfig) HasFloatRange() bool { return a.MinFloat != 0 || a.MaxFloat != 0 }

// PropertyConfig describes one property. It is immutable once loaded.
type PropertyConfig struct {
	Property      PropertyID   `cbor:"1,keyasint"`
	Access        Access       `cbor:"2,keyasint"`
	ChangeMode    ChangeMode   `cbor:"3,keyasint"`
	MinSampleRate float32      `cbor:"4,keyasint,omitempty"`
	MaxSampleRate float32      `cbor:"5,keyasint,omitempty"`
	AreaConfigs   []AreaConfig `cbor:"6,keyasint,omitempty"`
}

// IsGlobal returns true if the property has no per-area configuration.
func (c *PropertyConfig) IsGlobal() bool {
	return len(c.AreaConfigs) == 0
}

// Area returns the configuration of the given area.
// A global property only has area 0, reported with a nil config.
func (c *PropertyConfig) Area(areaID int32) (*AreaConfig, bool) {
	if c.IsGlobal() {
		return nil, areaID == GlobalArea
	}
	for i := range c.AreaConfigs {
		if c.AreaConfigs[i].AreaID == areaID {
			return &c.AreaConfigs[i], true
		}
	}
	return nil, false
}

// AreaIDs returns every area the property is defined for.
func (c *PropertyConfig) AreaIDs() []int32 {
	if c.IsGlobal() {
		return []int32{GlobalArea}
	}
	ids := make([]int32, len(c.AreaConfigs))
	for i, a := range c.AreaConfigs {
		ids[i] = a.AreaID
	}
	return ids
}

// Clone returns a deep copy of the config.
func (c PropertyConfig) Clone() PropertyConfig {
	if c.AreaConfigs != nil {
		c.AreaConfigs = append([]AreaConfig(nil), c.AreaConfigs...)
	}
	return c
}
