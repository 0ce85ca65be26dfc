package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Catalog errors.
var (
	ErrDuplicateProperty = errors.New("duplicate property")
	ErrDuplicateArea     = errors.New("duplicate area")
	ErrInvalidSampleRate = errors.New("invalid sample rate range")
	ErrUnknownName       = errors.New("unknown property name")
)

// Catalog looks up property configurations.
type Catalog interface {
	// ConfigFor returns the configuration of prop.
	ConfigFor(prop vehicle.PropertyID) (vehicle.PropertyConfig, bool)

	// Configs returns every configuration, ordered by property id.
	Configs() []vehicle.PropertyConfig
}

// Memory is an immutable in-memory Catalog.
type Memory struct {
	mu      sync.RWMutex
	configs map[vehicle.PropertyID]vehicle.PropertyConfig
	names   map[string]vehicle.PropertyID
	initial []vehicle.PropertyValue
	ordered []vehicle.PropertyID
}

// NewMemory creates a catalog holding configs.
func NewMemory(configs ...vehicle.PropertyConfig) (*Memory, error) {
	m := &Memory{
		configs: make(map[vehicle.PropertyID]vehicle.PropertyConfig, len(configs)),
		names:   make(map[string]vehicle.PropertyID),
	}
	for _, c := range configs {
		if err := m.add(c, ""); err != nil {
			return nil, err
		}
	}
	m.sortIDs()
	return m, nil
}

func (m *Memory) add(c vehicle.PropertyConfig, name string) error {
	if _, exists := m.configs[c.Property]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProperty, c.Property)
	}
	seen := make(map[int32]bool, len(c.AreaConfigs))
	for _, a := range c.AreaConfigs {
		if seen[a.AreaID] {
			return fmt.Errorf("%w: %s area %d", ErrDuplicateArea, c.Property, a.AreaID)
		}
		seen[a.AreaID] = true
	}
	if c.ChangeMode == vehicle.ChangeModeContinuous {
		if c.MinSampleRate <= 0 || c.MaxSampleRate < c.MinSampleRate {
			return fmt.Errorf("%w: %s [%g, %g]", ErrInvalidSampleRate, c.Property, c.MinSampleRate, c.MaxSampleRate)
		}
	}
	m.configs[c.Property] = c.Clone()
	m.ordered = append(m.ordered, c.Property)
	if name != "" {
		m.names[name] = c.Property
	}
	return nil
}

func (m *Memory) sortIDs() {
	sort.Slice(m.ordered, func(i, j int) bool {
		return uint32(m.ordered[i]) < uint32(m.ordered[j])
	})
}

// ConfigFor returns the configuration of prop.
func (m *Memory) ConfigFor(prop vehicle.PropertyID) (vehicle.PropertyConfig, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.configs[prop]
	if !ok {
		return vehicle.PropertyConfig{}, false
	}
	return c.Clone(), true
}

// Configs returns every configuration ordered by property id.
func (m *Memory) Configs() []vehicle.PropertyConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]vehicle.PropertyConfig, 0, len(m.ordered))
	for _, id := range m.ordered {
		out = append(out, m.configs[id].Clone())
	}
	return out
}

// Len returns the number of properties.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}

// Lookup resolves a property name from a YAML catalog.
func (m *Memory) Lookup(name string) (vehicle.PropertyID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.names[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return id, nil
}

// Name returns the configured name of prop, or its hex id.
func (m *Memory) Name(prop vehicle.PropertyID) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, id := range m.names {
		if id == prop {
			return name
		}
	}
	return prop.String()
}

// InitialValues returns the initial values declared in a YAML catalog.
func (m *Memory) InitialValues() []vehicle.PropertyValue {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]vehicle.PropertyValue, len(m.initial))
	for i, v := range m.initial {
		out[i] = v.Clone()
	}
	return out
}

var _ Catalog = (*Memory)(nil)
