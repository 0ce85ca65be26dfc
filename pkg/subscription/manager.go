package subscription

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/carprop/vhal-go/pkg/catalog"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

// RateTracker is told about every continuous subscription that starts or
// stops. Calls are made while the Manager lock is held; implementations must
// not call back into the Manager.
type RateTracker interface {
	Acquire(prop vehicle.PropertyID, rate float32)
	Release(prop vehicle.PropertyID, rate float32)
}

// Config holds subscription manager configuration.
type Config struct {
	// Logger for debug output (optional).
	Logger *slog.Logger
}

// DefaultConfig returns the default subscription configuration.
func DefaultConfig() Config {
	return Config{}
}

// Manager is the subscription registry.
type Manager struct {
	mu sync.RWMutex

	config  Config
	catalog catalog.Catalog
	rates   RateTracker

	// Subscriptions by client, then property
	byClient map[vehicle.ClientID]map[vehicle.PropertyID]*Subscription

	// Index by property for event dispatch
	byProperty map[vehicle.PropertyID]map[vehicle.ClientID]*Subscription
}

// NewManager creates a registry validating against cat. rates may be nil.
func NewManager(cat catalog.Catalog, rates RateTracker) *Manager {
	return NewManagerWithConfig(cat, rates, DefaultConfig())
}

// NewManagerWithConfig creates a registry with custom configuration.
func NewManagerWithConfig(cat catalog.Catalog, rates RateTracker, config Config) *Manager {
	return &Manager{
		config:     config,
		catalog:    cat,
		rates:      rates,
		byClient:   make(map[vehicle.ClientID]map[vehicle.PropertyID]*Subscription),
		byProperty: make(map[vehicle.PropertyID]map[vehicle.ClientID]*Subscription),
	}
}

// Subscribe validates every option and, only if all are valid, installs them
// for client, replacing earlier subscriptions to the same properties.
func (m *Manager) Subscribe(client vehicle.ClientID, options []vehicle.SubscribeOptions) error {
	subs := make([]*Subscription, 0, len(options))
	seen := make(map[vehicle.PropertyID]bool, len(options))
	for _, opts := range options {
		if seen[opts.Property] {
			return fmt.Errorf("%w: %s", ErrDuplicateProperty, opts.Property)
		}
		seen[opts.Property] = true

		cfg, ok := m.catalog.ConfigFor(opts.Property)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProperty, opts.Property)
		}
		sub, err := newSubscription(client, &cfg, opts)
		if err != nil {
			return fmt.Errorf("%w: %s", err, opts.Property)
		}
		subs = append(subs, sub)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range subs {
		if old := m.byClient[client][sub.Property]; old != nil {
			m.removeLocked(old)
		}
		m.addLocked(sub)
		m.debugLog("subscribed", "client", client, "property", sub.Property.String(),
			"areas", sub.AreaIDs, "rate", sub.SampleRate)
	}
	return nil
}

// Unsubscribe removes client's subscriptions to props. If any property is
// not subscribed, nothing is removed.
func (m *Manager) Unsubscribe(client vehicle.ClientID, props []vehicle.PropertyID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.byClient[client]
	for _, prop := range props {
		if _, ok := subs[prop]; !ok {
			return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, prop)
		}
	}
	for _, prop := range props {
		if sub, ok := subs[prop]; ok {
			m.removeLocked(sub)
			m.debugLog("unsubscribed", "client", client, "property", prop.String())
		}
	}
	return nil
}

// DropClient removes every subscription of client and returns how many.
func (m *Manager) DropClient(client vehicle.ClientID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.byClient[client]
	n := len(subs)
	for _, sub := range subs {
		m.removeLocked(sub)
	}
	return n
}

// ClearAll removes every subscription.
func (m *Manager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, subs := range m.byClient {
		for _, sub := range subs {
			m.removeLocked(sub)
		}
	}
}

func (m *Manager) addLocked(sub *Subscription) {
	if m.byClient[sub.Client] == nil {
		m.byClient[sub.Client] = make(map[vehicle.PropertyID]*Subscription)
	}
	m.byClient[sub.Client][sub.Property] = sub

	if m.byProperty[sub.Property] == nil {
		m.byProperty[sub.Property] = make(map[vehicle.ClientID]*Subscription)
	}
	m.byProperty[sub.Property][sub.Client] = sub

	if sub.IsContinuous() && m.rates != nil {
		m.rates.Acquire(sub.Property, sub.SampleRate)
	}
}

func (m *Manager) removeLocked(sub *Subscription) {
	delete(m.byClient[sub.Client], sub.Property)
	if len(m.byClient[sub.Client]) == 0 {
		delete(m.byClient, sub.Client)
	}
	delete(m.byProperty[sub.Property], sub.Client)
	if len(m.byProperty[sub.Property]) == 0 {
		delete(m.byProperty, sub.Property)
	}

	if sub.IsContinuous() && m.rates != nil {
		m.rates.Release(sub.Property, sub.SampleRate)
	}
}

// SubscribersFor returns every subscription receiving events of
// (prop, areaID), in any mode.
func (m *Manager) SubscribersFor(prop vehicle.PropertyID, areaID int32) []Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Subscription
	for _, sub := range m.byProperty[prop] {
		if sub.Matches(areaID) {
			out = append(out, sub.clone())
		}
	}
	return out
}

// OnChangeSubscribers returns the clients subscribed on-change to
// (prop, areaID).
func (m *Manager) OnChangeSubscribers(prop vehicle.PropertyID, areaID int32) []vehicle.ClientID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vehicle.ClientID
	for client, sub := range m.byProperty[prop] {
		if !sub.IsContinuous() && sub.Matches(areaID) {
			out = append(out, client)
		}
	}
	return out
}

// SubscribersAt returns the clients sampling (prop, areaID) at rate.
func (m *Manager) SubscribersAt(prop vehicle.PropertyID, areaID int32, rate float32) []vehicle.ClientID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []vehicle.ClientID
	for client, sub := range m.byProperty[prop] {
		if sub.SampleRate == rate && sub.Matches(areaID) {
			out = append(out, client)
		}
	}
	return out
}

// SampleTargets returns the sorted union of areas subscribed to prop at rate.
func (m *Manager) SampleTargets(prop vehicle.PropertyID, rate float32) []int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var areas []int32
	for _, sub := range m.byProperty[prop] {
		if sub.SampleRate == rate {
			areas = append(areas, sub.Areas()...)
		}
	}
	slices.Sort(areas)
	return slices.Compact(areas)
}

// Subscriptions returns the subscriptions of client.
func (m *Manager) Subscriptions(client vehicle.ClientID) []Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Subscription, 0, len(m.byClient[client]))
	for _, sub := range m.byClient[client] {
		out = append(out, sub.clone())
	}
	slices.SortFunc(out, func(a, b Subscription) int {
		return int(a.Property) - int(b.Property)
	})
	return out
}

// Count returns the number of subscriptions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, subs := range m.byClient {
		n += len(subs)
	}
	return n
}

// ClientCount returns the number of clients with at least one subscription.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byClient)
}

func (m *Manager) debugLog(msg string, args ...any) {
	if m.config.Logger != nil {
		m.config.Logger.Debug(msg, args...)
	}
}
