// Package subscription implements the registry of client subscriptions.
//
// A client subscribes to a property either on-change (sample rate 0) or, for
// CONTINUOUS properties, at a sample rate in Hz. Each client holds at most one
// subscription per property; subscribing again replaces the previous one.
//
// # Subscription Parameters
//
// Each subscription has:
//   - property: the subscribed property id
//   - areaIds: the areas of interest (empty = all areas)
//   - sampleRate: 0 for on-change, otherwise samples per second
//
// # Sampling Rates
//
// The Manager reports every continuous subscription it adds or removes to a
// RateTracker, inside the same critical section that updates the registry.
// A tracker can therefore keep exactly one sampling timer per distinct
// (property, rate) pair without checking registry state itself.
//
// # Lifecycle
//
// Subscriptions end on Unsubscribe or when DropClient is called for their
// client. They are never persisted.
package subscription
