package subscription

import (
	"errors"
	"math"
	"slices"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Subscription errors.
var (
	ErrUnknownProperty      = errors.New("subscription: unknown property")
	ErrStaticProperty       = errors.New("subscription: static property cannot be subscribed")
	ErrInvalidArea          = errors.New("subscription: area not configured")
	ErrInvalidSampleRate    = errors.New("subscription: invalid sample rate")
	ErrDuplicateProperty    = errors.New("subscription: property repeated in request")
	ErrSubscriptionNotFound = errors.New("subscription: not subscribed")
)

// Subscription is one client's interest in one property.
type Subscription struct {
	Client     vehicle.ClientID
	Property   vehicle.PropertyID
	AreaIDs    []int32 // empty = all areas
	SampleRate float32 // 0 = on-change

	// configured holds every area of the property, used to expand AreaIDs.
	configured []int32
}

// IsContinuous returns true if the subscription is sampled.
func (s *Subscription) IsContinuous() bool {
	return s.SampleRate > 0
}

// Matches returns true if events for areaID are delivered to s.
func (s *Subscription) Matches(areaID int32) bool {
	if len(s.AreaIDs) == 0 {
		return true
	}
	return slices.Contains(s.AreaIDs, areaID)
}

// Areas returns the explicit areas, or every configured area when the
// subscription covers all of them.
func (s *Subscription) Areas() []int32 {
	if len(s.AreaIDs) == 0 {
		return slices.Clone(s.configured)
	}
	return slices.Clone(s.AreaIDs)
}

// clone returns a copy safe to hand out of the registry.
func (s *Subscription) clone() Subscription {
	c := *s
	c.AreaIDs = slices.Clone(s.AreaIDs)
	c.configured = slices.Clone(s.configured)
	return c
}

// newSubscription validates opts against cfg.
func newSubscription(client vehicle.ClientID, cfg *vehicle.PropertyConfig, opts vehicle.SubscribeOptions) (*Subscription, error) {
	if cfg.ChangeMode == vehicle.ChangeModeStatic {
		return nil, ErrStaticProperty
	}
	for _, area := range opts.AreaIDs {
		if _, ok := cfg.Area(area); !ok {
			return nil, ErrInvalidArea
		}
	}
	if err := checkSampleRate(cfg, opts.SampleRate); err != nil {
		return nil, err
	}
	return &Subscription{
		Client:     client,
		Property:   opts.Property,
		AreaIDs:    dedupe(opts.AreaIDs),
		SampleRate: opts.SampleRate,
		configured: cfg.AreaIDs(),
	}, nil
}

// checkSampleRate requires a rate within [min, max] for continuous
// properties and no rate for on-change ones.
func checkSampleRate(cfg *vehicle.PropertyConfig, rate float32) error {
	r := float64(rate)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return ErrInvalidSampleRate
	}
	if cfg.ChangeMode != vehicle.ChangeModeContinuous {
		if rate != 0 {
			return ErrInvalidSampleRate
		}
		return nil
	}
	if rate <= 0 || rate < cfg.MinSampleRate || rate > cfg.MaxSampleRate {
		return ErrInvalidSampleRate
	}
	return nil
}

func dedupe(areas []int32) []int32 {
	if len(areas) == 0 {
		return nil
	}
	out := slices.Clone(areas)
	slices.Sort(out)
	return slices.Compact(out)
}
