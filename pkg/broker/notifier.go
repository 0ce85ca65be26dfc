package broker

import (
	"context"

	"github.com/carprop/vhal-go/pkg/log"
	"github.com/carprop/vhal-go/pkg/sampling"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

// onHardwareChange receives values pushed by the hardware.
func (b *Broker) onHardwareChange(values []vehicle.PropertyValue) {
	if b.closed.Load() || len(values) == 0 {
		return
	}
	now := b.now()
	stamped := make([]vehicle.PropertyValue, len(values))
	for i, v := range values {
		stamped[i] = v.Clone().Stamp(now)
	}
	b.emitProperty("", log.DirectionIn, log.FromHardware, stamped)
	b.publish(log.FromHardware, stamped)
}

// publish delivers changed values to their on-change subscribers, one
// delivery per client. Identical consecutive values are not suppressed.
func (b *Broker) publish(source log.PropertySource, values []vehicle.PropertyValue) {
	perClient := make(map[vehicle.ClientID][]vehicle.PropertyValue)
	for _, v := range values {
		for _, client := range b.subs.OnChangeSubscribers(v.Property, v.AreaID) {
			perClient[client] = append(perClient[client], v.Clone())
		}
	}
	b.deliverEvents(source, perClient)
}

func (b *Broker) deliverEvents(source log.PropertySource, perClient map[vehicle.ClientID][]vehicle.PropertyValue) {
	for client, vals := range perClient {
		s, ok := b.sessions.get(client)
		if !ok {
			continue
		}
		b.emitProperty(client, log.DirectionOut, source, vals)
		s.deliver(b.logger, "property event", func(sink ClientSink) error {
			return sink.OnPropertyEvent(vals)
		})
	}
}

// sample polls the areas subscribed at the tick's rate and delivers the
// values to the clients sampling each area at that rate.
func (b *Broker) sample(tick sampling.Tick) {
	if b.closed.Load() {
		return
	}
	prop, rate := tick.Key.Property, tick.Key.Rate
	areas := b.subs.SampleTargets(prop, rate)
	if len(areas) == 0 {
		return
	}

	requests := make([]vehicle.GetValueRequest, len(areas))
	for i, area := range areas {
		requests[i] = vehicle.GetValueRequest{
			RequestID: b.sampleSeq.Add(1),
			Prop:      vehicle.PropertyValue{Property: prop, AreaID: area},
		}
	}

	err := b.hw.GetValues(context.Background(), requests, func(results []vehicle.GetValueResult) {
		if !tick.Active() || b.closed.Load() {
			return
		}
		now := b.now()
		perClient := make(map[vehicle.ClientID][]vehicle.PropertyValue)
		for _, r := range results {
			if r.Status != vehicle.StatusOK || r.Prop == nil {
				b.debugLog("sample read failed", "key", tick.Key.String(), "status", r.Status.String())
				continue
			}
			v := r.Prop.Clone().Stamp(now)
			for _, client := range b.subs.SubscribersAt(v.Property, v.AreaID, rate) {
				perClient[client] = append(perClient[client], v.Clone())
			}
		}
		b.deliverEvents(log.FromSample, perClient)
	})
	if err != nil {
		b.debugLog("sample read not issued", "key", tick.Key.String(), "error", err)
	}
}
