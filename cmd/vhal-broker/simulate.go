package main

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/carprop/vhal-go/pkg/catalog"
	"github.com/carprop/vhal-go/pkg/hardware"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

const simulationInterval = 500 * time.Millisecond

// runSimulation moves every continuous FLOAT property along a noisy sine
// wave inside its configured range.
func runSimulation(ctx context.Context, cat catalog.Catalog, fake *hardware.Fake) {
	ticker := time.NewTicker(simulationInterval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			phase := now.Sub(start).Seconds() / 10
			if values := simulatedValues(cat, phase); len(values) > 0 {
				fake.InjectEvent(values...)
			}
		}
	}
}

func simulatedValues(cat catalog.Catalog, phase float64) []vehicle.PropertyValue {
	var values []vehicle.PropertyValue
	for _, c := range cat.Configs() {
		if c.ChangeMode != vehicle.ChangeModeContinuous || c.Property.Type() != vehicle.TypeFloat {
			continue
		}
		for _, areaID := range c.AreaIDs() {
			lo, hi := float32(0), float32(100)
			if area, ok := c.Area(areaID); ok && area != nil && area.HasFloatRange() {
				lo, hi = area.MinFloat, area.MaxFloat
			}
			wave := (math.Sin(phase+float64(areaID)) + 1) / 2
			v := lo + (hi-lo)*float32(wave) + float32(rand.NormFloat64())
			values = append(values, vehicle.PropertyValue{
				Property: c.Property,
				AreaID:   areaID,
				Value:    vehicle.Float(min(max(v, lo), hi)),
			})
		}
	}
	return values
}
