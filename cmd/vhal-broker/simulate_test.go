package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carprop/vhal-go/pkg/catalog"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

func TestSimulatedValuesStayInRange(t *testing.T) {
	cat, err := loadCatalog("")
	require.NoError(t, err)
	tire, err := cat.Lookup("TIRE_PRESSURE")
	require.NoError(t, err)

	for _, phase := range []float64{0, 0.5, 1.7, 3.14, 10} {
		values := simulatedValues(cat, phase)
		require.NotEmpty(t, values)
		for _, v := range values {
			cfg, ok := cat.ConfigFor(v.Property)
			require.True(t, ok)
			assert.Equal(t, vehicle.ChangeModeContinuous, cfg.ChangeMode)
			require.Len(t, v.Value.FloatValues, 1)
			assert.NoError(t, catalog.ValidateValue(&cfg, v))
		}
	}

	var tireAreas []int32
	for _, v := range simulatedValues(cat, 0) {
		if v.Property == tire {
			tireAreas = append(tireAreas, v.AreaID)
		}
	}
	assert.ElementsMatch(t, []int32{1, 2, 4, 8}, tireAreas)
}
