package hardware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

const fakeProp = vehicle.PropertyID(0x15400500)

func collectGets(t *testing.T, f *Fake, reqs []vehicle.GetValueRequest) []vehicle.GetValueResult {
	t.Helper()
	ch := make(chan []vehicle.GetValueResult, 1)
	require.NoError(t, f.GetValues(context.Background(), reqs, func(r []vehicle.GetValueResult) { ch <- r }))
	select {
	case r := <-ch:
		return r
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
		return nil
	}
}

func TestFakeGetValues(t *testing.T) {
	f := NewFake(vehicle.PropertyValue{Property: fakeProp, AreaID: 1, Value: vehicle.Int32(7)})

	results := collectGets(t, f, []vehicle.GetValueRequest{
		{RequestID: 1, Prop: vehicle.PropertyValue{Property: fakeProp, AreaID: 1}},
		{RequestID: 2, Prop: vehicle.PropertyValue{Property: fakeProp, AreaID: 2}},
	})
	require.Len(t, results, 2)
	assert.Equal(t, vehicle.StatusOK, results[0].Status)
	require.NotNil(t, results[0].Prop)
	assert.Equal(t, []int32{7}, results[0].Prop.Value.Int32Values)
	assert.NotZero(t, results[0].Prop.Timestamp)
	assert.Equal(t, vehicle.StatusNotAvailable, results[1].Status)
	assert.Nil(t, results[1].Prop)
	assert.Len(t, f.GetBatches(), 1)
}

func TestFakeSetValuesStores(t *testing.T) {
	f := NewFake()
	done := make(chan []vehicle.SetValueResult, 1)
	v := vehicle.PropertyValue{Property: fakeProp, AreaID: 1, Value: vehicle.Int32(3)}
	require.NoError(t, f.SetValues(context.Background(), []vehicle.SetValueRequest{{RequestID: 1, Value: v}},
		func(r []vehicle.SetValueResult) { done <- r }))

	results := <-done
	assert.Equal(t, []vehicle.SetValueResult{{RequestID: 1, Status: vehicle.StatusOK}}, results)
	stored, ok := f.Value(v.Key())
	require.True(t, ok)
	assert.Equal(t, []int32{3}, stored.Value.Int32Values)
}

func TestFakeStatusOverride(t *testing.T) {
	f := NewFake(vehicle.PropertyValue{Property: fakeProp, Value: vehicle.Int32(1)})
	f.SetStatus(vehicle.Key{Property: fakeProp}, vehicle.StatusInternalError)

	results := collectGets(t, f, []vehicle.GetValueRequest{{RequestID: 5, Prop: vehicle.PropertyValue{Property: fakeProp}}})
	assert.Equal(t, vehicle.StatusInternalError, results[0].Status)
}

func TestFakeIssueFailure(t *testing.T) {
	f := NewFake()
	boom := errors.New("bus down")
	f.FailGets(boom)
	f.FailSets(boom)

	err := f.GetValues(context.Background(), []vehicle.GetValueRequest{{RequestID: 1}}, func([]vehicle.GetValueResult) {
		t.Error("callback must not run for rejected batch")
	})
	assert.ErrorIs(t, err, boom)
	err = f.SetValues(context.Background(), []vehicle.SetValueRequest{{RequestID: 1}}, func([]vehicle.SetValueResult) {
		t.Error("callback must not run for rejected batch")
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.GetBatches())
	assert.Empty(t, f.SetBatches())
}

func TestFakeDelayAndDrop(t *testing.T) {
	f := NewFake(vehicle.PropertyValue{Property: fakeProp, Value: vehicle.Int32(1)})
	f.SetDelay(50 * time.Millisecond)

	start := time.Now()
	collectGets(t, f, []vehicle.GetValueRequest{{RequestID: 1, Prop: vehicle.PropertyValue{Property: fakeProp}}})
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	f.SetDelay(0)
	f.DropResults(true)
	called := false
	require.NoError(t, f.GetValues(context.Background(), []vehicle.GetValueRequest{{RequestID: 2}},
		func([]vehicle.GetValueResult) { called = true }))
	f.Wait()
	assert.False(t, called)
}

func TestFakeInjectEvent(t *testing.T) {
	f := NewFake()
	var mu sync.Mutex
	var got []vehicle.PropertyValue
	f.OnPropertyChange(func(values []vehicle.PropertyValue) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, values...)
	})

	f.InjectEvent(vehicle.PropertyValue{Property: fakeProp, AreaID: 2, Value: vehicle.Int32(9)})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.NotZero(t, got[0].Timestamp)
	stored, ok := f.Value(vehicle.Key{Property: fakeProp, AreaID: 2})
	assert.True(t, ok)
	assert.Equal(t, []int32{9}, stored.Value.Int32Values)
}
