package broker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carprop/vhal-go/pkg/bulk"
	"github.com/carprop/vhal-go/pkg/catalog"
	"github.com/carprop/vhal-go/pkg/hardware"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

var (
	propSpeed    = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaGlobal, vehicle.TypeFloat, 0x0207)
	propTireTemp = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaWheel, vehicle.TypeFloat, 0x0309)
	propHvacTemp = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaSeat, vehicle.TypeInt32, 0x0500)
	propFanSpeed = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaSeat, vehicle.TypeInt32, 0x0501)
	propSeatHeat = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaSeat, vehicle.TypeFloat, 0x0502)
	propVIN      = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaGlobal, vehicle.TypeString, 0x0100)
	propBlob     = vehicle.NewPropertyID(vehicle.GroupVendor, vehicle.AreaGlobal, vehicle.TypeBytes, 0x0001)
	propHorn     = vehicle.NewPropertyID(vehicle.GroupVendor, vehicle.AreaGlobal, vehicle.TypeBoolean, 0x0002)
	propUnknown  = vehicle.NewPropertyID(vehicle.GroupVendor, vehicle.AreaGlobal, vehicle.TypeInt32, 0x0fff)
)

const (
	seatLeft  int32 = 1
	seatRight int32 = 4
	seatRear  int32 = 16
	wheelFL   int32 = 1
	wheelFR   int32 = 2
)

const (
	testTimeout = 100 * time.Millisecond
	waitFor     = 2 * time.Second
	pollEvery   = 5 * time.Millisecond
)

func testCatalog(t *testing.T) *catalog.Memory {
	t.Helper()
	cat, err := catalog.NewMemory(
		vehicle.PropertyConfig{
			Property:      propSpeed,
			Access:        vehicle.AccessRead,
			ChangeMode:    vehicle.ChangeModeContinuous,
			MinSampleRate: 1,
			MaxSampleRate: 100,
		},
		vehicle.PropertyConfig{
			Property:      propTireTemp,
			Access:        vehicle.AccessRead,
			ChangeMode:    vehicle.ChangeModeContinuous,
			MinSampleRate: 1,
			MaxSampleRate: 50,
			AreaConfigs:   []vehicle.AreaConfig{{AreaID: wheelFL}, {AreaID: wheelFR}},
		},
		vehicle.PropertyConfig{
			Property:   propHvacTemp,
			Access:     vehicle.AccessReadWrite,
			ChangeMode: vehicle.ChangeModeOnChange,
			AreaConfigs: []vehicle.AreaConfig{
				{AreaID: seatLeft, MinInt32: 0, MaxInt32: 100},
				{AreaID: seatRight, MinInt32: 0, MaxInt32: 100},
				{AreaID: seatRear, MinInt32: 0, MaxInt32: 100},
			},
		},
		vehicle.PropertyConfig{
			Property:    propFanSpeed,
			Access:      vehicle.AccessReadWrite,
			ChangeMode:  vehicle.ChangeModeOnChange,
			AreaConfigs: []vehicle.AreaConfig{{AreaID: seatLeft, MinInt32: 1, MaxInt32: 6}, {AreaID: seatRight, MinInt32: 1, MaxInt32: 6}},
		},
		vehicle.PropertyConfig{
			Property:    propSeatHeat,
			Access:      vehicle.AccessReadWrite,
			ChangeMode:  vehicle.ChangeModeOnChange,
			AreaConfigs: []vehicle.AreaConfig{{AreaID: seatLeft, MinFloat: 0, MaxFloat: 3}},
		},
		vehicle.PropertyConfig{Property: propVIN, Access: vehicle.AccessRead, ChangeMode: vehicle.ChangeModeStatic},
		vehicle.PropertyConfig{Property: propBlob, Access: vehicle.AccessReadWrite, ChangeMode: vehicle.ChangeModeOnChange},
		vehicle.PropertyConfig{Property: propHorn, Access: vehicle.AccessWrite, ChangeMode: vehicle.ChangeModeOnChange},
	)
	require.NoError(t, err)
	return cat
}

func testValues() []vehicle.PropertyValue {
	return []vehicle.PropertyValue{
		{Property: propSpeed, Value: vehicle.Float(42.5)},
		{Property: propTireTemp, AreaID: wheelFL, Value: vehicle.Float(30)},
		{Property: propTireTemp, AreaID: wheelFR, Value: vehicle.Float(31)},
		{Property: propHvacTemp, AreaID: seatLeft, Value: vehicle.Int32(21)},
		{Property: propHvacTemp, AreaID: seatRight, Value: vehicle.Int32(22)},
		{Property: propHvacTemp, AreaID: seatRear, Value: vehicle.Int32(20)},
		{Property: propFanSpeed, AreaID: seatLeft, Value: vehicle.Int32(2)},
		{Property: propVIN, Value: vehicle.Str("WVWZZZ1JZXW000001")},
	}
}

// newTestBroker returns a started broker over a Fake holding testValues.
func newTestBroker(t *testing.T) (*Broker, *hardware.Fake) {
	t.Helper()
	hw := hardware.NewFake(testValues()...)
	cfg := DefaultConfig()
	cfg.Timeout = testTimeout
	b := New(testCatalog(t), hw, cfg)
	require.NoError(t, b.Start(t.Context()))
	t.Cleanup(func() {
		_ = b.Close()
		hw.Wait()
	})
	return b, hw
}

// recordingSink records every delivery.
type recordingSink struct {
	mu sync.Mutex

	getBatches   [][]vehicle.GetValueResult
	setBatches   [][]vehicle.SetValueResult
	eventBatches [][]vehicle.PropertyValue
	shared       int

	err error
}

func (s *recordingSink) OnGetValues(results bulk.Batch[vehicle.GetValueResult]) error {
	list, err := bulk.Unpack(results)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if results.IsShared() {
		s.shared++
	}
	s.getBatches = append(s.getBatches, list)
	return s.err
}

func (s *recordingSink) OnSetValues(results bulk.Batch[vehicle.SetValueResult]) error {
	list, err := bulk.Unpack(results)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBatches = append(s.setBatches, list)
	return s.err
}

func (s *recordingSink) OnPropertyEvent(values []vehicle.PropertyValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventBatches = append(s.eventBatches, append([]vehicle.PropertyValue(nil), values...))
	return s.err
}

func (s *recordingSink) gets() []vehicle.GetValueResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []vehicle.GetValueResult
	for _, b := range s.getBatches {
		out = append(out, b...)
	}
	return out
}

func (s *recordingSink) sets() []vehicle.SetValueResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []vehicle.SetValueResult
	for _, b := range s.setBatches {
		out = append(out, b...)
	}
	return out
}

func (s *recordingSink) events() []vehicle.PropertyValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []vehicle.PropertyValue
	for _, b := range s.eventBatches {
		out = append(out, b...)
	}
	return out
}

func (s *recordingSink) getDeliveries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.getBatches)
}

func (s *recordingSink) setDeliveries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.setBatches)
}

func register(t *testing.T, b *Broker) (vehicle.ClientID, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	id, err := b.RegisterClient(sink)
	require.NoError(t, err)
	return id, sink
}

func getReq(id int64, prop vehicle.PropertyID, area int32) vehicle.GetValueRequest {
	return vehicle.GetValueRequest{RequestID: id, Prop: vehicle.PropertyValue{Property: prop, AreaID: area}}
}

func setReq(id int64, prop vehicle.PropertyID, area int32, v vehicle.RawValue) vehicle.SetValueRequest {
	return vehicle.SetValueRequest{RequestID: id, Value: vehicle.PropertyValue{Property: prop, AreaID: area, Value: v}}
}

func getsByID(results []vehicle.GetValueResult) map[int64]vehicle.GetValueResult {
	out := make(map[int64]vehicle.GetValueResult, len(results))
	for _, r := range results {
		out[r.RequestID] = r
	}
	return out
}

func setsByID(results []vehicle.SetValueResult) map[int64]vehicle.SetValueResult {
	out := make(map[int64]vehicle.SetValueResult, len(results))
	for _, r := range results {
		out[r.RequestID] = r
	}
	return out
}

// requireDrained waits until no request is pending.
func requireDrained(t *testing.T, b *Broker) {
	t.Helper()
	require.Eventually(t, func() bool { return b.CountPending() == 0 }, waitFor, pollEvery)
}
