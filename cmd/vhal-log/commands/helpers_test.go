package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/carprop/vhal-go/pkg/log"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

var (
	propSpeed = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaGlobal, vehicle.TypeFloat, 0x0207)
	propFan   = vehicle.NewPropertyID(vehicle.GroupSystem, vehicle.AreaSeat, vehicle.TypeInt32, 0x0501)
)

const (
	clientA vehicle.ClientID = "aaaaaaaa-1111-2222-3333-444444444444"
	clientB vehicle.ClientID = "bbbbbbbb-1111-2222-3333-444444444444"
)

var t0 = time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

// sampleEvents is a short broker session: a get call with one local failure
// and one timeout, a subscription and a sampled property event.
func sampleEvents() []log.Event {
	tryAgain := vehicle.StatusTryAgain
	return []log.Event{
		{
			Timestamp: t0, ClientID: clientA, Direction: log.DirectionIn, Category: log.CategoryCall,
			Call: &log.CallEvent{Type: log.CallGetValues, Count: 2, Status: vehicle.StatusOK},
		},
		{
			Timestamp: t0.Add(time.Millisecond), ClientID: clientA, Direction: log.DirectionOut, Category: log.CategoryResult,
			Results: &log.ResultEvent{
				Operation: vehicle.OpGetValues, Source: log.SourceLocal,
				RequestIDs: []int64{2}, Statuses: []vehicle.StatusCode{vehicle.StatusInvalidArg},
			},
		},
		{
			Timestamp: t0.Add(100 * time.Millisecond), ClientID: clientA, Direction: log.DirectionOut, Category: log.CategoryResult,
			Results: &log.ResultEvent{
				Operation: vehicle.OpGetValues, Source: log.SourceTimeout,
				RequestIDs: []int64{1}, Statuses: []vehicle.StatusCode{vehicle.StatusTryAgain},
			},
		},
		{
			Timestamp: t0.Add(200 * time.Millisecond), ClientID: clientB, Direction: log.DirectionIn, Category: log.CategorySubscription,
			Subscription: &log.SubscriptionEvent{Properties: []vehicle.PropertyID{propSpeed}, Rates: []float32{10}},
		},
		{
			Timestamp: t0.Add(300 * time.Millisecond), ClientID: clientB, Direction: log.DirectionOut, Category: log.CategoryProperty,
			Property: &log.PropertyEvent{Source: log.FromSample, Values: []vehicle.PropertyValue{
				{Property: propSpeed, Value: vehicle.Float(21.5)},
			}},
		},
		{
			Timestamp: t0.Add(400 * time.Millisecond), ClientID: clientB, Direction: log.DirectionIn, Category: log.CategoryCall,
			Call: &log.CallEvent{Type: log.CallSetValues, Count: 1, Status: vehicle.StatusInvalidArg, Reason: "duplicate request id 4"},
		},
		{
			Timestamp: t0.Add(500 * time.Millisecond), Direction: log.DirectionIn, Category: log.CategoryError,
			Error: &log.ErrorEventData{Message: "bus off", Status: &tryAgain, Context: "GET_VALUES"},
		},
	}
}

func writeTrace(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broker.vlog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, ev := range events {
		logger.Log(ev)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}
