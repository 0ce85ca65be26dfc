package broker

import (
	"github.com/carprop/vhal-go/pkg/log"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

func (b *Broker) emitCall(client vehicle.ClientID, call log.CallType, count int, err error) {
	ev := &log.CallEvent{Type: call, Count: count, Status: vehicle.StatusOf(err)}
	if err != nil {
		ev.Reason = err.Error()
	}
	b.trace.Log(log.Event{
		Timestamp: b.now(),
		ClientID:  client,
		Direction: log.DirectionIn,
		Category:  log.CategoryCall,
		Call:      ev,
	})
}

func (b *Broker) emitCallShared(client vehicle.ClientID, call log.CallType, count int, shared bool) {
	b.trace.Log(log.Event{
		Timestamp: b.now(),
		ClientID:  client,
		Direction: log.DirectionIn,
		Category:  log.CategoryCall,
		Call:      &log.CallEvent{Type: call, Count: count, Shared: shared},
	})
}

// reject records a call-level rejection and returns err.
func (b *Broker) reject(client vehicle.ClientID, call log.CallType, count int, shared bool, err error) error {
	b.trace.Log(log.Event{
		Timestamp: b.now(),
		ClientID:  client,
		Direction: log.DirectionIn,
		Category:  log.CategoryCall,
		Call: &log.CallEvent{
			Type:   call,
			Count:  count,
			Status: vehicle.StatusOf(err),
			Reason: err.Error(),
			Shared: shared,
		},
	})
	b.debugLog("call rejected", "client", client, "call", call.String(), "error", err)
	return err
}

func (b *Broker) emitResults(client vehicle.ClientID, op vehicle.Operation, source log.ResultSource, shared bool, n int, at func(int) (int64, vehicle.StatusCode)) {
	ids := make([]int64, n)
	statuses := make([]vehicle.StatusCode, n)
	for i := range n {
		ids[i], statuses[i] = at(i)
	}
	b.trace.Log(log.Event{
		Timestamp: b.now(),
		ClientID:  client,
		Direction: log.DirectionOut,
		Category:  log.CategoryResult,
		Results: &log.ResultEvent{
			Operation:  op,
			Source:     source,
			RequestIDs: ids,
			Statuses:   statuses,
			Shared:     shared,
		},
	})
}

func (b *Broker) emitProperty(client vehicle.ClientID, dir log.Direction, source log.PropertySource, values []vehicle.PropertyValue) {
	b.trace.Log(log.Event{
		Timestamp: b.now(),
		ClientID:  client,
		Direction: dir,
		Category:  log.CategoryProperty,
		Property:  &log.PropertyEvent{Source: source, Values: values},
	})
}

func (b *Broker) hardwareFailed(client vehicle.ClientID, context string, err error) {
	status := vehicle.StatusInternalError
	b.trace.Log(log.Event{
		Timestamp: b.now(),
		ClientID:  client,
		Direction: log.DirectionOut,
		Category:  log.CategoryError,
		Error:     &log.ErrorEventData{Message: err.Error(), Status: &status, Context: context},
	})
	if b.logger != nil {
		b.logger.Warn("hardware rejected batch", "client", client, "context", context, "error", err)
	}
}
