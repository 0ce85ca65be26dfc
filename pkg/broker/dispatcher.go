package broker

import (
	"context"
	"fmt"

	"github.com/carprop/vhal-go/pkg/bulk"
	"github.com/carprop/vhal-go/pkg/catalog"
	"github.com/carprop/vhal-go/pkg/log"
	"github.com/carprop/vhal-go/pkg/pending"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

// GetValues accepts a batch of reads from client. Results are delivered to
// the client's sink: local validation failures first, then hardware results
// or TRY_AGAIN timeouts.
//
// The call is rejected with INVALID_ARG, before anything is registered, when
// the bulk payload cannot be decoded, a request id repeats, two requests
// target the same (property, area), or a request id is still pending from an
// earlier call.
func (b *Broker) GetValues(ctx context.Context, client vehicle.ClientID, batch bulk.Batch[vehicle.GetValueRequest]) error {
	s, err := b.session(client, log.CallGetValues, len(batch.Payloads))
	if err != nil {
		return err
	}
	requests, err := bulk.Unpack(batch)
	if err != nil {
		return b.reject(client, log.CallGetValues, len(requests), batch.IsShared(),
			vehicle.WrapStatus(vehicle.StatusInvalidArg, err))
	}
	owner := pending.Owner{Client: client, Op: vehicle.OpGetValues}

	ids := make([]int64, len(requests))
	keys := make([]vehicle.Key, len(requests))
	for i, r := range requests {
		ids[i], keys[i] = r.RequestID, r.Prop.Key()
	}
	if err := b.checkBatch(owner, ids, keys); err != nil {
		return b.reject(client, log.CallGetValues, len(requests), batch.IsShared(), err)
	}

	var failed []vehicle.GetValueResult
	var forward []vehicle.GetValueRequest
	for _, r := range requests {
		if status := b.checkRead(r.Prop); status != vehicle.StatusOK {
			failed = append(failed, vehicle.GetValueResult{RequestID: r.RequestID, Status: status})
			continue
		}
		forward = append(forward, r)
	}

	forwardIDs := make([]int64, len(forward))
	for i, r := range forward {
		forwardIDs[i] = r.RequestID
	}
	ticket, err := b.pool.AddRequests(owner, forwardIDs, func(expired []int64) {
		b.deliverGets(s, log.SourceTimeout, timeoutGets(expired))
	})
	if err != nil {
		return b.reject(client, log.CallGetValues, len(requests), batch.IsShared(),
			vehicle.WrapStatus(vehicle.StatusInvalidArg, err))
	}
	b.emitCallShared(client, log.CallGetValues, len(requests), batch.IsShared())

	if len(failed) > 0 {
		b.deliverGets(s, log.SourceLocal, failed)
	}
	if len(forward) == 0 {
		return nil
	}

	err = b.hw.GetValues(ctx, forward, func(results []vehicle.GetValueResult) {
		b.resolveGets(s, owner, ticket, results)
	})
	if err != nil {
		b.hardwareFailed(client, "issue read", err)
		won := b.pool.TryResolveAll(owner, forwardIDs, ticket)
		out := make([]vehicle.GetValueResult, len(won))
		for i, id := range won {
			out[i] = vehicle.GetValueResult{RequestID: id, Status: vehicle.StatusInternalError}
		}
		if len(out) > 0 {
			b.deliverGets(s, log.SourceHardware, out)
		}
	}
	return nil
}

// SetValues accepts a batch of writes from client, with the same call-level
// rules as GetValues. Every write the hardware reports OK raises a property
// change event for on-change subscribers.
func (b *Broker) SetValues(ctx context.Context, client vehicle.ClientID, batch bulk.Batch[vehicle.SetValueRequest]) error {
	s, err := b.session(client, log.CallSetValues, len(batch.Payloads))
	if err != nil {
		return err
	}
	requests, err := bulk.Unpack(batch)
	if err != nil {
		return b.reject(client, log.CallSetValues, len(requests), batch.IsShared(),
			vehicle.WrapStatus(vehicle.StatusInvalidArg, err))
	}
	owner := pending.Owner{Client: client, Op: vehicle.OpSetValues}

	ids := make([]int64, len(requests))
	keys := make([]vehicle.Key, len(requests))
	for i, r := range requests {
		ids[i], keys[i] = r.RequestID, r.Value.Key()
	}
	if err := b.checkBatch(owner, ids, keys); err != nil {
		return b.reject(client, log.CallSetValues, len(requests), batch.IsShared(), err)
	}

	var failed []vehicle.SetValueResult
	var forward []vehicle.SetValueRequest
	for _, r := range requests {
		if status := b.checkWrite(r.Value); status != vehicle.StatusOK {
			failed = append(failed, vehicle.SetValueResult{RequestID: r.RequestID, Status: status})
			continue
		}
		forward = append(forward, vehicle.SetValueRequest{RequestID: r.RequestID, Value: r.Value.Clone()})
	}

	forwardIDs := make([]int64, len(forward))
	written := make(map[int64]vehicle.PropertyValue, len(forward))
	for i, r := range forward {
		forwardIDs[i] = r.RequestID
		written[r.RequestID] = r.Value
	}
	ticket, err := b.pool.AddRequests(owner, forwardIDs, func(expired []int64) {
		b.deliverSets(s, log.SourceTimeout, timeoutSets(expired))
	})
	if err != nil {
		return b.reject(client, log.CallSetValues, len(requests), batch.IsShared(),
			vehicle.WrapStatus(vehicle.StatusInvalidArg, err))
	}
	b.emitCallShared(client, log.CallSetValues, len(requests), batch.IsShared())

	if len(failed) > 0 {
		b.deliverSets(s, log.SourceLocal, failed)
	}
	if len(forward) == 0 {
		return nil
	}

	err = b.hw.SetValues(ctx, forward, func(results []vehicle.SetValueResult) {
		b.resolveSets(s, owner, ticket, written, results)
	})
	if err != nil {
		b.hardwareFailed(client, "issue write", err)
		won := b.pool.TryResolveAll(owner, forwardIDs, ticket)
		out := make([]vehicle.SetValueResult, len(won))
		for i, id := range won {
			out[i] = vehicle.SetValueResult{RequestID: id, Status: vehicle.StatusInternalError}
		}
		if len(out) > 0 {
			b.deliverSets(s, log.SourceHardware, out)
		}
	}
	return nil
}

// checkBatch applies the whole-batch rules: unique ids, unique targets, and
// no id still pending for owner.
func (b *Broker) checkBatch(owner pending.Owner, ids []int64, keys []vehicle.Key) error {
	seenIDs := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seenIDs[id]; dup {
			return vehicle.Errorf(vehicle.StatusInvalidArg, "duplicate request id %d in batch", id)
		}
		seenIDs[id] = struct{}{}
	}
	seenKeys := make(map[vehicle.Key]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seenKeys[k]; dup {
			return vehicle.Errorf(vehicle.StatusInvalidArg, "duplicate target %s in batch", k)
		}
		seenKeys[k] = struct{}{}
	}
	if id, ok := b.pool.FirstPending(owner, ids); ok {
		return vehicle.WrapStatus(vehicle.StatusInvalidArg,
			fmt.Errorf("%w: %d", pending.ErrDuplicateRequest, id))
	}
	return nil
}

// checkRead returns the local status of a read: OK means forward it.
func (b *Broker) checkRead(prop vehicle.PropertyValue) vehicle.StatusCode {
	cfg, ok := b.catalog.ConfigFor(prop.Property)
	if !ok {
		return vehicle.StatusInvalidArg
	}
	if _, err := catalog.CheckArea(&cfg, prop.AreaID); err != nil {
		return vehicle.StatusInvalidArg
	}
	if !cfg.Access.CanRead() {
		return vehicle.StatusAccessDenied
	}
	return vehicle.StatusOK
}

// checkWrite returns the local status of a write: OK means forward it.
func (b *Broker) checkWrite(value vehicle.PropertyValue) vehicle.StatusCode {
	cfg, ok := b.catalog.ConfigFor(value.Property)
	if !ok {
		return vehicle.StatusInvalidArg
	}
	if err := catalog.ValidateValue(&cfg, value); err != nil {
		return vehicle.StatusInvalidArg
	}
	if !cfg.Access.CanWrite() {
		return vehicle.StatusAccessDenied
	}
	return vehicle.StatusOK
}

// resolveGets delivers the results whose pending entry this callback wins.
// Entries are matched by ticket, so results for an expired batch are dropped
// even when the client has reused their ids.
func (b *Broker) resolveGets(s *session, owner pending.Owner, ticket pending.Ticket, results []vehicle.GetValueResult) {
	out := make([]vehicle.GetValueResult, 0, len(results))
	for _, r := range results {
		if !b.pool.TryResolve(owner, r.RequestID, ticket) {
			b.debugLog("dropping late read result", "client", owner.Client, "request_id", r.RequestID)
			continue
		}
		if r.Prop != nil {
			v := r.Prop.Clone().Stamp(b.now())
			r.Prop = &v
		}
		out = append(out, r)
	}
	if len(out) > 0 {
		b.deliverGets(s, log.SourceHardware, out)
	}
}

// resolveSets delivers the results whose pending entry this callback wins
// and publishes every successful write, including writes whose result came
// too late to be delivered.
func (b *Broker) resolveSets(s *session, owner pending.Owner, ticket pending.Ticket, written map[int64]vehicle.PropertyValue, results []vehicle.SetValueResult) {
	out := make([]vehicle.SetValueResult, 0, len(results))
	var changed []vehicle.PropertyValue
	now := b.now()
	for _, r := range results {
		if r.Status == vehicle.StatusOK {
			if v, ok := written[r.RequestID]; ok {
				changed = append(changed, v.Stamp(now))
			}
		}
		if !b.pool.TryResolve(owner, r.RequestID, ticket) {
			b.debugLog("dropping late write result", "client", owner.Client, "request_id", r.RequestID)
			continue
		}
		out = append(out, r)
	}
	if len(out) > 0 {
		b.deliverSets(s, log.SourceHardware, out)
	}
	if len(changed) > 0 {
		b.publish(log.FromWrite, changed)
	}
}

func (b *Broker) deliverGets(s *session, source log.ResultSource, results []vehicle.GetValueResult) {
	batch := packResults(b, results)
	b.emitResults(s.id, vehicle.OpGetValues, source, batch.IsShared(), len(results), func(i int) (int64, vehicle.StatusCode) {
		return results[i].RequestID, results[i].Status
	})
	s.deliver(b.logger, "get results", func(sink ClientSink) error {
		return sink.OnGetValues(batch)
	})
}

func (b *Broker) deliverSets(s *session, source log.ResultSource, results []vehicle.SetValueResult) {
	batch := packResults(b, results)
	b.emitResults(s.id, vehicle.OpSetValues, source, batch.IsShared(), len(results), func(i int) (int64, vehicle.StatusCode) {
		return results[i].RequestID, results[i].Status
	})
	s.deliver(b.logger, "set results", func(sink ClientSink) error {
		return sink.OnSetValues(batch)
	})
}

// packResults moves large result batches to a shared buffer, falling back
// to inline delivery if encoding fails.
func packResults[T any](b *Broker, results []T) bulk.Batch[T] {
	batch, err := bulk.Pack(results)
	if err != nil {
		b.debugLog("result batch encoding failed, delivering inline", "error", err)
		return bulk.Inline(results...)
	}
	return batch
}

func timeoutGets(ids []int64) []vehicle.GetValueResult {
	out := make([]vehicle.GetValueResult, len(ids))
	for i, id := range ids {
		out[i] = vehicle.GetValueResult{RequestID: id, Status: vehicle.StatusTryAgain}
	}
	return out
}

func timeoutSets(ids []int64) []vehicle.SetValueResult {
	out := make([]vehicle.SetValueResult, len(ids))
	for i, id := range ids {
		out[i] = vehicle.SetValueResult{RequestID: id, Status: vehicle.StatusTryAgain}
	}
	return out
}

func catalogUnknown(p vehicle.PropertyID) error {
	return fmt.Errorf("%w: %s", catalog.ErrUnknownProperty, p)
}
