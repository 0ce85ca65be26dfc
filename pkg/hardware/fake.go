package hardware

import (
	"context"
	"sync"
	"time"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Fake is an in-memory Access that stores written values and answers reads
// from its store. Delays, failures and dropped results can be injected.
// It is safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	values   map[vehicle.Key]vehicle.PropertyValue
	statuses map[vehicle.Key]vehicle.StatusCode
	delay    time.Duration
	getErr   error
	setErr   error
	drop     bool
	onChange PropertyChangeFunc

	getBatches [][]vehicle.GetValueRequest
	setBatches [][]vehicle.SetValueRequest

	inflight sync.WaitGroup
	now      func() time.Time
}

// NewFake creates a Fake holding the given values.
func NewFake(initial ...vehicle.PropertyValue) *Fake {
	f := &Fake{
		values:   make(map[vehicle.Key]vehicle.PropertyValue),
		statuses: make(map[vehicle.Key]vehicle.StatusCode),
		now:      time.Now,
	}
	for _, v := range initial {
		f.values[v.Key()] = v.Clone()
	}
	return f
}

// SetDelay delays every callback by d.
func (f *Fake) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// FailGets makes GetValues reject batches with err (nil to clear).
func (f *Fake) FailGets(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

// FailSets makes SetValues reject batches with err (nil to clear).
func (f *Fake) FailSets(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

// SetStatus forces the result status of every request on key.
func (f *Fake) SetStatus(key vehicle.Key, status vehicle.StatusCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[key] = status
}

// DropResults makes accepted batches never call back.
func (f *Fake) DropResults(drop bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drop = drop
}

// Store sets a value without raising an event.
func (f *Fake) Store(v vehicle.PropertyValue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[v.Key()] = v.Clone()
}

// Value returns the stored value of key.
func (f *Fake) Value(key vehicle.Key) (vehicle.PropertyValue, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v.Clone(), ok
}

// InjectEvent stores values and pushes them to the registered listener.
func (f *Fake) InjectEvent(values ...vehicle.PropertyValue) {
	now := f.now()
	out := make([]vehicle.PropertyValue, len(values))
	f.mu.Lock()
	for i, v := range values {
		v = v.Stamp(now)
		f.values[v.Key()] = v.Clone()
		out[i] = v
	}
	fn := f.onChange
	f.mu.Unlock()

	if fn != nil {
		fn(out)
	}
}

// OnPropertyChange implements Access.
func (f *Fake) OnPropertyChange(fn PropertyChangeFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = fn
}

// GetValues implements Access.
func (f *Fake) GetValues(_ context.Context, requests []vehicle.GetValueRequest, callback GetValuesCallback) error {
	f.mu.Lock()
	if f.getErr != nil {
		err := f.getErr
		f.mu.Unlock()
		return err
	}
	batch := append([]vehicle.GetValueRequest(nil), requests...)
	f.getBatches = append(f.getBatches, batch)
	delay, drop := f.delay, f.drop
	f.inflight.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.inflight.Done()
		if delay > 0 {
			time.Sleep(delay)
		}
		if drop {
			return
		}
		callback(f.readAll(batch))
	}()
	return nil
}

func (f *Fake) readAll(batch []vehicle.GetValueRequest) []vehicle.GetValueResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	results := make([]vehicle.GetValueResult, 0, len(batch))
	for _, req := range batch {
		key := req.Prop.Key()
		if status, ok := f.statuses[key]; ok && status != vehicle.StatusOK {
			results = append(results, vehicle.GetValueResult{RequestID: req.RequestID, Status: status})
			continue
		}
		v, ok := f.values[key]
		if !ok {
			results = append(results, vehicle.GetValueResult{RequestID: req.RequestID, Status: vehicle.StatusNotAvailable})
			continue
		}
		v = v.Clone()
		v.Timestamp = now.UnixNano()
		results = append(results, vehicle.GetValueResult{RequestID: req.RequestID, Status: vehicle.StatusOK, Prop: &v})
	}
	return results
}

// SetValues implements Access.
func (f *Fake) SetValues(_ context.Context, requests []vehicle.SetValueRequest, callback SetValuesCallback) error {
	f.mu.Lock()
	if f.setErr != nil {
		err := f.setErr
		f.mu.Unlock()
		return err
	}
	batch := append([]vehicle.SetValueRequest(nil), requests...)
	f.setBatches = append(f.setBatches, batch)
	delay, drop := f.delay, f.drop
	f.inflight.Add(1)
	f.mu.Unlock()

	go func() {
		defer f.inflight.Done()
		if delay > 0 {
			time.Sleep(delay)
		}
		if drop {
			return
		}
		callback(f.writeAll(batch))
	}()
	return nil
}

func (f *Fake) writeAll(batch []vehicle.SetValueRequest) []vehicle.SetValueResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := make([]vehicle.SetValueResult, 0, len(batch))
	for _, req := range batch {
		key := req.Value.Key()
		if status, ok := f.statuses[key]; ok && status != vehicle.StatusOK {
			results = append(results, vehicle.SetValueResult{RequestID: req.RequestID, Status: status})
			continue
		}
		f.values[key] = req.Value.Clone()
		results = append(results, vehicle.SetValueResult{RequestID: req.RequestID, Status: vehicle.StatusOK})
	}
	return results
}

// GetBatches returns every read batch accepted so far.
func (f *Fake) GetBatches() [][]vehicle.GetValueRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]vehicle.GetValueRequest(nil), f.getBatches...)
}

// SetBatches returns every write batch accepted so far.
func (f *Fake) SetBatches() [][]vehicle.SetValueRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]vehicle.SetValueRequest(nil), f.setBatches...)
}

// Wait blocks until every accepted batch has called back or been dropped.
func (f *Fake) Wait() {
	f.inflight.Wait()
}

var _ Access = (*Fake)(nil)
