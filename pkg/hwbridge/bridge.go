package hwbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carprop/vhal-go/pkg/hardware"
	"github.com/carprop/vhal-go/pkg/vehicle"
	"github.com/carprop/vhal-go/pkg/version"
	"github.com/carprop/vhal-go/pkg/wire"
)

// DefaultResponseTimeout bounds how long the bridge waits for a response
// before completing a batch with no results.
const DefaultResponseTimeout = 30 * time.Second

// Config configures a Bridge or Responder.
type Config struct {
	// Prefix of every topic (default "vhal").
	Prefix string

	// ResponseTimeout for a request batch (bridge only).
	ResponseTimeout time.Duration

	// Logger for debug output (optional).
	Logger *slog.Logger
}

// DefaultConfig returns the default bridge configuration.
func DefaultConfig() Config {
	return Config{Prefix: DefaultPrefix, ResponseTimeout: DefaultResponseTimeout}
}

// inflight is a request batch awaiting its response.
type inflight struct {
	op    vehicle.Operation
	onGet hardware.GetValuesCallback
	onSet hardware.SetValuesCallback
	timer *time.Timer
}

// complete calls the batch callback with the response results.
func (f *inflight) complete(resp *wire.HardwareResponse) {
	switch f.op {
	case vehicle.OpGetValues:
		var results []vehicle.GetValueResult
		if resp != nil {
			results = resp.GetResults
		}
		f.onGet(results)
	case vehicle.OpSetValues:
		var results []vehicle.SetValueResult
		if resp != nil {
			results = resp.SetResults
		}
		f.onSet(results)
	}
}

// Bridge is a hardware.Access that forwards batches over a Transport.
type Bridge struct {
	transport Transport
	topics    Topics
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[string]*inflight
	onChange hardware.PropertyChangeFunc
	closed   bool
}

// NewBridge subscribes to the response and event topics of t.
func NewBridge(t Transport, cfg Config) (*Bridge, error) {
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = DefaultResponseTimeout
	}
	b := &Bridge{
		transport: t,
		topics:    Topics{Prefix: cfg.Prefix},
		timeout:   cfg.ResponseTimeout,
		logger:    cfg.Logger,
		inflight:  make(map[string]*inflight),
	}
	if err := t.Subscribe(b.topics.Response(), b.handleResponse); err != nil {
		return nil, fmt.Errorf("subscribe responses: %w", err)
	}
	if err := t.Subscribe(b.topics.Event(), b.handleEvent); err != nil {
		return nil, fmt.Errorf("subscribe events: %w", err)
	}
	return b, nil
}

// GetValues implements hardware.Access.
func (b *Bridge) GetValues(_ context.Context, requests []vehicle.GetValueRequest, callback hardware.GetValuesCallback) error {
	req := &wire.HardwareRequest{Operation: vehicle.OpGetValues, Gets: requests, Version: version.Current}
	return b.send(req, &inflight{op: vehicle.OpGetValues, onGet: callback})
}

// SetValues implements hardware.Access.
func (b *Bridge) SetValues(_ context.Context, requests []vehicle.SetValueRequest, callback hardware.SetValuesCallback) error {
	req := &wire.HardwareRequest{Operation: vehicle.OpSetValues, Sets: requests, Version: version.Current}
	return b.send(req, &inflight{op: vehicle.OpSetValues, onSet: callback})
}

// OnPropertyChange implements hardware.Access.
func (b *Bridge) OnPropertyChange(fn hardware.PropertyChangeFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *Bridge) send(req *wire.HardwareRequest, f *inflight) error {
	req.CorrelationID = uuid.NewString()
	data, err := wire.EncodeRequest(req)
	if err != nil {
		return fmt.Errorf("%w: %w", hardware.ErrUnavailable, err)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return hardware.ErrClosed
	}
	id := req.CorrelationID
	f.timer = time.AfterFunc(b.timeout, func() { b.expire(id) })
	b.inflight[id] = f
	b.mu.Unlock()

	if err := b.transport.Publish(b.topics.Request(), data); err != nil {
		if b.take(id) != nil {
			return fmt.Errorf("%w: %w", hardware.ErrUnavailable, err)
		}
		// The response already arrived; the callback has run.
		return nil
	}
	b.debugLog("request published", "correlation_id", id, "op", req.Operation.String())
	return nil
}

// take removes and returns the in-flight batch id, stopping its timer.
func (b *Bridge) take(id string) *inflight {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.inflight[id]
	if !ok {
		return nil
	}
	delete(b.inflight, id)
	f.timer.Stop()
	return f
}

func (b *Bridge) expire(id string) {
	if f := b.take(id); f != nil {
		b.debugLog("request expired without response", "correlation_id", id)
		f.complete(nil)
	}
}

func (b *Bridge) handleResponse(_ string, payload []byte) error {
	resp, err := wire.DecodeResponse(payload)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	f := b.take(resp.CorrelationID)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrUnknownBatch, resp.CorrelationID)
	}
	if resp.Operation != f.op {
		b.debugLog("response operation mismatch", "correlation_id", resp.CorrelationID,
			"want", f.op.String(), "got", resp.Operation.String())
	}
	f.complete(resp)
	return nil
}

func (b *Bridge) handleEvent(_ string, payload []byte) error {
	ev, err := wire.DecodeEvent(payload)
	if err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil && len(ev.Values) > 0 {
		fn(ev.Values)
	}
	return nil
}

// Pending returns the number of batches awaiting a response.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inflight)
}

// Close completes every in-flight batch with no results and closes the
// transport.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	pending := b.inflight
	b.inflight = make(map[string]*inflight)
	b.mu.Unlock()

	for _, f := range pending {
		f.timer.Stop()
		f.complete(nil)
	}
	return b.transport.Close()
}

func (b *Bridge) debugLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

var _ hardware.Access = (*Bridge)(nil)
