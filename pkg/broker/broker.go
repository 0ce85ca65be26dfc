package broker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/carprop/vhal-go/pkg/bulk"
	"github.com/carprop/vhal-go/pkg/catalog"
	"github.com/carprop/vhal-go/pkg/hardware"
	"github.com/carprop/vhal-go/pkg/log"
	"github.com/carprop/vhal-go/pkg/pending"
	"github.com/carprop/vhal-go/pkg/sampling"
	"github.com/carprop/vhal-go/pkg/subscription"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Broker errors.
var (
	ErrClosed       = errors.New("broker: closed")
	ErrClientExists = errors.New("broker: client already registered")
	ErrNilSink      = errors.New("broker: nil sink")
)

// Config configures a Broker.
type Config struct {
	// Timeout applied to every pending read and write.
	Timeout time.Duration

	// SweepInterval overrides the timeout sweep period (optional).
	SweepInterval time.Duration

	// Logger for operational output (optional).
	Logger *slog.Logger

	// Trace receives structured broker events (optional).
	Trace log.Logger

	// Now overrides the clock (optional, for tests).
	Now func() time.Time
}

// DefaultConfig returns the default broker configuration.
func DefaultConfig() Config {
	return Config{Timeout: pending.DefaultTimeout}
}

// Broker routes client calls to the hardware and events back to clients.
type Broker struct {
	catalog catalog.Catalog
	hw      hardware.Access

	pool     *pending.Pool
	subs     *subscription.Manager
	sampler  *sampling.Scheduler
	sessions *sessionTable

	logger *slog.Logger
	trace  log.Logger
	now    func() time.Time

	// Request ids for sampling reads; never visible to clients.
	sampleSeq atomic.Int64

	running   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	wg        sync.WaitGroup

	mu     sync.Mutex // guards cancel and orders Start against Close
	cancel context.CancelFunc
}

// New creates a broker over cat and hw. The broker registers itself as the
// receiver of hw's property change events.
func New(cat catalog.Catalog, hw hardware.Access, cfg Config) *Broker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = pending.DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Trace == nil {
		cfg.Trace = log.NoopLogger{}
	}

	b := &Broker{
		catalog:  cat,
		hw:       hw,
		sessions: newSessionTable(),
		logger:   cfg.Logger,
		trace:    cfg.Trace,
		now:      cfg.Now,
	}
	b.pool = pending.NewPool(pending.Config{
		Timeout:       cfg.Timeout,
		SweepInterval: cfg.SweepInterval,
		Logger:        cfg.Logger,
		Now:           cfg.Now,
	})
	b.sampler = sampling.NewScheduler(b.sample, sampling.Config{Logger: cfg.Logger})
	b.subs = subscription.NewManagerWithConfig(cat, b.sampler, subscription.Config{Logger: cfg.Logger})

	hw.OnPropertyChange(b.onHardwareChange)
	return b
}

// Start begins timeout sweeping. The broker closes when ctx is cancelled.
func (b *Broker) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed.Load() {
		return ErrClosed
	}
	if b.running.Swap(true) {
		return nil
	}
	b.pool.Start()

	ctx, b.cancel = context.WithCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		<-ctx.Done()
		b.shutdown()
	}()

	b.infoLog("broker started", "timeout", b.pool.Timeout())
	return nil
}

// Close stops sampling and sweeping and drops every client. Pending
// requests are discarded without delivery.
func (b *Broker) Close() error {
	b.mu.Lock()
	b.closed.Store(true)
	cancel := b.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
		b.wg.Wait()
	}
	b.shutdown()
	return nil
}

func (b *Broker) shutdown() {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		b.sampler.Stop()
		b.pool.Stop()
		for _, id := range b.sessions.ids() {
			b.DropClient(id)
		}
		b.subs.ClearAll()
		b.running.Store(false)
		b.infoLog("broker closed")
	})
}

// RegisterClient adds a client session and returns its new id.
func (b *Broker) RegisterClient(sink ClientSink) (vehicle.ClientID, error) {
	id := vehicle.ClientID(uuid.NewString())
	if err := b.RegisterClientWithID(id, sink); err != nil {
		return "", err
	}
	return id, nil
}

// RegisterClientWithID adds a client session under a caller-chosen id.
func (b *Broker) RegisterClientWithID(id vehicle.ClientID, sink ClientSink) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if sink == nil {
		return ErrNilSink
	}
	if err := b.sessions.add(id, sink); err != nil {
		return err
	}
	b.emitCall(id, log.CallRegister, 0, nil)
	b.debugLog("client registered", "client", id)
	return nil
}

// DropClient ends a client session: its pending requests are discarded and
// its subscriptions removed. Unknown clients are ignored.
func (b *Broker) DropClient(client vehicle.ClientID) {
	if _, ok := b.sessions.remove(client); !ok {
		return
	}
	dropped := b.pool.DropClient(client)
	unsubscribed := b.subs.DropClient(client)
	b.emitCall(client, log.CallDropClient, dropped, nil)
	b.debugLog("client dropped", "client", client, "pending", dropped, "subscriptions", unsubscribed)
}

// ClientCount returns the number of registered clients.
func (b *Broker) ClientCount() int {
	return b.sessions.len()
}

// Subscribe adds or replaces subscriptions for client. The call is rejected
// as a whole with INVALID_ARG if any option is invalid.
func (b *Broker) Subscribe(_ context.Context, client vehicle.ClientID, options []vehicle.SubscribeOptions) error {
	if _, err := b.session(client, log.CallSubscribe, len(options)); err != nil {
		return err
	}
	if err := b.subs.Subscribe(client, options); err != nil {
		err = vehicle.WrapStatus(vehicle.StatusInvalidArg, err)
		b.emitCall(client, log.CallSubscribe, len(options), err)
		return err
	}

	props := make([]vehicle.PropertyID, len(options))
	rates := make([]float32, len(options))
	for i, o := range options {
		props[i], rates[i] = o.Property, o.SampleRate
	}
	b.emitCall(client, log.CallSubscribe, len(options), nil)
	b.trace.Log(log.Event{
		Timestamp:    b.now(),
		ClientID:     client,
		Direction:    log.DirectionIn,
		Category:     log.CategorySubscription,
		Subscription: &log.SubscriptionEvent{Properties: props, Rates: rates},
	})
	return nil
}

// Unsubscribe removes client's subscriptions to props. Unsubscribing a
// property that is not subscribed rejects the call with INVALID_ARG.
func (b *Broker) Unsubscribe(_ context.Context, client vehicle.ClientID, props []vehicle.PropertyID) error {
	if _, err := b.session(client, log.CallUnsubscribe, len(props)); err != nil {
		return err
	}
	if err := b.subs.Unsubscribe(client, props); err != nil {
		err = vehicle.WrapStatus(vehicle.StatusInvalidArg, err)
		b.emitCall(client, log.CallUnsubscribe, len(props), err)
		return err
	}
	b.emitCall(client, log.CallUnsubscribe, len(props), nil)
	b.trace.Log(log.Event{
		Timestamp:    b.now(),
		ClientID:     client,
		Direction:    log.DirectionIn,
		Category:     log.CategorySubscription,
		Subscription: &log.SubscriptionEvent{Removed: true, Properties: append([]vehicle.PropertyID(nil), props...)},
	})
	return nil
}

// Subscriptions returns the subscriptions held by client.
func (b *Broker) Subscriptions(client vehicle.ClientID) []subscription.Subscription {
	return b.subs.Subscriptions(client)
}

// AllPropertyConfigs returns every property config.
func (b *Broker) AllPropertyConfigs() (bulk.Batch[vehicle.PropertyConfig], error) {
	return bulk.Pack(b.catalog.Configs())
}

// PropertyConfigs returns the configs of props, in order. Any unknown
// property rejects the call with INVALID_ARG.
func (b *Broker) PropertyConfigs(props []vehicle.PropertyID) (bulk.Batch[vehicle.PropertyConfig], error) {
	configs := make([]vehicle.PropertyConfig, 0, len(props))
	for _, p := range props {
		cfg, ok := b.catalog.ConfigFor(p)
		if !ok {
			return bulk.Batch[vehicle.PropertyConfig]{},
				vehicle.WrapStatus(vehicle.StatusInvalidArg, catalogUnknown(p))
		}
		configs = append(configs, cfg)
	}
	return bulk.Pack(configs)
}

// SetTimeout changes the timeout of requests accepted afterwards.
func (b *Broker) SetTimeout(d time.Duration) error {
	if err := b.pool.SetTimeout(d); err != nil {
		return vehicle.WrapStatus(vehicle.StatusInvalidArg, err)
	}
	return nil
}

// Timeout returns the current request timeout.
func (b *Broker) Timeout() time.Duration {
	return b.pool.Timeout()
}

// CountPending returns the number of requests awaiting a result.
func (b *Broker) CountPending() int {
	return b.pool.CountPending()
}

// SubscriptionCount returns the number of live subscriptions.
func (b *Broker) SubscriptionCount() int {
	return b.subs.Count()
}

// SamplerCount returns the number of running sampling timers.
func (b *Broker) SamplerCount() int {
	return b.sampler.Count()
}

// session looks up a caller and rejects calls from unknown clients or on a
// closed broker.
func (b *Broker) session(client vehicle.ClientID, call log.CallType, count int) (*session, error) {
	if b.closed.Load() {
		err := vehicle.WrapStatus(vehicle.StatusInternalError, ErrClosed)
		b.emitCall(client, call, count, err)
		return nil, err
	}
	s, ok := b.sessions.get(client)
	if !ok {
		err := vehicle.Errorf(vehicle.StatusInvalidArg, "unknown client %q", client)
		b.emitCall(client, call, count, err)
		return nil, err
	}
	return s, nil
}

func (b *Broker) debugLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Debug(msg, args...)
	}
}

func (b *Broker) infoLog(msg string, args ...any) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}
