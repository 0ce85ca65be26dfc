package pending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Pool errors.
var (
	ErrDuplicateRequest = errors.New("pending: request id already pending")
	ErrInvalidTimeout   = errors.New("pending: timeout must be positive")
)

// Default pool settings.
const (
	DefaultTimeout     = 30 * time.Second
	minSweepInterval   = time.Millisecond
	maxSweepInterval   = time.Second
	sweepIntervalRatio = 10
)

// Owner scopes request ids: one client's reads or writes.
type Owner struct {
	Client vehicle.ClientID
	Op     vehicle.Operation
}

// TimeoutFunc receives the ids of a batch that expired in one sweep.
type TimeoutFunc func(ids []int64)

// Config configures a Pool.
type Config struct {
	// Timeout applied to every entry added with AddRequests.
	Timeout time.Duration

	// SweepInterval overrides the sweep period. Zero derives it from Timeout.
	SweepInterval time.Duration

	// Logger for debug output (optional).
	Logger *slog.Logger

	// Now overrides the clock (optional, for tests).
	Now func() time.Time
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{Timeout: DefaultTimeout}
}

type batch struct {
	owner     Owner
	onTimeout TimeoutFunc
}

// Ticket identifies the entries registered by one AddRequests or TryAdd
// call. Only the holder of the ticket can resolve them, so a result for an
// expired entry never resolves a later entry that reuses its id. The zero
// Ticket resolves nothing.
type Ticket struct {
	b *batch
}

type entry struct {
	deadline time.Time
	batch    *batch
}

// Pool holds pending requests.
type Pool struct {
	mu       sync.Mutex
	entries  map[Owner]map[int64]*entry
	timeout  time.Duration
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	// Background sweeping
	lifeMu  sync.Mutex
	cancel  context.CancelFunc
	sweepWg sync.WaitGroup
	running bool
}

// NewPool creates a pool.
func NewPool(cfg Config) *Pool {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Pool{
		entries:  make(map[Owner]map[int64]*entry),
		timeout:  cfg.Timeout,
		interval: cfg.SweepInterval,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// SetTimeout changes the timeout applied to entries added afterwards.
func (p *Pool) SetTimeout(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidTimeout
	}
	p.mu.Lock()
	p.timeout = d
	p.mu.Unlock()
	return nil
}

// Timeout returns the current timeout.
func (p *Pool) Timeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timeout
}

// AddRequests registers ids for owner with deadline now+timeout. Either all
// ids are added or, if any is already pending or repeated, none is.
func (p *Pool) AddRequests(owner Owner, ids []int64, onTimeout TimeoutFunc) (Ticket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(owner, ids, p.now().Add(p.timeout), onTimeout)
}

// TryAdd registers a single id with an explicit deadline.
func (p *Pool) TryAdd(owner Owner, id int64, deadline time.Time, onTimeout TimeoutFunc) (Ticket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(owner, []int64{id}, deadline, onTimeout)
}

func (p *Pool) addLocked(owner Owner, ids []int64, deadline time.Time, onTimeout TimeoutFunc) (Ticket, error) {
	live := p.entries[owner]
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return Ticket{}, fmt.Errorf("%w: %d", ErrDuplicateRequest, id)
		}
		if _, exists := live[id]; exists {
			return Ticket{}, fmt.Errorf("%w: %d", ErrDuplicateRequest, id)
		}
		seen[id] = struct{}{}
	}
	if len(ids) == 0 {
		return Ticket{}, nil
	}
	if live == nil {
		live = make(map[int64]*entry, len(ids))
		p.entries[owner] = live
	}
	b := &batch{owner: owner, onTimeout: onTimeout}
	for _, id := range ids {
		live[id] = &entry{deadline: deadline, batch: b}
	}
	return Ticket{b: b}, nil
}

// FirstPending returns the first of ids that is pending for owner.
func (p *Pool) FirstPending(owner Owner, ids []int64) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	live := p.entries[owner]
	for _, id := range ids {
		if _, ok := live[id]; ok {
			return id, true
		}
	}
	return 0, false
}

// TryResolve removes the entry for (owner, id) registered under ticket. It
// returns false if that entry was already resolved, timed out or never
// existed, including when id is now pending under another ticket.
func (p *Pool) TryResolve(owner Owner, id int64, ticket Ticket) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removeLocked(owner, id, ticket)
}

// TryResolveAll resolves each id and returns the ones this call won.
func (p *Pool) TryResolveAll(owner Owner, ids []int64, ticket Ticket) []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	won := make([]int64, 0, len(ids))
	for _, id := range ids {
		if p.removeLocked(owner, id, ticket) {
			won = append(won, id)
		}
	}
	return won
}

func (p *Pool) removeLocked(owner Owner, id int64, ticket Ticket) bool {
	if ticket.b == nil {
		return false
	}
	live, ok := p.entries[owner]
	if !ok {
		return false
	}
	if e, ok := live[id]; !ok || e.batch != ticket.b {
		return false
	}
	delete(live, id)
	if len(live) == 0 {
		delete(p.entries, owner)
	}
	return true
}

// Sweep expires every entry whose deadline is at or before now and returns
// how many expired. Timeout callbacks run after the lock is released.
func (p *Pool) Sweep(now time.Time) int {
	p.mu.Lock()
	expired := make(map[*batch][]int64)
	var order []*batch
	for owner, live := range p.entries {
		for id, e := range live {
			if e.deadline.After(now) {
				continue
			}
			if _, seen := expired[e.batch]; !seen {
				order = append(order, e.batch)
			}
			expired[e.batch] = append(expired[e.batch], id)
			delete(live, id)
		}
		if len(live) == 0 {
			delete(p.entries, owner)
		}
	}
	p.mu.Unlock()

	count := 0
	for _, b := range order {
		ids := expired[b]
		count += len(ids)
		p.debugLog("pending requests timed out",
			"client", b.owner.Client, "op", b.owner.Op.String(), "count", len(ids))
		if b.onTimeout != nil {
			b.onTimeout(ids)
		}
	}
	return count
}

// DropClient removes every entry of client without reporting them.
func (p *Pool) DropClient(client vehicle.ClientID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	dropped := 0
	for owner, live := range p.entries {
		if owner.Client != client {
			continue
		}
		dropped += len(live)
		delete(p.entries, owner)
	}
	return dropped
}

// CountPending returns the number of live entries.
func (p *Pool) CountPending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, live := range p.entries {
		n += len(live)
	}
	return n
}

// Start begins background sweeping.
func (p *Pool) Start() {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()
	if p.running {
		return
	}
	p.running = true
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.sweepWg.Add(1)
	go p.sweepLoop(ctx)
}

// Stop ends background sweeping. Pending entries are kept.
func (p *Pool) Stop() {
	p.lifeMu.Lock()
	if !p.running {
		p.lifeMu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.cancel = nil
	p.lifeMu.Unlock()

	cancel()
	p.sweepWg.Wait()
}

func (p *Pool) sweepLoop(ctx context.Context) {
	defer p.sweepWg.Done()

	timer := time.NewTimer(p.sweepInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.Sweep(p.now())
			timer.Reset(p.sweepInterval())
		}
	}
}

// sweepInterval keeps lateness past a deadline to a fraction of the timeout.
func (p *Pool) sweepInterval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.interval > 0 {
		return p.interval
	}
	d := p.timeout / sweepIntervalRatio
	if d < minSweepInterval {
		return minSweepInterval
	}
	if d > maxSweepInterval {
		return maxSweepInterval
	}
	return d
}

func (p *Pool) debugLog(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
