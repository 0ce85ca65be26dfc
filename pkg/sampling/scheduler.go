// Package sampling runs the periodic timers that poll continuous properties.
//
// The Scheduler keeps one timer per distinct (property, rate) pair. Timers are
// reference counted through Acquire and Release, which the subscription
// registry calls as continuous subscriptions come and go. Each fire hands a
// Tick to the PollFunc; once the timer has been released the Tick reports
// itself inactive, so results of reads issued before the release can be
// discarded.
package sampling

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carprop/vhal-go/pkg/vehicle"
)

// Key identifies a sampling timer.
type Key struct {
	Property vehicle.PropertyID
	Rate     float32 // Hz
}

// Period returns the interval between samples.
func (k Key) Period() time.Duration {
	return time.Duration(float64(time.Second) / float64(k.Rate))
}

// String returns "property@rateHz".
func (k Key) String() string {
	return fmt.Sprintf("%s@%gHz", k.Property, k.Rate)
}

// Tick is one fire of a sampling timer.
type Tick struct {
	Key Key
	Seq uint64

	timer *timer
}

// Active reports whether the timer that produced the tick is still running.
func (t Tick) Active() bool {
	return t.timer != nil && !t.timer.stopped.Load()
}

// PollFunc is called on every tick from the timer's goroutine.
type PollFunc func(tick Tick)

type timer struct {
	key     Key
	refs    int
	stopped atomic.Bool
	stop    chan struct{}
}

// Config configures a Scheduler.
type Config struct {
	// Logger for debug output (optional).
	Logger *slog.Logger
}

// Scheduler owns the sampling timers.
type Scheduler struct {
	mu     sync.Mutex
	timers map[Key]*timer
	poll   PollFunc
	logger *slog.Logger
	closed bool
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler calling poll on every tick.
func NewScheduler(poll PollFunc, cfg Config) *Scheduler {
	return &Scheduler{
		timers: make(map[Key]*timer),
		poll:   poll,
		logger: cfg.Logger,
	}
}

// Acquire adds a reference to the (prop, rate) timer, starting it on the
// first reference.
func (s *Scheduler) Acquire(prop vehicle.PropertyID, rate float32) {
	key := Key{Property: prop, Rate: rate}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.refs++
		return
	}
	t := &timer{key: key, refs: 1, stop: make(chan struct{})}
	s.timers[key] = t
	if s.closed {
		return
	}
	s.wg.Add(1)
	go s.run(t)
	s.debugLog("sampling timer started", "key", key.String(), "period", key.Period())
}

// Release drops a reference to the (prop, rate) timer, stopping it when the
// last reference goes. It does not wait for an in-flight tick.
func (s *Scheduler) Release(prop vehicle.PropertyID, rate float32) {
	key := Key{Property: prop, Rate: rate}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[key]
	if !ok {
		return
	}
	t.refs--
	if t.refs > 0 {
		return
	}
	delete(s.timers, key)
	s.stopTimer(t)
	s.debugLog("sampling timer stopped", "key", key.String())
}

func (s *Scheduler) stopTimer(t *timer) {
	if t.stopped.Swap(true) {
		return
	}
	close(t.stop)
}

func (s *Scheduler) run(t *timer) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.key.Period())
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			if t.stopped.Load() {
				return
			}
			seq++
			s.poll(Tick{Key: t.key, Seq: seq, timer: t})
		}
	}
}

// Refs returns the reference count of the (prop, rate) timer.
func (s *Scheduler) Refs(prop vehicle.PropertyID, rate float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[Key{Property: prop, Rate: rate}]; ok {
		return t.refs
	}
	return 0
}

// Count returns the number of active timers.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Keys returns the keys of all active timers.
func (s *Scheduler) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]Key, 0, len(s.timers))
	for k := range s.timers {
		keys = append(keys, k)
	}
	return keys
}

// Stop stops every timer and waits for their goroutines to exit. Later
// Acquire calls track references but start no timers.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	for key, t := range s.timers {
		s.stopTimer(t)
		delete(s.timers, key)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
