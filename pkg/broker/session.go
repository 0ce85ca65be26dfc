package broker

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/carprop/vhal-go/pkg/bulk"
	"github.com/carprop/vhal-go/pkg/vehicle"
)

// ErrClientGone is returned by a ClientSink whose client can no longer
// receive deliveries. The broker stops delivering to that sink.
var ErrClientGone = errors.New("broker: client gone")

// ClientSink receives a client's asynchronous deliveries. Methods may be
// called concurrently and must not block for long.
type ClientSink interface {
	OnGetValues(results bulk.Batch[vehicle.GetValueResult]) error
	OnSetValues(results bulk.Batch[vehicle.SetValueResult]) error
	OnPropertyEvent(values []vehicle.PropertyValue) error
}

// session is a registered client.
type session struct {
	id   vehicle.ClientID
	sink ClientSink
	gone atomic.Bool
}

// deliver calls fn on the sink unless the client is gone. Sink failures and
// panics are logged and swallowed.
func (s *session) deliver(logger *slog.Logger, what string, fn func(ClientSink) error) {
	if s.gone.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.Warn("client sink panicked", "client", s.id, "delivery", what, "panic", fmt.Sprint(r))
		}
	}()

	err := fn(s.sink)
	switch {
	case err == nil:
	case errors.Is(err, ErrClientGone):
		s.gone.Store(true)
		if logger != nil {
			logger.Debug("client gone, dropping deliveries", "client", s.id)
		}
	default:
		if logger != nil {
			logger.Debug("client sink delivery failed", "client", s.id, "delivery", what, "error", err)
		}
	}
}

// sessionTable maps client ids to sessions.
type sessionTable struct {
	mu       sync.RWMutex
	sessions map[vehicle.ClientID]*session
}

func newSessionTable() *sessionTable {
	return &sessionTable{sessions: make(map[vehicle.ClientID]*session)}
}

func (t *sessionTable) add(id vehicle.ClientID, sink ClientSink) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.sessions[id]; exists {
		return fmt.Errorf("%w: %s", ErrClientExists, id)
	}
	t.sessions[id] = &session{id: id, sink: sink}
	return nil
}

func (t *sessionTable) get(id vehicle.ClientID) (*session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	return s, ok
}

func (t *sessionTable) remove(id vehicle.ClientID) (*session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if ok {
		delete(t.sessions, id)
		s.gone.Store(true)
	}
	return s, ok
}

func (t *sessionTable) ids() []vehicle.ClientID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]vehicle.ClientID, 0, len(t.sessions))
	for id := range t.sessions {
		out = append(out, id)
	}
	return out
}

func (t *sessionTable) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
