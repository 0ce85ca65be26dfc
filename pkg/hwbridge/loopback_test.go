package hwbridge

import (
	"errors"
	"sync"
)

// loopback is an in-memory Transport that delivers every publish to the
// matching handlers on a fresh goroutine.
type loopback struct {
	mu       sync.Mutex
	handlers map[string][]MessageHandler
	failPub  error
	closed   bool
	wg       sync.WaitGroup
}

func newLoopback() *loopback {
	return &loopback{handlers: make(map[string][]MessageHandler)}
}

func (l *loopback) Publish(topic string, payload []byte) error {
	l.mu.Lock()
	if l.failPub != nil {
		err := l.failPub
		l.mu.Unlock()
		return err
	}
	if l.closed {
		l.mu.Unlock()
		return ErrNotConnected
	}
	hs := append([]MessageHandler(nil), l.handlers[topic]...)
	l.mu.Unlock()

	data := append([]byte(nil), payload...)
	for _, h := range hs {
		l.wg.Add(1)
		go func(h MessageHandler) {
			defer l.wg.Done()
			_ = h(topic, data)
		}(h)
	}
	return nil
}

func (l *loopback) Subscribe(topic string, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[topic] = append(l.handlers[topic], handler)
	return nil
}

func (l *loopback) Close() error {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	return nil
}

func (l *loopback) failPublish(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failPub = err
}

var errLinkDown = errors.New("link down")

var _ Transport = (*loopback)(nil)
