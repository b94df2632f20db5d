// Package events is the in-process channel through which payment completion
// reaches views and the reconciliation layer.
package events

import (
	"sync"
	"time"

	"linksphere/internal/domain/entities"
	"linksphere/internal/usecase/interfaces"

	"github.com/rs/zerolog"
)

// Filter selects which events a subscription receives. Nil accepts everything.
type Filter func(entities.PaymentSuccess) bool

// Subscription is one listener. Events are delivered on C until Unsubscribe or
// Bus.Close closes it.
type Subscription struct {
	C <-chan entities.PaymentSuccess

	id     uint64
	ch     chan entities.PaymentSuccess
	filter Filter
	buffer int
	wait   time.Duration
	once   sync.Once
}

type SubscribeOption func(*Subscription)

// WithBuffer overrides the bus buffer size for one subscription.
func WithBuffer(n int) SubscribeOption {
	return func(s *Subscription) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// Blocking makes the publisher wait up to d for room in the subscription's
// buffer before dropping an event.
func Blocking(d time.Duration) SubscribeOption {
	return func(s *Subscription) { s.wait = d }
}

func (s *Subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Bus fans PaymentSuccess out to subscribers. A subscriber whose buffer stays
// full misses the event; only Blocking subscriptions make the publisher wait.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
	logger zerolog.Logger
}

var _ interfaces.IPaymentEventPublisher = (*Bus)(nil)

func NewBus(buffer int, logger zerolog.Logger) *Bus {
	if buffer <= 0 {
		buffer = 1
	}
	return &Bus{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		logger: logger.With().Str("component", "event_bus").Logger(),
	}
}

func (b *Bus) Subscribe(filter Filter, opts ...SubscribeOption) *Subscription {
	s := &Subscription{filter: filter, buffer: b.buffer}
	for _, opt := range opts {
		opt(s)
	}
	s.ch = make(chan entities.PaymentSuccess, s.buffer)
	s.C = s.ch

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.close()
		return s
	}
	b.nextID++
	s.id = b.nextID
	b.subs[s.id] = s
	return s
}

func (b *Bus) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}
	b.mu.Lock()
	delete(b.subs, s.id)
	b.mu.Unlock()
	s.close()
}

func (b *Bus) PublishPaymentSuccess(ev entities.PaymentSuccess) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, s := range b.subs {
		if s.filter != nil && !s.filter(ev) {
			continue
		}
		if !send(s, ev) {
			b.logger.Warn().Uint64("subscription", s.id).Str("contract_id", ev.ContractID).Msg("subscriber buffer full; event dropped")
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		s.close()
		delete(b.subs, id)
	}
}

func send(s *Subscription, ev entities.PaymentSuccess) bool {
	select {
	case s.ch <- ev:
		return true
	default:
	}
	if s.wait <= 0 {
		return false
	}
	t := time.NewTimer(s.wait)
	defer t.Stop()
	select {
	case s.ch <- ev:
		return true
	case <-t.C:
		return false
	}
}
