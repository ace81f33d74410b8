package pubsub

import (
	"context"
	"log/slog"
	"sync"
)

const memoryBuffer = 256

// MemoryBus - шина внутри процесса для одного инстанса и тестов.
// Подписчик с полным буфером пропускает сообщение.
type MemoryBus struct {
	mu     sync.RWMutex
	topics map[string]map[*memorySubscription]struct{}
	closed bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{topics: make(map[string]map[*memorySubscription]struct{})}
}

func (b *MemoryBus) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	for sub := range b.topics[topic] {
		select {
		case sub.ch <- Message{Topic: topic, Payload: payload}:
		default:
			slog.Warn("pubsub: subscriber buffer full, dropping message", "topic", topic)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := &memorySubscription{bus: b, topic: topic, ch: make(chan Message, memoryBuffer)}
	if _, ok := b.topics[topic]; !ok {
		b.topics[topic] = make(map[*memorySubscription]struct{})
	}
	b.topics[topic][sub] = struct{}{}
	return sub, nil
}

func (b *MemoryBus) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[sub.topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}
	close(sub.ch)
}

// Close закрывает все подписки
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for topic, subs := range b.topics {
		for sub := range subs {
			close(sub.ch)
		}
		delete(b.topics, topic)
	}
	return nil
}

type memorySubscription struct {
	bus   *MemoryBus
	topic string
	ch    chan Message
}

func (s *memorySubscription) Messages() <-chan Message { return s.ch }

func (s *memorySubscription) Close() error {
	s.bus.remove(s)
	return nil
}
