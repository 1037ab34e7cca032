package broker

import (
	"context"
	"sync"
)

// MemoryBus is an in-process byte-queue substitute for a live Kafka
// cluster: a single buffered channel per named topic, safe for one
// producer/one consumer each (the monitor and anchor never share a
// topic). Used by tests and local/dev runs in place of KafkaSource/KafkaSink.
type MemoryBus struct {
	mu     sync.Mutex
	topics map[string]chan []byte
}

// NewMemoryBus creates an empty bus; topics are created lazily on first use.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{topics: make(map[string]chan []byte)}
}

func (b *MemoryBus) channel(topic string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.topics[topic]
	if !ok {
		ch = make(chan []byte, 256)
		b.topics[topic] = ch
	}
	return ch
}

// Source returns a Source reading from topic.
func (b *MemoryBus) Source(topic string) Source {
	return &memorySource{ch: b.channel(topic)}
}

// Sink returns a Sink writing to topic.
func (b *MemoryBus) Sink(topic string) Sink {
	return &memorySink{ch: b.channel(topic)}
}

type memorySource struct {
	ch chan []byte
}

func (s *memorySource) Receive(ctx context.Context) ([]byte, error) {
	select {
	case payload := <-s.ch:
		return payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *memorySource) Close() error { return nil }

type memorySink struct {
	ch chan []byte
}

func (s *memorySink) Send(ctx context.Context, payload []byte) error {
	select {
	case s.ch <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *memorySink) Close() error { return nil }
