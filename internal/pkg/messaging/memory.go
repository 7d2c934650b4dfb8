package messaging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	memoryQueueSize      = 256
	memoryMaxRedelivery  = 3
	memoryRedeliveryWait = 100 * time.Millisecond
)

type memoryEnvelope struct {
	msg      OutgoingMessage
	attempts int
}

// Memory is an in-process queue per topic. Every consumer of a topic competes
// for the same queue, so groups are not fanned out.
type Memory struct {
	mu     sync.Mutex
	queues map[string]chan memoryEnvelope
	done   chan struct{}
	closed bool
}

// NewMemory constructs the in-process driver.
func NewMemory() *Memory {
	return &Memory{
		queues: map[string]chan memoryEnvelope{},
		done:   make(chan struct{}),
	}
}

func (m *Memory) queue(topic string) (chan memoryEnvelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	q, ok := m.queues[topic]
	if !ok {
		q = make(chan memoryEnvelope, memoryQueueSize)
		m.queues[topic] = q
	}
	return q, nil
}

// Publish enqueues msg, blocking while the topic queue is full.
func (m *Memory) Publish(ctx context.Context, topic string, msg OutgoingMessage) error {
	if topic == "" {
		return ErrTopicRequired
	}
	q, err := m.queue(topic)
	if err != nil {
		return err
	}

	return m.enqueue(ctx, q, memoryEnvelope{msg: msg})
}

func (m *Memory) enqueue(ctx context.Context, q chan memoryEnvelope, env memoryEnvelope) error {
	select {
	case q <- env:
		return nil
	case <-m.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers messages until ctx is done or the driver is closed. A
// nacked message is redelivered a bounded number of times and then dropped.
func (m *Memory) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	q, err := m.queue(topic)
	if err != nil {
		return err
	}

	co := newConsumeOptions(opts...)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case env := <-q:
					m.handle(ctx, topic, q, env, handler)
				}
			}
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrClosed
}

func (m *Memory) handle(ctx context.Context, topic string, q chan memoryEnvelope, env memoryEnvelope, handler Handler) {
	d := &delivery{
		body:    env.msg.Body,
		headers: env.msg.Headers,
		nack: func(ctx context.Context) error {
			env.attempts++
			if env.attempts > memoryMaxRedelivery {
				slog.WarnContext(ctx, "memory messaging dropped message", "topic", topic, "attempts", env.attempts)
				return nil
			}
			go func() {
				time.Sleep(memoryRedeliveryWait)
				_ = m.enqueue(context.WithoutCancel(ctx), q, env)
			}()
			return nil
		},
	}

	if err := dispatch(ctx, "memory", handler, d); err != nil {
		slog.ErrorContext(ctx, "memory messaging failed to settle message", "topic", topic, "error", err)
	}
}

// Close stops every consumer; queued messages are discarded.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}
