package mail

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrQueueFull   = errors.New("mail queue is full")
	ErrQueueClosed = errors.New("mail queue is closed")
)

// Enqueuer is the producer side of a Queue. Request handlers only ever
// need this half.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Queue hands messages from request handlers to the dispatcher workers.
// Dequeue blocks until a message arrives, the queue is closed or ctx ends.
type Queue interface {
	Enqueuer
	Dequeue(ctx context.Context) (Message, error)
	Close() error
}

// MemoryQueue is an in-process bounded queue. Enqueue never blocks: when
// the buffer is full the message is rejected with ErrQueueFull.
type MemoryQueue struct {
	ch        chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{
		ch:   make(chan Message, size),
		done: make(chan struct{}),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, msg Message) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Message, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	case <-q.done:
		return Message{}, ErrQueueClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Len reports the number of buffered messages.
func (q *MemoryQueue) Len() int { return len(q.ch) }

// Close stops accepting messages and wakes blocked consumers. Buffered
// messages are discarded.
func (q *MemoryQueue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}
