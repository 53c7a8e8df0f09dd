package protocol

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("pipe closed")

// queue is one direction of a pipe: an unbounded FIFO with a wake-up
// signal. Pushing never blocks.
type queue struct {
	mu    sync.Mutex
	items []Message
	ready chan struct{}
}

func newQueue() *queue {
	return &queue{ready: make(chan struct{}, 1)}
}

func (q *queue) push(msg Message) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *queue) pop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	msg := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return msg, true
}

// Endpoint is one side of a bidirectional, ordered message channel.
type Endpoint struct {
	in     *queue
	out    *queue
	closed *closeOnce
}

type closeOnce struct {
	once sync.Once
	done chan struct{}
}

// Pipe returns the host and view endpoints of an in-process channel.
func Pipe() (host, view *Endpoint) {
	toView, toHost := newQueue(), newQueue()
	c := &closeOnce{done: make(chan struct{})}
	host = &Endpoint{in: toHost, out: toView, closed: c}
	view = &Endpoint{in: toView, out: toHost, closed: c}
	return host, view
}

// Send queues msg for the other side and returns at once. It reports false
// once the pipe is closed.
func (e *Endpoint) Send(msg Message) bool {
	select {
	case <-e.closed.done:
		return false
	default:
	}
	e.out.push(msg)
	return true
}

// Next pops the oldest incoming message without waiting. Messages queued
// before Close stay readable.
func (e *Endpoint) Next() (Message, bool) {
	return e.in.pop()
}

// Ready signals that messages may be waiting. A signal can be spurious;
// drain with Next.
func (e *Endpoint) Ready() <-chan struct{} {
	return e.in.ready
}

// Receive waits for the next incoming message. It returns ErrClosed once
// the pipe is closed and nothing is left to read.
func (e *Endpoint) Receive(ctx context.Context) (Message, error) {
	for {
		if msg, ok := e.Next(); ok {
			return msg, nil
		}
		select {
		case <-e.in.ready:
		case <-e.closed.done:
			if msg, ok := e.Next(); ok {
				return msg, nil
			}
			return nil, ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (e *Endpoint) Done() <-chan struct{} {
	return e.closed.done
}

// Close shuts down both directions.
func (e *Endpoint) Close() {
	e.closed.once.Do(func() {
		close(e.closed.done)
	})
}
