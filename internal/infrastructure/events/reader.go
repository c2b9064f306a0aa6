package events

import (
	"context"
	"sync"
)

// QueueReader is a channel-backed MessageReader. It backs tests and local
// runs; a real broker client implements MessageReader in deployment.
type QueueReader struct {
	messages chan *Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

// NewQueueReader creates a reader with the given buffer size.
func NewQueueReader(buffer int) *QueueReader {
	return &QueueReader{
		messages: make(chan *Message, buffer),
	}
}

// Publish enqueues a message for consumption.
func (r *QueueReader) Publish(msg *Message) {
	r.messages <- msg
}

// Fetch blocks until a message is available or the context ends.
func (r *QueueReader) Fetch(ctx context.Context) (*Message, error) {
	select {
	case msg := <-r.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Commit records the message offset as acknowledged.
func (r *QueueReader) Commit(ctx context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msg.Offset)
	return nil
}

// Committed returns the acknowledged offsets.
func (r *QueueReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

// Close marks the reader closed.
func (r *QueueReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
