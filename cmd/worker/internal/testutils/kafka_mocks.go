package testutils

import (
	"context"
	"io"
	"sync"

	"github.com/segmentio/kafka-go"
)

// MockKafkaReader replays canned messages, then reports DeadlineExceeded
// to end the read loop cleanly in tests.
type MockKafkaReader struct {
	Messages []kafka.Message
	Index    int
	Closed   bool
	Mu       sync.Mutex
}

func (m *MockKafkaReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	m.Mu.Lock()
	defer m.Mu.Unlock()

	if m.Closed {
		return kafka.Message{}, io.EOF
	}
	if m.Index >= len(m.Messages) {
		return kafka.Message{}, context.DeadlineExceeded
	}

	msg := m.Messages[m.Index]
	m.Index++
	return msg, nil
}

func (m *MockKafkaReader) Close() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Closed = true
	return nil
}
