package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/gooneraki/risk-worker/cmd/worker/internal/subscriber"
	"github.com/gooneraki/risk-worker/pkg/models"
)

// MockSource scripts subscription epochs for the supervisor: the first
// FailuresLeft Subscribe calls error, then each call delivers the next
// batch of messages and closes the channel (simulating transport loss).
// With BlockWhenEmpty the final epoch stays open until ctx ends.
type MockSource struct {
	FailuresLeft   int
	Batches        [][]subscriber.Message
	BlockWhenEmpty bool

	SubscribeCalls int
	CloseCalls     int
	Mu             sync.Mutex
}

func (m *MockSource) Subscribe(ctx context.Context) (<-chan subscriber.Message, error) {
	m.Mu.Lock()
	m.SubscribeCalls++
	if m.FailuresLeft > 0 {
		m.FailuresLeft--
		m.Mu.Unlock()
		return nil, errors.New("connection refused")
	}

	var batch []subscriber.Message
	hasBatch := len(m.Batches) > 0
	if hasBatch {
		batch = m.Batches[0]
		m.Batches = m.Batches[1:]
	}
	block := !hasBatch && m.BlockWhenEmpty
	m.Mu.Unlock()

	out := make(chan subscriber.Message)
	go func() {
		defer close(out)
		if block {
			<-ctx.Done()
			return
		}
		for _, msg := range batch {
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (m *MockSource) Close() error {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.CloseCalls++
	return nil
}

func (m *MockSource) Calls() (subscribes, closes int) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.SubscribeCalls, m.CloseCalls
}

// MockHandler records the events it was handed.
type MockHandler struct {
	Events  []models.TickerEvent
	Outcome models.ProcessOutcome
	Mu      sync.Mutex
}

func (m *MockHandler) Process(ctx context.Context, event models.TickerEvent) models.ProcessOutcome {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Outcome
}

func (m *MockHandler) Handled() []models.TickerEvent {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	out := make([]models.TickerEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
