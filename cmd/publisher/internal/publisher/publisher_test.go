package publisher_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gooneraki/risk-worker/cmd/publisher/internal/publisher"
	"github.com/gooneraki/risk-worker/cmd/publisher/internal/testutils"
	"github.com/gooneraki/risk-worker/pkg/models"
)

func TestEventPublisher_StructuredEvents(t *testing.T) {
	logger := zap.NewNop()
	mockSink := &testutils.MockSink{}

	// Float64 of 0.9 stays above any bare ratio, so every payload is JSON.
	mockRand := &testutils.MockRand{ValInt: 0, ValFloat: 0.9}
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(0, 0)}

	pub := publisher.NewEventPublisher(logger, mockSink,
		[]string{"MSFT"}, 100*time.Millisecond, 0.2, mockRand, mockClock)

	// MockClock.Sleep advances time instantly, so a short deadline still
	// lets the loop run many iterations.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	pub.Run(ctx)

	sent := mockSink.Sent()
	if len(sent) == 0 {
		t.Fatal("Expected events to be published")
	}

	var event models.TickerEvent
	if err := json.Unmarshal(sent[0].Payload, &event); err != nil {
		t.Fatalf("Published invalid JSON: %v", err)
	}
	if event.Ticker != "MSFT" {
		t.Errorf("Expected MSFT, got %s", event.Ticker)
	}
	if event.Action != models.ActionAdd {
		t.Errorf("Expected add action at rand index 0, got %s", event.Action)
	}
	if sent[0].Key != "MSFT" {
		t.Errorf("Expected ticker key for partitioning, got %s", sent[0].Key)
	}
}

func TestEventPublisher_BarePayloads(t *testing.T) {
	logger := zap.NewNop()
	mockSink := &testutils.MockSink{}

	// Float64 of 0.1 lands under the bare ratio every time.
	mockRand := &testutils.MockRand{ValInt: 0, ValFloat: 0.1}
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(0, 0)}

	pub := publisher.NewEventPublisher(logger, mockSink,
		[]string{"GOOG"}, 100*time.Millisecond, 0.2, mockRand, mockClock)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	pub.Run(ctx)

	sent := mockSink.Sent()
	if len(sent) == 0 {
		t.Fatal("Expected events to be published")
	}
	if string(sent[0].Payload) != "GOOG" {
		t.Errorf("Expected bare ticker payload, got %s", sent[0].Payload)
	}
}

func TestEventPublisher_SinkFailureKeepsRunning(t *testing.T) {
	logger := zap.NewNop()
	mockSink := &testutils.MockSink{ShouldFail: true}
	mockRand := &testutils.MockRand{ValInt: 0, ValFloat: 0.9}
	mockClock := &testutils.MockClock{CurrentTime: time.Unix(0, 0)}

	pub := publisher.NewEventPublisher(logger, mockSink,
		[]string{"MSFT"}, 100*time.Millisecond, 0, mockRand, mockClock)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// Run must return on ctx expiry, not on publish errors.
	pub.Run(ctx)
}

func TestTopicCreator_Flow(t *testing.T) {
	logger := zap.NewNop()
	mockDialer := &testutils.MockKafkaDialer{} // Will auto-create ConnSpy
	mockClock := &testutils.MockClock{}

	tc := publisher.NewTopicCreator(logger, mockDialer, mockClock)

	tc.Create([]string{"broker:9092"}, models.TickerUpdatesChannel)

	if mockDialer.ConnSpy == nil {
		t.Fatal("Dialer was never called")
	}
	if len(mockDialer.ConnSpy.CreatedTopics) == 0 {
		t.Fatal("No topics created")
	}
	if mockDialer.ConnSpy.CreatedTopics[0] != models.TickerUpdatesChannel {
		t.Errorf("Expected topic %q, got %s", models.TickerUpdatesChannel, mockDialer.ConnSpy.CreatedTopics[0])
	}
}
