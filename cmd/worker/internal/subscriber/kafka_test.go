package subscriber_test

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/gooneraki/risk-worker/cmd/worker/internal/subscriber"
	"github.com/gooneraki/risk-worker/cmd/worker/internal/testutils"
)

func TestKafkaSource_DeliversThenSignalsLoss(t *testing.T) {
	reader := &testutils.MockKafkaReader{Messages: []kafka.Message{
		{Key: []byte("MSFT"), Value: []byte(`{"ticker":"msft"}`)},
		{Key: []byte("TSLA"), Value: []byte("tsla")},
	}}
	source := subscriber.NewKafkaSourceWithFactory(func() subscriber.KafkaReader { return reader })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msgs, err := source.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	var got []string
	for m := range msgs {
		got = append(got, string(m.Payload))
	}

	// Channel closed after the reader errored: that is the transport-loss
	// signal the supervisor reacts to.
	if len(got) != 2 {
		t.Fatalf("messages = %d, want 2", len(got))
	}
	if got[0] != `{"ticker":"msft"}` || got[1] != "tsla" {
		t.Errorf("payloads = %v", got)
	}

	if err := source.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !reader.Closed {
		t.Error("underlying reader should be closed")
	}
}

func TestKafkaSource_NewReaderPerEpoch(t *testing.T) {
	var built int
	source := subscriber.NewKafkaSourceWithFactory(func() subscriber.KafkaReader {
		built++
		return &testutils.MockKafkaReader{}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		msgs, err := source.Subscribe(ctx)
		if err != nil {
			t.Fatalf("Subscribe() error = %v", err)
		}
		for range msgs {
		}
		source.Close()
	}

	if built != 2 {
		t.Errorf("readers built = %d, want one per epoch", built)
	}
}
