package subscriber

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/gooneraki/risk-worker/pkg/config"
)

// Compile-time check to ensure KafkaSource implements Source
var _ Source = (*KafkaSource)(nil)

// ReaderFactory builds a fresh reader for each subscription epoch; a
// closed kafka reader cannot be reused.
type ReaderFactory func() KafkaReader

// KafkaSource consumes ticker events from a kafka topic as an alternative
// to Redis pub/sub.
type KafkaSource struct {
	factory ReaderFactory

	mu     sync.Mutex
	reader KafkaReader
}

func NewKafkaSource(cfg config.KafkaConfig) *KafkaSource {
	return NewKafkaSourceWithFactory(func() KafkaReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  500 * time.Millisecond,
		})
	})
}

func NewKafkaSourceWithFactory(factory ReaderFactory) *KafkaSource {
	return &KafkaSource{factory: factory}
}

func (k *KafkaSource) Subscribe(ctx context.Context) (<-chan Message, error) {
	reader := k.factory()

	k.mu.Lock()
	k.reader = reader
	k.mu.Unlock()

	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			m, err := reader.ReadMessage(ctx)
			if err != nil {
				// Shutdown or transport loss; the supervisor recycles us.
				return
			}
			select {
			case out <- Message{Payload: m.Value}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (k *KafkaSource) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.reader == nil {
		return nil
	}
	reader := k.reader
	k.reader = nil
	return reader.Close()
}
