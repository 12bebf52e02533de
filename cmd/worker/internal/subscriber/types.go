package subscriber

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/gooneraki/risk-worker/pkg/models"
)

// Message is one raw payload received from the message channel.
type Message struct {
	Payload []byte
}

// Source is a connection to the message channel. Subscribe returns a
// receive channel that closes on transport loss; the supervisor then
// closes the source, waits out the backoff, and subscribes again.
type Source interface {
	Subscribe(ctx context.Context) (<-chan Message, error)
	Close() error
}

// Handler consumes one decoded ticker event.
type Handler interface {
	Process(ctx context.Context, event models.TickerEvent) models.ProcessOutcome
}

// KafkaReader abstracts the kafka input stream
type KafkaReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}
